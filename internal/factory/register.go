package factory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/Catmanpooh/oort-hackathon/internal/models"
	"github.com/Catmanpooh/oort-hackathon/internal/traits"
)

// ObjectRegistration is the body of POST /object_uri.
type ObjectRegistration struct {
	Address         string          `json:"address"`
	ContractAddress string          `json:"contract_address"`
	Metadata        traits.Metadata `json:"metadata"`
	ProjectName     string          `json:"project_name"`
	ObjectName      string          `json:"object_name"`
}

// RegisterObject records the minted object with the backend and returns the
// pre-signed URL it answers with.
func (c *Client) RegisterObject(ctx context.Context, reg ObjectRegistration) (string, error) {
	jsonData, err := json.Marshal(reg)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/object_uri", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "*/*")
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	if !success(resp.StatusCode) {
		return "", &APIError{Op: "register object", StatusCode: resp.StatusCode, Body: string(body)}
	}

	var objectURL string
	if err := json.Unmarshal(body, &objectURL); err != nil {
		objectURL = strings.TrimSpace(string(body))
	}
	return objectURL, nil
}

// ListUserItems returns the objects registered for a wallet address.
func (c *Client) ListUserItems(ctx context.Context, address string) ([]models.MarketItem, error) {
	endpoint := c.baseURL + "/user_nft_items/" + url.PathEscape(address)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "*/*")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if !success(resp.StatusCode) {
		body, _ := io.ReadAll(resp.Body)
		return nil, &APIError{Op: "list user items", StatusCode: resp.StatusCode, Body: string(body)}
	}

	var items []models.MarketItem
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return items, nil
}
