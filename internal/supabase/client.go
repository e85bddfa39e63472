package supabase

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/supabase-community/supabase-go"

	"github.com/Catmanpooh/oort-hackathon/internal/config"
	"github.com/Catmanpooh/oort-hackathon/internal/models"
)

const marketItemsTable = "nft_market_items"

type Client struct {
	Supabase *supabase.Client
	Config   *config.Config
}

func NewClient(cfg *config.Config) (*Client, error) {
	client, err := supabase.NewClient(strings.TrimSuffix(cfg.SupabaseURL, "/"), cfg.SupabasePublishableKey, nil)
	if err != nil {
		return nil, err
	}

	return &Client{
		Supabase: client,
		Config:   cfg,
	}, nil
}

// ListItemsByAddress reads the gallery of one wallet through PostgREST,
// newest first.
func (c *Client) ListItemsByAddress(address string) ([]models.MarketItem, error) {
	var items []models.MarketItem
	_, err := c.Supabase.From(marketItemsTable).
		Select("*", "", false).
		Eq("address", address).
		Order("created_at", nil).
		ExecuteTo(&items)
	if err != nil {
		return nil, fmt.Errorf("failed to list items for %s: %w", address, err)
	}
	if items == nil {
		items = []models.MarketItem{}
	}
	return items, nil
}

type marketItemRow struct {
	ID              uuid.UUID       `json:"id"`
	Address         string          `json:"address"`
	ContractAddress string          `json:"contract_address"`
	Metadata        json.RawMessage `json:"metadata"`
	Blocktime       int64           `json:"blocktime"`
	File            string          `json:"file"`
}

// CreateItem inserts item through PostgREST and fills in its id and
// created_at from the returned representation.
func (c *Client) CreateItem(item *models.MarketItem) error {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	row := marketItemRow{
		ID:              item.ID,
		Address:         item.Address,
		ContractAddress: item.ContractAddress,
		Metadata:        item.Metadata,
		Blocktime:       item.Blocktime,
		File:            item.File,
	}

	var created []models.MarketItem
	_, err := c.Supabase.From(marketItemsTable).
		Insert(row, false, "", "representation", "").
		ExecuteTo(&created)
	if err != nil {
		return fmt.Errorf("failed to create market item: %w", err)
	}
	if len(created) > 0 {
		item.CreatedAt = created[0].CreatedAt
	}
	return nil
}
