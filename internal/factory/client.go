package factory

import (
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// DefaultContractAddress is the factory contract every registered object is
// attributed to.
const DefaultContractAddress = "0x1d2569Bf9A36204b250D45Efb6ffd2f763C012FC"

// Client talks to the factory backend (the /api/v1 routes).
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// File is an asset picked by the user. Only its presence is checked; the
// contents are sent as-is.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// APIError reports a non-success response from the backend.
type APIError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("failed to %s: status %d, body: %s", e.Op, e.StatusCode, e.Body)
}

// NewClient builds a client for baseURL (e.g. http://localhost:3000/api/v1).
// A nil httpClient gets a client without a timeout; requests run until the
// transport or the caller's context ends them.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: httpClient,
	}
}

// ReadFile loads an asset from disk.
func ReadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	name := filepath.Base(path)
	return &File{
		Name:        name,
		ContentType: mime.TypeByExtension(filepath.Ext(name)),
		Data:        data,
	}, nil
}

// NormalizeProjectName lowercases the name and joins its words with hyphens,
// which is the folder name the backend stores assets under.
func NormalizeProjectName(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), "-"))
}

func success(status int) bool {
	return status >= 200 && status < 300
}
