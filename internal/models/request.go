package models

import "encoding/json"

// ObjectURIRequest is the registration document posted to /object_uri.
// Metadata is kept verbatim so its {"Strand": ...} envelope reaches the
// database unchanged.
type ObjectURIRequest struct {
	Address         string          `json:"address" binding:"required"`
	ContractAddress string          `json:"contract_address" binding:"required"`
	Metadata        json.RawMessage `json:"metadata" binding:"required"`
	ProjectName     string          `json:"project_name" binding:"required"`
	ObjectName      string          `json:"object_name" binding:"required"`
}

type ListObjectsRequest struct {
	Name string `json:"name"`
}

type DeleteItemRequest struct {
	ProjectName string `json:"project_name" binding:"required"`
	ItemName    string `json:"item_name" binding:"required"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
