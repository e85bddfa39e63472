package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// MarketItem is a registered object as stored in nft_market_items.
type MarketItem struct {
	ID              uuid.UUID       `json:"id"`
	Address         string          `json:"address"`
	ContractAddress string          `json:"contract_address"`
	Metadata        json.RawMessage `json:"metadata"`
	Blocktime       int64           `json:"blocktime"`
	File            string          `json:"file"`
	CreatedAt       time.Time       `json:"created_at"`
}
