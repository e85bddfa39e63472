package supabase

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"github.com/Catmanpooh/oort-hackathon/internal/models"
)

type DatabaseClient struct {
	db *sql.DB
}

func NewDatabaseClient(connectionString string) (*DatabaseClient, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DatabaseClient{db: db}, nil
}

// CreateItem inserts item and fills in its id and created_at.
func (d *DatabaseClient) CreateItem(item *models.MarketItem) error {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	metadata := []byte(item.Metadata)
	if len(metadata) == 0 {
		metadata = []byte("null")
	}

	err := d.db.QueryRow(`
		INSERT INTO nft_market_items (id, address, contract_address, metadata, blocktime, file)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`, item.ID, item.Address, item.ContractAddress, metadata, item.Blocktime, item.File).Scan(&item.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create market item: %w", err)
	}

	return nil
}

func (d *DatabaseClient) ListItemsByAddress(address string) ([]models.MarketItem, error) {
	rows, err := d.db.Query(`
		SELECT id, address, contract_address, metadata, blocktime, file, created_at
		FROM nft_market_items
		WHERE address = $1
		ORDER BY created_at DESC
	`, address)
	if err != nil {
		return nil, fmt.Errorf("failed to list market items: %w", err)
	}
	defer rows.Close()

	items := []models.MarketItem{}
	for rows.Next() {
		var item models.MarketItem
		var metadata []byte
		if err := rows.Scan(
			&item.ID, &item.Address, &item.ContractAddress,
			&metadata, &item.Blocktime, &item.File, &item.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan market item: %w", err)
		}
		item.Metadata = metadata
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list market items: %w", err)
	}

	return items, nil
}

func (d *DatabaseClient) Close() error {
	return d.db.Close()
}
