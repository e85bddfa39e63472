package database_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Catmanpooh/oort-hackathon/internal/database"
)

func TestMigrations(t *testing.T) {
	names, err := database.Migrations()
	require.NoError(t, err)
	require.NotEmpty(t, names)
	assert.Equal(t, "001_nft_market_items.sql", names[0])
	assert.IsNonDecreasing(t, names)
}

func TestNewMigrator_BadURL(t *testing.T) {
	_, err := database.NewMigrator("postgres://nobody@127.0.0.1:1/none?sslmode=disable&connect_timeout=1", nil)
	assert.Error(t, err)
}
