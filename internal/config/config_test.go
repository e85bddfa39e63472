package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Catmanpooh/oort-hackathon/internal/config"
	"github.com/Catmanpooh/oort-hackathon/internal/factory"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:3000/api/v1", cfg.FactoryAPIBaseURL)
	assert.Equal(t, common.HexToAddress(factory.DefaultContractAddress).Hex(), cfg.ContractAddress)
	assert.Equal(t, "oort-hackathon", cfg.SupabaseStorageBucket)
	assert.Equal(t, 10*time.Hour, cfg.ObjectURLTTL)
	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, "http://localhost:3000", cfg.BaseURL)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("FACTORY_API_BASE_URL", "https://factory.example/api/v1")
	t.Setenv("WALLET_ADDRESS", "0xabc")
	t.Setenv("OBJECT_URL_TTL", "30m")
	t.Setenv("CONTRACT_ADDRESS", strings.ToLower(factory.DefaultContractAddress))
	t.Setenv("BASE_URL", "https://factory.example")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "https://factory.example", cfg.BaseURL)

	assert.Equal(t, "https://factory.example/api/v1", cfg.FactoryAPIBaseURL)
	assert.Equal(t, "0xabc", cfg.WalletAddress)
	assert.Equal(t, 30*time.Minute, cfg.ObjectURLTTL)
	assert.Equal(t, common.HexToAddress(factory.DefaultContractAddress).Hex(), cfg.ContractAddress)
}

func TestLoad_InvalidContractAddress(t *testing.T) {
	t.Setenv("CONTRACT_ADDRESS", "not-an-address")

	_, err := config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CONTRACT_ADDRESS")
}

func TestLoad_InvalidTTL(t *testing.T) {
	t.Setenv("OBJECT_URL_TTL", "soon")

	_, err := config.Load()
	assert.Error(t, err)
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
supabase_url: https://project.supabase.co
supabase_storage_bucket: from-file
port: "8081"
object_url_ttl: 2h
`), 0o644))
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("PORT", "9090")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "https://project.supabase.co", cfg.SupabaseURL)
	assert.Equal(t, "from-file", cfg.SupabaseStorageBucket)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 2*time.Hour, cfg.ObjectURLTTL)
}

func TestLoad_MissingFile(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "nope.yaml"))

	_, err := config.Load()
	assert.Error(t, err)
}

func TestValidateServer(t *testing.T) {
	cfg := &config.Config{SupabaseStorageBucket: "b"}
	assert.ErrorContains(t, cfg.ValidateServer(), "SUPABASE_URL")

	cfg.SupabaseURL = "https://project.supabase.co"
	assert.ErrorContains(t, cfg.ValidateServer(), "SUPABASE_PUBLISHABLE_KEY")

	cfg.SupabasePublishableKey = "key"
	assert.NoError(t, cfg.ValidateServer())
}
