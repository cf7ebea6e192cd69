package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/etnz/kourasync"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setenv sets every variable of the configuration, unset ones to empty.
func setenv(t *testing.T, env map[string]string) {
	for _, key := range []string{
		"OPERATION", "GHOST_HOST", "GHOST_KEY", "GHOST_TOKEN", "KOURA_USERNAME", "KOURA_PASSWORD",
		"KOURA_ACCOUNT_ID", "GHOST_ACCOUNT_NAME", "GHOST_CURRENCY", "GHOST_KOURA_PLATFORM", "SYNC_MODE",
		"KOURA_BASE_URL", "KOURA_USER_TAG", "MAPPING_FILE", "CASH_SYMBOL", "WORKERS", "HTTP_TIMEOUT",
		"RATE_LIMIT", "LOG_LEVEL", "LOG_PRETTY",
	} {
		t.Setenv(key, env[key])
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir()) // no .env file.
	setenv(t, map[string]string{"GHOST_TOKEN": "tok", "KOURA_ACCOUNT_ID": "1234", "KOURA_USERNAME": "kiwi", "KOURA_PASSWORD": "pw"})

	cfg, err := Load()
	require.NoError(t, err)
	require.Len(t, cfg.Accounts, 1)
	a := cfg.Accounts[0]
	assert.Equal(t, kourasync.SyncKoura, a.Operation)
	assert.Equal(t, "https://ghostfol.io", a.GhostHost)
	assert.Equal(t, "Koura Wealth", a.GhostAccountName)
	assert.Equal(t, "NZD", a.GhostCurrency)
	assert.Equal(t, kourasync.Funds, a.Mode)
	assert.Equal(t, "mapping.toml", cfg.MappingFile)
	assert.Equal(t, 1, cfg.Workers)
	assert.Equal(t, 30*time.Second, cfg.HTTPTimeout)
	assert.NoError(t, cfg.Validate())
}

func TestLoadAccounts(t *testing.T) {
	t.Chdir(t.TempDir())
	setenv(t, map[string]string{
		"OPERATION":          "SYNCKOURA,get_all_acts,DELETE_ALL_ACTS",
		"GHOST_TOKEN":        "t1,t2",
		"KOURA_ACCOUNT_ID":   "1,2,3",
		"GHOST_ACCOUNT_NAME": "Koura A, Koura B, Koura C",
		"SYNC_MODE":          "cash,funds",
		"WORKERS":            "3",
		"HTTP_TIMEOUT":       "5s",
	})

	cfg, err := Load()
	require.NoError(t, err)
	require.Len(t, cfg.Accounts, 3)
	assert.Equal(t, kourasync.GetAllActs, cfg.Accounts[1].Operation)
	assert.Equal(t, "t2", cfg.Accounts[2].GhostToken, "short lists repeat their last item")
	assert.Equal(t, "3", cfg.Accounts[2].KouraAccountID)
	assert.Equal(t, "Koura B", cfg.Accounts[1].GhostAccountName)
	assert.Equal(t, kourasync.Cash, cfg.Accounts[0].Mode)
	assert.Equal(t, kourasync.Funds, cfg.Accounts[2].Mode)
	assert.Equal(t, 3, cfg.Workers)
	assert.Equal(t, 5*time.Second, cfg.HTTPTimeout)

	// the first account syncs without Koura credentials.
	assert.ErrorContains(t, cfg.Validate(), "KOURA_USERNAME")

	acc := cfg.Accounts[0].Account("CASH")
	assert.Equal(t, kourasync.Account{Source: "1", Name: "Koura A", Currency: "NZD", Mode: kourasync.Cash, CashSymbol: "CASH"}, acc)
}

func TestLoadErrors(t *testing.T) {
	t.Chdir(t.TempDir())
	setenv(t, map[string]string{"OPERATION": "NOPE"})
	_, err := Load()
	assert.Error(t, err)

	setenv(t, map[string]string{"SYNC_MODE": "holdings"})
	_, err = Load()
	assert.Error(t, err)

	setenv(t, map[string]string{})
	cfg, err := Load()
	require.NoError(t, err)
	err = cfg.Validate()
	assert.ErrorContains(t, err, "GHOST_TOKEN or GHOST_KEY")
	assert.ErrorContains(t, err, "KOURA_ACCOUNT_ID")
}

func TestDotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	setenv(t, map[string]string{})
	os.Unsetenv("KOURA_USER_TAG")
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("KOURA_USER_TAG=from-dotenv\n"), 0o600))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", cfg.KouraUserTag)
	os.Unsetenv("KOURA_USER_TAG")
}

func TestLoadSymbolMapping(t *testing.T) {
	dir := t.TempDir()

	m, err := LoadSymbolMapping(filepath.Join(dir, "missing.toml"))
	require.NoError(t, err)
	assert.Nil(t, m)

	path := filepath.Join(dir, "mapping.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[symbol_mapping]
"810003" = "MY_NZEQ"
810011 = "NEW_FUND"
`), 0o600))
	m, err = LoadSymbolMapping(path)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"810003": "MY_NZEQ", "810011": "NEW_FUND"}, m)

	require.NoError(t, os.WriteFile(path, []byte("[symbol_mapping\n"), 0o600))
	_, err = LoadSymbolMapping(path)
	assert.Error(t, err)
}
