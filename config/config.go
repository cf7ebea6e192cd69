// Package config loads the ksync configuration from the environment.
//
// Per-account variables are comma separated lists, one item per account. An
// account without an item of its own uses the last one of the list, so a
// single value applies to every account.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/etnz/kourasync"
	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// Account holds the settings of one synchronised account.
type Account struct {
	Operation        kourasync.Operation
	GhostHost        string
	GhostKey         string
	GhostToken       string
	KouraUsername    string
	KouraPassword    string
	KouraAccountID   string
	GhostAccountName string
	GhostCurrency    string
	GhostPlatform    string
	Mode             kourasync.Mode
}

// Account returns the kourasync account described by a.
func (a Account) Account(cashSymbol string) kourasync.Account {
	return kourasync.Account{
		Source:     a.KouraAccountID,
		Name:       a.GhostAccountName,
		Currency:   a.GhostCurrency,
		PlatformID: a.GhostPlatform,
		Mode:       a.Mode,
		CashSymbol: cashSymbol,
	}
}

// Config holds application configuration
type Config struct {
	Accounts     []Account
	KouraBaseURL string
	KouraUserTag string
	MappingFile  string
	CashSymbol   string
	Workers      int
	HTTPTimeout  time.Duration
	RateLimit    int // requests per second and per client
	LogLevel     string
	LogPretty    bool
}

// Load reads the configuration from the environment, and from a .env file if any.
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if it doesn't)
	_ = godotenv.Load()

	operations := getEnvAsList("OPERATION", string(kourasync.SyncKoura))
	hosts := getEnvAsList("GHOST_HOST", "https://ghostfol.io")
	keys := getEnvAsList("GHOST_KEY", "")
	tokens := getEnvAsList("GHOST_TOKEN", "")
	usernames := getEnvAsList("KOURA_USERNAME", "")
	passwords := getEnvAsList("KOURA_PASSWORD", "")
	accountIDs := getEnvAsList("KOURA_ACCOUNT_ID", "")
	names := getEnvAsList("GHOST_ACCOUNT_NAME", "Koura Wealth")
	currencies := getEnvAsList("GHOST_CURRENCY", "NZD")
	platforms := getEnvAsList("GHOST_KOURA_PLATFORM", "")
	modes := getEnvAsList("SYNC_MODE", string(kourasync.Funds))

	cfg := &Config{
		KouraBaseURL: getEnv("KOURA_BASE_URL", ""),
		KouraUserTag: getEnv("KOURA_USER_TAG", ""),
		MappingFile:  getEnv("MAPPING_FILE", "mapping.toml"),
		CashSymbol:   getEnv("CASH_SYMBOL", ""),
		Workers:      getEnvAsInt("WORKERS", 1),
		HTTPTimeout:  getEnvAsDuration("HTTP_TIMEOUT", 30*time.Second),
		RateLimit:    getEnvAsInt("RATE_LIMIT", 5),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		LogPretty:    getEnvAsBool("LOG_PRETTY", false),
	}

	for i, op := range operations {
		operation, err := kourasync.ParseOperation(op)
		if err != nil {
			return nil, fmt.Errorf("account %d: %w", i, err)
		}
		mode, err := kourasync.ParseMode(strings.ToLower(item(modes, i)))
		if err != nil {
			return nil, fmt.Errorf("account %d: %w", i, err)
		}
		cfg.Accounts = append(cfg.Accounts, Account{
			Operation:        operation,
			GhostHost:        item(hosts, i),
			GhostKey:         item(keys, i),
			GhostToken:       item(tokens, i),
			KouraUsername:    item(usernames, i),
			KouraPassword:    item(passwords, i),
			KouraAccountID:   item(accountIDs, i),
			GhostAccountName: item(names, i),
			GhostCurrency:    item(currencies, i),
			GhostPlatform:    item(platforms, i),
			Mode:             mode,
		})
	}
	return cfg, nil
}

// Validate checks that every account can reach both services.
func (c *Config) Validate() error {
	var errs []error
	if len(c.Accounts) == 0 {
		errs = append(errs, errors.New("no account configured"))
	}
	for i, a := range c.Accounts {
		if a.GhostToken == "" && a.GhostKey == "" {
			errs = append(errs, fmt.Errorf("account %d: GHOST_TOKEN or GHOST_KEY is required", i))
		}
		if a.KouraAccountID == "" && a.Operation != kourasync.CreateAssets {
			errs = append(errs, fmt.Errorf("account %d: KOURA_ACCOUNT_ID is required", i))
		}
		if (a.Operation == kourasync.SyncKoura || a.Operation == kourasync.UpdatePrices) &&
			(a.KouraUsername == "" || a.KouraPassword == "") {
			errs = append(errs, fmt.Errorf("account %d: KOURA_USERNAME and KOURA_PASSWORD are required for %s", i, a.Operation))
		}
	}
	if c.Workers < 1 {
		errs = append(errs, fmt.Errorf("WORKERS must be at least 1, got %d", c.Workers))
	}
	return errors.Join(errs...)
}

// mappingFile is the content of the symbol mapping file.
type mappingFile struct {
	SymbolMapping map[string]string `toml:"symbol_mapping"`
}

// LoadSymbolMapping reads the fund id to symbol overrides of the TOML file at path.
//
// A missing file is not an error: there are no overrides.
func LoadSymbolMapping(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read mapping file %s: %w", path, err)
	}
	var m mappingFile
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse mapping file %s: %w", path, err)
	}
	return m.SymbolMapping, nil
}

// item returns the i-th item of list, or its last one if it is too short.
func item(list []string, i int) string {
	if i < len(list) {
		return list[i]
	}
	return list[len(list)-1]
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsList(key, defaultValue string) []string {
	items := strings.Split(getEnv(key, defaultValue), ",")
	for i := range items {
		items[i] = strings.TrimSpace(items[i])
	}
	return items
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
