// Package config provides configuration management for the SEPA export.
// It loads configuration from environment variables and .env files.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config represents the application configuration.
type Config struct {
	Moco     MocoConfig
	Creditor CreditorConfig
	Sepa     SepaConfig
	Output   OutputConfig
	Debug    bool
}

// MocoConfig represents MOCO API configuration.
type MocoConfig struct {
	APIURL   string
	APIToken string
}

// CreditorConfig represents the account the debits are collected into.
type CreditorConfig struct {
	Name     string
	IBAN     string
	BIC      string
	SchemeID string
}

// SepaConfig represents batch generation settings.
type SepaConfig struct {
	MessagePrefix     string
	LocalInstrument   string
	SequenceType      string
	DebtorBICOverride string
	Concurrency       int
	FetchTimeout      time.Duration
	PropertyMapping   string // optional YAML file
}

// OutputConfig represents where batch files and history are kept.
type OutputConfig struct {
	Root      string
	HistoryDB string
}

// Load loads configuration from environment variables.
// It automatically loads .env file from the current directory if available.
// You can optionally specify a custom .env file path.
func Load(envPath ...string) (*Config, error) {
	// Load .env file
	if len(envPath) > 0 && envPath[0] != "" {
		if err := godotenv.Load(envPath[0]); err != nil {
			return nil, fmt.Errorf("failed to load .env file: %w", err)
		}
	} else {
		// Try to load .env from current directory (ignore error if not found)
		_ = godotenv.Load()
	}

	concurrency, err := parseIntEnv("SEPA_CONCURRENCY", 4)
	if err != nil {
		return nil, err
	}

	fetchTimeout, err := parseDurationEnv("SEPA_FETCH_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, err
	}

	config := &Config{
		Moco: MocoConfig{
			APIURL:   os.Getenv("MOCO_API"),
			APIToken: os.Getenv("MOCO_TOKEN"),
		},
		Creditor: CreditorConfig{
			Name:     os.Getenv("CREDITOR_NAME"),
			IBAN:     normalizeAccount(os.Getenv("CREDITOR_IBAN")),
			BIC:      normalizeAccount(os.Getenv("CREDITOR_BIC")),
			SchemeID: os.Getenv("CREDITOR_ID"),
		},
		Sepa: SepaConfig{
			MessagePrefix:     getEnvOrDefault("SEPA_MESSAGE_PREFIX", "SEPA"),
			LocalInstrument:   getEnvOrDefault("SEPA_LOCAL_INSTRUMENT", "CORE"),
			SequenceType:      getEnvOrDefault("SEPA_SEQUENCE_TYPE", "FRST"),
			DebtorBICOverride: normalizeAccount(os.Getenv("SEPA_DEBTOR_BIC_OVERRIDE")),
			Concurrency:       concurrency,
			FetchTimeout:      fetchTimeout,
			PropertyMapping:   os.Getenv("SEPA_PROPERTY_MAPPING"),
		},
		Output: OutputConfig{
			Root:      getEnvOrDefault("SEPA_OUTPUT_ROOT", "./sepa"),
			HistoryDB: os.Getenv("SEPA_HISTORY_DB"),
		},
		Debug: os.Getenv("DEBUG") == "true",
	}

	return config, nil
}

// Validate validates the configuration.
// It checks if all required fields are set.
func (c *Config) Validate(required ...[]string) error {
	var missing []string

	for _, path := range required {
		if len(path) < 2 {
			continue
		}

		var value string
		switch path[0] {
		case "moco":
			switch path[1] {
			case "apiUrl":
				value = c.Moco.APIURL
			case "apiToken":
				value = c.Moco.APIToken
			}
		case "creditor":
			switch path[1] {
			case "name":
				value = c.Creditor.Name
			case "iban":
				value = c.Creditor.IBAN
			case "bic":
				value = c.Creditor.BIC
			case "schemeId":
				value = c.Creditor.SchemeID
			}
		case "output":
			switch path[1] {
			case "root":
				value = c.Output.Root
			case "historyDb":
				value = c.Output.HistoryDB
			}
		}

		if value == "" {
			missing = append(missing, strings.Join(path, "."))
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %v\nPlease check your .env file or environment variables", missing)
	}

	return nil
}

// getEnvOrDefault returns the value of the environment variable or a default value if not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseIntEnv(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}

	parsed, err := strconv.Atoi(value)
	if err != nil || parsed <= 0 {
		return 0, fmt.Errorf("invalid positive integer value for %s: %s", key, value)
	}

	return parsed, nil
}

func parseDurationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}

	parsed, err := time.ParseDuration(value)
	if err != nil || parsed <= 0 {
		return 0, fmt.Errorf("invalid duration value for %s: %s", key, value)
	}

	return parsed, nil
}

// normalizeAccount strips blanks from IBANs and BICs as they are often
// entered in groups of four.
func normalizeAccount(value string) string {
	return strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(value), " ", ""))
}
