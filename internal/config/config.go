package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// FileName is the default configuration file name.
const FileName = "float2qb.yaml"

// Config represents the top-level float2qb.yaml configuration.
type Config struct {
	Accounts AccountsConfig `yaml:"accounts"`
	Gateway  GatewayConfig  `yaml:"gateway"`
	Import   ImportConfig   `yaml:"import"`
	Notify   NotifyConfig   `yaml:"notify"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// AccountsConfig names the fixed ledger accounts transactions post to.
// The names are configuration, not discovery: they must already exist in
// the company file.
type AccountsConfig struct {
	Bank           string `yaml:"bank"`
	Payables       string `yaml:"payables"`
	GST            string `yaml:"gst"`
	DefaultExpense string `yaml:"default_expense"`
	InterestIncome string `yaml:"interest_income"`
}

// GatewayConfig points at the qbXML gateway fronting the QuickBooks session.
type GatewayConfig struct {
	URL            string `yaml:"url"`
	AppName        string `yaml:"app_name"`
	CompanyFile    string `yaml:"company_file,omitempty"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// ImportConfig controls import-directory behavior.
type ImportConfig struct {
	Precheck bool   `yaml:"precheck"`
	Schedule string `yaml:"schedule"` // cron spec used by the watch command
}

// NotifyConfig configures the optional emailed run summary.
type NotifyConfig struct {
	Enabled  bool     `yaml:"enabled"`
	SMTPHost string   `yaml:"smtp_host,omitempty"`
	SMTPPort string   `yaml:"smtp_port,omitempty"`
	Username string   `yaml:"username,omitempty"`
	Password string   `yaml:"password,omitempty"`
	From     string   `yaml:"from,omitempty"`
	To       []string `yaml:"to,omitempty"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// Load reads a float2qb.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with the stock Float account names.
func Default() *Config {
	return &Config{
		Accounts: AccountsConfig{
			Bank:           "Float Financial",
			Payables:       "Accounts Payable",
			GST:            "GST Accounts Receivable",
			DefaultExpense: "Uncategorized Expense",
			InterestIncome: "Other Income:Interest Income",
		},
		Gateway: GatewayConfig{
			URL:            "http://localhost:8166/qbxml",
			AppName:        "float2qb",
			TimeoutSeconds: 30,
		},
		Import: ImportConfig{
			Precheck: true,
			Schedule: "@every 15m",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}
