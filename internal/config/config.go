package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/teambition/rrule-go"
	"gopkg.in/yaml.v3"
)

// RecurringOffDay marks a staff member unavailable on every date produced by
// an RFC 5545 recurrence rule (for example FREQ=WEEKLY;BYDAY=MO), on top of
// the explicit rows in the OffDays tab
type RecurringOffDay struct {
	Staff string `yaml:"staff" validate:"required"`
	RRule string `yaml:"rrule" validate:"required"`
}

// Config represents the application configuration
type Config struct {
	ListenPort      int    `yaml:"listenPort" validate:"required,min=1,max=65535"`
	Timezone        string `yaml:"timezone" validate:"required"`
	SpreadsheetID   string `yaml:"spreadsheetID" validate:"required"`
	CredentialsFile string `yaml:"credentialsFile" validate:"required"`

	StaffTab       string `yaml:"staffTab"`
	OffDaysTab     string `yaml:"offDaysTab"`
	WebBookingsTab string `yaml:"webBookingsTab"`
	WalkinsTab     string `yaml:"walkinsTab"`
	ServicesTab    string `yaml:"servicesTab"`

	AllowedOrigins   []string          `yaml:"allowedOrigins,omitempty"`
	LegacyCRMConn    string            `yaml:"legacyCRMConn,omitempty"`
	RecurringOffDays []RecurringOffDay `yaml:"recurringOffDays,omitempty" validate:"dive"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Load loads and validates the configuration from booking_config.yaml
// It looks for the config file in the current directory first, then in the user's home directory
func Load() (*Config, error) {
	configPath, err := findConfigFile()
	if err != nil {
		return nil, fmt.Errorf("failed to find config file: %w", err)
	}

	return LoadFromPath(configPath)
}

// LoadFromPath loads and validates the configuration from a specific path.
// Environment variables override the secrets that should not live in the
// YAML file: SPREADSHEET_ID, GOOGLE_CREDENTIALS_FILE and LEGACY_CRM_CONN.
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Config{
		ListenPort:     8080,
		StaffTab:       "Staff",
		OffDaysTab:     "OffDays",
		WebBookingsTab: "WebBookings",
		WalkinsTab:     "Walkins",
		ServicesTab:    "Services",
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyEnvOverrides(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate validates the configuration struct, the timezone and the rrule
// syntax of every recurring off-day
func Validate(cfg *Config) error {
	// Run struct validation
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	if _, err := time.LoadLocation(cfg.Timezone); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", cfg.Timezone, err)
	}

	for i, off := range cfg.RecurringOffDays {
		if _, err := rrule.StrToRRule(off.RRule); err != nil {
			return fmt.Errorf("invalid rrule in recurringOffDays[%d]: %w", i, err)
		}
	}

	return nil
}

// Location returns the business timezone as a *time.Location.
// Validate must have succeeded before calling this.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// applyEnvOverrides replaces secret-bearing fields from the environment when set
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SPREADSHEET_ID"); v != "" {
		cfg.SpreadsheetID = v
	}
	if v := os.Getenv("GOOGLE_CREDENTIALS_FILE"); v != "" {
		cfg.CredentialsFile = v
	}
	if v := os.Getenv("LEGACY_CRM_CONN"); v != "" {
		cfg.LegacyCRMConn = v
	}
}

// findConfigFile searches for booking_config.yaml in current directory and home directory
func findConfigFile() (string, error) {
	configFileName := "booking_config.yaml"

	// Check current directory
	if _, err := os.Stat(configFileName); err == nil {
		return configFileName, nil
	}

	// Check home directory
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	homeConfigPath := filepath.Join(homeDir, configFileName)
	if _, err := os.Stat(homeConfigPath); err == nil {
		return homeConfigPath, nil
	}

	return "", fmt.Errorf("config file not found in current directory or home directory")
}
