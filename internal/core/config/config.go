// Package config handles configuration loading and validation for remit.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/colonyops/remit/internal/core/billing"
	"github.com/colonyops/remit/internal/core/listing"
	"github.com/colonyops/remit/internal/core/styles"
)

// Config holds the application configuration.
type Config struct {
	Theme     string         `yaml:"theme"`
	Clinic    ClinicConfig   `yaml:"clinic"`
	List      ListConfig     `yaml:"list"`
	FollowUp  FollowUpConfig `yaml:"followup"`
	Sequence  SequenceConfig `yaml:"sequence"`
	Email     EmailConfig    `yaml:"email"`
	Database  DatabaseConfig `yaml:"database"`
	Vars      map[string]any `yaml:"vars"`
	VarsFiles []string       `yaml:"vars_files"`
	DataDir   string         `yaml:"-"` // set by caller, not from config file
}

// ClinicConfig identifies the practice and the desk operator.
type ClinicConfig struct {
	Name string `yaml:"name"`
	// Operator is recorded as the author of activities created by actions.
	Operator string `yaml:"operator"`
}

// ListConfig holds invoice list defaults.
type ListConfig struct {
	PageSize   int    `yaml:"page_size"`
	DefaultTab string `yaml:"default_tab"` // patient or workcover

	// RefreshInterval reloads the dashboard so changes made from the CLI
	// show up. Negative disables it.
	RefreshInterval time.Duration `yaml:"refresh_interval"`
}

// FollowUpConfig holds follow-up dialog defaults.
type FollowUpConfig struct {
	DefaultMessage string `yaml:"default_message"`
	PaymentLink    string `yaml:"payment_link"`
	// CustomRepeats adds repeat frequencies, label -> standard cron spec.
	CustomRepeats map[string]string `yaml:"custom_repeats"`
}

// SequenceConfig holds the default follow-up sequence rule.
type SequenceConfig struct {
	InitialDelayDays   int   `yaml:"initial_delay_days"`
	RepeatIntervalDays int   `yaml:"repeat_interval_days"`
	MaxAttempts        int   `yaml:"max_attempts"`
	SkipWeekends       *bool `yaml:"skip_weekends"`
}

// Rule returns the configured default rule for an invoice.
func (s SequenceConfig) Rule(invoiceID string) billing.SequenceRule {
	r := billing.DefaultSequenceRule(invoiceID)
	if s.InitialDelayDays != 0 {
		r.InitialDelayDays = s.InitialDelayDays
	}
	if s.RepeatIntervalDays != 0 {
		r.RepeatIntervalDays = s.RepeatIntervalDays
	}
	if s.MaxAttempts != 0 {
		r.MaxAttempts = s.MaxAttempts
	}
	if s.SkipWeekends != nil {
		r.SkipWeekends = *s.SkipWeekends
	}
	return r
}

// EmailConfig holds case manager email settings.
type EmailConfig struct {
	Domain string `yaml:"domain"`
}

// DatabaseConfig holds SQLite connection pool settings.
type DatabaseConfig struct {
	MaxOpenConns int `yaml:"max_open_conns"`
	MaxIdleConns int `yaml:"max_idle_conns"`
	BusyTimeout  int `yaml:"busy_timeout"` // milliseconds
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Theme: styles.DefaultTheme,
		Clinic: ClinicConfig{
			Name:     "Clinic",
			Operator: "Reception",
		},
		List: ListConfig{
			PageSize:        listing.DefaultPageSize,
			DefaultTab:      string(billing.KindPatient),
			RefreshInterval: 30 * time.Second,
		},
		FollowUp: FollowUpConfig{
			DefaultMessage: billing.DefaultMessage,
			PaymentLink:    "https://pay.stripe.com/invoice/test_inv_1H...",
			CustomRepeats:  map[string]string{},
		},
		Email: EmailConfig{
			Domain: billing.DefaultEmailDomain,
		},
		Database: DatabaseConfig{
			MaxOpenConns: 2,
			MaxIdleConns: 2,
			BusyTimeout:  5000,
		},
		Vars: map[string]any{},
	}
}

// Load reads configuration from the given path and sets the data directory.
// If configPath is empty or doesn't exist, returns defaults with the provided dataDir.
func Load(configPath, dataDir string) (*Config, error) {
	cfg := DefaultConfig()
	cfg.DataDir = dataDir

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}

			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}

			// Re-set dataDir since Unmarshal may have cleared it
			cfg.DataDir = dataDir
		}
	}

	vars, err := resolveVars(filepath.Dir(configPath), cfg.VarsFiles, cfg.Vars)
	if err != nil {
		return nil, err
	}
	cfg.Vars = vars

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.Theme == "" {
		c.Theme = defaults.Theme
	}
	if c.Clinic.Operator == "" {
		c.Clinic.Operator = defaults.Clinic.Operator
	}
	if c.List.PageSize == 0 {
		c.List.PageSize = defaults.List.PageSize
	}
	if c.List.DefaultTab == "" {
		c.List.DefaultTab = defaults.List.DefaultTab
	}
	if c.List.RefreshInterval == 0 {
		c.List.RefreshInterval = defaults.List.RefreshInterval
	}
	if c.FollowUp.DefaultMessage == "" {
		c.FollowUp.DefaultMessage = defaults.FollowUp.DefaultMessage
	}
	if c.FollowUp.CustomRepeats == nil {
		c.FollowUp.CustomRepeats = map[string]string{}
	}
	if c.Email.Domain == "" {
		c.Email.Domain = defaults.Email.Domain
	}
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = defaults.Database.MaxOpenConns
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = defaults.Database.MaxIdleConns
	}
	if c.Database.BusyTimeout == 0 {
		c.Database.BusyTimeout = defaults.Database.BusyTimeout
	}
	if c.Vars == nil {
		c.Vars = map[string]any{}
	}
}

// Validate checks that the configuration is structurally valid.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data directory cannot be empty")
	}

	if _, ok := styles.GetPalette(c.Theme); !ok {
		return fmt.Errorf("unknown theme %q, expected one of %v", c.Theme, styles.ThemeNames())
	}

	if !listing.ValidPageSize(c.List.PageSize) {
		return fmt.Errorf("list.page_size must be one of %v", listing.PageSizes)
	}

	if _, err := billing.ParseKind(c.List.DefaultTab); err != nil {
		return fmt.Errorf("list.default_tab: %w", err)
	}

	if c.Database.MaxOpenConns < 1 {
		return fmt.Errorf("database.max_open_conns must be at least 1")
	}
	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.max_idle_conns cannot be negative")
	}
	if c.Database.BusyTimeout < 0 {
		return fmt.Errorf("database.busy_timeout cannot be negative")
	}

	for label := range c.FollowUp.CustomRepeats {
		if slices.ContainsFunc(billing.RepeatOptions, func(o billing.RepeatOption) bool { return o.Label == label }) {
			return fmt.Errorf("followup.custom_repeats: %q shadows a built-in repeat frequency", label)
		}
	}

	return nil
}

// DefaultKind returns the tab the dashboard opens on.
func (c *Config) DefaultKind() billing.Kind {
	k, err := billing.ParseKind(c.List.DefaultTab)
	if err != nil {
		return billing.KindPatient
	}
	return k
}

// RepeatLabels returns the built-in repeat labels followed by the custom
// ones in sorted order.
func (c *Config) RepeatLabels() []string {
	labels := make([]string, 0, len(billing.RepeatOptions)+len(c.FollowUp.CustomRepeats))
	for _, o := range billing.RepeatOptions {
		labels = append(labels, o.Label)
	}
	custom := make([]string, 0, len(c.FollowUp.CustomRepeats))
	for label := range c.FollowUp.CustomRepeats {
		custom = append(custom, label)
	}
	slices.Sort(custom)
	return append(labels, custom...)
}

// DBDir returns the directory holding the SQLite database.
func (c *Config) DBDir() string {
	return c.DataDir
}

// LogFile returns the default log file path.
func (c *Config) LogFile() string {
	return filepath.Join(c.DataDir, "remit.log")
}

// ExportDir returns the directory PDF statements are written to.
func (c *Config) ExportDir() string {
	return filepath.Join(c.DataDir, "exports")
}
