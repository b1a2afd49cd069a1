package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/hay-kot/criterio"
	"github.com/shopspring/decimal"

	"github.com/colonyops/remit/internal/core/billing"
)

// ValidationWarning represents a non-fatal configuration issue.
type ValidationWarning struct {
	Category string `json:"category"`
	Item     string `json:"item,omitempty"`
	Message  string `json:"message"`
}

// ValidateDeep performs comprehensive validation of the configuration including
// template syntax, cron specs and file accessibility. The configPath argument
// specifies the config file location to validate (empty string skips config file check).
// This calls Validate() first for basic structural validation.
func (c *Config) ValidateDeep(configPath string) error {
	if err := c.Validate(); err != nil {
		return err
	}

	return criterio.ValidateStruct(
		c.validateFileAccess(configPath),
		c.validateVarsFiles(configPath),
		c.validateFollowUp(),
		c.validateSequence(),
	)
}

// Warnings returns non-fatal configuration issues.
func (c *Config) Warnings() []ValidationWarning {
	var warnings []ValidationWarning

	if c.FollowUp.PaymentLink == "" {
		warnings = append(warnings, ValidationWarning{
			Category: "FollowUp",
			Item:     "payment_link",
			Message:  "no payment link configured, reminders will not include one",
		})
	}

	if c.Clinic.Name == "" || c.Clinic.Name == DefaultConfig().Clinic.Name {
		warnings = append(warnings, ValidationWarning{
			Category: "Clinic",
			Item:     "name",
			Message:  "clinic name is not set, statements will use a placeholder",
		})
	}

	return warnings
}

// validateFileAccess checks config file and data directory.
func (c *Config) validateFileAccess(configPath string) error {
	return criterio.ValidateStruct(
		validateConfigFile(configPath),
		criterio.Run("data_dir", c.DataDir, isDirectoryOrNotExist),
	)
}

func validateConfigFile(configPath string) error {
	if configPath == "" {
		return nil
	}

	info, err := os.Stat(configPath)
	if os.IsNotExist(err) {
		return nil // not found is fine, using defaults
	}
	if err != nil {
		return criterio.NewFieldErrors("config_file", fmt.Errorf("cannot access: %w", err))
	}
	if info.IsDir() {
		return criterio.NewFieldErrors("config_file", fmt.Errorf("%s is a directory, not a file", configPath))
	}
	return nil
}

// isDirectoryOrNotExist validates that a path is a directory or doesn't exist.
func isDirectoryOrNotExist(path string) error {
	if path == "" {
		return nil
	}
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil // will be created
	}
	if err != nil {
		return fmt.Errorf("cannot access: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("exists but is not a directory")
	}
	return nil
}

func (c *Config) validateVarsFiles(configPath string) error {
	var errs criterio.FieldErrorsBuilder
	for i, file := range c.VarsFiles {
		if _, err := os.Stat(varsPath(filepath.Dir(configPath), file)); err != nil {
			errs = errs.Append(fmt.Sprintf("vars_files[%d]", i), fmt.Errorf("file not found: %s", file))
		}
	}
	return errs.ToError()
}

// validateFollowUp checks the reminder template renders, custom repeat
// specs parse and the payment link is an absolute URL.
func (c *Config) validateFollowUp() error {
	var errs criterio.FieldErrorsBuilder

	if _, err := billing.RenderMessage(c.FollowUp.DefaultMessage, c.sampleMessageData()); err != nil {
		errs = errs.Append("followup.default_message", fmt.Errorf("template error: %w", err))
	}

	for label := range c.FollowUp.CustomRepeats {
		if _, err := billing.RepeatSchedule(label, c.FollowUp.CustomRepeats); err != nil {
			errs = errs.Append(fmt.Sprintf("followup.custom_repeats[%q]", label), err)
		}
	}

	if c.FollowUp.PaymentLink != "" {
		u, err := url.Parse(c.FollowUp.PaymentLink)
		if err != nil || u.Scheme == "" || u.Host == "" {
			errs = errs.Append("followup.payment_link", fmt.Errorf("must be an absolute URL"))
		}
	}

	return errs.ToError()
}

func (c *Config) validateSequence() error {
	if err := c.Sequence.Rule("config").Validate(); err != nil {
		return criterio.NewFieldErrors("sequence", err)
	}
	return nil
}

// sampleMessageData is placeholder data used to check the reminder
// template; only parse and field errors matter.
func (c *Config) sampleMessageData() billing.MessageData {
	inv := billing.Invoice{
		ID:          "INV-000",
		Patient:     "Test Patient",
		Provider:    "Dr. Test",
		Amount:      decimal.NewFromInt(100),
		Appointment: time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC),
	}
	data := billing.NewMessageData(inv, c.FollowUp.PaymentLink, c.Clinic.Name)
	data.Vars = c.Vars
	return data
}
