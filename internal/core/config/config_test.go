package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/remit/internal/core/billing"
)

func writeTestFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o644)
}

func TestLoad_Defaults(t *testing.T) {
	dataDir := t.TempDir()

	cfg, err := Load("", dataDir)
	require.NoError(t, err)
	assert.Equal(t, dataDir, cfg.DataDir)
	assert.Equal(t, 10, cfg.List.PageSize)
	assert.Equal(t, billing.KindPatient, cfg.DefaultKind())
	assert.Equal(t, billing.DefaultMessage, cfg.FollowUp.DefaultMessage)
	assert.Equal(t, filepath.Join(dataDir, "remit.log"), cfg.LogFile())
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Theme, cfg.Theme)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, writeTestFile(path, `
theme: gruvbox
clinic:
  name: Harbour Physio
list:
  page_size: 25
  default_tab: workcover
  refresh_interval: 1m
sequence:
  max_attempts: 5
  skip_weekends: false
followup:
  custom_repeats:
    Weekday mornings: "0 9 * * 1-5"
`))

	cfg, err := Load(path, dir)
	require.NoError(t, err)
	assert.Equal(t, "gruvbox", cfg.Theme)
	assert.Equal(t, "Harbour Physio", cfg.Clinic.Name)
	assert.Equal(t, "Reception", cfg.Clinic.Operator, "zero value falls back to default")
	assert.Equal(t, 25, cfg.List.PageSize)
	assert.Equal(t, billing.KindWorkcover, cfg.DefaultKind())
	assert.Equal(t, time.Minute, cfg.List.RefreshInterval)
	assert.Equal(t, 2, cfg.Database.MaxOpenConns)

	rule := cfg.Sequence.Rule("INV-1")
	assert.Equal(t, 9, rule.InitialDelayDays)
	assert.Equal(t, 5, rule.MaxAttempts)
	assert.False(t, rule.SkipWeekends)

	labels := cfg.RepeatLabels()
	assert.Equal(t, billing.RepeatNever, labels[0])
	assert.Equal(t, "Weekday mornings", labels[len(labels)-1])
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{"page size", "list:\n  page_size: 7\n", "list.page_size"},
		{"theme", "theme: neon\n", "unknown theme"},
		{"tab", "list:\n  default_tab: dental\n", "list.default_tab"},
		{"repeat shadow", "followup:\n  custom_repeats:\n    Every day: \"@daily\"\n", "shadows"},
		{"yaml", "list: [", "parse config file"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			path := filepath.Join(dir, "config.yaml")
			require.NoError(t, writeTestFile(path, tt.yaml))

			_, err := Load(path, dir)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_VarsFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, writeTestFile(filepath.Join(dir, "clinic.yaml"), "phone: 555-0100\nsignoff: Thanks\n"))
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, writeTestFile(path, "vars_files: [clinic.yaml]\nvars:\n  signoff: Cheers\n"))

	cfg, err := Load(path, dir)
	require.NoError(t, err)
	assert.Equal(t, "555-0100", cfg.Vars["phone"])
	assert.Equal(t, "Cheers", cfg.Vars["signoff"], "inline vars win")
}

func TestLoad_EmptyDataDir(t *testing.T) {
	_, err := Load("", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "data directory")
}
