package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load("", t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "briefing", cfg.Namespace)
	assert.Equal(t, 30, cfg.RetentionDays)
	assert.Equal(t, 32, cfg.Session.LedgerSize)
	assert.True(t, cfg.Engagement.Enabled)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "briefly.yml")
	content := `
namespace: inbox
retention_days: 7
database:
  busy_timeout_ms: 250
vip_senders:
  - "boss@corp.test"
  - "*@board.corp.test"
muted_senders:
  - "news@*"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path, dir)
	require.NoError(t, err)

	assert.Equal(t, "inbox", cfg.Namespace)
	assert.Equal(t, 7, cfg.RetentionDays)
	assert.Equal(t, 250, cfg.Database.BusyTimeoutMS)
	assert.Len(t, cfg.VIPSenders, 2)

	// Unset values still default.
	assert.Equal(t, 1, cfg.Database.MaxOpenConns)
	assert.Equal(t, 32, cfg.Session.LedgerSize)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{
			name:   "defaults are valid",
			mutate: func(c *Config) {},
		},
		{
			name:    "empty data dir",
			mutate:  func(c *Config) { c.DataDir = "" },
			wantErr: "data directory",
		},
		{
			name:    "namespace with colon",
			mutate:  func(c *Config) { c.Namespace = "brief:ing" },
			wantErr: "cannot contain",
		},
		{
			name:    "zero retention",
			mutate:  func(c *Config) { c.RetentionDays = -1 },
			wantErr: "retention_days",
		},
		{
			name:    "zero ledger",
			mutate:  func(c *Config) { c.Session.LedgerSize = -1 },
			wantErr: "ledger_size",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.DataDir = t.TempDir()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateDeep_BadPattern(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DataDir = t.TempDir()
	cfg.VIPSenders = []string{"[invalid"}

	err := cfg.ValidateDeep("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "vip_senders[0]")
}

func TestValidateDeep_ConfigPathIsDirectory(t *testing.T) {
	dir := t.TempDir()

	cfg := DefaultConfig()
	cfg.DataDir = dir

	err := cfg.ValidateDeep(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "directory, not a file")
}

func TestWarnings(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DataDir = t.TempDir()
	cfg.VIPSenders = []string{"news@*"}
	cfg.MutedSenders = []string{"news@*"}
	cfg.RetentionDays = 400

	warnings := cfg.Warnings()
	require.Len(t, warnings, 2)
	assert.Equal(t, "Senders", warnings[0].Category)
	assert.Equal(t, "Retention", warnings[1].Category)
}

func TestMatchesAny(t *testing.T) {
	patterns := []string{"*@board.corp.test", "boss@corp.test"}

	assert.True(t, MatchesAny(patterns, "chair@board.corp.test"))
	assert.True(t, MatchesAny(patterns, "boss@corp.test"))
	assert.False(t, MatchesAny(patterns, "peer@corp.test"))
	assert.False(t, MatchesAny(nil, "anyone@corp.test"))
}
