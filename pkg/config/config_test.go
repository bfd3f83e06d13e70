package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitConfigCreatesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	config, err := InitConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), config)
	assert.FileExists(t, path)

	reloaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), reloaded)
}

func TestLoadConfig(t *testing.T) {
	testCases := []struct {
		name    string
		content string
		want    func(c *Config)
	}{
		{
			name: "full file",
			content: `
[report]
hide_trivial = true
add_translations = true
progress = true
workers = 4

[output]
format = "msgpack"
indent = 0

[log]
level = "debug"
`,
			want: func(c *Config) {
				c.Report = ReportConfig{HideTrivial: true, AddTranslations: true, Progress: true, Workers: 4}
				c.Output = OutputConfig{Format: "msgpack", Indent: 0}
				c.Log.Level = "debug"
			},
		},
		{
			name: "missing keys keep defaults",
			content: `
[report]
workers = 2
`,
			want: func(c *Config) {
				c.Report.Workers = 2
			},
		},
		{
			name: "mistyped value is recovered key by key",
			content: `
[report]
hide_trivial = true
workers = "four"

[output]
indent = 4
`,
			want: func(c *Config) {
				c.Report.HideTrivial = true
				c.Output.Indent = 4
			},
		},
		{
			name:    "unparseable file falls back to defaults",
			content: `[report`,
			want:    func(c *Config) {},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			require.NoError(t, os.WriteFile(path, []byte(tc.content), 0644))

			got, err := LoadConfig(path)
			require.NoError(t, err)

			want := DefaultConfig()
			tc.want(want)
			assert.Equal(t, want, got)
		})
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("STROKECHECK_WORKERS", "8")
	t.Setenv("STROKECHECK_FORMAT", "msgpack")
	t.Setenv("STROKECHECK_HIDE_TRIVIAL", "true")

	config := DefaultConfig()
	config.Log.Level = "info"
	require.NoError(t, ApplyEnv(config))

	assert.Equal(t, 8, config.Report.Workers)
	assert.Equal(t, "msgpack", config.Output.Format)
	assert.True(t, config.Report.HideTrivial)
	assert.Equal(t, "info", config.Log.Level, "unset variables keep file values")
	assert.Equal(t, 2, config.Output.Indent)
}

func TestApplyEnvRejectsBadValue(t *testing.T) {
	t.Setenv("STROKECHECK_WORKERS", "many")
	assert.Error(t, ApplyEnv(DefaultConfig()))
}

func TestLoadConfigWithPriorityCustomPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.toml")
	require.NoError(t, os.WriteFile(path, []byte("[output]\nindent = 8\n"), 0644))
	t.Setenv("STROKECHECK_INDENT", "3")

	config, used, err := LoadConfigWithPriority(path)
	require.NoError(t, err)
	assert.Equal(t, path, used)
	assert.Equal(t, 3, config.Output.Indent, "environment overrides the file")
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"zero workers", func(c *Config) { c.Report.Workers = 0 }, true},
		{"unknown format", func(c *Config) { c.Output.Format = "yaml" }, true},
		{"negative indent", func(c *Config) { c.Output.Indent = -1 }, true},
		{"unknown level", func(c *Config) { c.Log.Level = "loud" }, true},
		{"many workers", func(c *Config) { c.Report.Workers = 32 }, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c := DefaultConfig()
			tc.mutate(c)
			err := c.Validate()
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
