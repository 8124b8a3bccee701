package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

const minimalConfig = `
source:
  url: https://signals.example/analyze
session:
  windows:
    - "07:00-15:00"
  excluded_weekdays:
    - saturday
    - sunday
notify:
  telegram:
    enabled: true
    bot_token: tok
    chat_id: "42"
`

func TestLoadMinimalAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalConfig))
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.App.LogLevel)
	assert.Equal(t, ":8080", cfg.App.HTTPAddr)
	assert.Equal(t, "binance", cfg.Price.Provider)
	assert.Equal(t, 15*time.Minute, cfg.TickInterval())
	assert.Equal(t, 24*time.Hour, cfg.Retention())
	assert.Equal(t, 15*time.Second, cfg.CallTimeout())
	assert.Equal(t, 4, cfg.Dispatch.MaxConcurrency)
	assert.Equal(t, "data/signals.db", cfg.Store.Path)
	assert.Equal(t, 21, cfg.Report.Hour)
	assert.True(t, cfg.Notify.Telegram.Enabled)
	assert.Equal(t, "42", cfg.Notify.Telegram.ChatID)
}

func TestLoadFullOverrides(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
app:
  log_level: debug
  http_addr: ":9000"
source:
  url: https://signals.example/analyze
  timeout_seconds: 30
price:
  provider: http
  url_template: "https://quotes.example/latest?symbol={pair}"
  quote_path: "rates.{pair}"
session:
  windows: ["23:00-06:00"]
dispatch:
  interval: 5m
  retention: none
  max_concurrency: 8
  run_immediately: true
store:
  path: /tmp/sig.db
report:
  enabled: true
  hour: 22
`))
	require.NoError(t, err)
	assert.Equal(t, 5*time.Minute, cfg.TickInterval())
	assert.Equal(t, time.Duration(0), cfg.Retention(), "none means never expire")
	assert.Equal(t, 8, cfg.Dispatch.MaxConcurrency)
	assert.True(t, cfg.Dispatch.RunImmediately)
	assert.Equal(t, "http", cfg.Price.Provider)
	assert.True(t, cfg.Report.Enabled)
	assert.Equal(t, 22, cfg.Report.Hour)
}

func TestLoadRejectsBadConfigs(t *testing.T) {
	cases := map[string]string{
		"missing source url": `
session:
  windows: ["07:00-10:00"]
`,
		"no session windows": `
source:
  url: https://x
`,
		"bad window": `
source:
  url: https://x
session:
  windows: ["7-10"]
`,
		"unknown provider": `
source:
  url: https://x
price:
  provider: carrier-pigeon
session:
  windows: ["07:00-10:00"]
`,
		"http provider without template": `
source:
  url: https://x
price:
  provider: http
session:
  windows: ["07:00-10:00"]
`,
		"bad interval": `
source:
  url: https://x
session:
  windows: ["07:00-10:00"]
dispatch:
  interval: often
`,
		"bad retention": `
source:
  url: https://x
session:
  windows: ["07:00-10:00"]
dispatch:
  retention: whenever
`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, body))
			assert.Error(t, err)
		})
	}
}

func TestLoadSessionFileSkipsInlineValidation(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
source:
  url: https://x
session:
  file: configs/sessions.yaml
`))
	require.NoError(t, err)
	assert.Equal(t, "configs/sessions.yaml", cfg.Session.File)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
	_, err = Load("")
	assert.Error(t, err)
}
