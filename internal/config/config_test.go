package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/life2you_mini/fundmon/internal/analysis"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfigFile(t, `
exchange:
  testnet: true

monitor:
  symbols:
    - BTC/USDT:USDT
    - ETH/USDT:USDT

thresholds:
  funding:
    BTC:
      normal: { min: 0.0, max: 0.0003 }
      hot: { min: 0.0005, max: 0.001 }
      overheated: { min: 0.001, max: 999 }
  open_interest:
    BTC: { low: 1000, high: 5000 }

system:
  log_level: debug
  funding_events_per_day: 3

redis:
  enabled: true
  host: redis.internal
  port: 6380
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.True(t, cfg.Exchange.Testnet)
	assert.Equal(t, []string{"BTC/USDT:USDT", "ETH/USDT:USDT"}, cfg.Monitor.Symbols)
	assert.Equal(t, "debug", cfg.System.LogLevel)
	assert.Equal(t, 0.001, cfg.Thresholds.Funding["BTC"].Overheated.Min)
	assert.Equal(t, float64(5000), cfg.Thresholds.OpenInterest["BTC"].High)
	assert.Equal(t, "redis.internal:6380", cfg.RedisAddr())
}

// TestLoadConfig_Defaults 缺省项自动补齐
func TestLoadConfig_Defaults(t *testing.T) {
	path := writeConfigFile(t, `
system:
  log_level: ""
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, DefaultSymbols(), cfg.Monitor.Symbols)
	assert.Equal(t, "info", cfg.System.LogLevel)
	assert.Equal(t, "data", cfg.System.DataDir)
	assert.Equal(t, "logs", cfg.System.LogDir)
	assert.Equal(t, 3, cfg.System.FundingEventsPerDay)
	assert.Equal(t, "fundmon:", cfg.Redis.KeyPrefix)
}

// TestLoadConfig_EnvOverrides 环境变量覆盖文件配置
func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("BINANCE_API_KEY", "env-key")
	t.Setenv("BINANCE_API_SECRET", "env-secret")
	t.Setenv("BINANCE_TESTNET", "true")
	t.Setenv("TELEGRAM_TOKEN", "env-token")
	t.Setenv("TELEGRAM_CHAT_ID", "123456")
	t.Setenv("DISCORD_WEBHOOK_URL", "https://discord.com/api/webhooks/1/abc")

	path := writeConfigFile(t, `
exchange:
  api_key: file-key
  testnet: false
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "env-key", cfg.Exchange.APIKey)
	assert.Equal(t, "env-secret", cfg.Exchange.APISecret)
	assert.True(t, cfg.Exchange.Testnet)
	assert.Equal(t, "env-token", cfg.Notification.Telegram.BotToken)
	assert.Equal(t, "123456", cfg.Notification.Telegram.ChatID)
	assert.Equal(t, "https://discord.com/api/webhooks/1/abc", cfg.Notification.Discord.WebhookURL)
}

func TestLoadConfig_Validation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		errMsg  string
	}{
		{
			name: "Redis启用但主机缺失",
			content: `
redis:
  enabled: true
  port: 6379
`,
			errMsg: "主机未配置",
		},
		{
			name: "Redis端口非法",
			content: `
redis:
  enabled: true
  host: localhost
  port: 70000
`,
			errMsg: "无效的Redis端口",
		},
		{
			name: "费率档位顺序颠倒",
			content: `
thresholds:
  funding:
    BTC:
      hot: { min: 0.01, max: 0.015 }
      overheated: { min: 0.001, max: 999 }
`,
			errMsg: "hot档下限高于overheated档下限",
		},
		{
			name: "OI阈值顺序颠倒",
			content: `
thresholds:
  open_interest:
    BTC: { low: 5000, high: 1000 }
`,
			errMsg: "低档阈值高于高档阈值",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfigFile(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestLoadConfig_FileMissing(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	require.Error(t, err)
}

// TestThresholdTable 配置转阈值表，未配置的币种保留内置默认值
func TestThresholdTable(t *testing.T) {
	cfg := &Config{
		Thresholds: ThresholdsConfig{
			Funding: map[string]FundingBandsConfig{
				"BTC": {
					Normal:     BandConfig{Min: 0, Max: 0.0001},
					Hot:        BandConfig{Min: 0.0002, Max: 0.0004},
					Overheated: BandConfig{Min: 0.0005, Max: 999},
				},
			},
			OpenInterest: map[string]OIBandsConfig{
				"BTC": {Low: 800, High: 4000},
			},
		},
	}

	table := cfg.ThresholdTable()

	assert.Equal(t, 0.0005, table.FundingBandsFor("BTC").Overheated.Min)
	assert.Equal(t, float64(4000), table.OIBandsFor("BTC").High)
	// ETH未在配置中覆盖，沿用内置默认
	assert.Equal(t, analysis.DefaultFundingBands()["ETH"], table.FundingBandsFor("ETH"))
	assert.Equal(t, analysis.DefaultOIBands()[analysis.DefaultCurrencyKey], table.OIBandsFor("PEPE"))
}

// TestSaveConfigToFile 写出的示例配置不含敏感信息且可回读
func TestSaveConfigToFile(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Exchange.APIKey = "secret-key"
	cfg.Exchange.APISecret = "secret"
	cfg.Notification.Telegram.BotToken = "token"
	cfg.Redis.Password = "pass"

	path := filepath.Join(t.TempDir(), "out.yaml")
	require.NoError(t, SaveConfigToFile(cfg, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "secret-key")
	assert.NotContains(t, string(data), "token")

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Empty(t, loaded.Exchange.APIKey)
	assert.Equal(t, DefaultSymbols(), loaded.Monitor.Symbols)
}
