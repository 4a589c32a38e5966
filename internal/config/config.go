package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/life2you_mini/fundmon/internal/analysis"
	"github.com/life2you_mini/fundmon/internal/exchange"
)

// Config 应用配置结构
type Config struct {
	Exchange     ExchangeConfig     `mapstructure:"exchange" yaml:"exchange"`
	Monitor      MonitorConfig      `mapstructure:"monitor" yaml:"monitor"`
	Thresholds   ThresholdsConfig   `mapstructure:"thresholds" yaml:"thresholds"`
	System       SystemConfig       `mapstructure:"system" yaml:"system"`
	Redis        RedisConfig        `mapstructure:"redis" yaml:"redis"`
	Notification NotificationConfig `mapstructure:"notification" yaml:"notification"`
}

// ExchangeConfig 交易所配置
type ExchangeConfig struct {
	APIKey    string `mapstructure:"api_key" yaml:"api_key"`       // 可选，公共行情无需鉴权
	APISecret string `mapstructure:"api_secret" yaml:"api_secret"` // 可选
	Testnet   bool   `mapstructure:"testnet" yaml:"testnet"`
}

// MonitorConfig 监控配置
type MonitorConfig struct {
	Symbols []string `mapstructure:"symbols" yaml:"symbols"`
}

// ThresholdsConfig 阈值表配置
type ThresholdsConfig struct {
	Funding      map[string]FundingBandsConfig `mapstructure:"funding" yaml:"funding"`
	OpenInterest map[string]OIBandsConfig      `mapstructure:"open_interest" yaml:"open_interest"`
}

// FundingBandsConfig 单币种资金费率三档区间
type FundingBandsConfig struct {
	Normal     BandConfig `mapstructure:"normal" yaml:"normal"`
	Hot        BandConfig `mapstructure:"hot" yaml:"hot"`
	Overheated BandConfig `mapstructure:"overheated" yaml:"overheated"`
}

// BandConfig 单个费率区间
type BandConfig struct {
	Min float64 `mapstructure:"min" yaml:"min"`
	Max float64 `mapstructure:"max" yaml:"max"`
}

// OIBandsConfig 单币种未平仓合约阈值（百万美元）
type OIBandsConfig struct {
	Low  float64 `mapstructure:"low" yaml:"low"`
	High float64 `mapstructure:"high" yaml:"high"`
}

// SystemConfig 系统配置
type SystemConfig struct {
	LogLevel            string `mapstructure:"log_level" yaml:"log_level"`
	DataDir             string `mapstructure:"data_dir" yaml:"data_dir"`
	LogDir              string `mapstructure:"log_dir" yaml:"log_dir"`
	FundingEventsPerDay int    `mapstructure:"funding_events_per_day" yaml:"funding_events_per_day"`
}

// RedisConfig Redis快照缓存配置
type RedisConfig struct {
	Enabled   bool   `mapstructure:"enabled" yaml:"enabled"`
	Host      string `mapstructure:"host" yaml:"host"`
	Port      int    `mapstructure:"port" yaml:"port"`
	Password  string `mapstructure:"password" yaml:"password"`
	DB        int    `mapstructure:"db" yaml:"db"`
	KeyPrefix string `mapstructure:"key_prefix" yaml:"key_prefix"`
}

// NotificationConfig 通知配置
type NotificationConfig struct {
	Telegram TelegramConfig `mapstructure:"telegram" yaml:"telegram"`
	Discord  DiscordConfig  `mapstructure:"discord" yaml:"discord"`
}

// TelegramConfig Telegram配置，token与chat_id任一缺失即禁用该渠道
type TelegramConfig struct {
	BotToken string `mapstructure:"bot_token" yaml:"bot_token"`
	ChatID   string `mapstructure:"chat_id" yaml:"chat_id"`
}

// DiscordConfig Discord webhook配置，URL缺失即禁用该渠道
type DiscordConfig struct {
	WebhookURL string `mapstructure:"webhook_url" yaml:"webhook_url"`
}

// LoadConfig 从文件加载配置
func LoadConfig(filePath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(filePath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	// 绑定环境变量，允许从环境变量覆盖配置
	v.AutomaticEnv()
	v.SetEnvPrefix("FUNDMON")

	// 特定环境变量映射，存在时优先使用
	if apiKey := os.Getenv("BINANCE_API_KEY"); apiKey != "" {
		v.Set("exchange.api_key", apiKey)
	}
	if apiSecret := os.Getenv("BINANCE_API_SECRET"); apiSecret != "" {
		v.Set("exchange.api_secret", apiSecret)
	}
	if testnet := os.Getenv("BINANCE_TESTNET"); testnet == "true" {
		v.Set("exchange.testnet", true)
	}
	if token := os.Getenv("TELEGRAM_TOKEN"); token != "" {
		v.Set("notification.telegram.bot_token", token)
	}
	if chatID := os.Getenv("TELEGRAM_CHAT_ID"); chatID != "" {
		v.Set("notification.telegram.chat_id", chatID)
	}
	if webhook := os.Getenv("DISCORD_WEBHOOK_URL"); webhook != "" {
		v.Set("notification.discord.webhook_url", webhook)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	applyDefaults(&config)

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("配置验证失败: %w", err)
	}

	return &config, nil
}

// applyDefaults 填充缺省配置项
// viper读取后map键会被转成小写，这里统一还原为大写币种代码
func applyDefaults(config *Config) {
	if len(config.Thresholds.Funding) > 0 {
		funding := make(map[string]FundingBandsConfig, len(config.Thresholds.Funding))
		for currency, bands := range config.Thresholds.Funding {
			funding[strings.ToUpper(currency)] = bands
		}
		config.Thresholds.Funding = funding
	}
	if len(config.Thresholds.OpenInterest) > 0 {
		oi := make(map[string]OIBandsConfig, len(config.Thresholds.OpenInterest))
		for currency, bands := range config.Thresholds.OpenInterest {
			oi[strings.ToUpper(currency)] = bands
		}
		config.Thresholds.OpenInterest = oi
	}

	if len(config.Monitor.Symbols) == 0 {
		config.Monitor.Symbols = DefaultSymbols()
	}
	if config.System.LogLevel == "" {
		config.System.LogLevel = "info"
	}
	if config.System.DataDir == "" {
		config.System.DataDir = "data"
	}
	if config.System.LogDir == "" {
		config.System.LogDir = "logs"
	}
	if config.System.FundingEventsPerDay <= 0 {
		config.System.FundingEventsPerDay = exchange.DefaultFundingEventsPerDay
	}
	if config.Redis.KeyPrefix == "" {
		config.Redis.KeyPrefix = "fundmon:"
	}
}

// validateConfig 验证配置有效性
func validateConfig(config *Config) error {
	if len(config.Monitor.Symbols) == 0 {
		return fmt.Errorf("监控交易对列表不能为空")
	}

	if config.Redis.Enabled {
		if config.Redis.Host == "" {
			return fmt.Errorf("Redis已启用，但主机未配置")
		}
		if config.Redis.Port <= 0 || config.Redis.Port > 65535 {
			return fmt.Errorf("无效的Redis端口: %d", config.Redis.Port)
		}
	}

	for currency, bands := range config.Thresholds.Funding {
		if bands.Hot.Min > bands.Overheated.Min {
			return fmt.Errorf("币种%s的hot档下限高于overheated档下限", currency)
		}
	}
	for currency, bands := range config.Thresholds.OpenInterest {
		if bands.Low > bands.High {
			return fmt.Errorf("币种%s的OI低档阈值高于高档阈值", currency)
		}
	}

	return nil
}

// ThresholdTable 将阈值配置转换为分析器使用的阈值表
// 未配置的币种保留内置默认值
func (c *Config) ThresholdTable() *analysis.ThresholdTable {
	funding := analysis.DefaultFundingBands()
	for currency, bands := range c.Thresholds.Funding {
		funding[currency] = analysis.FundingBands{
			Normal:     analysis.Band{Min: bands.Normal.Min, Max: bands.Normal.Max},
			Hot:        analysis.Band{Min: bands.Hot.Min, Max: bands.Hot.Max},
			Overheated: analysis.Band{Min: bands.Overheated.Min, Max: bands.Overheated.Max},
		}
	}

	oi := analysis.DefaultOIBands()
	for currency, bands := range c.Thresholds.OpenInterest {
		oi[currency] = analysis.OIBands{Low: bands.Low, High: bands.High}
	}

	return analysis.NewThresholdTable(funding, oi)
}

// RedisAddr 拼接Redis地址
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}

// DefaultSymbols 默认监控的永续合约交易对
func DefaultSymbols() []string {
	return []string{
		"BTC/USDT:USDT",
		"ETH/USDT:USDT",
		"BNB/USDT:USDT",
		"ADA/USDT:USDT",
		"SOL/USDT:USDT",
		"DOGE/USDT:USDT",
		"XRP/USDT:USDT",
		"MATIC/USDT:USDT",
		"AVAX/USDT:USDT",
		"DOT/USDT:USDT",
	}
}

// GetDefaultConfig 获取默认配置（用于生成示例配置）
func GetDefaultConfig() *Config {
	fundingBands := make(map[string]FundingBandsConfig)
	for currency, bands := range analysis.DefaultFundingBands() {
		fundingBands[currency] = FundingBandsConfig{
			Normal:     BandConfig{Min: bands.Normal.Min, Max: bands.Normal.Max},
			Hot:        BandConfig{Min: bands.Hot.Min, Max: bands.Hot.Max},
			Overheated: BandConfig{Min: bands.Overheated.Min, Max: bands.Overheated.Max},
		}
	}

	oiBands := make(map[string]OIBandsConfig)
	for currency, bands := range analysis.DefaultOIBands() {
		oiBands[currency] = OIBandsConfig{Low: bands.Low, High: bands.High}
	}

	return &Config{
		Monitor: MonitorConfig{Symbols: DefaultSymbols()},
		Thresholds: ThresholdsConfig{
			Funding:      fundingBands,
			OpenInterest: oiBands,
		},
		System: SystemConfig{
			LogLevel:            "info",
			DataDir:             "data",
			LogDir:              "logs",
			FundingEventsPerDay: exchange.DefaultFundingEventsPerDay,
		},
		Redis: RedisConfig{
			Host:      "localhost",
			Port:      6379,
			KeyPrefix: "fundmon:",
		},
	}
}

// SaveConfigToFile 将配置以YAML格式写入文件（不包含敏感信息）
func SaveConfigToFile(config *Config, filePath string) error {
	sanitized := *config
	sanitized.Exchange.APIKey = ""
	sanitized.Exchange.APISecret = ""
	sanitized.Notification.Telegram.BotToken = ""
	sanitized.Redis.Password = ""

	data, err := yaml.Marshal(&sanitized)
	if err != nil {
		return fmt.Errorf("序列化配置失败: %w", err)
	}

	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return fmt.Errorf("写入配置文件失败: %w", err)
	}
	return nil
}
