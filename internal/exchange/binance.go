package exchange

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	ccxt "github.com/ccxt/ccxt/go/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/life2you_mini/fundmon/internal/model"
)

// BinanceClient 币安永续合约数据客户端
type BinanceClient struct {
	exchange     *ccxt.Binance
	logger       *zap.Logger
	eventsPerDay int
}

// BinanceOptions 币安客户端配置
type BinanceOptions struct {
	APIKey              string
	APISecret           string
	Testnet             bool
	FundingEventsPerDay int
}

// NewBinanceClient 创建新的币安客户端
// API密钥可选，公共行情接口无需鉴权
func NewBinanceClient(opts BinanceOptions, logger *zap.Logger) *BinanceClient {
	ccxtOptions := map[string]interface{}{
		"enableRateLimit": true,
		"options": map[string]interface{}{
			"defaultType": "future", // 使用合约API
		},
	}

	if opts.APIKey != "" && opts.APISecret != "" {
		ccxtOptions["apiKey"] = opts.APIKey
		ccxtOptions["secret"] = opts.APISecret
	}
	if opts.Testnet {
		ccxtOptions["sandbox"] = true
	}

	binanceInstance := ccxt.NewBinance(ccxtOptions)

	// 加载市场信息
	<-binanceInstance.LoadMarkets()
	logger.Info("Binance市场数据加载完成")

	return &BinanceClient{
		exchange:     binanceInstance,
		logger:       logger,
		eventsPerDay: opts.FundingEventsPerDay,
	}
}

// FetchFundingRates 获取指定交易对的资金费率
// 单个交易对失败只记录警告并跳过，不中断整批抓取
func (b *BinanceClient) FetchFundingRates(ctx context.Context, symbols []string) ([]model.FundingRow, error) {
	rows := make([]model.FundingRow, 0, len(symbols))
	now := time.Now().UTC()

	for _, symbol := range symbols {
		fundingRateData, err := b.exchange.FetchFundingRate(formatBinanceSymbol(symbol))
		if err != nil {
			b.logger.Warn("获取资金费率失败",
				zap.String("symbol", symbol),
				zap.Error(err))
			continue
		}

		rate, err := parseRequiredFloat((*fundingRateData)["fundingRate"])
		if err != nil {
			b.logger.Warn("解析资金费率失败",
				zap.String("symbol", symbol),
				zap.Error(err))
			continue
		}

		// 结算时间缺失时按8小时周期估算
		fundingTime := now.Add(8 * time.Hour)
		if ms, ok := (*fundingRateData)["fundingTimestamp"].(int64); ok {
			fundingTime = time.UnixMilli(ms).UTC()
		}

		rows = append(rows, model.FundingRow{
			Symbol:         symbol,
			BaseCurrency:   model.BaseCurrencyOf(symbol),
			FundingRate:    rate,
			AnnualizedRate: AnnualizedRate(rate, b.eventsPerDay),
			FundingTime:    fundingTime,
			Timestamp:      now,
		})
	}

	b.logger.Info("资金费率获取完成",
		zap.Int("requested", len(symbols)),
		zap.Int("fetched", len(rows)))
	return rows, nil
}

// FetchOpenInterest 获取指定交易对的未平仓合约数据
// 美元价值 = 合约数量 * 标记价格，标记价格取最新成交价
func (b *BinanceClient) FetchOpenInterest(ctx context.Context, symbols []string) ([]model.OpenInterestRow, error) {
	rows := make([]model.OpenInterestRow, 0, len(symbols))
	now := time.Now().UTC()

	for _, symbol := range symbols {
		formattedSymbol := formatBinanceSymbol(symbol)

		oiData, err := b.exchange.FetchOpenInterest(formattedSymbol)
		if err != nil {
			b.logger.Warn("获取未平仓合约失败",
				zap.String("symbol", symbol),
				zap.Error(err))
			continue
		}

		ticker, err := b.exchange.FetchTicker(formattedSymbol)
		if err != nil {
			b.logger.Warn("获取标记价格失败",
				zap.String("symbol", symbol),
				zap.Error(err))
			continue
		}

		openInterest := parseFloat((*oiData)["openInterestAmount"])
		markPrice := parseFloat((*ticker)["last"])

		// 用decimal计算美元名义价值，避免大数相乘的浮点漂移
		openInterestUSD := decimal.NewFromFloat(openInterest).
			Mul(decimal.NewFromFloat(markPrice)).
			InexactFloat64()

		rows = append(rows, model.OpenInterestRow{
			Symbol:          symbol,
			BaseCurrency:    model.BaseCurrencyOf(symbol),
			OpenInterest:    openInterest,
			OpenInterestUSD: openInterestUSD,
			MarkPrice:       markPrice,
			Timestamp:       now,
		})
	}

	b.logger.Info("未平仓合约获取完成",
		zap.Int("requested", len(symbols)),
		zap.Int("fetched", len(rows)))
	return rows, nil
}

// FetchPrices 获取指定交易对的价格数据
func (b *BinanceClient) FetchPrices(ctx context.Context, symbols []string) ([]model.PriceRow, error) {
	rows := make([]model.PriceRow, 0, len(symbols))
	now := time.Now().UTC()

	for _, symbol := range symbols {
		ticker, err := b.exchange.FetchTicker(formatBinanceSymbol(symbol))
		if err != nil {
			b.logger.Warn("获取价格数据失败",
				zap.String("symbol", symbol),
				zap.Error(err))
			continue
		}

		rows = append(rows, model.PriceRow{
			Symbol:           symbol,
			BaseCurrency:     model.BaseCurrencyOf(symbol),
			Price:            parseFloat((*ticker)["last"]),
			Change24h:        parseFloat((*ticker)["change"]),
			Change24hPercent: parseFloat((*ticker)["percentage"]),
			Volume24h:        parseFloat((*ticker)["baseVolume"]),
			Timestamp:        now,
		})
	}

	b.logger.Info("价格数据获取完成",
		zap.Int("requested", len(symbols)),
		zap.Int("fetched", len(rows)))
	return rows, nil
}

// 辅助函数：将BTC/USDT:USDT格式的交易对转换为Binance合约使用的格式
func formatBinanceSymbol(symbol string) string {
	// 去掉结算币种后缀，币安合约使用BTCUSDT格式（不带斜杠）
	if i := strings.Index(symbol, ":"); i >= 0 {
		symbol = symbol[:i]
	}
	return strings.ReplaceAll(symbol, "/", "")
}

// parseRequiredFloat 解析CCXT返回的必填数值字段
func parseRequiredFloat(v interface{}) (float64, error) {
	if v == nil {
		return 0, fmt.Errorf("字段缺失")
	}
	return strconv.ParseFloat(fmt.Sprintf("%v", v), 64)
}

// parseFloat 解析CCXT返回的可选数值字段，缺失或格式错误时返回0
func parseFloat(v interface{}) float64 {
	if v == nil {
		return 0
	}
	f, err := strconv.ParseFloat(fmt.Sprintf("%v", v), 64)
	if err != nil {
		return 0
	}
	return f
}
