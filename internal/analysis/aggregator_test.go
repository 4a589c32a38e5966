package analysis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/life2you_mini/fundmon/internal/model"
)

func newTestAnalyzer() *Analyzer {
	return NewAnalyzer(NewThresholdTable(DefaultFundingBands(), DefaultOIBands()))
}

func TestAnalyzeFunding(t *testing.T) {
	analyzer := newTestAnalyzer()
	now := time.Now().UTC()

	rows := []model.FundingRow{
		{
			Symbol:         "BTC/USDT:USDT",
			BaseCurrency:   "BTC",
			FundingRate:    0.0012,
			AnnualizedRate: 1.314,
			Timestamp:      now,
		},
	}

	results := analyzer.AnalyzeFunding(rows)
	require.Len(t, results, 1)

	got := results["BTC/USDT:USDT"]
	assert.Equal(t, "BTC", got.BaseCurrency)
	assert.InDelta(t, 0.12, got.FundingRatePercent, 1e-9)
	assert.InDelta(t, 131.4, got.AnnualizedRatePercent, 1e-9)
	assert.Equal(t, model.FundingStatusOverheated, got.Status)
	assert.Equal(t, model.RiskLevelOverheated, got.RiskLevel)
	assert.Contains(t, got.Signal, "long crowding")
	assert.Equal(t, now, got.Timestamp)
}

func TestAnalyzeOpenInterest(t *testing.T) {
	analyzer := newTestAnalyzer()

	rows := []model.OpenInterestRow{
		{
			Symbol:          "ETH/USDT:USDT",
			BaseCurrency:    "ETH",
			OpenInterest:    500_000,
			OpenInterestUSD: 1_500_000_000,
			MarkPrice:       3000,
		},
	}

	results := analyzer.AnalyzeOpenInterest(rows)
	require.Len(t, results, 1)

	got := results["ETH/USDT:USDT"]
	assert.InDelta(t, 1500, got.OpenInterestUSDMillions, 1e-9)
	assert.Equal(t, model.OIStatusMedium, got.Status)
}

// TestCombine_Empty 两侧输入均为空时返回空映射
func TestCombine_Empty(t *testing.T) {
	analyzer := newTestAnalyzer()

	combined := analyzer.Combine(
		map[string]model.FundingAnalysis{},
		map[string]model.OpenInterestAnalysis{},
		nil,
	)
	assert.Empty(t, combined)
}

// TestCombine_FundingOnly 未平仓数据缺失时相关字段填零值与unknown
func TestCombine_FundingOnly(t *testing.T) {
	analyzer := newTestAnalyzer()

	funding := analyzer.AnalyzeFunding([]model.FundingRow{
		{Symbol: "BTC/USDT:USDT", BaseCurrency: "BTC", FundingRate: 0.0001},
	})

	combined := analyzer.Combine(funding, map[string]model.OpenInterestAnalysis{}, nil)
	require.Len(t, combined, 1)

	got := combined["BTC/USDT:USDT"]
	assert.Equal(t, model.StatusUnknown, got.OIStatus)
	assert.Zero(t, got.OIUSDMillions)
	assert.Zero(t, got.Price)
	assert.Zero(t, got.PriceChange24hPercent)
	assert.Equal(t, SignalMarketNormal, got.CombinedSignal)
}

// TestCombine_OIOnly 资金费率数据缺失时相关字段填零值与unknown
func TestCombine_OIOnly(t *testing.T) {
	analyzer := newTestAnalyzer()

	oi := analyzer.AnalyzeOpenInterest([]model.OpenInterestRow{
		{Symbol: "ETH/USDT:USDT", BaseCurrency: "ETH", OpenInterestUSD: 100_000_000},
	})

	combined := analyzer.Combine(map[string]model.FundingAnalysis{}, oi, nil)
	require.Len(t, combined, 1)

	got := combined["ETH/USDT:USDT"]
	assert.Equal(t, model.StatusUnknown, got.FundingStatus)
	assert.Zero(t, got.FundingRiskLevel)
	assert.Zero(t, got.FundingRatePercent)
	// 基础币种从交易对名称推导
	assert.Equal(t, "ETH", got.BaseCurrency)
}

// TestCombine_PriceOnlyDropped 仅有价格数据的交易对不产生记录
func TestCombine_PriceOnlyDropped(t *testing.T) {
	analyzer := newTestAnalyzer()

	funding := analyzer.AnalyzeFunding([]model.FundingRow{
		{Symbol: "BTC/USDT:USDT", BaseCurrency: "BTC", FundingRate: 0.0001},
	})
	prices := []model.PriceRow{
		{Symbol: "BTC/USDT:USDT", Price: 60000, Change24hPercent: 1.5},
		{Symbol: "SOL/USDT:USDT", Price: 150, Change24hPercent: 9.9},
	}

	combined := analyzer.Combine(funding, map[string]model.OpenInterestAnalysis{}, prices)
	require.Len(t, combined, 1)
	assert.NotContains(t, combined, "SOL/USDT:USDT")
	assert.Equal(t, float64(60000), combined["BTC/USDT:USDT"].Price)
}

func TestCombine_Signal(t *testing.T) {
	analyzer := newTestAnalyzer()

	tests := []struct {
		name           string
		fundingRate    float64
		oiUSD          float64
		priceChange    float64
		expectedSignal string
	}{
		{
			name:           "三个维度同时触发",
			fundingRate:    0.0012,        // BTC overheated
			oiUSD:          6_000_000_000, // 6000M >= high 5000M
			priceChange:    7.2,
			expectedSignal: "funding rate overheated (long crowding) | open interest elevated | price large rise(+7.20%)",
		},
		{
			name:           "负费率过热",
			fundingRate:    -0.0015,
			oiUSD:          100_000_000,
			priceChange:    0,
			expectedSignal: "funding rate overcold (short crowding)",
		},
		{
			name:           "价格大幅下跌",
			fundingRate:    0.0001,
			oiUSD:          100_000_000,
			priceChange:    -6.5,
			expectedSignal: "price large fall(-6.50%)",
		},
		{
			name:           "偏热不贡献信号",
			fundingRate:    0.0006,        // BTC hot
			oiUSD:          2_000_000_000, // 2000M medium
			priceChange:    5.0,           // 正好在阈值上，不触发
			expectedSignal: SignalMarketNormal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			funding := analyzer.AnalyzeFunding([]model.FundingRow{
				{Symbol: "BTC/USDT:USDT", BaseCurrency: "BTC", FundingRate: tt.fundingRate},
			})
			oi := analyzer.AnalyzeOpenInterest([]model.OpenInterestRow{
				{Symbol: "BTC/USDT:USDT", BaseCurrency: "BTC", OpenInterestUSD: tt.oiUSD},
			})
			prices := []model.PriceRow{
				{Symbol: "BTC/USDT:USDT", BaseCurrency: "BTC", Change24hPercent: tt.priceChange},
			}

			combined := analyzer.Combine(funding, oi, prices)
			require.Len(t, combined, 1)
			assert.Equal(t, tt.expectedSignal, combined["BTC/USDT:USDT"].CombinedSignal)
		})
	}
}
