package model

import (
	"strings"
	"time"
)

// 资金费率状态
const (
	FundingStatusNormal     = "normal"
	FundingStatusHot        = "hot"
	FundingStatusOverheated = "overheated"
)

// 未平仓合约状态
const (
	OIStatusLow    = "low"
	OIStatusMedium = "medium"
	OIStatusHigh   = "high"
)

// StatusUnknown 缺失数据时的状态占位值
const StatusUnknown = "unknown"

// 资金费率风险等级，只取1/3/5三档
const (
	RiskLevelNormal     = 1
	RiskLevelHot        = 3
	RiskLevelOverheated = 5
)

// PriorityHigh 警报优先级，当前策略下所有警报均为高优先级
const PriorityHigh = "high"

// FundingRow 单个交易对的资金费率抓取行
type FundingRow struct {
	Symbol         string    `json:"symbol"`          // 交易对，如 BTC/USDT:USDT
	BaseCurrency   string    `json:"base_currency"`   // 基础币种，如 BTC
	FundingRate    float64   `json:"funding_rate"`    // 资金费率（小数，0.0003 = 0.03%）
	AnnualizedRate float64   `json:"annualized_rate"` // 年化费率（小数）
	FundingTime    time.Time `json:"funding_time"`    // 费率结算时间
	Timestamp      time.Time `json:"timestamp"`       // 抓取时间
}

// OpenInterestRow 单个交易对的未平仓合约抓取行
type OpenInterestRow struct {
	Symbol          string    `json:"symbol"`
	BaseCurrency    string    `json:"base_currency"`
	OpenInterest    float64   `json:"open_interest"`     // 未平仓合约数量（币本位）
	OpenInterestUSD float64   `json:"open_interest_usd"` // 未平仓合约美元价值
	MarkPrice       float64   `json:"mark_price"`        // 标记价格
	Timestamp       time.Time `json:"timestamp"`
}

// PriceRow 单个交易对的价格抓取行
type PriceRow struct {
	Symbol           string    `json:"symbol"`
	BaseCurrency     string    `json:"base_currency"`
	Price            float64   `json:"price"`              // 最新价格
	Change24h        float64   `json:"change_24h"`         // 24小时价格变化
	Change24hPercent float64   `json:"change_24h_percent"` // 24小时变化百分比
	Volume24h        float64   `json:"volume_24h"`         // 24小时成交量
	Timestamp        time.Time `json:"timestamp"`
}

// FundingAnalysis 单个交易对的资金费率分析结果
type FundingAnalysis struct {
	Symbol                string    `json:"symbol"`
	BaseCurrency          string    `json:"base_currency"`
	FundingRate           float64   `json:"funding_rate"`
	FundingRatePercent    float64   `json:"funding_rate_percent"`
	AnnualizedRate        float64   `json:"annualized_rate"`
	AnnualizedRatePercent float64   `json:"annualized_rate_percent"`
	Status                string    `json:"status"`     // normal / hot / overheated
	RiskLevel             int       `json:"risk_level"` // 1 / 3 / 5
	Signal                string    `json:"signal"`
	Timestamp             time.Time `json:"timestamp"`
}

// OpenInterestAnalysis 单个交易对的未平仓合约分析结果
type OpenInterestAnalysis struct {
	Symbol                  string    `json:"symbol"`
	BaseCurrency            string    `json:"base_currency"`
	OpenInterest            float64   `json:"open_interest"`
	OpenInterestUSD         float64   `json:"open_interest_usd"`
	OpenInterestUSDMillions float64   `json:"open_interest_usd_millions"`
	MarkPrice               float64   `json:"mark_price"`
	Status                  string    `json:"oi_status"` // low / medium / high
	Timestamp               time.Time `json:"timestamp"`
}

// CombinedRecord 资金费率、未平仓合约与价格的综合分析记录
type CombinedRecord struct {
	Symbol                string    `json:"symbol"`
	BaseCurrency          string    `json:"base_currency"`
	FundingRatePercent    float64   `json:"funding_rate_percent"`
	FundingStatus         string    `json:"funding_status"`
	FundingRiskLevel      int       `json:"funding_risk_level"`
	OIUSDMillions         float64   `json:"oi_usd_millions"`
	OIStatus              string    `json:"oi_status"`
	Price                 float64   `json:"price"`
	PriceChange24hPercent float64   `json:"price_change_24h_percent"`
	CombinedSignal        string    `json:"combined_signal"`
	AnalysisTime          time.Time `json:"analysis_time"`
}

// AlertEntry 单条警报
type AlertEntry struct {
	Symbol             string  `json:"symbol"`
	BaseCurrency       string  `json:"base_currency"`
	FundingRatePercent float64 `json:"funding_rate_percent"`
	Status             string  `json:"status"`
	Signal             string  `json:"signal"`
	Priority           string  `json:"priority"`
}

// BaseCurrencyOf 从交易对中提取基础币种，如 BTC/USDT:USDT -> BTC
func BaseCurrencyOf(symbol string) string {
	if i := strings.Index(symbol, "/"); i >= 0 {
		return symbol[:i]
	}
	return symbol
}
