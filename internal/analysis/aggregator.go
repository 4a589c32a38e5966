package analysis

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/life2you_mini/fundmon/internal/model"
)

// 综合信号常量
const (
	// SignalMarketNormal 各维度均无异常时的综合信号
	SignalMarketNormal = "market normal"
	// signalSeparator 各维度信号的拼接分隔符
	signalSeparator = " | "
	// priceChangeSignalThreshold 价格信号触发阈值（24小时变化百分比绝对值）
	priceChangeSignalThreshold = 5.0
)

// Analyzer 阈值分析器，持有不可变的阈值表
type Analyzer struct {
	thresholds *ThresholdTable
}

// NewAnalyzer 创建分析器
func NewAnalyzer(thresholds *ThresholdTable) *Analyzer {
	return &Analyzer{thresholds: thresholds}
}

// AnalyzeFunding 逐行分析资金费率数据，返回按交易对索引的分析结果
func (a *Analyzer) AnalyzeFunding(rows []model.FundingRow) map[string]model.FundingAnalysis {
	results := make(map[string]model.FundingAnalysis, len(rows))

	for _, row := range rows {
		bands := a.thresholds.FundingBandsFor(row.BaseCurrency)
		status, riskLevel, signal := ClassifyFunding(row.FundingRate, bands)

		results[row.Symbol] = model.FundingAnalysis{
			Symbol:                row.Symbol,
			BaseCurrency:          row.BaseCurrency,
			FundingRate:           row.FundingRate,
			FundingRatePercent:    row.FundingRate * 100,
			AnnualizedRate:        row.AnnualizedRate,
			AnnualizedRatePercent: row.AnnualizedRate * 100,
			Status:                status,
			RiskLevel:             riskLevel,
			Signal:                signal,
			Timestamp:             row.Timestamp,
		}
	}

	return results
}

// AnalyzeOpenInterest 逐行分析未平仓合约数据，返回按交易对索引的分析结果
func (a *Analyzer) AnalyzeOpenInterest(rows []model.OpenInterestRow) map[string]model.OpenInterestAnalysis {
	results := make(map[string]model.OpenInterestAnalysis, len(rows))

	for _, row := range rows {
		bands := a.thresholds.OIBandsFor(row.BaseCurrency)

		results[row.Symbol] = model.OpenInterestAnalysis{
			Symbol:                  row.Symbol,
			BaseCurrency:            row.BaseCurrency,
			OpenInterest:            row.OpenInterest,
			OpenInterestUSD:         row.OpenInterestUSD,
			OpenInterestUSDMillions: row.OpenInterestUSD / usdPerMillion,
			MarkPrice:               row.MarkPrice,
			Status:                  ClassifyOpenInterest(row.OpenInterestUSD, bands),
			Timestamp:               row.Timestamp,
		}
	}

	return results
}

// Combine 合并资金费率、未平仓合约与价格分析
// 交易对集合取资金费率与未平仓合约结果键的并集；价格数据只做补充，
// 仅出现在价格表中的交易对不会产生记录。缺失的维度填充零值与unknown状态。
func (a *Analyzer) Combine(
	funding map[string]model.FundingAnalysis,
	oi map[string]model.OpenInterestAnalysis,
	prices []model.PriceRow,
) map[string]model.CombinedRecord {
	priceBySymbol := make(map[string]model.PriceRow, len(prices))
	for _, row := range prices {
		priceBySymbol[row.Symbol] = row
	}

	symbols := make(map[string]struct{}, len(funding)+len(oi))
	for symbol := range funding {
		symbols[symbol] = struct{}{}
	}
	for symbol := range oi {
		symbols[symbol] = struct{}{}
	}

	now := time.Now().UTC()
	combined := make(map[string]model.CombinedRecord, len(symbols))

	for symbol := range symbols {
		fundingData, hasFunding := funding[symbol]
		oiData, hasOI := oi[symbol]
		priceData, hasPrice := priceBySymbol[symbol]

		record := model.CombinedRecord{
			Symbol:        symbol,
			BaseCurrency:  model.BaseCurrencyOf(symbol),
			FundingStatus: model.StatusUnknown,
			OIStatus:      model.StatusUnknown,
			AnalysisTime:  now,
		}

		if hasFunding {
			record.BaseCurrency = fundingData.BaseCurrency
			record.FundingRatePercent = fundingData.FundingRatePercent
			record.FundingStatus = fundingData.Status
			record.FundingRiskLevel = fundingData.RiskLevel
		}
		if hasOI {
			record.OIUSDMillions = oiData.OpenInterestUSDMillions
			record.OIStatus = oiData.Status
		}
		if hasPrice {
			record.Price = priceData.Price
			record.PriceChange24hPercent = priceData.Change24hPercent
		}

		record.CombinedSignal = combinedSignal(fundingData, hasFunding, oiData, hasOI, priceData, hasPrice)
		combined[symbol] = record
	}

	return combined
}

// combinedSignal 独立评估三个维度并用分隔符拼接非空信号
// 资金费率维度仅在overheated时发声（按正负号措辞），hot不贡献信号；
// 未平仓合约维度仅在high时发声；价格维度仅在|24h变化|>5%时发声。
func combinedSignal(
	funding model.FundingAnalysis, hasFunding bool,
	oi model.OpenInterestAnalysis, hasOI bool,
	price model.PriceRow, hasPrice bool,
) string {
	var signals []string

	if hasFunding && funding.Status == model.FundingStatusOverheated {
		if funding.FundingRate > 0 {
			signals = append(signals, "funding rate overheated (long crowding)")
		} else {
			signals = append(signals, "funding rate overcold (short crowding)")
		}
	}

	if hasOI && oi.Status == model.OIStatusHigh {
		signals = append(signals, "open interest elevated")
	}

	if hasPrice && math.Abs(price.Change24hPercent) > priceChangeSignalThreshold {
		if price.Change24hPercent > 0 {
			signals = append(signals, fmt.Sprintf("price large rise(%+.2f%%)", price.Change24hPercent))
		} else {
			signals = append(signals, fmt.Sprintf("price large fall(%+.2f%%)", price.Change24hPercent))
		}
	}

	if len(signals) == 0 {
		return SignalMarketNormal
	}

	return strings.Join(signals, signalSeparator)
}
