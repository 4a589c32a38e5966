package analysis

import (
	"math"

	"github.com/life2you_mini/fundmon/internal/model"
)

// OI换算系数：美元 -> 百万美元
const usdPerMillion = 1_000_000

// ClassifyFunding 按阈值表判定资金费率状态
// 分档只比较各档Min值与|rate|，Max不参与判定；返回状态、风险等级与信号文本
func ClassifyFunding(rate float64, bands FundingBands) (status string, riskLevel int, signal string) {
	absRate := math.Abs(rate)

	switch {
	case absRate >= bands.Overheated.Min:
		status = model.FundingStatusOverheated
		riskLevel = model.RiskLevelOverheated
	case absRate >= bands.Hot.Min:
		status = model.FundingStatusHot
		riskLevel = model.RiskLevelHot
	default:
		status = model.FundingStatusNormal
		riskLevel = model.RiskLevelNormal
	}

	signal = fundingSignal(rate, status)
	return status, riskLevel, signal
}

// fundingSignal 生成信号文本，措辞取决于状态与费率正负号，与幅度无关
func fundingSignal(rate float64, status string) string {
	switch status {
	case model.FundingStatusOverheated:
		if rate > 0 {
			return "🔴 long crowding, pullback risk"
		}
		return "🟢 short squeeze, possible bounce"
	case model.FundingStatusHot:
		if rate > 0 {
			return "🟡 long side warming, risk"
		}
		return "🟡 short side cooling, opportunity"
	default:
		return "⚪ funding rate normal"
	}
}

// ClassifyOpenInterest 按阈值表判定未平仓合约状态
func ClassifyOpenInterest(oiUSD float64, bands OIBands) string {
	oiMillions := oiUSD / usdPerMillion

	switch {
	case oiMillions >= bands.High:
		return model.OIStatusHigh
	case oiMillions >= bands.Low:
		return model.OIStatusMedium
	default:
		return model.OIStatusLow
	}
}
