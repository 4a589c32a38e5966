package exchange

// 资金费率结算节奏常量
const (
	// DefaultFundingEventsPerDay 默认每天结算次数（每8小时一次）
	DefaultFundingEventsPerDay = 3
	// DaysPerYear 一年天数
	DaysPerYear = 365
)

// AnnualizedRate 计算年化资金费率
// 年化费率 = 单次费率 * 一年结算次数；结算节奏可配置，
// 传入非正数时回退到默认的每天3次
func AnnualizedRate(fundingRate float64, eventsPerDay int) float64 {
	if eventsPerDay <= 0 {
		eventsPerDay = DefaultFundingEventsPerDay
	}
	return fundingRate * float64(DaysPerYear) * float64(eventsPerDay)
}
