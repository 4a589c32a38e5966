package alert

import (
	"sort"

	"github.com/life2you_mini/fundmon/internal/model"
)

// Select 扫描综合分析记录，挑出资金费率过热的交易对生成警报
// 原始策略中"过热且OI偏高"的分支被过热条件完全覆盖，这里保留化简后的
// 等价形式：funding_status == overheated 即触发。所有警报统一高优先级。
// 输出按交易对名称排序，保证同一输入的警报顺序稳定。
func Select(combined map[string]model.CombinedRecord) []model.AlertEntry {
	symbols := make([]string, 0, len(combined))
	for symbol := range combined {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)

	var alerts []model.AlertEntry
	for _, symbol := range symbols {
		record := combined[symbol]
		if record.FundingStatus != model.FundingStatusOverheated {
			continue
		}

		alerts = append(alerts, model.AlertEntry{
			Symbol:             record.Symbol,
			BaseCurrency:       record.BaseCurrency,
			FundingRatePercent: record.FundingRatePercent,
			Status:             record.FundingStatus,
			Signal:             record.CombinedSignal,
			Priority:           model.PriorityHigh,
		})
	}

	return alerts
}
