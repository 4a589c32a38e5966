package report

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/life2you_mini/fundmon/internal/model"
)

const (
	divider        = "============================================================"
	timeLayout     = "2006-01-02 15:04:05"
	summaryTopSize = 3 // 摘要中展示的极端费率条数
)

// statusIcon 资金费率状态对应的图标
func statusIcon(status string) string {
	switch status {
	case model.FundingStatusOverheated:
		return "🔥"
	case model.FundingStatusHot:
		return "🟡"
	case model.FundingStatusNormal:
		return "🟢"
	default:
		return "⚪"
	}
}

// sortedSymbols 按交易对名称排序，保证渲染顺序稳定
func sortedSymbols(combined map[string]model.CombinedRecord) []string {
	symbols := make([]string, 0, len(combined))
	for symbol := range combined {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)
	return symbols
}

// Render 渲染周期监控报告
func Render(combined map[string]model.CombinedRecord, cycleType string, now time.Time) string {
	var b strings.Builder

	b.WriteString("\n" + divider + "\n")
	fmt.Fprintf(&b, "📊 Binance funding rate report (%s)\n", cycleType)
	fmt.Fprintf(&b, "⏰ %s\n", now.Format(timeLayout))
	b.WriteString(divider + "\n")

	for _, symbol := range sortedSymbols(combined) {
		record := combined[symbol]

		fmt.Fprintf(&b, "\n%s %s\n", statusIcon(record.FundingStatus), record.BaseCurrency)
		fmt.Fprintf(&b, "   funding rate: %+.4f%%\n", record.FundingRatePercent)
		fmt.Fprintf(&b, "   open interest: $%.1fM\n", record.OIUSDMillions)
		fmt.Fprintf(&b, "   24h change: %+.2f%%\n", record.PriceChange24hPercent)
		fmt.Fprintf(&b, "   signal: %s\n", record.CombinedSignal)
	}

	b.WriteString("\n" + divider + "\n")
	return b.String()
}

// Summary 渲染推送用的摘要消息：统计各状态数量并列出费率绝对值最大的前几名
func Summary(combined map[string]model.CombinedRecord, cycleType string, now time.Time) string {
	var b strings.Builder

	fmt.Fprintf(&b, "📊 *Binance funding rate report* (%s)\n", cycleType)
	fmt.Fprintf(&b, "⏰ %s\n\n", now.Format(timeLayout))

	if len(combined) == 0 {
		b.WriteString("no data\n")
		return b.String()
	}

	var overheated, hot int
	for _, record := range combined {
		switch record.FundingStatus {
		case model.FundingStatusOverheated:
			overheated++
		case model.FundingStatusHot:
			hot++
		}
	}

	fmt.Fprintf(&b, "📈 symbols: %d\n", len(combined))
	fmt.Fprintf(&b, "🔥 overheated: %d\n", overheated)
	fmt.Fprintf(&b, "🟡 hot: %d\n\n", hot)

	// 按|资金费率%|降序排列，同值时按交易对名称排序保证稳定
	ranked := sortedSymbols(combined)
	sort.SliceStable(ranked, func(i, j int) bool {
		return math.Abs(combined[ranked[i]].FundingRatePercent) > math.Abs(combined[ranked[j]].FundingRatePercent)
	})

	b.WriteString("*Funding rate TOP 3:*\n")
	for i, symbol := range ranked {
		if i >= summaryTopSize {
			break
		}
		record := combined[symbol]
		fmt.Fprintf(&b, "%s %s: %+.4f%%\n",
			statusIcon(record.FundingStatus), record.BaseCurrency, record.FundingRatePercent)
	}

	return b.String()
}

// AlertMessage 渲染警报推送消息
func AlertMessage(alerts []model.AlertEntry, cycleType string, now time.Time) string {
	var b strings.Builder

	fmt.Fprintf(&b, "🚨 *Binance funding rate alert* (%s)\n", cycleType)
	fmt.Fprintf(&b, "⏰ %s\n\n", now.Format(timeLayout))

	for _, entry := range alerts {
		fmt.Fprintf(&b, "🔴 *%s* (%s)\n", entry.BaseCurrency, entry.Symbol)
		fmt.Fprintf(&b, "   funding rate: %+.4f%%\n", entry.FundingRatePercent)
		fmt.Fprintf(&b, "   %s\n\n", entry.Signal)
	}

	return b.String()
}
