package monitor

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/life2you_mini/fundmon/internal/alert"
	"github.com/life2you_mini/fundmon/internal/analysis"
	"github.com/life2you_mini/fundmon/internal/model"
	"github.com/life2you_mini/fundmon/internal/report"
)

// 监控周期类型
const (
	CycleTypeShort = "5min"  // 短周期
	CycleTypeLong  = "1hour" // 长周期
)

// ValidCycleType 判断周期类型是否受支持
func ValidCycleType(cycleType string) bool {
	return cycleType == CycleTypeShort || cycleType == CycleTypeLong
}

// DataSource 交易所数据源接口
// 实现方只对整体性故障返回错误；单个交易对的失败应在内部跳过，
// 返回的行数允许少于请求的交易对数量
type DataSource interface {
	FetchFundingRates(ctx context.Context, symbols []string) ([]model.FundingRow, error)
	FetchOpenInterest(ctx context.Context, symbols []string) ([]model.OpenInterestRow, error)
	FetchPrices(ctx context.Context, symbols []string) ([]model.PriceRow, error)
}

// Persister 快照持久化接口
type Persister interface {
	SaveSnapshots(
		funding []model.FundingRow,
		oi []model.OpenInterestRow,
		prices []model.PriceRow,
		combined map[string]model.CombinedRecord,
		cycleType string,
		now time.Time,
	) error
}

// SnapshotStore 快照缓存接口（可选，供其他进程读取最新分析）
type SnapshotStore interface {
	SaveCombined(ctx context.Context, records map[string]model.CombinedRecord) error
	SaveFundingHistory(ctx context.Context, rows []model.FundingRow) error
}

// Notifier 通知接口
type Notifier interface {
	SendAlerts(ctx context.Context, alerts []model.AlertEntry, cycleType string)
	SendReport(ctx context.Context, combined map[string]model.CombinedRecord, cycleType string)
}

// ReportSink 周期报告的输出函数，默认打印到标准输出
type ReportSink func(string)

// FundingMonitor 资金费率监控器
// 每次调用RunCycle执行一个完整的监控周期：抓取 -> 分析 -> 持久化 -> 警报 -> 报告
type FundingMonitor struct {
	source     DataSource
	analyzer   *analysis.Analyzer
	persister  Persister
	snapshots  SnapshotStore // 可为nil，未配置Redis时禁用
	notifier   Notifier
	symbols    []string
	logger     *zap.Logger
	reportSink ReportSink
}

// New 创建资金费率监控器
func New(
	source DataSource,
	analyzer *analysis.Analyzer,
	persister Persister,
	snapshots SnapshotStore,
	notifier Notifier,
	symbols []string,
	logger *zap.Logger,
) *FundingMonitor {
	return &FundingMonitor{
		source:     source,
		analyzer:   analyzer,
		persister:  persister,
		snapshots:  snapshots,
		notifier:   notifier,
		symbols:    symbols,
		logger:     logger,
		reportSink: func(s string) { fmt.Print(s) },
	}
}

// SetReportSink 替换周期报告的输出目标（测试用）
func (m *FundingMonitor) SetReportSink(sink ReportSink) {
	m.reportSink = sink
}

// RunCycle 执行一个监控周期
// 可恢复的故障一律降级为空/部分结果继续执行，互不影响兄弟步骤；
// 资金费率整批缺失时提前结束本周期（无数据可分析）
func (m *FundingMonitor) RunCycle(ctx context.Context, cycleType string) error {
	if !ValidCycleType(cycleType) {
		return fmt.Errorf("无效的周期类型: %s", cycleType)
	}

	m.logger.Info("开始执行监控周期", zap.String("cycle", cycleType))
	now := time.Now()

	// 1. 获取资金费率数据
	funding, err := m.source.FetchFundingRates(ctx, m.symbols)
	if err != nil {
		m.logger.Error("获取资金费率数据失败", zap.Error(err))
		funding = nil
	}
	if len(funding) == 0 {
		m.logger.Warn("未获取到资金费率数据，提前结束本周期")
		return nil
	}

	// 2. 获取未平仓合约数据
	oi, err := m.source.FetchOpenInterest(ctx, m.symbols)
	if err != nil {
		m.logger.Error("获取未平仓合约数据失败", zap.Error(err))
		oi = nil
	}

	// 3. 获取价格数据
	prices, err := m.source.FetchPrices(ctx, m.symbols)
	if err != nil {
		m.logger.Error("获取价格数据失败", zap.Error(err))
		prices = nil
	}

	// 4. 数据分析
	fundingAnalysis := m.analyzer.AnalyzeFunding(funding)
	oiAnalysis := m.analyzer.AnalyzeOpenInterest(oi)
	combined := m.analyzer.Combine(fundingAnalysis, oiAnalysis, prices)

	// 5. 保存快照（失败不中断周期）
	if m.persister != nil {
		if err := m.persister.SaveSnapshots(funding, oi, prices, combined, cycleType, now); err != nil {
			m.logger.Error("保存CSV快照失败", zap.Error(err))
		}
	}
	if m.snapshots != nil {
		if err := m.snapshots.SaveCombined(ctx, combined); err != nil {
			m.logger.Error("保存综合分析缓存失败", zap.Error(err))
		}
		if err := m.snapshots.SaveFundingHistory(ctx, funding); err != nil {
			m.logger.Error("保存资金费率历史失败", zap.Error(err))
		}
	}

	// 6. 检查警报条件并发送通知
	alerts := alert.Select(combined)
	if len(alerts) > 0 && m.notifier != nil {
		m.notifier.SendAlerts(ctx, alerts, cycleType)
	}

	// 7. 生成周期报告并推送摘要
	m.reportSink(report.Render(combined, cycleType, now))
	if m.notifier != nil {
		m.notifier.SendReport(ctx, combined, cycleType)
	}

	m.logger.Info("监控周期完成",
		zap.String("cycle", cycleType),
		zap.Int("symbols", len(combined)),
		zap.Int("alerts", len(alerts)))
	return nil
}
