package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/life2you_mini/fundmon/internal/model"
)

// Persister 快照持久化接口的模拟实现
type Persister struct {
	mock.Mock
}

// SaveSnapshots 保存快照的模拟实现
func (m *Persister) SaveSnapshots(
	funding []model.FundingRow,
	oi []model.OpenInterestRow,
	prices []model.PriceRow,
	combined map[string]model.CombinedRecord,
	cycleType string,
	now time.Time,
) error {
	args := m.Called(funding, oi, prices, combined, cycleType, now)
	return args.Error(0)
}

// SnapshotStore 快照缓存接口的模拟实现
type SnapshotStore struct {
	mock.Mock
}

// SaveCombined 保存综合分析的模拟实现
func (m *SnapshotStore) SaveCombined(ctx context.Context, records map[string]model.CombinedRecord) error {
	args := m.Called(ctx, records)
	return args.Error(0)
}

// SaveFundingHistory 保存资金费率历史的模拟实现
func (m *SnapshotStore) SaveFundingHistory(ctx context.Context, rows []model.FundingRow) error {
	args := m.Called(ctx, rows)
	return args.Error(0)
}

// Notifier 通知接口的模拟实现
type Notifier struct {
	mock.Mock
}

// SendAlerts 发送警报的模拟实现
func (m *Notifier) SendAlerts(ctx context.Context, alerts []model.AlertEntry, cycleType string) {
	m.Called(ctx, alerts, cycleType)
}

// SendReport 发送周期报告的模拟实现
func (m *Notifier) SendReport(ctx context.Context, combined map[string]model.CombinedRecord, cycleType string) {
	m.Called(ctx, combined, cycleType)
}
