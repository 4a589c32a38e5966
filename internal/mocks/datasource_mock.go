package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/life2you_mini/fundmon/internal/model"
)

// DataSource 交易所数据源接口的模拟实现
type DataSource struct {
	mock.Mock
}

// FetchFundingRates 获取资金费率的模拟实现
func (m *DataSource) FetchFundingRates(ctx context.Context, symbols []string) ([]model.FundingRow, error) {
	args := m.Called(ctx, symbols)
	rows, _ := args.Get(0).([]model.FundingRow)
	return rows, args.Error(1)
}

// FetchOpenInterest 获取未平仓合约的模拟实现
func (m *DataSource) FetchOpenInterest(ctx context.Context, symbols []string) ([]model.OpenInterestRow, error) {
	args := m.Called(ctx, symbols)
	rows, _ := args.Get(0).([]model.OpenInterestRow)
	return rows, args.Error(1)
}

// FetchPrices 获取价格数据的模拟实现
func (m *DataSource) FetchPrices(ctx context.Context, symbols []string) ([]model.PriceRow, error) {
	args := m.Called(ctx, symbols)
	rows, _ := args.Get(0).([]model.PriceRow)
	return rows, args.Error(1)
}
