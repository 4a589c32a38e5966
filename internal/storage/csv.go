package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/life2you_mini/fundmon/internal/model"
)

// 快照文件名前缀
const (
	fundingFilePrefix  = "funding_rate_"
	oiFilePrefix       = "open_interest_"
	priceFilePrefix    = "price_data_"
	analysisFilePrefix = "analysis_"

	fileTimeLayout = "20060102_150405"
)

// CSVStore CSV快照存储
// 每个监控周期将四张表写入带时间戳与周期类型标记的文件
type CSVStore struct {
	dataDir string
	logger  *zap.Logger
}

// NewCSVStore 创建CSV存储，数据目录不存在时自动创建
func NewCSVStore(dataDir string, logger *zap.Logger) (*CSVStore, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("创建数据目录失败: %w", err)
	}
	return &CSVStore{dataDir: dataDir, logger: logger}, nil
}

// SaveSnapshots 保存本周期的全部快照，空表跳过
// 单个文件写入失败只记录错误，其余文件继续写入；返回遇到的第一个错误
func (s *CSVStore) SaveSnapshots(
	funding []model.FundingRow,
	oi []model.OpenInterestRow,
	prices []model.PriceRow,
	combined map[string]model.CombinedRecord,
	cycleType string,
	now time.Time,
) error {
	timestamp := now.Format(fileTimeLayout)
	var firstErr error

	record := func(err error, table string) {
		if err != nil {
			s.logger.Error("保存快照失败", zap.String("table", table), zap.Error(err))
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	if len(funding) > 0 {
		record(s.writeFunding(funding, cycleType, timestamp), "funding_rate")
	}
	if len(oi) > 0 {
		record(s.writeOpenInterest(oi, cycleType, timestamp), "open_interest")
	}
	if len(prices) > 0 {
		record(s.writePrices(prices, cycleType, timestamp), "price_data")
	}
	if len(combined) > 0 {
		record(s.writeAnalysis(combined, cycleType, timestamp), "analysis")
	}

	if firstErr == nil {
		s.logger.Info("快照已保存", zap.String("dir", s.dataDir), zap.String("cycle", cycleType))
	}
	return firstErr
}

func (s *CSVStore) writeFunding(rows []model.FundingRow, cycleType, timestamp string) error {
	records := [][]string{
		{"symbol", "base_currency", "funding_rate", "annualized_rate", "funding_time", "timestamp"},
	}
	for _, row := range rows {
		records = append(records, []string{
			row.Symbol,
			row.BaseCurrency,
			formatFloat(row.FundingRate),
			formatFloat(row.AnnualizedRate),
			row.FundingTime.Format(time.RFC3339),
			row.Timestamp.Format(time.RFC3339),
		})
	}
	return s.writeFile(fundingFilePrefix, cycleType, timestamp, records)
}

func (s *CSVStore) writeOpenInterest(rows []model.OpenInterestRow, cycleType, timestamp string) error {
	records := [][]string{
		{"symbol", "base_currency", "open_interest", "open_interest_usd", "mark_price", "timestamp"},
	}
	for _, row := range rows {
		records = append(records, []string{
			row.Symbol,
			row.BaseCurrency,
			formatFloat(row.OpenInterest),
			formatFloat(row.OpenInterestUSD),
			formatFloat(row.MarkPrice),
			row.Timestamp.Format(time.RFC3339),
		})
	}
	return s.writeFile(oiFilePrefix, cycleType, timestamp, records)
}

func (s *CSVStore) writePrices(rows []model.PriceRow, cycleType, timestamp string) error {
	records := [][]string{
		{"symbol", "base_currency", "price", "change_24h", "change_24h_percent", "volume_24h", "timestamp"},
	}
	for _, row := range rows {
		records = append(records, []string{
			row.Symbol,
			row.BaseCurrency,
			formatFloat(row.Price),
			formatFloat(row.Change24h),
			formatFloat(row.Change24hPercent),
			formatFloat(row.Volume24h),
			row.Timestamp.Format(time.RFC3339),
		})
	}
	return s.writeFile(priceFilePrefix, cycleType, timestamp, records)
}

func (s *CSVStore) writeAnalysis(combined map[string]model.CombinedRecord, cycleType, timestamp string) error {
	records := [][]string{
		{"symbol", "base_currency", "funding_rate_percent", "funding_status", "funding_risk_level",
			"oi_usd_millions", "oi_status", "price", "price_change_24h_percent", "combined_signal", "analysis_time"},
	}

	symbols := make([]string, 0, len(combined))
	for symbol := range combined {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)

	for _, symbol := range symbols {
		r := combined[symbol]
		records = append(records, []string{
			r.Symbol,
			r.BaseCurrency,
			formatFloat(r.FundingRatePercent),
			r.FundingStatus,
			strconv.Itoa(r.FundingRiskLevel),
			formatFloat(r.OIUSDMillions),
			r.OIStatus,
			formatFloat(r.Price),
			formatFloat(r.PriceChange24hPercent),
			r.CombinedSignal,
			r.AnalysisTime.Format(time.RFC3339),
		})
	}
	return s.writeFile(analysisFilePrefix, cycleType, timestamp, records)
}

// writeFile 写入单个CSV文件：<前缀><周期类型>_<时间戳>.csv
func (s *CSVStore) writeFile(prefix, cycleType, timestamp string, records [][]string) error {
	path := filepath.Join(s.dataDir, fmt.Sprintf("%s%s_%s.csv", prefix, cycleType, timestamp))

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("创建快照文件失败: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.WriteAll(records); err != nil {
		return fmt.Errorf("写入快照文件失败: %w", err)
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
