package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/life2you_mini/fundmon/internal/model"
)

// Redis键名模板
const (
	latestAnalysisKey = "analysis:latest:%s" // 按交易对存最新综合分析
	fundingHistoryKey = "funding:history:%s" // 按交易对存费率历史
)

// fundingHistoryRetention 费率历史保留时长
const fundingHistoryRetention = 7 * 24 * time.Hour

// RedisStore Redis快照缓存
// 保存每个交易对的最新综合分析与近7天资金费率历史，供其他进程读取
type RedisStore struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisStore 创建Redis快照缓存并测试连接
func NewRedisStore(addr, password string, db int, keyPrefix string) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
		PoolSize:     10,
		MinIdleConns: 5,
		MaxRetries:   3,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("无法连接到Redis: %w", err)
	}

	return &RedisStore{client: client, keyPrefix: keyPrefix}, nil
}

// Close 关闭Redis连接
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// SaveCombined 保存各交易对的最新综合分析记录
func (s *RedisStore) SaveCombined(ctx context.Context, records map[string]model.CombinedRecord) error {
	for symbol, record := range records {
		jsonData, err := json.Marshal(record)
		if err != nil {
			return fmt.Errorf("序列化综合分析数据失败: %w", err)
		}

		key := s.keyPrefix + fmt.Sprintf(latestAnalysisKey, symbol)
		if err := s.client.Set(ctx, key, jsonData, 0).Err(); err != nil {
			return fmt.Errorf("保存综合分析数据到Redis失败: %w", err)
		}
	}
	return nil
}

// LatestCombined 读取某交易对的最新综合分析记录
func (s *RedisStore) LatestCombined(ctx context.Context, symbol string) (*model.CombinedRecord, error) {
	key := s.keyPrefix + fmt.Sprintf(latestAnalysisKey, symbol)

	jsonData, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, fmt.Errorf("读取综合分析数据失败: %w", err)
	}

	var record model.CombinedRecord
	if err := json.Unmarshal(jsonData, &record); err != nil {
		return nil, fmt.Errorf("解析综合分析数据失败: %w", err)
	}
	return &record, nil
}

// SaveFundingHistory 将本周期的资金费率追加到各交易对的历史有序集合
// 以抓取时间戳为score，写入后清理保留期之外的旧数据
func (s *RedisStore) SaveFundingHistory(ctx context.Context, rows []model.FundingRow) error {
	for _, row := range rows {
		jsonData, err := json.Marshal(row)
		if err != nil {
			return fmt.Errorf("序列化资金费率数据失败: %w", err)
		}

		key := s.keyPrefix + fmt.Sprintf(fundingHistoryKey, row.Symbol)
		score := float64(row.Timestamp.Unix())

		if err := s.client.ZAdd(ctx, key, redis.Z{
			Score:  score,
			Member: string(jsonData),
		}).Err(); err != nil {
			return fmt.Errorf("保存资金费率历史到Redis失败: %w", err)
		}

		oldScore := float64(row.Timestamp.Add(-fundingHistoryRetention).Unix())
		if err := s.client.ZRemRangeByScore(ctx, key, "0", fmt.Sprintf("%f", oldScore)).Err(); err != nil {
			return fmt.Errorf("清理旧资金费率数据失败: %w", err)
		}
	}
	return nil
}

// FundingHistory 读取某交易对指定时间范围内的资金费率历史
func (s *RedisStore) FundingHistory(ctx context.Context, symbol string, start, end time.Time) ([]model.FundingRow, error) {
	key := s.keyPrefix + fmt.Sprintf(fundingHistoryKey, symbol)

	results, err := s.client.ZRangeByScore(ctx, key, &redis.ZRangeBy{
		Min: fmt.Sprintf("%f", float64(start.Unix())),
		Max: fmt.Sprintf("%f", float64(end.Unix())),
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("获取资金费率历史数据失败: %w", err)
	}

	history := make([]model.FundingRow, 0, len(results))
	for _, jsonStr := range results {
		var row model.FundingRow
		if err := json.Unmarshal([]byte(jsonStr), &row); err != nil {
			return nil, fmt.Errorf("解析资金费率历史数据失败: %w", err)
		}
		history = append(history, row)
	}
	return history, nil
}
