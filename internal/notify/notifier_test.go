package notify

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/life2you_mini/fundmon/internal/model"
)

// TestNewNotifier_AllDisabled 未配置任何渠道时通知器退化为空操作
func TestNewNotifier_AllDisabled(t *testing.T) {
	n := NewNotifier(Options{}, zaptest.NewLogger(t))

	assert.Nil(t, n.telegramBot)
	assert.Empty(t, n.discordWebhook)

	// 空操作不应panic
	n.SendAlerts(context.Background(), []model.AlertEntry{{Symbol: "BTC/USDT:USDT"}}, "5min")
	n.SendReport(context.Background(), nil, "5min")
}

// TestNewNotifier_InvalidChatID chat_id非数字时禁用Telegram渠道
func TestNewNotifier_InvalidChatID(t *testing.T) {
	n := NewNotifier(Options{
		TelegramBotToken: "123456:token",
		TelegramChatID:   "not-a-number",
	}, zaptest.NewLogger(t))

	assert.Nil(t, n.telegramBot)
}

// TestNewNotifier_TelegramPartialConfig token与chat_id任一缺失即禁用
func TestNewNotifier_TelegramPartialConfig(t *testing.T) {
	n := NewNotifier(Options{TelegramBotToken: "123456:token"}, zaptest.NewLogger(t))
	assert.Nil(t, n.telegramBot)

	n = NewNotifier(Options{TelegramChatID: "123456"}, zaptest.NewLogger(t))
	assert.Nil(t, n.telegramBot)
}

func TestSendAlerts_Discord(t *testing.T) {
	var received []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)

		var payload map[string]string
		require.NoError(t, json.Unmarshal(body, &payload))
		received = append(received, payload["content"])

		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	n := NewNotifier(Options{DiscordWebhookURL: server.URL}, zaptest.NewLogger(t))

	alerts := []model.AlertEntry{
		{
			Symbol:             "BTC/USDT:USDT",
			BaseCurrency:       "BTC",
			FundingRatePercent: 0.12,
			Status:             model.FundingStatusOverheated,
			Signal:             "funding rate overheated (long crowding)",
			Priority:           model.PriorityHigh,
		},
	}
	n.SendAlerts(context.Background(), alerts, "5min")

	require.Len(t, received, 1)
	assert.Contains(t, received[0], "🚨 *Binance funding rate alert* (5min)")
	assert.Contains(t, received[0], "🔴 *BTC* (BTC/USDT:USDT)")
	assert.Contains(t, received[0], "funding rate overheated (long crowding)")
}

// TestSendAlerts_Empty 空警报列表不触发任何发送
func TestSendAlerts_Empty(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer server.Close()

	n := NewNotifier(Options{DiscordWebhookURL: server.URL}, zaptest.NewLogger(t))
	n.SendAlerts(context.Background(), nil, "5min")

	assert.Zero(t, calls)
}

func TestSendReport_Discord(t *testing.T) {
	var received string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var payload map[string]string
		require.NoError(t, json.Unmarshal(body, &payload))
		received = payload["content"]
	}))
	defer server.Close()

	n := NewNotifier(Options{DiscordWebhookURL: server.URL}, zaptest.NewLogger(t))

	combined := map[string]model.CombinedRecord{
		"BTC/USDT:USDT": {
			Symbol:             "BTC/USDT:USDT",
			BaseCurrency:       "BTC",
			FundingRatePercent: 0.12,
			FundingStatus:      model.FundingStatusOverheated,
		},
	}
	n.SendReport(context.Background(), combined, "1hour")

	assert.Contains(t, received, "📊 *Binance funding rate report* (1hour)")
	assert.Contains(t, received, "📈 symbols: 1")
	assert.Contains(t, received, "🔥 overheated: 1")
}

// TestSendDiscord_ErrorStatus webhook返回错误状态时只记录日志不panic
func TestSendDiscord_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	n := NewNotifier(Options{DiscordWebhookURL: server.URL}, zaptest.NewLogger(t))

	err := n.sendDiscord(context.Background(), "test")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")

	// broadcast吞掉渠道错误
	n.SendReport(context.Background(), nil, "5min")
}
