package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"github.com/life2you_mini/fundmon/internal/model"
	"github.com/life2you_mini/fundmon/internal/report"
)

// sendTimeout 单个渠道的发送超时
const sendTimeout = 10 * time.Second

// Options 通知渠道配置，留空的渠道自动禁用
type Options struct {
	TelegramBotToken  string
	TelegramChatID    string
	DiscordWebhookURL string
}

// Notifier 通知器，将格式化消息推送到已启用的渠道
// 各渠道发送互相独立，单渠道失败只记录日志
type Notifier struct {
	logger         *zap.Logger
	telegramBot    *bot.Bot
	telegramChatID int64
	discordWebhook string
	httpClient     *http.Client
}

// NewNotifier 创建通知器
// Telegram需要token与chat_id同时配置；配置无效时该渠道降级为禁用而非报错
func NewNotifier(opts Options, logger *zap.Logger) *Notifier {
	n := &Notifier{
		logger:         logger,
		discordWebhook: opts.DiscordWebhookURL,
		httpClient:     &http.Client{Timeout: sendTimeout},
	}

	if opts.TelegramBotToken != "" && opts.TelegramChatID != "" {
		chatID, err := strconv.ParseInt(opts.TelegramChatID, 10, 64)
		if err != nil {
			logger.Error("Telegram chat_id格式无效，禁用Telegram通知", zap.Error(err))
		} else {
			telegramBot, err := bot.New(opts.TelegramBotToken)
			if err != nil {
				logger.Error("初始化Telegram机器人失败，禁用Telegram通知", zap.Error(err))
			} else {
				n.telegramBot = telegramBot
				n.telegramChatID = chatID
				logger.Info("Telegram通知已启用")
			}
		}
	}

	if n.discordWebhook != "" {
		logger.Info("Discord通知已启用")
	}

	if n.telegramBot == nil && n.discordWebhook == "" {
		logger.Warn("未配置任何通知渠道")
	}

	return n
}

// SendAlerts 发送警报通知
func (n *Notifier) SendAlerts(ctx context.Context, alerts []model.AlertEntry, cycleType string) {
	if len(alerts) == 0 {
		return
	}

	message := report.AlertMessage(alerts, cycleType, time.Now())
	n.broadcast(ctx, message)
	n.logger.Info("警报通知已发送", zap.Int("alerts", len(alerts)), zap.String("cycle", cycleType))
}

// SendReport 发送周期报告通知
func (n *Notifier) SendReport(ctx context.Context, combined map[string]model.CombinedRecord, cycleType string) {
	message := report.Summary(combined, cycleType, time.Now())
	n.broadcast(ctx, message)
	n.logger.Info("周期报告已发送", zap.String("cycle", cycleType))
}

// broadcast 将消息推送到所有已启用的渠道，各渠道失败互不影响
func (n *Notifier) broadcast(ctx context.Context, message string) {
	if n.telegramBot != nil {
		if err := n.sendTelegram(ctx, message); err != nil {
			n.logger.Error("Telegram消息发送失败", zap.Error(err))
		}
	}

	if n.discordWebhook != "" {
		if err := n.sendDiscord(ctx, message); err != nil {
			n.logger.Error("Discord消息发送失败", zap.Error(err))
		}
	}
}

// sendTelegram 发送Telegram消息
func (n *Notifier) sendTelegram(ctx context.Context, message string) error {
	sendCtx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	_, err := n.telegramBot.SendMessage(sendCtx, &bot.SendMessageParams{
		ChatID:    n.telegramChatID,
		Text:      message,
		ParseMode: models.ParseModeMarkdown,
	})
	if err != nil {
		return fmt.Errorf("发送Telegram消息失败: %w", err)
	}
	return nil
}

// sendDiscord 通过webhook发送Discord消息
func (n *Notifier) sendDiscord(ctx context.Context, message string) error {
	payload, err := json.Marshal(map[string]string{"content": message})
	if err != nil {
		return fmt.Errorf("序列化Discord消息失败: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.discordWebhook, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("创建Discord请求失败: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("发送Discord消息失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("Discord webhook返回异常状态: %d", resp.StatusCode)
	}
	return nil
}
