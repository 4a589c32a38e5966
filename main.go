package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/life2you_mini/fundmon/internal/analysis"
	"github.com/life2you_mini/fundmon/internal/config"
	"github.com/life2you_mini/fundmon/internal/exchange"
	"github.com/life2you_mini/fundmon/internal/logger"
	"github.com/life2you_mini/fundmon/internal/monitor"
	"github.com/life2you_mini/fundmon/internal/notify"
	"github.com/life2you_mini/fundmon/internal/storage"
)

var (
	configFile = flag.String("config", "config/config.yaml", "配置文件路径")
	cycleType  = flag.String("cycle", monitor.CycleTypeShort, "监控周期类型 (5min 或 1hour)")
)

func main() {
	// 解析命令行参数，周期类型非法时直接拒绝
	flag.Parse()
	if !monitor.ValidCycleType(*cycleType) {
		fmt.Fprintf(os.Stderr, "无效的周期类型: %q (可选: %s, %s)\n",
			*cycleType, monitor.CycleTypeShort, monitor.CycleTypeLong)
		flag.Usage()
		os.Exit(2)
	}

	// 加载.env环境变量（文件不存在时忽略）
	_ = godotenv.Load()

	// 加载配置
	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	// 初始化日志
	log, err := logger.NewLogger(cfg.System.LogDir, cfg.System.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	log.Info("加载配置成功", zap.String("配置文件", *configFile))

	// 创建上下文，处理终止信号
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log, *cycleType); err != nil {
		log.Error("监控周期执行失败", zap.Error(err))
		os.Exit(1)
	}
}

// run 组装各组件并执行一个监控周期
func run(ctx context.Context, cfg *config.Config, log *logger.Logger, cycleType string) error {
	// 交易所数据源
	source := exchange.NewBinanceClient(exchange.BinanceOptions{
		APIKey:              cfg.Exchange.APIKey,
		APISecret:           cfg.Exchange.APISecret,
		Testnet:             cfg.Exchange.Testnet,
		FundingEventsPerDay: cfg.System.FundingEventsPerDay,
	}, log.Named("exchange").Logger)

	// CSV快照存储
	persister, err := storage.NewCSVStore(cfg.System.DataDir, log.Named("storage").Logger)
	if err != nil {
		return fmt.Errorf("初始化CSV存储失败: %w", err)
	}

	// Redis快照缓存（可选）
	var snapshots monitor.SnapshotStore
	if cfg.Redis.Enabled {
		redisStore, err := storage.NewRedisStore(
			cfg.RedisAddr(), cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.KeyPrefix)
		if err != nil {
			return fmt.Errorf("初始化Redis缓存失败: %w", err)
		}
		defer redisStore.Close()
		snapshots = redisStore
	}

	// 通知器
	notifier := notify.NewNotifier(notify.Options{
		TelegramBotToken:  cfg.Notification.Telegram.BotToken,
		TelegramChatID:    cfg.Notification.Telegram.ChatID,
		DiscordWebhookURL: cfg.Notification.Discord.WebhookURL,
	}, log.Named("notify").Logger)

	// 创建监控器并执行周期
	m := monitor.New(
		source,
		analysis.NewAnalyzer(cfg.ThresholdTable()),
		persister,
		snapshots,
		notifier,
		cfg.Monitor.Symbols,
		log.Named("monitor").Logger,
	)

	return m.RunCycle(ctx, cycleType)
}
