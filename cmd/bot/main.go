package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/betbot/mmbot/internal/domain"
	"github.com/betbot/mmbot/internal/fleet"
	"github.com/betbot/mmbot/internal/maker"
	"github.com/betbot/mmbot/internal/taker"
	"github.com/betbot/mmbot/internal/venue"
	"github.com/betbot/mmbot/internal/venue/paper"
	"github.com/betbot/mmbot/internal/venue/rest"
	"github.com/betbot/mmbot/internal/venue/stream"
	"github.com/betbot/mmbot/pkg/config"
	"github.com/betbot/mmbot/pkg/logger"
	"github.com/betbot/mmbot/pkg/shutdown"
)

func main() {
	configPath := flag.String("config", "yml/config.yml", "配置文件路径")
	flag.Parse()

	// .env 不存在不算错误（生产环境直接用环境变量）
	_ = godotenv.Load()

	cfg, err := config.LoadFromFile(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(logger.Config{
		Level:      cfg.Log.Level,
		OutputFile: cfg.Log.OutputFile,
		MaxSize:    cfg.Log.MaxSize,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAge,
		Compress:   cfg.Log.Compress,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}

	logger.Infof("🤖 mmbot 启动: %d 个交易对, dryRun=%v", len(cfg.Pairs), cfg.DryRun)

	ctx := context.Background()

	md := rest.NewMarketData(cfg.Venue.MarketDataURL)

	var exec venue.ExecutionClient
	if cfg.DryRun {
		exec = paper.NewExecution()
	} else {
		exec = rest.NewExecution(cfg.Venue.ExecutionURL)
	}
	cred := venue.Credential{
		APIKey:    os.Getenv("MMBOT_API_KEY"),
		APISecret: os.Getenv("MMBOT_API_SECRET"),
	}
	if err := exec.Initialize(ctx, cred); err != nil {
		logger.Errorf("执行客户端认证失败: %v", err)
		os.Exit(1)
	}

	// 可选 WebSocket 行情流：为 REST 行情缓存保温
	var tickerStream *stream.TickerStream
	if cfg.Venue.TickerStreamURL != "" {
		symbols := make([]string, 0, len(cfg.Pairs))
		for _, p := range cfg.Pairs {
			symbols = append(symbols, p.ReferenceSymbol)
		}
		tickerStream = stream.NewTickerStream(cfg.Venue.TickerStreamURL, symbols, md.ApplyTicker)
		if err := tickerStream.Start(ctx); err != nil {
			logger.Warnf("行情流启动失败（回退纯 REST 轮询）: %v", err)
			tickerStream = nil
		}
	}

	warmup := time.Duration(cfg.WarmupMs) * time.Millisecond
	pairs := make([]*fleet.PairOrchestrator, 0, len(cfg.Pairs))
	for _, pc := range cfg.Pairs {
		pair := &domain.TradingPair{
			Symbol:          pc.Symbol,
			BaseAsset:       pc.BaseAsset,
			QuoteAsset:      pc.QuoteAsset,
			ReferenceSymbol: pc.ReferenceSymbol,
		}
		quoter := maker.NewQuoter(pair, cfg.EffectiveMaker(pc), md, exec)
		activity := taker.NewTaker(pair, cfg.EffectiveTaker(pc), md, exec)
		pairs = append(pairs, fleet.NewPairOrchestrator(pair, quoter, activity, warmup))
	}

	coordinator := fleet.NewCoordinator(md, pairs)
	if err := coordinator.Start(ctx); err != nil {
		logger.Errorf("fleet 启动失败: %v", err)
		os.Exit(1)
	}

	manager := shutdown.NewManager()
	manager.OnShutdown(func(ctx context.Context) {
		_ = coordinator.Stop(ctx)
	})
	if tickerStream != nil {
		manager.OnShutdown(func(ctx context.Context) {
			tickerStream.Stop()
		})
	}

	sigC := make(chan os.Signal, 1)
	signal.Notify(sigC, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigC
	logger.Infof("收到信号 %s，开始优雅关闭", sig)

	grace := time.Duration(cfg.ShutdownGraceMs) * time.Millisecond
	shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()
	manager.Shutdown(shutdownCtx)

	logger.Info("👋 mmbot 已退出")
	os.Exit(0)
}
