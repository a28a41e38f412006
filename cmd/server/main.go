package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"greentrip/internal/assistant"
	"greentrip/internal/chat"
	"greentrip/internal/common/config"
	"greentrip/internal/common/database"
	"greentrip/internal/common/httpclient"
	"greentrip/internal/common/logger"
	"greentrip/internal/common/observability"
	"greentrip/internal/conversation"
	"greentrip/internal/llm"
	"greentrip/internal/planner"
	"greentrip/internal/preferences"
	"greentrip/internal/providers"
	"greentrip/internal/server"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	zl := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zl.Sync()
	log := logger.NewZapAdapter(zl)

	log.Info("starting", map[string]interface{}{
		"app":         cfg.App.Name,
		"version":     cfg.App.Version,
		"environment": cfg.App.Environment,
	})

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Storage is optional: without Postgres there is no preference memory,
	// without Redis no conversation continuity. The planning pipeline works
	// either way.
	var prefStore *preferences.Store
	if cfg.Database.Postgres.Host != "" {
		pg, err := database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			log.Warn("postgres unavailable, preference memory disabled", map[string]interface{}{"error": err.Error()})
		} else if err := pg.Ping(ctx); err != nil {
			log.Warn("postgres unreachable, preference memory disabled", map[string]interface{}{"error": err.Error()})
			pg.Close()
		} else {
			defer pg.Close()
			prefStore = preferences.NewStore(pg.DB, cfg.Chat.PromotionLimit, log)
			if err := prefStore.Migrate(ctx); err != nil {
				return fmt.Errorf("migrate preferences: %w", err)
			}
		}
	}

	var convStore *conversation.Store
	if cfg.Database.Redis.Address != "" {
		rc, err := database.NewRedis(cfg.Database.Redis)
		if err == nil && rc.Ping(ctx) == nil {
			defer rc.Close()
			convStore = conversation.NewStore(rc.Client, cfg.Chat.HistoryExpiry(), cfg.Chat.MaxHistoryLen, log)
		} else {
			log.Warn("redis unreachable, conversation continuity disabled", nil)
			if rc != nil {
				rc.Close()
			}
		}
	}

	httpClient := httpclient.New(cfg.Providers.CallTimeout())
	completer := llm.NewClient(cfg.LLM, log)
	if !completer.Configured() {
		log.Warn("no LLM credentials, generation and chat run in deterministic mode", nil)
	}

	amadeus := providers.NewAmadeusClient(cfg.Providers.Amadeus, httpClient, log)

	plannerOpts := planner.Options{
		Flights:       amadeus,
		Hotels:        amadeus,
		Weather:       providers.NewOpenWeatherClient(cfg.Providers.OpenWeather, httpClient, log),
		Places:        providers.NewOpenTripMapClient(cfg.Providers.OpenTripMap, httpClient, log),
		Emissions:     providers.NewClimatiqClient(cfg.Providers.Climatiq, httpClient, log),
		LLM:           completer,
		CallTimeout:   cfg.Providers.CallTimeout(),
		LLMTimeout:    cfg.LLM.CallTimeout(),
		Observability: obs,
		Logger:        log,
	}
	if prefStore != nil {
		plannerOpts.Prefs = prefStore
	}
	p := planner.New(plannerOpts)

	var prefWriter chat.PreferenceWriter
	if prefStore != nil {
		prefWriter = prefStore
	}
	chatSvc := chat.NewService(completer, prefWriter, cfg.LLM.CallTimeout(), log)

	var asst *assistant.Assistant
	if convStore != nil {
		asst = assistant.New(convStore, chatSvc, log, nil)
	}

	srv := server.New(cfg.Server, p, chatSvc, asst, convStore, log)
	return srv.Run(ctx)
}
