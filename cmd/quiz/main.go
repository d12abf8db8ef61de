package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/aliskhannn/quizbank/internal/config"
	httpapi "github.com/aliskhannn/quizbank/internal/delivery/http"
	"github.com/aliskhannn/quizbank/internal/delivery/telegram"
	"github.com/aliskhannn/quizbank/internal/infra/bank"
	"github.com/aliskhannn/quizbank/internal/infra/postgres"
	"github.com/aliskhannn/quizbank/internal/infra/postgres/repository"
	"github.com/aliskhannn/quizbank/internal/logger"
	"github.com/aliskhannn/quizbank/internal/service"
	"github.com/aliskhannn/quizbank/internal/storage"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	lg, err := logger.New(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = lg.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dsn, err := cfg.DB.DSN()
	if err != nil {
		lg.Fatal("database is not configured", zap.Error(err))
	}
	pool, err := postgres.NewPool(ctx, dsn, postgres.PoolConfig{
		MaxConns:        int32(cfg.DB.MaxConnections),
		MaxConnLifetime: cfg.DB.MaxConnLifetime,
	})
	if err != nil {
		lg.Fatal("failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	source, err := newBankSource(cfg)
	if err != nil {
		lg.Fatal("failed to init bank source", zap.Error(err))
	}

	// Initialize repositories and services.
	tr := postgres.NewTransactor(pool)
	submissionRepo := repository.NewSubmissionRepository(tr)
	resultRepo := repository.NewResultRepository(pool)
	progressRepo := repository.NewProgressRepository(pool)
	credentialRepo := repository.NewCredentialRepository(pool)

	rnd := service.NewRandomizer()
	bankService := service.NewBankService(source, cfg.Bank.FetchTimeout, lg)
	authService := service.NewAuthService(bankService, cfg.Bank.UsersFile, credentialRepo, lg)
	resetService := service.NewResetService(tr)
	quizService := service.NewQuizService(
		bankService,
		service.NewQuizComposer(rnd, lg),
		storage.NewQuizStorage(),
		submissionRepo,
		resultRepo,
		progressRepo,
		service.QuizConfig{
			Database:       cfg.Quiz.Database,
			QuestionCount:  cfg.Quiz.QuestionCount,
			SectionCount:   cfg.Quiz.SectionCount,
			Duration:       cfg.Quiz.Duration,
			Grace:          cfg.Quiz.Grace,
			SessionTTL:     cfg.Quiz.SessionTTL,
			PassPercentage: cfg.Quiz.PassPercentage,
			Weights:        cfg.Quiz.WeightMap(),
		},
		lg,
	)

	chats := storage.NewChatStorage()

	// Stale attempts and idle bot chats are evicted on a schedule.
	c := cron.New()
	if _, err := c.AddFunc(cfg.Quiz.EvictSchedule, func() {
		quizService.EvictStale()
		if n := chats.EvictOlderThan(cfg.Quiz.SessionTTL); n > 0 {
			lg.Info("evicted idle chats", zap.Int("count", n))
		}
	}); err != nil {
		lg.Fatal("invalid eviction schedule", zap.String("schedule", cfg.Quiz.EvictSchedule), zap.Error(err))
	}
	c.Start()
	defer c.Stop()

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	api := httpapi.NewHandler(authService, quizService, resetService, httpapi.Config{
		JWTSecret:    cfg.Auth.JWTSecret,
		CookieName:   cfg.Auth.CookieName,
		TokenTTL:     cfg.Auth.TokenTTL,
		SecureCookie: cfg.Env == "production",
		LoginRate:    cfg.Auth.LoginRate,
		LoginBurst:   cfg.Auth.LoginBurst,
	}, lg)

	srv := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      api.Router(),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		lg.Info("http server started", zap.String("addr", cfg.HTTP.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if cfg.Telegram.Token != "" {
		bot, err := newBot(cfg, lg)
		if err != nil {
			lg.Fatal("failed to init telegram bot", zap.Error(err))
		}
		handler := telegram.NewHandler(bot, lg, authService, quizService, resetService, chats)

		g.Go(func() error {
			err := handler.Run(gctx)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	} else {
		lg.Info("telegram bot disabled")
	}

	if err := g.Wait(); err != nil {
		lg.Error("service stopped with error", zap.Error(err))
	}
	lg.Info("shutdown complete")
}

func newBankSource(cfg *config.Config) (service.BankSource, error) {
	switch cfg.Bank.Source {
	case config.SourceMinio:
		return bank.NewMinioSource(bank.MinioConfig{
			Endpoint:  cfg.Bank.MinioEndpoint,
			AccessKey: cfg.Bank.MinioAccessID,
			SecretKey: cfg.Bank.MinioSecret,
			Bucket:    cfg.Bank.MinioBucket,
			UseSSL:    cfg.Bank.MinioUseSSL,
		})
	case config.SourceFile:
		return bank.NewFileSource(cfg.Bank.Dir), nil
	default:
		return bank.NewGitHubSource(&http.Client{}, cfg.Bank.GitHubAPIURL, cfg.Bank.GitHubRepo, cfg.Bank.GitHubToken), nil
	}
}

func newBot(cfg *config.Config, lg *zap.Logger) (*tgbotapi.BotAPI, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		return nil, err
	}
	bot.Debug = cfg.Telegram.Debug

	// Set commands.
	commands := []tgbotapi.BotCommand{
		{Command: "start", Description: "Start the bot"},
		{Command: "login", Description: "Log in (usage: /login username password)"},
		{Command: "sections", Description: "Sections and progress"},
		{Command: "quiz", Description: "Start a quiz (optionally: /quiz section)"},
		{Command: "results", Description: "Latest results"},
		{Command: "reset", Description: "Clear results and progress"},
		{Command: "logout", Description: "Log out"},
		{Command: "help", Description: "Help"},
	}
	if _, err := bot.Request(tgbotapi.NewSetMyCommands(commands...)); err != nil {
		lg.Warn("failed to set bot commands", zap.Error(err))
	}

	lg.Info("authorized on telegram", zap.String("account", bot.Self.UserName))
	return bot, nil
}
