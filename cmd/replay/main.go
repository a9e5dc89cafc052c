package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cbodonnell/broadside/pkg/config"
	"github.com/cbodonnell/broadside/pkg/log"
	"github.com/cbodonnell/broadside/pkg/replay"
	"github.com/cbodonnell/broadside/pkg/repositories"
	"github.com/cbodonnell/broadside/pkg/version"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		panic(fmt.Sprintf("Failed to load .env: %v", err))
	}
	cfg, err := config.LoadReplayConfig()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	flag.StringVar(&cfg.Addr, "addr", cfg.Addr, "Address to listen on")
	flag.StringVar(&cfg.Journal, "journal", cfg.Journal, "Frame journal to replay from")
	flag.StringVar(&cfg.Session, "session", cfg.Session, "Session to replay (default: most recent)")
	flag.DurationVar(&cfg.Delay, "delay", cfg.Delay, "Delay between frames")
	flag.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level")
	flag.StringVar(&cfg.Token, "token", cfg.Token, "Bearer token required for /sessions and /viewers")
	flag.Parse()

	if err := cfg.Validate(); err != nil {
		panic(fmt.Sprintf("Invalid config: %v", err))
	}

	parsedLogLevel, err := log.ParseLogLevel(cfg.LogLevel)
	if err != nil {
		panic(fmt.Sprintf("Failed to parse log level: %v", err))
	}

	logger := log.New(os.Stdout, "", log.DefaultLoggerFlag, parsedLogLevel)
	log.SetDefaultLogger(logger)
	log.Info("Log level set to %s", parsedLogLevel)

	log.Info("Starting replay server version %s", version.Get())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repository, err := repositories.Open(ctx, cfg.Journal)
	if err != nil {
		panic(fmt.Sprintf("Failed to open journal: %v", err))
	}
	defer repository.Close(context.Background())

	server := replay.NewReplayServer(replay.NewReplayServerOptions{
		Addr:       cfg.Addr,
		Repository: repository,
		Session:    cfg.Session,
		Delay:      cfg.Delay,
		Token:      cfg.Token,
		Logger:     logger,
	})

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Stop(shutdownCtx); err != nil {
			log.Error("Failed to stop replay server: %v", err)
		}
	}()

	server.Start()
}
