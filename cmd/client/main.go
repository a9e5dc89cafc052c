package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/cbodonnell/broadside/client/game"
	"github.com/cbodonnell/broadside/client/input"
	"github.com/cbodonnell/broadside/client/network"
	"github.com/cbodonnell/broadside/client/scenes"
	"github.com/cbodonnell/broadside/pkg/config"
	"github.com/cbodonnell/broadside/pkg/log"
	"github.com/cbodonnell/broadside/pkg/queue"
	"github.com/cbodonnell/broadside/pkg/repositories"
	"github.com/cbodonnell/broadside/pkg/state"
	"github.com/cbodonnell/broadside/pkg/version"
	"github.com/cbodonnell/broadside/pkg/workers"
	"github.com/google/uuid"
	"github.com/nsf/termbox-go"
)

const serverMessageQueueSize = 1024

func main() {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load .env: %v\n", err)
		os.Exit(1)
	}
	cfg, err := config.LoadClientConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	flag.StringVar(&cfg.ServerURL, "server-url", cfg.ServerURL, "Game server websocket URL")
	flag.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level")
	flag.StringVar(&cfg.LogFile, "log-file", cfg.LogFile, "Log file (the terminal is used for the board)")
	flag.StringVar(&cfg.Journal, "journal", cfg.Journal, "Frame journal: sqlite://path, postgres://..., or file://path.zst")
	flag.DurationVar(&cfg.PollInterval, "poll-interval", cfg.PollInterval, "How often to apply server frames and redraw")
	flag.BoolVar(&cfg.Debug, "debug", cfg.Debug, "Draw debug info")
	printVersion := flag.Bool("version", false, "Print the version and exit")
	flag.Parse()

	if *printVersion {
		fmt.Println(version.Get())
		return
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid config: %v\n", err)
		os.Exit(1)
	}

	if err := run(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func run(cfg config.ClientConfig) error {
	parsedLogLevel, err := log.ParseLogLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to parse log level: %v", err)
	}
	logFile, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %v", err)
	}
	defer logFile.Close()

	clientID := uuid.NewString()
	logger := log.New(logFile, "", log.DefaultLoggerFlag, parsedLogLevel).With("clientID", clientID)
	log.SetDefaultLogger(logger)
	log.Info("Log level set to %s", parsedLogLevel)
	log.Info("Starting client version %s", version.Get())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		recorder        network.FrameRecorder
		repository      repositories.Repository
		workerWaitGroup sync.WaitGroup
	)
	workerCtx, cancelWorkers := context.WithCancel(context.Background())
	defer func() {
		// the worker flushes buffered frames before the repository closes
		cancelWorkers()
		workerWaitGroup.Wait()
		if repository != nil {
			repository.Close(context.Background())
		}
	}()
	if cfg.Journal != "" {
		repository, err = repositories.Open(ctx, cfg.Journal)
		if err != nil {
			return fmt.Errorf("failed to open journal: %v", err)
		}

		journalWorker := workers.NewJournalWorker(workers.NewJournalWorkerOptions{
			Repository: repository,
			Logger:     logger,
		})
		workerWaitGroup.Add(1)
		go func() {
			defer workerWaitGroup.Done()
			journalWorker.Start(workerCtx)
		}()
		recorder = journalWorker
		log.Info("Journaling frames to %s", cfg.Journal)
	}

	store := state.NewInMemoryStore()
	networkManager, err := network.NewNetworkManager(network.NewNetworkManagerOptions{
		ServerURL:    cfg.ServerURL,
		ClientID:     clientID,
		Store:        store,
		MessageQueue: queue.NewInMemoryQueue[*network.InboundFrame](serverMessageQueueSize),
		Recorder:     recorder,
		Logger:       logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create network manager: %v", err)
	}
	if err := networkManager.Start(ctx); err != nil {
		return fmt.Errorf("failed to connect to %s: %v", cfg.ServerURL, err)
	}
	defer networkManager.Stop()

	g, err := game.NewGame(game.NewGameOptions{
		Debug:   cfg.Debug,
		Network: networkManager,
		Store:   store,
		Logger:  logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create game: %v", err)
	}
	defer g.Close()

	if err := termbox.Init(); err != nil {
		return fmt.Errorf("failed to initialize terminal: %v", err)
	}
	defer termbox.Close()

	runLoop(ctx, g, cfg.PollInterval)

	stats := networkManager.Stats()
	log.Info("Client stopped: %d frames received, %d applied, %d rejected, %d stale", stats.Received, stats.Applied, stats.Rejected, stats.Stale)
	return nil
}

// runLoop is the UI goroutine: it alone applies server frames, handles keys
// and draws.
func runLoop(ctx context.Context, g *game.Game, interval time.Duration) {
	events := make(chan termbox.Event)
	go func() {
		for {
			ev := termbox.PollEvent()
			if ev.Type == termbox.EventInterrupt {
				close(events)
				return
			}
			events <- ev
		}
	}()
	defer func() {
		termbox.Interrupt()
		for range events {
		}
	}()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	canvas := scenes.TermboxCanvas{}
	for !g.Quit() {
		select {
		case <-ctx.Done():
			return
		case ev := <-events:
			if ev.Type == termbox.EventError {
				log.Error("Terminal error: %v", ev.Err)
				continue
			}
			g.HandleAction(ctx, input.ActionForEvent(ev))
		case <-ticker.C:
			if err := g.Update(); err != nil {
				log.Error("Failed to update game: %v", err)
			}
			termbox.Clear(termbox.ColorDefault, termbox.ColorDefault)
			g.Draw(canvas)
			if err := termbox.Flush(); err != nil {
				log.Error("Failed to flush terminal: %v", err)
			}
		}
	}
}
