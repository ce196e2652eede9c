package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/diegok/airhockey/internal/app"
	"github.com/diegok/airhockey/internal/config"
	"github.com/diegok/airhockey/internal/session"
)

func main() {
	cfg, err := config.ParseArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		printUsage()
		os.Exit(1)
	}

	log, closeLog, err := newLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{Dsn: cfg.SentryDSN}); err != nil {
			log.WithError(err).Warn("sentry disabled")
		}
		defer sentry.Flush(2 * time.Second)
	}

	if cfg.IsHost {
		showServerInfo(cfg.Port)
	}

	application := app.NewApp(cfg, log)
	if err := application.Run(); err != nil {
		log.WithError(err).Error("exiting")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		closeLog()
		os.Exit(1)
	}
}

// newLogger builds the process logger. The terminal belongs to the game, so
// without a log file everything is discarded.
func newLogger(cfg *config.Config) (*logrus.Logger, func(), error) {
	log := logrus.New()
	log.Formatter = &logrus.TextFormatter{FullTimestamp: true, DisableColors: true}
	log.Level = cfg.LogLevel

	if cfg.LogFile == "" {
		log.Out = io.Discard
		return log, func() {}, nil
	}

	f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to open log file")
	}
	log.Out = f
	return log, func() { _ = f.Close() }, nil
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  airhockey [options]                Open the menu (Enter plays against the computer)")
	fmt.Fprintln(os.Stderr, "  airhockey --host [options]         Host a match")
	fmt.Fprintln(os.Stderr, "  airhockey --join <address>         Join a hosted match")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Options:")
	fmt.Fprintf(os.Stderr, "  --port <port>         Port (default: %d)\n", config.DefaultPort)
	fmt.Fprintf(os.Stderr, "  --points <n>          Points to win (default: %d)\n", config.DefaultPoints)
	fmt.Fprintf(os.Stderr, "  --difficulty <1-4>    Computer difficulty (default: %d)\n", config.DefaultDifficulty)
	fmt.Fprintln(os.Stderr, "  --log-level <level>   debug, info, warn or error (default: info)")
	fmt.Fprintln(os.Stderr, "  --log-file <path>     Write logs to a file")
	fmt.Fprintln(os.Stderr, "  --sentry-dsn <dsn>    Report crashes to Sentry")
	fmt.Fprintln(os.Stderr, "  --mute                No sound")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Examples:")
	fmt.Fprintln(os.Stderr, "  airhockey --difficulty 4")
	fmt.Fprintln(os.Stderr, "  airhockey --host --points 5")
	fmt.Fprintln(os.Stderr, "  airhockey --join 192.168.1.100")
	fmt.Fprintln(os.Stderr, "  airhockey --join localhost:22222")
}

func showServerInfo(port int) {
	fmt.Printf("Hosting an air hockey match on port %d\n", port)
	fmt.Println("The other player can join using:")
	fmt.Println("")

	for _, addr := range session.LocalAddresses(port) {
		fmt.Printf("  airhockey --join %s\n", addr)
	}

	fmt.Printf("  airhockey --join localhost:%d  (same machine)\n", port)
	fmt.Println("")
}
