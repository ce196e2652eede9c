package config

import (
	"flag"
	"net"
	"strconv"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Default values for configuration
const (
	DefaultPort       = 22222
	DefaultPoints     = 7
	DefaultDifficulty = 3
	MinDifficulty     = 1
	MaxDifficulty     = 4
)

// Config holds the application configuration
type Config struct {
	IsHost      bool
	JoinAddr    string
	Port        int
	PointsToWin int
	Difficulty  int
	LogLevel    logrus.Level
	LogFile     string
	SentryDSN   string
	Mute        bool
}

// ParseArgs parses command line arguments and returns a Config
func ParseArgs(args []string) (*Config, error) {
	fs := flag.NewFlagSet("airhockey", flag.ContinueOnError)

	host := fs.Bool("host", false, "host a match and wait for a guest")
	join := fs.String("join", "", "host address to join")
	port := fs.Int("port", DefaultPort, "port number (1-65535)")
	points := fs.Int("points", DefaultPoints, "points to win (>=1)")
	difficulty := fs.Int("difficulty", DefaultDifficulty, "AI difficulty (1-4)")
	level := fs.String("log-level", "info", "log level (debug, info, warn, error)")
	logFile := fs.String("log-file", "", "write logs to this file")
	dsn := fs.String("sentry-dsn", "", "report crashes to this Sentry DSN")
	mute := fs.Bool("mute", false, "disable sound")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if *host && *join != "" {
		return nil, errors.New("cannot specify both --host and --join")
	}

	if *port < 1 || *port > 65535 {
		return nil, errors.Errorf("port must be between 1 and 65535, got %d", *port)
	}

	if *points < 1 {
		return nil, errors.Errorf("points must be at least 1, got %d", *points)
	}

	if *difficulty < MinDifficulty || *difficulty > MaxDifficulty {
		return nil, errors.Errorf("difficulty must be between %d and %d, got %d", MinDifficulty, MaxDifficulty, *difficulty)
	}

	lvl, err := logrus.ParseLevel(*level)
	if err != nil {
		return nil, errors.Wrap(err, "invalid --log-level")
	}

	cfg := &Config{
		IsHost:      *host,
		JoinAddr:    *join,
		Port:        *port,
		PointsToWin: *points,
		Difficulty:  *difficulty,
		LogLevel:    lvl,
		LogFile:     *logFile,
		SentryDSN:   *dsn,
		Mute:        *mute,
	}

	return cfg, nil
}

// Offline reports whether neither hosting nor joining was asked for.
func (c *Config) Offline() bool {
	return !c.IsHost && c.JoinAddr == ""
}

// ListenAddr is the address a host binds to.
func (c *Config) ListenAddr() string {
	return net.JoinHostPort("", strconv.Itoa(c.Port))
}

// DialAddr is the address a guest connects to. The configured port is used
// when the join address has none.
func (c *Config) DialAddr() string {
	addr := c.JoinAddr
	if addr == "" {
		addr = "localhost"
	}
	if _, _, err := net.SplitHostPort(addr); err == nil {
		return addr
	}
	return net.JoinHostPort(addr, strconv.Itoa(c.Port))
}
