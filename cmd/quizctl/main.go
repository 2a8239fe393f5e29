// Command quizctl drives the quiz backend in-process, keeping one signed-in
// session in the configured store between invocations.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"github.com/SlpAus/quiz-share-backend/internal/api"
	"github.com/SlpAus/quiz-share-backend/internal/app"
	"github.com/SlpAus/quiz-share-backend/internal/platform/config"
	"github.com/SlpAus/quiz-share-backend/internal/platform/logging"
	"github.com/SlpAus/quiz-share-backend/internal/session"
)

func main() {
	global := pflag.NewFlagSet("quizctl", pflag.ContinueOnError)
	configDir := global.String("config", "", "directory holding config.yaml")
	logLevel := global.String("log-level", "warn", "log level (debug, info, warn, error)")
	sqlitePath := global.String("sqlite-path", defaultSqlitePath,
		"SQLite file for the sqlite backend; keep it apart from a running server's file")
	global.SetInterspersed(false)
	global.Usage = func() {
		fmt.Fprintln(os.Stderr, usage)
		global.PrintDefaults()
	}
	if err := global.Parse(os.Args[1:]); err != nil {
		os.Exit(2)
	}
	logging.Setup(*logLevel, true)

	var paths []string
	if *configDir != "" {
		paths = append(paths, *configDir)
	}
	cfg, err := config.LoadConfig(paths...)
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	useOwnStore(cfg, *sqlitePath)

	ctx := context.Background()
	application, err := app.New(ctx, cfg)
	if err != nil {
		slog.Error("failed to open store", "err", err)
		os.Exit(1)
	}
	defer application.Close()

	sess := session.New(application.KV)
	sess.Restore(ctx)

	c := &cli{client: api.NewClient(application.Router, sess), out: os.Stdout}
	if err := c.run(ctx, global.Args()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", api.Message(err, err.Error()))
		application.Close()
		os.Exit(1)
	}
}

const defaultSqlitePath = "quizctl.db"

// useOwnStore points quizctl at its own SQLite file and turns off the
// snapshot mirror. Store locks are per process, so a server and quizctl
// must never share a file. Shared postgres and redis backends are left
// as configured and are only safe while no server is writing.
func useOwnStore(cfg *config.Config, sqlitePath string) {
	if cfg.Storage.Backend == config.BackendSqlite && sqlitePath != "" {
		cfg.Storage.Sqlite.Path = sqlitePath
	}
	cfg.Backup.Enabled = false
}
