package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"gamestats/internal/config"
	gerr "gamestats/internal/errors"
	"gamestats/internal/logging"
	"go.uber.org/zap"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stdout))
}

// run executes one CLI invocation and returns the process exit code.
func run(ctx context.Context, args []string, stdout io.Writer) int {
	a := &app{out: stdout}
	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetOut(stdout)
	err := root.ExecuteContext(ctx)
	if a.logger != nil {
		defer a.logger.Sync() //nolint:errcheck
	}
	if err == nil {
		return 0
	}

	logger := a.logger
	if logger == nil {
		// config or flags failed before the configured logger existed
		if logger, _ = logging.NewLogger("info"); logger == nil {
			logger = zap.NewNop()
		}
	}
	e := gerr.From(err)
	fields := []zap.Field{zap.String("code", string(e.Code))}
	if e.Hint != "" {
		fields = append(fields, zap.String("hint", e.Hint))
	}
	if len(e.Details) > 0 {
		fields = append(fields, zap.Any("details", e.Details))
	}
	logger.Error(e.Message, fields...)
	return 1
}

// app carries what the subcommands share once flags are parsed.
type app struct {
	cfg    config.Config
	logger *zap.Logger
	out    io.Writer
}
