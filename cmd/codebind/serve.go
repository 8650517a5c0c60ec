package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/codebind/internal/debug"
	"github.com/standardbeagle/codebind/internal/mcp"
	"github.com/standardbeagle/codebind/internal/watcher"
)

func serveCommand(c *cli.Context) error {
	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return err
	}

	// Stdout carries the protocol; debug output must go elsewhere
	debug.SetMCPMode(true)
	if debug.IsDebugEnabled() {
		if path, err := debug.InitDebugLogFile(); err == nil {
			debug.LogMCP("debug log: %s\n", path)
			defer debug.CloseDebugLog()
		}
	}

	env, err := buildEnvironment(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Watch.Enabled {
		w, err := watcher.New(cfg, env.scanner, env.model)
		if err != nil {
			return err
		}
		if err := w.Start(); err != nil {
			return err
		}
		defer w.Stop()
	}

	server := mcp.NewServer(cfg, env.service, env.model, env.registry)
	return server.Run(ctx)
}
