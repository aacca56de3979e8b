package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/cortexgraph/memoryd/internal/config"
	"github.com/cortexgraph/memoryd/internal/toolsurface"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "serve the tool surface over a line-delimited stdio protocol",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd)
	},
}

// request is one line of the stdio protocol: a tool call keyed by an
// opaque id the caller correlates against the matching response line.
type request struct {
	ID        json.RawMessage `json:"id"`
	Tool      string          `json:"tool"`
	Arguments json.RawMessage `json:"arguments"`
}

// response is either {"id":..,"result":..} or {"id":..,"error":..},
// mutually exclusive.
type response struct {
	ID     json.RawMessage `json:"id"`
	Result any             `json:"result,omitempty"`
	Error  string          `json:"error,omitempty"`
}

func runServe(cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	level := slog.LevelInfo
	_ = level.UnmarshalText([]byte(cfg.LogLevel))
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	engine := toolsurface.New(cfg.MemoryFilePath, cfg.Search)

	slog.Info("memoryd serving", "store", cfg.MemoryFilePath)
	return serveLoop(ctx, engine, cmd.InOrStdin(), cmd.OutOrStdout())
}

func serveLoop(ctx context.Context, engine *toolsurface.Engine, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	enc := json.NewEncoder(out)

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req request
		if err := json.Unmarshal(line, &req); err != nil {
			_ = enc.Encode(response{Error: fmt.Sprintf("malformed request: %v", err)})
			continue
		}

		result, err := engine.Dispatch(ctx, req.Tool, req.Arguments)
		resp := response{ID: req.ID}
		if err != nil {
			resp.Error = err.Error()
			slog.Error("tool call failed", "tool", req.Tool, "error", err)
		} else {
			resp.Result = result
		}
		if encErr := enc.Encode(resp); encErr != nil {
			return fmt.Errorf("write response: %w", encErr)
		}
	}

	if err := scanner.Err(); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("read request: %w", err)
	}
	return nil
}
