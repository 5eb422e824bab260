package gateway

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"

	"github.com/pmos-ai/pmosd/pkg/engine"
	"github.com/pmos-ai/pmosd/pkg/logger"
)

// Console is the interactive terminal surface. It shares the engine
// with the websocket gateway and owns the foreground terminal.
type Console struct {
	engine    *engine.Engine
	workspace string
}

func NewConsole(eng *engine.Engine, workspace string) *Console {
	return &Console{
		engine:    eng,
		workspace: workspace,
	}
}

// Run blocks until EOF, "exit", or ctx cancellation.
func (c *Console) Run(ctx context.Context) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "pmos> ",
		HistoryFile:     filepath.Join(c.workspace, "console_history"),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return fmt.Errorf("console init: %w", err)
	}
	defer rl.Close()

	fmt.Println("pmosd console. Type a request, or 'exit' to quit.")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			continue
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		line = strings.TrimSpace(line)
		switch line {
		case "":
			continue
		case "exit", "quit":
			return nil
		}

		result := c.engine.Process(ctx, line)

		if result.Message != "" {
			fmt.Println(result.Message)
		} else if result.Success {
			fmt.Println("Done.")
		} else {
			fmt.Println("Sorry, I couldn't do that.")
		}

		logger.DebugCF("console", "Resolved console request", map[string]interface{}{
			"type":    string(result.Type),
			"success": result.Success,
			"dismiss": result.ShouldDismiss,
		})
	}
}
