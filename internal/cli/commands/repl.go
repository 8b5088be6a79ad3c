package commands

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/windql-lang/windql/internal/cli/config"
	"github.com/windql-lang/windql/internal/engine"
)

func runREPL(cmd *cobra.Command) error {
	ctx := cmd.Context()
	cfg := config.FromContext(ctx)

	eng := engine.New(
		engine.WithLogger(config.Logger(ctx)),
		engine.WithWorkers(cfg.Workers),
	)

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "windql> ",
		HistoryFile:     cfg.HistoryFile,
		AutoComplete:    replCompleter(),
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize REPL: %w", err)
	}
	defer func() { _ = rl.Close() }()

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "WindQL REPL\n")
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Type .help for commands, .quit to exit")
	_, _ = fmt.Fprintln(cmd.OutOrStdout())

	format := cfg.Format
	var buffer strings.Builder
	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			buffer.Reset()
			rl.SetPrompt("windql> ")
			continue
		}
		if errors.Is(err, io.EOF) {
			break
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if buffer.Len() == 0 && strings.HasPrefix(line, ".") {
			quit := handleDotCommand(cmd, line, &format)
			if quit {
				break
			}
			continue
		}

		// Accumulate multi-line query until semicolon
		buffer.WriteString(line)
		if !strings.HasSuffix(line, ";") {
			buffer.WriteString(" ")
			rl.SetPrompt("   ...> ")
			continue
		}
		rl.SetPrompt("windql> ")

		query := strings.TrimSuffix(buffer.String(), ";")
		buffer.Reset()

		res, err := eng.Run(ctx, query)
		if err != nil {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
			continue
		}
		if err := renderResult(cmd.OutOrStdout(), res, format); err != nil {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout())
	}

	return nil
}

// handleDotCommand runs one dot-command; it reports whether the REPL should
// exit.
func handleDotCommand(cmd *cobra.Command, line string, format *string) bool {
	parts := strings.Fields(line)
	command := strings.ToLower(parts[0])

	switch command {
	case ".quit", ".exit":
		return true

	case ".help":
		printREPLHelp(cmd.OutOrStdout())

	case ".format":
		if len(parts) < 2 {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Current format: %s\n", *format)
			return false
		}
		switch parts[1] {
		case "table", "json", "csv", "md":
			*format = parts[1]
		default:
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Unknown format: %s (table|json|csv|md)\n", parts[1])
		}

	case ".clear":
		fmt.Print("\033[H\033[2J")

	default:
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Unknown command: %s (type .help for commands)\n", command)
	}
	return false
}

func printREPLHelp(w io.Writer) {
	help := `
Commands:
  .help            Show this help message
  .format [name]   Show or set the output format (table|json|csv|md)
  .clear           Clear the screen
  .quit / .exit    Exit the REPL

Tips:
  - Queries must end with a semicolon (;)
  - Use arrow keys to navigate history
`
	_, _ = fmt.Fprintln(w, help)
}

// replCompleter completes keywords and dot-commands.
func replCompleter() *readline.PrefixCompleter {
	keywords := []string{
		"select", "from", "where", "window", "partition", "order", "by",
		"rows", "range", "between", "unbounded", "preceding", "following",
		"current", "row", "over", "into", "path", "serde", "format",
		"hdfs", "asc", "desc",
	}

	items := make([]readline.PrefixCompleterInterface, 0, len(keywords)+5)
	for _, kw := range keywords {
		items = append(items, readline.PcItem(kw))
	}
	items = append(items,
		readline.PcItem(".help"),
		readline.PcItem(".format",
			readline.PcItem("table"),
			readline.PcItem("json"),
			readline.PcItem("csv"),
			readline.PcItem("md"),
		),
		readline.PcItem(".clear"),
		readline.PcItem(".quit"),
		readline.PcItem(".exit"),
	)

	return readline.NewPrefixCompleter(items...)
}
