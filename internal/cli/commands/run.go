package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/windql-lang/windql/internal/cli/config"
	"github.com/windql-lang/windql/internal/engine"
)

// RunOptions holds options for the run command.
type RunOptions struct {
	Input string
}

// NewRunCommand creates the run command.
func NewRunCommand() *cobra.Command {
	opts := &RunOptions{}

	cmd := &cobra.Command{
		Use:   "run [QUERY]",
		Short: "Execute a query and render the result",
		Long: `Execute a WindQL query against a file source and render the result.

The input rows come from the query's FROM clause, e.g.
hdfs(path='data.parquet') or hdfs(path='rows.jsonl', format='jsonl').
Without an INTO clause the result is rendered to stdout in the selected
format.`,
		Example: `  # Rank rows within each department
  windql run "select name, rank() over (partition by dept order by sal desc) as r from hdfs(path='emp.jsonl', format='jsonl')"

  # Run a query from a file, render as JSON
  windql run -i query.wql --format json

  # Write the result to a file instead of stdout
  windql run "from hdfs(path='emp.jsonl') select name into path='out.jsonl'"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := queryText(args, opts.Input, cmd.InOrStdin())
			if err != nil {
				return err
			}

			cfg := config.FromContext(cmd.Context())
			eng := engine.New(
				engine.WithLogger(config.Logger(cmd.Context())),
				engine.WithWorkers(cfg.Workers),
			)

			res, err := eng.Run(cmd.Context(), text)
			if err != nil {
				return err
			}
			return renderResult(cmd.OutOrStdout(), res, cfg.Format)
		},
	}

	cmd.Flags().StringVarP(&opts.Input, "input", "i", "", "Read the query from a file")
	return cmd
}

// NewREPLCommand creates the repl command.
func NewREPLCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Start an interactive query session",
		Long: `Start an interactive WindQL session.

Queries end with a semicolon and may span multiple lines. Dot-commands
control the session; type .help inside the REPL for the list.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if f, ok := cmd.InOrStdin().(*os.File); ok && !isTerminal(f) {
				return fmt.Errorf("repl needs a terminal (pipe queries to 'windql run' instead)")
			}
			return runREPL(cmd)
		},
	}
}
