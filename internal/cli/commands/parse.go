package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/windql-lang/windql/pkg/parser"
	"github.com/windql-lang/windql/pkg/ptf"
)

// ParseOptions holds options for the parse command.
type ParseOptions struct {
	Input string
}

// NewParseCommand creates the parse command.
func NewParseCommand() *cobra.Command {
	opts := &ParseOptions{}

	cmd := &cobra.Command{
		Use:   "parse [QUERY]",
		Short: "Parse a query and print its syntax tree",
		Long: `Parse a WindQL query and print the syntax tree as JSON.

On a syntax error, every diagnostic collected during the parse is printed
with its line and column.`,
		Example: `  # Parse a query directly
  windql parse "select a, rank() over (partition by b order by c) from t"

  # Parse a query from a file
  windql parse -i query.wql

  # Pipe a query in
  echo "from t select a where b > 1" | windql parse`,
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := queryText(args, opts.Input, cmd.InOrStdin())
			if err != nil {
				return err
			}

			p := parser.NewParser(text, ptf.NewRegistry())
			q, err := p.Parse()
			if err != nil {
				return fmt.Errorf("parse failed:\n%s", p.ParseErrors())
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(q)
		},
	}

	cmd.Flags().StringVarP(&opts.Input, "input", "i", "", "Read the query from a file")
	return cmd
}

// queryText resolves the query source: arguments, input file, then stdin.
func queryText(args []string, input string, stdin io.Reader) (string, error) {
	switch {
	case len(args) > 0:
		return strings.Join(args, " "), nil
	case input != "":
		content, err := os.ReadFile(input)
		if err != nil {
			return "", fmt.Errorf("failed to read file: %w", err)
		}
		return string(content), nil
	}

	if f, ok := stdin.(*os.File); ok && isTerminal(f) {
		return "", fmt.Errorf("no query given (pass it as an argument, with --input, or on stdin)")
	}
	content, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	if strings.TrimSpace(string(content)) == "" {
		return "", fmt.Errorf("no query given (pass it as an argument, with --input, or on stdin)")
	}
	return string(content), nil
}

func isTerminal(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}
