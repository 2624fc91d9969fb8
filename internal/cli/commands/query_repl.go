package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/aactmcp/internal/gateway"
)

const (
	replPrompt     = "aact> "
	replContPrompt = "  ...> "
)

// replSession holds the state shared by REPL lines.
type replSession struct {
	gw      *gateway.Gateway
	out     io.Writer
	errOut  io.Writer
	format  string
	maxRows int
}

func runQueryREPL(cmd *cobra.Command, cmdCtx *CommandContext, maxRows int) error {
	ctx := cmd.Context()

	gw, cleanup, err := cmdCtx.OpenGateway()
	if err != nil {
		return err
	}
	defer cleanup()

	sess := &replSession{
		gw:      gw,
		out:     cmd.OutOrStdout(),
		errOut:  cmd.ErrOrStderr(),
		format:  cmdCtx.Cfg.Output,
		maxRows: maxRows,
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          replPrompt,
		HistoryFile:     historyPath(),
		AutoComplete:    newTableCompleter(ctx, gw),
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize REPL: %w", err)
	}
	defer func() { _ = rl.Close() }()

	_, _ = fmt.Fprintf(sess.out, "AACT query REPL (%s, schema %s, max %d rows)\n", cmdCtx.Cfg.Target.Type, gw.Schema(), maxRows)
	_, _ = fmt.Fprintln(sess.out, "Type .help for commands, .quit to exit")
	_, _ = fmt.Fprintln(sess.out)

	var multiLineBuffer strings.Builder
	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			multiLineBuffer.Reset()
			rl.SetPrompt(replPrompt)
			continue
		}
		if errors.Is(err, io.EOF) {
			break
		}

		if sess.handleLine(ctx, line, &multiLineBuffer) {
			break
		}
		if multiLineBuffer.Len() > 0 {
			rl.SetPrompt(replContPrompt)
		} else {
			rl.SetPrompt(replPrompt)
		}
	}

	return nil
}

// handleLine processes one input line and reports whether the REPL should exit.
// SQL accumulates in buf until a line ends with a semicolon.
func (s *replSession) handleLine(ctx context.Context, line string, buf *strings.Builder) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}

	if buf.Len() == 0 && strings.HasPrefix(line, ".") {
		return s.handleDotCommand(ctx, line)
	}

	buf.WriteString(line)
	if !strings.HasSuffix(line, ";") {
		buf.WriteString(" ")
		return false
	}

	query := strings.TrimSuffix(buf.String(), ";")
	buf.Reset()

	if err := s.runQuery(ctx, query); err != nil {
		_, _ = fmt.Fprintf(s.errOut, "Error: %v\n", err)
	}
	_, _ = fmt.Fprintln(s.out)
	return false
}

func (s *replSession) runQuery(ctx context.Context, query string) error {
	result, err := s.gw.RunQuery(ctx, query, s.maxRows)
	if err != nil {
		return err
	}
	if err := renderRows(s.out, nil, result.Rows, s.format); err != nil {
		return err
	}
	if result.Truncated {
		_, _ = fmt.Fprintf(s.out, "(limited to %d rows)\n", s.maxRows)
	}
	return nil
}

// handleDotCommand runs a dot-command and reports whether the REPL should exit.
func (s *replSession) handleDotCommand(ctx context.Context, line string) bool {
	parts := strings.Fields(line)
	command := strings.ToLower(parts[0])

	switch command {
	case ".quit", ".exit":
		return true

	case ".help":
		printREPLHelp(s.out)

	case ".tables":
		tables, err := s.gw.ListTables(ctx)
		if err != nil {
			_, _ = fmt.Fprintf(s.errOut, "Error: %v\n", err)
			return false
		}
		if err := renderRows(s.out, nil, tableRows(tables), s.format); err != nil {
			_, _ = fmt.Fprintf(s.errOut, "Error: %v\n", err)
		}

	case ".schema":
		if len(parts) < 2 {
			_, _ = fmt.Fprintln(s.errOut, "Usage: .schema <table>")
			return false
		}
		cols, err := s.gw.DescribeTable(ctx, parts[1])
		if err != nil {
			_, _ = fmt.Fprintf(s.errOut, "Error: %v\n", err)
			return false
		}
		if len(cols) == 0 {
			_, _ = fmt.Fprintf(s.errOut, "table '%s' not found\n", parts[1])
			return false
		}
		if err := renderRows(s.out, columnHeader, columnRows(cols), s.format); err != nil {
			_, _ = fmt.Fprintf(s.errOut, "Error: %v\n", err)
		}

	case ".clear":
		_, _ = fmt.Fprint(s.out, "\033[H\033[2J")

	default:
		_, _ = fmt.Fprintf(s.errOut, "Unknown command: %s (type .help for commands)\n", command)
	}
	return false
}

func printREPLHelp(w io.Writer) {
	help := `
Commands:
  .help           Show this help message
  .tables         List tables of the governed schema
  .schema <name>  Show the columns of a table
  .clear          Clear the screen
  .quit / .exit   Exit the REPL

Tips:
  - SQL statements must end with a semicolon (;)
  - Only SELECT statements are accepted
  - Tab completion works for table names
`
	_, _ = fmt.Fprintln(w, help)
}

// historyPath returns the REPL history file in the user cache directory,
// or "" to disable history.
func historyPath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return ""
	}
	dir = filepath.Join(dir, "aactmcp")
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return ""
	}
	return filepath.Join(dir, "query_history")
}

// newTableCompleter creates a readline completer for table names.
// A failed lookup leaves only the dot-commands.
func newTableCompleter(ctx context.Context, gw *gateway.Gateway) *readline.PrefixCompleter {
	var items []readline.PrefixCompleterInterface

	if tables, err := gw.ListTables(ctx); err == nil {
		for _, t := range tables {
			items = append(items, readline.PcItem(t.TableName))
		}
	}

	items = append(items,
		readline.PcItem(".help"),
		readline.PcItem(".tables"),
		readline.PcItem(".schema"),
		readline.PcItem(".clear"),
		readline.PcItem(".quit"),
		readline.PcItem(".exit"),
	)

	return readline.NewPrefixCompleter(items...)
}
