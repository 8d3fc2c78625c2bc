package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"tritcalc/internal/session"
)

// runCmd executes a script file through the interpreter
var runCmd = &cobra.Command{
	Use:   "run <file>",
	Short: "Execute a file of calculator commands",
	Long: `Runs each line of a file through the session interpreter, exactly as if
typed into the shell. Blank lines and lines starting with # are skipped.
A PROG definition may span several lines until its closing brace.
Execution stops at the first failing line.`,
	Args: cobra.ExactArgs(1),
	RunE: runScriptFile,
}

func runScriptFile(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open script: %w", err)
	}
	defer f.Close()

	rt, err := bootstrap(true)
	if err != nil {
		return err
	}
	defer rt.Close()

	rt.interp.Begin()
	defer rt.interp.End()

	return executeLines(context.Background(), rt.interp, f, args[0], cmd.OutOrStdout())
}

// executeLines feeds r to interp one command at a time and prints output.
func executeLines(ctx context.Context, interp *session.Interpreter, r io.Reader, name string, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	var (
		pending   strings.Builder
		startLine int
		lineNo    int
	)

	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())

		if pending.Len() == 0 {
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			startLine = lineNo
		} else {
			pending.WriteByte('\n')
		}
		pending.WriteString(line)

		// Multi-line PROG bodies are collected until the braces balance.
		text := pending.String()
		if strings.Count(text, "{") > strings.Count(text, "}") {
			continue
		}
		pending.Reset()

		logger.Debug("Executing", zap.String("file", name), zap.Int("line", startLine), zap.String("input", text))
		resp, err := interp.Execute(ctx, text)
		if err != nil {
			return fmt.Errorf("%s:%d: %w", name, startLine, err)
		}
		if resp.Text != "" {
			fmt.Fprintln(w, resp.Text)
		}
		if resp.Quit {
			return nil
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read %s: %w", name, err)
	}
	if pending.Len() > 0 {
		return fmt.Errorf("%s:%d: %w: unterminated PROG body", name, startLine, session.ErrUsage)
	}
	return nil
}
