package session

import (
	"context"
	"fmt"
	"math/big"
	"regexp"
	"sort"
	"strings"

	"tritcalc/internal/logging"
	"tritcalc/internal/trit"
)

type scriptTable struct {
	scripts map[string][]string
}

func newScriptTable() *scriptTable {
	return &scriptTable{scripts: make(map[string][]string)}
}

func (t *scriptTable) get(name string) ([]string, bool) {
	cmds, ok := t.scripts[strings.ToLower(name)]
	return cmds, ok
}

func (t *scriptTable) names() []string {
	out := make([]string, 0, len(t.scripts))
	for name := range t.scripts {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

var (
	progRe = regexp.MustCompile(`(?is)^PROG\s+(\S+)\s*\{(.*)\}\s*$`)
	ifRe   = regexp.MustCompile(`(?i)^IF\s+(\S+)\s+THEN\s+(.+)$`)
	forRe  = regexp.MustCompile(`(?i)^FOR\s+([A-Z])\s+(\S+)\s+(\S+)\s+(.+)$`)
	nameRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
)

// define handles PROG <name> { cmd; cmd }. Redefining a name replaces it.
func (i *Interpreter) define(line string) (string, error) {
	m := progRe.FindStringSubmatch(line)
	if m == nil {
		return "", fmt.Errorf("%w: PROG <name> { cmd; ... }", ErrUsage)
	}
	name := strings.ToLower(m[1])
	if !nameRe.MatchString(name) {
		return "", fmt.Errorf("%w: invalid script name %q", ErrUsage, m[1])
	}

	var cmds []string
	for _, c := range strings.FieldsFunc(m[2], func(r rune) bool { return r == ';' || r == '\n' }) {
		if c = strings.TrimSpace(c); c != "" {
			cmds = append(cmds, c)
		}
	}
	if len(cmds) == 0 {
		return "", fmt.Errorf("%w: script %s has no commands", ErrUsage, name)
	}
	if len(cmds) > i.opts.MaxScriptCommands {
		return "", fmt.Errorf("%w: %s has %d commands, max %d", ErrScriptLimit, name, len(cmds), i.opts.MaxScriptCommands)
	}
	if _, exists := i.scripts.get(name); !exists && len(i.scripts.scripts) >= i.opts.MaxScripts {
		return "", fmt.Errorf("%w: %d scripts defined", ErrScriptLimit, i.opts.MaxScripts)
	}

	i.scripts.scripts[name] = cmds
	logging.SessionDebug("Session %s: script %s defined (%d commands)", i.id, name, len(cmds))
	return fmt.Sprintf("Script %s defined (%d commands)", name, len(cmds)), nil
}

// run executes a script's commands in order, stopping at the first error.
func (i *Interpreter) run(ctx context.Context, args []string, depth int) (string, error) {
	if len(args) != 1 {
		return "", fmt.Errorf("%w: RUN <name>", ErrUsage)
	}
	name := strings.ToLower(args[0])
	cmds, ok := i.scripts.get(name)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrScriptNotFound, args[0])
	}
	if depth+1 > i.opts.MaxCallDepth {
		return "", fmt.Errorf("%w: %s at depth %d", ErrCallDepth, name, depth+1)
	}

	var out []string
	for n, cmd := range cmds {
		text, err := i.step(ctx, cmd, depth+1)
		if err != nil {
			return strings.Join(out, "\n"), fmt.Errorf("%s:%d: %w", name, n+1, err)
		}
		if text != "" {
			out = append(out, text)
		}
	}
	return strings.Join(out, "\n"), nil
}

// step runs one command inside a script.
func (i *Interpreter) step(ctx context.Context, cmd string, depth int) (string, error) {
	resp, err := i.exec(ctx, cmd, depth)
	if err != nil {
		return "", err
	}
	if resp.Quit {
		return "", fmt.Errorf("%w: %s is not allowed in scripts", ErrUsage, resp.Command)
	}
	return resp.Text, nil
}

// control handles IF and FOR, which only appear inside scripts.
func (i *Interpreter) control(ctx context.Context, word, line string, depth int) (Response, error) {
	resp := Response{Command: word}
	var err error
	if word == "if" {
		resp.Text, err = i.ifThen(ctx, line, depth)
	} else {
		resp.Text, err = i.forLoop(ctx, line, depth)
	}
	return resp, err
}

func (i *Interpreter) ifThen(ctx context.Context, line string, depth int) (string, error) {
	m := ifRe.FindStringSubmatch(line)
	if m == nil {
		return "", fmt.Errorf("%w: IF <cond> THEN <cmd>", ErrUsage)
	}
	cond, err := i.value(m[1])
	if err != nil {
		return "", err
	}
	if cond.IsZero() {
		return "", nil
	}
	return i.step(ctx, m[2], depth)
}

func (i *Interpreter) forLoop(ctx context.Context, line string, depth int) (string, error) {
	m := forRe.FindStringSubmatch(line)
	if m == nil {
		return "", fmt.Errorf("%w: FOR <V> <start> <end> <cmd>", ErrUsage)
	}
	start, err := i.value(m[2])
	if err != nil {
		return "", err
	}
	end, err := i.value(m[3])
	if err != nil {
		return "", err
	}

	lo, hi := start.Big(), end.Big()
	if hi.Cmp(lo) >= 0 {
		span := new(big.Int).Sub(hi, lo)
		if !span.IsInt64() || span.Int64() >= int64(i.opts.MaxLoopIterations) {
			return "", fmt.Errorf("%w: %s..%s exceeds %d iterations", ErrLoopLimit, start, end, i.opts.MaxLoopIterations)
		}
	}

	var out []string
	one := big.NewInt(1)
	for n := new(big.Int).Set(lo); n.Cmp(hi) <= 0; n.Add(n, one) {
		if err := i.state.Set(m[1], trit.FromBig(n)); err != nil {
			return "", err
		}
		text, err := i.step(ctx, m[4], depth)
		if err != nil {
			return strings.Join(out, "\n"), err
		}
		if text != "" {
			out = append(out, text)
		}
	}
	return strings.Join(out, "\n"), nil
}

// value reads a ternary literal or a variable.
func (i *Interpreter) value(arg string) (trit.Value, error) {
	s, err := i.resolve(arg)
	if err != nil {
		return trit.Value{}, err
	}
	return trit.Parse(s)
}
