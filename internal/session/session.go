// Package session implements the line-oriented calculator interpreter:
// variable slots, command history, PROG/RUN macros, encrypted state files
// and the audit/journal trail for every command.
package session

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/shlex"
	"github.com/google/uuid"

	"tritcalc/internal/bench"
	"tritcalc/internal/engine"
	"tritcalc/internal/logging"
	"tritcalc/internal/monitor"
	"tritcalc/internal/store"
	"tritcalc/internal/trit"
	"tritcalc/internal/usage"
	"tritcalc/internal/vault"
)

// Options bounds an Interpreter. Zero fields select the defaults.
type Options struct {
	HistorySize       int
	MaxScripts        int
	MaxScriptCommands int
	MaxLoopIterations int
	MaxCallDepth      int

	// Version is reported by the version command.
	Version string
}

// DefaultOptions returns the built-in limits.
func DefaultOptions() Options {
	return Options{
		HistorySize:       10,
		MaxScripts:        10,
		MaxScriptCommands: 50,
		MaxLoopIterations: 10000,
		MaxCallDepth:      8,
		Version:           "dev",
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.HistorySize <= 0 {
		o.HistorySize = d.HistorySize
	}
	if o.MaxScripts <= 0 {
		o.MaxScripts = d.MaxScripts
	}
	if o.MaxScriptCommands <= 0 {
		o.MaxScriptCommands = d.MaxScriptCommands
	}
	if o.MaxLoopIterations <= 0 {
		o.MaxLoopIterations = d.MaxLoopIterations
	}
	if o.MaxCallDepth <= 0 {
		o.MaxCallDepth = d.MaxCallDepth
	}
	if o.Version == "" {
		o.Version = d.Version
	}
	return o
}

// Journal receives one entry per executed command line.
type Journal interface {
	Record(ctx context.Context, e store.Entry) error
}

// StatusFunc reports the intrusion monitor's view for the monitor command.
type StatusFunc func() monitor.Status

// Response is the printable result of one command line.
type Response struct {
	// Command is the lowercased command word, empty for blank input.
	Command string
	Text    string

	// Markdown marks Text as markdown (help output).
	Markdown bool

	// Quit is set for quit/exit; the caller decides what leaving means.
	Quit bool
}

// Option configures an Interpreter.
type Option func(*Interpreter)

// WithCipher enables save and load.
func WithCipher(c vault.Cipher) Option {
	return func(i *Interpreter) { i.cipher = c }
}

// WithJournal records every command to j.
func WithJournal(j Journal) Option {
	return func(i *Interpreter) { i.journal = j }
}

// WithStatus supplies the monitor command's data source.
func WithStatus(f StatusFunc) Option {
	return func(i *Interpreter) { i.status = f }
}

// WithTracker shares a step tracker, typically with a monitor.
func WithTracker(t *usage.Tracker) Option {
	return func(i *Interpreter) { i.tracker = t }
}

// WithSessionID overrides the generated session id.
func WithSessionID(id string) Option {
	return func(i *Interpreter) { i.id = id }
}

// Interpreter executes command lines against an Engine. Execute calls are
// serialized.
type Interpreter struct {
	mu sync.Mutex

	id      string
	eng     *engine.Engine
	opts    Options
	state   *State
	scripts *scriptTable
	tracker *usage.Tracker
	cipher  vault.Cipher
	journal Journal
	status  StatusFunc
	audit   *logging.AuditLogger

	turn    int
	started time.Time
}

// New creates an interpreter over eng.
func New(eng *engine.Engine, opts Options, options ...Option) *Interpreter {
	opts = opts.withDefaults()
	i := &Interpreter{
		id:      uuid.NewString(),
		eng:     eng,
		opts:    opts,
		state:   NewState(opts.HistorySize),
		scripts: newScriptTable(),
	}
	for _, o := range options {
		o(i)
	}
	if i.tracker == nil {
		i.tracker = usage.NewTracker()
	}
	i.audit = logging.AuditWithSession(i.id)
	return i
}

// ID returns the session id used in audit and journal records.
func (i *Interpreter) ID() string { return i.id }

// Tracker returns the step tracker.
func (i *Interpreter) Tracker() *usage.Tracker { return i.tracker }

// Version returns the configured version string.
func (i *Interpreter) Version() string {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.opts.Version
}

// State returns a JSON snapshot of history and variables.
func (i *Interpreter) State() ([]byte, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.state.MarshalJSON()
}

// SetOptions applies new limits, e.g. after a config reload.
func (i *Interpreter) SetOptions(opts Options) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if opts.Version == "" {
		opts.Version = i.opts.Version
	}
	i.opts = opts.withDefaults()
	i.state.Resize(i.opts.HistorySize)
	logging.Session("Session %s: options updated (history=%d)", i.id, i.opts.HistorySize)
}

// Begin audits the start of the session.
func (i *Interpreter) Begin() {
	i.mu.Lock()
	i.started = time.Now()
	i.mu.Unlock()
	logging.Session("Session %s started", i.id)
	i.audit.SessionStart(i.id)
}

// End audits the end of the session.
func (i *Interpreter) End() {
	i.mu.Lock()
	dur := time.Since(i.started)
	i.mu.Unlock()
	steps := i.tracker.Steps()
	logging.Session("Session %s ended after %d steps", i.id, steps)
	i.audit.SessionEnd(i.id, steps, dur.Milliseconds())
}

// Execute runs one command line. Blank lines are ignored and do not count
// as steps. Successful lines are appended to history.
func (i *Interpreter) Execute(ctx context.Context, line string) (Response, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return Response{}, nil
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	i.turn++
	start := time.Now()
	resp, err := i.exec(ctx, line, 0)
	dur := time.Since(start)

	if err != nil {
		code := Code(err)
		i.tracker.Fail(resp.Command)
		logging.SessionWarn("Session %s turn %d: %q failed (code %d): %v", i.id, i.turn, line, code, err)
		i.audit.CommandError(resp.Command, line, code, err)
		i.record(ctx, line, "", code, err)
		return resp, err
	}

	if !resp.Quit {
		i.state.Push(line)
	}
	logging.SessionDebug("Session %s turn %d: %q -> %q (%v)", i.id, i.turn, line, resp.Text, dur)
	i.audit.CommandExec(resp.Command, line, dur.Milliseconds())
	i.record(ctx, line, resp.Text, 0, nil)
	return resp, nil
}

func (i *Interpreter) record(ctx context.Context, line, output string, code int, err error) {
	if i.journal == nil {
		return
	}
	e := store.Entry{SessionID: i.id, Turn: i.turn, Input: line, Output: output, ErrorCode: code}
	if err != nil {
		e.Error = err.Error()
	}
	if jerr := i.journal.Record(ctx, e); jerr != nil {
		logging.SessionWarn("Session %s: journal write failed: %v", i.id, jerr)
	}
}

const statsTop = 5

var assignRe = regexp.MustCompile(`^([A-Z])\s*=\s*(\S+)$`)

// exec dispatches one line. depth is the macro nesting level; 0 is the
// user's own input.
func (i *Interpreter) exec(ctx context.Context, line string, depth int) (Response, error) {
	if err := ctx.Err(); err != nil {
		return Response{}, err
	}

	if m := assignRe.FindStringSubmatch(line); m != nil {
		i.tracker.Step("assign")
		return i.assign(m[1], m[2])
	}

	word := strings.ToLower(firstWord(line))
	i.tracker.Step(word)
	resp := Response{Command: word}

	switch word {
	case "prog":
		text, err := i.define(line)
		resp.Text = text
		return resp, err
	case "if", "for":
		if depth == 0 {
			return resp, fmt.Errorf("%w: %s", ErrScriptOnly, strings.ToUpper(word))
		}
		return i.control(ctx, word, line, depth)
	}

	args, err := shlex.Split(line)
	if err != nil {
		return resp, fmt.Errorf("%w: %v", ErrUsage, err)
	}
	if len(args) == 0 {
		// the whole line was a # comment
		return resp, fmt.Errorf("%w: %s", ErrUnknownCommand, line)
	}
	args = args[1:]

	switch word {
	case "quit", "exit":
		resp.Quit = true
	case "help":
		resp.Text = i.helpText()
		resp.Markdown = true
	case "version":
		resp.Text = "tritcalc " + i.opts.Version
	case "vars":
		resp.Text = i.listVars()
	case "history":
		resp.Text = i.listHistory()
	case "clear":
		i.state.Clear()
		resp.Text = "History and variables cleared"
	case "monitor":
		resp.Text = i.monitorText()
	case "stats":
		resp.Text = i.statsText()
	case "bench":
		resp.Text, err = i.bench(ctx, args)
	case "save":
		resp.Text, err = i.save(args)
	case "load":
		resp.Text, err = i.load(args)
	case "run":
		resp.Text, err = i.run(ctx, args, depth)
	default:
		if !i.eng.Has(word) {
			return resp, fmt.Errorf("%w: %s", ErrUnknownCommand, firstWord(line))
		}
		resp.Text, err = i.apply(word, args)
	}
	return resp, err
}

func firstWord(line string) string {
	if f := strings.Fields(line); len(f) > 0 {
		return f[0]
	}
	return ""
}

func (i *Interpreter) assign(name, literal string) (Response, error) {
	resp := Response{Command: "assign"}
	v, err := trit.Parse(literal)
	if err != nil {
		return resp, err
	}
	if err := i.state.Set(name, v); err != nil {
		return resp, err
	}
	resp.Text = name + " stored"
	return resp, nil
}

// resolve replaces a single uppercase letter with that variable's value.
func (i *Interpreter) resolve(arg string) (string, error) {
	if _, ok := VarIndex(arg); !ok {
		return arg, nil
	}
	v, ok := i.state.Get(arg)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsetVariable, arg)
	}
	return v.String(), nil
}

func (i *Interpreter) apply(op string, args []string) (string, error) {
	operands := make([]string, len(args))
	for k, a := range args {
		v, err := i.resolve(a)
		if err != nil {
			return "", err
		}
		operands[k] = v
	}
	out, err := i.eng.Apply(op, operands)
	if err != nil {
		logging.EngineDebug("%s %v failed (code %d): %v", op, operands, Code(err), err)
		return "", err
	}
	logging.EngineDebug("%s %v = %s", op, operands, out)
	return out.String(), nil
}

func (i *Interpreter) listVars() string {
	vars := i.state.Variables()
	if len(vars) == 0 {
		return "No variables set"
	}
	lines := make([]string, len(vars))
	for k, v := range vars {
		lines[k] = fmt.Sprintf("%s = %s (%s)", v.Name, v.Value, v.Value.Decimal())
	}
	return strings.Join(lines, "\n")
}

func (i *Interpreter) listHistory() string {
	h := i.state.History()
	if len(h) == 0 {
		return "History is empty"
	}
	lines := make([]string, len(h))
	for k, line := range h {
		lines[k] = fmt.Sprintf("%3d  %s", k+1, line)
	}
	return strings.Join(lines, "\n")
}

func (i *Interpreter) monitorText() string {
	if i.status == nil {
		return fmt.Sprintf("steps=%d (monitor not running)", i.tracker.Steps())
	}
	st := i.status()
	alert := "none"
	if st.Alert {
		alert = "INTRUSION ALERT"
	}
	return fmt.Sprintf("steps=%d threshold=%d alert=%s", st.Steps, st.Threshold, alert)
}

// statsText lists the most used commands and their failure counts.
func (i *Interpreter) statsText() string {
	st := i.tracker.Stats()
	var failed int64
	for _, n := range st.Failures {
		failed += n
	}

	lines := []string{fmt.Sprintf("steps=%d failures=%d", st.Steps, failed)}
	for _, oc := range st.Top(statsTop) {
		line := fmt.Sprintf("%-8s %d", oc.Op, oc.Count)
		if n := st.Failures[oc.Op]; n > 0 {
			line += fmt.Sprintf(" (%d failed)", n)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func (i *Interpreter) bench(ctx context.Context, args []string) (string, error) {
	opts := bench.Options{}
	if len(args) > 1 {
		return "", fmt.Errorf("%w: bench [iterations]", ErrUsage)
	}
	if len(args) == 1 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n <= 0 {
			return "", fmt.Errorf("%w: bench [iterations]", ErrUsage)
		}
		opts.Iterations = n
	}
	results, err := bench.Run(ctx, i.eng, opts)
	if err != nil {
		return "", err
	}
	lines := make([]string, len(results))
	for k, r := range results {
		lines[k] = r.String()
	}
	return strings.Join(lines, "\n"), nil
}

func (i *Interpreter) save(args []string) (string, error) {
	if len(args) != 1 {
		return "", fmt.Errorf("%w: save <file>", ErrUsage)
	}
	path := args[0]
	n, err := i.saveState(path)
	i.audit.StateSave(path, n, err)
	if err != nil {
		return "", err
	}
	logging.Session("Session %s: state saved to %s (%d bytes)", i.id, path, n)
	return "State saved to " + path, nil
}

func (i *Interpreter) saveState(path string) (int, error) {
	if i.cipher == nil {
		return 0, ErrNoCipher
	}
	data, err := i.state.MarshalJSON()
	if err != nil {
		return 0, fmt.Errorf("encode state: %w", err)
	}
	blob, err := i.cipher.Encrypt(data)
	if err != nil {
		return 0, fmt.Errorf("encrypt state: %w", err)
	}
	if err := os.WriteFile(path, blob, 0600); err != nil {
		return 0, fmt.Errorf("write state: %w", err)
	}
	return len(blob), nil
}

func (i *Interpreter) load(args []string) (string, error) {
	if len(args) != 1 {
		return "", fmt.Errorf("%w: load <file>", ErrUsage)
	}
	path := args[0]
	n, err := i.loadState(path)
	i.audit.StateLoad(path, n, err)
	if err != nil {
		return "", err
	}
	logging.Session("Session %s: state loaded from %s", i.id, path)
	return "State loaded from " + path, nil
}

func (i *Interpreter) loadState(path string) (int, error) {
	if i.cipher == nil {
		return 0, ErrNoCipher
	}
	blob, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read state: %w", err)
	}
	data, err := i.cipher.Decrypt(blob)
	if err != nil {
		return len(blob), fmt.Errorf("decrypt state: %w", err)
	}
	next := NewState(i.opts.HistorySize)
	if err := next.UnmarshalJSON(data); err != nil {
		return len(blob), fmt.Errorf("decode state: %w", err)
	}
	i.state = next
	return len(blob), nil
}
