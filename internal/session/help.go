package session

import (
	"fmt"
	"strings"

	"tritcalc/internal/engine"
)

var sessionCommands = [][2]string{
	{"X=<ternary>", "store a value in variable X (A-Z)"},
	{"vars", "list set variables"},
	{"history", "show recent commands"},
	{"clear", "clear history and variables"},
	{"save <file>", "encrypt and write the session state"},
	{"load <file>", "read and decrypt a saved state"},
	{"monitor", "show step count and intrusion status"},
	{"stats", "show the most used commands and failures"},
	{"bench [n]", "time add and mul against math/big"},
	{"version", "print the version"},
	{"quit, exit", "leave the shell"},
}

var scriptCommands = [][2]string{
	{"PROG <name> { cmd; cmd }", "define a script"},
	{"RUN <name>", "run a script"},
	{"IF <cond> THEN <cmd>", "run cmd when cond is non-zero (scripts only)"},
	{"FOR <V> <start> <end> <cmd>", "run cmd with V over an inclusive range (scripts only)"},
}

// helpText renders the command reference as markdown. Engine operations are
// listed from the registry so new operations appear without edits here.
func (i *Interpreter) helpText() string {
	var b strings.Builder
	b.WriteString("# tritcalc\n\nNumbers are unbalanced ternary (digits 0, 1, 2, optional leading `-`). ")
	b.WriteString("A single uppercase letter in an operand position recalls that variable.\n")

	reg := i.eng.Registry()
	for _, cat := range engine.Categories {
		ops := reg.ByCategory(cat)
		if len(ops) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n## %s\n\n", strings.ToUpper(string(cat[:1]))+string(cat[1:]))
		for _, op := range ops {
			fmt.Fprintf(&b, "- `%s` %s\n", op.Usage, op.Description)
		}
	}

	writeTable(&b, "Session", sessionCommands)
	writeTable(&b, "Scripts", scriptCommands)
	if names := i.scripts.names(); len(names) > 0 {
		fmt.Fprintf(&b, "\nDefined scripts: %s\n", strings.Join(names, ", "))
	}
	return b.String()
}

func writeTable(b *strings.Builder, title string, rows [][2]string) {
	fmt.Fprintf(b, "\n## %s\n\n", title)
	for _, r := range rows {
		fmt.Fprintf(b, "- `%s` %s\n", r[0], r[1])
	}
}
