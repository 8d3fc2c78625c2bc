package session

import (
	"encoding/json"
	"fmt"

	"tritcalc/internal/trit"
)

// NumVariables is the number of single-letter slots, A through Z.
const NumVariables = 26

// State is the persistent part of a session: the history ring and the
// variable slots. It is not safe for concurrent use; the Interpreter
// serializes access.
type State struct {
	history []string
	size    int
	vars    [NumVariables]*trit.Value
}

// NewState returns an empty state keeping at most historySize entries.
func NewState(historySize int) *State {
	if historySize < 1 {
		historySize = 1
	}
	return &State{size: historySize}
}

// Push appends a command line, dropping the oldest past capacity.
func (s *State) Push(line string) {
	s.history = append(s.history, line)
	if over := len(s.history) - s.size; over > 0 {
		s.history = append(s.history[:0:0], s.history[over:]...)
	}
}

// History returns the retained lines, oldest first.
func (s *State) History() []string {
	return append([]string(nil), s.history...)
}

// Resize changes the history capacity, trimming the oldest entries.
func (s *State) Resize(size int) {
	if size < 1 {
		size = 1
	}
	s.size = size
	if over := len(s.history) - size; over > 0 {
		s.history = append(s.history[:0:0], s.history[over:]...)
	}
}

// VarIndex maps "A".."Z" to a slot index.
func VarIndex(name string) (int, bool) {
	if len(name) != 1 || name[0] < 'A' || name[0] > 'Z' {
		return 0, false
	}
	return int(name[0] - 'A'), true
}

// Set stores v in the named slot.
func (s *State) Set(name string, v trit.Value) error {
	i, ok := VarIndex(name)
	if !ok {
		return fmt.Errorf("%w: variable names are A-Z, got %q", ErrUsage, name)
	}
	s.vars[i] = &v
	return nil
}

// Get recalls the named slot.
func (s *State) Get(name string) (trit.Value, bool) {
	i, ok := VarIndex(name)
	if !ok || s.vars[i] == nil {
		return trit.Value{}, false
	}
	return *s.vars[i], true
}

// Clear empties history and every variable.
func (s *State) Clear() {
	s.history = nil
	s.vars = [NumVariables]*trit.Value{}
}

// Variable is a set slot, for listing.
type Variable struct {
	Name  string
	Value trit.Value
}

// Variables returns the set slots in alphabetical order.
func (s *State) Variables() []Variable {
	var out []Variable
	for i, v := range s.vars {
		if v != nil {
			out = append(out, Variable{Name: string(rune('A' + i)), Value: *v})
		}
	}
	return out
}

type stateJSON struct {
	History   []string  `json:"history"`
	Variables []*string `json:"variables"`
}

// MarshalJSON writes {"history":[...],"variables":[26 entries]} where unset
// slots are null.
func (s *State) MarshalJSON() ([]byte, error) {
	out := stateJSON{
		History:   s.History(),
		Variables: make([]*string, NumVariables),
	}
	if out.History == nil {
		out.History = []string{}
	}
	for i, v := range s.vars {
		if v != nil {
			str := v.String()
			out.Variables[i] = &str
		}
	}
	return json.Marshal(out)
}

// UnmarshalJSON validates every stored value. The capacity set by NewState
// is kept; extra history is trimmed from the front.
func (s *State) UnmarshalJSON(data []byte) error {
	var in stateJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	if len(in.Variables) > NumVariables {
		return fmt.Errorf("state has %d variables, max %d", len(in.Variables), NumVariables)
	}

	var vars [NumVariables]*trit.Value
	for i, str := range in.Variables {
		if str == nil {
			continue
		}
		v, err := trit.Parse(*str)
		if err != nil {
			return fmt.Errorf("variable %c: %w", rune('A'+i), err)
		}
		vars[i] = &v
	}

	if s.size < 1 {
		s.size = len(in.History)
		if s.size < 1 {
			s.size = 1
		}
	}
	s.vars = vars
	s.history = nil
	for _, line := range in.History {
		s.Push(line)
	}
	return nil
}
