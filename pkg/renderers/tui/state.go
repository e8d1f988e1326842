package tui

import "fmt"

// State tracks collected values keyed by element name, seeded with prefilled
// values that act as prompt defaults.
type State struct {
	values map[string]any
}

// NewState seeds the state with prefilled values.
func NewState(prefill map[string]any) *State {
	values := make(map[string]any, len(prefill))
	for k, v := range prefill {
		values[k] = v
	}
	return &State{values: values}
}

// Values returns the current value map (mutable).
func (s *State) Values() map[string]any {
	if s == nil {
		return nil
	}
	return s.values
}

// Value returns the value collected or prefilled for name.
func (s *State) Value(name string) (any, bool) {
	if s == nil {
		return nil, false
	}
	v, ok := s.values[name]
	return v, ok
}

// Set records the value of name.
func (s *State) Set(name string, value any) {
	if s == nil {
		return
	}
	s.values[name] = value
}

// Default renders the prefilled value of name as a prompt default.
func (s *State) Default(name string) string {
	v, ok := s.Value(name)
	if !ok || v == nil {
		return ""
	}
	if str, ok := v.(string); ok {
		return str
	}
	return fmt.Sprint(v)
}
