package nn

import "fmt"

// ConfigError reports an invalid construction parameter. Constructors
// return it instead of panicking so callers can surface configuration
// mistakes cleanly.
type ConfigError struct {
	Field string
	Value any
	Msg   string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid config: %s=%v: %s", e.Field, e.Value, e.Msg)
}

// ShapeError reports a runtime tensor-shape mismatch on a module's
// forward path, such as a batch-size disagreement between the input
// and the carried hidden state.
type ShapeError struct {
	Op   string
	Want string
	Got  string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("%s: shape mismatch: want %s, got %s", e.Op, e.Want, e.Got)
}
