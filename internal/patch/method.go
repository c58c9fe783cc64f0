package patch

import "fmt"

// Method selects how patch origins are placed.
type Method int

const (
	// Random draws independent, uniformly distributed origins.
	Random Method = iota
	// Uniform lays origins on an evenly spaced grid.
	Uniform
)

func (m Method) String() string {
	switch m {
	case Random:
		return "random"
	case Uniform:
		return "uniform"
	default:
		return fmt.Sprintf("Method(%d)", int(m))
	}
}

// ParseMethod parses "random" or "uniform".
func ParseMethod(s string) (Method, error) {
	switch s {
	case "random":
		return Random, nil
	case "uniform":
		return Uniform, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownMethod, s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (m Method) MarshalText() ([]byte, error) {
	switch m {
	case Random, Uniform:
		return []byte(m.String()), nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownMethod, int(m))
	}
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Method) UnmarshalText(text []byte) error {
	v, err := ParseMethod(string(text))
	if err != nil {
		return err
	}
	*m = v
	return nil
}
