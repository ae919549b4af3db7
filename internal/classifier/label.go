// Package classifier provides the nearest-neighbour example store and the
// adapter that joins it to the camera and the embedding model.
package classifier

import (
	"errors"
	"fmt"
)

// Label identifies one of the two trained classes.
type Label int

const (
	// NotTouched is the class of frames with hands away from the face.
	NotTouched Label = iota
	// Touched is the class of frames with a hand on the face.
	Touched
)

// Labels lists every label in declaration order.
var Labels = []Label{NotTouched, Touched}

// ErrUnknownLabel is returned for a Label outside the enumeration.
var ErrUnknownLabel = errors.New("unknown label")

// String returns the label's wire name.
func (l Label) String() string {
	switch l {
	case NotTouched:
		return "not_touch"
	case Touched:
		return "touched"
	default:
		return fmt.Sprintf("label(%d)", int(l))
	}
}

// Valid reports whether l is part of the enumeration.
func (l Label) Valid() bool {
	return l == NotTouched || l == Touched
}

// ParseLabel parses a wire name produced by String.
func ParseLabel(s string) (Label, error) {
	switch s {
	case "not_touch":
		return NotTouched, nil
	case "touched":
		return Touched, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownLabel, s)
	}
}

// MarshalText implements encoding.TextMarshaler so labels appear as names in
// JSON maps and payloads.
func (l Label) MarshalText() ([]byte, error) {
	if !l.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownLabel, int(l))
	}
	return []byte(l.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *Label) UnmarshalText(b []byte) error {
	parsed, err := ParseLabel(string(b))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}
