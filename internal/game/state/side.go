package state

import "fmt"

// Side identifies one of the two players from the engine's point of view.
type Side int

const (
	SideSelf Side = iota
	SideOpponent
)

// Sides lists both sides in index order.
var Sides = [2]Side{SideSelf, SideOpponent}

// Opposite returns the other side.
func (s Side) Opposite() Side {
	if s == SideSelf {
		return SideOpponent
	}
	return SideSelf
}

func (s Side) String() string {
	switch s {
	case SideSelf:
		return "self"
	case SideOpponent:
		return "opponent"
	}
	return fmt.Sprintf("side(%d)", int(s))
}

// Valid reports whether s is SideSelf or SideOpponent.
func (s Side) Valid() bool {
	return s == SideSelf || s == SideOpponent
}

// ParseSide parses "self" or "opponent".
func ParseSide(v string) (Side, error) {
	switch v {
	case "self":
		return SideSelf, nil
	case "opponent":
		return SideOpponent, nil
	}
	return 0, NewError(KindInvalidAction, "parse side", "unknown side %q", v)
}
