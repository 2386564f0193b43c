package state

import (
	"errors"
	"fmt"
)

// ErrorKind classifies rule failures. Every kind except GameOver is
// recoverable: the failure is recorded and play continues.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindNoValidTargets
	KindMissingRequiredParameter
	KindUnknownEffectType
	KindZoneFull
	KindEntityNotFound
	KindInvalidMinionOperation
	KindInvalidAction
	KindGameOver
)

var kindNames = map[ErrorKind]string{
	KindUnknown:                  "Unknown",
	KindNoValidTargets:           "NoValidTargets",
	KindMissingRequiredParameter: "MissingRequiredParameter",
	KindUnknownEffectType:        "UnknownEffectType",
	KindZoneFull:                 "ZoneFull",
	KindEntityNotFound:           "EntityNotFound",
	KindInvalidMinionOperation:   "InvalidMinionOperation",
	KindInvalidAction:            "InvalidAction",
	KindGameOver:                 "GameOver",
}

func (k ErrorKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// RuleError is a classified failure raised while applying game rules.
type RuleError struct {
	Kind   ErrorKind
	Op     string
	Detail string
}

func (e *RuleError) Error() string {
	switch {
	case e.Op != "" && e.Detail != "":
		return fmt.Sprintf("%s: %s: %s", e.Op, e.Kind, e.Detail)
	case e.Op != "":
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	case e.Detail != "":
		return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
	}
	return e.Kind.String()
}

// Is matches another RuleError of the same kind, so the sentinels below
// work with errors.Is regardless of Op and Detail.
func (e *RuleError) Is(target error) bool {
	var t *RuleError
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind && t.Op == "" && t.Detail == ""
}

// Sentinels for errors.Is.
var (
	ErrNoValidTargets           = &RuleError{Kind: KindNoValidTargets}
	ErrMissingRequiredParameter = &RuleError{Kind: KindMissingRequiredParameter}
	ErrUnknownEffectType        = &RuleError{Kind: KindUnknownEffectType}
	ErrZoneFull                 = &RuleError{Kind: KindZoneFull}
	ErrEntityNotFound           = &RuleError{Kind: KindEntityNotFound}
	ErrInvalidMinionOperation   = &RuleError{Kind: KindInvalidMinionOperation}
	ErrInvalidAction            = &RuleError{Kind: KindInvalidAction}
	ErrGameOver                 = &RuleError{Kind: KindGameOver}
)

// NewError creates a classified error.
func NewError(kind ErrorKind, op, format string, args ...any) *RuleError {
	return &RuleError{Kind: kind, Op: op, Detail: fmt.Sprintf(format, args...)}
}

// KindOf extracts the kind of err, or KindUnknown.
func KindOf(err error) ErrorKind {
	var re *RuleError
	if errors.As(err, &re) {
		return re.Kind
	}
	return KindUnknown
}
