package effects

import (
	"slices"

	"go.uber.org/multierr"
)

// SideEffects summarizes what a resolution changed.
type SideEffects struct {
	SummonedCount int      `json:"summoned_count,omitempty"`
	Summoned      []string `json:"summoned,omitempty"`
	Drawn         int      `json:"drawn,omitempty"`
	Burned        int      `json:"burned,omitempty"`
	Damage        int      `json:"damage,omitempty"`
	Healed        int      `json:"healed,omitempty"`
	Targets       []string `json:"targets,omitempty"`
	ChoiceID      string   `json:"choice_id,omitempty"`
}

func (s *SideEffects) merge(o SideEffects) {
	s.SummonedCount += o.SummonedCount
	s.Summoned = append(s.Summoned, o.Summoned...)
	s.Drawn += o.Drawn
	s.Burned += o.Burned
	s.Damage += o.Damage
	s.Healed += o.Healed
	for _, id := range o.Targets {
		if !slices.Contains(s.Targets, id) {
			s.Targets = append(s.Targets, id)
		}
	}
	if o.ChoiceID != "" {
		s.ChoiceID = o.ChoiceID
	}
}

// Result is the uniform outcome of resolving one effect descriptor.
type Result struct {
	Kind        Kind
	Success     bool
	Err         error
	SideEffects SideEffects
}

func ok(k Kind) Result {
	return Result{Kind: k, Success: true}
}

func fail(k Kind, err error) Result {
	return Result{Kind: k, Err: err}
}

// Merge folds a chained result in. The combined result succeeds only when
// both do; errors are kept together.
func (r Result) Merge(o Result) Result {
	r.Success = r.Success && o.Success
	r.Err = multierr.Append(r.Err, o.Err)
	r.SideEffects.merge(o.SideEffects)
	return r
}
