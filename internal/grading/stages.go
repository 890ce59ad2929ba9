package grading

import "strconv"

const MaxStage = 3

// stageKeys is the walk order: best outcome first.
var stageKeys = []string{"3", "2", "1", "0"}

// StageStep pairs a stage with the predicate that selects it.
type StageStep struct {
	Stage int
	Holds func() bool
}

// StageWalk is a priority-ordered decision list. The first step whose
// predicate holds wins.
type StageWalk []StageStep

// Resolve returns the stage of the first matching step.
func (w StageWalk) Resolve() (int, bool) {
	for _, s := range w {
		if s.Holds() {
			return s.Stage, true
		}
	}
	return 0, false
}

// NewStageWalk builds the descending walk over the defined stages of a
// criterion. Missing stage keys are skipped.
func NewStageWalk(stages map[string]*StageCondition, match func(StageCondition) bool) StageWalk {
	w := make(StageWalk, 0, len(stageKeys))
	for _, k := range stageKeys {
		cond := stages[k]
		if cond == nil {
			continue
		}
		stage, _ := strconv.Atoi(k)
		c := *cond
		w = append(w, StageStep{Stage: stage, Holds: func() bool { return match(c) }})
	}
	return w
}

// tickState is what a multiple-selection condition is evaluated against.
type tickState struct {
	applicable []string
	ticked     map[string]struct{}
	count      int
}

func (t tickState) isTicked(pos int) bool {
	if pos < 1 || pos > len(t.applicable) {
		return false
	}
	_, ok := t.ticked[t.applicable[pos-1]]
	return ok
}

// matchMultiple evaluates a condition for multiple selection. A must
// reference takes precedence and is combined with count when both are set.
func (t tickState) matchMultiple(c StageCondition) bool {
	if c.Must != nil {
		if !t.isTicked(*c.Must) {
			return false
		}
		return c.Count == nil || t.count >= *c.Count
	}
	if c.All != nil && *c.All && t.count == len(t.applicable) {
		return true
	}
	if c.Count != nil && t.count >= *c.Count {
		return true
	}
	for _, n := range c.Counts {
		if t.count == n {
			return true
		}
	}
	return c.CountLessThan != nil && t.count < *c.CountLessThan
}
