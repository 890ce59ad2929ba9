package grading

// Strategy resolves the points of one criterion from its applicable
// requirement texts and the valid ticks among them. A nil result means the
// criterion is ungraded.
type Strategy interface {
	Grade(c Criterion, applicable, ticked []string) *int
}

// strategies routes by selection mode. Anything that is not "single" is
// graded as a checkbox list.
var strategies = map[Selection]Strategy{
	SelectionSingle:   singleStrategy{},
	SelectionMultiple: multipleStrategy{},
}

// EvaluateCriterion computes the points (0..3) of a criterion, or nil when a
// single-selection criterion has no usable selection.
func EvaluateCriterion(c Criterion, ticked []string, method ProjectMethod) *int {
	applicable := Texts(FilterApplicable(c.Requirements, method))
	valid := validTicked(ticked, applicable)
	s, ok := strategies[c.Selection]
	if !ok {
		s = multipleStrategy{}
	}
	return s.Grade(c, applicable, valid)
}

type singleStrategy struct{}

func (singleStrategy) Grade(c Criterion, applicable, ticked []string) *int {
	if len(ticked) == 0 {
		return nil
	}
	pos := indexOf(applicable, ticked[0])
	if pos == -1 {
		return nil
	}
	walk := NewStageWalk(c.Stages, func(cond StageCondition) bool {
		return cond.Must != nil && *cond.Must == pos+1
	})
	if stage, ok := walk.Resolve(); ok {
		return &stage
	}
	return nil
}

type multipleStrategy struct{}

func (multipleStrategy) Grade(c Criterion, applicable, ticked []string) *int {
	st := tickState{applicable: applicable, ticked: toSet(ticked), count: len(ticked)}
	stage, _ := NewStageWalk(c.Stages, st.matchMultiple).Resolve()
	return &stage
}
