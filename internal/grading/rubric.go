package grading

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
)

// ProjectMethod is the per-user variant tag that decides which scoped
// requirements apply to a criterion.
type ProjectMethod string

const (
	MethodNone   ProjectMethod = ""
	MethodAgil   ProjectMethod = "Agil"
	MethodLinear ProjectMethod = "Linear"
)

// Valid reports whether m is one of the known variants (or unset).
func (m ProjectMethod) Valid() bool {
	switch m {
	case MethodNone, MethodAgil, MethodLinear:
		return true
	}
	return false
}

type Selection string

const (
	SelectionSingle   Selection = "single"   // radio button: at most one tick
	SelectionMultiple Selection = "multiple" // checkboxes: any subset
)

// Requirement is one checkable line of a criterion. It is either a
// PlainRequirement or a ScopedRequirement.
type Requirement interface {
	Text() string
	requirement()
}

// PlainRequirement applies regardless of project method.
type PlainRequirement struct {
	Label string
}

func (r PlainRequirement) Text() string { return r.Label }
func (PlainRequirement) requirement()   {}

// ScopedRequirement only applies to users whose project method matches.
// An empty Method behaves like a plain requirement.
type ScopedRequirement struct {
	Label  string
	Method ProjectMethod
}

func (r ScopedRequirement) Text() string { return r.Label }
func (ScopedRequirement) requirement()   {}

// Requirements keeps the rubric JSON shape: each entry is either a string or
// {"text": ..., "projectMethod": ...}.
type Requirements []Requirement

type scopedJSON struct {
	Text          string        `json:"text"`
	ProjectMethod ProjectMethod `json:"projectMethod,omitempty"`
}

func (rs *Requirements) UnmarshalJSON(b []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	out := make(Requirements, 0, len(raw))
	for i, item := range raw {
		var s string
		if err := json.Unmarshal(item, &s); err == nil {
			out = append(out, PlainRequirement{Label: s})
			continue
		}
		var sj scopedJSON
		if err := json.Unmarshal(item, &sj); err != nil {
			return fmt.Errorf("requirements[%d]: must be a string or {text, projectMethod}", i)
		}
		out = append(out, ScopedRequirement{Label: sj.Text, Method: sj.ProjectMethod})
	}
	*rs = out
	return nil
}

func (rs Requirements) MarshalJSON() ([]byte, error) {
	out := make([]any, 0, len(rs))
	for _, r := range rs {
		switch v := r.(type) {
		case PlainRequirement:
			out = append(out, v.Label)
		case ScopedRequirement:
			out = append(out, scopedJSON{Text: v.Label, ProjectMethod: v.Method})
		default:
			return nil, errors.New("grading: unknown requirement variant")
		}
	}
	return json.Marshal(out)
}

// StageCondition is a predicate over the ticked set. Nil fields are absent.
type StageCondition struct {
	All           *bool `json:"all,omitempty"`
	Count         *int  `json:"count,omitempty"`
	Counts        []int `json:"counts,omitempty"`
	CountLessThan *int  `json:"count_less_than,omitempty"`
	Must          *int  `json:"must,omitempty"`

	// UnknownKeys lists condition keys the decoder did not recognise.
	UnknownKeys []string `json:"-"`
}

var conditionKeys = map[string]bool{
	"all": true, "count": true, "counts": true, "count_less_than": true, "must": true,
}

func (c *StageCondition) UnmarshalJSON(b []byte) error {
	type plain StageCondition
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(b, &keys); err != nil {
		return err
	}
	for k := range keys {
		if !conditionKeys[k] {
			p.UnknownKeys = append(p.UnknownKeys, k)
		}
	}
	sort.Strings(p.UnknownKeys)
	*c = StageCondition(p)
	return nil
}

// Empty reports whether no recognised field is set.
func (c StageCondition) Empty() bool {
	return c.All == nil && c.Count == nil && c.Counts == nil && c.CountLessThan == nil && c.Must == nil
}

// Criterion is one gradable rubric item.
type Criterion struct {
	ID           string                     `json:"id"`
	Category     string                     `json:"category"`
	Title        string                     `json:"title,omitempty"`
	Subtitle     string                     `json:"subtitle,omitempty"`
	Selection    Selection                  `json:"selection"`
	Requirements Requirements               `json:"requirements"`
	Stages       map[string]*StageCondition `json:"stages"`
}

type Category struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Weight float64 `json:"weight"`
	Part   string  `json:"part"`
}

// Rubric is the immutable catalogue of categories and criteria. It is built
// once and shared read-only between requests.
type Rubric struct {
	Categories []Category  `json:"categories_with_weigth"`
	Criteria   []Criterion `json:"criterias"`
}

// Criterion looks a criterion up by id.
func (r *Rubric) Criterion(id string) (Criterion, bool) {
	for _, c := range r.Criteria {
		if c.ID == id {
			return c, true
		}
	}
	return Criterion{}, false
}

// CriteriaIn returns the criteria of a category in rubric order.
func (r *Rubric) CriteriaIn(categoryID string) []Criterion {
	var out []Criterion
	for _, c := range r.Criteria {
		if c.Category == categoryID {
			out = append(out, c)
		}
	}
	return out
}

// Evaluation is what a user recorded for one criterion.
type Evaluation struct {
	TickedRequirements []string `json:"tickedRequirements"`
	Note               *string  `json:"note,omitempty"`
}

// Evaluations maps criterion id to the user's evaluation.
type Evaluations map[string]Evaluation

func (e Evaluations) ticked(criterionID string) []string {
	if ev, ok := e[criterionID]; ok {
		return ev.TickedRequirements
	}
	return nil
}
