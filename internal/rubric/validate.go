package rubric

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/mind-engage/ipa-grading/internal/grading"
)

var ErrInvalid = errors.New("rubric: invalid")

var requiredStages = []string{"0", "1", "2", "3"}

// Report collects validation findings. Errors make a rubric unusable,
// warnings are informational.
type Report struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func (r *Report) errorf(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *Report) warnf(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// Err is nil when the report holds no errors.
func (r *Report) Err() error {
	if len(r.Errors) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %d error(s): %s", ErrInvalid, len(r.Errors), strings.Join(r.Errors, "; "))
}

// Validate checks the structural rules the grading engine relies on: unique
// ids, weights summing to 1.0, all four stages present and stage conditions
// that reference existing requirements.
func Validate(rb *grading.Rubric) *Report {
	rep := &Report{}
	if rb == nil {
		rep.errorf("rubric is empty")
		return rep
	}
	ids := validateCategories(rep, rb.Categories)
	validateCriteria(rep, rb.Criteria, ids)
	return rep
}

func blank(s string) bool { return strings.TrimSpace(s) == "" }

func validateCategories(rep *Report, cats []grading.Category) map[string]bool {
	ids := map[string]bool{}
	if len(cats) == 0 {
		rep.errorf(`"categories_with_weigth" cannot be empty`)
		return ids
	}
	total := 0.0
	for i, c := range cats {
		prefix := fmt.Sprintf("categories_with_weigth[%d]", i)
		switch {
		case blank(c.ID):
			rep.errorf(`%s: "id" cannot be empty`, prefix)
		case ids[c.ID]:
			rep.errorf(`%s: duplicate category ID %q`, prefix, c.ID)
		default:
			ids[c.ID] = true
		}
		if blank(c.Name) {
			rep.errorf(`%s: "name" cannot be empty`, prefix)
		}
		if blank(c.Part) {
			rep.errorf(`%s: "part" cannot be empty`, prefix)
		}
		if c.Weight < 0 || c.Weight > 1 {
			rep.errorf(`%s: "weight" must be between 0 and 1, got %g`, prefix, c.Weight)
		} else {
			total += c.Weight
		}
	}
	if math.Abs(total-1.0) > 0.001 {
		rep.errorf("total weight of categories should be 1.0, got %.3f", total)
	}
	return ids
}

func validateCriteria(rep *Report, crits []grading.Criterion, categories map[string]bool) {
	if len(crits) == 0 {
		rep.errorf(`"criterias" cannot be empty`)
		return
	}
	seen := map[string]bool{}
	for i, c := range crits {
		prefix := fmt.Sprintf("criterias[%d]", i)
		switch {
		case blank(c.ID):
			rep.errorf(`%s: "id" cannot be empty`, prefix)
		case seen[c.ID]:
			rep.errorf(`%s: duplicate criteria ID %q`, prefix, c.ID)
		default:
			seen[c.ID] = true
		}
		if blank(c.Category) {
			rep.errorf(`%s: missing required key "category"`, prefix)
		} else if !categories[c.Category] {
			rep.errorf(`%s: unknown category %q`, prefix, c.Category)
		}
		if blank(c.Title) {
			rep.errorf(`%s: "title" cannot be empty`, prefix)
		}
		if blank(c.Subtitle) {
			rep.errorf(`%s: "subtitle" cannot be empty`, prefix)
		}
		if c.Selection != grading.SelectionSingle && c.Selection != grading.SelectionMultiple {
			rep.errorf(`%s: "selection" must be "multiple" or "single", got %q`, prefix, c.Selection)
		}
		if len(c.Requirements) == 0 {
			rep.errorf(`%s: "requirements" cannot be empty`, prefix)
		}
		for j, r := range c.Requirements {
			if blank(r.Text()) {
				rep.errorf(`%s.requirements[%d]: cannot be empty`, prefix, j)
			}
			if s, ok := r.(grading.ScopedRequirement); ok && !s.Method.Valid() {
				rep.errorf(`%s.requirements[%d]: unknown projectMethod %q`, prefix, j, s.Method)
			}
		}
		id := c.ID
		if blank(id) {
			id = fmt.Sprintf("index-%d", i)
		}
		if c.Stages == nil {
			rep.errorf(`%s: missing required key "stages"`, prefix)
			continue
		}
		validateStages(rep, id, c)
	}
}

func validateStages(rep *Report, id string, c grading.Criterion) {
	n := len(c.Requirements)
	for _, k := range requiredStages {
		if _, ok := c.Stages[k]; !ok {
			rep.errorf(`criteria %q: missing stage %q`, id, k)
		}
	}
	for _, k := range sortedKeys(c.Stages) {
		prefix := fmt.Sprintf("criteria %q, stage %s", id, k)
		if !isRequiredStage(k) {
			rep.warnf(`criteria %q: unexpected stage %q`, id, k)
		}
		cond := c.Stages[k]
		if cond == nil {
			rep.errorf("%s: stage configuration must be an object", prefix)
			continue
		}
		for _, u := range cond.UnknownKeys {
			rep.warnf("%s: unknown key %q", prefix, u)
		}
		if cond.Empty() {
			rep.errorf("%s: stage configuration cannot be empty", prefix)
		}
		if cond.All != nil && *cond.All && n == 0 {
			rep.errorf(`%s: cannot require "all" when there are no requirements`, prefix)
		}
		if cond.Count != nil {
			switch {
			case *cond.Count < 0:
				rep.errorf(`%s: "count" cannot be negative`, prefix)
			case *cond.Count > n:
				rep.errorf(`%s: "count" (%d) exceeds number of requirements (%d)`, prefix, *cond.Count, n)
			}
		}
		for j, v := range cond.Counts {
			switch {
			case v < 0:
				rep.errorf(`%s: "counts[%d]" cannot be negative`, prefix, j)
			case c.Selection == grading.SelectionMultiple && v > n:
				rep.errorf(`%s: "counts[%d]" (%d) exceeds number of requirements (%d)`, prefix, j, v, n)
			}
		}
		if cond.CountLessThan != nil && *cond.CountLessThan < 0 {
			rep.errorf(`%s: "count_less_than" cannot be negative`, prefix)
		}
		if cond.Must != nil {
			switch {
			case *cond.Must < 1:
				rep.errorf(`%s: "must" must be at least 1`, prefix)
			case c.Selection == grading.SelectionSingle && *cond.Must > n:
				rep.errorf(`%s: "must" (%d) exceeds number of requirements (%d)`, prefix, *cond.Must, n)
			}
		}
	}
}

func isRequiredStage(k string) bool {
	for _, s := range requiredStages {
		if s == k {
			return true
		}
	}
	return false
}

func sortedKeys(m map[string]*grading.StageCondition) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
