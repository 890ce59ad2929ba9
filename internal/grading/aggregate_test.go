package grading

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregateCategoryFullMarks(t *testing.T) {
	cat := Category{ID: "B", Name: "Dokumentation", Weight: 1.0}
	c := multipleCriterion()
	evals := Evaluations{c.ID: {TickedRequirements: []string{"R1", "R2", "R3", "R4"}}}

	s := AggregateCategory(cat, []Criterion{c}, evals, MethodNone)
	assert.Equal(t, 3, s.TotalPoints)
	assert.Equal(t, 3, s.TotalPossiblePoints)
	assert.Equal(t, 6.0, s.Grade)
	assert.Equal(t, 6.0, s.WeightedGrade)
	assert.Equal(t, 100, s.Progress)
	assert.Equal(t, "Dokumentation", s.Name)

	assert.Equal(t, 6.0, CombineFinalGrade([]CategoryScore{s}))
}

func TestAggregateCategoryEmpty(t *testing.T) {
	s := AggregateCategory(Category{ID: "X", Name: "Leer", Weight: 0.5}, nil, nil, MethodNone)
	assert.Equal(t, 1.0, s.Grade)
	assert.Equal(t, 0, s.Progress)
	assert.Equal(t, 0, s.TotalPossiblePoints)
	assert.Equal(t, 0.5, s.WeightedGrade)
	assert.False(t, math.IsNaN(s.Grade))
}

func TestAggregateCategoryUngradedCountsTowardsPossible(t *testing.T) {
	cat := Category{ID: "A", Name: "Fachkompetenz", Weight: 0.5}
	single := singleCriterion()
	multi := multipleCriterion()
	multi.Category = "A"
	evals := Evaluations{
		multi.ID: {TickedRequirements: []string{"R1", "R2", "R3"}},
	}

	s := AggregateCategory(cat, []Criterion{single, multi}, evals, MethodNone)
	assert.Equal(t, 2, s.TotalPoints)
	assert.Equal(t, 6, s.TotalPossiblePoints)
	// 2/6*5+1 = 2.6666.. -> 2.67
	assert.Equal(t, 2.67, s.Grade)
	assert.InDelta(t, 1.335, s.WeightedGrade, 1e-9)
	// 3 ticked of 8 requirements = 37.5% -> 38
	assert.Equal(t, 38, s.Progress)
}

func TestAggregateCategoryProgressIgnoresFilteredRequirements(t *testing.T) {
	c := Criterion{
		ID:        "D1",
		Category:  "D",
		Selection: SelectionMultiple,
		Requirements: Requirements{
			PlainRequirement{Label: "A"},
			ScopedRequirement{Label: "B", Method: MethodAgil},
			ScopedRequirement{Label: "C", Method: MethodLinear},
		},
		Stages: map[string]*StageCondition{
			"3": {All: boolp(true)},
			"2": {Count: intp(1)},
			"1": {Count: intp(1)},
			"0": {CountLessThan: intp(1)},
		},
	}
	evals := Evaluations{"D1": {TickedRequirements: []string{"A", "C"}}}

	s := AggregateCategory(Category{ID: "D", Weight: 1}, []Criterion{c}, evals, MethodAgil)
	assert.Equal(t, 50, s.Progress)
	assert.Equal(t, 2, s.TotalPoints)
}

func TestGradeStaysInBounds(t *testing.T) {
	c := multipleCriterion()
	reqs := Texts(c.Requirements)
	for n := 0; n <= len(reqs); n++ {
		evals := Evaluations{c.ID: {TickedRequirements: reqs[:n]}}
		s := AggregateCategory(Category{ID: "B", Weight: 1}, []Criterion{c}, evals, MethodNone)
		assert.GreaterOrEqual(t, s.Grade, 1.0)
		assert.LessOrEqual(t, s.Grade, 6.0)
	}
}

func TestCombineFinalGradeRounds(t *testing.T) {
	scores := []CategoryScore{
		{WeightedGrade: 4.333 * 0.5},
		{WeightedGrade: 5.0 * 0.5},
	}
	assert.Equal(t, 4.67, CombineFinalGrade(scores))
	assert.Equal(t, 0.0, CombineFinalGrade(nil))
}

func TestScoreRubric(t *testing.T) {
	single := singleCriterion()
	multi := multipleCriterion()
	r := &Rubric{
		Categories: []Category{
			{ID: "A", Name: "Fachkompetenz", Weight: 0.25, Part: "Teil 1"},
			{ID: "B", Name: "Dokumentation", Weight: 0.75, Part: "Teil 2"},
		},
		Criteria: []Criterion{single, multi},
	}
	evals := Evaluations{
		"A1": {TickedRequirements: []string{"R2"}},
		"B1": {TickedRequirements: []string{"R1", "R2", "R3", "R4"}},
	}

	rep := ScoreRubric(r, evals, MethodNone)
	require.Len(t, rep.CategoryScores, 2)
	assert.Equal(t, 2, *rep.CriterionGrades["A1"])
	assert.Equal(t, 3, *rep.CriterionGrades["B1"])
	// A: 2/3*5+1 = 4.33, B: 6.00 -> 4.33*0.25 + 6*0.75 = 5.5825
	assert.Equal(t, 4.33, rep.CategoryScores["A"].Grade)
	assert.Equal(t, 5.58, rep.FinalGrade)
	assert.Equal(t, rep.FinalGrade, rep.TotalScore)

	again := ScoreRubric(r, evals, MethodNone)
	assert.Equal(t, rep, again)
}

func TestScoreRubricUngradedSingle(t *testing.T) {
	r := &Rubric{
		Categories: []Category{{ID: "A", Name: "Fachkompetenz", Weight: 1}},
		Criteria:   []Criterion{singleCriterion()},
	}
	rep := ScoreRubric(r, nil, MethodNone)
	assert.Nil(t, rep.CriterionGrades["A1"])
	assert.Equal(t, 1.0, rep.FinalGrade)
}

func TestRound2HalfUp(t *testing.T) {
	assert.Equal(t, 2.67, round2(2.0/6.0*5+1))
	assert.Equal(t, 1.13, round2(1.125))
	assert.Equal(t, 6.0, round2(6))
}
