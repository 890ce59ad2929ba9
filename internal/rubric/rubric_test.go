package rubric

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mind-engage/ipa-grading/internal/grading"
	"github.com/mind-engage/ipa-grading/internal/storage"
)

func TestLoadFileJSON(t *testing.T) {
	rb, err := LoadFile("testdata/criterias.json")
	require.NoError(t, err)
	require.Len(t, rb.Categories, 3)
	require.Len(t, rb.Criteria, 4)

	a1, ok := rb.Criterion("A1")
	require.True(t, ok)
	assert.Equal(t, grading.ScopedRequirement{Label: "Sprints sind geplant.", Method: grading.MethodAgil}, a1.Requirements[2])
	assert.Len(t, rb.CriteriaIn("A"), 2)

	rep := Validate(rb)
	assert.NoError(t, rep.Err())
	assert.Empty(t, rep.Warnings)
}

func TestLoadFileYAML(t *testing.T) {
	rb, err := LoadFile("testdata/criterias.yaml")
	require.NoError(t, err)
	require.Len(t, rb.Criteria, 1)
	c := rb.Criteria[0]
	assert.Equal(t, grading.SelectionMultiple, c.Selection)
	assert.Equal(t, []string{"Die Anforderungen sind vollständig erfasst.", "Sprints sind geplant."},
		grading.Texts(grading.FilterApplicable(c.Requirements, grading.MethodAgil)))
	require.NotNil(t, c.Stages["3"].All)
	assert.NoError(t, Validate(rb).Err())
}

func TestLoadFileYAMLUnquotedStageKeys(t *testing.T) {
	rb, err := LoadFile("testdata/unquoted_stages.yaml")
	require.NoError(t, err)
	require.Len(t, rb.Criteria, 2)

	a2 := rb.Criteria[0]
	require.Contains(t, a2.Stages, "3")
	require.NotNil(t, a2.Stages["2"].Must)
	assert.Equal(t, 2, *a2.Stages["2"].Must)
	assert.NoError(t, Validate(rb).Err())

	got := grading.EvaluateCriterion(a2, []string{"Teilweise nachgeführt."}, grading.MethodNone)
	require.NotNil(t, got)
	assert.Equal(t, 2, *got)
}

func TestDecodeRejectsMalformed(t *testing.T) {
	_, err := Decode(strings.NewReader(`{"criterias": [{"requirements": [1]}]}`), FormatJSON)
	assert.Error(t, err)

	_, err = Decode(strings.NewReader("criterias: [\n"), FormatYAML)
	assert.Error(t, err)
}

func TestLoadLatestFromBlobStore(t *testing.T) {
	bs, err := storage.NewFSStore(t.TempDir())
	require.NoError(t, err)

	raw, err := os.ReadFile("testdata/criterias.json")
	require.NoError(t, err)
	_, err = bs.Put("rubrics/v001.yaml", strings.NewReader("categories_with_weigth: []\ncriterias: []\n"))
	require.NoError(t, err)
	_, err = bs.Put("rubrics/v002.json", strings.NewReader(string(raw)))
	require.NoError(t, err)

	rb, key, err := LoadLatest(bs, "rubrics/")
	require.NoError(t, err)
	assert.Equal(t, "rubrics/v002.json", key)
	assert.Len(t, rb.Criteria, 4)

	rb, rep, err := Open(bs, "rubrics/")
	require.NoError(t, err)
	assert.Empty(t, rep.Errors)
	assert.Len(t, rb.Categories, 3)

	_, _, err = LoadLatest(bs, "missing/")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestOpenFallsBackToFile(t *testing.T) {
	bs, err := storage.NewFSStore(t.TempDir())
	require.NoError(t, err)
	rb, _, err := Open(bs, "testdata/criterias.json")
	require.NoError(t, err)
	assert.Len(t, rb.Criteria, 4)
}

func TestOpenRejectsInvalidRubric(t *testing.T) {
	bs, err := storage.NewFSStore(t.TempDir())
	require.NoError(t, err)
	_, err = bs.Put("bad.json", strings.NewReader(`{"categories_with_weigth": [], "criterias": []}`))
	require.NoError(t, err)

	_, rep, err := Open(bs, "bad.json")
	assert.ErrorIs(t, err, ErrInvalid)
	assert.Len(t, rep.Errors, 2)
}

func validRubric() *grading.Rubric {
	one, two := 1, 2
	yes := true
	return &grading.Rubric{
		Categories: []grading.Category{
			{ID: "A", Name: "Fachkompetenz", Weight: 0.6, Part: "Teil 1"},
			{ID: "B", Name: "Dokumentation", Weight: 0.4, Part: "Teil 2"},
		},
		Criteria: []grading.Criterion{{
			ID:           "A1",
			Category:     "A",
			Title:        "Titel",
			Subtitle:     "Untertitel",
			Selection:    grading.SelectionMultiple,
			Requirements: grading.Requirements{grading.PlainRequirement{Label: "R1"}, grading.PlainRequirement{Label: "R2"}},
			Stages: map[string]*grading.StageCondition{
				"3": {All: &yes},
				"2": {Count: &two},
				"1": {Count: &one},
				"0": {CountLessThan: &one},
			},
		}},
	}
}

func TestValidateAcceptsValidRubric(t *testing.T) {
	rep := Validate(validRubric())
	assert.Empty(t, rep.Errors)
	assert.Empty(t, rep.Warnings)
	assert.NoError(t, rep.Err())
}

func TestValidateFindings(t *testing.T) {
	neg, seven, zero := -1, 7, 0
	cases := []struct {
		name   string
		mutate func(rb *grading.Rubric)
		errs   []string
		warns  []string
	}{
		{
			name:   "weights do not sum to one",
			mutate: func(rb *grading.Rubric) { rb.Categories[1].Weight = 0.3 },
			errs:   []string{"total weight of categories should be 1.0, got 0.900"},
		},
		{
			name:   "weight out of range",
			mutate: func(rb *grading.Rubric) { rb.Categories[1].Weight = 1.4 },
			errs: []string{
				`categories_with_weigth[1]: "weight" must be between 0 and 1, got 1.4`,
				"total weight of categories should be 1.0, got 0.600",
			},
		},
		{
			name:   "duplicate category",
			mutate: func(rb *grading.Rubric) { rb.Categories[1].ID = "A" },
			errs:   []string{`categories_with_weigth[1]: duplicate category ID "A"`},
		},
		{
			name:   "unknown category",
			mutate: func(rb *grading.Rubric) { rb.Criteria[0].Category = "Z" },
			errs:   []string{`criterias[0]: unknown category "Z"`},
		},
		{
			name:   "bad selection",
			mutate: func(rb *grading.Rubric) { rb.Criteria[0].Selection = "some" },
			errs:   []string{`criterias[0]: "selection" must be "multiple" or "single", got "some"`},
		},
		{
			name: "duplicate criterion",
			mutate: func(rb *grading.Rubric) {
				rb.Criteria = append(rb.Criteria, rb.Criteria[0])
			},
			errs: []string{`criterias[1]: duplicate criteria ID "A1"`},
		},
		{
			name:   "missing stage",
			mutate: func(rb *grading.Rubric) { delete(rb.Criteria[0].Stages, "1") },
			errs:   []string{`criteria "A1": missing stage "1"`},
		},
		{
			name: "unexpected stage and unknown key",
			mutate: func(rb *grading.Rubric) {
				rb.Criteria[0].Stages["4"] = &grading.StageCondition{Count: &zero, UnknownKeys: []string{"atLeast"}}
			},
			warns: []string{
				`criteria "A1": unexpected stage "4"`,
				`criteria "A1", stage 4: unknown key "atLeast"`,
			},
		},
		{
			name:   "empty condition",
			mutate: func(rb *grading.Rubric) { rb.Criteria[0].Stages["1"] = &grading.StageCondition{} },
			errs:   []string{`criteria "A1", stage 1: stage configuration cannot be empty`},
		},
		{
			name: "count bounds",
			mutate: func(rb *grading.Rubric) {
				rb.Criteria[0].Stages["2"] = &grading.StageCondition{Count: &seven}
				rb.Criteria[0].Stages["0"] = &grading.StageCondition{CountLessThan: &neg}
			},
			errs: []string{
				`criteria "A1", stage 0: "count_less_than" cannot be negative`,
				`criteria "A1", stage 2: "count" (7) exceeds number of requirements (2)`,
			},
		},
		{
			name: "must on single selection",
			mutate: func(rb *grading.Rubric) {
				c := &rb.Criteria[0]
				c.Selection = grading.SelectionSingle
				c.Stages = map[string]*grading.StageCondition{
					"3": {Must: &seven}, "2": {Must: &zero}, "1": {Must: new(int)}, "0": {Counts: []int{neg}},
				}
			},
			errs: []string{
				`criteria "A1", stage 0: "counts[0]" cannot be negative`,
				`criteria "A1", stage 1: "must" must be at least 1`,
				`criteria "A1", stage 2: "must" must be at least 1`,
				`criteria "A1", stage 3: "must" (7) exceeds number of requirements (2)`,
			},
		},
		{
			name: "empty requirement and unknown method",
			mutate: func(rb *grading.Rubric) {
				rb.Criteria[0].Requirements = grading.Requirements{
					grading.PlainRequirement{Label: " "},
					grading.ScopedRequirement{Label: "R2", Method: "Wasserfall"},
				}
			},
			errs: []string{
				`criterias[0].requirements[0]: cannot be empty`,
				`criterias[0].requirements[1]: unknown projectMethod "Wasserfall"`,
			},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rb := validRubric()
			tc.mutate(rb)
			rep := Validate(rb)
			assert.Equal(t, tc.errs, rep.Errors)
			assert.Equal(t, tc.warns, rep.Warnings)
			if len(tc.errs) > 0 {
				assert.ErrorIs(t, rep.Err(), ErrInvalid)
			}
		})
	}
}
