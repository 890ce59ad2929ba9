package grading

const (
	minGrade  = 1.0
	gradeSpan = 5.0 // 1.00 .. 6.00
)

// CategoryScore is the aggregated result of one category.
type CategoryScore struct {
	Name                string  `json:"name"`
	Weight              float64 `json:"weight"`
	TotalPoints         int     `json:"totalPoints"`
	TotalPossiblePoints int     `json:"totalPossiblePoints"`
	Grade               float64 `json:"grade"`
	WeightedGrade       float64 `json:"weightedGrade"`
	Progress            int     `json:"progress"`
}

// AggregateCategory sums the points of the criteria in a category and maps
// them linearly onto the 1..6 grade scale. Ungraded criteria add nothing to
// the points but still count towards the possible total.
func AggregateCategory(cat Category, criteria []Criterion, evals Evaluations, method ProjectMethod) CategoryScore {
	score := CategoryScore{
		Name:                cat.Name,
		Weight:              cat.Weight,
		TotalPossiblePoints: len(criteria) * MaxStage,
	}
	var ticked, applicable int
	for _, c := range criteria {
		t := evals.ticked(c.ID)
		if p := EvaluateCriterion(c, t, method); p != nil {
			score.TotalPoints += *p
		}
		texts := Texts(FilterApplicable(c.Requirements, method))
		ticked += len(validTicked(t, texts))
		applicable += len(texts)
	}

	score.Grade = minGrade
	if score.TotalPossiblePoints > 0 {
		score.Grade = round2(float64(score.TotalPoints)/float64(score.TotalPossiblePoints)*gradeSpan + minGrade)
	}
	score.WeightedGrade = score.Grade * cat.Weight
	score.Progress = roundPercent(ticked, applicable)
	return score
}

// CombineFinalGrade sums the weighted category grades, rounded to two
// decimals.
func CombineFinalGrade(scores []CategoryScore) float64 {
	total := 0.0
	for _, s := range scores {
		total += s.WeightedGrade
	}
	return round2(total)
}

// Report is the full calculation for one user.
type Report struct {
	CategoryScores  map[string]CategoryScore `json:"categoryScores"`
	CriterionGrades map[string]*int          `json:"criterionGrades"`
	FinalGrade      float64                  `json:"finalGrade"`
	TotalScore      float64                  `json:"totalScore"`
}

// ScoreRubric evaluates every criterion and category of the rubric.
func ScoreRubric(r *Rubric, evals Evaluations, method ProjectMethod) Report {
	rep := Report{
		CategoryScores:  make(map[string]CategoryScore, len(r.Categories)),
		CriterionGrades: make(map[string]*int, len(r.Criteria)),
	}
	for _, c := range r.Criteria {
		rep.CriterionGrades[c.ID] = EvaluateCriterion(c, evals.ticked(c.ID), method)
	}
	scores := make([]CategoryScore, 0, len(r.Categories))
	for _, cat := range r.Categories {
		s := AggregateCategory(cat, r.CriteriaIn(cat.ID), evals, method)
		rep.CategoryScores[cat.ID] = s
		scores = append(scores, s)
	}
	rep.FinalGrade = CombineFinalGrade(scores)
	rep.TotalScore = rep.FinalGrade
	return rep
}
