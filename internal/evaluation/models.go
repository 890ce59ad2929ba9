package evaluation

import (
	"errors"

	"github.com/mind-engage/ipa-grading/internal/grading"
)

var (
	ErrNotFound      = errors.New("evaluation: not found")
	ErrDuplicateUser = errors.New("evaluation: username already exists")
)

type User struct {
	ID           string `db:"id" json:"id"`
	Username     string `db:"username" json:"username"`
	PasswordHash string `db:"password_hash" json:"-"`
	Role         string `db:"role" json:"role"`
	CreatedAt    int64  `db:"created_at" json:"createdAt"`
}

// Profile is the per-user onboarding data. ProjectMethod feeds requirement
// filtering in the grading engine.
type Profile struct {
	UserID              string                `db:"user_id" json:"userId"`
	Username            string                `db:"username" json:"username"`
	FirstName           string                `db:"first_name" json:"firstName"`
	LastName            string                `db:"last_name" json:"lastName"`
	ThesisTopic         string                `db:"thesis_topic" json:"thesisTopic"`
	SubmissionDate      string                `db:"submission_date" json:"submissionDate"`
	ProjectMethod       grading.ProjectMethod `db:"project_method" json:"projectMethod"`
	OnboardingCompleted bool                  `db:"onboarding_completed" json:"onboardingCompleted"`
	UpdatedAt           int64                 `db:"updated_at" json:"updatedAt"`
}

// ProfileUpdate is a partial update; nil fields keep their value.
type ProfileUpdate struct {
	FirstName           *string                `json:"firstName"`
	LastName            *string                `json:"lastName"`
	ThesisTopic         *string                `json:"thesisTopic"`
	SubmissionDate      *string                `json:"submissionDate"`
	ProjectMethod       *grading.ProjectMethod `json:"projectMethod"`
	OnboardingCompleted *bool                  `json:"onboardingCompleted"`
}

// Input replaces the ticks of one criterion. The note is only touched when
// NoteSet is true; a nil or empty Note then deletes it.
type Input struct {
	Ticked  []string
	Note    *string
	NoteSet bool
}

// Snapshot is the export/import document for one user.
type Snapshot struct {
	TickedRequirements map[string][]string `json:"tickedRequirements"`
	Notes              map[string]string   `json:"notes"`
	ExportedAt         string              `json:"exportedAt,omitempty"`
}

// ToEvaluations converts a snapshot into engine input.
func (s Snapshot) ToEvaluations() grading.Evaluations {
	out := grading.Evaluations{}
	for id, ticked := range s.TickedRequirements {
		ev := out[id]
		ev.TickedRequirements = ticked
		out[id] = ev
	}
	for id, note := range s.Notes {
		n := note
		ev := out[id]
		ev.Note = &n
		out[id] = ev
	}
	return out
}

// SnapshotOf is the inverse of ToEvaluations.
func SnapshotOf(evals grading.Evaluations) Snapshot {
	s := Snapshot{TickedRequirements: map[string][]string{}, Notes: map[string]string{}}
	for id, ev := range evals {
		if len(ev.TickedRequirements) > 0 {
			s.TickedRequirements[id] = ev.TickedRequirements
		}
		if ev.Note != nil && *ev.Note != "" {
			s.Notes[id] = *ev.Note
		}
	}
	return s
}
