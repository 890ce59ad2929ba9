package evaluation

import (
	"context"

	"github.com/mind-engage/ipa-grading/internal/grading"
)

type Store interface {
	CreateUser(ctx context.Context, username, passwordHash, role string) (User, error)
	GetUser(ctx context.Context, id string) (User, error)
	GetUserByUsername(ctx context.Context, username string) (User, error)
	SetPasswordHash(ctx context.Context, id, hash string) error
	ListUsers(ctx context.Context, role string) ([]User, error)

	GetProfile(ctx context.Context, userID string) (Profile, error)
	UpdateProfile(ctx context.Context, userID string, upd ProfileUpdate) (Profile, error)

	// LoadEvaluations returns ticks (in the order they were saved) and notes
	// keyed by criterion id.
	LoadEvaluations(ctx context.Context, userID string) (grading.Evaluations, error)
	SaveEvaluation(ctx context.Context, userID, criteriaID string, in Input) error
	// ReplaceEvaluations drops all of a user's ticks and notes and writes evals.
	ReplaceEvaluations(ctx context.Context, userID string, evals grading.Evaluations) error
}
