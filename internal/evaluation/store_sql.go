package evaluation

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/mind-engage/ipa-grading/internal/grading"
	syncx "github.com/mind-engage/ipa-grading/internal/sync"
)

type SQLStore struct {
	db     *sqlx.DB
	events *syncx.EventRepo
}

// NewSQLStore wraps an opened database. driverName is the database/sql
// driver name ("sqlite" or "pgx").
func NewSQLStore(db *sql.DB, driverName string, events *syncx.EventRepo) *SQLStore {
	x := sqlx.NewDb(db, driverName)
	if events == nil {
		events = syncx.NewEventRepo(x, "")
	}
	return &SQLStore{db: x, events: events}
}

// DB exposes the wrapped handle for components sharing the connection.
func (s *SQLStore) DB() *sqlx.DB { return s.db }

func withTx(ctx context.Context, db *sqlx.DB, fn func(*sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("evaluation: begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("evaluation: commit: %w", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	var sqErr *sqlite.Error
	if errors.As(err, &sqErr) {
		// extended codes carry the primary code in the low byte
		return sqErr.Code()&0xff == sqlite3.SQLITE_CONSTRAINT
	}
	return false
}

// ---- users ----

func (s *SQLStore) CreateUser(ctx context.Context, username, passwordHash, role string) (User, error) {
	if role == "" {
		role = "candidate"
	}
	u := User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: passwordHash,
		Role:         role,
		CreatedAt:    time.Now().Unix(),
	}
	err := withTx(ctx, s.db, func(tx *sqlx.Tx) error {
		if _, err := tx.NamedExecContext(ctx,
			`INSERT INTO users (id, username, password_hash, role, created_at)
			 VALUES (:id, :username, :password_hash, :role, :created_at)`, u); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO user_profiles (user_id, updated_at) VALUES ($1, $2)`, u.ID, u.CreatedAt)
		return err
	})
	if isUniqueViolation(err) {
		return User{}, ErrDuplicateUser
	}
	if err != nil {
		return User{}, fmt.Errorf("evaluation: create user: %w", err)
	}
	return u, nil
}

func (s *SQLStore) GetUserByUsername(ctx context.Context, username string) (User, error) {
	var u User
	err := s.db.GetContext(ctx, &u,
		`SELECT id, username, password_hash, role, created_at FROM users WHERE username=$1`, username)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	return u, err
}

func (s *SQLStore) GetUser(ctx context.Context, id string) (User, error) {
	var u User
	err := s.db.GetContext(ctx, &u,
		`SELECT id, username, password_hash, role, created_at FROM users WHERE id=$1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	return u, err
}

func (s *SQLStore) SetPasswordHash(ctx context.Context, id, hash string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE users SET password_hash=$1 WHERE id=$2`, hash, id)
	if err != nil {
		return fmt.Errorf("evaluation: set password: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLStore) ListUsers(ctx context.Context, role string) ([]User, error) {
	out := []User{}
	var err error
	if role == "" {
		err = s.db.SelectContext(ctx, &out,
			`SELECT id, username, password_hash, role, created_at FROM users ORDER BY username`)
	} else {
		err = s.db.SelectContext(ctx, &out,
			`SELECT id, username, password_hash, role, created_at FROM users WHERE role=$1 ORDER BY username`, role)
	}
	return out, err
}

// ---- profiles ----

const profileCols = `p.user_id, u.username, p.first_name, p.last_name, p.thesis_topic,
	p.submission_date, p.project_method, p.onboarding_completed, p.updated_at`

func (s *SQLStore) GetProfile(ctx context.Context, userID string) (Profile, error) {
	return getProfile(ctx, s.db, userID)
}

func getProfile(ctx context.Context, q sqlx.QueryerContext, userID string) (Profile, error) {
	var p Profile
	err := sqlx.GetContext(ctx, q, &p,
		`SELECT `+profileCols+` FROM user_profiles p JOIN users u ON u.id = p.user_id WHERE p.user_id=$1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return Profile{}, ErrNotFound
	}
	return p, err
}

func (s *SQLStore) UpdateProfile(ctx context.Context, userID string, upd ProfileUpdate) (Profile, error) {
	var out Profile
	err := withTx(ctx, s.db, func(tx *sqlx.Tx) error {
		p, err := getProfile(ctx, tx, userID)
		if err != nil {
			return err
		}
		if upd.FirstName != nil {
			p.FirstName = *upd.FirstName
		}
		if upd.LastName != nil {
			p.LastName = *upd.LastName
		}
		if upd.ThesisTopic != nil {
			p.ThesisTopic = *upd.ThesisTopic
		}
		if upd.SubmissionDate != nil {
			p.SubmissionDate = *upd.SubmissionDate
		}
		if upd.ProjectMethod != nil {
			p.ProjectMethod = *upd.ProjectMethod
		}
		if upd.OnboardingCompleted != nil {
			p.OnboardingCompleted = *upd.OnboardingCompleted
		}
		p.UpdatedAt = time.Now().Unix()
		if _, err := tx.NamedExecContext(ctx, `UPDATE user_profiles SET
			first_name=:first_name, last_name=:last_name, thesis_topic=:thesis_topic,
			submission_date=:submission_date, project_method=:project_method,
			onboarding_completed=:onboarding_completed, updated_at=:updated_at
			WHERE user_id=:user_id`, p); err != nil {
			return err
		}
		ev, err := syncx.NewEvent(syncx.TypeProfileUpdated, userID, upd)
		if err != nil {
			return err
		}
		if err := s.events.AppendTx(ctx, tx, ev); err != nil {
			return err
		}
		out = p
		return nil
	})
	return out, err
}

// ---- evaluations ----

type tickRow struct {
	CriteriaID  string `db:"criteria_id"`
	Requirement string `db:"requirement"`
}

type noteRow struct {
	CriteriaID string `db:"criteria_id"`
	Note       string `db:"note"`
}

func (s *SQLStore) LoadEvaluations(ctx context.Context, userID string) (grading.Evaluations, error) {
	var ticks []tickRow
	if err := s.db.SelectContext(ctx, &ticks,
		`SELECT criteria_id, requirement FROM ticked_requirements
		 WHERE user_id=$1 ORDER BY criteria_id, position`, userID); err != nil {
		return nil, fmt.Errorf("evaluation: load ticks: %w", err)
	}
	var notes []noteRow
	if err := s.db.SelectContext(ctx, &notes,
		`SELECT criteria_id, note FROM criteria_notes WHERE user_id=$1`, userID); err != nil {
		return nil, fmt.Errorf("evaluation: load notes: %w", err)
	}

	out := grading.Evaluations{}
	for _, t := range ticks {
		ev := out[t.CriteriaID]
		ev.TickedRequirements = append(ev.TickedRequirements, t.Requirement)
		out[t.CriteriaID] = ev
	}
	for _, n := range notes {
		note := n.Note
		ev := out[n.CriteriaID]
		ev.Note = &note
		out[n.CriteriaID] = ev
	}
	return out, nil
}

func (s *SQLStore) SaveEvaluation(ctx context.Context, userID, criteriaID string, in Input) error {
	return withTx(ctx, s.db, func(tx *sqlx.Tx) error {
		if err := replaceTicks(ctx, tx, userID, criteriaID, in.Ticked); err != nil {
			return err
		}
		if in.NoteSet {
			if err := setNote(ctx, tx, userID, criteriaID, in.Note); err != nil {
				return err
			}
		}
		ev, err := syncx.NewEvent(syncx.TypeEvaluationSaved, userID+"/"+criteriaID, map[string]any{
			"tickedRequirements": in.Ticked,
			"noteChanged":        in.NoteSet,
		})
		if err != nil {
			return err
		}
		return s.events.AppendTx(ctx, tx, ev)
	})
}

func (s *SQLStore) ReplaceEvaluations(ctx context.Context, userID string, evals grading.Evaluations) error {
	return withTx(ctx, s.db, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM ticked_requirements WHERE user_id=$1`, userID); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM criteria_notes WHERE user_id=$1`, userID); err != nil {
			return err
		}
		for id, ev := range evals {
			if err := replaceTicks(ctx, tx, userID, id, ev.TickedRequirements); err != nil {
				return err
			}
			if err := setNote(ctx, tx, userID, id, ev.Note); err != nil {
				return err
			}
		}
		ev, err := syncx.NewEvent(syncx.TypeEvaluationsImported, userID, map[string]int{"criteria": len(evals)})
		if err != nil {
			return err
		}
		return s.events.AppendTx(ctx, tx, ev)
	})
}

func replaceTicks(ctx context.Context, tx *sqlx.Tx, userID, criteriaID string, ticked []string) error {
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM ticked_requirements WHERE user_id=$1 AND criteria_id=$2`, userID, criteriaID); err != nil {
		return fmt.Errorf("evaluation: clear ticks: %w", err)
	}
	now := time.Now().Unix()
	for i, req := range ticked {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO ticked_requirements (user_id, criteria_id, requirement, position, created_at)
			 VALUES ($1,$2,$3,$4,$5)
			 ON CONFLICT (user_id, criteria_id, requirement) DO NOTHING`,
			userID, criteriaID, req, i, now); err != nil {
			return fmt.Errorf("evaluation: insert tick: %w", err)
		}
	}
	return nil
}

func setNote(ctx context.Context, tx *sqlx.Tx, userID, criteriaID string, note *string) error {
	if note == nil || *note == "" {
		_, err := tx.ExecContext(ctx,
			`DELETE FROM criteria_notes WHERE user_id=$1 AND criteria_id=$2`, userID, criteriaID)
		return err
	}
	_, err := tx.ExecContext(ctx,
		`INSERT INTO criteria_notes (user_id, criteria_id, note, updated_at) VALUES ($1,$2,$3,$4)
		 ON CONFLICT (user_id, criteria_id) DO UPDATE SET note=excluded.note, updated_at=excluded.updated_at`,
		userID, criteriaID, *note, time.Now().Unix())
	return err
}
