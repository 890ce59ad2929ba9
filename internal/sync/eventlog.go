package syncx

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

const (
	TypeEvaluationSaved     = "EvaluationSaved"
	TypeEvaluationsImported = "EvaluationsImported"
	TypeProfileUpdated      = "ProfileUpdated"
)

type Event struct {
	Seq       int64  `db:"seq" json:"seq"`
	SiteID    string `db:"site_id" json:"siteId"`
	Type      string `db:"typ" json:"type"`
	Key       string `db:"key" json:"key"`
	DataJSON  string `db:"data" json:"data"`
	CreatedAt int64  `db:"created_at" json:"createdAt"`
}

// Execer is satisfied by *sqlx.DB and *sqlx.Tx so events can be written in
// the same transaction as the change they describe.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type EventRepo struct {
	db     *sqlx.DB
	siteID string
}

func NewEventRepo(db *sqlx.DB, siteID string) *EventRepo {
	if siteID == "" {
		siteID = "local"
	}
	return &EventRepo{db: db, siteID: siteID}
}

// NewEvent marshals payload into an event of the given type.
func NewEvent(typ, key string, payload any) (Event, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("syncx: marshal %s: %w", typ, err)
	}
	return Event{Type: typ, Key: key, DataJSON: string(b)}, nil
}

func (r *EventRepo) Append(ctx context.Context, e Event) error {
	return r.AppendTx(ctx, r.db, e)
}

func (r *EventRepo) AppendTx(ctx context.Context, ex Execer, e Event) error {
	site := e.SiteID
	if site == "" {
		site = r.siteID
	}
	_, err := ex.ExecContext(ctx,
		`INSERT INTO event_log (site_id, typ, key, data, created_at)
		 VALUES ($1,$2,$3,$4,$5)`,
		site, e.Type, e.Key, e.DataJSON, time.Now().Unix())
	return err
}

// Since returns up to limit events with a sequence number above seq.
func (r *EventRepo) Since(ctx context.Context, seq int64, limit int) ([]Event, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	out := []Event{}
	err := r.db.SelectContext(ctx, &out,
		`SELECT seq, site_id, typ, key, data, created_at FROM event_log
		 WHERE seq > $1 ORDER BY seq LIMIT $2`, seq, limit)
	return out, err
}
