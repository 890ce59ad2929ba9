package syncx

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mind-engage/ipa-grading/internal/db"
)

func TestAppendAndSince(t *testing.T) {
	ctx := context.Background()
	dbh, err := db.Open(ctx, db.DriverSQLite, "file:eventlog_test?mode=memory&cache=shared")
	require.NoError(t, err)
	defer dbh.Close()
	repo := NewEventRepo(sqlx.NewDb(dbh, "sqlite"), "")

	for _, key := range []string{"u1/A1", "u1/A2", "u2/A1"} {
		ev, err := NewEvent(TypeEvaluationSaved, key, map[string]any{"tickedRequirements": []string{"R1"}})
		require.NoError(t, err)
		require.NoError(t, repo.Append(ctx, ev))
	}

	all, err := repo.Since(ctx, 0, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "local", all[0].SiteID)
	assert.JSONEq(t, `{"tickedRequirements":["R1"]}`, all[0].DataJSON)

	page, err := repo.Since(ctx, all[0].Seq, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "u1/A2", page[0].Key)
}

func TestNewEventRejectsUnmarshalable(t *testing.T) {
	_, err := NewEvent(TypeProfileUpdated, "u1", make(chan int))
	assert.Error(t, err)
}
