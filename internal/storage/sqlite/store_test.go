package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/milhas/internal/common"
	"github.com/bobmcallan/milhas/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s := NewStore(filepath.Join(t.TempDir(), "data", "portfolio.db"), common.NewSilentLogger())
	ctx := context.Background()
	require.NoError(t, s.Initialize(ctx))
	require.NoError(t, s.Migrate(ctx))
	return s
}

func sampleOp(user, program string, profit float64) models.Operation {
	return models.Operation{
		User:       user,
		Program:    program,
		Investment: 3500,
		Points:     200000,
		SalePrice:  17.60,
		Profit:     profit,
		ROI:        profit / 3500 * 100,
	}
}

func rawExec(t *testing.T, path string, stmts ...string) {
	t.Helper()
	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer db.Close()
	for _, stmt := range stmts {
		_, err := db.Exec(stmt)
		require.NoError(t, err, stmt)
	}
}

func TestMigrate_Idempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Migrate(ctx))
	require.NoError(t, s.Migrate(ctx))

	db, err := s.open(ctx)
	require.NoError(t, err)
	defer db.Close()

	cols, err := tableColumns(ctx, db, "operations")
	require.NoError(t, err)
	assert.Len(t, cols, 9)
	assert.True(t, cols["user"])

	v, err := s.Version(ctx)
	require.NoError(t, err)
	assert.Equal(t, SchemaVersion, v)
}

func TestMigrate_LegacyTableGainsUserColumn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "legacy.db")
	rawExec(t, path,
		`CREATE TABLE operations (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			recorded_at TEXT, program TEXT, investment REAL, points INTEGER,
			sale_price REAL, profit REAL, roi REAL)`,
		`INSERT INTO operations (recorded_at, program, investment, points, sale_price, profit, roi)
			VALUES ('14/02 09:30', 'Smiles', 3500, 200000, 17.6, 20, 0.5714)`,
	)

	s := NewStore(path, common.NewSilentLogger())
	ctx := context.Background()
	require.NoError(t, s.Initialize(ctx))
	require.NoError(t, s.Migrate(ctx))
	require.NoError(t, s.Migrate(ctx))

	ops := s.List(ctx, common.DefaultUserID)
	require.Len(t, ops, 1)
	assert.Equal(t, common.DefaultUserID, ops[0].User)
	assert.Equal(t, "Smiles", ops[0].Program)
	assert.Equal(t, int64(200000), ops[0].Points)
	assert.Equal(t, time.February, ops[0].RecordedAt.Month())
	assert.Equal(t, 9, ops[0].RecordedAt.Hour())
}

func TestList_LenientLegacyRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "legacy.db")
	rawExec(t, path,
		`CREATE TABLE operations (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			recorded_at TEXT, program TEXT, investment REAL, points INTEGER,
			sale_price REAL, profit REAL, roi REAL)`,
		`INSERT INTO operations (recorded_at, program, investment, points, sale_price, profit, roi)
			VALUES ('14/02 09:30', 'Smiles', 3500, 200000, 17.6, 20, 0.5714)`,
		`INSERT INTO operations (recorded_at, program, investment, points, sale_price, profit, roi)
			VALUES ('15/02 10:00', 'LatamPass', 1000, 100000.6, NULL, 5, 0.5)`,
		`INSERT INTO operations (recorded_at, program, investment, points, sale_price, profit, roi)
			VALUES ('16/02 11:00', 'TudoAzul', 'n/a', 1, 1, 1, 1)`,
	)

	s := NewStore(path, common.NewSilentLogger())
	ctx := context.Background()
	require.NoError(t, s.Initialize(ctx))
	require.NoError(t, s.Migrate(ctx))

	ops := s.List(ctx, common.DefaultUserID)
	require.Len(t, ops, 2, "only the row with a non-numeric amount is skipped")

	assert.Equal(t, "LatamPass", ops[0].Program)
	assert.Equal(t, int64(100001), ops[0].Points)
	assert.Zero(t, ops[0].SalePrice)
	assert.Equal(t, "Smiles", ops[1].Program)

	sum, err := s.Summary(ctx, common.DefaultUserID)
	require.NoError(t, err)
	assert.Equal(t, int64(300002), sum.TotalPoints)
}

func TestMigrate_MissingTableErrors(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "empty.db"), common.NewSilentLogger())
	assert.Error(t, s.Migrate(context.Background()))
}

func TestSave_AssignsIDAndTimestamp(t *testing.T) {
	s := newTestStore(t)
	fixed := time.Date(2026, 5, 1, 14, 30, 15, 500, time.UTC)
	s.now = func() time.Time { return fixed }

	op := sampleOp("", models.ProgramSmiles, 20)
	op.RecordedAt = time.Date(1999, 1, 1, 0, 0, 0, 0, time.UTC)

	saved, err := s.Save(context.Background(), op)
	require.NoError(t, err)

	assert.Equal(t, int64(1), saved.ID)
	assert.Equal(t, common.DefaultUserID, saved.User)
	assert.True(t, saved.RecordedAt.Equal(fixed.Truncate(time.Second)))

	ops := s.List(context.Background(), common.DefaultUserID)
	require.Len(t, ops, 1)
	assert.Equal(t, saved.ID, ops[0].ID)
	assert.Equal(t, saved.Program, ops[0].Program)
	assert.Equal(t, saved.Points, ops[0].Points)
	assert.True(t, saved.RecordedAt.Equal(ops[0].RecordedAt))
}

func TestList_NewestFirstAndScopedByUser(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a1, err := s.Save(ctx, sampleOp("alice", models.ProgramSmiles, 10))
	require.NoError(t, err)
	_, err = s.Save(ctx, sampleOp("bob", models.ProgramTudoAzul, 99))
	require.NoError(t, err)
	a2, err := s.Save(ctx, sampleOp("alice", models.ProgramLatamPass, 30))
	require.NoError(t, err)

	ops := s.List(ctx, "alice")
	require.Len(t, ops, 2)
	assert.Equal(t, a2.ID, ops[0].ID)
	assert.Equal(t, a1.ID, ops[1].ID)

	assert.Len(t, s.List(ctx, "bob"), 1)
	assert.Empty(t, s.List(ctx, "carol"))
}

func TestList_ReadFailureReturnsEmpty(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "never-initialized.db"), common.NewSilentLogger())

	ops := s.List(context.Background(), common.DefaultUserID)
	assert.NotNil(t, ops)
	assert.Empty(t, ops)
}

func TestDelete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first, err := s.Save(ctx, sampleOp("u", models.ProgramSmiles, 1))
	require.NoError(t, err)
	second, err := s.Save(ctx, sampleOp("u", models.ProgramSmiles, 2))
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, first.ID))
	ops := s.List(ctx, "u")
	require.Len(t, ops, 1)
	assert.Equal(t, second.ID, ops[0].ID)

	// Absent id is a no-op
	require.NoError(t, s.Delete(ctx, 12345))
	assert.Len(t, s.List(ctx, "u"), 1)
}

func TestDeleteForUser(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	op, err := s.Save(ctx, sampleOp("ana", models.ProgramSmiles, 1))
	require.NoError(t, err)

	// Another user's id is left alone
	require.NoError(t, s.DeleteForUser(ctx, "bob", op.ID))
	assert.Len(t, s.List(ctx, "ana"), 1)

	require.NoError(t, s.DeleteForUser(ctx, "ana", 12345))
	assert.Len(t, s.List(ctx, "ana"), 1)

	require.NoError(t, s.DeleteForUser(ctx, "ana", op.ID))
	assert.Empty(t, s.List(ctx, "ana"))
}

func TestLatestID(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, ok, err := s.LatestID(ctx, "u")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = s.Save(ctx, sampleOp("u", models.ProgramSmiles, 1))
	require.NoError(t, err)
	last, err := s.Save(ctx, sampleOp("u", models.ProgramSmiles, 2))
	require.NoError(t, err)

	id, ok, err := s.LatestID(ctx, "u")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, last.ID, id)
}

func TestSummary(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	empty, err := s.Summary(ctx, "u")
	require.NoError(t, err)
	assert.Equal(t, 0, empty.Operations)
	assert.Zero(t, empty.AverageROI)

	_, err = s.Save(ctx, sampleOp("u", models.ProgramSmiles, 35))
	require.NoError(t, err)
	_, err = s.Save(ctx, sampleOp("u", models.ProgramSmiles, 70))
	require.NoError(t, err)

	sum, err := s.Summary(ctx, "u")
	require.NoError(t, err)
	assert.Equal(t, "u", sum.User)
	assert.Equal(t, 2, sum.Operations)
	assert.InDelta(t, 7000, sum.TotalInvestment, 1e-9)
	assert.Equal(t, int64(400000), sum.TotalPoints)
	assert.InDelta(t, 105, sum.TotalProfit, 1e-9)
	assert.InDelta(t, 1.5, sum.AverageROI, 1e-9)
}
