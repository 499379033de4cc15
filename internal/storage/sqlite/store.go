// Package sqlite persists saved operations in a SQLite file.
// Every call opens its own handle and closes it before returning.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/bobmcallan/milhas/internal/common"
	"github.com/bobmcallan/milhas/internal/interfaces"
	"github.com/bobmcallan/milhas/internal/models"
)

// SchemaVersion is recorded in PRAGMA user_version once migrations have run.
const SchemaVersion = 1

// recordedAtLayouts are tried in order when reading recorded_at. The last
// one is the day/month format written by early versions of the app.
var recordedAtLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"02/01 15:04",
}

const createOperationsTable = `
CREATE TABLE IF NOT EXISTS operations (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	recorded_at TEXT NOT NULL,
	"user" TEXT NOT NULL DEFAULT 'default',
	program TEXT NOT NULL,
	investment REAL NOT NULL,
	points INTEGER NOT NULL,
	sale_price REAL NOT NULL,
	profit REAL NOT NULL,
	roi REAL NOT NULL
)`

const selectOperationFields = `id, recorded_at, "user", program, investment, points, sale_price, profit, roi`

// Store implements interfaces.OperationStore.
type Store struct {
	path   string
	logger *common.Logger
	now    func() time.Time // injectable clock for testing
}

// NewStore creates a store backed by the SQLite file at path.
func NewStore(path string, logger *common.Logger) *Store {
	return &Store{
		path:   path,
		logger: logger,
		now:    time.Now,
	}
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) open(ctx context.Context) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", s.path+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect database %s: %w", s.path, err)
	}
	return db, nil
}

// Initialize creates the operations table if it does not exist.
func (s *Store) Initialize(ctx context.Context) error {
	if dir := filepath.Dir(s.path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create data directory: %w", err)
		}
	}

	db, err := s.open(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	if _, err := db.ExecContext(ctx, createOperationsTable); err != nil {
		return fmt.Errorf("create operations table: %w", err)
	}

	s.logger.Debug().Str("path", s.path).Msg("Operations table ready")
	return nil
}

// Migrate adds columns introduced after the first schema and stamps the
// schema version. Running it repeatedly is a no-op.
func (s *Store) Migrate(ctx context.Context) error {
	db, err := s.open(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	version, err := userVersion(ctx, db)
	if err != nil {
		return err
	}

	cols, err := tableColumns(ctx, db, "operations")
	if err != nil {
		return err
	}

	if !cols["user"] {
		stmt := fmt.Sprintf(`ALTER TABLE operations ADD COLUMN "user" TEXT NOT NULL DEFAULT '%s'`, common.DefaultUserID)
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("add user column: %w", err)
		}
		s.logger.Info().Str("path", s.path).Msg("Migrated operations table: added user column")
	}

	if _, err := db.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_operations_user ON operations("user", id)`); err != nil {
		return fmt.Errorf("create user index: %w", err)
	}

	if version < SchemaVersion {
		if _, err := db.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", SchemaVersion)); err != nil {
			return fmt.Errorf("set schema version: %w", err)
		}
		s.logger.Info().Int("from", version).Int("to", SchemaVersion).Msg("Schema version updated")
	}

	return nil
}

// Version returns the stored schema version.
func (s *Store) Version(ctx context.Context) (int, error) {
	db, err := s.open(ctx)
	if err != nil {
		return 0, err
	}
	defer db.Close()
	return userVersion(ctx, db)
}

func userVersion(ctx context.Context, db *sql.DB) (int, error) {
	var v int
	if err := db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&v); err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return v, nil
}

func tableColumns(ctx context.Context, db *sql.DB, table string) (map[string]bool, error) {
	rows, err := db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return nil, fmt.Errorf("read %s columns: %w", table, err)
	}
	defer rows.Close()

	cols := map[string]bool{}
	for rows.Next() {
		var (
			cid     int
			name    string
			ctype   string
			notnull int
			dflt    sql.NullString
			pk      int
		)
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dflt, &pk); err != nil {
			return nil, fmt.Errorf("scan %s column: %w", table, err)
		}
		cols[strings.ToLower(name)] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read %s columns: %w", table, err)
	}
	if len(cols) == 0 {
		return nil, fmt.Errorf("table %s does not exist", table)
	}
	return cols, nil
}

// Save appends an operation. The id and recorded_at are assigned here;
// any values set by the caller are ignored.
func (s *Store) Save(ctx context.Context, op models.Operation) (*models.Operation, error) {
	if strings.TrimSpace(op.User) == "" {
		op.User = common.DefaultUserID
	}
	op.RecordedAt = s.now().UTC().Truncate(time.Second)

	db, err := s.open(ctx)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	res, err := db.ExecContext(ctx,
		`INSERT INTO operations (recorded_at, "user", program, investment, points, sale_price, profit, roi)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		op.RecordedAt.Format(time.RFC3339), op.User, op.Program,
		op.Investment, op.Points, op.SalePrice, op.Profit, op.ROI,
	)
	if err != nil {
		return nil, fmt.Errorf("insert operation: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("read operation id: %w", err)
	}
	op.ID = id

	s.logger.Debug().Int64("id", id).Str("user", op.User).Str("program", op.Program).Msg("Operation saved")
	return &op, nil
}

// List returns the user's operations, newest first. Read failures are
// logged and produce an empty list.
func (s *Store) List(ctx context.Context, user string) []models.Operation {
	ops, err := s.list(ctx, user)
	if err != nil {
		s.logger.Warn().Err(err).Str("user", user).Msg("Failed to list operations")
		return []models.Operation{}
	}
	return ops
}

func (s *Store) list(ctx context.Context, user string) ([]models.Operation, error) {
	db, err := s.open(ctx)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx,
		`SELECT `+selectOperationFields+` FROM operations WHERE "user" = ? ORDER BY id DESC`, user)
	if err != nil {
		return nil, fmt.Errorf("query operations: %w", err)
	}
	defer rows.Close()

	ops := []models.Operation{}
	for rows.Next() {
		op, err := scanOperation(rows)
		if err != nil {
			s.logger.Warn().Err(err).Str("user", user).Msg("Skipping unreadable operation row")
			continue
		}
		ops = append(ops, op)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read operations: %w", err)
	}
	return ops, nil
}

// scanOperation reads one row leniently. Tables written by early versions
// may hold NULLs or fractional points, which are zeroed or rounded.
func scanOperation(rows *sql.Rows) (models.Operation, error) {
	var (
		id                                    int64
		recordedAt, user, program             sql.NullString
		investment, points, salePrice, profit sql.NullFloat64
		roi                                   sql.NullFloat64
	)
	if err := rows.Scan(&id, &recordedAt, &user, &program,
		&investment, &points, &salePrice, &profit, &roi); err != nil {
		return models.Operation{}, fmt.Errorf("scan operation: %w", err)
	}
	return models.Operation{
		ID:         id,
		RecordedAt: parseRecordedAt(recordedAt.String),
		User:       user.String,
		Program:    program.String,
		Investment: investment.Float64,
		Points:     int64(math.Round(points.Float64)),
		SalePrice:  salePrice.Float64,
		Profit:     profit.Float64,
		ROI:        roi.Float64,
	}, nil
}

func parseRecordedAt(v string) time.Time {
	for _, layout := range recordedAtLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t
		}
	}
	return time.Time{}
}

// Delete removes the operation with the given id. An absent id is not an error.
func (s *Store) Delete(ctx context.Context, id int64) error {
	db, err := s.open(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	res, err := db.ExecContext(ctx, `DELETE FROM operations WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete operation %d: %w", id, err)
	}

	n, _ := res.RowsAffected()
	s.logger.Debug().Int64("id", id).Int64("deleted", n).Msg("Operation delete")
	return nil
}

// DeleteForUser removes the operation with the given id only when it belongs
// to user. Absent ids and ids owned by another user are not an error.
func (s *Store) DeleteForUser(ctx context.Context, user string, id int64) error {
	db, err := s.open(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	res, err := db.ExecContext(ctx, `DELETE FROM operations WHERE id = ? AND "user" = ?`, id, user)
	if err != nil {
		return fmt.Errorf("delete operation %d: %w", id, err)
	}

	n, _ := res.RowsAffected()
	s.logger.Debug().Int64("id", id).Str("user", user).Int64("deleted", n).Msg("Operation delete")
	return nil
}

// LatestID returns the id of the user's newest operation.
func (s *Store) LatestID(ctx context.Context, user string) (int64, bool, error) {
	db, err := s.open(ctx)
	if err != nil {
		return 0, false, err
	}
	defer db.Close()

	var id int64
	err = db.QueryRowContext(ctx,
		`SELECT id FROM operations WHERE "user" = ? ORDER BY id DESC LIMIT 1`, user).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("query latest operation: %w", err)
	}
	return id, true, nil
}

// Summary aggregates the user's operations.
func (s *Store) Summary(ctx context.Context, user string) (*models.PortfolioSummary, error) {
	db, err := s.open(ctx)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	sum := &models.PortfolioSummary{User: user}
	err = db.QueryRowContext(ctx, `
		SELECT COUNT(*),
			COALESCE(SUM(investment), 0),
			CAST(ROUND(COALESCE(SUM(points), 0)) AS INTEGER),
			COALESCE(SUM(profit), 0),
			COALESCE(AVG(roi), 0)
		FROM operations WHERE "user" = ?`, user).
		Scan(&sum.Operations, &sum.TotalInvestment, &sum.TotalPoints, &sum.TotalProfit, &sum.AverageROI)
	if err != nil {
		return nil, fmt.Errorf("summarise operations: %w", err)
	}
	return sum, nil
}

// Ensure Store implements OperationStore
var _ interfaces.OperationStore = (*Store)(nil)
