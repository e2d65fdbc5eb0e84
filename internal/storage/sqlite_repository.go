package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Fixed-width UTC so stored timestamps order lexically.
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const sqliteDSNOptions = "_busy_timeout=5000&_journal_mode=WAL&_txlock=immediate&_foreign_keys=on"

type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// queries implements Queries over either the pool or an open transaction.
type queries struct {
	conn dbtx
}

type SQLiteRepository struct {
	queries
	db *sql.DB
}

func NewSQLiteRepository(db *sql.DB) (*SQLiteRepository, error) {
	if db == nil {
		return nil, errors.New("storage: nil db")
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	return &SQLiteRepository{queries: queries{conn: db}, db: db}, nil
}

// OpenSQLite opens path with WAL journaling and immediate write transactions,
// then applies pending migrations.
func OpenSQLite(path string) (*SQLiteRepository, error) {
	dsn := path
	if !strings.Contains(path, "?") && path != ":memory:" {
		dsn = "file:" + path + "?" + sqliteDSNOptions
	}
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := MigrateUp(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	repo, err := NewSQLiteRepository(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

func (r *SQLiteRepository) WithTx(ctx context.Context, fn func(q Queries) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(&queries{conn: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

const rotationPlanColumns = `id, channel, day_number, focus, difficulty, items_json, completed_at, created_at`

func (q *queries) GetPlan(ctx context.Context, channel string, id int64) (RotationPlan, error) {
	row := q.conn.QueryRowContext(ctx, `
		SELECT `+rotationPlanColumns+`
		FROM rotation_plans WHERE channel = ? AND id = ?`, channel, id)
	return oneRotationPlan(row)
}

func (q *queries) FirstPlanInRotation(ctx context.Context, channel string) (RotationPlan, error) {
	row := q.conn.QueryRowContext(ctx, `
		SELECT `+rotationPlanColumns+`
		FROM rotation_plans WHERE channel = ?
		ORDER BY day_number ASC, id ASC
		LIMIT 1`, channel)
	return oneRotationPlan(row)
}

func (q *queries) NextPlanAfter(ctx context.Context, channel string, dayNumber int) (RotationPlan, error) {
	row := q.conn.QueryRowContext(ctx, `
		SELECT `+rotationPlanColumns+`
		FROM rotation_plans WHERE channel = ? AND day_number > ?
		ORDER BY day_number ASC, id ASC
		LIMIT 1`, channel, dayNumber)
	return oneRotationPlan(row)
}

func (q *queries) CreatePlan(ctx context.Context, in RotationPlan) (int64, error) {
	items := in.ItemsJSON
	if items == "" {
		items = "[]"
	}
	res, err := q.conn.ExecContext(ctx, `
		INSERT INTO rotation_plans (channel, day_number, focus, difficulty, items_json, completed_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		in.Channel, in.DayNumber, in.Focus, in.Difficulty, items, nullTime(in.CompletedAt), mustTime(in.CreatedAt),
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (q *queries) ListPlans(ctx context.Context, filter RotationPlanListFilter) ([]RotationPlan, error) {
	query := `SELECT ` + rotationPlanColumns + ` FROM rotation_plans`
	args := make([]any, 0, 3)
	if filter.Channel != "" {
		query += ` WHERE channel = ?`
		args = append(args, filter.Channel)
	}
	query += ` ORDER BY channel ASC, day_number ASC, id ASC`
	query += applyPagination(&args, filter.Limit, filter.Offset)

	rows, err := q.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]RotationPlan, 0)
	for rows.Next() {
		plan, scanErr := scanRotationPlan(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, plan)
	}
	return out, rows.Err()
}

// MarkPlanCompleted stamps completed_at once. It reports whether this call set it.
func (q *queries) MarkPlanCompleted(ctx context.Context, channel string, id int64, at time.Time) (bool, error) {
	res, err := q.conn.ExecContext(ctx, `
		UPDATE rotation_plans SET completed_at = ?
		WHERE channel = ? AND id = ? AND completed_at IS NULL`,
		mustTime(at), channel, id,
	)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (q *queries) GetOverridePlan(ctx context.Context, date, channel string) (OverridePlan, error) {
	row := q.conn.QueryRowContext(ctx, `
		SELECT plan_date, channel, focus, difficulty, items_json, updated_at
		FROM override_plans WHERE plan_date = ? AND channel = ?`, date, channel)
	plan, err := scanOverridePlan(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return OverridePlan{}, ErrNotFound
		}
		return OverridePlan{}, err
	}
	return plan, nil
}

func (q *queries) UpsertOverridePlan(ctx context.Context, in OverridePlan) error {
	items := in.ItemsJSON
	if items == "" {
		items = "[]"
	}
	_, err := q.conn.ExecContext(ctx, `
		INSERT INTO override_plans (plan_date, channel, focus, difficulty, items_json, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (plan_date, channel) DO UPDATE SET
			focus = excluded.focus,
			difficulty = excluded.difficulty,
			items_json = excluded.items_json,
			updated_at = excluded.updated_at
		WHERE override_plans.focus <> excluded.focus
			OR override_plans.difficulty <> excluded.difficulty
			OR override_plans.items_json <> excluded.items_json`,
		in.Date, in.Channel, in.Focus, in.Difficulty, items, mustTime(in.UpdatedAt),
	)
	return err
}

// LatestPlanIDOn returns the plan id already committed to for date. Rotation
// plans win over plan 0, then the most recently updated row.
func (q *queries) LatestPlanIDOn(ctx context.Context, date, channel string) (int64, error) {
	var id int64
	err := q.conn.QueryRowContext(ctx, `
		SELECT plan_id FROM completion_log
		WHERE log_date = ? AND channel = ?
		ORDER BY (plan_id <> 0) DESC, updated_at DESC, id DESC
		LIMIT 1`, date, channel).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, err
	}
	return id, nil
}

// LatestPlanIDBefore finds the most recent earlier date with log rows and the
// plan id committed to on it.
func (q *queries) LatestPlanIDBefore(ctx context.Context, date, channel string) (string, int64, error) {
	var (
		logDate string
		id      int64
	)
	err := q.conn.QueryRowContext(ctx, `
		SELECT log_date, plan_id FROM completion_log
		WHERE log_date < ? AND channel = ?
		ORDER BY log_date DESC, (plan_id <> 0) DESC, updated_at DESC, id DESC
		LIMIT 1`, date, channel).Scan(&logDate, &id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", 0, ErrNotFound
		}
		return "", 0, err
	}
	return logDate, id, nil
}

// UpsertCompletionLog writes the completed flag. A replay with the same flag
// leaves the row untouched, timestamp included.
func (q *queries) UpsertCompletionLog(ctx context.Context, in CompletionLog) error {
	_, err := q.conn.ExecContext(ctx, `
		INSERT INTO completion_log (log_date, channel, plan_id, exercise_key, completed, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (log_date, channel, plan_id, exercise_key) DO UPDATE SET
			completed = excluded.completed,
			updated_at = excluded.updated_at
		WHERE completion_log.completed <> excluded.completed`,
		in.Date, in.Channel, in.PlanID, in.ExerciseKey, boolInt(in.Completed), mustTime(in.UpdatedAt),
	)
	return err
}

func (q *queries) InsertCompletionLogIfMissing(ctx context.Context, in CompletionLog) error {
	_, err := q.conn.ExecContext(ctx, `
		INSERT INTO completion_log (log_date, channel, plan_id, exercise_key, completed, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (log_date, channel, plan_id, exercise_key) DO NOTHING`,
		in.Date, in.Channel, in.PlanID, in.ExerciseKey, boolInt(in.Completed), mustTime(in.UpdatedAt),
	)
	return err
}

// DeleteCompletionLogKeysNotIn prunes rows of one plan whose key is not in
// keys. An empty keys slice prunes every row of the plan.
func (q *queries) DeleteCompletionLogKeysNotIn(ctx context.Context, key CompletionLogKey, keys []string) (int64, error) {
	query := `DELETE FROM completion_log WHERE log_date = ? AND channel = ? AND plan_id = ?`
	args := []any{key.Date, key.Channel, key.PlanID}
	if len(keys) > 0 {
		query += ` AND exercise_key NOT IN (` + placeholders(len(keys)) + `)`
		for _, k := range keys {
			args = append(args, k)
		}
	}
	return execAffected(ctx, q.conn, query, args...)
}

// DeleteCompletionLogOtherPlans removes rows for the date that belong to any
// plan other than key.PlanID.
func (q *queries) DeleteCompletionLogOtherPlans(ctx context.Context, key CompletionLogKey) (int64, error) {
	return execAffected(ctx, q.conn, `
		DELETE FROM completion_log
		WHERE log_date = ? AND channel = ? AND plan_id <> ?`,
		key.Date, key.Channel, key.PlanID,
	)
}

func (q *queries) DeleteCompletionLogForDate(ctx context.Context, date, channel string) (int64, error) {
	return execAffected(ctx, q.conn, `DELETE FROM completion_log WHERE log_date = ? AND channel = ?`, date, channel)
}

// ListCompletionLog returns the rows of one plan in insertion order.
func (q *queries) ListCompletionLog(ctx context.Context, key CompletionLogKey) ([]CompletionLog, error) {
	rows, err := q.conn.QueryContext(ctx, `
		SELECT id, log_date, channel, plan_id, exercise_key, completed, updated_at
		FROM completion_log
		WHERE log_date = ? AND channel = ? AND plan_id = ?
		ORDER BY id ASC`, key.Date, key.Channel, key.PlanID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]CompletionLog, 0)
	for rows.Next() {
		item, scanErr := scanCompletionLog(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

func (q *queries) CountCompletionLog(ctx context.Context, key CompletionLogKey) (int, int, error) {
	var total, completed int
	err := q.conn.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(completed), 0)
		FROM completion_log
		WHERE log_date = ? AND channel = ? AND plan_id = ?`,
		key.Date, key.Channel, key.PlanID,
	).Scan(&total, &completed)
	return total, completed, err
}

func (q *queries) InsertAgentLog(ctx context.Context, in AgentLog) (int64, error) {
	res, err := q.conn.ExecContext(ctx, `
		INSERT INTO agent_log (log_date, channel, intensity, note, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		in.Date, in.Channel, in.Intensity, in.Note, mustTime(in.CreatedAt),
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// SumAgentLog totals the agent entries of one date.
func (q *queries) SumAgentLog(ctx context.Context, date, channel string) (int, error) {
	var total int
	err := q.conn.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(intensity), 0) FROM agent_log
		WHERE log_date = ? AND channel = ?`, date, channel).Scan(&total)
	return total, err
}

func (q *queries) GetDayIntensity(ctx context.Context, date, channel string) (DayIntensity, error) {
	row := q.conn.QueryRowContext(ctx, `
		SELECT log_date, channel, total, updated_at
		FROM day_intensity WHERE log_date = ? AND channel = ?`, date, channel)
	item, err := scanDayIntensity(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return DayIntensity{}, ErrNotFound
		}
		return DayIntensity{}, err
	}
	return item, nil
}

// UpsertDayIntensity stores a positive total. Zero totals are deleted instead.
func (q *queries) UpsertDayIntensity(ctx context.Context, in DayIntensity) error {
	if in.Total <= 0 {
		return q.DeleteDayIntensity(ctx, in.Date, in.Channel)
	}
	_, err := q.conn.ExecContext(ctx, `
		INSERT INTO day_intensity (log_date, channel, total, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (log_date, channel) DO UPDATE SET
			total = excluded.total,
			updated_at = excluded.updated_at
		WHERE day_intensity.total <> excluded.total`,
		in.Date, in.Channel, in.Total, mustTime(in.UpdatedAt),
	)
	return err
}

func (q *queries) DeleteDayIntensity(ctx context.Context, date, channel string) error {
	_, err := q.conn.ExecContext(ctx, `DELETE FROM day_intensity WHERE log_date = ? AND channel = ?`, date, channel)
	return err
}

// ReadHeatmapRange returns stored totals in [start, end] by date. Missing
// dates have a zero total.
func (q *queries) ReadHeatmapRange(ctx context.Context, channel, start, end string) ([]DayIntensity, error) {
	rows, err := q.conn.QueryContext(ctx, `
		SELECT log_date, channel, total, updated_at
		FROM day_intensity
		WHERE channel = ? AND log_date BETWEEN ? AND ?
		ORDER BY log_date ASC`, channel, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]DayIntensity, 0)
	for rows.Next() {
		item, scanErr := scanDayIntensity(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

// ReadHeatmapDetail reads totals joined with their snapshots in one statement
// so each pair comes from the same committed state.
func (q *queries) ReadHeatmapDetail(ctx context.Context, channel, start, end string) ([]HeatmapDay, error) {
	rows, err := q.conn.QueryContext(ctx, `
		SELECT d.log_date, d.total, s.items_json
		FROM day_intensity d
		LEFT JOIN completed_snapshots s ON s.log_date = d.log_date AND s.channel = d.channel
		WHERE d.channel = ? AND d.log_date BETWEEN ? AND ?
		ORDER BY d.log_date ASC`, channel, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]HeatmapDay, 0)
	for rows.Next() {
		var (
			day   HeatmapDay
			items sql.NullString
		)
		if err := rows.Scan(&day.Date, &day.Total, &items); err != nil {
			return nil, err
		}
		day.SnapshotJSON = items.String
		day.HasSnapshot = items.Valid
		out = append(out, day)
	}
	return out, rows.Err()
}

func (q *queries) GetSnapshot(ctx context.Context, date, channel string) (Snapshot, error) {
	row := q.conn.QueryRowContext(ctx, `
		SELECT log_date, channel, items_json, updated_at
		FROM completed_snapshots WHERE log_date = ? AND channel = ?`, date, channel)
	item, err := scanSnapshot(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Snapshot{}, ErrNotFound
		}
		return Snapshot{}, err
	}
	return item, nil
}

func (q *queries) UpsertSnapshot(ctx context.Context, in Snapshot) error {
	_, err := q.conn.ExecContext(ctx, `
		INSERT INTO completed_snapshots (log_date, channel, items_json, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (log_date, channel) DO UPDATE SET
			items_json = excluded.items_json,
			updated_at = excluded.updated_at
		WHERE completed_snapshots.items_json <> excluded.items_json`,
		in.Date, in.Channel, in.ItemsJSON, mustTime(in.UpdatedAt),
	)
	return err
}

func (q *queries) DeleteSnapshot(ctx context.Context, date, channel string) error {
	_, err := q.conn.ExecContext(ctx, `DELETE FROM completed_snapshots WHERE log_date = ? AND channel = ?`, date, channel)
	return err
}

func nullTime(v *time.Time) any {
	if v == nil {
		return nil
	}
	return v.UTC().Format(sqliteTimeLayout)
}

func mustTime(v time.Time) string {
	return v.UTC().Format(sqliteTimeLayout)
}

func parseNullableTime(v sql.NullString) (*time.Time, error) {
	if !v.Valid || v.String == "" {
		return nil, nil
	}
	tm, err := time.Parse(sqliteTimeLayout, v.String)
	if err != nil {
		return nil, err
	}
	return &tm, nil
}

func parseRequiredTime(v string) (time.Time, error) {
	return time.Parse(sqliteTimeLayout, v)
}

func boolInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func applyPagination(args *[]any, limit, offset int) string {
	sql := ""
	if limit > 0 {
		sql += " LIMIT ?"
		*args = append(*args, limit)
	}
	if offset > 0 {
		if limit <= 0 {
			sql += " LIMIT -1"
		}
		sql += " OFFSET ?"
		*args = append(*args, offset)
	}
	return sql
}

func execAffected(ctx context.Context, conn dbtx, query string, args ...any) (int64, error) {
	res, err := conn.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

type scanner interface {
	Scan(dest ...any) error
}

func oneRotationPlan(s scanner) (RotationPlan, error) {
	plan, err := scanRotationPlan(s)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return RotationPlan{}, ErrNotFound
		}
		return RotationPlan{}, err
	}
	return plan, nil
}

func scanRotationPlan(s scanner) (RotationPlan, error) {
	var out RotationPlan
	var completed sql.NullString
	var created string
	if err := s.Scan(&out.ID, &out.Channel, &out.DayNumber, &out.Focus, &out.Difficulty, &out.ItemsJSON, &completed, &created); err != nil {
		return RotationPlan{}, err
	}
	createdAt, err := parseRequiredTime(created)
	if err != nil {
		return RotationPlan{}, err
	}
	completedAt, err := parseNullableTime(completed)
	if err != nil {
		return RotationPlan{}, err
	}
	out.CreatedAt = createdAt
	out.CompletedAt = completedAt
	return out, nil
}

func scanOverridePlan(s scanner) (OverridePlan, error) {
	var out OverridePlan
	var updated string
	if err := s.Scan(&out.Date, &out.Channel, &out.Focus, &out.Difficulty, &out.ItemsJSON, &updated); err != nil {
		return OverridePlan{}, err
	}
	updatedAt, err := parseRequiredTime(updated)
	if err != nil {
		return OverridePlan{}, err
	}
	out.UpdatedAt = updatedAt
	return out, nil
}

func scanCompletionLog(s scanner) (CompletionLog, error) {
	var out CompletionLog
	var completed int
	var updated string
	if err := s.Scan(&out.ID, &out.Date, &out.Channel, &out.PlanID, &out.ExerciseKey, &completed, &updated); err != nil {
		return CompletionLog{}, err
	}
	updatedAt, err := parseRequiredTime(updated)
	if err != nil {
		return CompletionLog{}, err
	}
	out.Completed = completed == 1
	out.UpdatedAt = updatedAt
	return out, nil
}

func scanDayIntensity(s scanner) (DayIntensity, error) {
	var out DayIntensity
	var updated string
	if err := s.Scan(&out.Date, &out.Channel, &out.Total, &updated); err != nil {
		return DayIntensity{}, err
	}
	updatedAt, err := parseRequiredTime(updated)
	if err != nil {
		return DayIntensity{}, err
	}
	out.UpdatedAt = updatedAt
	return out, nil
}

func scanSnapshot(s scanner) (Snapshot, error) {
	var out Snapshot
	var updated string
	if err := s.Scan(&out.Date, &out.Channel, &out.ItemsJSON, &updated); err != nil {
		return Snapshot{}, err
	}
	updatedAt, err := parseRequiredTime(updated)
	if err != nil {
		return Snapshot{}, err
	}
	out.UpdatedAt = updatedAt
	return out, nil
}
