package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/clefscore/clef/internal/domain/model"

	_ "github.com/ncruces/go-sqlite3/driver" // pure-Go SQLite driver
	_ "github.com/ncruces/go-sqlite3/embed"  // embedded SQLite binary
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id            TEXT PRIMARY KEY,
	username      TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	created_at    TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS rounds (
	seq            INTEGER PRIMARY KEY AUTOINCREMENT,
	id             TEXT NOT NULL UNIQUE,
	user_id        TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	net_score      INTEGER NOT NULL,
	question_count INTEGER,
	difficulty     TEXT,
	meta           TEXT,
	occurred_at    TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_rounds_user_time ON rounds(user_id, occurred_at, seq);
`

// SQLiteStore implements UserStore and RoundStore on a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if necessary) the database at dsn and applies
// the schema.
func OpenSQLite(ctx context.Context, dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateUser(ctx context.Context, u model.User) error {
	const q = `INSERT INTO users (id, username, password_hash, created_at) VALUES (?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, q, u.ID, u.Username, u.PasswordHash, u.CreatedAt.UTC())
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateUsername
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *SQLiteStore) UserByUsername(ctx context.Context, username string) (model.User, error) {
	const q = `SELECT id, username, password_hash, created_at FROM users WHERE username = ?`
	return s.scanUser(s.db.QueryRowContext(ctx, q, username))
}

func (s *SQLiteStore) UserByID(ctx context.Context, id string) (model.User, error) {
	const q = `SELECT id, username, password_hash, created_at FROM users WHERE id = ?`
	return s.scanUser(s.db.QueryRowContext(ctx, q, id))
}

func (s *SQLiteStore) scanUser(row *sql.Row) (model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return model.User{}, ErrNotFound
	}
	if err != nil {
		return model.User{}, fmt.Errorf("scan user: %w", err)
	}
	return u, nil
}

func (s *SQLiteStore) AppendRound(ctx context.Context, r model.RoundRecord) error {
	const q = `INSERT INTO rounds (id, user_id, net_score, question_count, difficulty, meta, occurred_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, q,
		r.ID, r.UserID, r.NetScore,
		nullInt(r.QuestionCount), nullString(r.Difficulty), nullString(r.Meta),
		r.OccurredAt.UTC(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateRound
		}
		return fmt.Errorf("insert round: %w", err)
	}
	return nil
}

func (s *SQLiteStore) RoundsByUser(ctx context.Context, userID string) ([]model.RoundRecord, error) {
	const q = `SELECT seq, id, user_id, net_score, question_count, difficulty, meta, occurred_at
		FROM rounds WHERE user_id = ? ORDER BY occurred_at ASC, seq ASC`
	rows, err := s.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("query rounds: %w", err)
	}
	defer rows.Close()
	return scanRounds(rows)
}

func (s *SQLiteStore) RecentRounds(ctx context.Context, userID string, limit int) ([]model.RoundRecord, error) {
	const q = `SELECT seq, id, user_id, net_score, question_count, difficulty, meta, occurred_at
		FROM rounds WHERE user_id = ? ORDER BY occurred_at DESC, seq DESC LIMIT ?`
	rows, err := s.db.QueryContext(ctx, q, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent rounds: %w", err)
	}
	defer rows.Close()
	return scanRounds(rows)
}

func (s *SQLiteStore) Stats(ctx context.Context, userID string) (model.Stats, error) {
	var st model.Stats
	var avg sql.NullFloat64
	var total sql.NullInt64
	const agg = `SELECT COUNT(*), SUM(net_score), AVG(net_score) FROM rounds WHERE user_id = ?`
	if err := s.db.QueryRowContext(ctx, agg, userID).Scan(&st.Rounds, &total, &avg); err != nil {
		return model.Stats{}, fmt.Errorf("aggregate rounds: %w", err)
	}
	st.TotalScore = int(total.Int64)
	if avg.Valid {
		st.AvgScore = &avg.Float64
	}

	const byTier = `SELECT AVG(net_score) FROM rounds WHERE user_id = ? AND difficulty = ?`
	for tier, dst := range map[string]**float64{
		"easy":   &st.AvgEasy,
		"medium": &st.AvgMedium,
		"hard":   &st.AvgHard,
	} {
		var v sql.NullFloat64
		if err := s.db.QueryRowContext(ctx, byTier, userID, tier).Scan(&v); err != nil {
			return model.Stats{}, fmt.Errorf("aggregate %s rounds: %w", tier, err)
		}
		if v.Valid {
			f := v.Float64
			*dst = &f
		}
	}
	return st, nil
}

func scanRounds(rows *sql.Rows) ([]model.RoundRecord, error) {
	var out []model.RoundRecord
	for rows.Next() {
		var r model.RoundRecord
		var questions sql.NullInt64
		var difficulty, meta sql.NullString
		var at time.Time
		if err := rows.Scan(&r.Seq, &r.ID, &r.UserID, &r.NetScore, &questions, &difficulty, &meta, &at); err != nil {
			return nil, fmt.Errorf("scan round: %w", err)
		}
		r.QuestionCount = int(questions.Int64)
		r.Difficulty = difficulty.String
		r.Meta = meta.String
		r.OccurredAt = at
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rounds: %w", err)
	}
	return out, nil
}

func nullInt(v int) any {
	if v == 0 {
		return nil
	}
	return v
}

func nullString(v string) any {
	if v == "" {
		return nil
	}
	return v
}

// isUniqueViolation detects SQLite unique constraint failures without
// depending on driver-specific error types.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
