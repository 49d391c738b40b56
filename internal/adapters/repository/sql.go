package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/okian/wikidle/internal/domain/model"
	"github.com/okian/wikidle/pkg/metrics"

	_ "github.com/lib/pq"    // postgres driver
	_ "modernc.org/sqlite" // sqlite driver
)

// Supported SQL drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

const schema = `CREATE TABLE IF NOT EXISTS game_results (
	id           TEXT PRIMARY KEY,
	user_id      BIGINT NOT NULL,
	username     TEXT NOT NULL DEFAULT '',
	avatar       TEXT NOT NULL DEFAULT '',
	discord_id   TEXT NOT NULL DEFAULT '',
	puzzle_date  TEXT NOT NULL,
	puzzle_title TEXT NOT NULL DEFAULT '',
	guess_count  INTEGER NOT NULL,
	won          BOOLEAN NOT NULL,
	created_at   BIGINT NOT NULL,
	UNIQUE (user_id, puzzle_date)
)`

const resultColumns = `id, user_id, username, avatar, discord_id, puzzle_date, puzzle_title, guess_count, won, created_at`

// SQLStore keeps results in a SQL database. Puzzle dates are stored as
// YYYY-MM-DD text and creation times as unix milliseconds, so one schema
// serves both drivers.
type SQLStore struct {
	db     *sql.DB
	driver string
	cfg    settings
}

var _ Store = (*SQLStore)(nil)

// OpenSQL connects to dsn with driver and creates the schema if needed.
func OpenSQL(ctx context.Context, driver, dsn string, opts ...Option) (*SQLStore, error) {
	if driver != DriverSQLite && driver != DriverPostgres {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, driver)
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if driver == DriverSQLite {
		// A single connection keeps :memory: databases shared and avoids
		// SQLITE_BUSY on files.
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &SQLStore{db: db, driver: driver, cfg: applyOptions(opts)}, nil
}

func (s *SQLStore) Record(ctx context.Context, r model.Result) (model.Result, bool, error) {
	start := time.Now()
	defer func() {
		metrics.RecordStoreWriteLatency(float64(time.Since(start).Milliseconds()))
	}()

	if err := validate(r); err != nil {
		metrics.RecordErrorByComponent("repository", "invalid_result")
		return model.Result{}, false, err
	}
	r = prepare(r, s.cfg)
	r.CreatedAt = time.UnixMilli(r.CreatedAt.UnixMilli()).UTC()
	day := model.DateKey(r.PuzzleDate)

	res, err := s.db.ExecContext(ctx, s.rebind(`INSERT INTO game_results (`+resultColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, puzzle_date) DO NOTHING`),
		r.ID, r.UserID, r.User.Username, r.User.Avatar, r.User.DiscordID,
		day, r.PuzzleTitle, r.GuessCount, r.Won, r.CreatedAt.UnixMilli())
	if err != nil {
		metrics.RecordErrorByComponent("repository", "write")
		return model.Result{}, false, fmt.Errorf("insert result: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 1 {
		metrics.UpdateResultsTotal(s.Count(ctx))
		return r, true, nil
	}

	row := s.db.QueryRowContext(ctx,
		s.rebind(`SELECT `+resultColumns+` FROM game_results WHERE user_id = ? AND puzzle_date = ?`),
		r.UserID, day)
	existing, err := scanResult(row)
	if err != nil {
		metrics.RecordErrorByComponent("repository", "read")
		return model.Result{}, false, fmt.Errorf("load existing result: %w", err)
	}
	return existing, false, nil
}

func (s *SQLStore) Results(ctx context.Context) ([]model.Result, error) {
	start := time.Now()
	defer func() {
		metrics.RecordStoreQueryLatency(float64(time.Since(start).Milliseconds()))
	}()

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+resultColumns+` FROM game_results ORDER BY puzzle_date, user_id, id`)
	if err != nil {
		metrics.RecordErrorByComponent("repository", "read")
		return nil, fmt.Errorf("query results: %w", err)
	}
	defer rows.Close()

	var out []model.Result
	for rows.Next() {
		r, err := scanResult(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate results: %w", err)
	}
	// Collation differs between drivers; tie order must match MemoryStore.
	sortResults(out)
	return out, nil
}

func (s *SQLStore) Count(ctx context.Context) int {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM game_results`).Scan(&n); err != nil {
		metrics.RecordErrorByComponent("repository", "count")
		return 0
	}
	return n
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}

// rebind turns ? placeholders into $n for postgres.
func (s *SQLStore) rebind(query string) string {
	if s.driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, c := range query {
		if c == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(c)
	}
	return b.String()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanResult(sc scanner) (model.Result, error) {
	var (
		r         model.Result
		day       string
		createdMs int64
	)
	err := sc.Scan(&r.ID, &r.UserID, &r.User.Username, &r.User.Avatar, &r.User.DiscordID,
		&day, &r.PuzzleTitle, &r.GuessCount, &r.Won, &createdMs)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Result{}, err
	}
	if err != nil {
		return model.Result{}, fmt.Errorf("scan result: %w", err)
	}
	r.PuzzleDate, err = time.Parse(model.DateLayout, day)
	if err != nil {
		return model.Result{}, fmt.Errorf("parse puzzle date %q: %w", day, err)
	}
	r.User.ID = r.UserID
	r.CreatedAt = time.UnixMilli(createdMs).UTC()
	return r, nil
}
