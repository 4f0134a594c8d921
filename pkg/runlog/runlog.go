// Package runlog keeps a history of runs in a SQLite database.
package runlog

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/golang/glog"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/robotalks/romi.go/pkg/romi"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id     TEXT PRIMARY KEY,
	robot      TEXT NOT NULL,
	started    TIMESTAMP NOT NULL,
	ended      TIMESTAMP NOT NULL,
	cause      TEXT,
	waypoint   INTEGER,
	wall_hit   BOOLEAN,
	final      TEXT,
	tasks      TEXT,
	shares     TEXT,
	traces     TEXT
);
`

// Run is a stored run.
type Run struct {
	ID       string
	Robot    string
	Started  time.Time
	Ended    time.Time
	Cause    string
	Waypoint int
	WallHit  bool
	Final    [7]float64
	Tasks    string
	Shares   string
	Traces   string
}

// Store implements romi.Recorder on a SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err = db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close implements io.Closer.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record implements romi.Recorder.
func (s *Store) Record(report *romi.Report) error {
	final, err := json.Marshal(report.Final)
	if err != nil {
		return err
	}
	id := uuid.NewString()
	_, err = s.db.Exec(`INSERT INTO runs
		(run_id, robot, started, ended, cause, waypoint, wall_hit, final, tasks, shares, traces)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, report.Robot, report.Started.UTC(), report.Ended.UTC(), report.Cause,
		report.Waypoint, report.WallHit, string(final),
		report.Tasks, report.Shares, report.Traces)
	if err != nil {
		return err
	}
	glog.Infof("run %s recorded", id)
	return nil
}

// Runs lists the most recent runs, newest first.
func (s *Store) Runs(limit int) ([]*Run, error) {
	rows, err := s.db.Query(`SELECT
		run_id, robot, started, ended, cause, waypoint, wall_hit, final, tasks, shares, traces
		FROM runs ORDER BY started DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var runs []*Run
	for rows.Next() {
		var r Run
		var final string
		if err := rows.Scan(&r.ID, &r.Robot, &r.Started, &r.Ended, &r.Cause,
			&r.Waypoint, &r.WallHit, &final, &r.Tasks, &r.Shares, &r.Traces); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(final), &r.Final); err != nil {
			return nil, fmt.Errorf("run %s: final state: %w", r.ID, err)
		}
		runs = append(runs, &r)
	}
	return runs, rows.Err()
}
