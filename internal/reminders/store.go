// Package reminders persists reminders across restarts in a local sqlite
// database.
package reminders

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

type Reminder struct {
	ID      int64
	Text    string
	Due     time.Time
	Created time.Time
	Done    bool
}

type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS reminders (
	id      INTEGER PRIMARY KEY AUTOINCREMENT,
	text    TEXT NOT NULL,
	due     INTEGER NOT NULL,
	created INTEGER NOT NULL,
	done    INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_reminders_due ON reminders(due) WHERE done = 0;
`

func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open reminders db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init reminders schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) Add(text string, due time.Time) (int64, error) {
	res, err := s.db.Exec(
		`INSERT INTO reminders (text, due, created) VALUES (?, ?, ?)`,
		text, due.Unix(), time.Now().Unix(),
	)
	if err != nil {
		return 0, fmt.Errorf("add reminder: %w", err)
	}
	return res.LastInsertId()
}

// Pending returns undone reminders ordered by due time.
func (s *Store) Pending() ([]Reminder, error) {
	rows, err := s.db.Query(
		`SELECT id, text, due, created, done FROM reminders WHERE done = 0 ORDER BY due`)
	if err != nil {
		return nil, fmt.Errorf("list reminders: %w", err)
	}
	defer rows.Close()
	return scanReminders(rows)
}

// DueBy returns undone reminders whose due time is at or before t.
func (s *Store) DueBy(t time.Time) ([]Reminder, error) {
	rows, err := s.db.Query(
		`SELECT id, text, due, created, done FROM reminders WHERE done = 0 AND due <= ? ORDER BY due`,
		t.Unix(),
	)
	if err != nil {
		return nil, fmt.Errorf("due reminders: %w", err)
	}
	defer rows.Close()
	return scanReminders(rows)
}

func (s *Store) MarkDone(id int64) error {
	res, err := s.db.Exec(`UPDATE reminders SET done = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("mark done: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("no reminder with id %d", id)
	}
	return nil
}

func scanReminders(rows *sql.Rows) ([]Reminder, error) {
	var out []Reminder
	for rows.Next() {
		var (
			r         Reminder
			due, crea int64
			done      int
		)
		if err := rows.Scan(&r.ID, &r.Text, &due, &crea, &done); err != nil {
			return nil, err
		}
		r.Due = time.Unix(due, 0)
		r.Created = time.Unix(crea, 0)
		r.Done = done != 0
		out = append(out, r)
	}
	return out, rows.Err()
}
