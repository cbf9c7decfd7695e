package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Session is one place pass.
type Session struct {
	ID          string
	SourceDir   string
	DestDir     string
	MappingPath string
	Layout      string
	Method      string
	Naming      string
	Subject     string
	Session     string
	StartedAt   time.Time
	FinishedAt  time.Time
	Placed      int
	Skipped     int
	Missing     int
}

// Placement is one materialized file.
type Placement struct {
	SessionID  string
	Section    string
	Stem       string
	SourcePath string
	DestPath   string
	Method     string
	CreatedAt  time.Time
}

// BeginSession inserts a session row. StartedAt defaults to now.
func (s *Store) BeginSession(ctx context.Context, session Session) error {
	if session.ID == "" {
		return errors.New("session id is required")
	}
	if session.StartedAt.IsZero() {
		session.StartedAt = time.Now()
	}
	err := s.exec(ctx, `INSERT INTO sessions
		(id, source_dir, dest_dir, mapping_path, layout, method, naming, subject, session_label, started_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		session.ID, session.SourceDir, session.DestDir, session.MappingPath, session.Layout,
		session.Method, session.Naming, session.Subject, session.Session,
		session.StartedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// RecordPlacement appends a placement row to its session.
func (s *Store) RecordPlacement(ctx context.Context, p Placement) error {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	err := s.exec(ctx, `INSERT INTO placements
		(session_id, section, stem, source_path, dest_path, method, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.SessionID, p.Section, p.Stem, p.SourcePath, p.DestPath, p.Method,
		p.CreatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("insert placement: %w", err)
	}
	return nil
}

// FinishSession stores the final counts of a session.
func (s *Store) FinishSession(ctx context.Context, id string, placed, skipped, missing int) error {
	err := s.exec(ctx, `UPDATE sessions SET finished_at = ?, placed = ?, skipped = ?, missing = ? WHERE id = ?`,
		time.Now().UTC().Format(timeLayout), placed, skipped, missing, id)
	if err != nil {
		return fmt.Errorf("finish session: %w", err)
	}
	return nil
}

// Sessions returns the most recent sessions, newest first.
func (s *Store) Sessions(ctx context.Context, limit int) ([]Session, error) {
	ctx = ensureContext(ctx)
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `SELECT id, source_dir, dest_dir, mapping_path, layout, method, naming,
		subject, session_label, started_at, finished_at, placed, skipped, missing
		FROM sessions ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}
	return sessions, rows.Err()
}

// GetSession returns the session with id, or nil when absent.
func (s *Store) GetSession(ctx context.Context, id string) (*Session, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx, `SELECT id, source_dir, dest_dir, mapping_path, layout, method, naming,
		subject, session_label, started_at, finished_at, placed, skipped, missing
		FROM sessions WHERE id = ?`, id)
	session, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// Placements lists the files placed by a session in insertion order.
func (s *Store) Placements(ctx context.Context, sessionID string) ([]Placement, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx, `SELECT session_id, section, stem, source_path, dest_path, method, created_at
		FROM placements WHERE session_id = ? ORDER BY id`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query placements: %w", err)
	}
	defer rows.Close()

	var placements []Placement
	for rows.Next() {
		var (
			p       Placement
			created string
		)
		if err := rows.Scan(&p.SessionID, &p.Section, &p.Stem, &p.SourcePath, &p.DestPath, &p.Method, &created); err != nil {
			return nil, fmt.Errorf("scan placement: %w", err)
		}
		p.CreatedAt = parseTime(created)
		placements = append(placements, p)
	}
	return placements, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSession(row scanner) (Session, error) {
	var (
		session  Session
		started  string
		finished sql.NullString
	)
	err := row.Scan(&session.ID, &session.SourceDir, &session.DestDir, &session.MappingPath, &session.Layout,
		&session.Method, &session.Naming, &session.Subject, &session.Session, &started, &finished,
		&session.Placed, &session.Skipped, &session.Missing)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Session{}, err
		}
		return Session{}, fmt.Errorf("scan session: %w", err)
	}
	session.StartedAt = parseTime(started)
	if finished.Valid {
		session.FinishedAt = parseTime(finished.String)
	}
	return session, nil
}

func parseTime(value string) time.Time {
	t, err := time.Parse(timeLayout, value)
	if err != nil {
		return time.Time{}
	}
	return t
}
