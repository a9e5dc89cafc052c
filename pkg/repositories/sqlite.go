package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository opens (creating if needed) a journal database at path.
func NewSQLiteRepository(ctx context.Context, path string) (Repository, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %v", err)
	}
	// a single connection keeps ":memory:" databases alive and serializes writes
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, fmt.Sprintf(createFramesTable, "BLOB")); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create frames table: %v", err)
	}

	return &SQLiteRepository{
		db: db,
	}, nil
}

func (r *SQLiteRepository) Close(ctx context.Context) error {
	return r.db.Close()
}

func (r *SQLiteRepository) SaveFrame(ctx context.Context, frame Frame) error {
	q := `
	INSERT OR REPLACE INTO frames (session_id, idx, received_at, state_type, seq, outcome, reason, raw)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?);
	`
	_, err := r.db.ExecContext(ctx, q,
		frame.SessionID,
		int64(frame.Index),
		frame.ReceivedAt.UnixMilli(),
		frame.StateType,
		seqToColumn(frame.Seq),
		string(frame.Outcome),
		frame.Reason,
		frame.Raw,
	)
	if err != nil {
		return fmt.Errorf("failed to insert frame: %v", err)
	}

	return nil
}

func (r *SQLiteRepository) LoadFrames(ctx context.Context, sessionID string) ([]Frame, error) {
	q := `
	SELECT idx, received_at, state_type, seq, outcome, reason, raw
	FROM frames WHERE session_id = ? ORDER BY idx;
	`
	rows, err := r.db.QueryContext(ctx, q, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query frames: %v", err)
	}
	defer rows.Close()

	var frames []Frame
	for rows.Next() {
		var (
			idx        int64
			receivedAt int64
			seq        sql.NullInt64
			outcome    string
			frame      = Frame{SessionID: sessionID}
		)
		if err := rows.Scan(&idx, &receivedAt, &frame.StateType, &seq, &outcome, &frame.Reason, &frame.Raw); err != nil {
			return nil, fmt.Errorf("failed to scan frame: %v", err)
		}
		frame.Index = uint64(idx)
		frame.ReceivedAt = time.UnixMilli(receivedAt)
		frame.Outcome = FrameOutcome(outcome)
		if seq.Valid {
			frame.Seq = seqFromColumn(&seq.Int64)
		}
		frames = append(frames, frame)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate frames: %v", err)
	}

	if len(frames) == 0 {
		return nil, &ErrNotFound{SessionID: sessionID}
	}
	return frames, nil
}

func (r *SQLiteRepository) ListSessions(ctx context.Context) ([]Session, error) {
	q := `
	SELECT session_id, COUNT(*), MIN(received_at), MAX(received_at)
	FROM frames GROUP BY session_id ORDER BY MIN(received_at), session_id;
	`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %v", err)
	}
	defer rows.Close()

	sessions := []Session{}
	for rows.Next() {
		var (
			session Session
			firstAt int64
			lastAt  int64
		)
		if err := rows.Scan(&session.ID, &session.Frames, &firstAt, &lastAt); err != nil {
			return nil, fmt.Errorf("failed to scan session: %v", err)
		}
		session.FirstAt = time.UnixMilli(firstAt)
		session.LastAt = time.UnixMilli(lastAt)
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sessions: %v", err)
	}

	return sessions, nil
}
