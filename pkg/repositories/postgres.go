package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/cbodonnell/broadside/pkg/log"
	"github.com/jackc/pgx/v5"
)

// PostgresRepository is a journal shared by several clients, e.g. for a
// tournament operator collecting every session in one place.
// It holds a single connection and is not safe for concurrent use; the
// journal worker is its only caller.
type PostgresRepository struct {
	conn *pgx.Conn
}

// NewPostgresRepository connects to connStr and creates the frames table.
// The caller is responsible for calling Close() on the repository.
func NewPostgresRepository(ctx context.Context, connStr string) (Repository, error) {
	conn, err := connectDb(ctx, connStr)
	if err != nil {
		return nil, err
	}

	if _, err := conn.Exec(ctx, fmt.Sprintf(createFramesTable, "BYTEA")); err != nil {
		conn.Close(ctx)
		return nil, fmt.Errorf("failed to create frames table: %v", err)
	}

	return &PostgresRepository{
		conn: conn,
	}, nil
}

func connectDb(ctx context.Context, connStr string) (*pgx.Conn, error) {
	conn, err := pgx.Connect(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %v", err)
	}

	var username string
	var database string
	err = conn.QueryRow(ctx, "SELECT current_user, current_database()").Scan(&username, &database)
	if err != nil {
		conn.Close(ctx)
		return nil, fmt.Errorf("unable to query database: %v", err)
	}

	log.Info("Connected to %s as %s", database, username)

	return conn, nil
}

func (r *PostgresRepository) Close(ctx context.Context) error {
	return r.conn.Close(ctx)
}

func (r *PostgresRepository) SaveFrame(ctx context.Context, frame Frame) error {
	q := `
	INSERT INTO frames (session_id, idx, received_at, state_type, seq, outcome, reason, raw)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	ON CONFLICT (session_id, idx) DO UPDATE SET
		received_at = $3, state_type = $4, seq = $5, outcome = $6, reason = $7, raw = $8;
	`
	_, err := r.conn.Exec(ctx, q,
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

func (r *PostgresRepository) LoadFrames(ctx context.Context, sessionID string) ([]Frame, error) {
	q := `
	SELECT idx, received_at, state_type, seq, outcome, reason, raw
	FROM frames WHERE session_id = $1 ORDER BY idx;
	`
	rows, err := r.conn.Query(ctx, q, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query frames: %v", err)
	}
	defer rows.Close()

	var frames []Frame
	for rows.Next() {
		var (
			idx        int64
			receivedAt int64
			seq        *int64
			outcome    string
			frame      = Frame{SessionID: sessionID}
		)
		if err := rows.Scan(&idx, &receivedAt, &frame.StateType, &seq, &outcome, &frame.Reason, &frame.Raw); err != nil {
			return nil, fmt.Errorf("failed to scan frame: %v", err)
		}
		frame.Index = uint64(idx)
		frame.ReceivedAt = time.UnixMilli(receivedAt)
		frame.Outcome = FrameOutcome(outcome)
		frame.Seq = seqFromColumn(seq)
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

func (r *PostgresRepository) ListSessions(ctx context.Context) ([]Session, error) {
	q := `
	SELECT session_id, COUNT(*), MIN(received_at), MAX(received_at)
	FROM frames GROUP BY session_id ORDER BY MIN(received_at), session_id;
	`
	rows, err := r.conn.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %v", err)
	}
	defer rows.Close()

	sessions := []Session{}
	for rows.Next() {
		var (
			session Session
			count   int64
			firstAt int64
			lastAt  int64
		)
		if err := rows.Scan(&session.ID, &count, &firstAt, &lastAt); err != nil {
			return nil, fmt.Errorf("failed to scan session: %v", err)
		}
		session.Frames = int(count)
		session.FirstAt = time.UnixMilli(firstAt)
		session.LastAt = time.UnixMilli(lastAt)
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sessions: %v", err)
	}

	return sessions, nil
}
