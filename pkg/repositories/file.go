package repositories

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// FileRepository journals frames to a single zstd compressed file of JSON
// lines. Every SaveFrame appends one complete zstd frame, so a crash loses
// at most the frame being written.
type FileRepository struct {
	path string

	mu  sync.Mutex
	enc *zstd.Encoder
}

func NewFileRepository(path string) (Repository, error) {
	if path == "" {
		return nil, fmt.Errorf("journal file path is empty")
	}
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest), zstd.WithEncoderConcurrency(1))
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd encoder: %v", err)
	}
	// touch the file so a bad path fails here instead of on the first frame
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal file: %v", err)
	}
	f.Close()

	return &FileRepository{
		path: path,
		enc:  enc,
	}, nil
}

func (r *FileRepository) Close(ctx context.Context) error {
	return nil
}

func (r *FileRepository) SaveFrame(ctx context.Context, frame Frame) error {
	line, err := json.Marshal(frame)
	if err != nil {
		return fmt.Errorf("failed to marshal frame: %v", err)
	}
	line = append(line, '\n')

	r.mu.Lock()
	defer r.mu.Unlock()

	compressed := r.enc.EncodeAll(line, nil)
	f, err := os.OpenFile(r.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open journal file: %v", err)
	}
	defer f.Close()
	if _, err := f.Write(compressed); err != nil {
		return fmt.Errorf("failed to write frame: %v", err)
	}

	return nil
}

// readAll decodes every complete frame in the journal. A truncated trailing
// frame is ignored.
func (r *FileRepository) readAll() ([]Frame, error) {
	f, err := os.Open(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open journal file: %v", err)
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd decoder: %v", err)
	}
	defer dec.Close()

	var frames []Frame
	scanner := bufio.NewScanner(dec)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		var frame Frame
		if err := json.Unmarshal(scanner.Bytes(), &frame); err != nil {
			return nil, fmt.Errorf("failed to unmarshal frame: %v", err)
		}
		frames = append(frames, frame)
	}
	if err := scanner.Err(); err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, fmt.Errorf("failed to read journal file: %v", err)
	}

	return frames, nil
}

func (r *FileRepository) LoadFrames(ctx context.Context, sessionID string) ([]Frame, error) {
	r.mu.Lock()
	all, err := r.readAll()
	r.mu.Unlock()
	if err != nil {
		return nil, err
	}

	var frames []Frame
	for _, frame := range all {
		if frame.SessionID == sessionID {
			frames = append(frames, frame)
		}
	}
	if len(frames) == 0 {
		return nil, &ErrNotFound{SessionID: sessionID}
	}
	sort.SliceStable(frames, func(i, j int) bool {
		return frames[i].Index < frames[j].Index
	})
	return frames, nil
}

func (r *FileRepository) ListSessions(ctx context.Context) ([]Session, error) {
	r.mu.Lock()
	all, err := r.readAll()
	r.mu.Unlock()
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*Session)
	for _, frame := range all {
		session, ok := byID[frame.SessionID]
		if !ok {
			session = &Session{
				ID:      frame.SessionID,
				FirstAt: frame.ReceivedAt,
				LastAt:  frame.ReceivedAt,
			}
			byID[frame.SessionID] = session
		}
		session.Frames++
		if frame.ReceivedAt.Before(session.FirstAt) {
			session.FirstAt = frame.ReceivedAt
		}
		if frame.ReceivedAt.After(session.LastAt) {
			session.LastAt = frame.ReceivedAt
		}
	}

	sessions := make([]Session, 0, len(byID))
	for _, session := range byID {
		sessions = append(sessions, *session)
	}
	sort.Slice(sessions, func(i, j int) bool {
		if !sessions[i].FirstAt.Equal(sessions[j].FirstAt) {
			return sessions[i].FirstAt.Before(sessions[j].FirstAt)
		}
		return sessions[i].ID < sessions[j].ID
	})
	return sessions, nil
}
