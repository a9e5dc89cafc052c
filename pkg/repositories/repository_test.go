package repositories

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func localRepositories(t *testing.T) map[string]Repository {
	t.Helper()
	ctx := context.Background()
	dir := t.TempDir()

	sqliteRepo, err := Open(ctx, "sqlite://"+filepath.Join(dir, "journal.db"))
	require.NoError(t, err)
	fileRepo, err := Open(ctx, "file://"+filepath.Join(dir, "journal.zst"))
	require.NoError(t, err)

	t.Cleanup(func() {
		sqliteRepo.Close(ctx)
		fileRepo.Close(ctx)
	})
	return map[string]Repository{
		"sqlite": sqliteRepo,
		"file":   fileRepo,
	}
}

func seqPtr(v uint64) *uint64 {
	return &v
}

func TestRepository_SaveAndLoadFrames(t *testing.T) {
	base := time.UnixMilli(1_700_000_000_000)
	frames := []Frame{
		{SessionID: "a", Index: 0, ReceivedAt: base, StateType: "Waiting", Outcome: FrameOutcomeApplied, Raw: []byte(`{"type":"Waiting"}`)},
		{SessionID: "a", Index: 1, ReceivedAt: base.Add(time.Second), Outcome: FrameOutcomeRejected, Reason: "unknown state type", Raw: []byte(`{"type":"Bogus"}`)},
		{SessionID: "a", Index: 2, ReceivedAt: base.Add(2 * time.Second), StateType: "Guessing", Seq: seqPtr(7), Outcome: FrameOutcomeApplied, Raw: []byte(`{"type":"Guessing","seq":7}`)},
		{SessionID: "b", Index: 0, ReceivedAt: base.Add(3 * time.Second), StateType: "Won", Outcome: FrameOutcomeApplied, Raw: []byte(`{"type":"Won","who":"Player1"}`)},
	}

	for name, repo := range localRepositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			for _, f := range frames {
				require.NoError(t, repo.SaveFrame(ctx, f))
			}

			got, err := repo.LoadFrames(ctx, "a")
			require.NoError(t, err)
			require.Len(t, got, 3)
			for i, f := range got {
				want := frames[i]
				assert.Equal(t, want.SessionID, f.SessionID)
				assert.Equal(t, want.Index, f.Index)
				assert.True(t, want.ReceivedAt.Equal(f.ReceivedAt), "frame %d received at %v, want %v", i, f.ReceivedAt, want.ReceivedAt)
				assert.Equal(t, want.StateType, f.StateType)
				assert.Equal(t, want.Seq, f.Seq)
				assert.Equal(t, want.Outcome, f.Outcome)
				assert.Equal(t, want.Reason, f.Reason)
				assert.Equal(t, want.Raw, f.Raw)
			}
		})
	}
}

func TestRepository_LoadUnknownSession(t *testing.T) {
	for name, repo := range localRepositories(t) {
		t.Run(name, func(t *testing.T) {
			_, err := repo.LoadFrames(context.Background(), "missing")
			require.Error(t, err)
			assert.True(t, IsNotFound(err))
		})
	}
}

func TestRepository_ListSessions(t *testing.T) {
	base := time.UnixMilli(1_700_000_000_000)

	for name, repo := range localRepositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			sessions, err := repo.ListSessions(ctx)
			require.NoError(t, err)
			assert.Empty(t, sessions)

			require.NoError(t, repo.SaveFrame(ctx, Frame{SessionID: "late", Index: 0, ReceivedAt: base.Add(time.Minute), Outcome: FrameOutcomeApplied, Raw: []byte("{}")}))
			require.NoError(t, repo.SaveFrame(ctx, Frame{SessionID: "early", Index: 0, ReceivedAt: base, Outcome: FrameOutcomeApplied, Raw: []byte("{}")}))
			require.NoError(t, repo.SaveFrame(ctx, Frame{SessionID: "early", Index: 1, ReceivedAt: base.Add(time.Second), Outcome: FrameOutcomeStale, Raw: []byte("{}")}))

			sessions, err = repo.ListSessions(ctx)
			require.NoError(t, err)
			require.Len(t, sessions, 2)

			assert.Equal(t, "early", sessions[0].ID)
			assert.Equal(t, 2, sessions[0].Frames)
			assert.True(t, base.Equal(sessions[0].FirstAt))
			assert.True(t, base.Add(time.Second).Equal(sessions[0].LastAt))

			assert.Equal(t, "late", sessions[1].ID)
			assert.Equal(t, 1, sessions[1].Frames)
		})
	}
}

func TestOpen_UnsupportedDSN(t *testing.T) {
	_, err := Open(context.Background(), "mysql://localhost/journal")
	assert.Error(t, err)
}
