package room

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tunesync/server/internal/repository/room/inmemory"
	"github.com/tunesync/server/internal/repository/wssender"
)

func newTestService(t *testing.T) *service {
	t.Helper()

	connRepo := wssender.NewRepo(4)
	t.Cleanup(connRepo.Close)

	return NewService(inmemory.NewRepo(), connRepo)
}

func TestJoinRoomCreatesRoomAndSyncsLateJoiner(t *testing.T) {
	s := newTestService(t)
	now := time.UnixMilli(1_700_000_000_000)
	s.now = func() time.Time { return now }

	ctx := context.Background()

	joinResp, err := s.JoinRoom(ctx, &JoinRoomParams{
		SessionId: "admin",
		RoomName:  "lounge",
		IsAdmin:   true,
	})
	require.NoError(t, err)
	assert.Nil(t, joinResp.Sync, "empty room must produce no sync")
	assert.Nil(t, joinResp.State.CurrentSong)
	assert.False(t, joinResp.State.IsPlaying)
	assert.Equal(t, 1, joinResp.MemberCount)

	songInfo := json.RawMessage(`{"track":"Take Five"}`)
	startAt := now.Add(-30 * time.Second).UnixMilli()
	playResp, err := s.PlaySong(ctx, &PlaySongParams{
		SenderId: "admin",
		RoomName: "lounge",
		URL:      "https://cdn.example/take-five.m4a",
		SongInfo: songInfo,
		StartAt:  startAt,
		Duration: 325,
	})
	require.NoError(t, err)
	assert.Equal(t, startAt, playResp.Playback.StartAt)

	lateResp, err := s.JoinRoom(ctx, &JoinRoomParams{
		SessionId: "listener",
		RoomName:  "lounge",
	})
	require.NoError(t, err)
	require.NotNil(t, lateResp.Sync, "late joiner must be synced to live playback")
	assert.Equal(t, "https://cdn.example/take-five.m4a", lateResp.Sync.URL)
	assert.InDelta(t, 30.0, lateResp.Sync.SeekTo, 0.001)
	assert.Equal(t, startAt, lateResp.Sync.StartTime)
	assert.True(t, lateResp.State.IsPlaying)
	require.NotNil(t, lateResp.State.CurrentSong)
	assert.Equal(t, 2, lateResp.MemberCount)
}

func TestJoinRoomExpiredPlaybackProducesNoSync(t *testing.T) {
	s := newTestService(t)
	now := time.UnixMilli(1_700_000_000_000)
	s.now = func() time.Time { return now }

	ctx := context.Background()

	_, err := s.JoinRoom(ctx, &JoinRoomParams{SessionId: "admin", RoomName: "lounge", IsAdmin: true})
	require.NoError(t, err)

	_, err = s.PlaySong(ctx, &PlaySongParams{
		SenderId: "admin",
		RoomName: "lounge",
		URL:      "https://cdn.example/short.m4a",
		StartAt:  now.Add(-10 * time.Minute).UnixMilli(),
		Duration: 180,
	})
	require.NoError(t, err)

	resp, err := s.JoinRoom(ctx, &JoinRoomParams{SessionId: "listener", RoomName: "lounge"})
	require.NoError(t, err)
	assert.Nil(t, resp.Sync, "finished song must not be resynced")
	assert.Nil(t, resp.State.CurrentSong)
	assert.False(t, resp.State.IsPlaying)
}

func TestJoinRoomFutureStartClampsSeekToZero(t *testing.T) {
	s := newTestService(t)
	now := time.UnixMilli(1_700_000_000_000)
	s.now = func() time.Time { return now }

	ctx := context.Background()

	_, err := s.JoinRoom(ctx, &JoinRoomParams{SessionId: "admin", RoomName: "lounge", IsAdmin: true})
	require.NoError(t, err)

	_, err = s.PlaySong(ctx, &PlaySongParams{
		SenderId: "admin",
		RoomName: "lounge",
		URL:      "https://cdn.example/next.m4a",
		StartAt:  now.Add(2 * time.Second).UnixMilli(),
		Duration: 240,
	})
	require.NoError(t, err)

	resp, err := s.JoinRoom(ctx, &JoinRoomParams{SessionId: "listener", RoomName: "lounge"})
	require.NoError(t, err)
	require.NotNil(t, resp.Sync)
	assert.Equal(t, 0.0, resp.Sync.SeekTo, "scheduled start must not produce a negative seek")
}

func TestPlaySongRequiresAdmin(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	_, err := s.JoinRoom(ctx, &JoinRoomParams{SessionId: "admin", RoomName: "lounge", IsAdmin: true})
	require.NoError(t, err)
	_, err = s.JoinRoom(ctx, &JoinRoomParams{SessionId: "listener", RoomName: "lounge"})
	require.NoError(t, err)

	_, err = s.PlaySong(ctx, &PlaySongParams{
		SenderId: "listener",
		RoomName: "lounge",
		URL:      "https://cdn.example/rogue.m4a",
	})
	assert.ErrorIs(t, err, ErrPermissionDenied)

	err = s.EndSong(ctx, &EndSongParams{SenderId: "listener", RoomName: "lounge"})
	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestLastAdminClaimWins(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	_, err := s.JoinRoom(ctx, &JoinRoomParams{SessionId: "first", RoomName: "lounge", IsAdmin: true})
	require.NoError(t, err)
	_, err = s.JoinRoom(ctx, &JoinRoomParams{SessionId: "second", RoomName: "lounge", IsAdmin: true})
	require.NoError(t, err)

	_, err = s.PlaySong(ctx, &PlaySongParams{SenderId: "first", RoomName: "lounge", URL: "https://cdn.example/a.m4a"})
	assert.ErrorIs(t, err, ErrPermissionDenied, "superseded admin must lose control")

	_, err = s.PlaySong(ctx, &PlaySongParams{SenderId: "second", RoomName: "lounge", URL: "https://cdn.example/b.m4a"})
	assert.NoError(t, err)
}

func TestQueueLifecycle(t *testing.T) {
	s := newTestService(t)
	now := time.UnixMilli(1_700_000_000_000)
	s.now = func() time.Time { return now }

	ctx := context.Background()

	_, err := s.JoinRoom(ctx, &JoinRoomParams{SessionId: "admin", RoomName: "lounge", IsAdmin: true})
	require.NoError(t, err)
	_, err = s.JoinRoom(ctx, &JoinRoomParams{SessionId: "listener", RoomName: "lounge"})
	require.NoError(t, err)

	_, err = s.QueueNext(ctx, &QueueNextParams{SenderId: "admin", RoomName: "lounge"})
	assert.ErrorIs(t, err, ErrQueueEmpty)

	addResp, err := s.AddToQueue(ctx, &AddToQueueParams{
		SenderId: "listener",
		RoomName: "lounge",
		URL:      "https://cdn.example/so-what.m4a",
		SongInfo: json.RawMessage(`{"track":"So What"}`),
		Duration: 545,
	})
	require.NoError(t, err, "any member may queue")
	require.Len(t, addResp.Queue, 1)
	assert.Equal(t, "listener", addResp.Queue[0].AddedBy)

	_, err = s.QueueNext(ctx, &QueueNextParams{SenderId: "listener", RoomName: "lounge"})
	assert.ErrorIs(t, err, ErrPermissionDenied, "only the admin may advance the queue")

	nextResp, err := s.QueueNext(ctx, &QueueNextParams{SenderId: "admin", RoomName: "lounge"})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example/so-what.m4a", nextResp.Playback.URL)
	assert.Equal(t, now.UnixMilli(), nextResp.Playback.StartAt)
	assert.Empty(t, nextResp.Queue)

	lateResp, err := s.JoinRoom(ctx, &JoinRoomParams{SessionId: "third", RoomName: "lounge"})
	require.NoError(t, err)
	require.NotNil(t, lateResp.Sync, "dequeued song must become the live playback")
	assert.Equal(t, "https://cdn.example/so-what.m4a", lateResp.Sync.URL)
}

func TestEndSongClearsPlayback(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	_, err := s.JoinRoom(ctx, &JoinRoomParams{SessionId: "admin", RoomName: "lounge", IsAdmin: true})
	require.NoError(t, err)

	_, err = s.PlaySong(ctx, &PlaySongParams{
		SenderId: "admin",
		RoomName: "lounge",
		URL:      "https://cdn.example/a.m4a",
		StartAt:  time.Now().UnixMilli(),
	})
	require.NoError(t, err)

	require.NoError(t, s.EndSong(ctx, &EndSongParams{SenderId: "admin", RoomName: "lounge"}))

	resp, err := s.JoinRoom(ctx, &JoinRoomParams{SessionId: "listener", RoomName: "lounge"})
	require.NoError(t, err)
	assert.Nil(t, resp.Sync, "cleared playback must not be resynced")
}

func TestDisconnectSession(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	_, err := s.JoinRoom(ctx, &JoinRoomParams{SessionId: "admin", RoomName: "lounge", IsAdmin: true})
	require.NoError(t, err)
	_, err = s.JoinRoom(ctx, &JoinRoomParams{SessionId: "listener", RoomName: "lounge"})
	require.NoError(t, err)

	resp, err := s.DisconnectSession(ctx, "admin")
	require.NoError(t, err)
	assert.Equal(t, "lounge", resp.RoomName)
	assert.True(t, resp.WasAdmin)
	assert.False(t, resp.RoomDeleted)
	assert.Equal(t, 1, resp.MemberCount)

	stats := s.GetStats(ctx)
	assert.Equal(t, 1, stats.Rooms)
	assert.Equal(t, 1, stats.Sessions)

	resp, err = s.DisconnectSession(ctx, "listener")
	require.NoError(t, err)
	assert.True(t, resp.RoomDeleted, "empty room must be collected")

	stats = s.GetStats(ctx)
	assert.Equal(t, 0, stats.Rooms)
	assert.Equal(t, 0, stats.Sessions)

	// Disconnecting an unknown session is a no-op.
	resp, err = s.DisconnectSession(ctx, "listener")
	require.NoError(t, err)
	assert.Empty(t, resp.RoomName)
}

func TestJoinSecondRoomLeavesFirst(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	_, err := s.JoinRoom(ctx, &JoinRoomParams{SessionId: "stayer", RoomName: "alpha"})
	require.NoError(t, err)
	_, err = s.JoinRoom(ctx, &JoinRoomParams{SessionId: "mover", RoomName: "alpha"})
	require.NoError(t, err)

	resp, err := s.JoinRoom(ctx, &JoinRoomParams{SessionId: "mover", RoomName: "beta"})
	require.NoError(t, err)
	require.NotNil(t, resp.Left, "remaining members of the left room must be notifiable")
	assert.Equal(t, "alpha", resp.Left.RoomName)
	assert.Equal(t, 1, resp.Left.MemberCount)

	stats := s.GetStats(ctx)
	assert.Equal(t, 2, stats.Rooms)
	assert.Equal(t, 2, stats.Sessions)
}
