package inmemory

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tunesync/server/internal/repository/room"
)

func TestJoinRoomRejoinRefreshesAdminClaim(t *testing.T) {
	r := NewRepo()

	_, err := r.JoinRoom(&room.JoinRoomParams{SessionId: "a", RoomName: "lounge"})
	require.NoError(t, err)
	adminId, err := r.GetAdminId("lounge")
	require.NoError(t, err)
	assert.Empty(t, adminId, "room without admin claim must be adminless")

	_, err = r.JoinRoom(&room.JoinRoomParams{SessionId: "a", RoomName: "lounge", IsAdmin: true})
	require.NoError(t, err)
	adminId, err = r.GetAdminId("lounge")
	require.NoError(t, err)
	assert.Equal(t, "a", adminId)

	assert.Equal(t, 1, r.RoomCount(), "re-join must not duplicate membership")
	assert.Equal(t, 1, r.SessionCount())
}

func TestRemoveSessionRevokesAdminAndCollectsRoom(t *testing.T) {
	r := NewRepo()

	_, err := r.JoinRoom(&room.JoinRoomParams{SessionId: "a", RoomName: "lounge", IsAdmin: true})
	require.NoError(t, err)
	_, err = r.JoinRoom(&room.JoinRoomParams{SessionId: "b", RoomName: "lounge"})
	require.NoError(t, err)

	result, err := r.RemoveSession("a")
	require.NoError(t, err)
	assert.True(t, result.WasAdmin)
	assert.False(t, result.RoomDeleted)

	adminId, err := r.GetAdminId("lounge")
	require.NoError(t, err)
	assert.Empty(t, adminId, "departed admin's authority must be revoked")

	result, err = r.RemoveSession("b")
	require.NoError(t, err)
	assert.True(t, result.RoomDeleted)
	assert.Equal(t, 0, r.RoomCount())

	_, err = r.RemoveSession("b")
	assert.ErrorIs(t, err, room.ErrSessionNotFound)
}

func TestStartPlaybackReplacesDescriptor(t *testing.T) {
	r := NewRepo()

	_, err := r.JoinRoom(&room.JoinRoomParams{SessionId: "a", RoomName: "lounge", IsAdmin: true})
	require.NoError(t, err)

	_, err = r.StartPlayback(&room.StartPlaybackParams{
		SenderId: "a",
		RoomName: "lounge",
		URL:      "first",
		StartAt:  100,
	})
	require.NoError(t, err)
	_, err = r.StartPlayback(&room.StartPlaybackParams{
		SenderId: "a",
		RoomName: "lounge",
		URL:      "second",
		StartAt:  200,
	})
	require.NoError(t, err)

	playback, err := r.GetPlayback("lounge")
	require.NoError(t, err)
	assert.Equal(t, "second", playback.URL)
	assert.Equal(t, int64(200), playback.StartAt)

	require.NoError(t, r.EndPlayback(&room.EndPlaybackParams{SenderId: "a", RoomName: "lounge"}))
	_, err = r.GetPlayback("lounge")
	assert.ErrorIs(t, err, room.ErrNoPlayback)
}

func TestStartPlaybackInAdminlessRoomIsDenied(t *testing.T) {
	r := NewRepo()

	_, err := r.JoinRoom(&room.JoinRoomParams{SessionId: "a", RoomName: "lounge"})
	require.NoError(t, err)

	_, err = r.StartPlayback(&room.StartPlaybackParams{SenderId: "a", RoomName: "lounge", URL: "x"})
	assert.ErrorIs(t, err, room.ErrPermissionDenied)
}

func TestEnqueueRequiresMembership(t *testing.T) {
	r := NewRepo()

	_, err := r.JoinRoom(&room.JoinRoomParams{SessionId: "a", RoomName: "lounge"})
	require.NoError(t, err)

	_, err = r.EnqueueSong(&room.EnqueueSongParams{SenderId: "stranger", RoomName: "lounge", URL: "x"})
	assert.ErrorIs(t, err, room.ErrMemberNotFound)

	_, err = r.EnqueueSong(&room.EnqueueSongParams{SenderId: "a", RoomName: "other", URL: "x"})
	assert.ErrorIs(t, err, room.ErrRoomNotFound)
}

func TestDequeuePromotesHeadAtomically(t *testing.T) {
	r := NewRepo()

	_, err := r.JoinRoom(&room.JoinRoomParams{SessionId: "a", RoomName: "lounge", IsAdmin: true})
	require.NoError(t, err)

	for _, url := range []string{"one", "two"} {
		_, err = r.EnqueueSong(&room.EnqueueSongParams{SenderId: "a", RoomName: "lounge", URL: url})
		require.NoError(t, err)
	}

	result, err := r.DequeueSong(&room.DequeueSongParams{SenderId: "a", RoomName: "lounge", StartAt: 42})
	require.NoError(t, err)
	assert.Equal(t, "one", result.Popped.URL)
	assert.Equal(t, "one", result.Playback.URL)
	assert.Equal(t, int64(42), result.Playback.StartAt)
	require.Len(t, result.Queue, 1)
	assert.Equal(t, "two", result.Queue[0].URL)

	playback, err := r.GetPlayback("lounge")
	require.NoError(t, err)
	assert.Equal(t, "one", playback.URL)
}

func TestConcurrentJoinsAreSerialized(t *testing.T) {
	r := NewRepo()

	var wg sync.WaitGroup
	sessions := []string{"s1", "s2", "s3", "s4", "s5", "s6", "s7", "s8"}
	for _, sessionId := range sessions {
		wg.Add(1)
		go func(sessionId string) {
			defer wg.Done()
			_, err := r.JoinRoom(&room.JoinRoomParams{SessionId: sessionId, RoomName: "lounge"})
			assert.NoError(t, err)
		}(sessionId)
	}
	wg.Wait()

	memberIds, err := r.GetMemberIds("lounge")
	require.NoError(t, err)
	assert.Len(t, memberIds, len(sessions))
	assert.Equal(t, len(sessions), r.SessionCount())
}
