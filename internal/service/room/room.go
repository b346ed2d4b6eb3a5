package room

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/gorilla/websocket"
	roomrepo "github.com/tunesync/server/internal/repository/room"
)

type JoinRoomParams struct {
	SessionId string
	RoomName  string
	IsAdmin   bool
}

// LeftRoom describes the room a session implicitly left by joining another.
type LeftRoom struct {
	RoomName    string
	Conns       []*websocket.Conn
	MemberCount int
}

type JoinRoomResponse struct {
	State       RoomState
	Sync        *SyncToCurrent
	Conns       []*websocket.Conn
	MemberCount int
	Left        *LeftRoom
}

// JoinRoom registers the session in the named room, creating the room on
// first join. When the room has a live, unexpired playback descriptor the
// response carries a SyncToCurrent for the joiner; an expired descriptor is
// treated as finished and produces none.
func (s service) JoinRoom(ctx context.Context, params *JoinRoomParams) (JoinRoomResponse, error) {
	result, err := s.roomRepo.JoinRoom(&roomrepo.JoinRoomParams{
		SessionId: params.SessionId,
		RoomName:  params.RoomName,
		IsAdmin:   params.IsAdmin,
	})
	if err != nil {
		return JoinRoomResponse{}, err
	}

	resp := JoinRoomResponse{
		Conns:       s.getConns(result.MemberIds),
		MemberCount: result.MemberCount,
		Sync:        s.syncFromPlayback(result.Playback),
	}

	resp.State = RoomState{
		Queue:       queueView(result.Queue),
		MemberCount: result.MemberCount,
	}
	if resp.Sync != nil {
		resp.State.CurrentSong = &CurrentSong{
			URL:      result.Playback.URL,
			SongInfo: result.Playback.SongInfo,
			StartAt:  result.Playback.StartAt,
			Duration: result.Playback.Duration,
		}
		resp.State.IsPlaying = true
	}

	if result.Left != nil && !result.Left.RoomDeleted {
		resp.Left = &LeftRoom{
			RoomName:    result.Left.RoomName,
			Conns:       s.getConns(result.Left.MemberIds),
			MemberCount: result.Left.MemberCount,
		}
	}

	return resp, nil
}

type PlaySongParams struct {
	SenderId string
	RoomName string
	URL      string
	SongInfo json.RawMessage
	// StartAt is caller-supplied (epoch ms) so playback can be scheduled
	// slightly in the future for multi-client start alignment.
	StartAt  int64
	Duration float64
}

type PlaySongResponse struct {
	Playback CurrentSong
	Conns    []*websocket.Conn
}

// PlaySong replaces the room's playback descriptor. Only the room's current
// admin may call it; everyone else gets ErrPermissionDenied, which the
// transport layer drops without replying.
func (s service) PlaySong(ctx context.Context, params *PlaySongParams) (PlaySongResponse, error) {
	memberIds, err := s.roomRepo.StartPlayback(&roomrepo.StartPlaybackParams{
		SenderId: params.SenderId,
		RoomName: params.RoomName,
		URL:      params.URL,
		SongInfo: params.SongInfo,
		StartAt:  params.StartAt,
		Duration: params.Duration,
	})
	if err != nil {
		return PlaySongResponse{}, err
	}

	return PlaySongResponse{
		Playback: CurrentSong{
			URL:      params.URL,
			SongInfo: params.SongInfo,
			StartAt:  params.StartAt,
			Duration: params.Duration,
		},
		Conns: s.getConns(memberIds),
	}, nil
}

type EndSongParams struct {
	SenderId string
	RoomName string
}

// EndSong clears the room's playback descriptor so late joiners no longer
// resync to it. Admin-gated the same way as PlaySong. Clearing broadcasts
// nothing: each client's own playback ends on its own.
func (s service) EndSong(ctx context.Context, params *EndSongParams) error {
	return s.roomRepo.EndPlayback(&roomrepo.EndPlaybackParams{
		SenderId: params.SenderId,
		RoomName: params.RoomName,
	})
}

type AddToQueueParams struct {
	SenderId string
	RoomName string
	URL      string
	SongInfo json.RawMessage
	Duration float64
}

type AddToQueueResponse struct {
	Queue []QueuedSong
	Conns []*websocket.Conn
}

// AddToQueue appends a song to the room's queue. Any member may queue.
func (s service) AddToQueue(ctx context.Context, params *AddToQueueParams) (AddToQueueResponse, error) {
	result, err := s.roomRepo.EnqueueSong(&roomrepo.EnqueueSongParams{
		SenderId: params.SenderId,
		RoomName: params.RoomName,
		URL:      params.URL,
		SongInfo: params.SongInfo,
		Duration: params.Duration,
	})
	if err != nil {
		return AddToQueueResponse{}, err
	}

	return AddToQueueResponse{
		Queue: queueView(result.Queue),
		Conns: s.getConns(result.MemberIds),
	}, nil
}

type QueueNextParams struct {
	SenderId string
	RoomName string
}

type QueueNextResponse struct {
	Playback CurrentSong
	Queue    []QueuedSong
	Conns    []*websocket.Conn
}

// QueueNext pops the head of the queue and starts playing it now.
// Admin-gated like PlaySong.
func (s service) QueueNext(ctx context.Context, params *QueueNextParams) (QueueNextResponse, error) {
	result, err := s.roomRepo.DequeueSong(&roomrepo.DequeueSongParams{
		SenderId: params.SenderId,
		RoomName: params.RoomName,
		StartAt:  s.now().UnixMilli(),
	})
	if err != nil {
		return QueueNextResponse{}, err
	}

	return QueueNextResponse{
		Playback: CurrentSong{
			URL:      result.Playback.URL,
			SongInfo: result.Playback.SongInfo,
			StartAt:  result.Playback.StartAt,
			Duration: result.Playback.Duration,
		},
		Queue: queueView(result.Queue),
		Conns: s.getConns(result.MemberIds),
	}, nil
}

type DisconnectSessionResponse struct {
	RoomName    string
	WasAdmin    bool
	RoomDeleted bool
	Conns       []*websocket.Conn
	MemberCount int
}

// DisconnectSession retires the session's membership and conn mapping. It is
// idempotent: a session not tracked in any room is a no-op. The same path
// serves every disconnect cause so membership entries cannot leak.
func (s service) DisconnectSession(ctx context.Context, sessionId string) (DisconnectSessionResponse, error) {
	// The conn may already be gone; membership cleanup still proceeds.
	_ = s.connRepo.RemoveBySessionId(sessionId)

	result, err := s.roomRepo.RemoveSession(sessionId)
	if err != nil {
		if errors.Is(err, roomrepo.ErrSessionNotFound) {
			return DisconnectSessionResponse{}, nil
		}
		return DisconnectSessionResponse{}, err
	}

	return DisconnectSessionResponse{
		RoomName:    result.RoomName,
		WasAdmin:    result.WasAdmin,
		RoomDeleted: result.RoomDeleted,
		Conns:       s.getConns(result.MemberIds),
		MemberCount: result.MemberCount,
	}, nil
}

func (s service) GetStats(ctx context.Context) Stats {
	return Stats{
		Rooms:    s.roomRepo.RoomCount(),
		Sessions: s.roomRepo.SessionCount(),
	}
}

// syncFromPlayback computes the resynchronization event for a live
// descriptor. A descriptor whose duration has fully elapsed is lazily
// treated as finished and yields nil; a future start instant clamps the
// seek offset to zero.
func (s service) syncFromPlayback(playback *roomrepo.Playback) *SyncToCurrent {
	if playback == nil {
		return nil
	}

	elapsed := s.now().Sub(time.UnixMilli(playback.StartAt)).Seconds()
	if playback.Duration > 0 && elapsed >= playback.Duration {
		return nil
	}
	if elapsed < 0 {
		elapsed = 0
	}

	return &SyncToCurrent{
		URL:       playback.URL,
		SeekTo:    elapsed,
		SongInfo:  playback.SongInfo,
		StartTime: playback.StartAt,
	}
}

func queueView(queue []roomrepo.QueuedSong) []QueuedSong {
	if len(queue) == 0 {
		return nil
	}

	view := make([]QueuedSong, 0, len(queue))
	for _, q := range queue {
		view = append(view, QueuedSong{
			URL:      q.URL,
			SongInfo: q.SongInfo,
			Duration: q.Duration,
			AddedBy:  q.AddedBy,
		})
	}
	return view
}
