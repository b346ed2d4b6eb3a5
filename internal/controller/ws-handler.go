package controller

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/tunesync/server/internal/service/room"
	"github.com/tunesync/server/pkg/ctxlogger"
)

// Output is the envelope for every server-to-client message.
type Output struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// ws upgrades the request and serves the session until the connection
// drops. Cleanup runs in one deferred path no matter how the read loop
// ends, so a session can never stay in a room without a live conn.
func (c *controller) ws(w http.ResponseWriter, r *http.Request) {
	conn, err := c.upgrader.Upgrade(w, r, nil)
	if err != nil {
		c.logger.WarnContext(r.Context(), "failed to upgrade to websocket", "error", err)
		return
	}

	sessionId := uuid.NewString()
	if err := c.sender.Add(conn, sessionId); err != nil {
		c.logger.WarnContext(r.Context(), "failed to register connection", "error", err)
		conn.Close()
		return
	}

	ctx := context.WithValue(r.Context(), sessionIdCtxKey, sessionId)
	ctx = context.WithValue(ctx, wsLimiterCtxKey, c.limiter.NewConnLimiter())
	ctx = ctxlogger.AppendCtx(ctx, slog.String("session_id", sessionId))
	defer c.disconnect(ctx, sessionId)

	if err := c.wsmux.ServeConn(ctx, conn); err != nil {
		c.logger.DebugContext(ctx, "connection closed", "error", err)
	}
}

func (c *controller) disconnect(ctx context.Context, sessionId string) {
	resp, err := c.roomService.DisconnectSession(ctx, sessionId)
	if err != nil {
		c.logger.WarnContext(ctx, "failed to disconnect session", "error", err)
		return
	}
	if resp.RoomName == "" || resp.RoomDeleted {
		return
	}

	c.sender.Broadcast(resp.Conns, &Output{
		Type: "MEMBER_LEFT",
		Payload: map[string]any{
			"member_count": resp.MemberCount,
		},
	})
}

type JoinRoomInput struct {
	Room    string `json:"room" validate:"required,min=1,max=64"`
	IsAdmin bool   `json:"is_admin"`
}

func (c *controller) handleJoinRoom(ctx context.Context, conn *websocket.Conn, payload json.RawMessage) error {
	var input JoinRoomInput
	if err := c.unmarshalInput(payload, &input); err != nil {
		return err
	}

	sessionId := c.getSessionIdFromCtx(ctx)

	resp, err := c.roomService.JoinRoom(ctx, &room.JoinRoomParams{
		SessionId: sessionId,
		RoomName:  input.Room,
		IsAdmin:   input.IsAdmin,
	})
	if err != nil {
		return fmt.Errorf("failed to join room: %w", err)
	}

	if resp.Left != nil {
		c.sender.Broadcast(resp.Left.Conns, &Output{
			Type: "MEMBER_LEFT",
			Payload: map[string]any{
				"member_count": resp.Left.MemberCount,
			},
		})
	}

	c.sender.Send(conn, &Output{
		Type:    "ROOM_STATE",
		Payload: resp.State,
	})

	if resp.Sync != nil {
		c.sender.Send(conn, &Output{
			Type:    "SYNC_TO_CURRENT",
			Payload: resp.Sync,
		})
	}

	c.sender.Broadcast(resp.Conns, &Output{
		Type: "MEMBER_JOINED",
		Payload: map[string]any{
			"member_count": resp.MemberCount,
		},
	})

	return nil
}

type PlaySongInput struct {
	Room     string          `json:"room" validate:"required"`
	URL      string          `json:"url" validate:"required"`
	StartAt  int64           `json:"start_at" validate:"required"`
	SongInfo json.RawMessage `json:"song_info"`
	Duration float64         `json:"duration" validate:"gte=0"`
}

func (c *controller) handlePlaySong(ctx context.Context, _ *websocket.Conn, payload json.RawMessage) error {
	var input PlaySongInput
	if err := c.unmarshalInput(payload, &input); err != nil {
		return err
	}

	resp, err := c.roomService.PlaySong(ctx, &room.PlaySongParams{
		SenderId: c.getSessionIdFromCtx(ctx),
		RoomName: input.Room,
		URL:      input.URL,
		SongInfo: input.SongInfo,
		StartAt:  input.StartAt,
		Duration: input.Duration,
	})
	if err != nil {
		return fmt.Errorf("failed to play song: %w", err)
	}

	c.sender.Broadcast(resp.Conns, &Output{
		Type:    "PLAY_SONG",
		Payload: resp.Playback,
	})

	return nil
}

type SongEndedInput struct {
	Room string `json:"room" validate:"required"`
}

// handleSongEnded only clears the room's descriptor. Every client ends its
// own playback locally, so there is nothing to broadcast.
func (c *controller) handleSongEnded(ctx context.Context, _ *websocket.Conn, payload json.RawMessage) error {
	var input SongEndedInput
	if err := c.unmarshalInput(payload, &input); err != nil {
		return err
	}

	if err := c.roomService.EndSong(ctx, &room.EndSongParams{
		SenderId: c.getSessionIdFromCtx(ctx),
		RoomName: input.Room,
	}); err != nil {
		return fmt.Errorf("failed to end song: %w", err)
	}

	return nil
}

type AddToQueueInput struct {
	Room     string          `json:"room" validate:"required"`
	URL      string          `json:"url" validate:"required"`
	SongInfo json.RawMessage `json:"song_info"`
	Duration float64         `json:"duration" validate:"gte=0"`
}

func (c *controller) handleAddToQueue(ctx context.Context, _ *websocket.Conn, payload json.RawMessage) error {
	var input AddToQueueInput
	if err := c.unmarshalInput(payload, &input); err != nil {
		return err
	}

	resp, err := c.roomService.AddToQueue(ctx, &room.AddToQueueParams{
		SenderId: c.getSessionIdFromCtx(ctx),
		RoomName: input.Room,
		URL:      input.URL,
		SongInfo: input.SongInfo,
		Duration: input.Duration,
	})
	if err != nil {
		return fmt.Errorf("failed to add to queue: %w", err)
	}

	c.sender.Broadcast(resp.Conns, &Output{
		Type: "QUEUE_UPDATED",
		Payload: map[string]any{
			"queue": resp.Queue,
		},
	})

	return nil
}

type QueueNextInput struct {
	Room string `json:"room" validate:"required"`
}

func (c *controller) handleQueueNext(ctx context.Context, _ *websocket.Conn, payload json.RawMessage) error {
	var input QueueNextInput
	if err := c.unmarshalInput(payload, &input); err != nil {
		return err
	}

	resp, err := c.roomService.QueueNext(ctx, &room.QueueNextParams{
		SenderId: c.getSessionIdFromCtx(ctx),
		RoomName: input.Room,
	})
	if err != nil {
		return fmt.Errorf("failed to advance queue: %w", err)
	}

	c.sender.Broadcast(resp.Conns, &Output{
		Type:    "PLAY_SONG",
		Payload: resp.Playback,
	})
	c.sender.Broadcast(resp.Conns, &Output{
		Type: "QUEUE_UPDATED",
		Payload: map[string]any{
			"queue": resp.Queue,
		},
	})

	return nil
}

func (c *controller) handleAlive(_ context.Context, _ *websocket.Conn, _ json.RawMessage) error {
	return nil
}
