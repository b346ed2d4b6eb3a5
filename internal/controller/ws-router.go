package controller

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/tunesync/server/internal/service/room"
	"github.com/tunesync/server/pkg/ctxlogger"
	"github.com/tunesync/server/pkg/validator"
	"github.com/tunesync/server/pkg/wsrouter"
	"golang.org/x/time/rate"
)

func (c *controller) getWSRouter() *wsrouter.WSRouter {
	mux := wsrouter.New()

	mux.Use(c.wsRateLimitMw())
	mux.Use(c.wsRequestIdMw())
	mux.Use(c.wsLoggerMw())
	mux.OnError(c.handleWSError)

	mux.Handle("ALIVE", c.handleAlive)
	mux.Handle("JOIN_ROOM", c.handleJoinRoom)
	mux.Handle("PLAY_SONG", c.handlePlaySong)
	mux.Handle("SONG_ENDED", c.handleSongEnded)
	mux.Handle("ADD_TO_QUEUE", c.handleAddToQueue)
	mux.Handle("QUEUE_NEXT", c.handleQueueNext)

	return mux
}

// wsRateLimitMw drops messages from connections that exceed their token
// bucket. Dropped messages get no reply; a flooding client only sees its
// state updates stop applying.
func (c *controller) wsRateLimitMw() wsrouter.Middleware {
	return func(next wsrouter.HandlerFunc) wsrouter.HandlerFunc {
		return func(ctx context.Context, conn *websocket.Conn, payload json.RawMessage) error {
			if limiter, ok := ctx.Value(wsLimiterCtxKey).(*rate.Limiter); ok && !limiter.Allow() {
				c.logger.DebugContext(ctx, "dropped rate-limited message")
				return nil
			}
			return next(ctx, conn, payload)
		}
	}
}

func (c *controller) wsRequestIdMw() wsrouter.Middleware {
	return func(next wsrouter.HandlerFunc) wsrouter.HandlerFunc {
		return func(ctx context.Context, conn *websocket.Conn, payload json.RawMessage) error {
			ctx = ctxlogger.AppendCtx(ctx, slog.String("ws_request_id", c.generateTimeBasedId()))
			return next(ctx, conn, payload)
		}
	}
}

func (c *controller) wsLoggerMw() wsrouter.Middleware {
	return func(next wsrouter.HandlerFunc) wsrouter.HandlerFunc {
		return func(ctx context.Context, conn *websocket.Conn, payload json.RawMessage) error {
			ctx = ctxlogger.AppendCtx(ctx, slog.String("message_type", wsrouter.GetMessageTypeFromCtx(ctx)))
			c.logger.DebugContext(ctx, "websocket message received")

			start := time.Now()
			err := next(ctx, conn, payload)
			c.logger.DebugContext(ctx, "websocket message handled",
				"processing_time_us", time.Since(start).Microseconds(),
			)

			return err
		}
	}
}

// handleWSError decides what, if anything, the client hears about a failed
// message. Authority violations are dropped with only a log line, replying
// would leak who the admin is. Malformed input gets an ERROR envelope.
func (c *controller) handleWSError(ctx context.Context, conn *websocket.Conn, err error) {
	if errors.Is(err, room.ErrPermissionDenied) ||
		errors.Is(err, room.ErrRoomNotFound) ||
		errors.Is(err, room.ErrMemberNotFound) {
		c.logger.DebugContext(ctx, "dropped unauthorized message", "error", err)
		return
	}

	var inputErr *wsInputError
	if errors.As(err, &inputErr) {
		c.sender.Send(conn, &Output{
			Type: "ERROR",
			Payload: map[string]any{
				"message": inputErr.message,
				"errors":  inputErr.validationErrors,
			},
		})
		return
	}

	if errors.Is(err, wsrouter.ErrUnknownMessageType) || errors.Is(err, room.ErrQueueEmpty) {
		c.sender.Send(conn, &Output{
			Type: "ERROR",
			Payload: map[string]any{
				"message": err.Error(),
			},
		})
		return
	}

	c.logger.WarnContext(ctx, "failed to handle websocket message", "error", err)
}

type wsInputError struct {
	message          string
	validationErrors []validator.ValidationError
}

func (e *wsInputError) Error() string {
	if len(e.validationErrors) == 0 {
		return e.message
	}

	fields := make([]string, 0, len(e.validationErrors))
	for _, validationError := range e.validationErrors {
		fields = append(fields, validationError.Field)
	}

	return fmt.Sprintf("%s: %s", e.message, strings.Join(fields, ", "))
}

func (c *controller) unmarshalInput(payload json.RawMessage, target any) error {
	if len(payload) == 0 {
		return &wsInputError{message: "payload is required"}
	}
	if err := json.Unmarshal(payload, target); err != nil {
		return &wsInputError{message: "malformed payload"}
	}

	if validationErrors, ok := c.validate.Validate(target); !ok {
		return &wsInputError{
			message:          "invalid payload",
			validationErrors: validationErrors,
		}
	}

	return nil
}
