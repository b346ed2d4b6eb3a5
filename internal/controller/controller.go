package controller

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/tunesync/server/internal/service/catalog"
	"github.com/tunesync/server/internal/service/room"
	"github.com/tunesync/server/internal/service/stream"
	"github.com/tunesync/server/pkg/validator"
	"github.com/tunesync/server/pkg/wsrouter"
)

type iRoomService interface {
	JoinRoom(context.Context, *room.JoinRoomParams) (room.JoinRoomResponse, error)
	PlaySong(context.Context, *room.PlaySongParams) (room.PlaySongResponse, error)
	EndSong(context.Context, *room.EndSongParams) error
	AddToQueue(context.Context, *room.AddToQueueParams) (room.AddToQueueResponse, error)
	QueueNext(context.Context, *room.QueueNextParams) (room.QueueNextResponse, error)
	DisconnectSession(context.Context, string) (room.DisconnectSessionResponse, error)
	GetStats(context.Context) room.Stats
}

type iCatalogService interface {
	ListPlaylists(context.Context) map[string]catalog.Playlist
	ListSongs(ctx context.Context, page, limit int) catalog.SongsPage
	PlaylistSongs(ctx context.Context, name string, page, limit int) (catalog.PlaylistSongsPage, error)
	GetSong(ctx context.Context, songId string) (catalog.SongDetails, error)
	SongsByIds(ctx context.Context, songIds []string) catalog.SongsByIdsResult
	RandomSongIds(ctx context.Context, count int, exclude []string) catalog.RandomSongIdsResult
	Search(ctx context.Context, query string, page, limit int) catalog.SearchPage
	QuickSearch(ctx context.Context, query string, limit int) []catalog.Suggestion
	GetStats(context.Context) catalog.Stats
	AudioURL(filename string) string
	LoadedAt() time.Time
}

type iStreamService interface {
	Search(ctx context.Context, query string, limit int) (stream.SearchResponse, error)
	StreamURL(ctx context.Context, videoId string) (string, error)
	Info(ctx context.Context, videoId string) (stream.VideoInfo, error)
	SaveCookies(data []byte) error
	Cookies() stream.CookiesStatus
}

type iSender interface {
	Add(conn *websocket.Conn, sessionId string) error
	Send(conn *websocket.Conn, msg any)
	Broadcast(conns []*websocket.Conn, msg any)
}

type controller struct {
	roomService    iRoomService
	catalogService iCatalogService
	streamService  iStreamService
	sender         iSender
	upgrader       websocket.Upgrader
	validate       *validator.Validator
	limiter        *rateLimiter
	wsmux          *wsrouter.WSRouter
	logger         *slog.Logger
}

func NewController(
	roomService iRoomService,
	catalogService iCatalogService,
	streamService iStreamService,
	sender iSender,
	rps float64,
	logger *slog.Logger,
) *controller {
	c := &controller{
		roomService:    roomService,
		catalogService: catalogService,
		streamService:  streamService,
		sender:         sender,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		validate: validator.NewValidator(),
		limiter:  newRateLimiter(rps),
		logger:   logger,
	}
	c.wsmux = c.getWSRouter()

	return c
}
