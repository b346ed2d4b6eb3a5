package wssender

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/gammazero/workerpool"
	"github.com/gorilla/websocket"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
)

// Repo tracks the conn <-> session mapping and owns all outbound writes.
// Writes are funneled through a worker pool; a per-connection mutex keeps
// frames from concurrent broadcasts from interleaving on one socket.
type Repo struct {
	pool *workerpool.WorkerPool

	mu       sync.RWMutex
	conns    map[*websocket.Conn]*entry
	sessions map[string]*entry
}

type entry struct {
	conn      *websocket.Conn
	sessionId string
	writeMu   sync.Mutex
}

func NewRepo(maxWorkers int) *Repo {
	return &Repo{
		pool:     workerpool.New(maxWorkers),
		conns:    make(map[*websocket.Conn]*entry),
		sessions: make(map[string]*entry),
	}
}

func (r *Repo) Add(conn *websocket.Conn, sessionId string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.conns[conn]; ok {
		return ErrAlreadyExists
	}
	if _, ok := r.sessions[sessionId]; ok {
		return ErrAlreadyExists
	}

	e := &entry{conn: conn, sessionId: sessionId}
	r.conns[conn] = e
	r.sessions[sessionId] = e

	return nil
}

func (r *Repo) RemoveByConn(conn *websocket.Conn) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.conns[conn]
	if !ok {
		return "", ErrNotFound
	}

	delete(r.conns, conn)
	delete(r.sessions, e.sessionId)

	return e.sessionId, nil
}

func (r *Repo) RemoveBySessionId(sessionId string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.sessions[sessionId]
	if !ok {
		return ErrNotFound
	}

	delete(r.conns, e.conn)
	delete(r.sessions, sessionId)

	return nil
}

func (r *Repo) GetConn(sessionId string) (*websocket.Conn, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.sessions[sessionId]
	if !ok {
		return nil, ErrNotFound
	}

	return e.conn, nil
}

func (r *Repo) GetSessionId(conn *websocket.Conn) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.conns[conn]
	if !ok {
		return "", ErrNotFound
	}

	return e.sessionId, nil
}

// Send queues an asynchronous write of msg to conn. Unknown connections are
// ignored; write failures close the connection so its read loop unwinds
// through the normal disconnect path.
func (r *Repo) Send(conn *websocket.Conn, msg any) {
	r.pool.Submit(func() {
		r.write(conn, msg)
	})
}

// Broadcast fans msg out to every given connection through the pool.
func (r *Repo) Broadcast(conns []*websocket.Conn, msg any) {
	for _, conn := range conns {
		conn := conn
		r.pool.Submit(func() {
			r.write(conn, msg)
		})
	}
}

func (r *Repo) write(conn *websocket.Conn, msg any) {
	r.mu.RLock()
	e, ok := r.conns[conn]
	r.mu.RUnlock()
	if !ok {
		return
	}

	e.writeMu.Lock()
	err := conn.WriteJSON(msg)
	e.writeMu.Unlock()

	if err != nil {
		slog.Warn("failed to write message", "session_id", e.sessionId, "error", err)
		conn.Close()
	}
}

// Close drains pending writes and stops the pool.
func (r *Repo) Close() {
	r.pool.StopWait()
}
