package room

import "github.com/gorilla/websocket"

// getConns resolves session ids to live connections, skipping sessions
// whose conn is already gone (the disconnect path retires them lazily).
func (s service) getConns(sessionIds []string) []*websocket.Conn {
	conns := make([]*websocket.Conn, 0, len(sessionIds))
	for _, sessionId := range sessionIds {
		conn, err := s.connRepo.GetConn(sessionId)
		if err != nil {
			continue
		}

		conns = append(conns, conn)
	}

	return conns
}
