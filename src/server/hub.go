package server

import (
	"context"
	"encoding/json"
	"net/http"

	"market-dashboard/src/models"
	"market-dashboard/src/utils"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// -----------------------------------------------------------------------------
// Hub Pattern Implementation
// -----------------------------------------------------------------------------

// handleWebsockets is the main Hub loop
func (s *DashboardServer) handleWebsockets() {
	defer s.wg.Done()

	for {
		select {
		case <-s.ctx.Done():
			s.stateMutex.Lock()
			for client := range s.clients {
				delete(s.clients, client)
				close(client.send)
			}
			s.stateMutex.Unlock()
			return

		case client := <-s.register:
			s.stateMutex.Lock()
			s.clients[client] = struct{}{}
			s.stateMutex.Unlock()
			s.Logger.Info("View %s connected", client.addr)

			// Send initial state on connect
			initial := s.store.Snapshot(models.StateInitial)
			client.send <- &initial

		case client := <-s.unregister:
			s.stateMutex.Lock()
			if _, ok := s.clients[client]; ok {
				delete(s.clients, client)
				close(client.send)
			}
			s.stateMutex.Unlock()

		case message := <-s.broadcast:
			s.stateMutex.Lock()
			s.latestState = message
			for client := range s.clients {
				select {
				case client.send <- message:
				default:
					// Client too slow, disconnect to prevent Hub blocking
					delete(s.clients, client)
					close(client.send)
				}
			}
			s.stateMutex.Unlock()
		}
	}
}

// -----------------------------------------------------------------------------
// Data Exchange Interface Implementation
// -----------------------------------------------------------------------------

// Broadcast queues state for every client. Dropped once the server stops.
func (s *DashboardServer) Broadcast(state *models.MDashboardState) {
	if state == nil {
		return
	}
	state.Type = models.StateUpdate

	select {
	case s.broadcast <- state:
	case <-s.ctx.Done():
	}
}

// LatestState returns the last broadcast snapshot, nil before the first one
func (s *DashboardServer) LatestState() *models.MDashboardState {
	s.stateMutex.RLock()
	defer s.stateMutex.RUnlock()
	return s.latestState
}

// -----------------------------------------------------------------------------
// WebSocket Handlers
// -----------------------------------------------------------------------------

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) handleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.Logger.Info("Failed to upgrade websocket: %v", err)
		return
	}

	client := newClient(s, conn)

	select {
	case s.register <- client:
	case <-s.ctx.Done():
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// -----------------------------------------------------------------------------
// Client Message Handling
// -----------------------------------------------------------------------------

// HandleClientMessage applies a view command. Malformed JSON disconnects the
// client; state changes reach every client through the store watcher.
func (s *DashboardServer) HandleClientMessage(client *Client, message []byte) {
	var cmd models.MClientCommand
	if err := json.Unmarshal(message, &cmd); err != nil {
		s.Logger.Info("Failed to parse client command: %v, disconnecting client", err)
		client.conn.Close()
		return
	}

	if err := s.applyCommand(cmd); err != nil {
		s.Logger.Warning("Rejected client command %q: %v", cmd.Command, err)
		client.trySend(gin.H{"type": "ERROR", "command": cmd.Command, "error": err.Error()})
		return
	}

	if cmd.Command == CmdSubscribe {
		initial := s.store.Snapshot(models.StateInitial)
		client.trySend(&initial)
	}
}

func (s *DashboardServer) applyCommand(cmd models.MClientCommand) error {
	switch cmd.Command {
	case CmdSubscribe:
		return nil

	case CmdSearch:
		s.store.SetSearchQuery(cmd.Value)

	case CmdClearSearch:
		s.store.ClearSearch()

	case CmdType:
		s.store.SetSelectedType(cmd.Value)

	case CmdSort:
		field, order, err := parseSort(firstNonEmpty(cmd.SortBy, cmd.Value), cmd.SortOrder)
		if err != nil {
			return err
		}
		s.store.SetSortBy(field, order)

	case CmdCurrency:
		if !s.store.ChangeCurrency(s.ctx, cmd.Value) {
			return invalidCurrency(cmd.Value)
		}

	case CmdRefresh:
		s.refreshMu.Lock()
		if s.ctx.Err() != nil {
			s.refreshMu.Unlock()
			return nil
		}
		s.wg.Add(1)
		s.refreshMu.Unlock()

		go func() {
			defer s.wg.Done()
			ctx, cancel := context.WithTimeout(s.ctx, refreshTimeout)
			defer cancel()
			s.store.Refresh(ctx)
		}()

	default:
		return unknownCommand(cmd.Command)
	}
	return nil
}

// refreshTimeout bounds a client triggered refresh including retries
const refreshTimeout = utils.FetchTimeout
