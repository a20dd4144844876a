package ws

import (
	"context"
	"encoding/json"
	"log"

	"gameion/internal/model"
	"gameion/internal/service"
)

// Router dispatches inbound client messages to the domain services.
// For every message it checks room existence and authorization before
// any mutation, then lets the service mutate, persist, and broadcast.
type Router struct {
	hub        *Hub
	roomSvc    *service.RoomService
	lobbySvc   *service.LobbyService
	gameSvc    *service.GameService
	bowlingSvc *service.BowlingService
}

// NewRouter creates a message router.
func NewRouter(hub *Hub, roomSvc *service.RoomService, lobbySvc *service.LobbyService, gameSvc *service.GameService, bowlingSvc *service.BowlingService) *Router {
	return &Router{
		hub:        hub,
		roomSvc:    roomSvc,
		lobbySvc:   lobbySvc,
		gameSvc:    gameSvc,
		bowlingSvc: bowlingSvc,
	}
}

// Dispatch routes one inbound envelope. Unknown or malformed messages
// are rejected uniformly; no handler runs partially.
func (r *Router) Dispatch(ctx context.Context, conn *Connection, env *Envelope) {
	switch env.Type {
	case MsgCreateRoom:
		r.handleCreateRoom(ctx, conn, env)
	case MsgJoinRoom:
		r.handleJoinRoom(ctx, conn, env)
	case MsgRejoinRoom:
		r.handleRejoinRoom(ctx, conn, env)
	case MsgCheckRoom:
		r.handleCheckRoom(ctx, conn, env)
	case MsgHostRejoin:
		r.handleHostRejoin(ctx, conn, env)
	case MsgLeaveRoom:
		r.handleLeaveRoom(ctx, conn, env)
	case MsgNavigateMenu:
		r.handleNavigateMenu(ctx, conn, env)
	case MsgSelectGame:
		r.handleSelectGame(ctx, conn, env)
	case MsgStartGame:
		r.handleStartGame(ctx, conn, env)
	case MsgExitGame:
		r.handleExitGame(ctx, conn, env)
	case MsgGameInput:
		r.handleGameInput(ctx, conn, env)
	case MsgBowlingThrow:
		r.handleBowlingThrow(ctx, conn, env)
	case MsgWebRTCOffer, MsgWebRTCAnswer, MsgWebRTCICE:
		r.handleSignal(conn, env)
	default:
		r.errorTo(conn, "unknown message type")
	}
}

// HandleDisconnect runs leave handling for a dropped connection.
func (r *Router) HandleDisconnect(ctx context.Context, conn *Connection) {
	if conn.roomID == "" {
		return
	}
	if err := r.roomSvc.Leave(ctx, conn.roomID, conn.ID); err != nil {
		log.Printf("ws: leave on disconnect for %s: %v", conn.ID, err)
	}
}

func (r *Router) handleCreateRoom(ctx context.Context, conn *Connection, env *Envelope) {
	if !conn.hostAuthed {
		r.nack(conn, env.AckID, service.ErrInvalidHostJWT)
		return
	}
	roomID, err := r.roomSvc.CreateRoom(ctx, conn.ID)
	if err != nil {
		r.nack(conn, env.AckID, err)
		return
	}
	conn.roomID = roomID
	r.ack(conn, env.AckID, map[string]string{"roomId": roomID})
}

func (r *Router) handleJoinRoom(ctx context.Context, conn *Connection, env *Envelope) {
	var req joinRoomRequest
	if !r.decode(conn, env, &req) {
		return
	}
	player, token, err := r.roomSvc.Join(ctx, req.RoomID, conn.ID, req.Name, req.Avatar)
	if err != nil {
		r.nack(conn, env.AckID, err)
		return
	}
	conn.roomID = req.RoomID
	r.ack(conn, env.AckID, map[string]interface{}{
		"player": player,
		"token":  token,
	})
}

func (r *Router) handleRejoinRoom(ctx context.Context, conn *Connection, env *Envelope) {
	var req rejoinRoomRequest
	if !r.decode(conn, env, &req) {
		return
	}
	player, _, err := r.roomSvc.Rejoin(ctx, req.RoomID, req.PlayerID, req.Token, conn.ID)
	if err != nil {
		r.nack(conn, env.AckID, err)
		return
	}
	conn.roomID = req.RoomID
	r.ack(conn, env.AckID, map[string]interface{}{"player": player})
}

func (r *Router) handleCheckRoom(ctx context.Context, conn *Connection, env *Envelope) {
	var req roomIDRequest
	if !r.decode(conn, env, &req) {
		return
	}
	if err := r.roomSvc.CheckRoom(ctx, req.RoomID); err != nil {
		r.nack(conn, env.AckID, err)
		return
	}
	r.ack(conn, env.AckID, nil)
}

func (r *Router) handleHostRejoin(ctx context.Context, conn *Connection, env *Envelope) {
	if !conn.hostAuthed {
		r.nack(conn, env.AckID, service.ErrInvalidHostJWT)
		return
	}
	var req roomIDRequest
	if !r.decode(conn, env, &req) {
		return
	}
	room, err := r.roomSvc.HostRejoin(ctx, req.RoomID, conn.ID)
	if err != nil {
		r.nack(conn, env.AckID, err)
		return
	}
	if room == nil {
		r.nack(conn, env.AckID, service.ErrRoomNotFound)
		return
	}
	conn.roomID = req.RoomID
	r.ack(conn, env.AckID, map[string]interface{}{"room": room})
}

func (r *Router) handleLeaveRoom(ctx context.Context, conn *Connection, env *Envelope) {
	var req roomIDRequest
	if !r.decode(conn, env, &req) {
		return
	}
	if err := r.roomSvc.Leave(ctx, req.RoomID, conn.ID); err != nil {
		log.Printf("ws: leave room %s for %s: %v", req.RoomID, conn.ID, err)
	}
	conn.roomID = ""
}

func (r *Router) handleNavigateMenu(ctx context.Context, conn *Connection, env *Envelope) {
	var req navigateMenuRequest
	if !r.decode(conn, env, &req) {
		return
	}
	if err := r.lobbySvc.NavigateMenu(ctx, req.RoomID, conn.ID, req.Direction); err != nil {
		r.errorTo(conn, err.Error())
	}
}

func (r *Router) handleSelectGame(ctx context.Context, conn *Connection, env *Envelope) {
	var req selectGameRequest
	if !r.decode(conn, env, &req) {
		return
	}
	if err := r.lobbySvc.SelectGame(ctx, req.RoomID, conn.ID, req.GameID); err != nil {
		r.errorTo(conn, err.Error())
	}
}

func (r *Router) handleStartGame(ctx context.Context, conn *Connection, env *Envelope) {
	var req roomIDRequest
	if !r.decode(conn, env, &req) {
		return
	}
	if err := r.gameSvc.Start(ctx, req.RoomID, conn.ID); err != nil {
		r.nack(conn, env.AckID, err)
		return
	}
	r.ack(conn, env.AckID, nil)
}

func (r *Router) handleExitGame(ctx context.Context, conn *Connection, env *Envelope) {
	var req roomIDRequest
	if !r.decode(conn, env, &req) {
		return
	}
	if err := r.gameSvc.Exit(ctx, req.RoomID, conn.ID); err != nil {
		r.nack(conn, env.AckID, err)
		return
	}
	r.ack(conn, env.AckID, nil)
}

func (r *Router) handleGameInput(ctx context.Context, conn *Connection, env *Envelope) {
	var in model.GameInput
	if !r.decode(conn, env, &in) {
		return
	}
	// The connection is the identity; never trust a client-supplied id.
	in.PlayerID = conn.ID
	if err := r.gameSvc.Input(ctx, in); err != nil {
		log.Printf("ws: game input for room %s: %v", in.RoomID, err)
	}
}

func (r *Router) handleBowlingThrow(ctx context.Context, conn *Connection, env *Envelope) {
	var req bowlingThrowRequest
	if !r.decode(conn, env, &req) {
		return
	}
	if err := r.bowlingSvc.Throw(ctx, req.RoomID, conn.ID, req.Speed, req.Angle, req.Spin); err != nil {
		log.Printf("ws: bowling throw for room %s: %v", req.RoomID, err)
	}
}

// handleSignal relays a WebRTC signaling payload verbatim to the named
// target connection. The server never inspects the payload.
func (r *Router) handleSignal(conn *Connection, env *Envelope) {
	var sig model.WebRTCSignal
	if !r.decode(conn, env, &sig) {
		return
	}
	sig.FromConnID = conn.ID
	r.hub.ToConn(sig.ToConnID, string(env.Type), sig)
}

func (r *Router) decode(conn *Connection, env *Envelope, target interface{}) bool {
	if err := json.Unmarshal(env.Payload, target); err != nil {
		if env.AckID != "" {
			r.nackMessage(conn, env.AckID, "malformed payload")
		} else {
			r.errorTo(conn, "malformed payload")
		}
		return false
	}
	return true
}

func (r *Router) ack(conn *Connection, ackID string, data interface{}) {
	if ackID == "" {
		return
	}
	r.sendAck(conn, ackID, ackResponse{OK: true, Data: data})
}

func (r *Router) nack(conn *Connection, ackID string, err error) {
	if ackID == "" {
		r.errorTo(conn, err.Error())
		return
	}
	r.nackMessage(conn, ackID, err.Error())
}

func (r *Router) nackMessage(conn *Connection, ackID, message string) {
	r.sendAck(conn, ackID, ackResponse{OK: false, Error: message})
}

func (r *Router) sendAck(conn *Connection, ackID string, resp ackResponse) {
	payload, _ := json.Marshal(resp)
	data, _ := json.Marshal(&Envelope{Type: MsgAck, AckID: ackID, Payload: payload})
	select {
	case conn.Send <- data:
	default:
	}
}

func (r *Router) errorTo(conn *Connection, message string) {
	r.hub.ToConn(conn.ID, string(MsgError), map[string]string{"message": message})
}
