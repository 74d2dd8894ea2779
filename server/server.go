package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/rpc"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/wfunc/drawguess/broadcast"
	"github.com/wfunc/drawguess/config"
	"github.com/wfunc/drawguess/game"
	"github.com/wfunc/drawguess/logger"
	"github.com/wfunc/drawguess/monitor"
	"github.com/wfunc/drawguess/network"
	"github.com/wfunc/drawguess/persistence"
	"github.com/wfunc/drawguess/room"
	drawguess_rpc "github.com/wfunc/drawguess/rpc"
	"github.com/wfunc/drawguess/services"
	"github.com/wfunc/drawguess/session"
	"github.com/wfunc/drawguess/timer"
)

type GameServer struct {
	addr           string
	upgrader       websocket.Upgrader
	engine         *game.Engine
	roomManager    *room.Manager
	sessionManager *session.Manager
	timers         *timer.TimerManager
	monitor        *monitor.Monitor
	rpcServer      *drawguess_rpc.Server
	shutdownChan   chan struct{}
}

func NewGameServer(cfg *config.Config, store persistence.Store) *GameServer {
	s := &GameServer{
		addr:           cfg.Server.HTTPAddress,
		roomManager:    room.NewRoomManager(),
		sessionManager: session.NewManager(),
		timers:         timer.NewTimerManager(),
		monitor:        monitor.NewMonitor("drawguess"),
		shutdownChan:   make(chan struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // 允许所有跨域请求
			},
		},
	}

	broadcaster := broadcast.NewRoomBroadcaster(s.roomManager, s.sessionManager)
	s.engine = game.NewEngine(cfg.Game, s.roomManager, s.sessionManager, broadcaster,
		services.NewRoomService(store), s.timers)
	s.engine.SetStats(s.monitor)

	rpcServer, err := drawguess_rpc.NewServer(cfg.Server.RPCAddress)
	if err != nil {
		logger.Log.Fatalf("Failed to create RPC server: %v", err)
	}
	s.rpcServer = rpcServer
	rpc.Register(drawguess_rpc.NewAdminService(s.roomManager, s.engine))

	s.monitor.StartServer(cfg.Server.MonitorAddress)

	return s
}

func (s *GameServer) Start() error {
	go s.rpcServer.Start()

	http.HandleFunc("/ws", s.handleWebSocket)
	logger.Log.Infof("Game server listening on %s", s.addr)
	return http.ListenAndServe(s.addr, nil)
}

func (s *GameServer) Shutdown() {
	close(s.shutdownChan)
	s.timers.Stop()
	s.rpcServer.Stop()
}

func (s *GameServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Infof("Failed to upgrade connection: %v", err)
		return
	}
	s.handleConnection(conn)
}

func (s *GameServer) handleConnection(conn *websocket.Conn) {
	wsConn := network.NewWSConnection(conn)
	sess := session.NewSession(uuid.New().String(), wsConn)
	s.sessionManager.Add(sess)
	s.monitor.IncOnlinePlayers()

	logger.Log.Infof("New connection from %s, session ID: %s", wsConn.RemoteAddr(), sess.GetID())

	defer func() {
		logger.Log.Infof("Connection closed from %s, session ID: %s", wsConn.RemoteAddr(), sess.GetID())
		s.engine.Disconnect(sess)
		s.sessionManager.Remove(sess.GetID())
		s.monitor.DecOnlinePlayers()
		s.monitor.SetActiveRooms(s.roomManager.Count())
		wsConn.Close()
	}()

	for {
		select {
		case <-s.shutdownChan:
			return
		default:
			envelope, err := wsConn.ReadEnvelope()
			if err != nil {
				// A malformed frame gets a private error reply; only
				// transport errors end the connection.
				if errors.Is(err, network.ErrInvalidFormat) {
					s.sendError(sess, network.ErrInvalidFormat)
					continue
				}
				return
			}
			s.handleEnvelope(sess, envelope)
		}
	}
}

func (s *GameServer) handleEnvelope(sess *session.Session, envelope *network.Envelope) {
	start := time.Now()
	s.monitor.IncMessagesReceived()

	err := s.dispatch(sess, envelope)
	if err != nil {
		s.sendError(sess, err)
	}

	s.monitor.SetActiveRooms(s.roomManager.Count())
	s.monitor.ObserveMessageLatency(time.Since(start))
}

func (s *GameServer) dispatch(sess *session.Session, envelope *network.Envelope) error {
	switch envelope.Type {
	case network.MsgCreateRoom:
		var req network.CreateRoomRequest
		if err := json.Unmarshal(envelope.Data, &req); err != nil {
			return network.ErrInvalidFormat
		}
		return s.engine.CreateRoom(sess, req.Username)

	case network.MsgJoinRoom:
		var req network.JoinRoomRequest
		if err := json.Unmarshal(envelope.Data, &req); err != nil {
			return network.ErrInvalidFormat
		}
		return s.engine.JoinRoom(sess, req.RoomID, req.Username)

	case network.MsgStartGame:
		return s.engine.StartGame(sess)

	case network.MsgChatMessage:
		var req network.ChatRequest
		if err := json.Unmarshal(envelope.Data, &req); err != nil {
			return network.ErrInvalidFormat
		}
		return s.engine.HandleChat(sess, req.Message)

	case network.MsgDraw:
		return s.engine.HandleDraw(sess, envelope.Data)

	case network.MsgClearCanvas:
		return s.engine.HandleClearCanvas(sess)

	case network.MsgLeaveGame:
		return s.engine.Leave(sess)

	default:
		logger.Log.Infof("Unknown message type: %s", envelope.Type)
		return network.ErrInvalidFormat
	}
}

// sendError reports a failed action back to the offending client only.
func (s *GameServer) sendError(sess *session.Session, err error) {
	logger.Log.Debugf("Session %s action failed: %v", sess.GetID(), err)
	sendErr := sess.Send(network.Event{
		Type: network.EvtError,
		Data: network.MessageData{Message: err.Error()},
	})
	if sendErr != nil {
		logger.Log.Debugf("Error reply to session %s failed: %v", sess.GetID(), sendErr)
	}
}
