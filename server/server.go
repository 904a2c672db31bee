package server

import (
	"net/http"
	gorpc "net/rpc"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/washer/curvytron/broadcast"
	"github.com/washer/curvytron/config"
	"github.com/washer/curvytron/game"
	"github.com/washer/curvytron/lobby"
	"github.com/washer/curvytron/logger"
	"github.com/washer/curvytron/monitor"
	"github.com/washer/curvytron/network"
	"github.com/washer/curvytron/persistence"
	"github.com/washer/curvytron/room"
	curvytron_rpc "github.com/washer/curvytron/rpc"
	"github.com/washer/curvytron/services"
	"github.com/washer/curvytron/session"
	"github.com/washer/curvytron/timer"
)

type GameServer struct {
	cfg            *config.Config
	upgrader       websocket.Upgrader
	registry       *room.Registry
	sessionManager *session.Manager
	broadcaster    *broadcast.RoomBroadcaster
	controller     *lobby.RoomController
	games          *game.Controller
	timers         *timer.Manager
	matchService   *services.MatchService
	rpcServer      *curvytron_rpc.Server
	monitor        *monitor.Monitor
	shutdownChan   chan struct{}
}

func NewGameServer(cfg *config.Config, db persistence.Database) *GameServer {
	s := &GameServer{
		cfg:            cfg,
		registry:       room.NewRegistry(),
		sessionManager: session.NewManager(),
		timers:         timer.NewManager(),
		monitor:        monitor.NewMonitor("curvytron"),
		shutdownChan:   make(chan struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // 允许所有跨域请求
			},
		},
	}

	// 初始化广播器与对局子系统
	s.broadcaster = broadcast.NewRoomBroadcaster(s.registry)
	s.games = game.NewController(game.Config{
		Warmup:        cfg.Game.Warmup,
		Duration:      cfg.Game.Duration,
		BonusInterval: cfg.Game.BonusInterval,
		MaxBonuses:    cfg.Game.MaxBonuses,
	}, s.timers)

	// Recording is optional; without a database the lobby runs as usual.
	var recorder lobby.MatchRecorder
	if db != nil {
		s.matchService = services.NewMatchService(db)
		recorder = s.matchService
	} else {
		logger.Log.Info("Match recording disabled: no database configured")
	}

	s.controller = lobby.NewRoomController(s.registry, s.broadcaster, s.games, recorder)

	// 初始化RPC服务器
	rpcServer, err := curvytron_rpc.NewServer(cfg.Server.RPCAddress)
	if err != nil {
		logger.Log.Fatalf("Failed to create RPC server: %v", err)
	}
	s.rpcServer = rpcServer

	// 注册RPC服务
	lobbyService := curvytron_rpc.NewLobbyService(s.registry, s.sessionManager, s.matchService)
	gorpc.Register(lobbyService)

	return s
}

func (s *GameServer) Start() error {
	go s.rpcServer.Start()
	s.monitor.StartServer(s.cfg.Server.MonitorAddress)
	go s.updateGauges()

	http.HandleFunc("/ws", s.handleWebSocket)
	logger.Log.Infof("Lobby server listening on %s", s.cfg.Server.HTTPAddress)
	return http.ListenAndServe(s.cfg.Server.HTTPAddress, nil)
}

func (s *GameServer) Shutdown() {
	close(s.shutdownChan)
	s.rpcServer.Stop()
	s.timers.Stop()
}

// updateGauges refreshes the room and match gauges periodically.
func (s *GameServer) updateGauges() {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.monitor.SetOpenRooms(s.registry.Count())
			s.monitor.SetActiveMatches(s.games.Count())
		case <-s.shutdownChan:
			return
		}
	}
}

func (s *GameServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Infof("Failed to upgrade connection: %v", err)
		return
	}
	s.handleConnection(conn)
}

// heartbeatInterval paces the websocket ping/pong liveness check.
const heartbeatInterval = 30 * time.Second

func (s *GameServer) handleConnection(conn *websocket.Conn) {
	wsConn := network.NewWSConnection(conn)
	wsConn.SetHeartbeat(heartbeatInterval)
	sess := session.NewSession(uuid.New().String(), wsConn)
	s.sessionManager.Add(sess)
	s.monitor.IncOnlineConnections()
	s.controller.Attach(sess)

	logger.Log.Infof("New connection from %s, session ID: %s", wsConn.RemoteAddr(), sess.GetID())

	defer func() {
		logger.Log.Infof("Connection closed from %s, session ID: %s", wsConn.RemoteAddr(), sess.GetID())
		s.controller.HandleDisconnect(sess)
		s.sessionManager.Remove(sess.GetID())
		s.monitor.DecOnlineConnections()
		wsConn.Close()
	}()

	for {
		select {
		case <-s.shutdownChan:
			return
		default:
			event, err := wsConn.ReadEvent()
			if err != nil {
				if err == network.ErrMalformedEvent {
					continue
				}
				return
			}
			s.handleEvent(sess, event)
		}
	}
}

// handleEvent routes an inbound event to whichever subsystem currently
// owns the session's stream.
func (s *GameServer) handleEvent(sess *session.Session, event *network.Event) {
	start := time.Now()
	s.monitor.IncEventsReceived()

	// Leaving is a lobby operation even while a match owns the stream.
	if sess.Scope() == session.ScopeGame && event.Name != network.EventRoomLeave {
		s.games.HandleEvent(sess, event)
	} else {
		s.controller.HandleEvent(sess, event)
	}

	s.monitor.ObserveEventLatency(time.Since(start))
}
