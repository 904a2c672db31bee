package rpc

import (
	"net"
	"net/rpc"

	"github.com/washer/curvytron/logger"
	"github.com/washer/curvytron/models"
	"github.com/washer/curvytron/room"
	"github.com/washer/curvytron/services"
	"github.com/washer/curvytron/session"
)

// Server manages the RPC listener for the admin surface.
type Server struct {
	listener net.Listener
	address  string
}

// NewServer creates a new RPC server.
func NewServer(addr string) (*Server, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &Server{
		listener: listener,
		address:  addr,
	}, nil
}

// Start begins listening for RPC requests.
func (s *Server) Start() {
	logger.Log.Infof("RPC server listening on %s", s.address)
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			// Check if the error is due to the listener being closed.
			if _, ok := err.(*net.OpError); ok {
				logger.Log.Info("RPC server listener closed.")
				return
			}
			logger.Log.Errorf("RPC server accept error: %v", err)
			continue
		}
		go rpc.ServeConn(conn)
	}
}

// Stop closes the RPC listener.
func (s *Server) Stop() {
	if s.listener != nil {
		logger.Log.Info("Stopping RPC server.")
		s.listener.Close()
	}
}

// LobbyService exposes lobby state to ops tooling over net/rpc. Methods
// follow the net/rpc signature: exported method, exported arguments,
// second argument is a pointer, return type is error.
type LobbyService struct {
	registry *room.Registry
	sessions *session.Manager
	matches  *services.MatchService
}

func NewLobbyService(registry *room.Registry, sessions *session.Manager, matches *services.MatchService) *LobbyService {
	return &LobbyService{
		registry: registry,
		sessions: sessions,
		matches:  matches,
	}
}

type ListRoomsArgs struct{}

type ListRoomsReply struct {
	Rooms []models.RoomSnapshot
}

// ListRooms returns a snapshot of every registered room.
func (ls *LobbyService) ListRooms(args *ListRoomsArgs, reply *ListRoomsReply) error {
	rooms := ls.registry.Rooms()
	reply.Rooms = make([]models.RoomSnapshot, 0, len(rooms))
	for _, r := range rooms {
		reply.Rooms = append(reply.Rooms, r.Serialize())
	}
	return nil
}

type LobbyStatsArgs struct{}

type LobbyStatsReply struct {
	Connections int
	Rooms       int
}

// GetLobbyStats reports connection and room counts.
func (ls *LobbyService) GetLobbyStats(args *LobbyStatsArgs, reply *LobbyStatsReply) error {
	reply.Connections = ls.sessions.Count()
	reply.Rooms = ls.registry.Count()
	return nil
}

type RoomStatsArgs struct {
	Room string
}

type RoomStatsReply struct {
	Stats *models.RoomStats
}

// GetRoomStats reports persisted match stats for a room.
func (ls *LobbyService) GetRoomStats(args *RoomStatsArgs, reply *RoomStatsReply) error {
	stats, err := ls.matches.RoomStats(args.Room)
	if err != nil {
		return err
	}
	reply.Stats = stats
	return nil
}
