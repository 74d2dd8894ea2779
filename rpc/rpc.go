package rpc

import (
	"net"
	"net/rpc"

	"github.com/wfunc/drawguess/logger"
	"github.com/wfunc/drawguess/room"
)

// Server manages the RPC listener for the admin surface.
type Server struct {
	listener net.Listener
	address  string
}

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

// Reconciler re-mirrors a room's full state to the durable store.
type Reconciler interface {
	RepublishRoom(roomID string) error
}

// AdminService exposes operational queries over net/rpc: exported methods,
// exported argument structs, pointer reply, error return.
type AdminService struct {
	rooms      *room.Manager
	reconciler Reconciler
}

func NewAdminService(rooms *room.Manager, reconciler Reconciler) *AdminService {
	return &AdminService{rooms: rooms, reconciler: reconciler}
}

type ListRoomsArgs struct{}

type ListRoomsReply struct {
	RoomIDs []string
}

func (as *AdminService) ListRooms(args *ListRoomsArgs, reply *ListRoomsReply) error {
	reply.RoomIDs = as.rooms.IDs()
	return nil
}

type RoomSnapshotArgs struct {
	RoomID string
}

type RoomSnapshotReply struct {
	Snapshot room.Snapshot
}

func (as *AdminService) GetRoomSnapshot(args *RoomSnapshotArgs, reply *RoomSnapshotReply) error {
	r, exists := as.rooms.Get(args.RoomID)
	if !exists {
		return ErrUnknownRoom
	}
	reply.Snapshot = r.Snapshot()
	return nil
}

type RepublishArgs struct {
	RoomID string
}

type RepublishReply struct {
	OK bool
}

// RepublishRoom forces a full-state mirror write, healing any drift left by
// best-effort writes that failed.
func (as *AdminService) RepublishRoom(args *RepublishArgs, reply *RepublishReply) error {
	if err := as.reconciler.RepublishRoom(args.RoomID); err != nil {
		return err
	}
	reply.OK = true
	return nil
}
