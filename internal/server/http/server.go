package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/talkroom/talkroom/internal/logging"
	"github.com/talkroom/talkroom/internal/server/auth"
	"github.com/talkroom/talkroom/internal/server/members"
	"github.com/talkroom/talkroom/internal/server/rooms"
)

const shutdownTimeout = 5 * time.Second

// MemberService is the identity surface consumed by the transport layer.
type MemberService interface {
	Register(ctx context.Context, id, rawPassword string) (*members.Member, error)
	Authenticate(ctx context.Context, id, rawPassword string) (*members.TokenResponse, error)
	Get(ctx context.Context, id string) (*members.Member, error)
	ChangePassword(ctx context.Context, id, oldPassword, newPassword string) error
	Delete(ctx context.Context, id string) error
}

// RoomService is the room surface consumed by the transport layer.
type RoomService interface {
	Create(ctx context.Context, adminID, name, password string) (*rooms.RoomView, error)
	Join(ctx context.Context, roomID, memberID string) (*rooms.JoinResult, error)
	Leave(ctx context.Context, roomID, memberID string) (*rooms.RoomSummary, error)
	Delete(ctx context.Context, roomID, password string) (*rooms.RoomSummary, error)
	List(ctx context.Context, page, size int) (*rooms.Page, error)
	ListForMember(ctx context.Context, memberID string) ([]*rooms.RoomView, error)
	SearchByTitle(ctx context.Context, title string, page, size int) (*rooms.Page, error)
}

type Server struct {
	addr    string
	logger  logging.Logger
	issuer  *auth.Issuer
	members MemberService
	rooms   RoomService
}

func NewServer(addr string, issuer *auth.Issuer, memberSvc MemberService, roomSvc RoomService, logger logging.Logger) *Server {
	return &Server{
		addr:    addr,
		logger:  logger.With("component", "http"),
		issuer:  issuer,
		members: memberSvc,
		rooms:   roomSvc,
	}
}

// Router builds the gin engine with all routes mounted.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	api := r.Group("/api/chat")

	member := api.Group("/member")
	member.POST("/register", s.registerHandler)
	member.POST("/login", s.loginHandler)

	user := api.Group("/user", BearerAuth(s.issuer))
	user.GET("", s.userInfoHandler)
	user.PATCH("", s.changePasswordHandler)
	user.DELETE("", s.deleteUserHandler)

	room := api.Group("/room", BearerAuth(s.issuer))
	room.GET("", s.listRoomsHandler)
	room.POST("", s.createRoomHandler)
	room.GET("/search", s.searchRoomsHandler)
	room.GET("/member", s.memberRoomsHandler)
	room.POST("/:roomId/join", s.joinRoomHandler)
	room.POST("/:roomId/leave", s.leaveRoomHandler)
	room.DELETE("/:roomId", s.deleteRoomHandler)

	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	gin.SetMode(gin.ReleaseMode)

	srv := &http.Server{
		Addr:    s.addr,
		Handler: s.Router(),
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info(ctx, "http server listening", "addr", s.addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
