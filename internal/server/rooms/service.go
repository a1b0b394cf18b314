package rooms

import (
	"context"
	"crypto/subtle"
	"errors"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/talkroom/talkroom/internal/common"
	"github.com/talkroom/talkroom/internal/logging"
	"github.com/talkroom/talkroom/internal/retryx"
	"github.com/talkroom/talkroom/internal/server/config"
	"github.com/talkroom/talkroom/internal/server/members"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// Service orchestrates the room membership lifecycle. Membership mutations go
// through the store's atomic add/remove; the service never rewrites a
// membership set it has read.
//
// Leaving is unrestricted: the admin may leave and a room may become empty.
// An empty or adminless room stays listed until someone deletes it with the
// room password.
type Service struct {
	repo        Repository
	memberRepo  members.Repository
	logger      logging.Logger
	callTimeout time.Duration
	retryMax    uint64
}

func NewService(repo Repository, memberRepo members.Repository, cfg *config.Config, logger logging.Logger) *Service {
	return &Service{
		repo:        repo,
		memberRepo:  memberRepo,
		logger:      logger.With("component", "rooms"),
		callTimeout: cfg.StoreCallTimeout,
		retryMax:    cfg.StoreRetryMax,
	}
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.callTimeout)
}

// Create verifies that the admin exists, then persists a room whose
// membership set starts as {admin}.
func (s *Service) Create(ctx context.Context, adminID, name, password string) (*RoomView, error) {
	adminExists, err := retryx.DoWithResult(ctx, s.retryMax, func(ctx context.Context) (bool, error) {
		ctx, cancel := s.withTimeout(ctx)
		defer cancel()
		return s.memberRepo.ExistsByID(ctx, adminID)
	})
	if err != nil {
		s.logger.Error(ctx, "admin existence check failed", "memberId", adminID, "error", err)
		return nil, common.ErrInternal
	}
	if !adminExists {
		return nil, common.ErrMemberNotFound
	}

	room := &Room{
		ID:       uuid.NewString(),
		Name:     name,
		Password: password,
		AdminID:  adminID,
		Members:  []string{adminID},
	}

	createCtx, cancel := s.withTimeout(ctx)
	defer cancel()
	room, err = s.repo.Create(createCtx, room)
	if err != nil {
		s.logger.Error(ctx, "room create failed", "roomName", name, "error", err)
		return nil, common.ErrInternal
	}

	s.logger.Info(ctx, "room created", "roomId", room.ID, "roomName", room.Name, "adminId", adminID)
	return newRoomView(room), nil
}

// Join adds memberID to the room's membership set. A repeated join is a
// no-op: the add is a store-level set operation, not a list append.
func (s *Service) Join(ctx context.Context, roomID, memberID string) (*JoinResult, error) {
	if _, err := s.getByID(ctx, roomID); err != nil {
		return nil, err
	}

	err := retryx.Do(ctx, s.retryMax, func(ctx context.Context) error {
		ctx, cancel := s.withTimeout(ctx)
		defer cancel()
		return s.repo.AddMember(ctx, roomID, memberID)
	})
	if err != nil {
		s.logger.Error(ctx, "member add failed", "roomId", roomID, "memberId", memberID, "error", err)
		return nil, common.ErrInternal
	}

	room, err := s.getByID(ctx, roomID)
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "member joined room", "roomId", roomID, "memberId", memberID)
	return &JoinResult{RoomName: room.Name, MemberID: memberID}, nil
}

// Leave removes memberID from the room's membership set and returns the
// room's post-leave summary.
func (s *Service) Leave(ctx context.Context, roomID, memberID string) (*RoomSummary, error) {
	if _, err := s.getByID(ctx, roomID); err != nil {
		return nil, err
	}

	err := retryx.Do(ctx, s.retryMax, func(ctx context.Context) error {
		ctx, cancel := s.withTimeout(ctx)
		defer cancel()
		return s.repo.RemoveMember(ctx, roomID, memberID)
	})
	if err != nil {
		s.logger.Error(ctx, "member remove failed", "roomId", roomID, "memberId", memberID, "error", err)
		return nil, common.ErrInternal
	}

	room, err := s.getByID(ctx, roomID)
	if err != nil {
		return nil, err
	}

	if len(room.Members) == 0 {
		s.logger.Warn(ctx, "room left empty", "roomId", roomID)
	}

	s.logger.Info(ctx, "member left room", "roomId", roomID, "memberId", memberID)
	return &RoomSummary{RoomID: room.ID, RoomName: room.Name}, nil
}

// Delete removes the room after the supplied password matches the stored one.
// A mismatch aborts before any mutation.
func (s *Service) Delete(ctx context.Context, roomID, password string) (*RoomSummary, error) {
	room, err := s.getByID(ctx, roomID)
	if err != nil {
		return nil, err
	}

	if subtle.ConstantTimeCompare([]byte(room.Password), []byte(password)) != 1 {
		s.logger.Info(ctx, "room password mismatch", "roomId", roomID)
		return nil, common.ErrInvalidRoomPassword
	}

	err = retryx.Do(ctx, s.retryMax, func(ctx context.Context) error {
		ctx, cancel := s.withTimeout(ctx)
		defer cancel()
		return s.repo.Delete(ctx, roomID)
	})
	if err != nil && !errors.Is(err, common.ErrRoomNotFound) {
		s.logger.Error(ctx, "room delete failed", "roomId", roomID, "error", err)
		return nil, common.ErrInternal
	}

	s.logger.Info(ctx, "room deleted", "roomId", roomID, "roomName", room.Name)
	return &RoomSummary{RoomID: room.ID, RoomName: room.Name}, nil
}

// List returns one page of rooms together with the total count. The page and
// the count are fetched concurrently and joined; they are not one snapshot.
func (s *Service) List(ctx context.Context, page, size int) (*Page, error) {
	page, size = normalizePaging(page, size)

	var (
		pageRooms []*Room
		total     int64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		pageRooms, err = retryx.DoWithResult(gctx, s.retryMax, func(ctx context.Context) ([]*Room, error) {
			ctx, cancel := s.withTimeout(ctx)
			defer cancel()
			return s.repo.List(ctx, page, size)
		})
		return err
	})
	g.Go(func() error {
		var err error
		total, err = retryx.DoWithResult(gctx, s.retryMax, func(ctx context.Context) (int64, error) {
			ctx, cancel := s.withTimeout(ctx)
			defer cancel()
			return s.repo.Count(ctx)
		})
		return err
	})

	if err := g.Wait(); err != nil {
		s.logger.Error(ctx, "room listing failed", "error", err)
		return nil, common.ErrInternal
	}

	return &Page{Rooms: toViews(pageRooms), Page: page, Size: size, Total: total}, nil
}

// ListForMember returns every room whose membership set contains memberID.
func (s *Service) ListForMember(ctx context.Context, memberID string) ([]*RoomView, error) {
	result, err := retryx.DoWithResult(ctx, s.retryMax, func(ctx context.Context) ([]*Room, error) {
		ctx, cancel := s.withTimeout(ctx)
		defer cancel()
		return s.repo.ListByMember(ctx, memberID)
	})
	if err != nil {
		s.logger.Error(ctx, "member room listing failed", "memberId", memberID, "error", err)
		return nil, common.ErrInternal
	}

	return toViews(result), nil
}

// SearchByTitle returns a page of rooms whose name contains title. Search
// issues no separate count query, so Total reflects only the returned page.
func (s *Service) SearchByTitle(ctx context.Context, title string, page, size int) (*Page, error) {
	page, size = normalizePaging(page, size)

	result, err := retryx.DoWithResult(ctx, s.retryMax, func(ctx context.Context) ([]*Room, error) {
		ctx, cancel := s.withTimeout(ctx)
		defer cancel()
		return s.repo.SearchByName(ctx, title, page, size)
	})
	if err != nil {
		s.logger.Error(ctx, "room search failed", "title", title, "error", err)
		return nil, common.ErrInternal
	}

	return &Page{Rooms: toViews(result), Page: page, Size: size, Total: int64(len(result))}, nil
}

func (s *Service) getByID(ctx context.Context, roomID string) (*Room, error) {
	room, err := retryx.DoWithResult(ctx, s.retryMax, func(ctx context.Context) (*Room, error) {
		ctx, cancel := s.withTimeout(ctx)
		defer cancel()
		return s.repo.GetByID(ctx, roomID)
	})
	if err != nil {
		if errors.Is(err, common.ErrRoomNotFound) {
			return nil, err
		}
		s.logger.Error(ctx, "room lookup failed", "roomId", roomID, "error", err)
		return nil, common.ErrInternal
	}
	return room, nil
}

func toViews(result []*Room) []*RoomView {
	views := make([]*RoomView, 0, len(result))
	for _, room := range result {
		views = append(views, newRoomView(room))
	}
	return views
}

func normalizePaging(page, size int) (int, int) {
	if page < 0 {
		page = 0
	}
	if size <= 0 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	return page, size
}
