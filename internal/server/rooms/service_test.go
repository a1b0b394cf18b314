package rooms

import (
	"context"
	"errors"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/talkroom/talkroom/internal/common"
	"github.com/talkroom/talkroom/internal/logging"
	"github.com/talkroom/talkroom/internal/server/config"
	"github.com/talkroom/talkroom/internal/server/members"
)

// --- helpers ---

// memRepo is an in-memory Repository with real set semantics, so idempotence
// properties are exercised against actual state, not canned replies.
type memRepo struct {
	rooms      map[string]*Room
	membership map[string]map[string]struct{}
	failWith   error
}

func newMemRepo() *memRepo {
	return &memRepo{
		rooms:      map[string]*Room{},
		membership: map[string]map[string]struct{}{},
	}
}

func (m *memRepo) snapshot(id string) *Room {
	room := m.rooms[id]
	ids := make([]string, 0, len(m.membership[id]))
	for memberID := range m.membership[id] {
		ids = append(ids, memberID)
	}
	sort.Strings(ids)
	copied := *room
	copied.Members = ids
	return &copied
}

func (m *memRepo) GetByID(ctx context.Context, id string) (*Room, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	if _, ok := m.rooms[id]; !ok {
		return nil, common.ErrRoomNotFound
	}
	return m.snapshot(id), nil
}

func (m *memRepo) Create(ctx context.Context, room *Room) (*Room, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	room.CreatedAt = time.Now()
	m.rooms[room.ID] = room
	m.membership[room.ID] = map[string]struct{}{}
	for _, memberID := range room.Members {
		m.membership[room.ID][memberID] = struct{}{}
	}
	return m.snapshot(room.ID), nil
}

func (m *memRepo) Delete(ctx context.Context, id string) error {
	if _, ok := m.rooms[id]; !ok {
		return common.ErrRoomNotFound
	}
	delete(m.rooms, id)
	delete(m.membership, id)
	return nil
}

func (m *memRepo) AddMember(ctx context.Context, roomID, memberID string) error {
	if set, ok := m.membership[roomID]; ok {
		set[memberID] = struct{}{}
	}
	return nil
}

func (m *memRepo) RemoveMember(ctx context.Context, roomID, memberID string) error {
	if set, ok := m.membership[roomID]; ok {
		delete(set, memberID)
	}
	return nil
}

func (m *memRepo) List(ctx context.Context, page, size int) ([]*Room, error) {
	ids := make([]string, 0, len(m.rooms))
	for id := range m.rooms {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	result := make([]*Room, 0)
	for i := page * size; i < len(ids) && len(result) < size; i++ {
		result = append(result, m.snapshot(ids[i]))
	}
	return result, nil
}

func (m *memRepo) Count(ctx context.Context) (int64, error) {
	return int64(len(m.rooms)), nil
}

func (m *memRepo) SearchByName(ctx context.Context, title string, page, size int) ([]*Room, error) {
	result := make([]*Room, 0)
	for id, room := range m.rooms {
		if strings.Contains(strings.ToLower(room.Name), strings.ToLower(title)) {
			result = append(result, m.snapshot(id))
		}
	}
	return result, nil
}

func (m *memRepo) ListByMember(ctx context.Context, memberID string) ([]*Room, error) {
	result := make([]*Room, 0)
	for id := range m.rooms {
		if _, ok := m.membership[id][memberID]; ok {
			result = append(result, m.snapshot(id))
		}
	}
	return result, nil
}

type fakeMemberRepo struct {
	known map[string]struct{}
}

func (f *fakeMemberRepo) ExistsByID(ctx context.Context, id string) (bool, error) {
	_, ok := f.known[id]
	return ok, nil
}

func (f *fakeMemberRepo) GetByID(ctx context.Context, id string) (*members.Member, error) {
	if _, ok := f.known[id]; !ok {
		return nil, common.ErrMemberNotFound
	}
	return &members.Member{ID: id}, nil
}

func (f *fakeMemberRepo) Create(ctx context.Context, m *members.Member) (*members.Member, error) {
	return m, nil
}

func (f *fakeMemberRepo) UpdatePassword(ctx context.Context, id, hash string) error { return nil }
func (f *fakeMemberRepo) Delete(ctx context.Context, id string) error               { return nil }

type noopLogger struct{}

func (noopLogger) Debug(ctx context.Context, msg string, args ...any) {}
func (noopLogger) Info(ctx context.Context, msg string, args ...any)  {}
func (noopLogger) Warn(ctx context.Context, msg string, args ...any)  {}
func (noopLogger) Error(ctx context.Context, msg string, args ...any) {}
func (noopLogger) With(args ...any) logging.Logger                    { return noopLogger{} }

func newTestService(repo *memRepo, memberIDs ...string) *Service {
	known := map[string]struct{}{}
	for _, id := range memberIDs {
		known[id] = struct{}{}
	}
	cfg := &config.Config{
		StoreCallTimeout: time.Second,
		StoreRetryMax:    0,
	}
	return NewService(repo, &fakeMemberRepo{known: known}, cfg, noopLogger{})
}

func memberIDs(view *RoomView) []string {
	ids := make([]string, 0, len(view.Members))
	for _, m := range view.Members {
		ids = append(ids, m.MemberID)
	}
	return ids
}

// --- create ---

func TestCreate_SeedsMembershipWithAdmin(t *testing.T) {
	repo := newMemRepo()
	svc := newTestService(repo, "alice123")

	view, err := svc.Create(context.Background(), "alice123", "Study", "pw1")
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if view.RoomName != "Study" || view.AdminID != "alice123" {
		t.Fatalf("unexpected view: %+v", view)
	}
	got := memberIDs(view)
	if len(got) != 1 || got[0] != "alice123" {
		t.Fatalf("expected membership {alice123}, got %v", got)
	}
}

func TestCreate_UnknownAdmin(t *testing.T) {
	svc := newTestService(newMemRepo())

	_, err := svc.Create(context.Background(), "ghost99", "Study", "pw1")
	if !errors.Is(err, common.ErrMemberNotFound) {
		t.Fatalf("expected ErrMemberNotFound, got %v", err)
	}
}

// --- join / leave ---

func TestJoin_ThenRepeatedJoinIsIdempotent(t *testing.T) {
	repo := newMemRepo()
	svc := newTestService(repo, "alice123")
	view, _ := svc.Create(context.Background(), "alice123", "Study", "pw1")

	res, err := svc.Join(context.Background(), view.RoomID, "bob456")
	if err != nil {
		t.Fatalf("Join error: %v", err)
	}
	if res.RoomName != "Study" || res.MemberID != "bob456" {
		t.Fatalf("unexpected result: %+v", res)
	}

	after1 := repo.snapshot(view.RoomID).Members

	if _, err := svc.Join(context.Background(), view.RoomID, "bob456"); err != nil {
		t.Fatalf("repeated Join error: %v", err)
	}
	after2 := repo.snapshot(view.RoomID).Members

	if len(after1) != 2 || len(after2) != 2 {
		t.Fatalf("expected stable membership of 2, got %v then %v", after1, after2)
	}
}

func TestJoin_RoomNotFound(t *testing.T) {
	svc := newTestService(newMemRepo(), "bob456")

	_, err := svc.Join(context.Background(), "no-such-room", "bob456")
	if !errors.Is(err, common.ErrRoomNotFound) {
		t.Fatalf("expected ErrRoomNotFound, got %v", err)
	}
}

func TestJoinThenLeave_RestoresMembership(t *testing.T) {
	repo := newMemRepo()
	svc := newTestService(repo, "alice123")
	view, _ := svc.Create(context.Background(), "alice123", "Study", "pw1")

	before := repo.snapshot(view.RoomID).Members

	if _, err := svc.Join(context.Background(), view.RoomID, "bob456"); err != nil {
		t.Fatalf("Join error: %v", err)
	}
	if _, err := svc.Leave(context.Background(), view.RoomID, "bob456"); err != nil {
		t.Fatalf("Leave error: %v", err)
	}

	after := repo.snapshot(view.RoomID).Members
	if len(before) != len(after) || before[0] != after[0] {
		t.Fatalf("expected membership restored to %v, got %v", before, after)
	}
}

func TestLeave_AdminMayLeave(t *testing.T) {
	repo := newMemRepo()
	svc := newTestService(repo, "alice123")
	view, _ := svc.Create(context.Background(), "alice123", "Study", "pw1")
	_, _ = svc.Join(context.Background(), view.RoomID, "bob456")

	if _, err := svc.Leave(context.Background(), view.RoomID, "alice123"); err != nil {
		t.Fatalf("Leave error: %v", err)
	}

	got := repo.snapshot(view.RoomID).Members
	if len(got) != 1 || got[0] != "bob456" {
		t.Fatalf("expected membership {bob456}, got %v", got)
	}
}

// --- delete ---

func TestDelete_WrongPasswordLeavesRoomIntact(t *testing.T) {
	repo := newMemRepo()
	svc := newTestService(repo, "alice123")
	view, _ := svc.Create(context.Background(), "alice123", "Study", "pw1")

	_, err := svc.Delete(context.Background(), view.RoomID, "wrong")
	if !errors.Is(err, common.ErrInvalidRoomPassword) {
		t.Fatalf("expected ErrInvalidRoomPassword, got %v", err)
	}

	room, err := svc.getByID(context.Background(), view.RoomID)
	if err != nil {
		t.Fatalf("room must survive a failed delete: %v", err)
	}
	if len(room.Members) != 1 {
		t.Fatalf("membership must be unchanged, got %v", room.Members)
	}
}

func TestDelete_Success(t *testing.T) {
	repo := newMemRepo()
	svc := newTestService(repo, "alice123")
	view, _ := svc.Create(context.Background(), "alice123", "Study", "pw1")

	summary, err := svc.Delete(context.Background(), view.RoomID, "pw1")
	if err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if summary.RoomName != "Study" {
		t.Fatalf("unexpected summary: %+v", summary)
	}

	if _, err := svc.Join(context.Background(), view.RoomID, "bob456"); !errors.Is(err, common.ErrRoomNotFound) {
		t.Fatalf("expected room gone, got %v", err)
	}
}

// --- listing ---

func TestList_CombinesPageAndCount(t *testing.T) {
	repo := newMemRepo()
	svc := newTestService(repo, "alice123")
	for _, name := range []string{"Study", "Music", "Games"} {
		if _, err := svc.Create(context.Background(), "alice123", name, "pw"); err != nil {
			t.Fatalf("Create error: %v", err)
		}
	}

	page, err := svc.List(context.Background(), 0, 2)
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(page.Rooms) != 2 {
		t.Fatalf("expected 2 rooms on page, got %d", len(page.Rooms))
	}
	if page.Total != 3 {
		t.Fatalf("expected total 3, got %d", page.Total)
	}
}

func TestList_NormalizesPaging(t *testing.T) {
	svc := newTestService(newMemRepo())

	page, err := svc.List(context.Background(), -1, 0)
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if page.Page != 0 || page.Size != defaultPageSize {
		t.Fatalf("expected normalized paging, got page=%d size=%d", page.Page, page.Size)
	}
}

func TestListForMember(t *testing.T) {
	repo := newMemRepo()
	svc := newTestService(repo, "alice123")
	study, _ := svc.Create(context.Background(), "alice123", "Study", "pw")
	_, _ = svc.Create(context.Background(), "alice123", "Music", "pw")
	_, _ = svc.Join(context.Background(), study.RoomID, "bob456")

	views, err := svc.ListForMember(context.Background(), "bob456")
	if err != nil {
		t.Fatalf("ListForMember error: %v", err)
	}
	if len(views) != 1 || views[0].RoomName != "Study" {
		t.Fatalf("unexpected rooms for bob456: %+v", views)
	}
}

func TestSearchByTitle(t *testing.T) {
	repo := newMemRepo()
	svc := newTestService(repo, "alice123")
	_, _ = svc.Create(context.Background(), "alice123", "Go Study", "pw")
	_, _ = svc.Create(context.Background(), "alice123", "Music", "pw")

	page, err := svc.SearchByTitle(context.Background(), "study", 0, 10)
	if err != nil {
		t.Fatalf("SearchByTitle error: %v", err)
	}
	if len(page.Rooms) != 1 || page.Rooms[0].RoomName != "Go Study" {
		t.Fatalf("unexpected search result: %+v", page.Rooms)
	}
}

func TestList_StoreFailureIsOpaque(t *testing.T) {
	repo := newMemRepo()
	repo.failWith = errors.New("connection refused")
	svc := newTestService(repo, "alice123")

	_, err := svc.Join(context.Background(), "any-room", "alice123")
	if !errors.Is(err, common.ErrInternal) {
		t.Fatalf("expected ErrInternal, got %v", err)
	}
}
