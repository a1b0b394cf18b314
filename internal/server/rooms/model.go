// Package rooms implements the room membership lifecycle: creation, atomic
// join/leave, password-guarded deletion and paged listing/search over a
// durable postgres store.
package rooms

import "time"

// Room is the durable room record. Members is the membership set; it is only
// ever mutated through the store's atomic add/remove operations, never by
// rewriting the whole set.
//
// Password is stored in plaintext for compatibility with pre-existing room
// data; see DESIGN.md.
type Room struct {
	ID        string
	Name      string
	Password  string
	AdminID   string
	Members   []string
	CreatedAt time.Time
}

// MemberSummary is the lightweight member projection embedded in room views.
type MemberSummary struct {
	MemberID string
}

// RoomView is the listing projection of a room: no password, members reduced
// to summaries.
type RoomView struct {
	RoomID    string
	RoomName  string
	AdminID   string
	Members   []MemberSummary
	CreatedAt time.Time
}

// RoomSummary names a room without exposing its state.
type RoomSummary struct {
	RoomID   string
	RoomName string
}

// JoinResult confirms a join, naming the room and the joining member.
type JoinResult struct {
	RoomName string
	MemberID string
}

// Page combines one page of rooms with the total count. The two reads are not
// a single snapshot: under concurrent writes the page contents may reflect a
// slightly different state than Total.
type Page struct {
	Rooms []*RoomView
	Page  int
	Size  int
	Total int64
}

func newRoomView(room *Room) *RoomView {
	members := make([]MemberSummary, 0, len(room.Members))
	for _, id := range room.Members {
		members = append(members, MemberSummary{MemberID: id})
	}
	return &RoomView{
		RoomID:    room.ID,
		RoomName:  room.Name,
		AdminID:   room.AdminID,
		Members:   members,
		CreatedAt: room.CreatedAt,
	}
}
