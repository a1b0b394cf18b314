package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/talkroom/talkroom/internal/common"
)

type roomRequest struct {
	RoomName     string `json:"roomName"`
	RoomPassword string `json:"roomPassword"`
}

type roomDeleteRequest struct {
	Password string `json:"password"`
}

func (s *Server) listRoomsHandler(c *gin.Context) {
	page, size := pagingParams(c)

	result, err := s.rooms.List(c.Request.Context(), page, size)
	if err != nil {
		fail(c, err)
		return
	}

	success(c, http.StatusOK, "rooms retrieved", result)
}

func (s *Server) createRoomHandler(c *gin.Context) {
	var req roomRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.RoomName == "" {
		fail(c, common.ErrValidation)
		return
	}

	view, err := s.rooms.Create(c.Request.Context(), c.GetString(memberIDKey), req.RoomName, req.RoomPassword)
	if err != nil {
		fail(c, err)
		return
	}

	success(c, http.StatusCreated, "room created", view)
}

func (s *Server) joinRoomHandler(c *gin.Context) {
	result, err := s.rooms.Join(c.Request.Context(), c.Param("roomId"), c.GetString(memberIDKey))
	if err != nil {
		fail(c, err)
		return
	}

	success(c, http.StatusOK, "room joined", result)
}

func (s *Server) leaveRoomHandler(c *gin.Context) {
	summary, err := s.rooms.Leave(c.Request.Context(), c.Param("roomId"), c.GetString(memberIDKey))
	if err != nil {
		fail(c, err)
		return
	}

	success(c, http.StatusOK, "room left", summary)
}

func (s *Server) deleteRoomHandler(c *gin.Context) {
	var req roomDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, common.ErrValidation)
		return
	}

	summary, err := s.rooms.Delete(c.Request.Context(), c.Param("roomId"), req.Password)
	if err != nil {
		fail(c, err)
		return
	}

	success(c, http.StatusOK, "room deleted", summary)
}

func (s *Server) memberRoomsHandler(c *gin.Context) {
	views, err := s.rooms.ListForMember(c.Request.Context(), c.GetString(memberIDKey))
	if err != nil {
		fail(c, err)
		return
	}

	success(c, http.StatusOK, "member rooms retrieved", views)
}

func (s *Server) searchRoomsHandler(c *gin.Context) {
	title := c.Query("title")
	if title == "" {
		fail(c, common.ErrValidation)
		return
	}
	page, size := pagingParams(c)

	result, err := s.rooms.SearchByTitle(c.Request.Context(), title, page, size)
	if err != nil {
		fail(c, err)
		return
	}

	success(c, http.StatusOK, "rooms retrieved", result)
}

func pagingParams(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "0"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))
	return page, size
}
