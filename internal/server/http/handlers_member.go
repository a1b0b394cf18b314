package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/talkroom/talkroom/internal/common"
)

type memberRequest struct {
	MemberID          string `json:"memberId"`
	MemberPassword    string `json:"memberPassword"`
	MemberNewPassword string `json:"memberNewPassword"`
}

type memberResponse struct {
	MemberID  string    `json:"memberId"`
	CreatedAt time.Time `json:"createdDate"`
}

type tokenResponse struct {
	MemberID string `json:"memberId"`
	Token    string `json:"token"`
}

func (s *Server) registerHandler(c *gin.Context) {
	var req memberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, common.ErrValidation)
		return
	}

	member, err := s.members.Register(c.Request.Context(), req.MemberID, req.MemberPassword)
	if err != nil {
		fail(c, err)
		return
	}

	success(c, http.StatusCreated, "member registered",
		memberResponse{MemberID: member.ID, CreatedAt: member.CreatedAt})
}

func (s *Server) loginHandler(c *gin.Context) {
	var req memberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, common.ErrValidation)
		return
	}

	resp, err := s.members.Authenticate(c.Request.Context(), req.MemberID, req.MemberPassword)
	if err != nil {
		fail(c, err)
		return
	}

	success(c, http.StatusOK, "login succeeded",
		tokenResponse{MemberID: resp.MemberID, Token: resp.Token})
}

func (s *Server) userInfoHandler(c *gin.Context) {
	member, err := s.members.Get(c.Request.Context(), c.GetString(memberIDKey))
	if err != nil {
		fail(c, err)
		return
	}

	success(c, http.StatusOK, "user info retrieved",
		memberResponse{MemberID: member.ID, CreatedAt: member.CreatedAt})
}

func (s *Server) changePasswordHandler(c *gin.Context) {
	var req memberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, common.ErrValidation)
		return
	}

	memberID := c.GetString(memberIDKey)
	err := s.members.ChangePassword(c.Request.Context(), memberID, req.MemberPassword, req.MemberNewPassword)
	if err != nil {
		fail(c, err)
		return
	}

	success(c, http.StatusOK, "password updated", gin.H{"memberId": memberID})
}

func (s *Server) deleteUserHandler(c *gin.Context) {
	if err := s.members.Delete(c.Request.Context(), c.GetString(memberIDKey)); err != nil {
		fail(c, err)
		return
	}

	success(c, http.StatusOK, "member deleted", nil)
}
