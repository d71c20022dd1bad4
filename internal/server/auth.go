package server

import (
	"github.com/gin-gonic/gin"
	authdomain "github.com/smallbiznis/eventory/internal/auth/domain"
)

func (s *Server) Login(c *gin.Context) {
	var req authdomain.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, bindError(err))
		return
	}

	result, err := s.authSvc.Login(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondOK(c, "login successful", result)
}

func (s *Server) Refresh(c *gin.Context) {
	var req authdomain.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, bindError(err))
		return
	}

	pair, err := s.authSvc.Refresh(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondOK(c, "token refreshed", pair)
}

func (s *Server) Me(c *gin.Context) {
	user, err := s.authSvc.Me(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondOK(c, "profile fetched", user)
}

func (s *Server) ChangePassword(c *gin.Context) {
	var req authdomain.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, bindError(err))
		return
	}

	if err := s.authSvc.ChangePassword(c.Request.Context(), req); err != nil {
		AbortWithError(c, err)
		return
	}

	respondOK(c, "password changed", nil)
}

// ForgotPassword always answers the same way so callers cannot probe which
// emails are registered.
func (s *Server) ForgotPassword(c *gin.Context) {
	var req authdomain.ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, bindError(err))
		return
	}

	if err := s.authSvc.ForgotPassword(c.Request.Context(), req); err != nil {
		AbortWithError(c, err)
		return
	}

	respondOK(c, "if the account exists a reset link has been sent", nil)
}

func (s *Server) ResetPassword(c *gin.Context) {
	var req authdomain.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, bindError(err))
		return
	}

	if err := s.authSvc.ResetPassword(c.Request.Context(), req); err != nil {
		AbortWithError(c, err)
		return
	}

	respondOK(c, "password reset", nil)
}
