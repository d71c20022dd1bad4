package server

import (
	"github.com/gin-gonic/gin"
	platformdomain "github.com/smallbiznis/eventory/internal/platform/domain"
)

func (s *Server) GetPlatform(c *gin.Context) {
	platform, err := s.platformSvc.Get(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondOK(c, "platform fetched", platform)
}

func (s *Server) UpdatePlatform(c *gin.Context) {
	var req platformdomain.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, bindError(err))
		return
	}

	platform, err := s.platformSvc.Update(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.audit(c, "platform.update", "platform", platform.ID.String(), nil)
	respondOK(c, "platform updated", platform)
}
