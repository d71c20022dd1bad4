package server

import (
	"github.com/gin-gonic/gin"
	notificationdomain "github.com/smallbiznis/eventory/internal/notification/domain"
)

func (s *Server) ListNotifications(c *gin.Context) {
	var req notificationdomain.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		AbortWithError(c, bindError(err))
		return
	}

	items, meta, err := s.notificationSvc.ListMine(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondList(c, "notifications fetched", items, meta)
}

func (s *Server) MarkNotificationRead(c *gin.Context) {
	item, err := s.notificationSvc.MarkRead(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondOK(c, "notification marked as read", item)
}

func (s *Server) MarkAllNotificationsRead(c *gin.Context) {
	updated, err := s.notificationSvc.MarkAllRead(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondOK(c, "notifications marked as read", gin.H{"updated": updated})
}
