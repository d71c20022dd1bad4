package server

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/eventory/internal/platformctx"
	"go.uber.org/zap"
)

func (s *Server) authorize(object string, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := s.authorizeWithContext(c, object, action); err != nil {
			AbortWithError(c, err)
			return
		}
		c.Next()
	}
}

func (s *Server) authorizeWithContext(c *gin.Context, object string, action string) error {
	ctx := c.Request.Context()
	actor, ok := platformctx.ActorFromContext(ctx)
	if !ok {
		return ErrUnauthorized
	}
	platformID, ok := platformctx.PlatformIDFromContext(ctx)
	if !ok {
		return ErrPlatformRequired
	}
	if s.authzSvc == nil {
		return ErrForbidden
	}
	return s.authzSvc.Authorize(ctx, "user:"+actor.UserID.String(), platformID.String(), strings.TrimSpace(object), strings.TrimSpace(action))
}

// audit records a handler-level action for domains whose services do not
// audit themselves. The actor comes from the request context. Failures are
// logged and never fail the request.
func (s *Server) audit(c *gin.Context, action, targetType, targetID string, metadata map[string]any) {
	if s.auditSvc == nil {
		return
	}
	target := targetID
	if err := s.auditSvc.AuditLog(c.Request.Context(), "", nil, action, targetType, &target, metadata); err != nil {
		s.log.Warn("failed to write audit log", zap.String("action", action), zap.Error(err))
	}
}
