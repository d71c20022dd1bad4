package server

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/eventory/internal/platformctx"
)

const (
	HeaderPlatform      = "X-Platform"
	headerAuthorization = "Authorization"
	contextUserIDKey    = "user_id"
	contextPlatformKey  = "platform_id"
)

// PlatformContext resolves the X-Platform header (id, slug or domain) and
// stores the tenant on the request context.
func (s *Server) PlatformContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := strings.TrimSpace(c.GetHeader(HeaderPlatform))
		if key == "" {
			AbortWithError(c, ErrPlatformRequired)
			return
		}

		platform, err := s.platformSvc.Resolve(c.Request.Context(), key)
		if err != nil {
			AbortWithError(c, err)
			return
		}

		ctx := platformctx.WithPlatformID(c.Request.Context(), platform.ID)
		c.Request = c.Request.WithContext(ctx)
		c.Set(contextPlatformKey, platform.ID.String())
		c.Next()
	}
}

// AuthRequired validates the bearer access token. The token must have been
// issued for the platform resolved by PlatformContext.
func (s *Server) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := bearerToken(c.GetHeader(headerAuthorization))
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		subject, err := s.authSvc.Authenticate(c.Request.Context(), raw)
		if err != nil {
			AbortWithError(c, err)
			return
		}

		ctx := platformctx.WithActor(c.Request.Context(), platformctx.Actor{
			UserID:    subject.UserID,
			Email:     subject.Email,
			Role:      subject.Role,
			CompanyID: subject.CompanyID,
		})
		c.Request = c.Request.WithContext(ctx)
		c.Set(contextUserIDKey, subject.UserID.String())
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	scheme, value, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	value = strings.TrimSpace(value)
	return value, value != ""
}
