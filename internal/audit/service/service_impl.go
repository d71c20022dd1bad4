package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	auditdomain "github.com/smallbiznis/eventory/internal/audit/domain"
	"github.com/smallbiznis/eventory/internal/audit/masking"
	obscontext "github.com/smallbiznis/eventory/internal/observability/context"
	"github.com/smallbiznis/eventory/internal/platformctx"
	"github.com/smallbiznis/eventory/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var sortColumns = map[string]string{
	"created_at": "created_at",
	"action":     "action",
}

type Params struct {
	fx.In

	DB   *gorm.DB
	Log  *zap.Logger
	Repo auditdomain.Repository
}

type Service struct {
	db   *gorm.DB
	log  *zap.Logger
	repo auditdomain.Repository
}

func NewService(p Params) auditdomain.Service {
	return &Service{
		db:   p.DB,
		log:  p.Log.Named("audit.service"),
		repo: p.Repo,
	}
}

func (s *Service) AuditLog(ctx context.Context, actorType string, actorID *string, action string, targetType string, targetID *string, metadata map[string]any) error {
	action = strings.TrimSpace(action)
	if action == "" {
		return auditdomain.ErrInvalidAction
	}

	targetType = strings.TrimSpace(targetType)
	if targetType == "" {
		targetType = "unknown"
	}

	resolvedActorType, resolvedActorID := s.resolveActor(ctx, strings.TrimSpace(actorType), actorID)

	payload := masking.Metadata(metadata)
	if payload == nil {
		payload = map[string]any{}
	}
	if requestID := obscontext.RequestIDFromContext(ctx); requestID != "" {
		payload["request_id"] = requestID
	}

	entry := auditdomain.AuditLog{
		ID:         uuid.New(),
		ActorType:  resolvedActorType,
		ActorID:    resolvedActorID,
		Action:     action,
		TargetType: targetType,
		TargetID:   normalizePointer(targetID),
		Metadata:   datatypes.JSONMap(payload),
		CreatedAt:  time.Now().UTC(),
	}
	if platformID, ok := platformctx.PlatformIDFromContext(ctx); ok {
		entry.PlatformID = &platformID
	}
	info := obscontext.ClientInfoFromContext(ctx)
	entry.IPAddress = normalizePointer(&info.IP)
	entry.UserAgent = normalizePointer(&info.UserAgent)

	if err := s.repo.Insert(ctx, s.db, &entry); err != nil {
		s.log.Warn("failed to write audit log", zap.String("action", action), zap.Error(err))
		return err
	}
	return nil
}

func (s *Service) List(ctx context.Context, req auditdomain.ListAuditLogRequest) ([]auditdomain.AuditLog, pagination.Meta, error) {
	platformID, ok := platformctx.PlatformIDFromContext(ctx)
	if !ok {
		return nil, pagination.Meta{}, auditdomain.ErrInvalidPlatform
	}

	if req.StartAt != nil && req.EndAt != nil && req.StartAt.After(*req.EndAt) {
		return nil, pagination.Meta{}, auditdomain.ErrInvalidTimeRange
	}

	query := req.Query.Normalize(sortColumns, "created_at")
	items, total, err := s.repo.List(ctx, s.db, auditdomain.ListFilter{
		PlatformID: platformID,
		Action:     req.Action,
		TargetType: req.TargetType,
		TargetID:   req.TargetID,
		ActorType:  req.ActorType,
		StartAt:    req.StartAt,
		EndAt:      req.EndAt,
	}, query)
	if err != nil {
		return nil, pagination.Meta{}, err
	}
	return items, query.Meta(total), nil
}

func (s *Service) resolveActor(ctx context.Context, actorType string, actorID *string) (string, *string) {
	if actorType == "" {
		if actor, ok := platformctx.ActorFromContext(ctx); ok && actor.UserID != uuid.Nil {
			actorType = string(auditdomain.ActorTypeUser)
			if actorID == nil || strings.TrimSpace(*actorID) == "" {
				id := actor.UserID.String()
				actorID = &id
			}
		}
	}
	if actorType == "" {
		actorType = string(auditdomain.ActorTypeSystem)
	}

	return actorType, normalizePointer(actorID)
}

func normalizePointer(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
