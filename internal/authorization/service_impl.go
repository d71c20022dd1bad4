package authorization

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	"github.com/google/uuid"
	auditdomain "github.com/smallbiznis/eventory/internal/audit/domain"
	"github.com/smallbiznis/eventory/internal/platformctx"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:embed model.conf
var modelText string

const (
	ObjectPlatform    = "platform"
	ObjectUser        = "user"
	ObjectCountry     = "country"
	ObjectCity        = "city"
	ObjectCompany     = "company"
	ObjectBrand       = "brand"
	ObjectWarehouse   = "warehouse"
	ObjectZone        = "zone"
	ObjectPricingTier = "pricing_tier"
	ObjectAsset       = "asset"
	ObjectCollection  = "collection"
	ObjectOrder       = "order"
	ObjectInvoice     = "invoice"
	ObjectAnalytics   = "analytics"
	ObjectAuditLog    = "audit_log"
)

const (
	ActionView   = "view"
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"

	ActionAssetUpload     = "asset.upload"
	ActionOrderTransition = "order.transition"
	ActionOrderPrice      = "order.price"
	ActionInvoiceGenerate = "invoice.generate"
	ActionInvoicePay      = "invoice.pay"
	ActionInvoiceVoid     = "invoice.void"
	ActionAnalyticsExport = "analytics.export"
)

const (
	roleAdmin     = "role:admin"
	roleLogistics = "role:logistics"
	roleClient    = "role:client"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	Enforcer *casbin.SyncedEnforcer
	AuditSvc auditdomain.Service `optional:"true"`
}

type ServiceImpl struct {
	db       *gorm.DB
	log      *zap.Logger
	enforcer *casbin.SyncedEnforcer
	auditSvc auditdomain.Service
}

func NewEnforcer(db *gorm.DB) (*casbin.SyncedEnforcer, error) {
	adapter, err := gormadapter.NewAdapterByDB(db)
	if err != nil {
		return nil, err
	}
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, err
	}
	enforcer, err := casbin.NewSyncedEnforcer(m, adapter)
	if err != nil {
		return nil, err
	}
	enforcer.EnableAutoSave(true)
	enforcer.EnableAutoBuildRoleLinks(true)
	if err := enforcer.LoadPolicy(); err != nil {
		return nil, err
	}
	if err := seedPolicies(enforcer); err != nil {
		return nil, err
	}
	if err := enforcer.BuildRoleLinks(); err != nil {
		return nil, err
	}
	return enforcer, nil
}

func NewService(p Params) Service {
	return &ServiceImpl{
		db:       p.DB,
		log:      p.Log.Named("authorization.service"),
		enforcer: p.Enforcer,
		auditSvc: p.AuditSvc,
	}
}

func (s *ServiceImpl) Authorize(ctx context.Context, actor string, platformID string, object string, action string) error {
	actor = strings.TrimSpace(actor)
	if actor == "" {
		return ErrInvalidActor
	}
	platformID = strings.TrimSpace(platformID)
	if _, err := uuid.Parse(platformID); err != nil {
		return ErrInvalidPlatform
	}
	object = strings.TrimSpace(object)
	if object == "" {
		return ErrInvalidObject
	}
	action = strings.TrimSpace(action)
	if action == "" {
		return ErrInvalidAction
	}

	roleName, actorType, actorID, err := s.resolveActor(ctx, actor)
	if err != nil {
		s.auditDecision(ctx, "authorization.denied", actorType, actorID, object, action)
		return err
	}

	domain := fmt.Sprintf("platform:%s", platformID)
	if err := s.ensureGrouping(actor, roleName, domain); err != nil {
		return err
	}

	allowed, err := s.enforcer.Enforce(actor, domain, object, action)
	if err != nil {
		return err
	}
	if !allowed {
		s.log.Debug("authorization denied",
			zap.String("subject", actor),
			zap.String("object", object),
			zap.String("action", action),
		)
		s.auditDecision(ctx, "authorization.denied", actorType, actorID, object, action)
		return ErrForbidden
	}

	if shouldAuditGrant(action) {
		s.auditDecision(ctx, "authorization.granted", actorType, actorID, object, action)
	}
	return nil
}

// resolveActor maps a subject to its casbin role. Users take the role
// carried by the authenticated actor in ctx, which must match the subject.
func (s *ServiceImpl) resolveActor(ctx context.Context, actor string) (string, string, *string, error) {
	if !strings.HasPrefix(actor, "user:") {
		return "", "", nil, ErrInvalidActor
	}
	userID, err := uuid.Parse(strings.TrimPrefix(actor, "user:"))
	if err != nil {
		return "", "", nil, ErrInvalidActor
	}
	userIDStr := userID.String()

	current, ok := platformctx.ActorFromContext(ctx)
	if !ok || current.UserID != userID {
		return "", "user", &userIDStr, ErrForbidden
	}
	switch current.Role {
	case platformctx.RoleAdmin, platformctx.RoleLogistics, platformctx.RoleClient:
		return "role:" + strings.ToLower(current.Role), "user", &userIDStr, nil
	default:
		return "", "user", &userIDStr, ErrForbidden
	}
}

// ensureGrouping keeps exactly one role link per subject and domain, so a
// role change in the token replaces the stored link.
func (s *ServiceImpl) ensureGrouping(subject string, roleName string, domain string) error {
	existing, err := s.enforcer.GetFilteredGroupingPolicy(0, subject, "", domain)
	if err != nil {
		return err
	}
	for _, rule := range existing {
		if len(rule) < 2 || rule[1] == roleName {
			continue
		}
		params := make([]interface{}, 0, len(rule))
		for _, value := range rule {
			params = append(params, value)
		}
		if _, err := s.enforcer.RemoveGroupingPolicy(params...); err != nil {
			return err
		}
	}

	has, err := s.enforcer.HasGroupingPolicy(subject, roleName, domain)
	if err != nil {
		return err
	}
	if has {
		return nil
	}
	_, err = s.enforcer.AddGroupingPolicy(subject, roleName, domain)
	return err
}

func (s *ServiceImpl) auditDecision(ctx context.Context, decision string, actorType string, actorID *string, object string, action string) {
	if s.auditSvc == nil {
		return
	}
	targetID := object
	err := s.auditSvc.AuditLog(ctx, actorType, actorID, decision, "authorization", &targetID, map[string]any{
		"object": object,
		"action": action,
	})
	if err != nil {
		s.log.Warn("failed to audit authorization decision", zap.String("decision", decision), zap.Error(err))
	}
}

func shouldAuditGrant(action string) bool {
	switch action {
	case ActionInvoiceVoid, ActionOrderPrice:
		return true
	default:
		return false
	}
}

// Policies returns the role permissions seeded at startup.
func Policies() [][]string {
	crud := []string{ActionView, ActionCreate, ActionUpdate, ActionDelete}
	grant := func(policies [][]string, role, object string, actions ...string) [][]string {
		for _, action := range actions {
			policies = append(policies, []string{role, object, action})
		}
		return policies
	}

	var policies [][]string

	// Admins manage everything inside their platform.
	for _, object := range []string{
		ObjectPlatform, ObjectUser, ObjectCountry, ObjectCity, ObjectCompany,
		ObjectBrand, ObjectWarehouse, ObjectZone, ObjectPricingTier, ObjectAsset,
		ObjectCollection, ObjectOrder, ObjectInvoice, ObjectAnalytics, ObjectAuditLog,
	} {
		policies = grant(policies, roleAdmin, object, crud...)
	}
	policies = grant(policies, roleAdmin, ObjectAsset, ActionAssetUpload)
	policies = grant(policies, roleAdmin, ObjectOrder, ActionOrderTransition, ActionOrderPrice)
	policies = grant(policies, roleAdmin, ObjectInvoice, ActionInvoiceGenerate, ActionInvoicePay, ActionInvoiceVoid)
	policies = grant(policies, roleAdmin, ObjectAnalytics, ActionAnalyticsExport)

	// Logistics staff run operations but do not administer pricing or users.
	for _, object := range []string{
		ObjectCountry, ObjectCity, ObjectBrand, ObjectWarehouse, ObjectZone,
		ObjectAsset, ObjectCollection, ObjectOrder,
	} {
		policies = grant(policies, roleLogistics, object, crud...)
	}
	policies = grant(policies, roleLogistics, ObjectCompany, ActionView, ActionCreate, ActionUpdate)
	policies = grant(policies, roleLogistics, ObjectPricingTier, ActionView)
	policies = grant(policies, roleLogistics, ObjectPlatform, ActionView)
	policies = grant(policies, roleLogistics, ObjectUser, ActionView)
	policies = grant(policies, roleLogistics, ObjectAsset, ActionAssetUpload)
	policies = grant(policies, roleLogistics, ObjectOrder, ActionOrderTransition, ActionOrderPrice)
	policies = grant(policies, roleLogistics, ObjectInvoice, ActionView, ActionInvoiceGenerate, ActionInvoicePay)
	policies = grant(policies, roleLogistics, ObjectAnalytics, ActionView, ActionAnalyticsExport)

	// Clients see catalogue data and run their own orders; services narrow
	// every read to the client's company.
	for _, object := range []string{
		ObjectPlatform, ObjectCountry, ObjectCity, ObjectCompany, ObjectBrand,
		ObjectAsset, ObjectCollection, ObjectInvoice, ObjectAnalytics,
	} {
		policies = grant(policies, roleClient, object, ActionView)
	}
	policies = grant(policies, roleClient, ObjectOrder, ActionView, ActionCreate, ActionUpdate, ActionOrderTransition)

	return policies
}

func seedPolicies(enforcer *casbin.SyncedEnforcer) error {
	for _, policy := range Policies() {
		if _, err := enforcer.AddPolicy(policy); err != nil {
			return err
		}
	}
	return nil
}
