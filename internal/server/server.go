package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/eventory/internal/analytics"
	analyticsdomain "github.com/smallbiznis/eventory/internal/analytics/domain"
	"github.com/smallbiznis/eventory/internal/asset"
	assetdomain "github.com/smallbiznis/eventory/internal/asset/domain"
	"github.com/smallbiznis/eventory/internal/audit"
	auditdomain "github.com/smallbiznis/eventory/internal/audit/domain"
	"github.com/smallbiznis/eventory/internal/auth"
	authdomain "github.com/smallbiznis/eventory/internal/auth/domain"
	"github.com/smallbiznis/eventory/internal/authorization"
	"github.com/smallbiznis/eventory/internal/brand"
	branddomain "github.com/smallbiznis/eventory/internal/brand/domain"
	"github.com/smallbiznis/eventory/internal/city"
	citydomain "github.com/smallbiznis/eventory/internal/city/domain"
	"github.com/smallbiznis/eventory/internal/company"
	companydomain "github.com/smallbiznis/eventory/internal/company/domain"
	"github.com/smallbiznis/eventory/internal/config"
	"github.com/smallbiznis/eventory/internal/country"
	countrydomain "github.com/smallbiznis/eventory/internal/country/domain"
	"github.com/smallbiznis/eventory/internal/invoice"
	invoicedomain "github.com/smallbiznis/eventory/internal/invoice/domain"
	"github.com/smallbiznis/eventory/internal/notification"
	notificationdomain "github.com/smallbiznis/eventory/internal/notification/domain"
	"github.com/smallbiznis/eventory/internal/observability"
	obslogger "github.com/smallbiznis/eventory/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/eventory/internal/observability/metrics"
	obstracing "github.com/smallbiznis/eventory/internal/observability/tracing"
	"github.com/smallbiznis/eventory/internal/order"
	orderdomain "github.com/smallbiznis/eventory/internal/order/domain"
	"github.com/smallbiznis/eventory/internal/platform"
	platformdomain "github.com/smallbiznis/eventory/internal/platform/domain"
	"github.com/smallbiznis/eventory/internal/pricingtier"
	pricingtierdomain "github.com/smallbiznis/eventory/internal/pricingtier/domain"
	"github.com/smallbiznis/eventory/internal/providers"
	"github.com/smallbiznis/eventory/internal/ratelimit"
	"github.com/smallbiznis/eventory/internal/user"
	userdomain "github.com/smallbiznis/eventory/internal/user/domain"
	"github.com/smallbiznis/eventory/internal/warehouse"
	warehousedomain "github.com/smallbiznis/eventory/internal/warehouse/domain"
	"github.com/smallbiznis/eventory/internal/zone"
	zonedomain "github.com/smallbiznis/eventory/internal/zone/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Services bundles every domain module the API and the worker share.
var Services = fx.Options(
	ratelimit.Module,
	providers.Module,
	authorization.Module,
	audit.Module,
	platform.Module,
	auth.Module,
	user.Module,
	country.Module,
	city.Module,
	company.Module,
	brand.Module,
	warehouse.Module,
	zone.Module,
	pricingtier.Module,
	asset.Module,
	order.Module,
	invoice.Module,
	notification.Module,
	analytics.Module,
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	registerValidators()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obslogger.GinMiddleware(obslogger.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	if !obsCfg.Debug() {
		gin.SetMode(gin.ReleaseMode)
	}
	return NewEngine(obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Info("http server listening", zap.String("addr", srv.Addr))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatal("http server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine          *gin.Engine
	cfg             config.Config
	log             *zap.Logger
	authzSvc        authorization.Service
	auditSvc        auditdomain.Service
	platformSvc     platformdomain.Service
	authSvc         authdomain.Service
	userSvc         userdomain.Service
	countrySvc      countrydomain.Service
	citySvc         citydomain.Service
	companySvc      companydomain.Service
	brandSvc        branddomain.Service
	warehouseSvc    warehousedomain.Service
	zoneSvc         zonedomain.Service
	pricingTierSvc  pricingtierdomain.Service
	assetSvc        assetdomain.Service
	collectionSvc   assetdomain.CollectionService
	orderSvc        orderdomain.Service
	invoiceSvc      invoicedomain.Service
	notificationSvc notificationdomain.Service
	analyticsSvc    analyticsdomain.Service
}

type ServerParams struct {
	fx.In

	Gin             *gin.Engine
	Cfg             config.Config
	Log             *zap.Logger
	AuthzSvc        authorization.Service
	AuditSvc        auditdomain.Service
	PlatformSvc     platformdomain.Service
	AuthSvc         authdomain.Service
	UserSvc         userdomain.Service
	CountrySvc      countrydomain.Service
	CitySvc         citydomain.Service
	CompanySvc      companydomain.Service
	BrandSvc        branddomain.Service
	WarehouseSvc    warehousedomain.Service
	ZoneSvc         zonedomain.Service
	PricingTierSvc  pricingtierdomain.Service
	AssetSvc        assetdomain.Service
	CollectionSvc   assetdomain.CollectionService
	OrderSvc        orderdomain.Service
	InvoiceSvc      invoicedomain.Service
	NotificationSvc notificationdomain.Service
	AnalyticsSvc    analyticsdomain.Service
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:          p.Gin,
		cfg:             p.Cfg,
		log:             p.Log.Named("http.server"),
		authzSvc:        p.AuthzSvc,
		auditSvc:        p.AuditSvc,
		platformSvc:     p.PlatformSvc,
		authSvc:         p.AuthSvc,
		userSvc:         p.UserSvc,
		countrySvc:      p.CountrySvc,
		citySvc:         p.CitySvc,
		companySvc:      p.CompanySvc,
		brandSvc:        p.BrandSvc,
		warehouseSvc:    p.WarehouseSvc,
		zoneSvc:         p.ZoneSvc,
		pricingTierSvc:  p.PricingTierSvc,
		assetSvc:        p.AssetSvc,
		collectionSvc:   p.CollectionSvc,
		orderSvc:        p.OrderSvc,
		invoiceSvc:      p.InvoiceSvc,
		notificationSvc: p.NotificationSvc,
		analyticsSvc:    p.AnalyticsSvc,
	}

	svc.registerAPIRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api/v1", s.PlatformContext())

	// -------- Auth --------
	authGroup := api.Group("/auth")
	authGroup.POST("/login", s.Login)
	authGroup.POST("/refresh", s.Refresh)
	authGroup.POST("/forgot-password", s.ForgotPassword)
	authGroup.POST("/reset-password", s.ResetPassword)
	authGroup.GET("/me", s.AuthRequired(), s.Me)
	authGroup.POST("/change-password", s.AuthRequired(), s.ChangePassword)

	protected := api.Group("", s.AuthRequired())

	// -------- Platform --------
	protected.GET("/platform", s.authorize(authorization.ObjectPlatform, authorization.ActionView), s.GetPlatform)
	protected.PATCH("/platform", s.authorize(authorization.ObjectPlatform, authorization.ActionUpdate), s.UpdatePlatform)

	// -------- Users --------
	protected.GET("/users", s.authorize(authorization.ObjectUser, authorization.ActionView), s.ListUsers)
	protected.POST("/users", s.authorize(authorization.ObjectUser, authorization.ActionCreate), s.CreateUser)
	protected.GET("/users/:id", s.authorize(authorization.ObjectUser, authorization.ActionView), s.GetUser)
	protected.PATCH("/users/:id", s.authorize(authorization.ObjectUser, authorization.ActionUpdate), s.UpdateUser)
	protected.DELETE("/users/:id", s.authorize(authorization.ObjectUser, authorization.ActionDelete), s.DeactivateUser)
	protected.POST("/users/:id/deactivate", s.authorize(authorization.ObjectUser, authorization.ActionUpdate), s.DeactivateUser)

	// -------- Locations --------
	protected.GET("/countries", s.authorize(authorization.ObjectCountry, authorization.ActionView), s.ListCountries)
	protected.POST("/countries", s.authorize(authorization.ObjectCountry, authorization.ActionCreate), s.CreateCountry)
	protected.GET("/countries/:id", s.authorize(authorization.ObjectCountry, authorization.ActionView), s.GetCountry)
	protected.PATCH("/countries/:id", s.authorize(authorization.ObjectCountry, authorization.ActionUpdate), s.UpdateCountry)
	protected.DELETE("/countries/:id", s.authorize(authorization.ObjectCountry, authorization.ActionDelete), s.DeleteCountry)
	protected.POST("/countries/:id/deactivate", s.authorize(authorization.ObjectCountry, authorization.ActionUpdate), s.DeactivateCountry)

	protected.GET("/cities", s.authorize(authorization.ObjectCity, authorization.ActionView), s.ListCities)
	protected.POST("/cities", s.authorize(authorization.ObjectCity, authorization.ActionCreate), s.CreateCity)
	protected.GET("/cities/:id", s.authorize(authorization.ObjectCity, authorization.ActionView), s.GetCity)
	protected.PATCH("/cities/:id", s.authorize(authorization.ObjectCity, authorization.ActionUpdate), s.UpdateCity)
	protected.DELETE("/cities/:id", s.authorize(authorization.ObjectCity, authorization.ActionDelete), s.DeleteCity)
	protected.POST("/cities/:id/deactivate", s.authorize(authorization.ObjectCity, authorization.ActionUpdate), s.DeactivateCity)

	// -------- Companies --------
	protected.GET("/companies", s.authorize(authorization.ObjectCompany, authorization.ActionView), s.ListCompanies)
	protected.POST("/companies", s.authorize(authorization.ObjectCompany, authorization.ActionCreate), s.CreateCompany)
	protected.GET("/companies/:id", s.authorize(authorization.ObjectCompany, authorization.ActionView), s.GetCompany)
	protected.PATCH("/companies/:id", s.authorize(authorization.ObjectCompany, authorization.ActionUpdate), s.UpdateCompany)
	protected.DELETE("/companies/:id", s.authorize(authorization.ObjectCompany, authorization.ActionDelete), s.DeleteCompany)
	protected.POST("/companies/:id/deactivate", s.authorize(authorization.ObjectCompany, authorization.ActionUpdate), s.DeactivateCompany)

	// -------- Catalogue --------
	protected.GET("/brands", s.authorize(authorization.ObjectBrand, authorization.ActionView), s.ListBrands)
	protected.POST("/brands", s.authorize(authorization.ObjectBrand, authorization.ActionCreate), s.CreateBrand)
	protected.GET("/brands/:id", s.authorize(authorization.ObjectBrand, authorization.ActionView), s.GetBrand)
	protected.PATCH("/brands/:id", s.authorize(authorization.ObjectBrand, authorization.ActionUpdate), s.UpdateBrand)
	protected.DELETE("/brands/:id", s.authorize(authorization.ObjectBrand, authorization.ActionDelete), s.DeleteBrand)

	protected.GET("/warehouses", s.authorize(authorization.ObjectWarehouse, authorization.ActionView), s.ListWarehouses)
	protected.POST("/warehouses", s.authorize(authorization.ObjectWarehouse, authorization.ActionCreate), s.CreateWarehouse)
	protected.GET("/warehouses/:id", s.authorize(authorization.ObjectWarehouse, authorization.ActionView), s.GetWarehouse)
	protected.PATCH("/warehouses/:id", s.authorize(authorization.ObjectWarehouse, authorization.ActionUpdate), s.UpdateWarehouse)
	protected.DELETE("/warehouses/:id", s.authorize(authorization.ObjectWarehouse, authorization.ActionDelete), s.DeleteWarehouse)

	protected.GET("/zones", s.authorize(authorization.ObjectZone, authorization.ActionView), s.ListZones)
	protected.POST("/zones", s.authorize(authorization.ObjectZone, authorization.ActionCreate), s.CreateZone)
	protected.GET("/zones/:id", s.authorize(authorization.ObjectZone, authorization.ActionView), s.GetZone)
	protected.PATCH("/zones/:id", s.authorize(authorization.ObjectZone, authorization.ActionUpdate), s.UpdateZone)
	protected.DELETE("/zones/:id", s.authorize(authorization.ObjectZone, authorization.ActionDelete), s.DeleteZone)

	// -------- Pricing tiers --------
	protected.GET("/pricing-tiers", s.authorize(authorization.ObjectPricingTier, authorization.ActionView), s.ListPricingTiers)
	protected.GET("/pricing-tiers/match", s.authorize(authorization.ObjectPricingTier, authorization.ActionView), s.MatchPricingTier)
	protected.POST("/pricing-tiers", s.authorize(authorization.ObjectPricingTier, authorization.ActionCreate), s.CreatePricingTier)
	protected.GET("/pricing-tiers/:id", s.authorize(authorization.ObjectPricingTier, authorization.ActionView), s.GetPricingTier)
	protected.PATCH("/pricing-tiers/:id", s.authorize(authorization.ObjectPricingTier, authorization.ActionUpdate), s.UpdatePricingTier)
	protected.DELETE("/pricing-tiers/:id", s.authorize(authorization.ObjectPricingTier, authorization.ActionDelete), s.DeletePricingTier)
	protected.POST("/pricing-tiers/:id/deactivate", s.authorize(authorization.ObjectPricingTier, authorization.ActionUpdate), s.DeactivatePricingTier)

	// -------- Inventory --------
	protected.GET("/assets", s.authorize(authorization.ObjectAsset, authorization.ActionView), s.ListAssets)
	protected.POST("/assets", s.authorize(authorization.ObjectAsset, authorization.ActionCreate), s.CreateAsset)
	protected.GET("/assets/:id", s.authorize(authorization.ObjectAsset, authorization.ActionView), s.GetAsset)
	protected.PATCH("/assets/:id", s.authorize(authorization.ObjectAsset, authorization.ActionUpdate), s.UpdateAsset)
	protected.DELETE("/assets/:id", s.authorize(authorization.ObjectAsset, authorization.ActionDelete), s.DeactivateAsset)
	protected.POST("/assets/:id/image", s.authorize(authorization.ObjectAsset, authorization.ActionAssetUpload), s.UploadAssetImage)

	protected.GET("/collections", s.authorize(authorization.ObjectCollection, authorization.ActionView), s.ListCollections)
	protected.POST("/collections", s.authorize(authorization.ObjectCollection, authorization.ActionCreate), s.CreateCollection)
	protected.GET("/collections/:id", s.authorize(authorization.ObjectCollection, authorization.ActionView), s.GetCollection)
	protected.PATCH("/collections/:id", s.authorize(authorization.ObjectCollection, authorization.ActionUpdate), s.UpdateCollection)
	protected.PUT("/collections/:id/items", s.authorize(authorization.ObjectCollection, authorization.ActionUpdate), s.ReplaceCollectionItems)
	protected.DELETE("/collections/:id", s.authorize(authorization.ObjectCollection, authorization.ActionDelete), s.DeleteCollection)

	// -------- Orders --------
	protected.GET("/orders", s.authorize(authorization.ObjectOrder, authorization.ActionView), s.ListOrders)
	protected.POST("/orders", s.authorize(authorization.ObjectOrder, authorization.ActionCreate), s.CreateOrder)
	protected.GET("/orders/:id", s.authorize(authorization.ObjectOrder, authorization.ActionView), s.GetOrder)
	protected.PATCH("/orders/:id", s.authorize(authorization.ObjectOrder, authorization.ActionUpdate), s.UpdateOrder)
	protected.GET("/orders/:id/history", s.authorize(authorization.ObjectOrder, authorization.ActionView), s.GetOrderHistory)
	protected.POST("/orders/:id/items", s.authorize(authorization.ObjectOrder, authorization.ActionUpdate), s.AddOrderItem)
	protected.PATCH("/orders/:id/items/:itemId", s.authorize(authorization.ObjectOrder, authorization.ActionUpdate), s.AdjustOrderItem)
	protected.DELETE("/orders/:id/items/:itemId", s.authorize(authorization.ObjectOrder, authorization.ActionUpdate), s.RemoveOrderItem)
	protected.POST("/orders/:id/submit", s.authorize(authorization.ObjectOrder, authorization.ActionOrderTransition), s.SubmitOrder)
	protected.POST("/orders/:id/pricing", s.authorize(authorization.ObjectOrder, authorization.ActionOrderPrice), s.OverrideOrderPricing)
	protected.POST("/orders/:id/status", s.authorize(authorization.ObjectOrder, authorization.ActionOrderTransition), s.TransitionOrder)

	// -------- Invoices --------
	protected.GET("/invoices", s.authorize(authorization.ObjectInvoice, authorization.ActionView), s.ListInvoices)
	protected.POST("/invoices", s.authorize(authorization.ObjectInvoice, authorization.ActionInvoiceGenerate), s.GenerateInvoice)
	protected.GET("/invoices/:id", s.authorize(authorization.ObjectInvoice, authorization.ActionView), s.GetInvoice)
	protected.GET("/invoices/:id/pdf", s.authorize(authorization.ObjectInvoice, authorization.ActionView), s.DownloadInvoicePDF)
	protected.POST("/invoices/:id/pay", s.authorize(authorization.ObjectInvoice, authorization.ActionInvoicePay), s.MarkInvoicePaid)
	protected.POST("/invoices/:id/void", s.authorize(authorization.ObjectInvoice, authorization.ActionInvoiceVoid), s.VoidInvoice)

	// -------- Notifications --------
	// Every user reads their own inbox, so no role gate applies.
	protected.GET("/notifications", s.ListNotifications)
	protected.POST("/notifications/read-all", s.MarkAllNotificationsRead)
	protected.POST("/notifications/:id/read", s.MarkNotificationRead)

	// -------- Analytics --------
	protected.GET("/analytics/summary", s.authorize(authorization.ObjectAnalytics, authorization.ActionView), s.AnalyticsSummary)
	protected.GET("/analytics/timeseries", s.authorize(authorization.ObjectAnalytics, authorization.ActionView), s.AnalyticsTimeSeries)
	protected.GET("/analytics/top-companies", s.authorize(authorization.ObjectAnalytics, authorization.ActionView), s.AnalyticsTopCompanies)
	protected.GET("/analytics/export", s.authorize(authorization.ObjectAnalytics, authorization.ActionAnalyticsExport), s.AnalyticsExport)

	// -------- Audit --------
	protected.GET("/audit-logs", s.authorize(authorization.ObjectAuditLog, authorization.ActionView), s.ListAuditLogs)
}
