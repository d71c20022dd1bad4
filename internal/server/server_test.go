package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	auditdomain "github.com/smallbiznis/eventory/internal/audit/domain"
	auditrepo "github.com/smallbiznis/eventory/internal/audit/repository"
	auditservice "github.com/smallbiznis/eventory/internal/audit/service"
	authdomain "github.com/smallbiznis/eventory/internal/auth/domain"
	"github.com/smallbiznis/eventory/internal/auth/token"
	"github.com/smallbiznis/eventory/internal/authorization"
	countrydomain "github.com/smallbiznis/eventory/internal/country/domain"
	countryrepo "github.com/smallbiznis/eventory/internal/country/repository"
	countryservice "github.com/smallbiznis/eventory/internal/country/service"
	invoicedomain "github.com/smallbiznis/eventory/internal/invoice/domain"
	"github.com/smallbiznis/eventory/internal/observability"
	obsmetrics "github.com/smallbiznis/eventory/internal/observability/metrics"
	orderdomain "github.com/smallbiznis/eventory/internal/order/domain"
	platformdomain "github.com/smallbiznis/eventory/internal/platform/domain"
	"github.com/smallbiznis/eventory/internal/platformctx"
	pricingtierdomain "github.com/smallbiznis/eventory/internal/pricingtier/domain"
	"github.com/smallbiznis/eventory/pkg/db"
	"github.com/smallbiznis/eventory/pkg/db/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

type fakePlatforms struct {
	platformdomain.Service
	bySlug map[string]*platformdomain.Platform
}

func (f *fakePlatforms) Resolve(ctx context.Context, key string) (*platformdomain.Platform, error) {
	if key == "" {
		return nil, platformdomain.ErrInvalidPlatform
	}
	if platform, ok := f.bySlug[key]; ok {
		return platform, nil
	}
	return nil, platformdomain.ErrNotFound
}

// fakeAuth maps raw bearer tokens to subjects and enforces the platform match
// the real service performs.
type fakeAuth struct {
	authdomain.Service
	tokens map[string]token.Subject
}

func (f *fakeAuth) Authenticate(ctx context.Context, raw string) (*token.Subject, error) {
	subject, ok := f.tokens[raw]
	if !ok {
		return nil, authdomain.ErrUnauthenticated
	}
	platformID, _ := platformctx.PlatformIDFromContext(ctx)
	if subject.PlatformID != platformID {
		return nil, authdomain.ErrPlatformMismatch
	}
	return &subject, nil
}

type fakeTiers struct {
	pricingtierdomain.Service
	created int
}

func (f *fakeTiers) Create(ctx context.Context, req pricingtierdomain.CreateRequest) (*pricingtierdomain.PricingTier, error) {
	f.created++
	if f.created > 1 {
		return nil, pricingtierdomain.ErrTierOverlap
	}
	return &pricingtierdomain.PricingTier{ID: uuid.New(), BasePrice: *req.BasePrice}, nil
}

type fakeInvoices struct {
	invoicedomain.Service
}

func (fakeInvoices) RenderPDF(ctx context.Context, id string) (*invoicedomain.Document, error) {
	if id == "missing" {
		return nil, invoicedomain.ErrNotFound
	}
	return &invoicedomain.Document{FileName: "INV-2026-0001.pdf", ContentType: "application/pdf", Body: []byte("%PDF-1.4")}, nil
}

type harness struct {
	t        *testing.T
	engine   *gin.Engine
	conn     *gorm.DB
	platform *platformdomain.Platform
	tiers    *fakeTiers
}

const (
	adminToken      = "admin-token"
	clientToken     = "client-token"
	foreignToken    = "foreign-token"
	platformSlug    = "acme-events"
	unknownPlatform = "nobody"
)

func newHarness(t *testing.T) *harness {
	t.Helper()
	gin.SetMode(gin.TestMode)

	conn, err := db.NewTest(&countrydomain.Country{}, &auditdomain.AuditLog{})
	require.NoError(t, err)
	enforcer, err := authorization.NewEnforcer(conn)
	require.NoError(t, err)

	log := zaptest.NewLogger(t)
	platform := &platformdomain.Platform{ID: uuid.New(), Slug: platformSlug, Name: "Acme Events", IsActive: true}
	companyID := uuid.New()

	auditSvc := auditservice.NewService(auditservice.Params{DB: conn, Log: log, Repo: auditrepo.Provide()})
	tiers := &fakeTiers{}

	engine := NewEngine(observability.Config{ServiceName: "eventory-test"}, obsmetrics.NewHTTPMetrics(obsmetrics.Config{ServiceName: "eventory-test"}))
	NewServer(ServerParams{
		Gin:         engine,
		Log:         log,
		AuthzSvc:    authorization.NewService(authorization.Params{DB: conn, Log: log, Enforcer: enforcer}),
		AuditSvc:    auditSvc,
		PlatformSvc: &fakePlatforms{bySlug: map[string]*platformdomain.Platform{platformSlug: platform}},
		AuthSvc: &fakeAuth{tokens: map[string]token.Subject{
			adminToken:   {UserID: uuid.New(), Email: "admin@acme.test", Role: platformctx.RoleAdmin, PlatformID: platform.ID},
			clientToken:  {UserID: uuid.New(), Email: "buyer@client.test", Role: platformctx.RoleClient, CompanyID: &companyID, PlatformID: platform.ID},
			foreignToken: {UserID: uuid.New(), Email: "admin@other.test", Role: platformctx.RoleAdmin, PlatformID: uuid.New()},
		}},
		CountrySvc:     countryservice.New(countryservice.Params{DB: conn, Log: log, Repo: countryrepo.Provide()}),
		PricingTierSvc: tiers,
		InvoiceSvc:     fakeInvoices{},
	})

	return &harness{t: t, engine: engine, conn: conn, platform: platform, tiers: tiers}
}

func (h *harness) do(method, path, platform, bearer string, body any) *httptest.ResponseRecorder {
	h.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(h.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if platform != "" {
		req.Header.Set(HeaderPlatform, platform)
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	h.engine.ServeHTTP(rec, req)
	return rec
}

type testEnvelope struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Data    json.RawMessage   `json:"data"`
	Meta    *pagination.Meta  `json:"meta"`
	Errors  []ValidationError `json:"errors"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) testEnvelope {
	t.Helper()
	var out testEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestPlatformHeaderIsRequired(t *testing.T) {
	h := newHarness(t)

	rec := h.do(http.MethodGet, "/api/v1/countries", "", adminToken, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode(t, rec)
	assert.False(t, body.Success)
	assert.Equal(t, ErrPlatformRequired.Error(), body.Message)

	rec = h.do(http.MethodGet, "/api/v1/countries", unknownPlatform, adminToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// health stays outside tenancy
	rec = h.do(http.MethodGet, "/health", "", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestBearerTokenChecks(t *testing.T) {
	h := newHarness(t)

	rec := h.do(http.MethodGet, "/api/v1/countries", platformSlug, "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = h.do(http.MethodGet, "/api/v1/countries", platformSlug, "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = h.do(http.MethodGet, "/api/v1/countries", platformSlug, foreignToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, authdomain.ErrPlatformMismatch.Error(), decode(t, rec).Message)
}

func TestCountryLifecycleOverHTTP(t *testing.T) {
	h := newHarness(t)

	rec := h.do(http.MethodPost, "/api/v1/countries", platformSlug, adminToken, map[string]any{"name": "United Arab Emirates", "iso_code": "ae"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode(t, rec)
	assert.True(t, created.Success)
	var country countrydomain.Country
	require.NoError(t, json.Unmarshal(created.Data, &country))
	assert.Equal(t, "AE", country.ISOCode)

	rec = h.do(http.MethodPost, "/api/v1/countries", platformSlug, adminToken, map[string]any{"name": "Emirates", "iso_code": "AE"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, countrydomain.ErrISOCodeExists.Error(), decode(t, rec).Message)

	rec = h.do(http.MethodGet, "/api/v1/countries?page=1&limit=5&sort_order=asc", platformSlug, clientToken, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	list := decode(t, rec)
	require.NotNil(t, list.Meta)
	assert.EqualValues(t, 1, list.Meta.Total)

	path := "/api/v1/countries/" + country.ID.String()
	rec = h.do(http.MethodPost, path+"/deactivate", platformSlug, adminToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = h.do(http.MethodPost, path+"/deactivate", platformSlug, adminToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = h.do(http.MethodDelete, path, platformSlug, adminToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = h.do(http.MethodDelete, path, platformSlug, adminToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var audited int64
	require.NoError(t, h.conn.Model(&auditdomain.AuditLog{}).Where("action = ?", "country.delete").Count(&audited).Error)
	assert.EqualValues(t, 1, audited)
}

func TestValidationErrorsNameFields(t *testing.T) {
	h := newHarness(t)

	rec := h.do(http.MethodPost, "/api/v1/countries", platformSlug, adminToken, map[string]any{"name": "Nowhere", "iso_code": "X1"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode(t, rec)
	require.Len(t, body.Errors, 1)
	assert.Equal(t, "iso_code", body.Errors[0].Field)
	assert.Equal(t, "iso2", body.Errors[0].Code)

	rec = h.do(http.MethodGet, "/api/v1/countries?sort_order=sideways", platformSlug, adminToken, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "sort_order", decode(t, rec).Errors[0].Field)
}

func TestPricingTierWithoutBasePriceIsRejected(t *testing.T) {
	h := newHarness(t)

	rec := h.do(http.MethodPost, "/api/v1/pricing-tiers", platformSlug, adminToken, map[string]any{
		"country_id": uuid.NewString(),
		"city_id":    uuid.NewString(),
		"volume_min": "0",
		"volume_max": "10",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode(t, rec)
	require.Len(t, body.Errors, 1)
	assert.Equal(t, "base_price", body.Errors[0].Field)
	assert.Equal(t, "required", body.Errors[0].Code)
	assert.Zero(t, h.tiers.created)
}

func TestRoleGates(t *testing.T) {
	h := newHarness(t)
	tier := map[string]any{
		"country_id": uuid.NewString(),
		"city_id":    uuid.NewString(),
		"volume_min": "0",
		"volume_max": "10",
		"base_price": "1500",
	}

	rec := h.do(http.MethodPost, "/api/v1/pricing-tiers", platformSlug, clientToken, tier)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Zero(t, h.tiers.created)

	rec = h.do(http.MethodPost, "/api/v1/pricing-tiers", platformSlug, adminToken, tier)
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = h.do(http.MethodPost, "/api/v1/pricing-tiers", platformSlug, adminToken, tier)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, pricingtierdomain.ErrTierOverlap.Error(), decode(t, rec).Message)
}

func TestInvoicePDFStreamsAttachment(t *testing.T) {
	h := newHarness(t)

	rec := h.do(http.MethodGet, "/api/v1/invoices/"+uuid.NewString()+"/pdf", platformSlug, adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="INV-2026-0001.pdf"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "%PDF-1.4", rec.Body.String())

	rec = h.do(http.MethodGet, "/api/v1/invoices/missing/pdf", platformSlug, adminToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMapErrorStatuses(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{authdomain.ErrInvalidCredentials, http.StatusUnauthorized},
		{authdomain.ErrInactiveUser, http.StatusForbidden},
		{authdomain.ErrUserNotFound, http.StatusNotFound},
		{authdomain.ErrTooManyAttempts, http.StatusTooManyRequests},
		{authorization.ErrForbidden, http.StatusForbidden},
		{pricingtierdomain.ErrTierOverlap, http.StatusConflict},
		{pricingtierdomain.ErrNoMatchingTier, http.StatusNotFound},
		{orderdomain.ErrInvalidTransition, http.StatusConflict},
		{orderdomain.ErrConcurrentUpdate, http.StatusConflict},
		{invoicedomain.ErrAlreadyInvoiced, http.StatusConflict},
		{countrydomain.ErrInvalidISOCode, http.StatusBadRequest},
		{errors.Join(errors.New("tx"), countrydomain.ErrNotFound), http.StatusNotFound},
		{errors.New("pq: connection refused"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.err.Error(), func(t *testing.T) {
			status, payload := mapError(tc.err)
			assert.Equal(t, tc.status, status)
			assert.False(t, payload.Success)
			if status == http.StatusInternalServerError {
				assert.Equal(t, "internal server error", payload.Message)
			}
		})
	}
}

func TestBearerTokenParsing(t *testing.T) {
	raw, ok := bearerToken("Bearer abc.def")
	assert.True(t, ok)
	assert.Equal(t, "abc.def", raw)

	raw, ok = bearerToken("bearer   xyz ")
	assert.True(t, ok)
	assert.Equal(t, "xyz", raw)

	_, ok = bearerToken("Basic abc")
	assert.False(t, ok)
	_, ok = bearerToken("Bearer ")
	assert.False(t, ok)
}

func TestParseOptionalTime(t *testing.T) {
	start, err := parseOptionalTime("2026-03-01", false)
	require.NoError(t, err)
	assert.Equal(t, 0, start.Hour())

	end, err := parseOptionalTime("2026-03-01", true)
	require.NoError(t, err)
	assert.Equal(t, 23, end.Hour())
	assert.Equal(t, 999999999, end.Nanosecond())

	none, err := parseOptionalTime(" ", false)
	require.NoError(t, err)
	assert.Nil(t, none)

	_, err = parseOptionalTime("03/01/2026", false)
	assert.Error(t, err)
}
