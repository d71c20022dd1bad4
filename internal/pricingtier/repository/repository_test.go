package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/eventory/internal/pricingtier/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	conn, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)
	return conn, mock
}

func TestInsertWritesNullBoundsForUnboundedBand(t *testing.T) {
	conn, mock := newMockDB(t)
	now := time.Now().UTC()
	min := decimal.NewFromInt(20)
	tier := &domain.PricingTier{
		ID:         uuid.New(),
		PlatformID: uuid.New(),
		CountryID:  uuid.New(),
		CityID:     uuid.New(),
		VolumeMin:  &min,
		BasePrice:  decimal.RequireFromString("2500.00"),
		Currency:   "AED",
		IsActive:   true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO pricing_tiers")).
		WithArgs(tier.ID, tier.PlatformID, tier.CountryID, tier.CityID, "20", nil, "2500", "AED", true, now, now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, Provide().Insert(context.Background(), conn, tier))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertSurfacesUniqueViolation(t *testing.T) {
	conn, mock := newMockDB(t)
	now := time.Now().UTC()
	tier := &domain.PricingTier{ID: uuid.New(), PlatformID: uuid.New(), CountryID: uuid.New(), CityID: uuid.New(), Currency: "AED", CreatedAt: now, UpdatedAt: now}

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO pricing_tiers")).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "pricing_tiers_pkey"})

	err := Provide().Insert(context.Background(), conn, tier)
	var pgErr *pgconn.PgError
	require.ErrorAs(t, err, &pgErr)
	assert.Equal(t, "pricing_tiers_pkey", pgErr.ConstraintName)
}

func TestListActiveForLocationScopesQuery(t *testing.T) {
	conn, mock := newMockDB(t)
	platformID, countryID, cityID := uuid.New(), uuid.New(), uuid.New()

	rows := sqlmock.NewRows([]string{"id", "platform_id", "country_id", "city_id", "volume_min", "volume_max", "base_price", "currency", "is_active"}).
		AddRow(uuid.NewString(), platformID.String(), countryID.String(), cityID.String(), "0", "10", "1000", "AED", true)

	mock.ExpectQuery(`SELECT \* FROM "pricing_tiers" WHERE \(platform_id = \$1 AND country_id = \$2 AND city_id = \$3 AND is_active = \$4\) AND "pricing_tiers"."deleted_at" IS NULL ORDER BY volume_min ASC`).
		WithArgs(platformID, countryID, cityID, true).
		WillReturnRows(rows)

	items, err := Provide().ListActiveForLocation(context.Background(), conn, platformID, countryID, cityID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "10", items[0].VolumeMax.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLockLocationTakesRowLockOnCity(t *testing.T) {
	conn, mock := newMockDB(t)
	platformID, countryID, cityID := uuid.New(), uuid.New(), uuid.New()

	mock.ExpectQuery(`SELECT id FROM "cities" WHERE \(platform_id = \$1 AND country_id = \$2 AND id = \$3 AND deleted_at IS NULL\) LIMIT .+ FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(cityID.String()))

	require.NoError(t, Provide().LockLocation(context.Background(), conn, platformID, countryID, cityID))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLockLocationMissingCity(t *testing.T) {
	conn, mock := newMockDB(t)

	mock.ExpectQuery(`SELECT id FROM "cities" .+ FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	err := Provide().LockLocation(context.Background(), conn, uuid.New(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, domain.ErrInvalidLocation)
	assert.NoError(t, mock.ExpectationsWereMet())
}
