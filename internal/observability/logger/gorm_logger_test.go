package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/smallbiznis/eventory/internal/platformctx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func TestDescribeSQL(t *testing.T) {
	cases := []struct {
		sql, op, table string
	}{
		{sql: `SELECT * FROM "orders" WHERE platform_id = $1`, op: "SELECT", table: "orders"},
		{sql: `INSERT INTO "invoices" ("id") VALUES ($1)`, op: "INSERT", table: "invoices"},
		{sql: `UPDATE "assets" SET available_quantity = available_quantity - $1`, op: "UPDATE", table: "assets"},
		{sql: ``, op: "UNKNOWN", table: ""},
	}
	for _, tc := range cases {
		op, table := describeSQL(tc.sql)
		assert.Equal(t, tc.op, op, tc.sql)
		assert.Equal(t, tc.table, table, tc.sql)
	}
}

func TestGormLoggerLevels(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewGormLogger(zap.New(core), GormLoggerConfig{Level: gormlogger.Warn, SlowThreshold: 50 * time.Millisecond})

	platformID := uuid.New()
	ctx := platformctx.WithPlatformID(context.Background(), platformID)
	query := func() (string, int64) { return `SELECT * FROM "orders"`, 3 }

	l.Trace(ctx, time.Now(), query, nil)
	assert.Zero(t, logs.Len(), "fast queries stay quiet at warn")

	l.Trace(ctx, time.Now(), query, gormlogger.ErrRecordNotFound)
	assert.Zero(t, logs.Len())

	l.Trace(ctx, time.Now().Add(-time.Second), query, nil)
	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, zapcore.WarnLevel, entry.Level)
	assert.Equal(t, true, entry.ContextMap()["slow"])
	assert.Equal(t, "orders", entry.ContextMap()["table"])
	assert.Equal(t, platformID.String(), entry.ContextMap()["platform_id"])

	l.Trace(ctx, time.Now(), query, errors.New("boom"))
	require.Equal(t, 2, logs.Len())
	assert.Equal(t, zapcore.ErrorLevel, logs.All()[1].Level)

	l.LogMode(gormlogger.Silent).Trace(ctx, time.Now(), query, errors.New("boom"))
	assert.Equal(t, 2, logs.Len())
}

func TestParseGormLevel(t *testing.T) {
	assert.Equal(t, gormlogger.Silent, ParseGormLevel("off"))
	assert.Equal(t, gormlogger.Info, ParseGormLevel("DEBUG"))
	assert.Equal(t, gormlogger.Error, ParseGormLevel("error"))
	assert.Equal(t, gormlogger.Warn, ParseGormLevel("nonsense"))
}
