package db

import (
	"path/filepath"
	"strings"
	"testing"

	obslogger "github.com/smallbiznis/salesdesk/internal/observability/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap"
)

func TestNewClosesPoolOnStop(t *testing.T) {
	lc := fxtest.NewLifecycle(t)
	cfg := Config{
		Type:        TypeSQLite,
		Name:        "salesdesk_test",
		Path:        filepath.Join(t.TempDir(), "salesdesk.db"),
		MaxOpenConn: 2,
	}

	conn, err := New(lc, cfg, obslogger.DefaultGormLoggerConfig(), zap.NewNop())
	if err != nil && strings.Contains(err.Error(), "CGO_ENABLED=0") {
		t.Skip("sqlite driver needs cgo")
	}
	require.NoError(t, err)

	sqlDB, err := conn.DB()
	require.NoError(t, err)
	assert.Equal(t, 2, sqlDB.Stats().MaxOpenConnections)

	lc.RequireStart()
	require.NoError(t, sqlDB.Ping())

	lc.RequireStop()
	assert.Error(t, sqlDB.Ping())
}

func TestNewRejectsUnknownDialect(t *testing.T) {
	_, err := New(fxtest.NewLifecycle(t), Config{Type: "oracle"}, obslogger.DefaultGormLoggerConfig(), zap.NewNop())
	assert.EqualError(t, err, "unsupported oracle type")
}
