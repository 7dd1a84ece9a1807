package database

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/moatscreen/pkg/config"
)

// openTestDB connects to DATABASE_URL or skips
func openTestDB(t *testing.T) *DB {
	t.Helper()
	if os.Getenv("DATABASE_URL") == "" || testing.Short() {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}

	cfg, err := config.Load()
	require.NoError(t, err)
	db, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(db.Close)
	return db
}

func TestNewDisabled(t *testing.T) {
	db, err := New(&config.Config{})
	assert.Nil(t, db)
	assert.ErrorIs(t, err, ErrDisabled)
}

func TestNewWithInvalidURL(t *testing.T) {
	_, err := New(&config.Config{Database: config.DatabaseConfig{URL: "invalid://url"}})
	assert.Error(t, err)
	assert.False(t, errors.Is(err, ErrDisabled))
}

func TestPoolConfigFrom(t *testing.T) {
	tests := []struct {
		name    string
		dc      config.DatabaseConfig
		wantMax int32
		wantMin int32
	}{
		{
			name:    "explicit pool sizes",
			dc:      config.DatabaseConfig{URL: "postgres://u:p@localhost:5432/db", MaxConns: 10, MinConns: 2, MaxConnLifetime: time.Hour},
			wantMax: 10,
			wantMin: 2,
		},
		{
			// min > max 는 무시
			name:    "min above max ignored",
			dc:      config.DatabaseConfig{URL: "postgres://u:p@localhost:5432/db?pool_max_conns=4", MaxConns: 0, MinConns: 8},
			wantMax: 4,
			wantMin: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pc, err := poolConfigFrom(tt.dc)
			require.NoError(t, err)
			assert.Equal(t, tt.wantMax, pc.MaxConns)
			assert.Equal(t, tt.wantMin, pc.MinConns)
			if tt.dc.MaxConnLifetime > 0 {
				assert.Equal(t, tt.dc.MaxConnLifetime, pc.MaxConnLifetime)
			}
		})
	}

	_, err := poolConfigFrom(config.DatabaseConfig{URL: "postgres://%zz"})
	assert.Error(t, err)
}

func TestCloseNil(t *testing.T) {
	var db *DB
	assert.NotPanics(t, db.Close)
	assert.NotPanics(t, (&DB{}).Close)
}

func TestHealthCheck(t *testing.T) {
	db := openTestDB(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	status, err := db.HealthCheck(ctx)
	require.NoError(t, err)
	assert.True(t, status.Healthy)
	assert.Greater(t, status.Stats.MaxConns, int32(0))
	assert.Empty(t, status.Error)
}

func TestWithTxRollback(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	sentinel := errors.New("abort")
	err := db.WithTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, "CREATE TEMP TABLE tx_probe (id int)"); err != nil {
			return err
		}
		return sentinel
	})
	require.ErrorIs(t, err, sentinel)

	// 롤백되었으면 임시 테이블 없음
	var exists bool
	require.NoError(t, db.Pool.QueryRow(ctx, "SELECT to_regclass('pg_temp.tx_probe') IS NOT NULL").Scan(&exists))
	assert.False(t, exists)
}

func TestExecScript(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.Exec(ctx, "SELECT 1; SELECT 2;"))
	assert.Error(t, db.Exec(ctx, "SELEKT"))
}
