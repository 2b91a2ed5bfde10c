package db

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestConnectRequiresDSN(t *testing.T) {
	_, err := Connect(context.Background(), Options{DSN: "   "})
	require.EqualError(t, err, "postgres dsn is required")
}

func TestOptionsDefaults(t *testing.T) {
	opts := Options{DSN: " postgres://dao ", MaxIdleConns: 50}.withDefaults()
	require.Equal(t, "postgres://dao", opts.DSN)
	require.Equal(t, DefaultMaxOpenConns, opts.MaxOpenConns)
	require.Equal(t, DefaultMaxOpenConns, opts.MaxIdleConns)
	require.Equal(t, DefaultConnMaxLifetime, opts.ConnMaxLifetime)
	require.Equal(t, DefaultPingTimeout, opts.PingTimeout)

	custom := Options{MaxOpenConns: 4, MaxIdleConns: 2, ConnMaxLifetime: time.Minute, PingTimeout: time.Second}.withDefaults()
	require.Equal(t, 4, custom.MaxOpenConns)
	require.Equal(t, 2, custom.MaxIdleConns)
	require.Equal(t, time.Minute, custom.ConnMaxLifetime)
	require.Equal(t, time.Second, custom.PingTimeout)
}

func TestCloseNil(t *testing.T) {
	var pg *Postgres
	require.NoError(t, pg.Close())
}
