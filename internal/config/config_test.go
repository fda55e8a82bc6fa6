package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/shopledger")
	t.Setenv("JWT_SECRET", "dev-secret")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.HTTP.Port)
	assert.Equal(t, int32(25), cfg.Database.MaxConns)
	assert.Equal(t, 15*24*time.Hour, cfg.Worker.OverdueAfter)
	assert.Equal(t, 5*time.Second, cfg.Worker.RelayInterval)
	assert.True(t, cfg.Log.Development)
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://db/shopledger")
	t.Setenv("JWT_SECRET", "dev-secret")
	t.Setenv("APP_PORT", "9090")
	t.Setenv("WORKER_INTERVAL", "1h")
	t.Setenv("DB_MAX_CONNS", "not-a-number")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.HTTP.Port)
	assert.Equal(t, time.Hour, cfg.Worker.Interval)
	assert.Equal(t, int32(25), cfg.Database.MaxConns)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "missing database",
			env:     map[string]string{"JWT_SECRET": "x"},
			wantErr: "DATABASE_URL",
		},
		{
			name:    "missing secret",
			env:     map[string]string{"DATABASE_URL": "postgres://x"},
			wantErr: "JWT_SECRET is required",
		},
		{
			name: "short production secret",
			env: map[string]string{
				"DATABASE_URL": "postgres://x",
				"JWT_SECRET":   "short",
				"APP_ENV":      "production",
			},
			wantErr: "at least 32",
		},
		{
			name: "zero relay interval",
			env: map[string]string{
				"DATABASE_URL":          "postgres://x",
				"JWT_SECRET":            "x",
				"WORKER_RELAY_INTERVAL": "0s",
			},
			wantErr: "WORKER_RELAY_INTERVAL",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("DATABASE_URL", "")
			t.Setenv("JWT_SECRET", "")
			t.Setenv("APP_ENV", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := FromEnv()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
