package config

import (
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configEnvKeys = []string{
	"OILMILL_APP_NAME",
	"OILMILL_APP_ENV",
	"OILMILL_APP_PORT",
	"OILMILL_DATABASE_HOST",
	"OILMILL_DATABASE_PORT",
	"OILMILL_DATABASE_USER",
	"OILMILL_DATABASE_PASSWORD",
	"OILMILL_DATABASE_DBNAME",
	"OILMILL_DATABASE_SSLMODE",
	"OILMILL_DATABASE_MAX_OPEN_CONNS",
	"OILMILL_DATABASE_MAX_IDLE_CONNS",
	"OILMILL_JWT_ENABLED",
	"OILMILL_JWT_SECRET",
	"OILMILL_PRODUCTION_UNIT_CODE",
	"OILMILL_PRODUCTION_DEFAULT_CAKE_RATE",
	"OILMILL_PRODUCTION_COST_VALIDATION_DAYS",
	"OILMILL_IDEMPOTENCY_ENABLED",
	"OILMILL_IDEMPOTENCY_TTL",
	"OILMILL_TELEMETRY_SAMPLING_RATIO",
}

// clearConfigEnv unsets every key the tests touch and restores them afterwards
func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, k := range configEnvKeys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoad(t *testing.T) {
	t.Run("loads default values when env vars not set", func(t *testing.T) {
		clearConfigEnv(t)

		cfg, err := fromViper(viper.New())
		require.NoError(t, err)

		assert.Equal(t, "oilmill-backend", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "postgres", cfg.Database.User)
		assert.Equal(t, "", cfg.Database.Password)
		assert.Equal(t, "oilmill", cfg.Database.DBName)
		assert.Equal(t, "disable", cfg.Database.SSLMode)
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
		assert.Equal(t, 5, cfg.Database.MaxIdleConns)
		assert.Equal(t, "PUV", cfg.Production.UnitCode)
		assert.Equal(t, 30, cfg.Production.CostValidationDays)
		assert.True(t, cfg.Production.DefaultCakeRate.IsZero())
		assert.True(t, cfg.Idempotency.Enabled)
		assert.Equal(t, 24*time.Hour, cfg.Idempotency.TTL)
		assert.Equal(t, time.Minute, cfg.Idempotency.InFlightTTL)
		assert.False(t, cfg.JWT.Enabled)
		assert.False(t, cfg.Redis.Enabled)
	})

	t.Run("loads values from environment variables with OILMILL prefix", func(t *testing.T) {
		clearConfigEnv(t)
		t.Setenv("OILMILL_APP_NAME", "test-app")
		t.Setenv("OILMILL_APP_ENV", "testing")
		t.Setenv("OILMILL_APP_PORT", "9000")
		t.Setenv("OILMILL_DATABASE_HOST", "testdb.local")
		t.Setenv("OILMILL_DATABASE_PORT", "5433")
		t.Setenv("OILMILL_DATABASE_USER", "testuser")
		t.Setenv("OILMILL_DATABASE_PASSWORD", "testpass")
		t.Setenv("OILMILL_DATABASE_DBNAME", "testdb")
		t.Setenv("OILMILL_DATABASE_SSLMODE", "require")
		t.Setenv("OILMILL_DATABASE_MAX_OPEN_CONNS", "50")
		t.Setenv("OILMILL_DATABASE_MAX_IDLE_CONNS", "10")
		t.Setenv("OILMILL_PRODUCTION_UNIT_CODE", "abc")
		t.Setenv("OILMILL_PRODUCTION_DEFAULT_CAKE_RATE", "12.50")
		t.Setenv("OILMILL_IDEMPOTENCY_ENABLED", "false")
		t.Setenv("OILMILL_IDEMPOTENCY_TTL", "2h")

		cfg, err := fromViper(viper.New())
		require.NoError(t, err)

		assert.Equal(t, "test-app", cfg.App.Name)
		assert.Equal(t, "testing", cfg.App.Env)
		assert.Equal(t, "9000", cfg.App.Port)
		assert.Equal(t, "testdb.local", cfg.Database.Host)
		assert.Equal(t, 5433, cfg.Database.Port)
		assert.Equal(t, "testuser", cfg.Database.User)
		assert.Equal(t, "testpass", cfg.Database.Password)
		assert.Equal(t, "testdb", cfg.Database.DBName)
		assert.Equal(t, "require", cfg.Database.SSLMode)
		assert.Equal(t, 50, cfg.Database.MaxOpenConns)
		assert.Equal(t, 10, cfg.Database.MaxIdleConns)
		assert.Equal(t, "ABC", cfg.Production.UnitCode)
		assert.True(t, decimal.RequireFromString("12.5").Equal(cfg.Production.DefaultCakeRate))
		assert.False(t, cfg.Idempotency.Enabled)
		assert.Equal(t, 2*time.Hour, cfg.Idempotency.TTL)
	})

	t.Run("validates MaxIdleConns cannot exceed MaxOpenConns", func(t *testing.T) {
		clearConfigEnv(t)
		t.Setenv("OILMILL_DATABASE_MAX_OPEN_CONNS", "10")
		t.Setenv("OILMILL_DATABASE_MAX_IDLE_CONNS", "20")

		_, err := fromViper(viper.New())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "max_idle_conns")
		assert.Contains(t, err.Error(), "cannot exceed")
	})

	t.Run("zero MaxOpenConns uses default", func(t *testing.T) {
		clearConfigEnv(t)
		t.Setenv("OILMILL_DATABASE_MAX_OPEN_CONNS", "0")

		cfg, err := fromViper(viper.New())
		require.NoError(t, err)
		// 0 is treated as "not set", so default (25) is used
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
	})

	t.Run("validates MaxIdleConns cannot be negative", func(t *testing.T) {
		clearConfigEnv(t)
		t.Setenv("OILMILL_DATABASE_MAX_IDLE_CONNS", "-1")

		_, err := fromViper(viper.New())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "max_idle_conns cannot be negative")
	})

	t.Run("rejects malformed default rate", func(t *testing.T) {
		clearConfigEnv(t)
		t.Setenv("OILMILL_PRODUCTION_DEFAULT_CAKE_RATE", "twelve")

		_, err := fromViper(viper.New())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "production.default_cake_rate")
	})

	t.Run("rejects negative default rate", func(t *testing.T) {
		clearConfigEnv(t)
		t.Setenv("OILMILL_PRODUCTION_DEFAULT_CAKE_RATE", "-1")

		_, err := fromViper(viper.New())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot be negative")
	})

	t.Run("rejects sampling ratio above one", func(t *testing.T) {
		clearConfigEnv(t)
		t.Setenv("OILMILL_TELEMETRY_SAMPLING_RATIO", "1.5")

		_, err := fromViper(viper.New())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sampling_ratio")
	})
}

func TestLoad_JWTValidation(t *testing.T) {
	t.Run("jwt secret not required when jwt disabled", func(t *testing.T) {
		clearConfigEnv(t)

		cfg, err := fromViper(viper.New())
		require.NoError(t, err)
		assert.Empty(t, cfg.JWT.Secret)
	})

	t.Run("requires jwt.secret at least 32 characters when enabled", func(t *testing.T) {
		clearConfigEnv(t)
		t.Setenv("OILMILL_JWT_ENABLED", "true")
		t.Setenv("OILMILL_JWT_SECRET", "short-secret")

		_, err := fromViper(viper.New())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "jwt.secret must be at least 32 characters")
	})
}

func TestLoad_ProductionValidation(t *testing.T) {
	setValidProductionBase := func(t *testing.T) {
		clearConfigEnv(t)
		t.Setenv("OILMILL_APP_ENV", "production")
		t.Setenv("OILMILL_DATABASE_PASSWORD", "secure-password")
		t.Setenv("OILMILL_DATABASE_SSLMODE", "require")
	}

	t.Run("requires database.password in production", func(t *testing.T) {
		setValidProductionBase(t)
		os.Unsetenv("OILMILL_DATABASE_PASSWORD")

		_, err := fromViper(viper.New())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.password is required in production")
	})

	t.Run("requires SSL enabled in production", func(t *testing.T) {
		setValidProductionBase(t)
		t.Setenv("OILMILL_DATABASE_SSLMODE", "disable")

		_, err := fromViper(viper.New())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.sslmode cannot be 'disable' in production")
	})

	t.Run("passes validation with valid production config", func(t *testing.T) {
		setValidProductionBase(t)

		cfg, err := fromViper(viper.New())
		require.NoError(t, err)
		assert.True(t, cfg.IsProduction())
	})
}

func TestDatabaseConfig_DSN(t *testing.T) {
	t.Run("generates valid DSN", func(t *testing.T) {
		cfg := DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "testuser",
			Password: "testpass",
			DBName:   "testdb",
			SSLMode:  "disable",
		}

		dsn := cfg.DSN()
		assert.Contains(t, dsn, "localhost")
		assert.Contains(t, dsn, "5432")
		assert.Contains(t, dsn, "testuser")
		assert.Contains(t, dsn, "testdb")
		assert.Contains(t, dsn, "sslmode=disable")
	})

	t.Run("escapes special characters in password", func(t *testing.T) {
		cfg := DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "user",
			Password: "pass@word#123",
			DBName:   "db",
			SSLMode:  "disable",
		}

		dsn := cfg.DSN()
		assert.Contains(t, dsn, "pass%40word%23123")
	})
}

func TestRedisConfig_Addr(t *testing.T) {
	assert.Equal(t, "cache.local:6380", RedisConfig{Host: "cache.local", Port: 6380}.Addr())
}
