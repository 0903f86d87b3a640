package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/oilmill/backend/internal/infrastructure/config"
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBTracingConfig holds configuration for database tracing.
type DBTracingConfig struct {
	Enabled         bool
	LogFullSQL      bool // include bound variables in statements (dev only)
	SlowQueryThresh time.Duration
	DBSystem        string
}

// DBTracingConfigFrom derives the database tracing settings from app config
func DBTracingConfigFrom(tel config.TelemetryConfig, db config.DatabaseConfig) DBTracingConfig {
	cfg := DBTracingConfig{
		Enabled:         tel.Enabled && tel.DBTraceEnabled,
		LogFullSQL:      tel.DBLogFullSQL,
		SlowQueryThresh: db.SlowQueryThresh,
		DBSystem:        "postgresql",
	}
	if cfg.SlowQueryThresh == 0 {
		cfg.SlowQueryThresh = 200 * time.Millisecond
	}
	return cfg
}

// DBTracingPlugin installs otelgorm plus a slow query marker
type DBTracingPlugin struct {
	config DBTracingConfig
	logger *zap.Logger
}

// NewDBTracingPlugin creates a new database tracing plugin with the given configuration.
func NewDBTracingPlugin(cfg DBTracingConfig, logger *zap.Logger) *DBTracingPlugin {
	return &DBTracingPlugin{
		config: cfg,
		logger: logger,
	}
}

type queryStartKey struct{}

// Register installs otelgorm and the timing callbacks on db.
// It does nothing when tracing is disabled.
func (p *DBTracingPlugin) Register(db *gorm.DB) error {
	if !p.config.Enabled {
		p.logger.Debug("Database tracing disabled, skipping otelgorm registration")
		return nil
	}

	opts := []otelgorm.Option{otelgorm.WithDBName(p.config.DBSystem)}
	if !p.config.LogFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}

	cb := db.Callback()
	registrations := []struct {
		before func(string) error
		after  func(string) error
		op     string
	}{
		{op: "create", before: func(n string) error { return cb.Create().Before("gorm:create").Register(n, p.start) }, after: func(n string) error { return cb.Create().After("gorm:create").Register(n, p.finish) }},
		{op: "query", before: func(n string) error { return cb.Query().Before("gorm:query").Register(n, p.start) }, after: func(n string) error { return cb.Query().After("gorm:query").Register(n, p.finish) }},
		{op: "update", before: func(n string) error { return cb.Update().Before("gorm:update").Register(n, p.start) }, after: func(n string) error { return cb.Update().After("gorm:update").Register(n, p.finish) }},
		{op: "delete", before: func(n string) error { return cb.Delete().Before("gorm:delete").Register(n, p.start) }, after: func(n string) error { return cb.Delete().After("gorm:delete").Register(n, p.finish) }},
		{op: "row", before: func(n string) error { return cb.Row().Before("gorm:row").Register(n, p.start) }, after: func(n string) error { return cb.Row().After("gorm:row").Register(n, p.finish) }},
		{op: "raw", before: func(n string) error { return cb.Raw().Before("gorm:raw").Register(n, p.start) }, after: func(n string) error { return cb.Raw().After("gorm:raw").Register(n, p.finish) }},
	}
	for _, r := range registrations {
		if err := r.before("oilmill_timing:before_" + r.op); err != nil {
			return err
		}
		if err := r.after("oilmill_timing:after_" + r.op); err != nil {
			return err
		}
	}

	p.logger.Info("Database tracing enabled",
		zap.Bool("log_full_sql", p.config.LogFullSQL),
		zap.Duration("slow_query_threshold", p.config.SlowQueryThresh),
	)
	return nil
}

func (p *DBTracingPlugin) start(db *gorm.DB) {
	if db.Statement.Context != nil {
		db.Statement.Context = context.WithValue(db.Statement.Context, queryStartKey{}, time.Now())
	}
}

func (p *DBTracingPlugin) finish(db *gorm.DB) {
	ctx := db.Statement.Context
	if ctx == nil {
		return
	}
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	span.SetAttributes(attribute.Int64("db.rows_affected", db.Statement.RowsAffected))
	if db.Statement.Table != "" {
		span.SetAttributes(attribute.String("db.sql.table", db.Statement.Table))
	}
	if db.Error != nil && !errors.Is(db.Error, gorm.ErrRecordNotFound) {
		span.SetStatus(codes.Error, db.Error.Error())
		span.RecordError(db.Error)
	}

	if startedAt, ok := ctx.Value(queryStartKey{}).(time.Time); ok {
		elapsed := time.Since(startedAt)
		if elapsed > p.config.SlowQueryThresh {
			span.SetAttributes(
				attribute.Bool("db.slow_query", true),
				attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
			)
		}
	}
}
