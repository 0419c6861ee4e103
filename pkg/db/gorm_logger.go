package db

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/Teja2142/Hyrind-Backend/pkg/logger"
)

// gormLogger routes gorm output into the service logger. Only slow queries
// and unexpected query errors are reported; record-not-found is a normal
// lookup miss.
type gormLogger struct {
	logg     *logger.Logger
	slow     time.Duration
	silenced bool
}

func newGormLogger(logg *logger.Logger, slow time.Duration) gormlogger.Interface {
	if logg == nil {
		return gormlogger.Discard
	}
	return &gormLogger{logg: logg, slow: slow}
}

func (g *gormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *g
	clone.silenced = level == gormlogger.Silent
	return &clone
}

func (g *gormLogger) Info(ctx context.Context, msg string, _ ...any) {
	if !g.silenced {
		g.logg.Debug(ctx, "gorm: "+msg)
	}
}

func (g *gormLogger) Warn(ctx context.Context, msg string, _ ...any) {
	if !g.silenced {
		g.logg.Warn(ctx, "gorm: "+msg)
	}
}

func (g *gormLogger) Error(ctx context.Context, msg string, _ ...any) {
	if !g.silenced {
		g.logg.Error(ctx, "gorm: "+msg, nil)
	}
}

func (g *gormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if g.silenced {
		return
	}
	elapsed := time.Since(begin)
	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound) && !errors.Is(err, context.Canceled):
		sql, rows := fc()
		g.logg.Error(g.logg.WithFields(ctx, map[string]any{
			"sql":        sql,
			"rows":       rows,
			"elapsed_ms": elapsed.Milliseconds(),
		}), "db.query_failed", err)
	case g.slow > 0 && elapsed > g.slow:
		sql, rows := fc()
		g.logg.Warn(g.logg.WithFields(ctx, map[string]any{
			"sql":        sql,
			"rows":       rows,
			"elapsed_ms": elapsed.Milliseconds(),
		}), "db.slow_query")
	}
}
