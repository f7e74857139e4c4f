package logger

import (
	"context"
	c "eventers-ticketing/context"
	"fmt"
	"io"
	"os"
	"regexp"
	"time"

	"github.com/sirupsen/logrus"
)

var logger *logrus.Logger

const (
	CorrelationId = "correlation_id"
	GateId        = "gate_id"
)

var newlines = regexp.MustCompile(`(\n)|(\r\n)`)

func init() {
	logger = logrus.New()
	logger.SetOutput(os.Stdout)
}

// SetOutput redirects log output, used by tests that assert on escalation entries.
func SetOutput(w io.Writer) {
	logger.SetOutput(w)
}

// SetLevel parses and applies a logrus level name. Unknown names keep the current level.
func SetLevel(level string) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return
	}
	logger.SetLevel(lvl)
}

func entry(ctx context.Context) *logrus.Entry {
	e := logger.WithField(CorrelationId, c.GetContextValue(ctx, c.ContextKeyCorrelationID))
	if gate := c.GetContextValue(ctx, c.ContextKeyGateID); gate != "" {
		e = e.WithField(GateId, gate)
	}
	return e
}

// WithFields returns an entry carrying the correlation id plus the given fields.
func WithFields(ctx context.Context, fields logrus.Fields) *logrus.Entry {
	return entry(ctx).WithFields(fields)
}

func Fatalf(ctx context.Context, format string, args ...interface{}) {
	entry(ctx).Fatalf(format, args...)
}

func Infof(ctx context.Context, format string, args ...interface{}) {
	entry(ctx).Infof(format, args...)
}

func Debugf(ctx context.Context, format string, args ...interface{}) {
	entry(ctx).Debug(escapeString(format, args...))
}

func Warnf(ctx context.Context, format string, args ...interface{}) {
	entry(ctx).Warnf(format, args...)
}

func Errorf(ctx context.Context, format string, args ...interface{}) {
	entry(ctx).Error(escapeString(format, args...))
}

func LogExecutionTime(ctx context.Context, start time.Time, msg string) {
	entry(ctx).Debugf("%s took %s", msg, time.Since(start))
}

func escapeString(format string, args ...interface{}) string {
	return newlines.ReplaceAllString(fmt.Sprintf(format, args...), "\\n ")
}
