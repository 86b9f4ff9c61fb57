package logsvc

import (
	"log"

	"github.com/getsentry/sentry-go"
	"go.uber.org/zap"

	"github.com/edubridge/backend/core"
)

// ZapLogger implements core.Logger on a zap.SugaredLogger. Error and Fatal
// additionally report to Sentry when a DSN is configured.
type ZapLogger struct {
	sugar        *zap.SugaredLogger
	sentryActive bool
}

var _ core.Logger = (*ZapLogger)(nil)

func NewZapLogger(conf *core.Config) *ZapLogger {
	var logger *zap.Logger
	var err error
	if conf.Debug {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		log.Fatalf("logger.zap: %v", err)
	}

	sentryActive := conf.SentryDSN != ""
	if sentryActive {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         conf.SentryDSN,
			Environment: conf.Env,
		}); err != nil {
			logger.Sugar().Warnw("sentry init failed", "err", err)
			sentryActive = false
		}
	}

	return &ZapLogger{sugar: logger.Sugar(), sentryActive: sentryActive}
}

// capture reports the first error found in args to Sentry.
func (l *ZapLogger) capture(args []interface{}) {
	if !l.sentryActive {
		return
	}
	for _, arg := range args {
		if err, ok := arg.(error); ok {
			sentry.CaptureException(err)
			return
		}
	}
}

func (l *ZapLogger) Debug(msg string, args ...interface{}) {
	l.sugar.Debugw(msg, "args", args)
}

func (l *ZapLogger) Info(msg string, args ...interface{}) {
	l.sugar.Infow(msg, "args", args)
}

func (l *ZapLogger) Warn(msg string, args ...interface{}) {
	l.sugar.Warnw(msg, "args", args)
}

func (l *ZapLogger) Error(msg string, args ...interface{}) {
	l.capture(args)
	l.sugar.Errorw(msg, "args", args)
}

func (l *ZapLogger) Fatal(msg string, args ...interface{}) {
	l.capture(args)
	l.sugar.Fatalw(msg, "args", args)
}

// Sync flushes buffered log entries; call on shutdown.
func (l *ZapLogger) Sync() {
	_ = l.sugar.Sync()
	if l.sentryActive {
		sentry.Flush(2e9)
	}
}
