package log

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var base = zap.NewNop()

// Init builds the process logger. Pass the service name so the three
// binaries are distinguishable in shared log sinks; logFile, when set, is
// written in addition to stdout.
func Init(service, logFile string) error {
	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.RFC3339TimeEncoder
	cfg.OutputPaths = []string{"stdout"}
	if logFile != "" {
		cfg.OutputPaths = append(cfg.OutputPaths, logFile)
	}
	l, err := cfg.Build(zap.WithCaller(false))
	if err != nil {
		return err
	}
	base = l.With(zap.String("service", service))
	return nil
}

func Sync() { _ = base.Sync() }

func fieldsOf(c *fiber.Ctx, action string, extra map[string]any) []zap.Field {
	fs := []zap.Field{zap.String("action", action)}
	if c != nil {
		fs = append(fs,
			zap.String("ip", c.IP()),
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", c.Response().StatusCode()),
		)
		if rid, ok := c.Locals("requestid").(string); ok && rid != "" {
			fs = append(fs, zap.String("req_id", rid))
		}
	}
	for k, v := range extra {
		fs = append(fs, zap.Any(k, v))
	}
	return fs
}

func Info(c *fiber.Ctx, action string, fields map[string]any) {
	base.Info("", fieldsOf(c, action, fields)...)
}

// Audit records business-significant events (order placed, stock mutated).
func Audit(c *fiber.Ctx, action string, fields map[string]any) {
	base.Info("", append(fieldsOf(c, action, fields), zap.String("level_tag", "audit"))...)
}

// Security records rejected or suspicious requests.
func Security(c *fiber.Ctx, action string, fields map[string]any) {
	base.Warn("", fieldsOf(c, action, fields)...)
}

func Error(c *fiber.Ctx, action string, err error, fields map[string]any) {
	fs := fieldsOf(c, action, fields)
	if err != nil {
		fs = append(fs, zap.Error(err))
	}
	base.Error("", fs...)
}
