package logger

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config controls how the process logger is built. Format is "json" for
// deployments and "console" for local runs; Output is stdout, stderr or a
// file path.
type Config struct {
	Level      string
	Format     string
	Output     string
	TimeFormat string
}

// DefaultConfig is a console logger at info level, suitable for local runs
func DefaultConfig() *Config {
	return &Config{
		Level:      "info",
		Format:     "console",
		Output:     "stdout",
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	}
}

// New builds the process-wide zap logger from cfg. Stacktraces are only
// attached at error level and above.
func New(cfg *Config) (*zap.Logger, error) {
	core := zapcore.NewCore(newEncoder(cfg), newSink(cfg.Output), parseLevel(cfg.Level))
	return zap.New(core,
		zap.AddCaller(),
		zap.AddStacktrace(zapcore.ErrorLevel),
	), nil
}

// Sync flushes buffered entries; call it on shutdown
func Sync(logger *zap.Logger) error {
	return logger.Sync()
}

func parseLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	case "fatal":
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}

func newEncoder(cfg *Config) zapcore.Encoder {
	enc := zap.NewProductionEncoderConfig()
	enc.TimeKey = "time"
	enc.MessageKey = "msg"
	enc.FunctionKey = zapcore.OmitKey
	enc.EncodeTime = zapcore.TimeEncoderOfLayout(cfg.TimeFormat)
	enc.EncodeDuration = zapcore.MillisDurationEncoder
	enc.EncodeCaller = zapcore.ShortCallerEncoder

	if cfg.Format == "console" {
		enc.EncodeLevel = zapcore.CapitalColorLevelEncoder
		return zapcore.NewConsoleEncoder(enc)
	}
	enc.EncodeLevel = zapcore.LowercaseLevelEncoder
	return zapcore.NewJSONEncoder(enc)
}

func newSink(output string) zapcore.WriteSyncer {
	switch strings.ToLower(output) {
	case "stdout":
		return zapcore.AddSync(os.Stdout)
	case "stderr":
		return zapcore.AddSync(os.Stderr)
	default:
		file, err := os.OpenFile(output, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			// An unwritable log path must not take the service down
			return zapcore.AddSync(os.Stdout)
		}
		return zapcore.AddSync(file)
	}
}
