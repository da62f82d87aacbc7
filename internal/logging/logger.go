package logging

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// NewLogger builds the engine's diagnostic logger: rotating JSON file under
// logDir, plus a console core on stderr when verbose. This log is distinct
// from the alert sink, which this engine never rotates.
func NewLogger(logDir string, verbose bool) (*zap.Logger, error) {
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, err
	}
	w := zapcore.AddSync(&lumberjack.Logger{
		Filename:   filepath.Join(logDir, "healthcheck.log"),
		MaxSize:    10, // MB
		MaxBackups: 5,
		MaxAge:     14, // days
		Compress:   true,
	})
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "ts"
	fileCore := zapcore.NewCore(zapcore.NewJSONEncoder(cfg), w, zap.InfoLevel)

	if !verbose {
		return zap.New(fileCore), nil
	}
	consoleCfg := zap.NewDevelopmentEncoderConfig()
	consoleCore := zapcore.NewCore(
		zapcore.NewConsoleEncoder(consoleCfg),
		zapcore.AddSync(os.Stderr),
		zap.DebugLevel,
	)
	return zap.New(zapcore.NewTee(fileCore, consoleCore)), nil
}
