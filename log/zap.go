package log

import (
	"fmt"
	"funny-video/internal/appdirs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var Logger *zap.Logger

const (
	logFileName = "funny-video.log"
	// LevelEnv overrides the console level, e.g. FUNNYVIDEO_LOG_LEVEL=debug.
	LevelEnv = "FUNNYVIDEO_LOG_LEVEL"
)

var (
	appDirsResolver = appdirs.Resolve
	getenv          = os.Getenv
)

// InitLogger sets up the global logger and panics when the log file cannot
// be opened, since nothing useful can run without it.
func InitLogger() {
	logger, err := build()
	if err != nil {
		panic("初始化日志失败: " + err.Error())
	}
	Logger = logger
}

func build() (*zap.Logger, error) {
	logFilePath, err := ResolveLogFilePath()
	if err != nil {
		return nil, fmt.Errorf("resolve log dir: %w", err)
	}
	if err = os.MkdirAll(filepath.Dir(logFilePath), 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	file, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	enc := zap.NewProductionEncoderConfig()
	enc.EncodeTime = zapcore.ISO8601TimeEncoder
	consoleEnc := enc
	consoleEnc.EncodeLevel = zapcore.CapitalLevelEncoder

	core := zapcore.NewTee(
		// the file keeps everything for post-mortem of failed runs
		zapcore.NewCore(zapcore.NewJSONEncoder(enc), zapcore.AddSync(file), zap.DebugLevel),
		zapcore.NewCore(zapcore.NewConsoleEncoder(consoleEnc), zapcore.Lock(os.Stdout), consoleLevel()),
	)
	return zap.New(core, zap.AddCaller(), zap.Fields(zap.Int("pid", os.Getpid()))), nil
}

func consoleLevel() zapcore.Level {
	raw := strings.TrimSpace(getenv(LevelEnv))
	if raw == "" {
		return zap.InfoLevel
	}
	level, err := zapcore.ParseLevel(strings.ToLower(raw))
	if err != nil {
		return zap.InfoLevel
	}
	return level
}

func ResolveLogDir() (string, error) {
	dirs, err := appDirsResolver()
	if err != nil {
		return "", err
	}
	if logDir := strings.TrimSpace(dirs.LogDir); logDir != "" {
		return logDir, nil
	}
	return ".", nil
}

func ResolveLogFilePath() (string, error) {
	logDir, err := ResolveLogDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(logDir, logFileName), nil
}

// GetLogger returns a no-op logger until InitLogger has run.
func GetLogger() *zap.Logger {
	if Logger == nil {
		return zap.NewNop()
	}
	return Logger
}

// ForRun tags every entry with the run id.
func ForRun(runId string) *zap.Logger {
	return GetLogger().With(zap.String("run_id", runId))
}
