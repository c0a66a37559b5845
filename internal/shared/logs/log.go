package logs

import (
	"io"
	"os"
	"strings"

	"github.com/natefinch/lumberjack"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/mgmcelwee/evony/internal/shared/serverconfig"
)

var (
	logger      *zap.Logger = zap.NewNop()
	atomicLevel             = zap.NewAtomicLevelAt(zapcore.InfoLevel)
)

// Init 初始化进程 logger：
// - 控制台彩色输出到 stderr
// - 配置了 file_dir 时另写一份 JSON 到 lumberjack 切割文件
// - dev 模式下 warn 及以上带堆栈
func Init(appName string, cfg serverconfig.LogConfig) error {
	atomicLevel.SetLevel(parseLevel(cfg.Level))

	encoderCfg := zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		MessageKey:     "msg",
		StacktraceKey:  "stack",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
	consoleCfg := encoderCfg
	consoleCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	fileCfg := encoderCfg
	fileCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	// 文件里不能出现 ANSI 颜色，所以两路 core 分开
	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(consoleCfg), zapcore.Lock(os.Stderr), atomicLevel),
	}
	if w := fileWriter(cfg); w != nil {
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(fileCfg), zapcore.AddSync(w), atomicLevel))
	}

	opts := []zap.Option{zap.AddCaller()}
	if cfg.Dev {
		opts = append(opts, zap.Development(), zap.AddStacktrace(zapcore.WarnLevel))
	}
	l := zap.New(zapcore.NewTee(cores...), opts...).Named(appName)

	_ = logger.Sync()
	logger = l
	return nil
}

func fileWriter(cfg serverconfig.LogConfig) io.Writer {
	if cfg.FileDir == "" {
		return nil
	}
	return &lumberjack.Logger{
		Filename:   cfg.FileDir,
		MaxSize:    max(1, cfg.MaxSize), // MB
		MaxBackups: max(0, cfg.MaxBackups),
		MaxAge:     max(0, cfg.MaxAge), // days
		Compress:   cfg.Compress,
	}
}

// Logger 返回进程 logger，用于注入 logx.NewZapLogger。
func Logger() *zap.Logger {
	return logger
}

// SetLevel 配置热更新时调整日志级别。
func SetLevel(level string) {
	atomicLevel.SetLevel(parseLevel(level))
}

func Sync() error {
	return logger.Sync()
}

// parseLevel 大小写不敏感，解析失败回退到 info。
func parseLevel(level string) zapcore.Level {
	lvl := zapcore.InfoLevel
	if err := lvl.UnmarshalText([]byte(strings.ToLower(level))); err != nil {
		return zapcore.InfoLevel
	}
	return lvl
}

func Debug(msg string, fields ...zap.Field) { logger.Debug(msg, fields...) }

func Info(msg string, fields ...zap.Field) { logger.Info(msg, fields...) }

func Warn(msg string, fields ...zap.Field) { logger.Warn(msg, fields...) }

func Error(msg string, fields ...zap.Field) { logger.Error(msg, fields...) }

// Fatal 输出后 os.Exit(1)。
func Fatal(msg string, fields ...zap.Field) { logger.Fatal(msg, fields...) }
