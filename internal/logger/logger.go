package logger

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

// アプリ全体のロガー設定
type Options struct {
	Level    string // debug/info/warn/error
	Format   string // json/text
	FilePath string // 空ならstdout
}

var logger *slog.Logger

// Init はグローバルロガーを初期化する。
func Init(opts Options) error {
	var level slog.Level
	switch opts.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	var writer io.Writer = os.Stdout
	if opts.FilePath != "" {
		if err := os.MkdirAll(filepath.Dir(opts.FilePath), 0755); err != nil {
			return err
		}
		//ファイル出力はローテーションさせる
		writer = &lumberjack.Logger{
			Filename:   opts.FilePath,
			MaxSize:    50,
			MaxBackups: 5,
			MaxAge:     30,
			Compress:   true,
		}
	}

	hopts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if opts.Format == "text" {
		handler = slog.NewTextHandler(writer, hopts)
	} else {
		handler = slog.NewJSONHandler(writer, hopts)
	}

	logger = slog.New(handler)
	return nil
}

func get() *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}

func Debug(msg string, args ...any) { get().Debug(msg, args...) }
func Info(msg string, args ...any)  { get().Info(msg, args...) }
func Warn(msg string, args ...any)  { get().Warn(msg, args...) }
func Error(msg string, args ...any) { get().Error(msg, args...) }
