package logger

import (
	"log/slog"
	"os"
	"strings"
	"sync"
)

var (
	log  *slog.Logger
	once sync.Once
)

func get() *slog.Logger {
	once.Do(func() {
		level := slog.LevelInfo
		switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
		case "debug":
			level = slog.LevelDebug
		case "warn":
			level = slog.LevelWarn
		case "error":
			level = slog.LevelError
		}
		log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	})
	return log
}

// args are key/value pairs, e.g. logger.Info("Service:Method:Stage", "user_id", id)
func Info(msg string, args ...any) {
	get().Info(msg, normalize(args)...)
}

func Warn(msg string, args ...any) {
	get().Warn(msg, normalize(args)...)
}

func Error(msg string, args ...any) {
	get().Error(msg, normalize(args)...)
}

func Debug(msg string, args ...any) {
	get().Debug(msg, normalize(args)...)
}

// normalize tolerates a bare trailing error value so call sites can pass
// either ("msg", err) or ("msg", "error", err).
func normalize(args []any) []any {
	if len(args)%2 == 1 {
		last := args[len(args)-1]
		args = append(args[:len(args)-1:len(args)-1], "error", last)
	}
	return args
}
