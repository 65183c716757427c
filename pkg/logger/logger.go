package logger

import (
	"context"
	"io"
	"net"
	"os"
	"time"

	"github.com/rs/zerolog"
)

var log = zerolog.Nop()

// build собирает корневой логгер сервиса поверх заданного writer
func build(serviceName string, level string, w io.Writer) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339Nano

	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}

	return zerolog.New(w).
		Level(lvl).
		With().
		Timestamp().
		Str("service", serviceName).
		Logger()
}

// Init настраивает глобальный логгер с выводом в stdout
func Init(serviceName string, level string) {
	log = build(serviceName, level, os.Stdout)
}

// InitWithWriter используется в тестах для перехвата вывода
func InitWithWriter(serviceName string, level string, w io.Writer) {
	log = build(serviceName, level, w)
}

// InitLogstash дублирует логи в Logstash по TCP.
// При недоступности Logstash текущий логгер не меняется.
func InitLogstash(addr string, serviceName string, level string) error {
	conn, err := net.DialTimeout("tcp", addr, 5*time.Second)
	if err != nil {
		return err
	}

	log = build(serviceName, level, zerolog.MultiLevelWriter(os.Stdout, conn))
	return nil
}

func Info() *zerolog.Event {
	return log.Info()
}

func Error() *zerolog.Event {
	return log.Error()
}

func Debug() *zerolog.Event {
	return log.Debug()
}

func Warn() *zerolog.Event {
	return log.Warn()
}

func Fatal() *zerolog.Event {
	return log.Fatal()
}

func With() zerolog.Context {
	return log.With()
}

// Ctx возвращает логгер запроса, сохраненный в контексте middleware.
// Если его нет, возвращается глобальный логгер.
func Ctx(ctx context.Context) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l != nil && l.GetLevel() != zerolog.Disabled {
		return l
	}
	return &log
}

// WithRequestID кладет в контекст дочерний логгер с request_id
func WithRequestID(ctx context.Context, requestID string) context.Context {
	l := log.With().Str("request_id", requestID).Logger()
	return l.WithContext(ctx)
}
