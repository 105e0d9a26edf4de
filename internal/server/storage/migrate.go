package storage

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/pressly/goose/v3"
)

// MigrationLogger направляет вывод goose в slog вместо стандартного log
type MigrationLogger struct {
	logger *slog.Logger
}

var _ goose.Logger = (*MigrationLogger)(nil)

// NewMigrationLogger создает адаптер goose.Logger поверх logger
func NewMigrationLogger(logger *slog.Logger) *MigrationLogger {
	return &MigrationLogger{logger: logger.With(slog.String("component", "migrations"))}
}

// Printf пишет сообщение goose (применённая миграция, текущая версия) уровнем Info
func (l *MigrationLogger) Printf(format string, v ...interface{}) {
	l.logger.Info(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

// Fatalf повторяет контракт log.Fatalf: пишет ошибку и завершает процесс
func (l *MigrationLogger) Fatalf(format string, v ...interface{}) {
	l.logger.Error(strings.TrimSpace(fmt.Sprintf(format, v...)))
	os.Exit(1)
}

// UseMigrationLogger устанавливает logger для всех последующих миграций goose
func UseMigrationLogger(logger *slog.Logger) {
	goose.SetLogger(NewMigrationLogger(logger))
}
