package migrations

import (
	"database/sql"
	"embed"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/pressly/goose/v3"
)

//go:embed *.sql
var fs embed.FS

// Run applies all pending schema migrations for the sessions and answers
// tables against db. Progress is logged to logger; a nil logger keeps goose
// quiet.
func Run(db *sql.DB, logger *slog.Logger) error {
	goose.SetBaseFS(fs)
	if logger == nil {
		goose.SetLogger(goose.NopLogger())
	} else {
		goose.SetLogger(slogLogger{logger: logger.With("component", "migrations")})
	}

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("setting dialect: %w", err)
	}
	if err := goose.Up(db, "."); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	return nil
}

// slogLogger adapts goose's printf logger to slog.
type slogLogger struct {
	logger *slog.Logger
}

func (l slogLogger) Printf(format string, v ...any) {
	l.logger.Info(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (l slogLogger) Fatalf(format string, v ...any) {
	l.logger.Error(strings.TrimSpace(fmt.Sprintf(format, v...)))
	os.Exit(1)
}
