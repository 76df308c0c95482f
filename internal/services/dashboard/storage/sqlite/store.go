package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	apperrors "github.com/muslimbek77/tanlov-ai/internal/platform/errors"
	platformi18n "github.com/muslimbek77/tanlov-ai/internal/platform/i18n"
	"github.com/muslimbek77/tanlov-ai/internal/platform/storage/sqlitemigrate"
	"github.com/muslimbek77/tanlov-ai/internal/services/dashboard/storage"
	"github.com/muslimbek77/tanlov-ai/internal/services/dashboard/storage/sqlite/migrations"
)

// Store persists dashboard state in SQLite.
type Store struct {
	sqlDB *sql.DB
	now   func() time.Time
}

var _ storage.Store = (*Store)(nil)

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a SQLite dashboard store, creating its directory when needed,
// and applies embedded migrations.
func Open(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	if dir := filepath.Dir(cleanPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, apperrors.Wrap(apperrors.CodeStorageUnavailable, "create storage dir", err)
		}
	}
	dsn := "file:" + cleanPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeStorageUnavailable, "open sqlite db", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, apperrors.Wrap(apperrors.CodeStorageUnavailable, "ping sqlite db", err)
	}
	if err := sqlitemigrate.ApplyMigrations(ctx, sqlDB, migrations.FS, ""); err != nil {
		_ = sqlDB.Close()
		return nil, apperrors.Wrap(apperrors.CodeStorageUnavailable, "run migrations", err)
	}
	return &Store{sqlDB: sqlDB, now: time.Now}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func (s *Store) ready(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	return nil
}

// GetSettings returns the stored preferences or the defaults.
func (s *Store) GetSettings(ctx context.Context) (storage.Settings, error) {
	if err := s.ready(ctx); err != nil {
		return storage.Settings{}, err
	}
	row := s.sqlDB.QueryRowContext(ctx, `
SELECT theme, language, similarity_threshold, price_deviation_threshold,
       min_participants_for_analysis, updated_at
FROM settings WHERE id = 1`)

	var (
		settings  storage.Settings
		theme     string
		language  string
		updatedAt int64
	)
	err := row.Scan(&theme, &language, &settings.SimilarityThreshold, &settings.PriceDeviationThreshold,
		&settings.MinParticipantsForAnalysis, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.DefaultSettings(), nil
	}
	if err != nil {
		return storage.Settings{}, fmt.Errorf("get settings: %w", err)
	}
	settings.Theme = storage.Theme(theme)
	settings.Language = platformi18n.Language(language)
	settings.UpdatedAt = fromMillis(updatedAt)
	settings = settings.Normalize()
	if !settings.Language.Valid() {
		settings.Language = platformi18n.DefaultLanguage
	}
	return settings, nil
}

// PutSettings validates and stores preferences.
func (s *Store) PutSettings(ctx context.Context, settings storage.Settings) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	settings = settings.Normalize()
	if err := settings.Validate(); err != nil {
		return err
	}
	updatedAt := settings.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = s.now()
	}
	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO settings (id, theme, language, similarity_threshold, price_deviation_threshold,
                      min_participants_for_analysis, updated_at)
VALUES (1, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    theme = excluded.theme,
    language = excluded.language,
    similarity_threshold = excluded.similarity_threshold,
    price_deviation_threshold = excluded.price_deviation_threshold,
    min_participants_for_analysis = excluded.min_participants_for_analysis,
    updated_at = excluded.updated_at`,
		string(settings.Theme),
		settings.Language.String(),
		settings.SimilarityThreshold,
		settings.PriceDeviationThreshold,
		settings.MinParticipantsForAnalysis,
		toMillis(updatedAt),
	)
	if err != nil {
		return fmt.Errorf("put settings: %w", err)
	}
	return nil
}

// GetSession returns the stored session or storage.ErrNotFound.
func (s *Store) GetSession(ctx context.Context) (storage.Session, error) {
	if err := s.ready(ctx); err != nil {
		return storage.Session{}, err
	}
	var (
		session   storage.Session
		user      string
		updatedAt int64
	)
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT access_token, refresh_token, user_json, updated_at FROM sessions WHERE id = 1`,
	).Scan(&session.AccessToken, &session.RefreshToken, &user, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.Session{}, storage.ErrNotFound
	}
	if err != nil {
		return storage.Session{}, fmt.Errorf("get session: %w", err)
	}
	if user != "" {
		session.User = json.RawMessage(user)
	}
	session.UpdatedAt = fromMillis(updatedAt)
	return session, nil
}

// PutSession replaces the stored session.
func (s *Store) PutSession(ctx context.Context, session storage.Session) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if strings.TrimSpace(session.AccessToken) == "" {
		return fmt.Errorf("access token is required")
	}
	if len(session.User) > 0 && !json.Valid(session.User) {
		return fmt.Errorf("session user is not valid json")
	}
	updatedAt := session.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = s.now()
	}
	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO sessions (id, access_token, refresh_token, user_json, updated_at)
VALUES (1, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    access_token = excluded.access_token,
    refresh_token = excluded.refresh_token,
    user_json = excluded.user_json,
    updated_at = excluded.updated_at`,
		session.AccessToken,
		session.RefreshToken,
		string(session.User),
		toMillis(updatedAt),
	)
	if err != nil {
		return fmt.Errorf("put session: %w", err)
	}
	return nil
}

// DeleteSession removes the stored session. Deleting a missing session is
// not an error.
func (s *Store) DeleteSession(ctx context.Context) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if _, err := s.sqlDB.ExecContext(ctx, `DELETE FROM sessions WHERE id = 1`); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// PutContinuation replaces the stored continuation.
func (s *Store) PutContinuation(ctx context.Context, continuation storage.Continuation) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if len(continuation.Payload) == 0 || !json.Valid(continuation.Payload) {
		return fmt.Errorf("continuation payload must be valid json")
	}
	createdAt := continuation.CreatedAt
	if createdAt.IsZero() {
		createdAt = s.now()
	}
	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO continuations (id, payload, created_at) VALUES (1, ?, ?)
ON CONFLICT(id) DO UPDATE SET payload = excluded.payload, created_at = excluded.created_at`,
		string(continuation.Payload),
		toMillis(createdAt),
	)
	if err != nil {
		return fmt.Errorf("put continuation: %w", err)
	}
	return nil
}

// GetContinuation returns the stored continuation without removing it, or
// storage.ErrNotFound when none is stored.
func (s *Store) GetContinuation(ctx context.Context) (storage.Continuation, error) {
	if err := s.ready(ctx); err != nil {
		return storage.Continuation{}, err
	}
	var (
		payload   string
		createdAt int64
	)
	err := s.sqlDB.QueryRowContext(ctx, `SELECT payload, created_at FROM continuations WHERE id = 1`).Scan(&payload, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.Continuation{}, storage.ErrNotFound
	}
	if err != nil {
		return storage.Continuation{}, fmt.Errorf("get continuation: %w", err)
	}
	return storage.Continuation{Payload: json.RawMessage(payload), CreatedAt: fromMillis(createdAt)}, nil
}

// TakeContinuation reads and deletes the stored continuation in one
// transaction. It returns storage.ErrNotFound when none is stored.
func (s *Store) TakeContinuation(ctx context.Context) (storage.Continuation, error) {
	if err := s.ready(ctx); err != nil {
		return storage.Continuation{}, err
	}
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return storage.Continuation{}, fmt.Errorf("begin take continuation: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var (
		payload   string
		createdAt int64
	)
	err = tx.QueryRowContext(ctx, `SELECT payload, created_at FROM continuations WHERE id = 1`).Scan(&payload, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.Continuation{}, storage.ErrNotFound
	}
	if err != nil {
		return storage.Continuation{}, fmt.Errorf("get continuation: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM continuations WHERE id = 1`); err != nil {
		return storage.Continuation{}, fmt.Errorf("delete continuation: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return storage.Continuation{}, fmt.Errorf("commit take continuation: %w", err)
	}
	return storage.Continuation{Payload: json.RawMessage(payload), CreatedAt: fromMillis(createdAt)}, nil
}
