package storage

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	apperrors "github.com/muslimbek77/tanlov-ai/internal/platform/errors"
	platformi18n "github.com/muslimbek77/tanlov-ai/internal/platform/i18n"
)

// ErrNotFound indicates a requested record is missing.
var ErrNotFound = errors.New("record not found")

// Theme is the dashboard color scheme.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// Settings are the operator preferences.
type Settings struct {
	Theme                      Theme                 `json:"theme"`
	Language                   platformi18n.Language `json:"language"`
	SimilarityThreshold        int                   `json:"similarity_threshold"`
	PriceDeviationThreshold    int                   `json:"price_deviation_threshold"`
	MinParticipantsForAnalysis int                   `json:"min_participants_for_analysis"`
	UpdatedAt                  time.Time             `json:"updated_at,omitzero"`
}

// DefaultSettings returns the preferences used before anything is saved.
func DefaultSettings() Settings {
	return Settings{
		Theme:                      ThemeLight,
		Language:                   platformi18n.DefaultLanguage,
		SimilarityThreshold:        70,
		PriceDeviationThreshold:    25,
		MinParticipantsForAnalysis: 2,
	}
}

// Normalize maps recognized language values, including the legacy "uz" and
// tags such as "ru-RU", to a supported language. Unrecognized values are kept
// so Validate can reject them.
func (s Settings) Normalize() Settings {
	if tag, ok := platformi18n.ParseTag(string(s.Language)); ok {
		s.Language = platformi18n.LanguageForTag(tag)
	}
	if s.Theme == "" {
		s.Theme = ThemeLight
	}
	return s
}

// Validate reports the first invalid field as SETTINGS_INVALID.
func (s Settings) Validate() error {
	switch {
	case s.Theme != ThemeLight && s.Theme != ThemeDark:
		return invalidSetting("theme")
	case !s.Language.Valid():
		return invalidSetting("language")
	case s.SimilarityThreshold < 0 || s.SimilarityThreshold > 100:
		return invalidSetting("similarity_threshold")
	case s.PriceDeviationThreshold < 0 || s.PriceDeviationThreshold > 100:
		return invalidSetting("price_deviation_threshold")
	case s.MinParticipantsForAnalysis < 2:
		return invalidSetting("min_participants_for_analysis")
	}
	return nil
}

func invalidSetting(field string) error {
	return apperrors.WithMetadata(apperrors.CodeSettingsInvalid, "invalid setting "+field, map[string]string{"Field": field})
}

// Session is the signed-in account kept between runs.
type Session struct {
	AccessToken  string
	RefreshToken string
	User         json.RawMessage
	UpdatedAt    time.Time
}

// Continuation is an unfinished analysis saved for a later run.
type Continuation struct {
	Payload   json.RawMessage
	CreatedAt time.Time
}

// SettingsStore persists operator preferences.
type SettingsStore interface {
	// GetSettings returns DefaultSettings when nothing is stored.
	GetSettings(ctx context.Context) (Settings, error)
	PutSettings(ctx context.Context, settings Settings) error
}

// SessionStore persists the signed-in session.
type SessionStore interface {
	GetSession(ctx context.Context) (Session, error)
	PutSession(ctx context.Context, session Session) error
	DeleteSession(ctx context.Context) error
}

// ContinuationStore holds at most one unfinished analysis.
type ContinuationStore interface {
	PutContinuation(ctx context.Context, continuation Continuation) error
	// GetContinuation returns the stored continuation and keeps it.
	GetContinuation(ctx context.Context) (Continuation, error)
	// TakeContinuation returns and removes the stored continuation.
	TakeContinuation(ctx context.Context) (Continuation, error)
}

// Store is the full dashboard persistence surface.
type Store interface {
	SettingsStore
	SessionStore
	ContinuationStore
	Close() error
}
