package dashboard

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	apperrors "github.com/muslimbek77/tanlov-ai/internal/platform/errors"
	platformi18n "github.com/muslimbek77/tanlov-ai/internal/platform/i18n"
	"github.com/muslimbek77/tanlov-ai/internal/platform/i18n/catalog"
	"github.com/muslimbek77/tanlov-ai/internal/platform/logging"
	platformotel "github.com/muslimbek77/tanlov-ai/internal/platform/otel"
	"github.com/muslimbek77/tanlov-ai/internal/platform/requestctx"
	"github.com/muslimbek77/tanlov-ai/internal/platform/translit"
	"github.com/muslimbek77/tanlov-ai/internal/services/dashboard/storage"
	"github.com/muslimbek77/tanlov-ai/internal/services/shared/i18nhttp"
)

const (
	requestIDHeader = requestctx.Header
	maxBodyBytes    = 1 << 20
)

// HandlerConfig defines the dependencies of the dashboard API handler.
type HandlerConfig struct {
	Settings storage.SettingsStore
	Bundle   *catalog.Bundle
	Logger   *zap.Logger
}

type handler struct {
	settings storage.SettingsStore
	bundle   *catalog.Bundle
	logger   *zap.Logger
}

// NewHandler returns the dashboard API routes wrapped in request logging and
// tracing.
func NewHandler(cfg HandlerConfig) http.Handler {
	bundle := cfg.Bundle
	if bundle == nil {
		bundle = catalog.Default()
	}
	h := &handler{settings: cfg.Settings, bundle: bundle, logger: logging.OrNop(cfg.Logger)}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", h.handleHealth)
	mux.HandleFunc("GET /api/i18n", h.handleI18n)
	mux.HandleFunc("POST /api/translit", h.handleTranslit)
	mux.HandleFunc("GET /api/languages", h.handleLanguages)
	mux.HandleFunc("GET /api/settings", h.handleGetSettings)
	mux.HandleFunc("PUT /api/settings", h.handlePutSettings)
	return h.withRequestContext(mux)
}

func (h *handler) withRequestContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := strings.TrimSpace(r.Header.Get(requestIDHeader))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, requestID)

		ctx, span := platformotel.Tracer().Start(requestctx.WithRequestID(r.Context(), requestID), r.Method+" "+r.URL.Path)
		span.SetAttributes(attribute.String("request.id", requestID))
		defer span.End()

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		started := time.Now()
		next.ServeHTTP(rec, r.WithContext(ctx))

		span.SetAttributes(attribute.Int("http.status_code", rec.status))
		h.logger.Debug("dashboard request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.String("request_id", requestID),
			zap.Duration("duration", time.Since(started)))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (h *handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

type i18nResponse struct {
	Locale   string            `json:"locale"`
	Language string            `json:"language"`
	Messages map[string]string `json:"messages"`
}

func (h *handler) handleI18n(w http.ResponseWriter, r *http.Request) {
	loc := h.localizer(w, r)
	namespace := strings.TrimSpace(r.URL.Query().Get("namespace"))
	messages := loc.Messages(namespace)
	if namespace != "" && len(messages) == 0 {
		h.writeError(w, r, loc, apperrors.WithMetadata(apperrors.CodeNotFound, "unknown namespace "+namespace, map[string]string{"Field": "namespace"}))
		return
	}
	writeJSON(w, http.StatusOK, i18nResponse{
		Locale:   loc.Language().Locale(),
		Language: loc.Language().String(),
		Messages: messages,
	})
}

type translitPayload struct {
	Text string `json:"text"`
}

func (h *handler) handleTranslit(w http.ResponseWriter, r *http.Request) {
	loc := h.localizer(w, r)
	var in translitPayload
	if err := decodeJSON(w, r, &in); err != nil {
		h.writeError(w, r, loc, apperrors.WrapWithMetadata(apperrors.CodeInvalidArgument, "decode translit request", map[string]string{"Field": "text"}, err))
		return
	}
	writeJSON(w, http.StatusOK, translitPayload{Text: translit.LatinToCyrillic(in.Text)})
}

func (h *handler) handleLanguages(w http.ResponseWriter, r *http.Request) {
	loc := h.localizer(w, r)
	writeJSON(w, http.StatusOK, map[string]any{
		"languages": i18nhttp.BuildLanguageOptions(loc, loc.Language()),
	})
}

func (h *handler) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	loc := h.localizer(w, r)
	settings, err := h.settings.GetSettings(r.Context())
	if err != nil {
		h.writeError(w, r, loc, apperrors.Wrap(apperrors.CodeStorageUnavailable, "get settings", err))
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

// handlePutSettings merges the request body over the stored settings, so a
// client may send only the fields it changes.
func (h *handler) handlePutSettings(w http.ResponseWriter, r *http.Request) {
	loc := h.localizer(w, r)
	settings, err := h.settings.GetSettings(r.Context())
	if err != nil {
		h.writeError(w, r, loc, apperrors.Wrap(apperrors.CodeStorageUnavailable, "get settings", err))
		return
	}
	if err := decodeJSON(w, r, &settings); err != nil {
		h.writeError(w, r, loc, apperrors.WrapWithMetadata(apperrors.CodeInvalidArgument, "decode settings", map[string]string{"Field": "settings"}, err))
		return
	}
	settings.UpdatedAt = time.Time{}
	if err := h.settings.PutSettings(r.Context(), settings); err != nil {
		if !apperrors.HasCode(err, apperrors.CodeSettingsInvalid) {
			err = apperrors.Wrap(apperrors.CodeStorageUnavailable, "put settings", err)
		}
		h.writeError(w, r, loc, err)
		return
	}
	saved, err := h.settings.GetSettings(r.Context())
	if err != nil {
		h.writeError(w, r, loc, apperrors.Wrap(apperrors.CodeStorageUnavailable, "get settings", err))
		return
	}
	i18nhttp.SetLanguageCookie(w, saved.Language.Tag())
	writeJSON(w, http.StatusOK, saved)
}

// localizer resolves the request language. Stored settings are consulted
// only when the request carries no language hint at all.
func (h *handler) localizer(w http.ResponseWriter, r *http.Request) *platformi18n.Localizer {
	lang, persist := i18nhttp.ResolveLanguage(r)
	if persist {
		i18nhttp.SetLanguageCookie(w, lang.Tag())
	} else if !hasLanguageHint(r) && h.settings != nil {
		if settings, err := h.settings.GetSettings(r.Context()); err == nil {
			lang = settings.Language
		}
	}
	return platformi18n.NewLocalizer(platformi18n.Config{Bundle: h.bundle, Language: lang})
}

func hasLanguageHint(r *http.Request) bool {
	if strings.TrimSpace(r.URL.Query().Get(i18nhttp.LangParam)) != "" {
		return true
	}
	if _, err := r.Cookie(i18nhttp.LangCookieName); err == nil {
		return true
	}
	return strings.TrimSpace(r.Header.Get("Accept-Language")) != ""
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code"`
}

func (h *handler) writeError(w http.ResponseWriter, r *http.Request, loc *platformi18n.Localizer, err error) {
	code := apperrors.CodeOf(err)
	status := code.HTTPStatus()
	if status >= http.StatusInternalServerError {
		h.logger.Error("dashboard request failed",
			zap.String("path", r.URL.Path),
			zap.String("request_id", requestctx.RequestIDFromContext(r.Context())),
			zap.String("code", string(code)),
			zap.Error(err))
	}
	writeJSON(w, status, errorResponse{
		Success: false,
		Error:   apperrors.LocalizedMessage(err, loc.Language().Locale()),
		Code:    string(code),
	})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, target any) error {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(target); err != nil {
		return err
	}
	if err := decoder.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New("request body must hold a single json object")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
