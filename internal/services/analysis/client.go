package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	apperrors "github.com/muslimbek77/tanlov-ai/internal/platform/errors"
	platformi18n "github.com/muslimbek77/tanlov-ai/internal/platform/i18n"
	"github.com/muslimbek77/tanlov-ai/internal/platform/logging"
	platformotel "github.com/muslimbek77/tanlov-ai/internal/platform/otel"
	"github.com/muslimbek77/tanlov-ai/internal/platform/requestctx"
)

const (
	analyzeTenderPath      = "/evaluations/analyze-tender/"
	analyzeParticipantPath = "/evaluations/analyze-participant/"
	comparePath            = "/evaluations/compare-participants/"
	resetPath              = "/evaluations/reset/"
	exportPDFPath          = "/evaluations/export-pdf/"
	exportExcelPath        = "/evaluations/download-excel/"
	exportCSVPath          = "/evaluations/download-csv/"
	saveResultPath         = "/evaluations/save-result/"
	historyPath            = "/evaluations/history/"
	statsPath              = "/stats/"
	antiFraudPath          = "/anti-fraud/analyze/"

	// RequestIDHeader carries a per-request uuid for correlating logs.
	RequestIDHeader = requestctx.Header

	// MinParticipants is the smallest field the service compares or screens.
	MinParticipants = 2

	maxResponseBody = 64 << 20
)

// TokenSource returns the current access token. An empty token sends the
// request without credentials.
type TokenSource interface {
	AccessToken(ctx context.Context) (string, error)
}

// TokenFunc adapts a function to TokenSource.
type TokenFunc func(ctx context.Context) (string, error)

// AccessToken calls f.
func (f TokenFunc) AccessToken(ctx context.Context) (string, error) {
	return f(ctx)
}

// StaticToken is a TokenSource that always returns itself.
type StaticToken string

// AccessToken returns t.
func (t StaticToken) AccessToken(context.Context) (string, error) {
	return string(t), nil
}

// Config configures a Client.
type Config struct {
	// BaseURL is the service root, for example "https://host/api".
	BaseURL    string
	HTTPClient *http.Client
	Tokens     TokenSource
	// Language sets Accept-Language for calls that take no language.
	Language platformi18n.Language
	Logger   *zap.Logger
}

// Client calls the analysis endpoints.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
	lang    platformi18n.Language
	logger  *zap.Logger
}

// NewClient builds a Client from cfg.
func NewClient(cfg Config) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	tokens := cfg.Tokens
	if tokens == nil {
		tokens = StaticToken("")
	}
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		http:    httpClient,
		tokens:  tokens,
		lang:    platformi18n.ParseLanguage(cfg.Language.String()),
		logger:  logging.OrNop(cfg.Logger),
	}
}

// AnalyzeTender uploads a tender document and returns its analysis.
func (c *Client) AnalyzeTender(ctx context.Context, doc Document, lang platformi18n.Language) (TenderAnalysis, error) {
	if doc.Body == nil {
		return TenderAnalysis{}, invalidArgument("file")
	}
	body, contentType, err := multipartBody(doc, [][2]string{{"language", lang.String()}})
	if err != nil {
		return TenderAnalysis{}, err
	}
	var out struct {
		Analysis TenderAnalysis `json:"analysis"`
	}
	if err := c.call(ctx, "analyze_tender", http.MethodPost, analyzeTenderPath, lang, contentType, body, &out); err != nil {
		return TenderAnalysis{}, err
	}
	return out.Analysis, nil
}

// AnalyzeParticipant uploads one participant's bid document and returns its
// evaluation against the last analyzed tender.
func (c *Client) AnalyzeParticipant(ctx context.Context, name string, doc Document, lang platformi18n.Language) (ParticipantAnalysis, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return ParticipantAnalysis{}, invalidArgument("name")
	}
	if doc.Body == nil {
		return ParticipantAnalysis{}, invalidArgument("file")
	}
	body, contentType, err := multipartBody(doc, [][2]string{{"name", name}, {"language", lang.String()}})
	if err != nil {
		return ParticipantAnalysis{}, err
	}
	var out struct {
		Analysis ParticipantAnalysis `json:"analysis"`
	}
	if err := c.call(ctx, "analyze_participant", http.MethodPost, analyzeParticipantPath, lang, contentType, body, &out); err != nil {
		return ParticipantAnalysis{}, err
	}
	if out.Analysis.ParticipantName == "" {
		out.Analysis.ParticipantName = name
	}
	return out.Analysis, nil
}

// CompareParticipants ranks analyzed participants and picks a winner.
func (c *Client) CompareParticipants(ctx context.Context, analyses []ParticipantAnalysis, lang platformi18n.Language) (Comparison, error) {
	if len(analyses) < MinParticipants {
		return Comparison{}, minParticipants()
	}
	body, err := jsonBody(map[string]any{"participants": analyses, "language": lang.String()})
	if err != nil {
		return Comparison{}, err
	}
	var out Comparison
	if err := c.call(ctx, "compare_participants", http.MethodPost, comparePath, lang, "application/json", body, &out); err != nil {
		return Comparison{}, err
	}
	return out, nil
}

// AnalyzeFraud screens the participants of a tender. Participants without a
// name or price are dropped; at least two must remain.
func (c *Client) AnalyzeFraud(ctx context.Context, req FraudRequest) (FraudAnalysis, error) {
	participants := req.ValidParticipants()
	if len(participants) < MinParticipants {
		return FraudAnalysis{}, minParticipants()
	}
	var tender any
	if strings.TrimSpace(req.Tender.Name) != "" {
		tender = req.Tender
	}
	body, err := jsonBody(map[string]any{"participants": participants, "tender_info": tender})
	if err != nil {
		return FraudAnalysis{}, err
	}
	var out struct {
		Analysis FraudAnalysis `json:"analysis"`
	}
	if err := c.call(ctx, "analyze_fraud", http.MethodPost, antiFraudPath, c.lang, "application/json", body, &out); err != nil {
		return FraudAnalysis{}, err
	}
	return out.Analysis, nil
}

// SaveResult stores a finished analysis in the service history and returns
// its id.
func (c *Client) SaveResult(ctx context.Context, result Result, lang platformi18n.Language) (int64, error) {
	if result.Tender == nil {
		return 0, invalidArgument("tender")
	}
	body, err := jsonBody(map[string]any{
		"tender":       result.Tender,
		"participants": result.Participants,
		"ranking":      result.Ranking,
		"winner":       result.Winner,
		"summary":      result.Summary,
		"language":     lang.String(),
	})
	if err != nil {
		return 0, err
	}
	var out struct {
		ID int64 `json:"id"`
	}
	if err := c.call(ctx, "save_result", http.MethodPost, saveResultPath, lang, "application/json", body, &out); err != nil {
		return 0, err
	}
	return out.ID, nil
}

// History lists saved analyses, newest first.
func (c *Client) History(ctx context.Context, limit, offset int) (HistoryPage, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	query := url.Values{}
	query.Set("limit", strconv.Itoa(limit))
	query.Set("offset", strconv.Itoa(offset))

	var out HistoryPage
	if err := c.call(ctx, "history", http.MethodGet, historyPath+"?"+query.Encode(), c.lang, "", nil, &out); err != nil {
		return HistoryPage{}, err
	}
	return out, nil
}

// HistoryDetail returns one saved analysis.
func (c *Client) HistoryDetail(ctx context.Context, id int64) (HistoryDetail, error) {
	if id <= 0 {
		return HistoryDetail{}, invalidArgument("id")
	}
	var out struct {
		Result HistoryDetail `json:"result"`
	}
	path := historyPath + strconv.FormatInt(id, 10) + "/"
	if err := c.call(ctx, "history_detail", http.MethodGet, path, c.lang, "", nil, &out); err != nil {
		return HistoryDetail{}, err
	}
	return out.Result, nil
}

// DeleteHistory removes one saved analysis.
func (c *Client) DeleteHistory(ctx context.Context, id int64) error {
	if id <= 0 {
		return invalidArgument("id")
	}
	path := historyPath + strconv.FormatInt(id, 10) + "/delete/"
	return c.call(ctx, "history_delete", http.MethodDelete, path, c.lang, "", nil, nil)
}

// Reset clears the tender the service is currently evaluating against.
func (c *Client) Reset(ctx context.Context) error {
	return c.call(ctx, "reset", http.MethodPost, resetPath, c.lang, "", nil, nil)
}

// Stats returns the dashboard counters.
func (c *Client) Stats(ctx context.Context) (Stats, error) {
	var out struct {
		Stats Stats `json:"stats"`
	}
	if err := c.call(ctx, "stats", http.MethodGet, statsPath, c.lang, "", nil, &out); err != nil {
		return Stats{}, err
	}
	return out.Stats, nil
}

// ExportPDF renders result as a PDF report.
func (c *Client) ExportPDF(ctx context.Context, result Result, lang platformi18n.Language) (Export, error) {
	return c.export(ctx, "export_pdf", exportPDFPath, "tender_tahlil.pdf", lang, map[string]any{
		"language":        lang.String(),
		"tender_analysis": result.Tender,
		"ranking":         result.Ranking,
		"winner":          result.Winner,
		"summary":         result.Summary,
	})
}

// ExportExcel renders result as an xlsx workbook.
func (c *Client) ExportExcel(ctx context.Context, result Result, lang platformi18n.Language) (Export, error) {
	return c.export(ctx, "export_excel", exportExcelPath, "tender_analysis.xlsx", lang, tableExportBody(result, lang))
}

// ExportCSV renders result as CSV.
func (c *Client) ExportCSV(ctx context.Context, result Result, lang platformi18n.Language) (Export, error) {
	return c.export(ctx, "export_csv", exportCSVPath, "tender_analysis.csv", lang, tableExportBody(result, lang))
}

func tableExportBody(result Result, lang platformi18n.Language) map[string]any {
	return map[string]any{
		"tender":   result.Tender,
		"ranking":  result.Ranking,
		"summary":  result.Summary,
		"language": lang.String(),
	}
}

func (c *Client) export(ctx context.Context, op, path, fallbackName string, lang platformi18n.Language, payload map[string]any) (Export, error) {
	if rankingOf(payload) == 0 {
		return Export{}, invalidArgument("ranking")
	}
	body, err := jsonBody(payload)
	if err != nil {
		return Export{}, err
	}

	ctx, span := platformotel.Tracer().Start(ctx, "analysis."+op)
	defer span.End()

	req, err := c.newRequest(ctx, http.MethodPost, path, lang, "application/json", body)
	if err != nil {
		return Export{}, err
	}
	resp, data, err := c.send(req)
	if err != nil {
		recordError(span, err)
		return Export{}, err
	}
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	contentType := resp.Header.Get("Content-Type")
	if resp.StatusCode >= 300 || strings.HasPrefix(contentType, "application/json") {
		err := checkResponse(op, resp.StatusCode, data)
		if err == nil {
			err = apperrors.WithMetadata(apperrors.CodeUpstreamRejected, op+" returned no file", map[string]string{"Status": strconv.Itoa(resp.StatusCode)})
		}
		recordError(span, err)
		return Export{}, err
	}

	return Export{
		Filename:    attachmentName(resp.Header.Get("Content-Disposition"), fallbackName),
		ContentType: contentType,
		Body:        data,
	}, nil
}

func rankingOf(payload map[string]any) int {
	ranking, _ := payload["ranking"].([]ParticipantAnalysis)
	return len(ranking)
}

// call sends one request, checks the envelope and decodes the body into out.
func (c *Client) call(ctx context.Context, op, method, path string, lang platformi18n.Language, contentType string, body io.Reader, out any) error {
	ctx, span := platformotel.Tracer().Start(ctx, "analysis."+op)
	defer span.End()

	req, err := c.newRequest(ctx, method, path, lang, contentType, body)
	if err != nil {
		recordError(span, err)
		return err
	}
	resp, data, err := c.send(req)
	if err != nil {
		recordError(span, err)
		return err
	}
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if err := checkResponse(op, resp.StatusCode, data); err != nil {
		recordError(span, err)
		return err
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		err = apperrors.Wrap(apperrors.CodeUpstreamRejected, "decode "+op+" response", err)
		recordError(span, err)
		return err
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, lang platformi18n.Language, contentType string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", path, err)
	}
	token, err := c.tokens.AccessToken(ctx)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeUnauthenticated, "resolve access token", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if !lang.Valid() {
		lang = c.lang
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Language", lang.Locale())
	requestID := requestctx.RequestIDFromContext(ctx)
	if requestID == "" {
		requestID = uuid.NewString()
	}
	req.Header.Set(RequestIDHeader, requestID)
	return req, nil
}

func (c *Client) send(req *http.Request) (*http.Response, []byte, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("analysis request failed",
			zap.String("path", req.URL.Path),
			zap.String("request_id", req.Header.Get(RequestIDHeader)),
			zap.Error(err))
		return nil, nil, apperrors.Wrap(apperrors.CodeUpstreamUnavailable, req.URL.Path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, nil, apperrors.Wrap(apperrors.CodeUpstreamUnavailable, "read "+req.URL.Path+" response", err)
	}
	c.logger.Debug("analysis response",
		zap.String("method", req.Method),
		zap.String("path", req.URL.Path),
		zap.String("request_id", req.Header.Get(RequestIDHeader)),
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(data)))
	return resp, data, nil
}

type envelope struct {
	Success *bool  `json:"success"`
	Error   string `json:"error"`
}

// checkResponse maps a status and envelope to a coded error. The service
// reports analysis failures as success=false, usually with status 500.
func checkResponse(op string, status int, data []byte) error {
	statusMeta := map[string]string{"Status": strconv.Itoa(status)}
	if status == http.StatusUnauthorized {
		return apperrors.WithMetadata(apperrors.CodeUnauthenticated, op+" unauthorized", statusMeta)
	}

	var env envelope
	_ = json.Unmarshal(data, &env)
	failed := env.Success != nil && !*env.Success

	switch {
	case status == http.StatusNotFound:
		return apperrors.WithMetadata(apperrors.CodeNotFound, op+" not found", statusMeta)
	case failed:
		reason := strings.TrimSpace(env.Error)
		if reason == "" {
			reason = http.StatusText(status)
		}
		return apperrors.WithMetadata(apperrors.CodeAnalysisFailed, op+" failed: "+reason, map[string]string{"Reason": reason, "Status": strconv.Itoa(status)})
	case status < 200 || status >= 300:
		return apperrors.WithMetadata(apperrors.CodeUpstreamRejected, fmt.Sprintf("%s returned %d", op, status), statusMeta)
	}
	return nil
}

func recordError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(otelcodes.Error, string(apperrors.CodeOf(err)))
}

func multipartBody(doc Document, fields [][2]string) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for _, field := range fields {
		if err := writer.WriteField(field[0], field[1]); err != nil {
			return nil, "", fmt.Errorf("write %s field: %w", field[0], err)
		}
	}
	name := strings.TrimSpace(doc.Name)
	if name == "" {
		name = "document"
	}
	part, err := writer.CreateFormFile("file", name)
	if err != nil {
		return nil, "", fmt.Errorf("create file part: %w", err)
	}
	if _, err := io.Copy(part, doc.Body); err != nil {
		return nil, "", fmt.Errorf("copy %s: %w", name, err)
	}
	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart body: %w", err)
	}
	return &buf, writer.FormDataContentType(), nil
}

func jsonBody(payload any) (*bytes.Reader, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	return bytes.NewReader(data), nil
}

func attachmentName(disposition, fallback string) string {
	_, params, err := mime.ParseMediaType(disposition)
	if err != nil {
		return fallback
	}
	if name := strings.TrimSpace(params["filename"]); name != "" {
		return name
	}
	return fallback
}

func invalidArgument(field string) error {
	return apperrors.WithMetadata(apperrors.CodeInvalidArgument, field+" is required", map[string]string{"Field": field})
}

func minParticipants() error {
	return apperrors.WithMetadata(apperrors.CodeMinParticipants,
		fmt.Sprintf("at least %d participants are required", MinParticipants),
		map[string]string{"Min": strconv.Itoa(MinParticipants)})
}
