package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	platformcmd "github.com/muslimbek77/tanlov-ai/internal/platform/cmd"
	apperrors "github.com/muslimbek77/tanlov-ai/internal/platform/errors"
	"github.com/muslimbek77/tanlov-ai/internal/services/analysis"
	"github.com/muslimbek77/tanlov-ai/internal/services/dashboard/storage"
)

func newAnalyzeCmd(app *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze a tender and its participants",
		Long: `Analyze a tender and its participants with the remote service.

"analyze tender" starts an analysis and remembers it in the dashboard
database. "analyze participants --resume" and "compare" with no arguments
continue it; "history save" and "export" read the finished result from it.
"analyze reset" forgets it.`,
	}

	tender := &cobra.Command{
		Use:   "tender <file>",
		Short: "Extract the requirements of a tender document",
		Args:  cobra.ExactArgs(1),
		RunE:  app.traced(platformcmd.ServiceCLI, app.runAnalyzeTender),
	}

	var resume bool
	var concurrency int
	participants := &cobra.Command{
		Use:   "participants [<tender-json>] <name=file>...",
		Short: "Evaluate participant bids against the tender",
		Long: `Evaluate participant bids against the tender.

Each participant is given as name=file. Uploads run concurrently; names
already analyzed are skipped. With --resume the tender and earlier
participants come from the stored analysis instead of <tender-json>.`,
		Example: `  tanlov analyze participants tender.json "Alfa MChJ=alfa.pdf" "Beta QK=beta.docx"
  tanlov analyze participants --resume "Gamma=gamma.pdf"`,
		Args: func(cmd *cobra.Command, args []string) error {
			if resume {
				return cobra.MinimumNArgs(1)(cmd, args)
			}
			return cobra.MinimumNArgs(2)(cmd, args)
		},
		RunE: app.traced(platformcmd.ServiceCLI, func(cmd *cobra.Command, args []string) error {
			return app.runAnalyzeParticipants(cmd, args, resume, concurrency)
		}),
	}
	participants.Flags().BoolVar(&resume, "resume", false, "continue the stored analysis")
	participants.Flags().IntVar(&concurrency, "concurrency", 0, "uploads in flight (default: TANLOV_PARTICIPANT_CONCURRENCY)")

	reset := &cobra.Command{
		Use:   "reset",
		Short: "Clear the current tender on the service and the stored analysis",
		Args:  cobra.NoArgs,
		RunE:  app.traced(platformcmd.ServiceCLI, app.runAnalyzeReset),
	}

	cmd.AddCommand(tender, participants, reset)
	return cmd
}

func newCompareCmd(app *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "compare [analyses-json]",
		Short: "Rank analyzed participants and pick a winner",
		Long: `Rank analyzed participants and pick a winner.

The input is a JSON array of participant analyses or a saved result. Without
an argument the stored analysis is compared and the ranking is stored with
it. With --json the complete result is printed, ready for "history save" and
"export".`,
		Args: cobra.MaximumNArgs(1),
		RunE: app.traced(platformcmd.ServiceCLI, app.runCompare),
	}
}

func newAntifraudCmd(app *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "antifraud <request-json>",
		Short: "Screen bids for collusion and price manipulation",
		Long: `Screen bids for collusion and price manipulation.

The request is {"participants": [{"name", "price", "documents", "details"}],
"tender_info": {"name", "budget", "deadline"}}. Participants without a name or
price are ignored; at least two must remain.`,
		Args: cobra.ExactArgs(1),
		RunE: app.traced(platformcmd.ServiceCLI, app.runAntifraud),
	}
}

func (c *cli) runAnalyzeTender(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	lang := c.language(ctx)
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("open tender document: %w", err)
	}
	defer f.Close()

	tender, err := c.analysisClient(ctx).AnalyzeTender(ctx, analysis.Document{Name: filepath.Base(args[0]), Body: f}, lang)
	if err != nil {
		return err
	}
	if err := c.saveContinuation(ctx, analysis.Result{Tender: &tender}); err != nil {
		return err
	}

	if c.jsonOut {
		return outputJSON(c.stdout, tender)
	}
	loc := c.localizer(ctx)
	p := c.palette(ctx)
	fmt.Fprintln(c.stdout, p.Title.Render(tender.TenderPurpose))
	printField(c.stdout, p, loc.T("analysis.type"), tender.TenderType)
	printField(c.stdout, p, loc.T("analysis.requirements_count"), fmt.Sprintf("%d (%d %s)", tender.RequirementsCount, tender.MandatoryCount, loc.T("analysis.mandatory")))
	for _, req := range tender.Requirements {
		marker := " "
		if req.IsMandatory {
			marker = "*"
		}
		fmt.Fprintf(c.stdout, "  %s %s %s\n", marker, req.Title, p.Muted.Render("["+req.Category+"]"))
	}
	for _, warning := range tender.Warnings {
		fmt.Fprintf(c.stdout, "%s %s\n", p.Warn.Render("!"), warning)
	}
	return nil
}

func (c *cli) runAnalyzeParticipants(cmd *cobra.Command, args []string, resume bool, concurrency int) error {
	ctx := cmd.Context()
	lang := c.language(ctx)

	var result analysis.Result
	if resume {
		stored, err := c.peekContinuation(ctx)
		if err != nil {
			return err
		}
		result = stored
	} else {
		tender, err := c.readTender(args[0])
		if err != nil {
			return err
		}
		result.Tender = &tender
		args = args[1:]
	}

	docs, closeAll, err := openParticipantDocuments(args)
	if err != nil {
		return err
	}
	defer closeAll()

	if concurrency <= 0 {
		concurrency = c.cfg.ParticipantConcurrency
	}
	analyses, err := c.analysisClient(ctx).AnalyzeParticipants(ctx, docs, lang, concurrency, result.Participants...)
	if err != nil {
		return err
	}
	result.Participants = analyses
	if err := c.saveContinuation(ctx, result); err != nil {
		return err
	}

	settings := c.settings(ctx)
	if len(analyses) < settings.MinParticipantsForAnalysis {
		c.logger.Info("fewer participants than the configured minimum",
			zap.Int("participants", len(analyses)),
			zap.Int("minimum", settings.MinParticipantsForAnalysis))
	}

	if c.jsonOut {
		return outputJSON(c.stdout, analyses)
	}
	c.printParticipants(ctx, analyses)
	return nil
}

func (c *cli) runAnalyzeReset(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if err := c.analysisClient(ctx).Reset(ctx); err != nil {
		return err
	}
	if _, err := c.takeContinuation(ctx); err != nil && !apperrors.HasCode(err, apperrors.CodeNotFound) {
		return err
	}
	if c.jsonOut {
		return outputJSON(c.stdout, map[string]bool{"success": true})
	}
	_, err := fmt.Fprintln(c.stdout, c.localizer(ctx).T("analysis.new_analysis"))
	return err
}

func (c *cli) runCompare(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	lang := c.language(ctx)

	var result analysis.Result
	if len(args) == 0 {
		stored, err := c.peekContinuation(ctx)
		if err != nil {
			return err
		}
		result = stored
	} else {
		loaded, err := c.readAnalyses(args[0])
		if err != nil {
			return err
		}
		result = loaded
	}

	comparison, err := c.analysisClient(ctx).CompareParticipants(ctx, result.Participants, lang)
	if err != nil {
		return err
	}
	result.Ranking = comparison.Ranking
	result.Winner = comparison.Winner
	result.Summary = comparison.Summary
	if len(args) == 0 {
		if err := c.saveContinuation(ctx, result); err != nil {
			return err
		}
	}

	if c.jsonOut {
		return outputJSON(c.stdout, result)
	}
	loc := c.localizer(ctx)
	p := c.palette(ctx)
	c.printParticipants(ctx, comparison.Ranking)
	if comparison.Winner != nil {
		printField(c.stdout, p, loc.T("analysis.winner"), p.Good.Render(comparison.Winner.ParticipantName))
	}
	if comparison.Summary != "" {
		fmt.Fprintln(c.stdout, comparison.Summary)
	}
	return nil
}

// fraudInput is the file form of analysis.FraudRequest.
type fraudInput struct {
	Participants []analysis.FraudParticipant `json:"participants"`
	Tender       analysis.TenderInfo         `json:"tender_info"`
}

func (c *cli) runAntifraud(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	var input fraudInput
	if err := c.readJSONFile(args[0], &input); err != nil {
		return err
	}

	out, err := c.analysisClient(ctx).AnalyzeFraud(ctx, analysis.FraudRequest{
		Participants: input.Participants,
		Tender:       input.Tender,
	})
	if err != nil {
		return err
	}

	if c.jsonOut {
		return outputJSON(c.stdout, out)
	}
	loc := c.localizer(ctx)
	p := c.palette(ctx)
	printField(c.stdout, p, loc.T("antifraud.overall_risk"), fmt.Sprintf("%s (%.0f)", p.Risk(out.OverallRiskLevel), out.OverallRiskScore))
	for _, ind := range out.FraudIndicators {
		fmt.Fprintf(c.stdout, "  %s %s\n", p.Risk(ind.Severity), p.Label.Render(ind.Title))
		if ind.Description != "" {
			fmt.Fprintf(c.stdout, "    %s\n", ind.Description)
		}
		if len(ind.InvolvedParticipants) > 0 {
			fmt.Fprintf(c.stdout, "    %s\n", p.Muted.Render(strings.Join(ind.InvolvedParticipants, ", ")))
		}
	}
	for _, rec := range out.Recommendations {
		fmt.Fprintf(c.stdout, "- %s\n", rec)
	}
	if out.Summary != "" {
		fmt.Fprintln(c.stdout, out.Summary)
	}
	return nil
}

func (c *cli) printParticipants(ctx context.Context, analyses []analysis.ParticipantAnalysis) {
	p := c.palette(ctx)
	for i, a := range analyses {
		rank := a.Rank
		if rank == 0 {
			rank = i + 1
		}
		fmt.Fprintf(c.stdout, "%2d. %s  %s  %s\n", rank, p.Label.Render(a.ParticipantName), formatScore(a.OverallMatchPercentage), p.Risk(a.RiskLevel))
		if a.Recommendation != "" {
			fmt.Fprintf(c.stdout, "    %s\n", p.Muted.Render(a.Recommendation))
		}
	}
}

// openParticipantDocuments opens every name=file argument. The returned
// function closes the files opened so far.
func openParticipantDocuments(args []string) ([]analysis.ParticipantDocument, func(), error) {
	var files []*os.File
	closeAll := func() {
		for _, f := range files {
			_ = f.Close()
		}
	}
	docs := make([]analysis.ParticipantDocument, 0, len(args))
	for _, arg := range args {
		name, path, ok := strings.Cut(arg, "=")
		if !ok || strings.TrimSpace(name) == "" || path == "" {
			closeAll()
			return nil, nil, fmt.Errorf("participant %q: want name=file", arg)
		}
		f, err := os.Open(path)
		if err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("open participant document: %w", err)
		}
		files = append(files, f)
		docs = append(docs, analysis.ParticipantDocument{
			Name:     strings.TrimSpace(name),
			Document: analysis.Document{Name: filepath.Base(path), Body: f},
		})
	}
	return docs, closeAll, nil
}

// readTender accepts a tender analysis or a result holding one.
func (c *cli) readTender(path string) (analysis.TenderAnalysis, error) {
	var raw json.RawMessage
	if err := c.readJSONFile(path, &raw); err != nil {
		return analysis.TenderAnalysis{}, err
	}
	var wrapped struct {
		Tender *analysis.TenderAnalysis `json:"tender"`
	}
	if err := json.Unmarshal(raw, &wrapped); err == nil && wrapped.Tender != nil {
		return *wrapped.Tender, nil
	}
	var tender analysis.TenderAnalysis
	if err := json.Unmarshal(raw, &tender); err != nil {
		return analysis.TenderAnalysis{}, fmt.Errorf("decode tender analysis: %w", err)
	}
	return tender, nil
}

// readAnalyses accepts a JSON array of participant analyses or a result.
func (c *cli) readAnalyses(path string) (analysis.Result, error) {
	var raw json.RawMessage
	if err := c.readJSONFile(path, &raw); err != nil {
		return analysis.Result{}, err
	}
	if trimmed := bytes.TrimSpace(raw); len(trimmed) > 0 && trimmed[0] == '[' {
		var analyses []analysis.ParticipantAnalysis
		if err := json.Unmarshal(trimmed, &analyses); err != nil {
			return analysis.Result{}, fmt.Errorf("decode participant analyses: %w", err)
		}
		return analysis.Result{Participants: analyses}, nil
	}
	var result analysis.Result
	if err := json.Unmarshal(raw, &result); err != nil {
		return analysis.Result{}, fmt.Errorf("decode result: %w", err)
	}
	return result, nil
}

// readResult loads a saved result from path, or the stored analysis when
// path is empty.
func (c *cli) readResult(ctx context.Context, path string) (analysis.Result, error) {
	if path == "" {
		return c.peekContinuation(ctx)
	}
	var result analysis.Result
	if err := c.readJSONFile(path, &result); err != nil {
		return analysis.Result{}, err
	}
	return result, nil
}

func (c *cli) saveContinuation(ctx context.Context, result analysis.Result) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode stored analysis: %w", err)
	}
	store, err := c.openStore(ctx)
	if err != nil {
		return err
	}
	return store.PutContinuation(ctx, storage.Continuation{Payload: payload})
}

// takeContinuation returns and clears the stored analysis. A missing one is
// NOT_FOUND.
func (c *cli) takeContinuation(ctx context.Context) (analysis.Result, error) {
	store, err := c.openStore(ctx)
	if err != nil {
		return analysis.Result{}, err
	}
	return decodeContinuation(store.TakeContinuation(ctx))
}

// peekContinuation returns the stored analysis and leaves it stored.
func (c *cli) peekContinuation(ctx context.Context) (analysis.Result, error) {
	store, err := c.openStore(ctx)
	if err != nil {
		return analysis.Result{}, err
	}
	return decodeContinuation(store.GetContinuation(ctx))
}

func decodeContinuation(stored storage.Continuation, err error) (analysis.Result, error) {
	if errors.Is(err, storage.ErrNotFound) {
		return analysis.Result{}, apperrors.WithMetadata(apperrors.CodeNotFound, "no stored analysis", map[string]string{"Field": "analysis"})
	}
	if err != nil {
		return analysis.Result{}, err
	}
	var result analysis.Result
	if err := json.Unmarshal(stored.Payload, &result); err != nil {
		return analysis.Result{}, fmt.Errorf("decode stored analysis: %w", err)
	}
	return result, nil
}
