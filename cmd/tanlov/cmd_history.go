package main

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	platformcmd "github.com/muslimbek77/tanlov-ai/internal/platform/cmd"
	apperrors "github.com/muslimbek77/tanlov-ai/internal/platform/errors"
)

func newHistoryCmd(app *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Manage analyses saved on the service",
	}

	var limit, offset int
	list := &cobra.Command{
		Use:   "list",
		Short: "List saved analyses, newest first",
		Args:  cobra.NoArgs,
		RunE: app.traced(platformcmd.ServiceCLI, func(cmd *cobra.Command, _ []string) error {
			return app.runHistoryList(cmd, limit, offset)
		}),
	}
	list.Flags().IntVar(&limit, "limit", 20, "entries per page")
	list.Flags().IntVar(&offset, "offset", 0, "entries to skip")

	show := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one saved analysis",
		Args:  cobra.ExactArgs(1),
		RunE:  app.traced(platformcmd.ServiceCLI, app.runHistoryShow),
	}
	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete one saved analysis",
		Args:  cobra.ExactArgs(1),
		RunE:  app.traced(platformcmd.ServiceCLI, app.runHistoryDelete),
	}
	save := &cobra.Command{
		Use:   "save [result-json]",
		Short: "Save a finished analysis to the service history",
		Long: `Save a finished analysis to the service history.

Without an argument the stored analysis is saved.`,
		Args: cobra.MaximumNArgs(1),
		RunE: app.traced(platformcmd.ServiceCLI, app.runHistorySave),
	}

	cmd.AddCommand(list, show, del, save)
	return cmd
}

func newStatsCmd(app *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show the dashboard counters",
		Args:  cobra.NoArgs,
		RunE:  app.traced(platformcmd.ServiceCLI, app.runStats),
	}
}

func (c *cli) runHistoryList(cmd *cobra.Command, limit, offset int) error {
	ctx := cmd.Context()
	page, err := c.analysisClient(ctx).History(ctx, limit, offset)
	if err != nil {
		return err
	}
	if c.jsonOut {
		return outputJSON(c.stdout, page)
	}

	loc := c.localizer(ctx)
	p := c.palette(ctx)
	if len(page.Entries) == 0 {
		_, err := fmt.Fprintln(c.stdout, loc.T("history.empty"))
		return err
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(p.Muted).
		Headers("ID", loc.T("history.title"), loc.T("analysis.history_winner"), loc.T("analysis.match"), loc.T("analysis.participants")).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return p.Label
			}
			return lipgloss.NewStyle()
		})
	for _, entry := range page.Entries {
		t.Row(
			strconv.FormatInt(entry.ID, 10),
			entry.Tender,
			entry.Winner,
			formatScore(entry.WinnerScore),
			strconv.Itoa(entry.ParticipantCount),
		)
	}
	fmt.Fprintln(c.stdout, t.Render())
	_, err = fmt.Fprintf(c.stdout, "%s: %d %s\n", loc.T("history.total"), page.Total, loc.T("history.analyses"))
	return err
}

func (c *cli) runHistoryShow(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	detail, err := c.analysisClient(ctx).HistoryDetail(ctx, id)
	if err != nil {
		return err
	}
	if c.jsonOut {
		return outputJSON(c.stdout, detail)
	}

	loc := c.localizer(ctx)
	p := c.palette(ctx)
	fmt.Fprintln(c.stdout, p.Title.Render(detail.TenderName))
	printField(c.stdout, p, "ID", strconv.FormatInt(detail.ID, 10))
	printField(c.stdout, p, loc.T("analysis.type"), detail.TenderType)
	printField(c.stdout, p, loc.T("analysis.history_winner"), fmt.Sprintf("%s (%s)", detail.Winner, formatScore(detail.WinnerScore)))
	ranking := detail.Ranking
	if len(ranking) == 0 {
		ranking = detail.Participants
	}
	c.printParticipants(ctx, ranking)
	if detail.Summary != "" {
		fmt.Fprintln(c.stdout, detail.Summary)
	}
	return nil
}

func (c *cli) runHistoryDelete(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	if err := c.analysisClient(ctx).DeleteHistory(ctx, id); err != nil {
		return err
	}
	if c.jsonOut {
		return outputJSON(c.stdout, map[string]any{"success": true, "id": id})
	}
	_, err = fmt.Fprintf(c.stdout, "Deleted %d\n", id)
	return err
}

func (c *cli) runHistorySave(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	var path string
	if len(args) > 0 {
		path = args[0]
	}
	result, err := c.readResult(ctx, path)
	if err != nil {
		return err
	}
	id, err := c.analysisClient(ctx).SaveResult(ctx, result, c.language(ctx))
	if err != nil {
		return err
	}
	if c.jsonOut {
		return outputJSON(c.stdout, map[string]any{"success": true, "id": id})
	}
	_, err = fmt.Fprintf(c.stdout, "%s: %d\n", c.localizer(ctx).T("analysis.auto_saved"), id)
	return err
}

func (c *cli) runStats(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	stats, err := c.analysisClient(ctx).Stats(ctx)
	if err != nil {
		return err
	}
	if c.jsonOut {
		return outputJSON(c.stdout, stats)
	}
	loc := c.localizer(ctx)
	p := c.palette(ctx)
	printField(c.stdout, p, loc.T("dashboard.total_tenders"), fmt.Sprintf("%d (%d %s)", stats.TotalTenders, stats.ActiveTenders, loc.T("dashboard.active")))
	printField(c.stdout, p, loc.T("dashboard.participants"), fmt.Sprintf("%d (%d %s)", stats.TotalParticipants, stats.TenderParticipants, loc.T("dashboard.applications")))
	printField(c.stdout, p, loc.T("dashboard.evaluations"), strconv.Itoa(stats.TotalEvaluations))
	printField(c.stdout, p, loc.T("dashboard.fraud_risks"), fmt.Sprintf("%d (%d %s)", stats.FraudDetections, stats.HighRiskFrauds, loc.T("dashboard.high_risk")))
	printField(c.stdout, p, loc.T("dashboard.compliance"), fmt.Sprintf("%d (%d %s)", stats.ComplianceChecks, stats.CompliancePassed, loc.T("dashboard.passed")))
	return nil
}

func parseID(value string) (int64, error) {
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.WithMetadata(apperrors.CodeInvalidArgument, "invalid id "+value, map[string]string{"Field": "id"})
	}
	return id, nil
}
