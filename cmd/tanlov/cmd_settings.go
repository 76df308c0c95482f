package main

import (
	"strconv"
	"time"

	"github.com/spf13/cobra"

	apperrors "github.com/muslimbek77/tanlov-ai/internal/platform/errors"
	platformi18n "github.com/muslimbek77/tanlov-ai/internal/platform/i18n"
	"github.com/muslimbek77/tanlov-ai/internal/services/dashboard/storage"
)

type settingsFlags struct {
	theme                   string
	language                string
	similarityThreshold     int
	priceDeviationThreshold int
	minParticipants         int
}

func newSettingsCmd(app *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change the dashboard preferences",
	}

	get := &cobra.Command{
		Use:   "get",
		Short: "Print the stored preferences",
		Args:  cobra.NoArgs,
		RunE:  app.runSettingsGet,
	}

	var flags settingsFlags
	set := &cobra.Command{
		Use:   "set",
		Short: "Change preferences; unset flags keep their stored value",
		Example: `  tanlov settings set --theme dark --language uz_cyrl
  tanlov settings set --min-participants 3`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.runSettingsSet(cmd, flags)
		},
	}
	set.Flags().StringVar(&flags.theme, "theme", "", "light or dark")
	set.Flags().StringVar(&flags.language, "language", "", "uz_latn, uz_cyrl or ru")
	set.Flags().IntVar(&flags.similarityThreshold, "similarity-threshold", 0, "match percentage treated as similar (0-100)")
	set.Flags().IntVar(&flags.priceDeviationThreshold, "price-deviation", 0, "price deviation percentage treated as suspicious (0-100)")
	set.Flags().IntVar(&flags.minParticipants, "min-participants", 0, "participants needed for an analysis (at least 2)")

	cmd.AddCommand(get, set)
	return cmd
}

func (c *cli) runSettingsGet(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	store, err := c.openStore(ctx)
	if err != nil {
		return err
	}
	settings, err := store.GetSettings(ctx)
	if err != nil {
		return err
	}
	return c.printSettings(cmd, settings.Normalize())
}

func (c *cli) runSettingsSet(cmd *cobra.Command, flags settingsFlags) error {
	ctx := cmd.Context()
	store, err := c.openStore(ctx)
	if err != nil {
		return err
	}
	settings, err := store.GetSettings(ctx)
	if err != nil {
		return err
	}

	changed := cmd.Flags().Changed
	if changed("theme") {
		settings.Theme = storage.Theme(flags.theme)
	}
	if changed("language") {
		if _, ok := platformi18n.ParseTag(flags.language); !ok {
			return apperrors.WithMetadata(apperrors.CodeSettingsInvalid, "invalid setting language", map[string]string{"Field": "language"})
		}
		settings.Language = platformi18n.ParseLanguage(flags.language)
	}
	if changed("similarity-threshold") {
		settings.SimilarityThreshold = flags.similarityThreshold
	}
	if changed("price-deviation") {
		settings.PriceDeviationThreshold = flags.priceDeviationThreshold
	}
	if changed("min-participants") {
		settings.MinParticipantsForAnalysis = flags.minParticipants
	}

	settings.UpdatedAt = time.Time{}
	if err := store.PutSettings(ctx, settings); err != nil {
		return err
	}
	saved, err := store.GetSettings(ctx)
	if err != nil {
		return err
	}
	saved = saved.Normalize()
	c.stored = &saved
	if c.cfg.Language == "" {
		c.lang = saved.Language
		c.langSet = true
	}
	return c.printSettings(cmd, saved)
}

func (c *cli) printSettings(cmd *cobra.Command, settings storage.Settings) error {
	if c.jsonOut {
		return outputJSON(c.stdout, settings)
	}
	ctx := cmd.Context()
	loc := c.localizer(ctx)
	p := newPalette(c.stdout, settings.Theme)
	printField(c.stdout, p, loc.T("settings.theme"), loc.T("settings."+string(settings.Theme)))
	printField(c.stdout, p, loc.T("settings.language"), loc.T(settings.Language.LabelKey()))
	printField(c.stdout, p, loc.T("settings.similarity_threshold"), strconv.Itoa(settings.SimilarityThreshold)+"%")
	printField(c.stdout, p, loc.T("settings.price_deviation"), strconv.Itoa(settings.PriceDeviationThreshold)+"%")
	printField(c.stdout, p, loc.T("settings.min_participants"), strconv.Itoa(settings.MinParticipantsForAnalysis))
	if !settings.UpdatedAt.IsZero() {
		printField(c.stdout, p, "Updated", p.Muted.Render(settings.UpdatedAt.Local().Format("2006-01-02 15:04")))
	}
	return nil
}
