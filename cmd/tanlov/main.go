// Command tanlov is the Tanlov AI command-line client: transliteration,
// message catalogs, tender analysis against the remote service, and the
// local dashboard server.
package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	platformcmd "github.com/muslimbek77/tanlov-ai/internal/platform/cmd"
	"github.com/muslimbek77/tanlov-ai/internal/platform/config"
	apperrors "github.com/muslimbek77/tanlov-ai/internal/platform/errors"
	platformi18n "github.com/muslimbek77/tanlov-ai/internal/platform/i18n"
	"github.com/muslimbek77/tanlov-ai/internal/platform/logging"
	"github.com/muslimbek77/tanlov-ai/internal/services/analysis"
	"github.com/muslimbek77/tanlov-ai/internal/services/auth"
	"github.com/muslimbek77/tanlov-ai/internal/services/dashboard/storage"
	"github.com/muslimbek77/tanlov-ai/internal/services/dashboard/storage/sqlite"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	app := newCLI(os.Stdin, os.Stdout, os.Stderr)
	err := newRootCmd(app).ExecuteContext(ctx)
	lang := app.lang
	app.close()
	stop()
	if err != nil {
		config.Exitf(err, "Error: %s", errorMessage(err, lang))
	}
}

// cli carries the state shared by every command of one invocation.
type cli struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	langFlag string
	dbPath   string
	apiURL   string
	verbose  bool
	jsonOut  bool

	cfg        config.App
	lang       platformi18n.Language
	langSet    bool
	logger     *zap.Logger
	httpClient *http.Client
	store      *sqlite.Store
	stored     *storage.Settings
}

func newCLI(stdin io.Reader, stdout, stderr io.Writer) *cli {
	return &cli{
		stdin:  stdin,
		stdout: stdout,
		stderr: stderr,
		lang:   platformi18n.DefaultLanguage,
		logger: zap.NewNop(),
	}
}

func newRootCmd(app *cli) *cobra.Command {
	root := &cobra.Command{
		Use:   "tanlov",
		Short: "Tanlov AI tender evaluation toolkit",
		Long: `tanlov transliterates Uzbek text, inspects the message catalogs, and drives
the remote tender analysis service: tender and participant analysis,
comparison, fraud screening, history, and report export.

Run "tanlov serve" for the local dashboard API.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: app.setup,
	}
	root.SetIn(app.stdin)
	root.SetOut(app.stdout)
	root.SetErr(app.stderr)

	flags := root.PersistentFlags()
	flags.StringVar(&app.langFlag, "lang", "", "interface language: uz_latn, uz_cyrl or ru (default: TANLOV_LANGUAGE or stored settings)")
	flags.StringVar(&app.dbPath, "db-path", "", "path to the sqlite dashboard database (default: TANLOV_DB_PATH or data/tanlov.db)")
	flags.StringVar(&app.apiURL, "api-url", "", "analysis service base URL (default: TANLOV_API_BASE_URL)")
	flags.BoolVarP(&app.verbose, "verbose", "v", false, "enable debug logging")
	flags.BoolVar(&app.jsonOut, "json", false, "print JSON instead of text")

	root.AddCommand(
		newTranslitCmd(app),
		newI18nCmd(app),
		newAuthCmd(app),
		newAnalyzeCmd(app),
		newCompareCmd(app),
		newAntifraudCmd(app),
		newHistoryCmd(app),
		newExportCmd(app),
		newStatsCmd(app),
		newSettingsCmd(app),
		newServeCmd(app),
	)
	return root
}

// setup loads the environment, applies flag overrides and builds the logger.
func (c *cli) setup(cmd *cobra.Command, _ []string) error {
	var cfg config.App
	if err := platformcmd.ParseConfig(&cfg); err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("api-url") {
		cfg.APIBaseURL = c.apiURL
	}
	if flags.Changed("db-path") {
		cfg.DBPath = c.dbPath
	}
	if flags.Changed("lang") {
		cfg.Language = c.langFlag
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	c.cfg = cfg
	if cfg.Language != "" {
		c.lang = platformi18n.ParseLanguage(cfg.Language)
		c.langSet = true
	}

	logger, err := logging.New(logging.Options{Verbose: c.verbose, Service: platformcmd.ServiceCLI})
	if err != nil {
		return err
	}
	c.logger = logger
	c.httpClient = &http.Client{Timeout: cfg.HTTPTimeout}
	return nil
}

// close releases the store and flushes the logger.
func (c *cli) close() {
	if c.store != nil {
		if err := c.store.Close(); err != nil {
			c.logger.Warn("close store", zap.Error(err))
		}
		c.store = nil
	}
	_ = c.logger.Sync()
}

// openStore opens the dashboard database on first use.
func (c *cli) openStore(ctx context.Context) (*sqlite.Store, error) {
	if c.store != nil {
		return c.store, nil
	}
	store, err := sqlite.Open(ctx, c.cfg.DBPath)
	if err != nil {
		return nil, err
	}
	c.store = store
	return store, nil
}

// settings returns the stored settings, or the defaults when the store
// cannot be read.
func (c *cli) settings(ctx context.Context) storage.Settings {
	if c.stored != nil {
		return *c.stored
	}
	settings := storage.DefaultSettings()
	store, err := c.openStore(ctx)
	if err == nil {
		settings, err = store.GetSettings(ctx)
	}
	if err != nil {
		c.logger.Debug("settings unavailable, using defaults", zap.Error(err))
		settings = storage.DefaultSettings()
	}
	settings = settings.Normalize()
	c.stored = &settings
	return settings
}

// language returns the flag or environment language, then the stored
// settings language.
func (c *cli) language(ctx context.Context) platformi18n.Language {
	if !c.langSet {
		c.lang = c.settings(ctx).Language
		c.langSet = true
	}
	return c.lang
}

// traced runs run under the telemetry of service.
func (c *cli) traced(service string, run func(cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		options := platformcmd.RunOptions{Logger: c.logger}
		return platformcmd.RunWithTelemetryAndOptions(cmd.Context(), service, options, func(ctx context.Context) error {
			cmd.SetContext(ctx)
			return run(cmd, args)
		})
	}
}

func (c *cli) localizer(ctx context.Context) *platformi18n.Localizer {
	return platformi18n.NewLocalizer(platformi18n.Config{Language: c.language(ctx)})
}

// tokens returns TANLOV_ACCESS_TOKEN when set, otherwise the access token
// of the stored session. No session means anonymous calls.
func (c *cli) tokens() analysis.TokenSource {
	if c.cfg.AccessToken != "" {
		return analysis.StaticToken(c.cfg.AccessToken)
	}
	return analysis.TokenFunc(func(ctx context.Context) (string, error) {
		store, err := c.openStore(ctx)
		if err != nil {
			return "", err
		}
		session, err := store.GetSession(ctx)
		if errors.Is(err, storage.ErrNotFound) {
			return "", nil
		}
		if err != nil {
			return "", err
		}
		return session.AccessToken, nil
	})
}

func (c *cli) analysisClient(ctx context.Context) *analysis.Client {
	return analysis.NewClient(analysis.Config{
		BaseURL:    c.cfg.APIBaseURL,
		HTTPClient: c.httpClient,
		Tokens:     c.tokens(),
		Language:   c.language(ctx),
		Logger:     c.logger,
	})
}

func (c *cli) authClient() *auth.Client {
	return auth.NewClient(c.cfg.APIBaseURL, c.httpClient, c.logger)
}

// errorMessage renders coded errors in lang and passes other errors through.
func errorMessage(err error, lang platformi18n.Language) string {
	var domainErr *apperrors.Error
	if errors.As(err, &domainErr) {
		return apperrors.LocalizedMessage(err, lang.Locale())
	}
	return err.Error()
}
