package main

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	apperrors "github.com/muslimbek77/tanlov-ai/internal/platform/errors"
)

func newI18nCmd(app *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "i18n",
		Short: "Inspect the interface message catalogs",
	}

	get := &cobra.Command{
		Use:   "get <key>",
		Short: "Print the message for a key in the active language",
		Long: `Print the message for a key in the active language.

Unknown keys print the key itself, the same way the interface shows them.`,
		Args: cobra.ExactArgs(1),
		RunE: app.runI18nGet,
	}

	var namespace string
	dump := &cobra.Command{
		Use:   "dump",
		Short: "Print every message of the active language",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.runI18nDump(cmd, namespace)
		},
	}
	dump.Flags().StringVar(&namespace, "namespace", "", "only print keys of this namespace (for example: common, analysis)")

	missing := &cobra.Command{
		Use:   "missing <key>...",
		Short: "List keys the active language has no message for",
		Args:  cobra.MinimumNArgs(1),
		RunE:  app.runI18nMissing,
	}

	cmd.AddCommand(get, dump, missing)
	return cmd
}

func (c *cli) runI18nGet(cmd *cobra.Command, args []string) error {
	loc := c.localizer(cmd.Context())
	value, found := loc.Lookup(args[0])
	if !found {
		value = args[0]
	}
	if c.jsonOut {
		return outputJSON(c.stdout, map[string]any{
			"language": loc.Language(),
			"key":      args[0],
			"value":    value,
			"found":    found,
		})
	}
	_, err := fmt.Fprintln(c.stdout, value)
	return err
}

func (c *cli) runI18nDump(cmd *cobra.Command, namespace string) error {
	loc := c.localizer(cmd.Context())
	messages := loc.Messages(namespace)
	if namespace != "" && len(messages) == 0 {
		return apperrors.WithMetadata(apperrors.CodeNotFound, "unknown namespace "+namespace, map[string]string{"Field": "namespace"})
	}
	if c.jsonOut {
		return outputJSON(c.stdout, map[string]any{
			"language": loc.Language(),
			"messages": messages,
		})
	}
	keys := make([]string, 0, len(messages))
	for key := range messages {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	for _, key := range keys {
		if _, err := fmt.Fprintf(c.stdout, "%s = %s\n", key, messages[key]); err != nil {
			return err
		}
	}
	return nil
}

func (c *cli) runI18nMissing(cmd *cobra.Command, args []string) error {
	loc := c.localizer(cmd.Context())
	missing := loc.Missing(args...)
	if c.jsonOut {
		if missing == nil {
			missing = []string{}
		}
		return outputJSON(c.stdout, map[string]any{
			"language": loc.Language(),
			"missing":  missing,
		})
	}
	for _, key := range missing {
		if _, err := fmt.Fprintln(c.stdout, key); err != nil {
			return err
		}
	}
	return nil
}
