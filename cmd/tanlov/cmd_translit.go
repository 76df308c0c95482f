package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/muslimbek77/tanlov-ai/internal/platform/translit"
)

func newTranslitCmd(app *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "translit [text...]",
		Short: "Transliterate Uzbek Latin text to Cyrillic",
		Long: `Transliterate Uzbek Latin text to Cyrillic.

Arguments are joined with single spaces. Without arguments the text is read
from stdin line by line, so large files stream through.`,
		Example: `  tanlov translit "O'zbekiston Respublikasi"
  tanlov translit < hujjat.txt > hujjat.cyr.txt`,
		RunE: app.runTranslit,
	}
}

func (c *cli) runTranslit(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		text := translit.LatinToCyrillic(strings.Join(args, " "))
		if c.jsonOut {
			return outputJSON(c.stdout, map[string]string{"text": text})
		}
		_, err := fmt.Fprintln(c.stdout, text)
		return err
	}

	if f, ok := c.stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return errors.New("no text given: pass arguments or pipe text on stdin")
	}
	if c.jsonOut {
		var b strings.Builder
		if _, err := translit.Copy(&b, c.stdin); err != nil {
			return fmt.Errorf("transliterate stdin: %w", err)
		}
		return outputJSON(c.stdout, map[string]string{"text": b.String()})
	}
	if _, err := translit.Copy(c.stdout, c.stdin); err != nil {
		return fmt.Errorf("transliterate stdin: %w", err)
	}
	return nil
}
