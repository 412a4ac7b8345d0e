package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"trademind/internal/i18n"
)

// addLanguageCommands adds the UI language switch.
func addLanguageCommands(rootCmd *cobra.Command, a *App) {
	rootCmd.AddCommand(newLangCmd(a))
}

func newLangCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "lang [tag]",
		Short: "Show or set the UI language",
		Long: `Without an argument, print the active language. With a tag (en, fr, ar or a
regional variant such as fr-CA) switch to it and remember the choice.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			s, err := a.Session(ctx)
			if err != nil {
				return err
			}

			lang := s.Language()
			if len(args) == 1 {
				if lang, err = s.SetLanguage(ctx, args[0]); err != nil {
					return err
				}
			}

			if output.IsJSON() {
				return output.JSON(map[string]interface{}{
					"language":  lang,
					"rtl":       i18n.IsRTL(lang),
					"supported": i18n.Supported(),
				})
			}

			if len(args) == 1 {
				output.Success("✓ %s: %s", s.T("language"), lang)
			} else {
				output.Printf("%s: %s\n", s.T("language"), output.BoldText(string(lang)))
			}
			for _, l := range i18n.Supported() {
				marker := " "
				if l == lang {
					marker = output.Green("•")
				}
				output.Printf("  %s %s\n", marker, l)
			}
			return nil
		},
	}
}
