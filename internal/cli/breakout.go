package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"trademind/internal/app"
	"trademind/internal/trading"
)

// addBreakoutCommands adds the opening-range breakout calculator.
func addBreakoutCommands(rootCmd *cobra.Command, a *App) {
	rootCmd.AddCommand(newBreakoutCmd(a))
}

func newBreakoutCmd(a *App) *cobra.Command {
	var high, low, current, sl, capital, risk float64

	cmd := &cobra.Command{
		Use:   "breakout <asset>",
		Short: "Opening-range breakout risk calculator",
		Long: fmt.Sprintf(`Compute bias, stop, target and position size from an opening range.

Presets: %s. Any flag given overrides the preset value.`, strings.Join(trading.PresetAssets(), ", ")),
		Example: `  trademind breakout XAU
  trademind breakout NQ --current 18370 --capital 25000 --risk 1`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			r, ok := trading.Preset(args[0])
			if !ok {
				return fmt.Errorf("no preset for %q (available: %s)", args[0], strings.Join(trading.PresetAssets(), ", "))
			}
			flags := cmd.Flags()
			if flags.Changed("high") {
				r.High = high
			}
			if flags.Changed("low") {
				r.Low = low
			}
			if flags.Changed("current") {
				r.Current = current
			}
			if flags.Changed("sl") {
				r.StopOffset = sl
			}

			plan, err := trading.Evaluate(r, capital, risk)
			if err != nil {
				return err
			}
			if output.IsJSON() {
				return output.JSON(plan)
			}

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			s, err := a.Session(ctx)
			if err != nil {
				return err
			}
			renderPlan(output, s, plan)
			return nil
		},
	}

	cmd.Flags().Float64Var(&high, "high", 0, "range high")
	cmd.Flags().Float64Var(&low, "low", 0, "range low")
	cmd.Flags().Float64Var(&current, "current", 0, "current price")
	cmd.Flags().Float64Var(&sl, "sl", 0, "stop offset beyond the range edge")
	cmd.Flags().Float64Var(&capital, "capital", trading.DefaultCapital, "account capital")
	cmd.Flags().Float64Var(&risk, "risk", trading.DefaultRiskPercent, "risk per trade in percent")
	return cmd
}

func renderPlan(output *Output, s *app.Session, p trading.Plan) {
	r := p.Range
	output.Bold("%s  %s", r.Asset, output.DimText(r.Unit))
	output.Printf("  %s: %.2f   %s: %.2f   %s: %.2f\n", s.T("high"), r.High, s.T("low"), r.Low, s.T("current"), r.Current)
	output.Println()

	var bias string
	switch p.Bias {
	case trading.BiasLong:
		bias = output.Green(string(p.Bias))
	case trading.BiasShort:
		bias = output.Red(string(p.Bias))
	default:
		bias = output.Yellow(s.T("noTrade"))
	}

	lines := []string{
		fmt.Sprintf("%-14s %s", s.T("bias"), bias),
		fmt.Sprintf("%-14s %.2f", s.T("stopLoss"), p.StopLoss),
		fmt.Sprintf("%-14s %.2f", s.T("takeProfit"), p.TakeProfit),
		fmt.Sprintf("%-14s %.2f", s.T("riskAmount"), p.RiskAmount),
		fmt.Sprintf("%-14s %s", s.T("maxLots"), FormatLots(p.MaxLots)),
	}
	output.Box(s.T("riskStructAI"), lines)
	output.SourceLine(SourceCalc, "risk %.2f%% of %.0f, reward %.0fR", p.RiskPercent, p.Capital, trading.RewardMultiple)
}
