package cli

import (
	"fmt"
	"strings"

	"metastor/internal/plans"

	"github.com/spf13/cobra"
)

func newPlansCmd(opts *options) *cobra.Command {
	var solPrice float64

	cmd := &cobra.Command{
		Use:   "plans",
		Short: "Print the subscription plan catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			all := plans.All()

			if opts.outputFormat == "json" {
				return printJSON(out, all)
			}

			headers := []string{"TIER", "NAME", "STORAGE", "MONTHLY USD", "YEARLY USD"}
			if solPrice > 0 {
				headers = append(headers, "MONTHLY SOL", "YEARLY SOL")
			}
			table := NewTable(headers...)
			for _, p := range all {
				row := []string{
					p.Tier.String(),
					p.Name,
					plans.FormatBytes(p.StorageLimitBytes),
					fmt.Sprintf("%.2f", p.MonthlyPriceUSD),
					fmt.Sprintf("%.2f", p.YearlyPriceUSD),
				}
				if solPrice > 0 {
					monthly, err := plans.PriceInNativeToken(p.MonthlyPriceUSD, solPrice)
					if err != nil {
						return err
					}
					yearly, err := plans.PriceInNativeToken(p.YearlyPriceUSD, solPrice)
					if err != nil {
						return err
					}
					row = append(row, fmt.Sprintf("%.4f", monthly), fmt.Sprintf("%.4f", yearly))
				}
				table.AddRow(row...)
			}
			if err := table.Render(out); err != nil {
				return err
			}

			for _, p := range all {
				if p.Popular {
					fmt.Fprintf(out, "\nMost popular: %s (%s)\n", p.Name, strings.Join(p.Features, ", "))
				}
			}
			return nil
		},
	}

	cmd.Flags().Float64Var(&solPrice, "sol-price", 0, "USD price of one SOL; adds native-token prices when set")

	return cmd
}
