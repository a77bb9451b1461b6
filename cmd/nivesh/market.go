package main

import (
	"fmt"

	"nivesh-ai-backend/models"
	"nivesh-ai-backend/signals"

	"github.com/spf13/cobra"
)

var (
	marketSector string
	marketTAM    float64
	marketSAM    float64
	marketSOM    float64
	marketGrowth float64
)

var marketCmd = &cobra.Command{
	Use:   "market",
	Short: "Validate TAM/SAM/SOM and growth against sector benchmarks",
	RunE: func(cmd *cobra.Command, args []string) error {
		sector, ok := signals.MarketSectorFromString(marketSector)
		if !ok {
			return fmt.Errorf("%w: %q (use saas, fintech or healthtech)", signals.ErrUnsupportedSector, marketSector)
		}
		result, err := signals.ValidateMarketOpportunity(models.MarketOpportunityInput{
			Sector:     sector,
			TAM:        marketTAM,
			SAM:        marketSAM,
			SOM:        marketSOM,
			GrowthRate: marketGrowth,
		})
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), result)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s %s\n", heading("Market score:"), scoreColor(float64(result.Score), 100)(fmt.Sprintf("%d / 100", result.Score)))
		fmt.Fprintf(out, "Growth: %s\n", result.GrowthAlignment)
		for _, flag := range result.Flags {
			fmt.Fprintf(out, "  %s %s\n", warn("!"), flag)
		}
		return nil
	},
}

func init() {
	marketCmd.Flags().StringVar(&marketSector, "sector", "", "saas, fintech or healthtech")
	marketCmd.Flags().Float64Var(&marketTAM, "tam", 0, "total addressable market in USD")
	marketCmd.Flags().Float64Var(&marketSAM, "sam", 0, "serviceable addressable market in USD")
	marketCmd.Flags().Float64Var(&marketSOM, "som", 0, "serviceable obtainable market in USD")
	marketCmd.Flags().Float64Var(&marketGrowth, "growth", 0, "claimed annual growth rate in percent")
	_ = marketCmd.MarkFlagRequired("sector")

	rootCmd.AddCommand(marketCmd)
}
