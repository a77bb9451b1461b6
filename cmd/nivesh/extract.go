package main

import (
	"fmt"

	"nivesh-ai-backend/models"
	"nivesh-ai-backend/signals"

	"github.com/spf13/cobra"
)

var (
	founderRole   string
	founderSector string
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Run one deterministic extractor over a document",
}

var extractClaimsCmd = &cobra.Command{
	Use:   "claims <file>",
	Short: "Extract quantitative claims",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := readDocument(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		claims := signals.ValidateClaims(signals.ExtractClaims([]models.DocumentChunk{{ID: "1", Text: text}}))
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), claims)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, heading(fmt.Sprintf("%d claims", len(claims))))
		for _, c := range claims {
			fmt.Fprintf(out, "  %-16s %v\n", c.Claim, c.Value)
		}
		return nil
	},
}

var extractFounderCmd = &cobra.Command{
	Use:   "founder <file>",
	Short: "Score a founder from a CV or pitch deck",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := readDocument(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fv := signals.ExtractFounderSignals(text, "", founderRole, signals.WithSectorHint(founderSector))
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), fv)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s %s (%s)\n", heading("Founder:"), fv.Name, fv.Role)
		fmt.Fprintf(out, "Strength score: %s\n", scoreColor(fv.FounderStrengthScore, 10)(fmt.Sprintf("%.1f / 10", fv.FounderStrengthScore)))
		fmt.Fprintf(out, "Experience: %d years\n", fv.Signals.ExperienceYears)
		for _, flag := range fv.RedFlags {
			fmt.Fprintf(out, "  %s %s\n", bad("✗"), flag)
		}
		return nil
	},
}

var extractTeamCmd = &cobra.Command{
	Use:   "team <file>",
	Short: "Extract the team roster from a pitch deck",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := readDocument(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		team := signals.ExtractTeamInfo(text)
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), team)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, heading(fmt.Sprintf("%d team members", team.TotalMembers)))
		for _, m := range team.Members {
			experience := models.NotDisclosedInPitchDeck
			if m.Experience != nil {
				experience = m.Experience.Value
			}
			fmt.Fprintf(out, "  %s, %s (experience: %s)\n", m.Name, m.Role, experience)
		}
		return nil
	},
}

var extractProductTechCmd = &cobra.Command{
	Use:   "product-tech <file>",
	Short: "Extract product and technology signals from a pitch deck",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := readDocument(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		pt := signals.ExtractProductTech(text, nil)
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), pt)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s %s\n", heading("Sector:"), pt.Sector)
		fmt.Fprintln(out, pt.ProductSummary)
		for k, v := range pt.KeyMetrics {
			fmt.Fprintf(out, "  %s: %v\n", k, v)
		}
		return nil
	},
}

func init() {
	extractFounderCmd.Flags().StringVar(&founderRole, "role", "Founder", "role the founder holds")
	extractFounderCmd.Flags().StringVar(&founderSector, "sector", "", "startup sector, used for domain alignment")

	extractCmd.AddCommand(extractClaimsCmd, extractFounderCmd, extractTeamCmd, extractProductTechCmd)
	rootCmd.AddCommand(extractCmd)
}
