package main

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"nivesh-ai-backend/app"
	"nivesh-ai-backend/models"
	"nivesh-ai-backend/service"

	"github.com/spf13/cobra"
)

var (
	analyzeMeta models.StartupMetadata
	analyzeRole string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <files...>",
	Short: "Run the full pipeline over local documents",
	Long: `Run extraction, ingestion and grounded analysis over local documents.

Each file is routed to an upload field by name: files containing "cv" or
"resume" are treated as the founder CV, "transcript" as a call transcript,
.eml files as email and everything else as the pitch deck. Prefix a path
with "field=" to set the field explicitly, e.g. cv=./founder.pdf.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		files := make([]service.UploadedFile, 0, len(args))
		for _, arg := range args {
			field, path := fieldForArg(arg)
			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			files = append(files, service.UploadedFile{
				Field:    field,
				Filename: filepath.Base(path),
				MimeType: mime.TypeByExtension(filepath.Ext(path)),
				Data:     data,
			})
		}

		a, err := app.New(cmd.Context(), currentConfig)
		if err != nil {
			return err
		}
		defer a.Close()

		result, err := a.Startups.Run(cmd.Context(), service.RunRequest{
			Metadata: analyzeMeta,
			Role:     analyzeRole,
			Files:    files,
		})
		if err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), bad("✗ analysis failed"))
			return err
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), result)
		}
		printRunResult(cmd, result)
		return nil
	},
}

func fieldForArg(arg string) (string, string) {
	if i := strings.Index(arg, "="); i > 0 {
		for _, f := range models.UploadFields {
			if arg[:i] == f {
				return f, arg[i+1:]
			}
		}
	}

	name := strings.ToLower(filepath.Base(arg))
	switch {
	case strings.Contains(name, "cv") || strings.Contains(name, "resume"):
		return models.FieldCV, arg
	case strings.Contains(name, "transcript"):
		return models.FieldTranscript, arg
	case strings.HasSuffix(name, ".eml"):
		return models.FieldEmail, arg
	}
	return models.FieldPitchDeck, arg
}

func printRunResult(cmd *cobra.Command, r *service.RunResult) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s %s\n", good("✓ analyzed"), r.StartupID)
	fmt.Fprintln(out)

	if r.Analysis != nil {
		fmt.Fprintln(out, heading("Summary"))
		fmt.Fprintln(out, r.Analysis.Summary)
		fmt.Fprintln(out)
		fmt.Fprintln(out, heading("Top risks"))
		for _, risk := range r.Analysis.TopRisks {
			fmt.Fprintf(out, "  %s %s\n", warn("!"), risk)
		}
		fmt.Fprintln(out)
	}

	if fv := r.FounderVerification; fv != nil {
		fmt.Fprintf(out, "%s %s, %s\n", heading("Founder:"), fv.Name,
			scoreColor(fv.FounderStrengthScore, 10)(fmt.Sprintf("%.1f / 10", fv.FounderStrengthScore)))
	}
	if r.TeamInfo != nil {
		fmt.Fprintf(out, "%s %d members\n", heading("Team:"), r.TeamInfo.TotalMembers)
	}
	if m := r.MarketOpportunity; m != nil {
		fmt.Fprintf(out, "%s %s (%s)\n", heading("Market:"),
			scoreColor(float64(m.Score), 100)(fmt.Sprintf("%d / 100", m.Score)), m.GrowthAlignment)
	}
	fmt.Fprintf(out, "%s %d\n", heading("Claims:"), len(r.Claims))
}

func init() {
	f := analyzeCmd.Flags()
	f.StringVar(&analyzeMeta.StartupName, "name", "", "startup name")
	f.StringVar(&analyzeMeta.Sector, "sector", "", "startup sector")
	f.StringVar(&analyzeMeta.Stage, "stage", "", "funding stage")
	f.StringVar(&analyzeMeta.Location, "location", "", "headquarters")
	f.StringVar(&analyzeMeta.Website, "website", "", "company website")
	f.StringVar(&analyzeRole, "role", "Founder", "role of the founder whose CV is supplied")

	rootCmd.AddCommand(analyzeCmd)
}
