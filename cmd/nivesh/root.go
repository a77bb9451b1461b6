package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"nivesh-ai-backend/config"
	"nivesh-ai-backend/docparse"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	currentConfig *config.Config
	jsonOutput    bool
)

var (
	heading = color.New(color.FgCyan, color.Bold).SprintFunc()
	good    = color.New(color.FgGreen).SprintFunc()
	warn    = color.New(color.FgYellow).SprintFunc()
	bad     = color.New(color.FgRed).SprintFunc()
)

var rootCmd = &cobra.Command{
	Use:          "nivesh",
	Short:        "Evidence-grounded startup analysis",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config.LoadEnv()
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		currentConfig = cfg
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print raw JSON instead of a summary")
	rootCmd.PersistentFlags().BoolVar(&color.NoColor, "no-color", color.NoColor, "disable colored output")
}

// readDocument parses a local file into text
func readDocument(ctx context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	fileType := docparse.DetectFileType("", path)
	parser := docparse.NewParser(docparse.WithPdfToText(currentConfig.PdfToTextPath))
	text, err := parser.Parse(ctx, data, fileType, filepath.Base(path))
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return text, nil
}

func printJSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// scoreColor colors a score by thirds of max
func scoreColor(score, max float64) func(a ...interface{}) string {
	switch {
	case score >= max*2/3:
		return good
	case score >= max/3:
		return warn
	default:
		return bad
	}
}
