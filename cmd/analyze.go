package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/cafesales-cli/internal/analysis"
	"github.com/KaramelBytes/cafesales-cli/internal/utils"
)

var (
	anaOutputPath string
	anaSavePath   string
	anaFormat     string
	anaReport     bool
	anaTop        int
)

const (
	// processedFileName is written under output_dir by a bare --save.
	processedFileName = "processed_data.csv"
	// saveToOutputDir is the --save value when the flag is given without a path.
	saveToOutputDir = "<output_dir>/" + processedFileName
)

// analyzeOutput is the machine-readable form of an analyze run.
type analyzeOutput struct {
	Source   string                   `json:"source"`
	Summary  analysis.Summary         `json:"summary"`
	Insights analysis.Insights        `json:"insights"`
	Cleaning analysis.CleanStats      `json:"cleaning"`
	Outliers []analysis.OutlierReport `json:"outliers"`
	Range    string                   `json:"range,omitempty"`
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze [file]",
	Short: "Load, clean and summarize a sales file",
	Long: `Load a CSV/TSV/XLSX export, coerce dirty values to missing, drop rows without a
valid transaction date, report outliers and print the summary.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opt, err := loadOptions(cmd, args)
		if err != nil {
			return err
		}
		res, err := analysis.LoadDetailed(cmd.Context(), opt)
		if err != nil {
			return err
		}

		var body []byte
		format := strings.ToLower(anaFormat)
		switch format {
		case "", "markdown", "md":
			md := res.Summary.Markdown()
			if anaReport {
				rep, err := analysis.BuildReport(cmd.Context(), res.Dataset)
				if err != nil {
					return err
				}
				md = rep.Markdown(anaTop)
			}
			body = []byte(md)
		case "json", "yaml":
			out := analyzeOutput{
				Source:   opt.SourcePath,
				Summary:  res.Summary,
				Insights: analysis.DeriveInsights(res.Dataset),
				Cleaning: res.Stats,
				Outliers: res.Outliers,
			}
			if !opt.Range.IsZero() {
				out.Range = opt.Range.String()
			}
			if format == "json" {
				body, err = utils.PrettyJSON(out)
			} else {
				body, err = utils.YAML(out)
			}
			if err != nil {
				return err
			}
		default:
			return fmt.Errorf("unsupported --format: %s (use markdown|json|yaml)", anaFormat)
		}

		if savePath := resolveSavePath(anaSavePath); savePath != "" {
			data, err := analysis.EncodeCSV(res.Dataset)
			if err != nil {
				return fmt.Errorf("encode processed data: %w", err)
			}
			if err := utils.SafeWriteFile(savePath, data); err != nil {
				return fmt.Errorf("save processed data: %w", err)
			}
			log := logFrom(cmd)
			log.Info().Str("path", savePath).Int("records", res.Dataset.Len()).Msg("saved processed data")
		}

		if anaOutputPath != "" {
			if err := os.WriteFile(anaOutputPath, body, 0o644); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote analysis to %s\n", anaOutputPath)
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), strings.TrimRight(string(body), "\n"))
		return nil
	},
}

// resolveSavePath maps a bare --save onto output_dir/processed_data.csv.
func resolveSavePath(flagVal string) string {
	if flagVal != saveToOutputDir {
		return flagVal
	}
	dir := "."
	if cfg != nil && strings.TrimSpace(cfg.OutputDir) != "" {
		dir = cfg.OutputDir
	}
	return filepath.Join(dir, processedFileName)
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	addDataFlags(analyzeCmd)
	analyzeCmd.Flags().StringVarP(&anaOutputPath, "output", "o", "", "optional path to write the analysis")
	analyzeCmd.Flags().StringVar(&anaSavePath, "save", "", "write the cleaned dataset as CSV to --save=path (bare --save uses output_dir)")
	analyzeCmd.Flags().Lookup("save").NoOptDefVal = saveToOutputDir
	analyzeCmd.Flags().StringVarP(&anaFormat, "format", "f", "markdown", "output format: markdown|json|yaml")
	analyzeCmd.Flags().BoolVar(&anaReport, "report", false, "include outliers and every aggregate view (markdown only)")
	analyzeCmd.Flags().IntVar(&anaTop, "top", 10, "rows per view in --report (0 = all)")
}
