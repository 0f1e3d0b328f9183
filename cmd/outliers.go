package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/cafesales-cli/internal/analysis"
	"github.com/KaramelBytes/cafesales-cli/internal/utils"
)

var (
	outFields []string
	outFormat string
	outList   bool
)

var outliersCmd = &cobra.Command{
	Use:   "outliers [file]",
	Short: "Report values outside Q1-3·IQR .. Q3+3·IQR for numeric fields",
	Long: `Report values outside Q1-3·IQR .. Q3+3·IQR for numeric fields.
Outliers are diagnostic only; they are never removed from the dataset.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fields := analysis.NumericFields
		if len(outFields) > 0 {
			fields = fields[:0:0]
			for _, name := range outFields {
				f, ok := analysis.ParseField(name)
				if !ok || !f.IsNumeric() {
					return fmt.Errorf("%w: %s", analysis.ErrNotNumeric, name)
				}
				fields = append(fields, f)
			}
		}
		opt, err := loadOptions(cmd, args)
		if err != nil {
			return err
		}
		ds, _, err := analysis.Load(cmd.Context(), opt)
		if err != nil {
			return err
		}
		reports := make([]analysis.OutlierReport, 0, len(fields))
		for _, f := range fields {
			rep, err := analysis.DetectOutliers(ds, f)
			if err != nil {
				return err
			}
			reports = append(reports, rep)
		}

		out := cmd.OutOrStdout()
		if strings.EqualFold(outFormat, "json") {
			b, err := utils.PrettyJSON(reports)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, string(b))
			return nil
		}
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "FIELD\tN\tQ1\tQ3\tLOWER\tUPPER\tOUTLIERS")
		for _, r := range reports {
			fmt.Fprintf(w, "%s\t%d\t%.2f\t%.2f\t%.2f\t%.2f\t%d\n", r.Field, r.N, r.Q1, r.Q3, r.Lower, r.Upper, r.Count())
		}
		if err := w.Flush(); err != nil {
			return err
		}
		if !outList {
			return nil
		}
		for _, r := range reports {
			for _, i := range r.Indices {
				rec := ds.At(i)
				v, _ := rec.Number(r.Field)
				fmt.Fprintf(out, "- %s row %d %s: %s\n", r.Field, i, rec.ID, v)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(outliersCmd)
	addDataFlags(outliersCmd)
	outliersCmd.Flags().StringSliceVar(&outFields, "field", nil, "numeric fields to check (repeatable; default all)")
	outliersCmd.Flags().StringVarP(&outFormat, "format", "f", "table", "output format: table|json")
	outliersCmd.Flags().BoolVar(&outList, "list", false, "also list each outlying record")
}
