package cmd

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/cafesales-cli/internal/analysis"
	"github.com/KaramelBytes/cafesales-cli/internal/utils"
)

var (
	viewSort   string
	viewTop    int
	viewFormat string
)

var viewCmd = &cobra.Command{
	Use:   "view <name> [file]",
	Short: "Print an aggregate view (daily_sales, time_heatmap, item_performance, location_performance, payment_method)",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		opt, err := loadOptions(cmd, args[1:])
		if err != nil {
			return err
		}
		name, err := analysis.ParseViewName(args[0])
		if err != nil {
			return err
		}
		ds, _, err := analysis.Load(cmd.Context(), opt)
		if err != nil {
			return err
		}
		v, err := analysis.Aggregate(string(name), ds)
		if err != nil {
			return err
		}
		switch strings.ToLower(viewSort) {
		case "", "key":
			v = analysis.Head(v, viewTop)
		case "sum":
			if name == analysis.ViewTimeHeatmap {
				return fmt.Errorf("--sort sum does not apply to %s: the heatmap is dense and kept in weekday/hour order", name)
			}
			v = analysis.TopBySum(v, viewTop)
		default:
			return fmt.Errorf("unsupported --sort: %s (use key|sum)", viewSort)
		}

		out := cmd.OutOrStdout()
		switch strings.ToLower(viewFormat) {
		case "", "table":
			return writeView(out, v)
		case "json":
			b, err := utils.PrettyJSON(v)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, string(b))
			return nil
		case "csv":
			for _, row := range append([][]string{v.Columns()}, v.Rows()...) {
				fmt.Fprintln(out, strings.Join(row, ","))
			}
			return nil
		}
		return fmt.Errorf("unsupported --format: %s (use table|json|csv)", viewFormat)
	},
}

func writeView(out io.Writer, v analysis.View) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, strings.ToUpper(strings.Join(v.Columns(), "\t")))
	for _, row := range v.Rows() {
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	if v.Len() == 0 {
		fmt.Fprintln(w, "(no rows)")
	}
	return w.Flush()
}

func init() {
	rootCmd.AddCommand(viewCmd)
	addDataFlags(viewCmd)
	viewCmd.Flags().StringVar(&viewSort, "sort", "key", "row order: key|sum (the heatmap only supports key)")
	viewCmd.Flags().IntVar(&viewTop, "top", 0, "keep at most N rows (0 = all)")
	viewCmd.Flags().StringVarP(&viewFormat, "format", "f", "table", "output format: table|json|csv")
}
