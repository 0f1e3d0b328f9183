package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	cfgpkg "github.com/KaramelBytes/cafesales-cli/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set cafesales configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if cfg == nil {
			fmt.Fprintln(out, "No config loaded")
			return nil
		}
		fmt.Fprintf(out, "source_path: %s\n", cfg.SourcePath)
		if cfg.StartDate != "" {
			fmt.Fprintf(out, "start_date: %s\n", cfg.StartDate)
		}
		if cfg.EndDate != "" {
			fmt.Fprintf(out, "end_date: %s\n", cfg.EndDate)
		}
		fmt.Fprintf(out, "output_dir: %s\n", cfg.OutputDir)
		if cfg.Sheet != "" {
			fmt.Fprintf(out, "sheet: %s\n", cfg.Sheet)
		}
		if cfg.Delimiter != "" {
			fmt.Fprintf(out, "delimiter: %q\n", cfg.Delimiter)
		}
		fmt.Fprintf(out, "decimal_separator: %q\n", cfg.DecimalSeparator)
		if cfg.ThousandsSeparator != "" {
			fmt.Fprintf(out, "thousands_separator: %q\n", cfg.ThousandsSeparator)
		}
		fmt.Fprintf(out, "log_level: %s\n", cfg.LogLevel)
		fmt.Fprintf(out, "log_format: %s\n", cfg.LogFormat)
		fmt.Fprintf(out, "server: %s\n", cfg.Addr())
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Long:  "Set a config value and save to disk. Keys: " + strings.Join(cfgpkg.Keys, ", "),
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		switch strings.ToLower(key) {
		case "delimiter":
			d, err := parseDelimiter(val)
			if err != nil {
				return err
			}
			val = d
		case "decimal_separator":
			d, err := parseDecimal(val)
			if err != nil {
				return err
			}
			val = d
		case "thousands_separator":
			t, err := parseThousands(val)
			if err != nil {
				return err
			}
			val = t
		}
		// Edit what is on disk, not the effective config: env and flag
		// overrides must not be written back.
		persisted, err := cfgpkg.LoadFile(cfgFile)
		if err != nil {
			return err
		}
		if err := persisted.Set(key, val); err != nil {
			return err
		}
		if err := persisted.Validate(); err != nil {
			return err
		}
		if err := cfgpkg.Save(persisted, cfgFile); err != nil {
			return err
		}
		if cfg != nil {
			_ = cfg.Set(key, val)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
