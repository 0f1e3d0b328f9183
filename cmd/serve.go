package cmd

import (
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/cafesales-cli/internal/analysis"
	"github.com/KaramelBytes/cafesales-cli/internal/metrics"
	"github.com/KaramelBytes/cafesales-cli/internal/server"
)

var (
	serveHost string
	servePort int
)

var serveCmd = &cobra.Command{
	Use:   "serve [file]",
	Short: "Serve summary, insights, views and outliers as a read-only JSON API",
	Long: `Load the dataset once and serve it over HTTP:

  GET /api/summary            summary (start/end query params filter per request)
  GET /api/insights           headline insights (top product, peak hour, preferred payment)
  GET /api/views              available view names
  GET /api/views/{name}       one aggregate view (sort=key|sum, top=N; time_heatmap takes neither)
  GET /api/outliers           IQR fence diagnostics
  GET /healthz                liveness and dataset id
  GET /metrics                Prometheus metrics`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fl := cmd.Flags()
		if fl.Changed("host") {
			cfg.ServerHost = serveHost
		}
		if fl.Changed("port") {
			cfg.ServerPort = servePort
		}
		opt, err := loadOptions(cmd, args)
		if err != nil {
			return err
		}

		m := metrics.New()
		start := time.Now()
		res, err := analysis.LoadDetailed(cmd.Context(), opt)
		m.ObserveLoad(res, err, time.Since(start))
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return server.New(res.Dataset, m, logFrom(cmd)).ListenAndServe(ctx, cfg.Addr())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	addDataFlags(serveCmd)
	serveCmd.Flags().StringVar(&serveHost, "host", "", "listen host (overrides server_host)")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "listen port (overrides server_port)")
}
