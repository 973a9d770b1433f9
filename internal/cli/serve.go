package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/crimeviz/pkg/server"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		records string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve charts over HTTP",
		Long: `Serve charts over HTTP until interrupted.

  GET  /                         HTML page of all datasets
  GET  /datasets                 built-in datasets and totals
  GET  /pie/{dataset}.{format}   pie of a built-in dataset
  POST /pie.{format}             pie of the JSON counts in the body
  GET  /bar.{format}             grouped bar of the record source
  GET  /healthz                  liveness`,
		Example: `  crimeviz serve --addr :9000 --records crime_by_borough.json`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			runner, err := c.newRunner(ctx, noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			cfg := server.Config{
				Addr:         c.Config.Server.Addr,
				ReadTimeout:  c.Config.Server.ReadTimeout,
				WriteTimeout: c.Config.Server.WriteTimeout,
				Base:         c.baseOptions(),
				RecordSource: c.Config.Source.Records,
			}
			if addr != "" {
				cfg.Addr = addr
			}
			if records != "" {
				cfg.RecordSource = records
			}
			return server.New(cfg, runner, c.Logger).Run(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().StringVar(&records, "records", "", "record source for /bar and the index page")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the layout and artifact cache")

	return cmd
}
