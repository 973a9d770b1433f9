package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/crimeviz/pkg/errors"
	"github.com/matzehuels/crimeviz/pkg/pipeline"
)

type barFlags struct {
	renderFlags
	database   string
	collection string
}

// barCommand creates the bar command.
func (c *CLI) barCommand() *cobra.Command {
	var flags barFlags

	cmd := &cobra.Command{
		Use:   "bar [records.json|URL|mongodb://...]",
		Short: "Render a grouped bar chart of crimes by borough and period",
		Long: `Render a grouped bar chart with one group per time period and one bar
per borough.

Records are read from a JSON file, an HTTP(S) URL or a MongoDB collection.
Without an argument the configured source (source.records) is used.`,
		Example: `  crimeviz bar crime_by_borough.json
  crimeviz bar https://example.org/crime.json -f svg,html
  crimeviz bar mongodb://localhost:27017 --collection borough_totals`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.baseOptions()
			opts.Kind = pipeline.KindBar
			opts.RecordSource = c.Config.Source.Records
			if len(args) == 1 {
				opts.RecordSource = args[0]
			}
			if opts.RecordSource == "" {
				return errors.New(errors.ErrCodeInvalidInput, "no record source: pass one or set source.records in the config")
			}
			if flags.database != "" {
				opts.Source.MongoDatabase = flags.database
			}
			if flags.collection != "" {
				opts.Source.MongoCollection = flags.collection
			}
			if err := flags.apply(&opts); err != nil {
				return err
			}
			return c.runBar(cmd, opts, flags)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&flags.database, "database", "", "MongoDB database (default from config)")
	cmd.Flags().StringVar(&flags.collection, "collection", "", "MongoDB collection (default from config)")

	return cmd
}

func (c *CLI) runBar(cmd *cobra.Command, opts pipeline.Options, flags barFlags) error {
	ctx := cmd.Context()
	runner, err := c.newRunner(ctx, flags.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	prog := newProgress(loggerFromContext(ctx))
	res, err := spin(ctx, "Loading records", func() (*pipeline.Result, error) {
		return runner.Execute(ctx, opts)
	})
	if err != nil {
		return err
	}
	prog.done("bar chart rendered")

	if err := writeArtifacts(res, opts.Formats, flags.output); err != nil {
		return err
	}
	bars := 0
	for _, g := range res.Bar.Groups {
		bars += len(g.Bars)
	}
	printStats(bars, "bars", 0, res.CacheInfo.LayoutHit)
	return nil
}
