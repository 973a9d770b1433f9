package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/crimeviz/pkg/pipeline"
	"github.com/matzehuels/crimeviz/pkg/render/html"
)

// pageCommand creates the page command.
func (c *CLI) pageCommand() *cobra.Command {
	var (
		output  string
		title   string
		records string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "page",
		Short: "Write an interactive HTML page of every built-in dataset",
		Long: `Write one HTML page with a pie chart per built-in dataset. When a record
source is given (or configured as source.records) the grouped bar chart is
added below the pies; a source that cannot be loaded is skipped with a
warning.`,
		Example: `  crimeviz page -o crime.html
  crimeviz page --records crime_by_borough.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			runner, err := c.newRunner(ctx, noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			opts := c.baseOptions()
			opts.Title = title
			opts.RecordSource = c.Config.Source.Records
			if records != "" {
				opts.RecordSource = records
			}

			var barErr error
			page, err := spin(ctx, "Building page", func() (*html.Page, error) {
				p, berr, err := runner.Overview(ctx, opts)
				barErr = berr
				return p, err
			})
			if err != nil {
				return err
			}
			body, err := page.Bytes()
			if err != nil {
				return err
			}
			if err := os.WriteFile(output, body, 0o644); err != nil {
				return err
			}
			printFile(output)
			if barErr != nil {
				printWarning("bar chart omitted: %v", barErr)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "crime."+pipeline.FormatHTML, "output file")
	cmd.Flags().StringVar(&title, "title", "", "page title")
	cmd.Flags().StringVar(&records, "records", "", "record source for the bar chart")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the layout cache")

	return cmd
}
