package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/crimeviz/pkg/crime"
	"github.com/matzehuels/crimeviz/pkg/pipeline"
)

// renderFlags are shared by pie and bar.
type renderFlags struct {
	formats   string
	output    string
	title     string
	scale     float64
	nativePNG bool
	noCache   bool
	refresh   bool
}

func (f *renderFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.formats, "format", "f", pipeline.FormatSVG, "output formats, comma separated: "+strings.Join(pipeline.ValidFormats, ", "))
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "output file, or base path when several formats are given")
	cmd.Flags().StringVar(&f.title, "title", "", "document title")
	cmd.Flags().Float64Var(&f.scale, "scale", 0, "PNG scale factor when converting SVG")
	cmd.Flags().BoolVar(&f.nativePNG, "native-png", false, "draw PNG in-process instead of converting the SVG")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable the layout and artifact cache")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "recompute even when cached")
}

func (f *renderFlags) apply(opts *pipeline.Options) error {
	formats, err := pipeline.ParseFormats(f.formats)
	if err != nil {
		return err
	}
	opts.Formats = formats
	opts.Title = f.title
	opts.Scale = f.scale
	opts.NativePNG = f.nativePNG
	opts.Refresh = f.refresh
	return nil
}

type pieFlags struct {
	renderFlags
	minLabelPercent float64
	innerRatio      float64
	summary         bool
}

// pieCommand creates the pie command.
func (c *CLI) pieCommand() *cobra.Command {
	var flags pieFlags

	cmd := &cobra.Command{
		Use:   "pie [dataset|counts.json]",
		Short: "Render a pie chart of crime category counts",
		Long: `Render a pie chart with elbow leader-line labels.

The argument is a built-in dataset (` + strings.Join(crime.DatasetNames(), ", ") + `) or a JSON
file mapping crime categories to counts. Without an argument the first
built-in dataset is used.`,
		Example: `  crimeviz pie data1
  crimeviz pie data3 -f svg,png -o charts/data3
  crimeviz pie precinct.json --min-label-percent 5 --summary`,
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: crime.DatasetNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.baseOptions()
			opts.Kind = pipeline.KindPie
			if len(args) == 1 {
				if isFile(args[0]) {
					opts.CountsPath = args[0]
				} else {
					opts.Dataset = args[0]
				}
			}
			if cmd.Flags().Changed("min-label-percent") {
				opts.Pie.MinLabelPercent = flags.minLabelPercent
			}
			if cmd.Flags().Changed("inner-ratio") {
				opts.Pie.InnerRatio = flags.innerRatio
			}
			if err := flags.apply(&opts); err != nil {
				return err
			}
			return c.runPie(cmd, opts, flags)
		},
	}

	flags.register(cmd)
	cmd.Flags().Float64Var(&flags.minLabelPercent, "min-label-percent", 0, "hide labels of slices below this share")
	cmd.Flags().Float64Var(&flags.innerRatio, "inner-ratio", 0, "inner radius ratio, > 0 draws a donut")
	cmd.Flags().BoolVar(&flags.summary, "summary", false, "print a table of the slices")

	return cmd
}

func (c *CLI) runPie(cmd *cobra.Command, opts pipeline.Options, flags pieFlags) error {
	ctx := cmd.Context()
	runner, err := c.newRunner(ctx, flags.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	prog := newProgress(loggerFromContext(ctx))
	res, err := spin(ctx, "Rendering pie", func() (*pipeline.Result, error) {
		return runner.Execute(ctx, opts)
	})
	if err != nil {
		return err
	}
	prog.done("pie rendered")

	if err := writeArtifacts(res, opts.Formats, flags.output); err != nil {
		return err
	}
	printStats(len(res.Pie.Slices), "slices", res.Pie.Total, res.CacheInfo.LayoutHit)
	if flags.summary {
		fmt.Println(sliceTable(*res.Pie, opts.CategoryPalette()))
	}
	return nil
}

// isFile reports whether arg names an existing file rather than a dataset.
func isFile(arg string) bool {
	info, err := os.Stat(arg)
	return err == nil && !info.IsDir()
}
