package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/crimeviz/pkg/buildinfo"
	"github.com/matzehuels/crimeviz/pkg/cache"
	"github.com/matzehuels/crimeviz/pkg/config"
	"github.com/matzehuels/crimeviz/pkg/httputil"
	"github.com/matzehuels/crimeviz/pkg/observability"
	"github.com/matzehuels/crimeviz/pkg/pipeline"
	"github.com/matzehuels/crimeviz/pkg/source"
)

const appName = "crimeviz"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds state shared by all commands.
type CLI struct {
	Logger     *log.Logger
	Config     config.Config
	configPath string
}

// New creates a CLI logging to w.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level), Config: config.Default()}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root command with every subcommand registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "crimeviz renders crime statistics as labelled pie and bar charts",
		Long:         `crimeviz turns crime category counts into pie charts with elbow leader-line labels, and borough records into grouped bar charts. Charts render to SVG, PNG, PDF, JSON and HTML, from the command line or over HTTP.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.loadConfig(cmd)
		},
	}
	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default "+config.DefaultPath()+")")

	root.AddCommand(c.pieCommand())
	root.AddCommand(c.barCommand())
	root.AddCommand(c.pageCommand())
	root.AddCommand(c.pickCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

func (c *CLI) loadConfig(cmd *cobra.Command) error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.Config = cfg

	hooks := observability.NewLogHooks(c.Logger)
	observability.SetPipelineHooks(hooks)
	observability.SetCacheHooks(hooks)
	observability.SetHTTPHooks(hooks)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(withLogger(ctx, c.Logger))
	return nil
}

// newRunner creates a pipeline runner over the configured cache.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	store, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(store, nil, c.Logger), nil
}

func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	cfg := c.Config.Cache
	switch {
	case noCache || cfg.Disabled:
		return cache.NewNullCache(), nil
	case cfg.RedisURL != "":
		return cache.NewRedisCache(ctx, cfg.RedisURL, cfg.Prefix)
	default:
		return cache.NewFileCache(cfg.Dir)
	}
}

// httpClient returns a download client with the on-disk response cache.
// A cache directory that cannot be created disables response caching.
func (c *CLI) httpClient() *httputil.Client {
	rc, err := httputil.NewResponseCache(c.Config.HTTP.CacheDir, c.Config.HTTP.CacheTTL)
	if err != nil {
		c.Logger.Warn("http cache disabled", "err", err)
		rc = nil
	}
	client := httputil.NewClient(rc)
	client.HTTP.Timeout = c.Config.HTTP.Timeout
	client.Attempts = c.Config.HTTP.Attempts
	client.Logger = c.Logger
	return client
}

// baseOptions returns pipeline options carrying the configured geometry,
// palette and data source settings.
func (c *CLI) baseOptions() pipeline.Options {
	return pipeline.Options{
		Pie:     c.Config.Pie,
		Bar:     c.Config.Bar,
		Palette: c.Config.Palette,
		Logger:  c.Logger,
		Source: source.Options{
			HTTP:            c.httpClient(),
			MongoDatabase:   c.Config.Source.MongoDatabase,
			MongoCollection: c.Config.Source.MongoCollection,
		},
	}
}

// outputPaths maps each format to a file. A single format with an explicit
// output uses it verbatim; otherwise output (or name) is a base path that
// gets the format as extension.
func outputPaths(output, name string, formats []string) map[string]string {
	paths := make(map[string]string, len(formats))
	if output != "" && len(formats) == 1 {
		paths[formats[0]] = output
		return paths
	}
	base := output
	if base == "" {
		base = name
	}
	base = strings.TrimSuffix(base, filepath.Ext(base))
	for _, f := range formats {
		paths[f] = base + "." + f
	}
	return paths
}

func writeArtifacts(res *pipeline.Result, formats []string, output string) error {
	paths := outputPaths(output, res.Name, formats)
	for _, f := range formats {
		if err := os.WriteFile(paths[f], res.Artifacts[f], 0o644); err != nil {
			return err
		}
		printFile(paths[f])
	}
	return nil
}
