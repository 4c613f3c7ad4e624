// Package cli implements the sugiyama command-line interface.
package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/sugiyama/pkg/buildinfo"
	"github.com/matzehuels/sugiyama/pkg/cache"
	"github.com/matzehuels/sugiyama/pkg/graph"
	"github.com/matzehuels/sugiyama/pkg/options"
	"github.com/matzehuels/sugiyama/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "sugiyama"

	// stdinArg reads the graph from standard input.
	stdinArg = "-"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Sugiyama computes layered drawings of directed graphs",
		Long:         `Sugiyama is a layered graph layout engine. It reads a graph of nodes, ports, and edges, assigns node positions and edge routes, and writes the graph back with coordinates.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	// Register all subcommands
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.dotCommand())
	root.AddCommand(c.optionsCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.versionCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(noCache bool) (*pipeline.Runner, error) {
	cache, err := newCache(noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(cache, nil, c.Logger), nil
}

func newCache(noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/sugiyama/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// =============================================================================
// Input Helpers
// =============================================================================

// layoutFlags are the flags shared by commands that run a layout.
type layoutFlags struct {
	config   string
	set      []string
	timeout  time.Duration
	noCache  bool
	validate bool
	maxNodes int
}

func (f *layoutFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.config, "config", "c", "", "option file (.toml, .yaml)")
	cmd.Flags().StringArrayVar(&f.set, "set", nil, "set an option, id=value (repeatable, overrides --config)")
	cmd.Flags().DurationVar(&f.timeout, "timeout", 0, "abort the layout after this long (0: no limit)")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&f.validate, "validate", false, "check layout invariants between phases")
	cmd.Flags().IntVar(&f.maxNodes, "max-nodes", pipeline.DefaultMaxNodes, "reject graphs with more nodes")
	_ = cmd.RegisterFlagCompletionFunc("set", completeSet)
}

// options builds runner options: the config file first, then --set, then
// --timeout.
func (f *layoutFlags) options() (pipeline.Options, error) {
	props := graph.Properties{}
	if f.config != "" {
		loaded, err := options.LoadFile(f.config)
		if err != nil {
			return pipeline.Options{}, err
		}
		props = loaded
	}
	set, err := options.ParseAssignments(f.set)
	if err != nil {
		return pipeline.Options{}, err
	}
	props = options.Merge(props, set)
	if f.timeout > 0 {
		props[options.Timeout.ID()] = f.timeout.String()
	}
	if len(props) == 0 {
		props = nil
	}
	return pipeline.Options{
		Properties: props,
		NoCache:    f.noCache,
		Validate:   f.validate,
		MaxNodes:   f.maxNodes,
	}, nil
}

// readGraph reads a graph from path, or from stdin for "-".
func readGraph(path string, stdin io.Reader) (*graph.Node, error) {
	if path == stdinArg {
		return graph.ReadJSON(stdin)
	}
	return graph.ReadFile(path)
}

// writeOutput writes data to path, or to stdout when path is empty or "-".
func writeOutput(path string, stdout io.Writer, write func(io.Writer) error) error {
	if path == "" || path == stdinArg {
		return write(stdout)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
