package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/artpar/stackgen/internal/core/analysis"
	"github.com/artpar/stackgen/internal/core/props"
	"github.com/artpar/stackgen/internal/engine"
	"github.com/artpar/stackgen/internal/generator"
	"github.com/artpar/stackgen/internal/generators"
	"github.com/artpar/stackgen/internal/shell/catalogfs"
	"github.com/artpar/stackgen/internal/shell/gitrepo"
	"github.com/artpar/stackgen/internal/shell/store"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// errNoBuilderImage is returned by analyze when no builder image matches.
var errNoBuilderImage = errors.New("no builder image matches the repository")

const runtimeEnumID = "runtime.name"

// cli carries state shared by all commands of one invocation.
type cli struct {
	stdout io.Writer
	stderr io.Writer

	cfgFile    string
	projectDir string

	cfg    *Config
	logger *slog.Logger
}

// =============================================================================
// Root Command
// =============================================================================

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	c := &cli{stdout: stdout, stderr: stderr}

	root := &cobra.Command{
		Use:   "stackgen",
		Short: "Compose deployable projects out of catalog generators",
		Long: `stackgen applies generators from a catalog to a project directory.

Each apply merges the generator's files and resource templates into the
project and records the generator in .openshiftio/deployment.json.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          args(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return c.load()
		},
	}
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return &usageError{msg: err.Error()}
	})

	root.PersistentFlags().StringVar(&c.cfgFile, "config", "", "config file")
	root.PersistentFlags().StringVar(&c.projectDir, "project", "", "project directory (overrides project.dir)")

	root.AddCommand(c.newApplyCmd())
	root.AddCommand(c.newListCmd())
	root.AddCommand(c.newAnalyzeCmd())
	root.AddCommand(c.newHistoryCmd())
	root.AddCommand(c.newServeCmd())
	root.AddCommand(c.newVersionCmd())

	return root
}

func (c *cli) load() error {
	cfg, err := LoadConfig(c.cfgFile)
	if err != nil {
		return &usageError{msg: err.Error()}
	}
	if c.projectDir != "" {
		cfg.Project.Dir = c.projectDir
	}
	c.cfg = cfg
	c.logger = SetupLogger(cfg, c.stderr)
	return nil
}

// args wraps a cobra argument validator so its failures map to ExitUsage.
func args(v cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, a []string) error {
		if err := v(cmd, a); err != nil {
			return &usageError{msg: err.Error()}
		}
		return nil
	}
}

// =============================================================================
// apply
// =============================================================================

// generatorArgs is one generator named on the apply command line together
// with its properties.
type generatorArgs struct {
	Module string
	Props  *props.Properties
}

func (c *cli) newApplyCmd() *cobra.Command {
	var name, folder string

	cmd := &cobra.Command{
		Use:   "apply --name APP [--folder SUB] GEN [--key=value ...] [GEN ...]",
		Short: "Apply generators to the project",
		Example: `  stackgen apply --project ./shop --name shop capability-rest --runtime.name=quarkus
  stackgen apply --name shop --folder api capability-database --databaseType=postgresql --runtime.name=nodejs`,
		Args: args(cobra.MinimumNArgs(1)),
		RunE: func(cmd *cobra.Command, a []string) error {
			if name == "" {
				return usageErrorf("--name is required")
			}
			gens, err := parseGeneratorArgs(a)
			if err != nil {
				return err
			}
			return c.runApply(cmd.Context(), name, folder, gens)
		},
	}
	// Flags after the first generator name belong to that generator.
	cmd.Flags().SetInterspersed(false)
	cmd.Flags().StringVar(&name, "name", "", "application name")
	cmd.Flags().StringVar(&folder, "folder", "", "subfolder of the part to apply to")
	return cmd
}

func (c *cli) runApply(ctx context.Context, name, folder string, gens []generatorArgs) error {
	reg, err := newRegistry(c.cfg, c.logger)
	if err != nil {
		return err
	}
	j, err := openJournal(c.cfg, c.logger)
	if err != nil {
		c.logger.Warn("apply journal unavailable, continuing without it", "error", err)
		j = nil
	}
	ecfg := engine.Config{
		Registry:  reg,
		Workspace: store.NewFileStore(),
		Settings:  c.cfg.Settings(),
		Logger:    c.logger,
	}
	if j != nil {
		defer j.Close()
		ecfg.Journal = j
	}
	composer, err := engine.New(ecfg)
	if err != nil {
		return err
	}

	for _, g := range gens {
		res, err := composer.Apply(ctx, engine.Request{
			TargetDir:   c.cfg.Project.Dir,
			Module:      g.Module,
			Application: name,
			SubFolder:   folder,
			Props:       g.Props,
		})
		if err != nil {
			return err
		}
		where := name
		if folder != "" {
			where += "/" + folder
		}
		printSuccess(c.stdout, fmt.Sprintf("applied %s to %s (%s)", g.Module, where, res.Duration.Round(time.Millisecond)))
		for _, f := range res.PostApplyFailures {
			printWarning(c.stdout, "post-apply failed: "+f.String())
		}
	}
	return nil
}

// parseGeneratorArgs splits "GEN --k=v ... GEN --k=v" into generators with
// their properties.
func parseGeneratorArgs(a []string) ([]generatorArgs, error) {
	var out []generatorArgs
	for _, arg := range a {
		if !strings.HasPrefix(arg, "--") {
			out = append(out, generatorArgs{Module: arg, Props: props.New()})
			continue
		}
		if len(out) == 0 {
			return nil, usageErrorf("property %s given before any generator", arg)
		}
		key, raw, hasValue := strings.Cut(strings.TrimPrefix(arg, "--"), "=")
		if key == "" || strings.HasPrefix(key, ".") || strings.HasSuffix(key, ".") {
			return nil, usageErrorf("invalid property %q", arg)
		}
		var value any = true
		if hasValue {
			value = parseValue(raw)
		}
		out[len(out)-1].Props.SetPath(key, value)
	}
	return out, nil
}

// parseValue converts a command-line value into a bool, int or string.
// Quoted values are always strings.
func parseValue(raw string) any {
	if len(raw) >= 2 {
		if q := raw[0]; (q == '"' || q == '\'') && raw[len(raw)-1] == q {
			return raw[1 : len(raw)-1]
		}
	}
	switch raw {
	case "true":
		return true
	case "false":
		return false
	}
	if n, err := strconv.Atoi(raw); err == nil {
		return n
	}
	return raw
}

// =============================================================================
// list
// =============================================================================

func (c *cli) newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List catalog entries",
	}

	var capabilities bool
	gens := &cobra.Command{
		Use:   "generators",
		Short: "List registered generators",
		Args:  args(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg, err := newRegistry(c.cfg, c.logger)
			if err != nil {
				return err
			}
			infos := reg.Generators()
			if capabilities {
				infos = reg.Capabilities()
			}
			for _, info := range infos {
				def, err := info.InfoDef()
				if err != nil {
					fmt.Fprintf(c.stdout, "%-28s %s\n", info.Name, color.RedString(err.Error()))
					continue
				}
				fmt.Fprintf(c.stdout, "%-28s %-10s %s\n", info.Name, def.Category(), def.Name)
			}
			return nil
		},
	}
	gens.Flags().BoolVar(&capabilities, "capabilities", false, "only list capabilities")

	runtimes := &cobra.Command{
		Use:   "runtimes",
		Short: "List supported runtimes",
		Args:  args(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg, err := newRegistry(c.cfg, c.logger)
			if err != nil {
				return err
			}
			enums, err := reg.Enums()
			if err != nil {
				return err
			}
			for _, id := range enums.IDs(runtimeEnumID) {
				fmt.Fprintln(c.stdout, id)
			}
			return nil
		},
	}

	cmd.AddCommand(gens, runtimes)
	return cmd
}

// =============================================================================
// analyze
// =============================================================================

func (c *cli) newAnalyzeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "analyze REPO [BRANCH]",
		Short: "Detect the builder image of a local directory or git repository",
		Args:  args(cobra.RangeArgs(1, 2)),
		RunE: func(cmd *cobra.Command, a []string) error {
			branch := ""
			if len(a) == 2 {
				branch = a[1]
			}
			img, err := c.analyze(cmd.Context(), a[0], branch)
			if err != nil {
				return err
			}
			enc := yaml.NewEncoder(c.stdout)
			enc.SetIndent(2)
			if err := enc.Encode(img); err != nil {
				return err
			}
			return enc.Close()
		},
	}
}

func (c *cli) analyze(ctx context.Context, repo, branch string) (analysis.BuilderImage, error) {
	reg, err := newRegistry(c.cfg, c.logger)
	if err != nil {
		return analysis.BuilderImage{}, err
	}
	enums, err := reg.Enums()
	if err != nil {
		return analysis.BuilderImage{}, err
	}

	var files []string
	if st, statErr := os.Stat(repo); statErr == nil && st.IsDir() {
		files, err = gitrepo.ListFiles(repo)
	} else {
		err = gitrepo.WithClone(ctx, repo, branch, func(dir string) error {
			var lerr error
			files, lerr = gitrepo.ListFiles(dir)
			return lerr
		})
	}
	if err != nil {
		return analysis.BuilderImage{}, err
	}

	img, ok := analysis.Detect(files, analysis.BuilderImages(enums))
	if !ok {
		return analysis.BuilderImage{}, fmt.Errorf("%s: %w", repo, errNoBuilderImage)
	}
	return img, nil
}

// =============================================================================
// history
// =============================================================================

func (c *cli) newHistoryCmd() *cobra.Command {
	var limit int
	var application string

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show the apply journal of the project",
		Args:  args(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			if limit < 0 {
				return usageErrorf("--limit must not be negative")
			}
			j, err := openJournal(c.cfg, c.logger)
			if err != nil {
				return err
			}
			if j == nil {
				return errors.New("apply journal is disabled")
			}
			defer j.Close()

			entries, err := j.List(cmd.Context(), application, limit)
			if err != nil {
				return err
			}
			for _, e := range entries {
				printEntry(c.stdout, e)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of entries (0 = all)")
	cmd.Flags().StringVar(&application, "application", "", "only show entries of this application")
	return cmd
}

func printEntry(w io.Writer, e store.JournalEntry) {
	status := e.Status
	switch e.Status {
	case store.StatusApplied:
		status = color.GreenString(status)
	case store.StatusRejected:
		status = color.YellowString(status)
	case store.StatusFailed:
		status = color.RedString(status)
	}
	target := e.Application
	if e.SubFolder != "" {
		target += "/" + e.SubFolder
	}
	fmt.Fprintf(w, "%s  %-8s  %-28s %s\n", e.CreatedAt.Local().Format("2006-01-02 15:04:05"), status, e.Module, target)
	if e.Error != "" {
		fmt.Fprintf(w, "    %s\n", e.Error)
	}
	for _, f := range e.PostApplyFailures {
		fmt.Fprintf(w, "    post-apply: %s\n", f)
	}
}

// =============================================================================
// serve / version
// =============================================================================

func (c *cli) newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the read-only catalog and descriptor API",
		Args:  args(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			srv, err := NewServer(c.cfg, c.logger)
			if err != nil {
				return err
			}
			return srv.Start(cmd.Context())
		},
	}
}

func (c *cli) newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print stackgen version",
		Args:  args(cobra.NoArgs),
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(c.stdout, "stackgen %s (built %s)\n", Version, BuildTime)
		},
	}
}

// =============================================================================
// Wiring
// =============================================================================

func newRegistry(cfg *Config, logger *slog.Logger) (*generator.Registry, error) {
	if cfg.Catalog.Dir == "" {
		return generators.DefaultRegistry(catalogfs.New(generators.Catalog()), logger), nil
	}
	source, err := catalogfs.Dir(cfg.Catalog.Dir)
	if err != nil {
		return nil, err
	}
	return generators.DefaultRegistry(source, logger), nil
}

// openJournal returns nil when the journal is disabled.
func openJournal(cfg *Config, logger *slog.Logger) (*store.SQLiteJournal, error) {
	if !cfg.Journal.Enabled {
		return nil, nil
	}
	dsn := cfg.JournalDSN()
	if dsn != ":memory:" && !strings.HasPrefix(dsn, "file:") {
		if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
			return nil, fmt.Errorf("create journal directory: %w", err)
		}
	}
	j, err := store.NewSQLiteJournal(dsn)
	if err != nil {
		return nil, err
	}
	logger.Debug("journal opened", "dsn", dsn)
	return j, nil
}

// =============================================================================
// Output
// =============================================================================

func printSuccess(w io.Writer, message string) {
	fmt.Fprintf(w, "%s %s\n", color.GreenString("[stackgen]"), message)
}

func printWarning(w io.Writer, message string) {
	fmt.Fprintf(w, "%s %s\n", color.YellowString("[stackgen]"), message)
}

func printError(w io.Writer, message string) {
	fmt.Fprintf(w, "%s %s\n", color.RedString("[stackgen]"), message)
}
