// Package cli implements the splunk-catalog command: it loads catalog
// definitions, opens them for an identity and inspects or changes their
// tables from the command line.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	splunk "github.com/hugr-lab/airport-splunk"
	"github.com/hugr-lab/airport-splunk/auth"
	"github.com/hugr-lab/airport-splunk/directory"
)

var (
	version = "dev"
	commit  = "none"
)

// Env holds the process-level dependencies of a run.
type Env struct {
	Stdout io.Writer
	Stderr io.Writer

	// Connector overrides the HTTP connector built from each config. OPTIONAL.
	Connector directory.Connector
}

// Execute runs the CLI with the process arguments.
func Execute() int {
	return Run(context.Background(), os.Args[1:], Env{Stdout: os.Stdout, Stderr: os.Stderr})
}

// Run executes one command line and returns the exit code.
func Run(ctx context.Context, args []string, env Env) int {
	rootCmd := newRootCmd(env)
	rootCmd.SetArgs(args)
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		_, _ = fmt.Fprintf(env.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

type options struct {
	configPath string
	user       string
	catalog    string
	output     string
	logLevel   string
}

func newRootCmd(env Env) *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "splunk-catalog",
		Short:         "Inspect Splunk indexes exposed as Airport catalogs",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return validateOutputFormat(opts.output)
		},
	}
	rootCmd.SetOut(env.Stdout)
	rootCmd.SetErr(env.Stderr)

	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "catalogs.yaml", "Catalog definitions (YAML)")
	rootCmd.PersistentFlags().StringVarP(&opts.user, "user", "u", auth.Anonymous, "Identity to open catalogs for")
	rootCmd.PersistentFlags().StringVar(&opts.catalog, "catalog", "", "Catalog name (required when several are configured)")
	rootCmd.PersistentFlags().StringVarP(&opts.output, "output", "o", "table", "Output format (table, json)")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(
		newCatalogsCmd(opts, env),
		newConfigCmd(opts, env),
		newTablesCmd(opts, env),
		newDescribeCmd(opts, env),
		newDropCmd(opts, env),
		newSnapshotCmd(opts, env),
		newVersionCmd(opts, env),
	)
	return rootCmd
}

func (o *options) logger(env Env) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(o.logLevel)); err != nil {
		return nil, fmt.Errorf("invalid log level %q", o.logLevel)
	}
	return slog.New(slog.NewTextHandler(env.Stderr, &slog.HandlerOptions{Level: level})), nil
}

func (o *options) manager(env Env) (*splunk.Manager, error) {
	cfgs, err := splunk.LoadConfigs(o.configPath)
	if err != nil {
		return nil, err
	}
	logger, err := o.logger(env)
	if err != nil {
		return nil, err
	}
	return splunk.NewManagerFromConfigs(cfgs, splunk.PluginConfig{
		Connector: env.Connector,
		Logger:    logger,
	})
}

// catalogName resolves --catalog, defaulting to the only configured catalog.
func (o *options) catalogName(m *splunk.Manager) (string, error) {
	if o.catalog != "" {
		return o.catalog, nil
	}
	names := m.Names()
	switch len(names) {
	case 0:
		return "", fmt.Errorf("no catalogs configured in %s", o.configPath)
	case 1:
		return names[0], nil
	default:
		return "", fmt.Errorf("several catalogs configured, choose one with --catalog: %s", strings.Join(names, ", "))
	}
}

func (o *options) open(cmd *cobra.Command, env Env) (*splunk.Session, error) {
	m, err := o.manager(env)
	if err != nil {
		return nil, err
	}
	name, err := o.catalogName(m)
	if err != nil {
		return nil, err
	}
	ctx := auth.WithIdentity(cmd.Context(), o.user)
	return m.Open(ctx, name)
}
