package cli

import (
	"encoding/base64"
	"fmt"
	"os"
	"strconv"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	splunk "github.com/hugr-lab/airport-splunk"
	"github.com/hugr-lab/airport-splunk/catalog"
	"github.com/hugr-lab/airport-splunk/internal/serialize"
)

func newCatalogsCmd(opts *options, env Env) *cobra.Command {
	return &cobra.Command{
		Use:   "catalogs",
		Short: "List configured catalogs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := opts.manager(env)
			if err != nil {
				return err
			}
			names := m.Names()
			if opts.output == "json" {
				return printJSON(env.Stdout, names)
			}
			rows := make([][]string, 0, len(names))
			for _, name := range names {
				rows = append(rows, []string{name})
			}
			return printTable(env.Stdout, []string{"CATALOG"}, rows)
		},
	}
}

func newConfigCmd(opts *options, env Env) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the loaded catalog definitions without credentials",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfgs, err := splunk.LoadConfigs(opts.configPath)
			if err != nil {
				return err
			}
			redacted := make([]*splunk.Config, 0, len(cfgs))
			for i := range cfgs {
				redacted = append(redacted, cfgs[i].Redacted())
			}
			if opts.output == "json" {
				return printJSON(env.Stdout, redacted)
			}
			enc := yaml.NewEncoder(env.Stdout)
			defer enc.Close()
			return enc.Encode(map[string]any{"catalogs": redacted})
		},
	}
}

type tableRow struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

func newTablesCmd(opts *options, env Env) *cobra.Command {
	return &cobra.Command{
		Use:   "tables",
		Short: "List the tables visible to --user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := opts.open(cmd, env)
			if err != nil {
				return err
			}

			var tables []tableRow
			for _, name := range s.TableNames() {
				t, ok := s.LookupTable(name)
				if !ok {
					continue
				}
				tables = append(tables, tableRow{Name: name, Type: t.TableType()})
			}

			if opts.output == "json" {
				return printJSON(env.Stdout, tables)
			}
			rows := make([][]string, 0, len(tables))
			for _, t := range tables {
				rows = append(rows, []string{t.Name, t.Type})
			}
			return printTable(env.Stdout, []string{"TABLE", "TYPE"}, rows)
		},
	}
}

type columnRow struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Nullable bool   `json:"nullable"`
}

type tableDetail struct {
	Catalog  string      `json:"catalog"`
	Name     string      `json:"name"`
	Type     string      `json:"type"`
	Identity string      `json:"identity"`
	Earliest string      `json:"earliest_time"`
	Latest   string      `json:"latest_time"`
	Ticket   string      `json:"ticket"`
	Columns  []columnRow `json:"columns"`
}

func newDescribeCmd(opts *options, env Env) *cobra.Command {
	return &cobra.Command{
		Use:   "describe <table>",
		Short: "Show the columns and scan ticket of a table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.open(cmd, env)
			if err != nil {
				return err
			}
			t, ok := s.LookupTable(args[0])
			if !ok {
				return fmt.Errorf("table %s: %w", args[0], catalog.ErrNotFound)
			}

			spec := t.Spec()
			ticket, err := spec.Ticket()
			if err != nil {
				return err
			}
			detail := tableDetail{
				Catalog:  t.Catalog(),
				Name:     t.Name(),
				Type:     t.TableType(),
				Identity: spec.Identity,
				Earliest: spec.EarliestTime,
				Latest:   spec.LatestTime,
				Ticket:   base64.StdEncoding.EncodeToString(ticket),
			}
			for _, f := range t.ArrowSchema().Fields() {
				detail.Columns = append(detail.Columns, columnRow{
					Name:     f.Name,
					Type:     f.Type.String(),
					Nullable: f.Nullable,
				})
			}

			if opts.output == "json" {
				return printJSON(env.Stdout, detail)
			}
			_, _ = fmt.Fprintf(env.Stdout, "%s.%s (%s) for %s, %s to %s\n\n",
				detail.Catalog, detail.Name, detail.Type, detail.Identity, detail.Earliest, detail.Latest)
			rows := make([][]string, 0, len(detail.Columns))
			for _, c := range detail.Columns {
				rows = append(rows, []string{c.Name, c.Type, strconv.FormatBool(c.Nullable)})
			}
			return printTable(env.Stdout, []string{"COLUMN", "TYPE", "NULLABLE"}, rows)
		},
	}
}

func newDropCmd(opts *options, env Env) *cobra.Command {
	var ifExists bool

	cmd := &cobra.Command{
		Use:   "drop <table>",
		Short: "Ask Splunk to delete an index",
		Long: `Ask Splunk to delete an index on behalf of --user.

Splunk does not confirm deletes. The cached listing is refreshed right after
the request, so the index may still be listed until Splunk has removed it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.open(cmd, env)
			if err != nil {
				return err
			}
			err = s.Schema().DropTable(cmd.Context(), args[0], catalog.DropTableOptions{IgnoreNotFound: ifExists})
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(env.Stdout, "Delete of %s.%s requested\n", s.Name(), args[0])
			return nil
		},
	}
	cmd.Flags().BoolVar(&ifExists, "if-exists", false, "Do not fail when the table is unknown")
	return cmd
}

func newSnapshotCmd(opts *options, env Env) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Write the table listing as a zstd-compressed Arrow IPC stream",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if out == "" {
				return fmt.Errorf("--out is required")
			}
			s, err := opts.open(cmd, env)
			if err != nil {
				return err
			}

			alloc := memory.NewGoAllocator()
			data, err := s.Snapshot(cmd.Context(), alloc)
			if err != nil {
				return err
			}
			entries, err := serialize.ReadSnapshot(data, alloc)
			if err != nil {
				return fmt.Errorf("snapshot does not read back: %w", err)
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return fmt.Errorf("failed to write snapshot: %w", err)
			}
			_, _ = fmt.Fprintf(env.Stdout, "Wrote %d tables (%d bytes) to %s\n", len(entries), len(data), out)
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "Output file")
	return cmd
}

func newVersionCmd(opts *options, env Env) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the CLI version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.output == "json" {
				return printJSON(env.Stdout, map[string]string{
					"version": version,
					"commit":  commit,
				})
			}
			_, _ = fmt.Fprintf(env.Stdout, "splunk-catalog version %s (commit: %s)\n", version, commit)
			return nil
		},
	}
}
