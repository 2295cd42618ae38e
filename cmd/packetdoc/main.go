package main

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/yourorg/packetdoc/internal/config"
	"github.com/yourorg/packetdoc/internal/generator"
	"github.com/yourorg/packetdoc/internal/server"
	"github.com/yourorg/packetdoc/internal/store"
)

const defaultConfigContent = `packets:
  root_namespace: "Rhisis.Network.Packets"
  servers:
    - Login
    - Cluster
    - World
  order: name

output:
  dir: "./output"
  formats:
    - markdown
    - yaml
  link_style: wiki
  index_name: Packets

catalog:
  path: ""

server:
  host: "127.0.0.1"
  port: 3000

log:
  level: "info"
`

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type rootOptions struct {
	cfgPath string
	verbose bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "packetdoc",
		Short:         "Generate Markdown reference pages for network packets",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&opts.cfgPath, "config", "", "config file path")
	root.PersistentFlags().BoolVar(&opts.verbose, "verbose", false, "enable debug logging")

	root.AddCommand(newInitCmd())
	root.AddCommand(newGenerateCmd(opts))
	root.AddCommand(newRunsCmd(opts))
	root.AddCommand(newServeCmd(opts))

	return root
}

// load reads the config and builds the logger every command shares.
func (o *rootOptions) load(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(o.cfgPath)
	if err != nil {
		return nil, nil, err
	}
	level := slog.LevelInfo
	if o.verbose {
		level = slog.LevelDebug
	} else if err := level.UnmarshalText([]byte(cfg.Log.Level)); err != nil {
		return nil, nil, fmt.Errorf("log.level: %w", err)
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	return cfg, logger, nil
}

func openStore(cfg *config.Config) (*store.SQLiteStore, error) {
	if err := cfg.ValidateCatalog(); err != nil {
		return nil, err
	}
	return store.NewSQLiteStore(cfg.Catalog.Path)
}

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize ~/.packetdoc directory and default config",
		RunE: func(cmd *cobra.Command, args []string) error {
			home, err := os.UserHomeDir()
			if err != nil {
				return err
			}
			baseDir := filepath.Join(home, ".packetdoc")
			if err := os.MkdirAll(baseDir, 0o755); err != nil {
				return err
			}

			cfgFile := filepath.Join(baseDir, "config.yaml")
			if _, err := os.Stat(cfgFile); errors.Is(err, os.ErrNotExist) {
				if err := os.WriteFile(cfgFile, []byte(defaultConfigContent), 0o644); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "created", cfgFile)
			} else if err == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "exists", cfgFile)
			} else {
				return err
			}

			dbPath := filepath.Join(baseDir, "catalog.db")
			s, err := store.NewSQLiteStore(dbPath)
			if err != nil {
				return err
			}
			defer s.Close()
			fmt.Fprintln(cmd.OutOrStdout(), "catalog ready", dbPath)
			return nil
		},
	}
}

// twoPaths requires the metadata and documentation arguments.
func twoPaths(cmd *cobra.Command, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("%w: usage: %s", generator.ErrMissingArgument, cmd.UseLine())
	}
	if len(args) > 2 {
		return fmt.Errorf("accepts 2 args, received %d: usage: %s", len(args), cmd.UseLine())
	}
	return nil
}

func newGenerateCmd(opts *rootOptions) *cobra.Command {
	var (
		outputDir string
		linkStyle string
		formats   []string
		record    bool
	)
	cmd := &cobra.Command{
		Use:   "generate METADATA DOCUMENTATION",
		Short: "Generate packet pages from type metadata and XML documentation",
		Long: `Generate packet pages from type metadata and XML documentation.

METADATA is a YAML/JSON type dump or a directory of Go packages.
DOCUMENTATION is the XML documentation file of the same assembly.`,
		Args: twoPaths,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := opts.load(cmd)
			if err != nil {
				return err
			}
			if outputDir != "" {
				cfg.Output.Dir = outputDir
			}
			if linkStyle != "" {
				cfg.Output.LinkStyle = linkStyle
			}
			if len(formats) > 0 {
				cfg.Output.Formats = formats
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			progress := func(stage string) { logger.Debug(stage) }
			if record {
				st, err := openStore(cfg)
				if err != nil {
					return err
				}
				defer st.Close()
				run, book, err := generator.GenerateRecorded(args[0], args[1], cfg, st, logger, progress)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "run %s: %d packets written to %s\n", run.ID, book.PacketCount(), cfg.Output.Dir)
				return nil
			}

			in, err := generator.LoadInputs(args[0], args[1])
			if err != nil {
				return err
			}
			book, err := generator.Generate(in, cfg, logger, progress)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d packets written to %s\n", book.PacketCount(), cfg.Output.Dir)
			return nil
		},
	}
	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "output directory (overrides output.dir)")
	cmd.Flags().StringVar(&linkStyle, "link-style", "", "link style: wiki or markdown")
	cmd.Flags().StringSliceVar(&formats, "format", nil, "output formats: markdown, yaml")
	cmd.Flags().BoolVar(&record, "record", false, "store the run in the catalog")
	return cmd
}

func newRunsCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{Use: "runs", Short: "Inspect recorded generation runs"}
	cmd.AddCommand(newRunsListCmd(opts))
	cmd.AddCommand(newRunsShowCmd(opts))
	cmd.AddCommand(newRunsDeleteCmd(opts))
	return cmd
}

func newRunsListCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{Use: "list", Short: "List all runs", Args: cobra.NoArgs, RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := opts.load(cmd)
		if err != nil {
			return err
		}
		st, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer st.Close()
		runs, err := st.ListRuns()
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tASSEMBLY\tPACKETS\tSTATUS\tCREATED")
		for _, r := range runs {
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n", r.ID, r.Assembly, r.PacketCount, r.Status, r.CreatedAt.Format("2006-01-02 15:04:05"))
		}
		return w.Flush()
	}}
}

func newRunsShowCmd(opts *rootOptions) *cobra.Command {
	var runID string
	cmd := &cobra.Command{Use: "show", Short: "Show run details", Args: cobra.NoArgs, RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := opts.load(cmd)
		if err != nil {
			return err
		}
		st, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer st.Close()
		run, err := st.GetRun(runID)
		if err != nil {
			return fmt.Errorf("run %s: %w", runID, err)
		}
		packets, err := st.GetPackets(runID)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "run:      %s\n", run.ID)
		fmt.Fprintf(out, "assembly: %s\n", run.Assembly)
		fmt.Fprintf(out, "metadata: %s\n", run.MetadataPath)
		fmt.Fprintf(out, "docs:     %s\n", run.DocsPath)
		fmt.Fprintf(out, "output:   %s\n", run.OutputDir)
		fmt.Fprintf(out, "status:   %s\n", run.Status)
		w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "SERVER\tPACKET\tFIELDS")
		for _, p := range packets {
			fmt.Fprintf(w, "%s\t%s\t%d\n", p.Server, p.Name, len(p.Rows))
		}
		return w.Flush()
	}}
	cmd.Flags().StringVar(&runID, "run", "", "run id")
	_ = cmd.MarkFlagRequired("run")
	return cmd
}

func newRunsDeleteCmd(opts *rootOptions) *cobra.Command {
	var runID string
	cmd := &cobra.Command{Use: "delete", Short: "Delete a run", Args: cobra.NoArgs, RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := opts.load(cmd)
		if err != nil {
			return err
		}
		st, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer st.Close()
		if err := st.DeleteRun(runID); err != nil {
			return fmt.Errorf("run %s: %w", runID, err)
		}
		logger.Info("run deleted", "run", runID)
		return nil
	}}
	cmd.Flags().StringVar(&runID, "run", "", "run id")
	_ = cmd.MarkFlagRequired("run")
	return cmd
}

func newServeCmd(opts *rootOptions) *cobra.Command {
	var host string
	var port int
	cmd := &cobra.Command{Use: "serve", Short: "Start the preview server", Args: cobra.NoArgs, RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := opts.load(cmd)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("host") {
			cfg.Server.Host = host
		}
		if cmd.Flags().Changed("port") {
			cfg.Server.Port = port
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		st, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer st.Close()
		srv, err := server.New(cfg, st, logger)
		if err != nil {
			return err
		}
		addr := net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port))
		logger.Info("serving", "addr", "http://"+addr, "docs", cfg.Output.Dir)
		return srv.ListenAndServe(addr)
	}}
	cmd.Flags().StringVar(&host, "host", "127.0.0.1", "server host")
	cmd.Flags().IntVar(&port, "port", 3000, "server port")
	return cmd
}
