package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"olynk/adapters/export"
	"olynk/adapters/postgres"
	"olynk/adapters/postgres/migrations"
	"olynk/app"
	"olynk/internal"
	"olynk/internal/config"
	"olynk/internal/container"
)

var (
	cfgFile string
	cfg     *config.Config
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "olynk",
		Short: "Olynk turns business spreadsheets into ranked insights",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_ = godotenv.Load()
			c, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			cfg = c
			return nil
		},
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./olynk.yaml or ~/.olynk/olynk.yaml)")

	rootCmd.AddCommand(
		newAnalyzeCmd(),
		newConfigCmd(),
		newServeCmd(),
		newMigrateCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newAnalyzeCmd() *cobra.Command {
	var (
		opts   app.AnalyzeOptions
		format string
		out    string
	)

	cmd := &cobra.Command{
		Use:   "analyze <file.csv|file.xlsx>",
		Short: "Analyze a CSV or Excel file and print its insights",
		Long: `Profile a tabular file, run statistics, trend, anomaly and correlation
analysis, and print the ranked insights.

Example: olynk analyze sales.csv --segment-by region --format md --out report.md`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := format
			if out != "" && !cmd.Flags().Changed("format") {
				name = out
			}
			f, err := export.ParseFormat(name)
			if err != nil {
				return err
			}

			logger := internal.NewLogger(internal.ParseLogLevel(cfg.LogLevel))
			svc, err := app.NewAnalysisService(cfg.Engine, nil, cfg.Server.MaxRows, logger)
			if err != nil {
				return err
			}
			report, err := svc.AnalyzeFile(cmd.Context(), args[0], opts)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if out != "" {
				file, err := os.Create(out)
				if err != nil {
					return fmt.Errorf("create %s: %w", out, err)
				}
				defer file.Close()
				w = file
			}
			if err := export.Write(w, f, report); err != nil {
				return err
			}
			if out != "" {
				fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %d insights to %s\n", len(report.Insights), out)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.SegmentBy, "segment-by", "", "Categorical column to segment statistics by")
	cmd.Flags().StringVar(&opts.DateColumn, "date-column", "", "Date column for trends (default: first date column)")
	cmd.Flags().StringVar(&opts.Sheet, "sheet", "", "Excel worksheet to read (default: first sheet)")
	cmd.Flags().StringVar(&format, "format", "md", "Output format: json, csv, md, html, xlsx")
	cmd.Flags().StringVar(&out, "out", "", "Write to this file instead of stdout")

	return cmd
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or initialize configuration",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			return config.Write(cmd.OutOrStdout(), cfg)
		},
	})

	var force bool
	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write the effective configuration to a file (default ./olynk.yaml)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "olynk.yaml"
			if len(args) == 1 {
				path = args[0]
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
			if err := config.Save(cfg, path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")
	cmd.AddCommand(initCmd)

	return cmd
}

func newServeCmd() *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			if port != "" {
				cfg.Server.Port = port
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			c, err := container.New(ctx, cfg)
			if err != nil {
				return err
			}
			defer c.Shutdown(context.Background())
			return c.Serve(ctx)
		},
	}

	cmd.Flags().StringVar(&port, "port", "", "Port to listen on (overrides config)")
	return cmd
}

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or inspect database migrations",
	}

	connect := func(ctx context.Context) (*migrations.Migrator, func(), error) {
		if cfg.Database.URL == "" {
			return nil, nil, fmt.Errorf("DATABASE_URL is not set")
		}
		db, err := postgres.Connect(ctx, cfg.Database.URL)
		if err != nil {
			return nil, nil, err
		}
		return migrations.NewMigrator(db), func() { db.Close() }, nil
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, closeDB, err := connect(cmd.Context())
			if err != nil {
				return err
			}
			defer closeDB()
			ran, err := m.Up(cmd.Context())
			for _, name := range ran {
				fmt.Fprintf(cmd.OutOrStdout(), "Applied migration: %s\n", name)
			}
			if err == nil && len(ran) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Database is up to date")
			}
			return err
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show which migrations have been applied",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, closeDB, err := connect(cmd.Context())
			if err != nil {
				return err
			}
			defer closeDB()
			status, err := m.Status(cmd.Context())
			if err != nil {
				return err
			}
			applied := 0
			for _, s := range status {
				state := "pending"
				if s.Applied {
					state = "applied"
					applied++
				}
				fmt.Fprintf(cmd.OutOrStdout(), "  %s: %s\n", s.Version, state)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "\nSummary: %d/%d migrations applied\n", applied, len(status))
			return nil
		},
	})

	return cmd
}
