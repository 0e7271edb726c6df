package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"

	"github.com/zjrosen/mirrorkit/internal/infrastructure/sqlite"
	"github.com/zjrosen/mirrorkit/internal/log"
	"github.com/zjrosen/mirrorkit/internal/presentation"
	"github.com/zjrosen/mirrorkit/internal/tracing"
)

var importDB string

var bundleImportCmd = &cobra.Command{
	Use:   "bundle:import <dir>",
	Short: "Copy a CodeMirror distribution into the payload store",
	Long: `Copy every .js and .css file under dir into the sqlite payload store. Files
whose content has not changed since the last import are left alone.

Set assets.source to sqlite to serve payloads from the store afterwards.

Examples:
  mirrorkit bundle:import node_modules/codemirror
  mirrorkit bundle:import --db /tmp/payloads.db ./codemirror-5.65.16`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root := args[0]
		info, err := os.Stat(root)
		if err != nil {
			return fmt.Errorf("distribution dir: %w", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("distribution dir %s is not a directory", root)
		}

		dbPath := importDB
		if dbPath == "" {
			dbPath = cfg.Assets.DBPath
		}
		if dbPath == "" {
			return fmt.Errorf("no payload database: set assets.db_path or pass --db")
		}

		provider, err := tracing.NewProvider(cfg.Tracing, tracing.WithServiceVersion(version))
		if err != nil {
			return fmt.Errorf("creating tracer: %w", err)
		}
		defer func() { _ = provider.Shutdown(context.Background()) }()

		ctx, span := provider.Tracer().Start(cmd.Context(), tracing.SpanBundleImport)
		defer span.End()

		db, err := sqlite.NewDB(dbPath)
		if err != nil {
			tracing.RecordError(span, err)
			return fmt.Errorf("open payload store: %w", err)
		}
		defer func() { _ = db.Close() }()

		result, err := db.PayloadStore().Import(ctx, os.DirFS(root), root)
		if err != nil {
			tracing.RecordError(span, err)
			return err
		}
		span.SetAttributes(attribute.Int(tracing.AttrInjectedCount, result.Added+result.Updated))

		log.Info(log.CatDB, "Imported distribution", "root", root, "db", dbPath,
			"added", result.Added, "updated", result.Updated, "unchanged", result.Unchanged)
		formatter, _ := presentation.NewFormatter(cmd.OutOrStdout(), presentation.FormatJSON)
		return formatter.FormatResult(result)
	},
}

func init() {
	bundleImportCmd.Flags().StringVar(&importDB, "db", "", "Payload database (default: assets.db_path)")
	rootCmd.AddCommand(bundleImportCmd)
}
