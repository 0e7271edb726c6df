package cmd

import (
	"github.com/spf13/cobra"

	"github.com/zjrosen/mirrorkit/internal/presentation"
)

var (
	resolveFormat string
	resolveEditor bool
)

var featureResolveCmd = &cobra.Command{
	Use:   "feature:resolve <name>...",
	Short: "Show the load order of features",
	Long: `Expand the named features into their dependencies and print the features and
resources in the order they would be injected. Resources shared by several
features appear once.

Examples:
  mirrorkit feature:resolve vim
  mirrorkit feature:resolve --editor search --format table`,
	RunE: func(cmd *cobra.Command, args []string) error {
		formatter, err := presentation.NewFormatter(cmd.OutOrStdout(), resolveFormat)
		if err != nil {
			return err
		}

		svc, _, cleanup, err := openService(cmd.Context())
		if err != nil {
			return err
		}
		defer cleanup()

		names := args
		if resolveEditor {
			editorNames, err := svc.EditorFeatures(cfg.Editor)
			if err != nil {
				return err
			}
			names = append(editorNames, args...)
		}

		ordered, err := svc.Resolve(cmd.Context(), names...)
		if err != nil {
			return err
		}
		return formatter.FormatResolution(presentation.FromResolution(names, ordered))
	},
}

func init() {
	featureResolveCmd.Flags().StringVarP(&resolveFormat, "format", "f", presentation.FormatJSON, "Output format (json, table)")
	featureResolveCmd.Flags().BoolVar(&resolveEditor, "editor", false, "Include the features the editor config needs")
	rootCmd.AddCommand(featureResolveCmd)
}
