package cmd

import (
	"github.com/spf13/cobra"

	"github.com/zjrosen/mirrorkit/internal/domain/feature"
	"github.com/zjrosen/mirrorkit/internal/presentation"
)

var (
	listCategory string
	listFormat   string
)

var featureListCmd = &cobra.Command{
	Use:   "feature:list",
	Short: "List catalog features",
	Long: `List every feature in the catalog with its category, resources and direct
dependencies.

Examples:
  # All features as JSON
  mirrorkit feature:list

  # Only themes, as a table
  mirrorkit feature:list --category theme --format table

  # Names of every key map
  mirrorkit feature:list -k keymap | jq -r '.[].name'`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		formatter, err := presentation.NewFormatter(cmd.OutOrStdout(), listFormat)
		if err != nil {
			return err
		}

		svc, _, cleanup, err := openService(cmd.Context())
		if err != nil {
			return err
		}
		defer cleanup()

		list := svc.List()
		if cmd.Flags().Changed("category") {
			category, err := feature.ParseCategory(listCategory)
			if err != nil {
				return err
			}
			list = svc.ByCategory(category)
		}
		return formatter.FormatFeatures(presentation.FromFeatures(list))
	},
}

func init() {
	featureListCmd.Flags().StringVarP(&listCategory, "category", "k", "", "Filter by category (addon, keymap, theme, mode)")
	featureListCmd.Flags().StringVarP(&listFormat, "format", "f", presentation.FormatJSON, "Output format (json, table)")
	rootCmd.AddCommand(featureListCmd)
}
