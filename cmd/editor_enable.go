package cmd

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/zjrosen/mirrorkit/internal/config"
)

var editorReplace bool

var editorEnableCmd = &cobra.Command{
	Use:   "editor:enable <name>...",
	Short: "Add features to the editor defaults",
	Long: `Add features to editor.features in the config file so every served page and
every --editor run gets them. Names are checked against the catalog first.
Other settings and comments in the file are kept.

Examples:
  mirrorkit editor:enable search active-line
  mirrorkit editor:enable --replace vim`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, _, cleanup, err := openService(cmd.Context())
		if err != nil {
			return err
		}
		defer cleanup()

		if _, err := svc.Registry().LookupAll(args...); err != nil {
			return err
		}

		enabled := slices.Clone(cfg.Editor.Features)
		if editorReplace {
			enabled = nil
		}
		for _, name := range args {
			if !slices.Contains(enabled, name) {
				enabled = append(enabled, name)
			}
		}

		path := configFilePath()
		if err := config.SaveEditorFeatures(path, enabled); err != nil {
			return err
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "editor.features in %s: %v\n", path, enabled)
		return err
	},
}

func init() {
	editorEnableCmd.Flags().BoolVar(&editorReplace, "replace", false, "Replace the list instead of adding to it")
	rootCmd.AddCommand(editorEnableCmd)
}
