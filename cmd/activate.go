package cmd

import (
	"bytes"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/zjrosen/mirrorkit/internal/application/features"
	"github.com/zjrosen/mirrorkit/internal/document/htmldoc"
	"github.com/zjrosen/mirrorkit/internal/domain/feature"
	"github.com/zjrosen/mirrorkit/internal/log"
	"github.com/zjrosen/mirrorkit/internal/presentation"
	"github.com/zjrosen/mirrorkit/internal/tracing"
)

var (
	activatePage   string
	activateOut    string
	activateEditor bool
	activateFormat string
	activateDiff   bool
)

var activateCmd = &cobra.Command{
	Use:   "activate <name>...",
	Short: "Inject features into an HTML page",
	Long: `Inject the scripts and style sheets of the named features, dependencies first,
into the head of an HTML page. Resources the page already carries from an
earlier activate run are not added again.

Without --out the page is written to stdout. With --out a report of what was
injected and skipped is written to stdout instead.

Examples:
  # A fresh page with vim and its dependencies
  mirrorkit activate vim > editor.html

  # Add the editor defaults and search to an existing page
  mirrorkit activate --editor --page index.html --out index.html search

  # Show what adding vim would change, without writing anything
  mirrorkit activate --diff --format table --page index.html vim`,
	RunE: func(cmd *cobra.Command, args []string) error {
		formatter, err := presentation.NewFormatter(cmd.OutOrStdout(), activateFormat)
		if err != nil {
			return err
		}

		doc := htmldoc.New()
		if activatePage != "" {
			doc, err = readPage(activatePage)
			if err != nil {
				return err
			}
		}

		svc, _, cleanup, err := openService(cmd.Context())
		if err != nil {
			return err
		}
		defer cleanup()

		names := args
		if activateEditor {
			editorNames, err := svc.EditorFeatures(cfg.Editor)
			if err != nil {
				return err
			}
			names = append(editorNames, args...)
		}
		if len(names) == 0 {
			return fmt.Errorf("no features to activate")
		}

		var before bytes.Buffer
		if activateDiff {
			if err := doc.Render(&before); err != nil {
				return err
			}
		}

		id := uuid.NewString()
		ctx := tracing.ContextWithRequestID(cmd.Context(), id)
		activation, err := svc.Activate(ctx, injectorFor(svc, doc), names...)
		if err != nil {
			return err
		}

		if activateDiff {
			var after bytes.Buffer
			if err := doc.Render(&after); err != nil {
				return err
			}
			return formatter.FormatPageDiff(before.String(), after.String())
		}
		if activateOut == "" {
			return doc.Render(cmd.OutOrStdout())
		}
		if err := writePage(activateOut, doc); err != nil {
			return err
		}
		return formatter.FormatActivation(presentation.FromActivation(id, activation))
	},
}

// injectorFor returns an injector that already knows the resources the page
// carries from earlier runs.
func injectorFor(svc *features.Service, doc *htmldoc.Document) *feature.Injector {
	inj := svc.NewInjector(doc)
	for _, s := range doc.Resources() {
		id, err := feature.ParseResourceID(s)
		if err != nil {
			log.Warn(log.CatInject, "Ignoring unreadable resource label", "label", s)
			continue
		}
		inj.Adopt(id)
	}
	return inj
}

func readPage(path string) (*htmldoc.Document, error) {
	f, err := os.Open(path) //nolint:gosec // G304: page path comes from the command line
	if err != nil {
		return nil, fmt.Errorf("opening page: %w", err)
	}
	defer func() { _ = f.Close() }()
	doc, err := htmldoc.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parsing page: %w", err)
	}
	return doc, nil
}

func writePage(path string, doc *htmldoc.Document) error {
	f, err := os.Create(path) //nolint:gosec // G304: output path comes from the command line
	if err != nil {
		return fmt.Errorf("creating page: %w", err)
	}
	if err := doc.Render(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("writing page: %w", err)
	}
	return f.Close()
}

func init() {
	activateCmd.Flags().StringVarP(&activatePage, "page", "p", "", "HTML page to inject into (default: a blank page)")
	activateCmd.Flags().StringVarP(&activateOut, "out", "o", "", "Write the page here instead of stdout")
	activateCmd.Flags().BoolVar(&activateEditor, "editor", false, "Include the features the editor config needs")
	activateCmd.Flags().StringVarP(&activateFormat, "format", "f", presentation.FormatJSON, "Report format with --out or --diff (json, table)")
	activateCmd.Flags().BoolVar(&activateDiff, "diff", false, "Print the changes to the page instead of writing it")
	activateCmd.MarkFlagsMutuallyExclusive("diff", "out")
	rootCmd.AddCommand(activateCmd)
}
