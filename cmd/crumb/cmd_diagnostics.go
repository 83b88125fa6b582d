package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.lsp.dev/uri"

	"github.com/lexcodex/crumb/diagnostics"
	"github.com/lexcodex/crumb/editor"
	"github.com/lexcodex/crumb/lsp"
)

func newDiagnosticsCmd() *cobra.Command {
	var wait time.Duration
	cmd := &cobra.Command{
		Use:   "diagnostics <file>",
		Short: "Print the diagnostics a language server reports for a file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("exactly one file is required")
			}
			logger := newLogger()
			store := editor.NewDocumentStore()
			doc, err := openFile(store, args[0])
			if err != nil {
				return err
			}

			sink := diagnostics.NewMemorySink()
			manager := diagnostics.NewManager(sink, logger)
			manager.SetValidate(appConfig.Validate.Enabled)

			client, err := serverForLanguage(doc.LanguageID, flagWorkspace, lsp.Options{
				Diagnostics: manager,
				Logger:      logger,
			})
			if err != nil {
				return err
			}
			defer client.Close()

			if err := client.DidOpen(cmd.Context(), doc.URI, doc.LanguageID, doc.Text, doc.Version); err != nil {
				return err
			}

			// Servers push diagnostics; give them a moment.
			res := uri.URI(doc.URI)
			deadline := time.After(wait)
			ticker := time.NewTicker(100 * time.Millisecond)
			defer ticker.Stop()
			for {
				select {
				case <-cmd.Context().Done():
					return cmd.Context().Err()
				case <-deadline:
					return printDiagnostics(cmd, sink, res)
				case <-ticker.C:
					if sink.Count(res) > 0 {
						return printDiagnostics(cmd, sink, res)
					}
				}
			}
		},
	}
	cmd.Flags().DurationVar(&wait, "wait", 3*time.Second, "Time to wait for published diagnostics")
	return cmd
}

func printDiagnostics(cmd *cobra.Command, sink *diagnostics.MemorySink, res uri.URI) error {
	diags := sink.Get(res)
	if len(diags) == 0 {
		cmd.Println("no diagnostics")
		return nil
	}
	for _, d := range diags {
		source := d.Source
		if source == "" {
			source = "server"
		}
		cmd.Println(fmt.Sprintf("%d:%d [%s] %s", d.Range.Start.Line+1, d.Range.Start.Character+1, source, d.Message))
	}
	return nil
}
