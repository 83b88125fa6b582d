package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/lexcodex/crumb/editor"
	"github.com/lexcodex/crumb/lsp"
	"github.com/lexcodex/crumb/outline"
)

func newSymbolsCmd() *cobra.Command {
	var timeout time.Duration
	cmd := &cobra.Command{
		Use:   "symbols <file>",
		Short: "Print the symbol outline of a file",
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

			client, err := serverForLanguage(doc.LanguageID, flagWorkspace, lsp.Options{Logger: logger})
			if err != nil {
				return err
			}
			defer client.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			if err := client.DidOpen(ctx, doc.URI, doc.LanguageID, doc.Text, doc.Version); err != nil {
				return err
			}
			group, err := client.DocumentSymbols(ctx, doc.URI)
			if err != nil {
				return err
			}
			if len(group.Roots) == 0 {
				cmd.Println("no symbols")
				return nil
			}
			for _, root := range group.Roots {
				printSymbol(cmd, root, 0)
			}
			return nil
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "Time to wait for the language server")
	return cmd
}

func printSymbol(cmd *cobra.Command, sym *outline.Symbol, depth int) {
	indent := strings.Repeat("  ", depth)
	cmd.Println(fmt.Sprintf("%s%s  [%s] line %d", indent, sym.Name, outline.KindLabel(sym.Kind), sym.SelectionRange.Start.Line+1))
	for _, child := range sym.Children {
		printSymbol(cmd, child, depth+1)
	}
}
