package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lexcodex/crumb/workspace"
)

var (
	flagWorkspace  string
	flagConfigFile string

	appConfig *workspace.Config
)

const appVersion = "0.1.0"

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "crumb",
		Short: "Breadcrumb navigation, outlines, and tag assistance for the terminal",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			path := flagConfigFile
			if path == "" {
				path = workspace.DefaultConfigPath(flagWorkspace)
			}
			cfg, err := workspace.LoadConfig(path, flagWorkspace)
			if err != nil {
				return err
			}
			appConfig = cfg
			return nil
		},
	}
	root.PersistentFlags().StringVar(&flagWorkspace, "workspace", ".", "Workspace root")
	root.PersistentFlags().StringVar(&flagConfigFile, "config", "", "Config file (default crumb_cfg/config.yaml in the workspace)")

	root.AddCommand(newBrowseCmd(), newSymbolsCmd(), newDiagnosticsCmd(), newConfigCmd(), newHistoryCmd(), newDoctorCmd(), newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the crumb version",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Printf("crumb %s\n", appVersion)
		},
	}
}
