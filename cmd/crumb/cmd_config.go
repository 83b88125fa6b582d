package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lexcodex/crumb/workspace"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and edit the workspace configuration",
	}
	cmd.AddCommand(newConfigGetCmd(), newConfigSetCmd())
	return cmd
}

func configPath() string {
	if flagConfigFile != "" {
		return flagConfigFile
	}
	return workspace.DefaultConfigPath(flagWorkspace)
}

func newConfigGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Print a config value by dotted key",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("exactly one key is required")
			}
			data, err := workspace.ReadConfigMap(configPath())
			if err != nil {
				return err
			}
			value, ok := workspace.GetConfigValue(data, args[0])
			if !ok {
				return fmt.Errorf("key %q not found", args[0])
			}
			cmd.Println(fmt.Sprintf("%v", value))
			return nil
		},
	}
}

func newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a config value by dotted key",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 2 {
				return errors.New("a key and a value are required")
			}
			path := configPath()
			data, err := workspace.ReadConfigMap(path)
			if err != nil {
				return err
			}
			if err := workspace.SetConfigValue(data, args[0], workspace.ParseValue(args[1])); err != nil {
				return err
			}
			if err := workspace.WriteConfigMap(path, data); err != nil {
				return err
			}
			cmd.Printf("%s = %s\n", args[0], args[1])
			return nil
		},
	}
}
