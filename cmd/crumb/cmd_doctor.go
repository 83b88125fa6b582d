package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lexcodex/crumb/cmd/internal/setup"
)

func newDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check which language servers are installed for this workspace",
		RunE: func(cmd *cobra.Command, args []string) error {
			servers, err := setup.Detect(flagWorkspace)
			if err != nil {
				return err
			}
			for _, s := range servers {
				status := "missing"
				if s.Available {
					status = s.CommandPath
				}
				cmd.Println(fmt.Sprintf("%-12s %-40s files: %d  (%s)", s.ID, status, s.WorkspaceMatches, strings.Join(s.Commands, ", ")))
			}
			return nil
		},
	}
}
