package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lexcodex/crumb/history"
)

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show navigation history",
	}
	cmd.AddCommand(newHistoryRecentCmd(), newHistoryTopCmd())
	return cmd
}

func openHistory() (*history.Store, error) {
	return history.NewStore(appConfig.History.Path, appConfig.History.Keep, newLogger())
}

func newHistoryRecentCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "recent",
		Short: "List the most recent navigation targets",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openHistory()
			if err != nil {
				return err
			}
			defer store.Close()
			visits, err := store.Recent(limit)
			if err != nil {
				return err
			}
			if len(visits) == 0 {
				cmd.Println("no history")
				return nil
			}
			for _, v := range visits {
				if v.Kind == "symbol" {
					cmd.Println(fmt.Sprintf("%s  %s:%d (%s)", v.VisitedAt.Format("2006-01-02 15:04"), v.Name, v.Line+1, v.Resource.Filename()))
					continue
				}
				cmd.Println(fmt.Sprintf("%s  %s", v.VisitedAt.Format("2006-01-02 15:04"), v.Resource.Filename()))
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum entries to show")
	return cmd
}

func newHistoryTopCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "top",
		Short: "List the most frequently visited targets",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openHistory()
			if err != nil {
				return err
			}
			defer store.Close()
			freqs, err := store.MostVisited(limit)
			if err != nil {
				return err
			}
			if len(freqs) == 0 {
				cmd.Println("no history")
				return nil
			}
			for _, f := range freqs {
				cmd.Println(fmt.Sprintf("%4d  %s (%s)", f.Count, f.Name, f.Resource.Filename()))
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 10, "Maximum entries to show")
	return cmd
}
