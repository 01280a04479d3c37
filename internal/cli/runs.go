package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/ridopark/closebt/internal/store"
	"github.com/ridopark/closebt/pkg/strategy/examples"
	"github.com/spf13/cobra"
)

// newStrategiesCmd lists the registered strategies
func newStrategiesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "strategies",
		Short: "List available strategies",
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range examples.DefaultRegistry().List() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
		},
	}
}

// newRunsCmd creates the archive management command
func newRunsCmd(a *app) *cobra.Command {
	runsCmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect archived runs",
		Long:  "List, show and delete runs archived in the SQLite store (storage.sqlite_path)",
	}

	var limit int
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List archived runs, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd.Context(), func(s *store.RunStore) error {
				runs, err := s.ListRuns(cmd.Context(), limit)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderRuns(runs))
				return nil
			})
		},
	}
	listCmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of runs (0 for all)")

	showCmd := &cobra.Command{
		Use:   "show RUN_ID",
		Short: "Print an archived report as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd.Context(), func(s *store.RunStore) error {
				rep, err := s.GetReport(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), rep)
			})
		},
	}

	deleteCmd := &cobra.Command{
		Use:   "delete RUN_ID",
		Short: "Remove a run from the archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd.Context(), func(s *store.RunStore) error {
				if err := s.DeleteRun(cmd.Context(), args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
				return nil
			})
		},
	}

	runsCmd.AddCommand(listCmd, showCmd, deleteCmd)
	return runsCmd
}

func (a *app) withStore(ctx context.Context, fn func(*store.RunStore) error) error {
	s, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	if s == nil {
		return errors.New("run archive is disabled, set storage.sqlite_path or SQLITE_PATH")
	}
	defer s.Close()
	return fn(s)
}
