package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "rm <task-id>...",
		Aliases: []string{"delete"},
		Short:   "Delete tasks permanently",
		Args:    cobra.MinimumNArgs(1),
		RunE: withApp(func(a *app, cmd *cobra.Command, args []string) error {
			sess, err := a.requireSession()
			if err != nil {
				return err
			}

			for _, ref := range args {
				task, err := a.tasks.Resolve(sess, ref)
				if err != nil {
					return err
				}
				if err := a.tasks.Delete(sess, task.ID); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted task %s: %s\n", task.ShortID(), task.Title)
			}
			return nil
		}),
	}
}

func newClearCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete all of your tasks",
		Args:  cobra.NoArgs,
		RunE: withApp(func(a *app, cmd *cobra.Command, args []string) error {
			sess, err := a.requireSession()
			if err != nil {
				return err
			}

			yes, _ := cmd.Flags().GetBool("yes")
			if !yes && !newPrompter(cmd).confirm("Delete all of your tasks?") {
				fmt.Fprintln(cmd.OutOrStdout(), "Cancelled")
				return nil
			}

			n, err := a.tasks.DeleteAll(sess)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d task(s)\n", n)
			return nil
		}),
	}
	cmd.Flags().BoolP("yes", "y", false, "Skip confirmation")
	return cmd
}
