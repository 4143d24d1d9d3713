package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newDoneCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "done <task-id>...",
		Short: "Mark tasks as completed",
		Args:  cobra.MinimumNArgs(1),
		RunE:  withApp(setCompleted(true)),
	}
}

func newUndoneCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "undone <task-id>...",
		Short: "Mark completed tasks as open again",
		Args:  cobra.MinimumNArgs(1),
		RunE:  withApp(setCompleted(false)),
	}
}

func setCompleted(done bool) func(a *app, cmd *cobra.Command, args []string) error {
	return func(a *app, cmd *cobra.Command, args []string) error {
		sess, err := a.requireSession()
		if err != nil {
			return err
		}

		for _, ref := range args {
			task, err := a.tasks.Resolve(sess, ref)
			if err != nil {
				return err
			}
			task, err = a.tasks.SetCompleted(sess, task.ID, done)
			if err != nil {
				return err
			}

			if done {
				fmt.Fprintf(cmd.OutOrStdout(), "Marked task %s as done: %s\n", task.ShortID(), task.Title)
				if task.CompletedAt != nil {
					fmt.Fprintf(cmd.OutOrStdout(), "Completed at: %s\n", task.CompletedAt.Local().Format("15:04:05"))
				}
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Marked task %s as open: %s\n", task.ShortID(), task.Title)
			}
		}
		return nil
	}
}
