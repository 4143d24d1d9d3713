package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/daylist/daylist/internal/db"
	"github.com/daylist/daylist/internal/parser"
	"github.com/daylist/daylist/internal/validate"
)

func newEditCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit <task-id>",
		Short: "Edit an existing task",
		Long: `Edit an existing task. Only the flags you pass are changed.

The task id may be shortened to any unique prefix, as shown by 'daylist ls'.
Pass an empty value to clear an optional field, e.g. --due "" or --list "".
Changing the list without --color picks that list's default colour.

Usage:
  daylist edit 3f2a9c1b --title "Buy oat milk" --due tomorrow`,
		Args: cobra.ExactArgs(1),
		RunE: withApp(func(a *app, cmd *cobra.Command, args []string) error {
			sess, err := a.requireSession()
			if err != nil {
				return err
			}
			task, err := a.tasks.Resolve(sess, args[0])
			if err != nil {
				return err
			}

			var upd db.TaskUpdate
			flags := cmd.Flags()
			changed := false

			if flags.Changed("title") {
				v, _ := flags.GetString("title")
				if err := validate.Title(v); err != nil {
					return err
				}
				upd.Title = &v
				changed = true
			}
			if flags.Changed("desc") {
				v, _ := flags.GetString("desc")
				upd.Description = &v
				changed = true
			}
			if flags.Changed("due") {
				v, _ := flags.GetString("due")
				due, err := parser.ParseDueDate(v, a.now())
				if err != nil {
					return fmt.Errorf("error parsing due date: %w", err)
				}
				if due == nil {
					upd.ClearDue = true
				} else {
					upd.Due = due
				}
				changed = true
			}
			if flags.Changed("subtasks") {
				v, _ := flags.GetInt("subtasks")
				upd.SubtaskCount = &v
				changed = true
			}
			if flags.Changed("list") {
				v, _ := flags.GetString("list")
				upd.ListName = &v
				if !flags.Changed("color") {
					color := parser.ColorForList(v)
					upd.TagColor = &color
				}
				changed = true
			}
			if flags.Changed("color") {
				v, _ := flags.GetString("color")
				upd.TagColor = &v
				changed = true
			}

			if !changed {
				return fmt.Errorf("nothing to change. See 'daylist edit --help' for the available flags")
			}

			updated, err := a.tasks.Update(sess, task.ID, upd)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Updated task %s: %s\n", updated.ShortID(), updated.Title)
			printTaskDetails(out, updated, a)
			return nil
		}),
	}

	cmd.Flags().String("title", "", "New title")
	cmd.Flags().String("desc", "", "Description")
	cmd.Flags().String("due", "", "Due date: dd/mm/yyyy, yyyy-mm-dd, today, tomorrow, X days, X weeks")
	cmd.Flags().StringP("list", "l", "", "List name")
	cmd.Flags().String("color", "", "Tag colour as #RRGGBB")
	cmd.Flags().Int("subtasks", 0, "Number of subtasks")
	return cmd
}
