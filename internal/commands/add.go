package commands

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/daylist/daylist/internal/db"
	"github.com/daylist/daylist/internal/models"
	"github.com/daylist/daylist/internal/parser"
	"github.com/daylist/daylist/internal/validate"
)

func newAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a new task",
		Long: `Add a new task with optional metadata.

Smart parsing syntax:
  @list        - List name (single word; use --list for names with spaces)
  due:X        - Due date (dd/mm/yyyy, yyyy-mm-dd, today, tomorrow, X days, X weeks)
  subtasks:N   - Number of subtasks

Flags take precedence over values parsed from the title.

Examples:
  daylist add "Buy milk @shopping due:tomorrow"
  daylist add "Quarterly report" --list work --due 2w --subtasks 3`,
		Args: cobra.MinimumNArgs(1),
		RunE: withApp(func(a *app, cmd *cobra.Command, args []string) error {
			now := a.now()
			parsed := parser.ParseTitle(strings.Join(args, " "), now)
			if len(parsed.Errors) > 0 {
				return fmt.Errorf("%s", strings.Join(parsed.Errors, "; "))
			}
			if err := validate.Title(parsed.Title); err != nil {
				return err
			}

			req := db.NewTask{
				Title:        parsed.Title,
				Due:          parsed.DueDate,
				SubtaskCount: parsed.SubtaskCount,
			}
			listName := parsed.ListName

			if v, _ := cmd.Flags().GetString("list"); cmd.Flags().Changed("list") {
				listName = v
			}
			if cmd.Flags().Changed("due") {
				v, _ := cmd.Flags().GetString("due")
				due, err := parser.ParseDueDate(v, now)
				if err != nil {
					return fmt.Errorf("error parsing due date: %w", err)
				}
				req.Due = due
			}
			if cmd.Flags().Changed("subtasks") {
				req.SubtaskCount, _ = cmd.Flags().GetInt("subtasks")
			}
			if v, _ := cmd.Flags().GetString("desc"); v != "" {
				req.Description = &v
			}

			if listName != "" {
				req.ListName = &listName
			}
			color, _ := cmd.Flags().GetString("color")
			if color == "" {
				color = parser.ColorForList(listName)
			}
			if color != "" {
				req.TagColor = &color
			}

			sess := a.session()
			task, err := a.tasks.Create(sess, req)
			if errors.Is(err, db.ErrNoSession) {
				return fmt.Errorf("not signed in. Use 'daylist login' before adding tasks")
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Created task %s: %s\n", task.ShortID(), task.Title)
			printTaskDetails(out, task, a)
			if task.Orphaned() {
				fmt.Fprintln(cmd.ErrOrStderr(), "Warning: not signed in, this task belongs to no account")
			}
			return nil
		}),
	}

	cmd.Flags().String("desc", "", "Description")
	cmd.Flags().String("due", "", "Due date: dd/mm/yyyy, yyyy-mm-dd, today, tomorrow, X days, X weeks")
	cmd.Flags().StringP("list", "l", "", "List name")
	cmd.Flags().String("color", "", "Tag colour as #RRGGBB (defaults to the list colour)")
	cmd.Flags().Int("subtasks", 0, "Number of subtasks")
	return cmd
}

// printTaskDetails writes the optional fields of a task, one per line
func printTaskDetails(out io.Writer, task *models.Task, a *app) {
	if task.ListName != nil {
		fmt.Fprintf(out, "  List: %s\n", *task.ListName)
	}
	if task.Description != nil {
		fmt.Fprintf(out, "  Description: %s\n", *task.Description)
	}
	if task.Due != nil {
		fmt.Fprintf(out, "  %s\n", parser.FormatDueDate(task.Due, a.now()))
	}
	if task.SubtaskCount > 0 {
		fmt.Fprintf(out, "  Subtasks: %d\n", task.SubtaskCount)
	}
	if task.TagColor != nil {
		fmt.Fprintf(out, "  Colour: %s\n", *task.TagColor)
	}
}
