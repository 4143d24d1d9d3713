package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/daylist/daylist/internal/models"
	"github.com/daylist/daylist/internal/parser"
	"github.com/daylist/daylist/internal/tui"
)

// taskFilter narrows a task listing
type taskFilter struct {
	list     string
	today    bool
	upcoming bool
	done     bool
	pending  bool
}

func (f taskFilter) match(t models.Task, now time.Time) bool {
	if f.list != "" && (t.ListName == nil || !strings.EqualFold(*t.ListName, f.list)) {
		return false
	}
	if f.done && !t.Completed {
		return false
	}
	if f.pending && t.Completed {
		return false
	}
	if f.today && (t.Due == nil || parser.DaysUntil(t.Due.In(now.Location()), now) != 0) {
		return false
	}
	if f.upcoming && (t.Due == nil || parser.DaysUntil(t.Due.In(now.Location()), now) < 1) {
		return false
	}
	return true
}

func filterTasks(tasks []models.Task, f taskFilter, now time.Time) []models.Task {
	var out []models.Task
	for _, t := range tasks {
		if f.match(t, now) {
			out = append(out, t)
		}
	}
	return out
}

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List tasks",
		Long:    "List your tasks, newest first, with optional filters for list, due date and completion",
		Args:    cobra.NoArgs,
		RunE: withApp(func(a *app, cmd *cobra.Command, args []string) error {
			sess := a.session()
			now := a.now()

			if interactive, _ := cmd.Flags().GetBool("interactive"); interactive {
				if _, err := a.requireSession(); err != nil {
					return err
				}
				return tui.RunListTUI(a.tasks, sess, a.now)
			}

			var f taskFilter
			f.list, _ = cmd.Flags().GetString("list")
			f.today, _ = cmd.Flags().GetBool("today")
			f.upcoming, _ = cmd.Flags().GetBool("upcoming")
			f.done, _ = cmd.Flags().GetBool("done")
			f.pending, _ = cmd.Flags().GetBool("pending")
			if f.done && f.pending {
				return fmt.Errorf("--done and --pending cannot be combined")
			}
			if f.today && f.upcoming {
				return fmt.Errorf("--today and --upcoming cannot be combined")
			}

			tasks, err := a.tasks.List(sess)
			if err != nil {
				return err
			}
			tasks = filterTasks(tasks, f, now)

			out := cmd.OutOrStdout()
			if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
				if tasks == nil {
					tasks = []models.Task{}
				}
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(tasks)
			}

			if !sess.Active() {
				fmt.Fprintln(out, "Not signed in. Use 'daylist login' or 'daylist signup' to see your tasks.")
				return nil
			}
			if len(tasks) == 0 {
				fmt.Fprintln(out, "No tasks found. Use 'daylist add \"task title\"' to create your first task.")
				return nil
			}
			printTaskTable(out, tasks, now)
			return nil
		}),
	}

	cmd.Flags().StringP("list", "l", "", "Only tasks in this list")
	cmd.Flags().Bool("today", false, "Only tasks due today")
	cmd.Flags().Bool("upcoming", false, "Only tasks due after today")
	cmd.Flags().Bool("done", false, "Only completed tasks")
	cmd.Flags().Bool("pending", false, "Only open tasks")
	cmd.Flags().Bool("json", false, "JSON output")
	cmd.Flags().BoolP("interactive", "i", false, "Interactive list")
	return cmd
}

// printTaskTable renders tasks as a fixed-width table
func printTaskTable(out io.Writer, tasks []models.Task, now time.Time) {
	fmt.Fprintf(out, "%-8s  %-4s  %-40s  %-15s  %-9s  %s\n", "ID", "DONE", "TITLE", "LIST", "DUE", "SUBTASKS")
	fmt.Fprintln(out, strings.Repeat("-", 90))

	for _, task := range tasks {
		status := "[ ]"
		if task.Completed {
			status = "[x]"
		}

		title := tui.Truncate(task.Title, 38)

		list := ""
		if task.ListName != nil {
			list = tui.Truncate(*task.ListName, 13)
		}
		list = fmt.Sprintf("%-15s", list)
		if task.TagColor != nil {
			list = lipgloss.NewStyle().Foreground(lipgloss.Color(*task.TagColor)).Render(list)
		}

		subtasks := ""
		if task.SubtaskCount > 0 {
			subtasks = fmt.Sprintf("%d", task.SubtaskCount)
		}

		fmt.Fprintf(out, "%-8s  %-4s  %-40s  %s  %-9s  %s\n",
			task.ShortID(),
			status,
			title,
			list,
			parser.ShortDue(task.Due, now),
			subtasks)
	}
}

func newListsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lists",
		Short: "Show your lists with task counts",
		Args:  cobra.NoArgs,
		RunE: withApp(func(a *app, cmd *cobra.Command, args []string) error {
			sess, err := a.requireSession()
			if err != nil {
				return err
			}
			summaries, err := a.tasks.ListNames(sess)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(summaries) == 0 {
				fmt.Fprintln(out, "No lists yet. Use 'daylist add \"title\" --list <name>' to start one.")
				return nil
			}
			fmt.Fprintf(out, "%-20s  %5s  %5s\n", "LIST", "OPEN", "TOTAL")
			for _, s := range summaries {
				swatch := lipgloss.NewStyle().Foreground(lipgloss.Color(parser.ColorForList(s.Name))).Render("●")
				fmt.Fprintf(out, "%s %-18s  %5d  %5d\n", swatch, s.Name, s.Open, s.Total)
			}
			return nil
		}),
	}
}
