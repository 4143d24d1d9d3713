package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/daylist/daylist/internal/models"
)

// match ranks, best first
const (
	matchExact = iota
	matchPrefix
	matchSuffix
	matchContains
	noMatch
)

// searchResult is the --json shape of a search
type searchResult struct {
	Query string        `json:"query"`
	Count int           `json:"count"`
	Tasks []models.Task `json:"tasks"`
}

func matchRank(field, query string) int {
	field = strings.ToLower(strings.TrimSpace(field))
	switch {
	case field == "":
		return noMatch
	case field == query:
		return matchExact
	case strings.HasPrefix(field, query):
		return matchPrefix
	case strings.HasSuffix(field, query):
		return matchSuffix
	case strings.Contains(field, query):
		return matchContains
	}
	return noMatch
}

// taskRank is the best rank across title, description and list name
func taskRank(t models.Task, query string) int {
	best := matchRank(t.Title, query)
	for _, field := range []*string{t.Description, t.ListName} {
		if field == nil {
			continue
		}
		if r := matchRank(*field, query); r < best {
			best = r
		}
	}
	return best
}

// searchTasks keeps the tasks matching query, best matches first. Ties
// keep their input order.
func searchTasks(tasks []models.Task, query string) []models.Task {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil
	}

	type ranked struct {
		task models.Task
		rank int
	}
	var hits []ranked
	for _, t := range tasks {
		if r := taskRank(t, query); r != noMatch {
			hits = append(hits, ranked{task: t, rank: r})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].rank < hits[j].rank })

	out := make([]models.Task, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.task)
	}
	return out
}

func newSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search your tasks",
		Long: `Search your tasks by title, description and list name.

Matching is case insensitive. Results are ranked:
  exact match, then prefix, then suffix, then anywhere in the text.
Within a rank the newest task comes first.`,
		Args: cobra.MinimumNArgs(1),
		RunE: withApp(func(a *app, cmd *cobra.Command, args []string) error {
			sess, err := a.requireSession()
			if err != nil {
				return err
			}
			query := strings.TrimSpace(strings.Join(args, " "))
			if query == "" {
				return fmt.Errorf("search query cannot be empty")
			}

			var f taskFilter
			f.list, _ = cmd.Flags().GetString("list")
			f.done, _ = cmd.Flags().GetBool("done")
			f.pending, _ = cmd.Flags().GetBool("pending")
			if f.done && f.pending {
				return fmt.Errorf("--done and --pending cannot be combined")
			}
			limit, _ := cmd.Flags().GetInt("limit")
			if limit < 0 {
				return fmt.Errorf("--limit cannot be negative")
			}

			tasks, err := a.tasks.List(sess)
			if err != nil {
				return err
			}
			now := a.now()
			tasks = searchTasks(filterTasks(tasks, f, now), query)
			if limit > 0 && len(tasks) > limit {
				tasks = tasks[:limit]
			}

			out := cmd.OutOrStdout()
			if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(searchResult{Query: query, Count: len(tasks), Tasks: tasks})
			}
			renderSearchTable(out, tasks, query, now)
			return nil
		}),
	}

	cmd.Flags().StringP("list", "l", "", "Only tasks in this list")
	cmd.Flags().Bool("done", false, "Only completed tasks")
	cmd.Flags().Bool("pending", false, "Only open tasks")
	cmd.Flags().Int("limit", 0, "Limit number of results")
	cmd.Flags().Bool("json", false, "JSON output")
	return cmd
}

func renderSearchTable(out io.Writer, tasks []models.Task, query string, now time.Time) {
	fmt.Fprintf(out, "Search results for '%s' (%d found):\n", query, len(tasks))
	if len(tasks) == 0 {
		fmt.Fprintln(out, "No tasks found matching your search.")
		return
	}
	fmt.Fprintln(out)
	printTaskTable(out, tasks, now)
}
