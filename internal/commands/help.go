package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

func newHelpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "help",
		Short: "Show comprehensive help for daylist",
		Long:  `Display detailed help for all daylist commands and flags.`,
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) > 0 {
				if sub, _, err := cmd.Root().Find(args); err == nil && sub != cmd.Root() {
					sub.Help()
					return
				}
			}
			showCustomHelp(cmd.OutOrStdout())
		},
	}
}

func showCustomHelp(out io.Writer) {
	fmt.Fprint(out, `
     _             _ _     _
  __| | __ _ _   _| (_)___| |_
 / _' |/ _' | | | | | / __| __|
| (_| | (_| | |_| | | \__ \ |_
 \__,_|\__,_|\__, |_|_|___/\__|
             |___/

daylist - personal tasks and lists

ACCOUNT:

  signup                  Create an account and sign in
    --name                Username
    --email               Email address
  login                   Sign in (signs out the current account first)
    --email               Email address
  logout                  Sign out on this device
  whoami                  Show the signed-in account
  account rename <name>   Change your username
  account delete          Delete your account
    --purge-tasks         Also delete every task you own
    -y, --yes             Skip confirmation

TASKS:

  add <title>             Create a new task with smart parsing
    --desc                Description
    --due                 Due date (dd/mm/yyyy, yyyy-mm-dd, today, tomorrow, 3d, 2w)
    -l, --list            List name
    --color               Tag colour as #RRGGBB (defaults to the list colour)
    --subtasks            Number of subtasks

    Smart syntax:
      @list         Set list
      due:X         Set due date
      subtasks:N    Set subtask count

    Example:
      daylist add "Buy milk @shopping due:tomorrow"

  ls                      List your tasks, newest first
    -l, --list            Only tasks in this list
    --today               Only tasks due today
    --upcoming            Only tasks due after today
    --done                Only completed tasks
    --pending             Only open tasks
    --json                JSON output
    -i, --interactive     Interactive list

    Interactive keys:
      ↑/↓ or j/k    Navigate tasks
      ←/→           Change page
      space/x       Mark done/undone
      a             Add a task
      d             Delete task
      r             Reload
      q/esc         Quit

  lists                   Show your lists with task counts
  search <query>          Search titles, descriptions and list names
    -l, --list            Only tasks in this list
    --done                Only completed tasks
    --pending             Only open tasks
    --limit N             Limit number of results
    --json                JSON output

  edit <id>               Change title, description, due date, list, colour or subtasks
  done <id>...            Mark tasks as completed
  undone <id>...          Mark tasks as open
  rm <id>...              Delete tasks
  clear                   Delete all of your tasks
    -y, --yes             Skip confirmation

  version                 Print version information
  help [command]          Show this help

Task ids may be shortened to any unique prefix.

`)
}
