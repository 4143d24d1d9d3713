package commands

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daylist/daylist/internal/auth"
	"github.com/daylist/daylist/internal/models"
)

const testPassword = "Str0ng!pass"

// newHome points daylist at a fresh directory with a cheap bcrypt cost
func newHome(t *testing.T) {
	t.Helper()
	home := t.TempDir()
	t.Setenv("DAYLIST_HOME", home)
	t.Setenv("DAYLIST_CONFIG", "")
	t.Setenv("DAYLIST_ALLOW_ORPHANS", "")
	config := "auth:\n  bcrypt_cost: 4\nlog:\n  level: error\n"
	require.NoError(t, os.WriteFile(filepath.Join(home, "config.yaml"), []byte(config), 0o600))
}

// run executes one CLI invocation, as a separate process would
func run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func mustRun(t *testing.T, stdin string, args ...string) string {
	t.Helper()
	out, _, err := run(t, stdin, args...)
	require.NoError(t, err, "daylist %s", strings.Join(args, " "))
	return out
}

func signup(t *testing.T, name, email string) {
	t.Helper()
	out := mustRun(t, testPassword+"\n"+testPassword+"\n", "signup", "--name", name, "--email", email)
	require.Contains(t, out, "Welcome, "+name)
}

func listJSON(t *testing.T, args ...string) []models.Task {
	t.Helper()
	out := mustRun(t, "", append([]string{"ls", "--json"}, args...)...)
	var tasks []models.Task
	require.NoError(t, json.Unmarshal([]byte(out), &tasks))
	return tasks
}

func TestVersion(t *testing.T) {
	SetVersion("1.2.3", "abc", "today")
	out, _, err := run(t, "", "version")
	require.NoError(t, err)
	assert.Equal(t, "daylist 1.2.3 (commit abc, built today)\n", out)
}

func TestHelp(t *testing.T) {
	out, _, err := run(t, "", "help")
	require.NoError(t, err)
	assert.Contains(t, out, "account delete")
	assert.Contains(t, out, "--purge-tasks")
}

func TestSignupPromptsForMissingValues(t *testing.T) {
	newHome(t)

	stdin := strings.Join([]string{"alice", "alice@example.com", testPassword, testPassword}, "\n") + "\n"
	out, prompts, err := run(t, stdin, "signup")
	require.NoError(t, err)
	assert.Contains(t, out, "Welcome, alice! You are signed in as alice@example.com")
	assert.Contains(t, prompts, "Username: ")
	assert.Contains(t, prompts, "Confirm password: ")

	out = mustRun(t, "", "whoami")
	assert.Contains(t, out, "alice <alice@example.com>")
}

func TestSignupRejectsInvalidInput(t *testing.T) {
	newHome(t)

	_, _, err := run(t, "weak\nweak\n", "signup", "--name", "alice", "--email", "alice@example.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "password")

	_, _, err = run(t, testPassword+"\nother\n", "signup", "--name", "alice", "--email", "alice@example.com")
	assert.ErrorIs(t, err, auth.ErrPasswordMismatch)

	assert.Equal(t, "Not signed in\n", mustRun(t, "", "whoami"))
}

func TestSessionSurvivesInvocations(t *testing.T) {
	newHome(t)
	signup(t, "alice", "alice@example.com")

	mustRun(t, "", "add", "Buy milk @shopping due:tomorrow")

	// every invocation restores the session from disk
	tasks := listJSON(t)
	require.Len(t, tasks, 1)
	task := tasks[0]
	assert.Equal(t, "Buy milk", task.Title)
	require.NotNil(t, task.ListName)
	assert.Equal(t, "shopping", *task.ListName)
	require.NotNil(t, task.TagColor)
	assert.Equal(t, "#34C759", *task.TagColor)
	assert.NotNil(t, task.Due)

	out := mustRun(t, "", "ls")
	assert.Contains(t, out, task.ShortID())
	assert.Contains(t, out, "TOMORROW")

	assert.Equal(t, "Signed out\n", mustRun(t, "", "logout"))
	out = mustRun(t, "", "ls")
	assert.Contains(t, out, "Not signed in")
	assert.Empty(t, listJSON(t))

	out = mustRun(t, testPassword+"\n", "login", "--email", "alice@example.com")
	assert.Contains(t, out, "Signed in as alice")
	assert.Len(t, listJSON(t), 1)
}

func TestLoginFailure(t *testing.T) {
	newHome(t)
	signup(t, "alice", "alice@example.com")
	mustRun(t, "", "logout")

	_, _, err := run(t, "wrong\n", "login", "--email", "alice@example.com")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	assert.Equal(t, "Not signed in\n", mustRun(t, "", "whoami"))
}

func TestLoginKeepsSessionUntilSignInSucceeds(t *testing.T) {
	newHome(t)
	signup(t, "bob", "bob@example.com")
	mustRun(t, "", "logout")
	signup(t, "alice", "alice@example.com")

	_, errOut, err := run(t, "wrong\n", "login", "--email", "bob@example.com")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	assert.NotContains(t, errOut, "alice@example.com")
	assert.Contains(t, mustRun(t, "", "whoami"), "alice <alice@example.com>")

	out, errOut, err := run(t, testPassword+"\n", "login", "--email", "bob@example.com")
	require.NoError(t, err)
	assert.Contains(t, out, "Signed in as bob")
	assert.Contains(t, errOut, "Replaced session for alice@example.com")
	assert.Contains(t, mustRun(t, "", "whoami"), "bob <bob@example.com>")
}

func TestTasksAreScopedToAccount(t *testing.T) {
	newHome(t)

	signup(t, "alice", "alice@example.com")
	mustRun(t, "", "add", "Alice task")
	aliceTask := listJSON(t)[0]
	mustRun(t, "", "logout")

	signup(t, "bob", "bob@example.com")
	assert.Empty(t, listJSON(t))
	mustRun(t, "", "add", "Bob task")

	_, _, err := run(t, "", "done", aliceTask.ID)
	assert.Error(t, err, "bob cannot complete alice's task")
	_, _, err = run(t, "", "rm", aliceTask.ShortID())
	assert.Error(t, err, "alice's id prefix does not resolve for bob")

	tasks := listJSON(t)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Bob task", tasks[0].Title)
}

func TestDoneUndoneAndFilters(t *testing.T) {
	newHome(t)
	signup(t, "alice", "alice@example.com")

	mustRun(t, "", "add", "First", "--list", "work")
	mustRun(t, "", "add", "Second", "--due", "today")
	tasks := listJSON(t)
	require.Len(t, tasks, 2)
	second, first := tasks[0], tasks[1]

	out := mustRun(t, "", "done", first.ShortID())
	assert.Contains(t, out, "Marked task "+first.ShortID()+" as done: First")

	done := listJSON(t, "--done")
	require.Len(t, done, 1)
	assert.Equal(t, first.ID, done[0].ID)
	assert.NotNil(t, done[0].CompletedAt)

	pending := listJSON(t, "--pending")
	require.Len(t, pending, 1)
	assert.Equal(t, second.ID, pending[0].ID)

	today := listJSON(t, "--today")
	require.Len(t, today, 1)
	assert.Equal(t, second.ID, today[0].ID)

	assert.Empty(t, listJSON(t, "--upcoming"))

	work := listJSON(t, "--list", "WORK")
	require.Len(t, work, 1)
	assert.Equal(t, first.ID, work[0].ID)

	mustRun(t, "", "undone", first.ID)
	assert.Len(t, listJSON(t, "--pending"), 2)

	_, _, err := run(t, "", "ls", "--done", "--pending")
	assert.Error(t, err)
}

func TestLists(t *testing.T) {
	newHome(t)
	signup(t, "alice", "alice@example.com")

	out := mustRun(t, "", "lists")
	assert.Contains(t, out, "No lists yet")

	mustRun(t, "", "add", "A @work")
	mustRun(t, "", "add", "B @work")
	mustRun(t, "", "add", "C @personal")
	mustRun(t, "", "add", "No list")

	out = mustRun(t, "", "lists")
	assert.Contains(t, out, "work")
	assert.Contains(t, out, "personal")
	assert.NotContains(t, out, "No list")
}

func TestAddValidation(t *testing.T) {
	newHome(t)
	signup(t, "alice", "alice@example.com")

	_, _, err := run(t, "", "add", "Late", "--due", "01/01/2000")
	assert.Error(t, err)

	_, _, err = run(t, "", "add", "Bad due:someday")
	assert.Error(t, err)

	_, _, err = run(t, "", "add", "@work")
	assert.Error(t, err, "title is empty once metadata is removed")

	_, _, err = run(t, "", "add", "Colour", "--color", "red")
	assert.Error(t, err)

	_, _, err = run(t, "", "add", "Negative", "--subtasks=-1")
	assert.Error(t, err)

	assert.Empty(t, listJSON(t))
}

func TestAddWithoutSession(t *testing.T) {
	t.Run("orphans allowed", func(t *testing.T) {
		newHome(t)
		out, warnings, err := run(t, "", "add", "Loose end")
		require.NoError(t, err)
		assert.Contains(t, out, "Created task")
		assert.Contains(t, warnings, "belongs to no account")
	})

	t.Run("orphans rejected", func(t *testing.T) {
		newHome(t)
		t.Setenv("DAYLIST_ALLOW_ORPHANS", "false")
		_, _, err := run(t, "", "add", "Loose end")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not signed in")
	})
}

func TestEdit(t *testing.T) {
	newHome(t)
	signup(t, "alice", "alice@example.com")
	mustRun(t, "", "add", "Buy milk", "--desc", "semi-skimmed", "--due", "tomorrow")
	task := listJSON(t)[0]

	_, _, err := run(t, "", "edit", task.ShortID())
	assert.Error(t, err, "nothing to change")

	out := mustRun(t, "", "edit", task.ShortID(), "--title", "Buy oat milk", "--list", "Shopping", "--due", "")
	assert.Contains(t, out, "Updated task "+task.ShortID()+": Buy oat milk")

	edited := listJSON(t)[0]
	assert.Equal(t, "Buy oat milk", edited.Title)
	require.NotNil(t, edited.Description)
	assert.Equal(t, "semi-skimmed", *edited.Description)
	assert.Nil(t, edited.Due)
	require.NotNil(t, edited.TagColor)
	assert.Equal(t, "#34C759", *edited.TagColor)

	mustRun(t, "", "edit", task.ID, "--list", "", "--desc", "")
	cleared := listJSON(t)[0]
	assert.Nil(t, cleared.ListName)
	assert.Nil(t, cleared.TagColor)
	assert.Nil(t, cleared.Description)

	_, _, err = run(t, "", "edit", task.ID, "--title", "  ")
	assert.Error(t, err)
}

func TestRemoveAndClear(t *testing.T) {
	newHome(t)
	signup(t, "alice", "alice@example.com")
	mustRun(t, "", "add", "One")
	mustRun(t, "", "add", "Two")
	mustRun(t, "", "add", "Three")

	tasks := listJSON(t)
	out := mustRun(t, "", "rm", tasks[0].ShortID())
	assert.Contains(t, out, "Deleted task "+tasks[0].ShortID()+": Three")
	assert.Len(t, listJSON(t), 2)

	out = mustRun(t, "n\n", "clear")
	assert.Contains(t, out, "Cancelled")
	assert.Len(t, listJSON(t), 2)

	out = mustRun(t, "", "clear", "--yes")
	assert.Equal(t, "Deleted 2 task(s)\n", out)
	assert.Empty(t, listJSON(t))
}

func TestAccountRenameAndDelete(t *testing.T) {
	newHome(t)
	signup(t, "alice", "alice@example.com")
	mustRun(t, "", "add", "Keep me")

	out := mustRun(t, "", "account", "rename", "alice_l")
	assert.Contains(t, out, "Username changed to alice_l")
	assert.Contains(t, mustRun(t, "", "whoami"), "alice_l <alice@example.com>")

	_, _, err := run(t, "", "account", "rename", "x")
	assert.Error(t, err)

	out = mustRun(t, "no\n", "account", "delete")
	assert.Contains(t, out, "Cancelled")

	out = mustRun(t, "", "account", "delete", "--yes", "--purge-tasks")
	assert.Contains(t, out, "Account deleted")
	assert.Equal(t, "Not signed in\n", mustRun(t, "", "whoami"))

	_, _, err = run(t, testPassword+"\n", "login", "--email", "alice@example.com")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestMutatingCommandsRequireSession(t *testing.T) {
	newHome(t)

	for _, args := range [][]string{
		{"done", "abc"},
		{"undone", "abc"},
		{"rm", "abc"},
		{"edit", "abc", "--title", "x"},
		{"clear", "--yes"},
		{"lists"},
		{"search", "milk"},
		{"account", "rename", "alice"},
		{"account", "delete", "--yes"},
	} {
		_, _, err := run(t, "", args...)
		assert.Error(t, err, "daylist %s", strings.Join(args, " "))
	}
}

func searchJSON(t *testing.T, args ...string) searchResult {
	t.Helper()
	out := mustRun(t, "", append([]string{"search", "--json"}, args...)...)
	var res searchResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	return res
}

func titles(tasks []models.Task) []string {
	out := make([]string, 0, len(tasks))
	for _, task := range tasks {
		out = append(out, task.Title)
	}
	return out
}

func TestSearchIsScopedToAccount(t *testing.T) {
	newHome(t)

	signup(t, "alice", "alice@example.com")
	mustRun(t, "", "add", "Buy milk")
	mustRun(t, "", "add", "Milkshake recipe")
	mustRun(t, "", "add", "Milk")
	mustRun(t, "", "add", "Call mom", "--desc", "ask about milk delivery")
	mustRun(t, "", "add", "Groceries @milkrun")
	mustRun(t, "", "add", "Dentist")
	mustRun(t, "", "logout")

	signup(t, "bob", "bob@example.com")
	mustRun(t, "", "add", "Buy milk for bob")

	res := searchJSON(t, "MILK")
	assert.Equal(t, "MILK", res.Query)
	assert.Equal(t, 1, res.Count)
	assert.Equal(t, []string{"Buy milk for bob"}, titles(res.Tasks))

	out := mustRun(t, "", "search", "milkshake")
	assert.Contains(t, out, "Search results for 'milkshake' (0 found):")
	assert.Contains(t, out, "No tasks found matching your search.")

	out = mustRun(t, testPassword+"\n", "login", "--email", "alice@example.com")
	require.Contains(t, out, "Signed in as alice")

	res = searchJSON(t, "milk")
	assert.Equal(t, 5, res.Count)
	assert.Equal(t, []string{
		"Milk",             // exact
		"Groceries",        // list name prefix, newer
		"Milkshake recipe", // title prefix
		"Buy milk",         // suffix
		"Call mom",         // description
	}, titles(res.Tasks))
	for _, task := range res.Tasks {
		assert.NotEqual(t, "Buy milk for bob", task.Title)
	}

	res = searchJSON(t, "milk", "--limit", "2")
	assert.Equal(t, []string{"Milk", "Groceries"}, titles(res.Tasks))

	res = searchJSON(t, "milk", "--list", "milkrun")
	assert.Equal(t, []string{"Groceries"}, titles(res.Tasks))

	out = mustRun(t, "", "search", "dentist")
	assert.Contains(t, out, "(1 found)")
	assert.Contains(t, out, "Dentist")
	assert.NotContains(t, out, "Milk")
}

func TestSearchRanking(t *testing.T) {
	desc := "Pick up BREAD"
	list := "bread"
	tasks := []models.Task{
		{ID: "1", Title: "Bake sourdough bread"},
		{ID: "2", Title: "Call the baker", Description: &desc},
		{ID: "3", Title: "Bread"},
		{ID: "4", Title: "Shopping", ListName: &list},
		{ID: "5", Title: "Breadcrumbs"},
		{ID: "6", Title: "Gingerbread house"},
		{ID: "7", Title: "Laundry"},
	}

	got := searchTasks(tasks, "  Bread ")
	assert.Equal(t, []string{
		"Bread",
		"Shopping",
		"Breadcrumbs",
		"Bake sourdough bread",
		"Call the baker",
		"Gingerbread house",
	}, titles(got))

	assert.Empty(t, searchTasks(tasks, "   "))
	assert.Empty(t, searchTasks(tasks, "cake"))
}

func TestTaskTableTruncatesByRune(t *testing.T) {
	list := strings.Repeat("日本語", 5)
	tasks := []models.Task{{
		ID:       "3f2a9c1b-0000-0000-0000-000000000000",
		Title:    strings.Repeat("ñ", 50),
		ListName: &list,
	}}

	var out bytes.Buffer
	printTaskTable(&out, tasks, time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC))

	table := out.String()
	assert.True(t, utf8.ValidString(table))
	assert.Contains(t, table, strings.Repeat("ñ", 35)+"...")
	assert.NotContains(t, table, strings.Repeat("ñ", 36))
	assert.Contains(t, table, "日本語日本語日本語日...")
}
