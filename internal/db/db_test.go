package db

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := Open(filepath.Join(t.TempDir(), "daylist.db"))
	require.NoError(t, err)
	t.Cleanup(func() { Close(gdb) })
	return gdb
}

// fakeClock advances one second on every reading so creation order is strict
type fakeClock struct {
	t time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.t = c.t.Add(time.Second)
	return c.t
}

func TestOpen_CreatesDirectoryAndSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "daylist.db")
	gdb, err := Open(path)
	require.NoError(t, err)
	defer Close(gdb)

	for _, table := range []string{"users", "tasks", "settings"} {
		require.True(t, gdb.Migrator().HasTable(table), table)
	}
}

func TestClose_Nil(t *testing.T) {
	require.NoError(t, Close(nil))
}
