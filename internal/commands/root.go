package commands

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/daylist/daylist/internal/auth"
	"github.com/daylist/daylist/internal/config"
	"github.com/daylist/daylist/internal/db"
	"github.com/daylist/daylist/internal/keystore"
	"github.com/daylist/daylist/internal/logger"
	"github.com/daylist/daylist/internal/session"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// app holds everything a command needs, built once per invocation
type app struct {
	cfg   *config.Config
	log   *zap.Logger
	db    *gorm.DB
	keys  session.KeyStore
	store *session.Store
	users *db.UserRepository
	tasks *db.TaskRepository
	auth  *auth.Service
	now   func() time.Time
}

// newApp loads config, opens storage and restores the persisted session
func newApp(configPath string) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		return nil, err
	}

	gdb, err := db.Open(cfg.Database.Path)
	if err != nil {
		return nil, err
	}

	keys, err := keystore.Open(keystore.Options{
		Backend:       cfg.KeyStore.Backend,
		Path:          cfg.KeyStore.Path,
		RedisAddr:     cfg.KeyStore.Redis.Addr,
		RedisPassword: cfg.KeyStore.Redis.Password,
		RedisDB:       cfg.KeyStore.Redis.DB,
		RedisPrefix:   cfg.KeyStore.Redis.Prefix,
	})
	if err != nil {
		db.Close(gdb)
		return nil, err
	}

	a := &app{
		cfg:  cfg,
		log:  log,
		db:   gdb,
		keys: keys,
		now:  time.Now,
	}
	a.store = session.NewStore(keys, db.NewSettings(gdb), log.Named("session"))
	a.users = db.NewUserRepository(gdb, log.Named("users"))
	a.tasks = db.NewTaskRepository(gdb, log.Named("tasks"), db.TaskOptions{
		AllowOrphans: cfg.Tasks.AllowOrphans,
		Now:          a.now,
	})
	a.auth = auth.NewService(a.users, a.tasks, a.store, cfg.Auth.BcryptCost, log.Named("auth"))

	a.store.Restore()
	return a, nil
}

// session returns the active session
func (a *app) session() session.Session {
	return a.store.Current()
}

// requireSession fails when nobody is signed in
func (a *app) requireSession() (session.Session, error) {
	sess := a.session()
	if !sess.Active() {
		return sess, errors.New("not signed in. Use 'daylist login' or 'daylist signup' first")
	}
	return sess, nil
}

// close releases storage handles
func (a *app) close() {
	if r, ok := a.keys.(*keystore.Redis); ok {
		r.Close()
	}
	db.Close(a.db)
	a.log.Sync()
}

// withApp wraps a command function to build the app first
func withApp(fn func(a *app, cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		a, err := newApp(configPath)
		if err != nil {
			return err
		}
		defer a.close()
		return fn(a, cmd, args)
	}
}

// SetVersion sets the version information
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// NewRootCmd builds the full command tree
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "daylist",
		Short: "Personal tasks and lists from the terminal",
		Long: `daylist keeps your task lists, due dates and completion state on this device.
Sign in once and every command works on your own tasks until you log out.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().String("config", "", "Config file (default ~/.daylist/config.yaml)")

	rootCmd.AddCommand(newSignupCmd())
	rootCmd.AddCommand(newLoginCmd())
	rootCmd.AddCommand(newLogoutCmd())
	rootCmd.AddCommand(newWhoamiCmd())
	rootCmd.AddCommand(newAccountCmd())
	rootCmd.AddCommand(newAddCmd())
	rootCmd.AddCommand(newListCmd())
	rootCmd.AddCommand(newListsCmd())
	rootCmd.AddCommand(newSearchCmd())
	rootCmd.AddCommand(newEditCmd())
	rootCmd.AddCommand(newDoneCmd())
	rootCmd.AddCommand(newUndoneCmd())
	rootCmd.AddCommand(newRemoveCmd())
	rootCmd.AddCommand(newClearCmd())
	rootCmd.SetHelpCommand(newHelpCmd())
	rootCmd.AddCommand(newVersionCmd())
	return rootCmd
}

// Execute runs the root command
func Execute() error {
	return NewRootCmd().Execute()
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "daylist %s (commit %s, built %s)\n", version, commit, date)
		},
	}
}
