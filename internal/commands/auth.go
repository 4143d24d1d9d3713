package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/daylist/daylist/internal/auth"
	"github.com/daylist/daylist/internal/session"
)

func newSignupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account and sign in",
		Long: `Create a local account. Missing values are asked for interactively.

Passwords need at least 8 characters with an uppercase letter, a lowercase
letter, a number and a special character.`,
		Args: cobra.NoArgs,
		RunE: withApp(func(a *app, cmd *cobra.Command, args []string) error {
			p := newPrompter(cmd)
			name, err := valueOrPrompt(p, cmd, "name", "Username: ")
			if err != nil {
				return err
			}
			email, err := valueOrPrompt(p, cmd, "email", "Email: ")
			if err != nil {
				return err
			}
			password, err := p.secret("Password: ")
			if err != nil {
				return err
			}
			confirm, err := p.secret("Confirm password: ")
			if err != nil {
				return err
			}

			user, _, err := a.auth.SignUp(auth.SignUpRequest{
				Username: name,
				Email:    email,
				Password: password,
				Confirm:  confirm,
			})
			if err := sessionErr(cmd, err); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Welcome, %s! You are signed in as %s\n", user.Name, user.Email)
			return nil
		}),
	}
	cmd.Flags().String("name", "", "Username")
	cmd.Flags().String("email", "", "Email address")
	return cmd
}

func newLoginCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to an existing account",
		Args:  cobra.NoArgs,
		RunE: withApp(func(a *app, cmd *cobra.Command, args []string) error {
			prev := a.session()

			p := newPrompter(cmd)
			email, err := valueOrPrompt(p, cmd, "email", "Email: ")
			if err != nil {
				return err
			}
			password, err := p.secret("Password: ")
			if err != nil {
				return err
			}

			user, _, err := a.auth.SignIn(email, password)
			if err := sessionErr(cmd, err); err != nil {
				return err
			}

			if prev.Active() && prev.UserID != user.ID {
				fmt.Fprintf(cmd.ErrOrStderr(), "Replaced session for %s\n", prev.Email)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s (%s)\n", user.Name, user.Email)
			return nil
		}),
	}
	cmd.Flags().String("email", "", "Email address")
	return cmd
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out on this device",
		Args:  cobra.NoArgs,
		RunE: withApp(func(a *app, cmd *cobra.Command, args []string) error {
			wasActive := a.session().Active()
			if err := a.auth.SignOut(); err != nil {
				return fmt.Errorf("sign out: %w", err)
			}
			if wasActive {
				fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "Not signed in")
			}
			return nil
		}),
	}
}

func newWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in account",
		Args:  cobra.NoArgs,
		RunE: withApp(func(a *app, cmd *cobra.Command, args []string) error {
			sess := a.session()
			if !sess.Active() {
				fmt.Fprintln(cmd.OutOrStdout(), "Not signed in")
				return nil
			}
			user, err := a.auth.CurrentUser(sess)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s <%s>\n", user.Name, user.Email)
			fmt.Fprintf(cmd.OutOrStdout(), "Member since %s\n", user.CreatedAt.Format("02/01/2006"))
			return nil
		}),
	}
}

func newAccountCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Manage the signed-in account",
	}

	rename := &cobra.Command{
		Use:   "rename <username>",
		Short: "Change your username",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(a *app, cmd *cobra.Command, args []string) error {
			sess, err := a.requireSession()
			if err != nil {
				return err
			}
			user, err := a.auth.Rename(sess, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Username changed to %s\n", user.Name)
			return nil
		}),
	}

	del := &cobra.Command{
		Use:   "delete",
		Short: "Delete your account and sign out",
		Long: `Delete the signed-in account and forget it on this device.

Tasks are kept unless --purge-tasks is given.`,
		Args: cobra.NoArgs,
		RunE: withApp(func(a *app, cmd *cobra.Command, args []string) error {
			sess, err := a.requireSession()
			if err != nil {
				return err
			}
			purge, _ := cmd.Flags().GetBool("purge-tasks")
			yes, _ := cmd.Flags().GetBool("yes")
			if !yes && !newPrompter(cmd).confirm(fmt.Sprintf("Delete account %s?", sess.Email)) {
				fmt.Fprintln(cmd.OutOrStdout(), "Cancelled")
				return nil
			}
			if err := a.auth.DeleteAccount(sess, purge); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Account deleted")
			return nil
		}),
	}
	del.Flags().Bool("purge-tasks", false, "Also delete every task you own")
	del.Flags().BoolP("yes", "y", false, "Skip confirmation")

	cmd.AddCommand(rename, del)
	return cmd
}

// sessionErr downgrades a partially persisted session to a warning
func sessionErr(cmd *cobra.Command, err error) error {
	if errors.Is(err, session.ErrIncompleteSession) {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %v. You may need to sign in again next time.\n", err)
		return nil
	}
	return err
}
