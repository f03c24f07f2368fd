// cmd/portal/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"mergington-portal/internal/models"
	"mergington-portal/internal/ui"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type rootFlags struct {
	configPath string
	baseURL    string
	logLevel   string
}

func newRootCommand() *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:           "portal",
		Short:         "Mergington High School activities portal",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "path to a config file (default: configs/config.yaml)")
	root.PersistentFlags().StringVar(&flags.baseURL, "base-url", "", "activities server URL, overrides api.base_url")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "log level, overrides logging.level")

	root.AddCommand(
		newActivitiesCommand(flags),
		newRegisterCommand(flags),
		newSignupCommand(flags),
		newSessionCommand(flags),
	)
	return root
}

func newActivitiesCommand(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "activities",
		Short: "Load the activity list and print the page",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(flags)
			if err != nil {
				return err
			}
			defer app.Close()

			app.controller.Init(cmd.Context())
			return app.doc.Render(cmd.OutOrStdout())
		},
	}
}

func newRegisterCommand(flags *rootFlags) *cobra.Command {
	var email, firstName, lastName, password string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(flags)
			if err != nil {
				return err
			}
			defer app.Close()

			form := app.doc.RegisterForm
			form.Set(ui.FieldEmail, email)
			form.Set(ui.FieldFirstName, firstName)
			form.Set(ui.FieldLastName, lastName)
			form.Set(ui.FieldPassword, password)

			app.controller.SubmitRegistration(cmd.Context())
			return reportStatus(cmd, app.doc.RegisterMessage)
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&firstName, "first-name", "", "first name")
	cmd.Flags().StringVar(&lastName, "last-name", "", "last name")
	cmd.Flags().StringVar(&password, "password", "", "password")
	return cmd
}

func newSignupCommand(flags *rootFlags) *cobra.Command {
	var email, activity string

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Sign up for an activity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(flags)
			if err != nil {
				return err
			}
			defer app.Close()

			app.doc.SignupForm.Set(ui.FieldEmail, email)
			app.doc.SignupForm.Set(ui.FieldActivity, activity)

			app.controller.SubmitSignup(cmd.Context())
			if err := reportStatus(cmd, app.doc.SignupMessage); err != nil {
				return err
			}
			return app.doc.Render(cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&activity, "activity", "", "activity id")
	return cmd
}

func newSessionCommand(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "session",
		Short: "Interactive session; messages hide themselves after a delay",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(flags)
			if err != nil {
				return err
			}
			defer app.Close()

			if app.config.Metrics.Enabled {
				srv := startMonitoringServer(app.config.Metrics.Address, app.zap)
				defer shutdownMonitoringServer(srv, app.zap)
			}

			app.zap.Info("Session started", zap.String("api", app.client.BaseURL()))
			return newSession(app, cmd.InOrStdin(), cmd.OutOrStdout()).Run(cmd.Context())
		},
	}
}

// reportStatus prints the message of area and fails the command on an error
// message, so scripts can check the exit code.
func reportStatus(cmd *cobra.Command, area *ui.StatusArea) error {
	msg := area.Snapshot()
	fmt.Fprintf(cmd.OutOrStdout(), "[%s] %s\n", msg.Kind, msg.Text)
	if msg.Kind != models.StatusSuccess {
		return fmt.Errorf("%s", msg.Text)
	}
	return nil
}
