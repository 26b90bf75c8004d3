package commands

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/doeshing/sdkassist/internal/app"
)

// NewAnalyzeCommand creates the one-shot analyze command. It runs a single
// command through the full session pipeline without starting an interactive
// session.
func NewAnalyzeCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "analyze <command...>",
		Short: "Run one command and analyze the result",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := container.SessionService
			if svc == nil {
				return errors.New(ErrSessionUnavailable)
			}
			entry, err := svc.RunOnce(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			renderEntry(cmd.OutOrStdout(), entry)
			return nil
		},
	}
}
