// Package cli wires the cobra command tree.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/doeshing/sdkassist/internal/app"
	"github.com/doeshing/sdkassist/internal/infrastructure/cli/commands"
)

// Options holds CLI-level configuration.
type Options struct {
	Verbose bool
}

// NewRootCmd wires the cobra root command.
func NewRootCmd(ctx context.Context, opts Options) (*cobra.Command, error) {
	container, err := app.BuildContainer(ctx, opts.Verbose)
	if err != nil {
		return nil, err
	}

	sessionCmd := commands.NewSessionCommand(container)

	root := &cobra.Command{
		Use:   "sdkassist",
		Short: "sdkassist - SDK testing session assistant",
		Long: "sdkassist wraps a shell session, classifies command errors, looks up " +
			"package documentation, and asks multiple AI backends to explain what " +
			"went wrong.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			sessionCmd.SetArgs(args)
			return sessionCmd.ExecuteContext(cmd.Context())
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(sessionCmd)
	root.AddCommand(commands.NewAnalyzeCommand(container))
	root.AddCommand(commands.NewDocsCommand(container))
	root.AddCommand(commands.NewCacheCommand(container))
	root.AddCommand(commands.NewHistoryCommand(container))
	root.AddCommand(commands.NewVersionCommand())
	return root, nil
}
