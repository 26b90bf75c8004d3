package commands

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/doeshing/sdkassist/internal/app"
)

// NewDocsCommand creates the docs lookup command.
func NewDocsCommand(container *app.Container) *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:   "docs <package>",
		Short: "Look up package information across PyPI, GitHub and Read the Docs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if container.Gatherer == nil {
				return errors.New(ErrGathererUnavailable)
			}
			intel, err := container.Gatherer.Gather(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			renderIntel(out, intel)
			if !raw {
				return nil
			}
			for name, result := range intel.Sources {
				if result.Absent {
					continue
				}
				var pretty bytes.Buffer
				if err := json.Indent(&pretty, result.Data, "", "  "); err != nil {
					continue
				}
				fmt.Fprintf(out, "\n--- %s ---\n%s\n", name, pretty.String())
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&raw, "raw", false, "Print the raw payload from each source")
	return cmd
}
