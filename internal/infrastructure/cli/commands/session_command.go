package commands

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/doeshing/sdkassist/internal/app"
)

// NewSessionCommand creates the interactive session command.
func NewSessionCommand(container *app.Container) *cobra.Command {
	var description string

	cmd := &cobra.Command{
		Use:   "session",
		Short: "Start a tracked shell session",
		Long: "Runs an interactive loop that executes each entered command, " +
			"classifies failures, looks up package documentation, and asks the " +
			"configured analysis backends for help. Type 'exit' to close the " +
			"session and write the tutorial.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSession(cmd, container, description)
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "Session description used as the tutorial title")
	return cmd
}

func runSession(cmd *cobra.Command, container *app.Container, description string) error {
	svc := container.SessionService
	if svc == nil {
		return errors.New(ErrSessionUnavailable)
	}

	out := cmd.OutOrStdout()
	sess, err := svc.Start(description)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Session %s started. Type 'exit' to finish.\n", sess.ID)

	scanner := bufio.NewScanner(cmd.InOrStdin())
	for {
		fmt.Fprint(out, "sdkassist> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			break
		}

		entry, err := svc.Record(cmd.Context(), line)
		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
			continue
		}
		renderEntry(out, entry)

		if freq := svc.Frequency(line); freq.Count > 2 {
			fmt.Fprintf(out, "(you have run this command %d times this session)\n", freq.Count)
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	report, err := svc.Close(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Session closed: %d commands, %d errors.\n",
		len(report.Session.Entries), len(report.Session.Errors))
	if report.TutorialPath != "" {
		fmt.Fprintf(out, "Tutorial written to %s\n", report.TutorialPath)
	}
	for _, url := range report.IssueURLs {
		fmt.Fprintf(out, "Issue filed: %s\n", url)
	}
	return nil
}
