package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/doeshing/sdkassist/internal/domain"
)

func renderEntry(out io.Writer, entry domain.SessionEntry) {
	if entry.Result.Output != "" {
		fmt.Fprint(out, ensureNewline(entry.Result.Output))
	}
	if entry.Result.ErrorOutput != "" {
		fmt.Fprint(out, ensureNewline(entry.Result.ErrorOutput))
	}
	if entry.Result.Failed() {
		fmt.Fprintf(out, "\ncommand failed (exit code %d)\n", entry.Result.ExitCode)
	}
	if entry.Analysis.Merged != "" {
		fmt.Fprintf(out, "\n%s\n", entry.Analysis.Merged)
	}
}

func renderIntel(out io.Writer, intel domain.PackageIntel) {
	source := "live lookup"
	if intel.FromCache {
		source = "cache"
	}
	fmt.Fprintf(out, "Package: %s (%s)\n", intel.Subject, source)
	for name, result := range intel.Sources {
		if result.Absent {
			fmt.Fprintf(out, "  %s: unavailable (%s)\n", name, result.Reason)
			continue
		}
		fmt.Fprintf(out, "  %s: %d bytes\n", name, len(result.Data))
	}
}

func ensureNewline(s string) string {
	if strings.HasSuffix(s, "\n") {
		return s
	}
	return s + "\n"
}
