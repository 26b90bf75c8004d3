package session

import (
	"regexp"
	"strings"
)

var (
	pipInstallRe = regexp.MustCompile(`^\s*(?:sudo\s+)?(?:python3?\s+-m\s+)?pip3?\s+install\s+(.+)`)
	importRe     = regexp.MustCompile(`(?:^|[;"'])\s*(?:import|from)\s+([A-Za-z_][A-Za-z0-9_]*)`)
	// Requirement specifiers and extras, e.g. requests[socks]>=2.28.
	specifierRe = regexp.MustCompile(`[\[><=!~;].*$`)
)

// extractPackages pulls package names out of a shell command so the registry
// lookup knows what to fetch. It understands pip install argument lists and
// inline python imports; everything else yields no packages.
func extractPackages(command string) []string {
	seen := make(map[string]bool)
	var packages []string
	add := func(name string) {
		name = specifierRe.ReplaceAllString(strings.TrimSpace(name), "")
		name = strings.TrimSpace(name)
		if name == "" || seen[name] {
			return
		}
		seen[name] = true
		packages = append(packages, name)
	}

	if m := pipInstallRe.FindStringSubmatch(command); m != nil {
		for _, arg := range strings.Fields(m[1]) {
			if arg == "&&" || arg == ";" || arg == "|" || arg == "<" || arg == ">" {
				break
			}
			if strings.HasPrefix(arg, "-") {
				// Flags like -U or --upgrade, and their values are
				// indistinguishable from names only for -r/-c files,
				// which we skip below anyway.
				continue
			}
			if strings.ContainsAny(arg, "/\\") || strings.HasSuffix(arg, ".txt") {
				continue
			}
			add(arg)
		}
	}

	if strings.Contains(command, "python") || strings.HasPrefix(strings.TrimSpace(command), "import ") || strings.HasPrefix(strings.TrimSpace(command), "from ") {
		for _, m := range importRe.FindAllStringSubmatch(command, -1) {
			add(m[1])
		}
	}

	return packages
}
