package probe

import (
	"os"
	"strings"
)

// ParseTeamIDs splits a comma or whitespace separated id list, dropping
// blanks and duplicates.
func ParseTeamIDs(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
	seen := make(map[string]struct{}, len(fields))
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if _, dup := seen[f]; dup {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	return out
}

// ShowHelp prints usage information for the probe tool.
func ShowHelp() {
	os.Stdout.WriteString(`Robonalysis Probe
=================

Requests match context and event standings from a running service and
checks every response for consistency.

Usage:
  probe -teams 139001,139002 [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:9080")
  -teams string
        Comma separated RobotEvents team ids (required)
  -passcode string
        Unlock passcode when the API is gated (default $ROBONALYSIS_PASSCODE)
  -workers int
        Number of concurrent workers (default 4)
  -timeout duration
        HTTP request timeout (default 1m0s)
  -output string
        Write a JSON report to this file
  -verbose
        Log every verified response
  -help
        Show this help message

Exit status is 1 when a request fails or an invariant is violated.
`)
}
