package workflows

import (
	"context"
	"strconv"
	"strings"

	"github.com/PolarWolf314/shroud/internal/audit"
)

// LogOptions configures the log workflow.
type LogOptions struct {
	Environment

	// Limit keeps only the last Limit entries. Zero keeps all.
	Limit int

	// Reverse lists the most recent entry first.
	Reverse bool

	// Operations is a comma-separated list of operations to keep.
	Operations string
}

// LogResult contains the filtered audit entries.
type LogResult struct {
	Entries []audit.Entry

	// Total is the number of entries before filtering.
	Total int
}

// Log reads the audit trail. A trail that was never written has no entries.
func Log(ctx context.Context, opts LogOptions) (*LogResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := opts.Audit.Entries()
	if err != nil {
		return nil, err
	}
	result := &LogResult{Total: len(entries)}

	ops := make(map[string]bool)
	for _, op := range strings.Split(opts.Operations, ",") {
		if op = strings.TrimSpace(op); op != "" {
			ops[op] = true
		}
	}

	filtered := make([]audit.Entry, 0, len(entries))
	for _, e := range entries {
		if len(ops) > 0 && !ops[e.Operation] {
			continue
		}
		filtered = append(filtered, e)
	}

	if opts.Limit > 0 && len(filtered) > opts.Limit {
		filtered = filtered[len(filtered)-opts.Limit:]
	}
	if opts.Reverse {
		for i, j := 0, len(filtered)-1; i < j; i, j = i+1, j-1 {
			filtered[i], filtered[j] = filtered[j], filtered[i]
		}
	}

	result.Entries = filtered
	return result, nil
}

// FormatDetails summarizes an entry for one line of log output.
func FormatDetails(e audit.Entry) string {
	var parts []string
	switch {
	case e.Program != "" && e.Exit != nil:
		parts = append(parts, e.Program+" exited "+strconv.Itoa(*e.Exit))
	case e.Program != "":
		parts = append(parts, e.Program)
	}
	if n := len(e.Files); n == 1 {
		parts = append(parts, e.Files[0])
	} else if n > 1 {
		parts = append(parts, strconv.Itoa(n)+" files")
	}
	if e.Error != "" {
		parts = append(parts, "error: "+e.Error)
	}
	return strings.Join(parts, ", ")
}
