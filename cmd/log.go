package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/PolarWolf314/shroud/internal/audit"
	"github.com/PolarWolf314/shroud/internal/ui"
	"github.com/PolarWolf314/shroud/internal/workflows"

	"github.com/spf13/cobra"
)

var (
	logLimit     int
	logReverse   bool
	logOperation string
	logJSON      bool
)

func init() {
	logCmd.Flags().IntVarP(&logLimit, "number", "n", 0, "limit number of entries shown")
	logCmd.Flags().BoolVar(&logReverse, "reverse", false, "show most recent entries first")
	logCmd.Flags().StringVar(&logOperation, "operation", "", "filter by operation type (comma-separated)")
	logCmd.Flags().BoolVar(&logJSON, "json", false, "output as JSON array")
}

// resetLogCommandState resets the log command's global state for testing.
func resetLogCommandState() {
	logLimit = 0
	logReverse = false
	logOperation = ""
	logJSON = false
}

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "View the audit log",
	Long: `Displays the audit log of keygen, unlock, lock, run, encrypt and decrypt
operations, read from audit_log (by default shroud-audit.jsonl beside the
key pair).

Examples:
  shroud log                        # View full log
  shroud log -n 10                  # Last 10 entries
  shroud log --reverse              # Most recent first
  shroud log --operation run,lock   # Filter by operation
  shroud log --json                 # JSON output`,
	Args: cobra.NoArgs,
	RunE: runLog,
}

func runLog(cmd *cobra.Command, args []string) error {
	Logger.Infof("Starting log command")

	result, err := workflows.Log(context.Background(), workflows.LogOptions{
		Environment: env,
		Limit:       logLimit,
		Reverse:     logReverse,
		Operations:  logOperation,
	})
	if err != nil {
		fmt.Println(ui.Failed("Failed to read audit log %s: %s", ui.Path.Sprint(env.Config.AuditPath()), err.Error()))
		return reported
	}

	Logger.Debugf("Parsed %d entries from audit log, %d after filtering", result.Total, len(result.Entries))

	if len(result.Entries) == 0 {
		if result.Total == 0 {
			fmt.Println("No audit log entries found.")
		} else {
			fmt.Println("No audit log entries found matching the filters.")
		}
		return nil
	}

	if logJSON {
		data, err := json.MarshalIndent(result.Entries, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal entries to JSON: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	for _, e := range result.Entries {
		status := ui.Success.Sprint("ok ")
		if e.Error != "" {
			status = ui.Error.Sprint("err")
		}
		fmt.Printf("%-19s  %s  %-8s  %s\n", formatDateTime(e.Timestamp), status, e.Operation, workflows.FormatDetails(e))
	}
	return nil
}

// formatDateTime shows an entry's timestamp in local time, or as written if
// it does not parse.
func formatDateTime(ts string) string {
	t, err := time.Parse(audit.TimeFormat, ts)
	if err != nil {
		return ts
	}
	return t.Local().Format("2006-01-02 15:04:05")
}
