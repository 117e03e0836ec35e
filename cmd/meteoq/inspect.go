package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/skysweep/meteoq/internal/domain"
)

// newInspectCmd builds the integrity checker for saved dataset files. It
// verifies the structural guarantees the fetch path promises: metadata
// completeness, row key uniformity, and strictly increasing time keys.
func newInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <file>",
		Short: "Check a saved dataset file for structural problems",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read dataset: %w", err)
			}

			var ds domain.UnifiedDataset
			if err := json.Unmarshal(raw, &ds); err != nil {
				return fmt.Errorf("decode dataset: %w", err)
			}

			var problems []string
			problems = append(problems, checkMetadata(ds.Metadata)...)
			problems = append(problems, checkRecords("hourly", ds.Data.Hourly, domain.HourlyTimeKey)...)
			problems = append(problems, checkRecords("daily", ds.Data.Daily, domain.DailyTimeKey)...)

			if len(problems) > 0 {
				for _, p := range problems {
					fmt.Fprintln(cmd.OutOrStdout(), p)
				}
				return fmt.Errorf("%d problem(s) found", len(problems))
			}

			fmt.Fprintf(cmd.OutOrStdout(), "ok: %d hourly, %d daily records\n", len(ds.Data.Hourly), len(ds.Data.Daily))
			return nil
		},
	}
}

func checkMetadata(md domain.Metadata) []string {
	var problems []string
	if md.RequestID == "" {
		problems = append(problems, "metadata: missing request_id")
	}
	if len(md.Variables) == 0 {
		problems = append(problems, "metadata: no variables listed")
	}
	if md.StartDate == "" || md.EndDate == "" {
		problems = append(problems, "metadata: missing date range")
	}
	return problems
}

// checkRecords verifies each record carries the time key, that every record
// in a block exposes the same field set, and that time keys strictly
// increase.
func checkRecords(block string, records []domain.UnifiedRecord, timeKey string) []string {
	var problems []string
	var wantKeys []string
	prev := ""

	for i, rec := range records {
		t, ok := rec[timeKey].(string)
		if !ok || t == "" {
			problems = append(problems, fmt.Sprintf("%s[%d]: missing %s", block, i, timeKey))
			continue
		}
		if prev != "" && t <= prev {
			problems = append(problems, fmt.Sprintf("%s[%d]: %s %q not after %q", block, i, timeKey, t, prev))
		}
		prev = t

		keys := make([]string, 0, len(rec))
		for k := range rec {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		if wantKeys == nil {
			wantKeys = keys
		} else if !equalKeys(keys, wantKeys) {
			problems = append(problems, fmt.Sprintf("%s[%d]: field set %v differs from first record %v", block, i, keys, wantKeys))
		}
	}
	return problems
}

func equalKeys(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
