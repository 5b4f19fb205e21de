package main

import (
	"context"
	"finder/internal/export"
	"finder/pkg/logger"
	"fmt"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func printCounts(title string, counts map[string]int) {
	statuses := make([]string, 0, len(counts))
	for s := range counts {
		statuses = append(statuses, s)
	}
	sort.Slice(statuses, func(i, j int) bool {
		if counts[statuses[i]] != counts[statuses[j]] {
			return counts[statuses[i]] > counts[statuses[j]]
		}

		return statuses[i] < statuses[j]
	})

	fmt.Println(title) //nolint: forbidigo
	for _, s := range statuses {
		fmt.Printf("  %-20s %d\n", s, counts[s]) //nolint: forbidigo
	}
}

// filterExpiredCommand keeps the rows of an exported leads CSV whose website
// is gone for good (4xx, no DNS, dead domain, TLS failure).
func filterExpiredCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "filter-expired <leads.csv>",
		Short: "Extracts the leads with expired or missing websites from an exported CSV",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			ctx := context.Background()
			output, _ := cmd.Flags().GetString("output")

			path, stats, err := export.FilterExpiredFile(ctx, args[0], output)
			if err != nil {
				logger.Fatal(ctx, "could not filter expired websites", zap.Error(err))
			}

			printCounts(fmt.Sprintf("statuses of %d rows read:", stats.Read), stats.Before)
			printCounts(fmt.Sprintf("statuses of %d rows kept:", stats.Kept), stats.After)

			if len(stats.Samples) > 0 {
				fmt.Println("samples:") //nolint: forbidigo
				for _, row := range stats.Samples {
					fmt.Printf("  %s\n", strings.Join(row, " | ")) //nolint: forbidigo
				}
			}

			fmt.Fprintf(color.Output, "%s %s\n", color.GreenString("wrote"), path) //nolint: errcheck
		},
	}

	cmd.Flags().StringP("output", "o", "", "Output CSV, defaults to <input>_404_expired.csv")

	return cmd
}
