package ui

import (
	"fmt"

	"sinacrawler/pkg/crawler"
)

// PrintRunSummary prints the end-of-run report: the number of new records,
// the checkpoint as stored and the export file names. It is printed in quiet
// mode too since it is the command's actual output.
func PrintRunSummary(result *crawler.Result) {
	if result.Reason == crawler.ReasonNoContainer {
		printf("%s\n", Yellow(fmt.Sprintf("no timeline found for %s; nothing crawled", result.UID)))
		return
	}

	printf("%s\n", Green("=== crawling finished ==="))
	printf("%s %d\n", Cyan("new records:"), result.RecordsWritten)
	if result.Skipped > 0 {
		printf("%s %d\n", Cyan("skipped items:"), result.Skipped)
	}
	printf("%s %s\n", Cyan("stopped because:"), describeReason(result.Reason))
	printf("%s\n%s\n", Cyan("checkpoint:"), result.Checkpoint.MarshalIndent())
	printf("%s %s\n", Cyan("csv:"), result.CSVFile)
	printf("%s %s\n", Cyan("json:"), result.JSONFile)
}

func describeReason(r crawler.Reason) string {
	switch r {
	case crawler.ReasonFeedExhausted:
		return "reached the end of the timeline"
	case crawler.ReasonCaughtUp:
		return "caught up with the previous run"
	default:
		return string(r)
	}
}
