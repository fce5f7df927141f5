// Package crawler implements incremental timeline harvesting for one account.
//
// A run moves through three states:
//
//	FETCHING_CONTAINER_ID -> FETCHING_PAGE -> (FETCHING_PAGE | STOPPED)
//
// The account's checkpoint decides where a run starts and when it stops:
//   - continuation mode resumes after the stored page count and runs until
//     the feed is exhausted, persisting the checkpoint after every page
//   - update mode starts from page 1 and stops at the first page holding a
//     post older than the newest date seen by earlier runs
//
// Session is an immutable value. Decide applies the stop rules to one page
// summary and returns the next Session together with what to do about it, so
// the rules are testable without a fetch loop. Crawler wires the loop to a
// Fetcher, a checkpoint.Repository, the run log and the exporter.
package crawler
