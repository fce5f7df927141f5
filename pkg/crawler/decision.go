package crawler

// PageSummary holds the normalized date range of one page's records.
// A nil bound means no record on the page had a parseable date.
type PageSummary struct {
	Oldest *string
	Newest *string
}

// Decision tells the controller what to do after a page
type Decision struct {
	// Persist requests a checkpoint write
	Persist bool
	// Stop ends the run after this page
	Stop bool
}

// Decide applies the checkpoint rules, in order, to the page just extracted:
//
//  1. with live updates, oldest and crawled_pages follow the current page
//  2. on the first page of a run, newest advances to the page's newest date
//  3. when the page reaches below the stop date, crawled_pages grows by the
//     current page number and the run stops
//
// Dates compare lexicographically; NormalizeDate keeps them sortable.
func Decide(s Session, page PageSummary) (Session, Decision) {
	next := s.clone()
	var d Decision

	if next.LiveCheckpointUpdates {
		next.Checkpoint.OldestCreateAt = cloneString(page.Oldest)
		next.Checkpoint.CrawledPages = next.CurrentPage
		d.Persist = true
	}

	if next.CurrentPage < 2 && page.Newest != nil {
		newest := *page.Newest
		if current := next.Checkpoint.NewestCreateAt; current != nil && *current > newest {
			newest = *current
		}
		next.Checkpoint.NewestCreateAt = &newest
	}

	if next.StopDate != nil && page.Oldest != nil && *page.Oldest < *next.StopDate {
		next.Checkpoint.CrawledPages += next.CurrentPage
		d.Persist = true
		d.Stop = true
	}

	return next, d
}
