package crawler

import (
	"time"

	"sinacrawler/pkg/models"
	"sinacrawler/pkg/sina"
)

// Cleaner converts post HTML to plain text
type Cleaner interface {
	Clean(text string) string
}

// Extract builds one record per card that has an author id and summarizes
// the page's date range. Cards without an author are skipped and counted.
// Records with unparseable dates are still returned but do not move the range.
func Extract(cards []sina.Card, cleaner Cleaner, now time.Time) ([]models.Record, PageSummary, int) {
	records := make([]models.Record, 0, len(cards))
	var summary PageSummary
	skipped := 0

	for _, card := range cards {
		m := card.Mblog
		if m == nil || m.User == nil || m.User.ID == "" || m.User.ID == "0" {
			skipped++
			continue
		}

		record := buildRecord(m, cleaner)
		records = append(records, record)

		if record.CreatedAt == nil {
			continue
		}
		date, ok := NormalizeDate(*record.CreatedAt, now)
		if !ok {
			continue
		}
		if summary.Newest == nil || *summary.Newest < date {
			summary.Newest = cloneString(&date)
		}
		if summary.Oldest == nil || *summary.Oldest > date {
			summary.Oldest = cloneString(&date)
		}
	}

	return records, summary, skipped
}

func buildRecord(m *sina.Mblog, cleaner Cleaner) models.Record {
	var cleaned *string
	if m.Text != nil {
		c := cleaner.Clean(*m.Text)
		cleaned = &c
	}

	images := make([]string, 0, len(m.Pics))
	for _, pic := range m.Pics {
		if pic.URL != nil {
			images = append(images, *pic.URL)
		}
	}

	var video *string
	if m.PageInfo != nil {
		video = m.PageInfo.PageURL
	}

	var createdAt *string
	if m.CreatedAt != "" {
		createdAt = cloneString(&m.CreatedAt)
	}

	return models.Record{
		UserID:          string(m.User.ID),
		IsContainedHTML: !equalText(m.Text, cleaned),
		OriginalContent: m.Text,
		CleanedContent:  cleaned,
		CommentCount:    m.CommentsCount,
		RepostCount:     m.RepostsCount,
		FavoriteCount:   m.AttitudesCount,
		CollectCount:    m.PendingCount,
		StatusID:        m.Bid,
		Images:          images,
		Video:           video,
		CreatedAt:       createdAt,
		IsNeedOCR:       cleaned == nil || *cleaned == "",
		IsRepost:        m.IsRepost(),
	}
}

func equalText(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
