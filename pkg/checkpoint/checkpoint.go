package checkpoint

import (
	"encoding/json"
	"fmt"
)

// Checkpoint is the durable progress of one account.
// Dates are normalized YYYY-MM-DD strings; nil means never seen.
type Checkpoint struct {
	// OldestCreateAt is the oldest date seen by the latest live-updating run
	OldestCreateAt *string `json:"oldest_create_at"`
	// NewestCreateAt is the newest date ever seen. It never decreases.
	NewestCreateAt *string `json:"newest_create_at"`
	// CrawledPages is the resume cursor for continuation runs
	CrawledPages int `json:"crawled_pages"`
}

// Clone returns a deep copy
func (c Checkpoint) Clone() Checkpoint {
	return Checkpoint{
		OldestCreateAt: cloneString(c.OldestCreateAt),
		NewestCreateAt: cloneString(c.NewestCreateAt),
		CrawledPages:   c.CrawledPages,
	}
}

// Equal compares by value
func (c Checkpoint) Equal(other Checkpoint) bool {
	return equalString(c.OldestCreateAt, other.OldestCreateAt) &&
		equalString(c.NewestCreateAt, other.NewestCreateAt) &&
		c.CrawledPages == other.CrawledPages
}

// MarshalIndent renders the checkpoint for humans
func (c Checkpoint) MarshalIndent() string {
	data, err := json.MarshalIndent(c, "", "    ")
	if err != nil {
		return fmt.Sprintf("%+v", c)
	}
	return string(data)
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func equalString(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
