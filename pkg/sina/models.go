package sina

import (
	"encoding/json"
	"fmt"

	errs "sinacrawler/pkg/errors"
)

// IndexResponse is the profile lookup response
type IndexResponse struct {
	Data struct {
		TabsInfo struct {
			Tabs []Tab `json:"tabs"`
		} `json:"tabsInfo"`
	} `json:"data"`
}

// Tab is one profile tab; the timeline tab has TabType "weibo"
type Tab struct {
	TabType     string `json:"tab_type"`
	ContainerID ID     `json:"containerid"`
}

// PageResponse is one feed page
type PageResponse struct {
	Data struct {
		Cards []Card `json:"cards"`
	} `json:"data"`
}

// Card wraps one feed item
type Card struct {
	Mblog *Mblog `json:"mblog"`
}

// Mblog is a single post. Count fields are kept raw: the API sometimes
// reports them as strings such as "100万+".
type Mblog struct {
	User            *User           `json:"user"`
	Text            *string         `json:"text"`
	CommentsCount   json.RawMessage `json:"comments_count"`
	RepostsCount    json.RawMessage `json:"reposts_count"`
	AttitudesCount  json.RawMessage `json:"attitudes_count"`
	PendingCount    json.RawMessage `json:"pending_approval_count"`
	Bid             *string         `json:"bid"`
	Pics            []Pic           `json:"pics"`
	PageInfo        *PageInfo       `json:"page_info"`
	CreatedAt       string          `json:"created_at"`
	RetweetedStatus json.RawMessage `json:"retweeted_status"`
}

// User is the post author
type User struct {
	ID ID `json:"id"`
}

// ID is an identifier the API emits either as a JSON number or a string
type ID string

// UnmarshalJSON accepts numbers, strings and null
func (id *ID) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*id = ID(n.String())
	return nil
}

// Pic is an attached image
type Pic struct {
	URL *string `json:"url"`
}

// PageInfo carries the attached media page, typically a video
type PageInfo struct {
	PageURL *string `json:"page_url"`
}

// IsRepost reports whether the post wraps a reposted status
func (m *Mblog) IsRepost() bool {
	return len(m.RetweetedStatus) > 0
}

// ParseContainerID extracts the timeline container id from an index response.
// ok is false when the profile has no timeline tab.
func ParseContainerID(body []byte) (string, bool, error) {
	var resp IndexResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", false, &errs.Error{
			Type:    errs.ErrorTypeParsing,
			Message: fmt.Sprintf("failed to parse index response: %v", err),
		}
	}

	for _, tab := range resp.Data.TabsInfo.Tabs {
		if tab.TabType == FeedTabType && tab.ContainerID != "" {
			return string(tab.ContainerID), true, nil
		}
	}
	return "", false, nil
}

// ParsePage decodes a feed page body
func ParsePage(body []byte) (*PageResponse, error) {
	var resp PageResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		preview := string(body)
		if len(preview) > 200 {
			preview = preview[:200] + "..."
		}
		return nil, &errs.Error{
			Type:    errs.ErrorTypeParsing,
			Message: fmt.Sprintf("failed to parse feed page: %v (body: %s)", err, preview),
		}
	}
	return &resp, nil
}
