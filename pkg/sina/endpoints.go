package sina

import (
	"net/url"
	"strconv"
	"strings"
)

const (
	// BaseURL is the mobile Weibo host
	BaseURL = "https://m.weibo.cn"

	// IndexEndpoint serves both the profile index and the feed pages
	IndexEndpoint = "/api/container/getIndex"

	// FeedTabType marks the profile tab that carries the timeline
	FeedTabType = "weibo"
)

// Endpoints builds feed API URLs against a base host
type Endpoints struct {
	baseURL string
}

// NewEndpoints creates URL builders for baseURL, falling back to BaseURL when empty
func NewEndpoints(baseURL string) Endpoints {
	if baseURL == "" {
		baseURL = BaseURL
	}
	return Endpoints{baseURL: strings.TrimRight(baseURL, "/")}
}

// IndexURL is the profile lookup used to resolve the feed container id
func (e Endpoints) IndexURL(uid string) string {
	params := url.Values{}
	params.Set("type", "uid")
	params.Set("value", uid)
	return e.baseURL + IndexEndpoint + "?" + params.Encode()
}

// PageURL is the feed page n (1-based) of a container
func (e Endpoints) PageURL(containerID string, page int) string {
	params := url.Values{}
	params.Set("containerid", containerID)
	params.Set("page", strconv.Itoa(page))
	return e.baseURL + IndexEndpoint + "?" + params.Encode()
}

// IsValidUID reports whether uid looks like a numeric Weibo account id
func IsValidUID(uid string) bool {
	if uid == "" || len(uid) > 20 {
		return false
	}
	for _, r := range uid {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
