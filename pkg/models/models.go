// Package models holds the records produced by a crawl.
package models

import "encoding/json"

// Record is one extracted feed item. Pointer and raw fields serialize as
// null when the API omitted them.
type Record struct {
	UserID          string          `json:"user_id"`
	IsContainedHTML bool            `json:"is_contained_html"`
	OriginalContent *string         `json:"original_content"`
	CleanedContent  *string         `json:"cleaned_content"`
	CommentCount    json.RawMessage `json:"comment_count"`
	RepostCount     json.RawMessage `json:"repost_count"`
	FavoriteCount   json.RawMessage `json:"favorite_count"`
	CollectCount    json.RawMessage `json:"collect_count"`
	StatusID        *string         `json:"status_id"`
	Images          []string        `json:"images"`
	Video           *string         `json:"video"`
	CreatedAt       *string         `json:"created_at"`
	IsNeedOCR       bool            `json:"is_need_ocr"`
	IsRepost        bool            `json:"is_repost"`
}

// CSVColumns is the fixed export column order. Each entry is a Record JSON key.
var CSVColumns = []string{
	"user_id",
	"created_at",
	"status_id",
	"is_contained_html",
	"cleaned_content",
	"original_content",
	"comment_count",
	"repost_count",
	"favorite_count",
	"collect_count",
	"images",
	"video",
	"is_need_ocr",
	"is_repost",
}

// MissingValue stands in for absent fields in CSV exports
const MissingValue = "-"
