package domain

import (
	"strings"
	"time"
)

const (
	TitleMinLen   = 3
	TitleMaxLen   = 200
	MaxTags       = 5
	TagsFieldMax  = 100
	RecentThreads = 20
)

// Thread is a discussion topic. UpdatedAt is bumped on every reply and only
// ever moves forward.
type Thread struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	AuthorID  string    `json:"author_id"`
	Tags      []string  `json:"tags"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ThreadSummary is a listing row: the thread, its author's username and the
// number of replies counted at read time.
type ThreadSummary struct {
	Thread
	AuthorUsername string
	ReplyCount     int64
}

// ThreadDetail is a thread with its posts in chronological order.
type ThreadDetail struct {
	Thread
	AuthorUsername string
	Posts          []PostView
}

// ParseTags splits a comma separated tag field, trims each entry, drops
// empty ones and keeps at most MaxTags.
func ParseTags(raw string) []string {
	tags := make([]string, 0, MaxTags)
	for _, part := range strings.Split(raw, ",") {
		tag := strings.TrimSpace(part)
		if tag == "" {
			continue
		}
		tags = append(tags, tag)
		if len(tags) == MaxTags {
			break
		}
	}
	return tags
}
