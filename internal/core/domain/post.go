package domain

import "time"

const ContentMaxLen = 5000

// Post is a single message inside a thread. Content is plain text.
type Post struct {
	ID        string    `json:"id"`
	ThreadID  string    `json:"thread_id"`
	AuthorID  string    `json:"author_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// PostView is a post with its author's username resolved.
type PostView struct {
	Post
	AuthorUsername string
}

// PostAuthor is the nested author object of a PostPayload.
type PostAuthor struct {
	Username string `json:"username"`
}

// PostPayload is the flattened post pushed to live viewers and returned to
// the submitter. Receivers need no further lookups.
type PostPayload struct {
	ID        string     `json:"id"`
	ThreadID  string     `json:"threadId"`
	Content   string     `json:"content"`
	Author    PostAuthor `json:"author"`
	CreatedAt time.Time  `json:"createdAt"`
}

// NewPostPayload flattens a stored post together with its author's username.
func NewPostPayload(p *Post, authorUsername string) PostPayload {
	return PostPayload{
		ID:        p.ID,
		ThreadID:  p.ThreadID,
		Content:   p.Content,
		Author:    PostAuthor{Username: authorUsername},
		CreatedAt: p.CreatedAt.UTC(),
	}
}
