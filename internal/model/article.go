package model

import "time"

// Article represents a content record stored by the article store.
// Field names match the store's JSON wire format.
type Article struct {
	ID             int         `json:"id"`
	Title          string      `json:"title"`
	Content        string      `json:"content"`
	SourceURL      string      `json:"source_url,omitempty"`
	UpdatedContent *string     `json:"updated_content"`
	References     []Reference `json:"references"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

// Reference is a citation attached to an enhanced article. References are
// produced per enhancement run and fully replaced on each run.
type Reference struct {
	URL     string `json:"url"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}

// IsProcessed reports whether the article already carries enhanced content.
// An article is unprocessed iff updated_content is absent or empty.
func (a *Article) IsProcessed() bool {
	return a.UpdatedContent != nil && *a.UpdatedContent != ""
}

// ArticleUpdate is the partial PUT body accepted by the store. Nil fields
// are omitted and left untouched by the store.
type ArticleUpdate struct {
	Title          *string      `json:"title,omitempty"`
	Content        *string      `json:"content,omitempty"`
	SourceURL      *string      `json:"source_url,omitempty"`
	UpdatedContent *string      `json:"updated_content,omitempty"`
	References     *[]Reference `json:"references,omitempty"`
}
