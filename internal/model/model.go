package model

import (
	"encoding/json"
	"fmt"
	"time"
)

type Kind string

const (
	KindPost    Kind = "post"
	KindComment Kind = "comment"
	KindBoard   Kind = "board"
	KindProfile Kind = "profile"
)

// Direction is a viewer's vote on an item.
type Direction int8

const (
	Down Direction = -1
	None Direction = 0
	Up   Direction = 1
)

func (d Direction) Valid() bool {
	return d >= Down && d <= Up
}

// ViewerID identifies who is looking at a page. The zero value is an
// anonymous viewer.
type ViewerID int64

const Anonymous ViewerID = 0

func (v ViewerID) IsAnonymous() bool {
	return v == Anonymous
}

// Item is a post, comment, board or profile entry. Content holds the
// kind-specific payload; Children is only populated for tree nodes, and
// comments always encode it, as [] when no replies were loaded.
type Item struct {
	ID              int64     `json:"id"`
	Kind            Kind      `json:"kind"`
	ParentID        *int64    `json:"parent_id,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	Score           int       `json:"score"`
	AuthorID        int64     `json:"author_id,omitempty"`
	AuthorName      string    `json:"author_name,omitempty"`
	Deleted         bool      `json:"deleted,omitempty"`
	Content         Content   `json:"content"`
	Children        []Item    `json:"children,omitempty"`
	Vote            Direction `json:"vote"`
	HasMoreChildren bool      `json:"has_more_children"`
}

// Redact blanks content and author fields of a soft-deleted item. Identity,
// position and children are kept so the tree stays intact.
func (it Item) Redact() Item {
	it.Deleted = true
	it.AuthorID = 0
	it.AuthorName = ""
	if it.Content != nil {
		it.Content = it.Content.redacted()
	}
	return it
}

func (it Item) MarshalJSON() ([]byte, error) {
	type alias Item
	aux := struct {
		alias
		Children *[]Item `json:"children,omitempty"`
	}{alias: alias(it)}
	if it.Kind == KindComment || len(it.Children) > 0 {
		children := it.Children
		if children == nil {
			children = []Item{}
		}
		aux.Children = &children
	}
	return json.Marshal(aux)
}

func (it *Item) UnmarshalJSON(data []byte) error {
	type alias Item
	aux := struct {
		*alias
		Content json.RawMessage `json:"content"`
	}{alias: (*alias)(it)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	content, err := decodeContent(it.Kind, aux.Content)
	if err != nil {
		return fmt.Errorf("item %d: %w", it.ID, err)
	}
	it.Content = content
	return nil
}

// Page is one bounded slice of a collection.
type Page struct {
	Items      []Item `json:"items"`
	EndOfItems bool   `json:"end_of_items"`
}

// IDs returns the ids of every item in the page at every depth.
func (p Page) IDs() []int64 {
	var ids []int64
	var walk func(items []Item)
	walk = func(items []Item) {
		for _, it := range items {
			ids = append(ids, it.ID)
			walk(it.Children)
		}
	}
	walk(p.Items)
	return ids
}

// Patch is the result shape of a mutation. Nil fields are left untouched.
type Patch struct {
	ID      int64      `json:"id"`
	Score   *int       `json:"score,omitempty"`
	Vote    *Direction `json:"vote,omitempty"`
	Deleted *bool      `json:"deleted,omitempty"`
}

func (p Patch) Apply(it Item) Item {
	if p.Score != nil {
		it.Score = *p.Score
	}
	if p.Vote != nil {
		it.Vote = *p.Vote
	}
	if p.Deleted != nil && *p.Deleted {
		it = it.Redact()
	}
	return it
}

type Board struct {
	ID          int64
	Slug        string
	Title       string
	Description string
	CreatedAt   time.Time
}

type Account struct {
	ID          int64
	DisplayName string
	Bio         string
	Karma       int
	CreatedAt   time.Time
}

type AccountKey struct {
	ID        int64
	AccountID int64
	Alg       string
	PublicKey string
	CreatedAt time.Time
	RevokedAt *time.Time
}

type Challenge struct {
	Challenge string
	Alg       string
	ExpiresAt time.Time
}

type Token struct {
	Token     string
	AccountID *int64
	KeyID     int64
	ExpiresAt time.Time
}
