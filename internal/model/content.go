package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Content is the kind-specific payload of an Item. The set of
// implementations is closed.
type Content interface {
	Kind() Kind
	redacted() Content
}

type PostContent struct {
	Title     string `json:"title"`
	URL       string `json:"url,omitempty"`
	Body      string `json:"body,omitempty"`
	BoardSlug string `json:"board,omitempty"`
}

func (PostContent) Kind() Kind { return KindPost }

func (c PostContent) redacted() Content {
	return PostContent{BoardSlug: c.BoardSlug}
}

type CommentContent struct {
	Body   string `json:"body"`
	PostID int64  `json:"post_id"`
}

func (CommentContent) Kind() Kind { return KindComment }

func (c CommentContent) redacted() Content {
	return CommentContent{PostID: c.PostID}
}

type BoardContent struct {
	Slug        string `json:"slug"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

func (BoardContent) Kind() Kind { return KindBoard }

func (c BoardContent) redacted() Content {
	return BoardContent{Slug: c.Slug}
}

type ProfileContent struct {
	DisplayName string `json:"display_name"`
	Bio         string `json:"bio,omitempty"`
	Karma       int    `json:"karma"`
}

func (ProfileContent) Kind() Kind { return KindProfile }

func (ProfileContent) redacted() Content {
	return ProfileContent{}
}

func decodeContent(kind Kind, raw json.RawMessage) (Content, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var (
		content Content
		err     error
	)
	switch kind {
	case KindPost:
		var c PostContent
		err = json.Unmarshal(raw, &c)
		content = c
	case KindComment:
		var c CommentContent
		err = json.Unmarshal(raw, &c)
		content = c
	case KindBoard:
		var c BoardContent
		err = json.Unmarshal(raw, &c)
		content = c
	case KindProfile:
		var c ProfileContent
		err = json.Unmarshal(raw, &c)
		content = c
	default:
		return nil, fmt.Errorf("unknown item kind %q", kind)
	}
	if err != nil {
		return nil, err
	}
	return content, nil
}

// Summary renders a one-line description of the item for terminal output.
func (it Item) Summary() string {
	if it.Deleted {
		return "[deleted]"
	}
	switch c := it.Content.(type) {
	case PostContent:
		if c.URL != "" {
			return fmt.Sprintf("%s (%s)", c.Title, c.URL)
		}
		return c.Title
	case CommentContent:
		return firstLine(c.Body, 100)
	case BoardContent:
		return fmt.Sprintf("/%s %s", c.Slug, c.Title)
	case ProfileContent:
		return fmt.Sprintf("%s (%d karma)", c.DisplayName, c.Karma)
	}
	return ""
}

func firstLine(s string, max int) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	if utf8.RuneCountInString(s) > max {
		return string([]rune(s)[:max-3]) + "..."
	}
	return s
}
