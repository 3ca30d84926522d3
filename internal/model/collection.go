package model

import (
	"strings"
	"time"
)

type CollectionKind string

const (
	CollectionBoard   CollectionKind = "board"
	CollectionThread  CollectionKind = "thread"
	CollectionProfile CollectionKind = "profile"
	CollectionBoards  CollectionKind = "boards"
)

// CollectionRef names the set of siblings a page is cut from. ID is the post
// for threads and the account for profiles; Slug names a board.
type CollectionRef struct {
	Kind CollectionKind
	ID   int64
	Slug string
}

func (c CollectionRef) Tree() bool {
	return c.Kind == CollectionThread
}

// Votable reports whether items of the collection carry viewer votes.
func (c CollectionRef) Votable() bool {
	return c.Kind != CollectionBoards
}

type SortKey string

const (
	SortNew SortKey = "new"
	SortTop SortKey = "top"

	DefaultSort = SortNew
)

// ParseSort never fails: anything unrecognised falls back to DefaultSort so
// that old links keep working.
func ParseSort(s string) SortKey {
	switch SortKey(strings.ToLower(strings.TrimSpace(s))) {
	case SortNew:
		return SortNew
	case SortTop:
		return SortTop
	}
	return DefaultSort
}

// Keyset reports whether the sort order has a stable monotonic key usable
// as an id cursor.
func (s SortKey) Keyset() bool {
	return s == SortNew
}

type Window string

const (
	WindowHour  Window = "hour"
	WindowDay   Window = "day"
	WindowWeek  Window = "week"
	WindowMonth Window = "month"
	WindowYear  Window = "year"
	WindowAll   Window = "all"
)

var windowDurations = map[Window]time.Duration{
	WindowHour:  time.Hour,
	WindowDay:   24 * time.Hour,
	WindowWeek:  7 * 24 * time.Hour,
	WindowMonth: 30 * 24 * time.Hour,
	WindowYear:  365 * 24 * time.Hour,
}

func ParseWindow(s string) Window {
	w := Window(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := windowDurations[w]; ok {
		return w
	}
	return WindowAll
}

// Duration is zero for WindowAll.
func (w Window) Duration() time.Duration {
	return windowDurations[w]
}

type ContentFilter string

const (
	ContentAll      ContentFilter = "all"
	ContentPosts    ContentFilter = "posts"
	ContentComments ContentFilter = "comments"
)

func ParseContentFilter(s string) ContentFilter {
	switch ContentFilter(strings.ToLower(strings.TrimSpace(s))) {
	case ContentPosts:
		return ContentPosts
	case ContentComments:
		return ContentComments
	}
	return ContentAll
}
