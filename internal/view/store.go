// Package view keeps fetched pages in an id-indexed tree that merges new
// pages without disturbing what is already displayed, and restores it on
// back/forward navigation.
package view

import (
	"fmt"
	"slices"

	"github.com/alphabot-ai/slashboard/internal/model"
)

type Position int

const (
	Append Position = iota
	Prepend
)

type node struct {
	item     model.Item
	children []int64
}

func (n *node) clone() *node {
	c := *n
	c.children = slices.Clone(n.children)
	return &c
}

// Store is an immutable merge store. Every node at every depth is reachable
// by id in O(1); operations return a new Store and share untouched nodes
// with the receiver.
type Store struct {
	order  []int64
	nodes  map[int64]*node
	keyset bool
	end    bool
}

// NewStore returns an empty store. keyset selects how Cursor is derived.
func NewStore(keyset bool) *Store {
	return &Store{nodes: map[int64]*node{}, keyset: keyset}
}

func (s *Store) Len() int         { return len(s.order) }
func (s *Store) EndOfItems() bool { return s.end }
func (s *Store) Offset() int      { return len(s.order) }
func (s *Store) Keyset() bool     { return s.keyset }

// Cursor is the keyset watermark: the smallest top-level id for keyset
// stores, otherwise the id of the last top-level item.
func (s *Store) Cursor() int64 {
	if len(s.order) == 0 {
		return 0
	}
	if !s.keyset {
		return s.order[len(s.order)-1]
	}
	return slices.Min(s.order)
}

// ChildWatermarks returns where the next page of replies under id starts.
func (s *Store) ChildWatermarks(id int64) (cursor int64, offset int) {
	n, ok := s.nodes[id]
	if !ok || len(n.children) == 0 {
		return 0, 0
	}
	if s.keyset {
		return slices.Min(n.children), len(n.children)
	}
	return n.children[len(n.children)-1], len(n.children)
}

func (s *Store) Has(id int64) bool {
	_, ok := s.nodes[id]
	return ok
}

// Get returns the item with its children materialised.
func (s *Store) Get(id int64) (model.Item, bool) {
	if _, ok := s.nodes[id]; !ok {
		return model.Item{}, false
	}
	return s.materialize(id), true
}

// Items materialises the top level in display order.
func (s *Store) Items() []model.Item {
	out := make([]model.Item, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.materialize(id))
	}
	return out
}

func (s *Store) materialize(id int64) model.Item {
	n := s.nodes[id]
	it := n.item
	it.Children = nil
	if len(n.children) > 0 {
		it.Children = make([]model.Item, 0, len(n.children))
		for _, c := range n.children {
			it.Children = append(it.Children, s.materialize(c))
		}
	}
	return it
}

func (s *Store) shallow() *Store {
	return &Store{
		order:  slices.Clone(s.order),
		nodes:  cloneMap(s.nodes),
		keyset: s.keyset,
		end:    s.end,
	}
}

func cloneMap(m map[int64]*node) map[int64]*node {
	out := make(map[int64]*node, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Replace discards the current contents in favour of page.
func (s *Store) Replace(page model.Page) *Store {
	next := &Store{nodes: map[int64]*node{}, keyset: s.keyset, end: page.EndOfItems}
	next.order, _ = next.insertLevel(nil, page.Items, Append)
	return next
}

// Merge adds the items of page that are not present yet. Items already in
// the store keep their state and their children. A page that adds nothing
// can mark the end but never reopens it, so a late duplicate is harmless.
func (s *Store) Merge(page model.Page, pos Position) *Store {
	next := s.shallow()
	var added int
	next.order, added = next.insertLevel(next.order, page.Items, pos)
	if pos == Append {
		next.end = mergeEnd(s.end, page.EndOfItems, added > 0 || len(s.order) == 0)
	}
	return next
}

func mergeEnd(current, incoming, fresh bool) bool {
	if fresh {
		return incoming
	}
	return current || incoming
}

// AppendChildren merges a page of replies under parentID and records
// whether more replies remain. It is a no-op when the parent is unknown.
func (s *Store) AppendChildren(parentID int64, page model.Page, pos Position) *Store {
	if !s.Has(parentID) {
		return s
	}
	next := s.shallow()
	parent := next.nodes[parentID].clone()
	next.nodes[parentID] = parent
	hadChildren := len(parent.children) > 0
	var added int
	parent.children, added = next.insertLevel(parent.children, page.Items, pos)
	end := mergeEnd(!parent.item.HasMoreChildren, page.EndOfItems, added > 0 || !hadChildren)
	parent.item.HasMoreChildren = !end
	return next
}

// Patch applies p to the item with p.ID. Unknown ids are ignored.
func (s *Store) Patch(p model.Patch) *Store {
	n, ok := s.nodes[p.ID]
	if !ok {
		return s
	}
	next := s.shallow()
	c := n.clone()
	c.item = p.Apply(c.item)
	next.nodes[p.ID] = c
	return next
}

// Insert places a new item under its parent. Items without a loaded parent
// go to the top level.
func (s *Store) Insert(item model.Item, pos Position) *Store {
	page := model.Page{Items: []model.Item{item}, EndOfItems: s.end}
	if item.ParentID != nil && s.Has(*item.ParentID) {
		parent := s.nodes[*item.ParentID]
		page.EndOfItems = !parent.item.HasMoreChildren
		return s.AppendChildren(*item.ParentID, page, pos)
	}
	return s.Merge(page, pos)
}

// insertLevel adds the not-yet-indexed items to ids, indexes their subtrees
// and reports how many were new. s must already own its nodes map.
func (s *Store) insertLevel(ids []int64, items []model.Item, pos Position) ([]int64, int) {
	fresh := make([]int64, 0, len(items))
	for _, it := range items {
		if _, ok := s.nodes[it.ID]; ok {
			continue
		}
		s.index(it)
		fresh = append(fresh, it.ID)
	}
	if pos == Prepend {
		return append(fresh, ids...), len(fresh)
	}
	return append(ids, fresh...), len(fresh)
}

func (s *Store) index(it model.Item) {
	n := &node{item: it}
	n.item.Children = nil
	s.nodes[it.ID] = n
	for _, c := range it.Children {
		if _, ok := s.nodes[c.ID]; ok {
			continue
		}
		s.index(c)
		n.children = append(n.children, c.ID)
	}
}

// check verifies that the index and the tree hold exactly the same ids.
func (s *Store) check() error {
	seen := make(map[int64]bool, len(s.nodes))
	var walk func(ids []int64) error
	walk = func(ids []int64) error {
		for _, id := range ids {
			n, ok := s.nodes[id]
			if !ok {
				return fmt.Errorf("id %d in tree but not indexed", id)
			}
			if seen[id] {
				return fmt.Errorf("id %d appears twice", id)
			}
			seen[id] = true
			if err := walk(n.children); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(s.order); err != nil {
		return err
	}
	if len(seen) != len(s.nodes) {
		return fmt.Errorf("index holds %d ids, tree holds %d", len(s.nodes), len(seen))
	}
	return nil
}
