package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strconv"

	"github.com/alphabot-ai/slashboard/internal/feed"
	"github.com/alphabot-ai/slashboard/internal/model"
	"github.com/alphabot-ai/slashboard/internal/view"
)

func BoardsPath() string { return "/api/boards" }
func BoardPostsPath(slug string) string { return "/api/boards/" + url.PathEscape(slug) + "/posts" }
func CommentsPath(postID int64) string { return fmt.Sprintf("/api/posts/%d/comments", postID) }
func AccountFeedPath(account int64) string { return fmt.Sprintf("/api/accounts/%d/feed", account) }

// PageURL joins a collection path with the paging parameters of req. The
// result identifies a view and is what Load accepts.
func PageURL(path string, req feed.Request) string {
	if q := req.Values().Encode(); q != "" {
		return path + "?" + q
	}
	return path
}

// Load fetches one page of the collection named by req.URL, continuing from
// the cursor or offset in req. It satisfies view.Loader.
func (c *Client) Load(ctx context.Context, req view.LoadRequest) (model.Page, error) {
	u, err := url.Parse(req.URL)
	if err != nil {
		return model.Page{}, fmt.Errorf("parse view url: %w", err)
	}
	q := u.Query()
	q.Del("cursor")
	q.Del("offset")
	q.Del("parent")
	if req.Cursor > 0 {
		q.Set("cursor", strconv.FormatInt(req.Cursor, 10))
	}
	if req.Offset > 0 {
		q.Set("offset", strconv.Itoa(req.Offset))
	}
	if req.ParentID != nil {
		// reply pages use the server's page size, not the view's
		q.Del("limit")
		q.Set("parent", strconv.FormatInt(*req.ParentID, 10))
	}
	u.RawQuery = q.Encode()
	return c.getPage(ctx, u.RequestURI())
}

// Page fetches one page of the collection at path.
func (c *Client) Page(ctx context.Context, path string, req feed.Request) (model.Page, error) {
	return c.getPage(ctx, PageURL(path, req))
}

// getPage coalesces identical in-flight GETs. The shared request is detached
// from any single caller's cancellation; each caller still stops waiting
// when its own context ends.
func (c *Client) getPage(ctx context.Context, path string) (model.Page, error) {
	key := c.Token + " " + path
	ch := c.flight.DoChan(key, func() (any, error) {
		var page model.Page
		err := c.do(context.WithoutCancel(ctx), http.MethodGet, path, nil, &page)
		return page, err
	})
	select {
	case <-ctx.Done():
		return model.Page{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return model.Page{}, res.Err
		}
		page := res.Val.(model.Page)
		page.Items = slices.Clone(page.Items)
		return page, nil
	}
}

func (c *Client) Post(ctx context.Context, id int64) (model.Item, error) {
	var it model.Item
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/posts/%d", id), nil, &it)
	return it, err
}

func (c *Client) Profile(ctx context.Context, accountID int64) (model.Item, error) {
	var it model.Item
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/accounts/%d", accountID), nil, &it)
	return it, err
}

func (c *Client) CreateBoard(ctx context.Context, slug, title, description string) (model.Item, error) {
	var it model.Item
	err := c.do(ctx, http.MethodPost, "/api/boards", map[string]string{
		"slug":        slug,
		"title":       title,
		"description": description,
	}, &it)
	return it, err
}

func (c *Client) CreatePost(ctx context.Context, board, title, link, body string) (model.Item, error) {
	var it model.Item
	err := c.do(ctx, http.MethodPost, "/api/posts", map[string]string{
		"board": board,
		"title": title,
		"url":   link,
		"body":  body,
	}, &it)
	return it, err
}

func (c *Client) CreateComment(ctx context.Context, postID int64, parentID *int64, body string) (model.Item, error) {
	var it model.Item
	err := c.do(ctx, http.MethodPost, "/api/comments", map[string]any{
		"post_id":   postID,
		"parent_id": parentID,
		"body":      body,
	}, &it)
	return it, err
}

// Vote sets the caller's vote on an item. model.None clears it.
func (c *Client) Vote(ctx context.Context, itemID int64, dir model.Direction) (model.Patch, error) {
	var p model.Patch
	err := c.do(ctx, http.MethodPost, "/api/votes", map[string]any{
		"item_id":   itemID,
		"direction": dir,
	}, &p)
	return p, err
}

func (c *Client) Delete(ctx context.Context, itemID int64) (model.Patch, error) {
	var p model.Patch
	err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/items/%d", itemID), nil, &p)
	return p, err
}
