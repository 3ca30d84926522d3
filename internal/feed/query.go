package feed

import (
	"net/url"
	"strconv"

	"github.com/alphabot-ai/slashboard/internal/model"
)

// RequestFromQuery reads paging parameters from a query string. Malformed
// numbers are treated as absent.
func RequestFromQuery(coll model.CollectionRef, values url.Values) Request {
	req := Request{
		Collection: coll,
		Sort:       model.ParseSort(values.Get("sort")),
		Window:     model.ParseWindow(values.Get("t")),
		Content:    model.ParseContentFilter(values.Get("type")),
		Cursor:     parseInt64(values.Get("cursor")),
		Offset:     int(parseInt64(values.Get("offset"))),
		Limit:      int(parseInt64(values.Get("limit"))),
	}
	if p := parseInt64(values.Get("parent")); p > 0 {
		req.Parent = &p
	}
	return req
}

// Values encodes the paging parameters of req, omitting zero values.
func (req Request) Values() url.Values {
	v := url.Values{}
	if req.Sort != "" {
		v.Set("sort", string(req.Sort))
	}
	if req.Window != "" && req.Window != model.WindowAll {
		v.Set("t", string(req.Window))
	}
	if req.Content != "" && req.Content != model.ContentAll {
		v.Set("type", string(req.Content))
	}
	if req.Cursor > 0 {
		v.Set("cursor", strconv.FormatInt(req.Cursor, 10))
	}
	if req.Offset > 0 {
		v.Set("offset", strconv.Itoa(req.Offset))
	}
	if req.Limit > 0 {
		v.Set("limit", strconv.Itoa(req.Limit))
	}
	if req.Parent != nil {
		v.Set("parent", strconv.FormatInt(*req.Parent, 10))
	}
	return v
}

func parseInt64(s string) int64 {
	if s == "" {
		return 0
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
