package httpapp

import (
	"net/http"
	"strings"
	"time"

	"github.com/alphabot-ai/slashboard/internal/feed"
	"github.com/alphabot-ai/slashboard/internal/model"
	"github.com/alphabot-ai/slashboard/internal/store"
)

func (s *Server) writePage(w http.ResponseWriter, r *http.Request, req feed.Request) {
	page, err := s.feed.FetchPage(r.Context(), s.viewer(r), req)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// handleListBoards godoc
//
//	@Summary	List boards
//	@Tags		Boards
//	@Produce	json
//	@Param		sort	query		string	false	"Sort order"	Enums(new, top)	default(new)
//	@Param		t		query		string	false	"Time window"	Enums(hour, day, week, month, year, all)	default(all)
//	@Param		cursor	query		int		false	"Keyset cursor for sort=new"
//	@Param		offset	query		int		false	"Offset for sort=top"
//	@Param		limit	query		int		false	"Page size"	default(25)	maximum(100)
//	@Success	200		{object}	model.Page
//	@Failure	503		{object}	errorResponse
//	@Router		/api/boards [get]
func (s *Server) handleListBoards(w http.ResponseWriter, r *http.Request) {
	coll := model.CollectionRef{Kind: model.CollectionBoards}
	s.writePage(w, r, feed.RequestFromQuery(coll, r.URL.Query()))
}

// handleBoardPosts godoc
//
//	@Summary	List posts in a board
//	@Tags		Boards
//	@Produce	json
//	@Param		slug	path		string	true	"Board slug"
//	@Param		sort	query		string	false	"Sort order"	Enums(new, top)	default(new)
//	@Param		t		query		string	false	"Time window"	Enums(hour, day, week, month, year, all)	default(all)
//	@Param		cursor	query		int		false	"Keyset cursor for sort=new"
//	@Param		offset	query		int		false	"Offset for sort=top"
//	@Param		limit	query		int		false	"Page size"	default(25)	maximum(100)
//	@Success	200		{object}	model.Page
//	@Failure	404		{object}	errorResponse
//	@Failure	503		{object}	errorResponse
//	@Router		/api/boards/{slug}/posts [get]
func (s *Server) handleBoardPosts(w http.ResponseWriter, r *http.Request, slug string) {
	if _, err := s.store.GetBoardBySlug(r.Context(), slug); err != nil {
		s.writeFailure(w, r, feed.AsRetrieval(err))
		return
	}
	coll := model.CollectionRef{Kind: model.CollectionBoard, Slug: slug}
	s.writePage(w, r, feed.RequestFromQuery(coll, r.URL.Query()))
}

// handleGetPost godoc
//
//	@Summary	Get a post
//	@Tags		Posts
//	@Produce	json
//	@Param		id	path		int	true	"Post ID"
//	@Success	200	{object}	model.Item
//	@Failure	404	{object}	errorResponse
//	@Router		/api/posts/{id} [get]
func (s *Server) handleGetPost(w http.ResponseWriter, r *http.Request, idStr string) {
	id, ok := parseID(idStr)
	if !ok {
		notFound(w)
		return
	}
	post, err := s.lookupPost(r, id)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	s.writeItem(w, r, http.StatusOK, post)
}

// handlePostComments serves one level of a thread plus the first replies of
// each node. With ?parent= it serves the replies of that node instead.
//
//	@Summary	Get a thread
//	@Tags		Comments
//	@Produce	json
//	@Param		id		path		int		true	"Post ID"
//	@Param		parent	query		int		false	"Comment whose replies to page through"
//	@Param		sort	query		string	false	"Sort order"	Enums(new, top)	default(new)
//	@Param		cursor	query		int		false	"Keyset cursor for sort=new"
//	@Param		offset	query		int		false	"Offset for sort=top"
//	@Param		limit	query		int		false	"Page size"	default(25)	maximum(100)
//	@Success	200		{object}	model.Page
//	@Failure	404		{object}	errorResponse
//	@Router		/api/posts/{id}/comments [get]
func (s *Server) handlePostComments(w http.ResponseWriter, r *http.Request, idStr string) {
	id, ok := parseID(idStr)
	if !ok {
		notFound(w)
		return
	}
	if _, err := s.lookupPost(r, id); err != nil {
		s.writeFailure(w, r, err)
		return
	}
	req := feed.RequestFromQuery(model.CollectionRef{Kind: model.CollectionThread, ID: id}, r.URL.Query())
	if req.Parent == nil {
		s.writePage(w, r, req)
		return
	}
	page, err := s.feed.FetchChildren(r.Context(), s.viewer(r), req, *req.Parent)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (s *Server) lookupPost(r *http.Request, id int64) (model.Item, error) {
	post, err := s.store.GetItem(r.Context(), id)
	if err != nil {
		return model.Item{}, feed.AsRetrieval(err)
	}
	if post.Kind != model.KindPost {
		return model.Item{}, store.ErrNotFound
	}
	return post, nil
}

// handleGetAccount godoc
//
//	@Summary	Get a profile
//	@Tags		Accounts
//	@Produce	json
//	@Param		id	path		int	true	"Account ID"
//	@Success	200	{object}	model.Item
//	@Failure	404	{object}	errorResponse
//	@Router		/api/accounts/{id} [get]
func (s *Server) handleGetAccount(w http.ResponseWriter, r *http.Request, idStr string) {
	id, ok := parseID(idStr)
	if !ok {
		notFound(w)
		return
	}
	account, err := s.store.GetAccount(r.Context(), id)
	if err != nil {
		s.writeFailure(w, r, feed.AsRetrieval(err))
		return
	}
	writeJSON(w, http.StatusOK, profileItem(account))
}

// handleAccountFeed godoc
//
//	@Summary	List an account's activity
//	@Tags		Accounts
//	@Produce	json
//	@Param		id		path		int		true	"Account ID"
//	@Param		type	query		string	false	"Content filter"	Enums(all, posts, comments)	default(all)
//	@Param		sort	query		string	false	"Sort order"	Enums(new, top)	default(new)
//	@Param		t		query		string	false	"Time window"	Enums(hour, day, week, month, year, all)	default(all)
//	@Param		cursor	query		int		false	"Keyset cursor for sort=new"
//	@Param		offset	query		int		false	"Offset for sort=top"
//	@Param		limit	query		int		false	"Page size"	default(25)	maximum(100)
//	@Success	200		{object}	model.Page
//	@Failure	404		{object}	errorResponse
//	@Router		/api/accounts/{id}/feed [get]
func (s *Server) handleAccountFeed(w http.ResponseWriter, r *http.Request, idStr string) {
	id, ok := parseID(idStr)
	if !ok {
		notFound(w)
		return
	}
	if _, err := s.store.GetAccount(r.Context(), id); err != nil {
		s.writeFailure(w, r, feed.AsRetrieval(err))
		return
	}
	coll := model.CollectionRef{Kind: model.CollectionProfile, ID: id}
	s.writePage(w, r, feed.RequestFromQuery(coll, r.URL.Query()))
}

func profileItem(a model.Account) model.Item {
	return model.Item{
		ID:        a.ID,
		Kind:      model.KindProfile,
		CreatedAt: a.CreatedAt,
		Score:     a.Karma,
		Content: model.ProfileContent{
			DisplayName: a.DisplayName,
			Bio:         a.Bio,
			Karma:       a.Karma,
		},
	}
}

type createBoardRequest struct {
	Slug        string `json:"slug" validate:"required,min=2,max=32,alphanum,lowercase"`
	Title       string `json:"title" validate:"required,max=120"`
	Description string `json:"description" validate:"max=2000"`
}

// handleCreateBoard godoc
//
//	@Summary	Create a board
//	@Tags		Boards
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		request	body		createBoardRequest	true	"Board to create"
//	@Success	201		{object}	model.Item
//	@Failure	409		{object}	errorResponse	"Slug already taken"
//	@Router		/api/boards [post]
func (s *Server) handleCreateBoard(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireAuth(w, r); !ok {
		return
	}
	var req createBoardRequest
	if !s.decode(w, r, &req) {
		return
	}
	board := model.Board{
		Slug:        req.Slug,
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		CreatedAt:   time.Now(),
	}
	id, err := s.store.CreateBoard(r.Context(), &board)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, model.Item{
		ID:        id,
		Kind:      model.KindBoard,
		CreatedAt: board.CreatedAt.UTC().Truncate(time.Second),
		Content: model.BoardContent{
			Slug:        board.Slug,
			Title:       board.Title,
			Description: board.Description,
		},
	})
}

type createPostRequest struct {
	Board string `json:"board" validate:"required"`
	Title string `json:"title" validate:"required,max=300"`
	URL   string `json:"url" validate:"omitempty,http_url"`
	Body  string `json:"body" validate:"max=40000"`
}

// handleCreatePost godoc
//
//	@Summary	Submit a post
//	@Tags		Posts
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		request	body		createPostRequest	true	"Post to submit"
//	@Success	201		{object}	model.Item
//	@Failure	400		{object}	errorResponse
//	@Router		/api/posts [post]
func (s *Server) handleCreatePost(w http.ResponseWriter, r *http.Request) {
	viewer, ok := s.requireAuth(w, r)
	if !ok {
		return
	}
	var req createPostRequest
	if !s.decode(w, r, &req) {
		return
	}
	board, err := s.store.GetBoardBySlug(r.Context(), req.Board)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	id, err := s.store.CreatePost(r.Context(), store.NewPost{
		BoardID:   board.ID,
		AccountID: int64(viewer),
		Title:     strings.TrimSpace(req.Title),
		URL:       strings.TrimSpace(req.URL),
		Body:      strings.TrimSpace(req.Body),
		CreatedAt: time.Now(),
	})
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	s.writeCreated(w, r, id)
}

type createCommentRequest struct {
	PostID   int64  `json:"post_id" validate:"required,gt=0"`
	ParentID *int64 `json:"parent_id" validate:"omitempty,gt=0"`
	Body     string `json:"body" validate:"required,max=10000"`
}

// handleCreateComment godoc
//
//	@Summary	Post a comment
//	@Tags		Comments
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		request	body		createCommentRequest	true	"Comment to post"
//	@Success	201		{object}	model.Item
//	@Failure	400		{object}	errorResponse	"Parent is not in this thread"
//	@Router		/api/comments [post]
func (s *Server) handleCreateComment(w http.ResponseWriter, r *http.Request) {
	viewer, ok := s.requireAuth(w, r)
	if !ok {
		return
	}
	var req createCommentRequest
	if !s.decode(w, r, &req) {
		return
	}
	id, err := s.store.CreateComment(r.Context(), store.NewComment{
		PostID:    req.PostID,
		ParentID:  req.ParentID,
		AccountID: int64(viewer),
		Body:      strings.TrimSpace(req.Body),
		CreatedAt: time.Now(),
	})
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	s.writeCreated(w, r, id)
}

// writeCreated re-reads a new item so the response has the read shape.
func (s *Server) writeCreated(w http.ResponseWriter, r *http.Request, id int64) {
	it, err := s.store.GetItem(r.Context(), id)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	s.writeItem(w, r, http.StatusCreated, it)
}

func (s *Server) writeItem(w http.ResponseWriter, r *http.Request, status int, it model.Item) {
	items := []model.Item{it}
	if err := s.feed.Overlay(r.Context(), s.viewer(r), items); err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeJSON(w, status, items[0])
}

type voteRequest struct {
	ItemID    int64           `json:"item_id" validate:"required,gt=0"`
	Direction model.Direction `json:"direction" validate:"min=-1,max=1"`
}

// handleVote godoc
//
//	@Summary	Vote on an item
//	@Tags		Votes
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		request	body		voteRequest	true	"Vote to cast"
//	@Success	200		{object}	model.Patch
//	@Router		/api/votes [post]
func (s *Server) handleVote(w http.ResponseWriter, r *http.Request) {
	viewer, ok := s.requireAuth(w, r)
	if !ok {
		return
	}
	var req voteRequest
	if !s.decode(w, r, &req) {
		return
	}
	score, err := s.store.CastVote(r.Context(), int64(viewer), req.ItemID, req.Direction)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	dir := req.Direction
	writeJSON(w, http.StatusOK, model.Patch{ID: req.ItemID, Score: &score, Vote: &dir})
}

// handleDeleteItem godoc
//
//	@Summary	Delete an item
//	@Tags		Posts
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id	path		int	true	"Item ID"
//	@Success	200	{object}	model.Patch
//	@Failure	403	{object}	errorResponse
//	@Router		/api/items/{id} [delete]
func (s *Server) handleDeleteItem(w http.ResponseWriter, r *http.Request, idStr string) {
	viewer, ok := s.requireAuth(w, r)
	if !ok {
		return
	}
	id, ok := parseID(idStr)
	if !ok {
		notFound(w)
		return
	}
	if err := s.store.SoftDelete(r.Context(), id, int64(viewer)); err != nil {
		s.writeFailure(w, r, err)
		return
	}
	deleted := true
	writeJSON(w, http.StatusOK, model.Patch{ID: id, Deleted: &deleted})
}
