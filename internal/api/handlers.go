package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/bunchhieng/pins/internal/model"
	"github.com/bunchhieng/pins/internal/storage"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Handlers serves the bookmark and tag endpoints.
//
// Read paths fail open: store errors are logged and answered with an empty
// list, a 404 or a null bookmark. Write paths report them as 500.
type Handlers struct {
	store storage.Storage
}

// NewHandlers creates handlers over store.
func NewHandlers(store storage.Storage) *Handlers {
	return &Handlers{store: store}
}

func bookmarkID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "invalid bookmark id")
		return 0, false
	}
	return id, true
}

// ListBookmarks handles GET /bookmarks.
func (h *Handlers) ListBookmarks(c *gin.Context) {
	var params listParams
	if err := c.ShouldBindQuery(&params); err != nil {
		bindingError(c, &params, err)
		return
	}

	opts := params.options()
	bookmarks, err := h.store.List(c.Request.Context(), opts)
	if err != nil {
		zerolog.Ctx(c.Request.Context()).Error().Err(err).
			Str("q", opts.Q).Uint64("limit", opts.Limit).Uint64("offset", opts.Offset).
			Msg("list bookmarks failed")
		bookmarks = nil
	}

	views := newBookmarkViews(bookmarks)
	c.JSON(http.StatusOK, ListResponse[BookmarkView]{Count: len(views), Results: views})
}

// GetBookmark handles GET /bookmarks/:id.
func (h *Handlers) GetBookmark(c *gin.Context) {
	id, ok := bookmarkID(c)
	if !ok {
		return
	}

	b, err := h.store.Get(c.Request.Context(), storage.ByID(id))
	if err != nil {
		if !errors.Is(err, model.ErrNotFound) {
			zerolog.Ctx(c.Request.Context()).Error().Err(err).Int64("bookmark_id", id).Msg("get bookmark failed")
		}
		abortWithError(c, http.StatusNotFound, "bookmark not found")
		return
	}
	c.JSON(http.StatusOK, newBookmarkView(b))
}

// CreateBookmark handles POST /bookmarks.
func (h *Handlers) CreateBookmark(c *gin.Context) {
	var req BookmarkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindingError(c, &req, err)
		return
	}

	ctx := c.Request.Context()
	id, err := h.store.Create(ctx, req.toModel())
	if err != nil {
		writeError(c, err, "create bookmark")
		return
	}

	b, err := h.store.Get(ctx, storage.ByID(id))
	if err != nil {
		writeError(c, err, "load created bookmark")
		return
	}
	c.JSON(http.StatusCreated, newBookmarkView(b))
}

// UpdateBookmark handles PUT /bookmarks/:id.
func (h *Handlers) UpdateBookmark(c *gin.Context) {
	id, ok := bookmarkID(c)
	if !ok {
		return
	}

	var req BookmarkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindingError(c, &req, err)
		return
	}

	b, err := h.store.Update(c.Request.Context(), id, req.toModel())
	if err != nil {
		writeError(c, err, "update bookmark")
		return
	}
	c.JSON(http.StatusOK, newBookmarkView(b))
}

// DeleteBookmark handles DELETE /bookmarks/:id. Unknown ids succeed.
func (h *Handlers) DeleteBookmark(c *gin.Context) {
	id, ok := bookmarkID(c)
	if !ok {
		return
	}

	if err := h.store.Delete(c.Request.Context(), id); err != nil {
		writeError(c, err, "delete bookmark")
		return
	}
	c.Status(http.StatusOK)
}

// CheckBookmark handles GET /bookmarks/check.
func (h *Handlers) CheckBookmark(c *gin.Context) {
	var params checkParams
	if err := c.ShouldBindQuery(&params); err != nil {
		bindingError(c, &params, err)
		return
	}

	resp := CheckResponse{
		Metadata: CheckMetadata{URL: params.URL},
		AutoTags: []string{},
	}

	result, err := h.store.Check(c.Request.Context(), params.URL)
	if err != nil {
		zerolog.Ctx(c.Request.Context()).Error().Err(err).Str("url", params.URL).Msg("check bookmark failed")
	} else if result.Bookmark != nil {
		view := newBookmarkView(result.Bookmark)
		resp.Bookmark = &view
	}
	c.JSON(http.StatusOK, resp)
}

// ListTags handles GET /tags.
func (h *Handlers) ListTags(c *gin.Context) {
	tags, err := h.store.Tags(c.Request.Context())
	if err != nil {
		zerolog.Ctx(c.Request.Context()).Error().Err(err).Msg("list tags failed")
		tags = nil
	}

	views := newTagViews(tags)
	c.JSON(http.StatusOK, ListResponse[TagView]{Count: len(views), Results: views})
}
