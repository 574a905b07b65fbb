// Package api exposes the bookmark store over HTTP.
package api

import (
	"net/http"

	"github.com/bunchhieng/pins/internal/storage"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	zlog "github.com/rs/zerolog/log"
)

// Options configures the router.
type Options struct {
	Token string // shared secret required on every /api route
	Mode  string // gin mode: debug, release or test
}

// NewRouter builds the gin engine with every route registered.
func NewRouter(store storage.Storage, opts Options) *gin.Engine {
	if opts.Mode != "" {
		gin.SetMode(opts.Mode)
	}

	r := gin.New()
	r.RedirectTrailingSlash = false
	r.HandleMethodNotAllowed = true

	r.Use(requestLogger(zlog.Logger), gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Accept", "Authorization", RequestIDHeader},
		ExposeHeaders:   []string{RequestIDHeader},
	}))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	h := NewHandlers(store)
	api := r.Group("/api", requireToken(opts.Token))
	{
		api.GET("/bookmarks", h.ListBookmarks)
		api.POST("/bookmarks", h.CreateBookmark)
		api.GET("/bookmarks/check", h.CheckBookmark)
		api.GET("/bookmarks/:id", h.GetBookmark)
		api.PUT("/bookmarks/:id", h.UpdateBookmark)
		api.DELETE("/bookmarks/:id", h.DeleteBookmark)
		api.GET("/tags", h.ListTags)
	}

	return r
}

// NewHandler is NewRouter behind trailing-slash normalization.
func NewHandler(store storage.Storage, opts Options) http.Handler {
	return trimTrailingSlash(NewRouter(store, opts))
}
