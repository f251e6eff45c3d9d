// Package api serves the read-only listing endpoints over HTTP.
package api

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/user/jobboard/internal/db"
	"github.com/user/jobboard/internal/query"
)

// Store is the part of the record store the API reads from.
type Store interface {
	ListJobs(ctx context.Context, f query.Filter) ([]db.Job, error)
	GetJob(ctx context.Context, id int64) (*db.Job, error)
	CountJobs(ctx context.Context, f query.Filter) (int, error)
	CountJobsByCategory(ctx context.Context) ([]db.CategoryCount, error)
	ListResults(ctx context.Context, limit int) ([]db.Result, error)
	ListAdmitCards(ctx context.Context, limit int) ([]db.AdmitCard, error)
	ListAnswerKeys(ctx context.Context, limit int) ([]db.AnswerKey, error)
	SaveSubscription(ctx context.Context, sub *db.PushSubscription) error
	DeleteSubscription(ctx context.Context, endpoint string) (bool, error)
	Ping(ctx context.Context) error
}

type Server struct {
	store  Store
	router *gin.Engine
}

func New(st Store) *Server {
	s := &Server{
		store:  st,
		router: gin.Default(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.GET("/health", s.handleHealth)

	api := s.router.Group("/api")
	api.GET("/jobs", s.handleJobs)
	api.GET("/jobs/count", s.handleJobCount)
	api.GET("/jobs/categories", s.handleCategories)
	api.GET("/jobs/:id", s.handleJob)
	api.GET("/results", s.handleResults)
	api.GET("/admit-cards", s.handleAdmitCards)
	api.GET("/answer-keys", s.handleAnswerKeys)
	api.POST("/subscribe", s.handleSubscribe)
	api.DELETE("/subscribe", s.handleUnsubscribe)
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Listen serves on addr until ctx is cancelled, then drains in-flight
// requests for up to five seconds.
func (s *Server) Listen(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.Printf("[api] listening on %s", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	log.Println("[api] shutting down…")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleHealth(c *gin.Context) {
	if err := s.store.Ping(c.Request.Context()); err != nil {
		log.Printf("[/health] ping failed: %v", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// writeError maps store errors to responses. Only a short message reaches
// the client; the detail goes to the log.
func writeError(c *gin.Context, route string, err error) {
	var se *db.StoreError
	switch {
	case errors.Is(err, db.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Job not found"})
	case errors.As(err, &se):
		log.Printf("[%s] %v", route, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to " + se.Op})
	default:
		log.Printf("[%s] %v", route, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
