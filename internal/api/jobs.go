package api

import (
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/user/jobboard/internal/db"
	"github.com/user/jobboard/internal/query"
)

// filterFrom reads category, search and limit. page is accepted and ignored.
func filterFrom(c *gin.Context) query.Filter {
	return query.Filter{
		Category: c.Query("category"),
		Search:   c.Query("search"),
		Limit:    query.ParseLimit(c.Query("limit")),
	}
}

func (s *Server) handleJobs(c *gin.Context) {
	jobs, err := s.store.ListJobs(c.Request.Context(), filterFrom(c))
	if err != nil {
		writeError(c, "/api/jobs", err)
		return
	}
	c.JSON(http.StatusOK, jobs)
}

func (s *Server) handleJob(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Job not found"})
		return
	}

	job, err := s.store.GetJob(c.Request.Context(), id)
	if err != nil {
		writeError(c, "/api/jobs/:id", err)
		return
	}
	c.JSON(http.StatusOK, job)
}

func (s *Server) handleJobCount(c *gin.Context) {
	n, err := s.store.CountJobs(c.Request.Context(), filterFrom(c))
	if err != nil {
		writeError(c, "/api/jobs/count", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": n})
}

func (s *Server) handleCategories(c *gin.Context) {
	counts, err := s.store.CountJobsByCategory(c.Request.Context())
	if err != nil {
		writeError(c, "/api/jobs/categories", err)
		return
	}
	c.JSON(http.StatusOK, counts)
}

func (s *Server) handleResults(c *gin.Context) {
	out, err := s.store.ListResults(c.Request.Context(), query.ParseLimit(c.Query("limit")))
	if err != nil {
		writeError(c, "/api/results", err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) handleAdmitCards(c *gin.Context) {
	out, err := s.store.ListAdmitCards(c.Request.Context(), query.ParseLimit(c.Query("limit")))
	if err != nil {
		writeError(c, "/api/admit-cards", err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) handleAnswerKeys(c *gin.Context) {
	out, err := s.store.ListAnswerKeys(c.Request.Context(), query.ParseLimit(c.Query("limit")))
	if err != nil {
		writeError(c, "/api/answer-keys", err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) handleSubscribe(c *gin.Context) {
	var sub db.PushSubscription
	if err := c.ShouldBindJSON(&sub); err != nil {
		log.Printf("[/api/subscribe] JSON decode error: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid subscription"})
		return
	}
	if strings.TrimSpace(sub.Endpoint) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "endpoint is required"})
		return
	}
	sub.ID, sub.CreatedAt = "", time.Time{}

	if err := s.store.SaveSubscription(c.Request.Context(), &sub); err != nil {
		writeError(c, "/api/subscribe", err)
		return
	}
	log.Printf("[/api/subscribe] registered %s", sub.ID)
	c.JSON(http.StatusCreated, gin.H{"id": sub.ID})
}

func (s *Server) handleUnsubscribe(c *gin.Context) {
	var body struct {
		Endpoint string `json:"endpoint"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || strings.TrimSpace(body.Endpoint) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "endpoint is required"})
		return
	}

	if _, err := s.store.DeleteSubscription(c.Request.Context(), body.Endpoint); err != nil {
		writeError(c, "/api/subscribe", err)
		return
	}
	c.Status(http.StatusNoContent)
}
