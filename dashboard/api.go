package dashboard

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/lifund/temigrate/apperr"
	"github.com/lifund/temigrate/store"
)

// Service serves the run-reporting endpoints over the migration store.
type Service struct {
	Store  *store.Service
	Logger *logrus.Logger
}

// Runs lists recent migration runs, newest first. An optional ?limit=
// caps the page size.
func (s *Service) Runs(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	runs, err := s.Store.Runs(limit)
	if err != nil {
		s.databaseError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs, "count": len(runs)})
}

// RunByID fetches one run with its per-row outcomes.
func (s *Service) RunByID(c *gin.Context) {
	id := c.Param("id")
	run, err := s.Store.Run(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		notFound := apperr.Wrap(err, apperr.ErrNotFound, "run not found")
		c.JSON(apperr.Status(notFound), apperr.Payload(notFound))
		return
	}
	if err != nil {
		s.databaseError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"run": run})
}

// RunsCount returns how many runs the store holds.
func (s *Service) RunsCount(c *gin.Context) {
	count, err := s.Store.Count()
	if err != nil {
		s.databaseError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": count})
}

func (s *Service) databaseError(c *gin.Context, err error) {
	s.Logger.WithFields(logrus.Fields{
		"error":   err.Error(),
		"details": "error in database",
	}).Info("error in database")
	wrapped := apperr.Wrap(err, apperr.ErrDatabase, "")
	c.JSON(apperr.Status(wrapped), apperr.Payload(wrapped))
}
