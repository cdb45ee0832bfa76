package proposals

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	gateway "github.com/lifund/temigrate/apigateway"
	"github.com/lifund/temigrate/apperr"
	"github.com/lifund/temigrate/store"
)

// CreateHandler runs the create-grants migration on an uploaded csv.
func (s *Service) CreateHandler(c *gin.Context) {
	s.runUpload(c, func(path string, form gateway.MigrationForm) (*store.MigrationRun, error) {
		return s.CreateFromCSV(path, form.DryRun)
	})
}

// UpdateStagesHandler runs the stage-update migration on an uploaded csv.
func (s *Service) UpdateStagesHandler(c *gin.Context) {
	s.runUpload(c, func(path string, form gateway.MigrationForm) (*store.MigrationRun, error) {
		return s.UpdateStagesFromCSV(path, form.DryRun)
	})
}

func (s *Service) runUpload(c *gin.Context, run func(string, gateway.MigrationForm) (*store.MigrationRun, error)) {
	var form gateway.MigrationForm
	if err := c.ShouldBind(&form); err != nil {
		c.JSON(http.StatusBadRequest, apperr.Payload(apperr.Wrap(err, apperr.ErrBadRequest, "invalid form")))
		return
	}
	path, err := gateway.SaveUpload(c)
	if err != nil {
		c.JSON(apperr.Status(err), apperr.Payload(err))
		return
	}
	defer os.Remove(path)

	migrationRun, err := run(path, form)
	if err != nil {
		s.Logger.WithField("error", err.Error()).Error("migration run failed to start")
		c.JSON(apperr.Status(err), apperr.Payload(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"run": migrationRun})
}
