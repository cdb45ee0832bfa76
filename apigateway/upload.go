package gateway

import (
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/lifund/temigrate/apperr"
)

// MigrationForm carries the knobs shared by every migration endpoint.
type MigrationForm struct {
	DryRun    bool `form:"dry_run"`
	BatchSize int  `form:"batch_size"`
}

// SaveUpload stores the request's csv upload into a temp file and returns
// its path. The caller owns the file.
func SaveUpload(c *gin.Context) (string, error) {
	file, err := c.FormFile("file")
	if err != nil {
		return "", apperr.ErrEmptyUpload
	}
	path := filepath.Join(os.TempDir(), "temigrate-"+uuid.NewString()+".csv")
	if err := c.SaveUploadedFile(file, path); err != nil {
		return "", apperr.Wrap(err, apperr.ErrInternal, "unable to save the uploaded csv")
	}
	return path, nil
}
