package dashboard

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lifund/temigrate/store"
	"github.com/lifund/temigrate/utils"
)

func testRouter(t *testing.T) (*gin.Engine, *store.Service) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := utils.Database(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, store.AutoMigrate(db))

	storeService := store.New(db)
	s := Service{Store: storeService, Logger: logrus.New()}

	route := gin.New()
	route.GET("/runs", s.Runs)
	route.GET("/runs/count", s.RunsCount)
	route.GET("/runs/:id", s.RunByID)
	return route, storeService
}

func TestRuns(t *testing.T) {
	route, storeService := testRouter(t)

	report := store.NewReport(store.KindGranteesCreate, "export.csv", false)
	report.Success("Acme Water")
	_, err := storeService.Save(report)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	route.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/runs", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), store.KindGranteesCreate)
}

func TestRunByID(t *testing.T) {
	route, storeService := testRouter(t)

	report := store.NewReport(store.KindGrantsStages, "grants.csv", false)
	report.Failure("Acme 2023", "stage not found")
	run, err := storeService.Save(report)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	route.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/runs/"+run.ID, nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "stage not found")
}

func TestRunByIDNotFound(t *testing.T) {
	route, _ := testRouter(t)

	w := httptest.NewRecorder()
	route.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/runs/missing", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRunsCount(t *testing.T) {
	route, storeService := testRouter(t)

	_, err := storeService.Save(store.NewReport(store.KindOrgsImport, "orgs.csv", true))
	require.NoError(t, err)

	w := httptest.NewRecorder()
	route.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/runs/count", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"result":1`)
}
