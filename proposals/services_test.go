package proposals

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lifund/temigrate/apperr"
	"github.com/lifund/temigrate/store"
	"github.com/lifund/temigrate/temelio"
	"github.com/lifund/temigrate/utils"
)

func testService(t *testing.T, server *httptest.Server) *Service {
	t.Helper()
	cfg := testConfig()
	cfg.BearerToken = "secret"
	cfg.GetContactsEndpoint = server.URL + "/foundations/%s/contacts/search"
	cfg.GetGrantsEndpoint = server.URL + "/foundations/%s/grants/search"
	cfg.CreateGrantEndpoint = server.URL + "/foundations/%s/grants"
	cfg.UpdateGrantEndpoint = server.URL + "/grants/stage"

	client := temelio.NewClient(cfg, logrus.New())
	client.RetryDelay = 0

	db, err := utils.Database(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, store.AutoMigrate(db))

	return &Service{Client: client, Store: store.New(db), Logger: logrus.New()}
}

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "grants.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestCreateFromCSV(t *testing.T) {
	created := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/foundations/fd-1/contacts/search":
			w.Write([]byte(`{"searchResponse": {"responses": [
				{"nonprofitId": "np-1", "customFields": {"Affinity ID-4jS8olxc": "org-1"}}
			]}}`))
		case "/foundations/fd-1/grants/search":
			w.Write([]byte(`{"responses": [{"id": "gr-0", "name": "Existing 2022", "nonprofitId": "np-1"}]}`))
		case "/foundations/fd-1/grants":
			created++
			var proposal temelio.GrantProposal
			require.NoError(t, json.NewDecoder(r.Body).Decode(&proposal))
			assert.Equal(t, "np-1", proposal.GrantProposalSubmission.NonprofitID)
			w.Write([]byte(`{"id": "gr-1", "name": "Acme 2023"}`))
		default:
			t.Errorf("unexpected call to %s", r.URL.Path)
		}
	}))
	defer server.Close()

	s := testService(t, server)
	path := writeCSV(t,
		"Name,Support type,Stage,Pipeline,Amount,LIF Calendar Year,Organization Id\n"+
			"Acme 2023,Core,Active grant,Grants,\"100,000\",2023,org-1\n"+
			"Existing 2022,Core,Active grant,Grants,\"50,000\",2022,org-1\n"+
			"Orphan 2023,Core,Diligence,Grants,,2023,org-nope\n")

	run, err := s.CreateFromCSV(path, false)
	require.NoError(t, err)
	assert.Equal(t, 1, created, "existing and unmatched grants are not created")
	assert.Equal(t, 2, run.Succeeded, "the existing grant counts as done")
	assert.Equal(t, 1, run.Failed)
	assert.Equal(t, store.KindGrantsCreate, run.Kind)
}

func TestCreateFromCSVMalformed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("a bad csv must not call temelio")
	}))
	defer server.Close()

	s := testService(t, server)
	path := writeCSV(t, "Name,Stage\n\"Acme\n")

	_, err := s.CreateFromCSV(path, false)
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, apperr.Status(err))
	assert.Equal(t, "csv_error", apperr.Code(err))
}

func TestCreateFromCSVDryRun(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("dry run must not call temelio")
	}))
	defer server.Close()

	s := testService(t, server)
	path := writeCSV(t, "Name,Support type,Stage,Pipeline\nAcme 2023,Core,Active grant,Grants\n")

	run, err := s.CreateFromCSV(path, true)
	require.NoError(t, err)
	assert.Equal(t, 1, run.Succeeded)
	assert.Equal(t, store.StatusDryRun, run.Status)
}

func TestUpdateStagesFromCSV(t *testing.T) {
	var captured temelio.GrantStageUpdate
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/foundations/fd-1/grants/search":
			w.Write([]byte(`{"responses": [
				{"id": "gr-1", "name": "Acme 2023", "nonprofitId": "np-1"},
				{"id": "gr-2", "name": "Not In CSV", "nonprofitId": "np-2"}
			]}`))
		case "/grants/stage":
			require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
			w.WriteHeader(http.StatusOK)
		default:
			t.Errorf("unexpected call to %s", r.URL.Path)
		}
	}))
	defer server.Close()

	s := testService(t, server)
	path := writeCSV(t, "Name,Stage,Pipeline\nAcme 2023,Active grant,Grants\n")

	run, err := s.UpdateStagesFromCSV(path, false)
	require.NoError(t, err)
	assert.Equal(t, 1, run.Succeeded)
	assert.Equal(t, 0, run.Failed)
	assert.Equal(t, "gr-1", captured.ID)
	require.NotNil(t, captured.StageID)
	assert.Equal(t, "stg-1", *captured.StageID)
}

func TestUpdateStagesFromCSVUnknownStage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/foundations/fd-1/grants/search":
			w.Write([]byte(`{"responses": [{"id": "gr-1", "name": "Acme 2023", "nonprofitId": "np-1"}]}`))
		default:
			t.Errorf("unexpected call to %s", r.URL.Path)
		}
	}))
	defer server.Close()

	s := testService(t, server)
	path := writeCSV(t, "Name,Stage,Pipeline\nAcme 2023,No Such Stage,Grants\n")

	run, err := s.UpdateStagesFromCSV(path, false)
	require.NoError(t, err)
	assert.Equal(t, 0, run.Succeeded)
	assert.Equal(t, 1, run.Failed)
}
