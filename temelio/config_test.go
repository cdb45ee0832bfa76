package temelio

import (
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStageSetUnmarshalObject(t *testing.T) {
	var p Pipeline
	raw := `{"id": "pip-1", "stages": {"Active grant": "st-1", "Declined": "st-2"}}`
	require.NoError(t, json.Unmarshal([]byte(raw), &p))
	id, ok := p.Stages.StageID("Active grant")
	assert.True(t, ok)
	assert.Equal(t, "st-1", id)
}

func TestStageSetUnmarshalList(t *testing.T) {
	var p Pipeline
	raw := `{"id": "pip-1", "stages": [{"name": "Active grant", "id": "st-1"}, {"name": "Declined", "id": "st-2"}]}`
	require.NoError(t, json.Unmarshal([]byte(raw), &p))
	id, ok := p.Stages.StageID("Declined")
	assert.True(t, ok)
	assert.Equal(t, "st-2", id)
}

func TestStageIDCaseInsensitive(t *testing.T) {
	stages := StageSet{"Active grant": "st-1"}
	id, ok := stages.StageID("active Grant")
	assert.True(t, ok)
	assert.Equal(t, "st-1", id)

	_, ok = stages.StageID("no such stage")
	assert.False(t, ok)
}

func TestPipelineID(t *testing.T) {
	cfg := Config{Pipelines: map[string]string{
		"Grants":   "pip-1",
		"Archived": ZeroUUID,
	}}

	id := cfg.PipelineID("Grants")
	require.NotNil(t, id)
	assert.Equal(t, "pip-1", *id)

	assert.Nil(t, cfg.PipelineID("Archived"), "zero uuid means no pipeline")
	assert.Nil(t, cfg.PipelineID("unknown"))
}

func TestStageIDFor(t *testing.T) {
	cfg := Config{PipelinesData: map[string]Pipeline{
		"Grants": {ID: "pip-1", Stages: StageSet{"Active grant": "st-1"}},
	}}

	id, ok := cfg.StageIDFor("Grants", "Active grant")
	assert.True(t, ok)
	assert.Equal(t, "st-1", id)

	_, ok = cfg.StageIDFor("Grants", "missing")
	assert.False(t, ok)
	_, ok = cfg.StageIDFor("missing", "Active grant")
	assert.False(t, ok)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("FOUNDATION_ID", "fd-1")
	t.Setenv("BEARER_TOKEN", "token")
	t.Setenv("USERS", `{"Jane Doe": "u-1"}`)
	t.Setenv("PIPELINES_DATA", `{"Grants": {"id": "pip-1", "stages": {"Active grant": "st-1"}}}`)

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "fd-1", cfg.FoundationID)
	assert.Equal(t, "u-1", cfg.Users["Jane Doe"])
	assert.Equal(t, "pip-1", cfg.PipelinesData["Grants"].ID)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "Livelihood Impact Fund", cfg.FoundationName)
}

func TestLoadFromEnvBadTable(t *testing.T) {
	t.Setenv("USERS", `not json`)
	_, err := LoadFromEnv()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := Config{FoundationID: "fd-1", BearerToken: "token"}
	assert.NoError(t, cfg.Validate("https://example.com/%s"))
	assert.Error(t, cfg.Validate(""), "an unset endpoint must fail")

	cfg.BearerToken = ""
	assert.Error(t, cfg.Validate())
}
