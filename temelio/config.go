package temelio

import (
	"fmt"
	"os"
	"strings"

	"github.com/goccy/go-json"
)

// Config carries everything temigrate needs to talk to Temelio, plus the
// lookup tables the migration jobs resolve CSV values through. All of it
// comes from the environment (optionally seeded from a .env file).
type Config struct {
	FoundationID string `json:"foundation_id"`
	BearerToken  string `json:"bearer_token"`

	// Endpoint templates. Slots are fmt verbs: foundation id first,
	// then (for the grantee update template) the nonprofit id.
	CreateGranteeEndpoint string `json:"create_grantee_endpoint"`
	UpdateGranteeEndpoint string `json:"update_grantee_endpoint"`
	GetContactsEndpoint   string `json:"get_contacts_endpoint"`
	GetGrantsEndpoint     string `json:"get_grants_endpoint"`
	CreateGrantEndpoint   string `json:"create_grant_endpoint"`
	UpdateGrantEndpoint   string `json:"update_grant_endpoint"`

	// Lookup tables, parsed from JSON env values.
	Users         map[string]string   `json:"users"`
	SupportTypes  map[string]string   `json:"support_types"`
	ProgramAreas  map[string]string   `json:"program_areas"`
	Pipelines     map[string]string   `json:"pipelines"`
	PipelinesData map[string]Pipeline `json:"pipelines_data"`

	// Identity of the foundation block embedded in grant proposals.
	FoundationName      string `json:"foundation_name"`
	FoundationEIN       string `json:"foundation_ein"`
	FoundationSubdomain string `json:"foundation_subdomain"`
	GrantFormProposalID string `json:"grant_form_proposal_id"`
	FallbackAssigneeID  string `json:"fallback_assignee_id"`

	// Server and ambient settings.
	Port         string `json:"port"`
	DatabasePath string `json:"database_path"`
	RedisAddr    string `json:"redis_addr"`
	JWTKey       string `json:"jwt_key"`
	AdminKey     string `json:"admin_key"`
	IsDebug      bool   `json:"is_debug"`
}

// Pipeline mirrors one entry of the PIPELINES_DATA table.
type Pipeline struct {
	ID     string   `json:"id"`
	Stages StageSet `json:"stages"`
}

// StageSet maps a stage name to its Temelio stage id. The upstream export
// ships stages either as an object {"name": "id"} or as a list of
// {"name": ..., "id": ...}; both decode into the same map.
type StageSet map[string]string

func (s *StageSet) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "[") {
		var entries []struct {
			Name string `json:"name"`
			ID   string `json:"id"`
		}
		if err := json.Unmarshal(data, &entries); err != nil {
			return err
		}
		out := make(map[string]string, len(entries))
		for _, e := range entries {
			out[e.Name] = e.ID
		}
		*s = out
		return nil
	}
	var out map[string]string
	if err := json.Unmarshal(data, &out); err != nil {
		return err
	}
	*s = out
	return nil
}

// StageID resolves a stage id by name, falling back to a case-insensitive
// scan for exports that don't agree on capitalization.
func (s StageSet) StageID(name string) (string, bool) {
	if id, ok := s[name]; ok {
		return id, true
	}
	for k, v := range s {
		if strings.EqualFold(k, name) {
			return v, true
		}
	}
	return "", false
}

// ZeroUUID is the sentinel the Affinity export uses for "no pipeline".
const ZeroUUID = "00000000-0000-0000-0000-000000000000"

// PipelineID resolves a pipeline name to its Temelio id. The zero-uuid
// sentinel means the grant carries no pipeline.
func (c Config) PipelineID(name string) *string {
	id, ok := c.Pipelines[name]
	if !ok || id == ZeroUUID {
		return nil
	}
	return &id
}

// StageIDFor resolves a stage id through PIPELINES_DATA.
func (c Config) StageIDFor(pipelineName, stageName string) (string, bool) {
	pipeline, ok := c.PipelinesData[pipelineName]
	if !ok {
		return "", false
	}
	return pipeline.Stages.StageID(stageName)
}

// LoadFromEnv builds a Config from the process environment.
func LoadFromEnv() (Config, error) {
	cfg := Config{
		FoundationID:          os.Getenv("FOUNDATION_ID"),
		BearerToken:           os.Getenv("BEARER_TOKEN"),
		CreateGranteeEndpoint: os.Getenv("CREATE_GRANTEE_ENDPOINT"),
		UpdateGranteeEndpoint: os.Getenv("UPDATE_GRANTEE_ENDPOINT"),
		GetContactsEndpoint:   os.Getenv("GET_CONTACTS_ENDPOINT"),
		GetGrantsEndpoint:     os.Getenv("GET_GRANTS_ENDPOINT"),
		CreateGrantEndpoint:   os.Getenv("CREATE_GRANT_ENDPOINT"),
		UpdateGrantEndpoint:   os.Getenv("UPDATE_GRANT_ENDPOINT"),
		FoundationName:        os.Getenv("FOUNDATION_NAME"),
		FoundationEIN:         os.Getenv("FOUNDATION_EIN"),
		FoundationSubdomain:   os.Getenv("FOUNDATION_SUBDOMAIN"),
		GrantFormProposalID:   os.Getenv("GRANT_FORM_PROPOSAL_ID"),
		FallbackAssigneeID:    os.Getenv("FALLBACK_ASSIGNEE_ID"),
		Port:                  os.Getenv("PORT"),
		DatabasePath:          os.Getenv("DATABASE_PATH"),
		RedisAddr:             os.Getenv("REDIS_ADDR"),
		JWTKey:                os.Getenv("JWT_KEY"),
		AdminKey:              os.Getenv("ADMIN_KEY"),
		IsDebug:               os.Getenv("DEBUG") != "",
	}

	tables := []struct {
		env    string
		target any
	}{
		{"USERS", &cfg.Users},
		{"SUPPORT_TYPES", &cfg.SupportTypes},
		{"PROGRAM_AREAS", &cfg.ProgramAreas},
		{"PIPELINES", &cfg.Pipelines},
		{"PIPELINES_DATA", &cfg.PipelinesData},
	}
	for _, table := range tables {
		raw := os.Getenv(table.env)
		if raw == "" {
			continue
		}
		if err := json.Unmarshal([]byte(raw), table.target); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", table.env, err)
		}
	}

	cfg.Defaults()
	return cfg, nil
}

// Defaults fills the settings that have a sane fallback.
func (c *Config) Defaults() {
	if c.Port == "" {
		c.Port = "8080"
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "temigrate.db"
	}
	if c.RedisAddr == "" {
		c.RedisAddr = "localhost:6379"
	}
	if c.FoundationName == "" {
		c.FoundationName = "Livelihood Impact Fund"
	}
	if c.FoundationEIN == "" {
		c.FoundationEIN = "1"
	}
	if c.FoundationSubdomain == "" {
		c.FoundationSubdomain = "livelihood"
	}
	if c.Users == nil {
		c.Users = map[string]string{}
	}
	if c.SupportTypes == nil {
		c.SupportTypes = map[string]string{}
	}
	if c.ProgramAreas == nil {
		c.ProgramAreas = map[string]string{}
	}
	if c.Pipelines == nil {
		c.Pipelines = map[string]string{}
	}
	if c.PipelinesData == nil {
		c.PipelinesData = map[string]Pipeline{}
	}
}

// Validate checks the credentials plus whichever endpoints the caller is
// about to use.
func (c Config) Validate(endpoints ...string) error {
	if c.FoundationID == "" {
		return fmt.Errorf("FOUNDATION_ID is not set")
	}
	if c.BearerToken == "" {
		return fmt.Errorf("BEARER_TOKEN is not set")
	}
	for _, e := range endpoints {
		if e == "" {
			return fmt.Errorf("a required endpoint is not configured")
		}
	}
	return nil
}
