package store

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Migration kinds, one per job the toolkit ships.
const (
	KindGranteesCreate = "grantees_create"
	KindGranteesUpdate = "grantees_update"
	KindOrgsImport     = "orgs_import"
	KindGrantsCreate   = "grants_create"
	KindGrantsStages   = "grants_stages"
)

// Run statuses.
const (
	StatusCompleted = "completed"
	StatusDryRun    = "dry_run"
)

// MigrationRun is one execution of a migration job.
type MigrationRun struct {
	ID         string    `json:"id" gorm:"primaryKey"`
	Kind       string    `json:"kind" gorm:"index"`
	File       string    `json:"file"`
	DryRun     bool      `json:"dry_run"`
	Status     string    `json:"status"`
	Succeeded  int       `json:"succeeded"`
	Failed     int       `json:"failed"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	Outcomes []RowOutcome `json:"outcomes,omitempty" gorm:"foreignKey:RunID"`
}

// RowOutcome is the fate of one CSV row within a run.
type RowOutcome struct {
	ID      uint   `json:"-" gorm:"primaryKey"`
	RunID   string `json:"-" gorm:"index"`
	Entity  string `json:"entity"`
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// Outcome is the in-memory form services collect before a run is saved.
type Outcome struct {
	Entity  string `json:"entity"`
	Message string `json:"message,omitempty"`
}

// Report accumulates a run's results while the job executes.
type Report struct {
	Kind      string    `json:"kind"`
	File      string    `json:"file"`
	DryRun    bool      `json:"dry_run"`
	Succeeded []Outcome `json:"succeeded"`
	Failed    []Outcome `json:"failed"`
	StartedAt time.Time `json:"started_at"`
}

func NewReport(kind, file string, dryRun bool) *Report {
	return &Report{Kind: kind, File: file, DryRun: dryRun, StartedAt: time.Now().UTC()}
}

func (r *Report) Success(entity string) {
	r.Succeeded = append(r.Succeeded, Outcome{Entity: entity})
}

func (r *Report) Failure(entity, message string) {
	r.Failed = append(r.Failed, Outcome{Entity: entity, Message: message})
}

// Service persists and queries migration runs.
type Service struct {
	Db *gorm.DB
}

func New(db *gorm.DB) *Service {
	return &Service{Db: db}
}

// AutoMigrate creates the run tables.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&MigrationRun{}, &RowOutcome{})
}

// Save turns a finished report into a MigrationRun with its row outcomes
// and returns the stored run.
func (s *Service) Save(report *Report) (*MigrationRun, error) {
	run := &MigrationRun{
		ID:         uuid.NewString(),
		Kind:       report.Kind,
		File:       report.File,
		DryRun:     report.DryRun,
		Status:     StatusCompleted,
		Succeeded:  len(report.Succeeded),
		Failed:     len(report.Failed),
		StartedAt:  report.StartedAt,
		FinishedAt: time.Now().UTC(),
	}
	if report.DryRun {
		run.Status = StatusDryRun
	}
	for _, o := range report.Succeeded {
		run.Outcomes = append(run.Outcomes, RowOutcome{Entity: o.Entity, Success: true})
	}
	for _, o := range report.Failed {
		run.Outcomes = append(run.Outcomes, RowOutcome{Entity: o.Entity, Success: false, Message: o.Message})
	}
	if err := s.Db.Create(run).Error; err != nil {
		return nil, err
	}
	return run, nil
}

// Runs lists runs newest first, without their per-row outcomes.
func (s *Service) Runs(limit int) ([]MigrationRun, error) {
	if limit <= 0 {
		limit = 50
	}
	var runs []MigrationRun
	err := s.Db.Order("started_at desc").Limit(limit).Find(&runs).Error
	return runs, err
}

// Run fetches one run with its outcomes.
func (s *Service) Run(id string) (*MigrationRun, error) {
	var run MigrationRun
	if err := s.Db.Preload("Outcomes").First(&run, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &run, nil
}

// Count returns the number of stored runs.
func (s *Service) Count() (int64, error) {
	var n int64
	err := s.Db.Model(&MigrationRun{}).Count(&n).Error
	return n, err
}
