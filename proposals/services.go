package proposals

import (
	"strings"

	"github.com/go-redis/redis/v7"
	"github.com/sirupsen/logrus"

	gateway "github.com/lifund/temigrate/apigateway"
	"github.com/lifund/temigrate/apperr"
	"github.com/lifund/temigrate/store"
	"github.com/lifund/temigrate/temelio"
	"github.com/lifund/temigrate/utils"
)

// Service runs the grant migrations. Field members are initialized in the
// main package.
type Service struct {
	Client *temelio.Client
	Store  *store.Service
	Redis  *redis.Client
	Logger *logrus.Logger
}

// CreateFromCSV creates one historical grant proposal per CSV row. Grants
// Temelio already holds (matched by name) are skipped, so reruns after a
// partial failure are safe.
func (s *Service) CreateFromCSV(path string, dryRun bool) (*store.MigrationRun, error) {
	cfg := s.Client.Config
	if err := cfg.Validate(cfg.GetContactsEndpoint, cfg.GetGrantsEndpoint, cfg.CreateGrantEndpoint); err != nil {
		return nil, apperr.Wrap(err, apperr.ErrConfig, "")
	}
	rows, _, err := utils.ReadRows(path)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.ErrCSV, "")
	}

	report := store.NewReport(store.KindGrantsCreate, path, dryRun)
	gateway.RunsStarted.WithLabelValues(report.Kind).Inc()

	existing := map[string]bool{}
	if dryRun {
		s.Logger.Info("dry run step: fetch the contacts and existing grants from temelio")
	} else {
		records, err := s.Client.FetchNonprofits()
		if err != nil {
			return nil, apperr.Wrap(err, apperr.ErrUpstream, "")
		}
		annotateNonprofits(rows, records)

		grants, err := s.Client.FetchGrants()
		if err != nil {
			return nil, apperr.Wrap(err, apperr.ErrUpstream, "")
		}
		for _, grant := range grants {
			existing[grant.Name] = true
		}
	}

	for _, row := range rows {
		name := strings.TrimSpace(row[ColName])
		if name == "" {
			s.fail(report, name, "row has no grant name")
			continue
		}
		if existing[name] {
			s.Logger.WithField("grant_name", name).Info("grant already exists, skipping creation")
			s.succeed(report, name)
			continue
		}
		if strings.TrimSpace(row[ColSupportType]) == "" {
			s.fail(report, name, "row has no support type")
			continue
		}
		if dryRun {
			s.Logger.WithField("grant_name", name).Info("dry run would create the grant proposal")
			s.succeed(report, name)
			continue
		}
		if row[colNonprofitID] == "" {
			s.fail(report, name, "no nonprofit matches the row's organization id")
			continue
		}
		proposal := buildProposal(cfg, s.Logger, row)
		created, err := s.Client.CreateGrant(proposal)
		if err != nil {
			s.fail(report, name, err.Error())
			continue
		}
		s.Logger.WithFields(logrus.Fields{
			"grant_name": created.Name,
			"grant_id":   created.ID,
		}).Info("grant proposal created")
		s.succeed(report, name)
	}
	return s.finish(report)
}

// UpdateStagesFromCSV moves grants already in Temelio onto the pipeline
// stage their CSV row names. Grants are joined to rows by grant name.
func (s *Service) UpdateStagesFromCSV(path string, dryRun bool) (*store.MigrationRun, error) {
	cfg := s.Client.Config
	if err := cfg.Validate(cfg.GetGrantsEndpoint, cfg.UpdateGrantEndpoint); err != nil {
		return nil, apperr.Wrap(err, apperr.ErrConfig, "")
	}
	rows, _, err := utils.ReadRows(path)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.ErrCSV, "")
	}

	report := store.NewReport(store.KindGrantsStages, path, dryRun)
	gateway.RunsStarted.WithLabelValues(report.Kind).Inc()

	byName := make(map[string]map[string]string, len(rows))
	for _, row := range rows {
		if name := strings.TrimSpace(row[ColName]); name != "" {
			byName[name] = row
		}
	}

	var grants []temelio.GrantRecord
	if dryRun {
		s.Logger.Info("dry run step: fetch the grants from temelio and join them to the csv by name")
	} else {
		grants, err = s.Client.FetchGrants()
		if err != nil {
			return nil, apperr.Wrap(err, apperr.ErrUpstream, "")
		}
	}

	for _, grant := range grants {
		row, ok := byName[grant.Name]
		if !ok {
			continue
		}
		update, ok := buildStageUpdate(cfg, grant, row)
		if !ok {
			s.fail(report, grant.Name, "stage "+row[ColStage]+" not found in pipeline "+row[ColPipeline])
			continue
		}
		if err := s.Client.UpdateGrantStage(update); err != nil {
			s.fail(report, grant.Name, err.Error())
			continue
		}
		s.Logger.WithFields(logrus.Fields{
			"grant_name": grant.Name,
			"stage":      update.Stage,
		}).Info("grant stage updated")
		s.succeed(report, grant.Name)
	}
	return s.finish(report)
}

func (s *Service) succeed(report *store.Report, entity string) {
	report.Success(entity)
	gateway.CountRow(report.Kind, true)
	if s.Redis != nil {
		s.Redis.Incr(report.Kind + ":successful_rows")
	}
}

func (s *Service) fail(report *store.Report, entity, message string) {
	s.Logger.WithFields(logrus.Fields{
		"entity": entity,
		"error":  message,
	}).Error("row failed")
	report.Failure(entity, message)
	gateway.CountRow(report.Kind, false)
	if s.Redis != nil {
		s.Redis.Incr(report.Kind + ":failed_rows")
	}
}

func (s *Service) finish(report *store.Report) (*store.MigrationRun, error) {
	s.Logger.WithFields(logrus.Fields{
		"kind":      report.Kind,
		"succeeded": len(report.Succeeded),
		"failed":    len(report.Failed),
	}).Info("processing complete")
	run, err := s.Store.Save(report)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.ErrDatabase, "unable to persist the run report")
	}
	return run, nil
}
