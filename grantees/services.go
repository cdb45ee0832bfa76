package grantees

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-redis/redis/v7"
	"github.com/sirupsen/logrus"

	gateway "github.com/lifund/temigrate/apigateway"
	"github.com/lifund/temigrate/apperr"
	"github.com/lifund/temigrate/store"
	"github.com/lifund/temigrate/temelio"
	"github.com/lifund/temigrate/utils"
)

var validate = validator.New()

// Service runs the grantee migrations. Field members are initialized in
// the main package.
type Service struct {
	Client *temelio.Client
	Store  *store.Service
	Redis  *redis.Client
	Logger *logrus.Logger
}

// DefaultBatchSize is how many organizations one import batch carries.
const DefaultBatchSize = 100

// CreateFromCSV creates a nonprofit per CSV row and writes the returned
// ids back into the file's id column. Rows missing required columns fail
// without stopping the run.
func (s *Service) CreateFromCSV(path string, dryRun bool) (*store.MigrationRun, error) {
	if err := s.Client.Config.Validate(s.Client.Config.CreateGranteeEndpoint); err != nil {
		return nil, apperr.Wrap(err, apperr.ErrConfig, "")
	}
	rows, header, err := utils.ReadRows(path)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.ErrCSV, "")
	}
	if !hasColumn(header, ColID) {
		header = append(header, ColID)
	}

	report := store.NewReport(store.KindGranteesCreate, path, dryRun)
	gateway.RunsStarted.WithLabelValues(report.Kind).Inc()

	for _, row := range rows {
		if missing := missingColumns(row); len(missing) > 0 {
			row[ColID] = FailedID
			s.fail(report, row[ColName], fmt.Sprintf("missing fields: %s", strings.Join(missing, ", ")))
			continue
		}
		request := buildCreateRequest(row)
		if err := validate.Struct(request); err != nil {
			row[ColID] = FailedID
			s.fail(report, row[ColName], err.Error())
			continue
		}
		if dryRun {
			s.Logger.WithField("org_name", request.LegalName).Info("dry run would create the nonprofit")
			s.succeed(report, request.LegalName)
			continue
		}
		nonprofitID, err := s.Client.CreateNonprofit(request)
		if err != nil {
			row[ColID] = FailedID
			s.fail(report, row[ColName], err.Error())
			continue
		}
		row[ColID] = nonprofitID
		s.succeed(report, request.LegalName)
	}

	if !dryRun {
		// the ids written back are what the update migration keys on
		if err := utils.WriteRows(path, rows, header); err != nil {
			return nil, apperr.Wrap(err, apperr.ErrInternal, "unable to write the ids back")
		}
	}
	return s.finish(report)
}

// UpdateFromCSV pushes custom fields, the foundation POC and the grantee
// tag onto nonprofits already created by CreateFromCSV.
func (s *Service) UpdateFromCSV(path string, dryRun bool) (*store.MigrationRun, error) {
	if err := s.Client.Config.Validate(s.Client.Config.UpdateGranteeEndpoint); err != nil {
		return nil, apperr.Wrap(err, apperr.ErrConfig, "")
	}
	rows, _, err := utils.ReadRows(path)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.ErrCSV, "")
	}

	report := store.NewReport(store.KindGranteesUpdate, path, dryRun)
	gateway.RunsStarted.WithLabelValues(report.Kind).Inc()

	for _, row := range rows {
		nonprofitID := strings.TrimSpace(row[ColID])
		if nonprofitID == "" || nonprofitID == FailedID {
			s.fail(report, row[ColName], "row has no usable nonprofit id")
			continue
		}
		update := buildUpdate(s.Client.Config.Users, row)
		if dryRun {
			s.Logger.WithField("nonprofit_id", nonprofitID).Info("dry run would update the custom fields for the nonprofit")
			s.succeed(report, row[ColName])
			continue
		}
		if err := s.Client.UpdateNonprofit(nonprofitID, update); err != nil {
			s.fail(report, row[ColName], err.Error())
			continue
		}
		s.Logger.WithField("nonprofit_id", nonprofitID).Info("successfully updated custom fields for nonprofit")
		s.succeed(report, row[ColName])
	}
	return s.finish(report)
}

// ImportExtras creates the organizations from the non-grantee export that
// Temelio doesn't know yet, in batches, tagging each with its export tag.
func (s *Service) ImportExtras(path string, batchSize int, dryRun bool) (*store.MigrationRun, error) {
	cfg := s.Client.Config
	if err := cfg.Validate(cfg.GetContactsEndpoint, cfg.CreateGranteeEndpoint, cfg.UpdateGranteeEndpoint); err != nil {
		return nil, apperr.Wrap(err, apperr.ErrConfig, "")
	}
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	rows, _, err := utils.ReadRows(path)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.ErrCSV, "")
	}

	report := store.NewReport(store.KindOrgsImport, path, dryRun)
	gateway.RunsStarted.WithLabelValues(report.Kind).Inc()

	existing := map[string]bool{}
	if dryRun {
		s.Logger.Info("dry run step: get the list of the existing nonprofits and index them by affinity id")
	} else {
		records, err := s.Client.FetchNonprofits()
		if err != nil {
			return nil, apperr.Wrap(err, apperr.ErrUpstream, "")
		}
		for _, record := range records {
			existing[record.CustomFields[FieldAffinityID]] = true
		}
	}

	totalBatches := (len(rows) + batchSize - 1) / batchSize
	s.Logger.WithFields(logrus.Fields{
		"rows":       len(rows),
		"batches":    totalBatches,
		"batch_size": batchSize,
	}).Info("processing organizations import")

	for i := 0; i < len(rows); i += batchSize {
		end := i + batchSize
		if end > len(rows) {
			end = len(rows)
		}
		s.Logger.WithFields(logrus.Fields{
			"batch": i/batchSize + 1,
			"total": totalBatches,
		}).Info("processing batch")
		s.processBatch(report, rows[i:end], existing, dryRun)
	}
	return s.finish(report)
}

func (s *Service) processBatch(report *store.Report, batch []map[string]string, existing map[string]bool, dryRun bool) {
	for _, row := range batch {
		orgID := row[ColOrganizationID]
		if existing[orgID] {
			s.Logger.WithField("org_id", orgID).Info("organization already exists, skipping creation")
			s.succeed(report, row[ColName])
			continue
		}
		if dryRun {
			s.Logger.WithField("org_name", row[ColName]).Info("dry run would create and tag the organization")
			s.succeed(report, row[ColName])
			continue
		}
		nonprofitID, err := s.Client.CreateNonprofit(temelio.NonprofitRequest{LegalName: row[ColName]})
		if err != nil {
			s.fail(report, row[ColName], err.Error())
			continue
		}
		if err := s.Client.UpdateNonprofit(nonprofitID, buildExtraOrgUpdate(row)); err != nil {
			s.fail(report, row[ColName], fmt.Sprintf("created as %s but tagging failed: %s", nonprofitID, err.Error()))
			continue
		}
		s.succeed(report, row[ColName])
	}
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

func hasColumn(header []string, name string) bool {
	for _, column := range header {
		if column == name {
			return true
		}
	}
	return false
}
