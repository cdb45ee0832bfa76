package proposals

import (
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/lifund/temigrate/temelio"
)

// CSV columns of the grant-opportunities export.
const (
	ColName               = "Name"
	ColSupportType        = "Support type"
	ColCloseDate          = "Close Date (decision made)"
	ColDisbursementDate   = "Disbursement date"
	ColEstimatedDisbDate  = "Estimated disbursement date"
	ColCalendarYear       = "LIF Calendar Year"
	ColPortfolio          = "Portfolio [Organization]"
	ColStage              = "Stage"
	ColPipeline           = "Pipeline"
	ColPrimaryLead        = "LIF Primary Lead"
	ColAmount             = "Amount"
	ColDisbursementEntity = "Disbursement Entity"
	ColOrganizationID     = "Organization Id"

	// colNonprofitID is filled in by the importer after matching the row
	// against the Temelio contacts.
	colNonprofitID = "nonprofitId"
)

// AffinityIDField is the custom field the contact match keys on.
const AffinityIDField = "Affinity ID-4jS8olxc"

const (
	paymentDisbursementEntityField = "Disbursement Entity-pTa3wGtW"
	historicalGrantsFormTitle      = "Historical Grants"
)

// approvedStages are the stages that carry an awarded amount and a
// disbursement payment.
var approvedStages = map[string]bool{
	"Active grant":         true,
	"Engagement completed": true,
}

// parseDate turns the export's m/d/Y or m/d/y dates into ISO dates.
// Unparseable values are logged and yield nil, like the rest of the
// export's dirty cells.
func parseDate(logger *logrus.Logger, value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	for _, layout := range []string{"1/2/2006", "1/2/06"} {
		if t, err := time.Parse(layout, value); err == nil {
			iso := t.Format("2006-01-02")
			return &iso
		}
	}
	logger.WithField("date", value).Info("error parsing date")
	return nil
}

// cleanAmount converts a comma-grouped amount string to a float.
func cleanAmount(logger *logrus.Logger, value string) *float64 {
	value = strings.ReplaceAll(strings.TrimSpace(value), ",", "")
	if value == "" {
		return nil
	}
	amount, err := strconv.ParseFloat(value, 64)
	if err != nil {
		logger.WithField("amount", value).Info("invalid amount format")
		return nil
	}
	return &amount
}

// normalizeSupportType fixes the export's S.A.F.E spelling.
func normalizeSupportType(value string) string {
	return strings.ReplaceAll(value, "S.A.F.E", "SAFE")
}

// annotateNonprofits matches each row's Organization Id against the
// contacts' Affinity ID custom field and stores the nonprofit id on the
// row. Unmatched rows keep an empty id.
func annotateNonprofits(rows []map[string]string, records []temelio.NonprofitRecord) {
	byAffinity := make(map[string]string, len(records))
	for _, record := range records {
		if affinity := record.CustomFields[AffinityIDField]; affinity != "" {
			byAffinity[affinity] = record.NonprofitID
		}
	}
	for _, row := range rows {
		row[colNonprofitID] = byAffinity[row[ColOrganizationID]]
	}
}

// resolveAssignee maps the lead name to a Temelio user, falling back to
// the operations account for blanks, N/A and unknown names.
func resolveAssignee(cfg temelio.Config, name string) string {
	name = strings.TrimSpace(name)
	if name != "" && name != "N/A" {
		if id, ok := cfg.Users[name]; ok && id != "" {
			return id
		}
	}
	return cfg.FallbackAssigneeID
}

// buildProposal assembles the whole historical-grant payload for one row.
func buildProposal(cfg temelio.Config, logger *logrus.Logger, row map[string]string) temelio.GrantProposal {
	stage := row[ColStage]
	approved := approvedStages[stage]

	awardedDate := parseDate(logger, row[ColCloseDate])
	amount := cleanAmount(logger, row[ColAmount])

	rawDueDate := row[ColDisbursementDate]
	if strings.TrimSpace(rawDueDate) == "" {
		rawDueDate = row[ColEstimatedDisbDate]
	}
	dueDate := parseDate(logger, rawDueDate)

	status := temelio.PaymentStatusNotStarted
	if strings.TrimSpace(row[ColDisbursementDate]) != "" {
		status = temelio.PaymentStatusSent
	}

	assigneeID := resolveAssignee(cfg, row[ColPrimaryLead])

	var customGrantTypeID *string
	if id, ok := cfg.SupportTypes[normalizeSupportType(row[ColSupportType])]; ok && id != "" {
		customGrantTypeID = &id
	}

	programAreas := []string{}
	if id, ok := cfg.ProgramAreas[row[ColPortfolio]]; ok && id != "" {
		programAreas = append(programAreas, id)
	}

	var payments []temelio.GrantPayment
	if approved {
		payments = []temelio.GrantPayment{{
			Active: true,
			AdditionalInfo: temelio.PaymentAdditionalInfo{
				AdditionalFields: map[string]string{
					paymentDisbursementEntityField: row[ColDisbursementEntity],
				},
				BudgetCategory: row[ColPortfolio],
			},
			Amount:      amount,
			AssigneeID:  assigneeID,
			DueDate:     dueDate,
			NonprofitID: row[colNonprofitID],
			Status:      status,
			Type:        temelio.PaymentTypeACH,
		}}
	}

	awardedAmount := 0.0
	if approved && amount != nil {
		awardedAmount = *amount
	}

	year := strings.TrimSpace(row[ColCalendarYear])

	submission := temelio.GrantProposalSubmission{
		AdditionalInfo: temelio.SubmissionAdditionalInfo{
			Entities:          []any{},
			GrantRefereeInfo:  temelio.GrantRefereeInfo{GrantRefereeRequestDetails: []any{}},
			CustomGrantTypeID: customGrantTypeID,
		},
		AwardedAmount:      awardedAmount,
		AwardedDate:        awardedDate,
		ColoredTags:        []any{},
		CustomProgramAreas: []any{},
		DisableStageChange: true,
		Duration: temelio.Duration{
			Start: year + "-01-01",
			End:   year + "-12-31",
		},
		FirstFormDetails: temelio.FirstFormDetails{
			FormTitle: historicalGrantsFormTitle,
			Internal:  false,
		},
		Foundation: temelio.Foundation{
			ID:          cfg.FoundationID,
			DisplayName: cfg.FoundationName,
			EIN:         cfg.FoundationEIN,
			Subdomain:   cfg.FoundationSubdomain,
			AccountType: "CLIENT",
			Currency:    temelio.Currency{Locale: "en-US", Code: "USD"},
		},
		FoundationID:             cfg.FoundationID,
		GrantAmount:              temelio.GrantAmount{MinAmount: cleanAmount(logger, row[ColAmount])},
		GrantFormProposal:        cfg.GrantFormProposalID,
		Name:                     row[ColName],
		NonprofitID:              row[colNonprofitID],
		PipelineID:               cfg.PipelineID(row[ColPipeline]),
		ProgramAreas:             programAreas,
		Responses:                []any{},
		SendProposalCreatedEmail: false,
		Stage:                    stage,
		Tags:                     []any{},
		Watchers:                 []any{},
		Status:                   "PUBLISHED",
		Visibility:               "PRIVATE",
		Form: temelio.Form{
			Elements:         []any{},
			SubmitButtonText: "Submit",
		},
	}

	return temelio.GrantProposal{
		FoundationID:            cfg.FoundationID,
		GrantPayments:           payments,
		GrantProposalSubmission: submission,
	}
}

// buildStageUpdate assembles the stage move for a grant matched by name.
func buildStageUpdate(cfg temelio.Config, grant temelio.GrantRecord, row map[string]string) (temelio.GrantStageUpdate, bool) {
	stageID, ok := cfg.StageIDFor(row[ColPipeline], row[ColStage])
	if !ok {
		return temelio.GrantStageUpdate{}, false
	}
	return temelio.GrantStageUpdate{
		ID:          grant.ID,
		Name:        grant.Name,
		NonprofitID: grant.NonprofitID,
		PipelineID:  cfg.PipelineID(row[ColPipeline]),
		StageID:     &stageID,
		Stage:       row[ColStage],
	}, true
}
