package temelio

// Struct representations of the Temelio payloads the migration jobs send
// and the envelopes they read back. Fields the importer never fills are
// typed `any` so they serialize as explicit nulls, which is what the API
// expects on the grant-proposal surface.

// NonprofitRequest creates a grantee organization.
type NonprofitRequest struct {
	LegalName          string `json:"legalName" binding:"required" validate:"required"`
	PrimaryContactName string `json:"primaryContactName,omitempty"`
}

// NonprofitCreated is the create response; only the id matters to us.
type NonprofitCreated struct {
	ID string `json:"id"`
}

type FoundationPOC struct {
	ID *string `json:"id"`
}

type InteractionAdditionalInfo struct {
	QBVendorDetails  any      `json:"qbVendorDetails"`
	OrganizationTags []string `json:"organizationTags"`
}

// NonprofitUpdate patches a grantee's profile and custom fields. The API
// answers 204 on success.
type NonprofitUpdate struct {
	Website                   string                     `json:"website,omitempty"`
	Description               string                     `json:"description,omitempty"`
	CustomFields              map[string]string          `json:"customFields"`
	FoundationPOC             *FoundationPOC             `json:"foundationPOC,omitempty"`
	InteractionAdditionalInfo *InteractionAdditionalInfo `json:"interactionAdditionalInfo,omitempty"`
}

// SearchRequest pages through contacts or grants. The migrations pull
// everything in one page, the way the exports were sized.
type SearchRequest struct {
	PageSize int `json:"pageSize"`
}

// NonprofitRecord is one contact row from the contacts search.
type NonprofitRecord struct {
	NonprofitID  string            `json:"nonprofitId"`
	CustomFields map[string]string `json:"customFields"`
}

type ContactsResponse struct {
	SearchResponse struct {
		Responses []NonprofitRecord `json:"responses"`
	} `json:"searchResponse"`
}

// GrantRecord is one grant row from the grants search.
type GrantRecord struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Stage       string `json:"stage"`
	StageID     string `json:"stageId"`
	NonprofitID string `json:"nonprofitId"`
}

type GrantsResponse struct {
	Responses []GrantRecord `json:"responses"`
}

// PaymentAdditionalInfo rides along each grant payment.
type PaymentAdditionalInfo struct {
	AdditionalFields map[string]string `json:"additionalFields"`
	BudgetCategory   string            `json:"budgetCategory"`
}

// GrantPayment is one disbursement attached to a grant proposal.
type GrantPayment struct {
	Active         bool                  `json:"active"`
	AdditionalInfo PaymentAdditionalInfo `json:"additionalInfo"`
	Amount         *float64              `json:"amount"`
	Assignee       any                   `json:"assignee"`
	AssigneeID     string                `json:"assigneeId"`
	Comments       any                   `json:"comments"`
	DueDate        *string               `json:"dueDate"`
	NonprofitID    string                `json:"nonprofitId"`
	Status         string                `json:"status"`
	Type           string                `json:"type"`
	Contingencies  any                   `json:"contingencies"`
	Created        any                   `json:"created"`
	CreatedBy      any                   `json:"createdBy"`
	Foundation     any                   `json:"foundation"`
	HasScenario    any                   `json:"hasScenario"`
	ID             any                   `json:"id"`
	LinkedEntities any                   `json:"linkedEntities"`
	Scenarios      any                   `json:"scenarios"`
	SentDate       any                   `json:"sentDate"`
	SourceID       any                   `json:"sourceId"`
	Submission     any                   `json:"submission"`
	Updated        any                   `json:"updated"`
	UpdatedBy      any                   `json:"updatedBy"`
}

// Payment statuses and types used by the importer.
const (
	PaymentStatusSent       = "SENT"
	PaymentStatusNotStarted = "NOT_STARTED"
	PaymentTypeACH          = "ACH"
)

type GrantRefereeInfo struct {
	GrantRefereeRequestDetails []any `json:"grantRefereeRequestDetails"`
}

type SubmissionAdditionalInfo struct {
	Entities          []any            `json:"entities"`
	GrantRefereeInfo  GrantRefereeInfo `json:"grantRefereeInfo"`
	CustomGrantFields any              `json:"customGrantFields"`
	CommentsDisabled  any              `json:"commentsDisabled"`
	CustomGrantTypeID *string          `json:"customGrantTypeId"`
}

type Duration struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type FirstFormDetails struct {
	FormTitle string `json:"formTitle"`
	Internal  bool   `json:"internal"`
}

type Currency struct {
	Locale string `json:"locale"`
	Code   string `json:"code"`
}

// Foundation identifies the tenant a proposal belongs to.
type Foundation struct {
	ID                   string   `json:"id"`
	DisplayName          string   `json:"displayName"`
	EIN                  string   `json:"ein"`
	Subdomain            string   `json:"subdomain"`
	Created              string   `json:"created,omitempty"`
	VitallyID            string   `json:"vitallyId"`
	AccountType          string   `json:"accountType"`
	LogoFile             any      `json:"logoFile"`
	GranteeMFAEnabled    bool     `json:"granteeMFAEnabled"`
	FoundationMFAEnabled bool     `json:"foundationMFAEnabled"`
	Currency             Currency `json:"currency"`
}

type GrantAmount struct {
	MinAmount *float64 `json:"minAmount"`
}

type Form struct {
	Elements         []any  `json:"elements"`
	Title            string `json:"title"`
	SubmitButtonText string `json:"submitButtonText"`
}

// GrantProposalSubmission is the big historical-grant payload. Most fields
// are carried as nulls; only the handful the importer computes vary.
type GrantProposalSubmission struct {
	AdditionalInfo            SubmissionAdditionalInfo `json:"additionalInfo"`
	Archived                  any                      `json:"archived"`
	AssigneeToTaskTemplates   any                      `json:"assigneeToTaskTemplates"`
	AssigneesToTask           any                      `json:"assigneesToTask"`
	AwardedAmount             float64                  `json:"awardedAmount"`
	AwardedDate               *string                  `json:"awardedDate"`
	ColoredTags               []any                    `json:"coloredTags"`
	CustomEmailTemplate       any                      `json:"customEmailTemplate"`
	CustomGrantType           any                      `json:"customGrantType"`
	CustomProgramAreas        []any                    `json:"customProgramAreas"`
	Description               string                   `json:"description"`
	DisableStageChange        bool                     `json:"disableStageChange"`
	Duration                  Duration                 `json:"duration"`
	EntityType                any                      `json:"entityType"`
	ExternalAssigneesToTask   any                      `json:"externalAssigneesToTask"`
	FirstFormDetails          FirstFormDetails         `json:"firstFormDetails"`
	FormProposal              any                      `json:"formProposal"`
	Foundation                Foundation               `json:"foundation"`
	FoundationID              string                   `json:"foundationId"`
	FoundationTaskAssignees   any                      `json:"foundationTaskAssignees"`
	FoundationWatchers        any                      `json:"foundationWatchers"`
	GrantAmount               GrantAmount              `json:"grantAmount"`
	GrantFormProposal         string                   `json:"grantFormProposal"`
	HasPendingPayments        any                      `json:"hasPendingPayments"`
	HasPendingReports         any                      `json:"hasPendingReports"`
	ID                        any                      `json:"id"`
	MultiForm                 any                      `json:"multiForm"`
	Name                      string                   `json:"name"`
	Nonprofit                 any                      `json:"nonprofit"`
	NonprofitID               string                   `json:"nonprofitId"`
	NonprofitStage            any                      `json:"nonprofitStage"`
	NonprofitTaskAssignees    any                      `json:"nonprofitTaskAssignees"`
	OrganizationName          any                      `json:"organizationName"`
	ParentGrant               any                      `json:"parentGrant"`
	ParentGrantID             any                      `json:"parentGrantId"`
	ParentNonprofit           any                      `json:"parentNonprofit"`
	ParentNonprofitID         any                      `json:"parentNonprofitId"`
	PaymentSummary            any                      `json:"paymentSummary"`
	PipelineID                *string                  `json:"pipelineId"`
	PipelineInfo              any                      `json:"pipelineInfo"`
	ProgramAreas              []string                 `json:"programAreas"`
	Purpose                   string                   `json:"purpose"`
	ReadyForNextStage         any                      `json:"readyForNextStage"`
	RecipientEmail            any                      `json:"recipientEmail"`
	Responses                 []any                    `json:"responses"`
	Scenarios                 any                      `json:"scenarios"`
	SendProposalCreatedEmail  bool                     `json:"sendProposalCreatedEmail"`
	Stage                     string                   `json:"stage"`
	SubmissionBindings        any                      `json:"submissionBindings"`
	SubmissionIndividual      any                      `json:"submissionIndividual"`
	Submittable               any                      `json:"submittable"`
	Submitted                 any                      `json:"submitted"`
	Tags                      []any                    `json:"tags"`
	TaskAssignees             any                      `json:"taskAssignees"`
	TaskDeadline              any                      `json:"taskDeadline"`
	TaskIDs                   any                      `json:"taskIds"`
	TaskTemplateResponses     any                      `json:"taskTemplateResponses"`
	UpdatedByFoundationUser   any                      `json:"updatedByFoundationUser"`
	UpdatedByNonprofitUser    any                      `json:"updatedByNonprofitUser"`
	Watchers                  []any                    `json:"watchers"`
	Status                    string                   `json:"status"`
	EligibilityEnabled        bool                     `json:"eligibilityEnabled"`
	Eligibility               any                      `json:"eligibility"`
	ScoringCriteria           any                      `json:"scoringCriteria"`
	Visibility                string                   `json:"visibility"`
	Form                      Form                     `json:"form"`
	DraftComponent            any                      `json:"draftComponent"`
	Published                 any                      `json:"published"`
}

// GrantProposal is the create-grant request envelope.
type GrantProposal struct {
	FormProposalID          any                     `json:"formProposalId"`
	FoundationID            string                  `json:"foundationId"`
	GrantPayments           []GrantPayment          `json:"grantPayments"`
	GrantProposalSubmission GrantProposalSubmission `json:"grantProposalSubmission"`
}

// GrantCreated is the slice of the create response we report on.
type GrantCreated struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// GrantStageUpdate moves an existing grant to a pipeline stage. The odd
// StageId casing is what the endpoint accepts.
type GrantStageUpdate struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	NonprofitID string  `json:"nonprofitId"`
	PipelineID  *string `json:"pipelineId"`
	StageID     *string `json:"StageId"`
	Stage       string  `json:"stage"`
}
