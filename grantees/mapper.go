package grantees

import (
	"strings"

	"github.com/lifund/temigrate/temelio"
)

// CSV columns of the Affinity "all orgs" exports.
const (
	ColName             = "Name"
	ColPrimaryLead      = "LIF Primary Lead Name"
	ColWebsite          = "Website"
	ColMission          = "Mission"
	ColOrganizationID   = "Organization Id"
	ColTags             = "Tags"
	ColAreaIntervention = "Area of intervention"
	ColOrgType          = "Org type"
	ColOperateIn        = "Operate in"
	ColEngagementLevel  = "Level of engagement"
	ColPortfolio        = "Portfolio"
	ColRegion           = "Region"
	ColGranteeStatus    = "Grantee Status"
	ColAccountingYear   = "End of Accounting Year"
	ColID               = "id"
)

// Temelio custom-field keys. The suffixed ids are fixed per tenant; they
// came out of the foundation's field setup and must match exactly.
const (
	FieldAreaIntervention = "Area of intervention-1Dl5ES7a"
	FieldOrgType          = "Org type-ngM_Rj--"
	FieldOperateIn        = "Operate in-h0GCmal-"
	FieldEngagementLevel  = "Level of Engagement-tuTYKb5E"
	FieldAffinityID       = "Affinity ID-4jS8olxc"
	FieldPortfolio        = "Portfolio-WgSIOWIz"
	FieldRegion           = "Region-ObIfV84Z"
	FieldStatusManual     = "Status (manual)-Jj5hsNIX"
	FieldAccountingYear   = "End of Accounting Year-XWqSCPwH"
	FieldContactPerson    = "lif_contact_person"
	FieldDescription      = "description"
	FieldWebsite          = "website"
)

// FailedID marks a row whose nonprofit could not be created.
const FailedID = "Failed"

// GranteeTag is the organization tag every migrated grantee carries.
const GranteeTag = "Grantee (all time)"

// requiredColumns must be non-empty for a create row to be sent.
var requiredColumns = []string{ColName, ColPrimaryLead}

// missingColumns returns the required columns the row doesn't fill.
func missingColumns(row map[string]string) []string {
	var missing []string
	for _, column := range requiredColumns {
		if strings.TrimSpace(row[column]) == "" {
			missing = append(missing, column)
		}
	}
	return missing
}

// buildCreateRequest maps an export row onto the create-nonprofit payload.
func buildCreateRequest(row map[string]string) temelio.NonprofitRequest {
	return temelio.NonprofitRequest{
		LegalName:          row[ColName],
		PrimaryContactName: row[ColPrimaryLead],
	}
}

// buildCustomFields maps an export row onto the tenant's custom fields.
func buildCustomFields(row map[string]string) map[string]string {
	return map[string]string{
		FieldAreaIntervention: row[ColAreaIntervention],
		FieldOrgType:          row[ColOrgType],
		FieldOperateIn:        row[ColOperateIn],
		FieldDescription:      row[ColMission],
		FieldEngagementLevel:  row[ColEngagementLevel],
		FieldAffinityID:       row[ColOrganizationID],
		FieldWebsite:          row[ColWebsite],
		FieldPortfolio:        row[ColPortfolio],
		FieldRegion:           row[ColRegion],
		FieldStatusManual:     row[ColGranteeStatus],
		FieldContactPerson:    row[ColPrimaryLead],
		FieldAccountingYear:   row[ColAccountingYear],
	}
}

// contactAliases fixes the names the Affinity export mangled.
var contactAliases = map[string]string{
	"Amolo Ngweno":            "Amolo Ng'weno",
	"Seth Aaron Gross Andrew": "Seth Andrews",
}

// normalizeContact trims a contact name and resolves known aliases.
func normalizeContact(name string) string {
	name = strings.TrimSpace(name)
	if alias, ok := contactAliases[name]; ok {
		return alias
	}
	return name
}

// resolvePOC maps a contact name to a Temelio user id, skipping blanks and
// the export's N/A marker.
func resolvePOC(users map[string]string, name string) *string {
	name = normalizeContact(name)
	if name == "" || name == "N/A" {
		return nil
	}
	if id, ok := users[name]; ok && id != "" {
		return &id
	}
	return nil
}

// buildUpdate assembles the profile update for one row.
func buildUpdate(users map[string]string, row map[string]string) temelio.NonprofitUpdate {
	customFields := buildCustomFields(row)
	return temelio.NonprofitUpdate{
		Website:      row[ColWebsite],
		Description:  row[ColMission],
		CustomFields: customFields,
		FoundationPOC: &temelio.FoundationPOC{
			ID: resolvePOC(users, row[ColPrimaryLead]),
		},
		InteractionAdditionalInfo: &temelio.InteractionAdditionalInfo{
			OrganizationTags: []string{GranteeTag},
		},
	}
}

// buildExtraOrgUpdate tags a newly imported non-grantee organization.
func buildExtraOrgUpdate(row map[string]string) temelio.NonprofitUpdate {
	return temelio.NonprofitUpdate{
		Website: row[ColWebsite],
		CustomFields: map[string]string{
			FieldAffinityID: row[ColOrganizationID],
		},
		InteractionAdditionalInfo: &temelio.InteractionAdditionalInfo{
			OrganizationTags: []string{row[ColTags]},
		},
	}
}
