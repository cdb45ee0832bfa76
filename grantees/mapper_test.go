package grantees

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMissingColumns(t *testing.T) {
	row := map[string]string{ColName: "Acme Water", ColPrimaryLead: " "}
	missing := missingColumns(row)
	require.Len(t, missing, 1)
	assert.Equal(t, ColPrimaryLead, missing[0])

	row[ColPrimaryLead] = "Jane Doe"
	assert.Empty(t, missingColumns(row))
}

func TestNormalizeContact(t *testing.T) {
	assert.Equal(t, "Amolo Ng'weno", normalizeContact(" Amolo Ngweno "))
	assert.Equal(t, "Seth Andrews", normalizeContact("Seth Aaron Gross Andrew"))
	assert.Equal(t, "Jane Doe", normalizeContact("Jane Doe"))
}

func TestResolvePOC(t *testing.T) {
	users := map[string]string{"Jane Doe": "u-1", "Amolo Ng'weno": "u-2"}

	id := resolvePOC(users, "Jane Doe")
	require.NotNil(t, id)
	assert.Equal(t, "u-1", *id)

	// aliases resolve through the corrected name
	id = resolvePOC(users, "Amolo Ngweno")
	require.NotNil(t, id)
	assert.Equal(t, "u-2", *id)

	assert.Nil(t, resolvePOC(users, "N/A"))
	assert.Nil(t, resolvePOC(users, ""))
	assert.Nil(t, resolvePOC(users, "Nobody Known"))
}

func TestBuildUpdate(t *testing.T) {
	users := map[string]string{"Jane Doe": "u-1"}
	row := map[string]string{
		ColName:           "Acme Water",
		ColPrimaryLead:    "Jane Doe",
		ColWebsite:        "https://acme.example",
		ColMission:        "clean water",
		ColOrganizationID: "org-9",
		ColPortfolio:      "WASH",
	}

	update := buildUpdate(users, row)
	assert.Equal(t, "https://acme.example", update.Website)
	assert.Equal(t, "clean water", update.Description)
	assert.Equal(t, "org-9", update.CustomFields[FieldAffinityID])
	assert.Equal(t, "WASH", update.CustomFields[FieldPortfolio])
	require.NotNil(t, update.FoundationPOC)
	require.NotNil(t, update.FoundationPOC.ID)
	assert.Equal(t, "u-1", *update.FoundationPOC.ID)
	require.NotNil(t, update.InteractionAdditionalInfo)
	assert.Equal(t, []string{GranteeTag}, update.InteractionAdditionalInfo.OrganizationTags)
}

func TestBuildExtraOrgUpdate(t *testing.T) {
	row := map[string]string{
		ColName:           "Side Org",
		ColWebsite:        "https://side.example",
		ColOrganizationID: "org-42",
		ColTags:           "Co-funder",
	}

	update := buildExtraOrgUpdate(row)
	assert.Equal(t, "org-42", update.CustomFields[FieldAffinityID])
	require.NotNil(t, update.InteractionAdditionalInfo)
	assert.Equal(t, []string{"Co-funder"}, update.InteractionAdditionalInfo.OrganizationTags)
}
