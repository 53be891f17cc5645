// Package schemas embeds the JSON Schemas for campaign descriptor and
// sampling-scheme documents.
package schemas

import _ "embed"

//go:embed campaign.schema.json
var CampaignSchemaJSON string

//go:embed scheme.schema.json
var SchemeSchemaJSON string
