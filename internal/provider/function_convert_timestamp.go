package provider

import (
	"context"

	"github.com/hashicorp/terraform-plugin-framework/function"

	ldapclient "github.com/isometry/terraform-provider-adlookup/internal/ldap"
)

var _ function.Function = &ConvertTimestampFunction{}

func NewConvertTimestampFunction() function.Function {
	return &ConvertTimestampFunction{}
}

// ConvertTimestampFunction implements the convert_timestamp function.
type ConvertTimestampFunction struct{}

// Metadata returns the function name.
func (f ConvertTimestampFunction) Metadata(_ context.Context, req function.MetadataRequest, resp *function.MetadataResponse) {
	resp.Name = "convert_timestamp"
}

// Definition returns the function schema including parameters and return types.
func (f ConvertTimestampFunction) Definition(_ context.Context, req function.DefinitionRequest, resp *function.DefinitionResponse) {
	resp.Definition = function.Definition{
		Summary: "Render an Active Directory timestamp",
		Description: "Converts a generalized-time value (e.g. 20240131235959.0Z) or a FILETIME tick count " +
			"(e.g. lastLogonTimestamp) to MM/DD/YYYY HH:MM:SS in UTC. Zero and the maximum tick count render as Never. " +
			"Values that are neither are returned unchanged.",
		MarkdownDescription: "Converts an Active Directory timestamp to `MM/DD/YYYY HH:MM:SS` (UTC).\n\n" +
			"- Generalized time such as `20240131235959.0Z`\n" +
			"- FILETIME tick counts such as `lastLogonTimestamp`; `0` and `9223372036854775807` become `Never`\n" +
			"- Anything else is returned unchanged",
		Parameters: []function.Parameter{
			function.StringParameter{
				Name:        "timestamp",
				Description: "Raw attribute value.",
			},
		},
		Return: function.StringReturn{},
	}
}

// Run implements the function logic.
func (f ConvertTimestampFunction) Run(ctx context.Context, req function.RunRequest, resp *function.RunResponse) {
	var raw string

	resp.Error = function.ConcatFuncErrors(resp.Error, req.Arguments.Get(ctx, &raw))
	if resp.Error != nil {
		return
	}

	resp.Error = function.ConcatFuncErrors(resp.Error, resp.Result.Set(ctx, ldapclient.ConvertTimestamp(raw)))
}
