package provider

import (
	"context"

	"github.com/hashicorp/terraform-plugin-framework/function"
	"github.com/hashicorp/terraform-plugin-framework/types"

	ldapclient "github.com/isometry/terraform-provider-adlookup/internal/ldap"
)

var _ function.Function = &AccountStatusFunction{}

func NewAccountStatusFunction() function.Function {
	return &AccountStatusFunction{}
}

// AccountStatusFunction implements the account_status function.
type AccountStatusFunction struct{}

// Metadata returns the function name.
func (f AccountStatusFunction) Metadata(_ context.Context, req function.MetadataRequest, resp *function.MetadataResponse) {
	resp.Name = "account_status"
}

// Definition returns the function schema including parameters and return types.
func (f AccountStatusFunction) Definition(_ context.Context, req function.DefinitionRequest, resp *function.DefinitionResponse) {
	resp.Definition = function.Definition{
		Summary: "Describe a userAccountControl value",
		Description: "Returns the status label for a userAccountControl value, such as \"Enabled, password never expires\" for 66048. " +
			"Unrecognised values return null, matching the attribute being absent from a looked-up object.",
		MarkdownDescription: "Returns the status label for a `userAccountControl` value, such as " +
			"`Enabled, password never expires` for `66048`. Unrecognised values return `null`, " +
			"matching the attribute being absent from `adlookup_object`.",
		Parameters: []function.Parameter{
			function.StringParameter{
				Name:        "user_account_control",
				Description: "Decimal userAccountControl value.",
			},
		},
		Return: function.StringReturn{},
	}
}

// Run implements the function logic.
func (f AccountStatusFunction) Run(ctx context.Context, req function.RunRequest, resp *function.RunResponse) {
	var raw string

	resp.Error = function.ConcatFuncErrors(resp.Error, req.Arguments.Get(ctx, &raw))
	if resp.Error != nil {
		return
	}

	label, ok := ldapclient.AccountStatus(raw)
	if !ok {
		resp.Error = function.ConcatFuncErrors(resp.Error, resp.Result.Set(ctx, types.StringNull()))
		return
	}

	resp.Error = function.ConcatFuncErrors(resp.Error, resp.Result.Set(ctx, types.StringValue(label)))
}
