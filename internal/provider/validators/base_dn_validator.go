package validators

import (
	"context"
	"fmt"

	"github.com/hashicorp/terraform-plugin-framework/schema/validator"

	ldapclient "github.com/isometry/terraform-provider-adlookup/internal/ldap"
)

// Ensure the implementation satisfies the expected interface.
var _ validator.String = baseDNValidator{}

// baseDNValidator validates that a string is a Distinguished Name naming a
// domain, i.e. it carries at least one DC component.
type baseDNValidator struct{}

// Description describes the validation in plain text.
func (v baseDNValidator) Description(_ context.Context) string {
	return "value must be a Distinguished Name containing at least one DC component"
}

// MarkdownDescription describes the validation in Markdown.
func (v baseDNValidator) MarkdownDescription(ctx context.Context) string {
	return v.Description(ctx)
}

// ValidateString performs the validation.
func (v baseDNValidator) ValidateString(ctx context.Context, request validator.StringRequest, response *validator.StringResponse) {
	if request.ConfigValue.IsNull() || request.ConfigValue.IsUnknown() {
		return
	}

	value := request.ConfigValue.ValueString()
	if err := ldapclient.ValidateBaseDN(value); err != nil {
		response.Diagnostics.AddAttributeError(
			request.Path,
			"Invalid Base DN",
			fmt.Sprintf("The value %q is not a valid base DN: %s", value, err.Error()),
		)
	}
}

// IsValidBaseDN returns a validator which ensures that any configured
// attribute value is a Distinguished Name rooted in a domain.
//
// Unknown values and null values are skipped from validation.
func IsValidBaseDN() validator.String {
	return baseDNValidator{}
}
