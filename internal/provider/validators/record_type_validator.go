package validators

import (
	"context"
	"fmt"

	"github.com/hashicorp/terraform-plugin-framework/schema/validator"

	ldapclient "github.com/isometry/terraform-provider-adlookup/internal/ldap"
)

// Ensure the implementation satisfies the expected interface.
var _ validator.String = recordTypeValidator{}

// recordTypeValidator validates that a string names a lookup record type,
// ignoring case and surrounding whitespace.
type recordTypeValidator struct{}

// Description describes the validation in plain text.
func (v recordTypeValidator) Description(_ context.Context) string {
	return "value must be one of: user, computer, cn (case-insensitive)"
}

// MarkdownDescription describes the validation in Markdown.
func (v recordTypeValidator) MarkdownDescription(_ context.Context) string {
	return "value must be one of: `user`, `computer`, `cn` (case-insensitive)"
}

// ValidateString performs the validation.
func (v recordTypeValidator) ValidateString(ctx context.Context, request validator.StringRequest, response *validator.StringResponse) {
	if request.ConfigValue.IsNull() || request.ConfigValue.IsUnknown() {
		return
	}

	value := request.ConfigValue.ValueString()
	if _, err := ldapclient.ParseRecordType(value); err != nil {
		response.Diagnostics.AddAttributeError(
			request.Path,
			"Invalid Record Type",
			fmt.Sprintf("The value %q is not valid. Must be one of: user, computer, cn (case-insensitive)", value),
		)
	}
}

// IsRecordType returns a validator which ensures that any configured
// attribute value names a record type: "user", or "computer" (alias "cn").
//
// Unknown values and null values are skipped from validation.
func IsRecordType() validator.String {
	return recordTypeValidator{}
}
