package validators

import (
	"context"
	"fmt"

	"github.com/hashicorp/terraform-plugin-framework/schema/validator"

	ldapclient "github.com/isometry/terraform-provider-adlookup/internal/ldap"
)

var _ validator.String = ldapHostValidator{}

// ldapHostValidator validates a forest host: a bare hostname, host:port, or
// an ldap:// or ldaps:// URL.
type ldapHostValidator struct{}

func (v ldapHostValidator) Description(_ context.Context) string {
	return "value must be a hostname, host:port, or ldap:// or ldaps:// URL"
}

func (v ldapHostValidator) MarkdownDescription(_ context.Context) string {
	return "value must be a hostname, `host:port`, or `ldap://` or `ldaps://` URL"
}

func (v ldapHostValidator) ValidateString(ctx context.Context, request validator.StringRequest, response *validator.StringResponse) {
	if request.ConfigValue.IsNull() || request.ConfigValue.IsUnknown() {
		return
	}

	value := request.ConfigValue.ValueString()
	if _, err := ldapclient.ParseLDAPURL(value); err != nil {
		response.Diagnostics.AddAttributeError(
			request.Path,
			"Invalid LDAP Host",
			fmt.Sprintf("The value %q is not a valid LDAP host: %s", value, err.Error()),
		)
	}
}

// IsLDAPHost returns a validator which ensures that any configured attribute
// value can be dialled as a directory server.
//
// Unknown values and null values are skipped from validation.
func IsLDAPHost() validator.String {
	return ldapHostValidator{}
}
