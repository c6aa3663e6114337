package provider

import (
	"context"
	"fmt"

	"github.com/hashicorp/terraform-plugin-framework-validators/stringvalidator"
	"github.com/hashicorp/terraform-plugin-framework/ephemeral"
	"github.com/hashicorp/terraform-plugin-framework/ephemeral/schema"
	"github.com/hashicorp/terraform-plugin-framework/schema/validator"
	"github.com/hashicorp/terraform-plugin-framework/types"

	ldapclient "github.com/isometry/terraform-provider-adlookup/internal/ldap"
)

var _ ephemeral.EphemeralResource = &CredentialsEphemeralResource{}
var _ ephemeral.EphemeralResourceWithConfigure = &CredentialsEphemeralResource{}

func NewCredentialsEphemeralResource() ephemeral.EphemeralResource {
	return &CredentialsEphemeralResource{}
}

// CredentialsEphemeralResource checks a username and password against the
// primary forest without persisting either to state.
type CredentialsEphemeralResource struct {
	client *ldapclient.DirectoryClient
}

// CredentialsEphemeralResourceModel describes the ephemeral resource data model.
type CredentialsEphemeralResourceModel struct {
	Username types.String `tfsdk:"username"`
	Password types.String `tfsdk:"password"`
	Valid    types.Bool   `tfsdk:"valid"`
}

func (r *CredentialsEphemeralResource) Metadata(ctx context.Context, req ephemeral.MetadataRequest, resp *ephemeral.MetadataResponse) {
	resp.TypeName = req.ProviderTypeName + "_credentials"
}

func (r *CredentialsEphemeralResource) Schema(ctx context.Context, req ephemeral.SchemaRequest, resp *ephemeral.SchemaResponse) {
	resp.Schema = schema.Schema{
		MarkdownDescription: "Verifies a username and password by binding to the first configured forest. " +
			"Rejected credentials yield `valid = false`; an unreachable directory is an error.",
		Attributes: map[string]schema.Attribute{
			"username": schema.StringAttribute{
				MarkdownDescription: "Username to verify. A bare name has the provider's `user_domain` appended.",
				Required:            true,
				Validators: []validator.String{
					stringvalidator.LengthAtLeast(1),
				},
			},
			"password": schema.StringAttribute{
				MarkdownDescription: "Password to verify. An empty password is never accepted.",
				Required:            true,
				Sensitive:           true,
			},
			"valid": schema.BoolAttribute{
				MarkdownDescription: "Whether the directory accepted the credentials.",
				Computed:            true,
			},
		},
	}
}

func (r *CredentialsEphemeralResource) Configure(ctx context.Context, req ephemeral.ConfigureRequest, resp *ephemeral.ConfigureResponse) {
	if req.ProviderData == nil {
		return
	}

	client, ok := req.ProviderData.(*ldapclient.DirectoryClient)
	if !ok {
		resp.Diagnostics.AddError(
			"Unexpected Ephemeral Resource Configure Type",
			fmt.Sprintf("Expected *ldap.DirectoryClient, got: %T. Please report this issue to the provider developers.", req.ProviderData),
		)
		return
	}

	r.client = client
}

func (r *CredentialsEphemeralResource) Open(ctx context.Context, req ephemeral.OpenRequest, resp *ephemeral.OpenResponse) {
	ctx = initializeLogging(ctx)

	var data CredentialsEphemeralResourceModel

	resp.Diagnostics.Append(req.Config.Get(ctx, &data)...)
	if resp.Diagnostics.HasError() {
		return
	}

	logCompletion := logOperation(ctx, "ephemeral_resource", "adlookup_credentials", "open", map[string]any{
		"username": data.Username.ValueString(),
	})
	defer func() { logCompletion(resp.Diagnostics) }()

	if r.client == nil {
		resp.Diagnostics.AddError(
			"Unconfigured Provider",
			"The provider has not been configured. Please report this issue to the provider developers.",
		)
		return
	}

	valid, err := r.client.Verify(ctx, data.Username.ValueString(), data.Password.ValueString())
	if err != nil {
		resp.Diagnostics.AddError(
			"Unable to Verify Credentials",
			fmt.Sprintf("Could not verify credentials for %q against %s: %s",
				data.Username.ValueString(), r.client.Config().PrimaryForest(), err.Error()),
		)
		return
	}

	data.Valid = types.BoolValue(valid)

	resp.Diagnostics.Append(resp.Result.Set(ctx, &data)...)
}
