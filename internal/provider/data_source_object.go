package provider

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hashicorp/terraform-plugin-framework/datasource"
	"github.com/hashicorp/terraform-plugin-framework/datasource/schema"
	"github.com/hashicorp/terraform-plugin-framework/diag"
	"github.com/hashicorp/terraform-plugin-framework/path"
	"github.com/hashicorp/terraform-plugin-framework/schema/validator"
	"github.com/hashicorp/terraform-plugin-framework/types"
	"github.com/hashicorp/terraform-plugin-log/tflog"

	ldapclient "github.com/isometry/terraform-provider-adlookup/internal/ldap"
	"github.com/isometry/terraform-provider-adlookup/internal/provider/helpers"
	"github.com/isometry/terraform-provider-adlookup/internal/provider/validators"
)

// Ensure provider defined types fully satisfy framework interfaces.
var _ datasource.DataSource = &ObjectDataSource{}
var _ datasource.DataSourceWithConfigure = &ObjectDataSource{}

func NewObjectDataSource() datasource.DataSource {
	return &ObjectDataSource{}
}

// ObjectDataSource looks up a single user or computer across the configured forests.
type ObjectDataSource struct {
	client *ldapclient.DirectoryClient
}

// ObjectDataSourceModel describes the data source data model.
type ObjectDataSourceModel struct {
	Value types.String `tfsdk:"value"`
	Type  types.String `tfsdk:"type"`

	ID                    types.String  `tfsdk:"id"`
	DN                    types.String  `tfsdk:"dn"`
	Forest                types.String  `tfsdk:"forest"`
	Attributes            types.Map     `tfsdk:"attributes"`
	MultiValuedAttributes types.Map     `tfsdk:"multi_valued_attributes"`
	Values                types.Dynamic `tfsdk:"values"`
}

func (d *ObjectDataSource) Metadata(ctx context.Context, req datasource.MetadataRequest, resp *datasource.MetadataResponse) {
	resp.TypeName = req.ProviderTypeName + "_object"
}

func (d *ObjectDataSource) Schema(ctx context.Context, req datasource.SchemaRequest, resp *datasource.SchemaResponse) {
	resp.Schema = schema.Schema{
		MarkdownDescription: "Looks up a single user or computer by name prefix. Forests are searched in configured order and " +
			"the first forest holding a match answers. More than one match within that forest is an error. " +
			"Timestamps, photos, account control flags and mail addresses are returned in normalized form.",

		Attributes: map[string]schema.Attribute{
			"value": schema.StringAttribute{
				MarkdownDescription: "Value to match. Entries whose search attribute starts with this value match " +
					"(`sAMAccountName` for users, `name` for computers).",
				Required: true,
			},
			"type": schema.StringAttribute{
				MarkdownDescription: "Kind of entry to look up: `user` (default) or `computer` (alias `cn`). Case-insensitive.",
				Optional:            true,
				Validators: []validator.String{
					validators.IsRecordType(),
				},
			},
			"id": schema.StringAttribute{
				MarkdownDescription: "Distinguished Name of the matched entry.",
				Computed:            true,
			},
			"dn": schema.StringAttribute{
				MarkdownDescription: "Distinguished Name of the matched entry.",
				Computed:            true,
			},
			"forest": schema.StringAttribute{
				MarkdownDescription: "Base DN of the forest that answered.",
				Computed:            true,
			},
			"attributes": schema.MapAttribute{
				MarkdownDescription: "Single-valued attributes keyed by lower-cased name, after normalization. " +
					"Generalized-time and FILETIME timestamps are rendered as `MM/DD/YYYY HH:MM:SS` (or `Never`), " +
					"photos are base64-encoded, `useraccountcontrol` is a status label and `objectsid`/`objectguid` are strings.",
				ElementType: types.StringType,
				Computed:    true,
			},
			"multi_valued_attributes": schema.MapAttribute{
				MarkdownDescription: "Attributes with more than one value (e.g. `memberof`), keyed by lower-cased name, in server order.",
				ElementType:         types.ListType{ElemType: types.StringType},
				Computed:            true,
			},
			"values": schema.DynamicAttribute{
				MarkdownDescription: "All attributes as a single object: single-valued attributes as strings and multi-valued ones as lists.",
				Computed:            true,
			},
		},
	}
}

func (d *ObjectDataSource) Configure(ctx context.Context, req datasource.ConfigureRequest, resp *datasource.ConfigureResponse) {
	// Prevent panic if the provider has not been configured.
	if req.ProviderData == nil {
		return
	}

	client, ok := req.ProviderData.(*ldapclient.DirectoryClient)
	if !ok {
		resp.Diagnostics.AddError(
			"Unexpected Data Source Configure Type",
			fmt.Sprintf("Expected *ldap.DirectoryClient, got: %T. Please report this issue to the provider developers.", req.ProviderData),
		)
		return
	}

	d.client = client
}

func (d *ObjectDataSource) Read(ctx context.Context, req datasource.ReadRequest, resp *datasource.ReadResponse) {
	ctx = initializeLogging(ctx)

	var data ObjectDataSourceModel

	resp.Diagnostics.Append(req.Config.Get(ctx, &data)...)
	if resp.Diagnostics.HasError() {
		return
	}

	logCompletion := logOperation(ctx, "data_source", "adlookup_object", "read", map[string]any{
		"value": data.Value.ValueString(),
		"type":  data.Type.ValueString(),
	})
	defer func() { logCompletion(resp.Diagnostics) }()

	if d.client == nil {
		resp.Diagnostics.AddError(
			"Unconfigured Provider",
			"The provider has not been configured. Please report this issue to the provider developers.",
		)
		return
	}

	recordType := ldapclient.RecordTypeUser
	if !data.Type.IsNull() {
		var err error
		recordType, err = ldapclient.ParseRecordType(data.Type.ValueString())
		if err != nil {
			resp.Diagnostics.AddAttributeError(path.Root("type"), "Invalid Record Type", err.Error())
			return
		}
	}

	record, err := d.client.Lookup(ctx, data.Value.ValueString(), recordType)
	if err != nil {
		resp.Diagnostics.Append(lookupErrorDiagnostic(err, data.Value.ValueString(), recordType))
		return
	}

	tflog.SubsystemDebug(ctx, subsystemName, "Object found", map[string]any{
		"dn":     record.DN,
		"forest": record.Forest,
	})

	resp.Diagnostics.Append(recordToModel(ctx, record, &data)...)
	if resp.Diagnostics.HasError() {
		return
	}

	resp.Diagnostics.Append(resp.State.Set(ctx, &data)...)
}

// recordToModel copies a normalized record into the computed attributes of data.
func recordToModel(ctx context.Context, record *ldapclient.Record, data *ObjectDataSourceModel) diag.Diagnostics {
	var diags diag.Diagnostics

	data.ID = types.StringValue(record.DN)
	data.DN = types.StringValue(record.DN)
	data.Forest = types.StringValue(record.Forest)

	attributes, d := types.MapValueFrom(ctx, types.StringType, record.Attributes)
	diags.Append(d...)
	data.Attributes = attributes

	multiValued, d := types.MapValueFrom(ctx, types.ListType{ElemType: types.StringType}, record.MultiValued)
	diags.Append(d...)
	data.MultiValuedAttributes = multiValued

	values, err := helpers.ToDynamic(ctx, record.Flatten())
	if err != nil {
		diags.AddError("Attribute Conversion Failed", "Could not convert entry attributes: "+err.Error())
		return diags
	}
	data.Values = values

	return diags
}

// lookupErrorDiagnostic turns a lookup failure into a diagnostic whose summary
// distinguishes not-found, ambiguous and unreachable outcomes.
func lookupErrorDiagnostic(err error, value string, recordType ldapclient.RecordType) diag.Diagnostic {
	if ldapclient.GetErrorCategory(err) == ldapclient.ErrorCategoryValidation {
		return diag.NewErrorDiagnostic(
			"Invalid Object Lookup",
			fmt.Sprintf("The directory rejected the lookup of %s %q: %s", recordType, value, err.Error()),
		)
	}

	switch ldapclient.OutcomeOf(err) {
	case ldapclient.OutcomeNotFound:
		return diag.NewAttributeErrorDiagnostic(
			path.Root("value"),
			"Object Not Found",
			fmt.Sprintf("No %s matching %q was found in any configured forest.\n\n%s", recordType, value, err.Error()),
		)
	case ldapclient.OutcomeAmbiguous:
		detail := fmt.Sprintf("More than one %s matches %q. Use a longer value to select a single entry.", recordType, value)
		var ldapErr *ldapclient.LDAPError
		if errors.As(err, &ldapErr) && len(ldapErr.Candidates) > 0 {
			detail += "\n\nMatching entries:\n  " + strings.Join(ldapErr.Candidates, "\n  ")
		}
		return diag.NewAttributeErrorDiagnostic(path.Root("value"), "Ambiguous Object Lookup", detail)
	case ldapclient.OutcomeUnreachable:
		if !ldapclient.IsConnectionError(err) {
			break
		}
		return diag.NewErrorDiagnostic(
			"Directory Unavailable",
			"Could not reach a directory server. Please verify the forest hosts and network connectivity.\n\n"+err.Error(),
		)
	case ldapclient.OutcomeAuthFailed:
		return diag.NewErrorDiagnostic(
			"Service Account Authentication Failed",
			"The directory rejected the service account credentials. "+
				"Please verify the provider's username and password or Kerberos settings.\n\n"+err.Error(),
		)
	}

	return diag.NewErrorDiagnostic(
		"Object Lookup Failed",
		fmt.Sprintf("Could not look up %s %q: %s", recordType, value, err.Error()),
	)
}
