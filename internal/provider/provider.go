package provider

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/hashicorp/terraform-plugin-framework-validators/listvalidator"
	"github.com/hashicorp/terraform-plugin-framework-validators/stringvalidator"
	"github.com/hashicorp/terraform-plugin-framework/datasource"
	"github.com/hashicorp/terraform-plugin-framework/diag"
	"github.com/hashicorp/terraform-plugin-framework/ephemeral"
	"github.com/hashicorp/terraform-plugin-framework/function"
	"github.com/hashicorp/terraform-plugin-framework/path"
	"github.com/hashicorp/terraform-plugin-framework/provider"
	"github.com/hashicorp/terraform-plugin-framework/provider/schema"
	"github.com/hashicorp/terraform-plugin-framework/resource"
	"github.com/hashicorp/terraform-plugin-framework/schema/validator"
	"github.com/hashicorp/terraform-plugin-framework/types"
	"github.com/hashicorp/terraform-plugin-log/tflog"

	ldapclient "github.com/isometry/terraform-provider-adlookup/internal/ldap"
	"github.com/isometry/terraform-provider-adlookup/internal/provider/validators"
)

// Ensure ADLookupProvider satisfies various provider interfaces.
var _ provider.Provider = &ADLookupProvider{}
var _ provider.ProviderWithFunctions = &ADLookupProvider{}
var _ provider.ProviderWithEphemeralResources = &ADLookupProvider{}

// ADLookupProvider defines the provider implementation.
type ADLookupProvider struct {
	// version is set to the provider version on release, "dev" when the
	// provider is built and ran locally, and "test" when running acceptance
	// testing.
	version string
}

// ADLookupProviderModel describes the provider data model.
type ADLookupProviderModel struct {
	Forests types.List `tfsdk:"forests"`

	// Service account
	Username types.String `tfsdk:"username"`
	Password types.String `tfsdk:"password"`

	// Domain rewriting
	UserDomain types.String `tfsdk:"user_domain"`
	MailDomain types.String `tfsdk:"mail_domain"`

	// Kerberos settings (optional)
	KerberosRealm  types.String `tfsdk:"kerberos_realm"`
	KerberosKeytab types.String `tfsdk:"kerberos_keytab"`
	KerberosConfig types.String `tfsdk:"kerberos_config"`
	KerberosSPN    types.String `tfsdk:"kerberos_spn"`

	// TLS settings
	StartTLS      types.Bool   `tfsdk:"start_tls"`
	SkipTLSVerify types.Bool   `tfsdk:"skip_tls_verify"`
	TLSCACertFile types.String `tfsdk:"tls_ca_cert_file"`

	ConnectTimeout types.Int64 `tfsdk:"connect_timeout"`
}

// ForestModel is one element of the forests list.
type ForestModel struct {
	Host   types.String `tfsdk:"host"`
	BaseDN types.String `tfsdk:"base_dn"`
}

func (p *ADLookupProvider) Metadata(ctx context.Context, req provider.MetadataRequest, resp *provider.MetadataResponse) {
	resp.TypeName = "adlookup"
	resp.Version = p.version
}

func (p *ADLookupProvider) Schema(ctx context.Context, req provider.SchemaRequest, resp *provider.SchemaResponse) {
	resp.Schema = schema.Schema{
		MarkdownDescription: "The AD Lookup provider verifies Active Directory credentials and looks up users and computers " +
			"across an ordered list of forests, returning their attributes in a normalized, human-readable form.",
		Attributes: map[string]schema.Attribute{
			"forests": schema.ListNestedAttribute{
				MarkdownDescription: "Ordered list of forests to search. Lookups try each forest in turn and stop at the first that " +
					"holds a match; credential verification always uses the first forest. " +
					"If omitted, a single forest is read from the `AD_HOST` and `AD_BASE_DN` environment variables.",
				Optional: true,
				Validators: []validator.List{
					listvalidator.SizeAtLeast(1),
				},
				NestedObject: schema.NestedAttributeObject{
					Attributes: map[string]schema.Attribute{
						"host": schema.StringAttribute{
							MarkdownDescription: "Directory server for this forest: a hostname (port 389), `host:port`, " +
								"or an `ldap://` or `ldaps://` URL.",
							Required: true,
							Validators: []validator.String{
								validators.IsLDAPHost(),
							},
						},
						"base_dn": schema.StringAttribute{
							MarkdownDescription: "Search base for this forest (e.g., `DC=corp,DC=example,DC=com`).",
							Required:            true,
							Validators: []validator.String{
								validators.IsValidBaseDN(),
							},
						},
					},
				},
			},

			// Service account
			"username": schema.StringAttribute{
				MarkdownDescription: "Service account used to bind before searching. A bare name has `user_domain` appended. " +
					"Can be set via the `AD_USERNAME` environment variable.",
				Optional: true,
			},
			"password": schema.StringAttribute{
				MarkdownDescription: "Service account password. " +
					"Can be set via the `AD_PASSWORD` environment variable.",
				Optional:  true,
				Sensitive: true,
			},

			// Domain rewriting
			"user_domain": schema.StringAttribute{
				MarkdownDescription: "Domain appended to bare usernames when binding (e.g., `corp.example.com` turns `jdoe` into " +
					"`jdoe@corp.example.com`). Names already containing `@`, `\\` or `=` are used as given. " +
					"Can be set via the `AD_USER_DOMAIN` environment variable.",
				Optional: true,
			},
			"mail_domain": schema.StringAttribute{
				MarkdownDescription: "Domain substituted into the `mail` attribute of looked-up entries. Leave unset to return " +
					"addresses unchanged. Can be set via the `AD_MAIL_DOMAIN` environment variable.",
				Optional: true,
			},

			// Kerberos settings
			"kerberos_realm": schema.StringAttribute{
				MarkdownDescription: "Kerberos realm for GSSAPI authentication of the service account (e.g., `CORP.EXAMPLE.COM`). " +
					"Can be set via the `AD_KERBEROS_REALM` environment variable.",
				Optional: true,
			},
			"kerberos_keytab": schema.StringAttribute{
				MarkdownDescription: "Path to a Kerberos keytab for the service account. " +
					"Can be set via the `AD_KERBEROS_KEYTAB` environment variable.",
				Optional: true,
			},
			"kerberos_config": schema.StringAttribute{
				MarkdownDescription: "Path to the Kerberos configuration file. Defaults to `/etc/krb5.conf`. " +
					"Can be set via the `AD_KERBEROS_CONFIG` environment variable.",
				Optional: true,
			},
			"kerberos_spn": schema.StringAttribute{
				MarkdownDescription: "Service Principal Name override for GSSAPI authentication. " +
					"Use when connecting to a domain controller by IP address where the SPN doesn't match the IP. " +
					"Format: `ldap/<hostname>` (e.g., `ldap/dc1.example.com`). " +
					"Can be set via the `AD_KERBEROS_SPN` environment variable.",
				Optional: true,
			},

			// TLS settings
			"start_tls": schema.BoolAttribute{
				MarkdownDescription: "Upgrade plain `ldap://` connections with StartTLS. Defaults to `false`. " +
					"Can be set via the `AD_START_TLS` environment variable.",
				Optional: true,
			},
			"skip_tls_verify": schema.BoolAttribute{
				MarkdownDescription: "Skip TLS certificate verification. Not recommended for production. Defaults to `false`. " +
					"Can be set via the `AD_SKIP_TLS_VERIFY` environment variable.",
				Optional: true,
			},
			"tls_ca_cert_file": schema.StringAttribute{
				MarkdownDescription: "Path to a PEM file of CA certificates trusted for `ldaps://` and StartTLS connections. " +
					"Can be set via the `AD_TLS_CA_CERT_FILE` environment variable.",
				Optional: true,
				Validators: []validator.String{
					stringvalidator.LengthAtLeast(1),
				},
			},

			"connect_timeout": schema.Int64Attribute{
				MarkdownDescription: "Connection and search timeout in seconds. Defaults to `30`. " +
					"Can be set via the `AD_CONNECT_TIMEOUT` environment variable.",
				Optional: true,
			},
		},
	}
}

func (p *ADLookupProvider) Configure(ctx context.Context, req provider.ConfigureRequest, resp *provider.ConfigureResponse) {
	var data ADLookupProviderModel

	resp.Diagnostics.Append(req.Config.Get(ctx, &data)...)
	if resp.Diagnostics.HasError() {
		return
	}

	ctx = p.configureLogging(ctx)

	tflog.Info(ctx, "Configuring AD Lookup provider", map[string]any{
		"version": p.version,
	})

	config := p.buildLDAPConfig(ctx, &data, &resp.Diagnostics)
	if resp.Diagnostics.HasError() {
		return
	}

	start := time.Now()
	client, err := ldapclient.NewDirectoryClient(ldapclient.WithSubsystem(ctx), config)
	if err != nil {
		tflog.Error(ctx, "Failed to create directory client", map[string]any{
			"error":       err.Error(),
			"duration_ms": time.Since(start).Milliseconds(),
		})
		resp.Diagnostics.AddError(
			"Unable to Create Directory Client",
			"An unexpected error occurred when creating the directory client. "+
				"If the error is not clear, please contact the provider developers.\n\n"+
				"Directory Client Error: "+err.Error(),
		)
		return
	}

	tflog.Info(ctx, "AD Lookup provider configured successfully", map[string]any{
		"forest_count": len(config.Forests),
		"primary":      config.PrimaryForest().String(),
		"kerberos":     config.UsesKerberos(),
	})

	resp.DataSourceData = client
	resp.EphemeralResourceData = client
}

// configureLogging sets up logging configuration based on environment variables.
func (p *ADLookupProvider) configureLogging(ctx context.Context) context.Context {
	ctx = tflog.SetField(ctx, "provider", "adlookup")
	ctx = tflog.SetField(ctx, "provider_version", p.version)
	ctx = tflog.MaskFieldValuesWithFieldKeys(ctx, "password")

	tflog.Debug(ctx, "AD Lookup provider logging configured")

	return ctx
}

// buildLDAPConfig constructs the directory client configuration from provider config and environment variables.
func (p *ADLookupProvider) buildLDAPConfig(ctx context.Context, data *ADLookupProviderModel, diags *diag.Diagnostics) *ldapclient.Config {
	config := ldapclient.DefaultConfig()

	config.Forests = p.buildForests(ctx, data.Forests, diags)
	if diags.HasError() {
		return config
	}
	if len(config.Forests) == 0 {
		diags.AddError(
			"Missing Forest Configuration",
			"At least one forest must be configured. "+
				"Provide the 'forests' attribute or set the AD_HOST and AD_BASE_DN environment variables.",
		)
		return config
	}

	config.Username = p.getStringValue(data.Username, "AD_USERNAME")
	config.Password = p.getStringValue(data.Password, "AD_PASSWORD")
	config.KerberosRealm = p.getStringValue(data.KerberosRealm, "AD_KERBEROS_REALM")
	config.KerberosKeytab = p.getStringValue(data.KerberosKeytab, "AD_KERBEROS_KEYTAB")
	if kerberosConfig := p.getStringValue(data.KerberosConfig, "AD_KERBEROS_CONFIG"); kerberosConfig != "" {
		config.KerberosConfig = kerberosConfig
	}
	config.KerberosSPN = p.getStringValue(data.KerberosSPN, "AD_KERBEROS_SPN")

	if config.KerberosKeytab != "" && config.KerberosRealm == "" {
		diags.AddAttributeError(
			path.Root("kerberos_realm"),
			"Missing Kerberos Realm",
			"A Kerberos keytab requires a realm to authenticate against. "+
				"Provide the 'kerberos_realm' attribute or set the AD_KERBEROS_REALM environment variable.",
		)
		return config
	}

	hasPasswordAuth := config.Username != "" && config.Password != ""
	hasKerberosAuth := config.Username != "" && config.KerberosRealm != ""

	if !hasPasswordAuth && !hasKerberosAuth {
		diags.AddError(
			"Missing Authentication Configuration",
			"A service account is required to search the directory. "+
				"For username/password: provide 'username' and 'password' attributes or set AD_USERNAME and AD_PASSWORD environment variables. "+
				"For Kerberos: provide 'username' and 'kerberos_realm', plus 'password' or 'kerberos_keytab'.",
		)
		return config
	}

	config.UserDomain = p.getStringValue(data.UserDomain, "AD_USER_DOMAIN")
	config.MailDomain = p.getStringValue(data.MailDomain, "AD_MAIL_DOMAIN")

	config.StartTLS = p.getBoolValue(data.StartTLS, "AD_START_TLS", false)
	config.SkipTLSVerify = p.getBoolValue(data.SkipTLSVerify, "AD_SKIP_TLS_VERIFY", false)
	config.TLSCACertFile = p.getStringValue(data.TLSCACertFile, "AD_TLS_CA_CERT_FILE")

	if connectTimeout := p.getInt64Value(data.ConnectTimeout, "AD_CONNECT_TIMEOUT", 30); connectTimeout > 0 {
		config.Timeout = time.Duration(connectTimeout) * time.Second
	} else {
		diags.AddAttributeError(
			path.Root("connect_timeout"),
			"Invalid Connect Timeout",
			"The connection timeout must be a positive number of seconds, got "+strconv.FormatInt(connectTimeout, 10)+".",
		)
	}

	if config.SkipTLSVerify {
		diags.AddWarning(
			"TLS Verification Disabled",
			"skip_tls_verify is enabled: directory server certificates will not be verified.",
		)
	}

	return config
}

// buildForests reads the forests list, falling back to a single forest from
// AD_HOST and AD_BASE_DN.
func (p *ADLookupProvider) buildForests(ctx context.Context, value types.List, diags *diag.Diagnostics) []ldapclient.Forest {
	if value.IsNull() || value.IsUnknown() {
		host, baseDN := os.Getenv("AD_HOST"), os.Getenv("AD_BASE_DN")
		if host == "" && baseDN == "" {
			return nil
		}
		if host == "" || baseDN == "" {
			diags.AddError(
				"Incomplete Forest Environment",
				"AD_HOST and AD_BASE_DN must be set together.",
			)
			return nil
		}
		if err := ldapclient.ValidateBaseDN(baseDN); err != nil {
			diags.AddError(
				"Invalid Base DN",
				fmt.Sprintf("AD_BASE_DN %q is not a valid base DN: %s", baseDN, err.Error()),
			)
			return nil
		}
		return []ldapclient.Forest{{Host: host, BaseDN: baseDN}}
	}

	var models []ForestModel
	diags.Append(value.ElementsAs(ctx, &models, false)...)
	if diags.HasError() {
		return nil
	}

	forests := make([]ldapclient.Forest, 0, len(models))
	for _, m := range models {
		forests = append(forests, ldapclient.Forest{
			Host:   m.Host.ValueString(),
			BaseDN: m.BaseDN.ValueString(),
		})
	}

	return forests
}

// Helper functions for configuration value resolution

func (p *ADLookupProvider) getStringValue(configValue types.String, envVar string) string {
	if !configValue.IsNull() && configValue.ValueString() != "" {
		return configValue.ValueString()
	}
	return os.Getenv(envVar)
}

func (p *ADLookupProvider) getBoolValue(configValue types.Bool, envVar string, defaultValue bool) bool {
	if !configValue.IsNull() {
		return configValue.ValueBool()
	}
	if envValue := os.Getenv(envVar); envValue != "" {
		if parsed, err := strconv.ParseBool(envValue); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func (p *ADLookupProvider) getInt64Value(configValue types.Int64, envVar string, defaultValue int64) int64 {
	if !configValue.IsNull() {
		return configValue.ValueInt64()
	}
	if envValue := os.Getenv(envVar); envValue != "" {
		if parsed, err := strconv.ParseInt(envValue, 10, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func (p *ADLookupProvider) Resources(ctx context.Context) []func() resource.Resource {
	return nil
}

func (p *ADLookupProvider) EphemeralResources(ctx context.Context) []func() ephemeral.EphemeralResource {
	return []func() ephemeral.EphemeralResource{
		NewCredentialsEphemeralResource,
	}
}

func (p *ADLookupProvider) DataSources(ctx context.Context) []func() datasource.DataSource {
	return []func() datasource.DataSource{
		NewObjectDataSource,
	}
}

func (p *ADLookupProvider) Functions(ctx context.Context) []func() function.Function {
	return []func() function.Function{
		NewConvertTimestampFunction,
		NewAccountStatusFunction,
	}
}

func New(version string) func() provider.Provider {
	return func() provider.Provider {
		return &ADLookupProvider{
			version: version,
		}
	}
}
