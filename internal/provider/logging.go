package provider

import (
	"context"
	"fmt"
	"maps"
	"time"

	"github.com/hashicorp/terraform-plugin-framework/diag"
	"github.com/hashicorp/terraform-plugin-log/tflog"

	ldapclient "github.com/isometry/terraform-provider-adlookup/internal/ldap"
)

const subsystemName = "provider"

// initializeLogging registers the provider and ldap subsystems on ctx.
// Call it at the start of every Read, Open and Run.
func initializeLogging(ctx context.Context) context.Context {
	// Pattern: TF_LOG_PROVIDER_ADLOOKUP_<SUBSYSTEM>
	ctx = tflog.NewSubsystem(ctx, subsystemName,
		tflog.WithLevelFromEnv("TF_LOG_PROVIDER_ADLOOKUP_PROVIDER"))
	ctx = tflog.SubsystemMaskFieldValuesWithFieldKeys(ctx, subsystemName, "password")
	return ldapclient.WithSubsystem(ctx)
}

// logOperation logs entry to a data source or ephemeral resource operation
// and returns a func that logs its completion.
func logOperation(ctx context.Context, kind, name, operation string, fields map[string]any) func(diag.Diagnostics) {
	start := time.Now()

	entryFields := make(map[string]any, len(fields)+3)
	maps.Copy(entryFields, fields)
	entryFields[kind] = name
	entryFields["operation"] = operation

	tflog.SubsystemDebug(ctx, subsystemName, fmt.Sprintf("Starting %s operation", kind), entryFields)

	return func(diags diag.Diagnostics) {
		exitFields := make(map[string]any, len(entryFields)+3)
		maps.Copy(exitFields, entryFields)
		exitFields["duration_ms"] = time.Since(start).Milliseconds()
		exitFields["has_error"] = diags.HasError()

		if diags.HasError() {
			first := diags.Errors()[0]
			exitFields["error"] = first.Summary() + ": " + first.Detail()
			tflog.SubsystemError(ctx, subsystemName, fmt.Sprintf("%s operation failed", kind), exitFields)
			return
		}

		tflog.SubsystemDebug(ctx, subsystemName, fmt.Sprintf("%s operation completed", kind), exitFields)
	}
}
