package ldap

import (
	"context"
	"maps"
	"strings"
	"time"

	"github.com/go-ldap/ldap/v3"
	"github.com/hashicorp/terraform-plugin-log/tflog"
)

// SubsystemName is the tflog subsystem used by the directory client.
const SubsystemName = "ldap"

// WithSubsystem registers the ldap subsystem on ctx, honouring
// TF_LOG_PROVIDER_ADLOOKUP_LDAP for its level. Passwords are masked at the
// logger level as well as by SanitizeFields.
func WithSubsystem(ctx context.Context) context.Context {
	ctx = tflog.NewSubsystem(ctx, SubsystemName, tflog.WithLevelFromEnv("TF_LOG_PROVIDER_ADLOOKUP_LDAP"))
	return tflog.SubsystemMaskFieldValuesWithFieldKeys(ctx, SubsystemName, "password", "passwd", "secret")
}

// LogOperation runs fn and logs its start, duration and result.
func LogOperation(ctx context.Context, operation string, fields map[string]any, fn func() error) error {
	start := time.Now()

	f := make(map[string]any, len(fields)+3)
	maps.Copy(f, fields)
	f["operation"] = operation

	tflog.SubsystemDebug(ctx, SubsystemName, "Starting operation", SanitizeFields(f))

	err := fn()

	f["duration_ms"] = time.Since(start).Milliseconds()
	f["outcome"] = string(OutcomeOf(err))

	switch {
	case err == nil:
		tflog.SubsystemDebug(ctx, SubsystemName, "Operation completed successfully", SanitizeFields(f))
	case IsNotFoundError(err):
		f["error"] = err.Error()
		tflog.SubsystemDebug(ctx, SubsystemName, "Operation found nothing", SanitizeFields(f))
	default:
		f["error"] = err.Error()
		tflog.SubsystemError(ctx, SubsystemName, "Operation failed", SanitizeFields(f))
	}

	return err
}

// LogLDAPError logs result-code details of a go-ldap error.
func LogLDAPError(ctx context.Context, operation string, err error, fields map[string]any) {
	f := make(map[string]any, len(fields)+4)
	maps.Copy(f, fields)
	f["operation"] = operation
	f["error"] = err.Error()

	if ldapErr, ok := err.(*ldap.Error); ok {
		f["ldap_result_code"] = ldapErr.ResultCode
		if ldapErr.MatchedDN != "" {
			f["ldap_matched_dn"] = ldapErr.MatchedDN
		}
		if ldapErr.Err != nil {
			f["ldap_diagnostic_message"] = ldapErr.Err.Error()
		}
	}

	tflog.SubsystemWarn(ctx, SubsystemName, "LDAP operation failed", SanitizeFields(f))
}

// LogConnectionEvent logs connection-related events.
func LogConnectionEvent(ctx context.Context, event string, fields map[string]any) {
	f := make(map[string]any, len(fields)+1)
	maps.Copy(f, fields)
	f["event"] = event

	switch event {
	case "connection_established", "authentication_success":
		tflog.SubsystemInfo(ctx, SubsystemName, "Connection event", SanitizeFields(f))
	case "connection_failed", "authentication_failed":
		tflog.SubsystemWarn(ctx, SubsystemName, "Connection event", SanitizeFields(f))
	default:
		tflog.SubsystemDebug(ctx, SubsystemName, "Connection event", SanitizeFields(f))
	}
}

// SanitizeFields removes sensitive information from log fields.
func SanitizeFields(fields map[string]any) map[string]any {
	sanitized := make(map[string]any, len(fields))

	sensitiveKeys := map[string]bool{
		"password":    true,
		"passwd":      true,
		"secret":      true,
		"token":       true,
		"key":         true,
		"credential":  true,
		"credentials": true,
	}

	for k, v := range fields {
		if sensitiveKeys[strings.ToLower(k)] {
			sanitized[k] = "[REDACTED]"
			continue
		}
		if str, ok := v.(string); ok && containsSensitivePattern(str) {
			sanitized[k] = "[REDACTED]"
			continue
		}
		sanitized[k] = v
	}

	return sanitized
}

// containsSensitivePattern checks if a string looks like it embeds a secret.
func containsSensitivePattern(s string) bool {
	patterns := []string{
		"password=",
		"passwd=",
		"secret=",
		"token=",
	}

	lower := strings.ToLower(s)
	for _, pattern := range patterns {
		if strings.Contains(lower, pattern) {
			return true
		}
	}

	return false
}
