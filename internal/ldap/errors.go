package ldap

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-ldap/ldap/v3"
)

// ErrorCategory represents different categories of LDAP errors.
type ErrorCategory string

const (
	ErrorCategoryConnection     ErrorCategory = "connection"
	ErrorCategoryAuthentication ErrorCategory = "authentication"
	ErrorCategoryPermission     ErrorCategory = "permission"
	ErrorCategoryNotFound       ErrorCategory = "not_found"
	ErrorCategoryAmbiguous      ErrorCategory = "ambiguous"
	ErrorCategoryValidation     ErrorCategory = "validation"
	ErrorCategoryServer         ErrorCategory = "server"
	ErrorCategoryUnknown        ErrorCategory = "unknown"
)

// LDAPError provides enhanced error information for directory operations.
type LDAPError struct {
	Operation  string        // The operation that failed
	Category   ErrorCategory // Error category
	LDAPCode   uint16        // LDAP result code
	Message    string        // Human-readable message
	ServerMsg  string        // Server-provided message
	Forest     string        // Forest involved in the operation (if applicable)
	Candidates []string      // DNs matched by an ambiguous lookup
	Cause      error         // Underlying error
}

func (e *LDAPError) Error() string {
	var parts []string

	if e.LDAPCode > 0 {
		parts = append(parts, fmt.Sprintf("LDAP %s failed (code %d)", e.Operation, e.LDAPCode))
	} else {
		parts = append(parts, fmt.Sprintf("LDAP %s failed", e.Operation))
	}

	if e.Message != "" {
		parts = append(parts, e.Message)
	}

	if e.ServerMsg != "" && e.ServerMsg != e.Message {
		parts = append(parts, fmt.Sprintf("server: %s", e.ServerMsg))
	}

	if e.Forest != "" {
		parts = append(parts, fmt.Sprintf("forest: %s", e.Forest))
	}

	if len(e.Candidates) > 0 {
		parts = append(parts, fmt.Sprintf("candidates: %s", strings.Join(e.Candidates, "; ")))
	}

	return strings.Join(parts, " - ")
}

func (e *LDAPError) Unwrap() error {
	return e.Cause
}

// GetCategory returns the error category.
func (e *LDAPError) GetCategory() ErrorCategory {
	return e.Category
}

// NewLDAPError creates a new LDAP error, categorizing the cause by its
// result code when it carries one.
func NewLDAPError(operation string, err error) *LDAPError {
	if err == nil {
		return nil
	}

	ldapErr := &LDAPError{
		Operation: operation,
		Cause:     err,
	}

	var resultErr *ldap.Error
	if errors.As(err, &resultErr) {
		ldapErr.LDAPCode = resultErr.ResultCode
		if resultErr.Err != nil {
			ldapErr.ServerMsg = resultErr.Err.Error()
		}
		ldapErr.Category = categorizeError(resultErr.ResultCode)
		ldapErr.Message = getLDAPCodeMessage(resultErr.ResultCode)
	} else {
		ldapErr.Category = categorizeGenericError(err)
		ldapErr.Message = err.Error()
	}

	return ldapErr
}

// setupError reports a failure to reach or bind to a forest. Anything short
// of a rejected bind is treated as the forest being unreachable.
func setupError(operation string, forest Forest, err error) *LDAPError {
	e := NewLDAPError(operation, err)
	if e.Category != ErrorCategoryAuthentication && e.Category != ErrorCategoryPermission {
		e.Category = ErrorCategoryConnection
	}
	e.Forest = forest.String()
	return e
}

// hasResultCode reports whether err wraps a go-ldap error with code.
func hasResultCode(err error, code uint16) bool {
	var resultErr *ldap.Error
	return errors.As(err, &resultErr) && resultErr.ResultCode == code
}

// newNotFoundError reports a lookup that matched nothing in any forest.
func newNotFoundError(recordType RecordType, value string, searched int) *LDAPError {
	return &LDAPError{
		Operation: "lookup",
		Category:  ErrorCategoryNotFound,
		Message:   fmt.Sprintf("no %s matching %q in %d forest(s)", recordType, value, searched),
	}
}

// newAmbiguousError reports a lookup that matched more than one entry in a forest.
func newAmbiguousError(recordType RecordType, value string, forest Forest, dns []string) *LDAPError {
	return &LDAPError{
		Operation:  "lookup",
		Category:   ErrorCategoryAmbiguous,
		Message:    fmt.Sprintf("%d %s entries match %q", len(dns), recordType, value),
		Forest:     forest.String(),
		Candidates: dns,
	}
}

// categorizeError categorizes an error based on LDAP result code.
func categorizeError(code uint16) ErrorCategory {
	switch code {
	case ldap.LDAPResultSuccess:
		return ErrorCategoryUnknown

	case ldap.LDAPResultInvalidCredentials,
		ldap.LDAPResultInappropriateAuthentication,
		ldap.LDAPResultStrongAuthRequired:
		return ErrorCategoryAuthentication

	case ldap.LDAPResultInsufficientAccessRights,
		ldap.LDAPResultUnwillingToPerform:
		return ErrorCategoryPermission

	case ldap.LDAPResultNoSuchObject:
		return ErrorCategoryNotFound

	case ldap.LDAPResultInvalidAttributeSyntax,
		ldap.LDAPResultInvalidDNSyntax,
		ldap.LDAPResultFilterError:
		return ErrorCategoryValidation

	case ldap.LDAPResultServerDown,
		ldap.LDAPResultUnavailable,
		ldap.LDAPResultBusy,
		ldap.LDAPResultTimeLimitExceeded,
		ldap.LDAPResultAdminLimitExceeded:
		return ErrorCategoryServer

	case ldap.ErrorNetwork,
		ldap.LDAPResultConnectError,
		ldap.LDAPResultTimeout,
		ldap.LDAPResultProtocolError:
		return ErrorCategoryConnection

	default:
		return ErrorCategoryUnknown
	}
}

// categorizeGenericError categorizes non-LDAP errors.
func categorizeGenericError(err error) ErrorCategory {
	errStr := strings.ToLower(err.Error())

	if strings.Contains(errStr, "connection") ||
		strings.Contains(errStr, "network") ||
		strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "no such host") ||
		strings.Contains(errStr, "broken pipe") {
		return ErrorCategoryConnection
	}

	if strings.Contains(errStr, "authentication") ||
		strings.Contains(errStr, "credentials") ||
		strings.Contains(errStr, "kerberos") {
		return ErrorCategoryAuthentication
	}

	return ErrorCategoryUnknown
}

// getLDAPCodeMessage returns a human-readable message for the result codes
// a read-only client is likely to see.
func getLDAPCodeMessage(code uint16) string {
	switch code {
	case ldap.LDAPResultOperationsError:
		return "LDAP operations error"
	case ldap.LDAPResultProtocolError:
		return "LDAP protocol error"
	case ldap.LDAPResultTimeLimitExceeded:
		return "LDAP time limit exceeded"
	case ldap.LDAPResultSizeLimitExceeded:
		return "LDAP size limit exceeded"
	case ldap.LDAPResultStrongAuthRequired:
		return "Strong authentication required"
	case ldap.LDAPResultReferral:
		return "LDAP referral"
	case ldap.LDAPResultAdminLimitExceeded:
		return "Administrative limit exceeded"
	case ldap.LDAPResultConfidentialityRequired:
		return "Confidentiality required"
	case ldap.LDAPResultNoSuchObject:
		return "Requested object does not exist"
	case ldap.LDAPResultInvalidDNSyntax:
		return "Invalid DN syntax"
	case ldap.LDAPResultInappropriateAuthentication:
		return "Inappropriate authentication method"
	case ldap.LDAPResultInvalidCredentials:
		return "Invalid credentials"
	case ldap.LDAPResultInsufficientAccessRights:
		return "Insufficient access rights"
	case ldap.LDAPResultBusy:
		return "Server is busy"
	case ldap.LDAPResultUnavailable:
		return "Server is unavailable"
	case ldap.LDAPResultUnwillingToPerform:
		return "Server is unwilling to perform the operation"
	case ldap.LDAPResultServerDown:
		return "Server is down"
	case ldap.LDAPResultTimeout:
		return "Operation timed out"
	case ldap.LDAPResultFilterError:
		return "Invalid search filter"
	case ldap.ErrorNetwork:
		return "Network error"
	case ldap.LDAPResultConnectError:
		return "Connection error"
	default:
		return fmt.Sprintf("Unknown LDAP error (code %d)", code)
	}
}

// GetErrorCategory returns the category of an error.
func GetErrorCategory(err error) ErrorCategory {
	if err == nil {
		return ErrorCategoryUnknown
	}

	var ldapErr *LDAPError
	if errors.As(err, &ldapErr) {
		return ldapErr.GetCategory()
	}

	var resultErr *ldap.Error
	if errors.As(err, &resultErr) {
		return categorizeError(resultErr.ResultCode)
	}

	return categorizeGenericError(err)
}

// IsNotFoundError checks if an error indicates a "not found" condition.
func IsNotFoundError(err error) bool {
	return GetErrorCategory(err) == ErrorCategoryNotFound
}

// IsAmbiguousError checks if an error indicates a lookup with several matches.
func IsAmbiguousError(err error) bool {
	return GetErrorCategory(err) == ErrorCategoryAmbiguous
}

// IsAuthenticationError checks if an error indicates an authentication problem.
func IsAuthenticationError(err error) bool {
	return GetErrorCategory(err) == ErrorCategoryAuthentication
}

// IsConnectionError checks if an error indicates an unreachable directory.
func IsConnectionError(err error) bool {
	category := GetErrorCategory(err)
	return category == ErrorCategoryConnection || category == ErrorCategoryServer
}

// Outcome summarizes how a directory operation ended.
type Outcome string

const (
	OutcomeFound       Outcome = "found"
	OutcomeNotFound    Outcome = "not_found"
	OutcomeAmbiguous   Outcome = "ambiguous"
	OutcomeAuthFailed  Outcome = "auth_failed"
	OutcomeUnreachable Outcome = "unreachable"
)

// OutcomeOf maps an operation's error to its outcome. A nil error is OutcomeFound.
func OutcomeOf(err error) Outcome {
	if err == nil {
		return OutcomeFound
	}

	switch GetErrorCategory(err) {
	case ErrorCategoryNotFound:
		return OutcomeNotFound
	case ErrorCategoryAmbiguous:
		return OutcomeAmbiguous
	case ErrorCategoryAuthentication, ErrorCategoryPermission:
		return OutcomeAuthFailed
	default:
		return OutcomeUnreachable
	}
}
