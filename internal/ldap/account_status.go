package ldap

import (
	"strconv"
	"strings"
)

// UserAccountControl flag values.
const (
	UACScript                  int32 = 0x00000001 // Logon script executed
	UACAccountDisabled         int32 = 0x00000002 // Account is disabled
	UACHomeDirRequired         int32 = 0x00000008 // Home directory required
	UACLockout                 int32 = 0x00000010 // Account locked out
	UACPasswordNotRequired     int32 = 0x00000020 // No password required
	UACPasswordCantChange      int32 = 0x00000040 // User cannot change password
	UACEncryptedTextPwdAllowed int32 = 0x00000080 // Encrypted text password allowed
	UACTempDuplicateAccount    int32 = 0x00000100 // Local user account (temporary)
	UACNormalAccount           int32 = 0x00000200 // Normal user account
	UACInterdomainTrustAccount int32 = 0x00000800 // Interdomain trust account
	UACWorkstationTrustAccount int32 = 0x00001000 // Workstation trust account
	UACServerTrustAccount      int32 = 0x00002000 // Server trust account
	UACPasswordNeverExpires    int32 = 0x00010000 // Password never expires
	UACMNSLogonAccount         int32 = 0x00020000 // MNS logon account
	UACSmartCardRequired       int32 = 0x00040000 // Smart card required for logon
	UACTrustedForDelegation    int32 = 0x00080000 // Account trusted for delegation
	UACNotDelegated            int32 = 0x00100000 // Account not delegated
	UACUseDesKeyOnly           int32 = 0x00200000 // Use DES key only
	UACDontRequirePreauth      int32 = 0x00400000 // Don't require Kerberos preauth
	UACPasswordExpired         int32 = 0x00800000 // Password expired
	UACTrustedToAuthForDeleg   int32 = 0x01000000 // Trusted to authenticate for delegation
)

// accountStatusLabels maps exact userAccountControl values to labels.
// Common combinations come first; single flags are labelled only when they
// are the whole value, so 512 reads "Enabled" and 4096 "Workstation/server".
var accountStatusLabels = map[int32]string{
	UACNormalAccount:                                                "Enabled",
	UACNormalAccount | UACAccountDisabled:                           "Disabled",
	UACNormalAccount | UACPasswordNotRequired:                       "Account Enabled - Require user to change password at first logon",
	UACWorkstationTrustAccount:                                      "Workstation/server",
	UACNormalAccount | UACPasswordNeverExpires:                      "Enabled, password never expires",
	UACNormalAccount | UACPasswordNeverExpires | UACAccountDisabled: "Disabled, password never expires",
	UACNormalAccount | UACSmartCardRequired:                         "Smart Card Logon Required",
	UACServerTrustAccount | UACTrustedForDelegation:                 "Domain controller",

	UACScript:                  "script",
	UACAccountDisabled:         "accountdisable",
	UACHomeDirRequired:         "homedir_required",
	UACLockout:                 "lockout",
	UACPasswordNotRequired:     "passwd_notreqd",
	UACPasswordCantChange:      "passwd_cant_change",
	UACEncryptedTextPwdAllowed: "encrypted_text_pwd_allowed",
	UACTempDuplicateAccount:    "temp_duplicate_account",
	UACInterdomainTrustAccount: "interdomain_trust_account",
	UACServerTrustAccount:      "server_trust_account",
	UACPasswordNeverExpires:    "dont_expire_password",
	UACMNSLogonAccount:         "mns_logon_account",
	UACSmartCardRequired:       "smartcard_required",
	UACTrustedForDelegation:    "trusted_for_delegation",
	UACNotDelegated:            "not_delegated",
	UACUseDesKeyOnly:           "use_des_key_only",
	UACDontRequirePreauth:      "dont_req_preauth",
	UACPasswordExpired:         "password_expired",
	UACTrustedToAuthForDeleg:   "trusted_to_auth_for_delegation",
}

// AccountStatus returns the label for a userAccountControl value. The second
// result is false for values with no label.
func AccountStatus(raw string) (string, bool) {
	v, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 32)
	if err != nil {
		return "", false
	}

	label, ok := accountStatusLabels[int32(v)]
	return label, ok
}
