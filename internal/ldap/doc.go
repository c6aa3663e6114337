/*
Package ldap provides the Active Directory lookup client behind the adlookup
Terraform provider.

# Architecture Overview

  - DirectoryClient: credential verification and user/computer lookup
  - Dialer/Conn: one short-lived connection per forest and operation
  - Normalizer: turns raw search entries into flat records
  - Handlers: GUID and SID conversion

# Forests

A client is configured with an ordered list of forests, each a host and a
base DN. Verify binds against the first (primary) forest only. Lookup walks
the list in order and stops at the first forest holding exactly one match:

	client, err := ldap.NewDirectoryClient(ctx, &ldap.Config{
		Forests: []ldap.Forest{
			{Host: "dc1.corp.example.com", BaseDN: "DC=corp,DC=example,DC=com"},
			{Host: "ldaps://dc1.lab.example.com", BaseDN: "DC=lab,DC=example,DC=com"},
		},
		Username:   "svc-lookup",
		Password:   os.Getenv("AD_PASSWORD"),
		UserDomain: "corp.example.com",
	})

	record, err := client.Lookup(ctx, "jdoe", ldap.RecordTypeUser)

A forest with no match is skipped. A forest with several matches, or one that
cannot be reached, ends the lookup with an error; use IsAmbiguousError,
IsNotFoundError and OutcomeOf to tell the cases apart.

# Normalization

Single-valued attributes are converted for display: timestamps (generalized
time and FILETIME) become "MM/DD/YYYY HH:MM:SS" in UTC, photos become base64,
userAccountControl becomes a status label, mail is rewritten to the configured
mail domain, and objectSid/objectGUID become their string forms. Multi-valued
attributes such as memberOf are returned as lists.

# Logging

All operations log through the "ldap" tflog subsystem. Register it with
WithSubsystem; its level follows TF_LOG_PROVIDER_ADLOOKUP_LDAP. Passwords
never reach the log.
*/
package ldap
