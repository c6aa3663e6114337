package provider

import (
	"fmt"
	"os"
	"strings"
	"testing"
)

// Test environment configuration constants.
const (
	// Environment variables for test configuration.
	EnvTestHost           = "AD_TEST_HOST"
	EnvTestBaseDN         = "AD_TEST_BASE_DN"
	EnvTestSecondHost     = "AD_TEST_SECOND_HOST"
	EnvTestSecondBaseDN   = "AD_TEST_SECOND_BASE_DN"
	EnvTestUsername       = "AD_TEST_USERNAME"
	EnvTestPassword       = "AD_TEST_PASSWORD"
	EnvTestUserDomain     = "AD_TEST_USER_DOMAIN"
	EnvTestMailDomain     = "AD_TEST_MAIL_DOMAIN"
	EnvTestKeytab         = "AD_TEST_KEYTAB"
	EnvTestRealm          = "AD_TEST_REALM"
	EnvTestLookupUser     = "AD_TEST_LOOKUP_USER"
	EnvTestLookupComputer = "AD_TEST_LOOKUP_COMPUTER"

	// Default values for testing.
	DefaultTestBaseDN = "DC=example,DC=com"
)

// TestConfig holds common test configuration.
type TestConfig struct {
	Host           string
	BaseDN         string
	SecondHost     string
	SecondBaseDN   string
	Username       string
	Password       string
	UserDomain     string
	MailDomain     string
	Keytab         string
	Realm          string
	LookupUser     string
	LookupComputer string
	UseKerberos    bool
}

// GetTestConfig returns the test configuration from environment variables.
func GetTestConfig() *TestConfig {
	config := &TestConfig{
		Host:           os.Getenv(EnvTestHost),
		BaseDN:         getEnvWithDefault(EnvTestBaseDN, DefaultTestBaseDN),
		SecondHost:     os.Getenv(EnvTestSecondHost),
		SecondBaseDN:   os.Getenv(EnvTestSecondBaseDN),
		Username:       os.Getenv(EnvTestUsername),
		Password:       os.Getenv(EnvTestPassword),
		UserDomain:     os.Getenv(EnvTestUserDomain),
		MailDomain:     os.Getenv(EnvTestMailDomain),
		Keytab:         os.Getenv(EnvTestKeytab),
		Realm:          os.Getenv(EnvTestRealm),
		LookupUser:     os.Getenv(EnvTestLookupUser),
		LookupComputer: os.Getenv(EnvTestLookupComputer),
	}

	config.UseKerberos = config.Keytab != "" && config.Realm != ""

	return config
}

// IsAccTest returns true if acceptance tests should run.
func IsAccTest() bool {
	return os.Getenv("TF_ACC") != ""
}

// SkipIfNotAccTest skips the test if TF_ACC is not set.
func SkipIfNotAccTest(t *testing.T) {
	if !IsAccTest() {
		t.Skip("Skipping acceptance test - set TF_ACC=1 to run")
	}
}

// testAccPreCheckWithConfig skips unless a real directory is configured.
func testAccPreCheckWithConfig(t *testing.T) *TestConfig {
	SkipIfNotAccTest(t)

	config := GetTestConfig()

	if config.Host == "" {
		t.Skipf("Skipping test: %s must be set to a real AD environment", EnvTestHost)
	}

	if config.Username == "" {
		t.Skipf("Skipping test: %s must be set", EnvTestUsername)
	}

	if config.Password == "" && !config.UseKerberos {
		t.Skipf("Skipping test: %s must be set (or configure Kerberos)", EnvTestPassword)
	}

	return config
}

// TestProviderConfig generates provider configuration for tests.
func TestProviderConfig() string {
	config := GetTestConfig()

	var b strings.Builder
	b.WriteString("provider \"adlookup\" {\n")
	b.WriteString("  forests = [\n")
	fmt.Fprintf(&b, "    { host = %q, base_dn = %q },\n", config.Host, config.BaseDN)
	if config.SecondHost != "" && config.SecondBaseDN != "" {
		fmt.Fprintf(&b, "    { host = %q, base_dn = %q },\n", config.SecondHost, config.SecondBaseDN)
	}
	b.WriteString("  ]\n")

	fmt.Fprintf(&b, "  username = %q\n", config.Username)

	if config.UseKerberos {
		fmt.Fprintf(&b, "  kerberos_realm = %q\n", config.Realm)
		fmt.Fprintf(&b, "  kerberos_keytab = %q\n", config.Keytab)
	} else {
		fmt.Fprintf(&b, "  password = %q\n", config.Password)
	}

	if config.UserDomain != "" {
		fmt.Fprintf(&b, "  user_domain = %q\n", config.UserDomain)
	}
	if config.MailDomain != "" {
		fmt.Fprintf(&b, "  mail_domain = %q\n", config.MailDomain)
	}

	b.WriteString("}\n")
	return b.String()
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
