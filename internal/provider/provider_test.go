package provider

import (
	"fmt"
	"regexp"
	"testing"

	"github.com/hashicorp/terraform-plugin-framework/providerserver"
	"github.com/hashicorp/terraform-plugin-go/tfprotov6"
	"github.com/hashicorp/terraform-plugin-testing/echoprovider"
	"github.com/hashicorp/terraform-plugin-testing/helper/resource"
	"github.com/hashicorp/terraform-plugin-testing/knownvalue"
	"github.com/hashicorp/terraform-plugin-testing/statecheck"
	"github.com/hashicorp/terraform-plugin-testing/tfjsonpath"
	"github.com/hashicorp/terraform-plugin-testing/tfversion"
)

// testAccProtoV6ProviderFactories is used to instantiate a provider during acceptance testing.
// The factory function is called for each Terraform CLI command to create a provider
// server that the CLI can connect to and interact with.
var testAccProtoV6ProviderFactories = map[string]func() (tfprotov6.ProviderServer, error){
	"adlookup": providerserver.NewProtocol6WithError(New("test")()),
}

// testAccProtoV6ProviderFactoriesWithEcho adds the echo provider so that
// ephemeral results can be inspected.
var testAccProtoV6ProviderFactoriesWithEcho = map[string]func() (tfprotov6.ProviderServer, error){
	"adlookup": providerserver.NewProtocol6WithError(New("test")()),
	"echo":     echoprovider.NewProviderServer(),
}

func testAccPreCheck(t *testing.T) {
	testAccPreCheckWithConfig(t)
}

func TestAccObjectDataSource_User(t *testing.T) {
	config := GetTestConfig()
	if config.LookupUser == "" {
		t.Skipf("Skipping test: %s must be set", EnvTestLookupUser)
	}

	resource.Test(t, resource.TestCase{
		PreCheck:                 func() { testAccPreCheck(t) },
		ProtoV6ProviderFactories: testAccProtoV6ProviderFactories,
		Steps: []resource.TestStep{
			{
				Config: TestProviderConfig() + fmt.Sprintf(`
data "adlookup_object" "test" {
  value = %q
}
`, config.LookupUser),
				Check: resource.ComposeAggregateTestCheckFunc(
					resource.TestCheckResourceAttrSet("data.adlookup_object.test", "id"),
					resource.TestCheckResourceAttrPair("data.adlookup_object.test", "id", "data.adlookup_object.test", "dn"),
					resource.TestCheckResourceAttrSet("data.adlookup_object.test", "forest"),
					resource.TestCheckResourceAttrSet("data.adlookup_object.test", "attributes.samaccountname"),
					resource.TestMatchResourceAttr("data.adlookup_object.test", "attributes.objectsid", regexp.MustCompile(`^S-1-5-`)),
				),
			},
		},
	})
}

func TestAccObjectDataSource_Computer(t *testing.T) {
	config := GetTestConfig()
	if config.LookupComputer == "" {
		t.Skipf("Skipping test: %s must be set", EnvTestLookupComputer)
	}

	resource.Test(t, resource.TestCase{
		PreCheck:                 func() { testAccPreCheck(t) },
		ProtoV6ProviderFactories: testAccProtoV6ProviderFactories,
		Steps: []resource.TestStep{
			{
				Config: TestProviderConfig() + fmt.Sprintf(`
data "adlookup_object" "test" {
  value = %q
  type  = "computer"
}
`, config.LookupComputer),
				Check: resource.ComposeAggregateTestCheckFunc(
					resource.TestCheckResourceAttrSet("data.adlookup_object.test", "dn"),
					resource.TestCheckResourceAttr("data.adlookup_object.test", "type", "computer"),
				),
			},
		},
	})
}

func TestAccObjectDataSource_NotFound(t *testing.T) {
	resource.Test(t, resource.TestCase{
		PreCheck:                 func() { testAccPreCheck(t) },
		ProtoV6ProviderFactories: testAccProtoV6ProviderFactories,
		Steps: []resource.TestStep{
			{
				Config: TestProviderConfig() + `
data "adlookup_object" "test" {
  value = "tf-acc-no-such-account-7f3c"
}
`,
				ExpectError: regexp.MustCompile(`Object Not Found`),
			},
		},
	})
}

func TestAccObjectDataSource_InvalidType(t *testing.T) {
	resource.Test(t, resource.TestCase{
		PreCheck:                 func() { testAccPreCheck(t) },
		ProtoV6ProviderFactories: testAccProtoV6ProviderFactories,
		Steps: []resource.TestStep{
			{
				Config: TestProviderConfig() + `
data "adlookup_object" "test" {
  value = "jdoe"
  type  = "group"
}
`,
				ExpectError: regexp.MustCompile(`Invalid Record Type`),
			},
		},
	})
}

// TestAccObjectDataSource_Unreachable needs no directory: nothing listens on
// the discard port.
func TestAccObjectDataSource_Unreachable(t *testing.T) {
	resource.Test(t, resource.TestCase{
		PreCheck:                 func() { SkipIfNotAccTest(t) },
		ProtoV6ProviderFactories: testAccProtoV6ProviderFactories,
		Steps: []resource.TestStep{
			{
				Config: `
provider "adlookup" {
  forests = [
    { host = "127.0.0.1:9", base_dn = "DC=corp,DC=example,DC=com" },
  ]
  username        = "svc-lookup"
  password        = "not-a-real-password"
  connect_timeout = 2
}

data "adlookup_object" "test" {
  value = "jdoe"
}
`,
				ExpectError: regexp.MustCompile(`Directory Unavailable`),
			},
		},
	})
}

func TestAccCredentialsEphemeralResource_Rejected(t *testing.T) {
	config := GetTestConfig()
	if config.LookupUser == "" {
		t.Skipf("Skipping test: %s must be set", EnvTestLookupUser)
	}

	resource.Test(t, resource.TestCase{
		PreCheck:                 func() { testAccPreCheck(t) },
		ProtoV6ProviderFactories: testAccProtoV6ProviderFactoriesWithEcho,
		TerraformVersionChecks: []tfversion.TerraformVersionCheck{
			tfversion.SkipBelow(tfversion.Version1_10_0),
		},
		Steps: []resource.TestStep{
			{
				Config: TestProviderConfig() + fmt.Sprintf(`
ephemeral "adlookup_credentials" "test" {
  username = %q
  password = "tf-acc-definitely-wrong"
}

provider "echo" {
  data = ephemeral.adlookup_credentials.test.valid
}

resource "echo" "test" {}
`, config.LookupUser),
				ConfigStateChecks: []statecheck.StateCheck{
					statecheck.ExpectKnownValue("echo.test", tfjsonpath.New("data"), knownvalue.Bool(false)),
				},
			},
		},
	})
}
