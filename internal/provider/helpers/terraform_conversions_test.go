package helpers_test

import (
	"testing"

	"github.com/hashicorp/terraform-plugin-framework/attr"
	"github.com/hashicorp/terraform-plugin-framework/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/isometry/terraform-provider-adlookup/internal/provider/helpers"
)

func TestGoValueToTerraform(t *testing.T) {
	ctx := t.Context()

	tests := map[string]struct {
		input any
		want  attr.Value
	}{
		"nil":    {input: nil, want: types.StringNull()},
		"string": {input: "jdoe", want: types.StringValue("jdoe")},
		"string slice": {
			input: []string{"CN=Admins", "CN=Staff"},
			want: types.ListValueMust(types.StringType, []attr.Value{
				types.StringValue("CN=Admins"),
				types.StringValue("CN=Staff"),
			}),
		},
		"empty string slice": {
			input: []string{},
			want:  types.ListValueMust(types.StringType, []attr.Value{}),
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := helpers.GoValueToTerraform(ctx, tt.input)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "want %s, got %s", tt.want, got)
		})
	}
}

func TestGoValueToTerraform_MixedMap(t *testing.T) {
	ctx := t.Context()

	got, err := helpers.GoValueToTerraform(ctx, map[string]any{
		"samaccountname": "jdoe",
		"memberof":       []string{"CN=Admins", "CN=Staff"},
	})
	require.NoError(t, err)

	obj, ok := got.(types.Object)
	require.True(t, ok, "expected object, got %T", got)

	attrs := obj.Attributes()
	assert.Equal(t, types.StringValue("jdoe"), attrs["samaccountname"])

	list, ok := attrs["memberof"].(types.List)
	require.True(t, ok)
	assert.Len(t, list.Elements(), 2)
}

func TestGoValueToTerraform_Unsupported(t *testing.T) {
	_, err := helpers.GoValueToTerraform(t.Context(), 42)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported Go type")

	_, err = helpers.ToDynamic(t.Context(), map[string]any{"bad": struct{}{}})
	require.Error(t, err)
}

func TestToDynamic(t *testing.T) {
	got, err := helpers.ToDynamic(t.Context(), map[string]any{"cn": "WS01"})
	require.NoError(t, err)
	assert.False(t, got.IsNull())

	obj, ok := got.UnderlyingValue().(types.Object)
	require.True(t, ok)
	assert.Equal(t, types.StringValue("WS01"), obj.Attributes()["cn"])
}
