// Package helpers provides Terraform type conversions shared by data sources
// and functions.
package helpers

import (
	"context"
	"fmt"

	"github.com/hashicorp/terraform-plugin-framework/attr"
	"github.com/hashicorp/terraform-plugin-framework/types"
)

// GoValueToTerraform converts Go values to Terraform attr.Value types.
// Maps become objects so that each key may carry its own type; []string
// becomes a list of strings.
func GoValueToTerraform(ctx context.Context, value any) (attr.Value, error) {
	if value == nil {
		return types.StringNull(), nil
	}

	switch v := value.(type) {
	case string:
		return types.StringValue(v), nil
	case []string:
		elements := make([]attr.Value, len(v))
		for i, s := range v {
			elements[i] = types.StringValue(s)
		}
		return types.ListValueMust(types.StringType, elements), nil
	case map[string]any:
		attrTypes := make(map[string]attr.Type, len(v))
		attrValues := make(map[string]attr.Value, len(v))

		for key, val := range v {
			terraformVal, err := GoValueToTerraform(ctx, val)
			if err != nil {
				return nil, fmt.Errorf("failed to convert map element %s: %w", key, err)
			}
			attrValues[key] = terraformVal
			attrTypes[key] = terraformVal.Type(ctx)
		}

		return types.ObjectValueMust(attrTypes, attrValues), nil
	default:
		return nil, fmt.Errorf("unsupported Go type for conversion: %T", value)
	}
}

// ToDynamic converts value with GoValueToTerraform and wraps the result.
func ToDynamic(ctx context.Context, value any) (types.Dynamic, error) {
	v, err := GoValueToTerraform(ctx, value)
	if err != nil {
		return types.DynamicNull(), err
	}
	return types.DynamicValue(v), nil
}
