package ldap

// Record is a normalized directory entry. Attribute keys are lower-cased.
type Record struct {
	DN          string              `json:"dn"`
	Forest      string              `json:"forest"`       // Base DN of the forest that answered
	Attributes  map[string]string   `json:"attributes"`   // Single-valued, transformed
	MultiValued map[string][]string `json:"multi_valued"` // Multi-valued, in server order
}

// Flatten merges both attribute maps into one view, scalars as strings and
// multi-valued attributes as string slices.
func (r *Record) Flatten() map[string]any {
	out := make(map[string]any, len(r.Attributes)+len(r.MultiValued))
	for k, v := range r.Attributes {
		out[k] = v
	}
	for k, v := range r.MultiValued {
		out[k] = v
	}
	return out
}
