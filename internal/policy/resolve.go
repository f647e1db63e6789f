package policy

// RawProperty is a single property row as reported by the property store,
// before provenance normalization and filtering. The store adapter strips
// the module prefix; Name is always a bare name.
type RawProperty struct {
	Filesystem string
	Name       string
	Value      string
	Source     string
}

// unsetSentinel is how the store reports a property without a value.
const unsetSentinel = "-"

// Resolve groups raw property rows by filesystem into PropertySets,
// normalizing provenance and dropping unset values.
//
// Decisions consider only locally-set and received properties, so by
// default inherited rows are discarded. The formatter needs the inherited
// rows as well to display effective defaults; it passes allProvenance.
//
// A filesystem with qualifying provenance but only sentinel values still
// appears in the result, with an empty PropertySet.
func Resolve(raws []RawProperty, allProvenance bool) map[string]PropertySet {
	resolved := make(map[string]PropertySet)
	for _, raw := range raws {
		src := NormalizeProvenance(raw.Source)
		keep := src == ProvenanceLocal || src == ProvenanceReceived
		if allProvenance {
			keep = keep || src == ProvenanceInherited
		}
		if !keep {
			continue
		}
		if _, ok := resolved[raw.Filesystem]; !ok {
			resolved[raw.Filesystem] = make(PropertySet)
		}
		if raw.Value != unsetSentinel {
			resolved[raw.Filesystem][raw.Name] = Property{Value: raw.Value, Source: src}
		}
	}
	return resolved
}
