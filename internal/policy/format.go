package policy

import (
	"fmt"
	"sort"
)

// FormatEffective renders one filesystem's properties as "name=value"
// tokens describing the policy that will actually apply there.
//
// The view merges locally set values with defaults derived from non-local
// ones: a received or inherited snapshot count on a downstream filesystem
// does not trigger snapshots there, but it does govern reaping, so it is
// shown as that tier's effective snapshot-limit unless a local limit
// exists. Retention properties come first, lexically sorted; replica and
// replicate follow as the headline attributes.
//
// Display only; the output never feeds back into Decide.
func FormatEffective(props PropertySet) []string {
	local := make(PropertySet)
	nonLocal := make(PropertySet)
	for name, p := range props {
		if p.Source == ProvenanceLocal {
			local[name] = p
		} else {
			nonLocal[name] = p
		}
	}

	// Sorted iteration keeps the fill deterministic: a tier's non-local
	// snapshot-limit sorts before its snapshots property, so a real
	// limit wins over a count-derived default.
	for _, name := range sortedNames(nonLocal) {
		tier, ok := TierOf(name)
		if !ok {
			continue
		}
		if limit := SnapshotLimitProperty(tier); !hasName(local, limit) {
			local[limit] = nonLocal[name]
		}
	}

	var retention, replication []string
	for name := range local {
		if name == PropertyReplica || name == PropertyReplicate {
			replication = append(replication, name)
		} else {
			retention = append(retention, name)
		}
	}
	sort.Strings(retention)
	sort.Strings(replication)

	var tokens []string
	for _, name := range append(retention, replication...) {
		tokens = append(tokens, fmt.Sprintf("%s=%s", name, local[name].Value))
	}
	return tokens
}

func hasName(ps PropertySet, name string) bool {
	_, ok := ps[name]
	return ok
}

func sortedNames(ps PropertySet) []string {
	names := make([]string, 0, len(ps))
	for name := range ps {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
