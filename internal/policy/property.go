// Package policy implements the property-resolution and decision core of
// zbackup.
//
// Backup policy is declared as user properties attached directly to ZFS
// filesystems rather than in an external configuration file. This package
// resolves those properties into per-filesystem, per-tier decisions:
// whether to take a snapshot, how many snapshots to retain, and whether
// (and where) to replicate.
//
// The package is pure: it performs no I/O. Raw property rows come from a
// store adapter (internal/zfs), and decisions are realized by tool
// adapters (internal/tools).
package policy

import (
	"fmt"
	"strconv"
	"strings"
)

// Property names understood by zbackup. On disk these are namespaced under
// the module prefix (an adapter concern, see internal/zfs); the core works
// with bare names only.
const (
	PropertyReplica   = "replica"
	PropertyReplicate = "replicate"

	// Tier-scoped property suffixes. <tier>-snapshots is a retention
	// count that may also trigger a new snapshot; <tier>-snapshot-limit
	// is a retention cap that never triggers one.
	SnapshotsSuffix     = "-snapshots"
	SnapshotLimitSuffix = "-snapshot-limit"
)

// noValue is the property value that means "present but holds no value".
const noValue = "none"

// Provenance classifies where a property value came from.
type Provenance string

const (
	// ProvenanceLocal means the value was set directly on the filesystem.
	ProvenanceLocal Provenance = "local"

	// ProvenanceReceived means the value arrived with a replication
	// stream from an upstream filesystem.
	ProvenanceReceived Provenance = "received"

	// ProvenanceInherited means the value comes from an ancestor
	// filesystem. All "inherited from <path>" variants reported by the
	// store collapse to this.
	ProvenanceInherited Provenance = "inherited"

	// ProvenanceUnset means the property has no value at all.
	ProvenanceUnset Provenance = "unset"
)

// NormalizeProvenance maps a raw source string reported by the property
// store onto one of the Provenance values.
func NormalizeProvenance(raw string) Provenance {
	switch {
	case raw == "local":
		return ProvenanceLocal
	case raw == "received":
		return ProvenanceReceived
	case strings.HasPrefix(raw, "inherited"):
		return ProvenanceInherited
	default:
		return ProvenanceUnset
	}
}

// Property is a resolved property value together with its provenance.
type Property struct {
	Value  string
	Source Provenance
}

// PropertySet maps bare property names to resolved values for one
// filesystem. Unset-sentinel values never appear in a PropertySet.
type PropertySet map[string]Property

// HasValue reports whether the named property is present and carries a
// real value ("none" counts as no value).
func (ps PropertySet) HasValue(name string) bool {
	p, ok := ps[name]
	return ok && p.Value != noValue
}

// Count is an integer-valued property with its provenance.
type Count struct {
	N      int
	Source Provenance
}

// Count interprets the named property as a retention count. It returns nil
// with a nil error when the property is absent or holds no value, and nil
// with a *MalformedPropertyError when the value is not a non-negative
// integer.
func (ps PropertySet) Count(name string) (*Count, error) {
	if !ps.HasValue(name) {
		return nil, nil
	}
	p := ps[name]
	n, err := strconv.Atoi(p.Value)
	if err != nil || n < 0 {
		return nil, &MalformedPropertyError{Property: name, Value: p.Value}
	}
	return &Count{N: n, Source: p.Source}, nil
}

// Targets interprets the named property as an ordered, comma-separated
// list of destination identifiers. Empty tokens are dropped.
func (ps PropertySet) Targets(name string) ([]string, Provenance) {
	if !ps.HasValue(name) {
		return nil, ProvenanceUnset
	}
	p := ps[name]
	var targets []string
	for _, tok := range strings.Split(p.Value, ",") {
		if tok = strings.TrimSpace(tok); tok != "" {
			targets = append(targets, tok)
		}
	}
	return targets, p.Source
}

// SnapshotsProperty returns the bare name of the snapshots property for
// the given tier, e.g. "daily-snapshots".
func SnapshotsProperty(tier string) string {
	return tier + SnapshotsSuffix
}

// SnapshotLimitProperty returns the bare name of the snapshot-limit
// property for the given tier, e.g. "daily-snapshot-limit".
func SnapshotLimitProperty(tier string) string {
	return tier + SnapshotLimitSuffix
}

// TierProperties returns the bare names of all properties relevant to a
// backup run for the given tier.
func TierProperties(tier string) []string {
	return []string{
		PropertyReplica,
		PropertyReplicate,
		SnapshotsProperty(tier),
		SnapshotLimitProperty(tier),
	}
}

// TierOf derives the tier name from a tier-scoped property name. It
// reports false for names that are not snapshot or snapshot-limit
// properties.
func TierOf(name string) (string, bool) {
	// Check the longer suffix first: "-snapshot-limit" does not contain
	// "-snapshots", but ordering this way keeps the intent obvious.
	if t, found := strings.CutSuffix(name, SnapshotLimitSuffix); found && t != "" {
		return t, true
	}
	if t, found := strings.CutSuffix(name, SnapshotsSuffix); found && t != "" {
		return t, true
	}
	return "", false
}

// MalformedPropertyError reports a property whose value failed to parse as
// the expected type. It is non-fatal: the property is treated as absent
// for the affected filesystem and tier.
type MalformedPropertyError struct {
	Filesystem string
	Tier       string
	Property   string
	Value      string
}

func (e *MalformedPropertyError) Error() string {
	if e.Filesystem == "" {
		return fmt.Sprintf("badly formed %s=%s property (should be a non-negative integer)", e.Property, e.Value)
	}
	return fmt.Sprintf("badly formed %s=%s property for %s in tier %s (should be a non-negative integer)",
		e.Property, e.Value, e.Filesystem, e.Tier)
}
