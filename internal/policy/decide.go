package policy

import "errors"

// ReplicateMatch selects how the replicate property's value gates
// replication for a tier.
//
// Requiring the value to equal the tier name makes a filesystem replicate
// during exactly one tier's run; treating the property as a plain flag
// replicates on every tier. Both readings exist in the wild, so the check
// is explicit rather than assumed.
type ReplicateMatch string

const (
	// MatchTier replicates only when the replicate property's value
	// equals the tier being run. This is the default.
	MatchTier ReplicateMatch = "tier"

	// MatchAny replicates whenever the replicate property carries any
	// value, regardless of tier.
	MatchAny ReplicateMatch = "any"
)

// ParseReplicateMatch validates a replicate-match mode from configuration.
func ParseReplicateMatch(s string) (ReplicateMatch, error) {
	switch ReplicateMatch(s) {
	case MatchTier, MatchAny:
		return ReplicateMatch(s), nil
	case "":
		return MatchTier, nil
	}
	return "", errors.New("replicate-match must be \"tier\" or \"any\"")
}

// Decision is the outcome of resolving one filesystem's properties for one
// tier. It is computed fresh on every run and never persisted.
type Decision struct {
	// TakeSnapshot is true only when the tier's snapshots property is
	// set locally on the filesystem.
	TakeSnapshot bool

	// RetainCount is how many snapshots of this tier to keep, or nil
	// when neither snapshot property yields a count, in which case no
	// snapshot or reap action is taken at all.
	RetainCount *int

	// Replicate is true when the filesystem's snapshot history should
	// be shipped to the ReplicaTargets.
	Replicate bool

	// ReplicaTargets are the replication destinations, in property
	// order. Each is replicated to independently.
	ReplicaTargets []string
}

// Options configures Decide.
type Options struct {
	// ReplicateMatch gates replication on the replicate property's
	// value; zero value means MatchTier.
	ReplicateMatch ReplicateMatch

	// Warn receives non-fatal malformed-property errors. May be nil.
	Warn func(error)
}

func (o Options) warn(err error) {
	if o.Warn != nil {
		o.Warn(err)
	}
}

// Decide resolves the backup decision for one filesystem and tier.
//
// It is a pure function of its inputs: no I/O, no mutation of props.
// Malformed counts are reported through opts.Warn and treated as absent.
func Decide(tier, filesystem string, props PropertySet, opts Options) Decision {
	var d Decision

	// A locally set snapshots count is an instruction to take a new
	// snapshot. A received count must not re-trigger snapshot creation
	// downstream; it only says how many snapshots to retain there.
	snapshots := countOrWarn(tier, filesystem, props, SnapshotsProperty(tier), opts)
	if snapshots != nil && snapshots.Source == ProvenanceLocal {
		d.TakeSnapshot = true
	}

	// snapshot-limit is a pure retention cap. When present it overrides
	// the snapshots count unconditionally and never triggers a snapshot.
	limit := countOrWarn(tier, filesystem, props, SnapshotLimitProperty(tier), opts)

	switch {
	case limit != nil:
		d.RetainCount = &limit.N
	case snapshots != nil:
		d.RetainCount = &snapshots.N
	}

	// Replication is an explicit local instruction: both the replicate
	// flag and the replica destination list must be set locally.
	if eligible(tier, props, opts.ReplicateMatch) {
		if targets, src := props.Targets(PropertyReplica); src == ProvenanceLocal && len(targets) > 0 {
			d.Replicate = true
			d.ReplicaTargets = targets
		}
	}

	return d
}

func eligible(tier string, props PropertySet, match ReplicateMatch) bool {
	if !props.HasValue(PropertyReplicate) {
		return false
	}
	p := props[PropertyReplicate]
	if p.Source != ProvenanceLocal {
		return false
	}
	if match == MatchAny {
		return true
	}
	return p.Value == tier
}

func countOrWarn(tier, filesystem string, props PropertySet, name string, opts Options) *Count {
	c, err := props.Count(name)
	if err != nil {
		var malformed *MalformedPropertyError
		if errors.As(err, &malformed) {
			malformed.Filesystem = filesystem
			malformed.Tier = tier
		}
		opts.warn(err)
		return nil
	}
	return c
}
