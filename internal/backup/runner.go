// Package backup orchestrates a zbackup run: it scans every storage pool
// for policy properties, resolves a decision per filesystem, and drives
// the snapshot and replication adapters to realize it.
package backup

import (
	"context"
	"fmt"
	"io"
	"log"
	"sort"
	"strings"

	"github.com/tesujimath/zbackup/internal/policy"
	"github.com/tesujimath/zbackup/internal/ui"
)

// Store is the property store consumed by the orchestrator. Implemented
// by zfs.CommandStore.
type Store interface {
	Pools(ctx context.Context) ([]string, error)
	Get(ctx context.Context, pool string, names []string) ([]policy.RawProperty, error)
	Set(ctx context.Context, filesystem, name, value string) error
	Inherit(ctx context.Context, filesystem, name string) error
}

// Snapshotter creates and reaps tier snapshots. Implemented by
// tools.Zsnap.
type Snapshotter interface {
	CreateOrReap(ctx context.Context, tier, filesystem string, takeSnapshot bool, retain int) error
}

// Replicator ships snapshot history to a destination. Implemented by
// tools.Zreplicate.
type Replicator interface {
	Replicate(ctx context.Context, filesystem, dest string) error
}

// Runner executes zbackup operations against a property store and the
// snapshot/replication tools.
type Runner struct {
	Store Store
	Snap  Snapshotter
	Repl  Replicator

	// DeleteTiers are pruned (retention zero, no new snapshot) before
	// any replication, so soon-to-be-deleted history is never shipped.
	DeleteTiers []string

	// ReplicateMatch gates replication on the replicate property's
	// value; zero value means policy.MatchTier.
	ReplicateMatch policy.ReplicateMatch

	// Warnings receives non-fatal reports: malformed properties and
	// skipped bulk-set pairs. Never nil after NewRunner.
	Warnings *log.Logger

	// Trace receives verbose progress output. Never nil after
	// NewRunner.
	Trace *log.Logger
}

// NewRunner fills in discard loggers for any that are nil.
func NewRunner(store Store, snap Snapshotter, repl Replicator, warnings, trace *log.Logger) *Runner {
	discard := log.New(io.Discard, "", 0)
	if warnings == nil {
		warnings = discard
	}
	if trace == nil {
		trace = discard
	}
	return &Runner{Store: store, Snap: snap, Repl: repl, Warnings: warnings, Trace: trace}
}

// Backup runs the given tier across every pool. The first adapter failure
// aborts the whole run.
func (r *Runner) Backup(ctx context.Context, tier string) error {
	pools, err := r.Store.Pools(ctx)
	if err != nil {
		return err
	}
	for _, pool := range pools {
		resolved, err := r.read(ctx, pool, policy.TierProperties(tier))
		if err != nil {
			return err
		}
		for _, filesystem := range sortedKeys(resolved) {
			if err := r.backupFilesystem(ctx, tier, filesystem, resolved[filesystem]); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *Runner) backupFilesystem(ctx context.Context, tier, filesystem string, props policy.PropertySet) error {
	decision := policy.Decide(tier, filesystem, props, policy.Options{
		ReplicateMatch: r.ReplicateMatch,
		Warn:           func(err error) { r.Warnings.Printf("%s", ui.RenderWarn(err.Error())) },
	})

	if decision.RetainCount != nil {
		err := r.Snap.CreateOrReap(ctx, tier, filesystem, decision.TakeSnapshot, *decision.RetainCount)
		if err != nil {
			return err
		}
	}

	if !decision.Replicate {
		return nil
	}
	// Prune-before-replicate: drop the doomed tiers once, then ship to
	// each target in property order.
	for _, doomed := range r.DeleteTiers {
		if err := r.Snap.CreateOrReap(ctx, doomed, filesystem, false, 0); err != nil {
			return err
		}
	}
	for _, target := range decision.ReplicaTargets {
		if err := r.Repl.Replicate(ctx, filesystem, target); err != nil {
			return err
		}
	}
	return nil
}

// List writes every filesystem's effective policy to w, one line per
// filesystem, sorted by name within each pool.
func (r *Runner) List(ctx context.Context, w io.Writer) error {
	pools, err := r.Store.Pools(ctx)
	if err != nil {
		return err
	}
	for _, pool := range pools {
		raws, err := r.Store.Get(ctx, pool, nil)
		if err != nil {
			return err
		}
		resolved := policy.Resolve(raws, true)
		for _, filesystem := range sortedKeys(resolved) {
			tokens := policy.FormatEffective(resolved[filesystem])
			if _, err := fmt.Fprintf(w, "%s %s\n", filesystem, strings.Join(tokens, " ")); err != nil {
				return err
			}
		}
	}
	return nil
}

// SetProperties applies name=value pairs to one filesystem. A pair that
// does not split into a name and a value is reported and skipped; it does
// not abort the rest.
func (r *Runner) SetProperties(ctx context.Context, filesystem string, pairs []string) error {
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		if !ok || name == "" {
			r.Warnings.Printf("%s", ui.RenderWarn("ignoring badly formatted property=value: "+pair))
			continue
		}
		if err := r.Store.Set(ctx, filesystem, name, value); err != nil {
			return err
		}
	}
	return nil
}

// UnsetProperties removes the local value of each named property from one
// filesystem.
func (r *Runner) UnsetProperties(ctx context.Context, filesystem string, names []string) error {
	for _, name := range names {
		if err := r.Store.Inherit(ctx, filesystem, name); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) read(ctx context.Context, pool string, names []string) (map[string]policy.PropertySet, error) {
	raws, err := r.Store.Get(ctx, pool, names)
	if err != nil {
		return nil, err
	}
	resolved := policy.Resolve(raws, false)
	for _, filesystem := range sortedKeys(resolved) {
		for _, name := range sortedPropertyNames(resolved[filesystem]) {
			p := resolved[filesystem][name]
			r.Trace.Printf("%s %s=%s %s", filesystem, name, p.Value, p.Source)
		}
	}
	return resolved, nil
}

func sortedKeys(m map[string]policy.PropertySet) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedPropertyNames(ps policy.PropertySet) []string {
	names := make([]string, 0, len(ps))
	for name := range ps {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
