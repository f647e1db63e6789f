// Package tools adapts the external zsnap and zreplicate utilities that
// realize zbackup's decisions: zsnap creates tier-prefixed snapshots and
// reaps old ones, zreplicate ships snapshot history to a destination.
package tools

import (
	"context"
	"fmt"
	"io"
	"log"
	"os/exec"
	"strconv"
	"strings"

	"github.com/tesujimath/zbackup/internal/ui"
)

// Runner executes external tool invocations sequentially, logging each
// one. In dry-run mode commands are logged but not executed.
type Runner struct {
	Log    *log.Logger
	DryRun bool
}

// NewRunner returns a Runner. A nil logger discards the trace.
func NewRunner(logger *log.Logger, dryRun bool) *Runner {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Runner{Log: logger, DryRun: dryRun}
}

// Run executes argv, blocking until it completes. Failures carry the argv
// and the tool's combined output.
func (r *Runner) Run(ctx context.Context, argv []string) error {
	line := strings.Join(argv, " ")
	if r.DryRun {
		r.Log.Printf("dry-run: %s", ui.Highlight(line))
		return nil
	}
	r.Log.Printf("%s", ui.Highlight(line))
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s failed: %w\n%s", line, err, string(out))
	}
	return nil
}

// Zsnap invokes zsnap to create and/or reap snapshots for one tier.
type Zsnap struct {
	Runner *Runner

	// Prefix is prepended to the tier in snapshot names, so tier
	// "daily" with prefix "auto-" yields snapshots named auto-daily-*.
	Prefix string

	// TimeFormat overrides zsnap's snapshot-name timestamp format.
	TimeFormat string

	// Verbose passes -v through to zsnap.
	Verbose bool

	// Extra options appended verbatim to every invocation.
	Extra []string
}

// CreateOrReap snapshots the filesystem if takeSnapshot is set, then reaps
// same-tier snapshots beyond retain.
func (z *Zsnap) CreateOrReap(ctx context.Context, tier, filesystem string, takeSnapshot bool, retain int) error {
	return z.Runner.Run(ctx, z.args(tier, filesystem, takeSnapshot, retain))
}

func (z *Zsnap) args(tier, filesystem string, takeSnapshot bool, retain int) []string {
	argv := []string{"zsnap", "-k", strconv.Itoa(retain), "-p", z.Prefix + tier + "-"}
	if !takeSnapshot {
		argv = append(argv, "--nosnapshot")
	}
	if z.Verbose {
		argv = append(argv, "-v")
	}
	if z.TimeFormat != "" {
		argv = append(argv, "-t", z.TimeFormat)
	}
	argv = append(argv, z.Extra...)
	return append(argv, filesystem)
}

// Zreplicate invokes zreplicate to ship a filesystem's snapshot history to
// a destination, creating the destination if absent.
type Zreplicate struct {
	Runner *Runner

	// Verbose passes -v through to zreplicate.
	Verbose bool

	// Extra options appended verbatim to every invocation.
	Extra []string
}

// Replicate ships filesystem to dest.
func (z *Zreplicate) Replicate(ctx context.Context, filesystem, dest string) error {
	return z.Runner.Run(ctx, z.args(filesystem, dest))
}

func (z *Zreplicate) args(filesystem, dest string) []string {
	argv := []string{"zreplicate", "--create-destination", "--no-replication-stream"}
	if z.Verbose {
		argv = append(argv, "-v")
	}
	argv = append(argv, z.Extra...)
	return append(argv, filesystem, dest)
}
