// Package zfs adapts the ZFS user-property store for zbackup.
//
// Backup policy lives in ZFS user properties namespaced under the zbackup
// module prefix. This package wraps the zfs and zpool command-line tools
// to query and mutate those properties, translating between the on-disk
// prefixed names and the bare names the policy core works with.
package zfs

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"os/exec"
	"strings"

	"github.com/tesujimath/zbackup/internal/policy"
)

// Module is the user-property namespace prefix. Namespacing keeps zbackup
// properties from colliding with unrelated user properties.
const Module = "com.github.tesujimath.zbackup"

// Prefixed returns the on-disk property name for a bare name.
func Prefixed(name string) string {
	return Module + ":" + name
}

// IsPrefixed reports whether a property name is in the zbackup namespace.
func IsPrefixed(name string) bool {
	return strings.HasPrefix(name, Module+":")
}

// Bare strips the module prefix from an on-disk property name.
func Bare(name string) string {
	return strings.TrimPrefix(name, Module+":")
}

// CommandStore implements the property store against the zfs and zpool
// command-line tools.
type CommandStore struct {
	// Log receives a trace of every command invocation. Never nil after
	// NewCommandStore.
	Log *log.Logger

	// DryRun logs mutating commands instead of executing them. Queries
	// still run.
	DryRun bool
}

// NewCommandStore returns a CommandStore, verifying that the zfs binary is
// available. A nil logger discards the trace.
func NewCommandStore(logger *log.Logger, dryRun bool) (*CommandStore, error) {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if _, err := exec.LookPath("zfs"); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrZFSNotAvailable, err)
	}
	return &CommandStore{Log: logger, DryRun: dryRun}, nil
}

// Pools returns the names of all storage pools on this host. A host
// without any pools has nothing for zbackup to do and is reported as
// ErrNoPools.
func (s *CommandStore) Pools(ctx context.Context) ([]string, error) {
	out, err := s.output(ctx, "zpool", "list", "-H")
	if err != nil {
		return nil, err
	}
	return parsePoolList(out)
}

func parsePoolList(out []byte) ([]string, error) {
	var pools []string
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		if fields := strings.Fields(scanner.Text()); len(fields) > 0 {
			pools = append(pools, fields[0])
		}
	}
	if len(pools) == 0 {
		return nil, ErrNoPools
	}
	return pools, nil
}

// Get queries the named zbackup properties for every filesystem under
// pool. A nil names slice queries all properties; rows outside the
// zbackup namespace are dropped either way, and returned names are bare.
func (s *CommandStore) Get(ctx context.Context, pool string, names []string) ([]policy.RawProperty, error) {
	query := "all"
	if names != nil {
		prefixed := make([]string, len(names))
		for i, name := range names {
			prefixed[i] = Prefixed(name)
		}
		query = strings.Join(prefixed, ",")
	}
	out, err := s.output(ctx, "zfs", "get", "-H", "-r", "-t", "filesystem", query, pool)
	if err != nil {
		return nil, err
	}
	return parseGetOutput(out)
}

// Set sets one zbackup property directly on a filesystem.
func (s *CommandStore) Set(ctx context.Context, filesystem, name, value string) error {
	return s.mutate(ctx, "zfs", "set", fmt.Sprintf("%s=%s", Prefixed(name), value), filesystem)
}

// Inherit removes the local value of one zbackup property from a
// filesystem, reverting it to whatever the ancestors provide. This is the
// store's "unset" primitive.
func (s *CommandStore) Inherit(ctx context.Context, filesystem, name string) error {
	return s.mutate(ctx, "zfs", "inherit", Prefixed(name), filesystem)
}

func (s *CommandStore) output(ctx context.Context, name string, args ...string) ([]byte, error) {
	s.Log.Printf("%s %s", name, strings.Join(args, " "))
	cmd := exec.CommandContext(ctx, name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("%s %s failed: %w\n%s",
			name, strings.Join(args, " "), err, stderr.String())
	}
	return out, nil
}

func (s *CommandStore) mutate(ctx context.Context, name string, args ...string) error {
	if s.DryRun {
		s.Log.Printf("dry-run: %s %s", name, strings.Join(args, " "))
		return nil
	}
	cmd := exec.CommandContext(ctx, name, args...)
	s.Log.Printf("%s %s", name, strings.Join(args, " "))
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s %s failed: %w\n%s",
			name, strings.Join(args, " "), err, string(out))
	}
	return nil
}

// parseGetOutput parses the tab-separated output of zfs get -H into raw
// property rows, keeping only the zbackup namespace and stripping the
// prefix. Lines are name<TAB>property<TAB>value<TAB>source.
func parseGetOutput(out []byte) ([]policy.RawProperty, error) {
	var raws []policy.RawProperty
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) != 4 {
			return nil, fmt.Errorf("unexpected zfs get output line: %q", line)
		}
		if !IsPrefixed(fields[1]) {
			continue
		}
		raws = append(raws, policy.RawProperty{
			Filesystem: fields[0],
			Name:       Bare(fields[1]),
			Value:      fields[2],
			Source:     fields[3],
		})
	}
	return raws, scanner.Err()
}
