package zfs

import (
	"errors"
	"strings"
	"testing"

	"github.com/tesujimath/zbackup/internal/policy"
)

func TestPrefixRoundTrip(t *testing.T) {
	name := "daily-snapshots"
	prefixed := Prefixed(name)
	if prefixed != Module+":daily-snapshots" {
		t.Errorf("Prefixed = %q", prefixed)
	}
	if !IsPrefixed(prefixed) {
		t.Errorf("IsPrefixed(%q) = false", prefixed)
	}
	if IsPrefixed(name) {
		t.Errorf("IsPrefixed(%q) = true", name)
	}
	if got := Bare(prefixed); got != name {
		t.Errorf("Bare = %q, want %q", got, name)
	}
}

func TestParseGetOutput(t *testing.T) {
	lines := []string{
		strings.Join([]string{"tank/a", Prefixed("daily-snapshots"), "7", "local"}, "\t"),
		strings.Join([]string{"tank/a", "compression", "zstd", "local"}, "\t"),
		strings.Join([]string{"tank/b", Prefixed("replica"), "-", "-"}, "\t"),
		strings.Join([]string{"tank/b", Prefixed("weekly-snapshots"), "4", "inherited from tank"}, "\t"),
		"",
	}

	raws, err := parseGetOutput([]byte(strings.Join(lines, "\n")))
	if err != nil {
		t.Fatalf("parseGetOutput: %v", err)
	}

	want := []policy.RawProperty{
		{Filesystem: "tank/a", Name: "daily-snapshots", Value: "7", Source: "local"},
		{Filesystem: "tank/b", Name: "replica", Value: "-", Source: "-"},
		{Filesystem: "tank/b", Name: "weekly-snapshots", Value: "4", Source: "inherited from tank"},
	}
	if len(raws) != len(want) {
		t.Fatalf("got %d rows, want %d: %v", len(raws), len(want), raws)
	}
	for i := range want {
		if raws[i] != want[i] {
			t.Errorf("row %d = %+v, want %+v", i, raws[i], want[i])
		}
	}
}

func TestParsePoolList(t *testing.T) {
	out := "tank\t1.2T\t500G\t700G\t-\t10%\t41%\t1.00x\tONLINE\t-\n" +
		"backup\t2.4T\t1T\t1.4T\t-\t5%\t41%\t1.00x\tONLINE\t-\n"

	pools, err := parsePoolList([]byte(out))
	if err != nil {
		t.Fatalf("parsePoolList: %v", err)
	}
	if len(pools) != 2 || pools[0] != "tank" || pools[1] != "backup" {
		t.Errorf("pools = %v", pools)
	}
}

func TestParsePoolListEmpty(t *testing.T) {
	if _, err := parsePoolList(nil); !errors.Is(err, ErrNoPools) {
		t.Errorf("err = %v, want ErrNoPools", err)
	}
}

func TestParseGetOutputRejectsShortLines(t *testing.T) {
	if _, err := parseGetOutput([]byte("tank/a\tonly-two")); err == nil {
		t.Error("parseGetOutput accepted a malformed line")
	}
}
