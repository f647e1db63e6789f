package policy

import (
	"errors"
	"testing"
)

func TestCount(t *testing.T) {
	ps := props(map[string]Property{
		"daily-snapshots":  {Value: "7", Source: ProvenanceLocal},
		"weekly-snapshots": {Value: "seven", Source: ProvenanceLocal},
		"hourly-snapshots": {Value: "none", Source: ProvenanceLocal},
	})

	c, err := ps.Count("daily-snapshots")
	if err != nil || c == nil || c.N != 7 || c.Source != ProvenanceLocal {
		t.Errorf("Count(daily-snapshots) = %+v, %v", c, err)
	}

	c, err = ps.Count("weekly-snapshots")
	if c != nil {
		t.Errorf("malformed count = %+v, want nil", c)
	}
	var malformed *MalformedPropertyError
	if !errors.As(err, &malformed) {
		t.Fatalf("err = %v, want *MalformedPropertyError", err)
	}
	if malformed.Property != "weekly-snapshots" || malformed.Value != "seven" {
		t.Errorf("malformed fields = %+v", malformed)
	}

	negative := props(map[string]Property{
		"daily-snapshots": {Value: "-3", Source: ProvenanceLocal},
	})
	if c, err = negative.Count("daily-snapshots"); c != nil || err == nil {
		t.Errorf("Count of negative value = %+v, %v; want nil, error", c, err)
	}

	if c, err = ps.Count("hourly-snapshots"); c != nil || err != nil {
		t.Errorf("Count of value none = %+v, %v; want nil, nil", c, err)
	}
	if c, err = ps.Count("monthly-snapshots"); c != nil || err != nil {
		t.Errorf("Count of absent property = %+v, %v; want nil, nil", c, err)
	}
}

func TestTargets(t *testing.T) {
	ps := props(map[string]Property{
		"replica": {Value: "b/pool, a/pool,,c/pool", Source: ProvenanceLocal},
	})

	targets, src := ps.Targets("replica")
	if src != ProvenanceLocal {
		t.Errorf("source = %v", src)
	}
	want := []string{"b/pool", "a/pool", "c/pool"}
	if !equalStrings(targets, want) {
		t.Errorf("targets = %v, want %v", targets, want)
	}

	if targets, src := ps.Targets("absent"); targets != nil || src != ProvenanceUnset {
		t.Errorf("Targets(absent) = %v, %v", targets, src)
	}
}

func TestTierPropertyNames(t *testing.T) {
	if got := SnapshotsProperty("daily"); got != "daily-snapshots" {
		t.Errorf("SnapshotsProperty = %q", got)
	}
	if got := SnapshotLimitProperty("daily"); got != "daily-snapshot-limit" {
		t.Errorf("SnapshotLimitProperty = %q", got)
	}

	want := []string{"replica", "replicate", "daily-snapshots", "daily-snapshot-limit"}
	if got := TierProperties("daily"); !equalStrings(got, want) {
		t.Errorf("TierProperties = %v, want %v", got, want)
	}
}

func TestTierOf(t *testing.T) {
	tests := []struct {
		name string
		tier string
		ok   bool
	}{
		{"daily-snapshots", "daily", true},
		{"daily-snapshot-limit", "daily", true},
		{"two-word-tier-snapshots", "two-word-tier", true},
		{"replica", "", false},
		{"replicate", "", false},
		{"-snapshots", "", false},
		{"snapshots", "", false},
	}
	for _, tt := range tests {
		tier, ok := TierOf(tt.name)
		if tier != tt.tier || ok != tt.ok {
			t.Errorf("TierOf(%q) = %q, %v; want %q, %v", tt.name, tier, ok, tt.tier, tt.ok)
		}
	}
}
