package policy

import (
	"strings"
	"testing"
)

func TestFormatEffectiveLocalOnly(t *testing.T) {
	ps := props(map[string]Property{
		"weekly-snapshots": {Value: "4", Source: ProvenanceLocal},
		"daily-snapshots":  {Value: "7", Source: ProvenanceLocal},
		"replica":          {Value: "backup-host/pool", Source: ProvenanceLocal},
		"replicate":        {Value: "daily", Source: ProvenanceLocal},
	})

	got := strings.Join(FormatEffective(ps), " ")
	want := "daily-snapshots=7 weekly-snapshots=4 replica=backup-host/pool replicate=daily"
	if got != want {
		t.Errorf("FormatEffective = %q, want %q", got, want)
	}
}

func TestFormatEffectiveReplicationLast(t *testing.T) {
	ps := props(map[string]Property{
		"replicate":       {Value: "daily", Source: ProvenanceLocal},
		"replica":         {Value: "backup-host/pool", Source: ProvenanceLocal},
		"daily-snapshots": {Value: "7", Source: ProvenanceLocal},
		"zz-snapshots":    {Value: "1", Source: ProvenanceLocal},
	})

	tokens := FormatEffective(ps)
	if len(tokens) != 4 {
		t.Fatalf("got %d tokens: %v", len(tokens), tokens)
	}
	if tokens[2] != "replica=backup-host/pool" || tokens[3] != "replicate=daily" {
		t.Errorf("replication tokens not last: %v", tokens)
	}
	// Everything before them sorts lexically.
	if tokens[0] != "daily-snapshots=7" || tokens[1] != "zz-snapshots=1" {
		t.Errorf("retention tokens out of order: %v", tokens)
	}
}

func TestFormatEffectiveNonLocalFillsLimitDefault(t *testing.T) {
	// A received snapshots count on a downstream filesystem governs
	// reaping there, so it shows up as the tier's effective limit.
	ps := props(map[string]Property{
		"daily-snapshots": {Value: "7", Source: ProvenanceReceived},
	})

	got := strings.Join(FormatEffective(ps), " ")
	want := "daily-snapshot-limit=7"
	if got != want {
		t.Errorf("FormatEffective = %q, want %q", got, want)
	}
}

func TestFormatEffectiveLocalLimitWins(t *testing.T) {
	ps := props(map[string]Property{
		"daily-snapshots":      {Value: "7", Source: ProvenanceReceived},
		"daily-snapshot-limit": {Value: "3", Source: ProvenanceLocal},
	})

	got := strings.Join(FormatEffective(ps), " ")
	want := "daily-snapshot-limit=3"
	if got != want {
		t.Errorf("FormatEffective = %q, want %q", got, want)
	}
}

func TestFormatEffectiveNonLocalLimitBeatsCountDefault(t *testing.T) {
	ps := props(map[string]Property{
		"daily-snapshots":      {Value: "7", Source: ProvenanceReceived},
		"daily-snapshot-limit": {Value: "3", Source: ProvenanceInherited},
	})

	got := strings.Join(FormatEffective(ps), " ")
	want := "daily-snapshot-limit=3"
	if got != want {
		t.Errorf("FormatEffective = %q, want %q", got, want)
	}
}

func TestFormatEffectiveNonLocalReplicationHidden(t *testing.T) {
	// Replication is gated on local provenance, so non-local replica and
	// replicate values are not part of the effective policy.
	ps := props(map[string]Property{
		"replicate": {Value: "daily", Source: ProvenanceReceived},
		"replica":   {Value: "backup-host/pool", Source: ProvenanceInherited},
	})

	if tokens := FormatEffective(ps); len(tokens) != 0 {
		t.Errorf("FormatEffective = %v, want empty", tokens)
	}
}

func TestFormatEffectiveIdempotentOnLocalSet(t *testing.T) {
	ps := props(map[string]Property{
		"daily-snapshots":      {Value: "7", Source: ProvenanceLocal},
		"daily-snapshot-limit": {Value: "3", Source: ProvenanceLocal},
		"replicate":            {Value: "daily", Source: ProvenanceLocal},
	})

	first := strings.Join(FormatEffective(ps), " ")
	second := strings.Join(FormatEffective(ps), " ")
	if first != second {
		t.Errorf("FormatEffective not stable: %q then %q", first, second)
	}
}
