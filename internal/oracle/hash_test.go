package oracle

import (
	"strings"
	"testing"
	"time"

	"matchoracle/internal/models"
)

func TestComputeResultHash(t *testing.T) {
	at := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	participants := []models.Participant{
		{Account: "alice", Score: 16},
		{Account: "bob", Score: 14},
	}

	base := ComputeResultHash("m1", "game1", "dev1", participants, 0, 1800, nil, nil, at)
	if !strings.HasPrefix(base, "0x") || len(base) != 2+64 {
		t.Fatalf("hash format: %q", base)
	}

	// Deterministic over identical inputs.
	if again := ComputeResultHash("m1", "game1", "dev1", participants, 0, 1800, nil, nil, at); again != base {
		t.Fatalf("hash not deterministic")
	}

	// Every field participates.
	schemaID := "schema1"
	variants := []string{
		ComputeResultHash("m2", "game1", "dev1", participants, 0, 1800, nil, nil, at),
		ComputeResultHash("m1", "game2", "dev1", participants, 0, 1800, nil, nil, at),
		ComputeResultHash("m1", "game1", "dev2", participants, 0, 1800, nil, nil, at),
		ComputeResultHash("m1", "game1", "dev1", participants[:1], 0, 1800, nil, nil, at),
		ComputeResultHash("m1", "game1", "dev1", participants, 1, 1800, nil, nil, at),
		ComputeResultHash("m1", "game1", "dev1", participants, 0, 1801, nil, nil, at),
		ComputeResultHash("m1", "game1", "dev1", participants, 0, 1800, &schemaID, nil, at),
		ComputeResultHash("m1", "game1", "dev1", participants, 0, 1800, nil, []byte{1}, at),
		ComputeResultHash("m1", "game1", "dev1", participants, 0, 1800, nil, nil, at.Add(time.Nanosecond)),
	}
	seen := map[string]bool{base: true}
	for i, v := range variants {
		if seen[v] {
			t.Fatalf("variant %d collides", i)
		}
		seen[v] = true
	}
}

func TestComputeResultHash_FieldBoundaries(t *testing.T) {
	at := time.Unix(0, 0).UTC()

	// Length prefixing keeps adjacent string fields from sliding into each
	// other.
	a := ComputeResultHash("ab", "c", "d", nil, WinnerNone, 0, nil, nil, at)
	b := ComputeResultHash("a", "bc", "d", nil, WinnerNone, 0, nil, nil, at)
	if a == b {
		t.Fatalf("field boundary collision")
	}

	// A nil schema id and an empty one digest identically on purpose; both
	// mean "no schema".
	empty := ""
	x := ComputeResultHash("m", "g", "s", nil, WinnerNone, 0, nil, nil, at)
	y := ComputeResultHash("m", "g", "s", nil, WinnerNone, 0, &empty, nil, at)
	if x != y {
		t.Fatalf("nil and empty schema id should digest identically")
	}
}
