package oracle

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"matchoracle/internal/models"
)

func TestPairOutcome(t *testing.T) {
	got, err := PairOutcome([]string{"alice", "bob"}, []int64{16, 14})
	if err != nil {
		t.Fatalf("pair: %v", err)
	}
	want := []models.Participant{
		{Account: "alice", Score: 16},
		{Account: "bob", Score: 14},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d participants", len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("participant %d: got %+v want %+v", i, got[i], want[i])
		}
	}

	if _, err := PairOutcome(nil, nil); !errors.Is(err, ErrInvalidShape) {
		t.Fatalf("empty: err=%v want InvalidShape", err)
	}
	if _, err := PairOutcome([]string{"alice"}, []int64{1, 2}); !errors.Is(err, ErrInvalidShape) {
		t.Fatalf("length mismatch: err=%v want InvalidShape", err)
	}
}

func TestValidateShape(t *testing.T) {
	base := func() Submission {
		return Submission{
			Participants: []models.Participant{
				{Account: "alice", Score: 16},
				{Account: "bob", Score: 14},
			},
			WinnerIndex: 0,
		}
	}

	if err := validateShape(base()); err != nil {
		t.Fatalf("valid shape: %v", err)
	}

	sub := base()
	sub.WinnerIndex = WinnerNone
	if err := validateShape(sub); err != nil {
		t.Fatalf("sentinel winner: %v", err)
	}

	sub = base()
	sub.Participants = nil
	if err := validateShape(sub); !errors.Is(err, ErrInvalidShape) {
		t.Fatalf("empty participants: %v", err)
	}

	sub = base()
	sub.Participants[1].Account = "alice"
	if err := validateShape(sub); !errors.Is(err, ErrInvalidShape) {
		t.Fatalf("duplicate account: %v", err)
	}

	sub = base()
	sub.Participants[0].Account = ""
	if err := validateShape(sub); !errors.Is(err, ErrInvalidShape) {
		t.Fatalf("blank account: %v", err)
	}

	sub = base()
	sub.WinnerIndex = 2
	if err := validateShape(sub); !errors.Is(err, ErrInvalidShape) {
		t.Fatalf("winner out of range: %v", err)
	}

	// At the participant cap the sentinel stays unambiguous; one past it the
	// shape is rejected.
	many := make([]models.Participant, MaxParticipants)
	for i := range many {
		many[i] = models.Participant{Account: fmt.Sprintf("p%d", i), Score: int64(i)}
	}
	sub = Submission{Participants: many, WinnerIndex: WinnerNone}
	if err := validateShape(sub); err != nil {
		t.Fatalf("at cap: %v", err)
	}
	sub.Participants = append(many, models.Participant{Account: "overflow"})
	if err := validateShape(sub); !errors.Is(err, ErrInvalidShape) {
		t.Fatalf("past cap: %v", err)
	}
}

func TestAuditDataIntegrity(t *testing.T) {
	sub := Submission{
		Participants: []models.Participant{{Account: "alice", Score: 1}},
	}
	if !auditDataIntegrity(sub) {
		t.Fatalf("clean submission flagged")
	}

	sub.Participants[0].Score = -1
	if auditDataIntegrity(sub) {
		t.Fatalf("negative score not flagged")
	}

	sub.Participants[0].Score = 1
	sub.CustomData = bytes.Repeat([]byte{0}, MaxCustomDataBytes+1)
	if auditDataIntegrity(sub) {
		t.Fatalf("oversized payload not flagged")
	}
	sub.CustomData = sub.CustomData[:MaxCustomDataBytes]
	if !auditDataIntegrity(sub) {
		t.Fatalf("payload at limit flagged")
	}
}
