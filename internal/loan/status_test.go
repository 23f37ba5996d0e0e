package loan

import (
	"errors"
	"testing"
)

func TestNormalize_KnownStatuses(t *testing.T) {
	cases := []struct {
		raw       string
		canonical CanonicalStatus
		category  string
	}{
		{"pending_documents", StatusPendingDocuments, DisplayAttention},
		{"draft", StatusPendingDocuments, DisplayAttention},
		{"under_review", StatusUnderReview, DisplayNeutral},
		{"In Review", StatusUnderReview, DisplayNeutral},
		{"UNDER-REVIEW", StatusUnderReview, DisplayNeutral},
		{"approved", StatusApproved, DisplaySuccess},
		{"Accepted", StatusApproved, DisplaySuccess},
		{"rejected", StatusRejected, DisplayDanger},
		{"declined", StatusRejected, DisplayDanger},
		{"active", StatusActive, DisplaySuccess},
		{"disbursed", StatusActive, DisplaySuccess},
		{"completed", StatusCompleted, DisplayNeutral},
		{"paid_off", StatusCompleted, DisplayNeutral},
	}

	var normalizer Normalizer
	for _, tc := range cases {
		info, err := normalizer.Normalize(tc.raw)
		if err != nil {
			t.Fatalf("Normalize(%q): %v", tc.raw, err)
		}
		if info.Canonical != tc.canonical {
			t.Errorf("Normalize(%q): expected %s, got %s", tc.raw, tc.canonical, info.Canonical)
		}
		if info.DisplayCategory != tc.category {
			t.Errorf("Normalize(%q): expected category %s, got %s", tc.raw, tc.category, info.DisplayCategory)
		}
	}
}

func TestNormalize_UnknownDefaultsToPendingDocuments(t *testing.T) {
	info, err := Normalizer{}.Normalize("weird_status_v2")
	if err != nil {
		t.Fatalf("expected no error in lenient mode, got %v", err)
	}
	if info.Canonical != StatusPendingDocuments {
		t.Errorf("expected PendingDocuments, got %s", info.Canonical)
	}
	if info.DisplayCategory != DisplayAttention {
		t.Errorf("expected attention category, got %s", info.DisplayCategory)
	}
}

func TestNormalize_StrictFailsOnUnknown(t *testing.T) {
	_, err := Normalizer{Strict: true}.Normalize("weird_status_v2")
	if err == nil {
		t.Fatal("expected an error in strict mode")
	}
	var unknown *UnknownStatusError
	if !errors.As(err, &unknown) {
		t.Fatalf("expected UnknownStatusError, got %T", err)
	}
	if unknown.Raw != "weird_status_v2" {
		t.Errorf("expected raw status in error, got %q", unknown.Raw)
	}

	// known statuses still normalize in strict mode
	info, err := Normalizer{Strict: true}.Normalize("approved")
	if err != nil {
		t.Fatalf("expected no error for known status, got %v", err)
	}
	if info.Canonical != StatusApproved {
		t.Errorf("expected Approved, got %s", info.Canonical)
	}
}
