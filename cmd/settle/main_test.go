package main

import (
	"testing"
	"time"
)

func TestParseCutoff(t *testing.T) {
	got, err := parseCutoff("2026-10-01")
	if err != nil {
		t.Fatalf("parseCutoff failed: %v", err)
	}
	want := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC).Unix()
	if got != want {
		t.Errorf("expected %d, got %d", want, got)
	}

	if got, err := parseCutoff(""); err != nil || got != 0 {
		t.Errorf("empty cutoff: expected 0, nil; got %d, %v", got, err)
	}

	if _, err := parseCutoff("01/10/2026"); err == nil {
		t.Error("expected error for malformed date")
	}
}
