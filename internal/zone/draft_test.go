package zone

import (
	"errors"
	"testing"
	"zoneguard/internal/geometry"
)

func TestDraft_FinishCommitsZone(t *testing.T) {
	s, _ := newTestStore(t)
	d := NewDraft(s.logger)

	d.Start()
	for _, p := range triangle(0, 0) {
		if !d.AddPoint(p) {
			t.Fatalf("AddPoint(%v) rejected in drawing mode", p)
		}
	}

	if err := d.Finish(s); err != nil {
		t.Fatalf("Finish failed: %v", err)
	}
	if s.Len() != 1 {
		t.Fatalf("expected 1 zone, got %d", s.Len())
	}
	if len(d.Points()) != 0 {
		t.Error("draft should be empty after finish")
	}
	if !d.Active() {
		t.Error("drawing mode should stay on for the next zone")
	}
}

func TestDraft_FinishTooFewPoints(t *testing.T) {
	s, _ := newTestStore(t)
	d := NewDraft(s.logger)

	d.Start()
	d.AddPoint(geometry.Pt(0, 0))
	d.AddPoint(geometry.Pt(5, 5))

	if err := d.Finish(s); !errors.Is(err, ErrInvalidZone) {
		t.Fatalf("expected ErrInvalidZone, got %v", err)
	}
	if s.Len() != 0 {
		t.Error("no zone should be committed")
	}
	if len(d.Points()) != 2 {
		t.Errorf("points should be kept, got %d", len(d.Points()))
	}
}

func TestDraft_UndoAndCancel(t *testing.T) {
	s, _ := newTestStore(t)
	d := NewDraft(s.logger)

	if d.AddPoint(geometry.Pt(1, 1)) {
		t.Error("AddPoint should be ignored outside drawing mode")
	}

	d.Start()
	d.AddPoint(geometry.Pt(1, 1))
	d.AddPoint(geometry.Pt(2, 2))

	last, ok := d.RemoveLastPoint()
	if !ok || last != geometry.Pt(2, 2) {
		t.Errorf("expected to remove (2,2), got %v ok=%v", last, ok)
	}

	d.Cancel()
	if d.Active() {
		t.Error("drawing mode should be off after cancel")
	}
	if len(d.Points()) != 0 {
		t.Error("cancel should discard points")
	}
	if _, ok := d.RemoveLastPoint(); ok {
		t.Error("RemoveLastPoint should fail outside drawing mode")
	}
}
