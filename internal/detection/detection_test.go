package detection

import (
	"testing"
	"zoneguard/internal/geometry"

	"github.com/google/go-cmp/cmp"
)

func TestPersonCentroids(t *testing.T) {
	results := []Result{
		{ClassID: 1, Label: "person", Confidence: 0.9, Box: geometry.Box{X1: 0, Y1: 0, X2: 10, Y2: 20}},
		{ClassID: 3, Label: "car", Confidence: 0.8, Box: geometry.Box{X1: 50, Y1: 50, X2: 90, Y2: 70}},
		{ClassID: 1, Label: "person", Confidence: 0.6, Box: geometry.Box{X1: 101, Y1: 33, X2: 110, Y2: 40}},
	}

	got := PersonCentroids(results, 1)
	want := []geometry.Point{{X: 5, Y: 10}, {X: 105, Y: 36}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("unexpected centroids (-want +got):\n%s", diff)
	}
}

func TestPersons_NoMatch(t *testing.T) {
	results := []Result{{ClassID: 3, Label: "car"}}
	if got := Persons(results, 0); len(got) != 0 {
		t.Errorf("expected no persons, got %d", len(got))
	}
	if got := PersonCentroids(nil, 0); len(got) != 0 {
		t.Errorf("expected no centroids for nil input, got %d", len(got))
	}
}
