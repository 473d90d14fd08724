// Package detection defines the boundary between an object detector and the
// zone logic: the rest of the program only ever sees person centroids.
package detection

import "zoneguard/internal/geometry"

// Result is one raw detector output.
type Result struct {
	ClassID    int
	Label      string
	Confidence float64
	Box        geometry.Box
}

// Persons keeps the results whose class is personClassID.
func Persons(results []Result, personClassID int) []Result {
	persons := make([]Result, 0, len(results))
	for _, r := range results {
		if r.ClassID == personClassID {
			persons = append(persons, r)
		}
	}
	return persons
}

// Centroids converts results to their integer box centers.
func Centroids(results []Result) []geometry.Point {
	points := make([]geometry.Point, len(results))
	for i, r := range results {
		points[i] = r.Box.Centroid()
	}
	return points
}

// PersonCentroids is Centroids(Persons(results, personClassID)).
func PersonCentroids(results []Result, personClassID int) []geometry.Point {
	return Centroids(Persons(results, personClassID))
}
