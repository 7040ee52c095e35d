package domain

import "math"

// Cluster is a transient grouping produced by one clustering pass. It holds
// its members; the centroid is recomputed on demand rather than maintained
// incrementally — correctness over performance at this scale.
type Cluster struct {
	Events []Event
}

// Centroid returns the arithmetic mean of the member coordinates.
func (c *Cluster) Centroid() (lat, lon float64) {
	if len(c.Events) == 0 {
		return 0, 0
	}
	for _, e := range c.Events {
		lat += e.Latitude
		lon += e.Longitude
	}
	n := float64(len(c.Events))
	return lat / n, lon / n
}

// distanceTo is the Euclidean distance in degree-space from the cluster's
// centroid to a point. Degree-space, not great-circle: the radii in use are
// small enough that the error does not matter for area counting.
func (c *Cluster) distanceTo(lat, lon float64) float64 {
	clat, clon := c.Centroid()
	return math.Hypot(clat-lat, clon-lon)
}

// ClusterByRadius groups events geographically with a greedy single pass:
// each event joins the first existing cluster whose centroid lies within
// radius degrees, or starts a new singleton. "First matching cluster wins"
// is the documented tie-break; results depend on input order, which is an
// accepted property of the design, not a defect. Events without valid
// coordinates are excluded — they cannot be placed.
func ClusterByRadius(events []Event, radius float64) []Cluster {
	var clusters []Cluster

	for _, e := range events {
		if !e.HasValidCoords() {
			continue
		}

		placed := false
		for i := range clusters {
			if clusters[i].distanceTo(e.Latitude, e.Longitude) <= radius {
				clusters[i].Events = append(clusters[i].Events, e)
				placed = true
				break
			}
		}
		if !placed {
			clusters = append(clusters, Cluster{Events: []Event{e}})
		}
	}
	return clusters
}
