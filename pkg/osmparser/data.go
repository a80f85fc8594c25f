package osmparser

import (
	"context"
	"io"

	"github.com/lintang-b-s/navigatorx-dispatch/pkg/geo"
	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"
	"github.com/paulmach/osm/osmxml"
)

type NodeType uint8

const (
	END_NODE NodeType = iota
	BETWEEN_NODE
	JUNCTION_NODE
)

const WALKING_SPEED_KMH = 5.0

// ScannerFactory opens an osm.Scanner over r. The parser seeks r back to the start between passes.
type ScannerFactory func(ctx context.Context, r io.Reader) osm.Scanner

func PBFScanner(ctx context.Context, r io.Reader) osm.Scanner {
	return osmpbf.New(ctx, r, 1)
}

func XMLScanner(ctx context.Context, r io.Reader) osm.Scanner {
	return osmxml.New(ctx, r)
}

type nodeCoord struct {
	lat float64
	lon float64
}

type node struct {
	id    int64
	coord nodeCoord
}

// Edge is a directed road segment between two graph nodes, before graph ids are final.
type Edge struct {
	from       int64
	to         int64
	length     float64 // meter
	travelTime float64 // second
}

// PointOfInterest is a tagged OSM node or way. Centroid is nil when its geometry could not be
// resolved, e.g. multipolygon relations or ways whose nodes are outside the extract.
type PointOfInterest struct {
	OsmID    int64
	Name     string
	Centroid *geo.Coordinate
	Tags     map[string]string
}

func (p PointOfInterest) HasTag(key, value string) bool {
	return p.Tags[key] == value
}

var (
	// https://wiki.openstreetmap.org/wiki/OSM_tags_for_routing/Telenav
	driveHighway = map[string]struct{}{
		"motorway":         {},
		"motorway_link":    {},
		"trunk":            {},
		"trunk_link":       {},
		"primary":          {},
		"primary_link":     {},
		"secondary":        {},
		"secondary_link":   {},
		"residential":      {},
		"residential_link": {},
		"service":          {},
		"tertiary":         {},
		"tertiary_link":    {},
		"road":             {},
		"track":            {},
		"unclassified":     {},
		"undefined":        {},
		"unknown":          {},
		"living_street":    {},
		"private":          {},
		"motorroad":        {},
	}

	walkHighway = map[string]struct{}{
		"footway":       {},
		"path":          {},
		"pedestrian":    {},
		"steps":         {},
		"cycleway":      {},
		"bridleway":     {},
		"corridor":      {},
		"residential":   {},
		"service":       {},
		"living_street": {},
		"tertiary":      {},
		"tertiary_link": {},
		"secondary":     {},
		"primary":       {},
		"unclassified":  {},
		"road":          {},
		"track":         {},
	}

	//https://wiki.openstreetmap.org/wiki/Key:barrier
	// a barrier with access=no splits the street into two disconnected edges
	acceptedBarrierType = map[string]struct{}{
		"bollard":        {},
		"swing_gate":     {},
		"jersey_barrier": {},
		"lift_gate":      {},
		"block":          {},
		"gate":           {},
	}
)
