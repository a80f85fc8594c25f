package osmparser

import (
	"context"
	"io"
	"strconv"
	"strings"

	"github.com/lintang-b-s/navigatorx-dispatch/pkg"
	"github.com/lintang-b-s/navigatorx-dispatch/pkg/datastructure"
	"github.com/lintang-b-s/navigatorx-dispatch/pkg/geo"
	"github.com/lintang-b-s/navigatorx-dispatch/pkg/util"
	"github.com/paulmach/osm"
	"go.uber.org/zap"
)

type wayExtraInfo struct {
	oneWay  bool
	forward bool
}

type OsmParser struct {
	networkType pkg.NetworkType
	poiKeys     map[string]struct{} // tag keys that make a node or way a point of interest

	wayNodeMap      map[int64]NodeType
	acceptedNodeMap map[int64]nodeCoord
	barrierNodes    map[int64]bool
	poiWayNodes     map[int64]struct{}
	maxNodeID       int64

	scannedEdges []Edge
	pois         []PointOfInterest
	logger       *zap.Logger
}

func NewOSMParser(networkType pkg.NetworkType, logger *zap.Logger, poiKeys ...string) *OsmParser {
	if len(poiKeys) == 0 {
		poiKeys = []string{"amenity"}
	}
	keys := make(map[string]struct{}, len(poiKeys))
	for _, k := range poiKeys {
		keys[k] = struct{}{}
	}
	return &OsmParser{
		networkType:     networkType,
		poiKeys:         keys,
		wayNodeMap:      make(map[int64]NodeType),
		acceptedNodeMap: make(map[int64]nodeCoord),
		barrierNodes:    make(map[int64]bool),
		poiWayNodes:     make(map[int64]struct{}),
		scannedEdges:    make([]Edge, 0),
		pois:            make([]PointOfInterest, 0),
		logger:          logger,
	}
}

// Parse reads the extract twice: the first pass marks junction nodes, the second collects node
// coordinates, splits ways at junctions into edges and extracts points of interest.
func (p *OsmParser) Parse(ctx context.Context, src io.ReadSeeker, newScanner ScannerFactory) (*datastructure.Graph,
	[]PointOfInterest, error) {

	scanner := newScanner(ctx, src)
	// must not be parallel
	countWays := 0
	for scanner.Scan() {
		o := scanner.Object()

		if o.ObjectID().Type() != osm.TypeWay {
			continue
		}
		way := o.(*osm.Way)

		if p.isPOI(way.Tags) {
			for _, n := range way.Nodes {
				p.poiWayNodes[int64(n.ID)] = struct{}{}
			}
		}

		if len(way.Nodes) < 2 || !p.acceptOsmWay(way) {
			continue
		}
		if (countWays+1)%50000 == 0 {
			p.logger.Sugar().Infof("scanning openstreetmap ways: %d...", countWays+1)
		}
		countWays++

		for i, node := range way.Nodes {
			if _, ok := p.wayNodeMap[int64(node.ID)]; !ok {
				if i == 0 || i == len(way.Nodes)-1 {
					p.wayNodeMap[int64(node.ID)] = END_NODE
				} else {
					p.wayNodeMap[int64(node.ID)] = BETWEEN_NODE
				}
			} else {
				p.wayNodeMap[int64(node.ID)] = JUNCTION_NODE
			}
		}
	}
	err := scanner.Err()
	scanner.Close()
	if err != nil {
		return nil, nil, util.WrapErrorf(err, util.ErrNetworkLoad, "scan openstreetmap ways")
	}

	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return nil, nil, util.WrapErrorf(err, util.ErrNetworkLoad, "rewind openstreetmap file")
	}

	scanner = newScanner(ctx, src)
	defer scanner.Close()

	countWays = 0
	countNodes := 0
	for scanner.Scan() {
		o := scanner.Object()

		switch o.ObjectID().Type() {
		case osm.TypeNode:
			if (countNodes+1)%500000 == 0 {
				p.logger.Sugar().Infof("processing openstreetmap nodes: %d...", countNodes+1)
			}
			countNodes++
			node := o.(*osm.Node)
			p.processNode(node)

		case osm.TypeWay:
			way := o.(*osm.Way)
			if p.isPOI(way.Tags) {
				p.pois = append(p.pois, p.wayPOI(way))
			}
			if len(way.Nodes) < 2 || !p.acceptOsmWay(way) {
				continue
			}
			if (countWays+1)%100000 == 0 {
				p.logger.Sugar().Infof("processing openstreetmap ways: %d...", countWays+1)
			}
			countWays++
			p.processWay(way)

		case osm.TypeRelation:
			relation := o.(*osm.Relation)
			if p.isPOI(relation.Tags) {
				// multipolygon geometry needs member ways we do not keep
				p.pois = append(p.pois, PointOfInterest{
					OsmID: int64(relation.ID),
					Name:  relation.Tags.Find("name"),
					Tags:  relation.Tags.Map(),
				})
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, util.WrapErrorf(err, util.ErrNetworkLoad, "scan openstreetmap nodes and ways")
	}

	graph := p.BuildGraph()

	p.logger.Sugar().Infof("number of vertices: %v", graph.NumberOfVertices())
	p.logger.Sugar().Infof("number of edges: %v", graph.NumberOfEdges())
	p.logger.Sugar().Infof("number of points of interest: %v", len(p.pois))

	return graph, p.pois, nil
}

func (p *OsmParser) processNode(node *osm.Node) {
	p.maxNodeID = max(p.maxNodeID, int64(node.ID))

	_, onWay := p.wayNodeMap[int64(node.ID)]
	_, onPOIWay := p.poiWayNodes[int64(node.ID)]
	if onWay || onPOIWay {
		p.acceptedNodeMap[int64(node.ID)] = nodeCoord{
			lat: node.Lat,
			lon: node.Lon,
		}
	}

	accessType := node.Tags.Find("access")
	barrierType := node.Tags.Find("barrier")
	if _, ok := acceptedBarrierType[barrierType]; ok && accessType == "no" {
		p.barrierNodes[int64(node.ID)] = true
	}

	if p.isPOI(node.Tags) {
		c := geo.NewCoordinate(node.Lat, node.Lon)
		p.pois = append(p.pois, PointOfInterest{
			OsmID:    int64(node.ID),
			Name:     node.Tags.Find("name"),
			Centroid: &c,
			Tags:     node.Tags.Map(),
		})
	}
}

// wayPOI. the centroid of a tagged way is the centroid of its known node coordinates.
func (p *OsmParser) wayPOI(way *osm.Way) PointOfInterest {
	coords := make([]geo.Coordinate, 0, len(way.Nodes))
	for i, n := range way.Nodes {
		// closed ways repeat the first node
		if i > 0 && i == len(way.Nodes)-1 && n.ID == way.Nodes[0].ID {
			continue
		}
		if c, ok := p.acceptedNodeMap[int64(n.ID)]; ok {
			coords = append(coords, geo.NewCoordinate(c.lat, c.lon))
		}
	}
	poi := PointOfInterest{
		OsmID: int64(way.ID),
		Name:  way.Tags.Find("name"),
		Tags:  way.Tags.Map(),
	}
	if c, ok := geo.Centroid(coords); ok {
		poi.Centroid = &c
	}
	return poi
}

func (p *OsmParser) isPOI(tags osm.Tags) bool {
	for _, t := range tags {
		if _, ok := p.poiKeys[t.Key]; ok {
			return true
		}
	}
	return false
}

func (p *OsmParser) wayDirection(way *osm.Way) wayExtraInfo {
	info := wayExtraInfo{forward: true}
	if p.networkType == pkg.NETWORK_WALK {
		// pedestrians walk both ways on one way streets
		return info
	}

	okvf, okmvf, okvb, okmvb := getReversedOneWay(way)
	if val := way.Tags.Find("oneway"); val == "yes" || val == "true" || val == "1" || val == "-1" ||
		okvf || okmvf || okvb || okmvb {
		info.oneWay = true
	}
	if junction := way.Tags.Find("junction"); junction == "roundabout" || junction == "circular" {
		info.oneWay = true
	}

	if way.Tags.Find("oneway") == "-1" || okvf || okmvf {
		// okvf / omvf = restricted/not allowed forward.
		info.forward = false
	}
	return info
}

func (p *OsmParser) processWay(way *osm.Way) {
	speed := p.waySpeed(way)
	direction := p.wayDirection(way)

	waySegment := []node{}
	for _, wayNode := range way.Nodes {
		coord, ok := p.acceptedNodeMap[int64(wayNode.ID)]
		if !ok {
			// node outside the extract, cut the way here
			if len(waySegment) > 1 {
				p.processSegment(waySegment, speed, direction)
			}
			waySegment = []node{}
			continue
		}
		nodeData := node{
			id:    int64(wayNode.ID),
			coord: coord,
		}
		if p.isJunctionNode(nodeData.id) {
			waySegment = append(waySegment, nodeData)
			p.processSegment(waySegment, speed, direction)
			waySegment = []node{nodeData}
		} else {
			waySegment = append(waySegment, nodeData)
		}
	}
	if len(waySegment) > 1 {
		p.processSegment(waySegment, speed, direction)
	}
}

// waySpeed. km/h from maxspeed when present, otherwise from the highway class.
func (p *OsmParser) waySpeed(way *osm.Way) float64 {
	if p.networkType == pkg.NETWORK_WALK {
		return WALKING_SPEED_KMH
	}
	if speed, ok := parseMaxSpeed(way.Tags.Find("maxspeed")); ok {
		return speed
	}
	return pkg.HighwayDefaultSpeed(pkg.GetHighwayType(way.Tags.Find("highway")))
}

func parseMaxSpeed(val string) (float64, bool) {
	val = strings.TrimSpace(val)
	if val == "" {
		return 0, false
	}
	// "50;30" lists several speeds, use the first one
	if i := strings.IndexAny(val, ";|"); i >= 0 {
		val = strings.TrimSpace(val[:i])
	}

	factor := 1.0
	switch {
	case strings.HasSuffix(val, "mph"):
		factor = 1.60934
		val = strings.TrimSpace(strings.TrimSuffix(val, "mph"))
	case strings.HasSuffix(val, "km/h"):
		val = strings.TrimSpace(strings.TrimSuffix(val, "km/h"))
	case strings.HasSuffix(val, "knots"):
		factor = 1.852
		val = strings.TrimSpace(strings.TrimSuffix(val, "knots"))
	}

	speed, err := strconv.ParseFloat(val, 64)
	if err != nil || speed <= 0 {
		return 0, false
	}
	return speed * factor, true
}

func isRestricted(value string) bool {
	return value == "no" || value == "restricted"
}

func getReversedOneWay(way *osm.Way) (bool, bool, bool, bool) {
	vehicleForward := way.Tags.Find("vehicle:forward")
	motorVehicleForward := way.Tags.Find("motor_vehicle:forward")
	vehicleBackward := way.Tags.Find("vehicle:backward")
	motorVehicleBackward := way.Tags.Find("motor_vehicle:backward")
	return isRestricted(vehicleForward), isRestricted(motorVehicleForward), isRestricted(vehicleBackward), isRestricted(motorVehicleBackward)
}

func (p *OsmParser) processSegment(segment []node, speed float64, direction wayExtraInfo) {
	if len(segment) == 2 && segment[0].id == segment[1].id {
		return
	} else if len(segment) > 2 && segment[0].id == segment[len(segment)-1].id {
		// loop, split so both halves have distinct endpoints
		p.splitAtBarriers(segment[0:len(segment)-1], speed, direction)
		p.splitAtBarriers(segment[len(segment)-2:], speed, direction)
	} else {
		p.splitAtBarriers(segment, speed, direction)
	}
}

func (p *OsmParser) splitAtBarriers(segment []node, speed float64, direction wayExtraInfo) {
	waySegment := []node{}
	for i := 0; i < len(segment); i++ {
		nodeData := segment[i]
		if _, ok := p.barrierNodes[nodeData.id]; ok && p.networkType != pkg.NETWORK_WALK {
			if len(waySegment) != 0 {
				// end the current edge at the barrier
				waySegment = append(waySegment, nodeData)
				p.addEdge(waySegment, speed, direction)
				waySegment = []node{}
			}
			// continue from a copy of the barrier so both sides stay disconnected
			nodeData = p.copyNode(nodeData)
			waySegment = append(waySegment, nodeData)
		} else {
			waySegment = append(waySegment, nodeData)
		}
	}
	if len(waySegment) > 1 {
		p.addEdge(waySegment, speed, direction)
	}
}

func (p *OsmParser) copyNode(nodeData node) node {
	// same coordinate, fresh id that no osm object uses
	p.maxNodeID++
	p.acceptedNodeMap[p.maxNodeID] = nodeData.coord
	return node{
		id:    p.maxNodeID,
		coord: nodeData.coord,
	}
}

func (p *OsmParser) addEdge(segment []node, speed float64, direction wayExtraInfo) {
	from := segment[0]
	to := segment[len(segment)-1]
	if from.id == to.id {
		return
	}

	distance := 0.0
	for i := 1; i < len(segment); i++ {
		distance += geo.CalculateHaversineDistance(segment[i-1].coord.lat, segment[i-1].coord.lon,
			segment[i].coord.lat, segment[i].coord.lon)
	}
	distanceInMeter := distance * 1000
	travelTime := distanceInMeter / (speed / 3.6) // in seconds

	if direction.oneWay {
		if direction.forward {
			p.scannedEdges = append(p.scannedEdges, Edge{from: from.id, to: to.id, length: distanceInMeter, travelTime: travelTime})
		} else {
			p.scannedEdges = append(p.scannedEdges, Edge{from: to.id, to: from.id, length: distanceInMeter, travelTime: travelTime})
		}
		return
	}
	p.scannedEdges = append(p.scannedEdges,
		Edge{from: from.id, to: to.id, length: distanceInMeter, travelTime: travelTime},
		Edge{from: to.id, to: from.id, length: distanceInMeter, travelTime: travelTime},
	)
}

func (p *OsmParser) isJunctionNode(nodeID int64) bool {
	return p.wayNodeMap[nodeID] == JUNCTION_NODE
}

func (p *OsmParser) acceptOsmWay(way *osm.Way) bool {
	highway := way.Tags.Find("highway")
	if highway == "" {
		return way.Tags.Find("junction") != "" && p.networkType != pkg.NETWORK_WALK
	}
	if way.Tags.Find("area") == "yes" {
		return false
	}

	_, drive := driveHighway[highway]
	_, walk := walkHighway[highway]
	switch p.networkType {
	case pkg.NETWORK_WALK:
		return walk && way.Tags.Find("foot") != "no"
	case pkg.NETWORK_ALL:
		return drive || walk
	default:
		return drive && way.Tags.Find("motor_vehicle") != "no" && way.Tags.Find("access") != "no"
	}
}
