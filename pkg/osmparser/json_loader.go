package osmparser

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/lintang-b-s/navigatorx-dispatch/pkg"
	"github.com/lintang-b-s/navigatorx-dispatch/pkg/datastructure"
	"github.com/lintang-b-s/navigatorx-dispatch/pkg/util"
	"go.uber.org/zap"
)

// node-link graph export, as written by osmnx/networkx. x is longitude, y is latitude.
type nodeLinkGraph struct {
	Graph struct {
		Nodes []struct {
			ID interface{} `json:"id"`
			X  float64     `json:"x"`
			Y  float64     `json:"y"`
		} `json:"nodes"`
		Links []struct {
			Source     interface{} `json:"source"`
			Target     interface{} `json:"target"`
			Length     float64     `json:"length"`
			MaxSpeed   interface{} `json:"maxspeed"`
			TravelTime float64     `json:"travel_time"`
		} `json:"links"`
	} `json:"graph"`
}

// LoadNodeLinkJSON builds a graph from a node-link JSON export. links without travel_time get one
// from maxspeed, or from the default road speed.
func LoadNodeLinkJSON(r io.Reader, logger *zap.Logger) (*datastructure.Graph, error) {
	var wrapped nodeLinkGraph
	if err := json.NewDecoder(r).Decode(&wrapped); err != nil {
		return nil, util.WrapErrorf(err, util.ErrNetworkLoad, "failed to parse graph JSON")
	}

	graph := datastructure.NewGraphWithSize(len(wrapped.Graph.Nodes), len(wrapped.Graph.Links))
	ids := make(map[int64]datastructure.Index, len(wrapped.Graph.Nodes))
	for _, n := range wrapped.Graph.Nodes {
		id, err := parseID(n.ID)
		if err != nil {
			return nil, util.WrapErrorf(err, util.ErrNetworkLoad, "invalid node id")
		}
		if _, ok := ids[id]; ok {
			return nil, util.WrapErrorf(nil, util.ErrNetworkLoad, "duplicate node id %d", id)
		}
		ids[id] = graph.AddVertex(n.Y, n.X, id)
	}

	for _, e := range wrapped.Graph.Links {
		sourceID, err := parseID(e.Source)
		if err != nil {
			return nil, util.WrapErrorf(err, util.ErrNetworkLoad, "invalid link source")
		}
		targetID, err := parseID(e.Target)
		if err != nil {
			return nil, util.WrapErrorf(err, util.ErrNetworkLoad, "invalid link target")
		}
		u, okU := ids[sourceID]
		v, okV := ids[targetID]
		if !okU || !okV {
			return nil, util.WrapErrorf(nil, util.ErrNetworkLoad, "link %d->%d references unknown node", sourceID, targetID)
		}

		travelTime := e.TravelTime
		if travelTime <= 0 {
			speed, ok := parseJSONSpeed(e.MaxSpeed)
			if !ok {
				speed = pkg.DEFAULT_ROAD_SPEED_KMH
			}
			travelTime = e.Length / (speed / 3.6)
		}
		if _, err := graph.AddEdge(u, v, e.Length, travelTime); err != nil {
			return nil, util.WrapErrorf(err, util.ErrNetworkLoad, "link %d->%d", sourceID, targetID)
		}
	}

	logger.Sugar().Infof("loaded node-link graph: %d vertices, %d edges", graph.NumberOfVertices(), graph.NumberOfEdges())
	return graph, nil
}

func parseID(id interface{}) (int64, error) {
	switch v := id.(type) {
	case float64:
		return int64(v), nil
	case string:
		return strconv.ParseInt(v, 10, 64)
	default:
		return 0, fmt.Errorf("unsupported id type %T", id)
	}
}

// parseJSONSpeed. maxspeed is a number, a string like "30 mph" or a list of them.
func parseJSONSpeed(val interface{}) (float64, bool) {
	switch v := val.(type) {
	case float64:
		return v, v > 0
	case string:
		return parseMaxSpeed(v)
	case []interface{}:
		if len(v) > 0 {
			return parseJSONSpeed(v[0])
		}
	}
	return 0, false
}
