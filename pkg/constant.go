package pkg

const (
	INF_WEIGHT float64 = 1e15

	// DEFAULT_ASSUMED_SPEED_KMH is the flat responder speed used for arrival estimates.
	DEFAULT_ASSUMED_SPEED_KMH = 50.0

	DEFAULT_FACILITY_SEARCH_RADIUS_M = 5000.0
	DEFAULT_FACILITY_MAX_RESULTS     = 5
	DEFAULT_BLOCK_RADIUS_M           = 500.0

	// Facility resource defaults when the map source carries none.
	DEFAULT_AVAILABLE_TRUCKS     = 3
	DEFAULT_AVAILABLE_AMBULANCES = 5

	// fallback road speed when a way has neither maxspeed nor a known highway class
	DEFAULT_ROAD_SPEED_KMH = 30.0
)

type NetworkType string

const (
	NETWORK_DRIVE NetworkType = "drive"
	NETWORK_WALK  NetworkType = "walk"
	NETWORK_ALL   NetworkType = "all"
)

func ParseNetworkType(s string) (NetworkType, bool) {
	switch NetworkType(s) {
	case NETWORK_DRIVE, "":
		return NETWORK_DRIVE, true
	case NETWORK_WALK:
		return NETWORK_WALK, true
	case NETWORK_ALL:
		return NETWORK_ALL, true
	default:
		return "", false
	}
}

type OsmHighwayType uint8

// enum buat osm highway buat routing: https://wiki.openstreetmap.org/wiki/OSM_tags_for_routing/Telenav
const (
	MOTORWAY       OsmHighwayType = 0
	TRUNK          OsmHighwayType = 1
	PRIMARY        OsmHighwayType = 2
	SECONDARY      OsmHighwayType = 3
	TERTIARY       OsmHighwayType = 4
	RESIDENTIAL    OsmHighwayType = 5
	SERVICE        OsmHighwayType = 6
	UNCLASSIFIED   OsmHighwayType = 7
	MOTORWAY_LINK  OsmHighwayType = 8
	TRUNK_LINK     OsmHighwayType = 9
	PRIMARY_LINK   OsmHighwayType = 10
	SECONDARY_LINK OsmHighwayType = 11
	TERTIARY_LINK  OsmHighwayType = 12
	LIVING_STREET  OsmHighwayType = 13
	ROAD           OsmHighwayType = 14
	TRACK          OsmHighwayType = 15
	MOTORROAD      OsmHighwayType = 16
	UNKNOWN        OsmHighwayType = 17
)

func GetHighwayType(roadType string) OsmHighwayType {
	switch roadType {
	case "motorway":
		return MOTORWAY
	case "trunk":
		return TRUNK
	case "primary":
		return PRIMARY
	case "secondary":
		return SECONDARY
	case "tertiary":
		return TERTIARY
	case "unclassified":
		return UNCLASSIFIED
	case "residential":
		return RESIDENTIAL
	case "service":
		return SERVICE
	case "motorway_link":
		return MOTORWAY_LINK
	case "trunk_link":
		return TRUNK_LINK
	case "primary_link":
		return PRIMARY_LINK
	case "secondary_link":
		return SECONDARY_LINK
	case "tertiary_link":
		return TERTIARY_LINK
	case "living_street":
		return LIVING_STREET
	case "road":
		return ROAD
	case "track":
		return TRACK
	case "motorroad":
		return MOTORROAD
	default:
		return UNKNOWN
	}
}

// HighwayDefaultSpeed. km/h per highway class, used when a way has no usable maxspeed tag.
func HighwayDefaultSpeed(t OsmHighwayType) float64 {
	switch t {
	case MOTORWAY:
		return 95
	case TRUNK, MOTORROAD:
		return 80
	case PRIMARY:
		return 65
	case SECONDARY:
		return 55
	case TERTIARY:
		return 45
	case MOTORWAY_LINK, TRUNK_LINK:
		return 50
	case PRIMARY_LINK, SECONDARY_LINK, TERTIARY_LINK:
		return 40
	case RESIDENTIAL, UNCLASSIFIED, ROAD:
		return 30
	case LIVING_STREET, SERVICE, TRACK:
		return 15
	default:
		return DEFAULT_ROAD_SPEED_KMH
	}
}
