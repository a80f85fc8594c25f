package mapdata

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/lintang-b-s/navigatorx-dispatch/pkg"
	da "github.com/lintang-b-s/navigatorx-dispatch/pkg/datastructure"
	"github.com/lintang-b-s/navigatorx-dispatch/pkg/geo"
	"github.com/lintang-b-s/navigatorx-dispatch/pkg/osmparser"
	"github.com/lintang-b-s/navigatorx-dispatch/pkg/util"
	"go.uber.org/zap"
)

// FileSource serves networks and points of interest from local extracts. Regions map a place
// name to a .osm.pbf, .osm or node-link .json file. POIs come from the most recently loaded
// OSM extract.
type FileSource struct {
	regions     map[string]string
	snapshotDir string
	log         *zap.Logger

	mu      sync.Mutex
	poiFile string
	pois    []osmparser.PointOfInterest
	parsed  bool
}

func NewFileSource(regions map[string]string, snapshotDir string, log *zap.Logger) *FileSource {
	normalized := make(map[string]string, len(regions))
	for name, path := range regions {
		normalized[normalizeRegion(name)] = path
	}
	return &FileSource{
		regions:     normalized,
		snapshotDir: snapshotDir,
		log:         log,
	}
}

func normalizeRegion(region string) string {
	return strings.ToLower(strings.TrimSpace(region))
}

func (s *FileSource) resolve(region string) (string, error) {
	if path, ok := s.regions[normalizeRegion(region)]; ok {
		return path, nil
	}
	// a region can also name the extract directly
	if _, err := os.Stat(region); err == nil {
		return region, nil
	}
	return "", util.WrapErrorf(nil, util.ErrNetworkLoad, "unknown region %q", region)
}

type fileFormat int

const (
	formatPBF fileFormat = iota
	formatXML
	formatJSON
)

func formatOf(path string) (fileFormat, error) {
	lower := strings.ToLower(path)
	switch {
	case strings.HasSuffix(lower, ".pbf"):
		return formatPBF, nil
	case strings.HasSuffix(lower, ".osm"), strings.HasSuffix(lower, ".xml"):
		return formatXML, nil
	case strings.HasSuffix(lower, ".json"):
		return formatJSON, nil
	default:
		return 0, util.WrapErrorf(nil, util.ErrNetworkLoad, "unsupported map file %s", path)
	}
}

func (s *FileSource) snapshotPath(region string, networkType pkg.NetworkType) string {
	name := strings.ReplaceAll(normalizeRegion(region), " ", "_")
	name = strings.ReplaceAll(name, string(filepath.Separator), "_")
	return filepath.Join(s.snapshotDir, fmt.Sprintf("%s_%s.graph.bz2", name, networkType))
}

// LoadNetwork returns a fresh graph for region. A snapshot in the snapshot directory is used when
// present, otherwise the extract is parsed and the snapshot written.
func (s *FileSource) LoadNetwork(ctx context.Context, region string, networkType pkg.NetworkType) (*da.Graph, error) {
	path, err := s.resolve(region)
	if err != nil {
		return nil, err
	}
	format, err := formatOf(path)
	if err != nil {
		return nil, err
	}

	if s.snapshotDir != "" {
		snap := s.snapshotPath(region, networkType)
		graph, err := da.ReadGraphFile(snap)
		switch {
		case err == nil:
			s.log.Info("loaded network snapshot", zap.String("region", region), zap.String("file", snap),
				zap.Int("vertices", graph.NumberOfVertices()))
			s.resetPOIs(path, format)
			return graph, nil
		case !errors.Is(err, fs.ErrNotExist):
			s.log.Warn("ignoring unreadable network snapshot", zap.String("file", snap), zap.Error(err))
		}
	}

	var (
		graph *da.Graph
		pois  []osmparser.PointOfInterest
	)
	switch format {
	case formatJSON:
		f, err := os.Open(path)
		if err != nil {
			return nil, util.WrapErrorf(err, util.ErrNetworkLoad, "open %s", path)
		}
		defer f.Close()
		graph, err = osmparser.LoadNodeLinkJSON(f, s.log)
		if err != nil {
			return nil, err
		}
	default:
		graph, pois, err = s.parseOSM(ctx, path, format, networkType)
		if err != nil {
			return nil, err
		}
	}

	if graph.NumberOfVertices() == 0 {
		return nil, util.WrapErrorf(nil, util.ErrNetworkLoad, "region %q has no routable roads", region)
	}

	s.mu.Lock()
	s.poiFile = path
	s.pois = pois
	s.parsed = format != formatJSON
	s.mu.Unlock()

	if s.snapshotDir != "" {
		snap := s.snapshotPath(region, networkType)
		if err := os.MkdirAll(s.snapshotDir, 0o755); err == nil {
			if err := graph.WriteGraphFile(snap); err != nil {
				s.log.Warn("could not write network snapshot", zap.String("file", snap), zap.Error(err))
			}
		}
	}
	return graph, nil
}

func (s *FileSource) resetPOIs(path string, format fileFormat) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.poiFile == path && s.parsed {
		return
	}
	s.poiFile = path
	s.pois = nil
	// json networks carry no points of interest, nothing to parse later
	s.parsed = format == formatJSON
}

func (s *FileSource) parseOSM(ctx context.Context, path string, format fileFormat,
	networkType pkg.NetworkType) (*da.Graph, []osmparser.PointOfInterest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, util.WrapErrorf(err, util.ErrNetworkLoad, "open %s", path)
	}
	defer f.Close()

	scanner := osmparser.PBFScanner
	if format == formatXML {
		scanner = osmparser.XMLScanner
	}
	parser := osmparser.NewOSMParser(networkType, s.log)
	return parser.Parse(ctx, f, scanner)
}

// FindPOIs returns the points of interest carrying tag within radiusM of center, in extract order.
// POIs without a centroid are returned too, the caller decides what to do with them.
func (s *FileSource) FindPOIs(ctx context.Context, center geo.Coordinate, radiusM float64, tag Tag) ([]POI, error) {
	pois, err := s.loadPOIs(ctx)
	if err != nil {
		return nil, err
	}

	res := make([]POI, 0)
	for _, p := range pois {
		if !p.HasTag(tag.Key, tag.Value) {
			continue
		}
		if p.Centroid != nil && geo.GeodesicDistance(center, *p.Centroid) > radiusM {
			continue
		}
		res = append(res, POI{
			OsmID:    p.OsmID,
			Name:     p.Name,
			Centroid: p.Centroid,
			Tags:     p.Tags,
		})
	}
	return res, nil
}

func (s *FileSource) loadPOIs(ctx context.Context) ([]osmparser.PointOfInterest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.poiFile == "" {
		return nil, util.WrapErrorf(nil, util.ErrNetworkLoad, "no map data loaded")
	}
	if s.parsed {
		return s.pois, nil
	}

	format, err := formatOf(s.poiFile)
	if err != nil {
		return nil, err
	}
	// network came from a snapshot, parse the extract once for its points of interest
	_, pois, err := s.parseOSM(ctx, s.poiFile, format, pkg.NETWORK_DRIVE)
	if err != nil {
		return nil, err
	}
	s.pois = pois
	s.parsed = true
	return s.pois, nil
}
