package datastructure

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/dsnet/compress/bzip2"
	"github.com/lintang-b-s/navigatorx-dispatch/pkg/util"
)

// WriteGraphFile writes g as a bzip2 compressed snapshot to filename.
func (g *Graph) WriteGraphFile(filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()

	return g.WriteGraph(f)
}

// WriteGraph writes the snapshot format:
//
//	numVertices numEdges
//	lat lon osmId          (one line per vertex, in id order)
//	tail head length travelTime removed   (one line per edge, in edge id order)
func (g *Graph) WriteGraph(out io.Writer) error {
	bz, err := bzip2.NewWriter(out, &bzip2.WriterConfig{})
	if err != nil {
		return err
	}

	w := bufio.NewWriter(bz)

	fmt.Fprintf(w, "%d %d\n", len(g.vertices), len(g.edges))

	for _, v := range g.vertices {
		latF := strconv.FormatFloat(v.lat, 'f', -1, 64)
		lonF := strconv.FormatFloat(v.lon, 'f', -1, 64)
		fmt.Fprintf(w, "%s %s %d\n", latF, lonF, v.osmId)
	}

	for _, e := range g.edges {
		lengthF := strconv.FormatFloat(e.length, 'f', -1, 64)
		ttF := strconv.FormatFloat(e.travelTime, 'f', -1, 64)
		removed := 0
		if e.removed {
			removed = 1
		}
		fmt.Fprintf(w, "%d %d %s %s %d\n", e.tail, e.head, lengthF, ttF, removed)
	}

	if err := w.Flush(); err != nil {
		return err
	}
	return bz.Close()
}

func fields(s string) []string {
	return strings.Fields(s)
}

func ParseIndex(s string) (Index, error) {
	u, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, err
	}
	if u > math.MaxUint32 {
		return 0, fmt.Errorf("value %s overflows uint32", s)
	}
	return Index(u), nil
}

func ReadGraphFile(filename string) (*Graph, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return ReadGraph(f)
}

// ReadGraph reads a snapshot written by WriteGraph. Edge keys are rebuilt in the written order,
// so every EdgeKey of the written graph names the same edge in the read graph.
func ReadGraph(in io.Reader) (*Graph, error) {
	bz, err := bzip2.NewReader(in, nil)
	if err != nil {
		return nil, err
	}
	defer bz.Close()

	br := bufio.NewReader(bz)

	line, err := util.ReadLine(br)
	if err != nil {
		return nil, err
	}

	tokens := fields(line)
	if len(tokens) != 2 {
		return nil, fmt.Errorf("invalid snapshot header: %q", line)
	}

	numVertices, err := ParseIndex(tokens[0])
	if err != nil {
		return nil, err
	}
	numEdges, err := ParseIndex(tokens[1])
	if err != nil {
		return nil, err
	}

	g := NewGraphWithSize(int(numVertices), int(numEdges))

	for i := Index(0); i < numVertices; i++ {
		line, err := util.ReadLine(br)
		if err != nil {
			return nil, fmt.Errorf("read vertex %d: %w", i, err)
		}
		lat, lon, osmId, err := parseVertex(line)
		if err != nil {
			return nil, fmt.Errorf("parse vertex %d: %w", i, err)
		}
		g.AddVertex(lat, lon, osmId)
	}

	removed := make([]EdgeKey, 0)
	for i := Index(0); i < numEdges; i++ {
		line, err := util.ReadLine(br)
		if err != nil {
			return nil, fmt.Errorf("read edge %d: %w", i, err)
		}
		tail, head, length, tt, isRemoved, err := parseEdge(line)
		if err != nil {
			return nil, fmt.Errorf("parse edge %d: %w", i, err)
		}
		key, err := g.AddEdge(tail, head, length, tt)
		if err != nil {
			return nil, err
		}
		if isRemoved {
			removed = append(removed, key)
		}
	}
	g.RemoveEdges(removed)

	return g, nil
}

func parseVertex(line string) (float64, float64, int64, error) {
	tokens := fields(line)
	if len(tokens) != 3 {
		return 0, 0, 0, fmt.Errorf("expected 3 fields, got %d", len(tokens))
	}
	lat, err := strconv.ParseFloat(tokens[0], 64)
	if err != nil {
		return 0, 0, 0, err
	}
	lon, err := strconv.ParseFloat(tokens[1], 64)
	if err != nil {
		return 0, 0, 0, err
	}
	osmId, err := strconv.ParseInt(tokens[2], 10, 64)
	if err != nil {
		return 0, 0, 0, err
	}
	return lat, lon, osmId, nil
}

func parseEdge(line string) (Index, Index, float64, float64, bool, error) {
	tokens := fields(line)
	if len(tokens) != 5 {
		return 0, 0, 0, 0, false, fmt.Errorf("expected 5 fields, got %d", len(tokens))
	}
	tail, err := ParseIndex(tokens[0])
	if err != nil {
		return 0, 0, 0, 0, false, err
	}
	head, err := ParseIndex(tokens[1])
	if err != nil {
		return 0, 0, 0, 0, false, err
	}
	length, err := strconv.ParseFloat(tokens[2], 64)
	if err != nil {
		return 0, 0, 0, 0, false, err
	}
	tt, err := strconv.ParseFloat(tokens[3], 64)
	if err != nil {
		return 0, 0, 0, 0, false, err
	}
	return tail, head, length, tt, tokens[4] == "1", nil
}
