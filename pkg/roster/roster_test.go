package roster

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/lintang-b-s/navigatorx-dispatch/pkg/facility"
	"github.com/lintang-b-s/navigatorx-dispatch/pkg/geo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

const stations = `
fire_stations:
  - name: Engine 42
    lat: 41.8781
    lon: -87.6298
  - name: Engine 13
    lat: 41.8827
    lon: -87.6233
    available_trucks: 1
    operational: false
hospitals:
  - lat: 41.8690
    lon: -87.6270
`

func TestParse(t *testing.T) {
	r, err := Parse([]byte(stations))
	require.NoError(t, err)

	assert.Equal(t, []facility.Facility{
		{Name: "Engine 42", Coord: geo.NewCoordinate(41.8781, -87.6298), Kind: facility.FireStation,
			AvailableTrucks: 3, Operational: true},
		{Name: "Engine 13", Coord: geo.NewCoordinate(41.8827, -87.6233), Kind: facility.FireStation,
			AvailableTrucks: 1, Operational: false},
	}, r.Of(facility.FireStation))
	assert.Equal(t, []facility.Facility{
		{Name: "Unnamed Hospital", Coord: geo.NewCoordinate(41.8690, -87.6270), Kind: facility.Hospital,
			AvailableAmbulances: 5, Operational: true},
	}, r.Of(facility.Hospital))
}

func TestParseInvalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"bad yaml", "fire_stations: [:"},
		{"bad coordinate", "fire_stations:\n  - name: X\n    lat: 95\n    lon: 0\n"},
		{"negative trucks", "fire_stations:\n  - name: X\n    lat: 1\n    lon: 1\n    available_trucks: -1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			assert.Error(t, err)
		})
	}
}

func TestMerge(t *testing.T) {
	a := facility.Facility{Name: "A"}
	b := facility.Facility{Name: "B"}
	c := facility.Facility{Name: "C"}
	assert.Equal(t, []facility.Facility{a, b, c}, Merge([]facility.Facility{a, b}, []facility.Facility{b, c}))
	assert.Equal(t, []facility.Facility{c}, Merge(nil, []facility.Facility{c}))
}

func TestLoaderReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stations.yaml")
	require.NoError(t, os.WriteFile(path, []byte(stations), 0o644))

	l, err := NewLoader(path, zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.Len(t, l.Roster().FireStations, 2)

	changed := make(chan *Roster, 4)
	l.OnChange(func(r *Roster) { changed <- r })

	require.NoError(t, os.WriteFile(path, []byte("fire_stations:\n  - name: Engine 78\n    lat: 41.9\n    lon: -87.7\n"), 0o644))
	r, err := l.Reload()
	require.NoError(t, err)
	assert.Len(t, r.FireStations, 1)
	assert.Equal(t, "Engine 78", l.Roster().FireStations[0].Name)
	assert.Len(t, (<-changed).FireStations, 1)

	// a broken file keeps the previous roster
	require.NoError(t, os.WriteFile(path, []byte("fire_stations: [:"), 0o644))
	_, err = l.Reload()
	assert.Error(t, err)
	assert.Equal(t, "Engine 78", l.Roster().FireStations[0].Name)
}

func TestLoaderWatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stations.yaml")
	require.NoError(t, os.WriteFile(path, []byte(stations), 0o644))

	l, err := NewLoader(path, zap.NewNop())
	require.NoError(t, err)
	changed := make(chan *Roster, 16)
	l.OnChange(func(r *Roster) { changed <- r })

	stop, err := l.Watch()
	require.NoError(t, err)
	defer stop()

	require.NoError(t, os.WriteFile(path, []byte("hospitals:\n  - name: Mercy\n    lat: 41.85\n    lon: -87.62\n"), 0o644))

	deadline := time.After(5 * time.Second)
	for {
		select {
		case r := <-changed:
			if len(r.Hospitals) == 1 {
				assert.Equal(t, "Mercy", r.Hospitals[0].Name)
				return
			}
		case <-deadline:
			t.Fatal("roster change not observed")
		}
	}
}
