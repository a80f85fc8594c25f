package facility

import (
	"context"
	"errors"
	"testing"

	"github.com/lintang-b-s/navigatorx-dispatch/pkg"
	da "github.com/lintang-b-s/navigatorx-dispatch/pkg/datastructure"
	"github.com/lintang-b-s/navigatorx-dispatch/pkg/geo"
	"github.com/lintang-b-s/navigatorx-dispatch/pkg/mapdata"
	"github.com/lintang-b-s/navigatorx-dispatch/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type fakeSource struct {
	pois    []mapdata.POI
	err     error
	lastTag mapdata.Tag
}

func (f *fakeSource) LoadNetwork(ctx context.Context, region string, networkType pkg.NetworkType) (*da.Graph, error) {
	return da.NewGraph(), nil
}

func (f *fakeSource) FindPOIs(ctx context.Context, center geo.Coordinate, radiusM float64, tag mapdata.Tag) ([]mapdata.POI, error) {
	f.lastTag = tag
	return f.pois, f.err
}

func coordPtr(lat, lon float64) *geo.Coordinate {
	c := geo.NewCoordinate(lat, lon)
	return &c
}

func TestFindFacilities(t *testing.T) {
	center := geo.NewCoordinate(41.8781, -87.6298)
	src := &fakeSource{pois: []mapdata.POI{
		{Name: "Engine 13", Centroid: coordPtr(41.8900, -87.6200)},
		{Name: "", Centroid: coordPtr(41.8790, -87.6300)},
		{Name: "No Geometry", Centroid: nil},
		{Name: "Engine 42", Centroid: coordPtr(41.8800, -87.6320)},
	}}

	testCases := []struct {
		name       string
		kind       Kind
		maxResults int
		wantNames  []string
		wantTag    string
	}{
		{
			name:       "fire stations nearest first",
			kind:       FireStation,
			maxResults: 5,
			wantNames:  []string{"Unnamed Fire Station", "Engine 42", "Engine 13"},
			wantTag:    "amenity=fire_station",
		},
		{
			name:       "capped",
			kind:       FireStation,
			maxResults: 2,
			wantNames:  []string{"Unnamed Fire Station", "Engine 42"},
			wantTag:    "amenity=fire_station",
		},
		{
			name:       "hospitals",
			kind:       Hospital,
			maxResults: 1,
			wantNames:  []string{"Unnamed Hospital"},
			wantTag:    "amenity=hospital",
		},
		{
			name:       "zero results",
			kind:       Hospital,
			maxResults: 0,
			wantNames:  []string{},
			wantTag:    "amenity=hospital",
		},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			l := NewLocator(src, DefaultResources(), zaptest.NewLogger(t))
			got, err := l.FindFacilities(context.Background(), center, tt.kind, 5000, tt.maxResults)
			require.NoError(t, err)
			assert.Equal(t, tt.wantTag, src.lastTag.String())

			names := make([]string, 0, len(got))
			for _, f := range got {
				names = append(names, f.Name)
				assert.Equal(t, tt.kind, f.Kind)
				assert.True(t, f.Operational)
				if tt.kind == FireStation {
					assert.Equal(t, 3, f.AvailableTrucks)
					assert.Equal(t, 0, f.AvailableAmbulances)
				} else {
					assert.Equal(t, 5, f.AvailableAmbulances)
				}
			}
			assert.Equal(t, tt.wantNames, names)
		})
	}
}

func TestFindFacilitiesSourceFailure(t *testing.T) {
	src := &fakeSource{err: util.WrapErrorf(errors.New("connection refused"), util.ErrNetworkLoad, "overpass")}
	l := NewLocator(src, DefaultResources(), zaptest.NewLogger(t))

	_, err := l.FindFacilities(context.Background(), geo.NewCoordinate(41.8781, -87.6298), FireStation, 5000, 5)
	assert.True(t, errors.Is(err, util.ErrNetworkLoad))
}

func TestFindFacilitiesInvalidInput(t *testing.T) {
	l := NewLocator(&fakeSource{}, DefaultResources(), zaptest.NewLogger(t))
	_, err := l.FindFacilities(context.Background(), geo.NewCoordinate(41.8781, -87.6298), FireStation, 0, 5)
	assert.True(t, errors.Is(err, util.ErrBadParamInput))
	_, err = l.FindFacilities(context.Background(), geo.NewCoordinate(41.8781, -87.6298), FireStation, 100, -1)
	assert.True(t, errors.Is(err, util.ErrBadParamInput))
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind("Hospital")
	require.NoError(t, err)
	assert.Equal(t, Hospital, k)

	_, err = ParseKind("police")
	assert.True(t, errors.Is(err, util.ErrBadParamInput))
}
