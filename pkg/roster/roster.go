package roster

import (
	"fmt"
	"os"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/lintang-b-s/navigatorx-dispatch/pkg"
	"github.com/lintang-b-s/navigatorx-dispatch/pkg/facility"
	"github.com/lintang-b-s/navigatorx-dispatch/pkg/geo"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// entry is one station as written in the roster file. Unset counts take the defaults and unset
// operational means operational.
type entry struct {
	Name                string  `yaml:"name"`
	Lat                 float64 `yaml:"lat"`
	Lon                 float64 `yaml:"lon"`
	AvailableTrucks     *int    `yaml:"available_trucks"`
	AvailableAmbulances *int    `yaml:"available_ambulances"`
	Operational         *bool   `yaml:"operational"`
}

type file struct {
	FireStations []entry `yaml:"fire_stations"`
	Hospitals    []entry `yaml:"hospitals"`
}

// Roster is the list of known stations, kept in file order.
type Roster struct {
	FireStations []facility.Facility
	Hospitals    []facility.Facility
}

func (r *Roster) Of(kind facility.Kind) []facility.Facility {
	if r == nil {
		return nil
	}
	if kind == facility.Hospital {
		return r.Hospitals
	}
	return r.FireStations
}

func (e entry) toFacility(kind facility.Kind) (facility.Facility, error) {
	f := facility.Facility{
		Name:        e.Name,
		Coord:       geo.NewCoordinate(e.Lat, e.Lon),
		Kind:        kind,
		Operational: e.Operational == nil || *e.Operational,
	}
	if f.Name == "" {
		f.Name = kind.DefaultName()
	}
	if !f.Coord.Valid() {
		return facility.Facility{}, fmt.Errorf("station %q has invalid coordinate (%v, %v)", f.Name, e.Lat, e.Lon)
	}

	switch {
	case e.AvailableTrucks != nil:
		f.AvailableTrucks = *e.AvailableTrucks
	case kind == facility.FireStation:
		f.AvailableTrucks = pkg.DEFAULT_AVAILABLE_TRUCKS
	}
	switch {
	case e.AvailableAmbulances != nil:
		f.AvailableAmbulances = *e.AvailableAmbulances
	case kind == facility.Hospital:
		f.AvailableAmbulances = pkg.DEFAULT_AVAILABLE_AMBULANCES
	}
	if f.AvailableTrucks < 0 || f.AvailableAmbulances < 0 {
		return facility.Facility{}, fmt.Errorf("station %q has negative resources", f.Name)
	}
	return f, nil
}

func Parse(data []byte) (*Roster, error) {
	var raw file
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	r := &Roster{
		FireStations: make([]facility.Facility, 0, len(raw.FireStations)),
		Hospitals:    make([]facility.Facility, 0, len(raw.Hospitals)),
	}
	for _, e := range raw.FireStations {
		f, err := e.toFacility(facility.FireStation)
		if err != nil {
			return nil, err
		}
		r.FireStations = append(r.FireStations, f)
	}
	for _, e := range raw.Hospitals {
		f, err := e.toFacility(facility.Hospital)
		if err != nil {
			return nil, err
		}
		r.Hospitals = append(r.Hospitals, f)
	}
	return r, nil
}

// Merge appends extra to found, skipping stations of extra whose name is already in found.
func Merge(found, extra []facility.Facility) []facility.Facility {
	names := make(map[string]struct{}, len(found))
	res := make([]facility.Facility, 0, len(found)+len(extra))
	for _, f := range found {
		names[f.Name] = struct{}{}
		res = append(res, f)
	}
	for _, f := range extra {
		if _, ok := names[f.Name]; ok {
			continue
		}
		names[f.Name] = struct{}{}
		res = append(res, f)
	}
	return res
}

// Loader reads a roster file and watches it for changes.
type Loader struct {
	path     string
	mu       sync.RWMutex
	current  *Roster
	onChange []func(*Roster)
	log      *zap.Logger
}

// NewLoader creates a Loader and performs the initial load.
func NewLoader(path string, log *zap.Logger) (*Loader, error) {
	l := &Loader{path: path, log: log}
	r, err := l.load()
	if err != nil {
		return nil, err
	}
	l.current = r
	return l, nil
}

func (l *Loader) Roster() *Roster {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.current
}

func (l *Loader) OnChange(fn func(*Roster)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onChange = append(l.onChange, fn)
}

// Watch hot reloads the roster on file changes until stop is called. A roster that fails to
// parse is logged and the previous one kept.
func (l *Loader) Watch() (stop func(), err error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("roster watcher: %w", err)
	}
	if err := w.Add(l.path); err != nil {
		w.Close()
		return nil, fmt.Errorf("roster watcher add %s: %w", l.path, err)
	}

	done := make(chan struct{})
	go func() {
		defer w.Close()
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) {
					if _, err := l.Reload(); err != nil {
						l.log.Warn("keeping previous station roster", zap.String("path", l.path), zap.Error(err))
					}
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				l.log.Warn("station roster watcher error", zap.Error(err))
			case <-done:
				return
			}
		}
	}()

	var once sync.Once
	return func() { once.Do(func() { close(done) }) }, nil
}

// Reload forces an immediate re-read of the roster file.
func (l *Loader) Reload() (*Roster, error) {
	r, err := l.load()
	if err != nil {
		return nil, err
	}
	l.mu.Lock()
	l.current = r
	callbacks := make([]func(*Roster), len(l.onChange))
	copy(callbacks, l.onChange)
	l.mu.Unlock()

	l.log.Info("station roster loaded", zap.String("path", l.path),
		zap.Int("fire_stations", len(r.FireStations)), zap.Int("hospitals", len(r.Hospitals)))
	for _, fn := range callbacks {
		fn(r)
	}
	return r, nil
}

func (l *Loader) load() (*Roster, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("read roster %s: %w", l.path, err)
	}
	r, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse roster %s: %w", l.path, err)
	}
	return r, nil
}
