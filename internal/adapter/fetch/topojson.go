package fetch

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/mapfolk/language-atlas/internal/domain"
)

// TopoJSON wire types. Only identifiers and properties are interpreted;
// geometry (arc indices, coordinates, transform) passes through opaquely for
// the view layer, which owns projection and drawing.

type topology struct {
	Type      string                    `json:"type"`
	Objects   map[string]topoCollection `json:"objects"`
	Arcs      json.RawMessage           `json:"arcs"`
	Transform json.RawMessage           `json:"transform"`
}

type topoCollection struct {
	Type       string         `json:"type"`
	Geometries []topoGeometry `json:"geometries"`
}

type topoGeometry struct {
	// ID is the FIPS code, serialized by some producers as a number and
	// by others as a string.
	ID         json.RawMessage `json:"id"`
	Properties struct {
		Name   string `json:"name"`
		Abbrev string `json:"abbrev"`
	} `json:"properties"`

	raw json.RawMessage
}

func (g *topoGeometry) UnmarshalJSON(data []byte) error {
	type alias topoGeometry
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*g = topoGeometry(a)
	g.raw = append(json.RawMessage(nil), data...)
	return nil
}

// decodeTopology decodes a TopoJSON document into a domain.Atlas, labeling
// each feature with a canonical state name. Labels resolve FIPS-first, then
// the properties name, then the abbreviation; features resolving outside the
// known state set keep an empty label and are skipped by joins.
func decodeTopology(r io.Reader) (*domain.Atlas, error) {
	var topo topology
	if err := json.NewDecoder(r).Decode(&topo); err != nil {
		return nil, err
	}
	if !strings.EqualFold(topo.Type, "Topology") {
		return nil, fmt.Errorf("unexpected document type %q", topo.Type)
	}

	collection, ok := pickCollection(topo.Objects)
	if !ok {
		return nil, errors.New("topology has no geometry objects")
	}

	features := make([]domain.StateFeature, 0, len(collection.Geometries))
	for _, g := range collection.Geometries {
		features = append(features, domain.StateFeature{
			ID:       decodeFeatureID(g.ID),
			State:    resolveFeatureState(g),
			Geometry: g.raw,
		})
	}

	return &domain.Atlas{
		Features:  features,
		Arcs:      topo.Arcs,
		Transform: topo.Transform,
	}, nil
}

// pickCollection selects the geometry collection holding state features.
// Census files name it "states"; otherwise the collection with the most
// geometries wins, with name order breaking ties so two loads of the same
// document always pick the same one.
func pickCollection(objects map[string]topoCollection) (topoCollection, bool) {
	if c, ok := objects["states"]; ok {
		return c, true
	}

	names := make([]string, 0, len(objects))
	for name := range objects {
		names = append(names, name)
	}
	sort.Strings(names)

	best, found := "", false
	for _, name := range names {
		if !found || len(objects[name].Geometries) > len(objects[best].Geometries) {
			best, found = name, true
		}
	}
	if !found {
		return topoCollection{}, false
	}
	return objects[best], true
}

// decodeFeatureID normalizes a feature id to a two-digit FIPS string.
// Numeric ids lose their leading zero in JSON (1, not "01").
func decodeFeatureID(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if len(s) == 1 {
			s = "0" + s
		}
		return s
	}

	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		return fmt.Sprintf("%02d", n)
	}
	return ""
}

func resolveFeatureState(g topoGeometry) string {
	if name, ok := domain.StateByFIPS(decodeFeatureID(g.ID)); ok {
		return name
	}
	for _, candidate := range []string{g.Properties.Name, g.Properties.Abbrev} {
		if candidate == "" {
			continue
		}
		if name := domain.Canonicalize(candidate); domain.IsKnownState(name) {
			return name
		}
	}
	return ""
}
