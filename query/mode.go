package query

import (
	"github.com/butterfly-osm/butterfly-route-core/contract"
	"github.com/butterfly-osm/butterfly-route-core/customize"
	"github.com/butterfly-osm/butterfly-route-core/ebg"
	"github.com/butterfly-osm/butterfly-route-core/ids"
	"github.com/butterfly-osm/butterfly-route-core/internal/rtree"
	"github.com/butterfly-osm/butterfly-route-core/nbg"
	"github.com/butterfly-osm/butterfly-route-core/order"
	"github.com/butterfly-osm/butterfly-route-core/weights"
)

// ModeData bundles every on-disk artifact a mode's online queries
// need: the CCH topology and its customized weights, the mode's
// filtered EBG and weights, the
// precontraction ordering (needed only to translate ranks, not by the
// query loops themselves), and the derived reverse DOWN adjacency the
// backward search walks.
type ModeData struct {
	Mode ids.Mode

	Topo     *contract.Topo
	Ordering *order.FilteredOrdering
	Weights  *customize.Weights
	Filtered *weights.Filtered
	ModeW    weights.ModeWeights
	DownRev  *DownReverse
}

// LoadMode reads one mode's per-mode artifact set from dir and derives
// its reverse DOWN adjacency.
func LoadMode(dir string, mode ids.Mode) (*ModeData, error) {
	topo, err := contract.Read(dir, mode)
	if err != nil {
		return nil, err
	}
	ord, err := order.Read(dir, mode)
	if err != nil {
		return nil, err
	}
	w, err := customize.Read(dir, mode)
	if err != nil {
		return nil, err
	}
	mw, filtered, err := weights.Read(dir, mode)
	if err != nil {
		return nil, err
	}

	return &ModeData{
		Mode:     mode,
		Topo:     topo,
		Ordering: ord,
		Weights:  w,
		Filtered: filtered,
		ModeW:    mw,
		DownRev:  BuildDownReverse(topo),
	}, nil
}

// Server bundles every loaded mode plus the shared spatial index for
// answering queries, minus the HTTP/transport layer that is outside
// this core's scope. Indexed by ids.Mode
// directly into a fixed [NumModes]T array, the convention the rest of
// the pipeline uses for per-mode data instead of a map; a nil entry
// means that mode was not loaded.
type Server struct {
	modes [ids.NumModes]*ModeData
	Index *rtree.Index

	fwdStates [ids.NumModes]*SearchState
	bwdStates [ids.NumModes]*SearchState
}

// NewServer loads every mode in modes from dir and builds the shared
// spatial index from physical/g (the NBG and unfiltered EBG every
// mode's filtered subgraph derives from).
func NewServer(dir string, modes []ids.Mode, physical *nbg.Graph, g *ebg.Graph) (*Server, error) {
	s := &Server{}
	for _, mode := range modes {
		md, err := LoadMode(dir, mode)
		if err != nil {
			return nil, err
		}
		s.modes[mode] = md
		s.fwdStates[mode] = NewSearchState(md.Topo.NNodes)
		s.bwdStates[mode] = NewSearchState(md.Topo.NNodes)
	}
	s.Index = BuildSpatialIndex(physical, g)
	return s, nil
}

// Mode returns the loaded data for mode, or nil if it was not loaded.
func (s *Server) Mode(mode ids.Mode) *ModeData { return s.modes[mode] }

// Route answers a point-to-point query between two raw coordinates for
// mode, snapping both endpoints first.
func (s *Server) Route(mode ids.Mode, srcLon, srcLat, dstLon, dstLat float64) (*Route, error) {
	md := s.modes[mode]
	if md == nil {
		return nil, ErrEmptyGraph
	}
	src, err := Snap(s.Index, md.Filtered, md.ModeW, mode, srcLon, srcLat)
	if err != nil {
		return nil, err
	}
	dst, err := Snap(s.Index, md.Filtered, md.ModeW, mode, dstLon, dstLat)
	if err != nil {
		return nil, err
	}
	return ComputeRoute(md.Topo, md.Weights, md.DownRev, s.fwdStates[mode], s.bwdStates[mode], src, dst)
}

// Matrix answers a one-to-many/many-to-many query for mode between raw
// source and target coordinates.
func (s *Server) Matrix(mode ids.Mode, sourceCoords, targetCoords [][2]float64) (*Matrix, error) {
	md := s.modes[mode]
	if md == nil {
		return nil, ErrEmptyGraph
	}
	sources, err := s.snapAll(md, mode, sourceCoords)
	if err != nil {
		return nil, err
	}
	targets, err := s.snapAll(md, mode, targetCoords)
	if err != nil {
		return nil, err
	}
	return ComputeMatrix(md.Topo, md.Weights, md.DownRev, s.fwdStates[mode], s.bwdStates[mode], sources, targets), nil
}

func (s *Server) snapAll(md *ModeData, mode ids.Mode, coords [][2]float64) ([]ids.FilteredNode, error) {
	out := make([]ids.FilteredNode, len(coords))
	for i, c := range coords {
		fid, err := Snap(s.Index, md.Filtered, md.ModeW, mode, c[0], c[1])
		if err != nil {
			return nil, err
		}
		out[i] = fid
	}
	return out, nil
}

// Isochrone answers a forward reachability query for mode from a raw
// coordinate, returning one band per entry in thresholdsDS from a
// single sweep out to their maximum.
func (s *Server) Isochrone(mode ids.Mode, lon, lat float64, thresholdsDS []uint32) (*IsochroneResult, error) {
	md := s.modes[mode]
	if md == nil {
		return nil, ErrEmptyGraph
	}
	src, err := Snap(s.Index, md.Filtered, md.ModeW, mode, lon, lat)
	if err != nil {
		return nil, err
	}
	return ComputeIsochrone(md.Filtered, md.ModeW, s.fwdStates[mode], src, thresholdsDS), nil
}
