package profile

import "github.com/butterfly-osm/butterfly-route-core/ids"

// Reference profile implementations, grounded on azybler/map_router's
// pkg/osm tag predicates (isCarAccessible, directionFlags). These are
// deliberately simple defaults, not a claim of OSM-tagging
// completeness; production deployments are expected to supply their
// own Func.

var carHighwaySpeedMMPS = map[string]uint32{
	"motorway":       36111, // 130 km/h
	"motorway_link":  16666, // 60
	"trunk":          27777, // 100
	"trunk_link":     13888, // 50
	"primary":        22222, // 80
	"primary_link":   13888,
	"secondary":      19444, // 70
	"secondary_link": 11111,
	"tertiary":       16666, // 60
	"tertiary_link":  11111,
	"unclassified":   11111, // 40
	"residential":    8333,  // 30
	"living_street":  4166,  // 15
	"service":        4166,
}

var footHighwaySpeedMMPS = map[string]uint32{
	"footway":       1388, // 5 km/h
	"path":          1388,
	"pedestrian":    1388,
	"living_street": 1388,
	"residential":   1388,
	"track":         1111,
	"steps":         555,
}

var bikeHighwaySpeedMMPS = map[string]uint32{
	"cycleway":      4166, // 15 km/h
	"residential":   4166,
	"living_street": 3333,
	"tertiary":      4166,
	"secondary":     4166,
	"primary":       4166,
	"path":          2777,
	"track":         2777,
}

func tagsAccess(tags map[string]string, blockedValues ...string) bool {
	access := tags["access"]
	for _, v := range blockedValues {
		if access == v {
			return false
		}
	}
	return true
}

func directionFlags(tags map[string]string, impliedOneway bool) Access {
	a := Access{Forward: true, Backward: true}
	if impliedOneway || tags["junction"] == "roundabout" {
		a.Backward = false
	}
	switch tags["oneway"] {
	case "yes", "true", "1":
		a.Forward, a.Backward = true, false
	case "-1", "reverse":
		a.Forward, a.Backward = false, true
	case "no":
		a.Forward, a.Backward = true, true
	case "reversible":
		// Time-dependent direction is out of scope. Treat as inaccessible.
		a.Forward, a.Backward = false, false
	}
	return a
}

// DefaultCarProfile is a reference Func for ids.ModeCar.
func DefaultCarProfile(tags map[string]string) (WayResult, bool) {
	hw := tags["highway"]
	speed, known := carHighwaySpeedMMPS[hw]
	if !known {
		return WayResult{}, false
	}
	if tags["area"] == "yes" {
		return WayResult{}, false
	}
	if !tagsAccess(tags, "no", "private") || tags["motor_vehicle"] == "no" {
		return WayResult{}, false
	}
	implied := hw == "motorway" || hw == "motorway_link"
	return WayResult{
		Access:         directionFlags(tags, implied),
		BaseSpeedMMPS:  speed,
		HighwayClass:   highwayClassOf(hw),
		SurfaceClass:   surfaceClassOf(tags["surface"]),
		PerKmPenaltyDS: 0,
		ConstPenaltyDS: 0,
	}, true
}

// DefaultBikeProfile is a reference Func for ids.ModeBike.
func DefaultBikeProfile(tags map[string]string) (WayResult, bool) {
	hw := tags["highway"]
	speed, known := bikeHighwaySpeedMMPS[hw]
	if !known {
		return WayResult{}, false
	}
	if !tagsAccess(tags, "no", "private") || tags["bicycle"] == "no" {
		return WayResult{}, false
	}
	return WayResult{
		Access:         directionFlags(tags, false),
		BaseSpeedMMPS:  speed,
		HighwayClass:   highwayClassOf(hw),
		SurfaceClass:   surfaceClassOf(tags["surface"]),
		PerKmPenaltyDS: surfacePenaltyDS(tags["surface"]),
		ConstPenaltyDS: 0,
	}, true
}

// DefaultFootProfile is a reference Func for ids.ModeFoot.
func DefaultFootProfile(tags map[string]string) (WayResult, bool) {
	hw := tags["highway"]
	speed, known := footHighwaySpeedMMPS[hw]
	if !known {
		// Foot access is also implied on most car/bike highways unless
		// explicitly banned; keep the default conservative (named list
		// only) rather than guessing at unlisted highway values.
		return WayResult{}, false
	}
	if !tagsAccess(tags, "no", "private") || tags["foot"] == "no" {
		return WayResult{}, false
	}
	return WayResult{
		Access:         Access{Forward: true, Backward: true}, // foot is never directional
		BaseSpeedMMPS:  speed,
		HighwayClass:   highwayClassOf(hw),
		SurfaceClass:   surfaceClassOf(tags["surface"]),
		PerKmPenaltyDS: 0,
		ConstPenaltyDS: 0,
	}, true
}

// DefaultProfiles returns the [ids.NumModes]Func table used by
// IsIncludedAnyMode and by the Stage-2 driver when no external
// profile plugin is configured.
func DefaultProfiles() [ids.NumModes]Func {
	var fns [ids.NumModes]Func
	fns[ids.ModeCar] = DefaultCarProfile
	fns[ids.ModeBike] = DefaultBikeProfile
	fns[ids.ModeFoot] = DefaultFootProfile
	return fns
}

func highwayClassOf(hw string) uint8 {
	order := []string{"motorway", "trunk", "primary", "secondary", "tertiary", "unclassified", "residential", "living_street", "service"}
	for i, o := range order {
		if hw == o || hw == o+"_link" {
			return uint8(i)
		}
	}
	return uint8(len(order))
}

func surfaceClassOf(surface string) uint8 {
	switch surface {
	case "", "paved", "asphalt", "concrete":
		return 0
	case "paving_stones", "sett", "cobblestone":
		return 1
	case "gravel", "compacted", "fine_gravel":
		return 2
	case "dirt", "earth", "ground", "sand", "mud":
		return 3
	default:
		return 4
	}
}

func surfacePenaltyDS(surface string) uint32 {
	switch surfaceClassOf(surface) {
	case 0:
		return 0
	case 1:
		return 2
	case 2:
		return 5
	default:
		return 10
	}
}
