// Package routecore is a Customizable Contraction Hierarchies (CCH)
// routing engine core over OpenStreetMap data.
//
// The pipeline is organized as a sequence of stages, each its own
// subpackage, reading the previous stage's artifacts from a shared
// data directory and writing its own:
//
//	osmingest/  Stage 1: scan an OSM extract into nodes, ways, relations
//	profile/    Stage 2: per-mode way accessibility and turn rules
//	nbg/        Stage 3: the node-based graph (physical topology)
//	ebg/        Stage 4: turn-expansion into the edge-based graph
//	weights/    Stage 5: per-mode weights and the mode-filtered EBG
//	order/      Stage 6: nested-dissection elimination ordering
//	contract/   Stage 7: metric-independent CCH topology (shortcuts)
//	customize/  Stage 8: per-mode CCH edge weights
//	query/      Stage 9: point-to-point routing, matrices, isochrones, spatial snap
//
// Supporting packages: ids (shared compact id types), satmath
// (saturating-arithmetic weight accumulation), coreerr (the error
// taxonomy), fileio (the wire-format and lock-file conventions),
// validate (testable properties, run as a standalone check pass),
// and pipelinecfg (ambient pipeline configuration).
package routecore
