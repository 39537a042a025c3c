// Package derivedindex builds ordered derived products from a finished
// topology.TopologyState, starting with the plate-adjacency graph
// (spec.md §4.10). Every ordering decision uses the canonical GUID
// byte-order comparator, never platform-native map iteration order.
package derivedindex

import (
	"sort"

	"github.com/tectonic-sim/platetruth/guid"
	"github.com/tectonic-sim/platetruth/topology"
)

// Neighbor is one edge out of a node in the adjacency graph: the
// neighboring plate and the boundary that witnesses the edge.
type Neighbor struct {
	PlateID    topology.PlateId
	BoundaryID topology.BoundaryId
}

// Node is one active plate and its sorted neighbor list.
type Node struct {
	PlateID   topology.PlateId
	Neighbors []Neighbor
}

// AdjacencyGraph is the plate-adjacency derived product: nodes in
// canonical plate-id order, each with neighbors sorted first by
// neighbor plate id, then by witnessing boundary id (spec.md §4.10).
type AdjacencyGraph struct {
	Nodes []Node
}

// BuildAdjacencyGraph iterates state's active plates in canonical
// RFC-4122 byte order and its active boundaries in the same order,
// producing one Node per active plate with deterministically sorted
// neighbor edges.
func BuildAdjacencyGraph(state *topology.TopologyState) AdjacencyGraph {
	plateIDs := make([]topology.PlateId, 0, len(state.Plates))
	for id, p := range state.Plates {
		if !p.Retired {
			plateIDs = append(plateIDs, id)
		}
	}
	sort.Slice(plateIDs, func(i, j int) bool { return guid.Less(plateIDs[i], plateIDs[j]) })

	boundaryIDs := make([]topology.BoundaryId, 0, len(state.Boundaries))
	for id, b := range state.Boundaries {
		if !b.Retired {
			boundaryIDs = append(boundaryIDs, id)
		}
	}
	sort.Slice(boundaryIDs, func(i, j int) bool { return guid.Less(boundaryIDs[i], boundaryIDs[j]) })

	neighbors := make(map[topology.PlateId][]Neighbor, len(plateIDs))
	for _, bid := range boundaryIDs {
		b := state.Boundaries[bid]
		neighbors[b.PlateLeft] = append(neighbors[b.PlateLeft], Neighbor{PlateID: b.PlateRight, BoundaryID: bid})
		neighbors[b.PlateRight] = append(neighbors[b.PlateRight], Neighbor{PlateID: b.PlateLeft, BoundaryID: bid})
	}

	graph := AdjacencyGraph{Nodes: make([]Node, 0, len(plateIDs))}
	for _, pid := range plateIDs {
		edges := neighbors[pid]
		sort.Slice(edges, func(i, j int) bool {
			if cmp := guid.Compare(edges[i].PlateID, edges[j].PlateID); cmp != 0 {
				return cmp < 0
			}

			return guid.Less(edges[i].BoundaryID, edges[j].BoundaryID)
		})
		graph.Nodes = append(graph.Nodes, Node{PlateID: pid, Neighbors: edges})
	}

	return graph
}
