package store

import (
	"testing"
)

// chainStore builds a -> b -> c -> d where each model depends on the next
// (a reads from b, b reads from c, and so on).
func chainStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s := setupTestStore(t)
	for _, id := range []string{"model.p.a", "model.p.b", "model.p.c", "model.p.d"} {
		insertModel(t, s, seedModel{UniqueID: id, Name: id[len("model.p."):]})
	}
	insertEdge(t, s, "model.p.a", "model.p.b")
	insertEdge(t, s, "model.p.b", "model.p.c")
	insertEdge(t, s, "model.p.c", "model.p.d")
	return s
}

func nodeIDs(nodes []GraphNode) map[string]bool {
	ids := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		ids[n.ID] = true
	}
	return ids
}

func TestLineage_DepthOne(t *testing.T) {
	s := chainStore(t)

	l, err := s.Lineage("model.p.b", 1)
	if err != nil {
		t.Fatalf("failed to compute lineage: %v", err)
	}

	ids := nodeIDs(l.Nodes)
	if len(ids) != 3 || !ids["model.p.a"] || !ids["model.p.b"] || !ids["model.p.c"] {
		t.Errorf("depth 1 nodes = %v", ids)
	}
	if len(l.Edges) != 2 {
		t.Errorf("depth 1 edges = %d, want 2", len(l.Edges))
	}
}

func TestLineage_DepthMonotonic(t *testing.T) {
	s := chainStore(t)

	var prev int
	for depth := 1; depth <= 4; depth++ {
		l, err := s.Lineage("model.p.a", depth)
		if err != nil {
			t.Fatalf("depth %d: %v", depth, err)
		}
		if len(l.Nodes) < prev {
			t.Errorf("depth %d returned fewer nodes (%d) than depth %d (%d)",
				depth, len(l.Nodes), depth-1, prev)
		}
		prev = len(l.Nodes)
	}

	// depth 3 reaches the whole chain from a
	l, err := s.Lineage("model.p.a", 3)
	if err != nil {
		t.Fatalf("failed to compute lineage: %v", err)
	}
	if len(l.Nodes) != 4 || len(l.Edges) != 3 {
		t.Errorf("depth 3 from a: nodes = %d, edges = %d", len(l.Nodes), len(l.Edges))
	}
}

func TestLineage_ClampsDepth(t *testing.T) {
	s := chainStore(t)

	// depth 0 clamps to 1
	low, err := s.Lineage("model.p.b", 0)
	if err != nil {
		t.Fatalf("failed to compute lineage: %v", err)
	}
	one, err := s.Lineage("model.p.b", 1)
	if err != nil {
		t.Fatalf("failed to compute lineage: %v", err)
	}
	if len(low.Nodes) != len(one.Nodes) {
		t.Errorf("depth 0 nodes = %d, depth 1 nodes = %d", len(low.Nodes), len(one.Nodes))
	}

	// depth 99 clamps to 4
	high, err := s.Lineage("model.p.a", 99)
	if err != nil {
		t.Fatalf("failed to compute lineage: %v", err)
	}
	four, err := s.Lineage("model.p.a", 4)
	if err != nil {
		t.Fatalf("failed to compute lineage: %v", err)
	}
	if len(high.Nodes) != len(four.Nodes) {
		t.Errorf("depth 99 nodes = %d, depth 4 nodes = %d", len(high.Nodes), len(four.Nodes))
	}
}

func TestLineage_Direction(t *testing.T) {
	s := chainStore(t)

	l, err := s.Lineage("model.p.b", 1)
	if err != nil {
		t.Fatalf("failed to compute lineage: %v", err)
	}

	// b depends on c, so c is upstream; a depends on b, so a is downstream
	if len(l.Upstream) != 1 || l.Upstream[0].UniqueID != "model.p.c" {
		t.Errorf("Upstream = %v", l.Upstream)
	}
	if len(l.Downstream) != 1 || l.Downstream[0].UniqueID != "model.p.a" {
		t.Errorf("Downstream = %v", l.Downstream)
	}
}

func TestLineage_Symmetry(t *testing.T) {
	s := setupTestStore(t)
	insertModel(t, s, seedModel{UniqueID: "model.p.x", Name: "x"})
	insertModel(t, s, seedModel{UniqueID: "model.p.y", Name: "y"})
	insertEdge(t, s, "model.p.x", "model.p.y")

	lx, err := s.Lineage("model.p.x", 1)
	if err != nil {
		t.Fatalf("failed to compute lineage: %v", err)
	}
	ly, err := s.Lineage("model.p.y", 1)
	if err != nil {
		t.Fatalf("failed to compute lineage: %v", err)
	}

	if len(lx.Upstream) != 1 || lx.Upstream[0].UniqueID != "model.p.y" {
		t.Errorf("x upstream = %v", lx.Upstream)
	}
	if len(ly.Downstream) != 1 || ly.Downstream[0].UniqueID != "model.p.x" {
		t.Errorf("y downstream = %v", ly.Downstream)
	}
}

func TestLineage_IsolatedModel(t *testing.T) {
	s := setupTestStore(t)
	insertModel(t, s, seedModel{UniqueID: "model.p.lonely", Name: "lonely"})

	l, err := s.Lineage("model.p.lonely", 2)
	if err != nil {
		t.Fatalf("failed to compute lineage: %v", err)
	}
	if len(l.Nodes) != 1 || l.Nodes[0].ID != "model.p.lonely" {
		t.Errorf("Nodes = %v", l.Nodes)
	}
	if len(l.Edges) != 0 || len(l.Upstream) != 0 || len(l.Downstream) != 0 {
		t.Errorf("expected empty edges and neighbors, got %+v", l)
	}
}

func TestLineage_UnknownID(t *testing.T) {
	s := chainStore(t)

	l, err := s.Lineage("model.p.ghost", 2)
	if err != nil {
		t.Fatalf("unknown id should not error: %v", err)
	}
	if len(l.Nodes) != 0 || len(l.Edges) != 0 {
		t.Errorf("unknown id should yield empty graph, got %+v", l)
	}
}

func TestLineage_EdgeToExternalSource(t *testing.T) {
	s := setupTestStore(t)
	insertModel(t, s, seedModel{UniqueID: "model.p.stg", Name: "stg"})
	insertEdge(t, s, "model.p.stg", "source.p.raw_orders")

	l, err := s.Lineage("model.p.stg", 1)
	if err != nil {
		t.Fatalf("failed to compute lineage: %v", err)
	}

	// The edge shows up, but the source has no model row so it is not a node
	// and not listed as an upstream model.
	if len(l.Edges) != 1 {
		t.Errorf("Edges = %v", l.Edges)
	}
	if len(l.Nodes) != 1 {
		t.Errorf("Nodes = %v", l.Nodes)
	}
	if len(l.Upstream) != 0 {
		t.Errorf("Upstream = %v", l.Upstream)
	}
}

func TestLineage_CycleTerminates(t *testing.T) {
	s := setupTestStore(t)
	insertModel(t, s, seedModel{UniqueID: "model.p.a", Name: "a"})
	insertModel(t, s, seedModel{UniqueID: "model.p.b", Name: "b"})
	insertEdge(t, s, "model.p.a", "model.p.b")
	insertEdge(t, s, "model.p.b", "model.p.a")

	l, err := s.Lineage("model.p.a", 4)
	if err != nil {
		t.Fatalf("failed to compute lineage: %v", err)
	}
	if len(l.Nodes) != 2 || len(l.Edges) != 2 {
		t.Errorf("cycle: nodes = %d, edges = %d", len(l.Nodes), len(l.Edges))
	}
}
