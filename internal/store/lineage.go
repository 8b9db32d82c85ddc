package store

import (
	"fmt"
	"strings"
)

// Traversal depth bounds.
const (
	MinLineageDepth = 1
	MaxLineageDepth = 4
)

// Lineage returns the neighborhood of id within depth hops.
//
// The graph portion is a breadth-first expansion that follows edges in both
// directions. An edge is stored as "src depends_on dst", but lineage means
// the full ancestor and descendant neighborhood, so each frontier id is
// matched against both endpoints. An explicit worklist with a visited set
// keeps the traversal cycle-safe and bounded.
//
// The upstream/downstream lists are a separate depth-1 query that labels
// direction explicitly: dst is upstream of src.
func (s *SQLiteStore) Lineage(id string, depth int) (*Lineage, error) {
	if s.db == nil {
		return nil, fmt.Errorf("store not opened")
	}

	depth = clamp(depth, MinLineageDepth, MaxLineageDepth)

	visited := map[string]struct{}{id: {}}
	order := []string{id}
	edgeSeen := make(map[string]struct{})
	edges := []GraphEdge{}

	frontier := []string{id}
	for d := 0; d < depth && len(frontier) > 0; d++ {
		var next []string

		for _, cur := range frontier {
			touching, err := s.edgesTouching(cur)
			if err != nil {
				return nil, err
			}

			for _, e := range touching {
				key := e.Source + "->" + e.Target
				if _, ok := edgeSeen[key]; !ok {
					edgeSeen[key] = struct{}{}
					edges = append(edges, e)
				}

				for _, endpoint := range []string{e.Source, e.Target} {
					if _, ok := visited[endpoint]; !ok {
						visited[endpoint] = struct{}{}
						order = append(order, endpoint)
						next = append(next, endpoint)
					}
				}
			}
		}

		frontier = next
	}

	nodes, err := s.nodesByID(order)
	if err != nil {
		return nil, err
	}

	upstream, err := s.neighbors(id, true)
	if err != nil {
		return nil, err
	}
	downstream, err := s.neighbors(id, false)
	if err != nil {
		return nil, err
	}

	return &Lineage{
		Nodes:      nodes,
		Edges:      edges,
		Upstream:   upstream,
		Downstream: downstream,
	}, nil
}

// edgesTouching returns every edge where id is either endpoint.
func (s *SQLiteStore) edgesTouching(id string) ([]GraphEdge, error) {
	rows, err := s.db.Query(
		`SELECT src_unique_id, dst_unique_id FROM edge WHERE src_unique_id = ?
		 UNION ALL
		 SELECT src_unique_id, dst_unique_id FROM edge WHERE dst_unique_id = ?`,
		id, id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query edges for %s: %w", id, err)
	}
	defer rows.Close()

	var edges []GraphEdge
	for rows.Next() {
		var e GraphEdge
		if err := rows.Scan(&e.Source, &e.Target); err != nil {
			return nil, fmt.Errorf("failed to scan edge: %w", err)
		}
		edges = append(edges, e)
	}
	return edges, rows.Err()
}

// nodesByID fetches the model rows for the visited ids, preserving
// discovery order. Ids with no model row (external sources reachable only
// through edges) are silently omitted.
func (s *SQLiteStore) nodesByID(ids []string) ([]GraphNode, error) {
	if len(ids) == 0 {
		return []GraphNode{}, nil
	}

	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := s.db.Query(
		`SELECT unique_id, name, description, schema_name, package_name, materialized, resource_type, tags_json
		 FROM model WHERE unique_id IN (`+placeholders+`)`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query lineage nodes: %w", err)
	}
	defer rows.Close()

	byID := make(map[string]GraphNode, len(ids))
	for rows.Next() {
		m, err := scanSummary(rows)
		if err != nil {
			return nil, err
		}
		byID[m.UniqueID] = summaryToNode(m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to query lineage nodes: %w", err)
	}

	nodes := make([]GraphNode, 0, len(byID))
	for _, id := range ids {
		if n, ok := byID[id]; ok {
			nodes = append(nodes, n)
		}
	}
	return nodes, nil
}

// neighbors returns the direct neighbors of id joined to their model rows.
// upstream follows src -> dst (what id depends on); downstream follows
// dst -> src (what depends on id).
func (s *SQLiteStore) neighbors(id string, upstream bool) ([]ModelSummary, error) {
	join, where := "e.dst_unique_id", "e.src_unique_id"
	if !upstream {
		join, where = "e.src_unique_id", "e.dst_unique_id"
	}

	rows, err := s.db.Query(
		`SELECT m.unique_id, m.name, m.description, m.schema_name, m.package_name, m.materialized, m.resource_type, m.tags_json
		 FROM edge e
		 JOIN model m ON `+join+` = m.unique_id
		 WHERE `+where+` = ?
		 ORDER BY m.name`,
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query neighbors for %s: %w", id, err)
	}
	defer rows.Close()

	neighbors := []ModelSummary{}
	for rows.Next() {
		m, err := scanSummary(rows)
		if err != nil {
			return nil, err
		}
		neighbors = append(neighbors, m)
	}
	return neighbors, rows.Err()
}
