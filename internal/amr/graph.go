// Package amr reads the metadata block format emitted by the external
// transition-based AMR parser and exposes the graphs to the extraction stages.
package amr

import "strings"

// Edge is a directed, role-labeled edge between two graph nodes.
// Roles carry their leading colon (":ARG0", ":mod", ":ARG1-of").
type Edge struct {
	Parent string
	Role   string
	Child  string
}

// Graph is one parsed AMR graph with its source tokens.
type Graph struct {
	ID     string
	Tokens []string
	Root   string

	nodes     map[string]string
	nodeOrder []string
	Edges     []Edge
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{nodes: make(map[string]string)}
}

// AddNode records a node and preserves declaration order.
func (g *Graph) AddNode(id, label string) {
	if _, exists := g.nodes[id]; !exists {
		g.nodeOrder = append(g.nodeOrder, id)
	}
	g.nodes[id] = label
}

// NodeLabel returns the concept label for a node id ("" if absent).
func (g *Graph) NodeLabel(id string) string {
	return g.nodes[id]
}

// HasNode reports whether the node id is declared.
func (g *Graph) HasNode(id string) bool {
	_, ok := g.nodes[id]
	return ok
}

// Nodes returns the node id → label map. Callers must not mutate it.
func (g *Graph) Nodes() map[string]string {
	return g.nodes
}

// OrderedNodeLabels returns node labels in declaration order. The parser emits
// the root's label first, which the linking stage relies on.
func (g *Graph) OrderedNodeLabels() []string {
	labels := make([]string, 0, len(g.nodeOrder))
	for _, id := range g.nodeOrder {
		labels = append(labels, g.nodes[id])
	}
	return labels
}

// OrderedNodeIDs returns node ids in declaration order.
func (g *Graph) OrderedNodeIDs() []string {
	return g.nodeOrder
}

// NodeForLabel returns the first node id carrying the given label ("" if none).
func (g *Graph) NodeForLabel(label string) string {
	for _, id := range g.nodeOrder {
		if g.nodes[id] == label {
			return id
		}
	}
	return ""
}

// Parents returns the parent node ids of a node.
func (g *Graph) Parents(id string) []string {
	var parents []string
	for _, e := range g.Edges {
		if e.Child == id {
			parents = append(parents, e.Parent)
		}
	}
	return parents
}

// EdgesForNode returns every edge touching the node, in graph order.
func (g *Graph) EdgesForNode(id string) []Edge {
	var edges []Edge
	for _, e := range g.Edges {
		if e.Parent == id || e.Child == id {
			edges = append(edges, e)
		}
	}
	return edges
}

// EdgeMapping builds a parent → role → children index over the edges.
func (g *Graph) EdgeMapping() map[string]map[string][]string {
	mapping := make(map[string]map[string][]string)
	for _, e := range g.Edges {
		roles := mapping[e.Parent]
		if roles == nil {
			roles = make(map[string][]string)
			mapping[e.Parent] = roles
		}
		roles[e.Role] = append(roles[e.Role], e.Child)
	}
	return mapping
}

// ArgumentOfEdge returns the node playing the argument role of event in the
// edge, honoring "-of" role inversion: for an inverted role with event in the
// child position the argument is the parent, for a plain role with event in
// the parent position it is the child. Otherwise "".
func ArgumentOfEdge(event string, e Edge) string {
	if e.Child == event && strings.HasSuffix(e.Role, "-of") {
		return e.Parent
	}
	if e.Parent == event && !strings.HasSuffix(e.Role, "-of") {
		return e.Child
	}
	return ""
}
