package taxonomy

import "gateconsole/pkg/models"

// PlacedNode is a node with canvas coordinates.
type PlacedNode struct {
	models.GraphNode
	X float64
	Y float64
}

// PlacedEdge is an edge resolved to endpoint coordinates.
type PlacedEdge struct {
	Kind   string
	X1, Y1 float64
	X2, Y2 float64
}

// Placement is a layered drawing of a graph.
type Placement struct {
	Width  float64
	Height float64
	Nodes  []PlacedNode
	Edges  []PlacedEdge
}

// Place spreads each level over one row of the canvas, preserving node order.
// Edges whose endpoints are missing are skipped.
func Place(g *models.Graph, width, rowHeight float64) Placement {
	p := Placement{Width: width, Height: rowHeight * float64(LevelRecord+1)}
	if g == nil {
		return p
	}

	perLevel := make(map[int]int)
	for _, n := range g.Nodes {
		perLevel[n.Level]++
	}

	index := make(map[int]int)
	pos := make(map[string]PlacedNode, len(g.Nodes))
	p.Nodes = make([]PlacedNode, 0, len(g.Nodes))
	for _, n := range g.Nodes {
		i := index[n.Level]
		index[n.Level] = i + 1
		placed := PlacedNode{
			GraphNode: n,
			X:         width * float64(i+1) / float64(perLevel[n.Level]+1),
			Y:         rowHeight * (float64(n.Level) + 0.5),
		}
		pos[n.ID] = placed
		p.Nodes = append(p.Nodes, placed)
	}

	p.Edges = make([]PlacedEdge, 0, len(g.Edges))
	for _, e := range g.Edges {
		from, ok := pos[e.From]
		if !ok {
			continue
		}
		to, ok := pos[e.To]
		if !ok {
			continue
		}
		p.Edges = append(p.Edges, PlacedEdge{Kind: e.Kind, X1: from.X, Y1: from.Y, X2: to.X, Y2: to.Y})
	}
	return p
}
