package models

// Graph node kinds.
const (
	NodeFamily = "family"
	NodeTag    = "tag"
	NodeRecord = "record"
)

// GraphNode is one vertex of the taxonomy graph.
type GraphNode struct {
	ID        string `json:"id"`
	Kind      string `json:"kind"`
	Label     string `json:"label"`
	Level     int    `json:"level"`
	Malicious bool   `json:"malicious,omitempty"`
	Href      string `json:"href,omitempty"`
}

// GraphEdge is a directed membership edge from a label to a record.
type GraphEdge struct {
	From string `json:"from"`
	To   string `json:"to"`
	Kind string `json:"kind"`
}

// Graph is the serialized taxonomy graph.
type Graph struct {
	Nodes []GraphNode `json:"nodes"`
	Edges []GraphEdge `json:"edges"`
}
