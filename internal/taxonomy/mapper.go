package taxonomy

import (
	"strconv"

	"gateconsole/internal/logger"
	"gateconsole/pkg/models"
)

// Hierarchy levels. Labels sit above the records they classify.
const (
	LevelFamily = 0
	LevelTag    = 1
	LevelRecord = 2
)

const (
	edgeFamilyOf = "family_of"
	edgeTaggedAs = "tagged"
)

// Mapper converts families, tags and records into a layered graph.
type Mapper struct {
	skipUnusedLabels bool
}

// MapperOptions controls which nodes are emitted.
type MapperOptions struct {
	// SkipUnusedLabels drops family and tag nodes without any record.
	SkipUnusedLabels bool
}

// NewMapper creates a mapper.
func NewMapper(opts MapperOptions) *Mapper {
	return &Mapper{skipUnusedLabels: opts.SkipUnusedLabels}
}

// Build produces the graph. Records appear as leaves even without labels.
// Edges pointing at labels the engine did not list get a synthesized label
// node so the record stays attached.
func (m *Mapper) Build(families []models.Family, tags []models.Tag, records []models.AnalysisRecord) *models.Graph {
	g := &models.Graph{Nodes: []models.GraphNode{}, Edges: []models.GraphEdge{}}
	seen := make(map[string]int)
	used := make(map[string]bool)

	addNode := func(n models.GraphNode) {
		if _, ok := seen[n.ID]; ok {
			return
		}
		seen[n.ID] = len(g.Nodes)
		g.Nodes = append(g.Nodes, n)
	}

	for _, f := range families {
		addNode(familyNode(f))
	}
	for _, t := range tags {
		addNode(tagNode(t))
	}

	for i := range records {
		r := &records[i]
		if r.SHA256 == "" {
			logger.Debugf("Skipping record without sha256 in taxonomy graph (id=%d)", r.ID)
			continue
		}
		recID := RecordNodeID(r.SHA256)
		addNode(recordNode(r))

		if famID := r.FamilyRef(); famID != 0 {
			from := FamilyNodeID(famID)
			if _, ok := seen[from]; !ok {
				f := models.Family{ID: famID}
				if r.Family != nil {
					f = *r.Family
				}
				addNode(familyNode(f))
			}
			used[from] = true
			g.Edges = append(g.Edges, models.GraphEdge{From: from, To: recID, Kind: edgeFamilyOf})
		}

		for _, t := range r.Tags {
			if t.ID == 0 {
				continue
			}
			from := TagNodeID(t.ID)
			if _, ok := seen[from]; !ok {
				addNode(tagNode(t))
			}
			used[from] = true
			g.Edges = append(g.Edges, models.GraphEdge{From: from, To: recID, Kind: edgeTaggedAs})
		}
	}

	if m.skipUnusedLabels {
		g.Nodes = pruneUnused(g.Nodes, used)
	}
	return g
}

func pruneUnused(nodes []models.GraphNode, used map[string]bool) []models.GraphNode {
	out := nodes[:0]
	for _, n := range nodes {
		if n.Kind == models.NodeRecord || used[n.ID] {
			out = append(out, n)
		}
	}
	return out
}

// FamilyNodeID is the node id of a family.
func FamilyNodeID(id int) string {
	return models.NodeFamily + ":" + strconv.Itoa(id)
}

// TagNodeID is the node id of a tag.
func TagNodeID(id int) string {
	return models.NodeTag + ":" + strconv.Itoa(id)
}

// RecordNodeID is the node id of a record.
func RecordNodeID(sha256 string) string {
	return models.NodeRecord + ":" + sha256
}

func familyNode(f models.Family) models.GraphNode {
	label := f.Name
	if label == "" {
		label = "family #" + strconv.Itoa(f.ID)
	}
	return models.GraphNode{ID: FamilyNodeID(f.ID), Kind: models.NodeFamily, Label: label, Level: LevelFamily}
}

func tagNode(t models.Tag) models.GraphNode {
	label := t.Name
	if label == "" {
		label = "tag #" + strconv.Itoa(t.ID)
	}
	return models.GraphNode{ID: TagNodeID(t.ID), Kind: models.NodeTag, Label: label, Level: LevelTag}
}

func recordNode(r *models.AnalysisRecord) models.GraphNode {
	label := r.FileName
	if label == "" {
		label = shortHash(r.SHA256)
	}
	return models.GraphNode{
		ID:        RecordNodeID(r.SHA256),
		Kind:      models.NodeRecord,
		Label:     label,
		Level:     LevelRecord,
		Malicious: r.IsMalicious,
		Href:      "/file/" + r.SHA256,
	}
}

func shortHash(sha string) string {
	if len(sha) <= 12 {
		return sha
	}
	return sha[:12]
}
