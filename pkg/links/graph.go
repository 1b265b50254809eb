package links

import (
	"context"
	"encoding/json"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/jnalv414/my-second-brain/pkg/core"
)

// GraphNode is one note in a link graph, keyed by its filename stem.
type GraphNode struct {
	Name          string   `json:"-"`
	Path          string   `json:"path"`
	OutgoingLinks []string `json:"outgoing_links"`
	Backlinks     []string `json:"backlinks"`
}

// Graph is a snapshot of the links between all notes of a vault.
// Lookups are case-insensitive on the note name.
type Graph struct {
	nodes map[string]*GraphNode
	order []string
}

// BuildGraph scans the corpus and builds the full link graph in two passes:
// the first records each note's raw link targets, the second turns every
// resolvable target into a backlink. When two notes share a stem the first
// in list order wins.
func (r *Resolver) BuildGraph(ctx context.Context) (*Graph, error) {
	notes, err := r.corpus.Scan(ctx)
	if err != nil {
		return nil, err
	}

	g := &Graph{nodes: make(map[string]*GraphNode, len(notes))}

	for _, note := range notes {
		name := core.Stem(note.Path)
		key := strings.ToLower(name)
		if existing, ok := g.nodes[key]; ok {
			r.logger.Warn("vault.graph.duplicate_stem",
				"name", name,
				"kept", existing.Path,
				"dropped", note.Path,
			)
			continue
		}
		g.nodes[key] = &GraphNode{
			Name:          name,
			Path:          note.Path,
			OutgoingLinks: Targets(note.Content),
			Backlinks:     []string{},
		}
		g.order = append(g.order, key)
	}

	for _, key := range g.order {
		source := g.nodes[key]
		for _, target := range source.OutgoingLinks {
			if node, ok := g.nodes[strings.ToLower(target)]; ok {
				node.Backlinks = append(node.Backlinks, source.Name)
			}
		}
	}

	return g, nil
}

// Len returns the number of notes in the graph.
func (g *Graph) Len() int {
	return len(g.order)
}

// Node looks up a note by name.
func (g *Graph) Node(name string) (GraphNode, bool) {
	node, ok := g.nodes[strings.ToLower(name)]
	if !ok {
		return GraphNode{}, false
	}
	return *node, true
}

// Nodes returns every node in list order.
func (g *Graph) Nodes() []GraphNode {
	nodes := make([]GraphNode, 0, len(g.order))
	for _, key := range g.order {
		nodes = append(nodes, *g.nodes[key])
	}
	return nodes
}

// Backlinks returns the notes linking to name, one entry per link.
func (g *Graph) Backlinks(name string) []core.NoteRef {
	refs := []core.NoteRef{}
	node, ok := g.nodes[strings.ToLower(name)]
	if !ok {
		return refs
	}
	for _, source := range node.Backlinks {
		if src, ok := g.nodes[strings.ToLower(source)]; ok {
			refs = append(refs, core.NoteRef{Name: src.Name, Path: src.Path})
		}
	}
	return refs
}

// OutgoingLinks returns the notes name links to that exist in the graph.
func (g *Graph) OutgoingLinks(name string) []core.NoteRef {
	refs := []core.NoteRef{}
	node, ok := g.nodes[strings.ToLower(name)]
	if !ok {
		return refs
	}
	for _, target := range node.OutgoingLinks {
		if dst, ok := g.nodes[strings.ToLower(target)]; ok {
			refs = append(refs, core.NoteRef{Name: dst.Name, Path: dst.Path})
		}
	}
	return refs
}

// MarshalJSON encodes the graph as an object keyed by note name, in list
// order.
func (g *Graph) MarshalJSON() ([]byte, error) {
	out := orderedmap.New[string, GraphNode](len(g.order))
	for _, key := range g.order {
		node := g.nodes[key]
		out.Set(node.Name, *node)
	}
	return json.Marshal(out)
}
