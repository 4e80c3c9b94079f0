package source

import (
	"errors"
	"fmt"

	"github.com/knadh/koanf/v2"

	"github.com/ritzau/topology-lens/pkg/model"
)

// Document is the on-disk shape of a topology
type Document struct {
	Namespace string           `koanf:"namespace"`
	Vertices  []VertexDocument `koanf:"vertices"`
	Edges     []EdgeDocument   `koanf:"edges"`
	Links     []LinkDocument   `koanf:"links"`
}

type VertexDocument struct {
	ID      string `koanf:"id"`
	Parent  string `koanf:"parent"`
	Label   string `koanf:"label"`
	Icon    string `koanf:"icon"`
	Tooltip string `koanf:"tooltip"`
	Style   string `koanf:"style"`
}

// EdgeDocument endpoints are "namespace:id"; a bare id refers to the
// document namespace
type EdgeDocument struct {
	ID     string `koanf:"id"`
	Source string `koanf:"source"`
	Target string `koanf:"target"`
	Label  string `koanf:"label"`
	Style  string `koanf:"style"`
}

// LinkDocument is a set of auxiliary edges in their own namespace
type LinkDocument struct {
	Namespace string         `koanf:"namespace"`
	Edges     []EdgeDocument `koanf:"edges"`
}

func decode(k *koanf.Koanf) (*Document, error) {
	var doc Document
	if err := k.Unmarshal("", &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal document: %w", err)
	}
	return &doc, nil
}

// Topology converts the document into raw graph data. Structural checks
// (parents, cycles, dangling edges) are left to the providers.
func (d *Document) Topology() (*model.Topology, error) {
	if d.Namespace == "" {
		return nil, errors.New("document has no namespace")
	}

	g := model.NewGraph(d.Namespace)
	for _, vd := range d.Vertices {
		if vd.ID == "" {
			return nil, errors.New("vertex without id")
		}
		v := model.Vertex{
			VertexRef: model.NewVertexRef(d.Namespace, vd.ID),
			Label:     vd.Label,
			IconKey:   vd.Icon,
			Tooltip:   vd.Tooltip,
			StyleName: vd.Style,
		}
		if vd.Parent != "" {
			v.Parent = model.NewVertexRef(d.Namespace, vd.Parent)
		}
		if v.Label == "" {
			v.Label = vd.ID
		}
		g.AddVertex(v)
	}

	for _, ed := range d.Edges {
		e, err := d.edge(d.Namespace, ed)
		if err != nil {
			return nil, err
		}
		g.AddEdge(e)
	}

	links, err := d.LinkSets()
	if err != nil {
		return nil, err
	}
	return &model.Topology{Base: g, Links: links}, nil
}

// LinkSets converts the link sections only. Documents holding nothing but
// links may omit the namespace when every endpoint is qualified.
func (d *Document) LinkSets() ([]*model.LinkSet, error) {
	var sets []*model.LinkSet
	for _, ld := range d.Links {
		if ld.Namespace == "" {
			return nil, errors.New("link set has no namespace")
		}
		links := model.NewGraph(ld.Namespace)
		for _, ed := range ld.Edges {
			e, err := d.edge(ld.Namespace, ed)
			if err != nil {
				return nil, err
			}
			links.AddEdge(e)
		}
		sets = append(sets, &model.LinkSet{Namespace: ld.Namespace, Edges: links.Edges})
	}
	return sets, nil
}

func (d *Document) edge(namespace string, ed EdgeDocument) (model.Edge, error) {
	if ed.ID == "" || ed.Source == "" || ed.Target == "" {
		return model.Edge{}, fmt.Errorf("edge %q in %s needs id, source and target", ed.ID, namespace)
	}
	source := model.ParseVertexRef(ed.Source, d.Namespace)
	target := model.ParseVertexRef(ed.Target, d.Namespace)
	if source.Namespace == "" || target.Namespace == "" {
		return model.Edge{}, fmt.Errorf("edge %q in %s: endpoints must be namespace:id", ed.ID, namespace)
	}
	e := model.NewEdge(model.NewEdgeRef(namespace, ed.ID), source, target)
	e.Label = ed.Label
	e.StyleName = ed.Style
	return e, nil
}
