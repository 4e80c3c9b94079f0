// Package source loads topology documents into raw graphs and builds the
// providers a container is assembled from.
package source

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/ritzau/topology-lens/pkg/finder"
	"github.com/ritzau/topology-lens/pkg/logging"
	"github.com/ritzau/topology-lens/pkg/model"
	"github.com/ritzau/topology-lens/pkg/provider"
)

// ErrUnsupportedFormat is returned for documents with an unknown extension
var ErrUnsupportedFormat = errors.New("unsupported topology document format")

// ErrDuplicateLinks is returned when two link sets share a namespace
var ErrDuplicateLinks = errors.New("link namespace defined twice")

// Source delivers a topology
type Source interface {
	Name() string
	Load(ctx context.Context) (*model.Topology, error)
}

// ParserFor picks a koanf parser by file extension (.toml, .yaml, .yml, .json)
func ParserFor(path string) (koanf.Parser, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return toml.Parser(), nil
	case ".yaml", ".yml":
		return yaml.Parser(), nil
	case ".json":
		return json.Parser(), nil
	default:
		return nil, fmt.Errorf("%s: %w", path, ErrUnsupportedFormat)
	}
}

// FileSource reads a topology document from disk on every Load
type FileSource struct {
	path   string
	parser koanf.Parser
}

// NewFileSource creates a source for a document path
func NewFileSource(path string) (*FileSource, error) {
	parser, err := ParserFor(path)
	if err != nil {
		return nil, err
	}
	return &FileSource{path: path, parser: parser}, nil
}

// Name returns the document path
func (s *FileSource) Name() string {
	return s.path
}

// Path returns the document path
func (s *FileSource) Path() string {
	return s.path
}

// Load parses the document
func (s *FileSource) Load(ctx context.Context) (*model.Topology, error) {
	doc, err := s.document(ctx)
	if err != nil {
		return nil, err
	}

	topology, err := doc.Topology()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.path, err)
	}

	logging.DebugContext(ctx, "Loaded topology", "source", s.path, "namespace", topology.Base.Namespace,
		"vertices", len(topology.Base.Vertices), "edges", len(topology.Base.Edges), "links", len(topology.Links))
	return topology, nil
}

// LoadLinks parses only the link sets of the document
func (s *FileSource) LoadLinks(ctx context.Context) ([]*model.LinkSet, error) {
	doc, err := s.document(ctx)
	if err != nil {
		return nil, err
	}

	links, err := doc.LinkSets()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.path, err)
	}
	return links, nil
}

func (s *FileSource) document(ctx context.Context) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	k := koanf.New(".")
	if err := k.Load(file.Provider(s.path), s.parser); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", s.path, err)
	}

	doc, err := decode(k)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", s.path, err)
	}
	return doc, nil
}

// LinkDirectory collects link documents from a directory tree. Documents are
// found again on every Load so added files are picked up.
type LinkDirectory struct {
	root string
}

// Root returns the directory the documents are collected from
func (d *LinkDirectory) Root() string {
	return d.root
}

// NewLinkDirectory creates a link source for a directory
func NewLinkDirectory(root string) *LinkDirectory {
	return &LinkDirectory{root: root}
}

// Paths lists the documents currently in the directory
func (d *LinkDirectory) Paths() ([]string, error) {
	paths, err := finder.FindDocuments(d.root)
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", d.root, err)
	}
	return paths, nil
}

// Load parses the link sets of every document in the directory
func (d *LinkDirectory) Load(ctx context.Context) ([]*model.LinkSet, error) {
	paths, err := d.Paths()
	if err != nil {
		return nil, err
	}

	var links []*model.LinkSet
	for _, path := range paths {
		s, err := NewFileSource(path)
		if err != nil {
			return nil, err
		}
		sets, err := s.LoadLinks(ctx)
		if err != nil {
			return nil, err
		}
		links = append(links, sets...)
	}

	logging.DebugContext(ctx, "Loaded link documents", "root", d.root, "documents", len(paths), "links", len(links))
	return links, nil
}

// Parse decodes a document held in memory
func Parse(data []byte, parser koanf.Parser) (*model.Topology, error) {
	k := koanf.New(".")
	if err := k.Load(bytesProvider(data), parser); err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}

	doc, err := decode(k)
	if err != nil {
		return nil, err
	}
	return doc.Topology()
}

// Providers builds the base provider and one edge provider per link set
func Providers(t *model.Topology) (*provider.SimpleGraphProvider, []provider.EdgeProvider, error) {
	base, err := provider.NewSimpleGraphProvider(t.Base)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid base graph: %w", err)
	}

	seen := make(map[string]bool, len(t.Links))
	edgeProviders := make([]provider.EdgeProvider, 0, len(t.Links))
	for _, links := range t.Links {
		if seen[links.Namespace] {
			return nil, nil, fmt.Errorf("link namespace %q: %w", links.Namespace, ErrDuplicateLinks)
		}
		seen[links.Namespace] = true
		edgeProviders = append(edgeProviders, provider.NewSimpleEdgeProvider(links.Namespace, links.Edges))
	}
	return base, edgeProviders, nil
}

// Helper to use raw bytes as a provider
type bytesProvider []byte

func (b bytesProvider) ReadBytes() ([]byte, error) {
	return b, nil
}

func (b bytesProvider) Read() (map[string]interface{}, error) {
	return nil, fmt.Errorf("not implemented")
}
