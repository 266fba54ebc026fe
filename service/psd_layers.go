package service

import (
	"fmt"
	"image"
	"os"
	"strings"

	"github.com/oov/psd"
)

// LayerNode is a generic named node in a layered document's tree. It is
// deliberately independent of any specific layered-image library so the
// compositor and the layer search stay testable with synthetic trees.
type LayerNode struct {
	Name     string
	Bounds   image.Rectangle
	Picture  image.Image // nil for groups and empty layers
	Children []LayerNode
}

// LayerDocument is the extracted form of one layered source file.
type LayerDocument struct {
	Width     int
	Height    int
	Layers    []LayerNode // document order, bottom layer first
	Flattened image.Image // merged composite, nil when absent
}

// FindLayerByNames searches the tree depth-first for the first layer whose
// name contains any of the candidate names, case-insensitively. Returns
// nil when nothing matches.
func FindLayerByNames(layers []LayerNode, names []string) *LayerNode {
	for i := range layers {
		layer := &layers[i]
		lower := strings.ToLower(layer.Name)
		for _, name := range names {
			if name != "" && strings.Contains(lower, strings.ToLower(name)) {
				return layer
			}
		}
		if found := FindLayerByNames(layer.Children, names); found != nil {
			return found
		}
	}
	return nil
}

// LayerAt returns the top-level layer at the given document-order index,
// or nil when the index is out of range.
func LayerAt(layers []LayerNode, idx int) *LayerNode {
	if idx < 0 || idx >= len(layers) {
		return nil
	}
	return &layers[idx]
}

// LayerExtractor loads layered documents. The PSD-backed implementation is
// the native path; a nil or failing extractor triggers the compositor's
// flatten fallback.
type LayerExtractor interface {
	Extract(path string) (*LayerDocument, error)
}

// PSDExtractor reads Photoshop documents with the pure-Go psd decoder.
type PSDExtractor struct{}

// Ensure PSDExtractor implements LayerExtractor
var _ LayerExtractor = PSDExtractor{}

// Extract decodes the full layer tree plus the merged composite. A file
// that parses but carries no layer data (merged-only PSDs) returns an
// error so callers fall back to flattening.
func (PSDExtractor) Extract(path string) (*LayerDocument, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open layered file: %w", err)
	}
	defer f.Close()

	doc, _, err := psd.Decode(f, &psd.DecodeOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to decode layered file: %w", err)
	}

	rect := doc.Config.Rect
	out := &LayerDocument{
		Width:     rect.Dx(),
		Height:    rect.Dy(),
		Flattened: doc.Picker,
	}
	for i := range doc.Layer {
		out.Layers = append(out.Layers, convertLayer(&doc.Layer[i]))
	}

	if len(out.Layers) == 0 {
		return out, fmt.Errorf("layered file %s carries no layer data", path)
	}
	return out, nil
}

func convertLayer(l *psd.Layer) LayerNode {
	node := LayerNode{
		Name:   l.Name,
		Bounds: l.Rect,
	}
	if l.HasImage() {
		node.Picture = l.Picker
	}
	for i := range l.Layer {
		node.Children = append(node.Children, convertLayer(&l.Layer[i]))
	}
	return node
}
