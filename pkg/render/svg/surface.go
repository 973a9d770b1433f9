package svg

import (
	"bytes"
	"fmt"
	"hash/fnv"
	"html"
	"slices"
	"strings"

	"github.com/google/uuid"
)

// Node is one keyed SVG element. Markup is the complete element text.
type Node struct {
	Key    string
	Markup string
}

type layer struct {
	name  string
	attrs string
	keys  []string
	nodes map[string]string
}

// join replaces the layer's contents with nodes, keyed by identity:
// existing keys are updated in place, new keys appended, and keys absent
// from nodes removed. The resulting order follows nodes.
func (ly *layer) join(nodes []Node) (updated, entered, exited int) {
	next := make(map[string]string, len(nodes))
	keys := make([]string, 0, len(nodes))
	for _, n := range nodes {
		if _, dup := next[n.Key]; dup {
			continue
		}
		if _, ok := ly.nodes[n.Key]; ok {
			updated++
		} else {
			entered++
		}
		next[n.Key] = n.Markup
		keys = append(keys, n.Key)
	}
	for _, k := range ly.keys {
		if _, ok := next[k]; !ok {
			exited++
		}
	}
	ly.keys, ly.nodes = keys, next
	return updated, entered, exited
}

// JoinStats reports the outcome of a keyed update.
type JoinStats struct {
	Updated int
	Entered int
	Exited  int
}

// Surface is an explicit drawing context: a fixed-size SVG document made of
// named layers of keyed elements. Redrawing a layer replaces its elements
// by key, so repeated draws never accumulate stale content.
//
// A Surface is not safe for concurrent use.
type Surface struct {
	ID     string
	Width  float64
	Height float64

	title  string
	order  []string
	layers map[string]*layer
}

// SurfaceOption configures a Surface.
type SurfaceOption func(*Surface)

// WithID sets the surface ID used to prefix element IDs.
func WithID(id string) SurfaceOption { return func(s *Surface) { s.ID = id } }

// WithTitle adds an accessible <title> to the document.
func WithTitle(t string) SurfaceOption { return func(s *Surface) { s.title = t } }

// NewSurface creates an empty surface. Without [WithID] the ID is a random
// UUID so that several surfaces can share one HTML document.
func NewSurface(width, height float64, opts ...SurfaceOption) *Surface {
	s := &Surface{Width: width, Height: height, layers: make(map[string]*layer)}
	for _, opt := range opts {
		opt(s)
	}
	if s.ID == "" {
		s.ID = "chart-" + uuid.NewString()
	}
	return s
}

// Join replaces the contents of the named layer. The layer is created on
// first use, after all existing layers, with the given group attributes.
func (s *Surface) Join(name, attrs string, nodes []Node) JoinStats {
	ly, ok := s.layers[name]
	if !ok {
		ly = &layer{name: name, nodes: map[string]string{}}
		s.layers[name] = ly
		s.order = append(s.order, name)
	}
	ly.attrs = attrs
	u, e, x := ly.join(nodes)
	return JoinStats{Updated: u, Entered: e, Exited: x}
}

// Clear removes a layer and all its elements.
func (s *Surface) Clear(name string) {
	if _, ok := s.layers[name]; !ok {
		return
	}
	delete(s.layers, name)
	s.order = slices.DeleteFunc(s.order, func(n string) bool { return n == name })
}

// Keys returns the element keys of a layer in draw order.
func (s *Surface) Keys(name string) []string {
	if ly, ok := s.layers[name]; ok {
		return slices.Clone(ly.keys)
	}
	return nil
}

// Len returns the number of elements in a layer.
func (s *Surface) Len(name string) int {
	if ly, ok := s.layers[name]; ok {
		return len(ly.keys)
	}
	return 0
}

// Layers returns the layer names in draw order.
func (s *Surface) Layers() []string { return slices.Clone(s.order) }

// ElementID returns the document-unique ID for an element key.
func (s *Surface) ElementID(key string) string {
	return s.ID + "-" + sanitizeID(key)
}

// Bytes serialises the surface as a standalone SVG document.
func (s *Surface) Bytes() []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" id="%s" viewBox="0 0 %s %s" width="%s" height="%s">`+"\n",
		escape(s.ID), num(s.Width), num(s.Height), num(s.Width), num(s.Height))
	if s.title != "" {
		fmt.Fprintf(&buf, "  <title>%s</title>\n", escape(s.title))
	}
	for _, name := range s.order {
		ly := s.layers[name]
		fmt.Fprintf(&buf, `  <g class="%s"%s>`+"\n", escape(name), ly.attrs)
		for _, k := range ly.keys {
			buf.WriteString("    ")
			buf.WriteString(ly.nodes[k])
			buf.WriteByte('\n')
		}
		buf.WriteString("  </g>\n")
	}
	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

// sanitizeID maps s onto ID-safe characters. When that changes s, a short
// hash of the original keeps distinct keys distinct.
func sanitizeID(s string) string {
	out := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, s)
	if out == s {
		return out
	}
	h := fnv.New32a()
	h.Write([]byte(s))
	return fmt.Sprintf("%s-%08x", out, h.Sum32())
}

func escape(s string) string { return html.EscapeString(s) }

func num(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	if s == "-0" {
		return "0"
	}
	return s
}
