// Package svg renders a scene to standalone SVG, for headless layout
// exports and snapshot files.
package svg

import (
	"fmt"
	"html"
	"io"
	"strings"

	"github.com/recera/seurat/pkg/scene"
)

const (
	labelOffsetX = 12
	labelOffsetY = 4
	labelFont    = "sans-serif"
	labelSize    = 10
	labelFill    = "#333"
)

// Writer streams SVG markup. The first write error sticks and is
// returned from Render.
type Writer struct {
	w   io.Writer
	err error
}

// NewWriter returns a writer emitting to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

func (wr *Writer) write(s string) {
	if wr.err != nil {
		return
	}
	_, wr.err = io.WriteString(wr.w, s)
}

func (wr *Writer) writef(format string, args ...interface{}) {
	wr.write(fmt.Sprintf(format, args...))
}

// Render emits a complete SVG document for the drawable lists: links
// under nodes, labels on top, matching the live canvas layering.
func (wr *Writer) Render(links []scene.LinkShape, nodes []scene.NodeShape, width, height float64) error {
	wr.writef(`<svg xmlns="http://www.w3.org/2000/svg" width="%g" height="%g" viewBox="0 0 %g %g">`+"\n",
		width, height, width, height)
	wr.write(`<rect width="100%" height="100%" fill="#ffffff"/>` + "\n")

	wr.writef(`<g stroke="%s" stroke-opacity="%g">`+"\n", scene.LinkStroke, scene.LinkStrokeOpacity)
	for _, l := range links {
		wr.writef(`<line x1="%g" y1="%g" x2="%g" y2="%g" stroke-width="%g"/>`+"\n",
			l.X1, l.Y1, l.X2, l.Y2, l.Width)
	}
	wr.write("</g>\n")

	wr.write("<g>\n")
	for _, n := range nodes {
		wr.writef(`<circle cx="%g" cy="%g" r="%g" fill="%s" stroke="%s" stroke-width="%g"/>`+"\n",
			n.X, n.Y, n.Radius, n.Fill, n.Stroke, n.StrokeWidth)
	}
	wr.write("</g>\n")

	wr.writef(`<g font-family="%s" font-size="%dpx" fill="%s">`+"\n", labelFont, labelSize, labelFill)
	for _, n := range nodes {
		wr.writef(`<text x="%g" y="%g">%s</text>`+"\n",
			n.X+labelOffsetX, n.Y+labelOffsetY, html.EscapeString(n.Label))
	}
	wr.write("</g>\n")

	wr.write("</svg>\n")
	return wr.err
}

// Render is a convenience that renders to a string.
func Render(links []scene.LinkShape, nodes []scene.NodeShape, width, height float64) (string, error) {
	var buf strings.Builder
	if err := NewWriter(&buf).Render(links, nodes, width, height); err != nil {
		return "", err
	}
	return buf.String(), nil
}
