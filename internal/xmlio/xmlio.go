// Package xmlio is the thin glue between real PDSC/CPRJ files on disk and
// the xmltree.Element contract the core consumes (spec §6.1/§6.2). It is
// deliberately NOT the "XML parsing/serialization framework" spec.md's
// Non-goals exclude: it does nothing the core relies on for correctness,
// it only gives cmd/rtecore and internal/mcp a real filesystem boundary to
// stand on so they can be run against actual pack trees instead of only
// hand-built item.Item fixtures in tests.
package xmlio

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"

	"github.com/cmsis-rte/rtecore/internal/xmltree"
)

// ReadFile parses the XML document at path into an Element tree.
func ReadFile(path string) (*xmltree.Element, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("xmlio: open %s: %w", path, err)
	}
	defer f.Close()
	return Decode(f)
}

// Decode reads one XML document from r and returns its root as an Element.
func Decode(r io.Reader) (*xmltree.Element, error) {
	dec := xml.NewDecoder(r)
	var root *xmltree.Element
	var stack []*xmltree.Element

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("xmlio: decode: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			el := xmltree.NewElement(t.Name.Local)
			for _, a := range t.Attr {
				el.SetAttribute(a.Name.Local, a.Value)
			}
			if len(stack) > 0 {
				stack[len(stack)-1].AddChild(el)
			} else {
				root = el
			}
			stack = append(stack, el)
		case xml.EndElement:
			stack = stack[:len(stack)-1]
		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].Text += string(t)
			}
		}
	}
	if root == nil {
		return nil, fmt.Errorf("xmlio: empty document")
	}
	return root, nil
}

// WriteFile serializes el to path as an XML document (spec §6.4's
// rewritten/pinned CPRJ output).
func WriteFile(path string, el *xmltree.Element) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("xmlio: create %s: %w", path, err)
	}
	defer f.Close()
	return Encode(f, el)
}

// Encode writes el as an XML document to w, preserving attribute order.
func Encode(w io.Writer, el *xmltree.Element) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	return encodeElement(w, el, 0)
}

func encodeElement(w io.Writer, el *xmltree.Element, depth int) error {
	indent := ""
	for i := 0; i < depth; i++ {
		indent += "  "
	}
	if _, err := fmt.Fprintf(w, "%s<%s", indent, el.Tag); err != nil {
		return err
	}
	for _, a := range el.Attributes {
		if _, err := fmt.Fprintf(w, " %s=%q", a.Name, a.Value); err != nil {
			return err
		}
	}
	if len(el.Children) == 0 && el.Text == "" {
		_, err := fmt.Fprintf(w, "/>\n")
		return err
	}
	if _, err := fmt.Fprintf(w, ">"); err != nil {
		return err
	}
	if el.Text != "" {
		if err := xml.EscapeText(w, []byte(el.Text)); err != nil {
			return err
		}
	}
	if len(el.Children) > 0 {
		if _, err := io.WriteString(w, "\n"); err != nil {
			return err
		}
		for _, c := range el.Children {
			if err := encodeElement(w, c, depth+1); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, indent); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "</%s>\n", el.Tag)
	return err
}
