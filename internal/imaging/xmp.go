package imaging

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"strings"
)

const rdfNS = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"

type xnode struct {
	name  xml.Name
	attrs []xml.Attr
	text  strings.Builder
	kids  []*xnode
}

func parseXMLTree(packet []byte) (*xnode, error) {
	dec := xml.NewDecoder(bytes.NewReader(packet))
	dec.Strict = false
	root := &xnode{}
	stack := []*xnode{root}
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return root, err
		}
		top := stack[len(stack)-1]
		switch t := tok.(type) {
		case xml.StartElement:
			n := &xnode{name: t.Name, attrs: t.Copy().Attr}
			top.kids = append(top.kids, n)
			stack = append(stack, n)
		case xml.EndElement:
			if len(stack) > 1 {
				stack = stack[:len(stack)-1]
			}
		case xml.CharData:
			top.text.Write(t)
		}
	}
	return root, nil
}

// xmpTags flattens the properties of every rdf:Description into local-name
// keys. A malformed packet yields the properties read before the error.
func xmpTags(packet []byte) ([]Tag, error) {
	root, err := parseXMLTree(packet)
	var tags []Tag
	var walk func(n *xnode)
	walk = func(n *xnode) {
		if isRDF(n, "Description") {
			for _, a := range propertyAttrs(n) {
				tags = append(tags, Tag{Key: a.Name.Local, Value: a.Value})
			}
			for _, k := range n.kids {
				tags = append(tags, xmpProperty(k))
			}
			return
		}
		for _, k := range n.kids {
			walk(k)
		}
	}
	walk(root)
	return tags, err
}

func isRDF(n *xnode, local string) bool {
	return n.name.Space == rdfNS && n.name.Local == local
}

// propertyAttrs drops namespace declarations and rdf: syntax attributes.
func propertyAttrs(n *xnode) []xml.Attr {
	var out []xml.Attr
	for _, a := range n.attrs {
		if a.Name.Space == "xmlns" || a.Name.Local == "xmlns" || a.Name.Space == rdfNS {
			continue
		}
		if a.Name.Space == "xml" || a.Name.Space == "http://www.w3.org/XML/1998/namespace" {
			continue
		}
		out = append(out, a)
	}
	return out
}

func xmpProperty(n *xnode) Tag {
	key := n.name.Local
	if len(n.kids) == 0 && len(propertyAttrs(n)) == 0 {
		if v := rdfResource(n); v != "" {
			return Tag{Key: key, Value: v}
		}
		return Tag{Key: key, Value: strings.TrimSpace(n.text.String())}
	}
	return structured(key, xmpValue(n))
}

func rdfResource(n *xnode) string {
	for _, a := range n.attrs {
		if a.Name.Space == rdfNS && a.Name.Local == "resource" {
			return a.Value
		}
	}
	return ""
}

// xmpValue converts an RDF subtree to plain Go values: containers become
// slices, structs become maps, leaves become strings.
func xmpValue(n *xnode) any {
	if isRDF(n, "Seq") || isRDF(n, "Bag") || isRDF(n, "Alt") {
		items := make([]any, 0, len(n.kids))
		for _, li := range n.kids {
			items = append(items, xmpValue(li))
		}
		return items
	}
	attrs := propertyAttrs(n)
	if len(n.kids) == 0 && len(attrs) == 0 {
		if v := rdfResource(n); v != "" {
			return v
		}
		return strings.TrimSpace(n.text.String())
	}
	obj := map[string]any{}
	for _, a := range attrs {
		obj[a.Name.Local] = a.Value
	}
	for _, k := range n.kids {
		switch {
		case isRDF(k, "Seq") || isRDF(k, "Bag") || isRDF(k, "Alt"):
			if len(obj) == 0 && len(n.kids) == 1 {
				return xmpValue(k)
			}
			obj[k.name.Local] = xmpValue(k)
		case isRDF(k, "Description"):
			if m, ok := xmpValue(k).(map[string]any); ok {
				for key, v := range m {
					obj[key] = v
				}
			}
		default:
			obj[k.name.Local] = xmpValue(k)
		}
	}
	return obj
}

func xmlEscape(b *bytes.Buffer, s string) error {
	return xml.EscapeText(b, []byte(s))
}
