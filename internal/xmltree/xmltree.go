// Package xmltree builds a lightweight, error-tolerant syntax tree of an XML
// document with byte offsets for every node.
package xmltree

import (
	"encoding/xml"
	"errors"
	"io"
	"iter"
	"strings"
)

// Kind identifies the type of a Node.
type Kind int

const (
	DocumentNode Kind = iota
	ElementNode
	TextNode
	CDATANode
	CommentNode
	ProcInstNode
	DirectiveNode
)

func (k Kind) String() string {
	switch k {
	case DocumentNode:
		return "document"
	case ElementNode:
		return "element"
	case TextNode:
		return "text"
	case CDATANode:
		return "cdata"
	case CommentNode:
		return "comment"
	case ProcInstNode:
		return "procinst"
	case DirectiveNode:
		return "directive"
	default:
		return "unknown"
	}
}

// Node is a node of the tree. Start and End are byte offsets into the
// parsed text; End is exclusive. For elements the span runs from the start
// tag to the end of the end tag, or to the last parsed byte when the
// element was never closed.
type Node struct {
	Kind     Kind
	Name     xml.Name
	Attrs    []xml.Attr
	Value    string
	Start    int
	End      int
	Closed   bool
	Parent   *Node
	Children []*Node
}

// Document is the result of Parse.
type Document struct {
	Root *Node
	// Err is the syntax error that ended parsing early, if any. Nodes read
	// before it are kept.
	Err error
	// ErrOffset is the byte offset at which Err was detected.
	ErrOffset int
}

// Parse builds a tree from text. It never fails: a syntax error stops the
// read and is recorded on the Document.
func Parse(text string) *Document {
	root := &Node{Kind: DocumentNode, End: len(text), Closed: true}
	doc := &Document{Root: root}

	d := xml.NewDecoder(strings.NewReader(text))
	d.Strict = false
	d.CharsetReader = func(_ string, input io.Reader) (io.Reader, error) {
		return input, nil
	}

	cur := root
	for {
		start := int(d.InputOffset())
		tok, err := d.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			doc.Err = err
			doc.ErrOffset = int(d.InputOffset())
			break
		}
		end := int(d.InputOffset())

		switch t := tok.(type) {
		case xml.StartElement:
			n := &Node{
				Kind:   ElementNode,
				Name:   t.Name,
				Attrs:  t.Attr,
				Start:  start,
				End:    end,
				Parent: cur,
			}
			cur.Children = append(cur.Children, n)
			cur = n
		case xml.EndElement:
			cur.End = end
			cur.Closed = true
			if cur.Parent != nil {
				cur = cur.Parent
			}
		case xml.CharData:
			kind := TextNode
			if strings.HasPrefix(text[start:end], "<![CDATA[") {
				kind = CDATANode
			}
			cur.add(&Node{Kind: kind, Value: string(t), Start: start, End: end})
		case xml.Comment:
			cur.add(&Node{Kind: CommentNode, Value: string(t), Start: start, End: end})
		case xml.ProcInst:
			cur.add(&Node{Kind: ProcInstNode, Name: xml.Name{Local: t.Target}, Value: string(t.Inst), Start: start, End: end})
		case xml.Directive:
			cur.add(&Node{Kind: DirectiveNode, Value: string(t), Start: start, End: end})
		}
	}

	// Unclosed elements extend to where reading stopped.
	stop := len(text)
	if doc.Err != nil {
		stop = doc.ErrOffset
	}
	for n := cur; n != root; n = n.Parent {
		n.End = stop
	}
	return doc
}

func (n *Node) add(child *Node) {
	child.Parent = n
	n.Children = append(n.Children, child)
}

// Walk yields n and all of its descendants in document order.
func (n *Node) Walk() iter.Seq[*Node] {
	return func(yield func(*Node) bool) {
		n.walk(yield)
	}
}

func (n *Node) walk(yield func(*Node) bool) bool {
	if !yield(n) {
		return false
	}
	for _, c := range n.Children {
		if !c.walk(yield) {
			return false
		}
	}
	return true
}

// Texts yields every text and CDATA node of the document in order.
func (d *Document) Texts() iter.Seq[*Node] {
	return func(yield func(*Node) bool) {
		for n := range d.Root.Walk() {
			if n.Kind != TextNode && n.Kind != CDATANode {
				continue
			}
			if !yield(n) {
				return
			}
		}
	}
}

// Elements yields every element of the document in order.
func (d *Document) Elements() iter.Seq[*Node] {
	return func(yield func(*Node) bool) {
		for n := range d.Root.Walk() {
			if n.Kind == ElementNode && !yield(n) {
				return
			}
		}
	}
}
