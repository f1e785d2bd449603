package tree

import (
	"bufio"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/matzehuels/topdag/pkg/errors"
	"github.com/matzehuels/topdag/pkg/labels"
)

// ParseXML reads an XML document and builds the element tree. Every
// element becomes one node in document order (so node ids are a pre-order
// numbering), its tag name is appended to lab, and an edge is added from
// its parent. Text, attributes, comments and processing instructions are
// ignored.
func ParseXML(r io.Reader, t *Tree, lab *labels.Labels) error {
	dec := xml.NewDecoder(r)

	var parents, stack []int
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidXML, err, "parse XML")
		}
		switch el := tok.(type) {
		case xml.StartElement:
			id := len(parents)
			if len(stack) > 0 {
				parents = append(parents, stack[len(stack)-1])
			} else {
				if id != 0 {
					return errors.New(errors.ErrCodeInvalidXML, "multiple root elements")
				}
				parents = append(parents, -1)
			}
			lab.Add(el.Name.Local)
			stack = append(stack, id)
		case xml.EndElement:
			if len(stack) == 0 {
				return errors.New(errors.ErrCodeInvalidXML, "unbalanced end tag </%s>", el.Name.Local)
			}
			stack = stack[:len(stack)-1]
		}
	}
	if len(stack) != 0 {
		return errors.New(errors.ErrCodeInvalidXML, "%d unclosed elements", len(stack))
	}
	if len(parents) == 0 {
		return errors.New(errors.ErrCodeInvalidXML, "no elements in document")
	}
	*t = *FromParents(parents)
	return nil
}

// ParseXMLFile is a convenience wrapper around [ParseXML].
func ParseXMLFile(path string, t *Tree, lab *labels.Labels) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return errors.Wrap(errors.ErrCodeIO, err, "open %s", path)
	}
	defer f.Close()
	return ParseXML(bufio.NewReader(f), t, lab)
}

// WriteXML serializes the element structure back to indented XML. Only
// tag names survive a compression round trip; text and attributes were
// never captured.
func WriteXML(w io.Writer, t *Tree, lab *labels.Labels) error {
	bw := bufio.NewWriter(w)
	if t.NumNodes() > 0 {
		if err := writeElement(bw, t, lab, 0, 0); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func writeElement(w *bufio.Writer, t *Tree, lab *labels.Labels, v, depth int) error {
	name := lab.Name(lab.LabelOf(v))
	indent := strings.Repeat("\t", depth)
	kids := t.Children(v)
	if len(kids) == 0 {
		_, err := fmt.Fprintf(w, "%s<%s></%s>\n", indent, name, name)
		return err
	}
	if _, err := fmt.Fprintf(w, "%s<%s>\n", indent, name); err != nil {
		return err
	}
	for _, c := range kids {
		if err := writeElement(w, t, lab, c, depth+1); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "%s</%s>\n", indent, name)
	return err
}

// WriteXMLFile is a convenience wrapper around [WriteXML].
func WriteXMLFile(path string, t *Tree, lab *labels.Labels) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "create %s", path)
	}
	if err := WriteXML(f, t, lab); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
