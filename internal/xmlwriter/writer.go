// =============================================================================
// IPM to XML Converter - XML Writer Module
// =============================================================================
//
// This module renders a decoded IPM batch as an XML document. Rendering is
// deterministic: the same batch always produces byte-identical output.
//
// XML STRUCTURE:
//
//   <?xml version="1.0" encoding="UTF-8"?>
//   <!DOCTYPE ipm-file>
//   <ipm-file name="T112.ipm" messages="1">   <!-- messages = body count -->
//   	<header>                               <!-- file header (1644/697) -->
//   		<mti>1644</mti>
//   		<de id="24">697</de>
//   	</header>
//   	<message>                              <!-- one per body entry -->
//   		<mti>1240</mti>
//   		<de id="4">000000012345</de>
//   		<de id="48">                       <!-- private data subfields -->
//   			<pds id="23">CT6</pds>
//   		</de>
//   		<de id="63">CYCLE0000001</de>
//   	</message>
//   	<footer>                               <!-- file trailer, may be empty -->
//   	</footer>
//   </ipm-file>
//
//   Every element sits on its own line, prefixed by one indent unit per
//   nesting level. The root closing tag is not followed by a newline.
//
// =============================================================================

package xmlwriter

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strconv"
	"unicode/utf8"

	"github.com/ginjaninja78/IPM-to-XML-conversion/internal/ipm"
)

// Element names.
const (
	RootElement    = "ipm-file"
	HeaderElement  = "header"
	MessageElement = "message"
	FooterElement  = "footer"
	ErrorElement   = "error"
)

// =============================================================================
// XML GENERATION OPTIONS
// =============================================================================

// Options contains options for XML generation.
type Options struct {
	// Indent is the string written once per nesting level.
	// Default: "\t"
	Indent string

	// XMLVersion is the XML version for the declaration.
	// Default: "1.0"
	XMLVersion string

	// Encoding is the encoding for the declaration.
	// Default: "UTF-8"
	Encoding string
}

// DefaultOptions returns the default generation options.
func DefaultOptions() Options {
	return Options{
		Indent:     "\t",
		XMLVersion: "1.0",
		Encoding:   "UTF-8",
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Indent == "" {
		o.Indent = d.Indent
	}
	if o.XMLVersion == "" {
		o.XMLVersion = d.XMLVersion
	}
	if o.Encoding == "" {
		o.Encoding = d.Encoding
	}
	return o
}

// =============================================================================
// XML GENERATION FUNCTIONS
// =============================================================================

// Render renders b with the default options.
func Render(b *ipm.Batch) string {
	return RenderWithOptions(b, DefaultOptions())
}

// RenderWithOptions renders b.
//
// PARAMETERS:
//   - b: A fully assembled batch.
//   - options: Generation options. Empty fields take their defaults.
//
// RETURNS:
//   - The XML document.
func RenderWithOptions(b *ipm.Batch, options Options) string {
	return marshalWithIndent(BuildDocument(b), options.withDefaults())
}

// RenderError renders the minimal document reporting that name could not be
// processed.
func RenderError(name string, options Options) string {
	doc := &XMLDocument{
		XMLName: xml.Name{Local: RootElement},
		Attributes: []xml.Attr{
			attr("name", name),
			attr("messages", "0"),
		},
		Children: []XMLElement{
			createSimpleElement(ErrorElement, fmt.Sprintf("Error on processing IPM file %s.", name)),
		},
	}
	return marshalWithIndent(doc, options.withDefaults())
}

// =============================================================================
// XML DOCUMENT BUILDING
// =============================================================================

// XMLDocument represents the root of the XML document.
type XMLDocument struct {
	XMLName    xml.Name
	Attributes []xml.Attr
	Children   []XMLElement
}

// XMLElement represents a generic XML element.
type XMLElement struct {
	XMLName    xml.Name
	Attributes []xml.Attr
	Value      string
	Children   []XMLElement

	// Container elements are written in block form even when they have no
	// children.
	Container bool
}

// BuildDocument constructs the element tree for b.
func BuildDocument(b *ipm.Batch) *XMLDocument {
	doc := &XMLDocument{
		XMLName: xml.Name{Local: RootElement},
		Attributes: []xml.Attr{
			attr("name", b.Name()),
			attr("messages", strconv.Itoa(b.Len())),
		},
	}

	doc.Children = append(doc.Children, buildTransactionElement(HeaderElement, b.Header()))
	for _, t := range b.Body() {
		doc.Children = append(doc.Children, buildTransactionElement(MessageElement, t))
	}
	doc.Children = append(doc.Children, buildTransactionElement(FooterElement, b.Trailer()))

	return doc
}

// buildTransactionElement constructs the element for one transaction. A nil
// transaction yields an empty block.
//
// STRUCTURE:
//   <message>
//     <mti>1240</mti>
//     <de id="2">5412345678901234</de>
//     <de id="48">
//       <pds id="23">CT6</pds>
//     </de>
//   </message>
func buildTransactionElement(name string, t *ipm.Transaction) XMLElement {
	element := XMLElement{
		XMLName:   xml.Name{Local: name},
		Container: true,
	}
	if t == nil {
		return element
	}

	for _, f := range t.Fields() {
		if t.Nested(f.Index()) {
			element.Children = append(element.Children, buildPrivateDataElement(f, t.PrivateData()))
			continue
		}
		element.Children = append(element.Children, buildFieldElement(f))
	}
	return element
}

// buildPrivateDataElement renders a data element from its subfield set.
func buildPrivateDataElement(f ipm.Field, private *ipm.Transaction) XMLElement {
	element := XMLElement{
		XMLName:    xml.Name{Local: f.Tag()},
		Attributes: []xml.Attr{attr("id", strconv.Itoa(f.Index()))},
		Container:  true,
	}
	for _, sub := range private.Fields() {
		element.Children = append(element.Children, buildFieldElement(sub))
	}
	return element
}

func buildFieldElement(f ipm.Field) XMLElement {
	element := createSimpleElement(f.Tag(), f.String())
	if f.Tag() != ipm.TagMTI {
		element.Attributes = []xml.Attr{attr("id", strconv.Itoa(f.Index()))}
	}
	return element
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// createSimpleElement creates a simple XML element with a text value.
func createSimpleElement(name, value string) XMLElement {
	return XMLElement{
		XMLName: xml.Name{Local: name},
		Value:   value,
	}
}

func attr(name, value string) xml.Attr {
	return xml.Attr{Name: xml.Name{Local: name}, Value: value}
}

// marshalWithIndent writes the declaration, the doctype and the element tree.
func marshalWithIndent(doc *XMLDocument, options Options) string {
	var buffer bytes.Buffer

	fmt.Fprintf(&buffer, "<?xml version=\"%s\" encoding=\"%s\"?>\n", options.XMLVersion, options.Encoding)
	fmt.Fprintf(&buffer, "<!DOCTYPE %s>\n", doc.XMLName.Local)

	// Write the root element opening tag.
	buffer.WriteString("<")
	buffer.WriteString(doc.XMLName.Local)
	writeAttributes(&buffer, doc.Attributes)
	buffer.WriteString(">\n")

	for _, child := range doc.Children {
		writeElement(&buffer, child, options.Indent, 1)
	}

	// Write the root element closing tag.
	buffer.WriteString("</")
	buffer.WriteString(doc.XMLName.Local)
	buffer.WriteString(">")

	return buffer.String()
}

// writeElement writes an XML element to the buffer with indentation.
func writeElement(buffer *bytes.Buffer, element XMLElement, indent string, level int) {
	writeIndent(buffer, indent, level)

	buffer.WriteString("<")
	buffer.WriteString(element.XMLName.Local)
	writeAttributes(buffer, element.Attributes)
	buffer.WriteString(">")

	if len(element.Children) > 0 || element.Container {
		buffer.WriteString("\n")
		for _, child := range element.Children {
			writeElement(buffer, child, indent, level+1)
		}
		writeIndent(buffer, indent, level)
	} else {
		buffer.WriteString(escapeXML(element.Value))
	}

	buffer.WriteString("</")
	buffer.WriteString(element.XMLName.Local)
	buffer.WriteString(">\n")
}

func writeIndent(buffer *bytes.Buffer, indent string, level int) {
	for i := 0; i < level; i++ {
		buffer.WriteString(indent)
	}
}

func writeAttributes(buffer *bytes.Buffer, attributes []xml.Attr) {
	for _, a := range attributes {
		fmt.Fprintf(buffer, " %s=\"%s\"", a.Name.Local, escapeXML(a.Value))
	}
}

// escapeXML escapes special characters for XML. Characters XML 1.0 does not
// allow at all are replaced with U+FFFD.
func escapeXML(s string) string {
	var buffer bytes.Buffer

	for _, r := range s {
		switch {
		case r == '&':
			buffer.WriteString("&amp;")
		case r == '<':
			buffer.WriteString("&lt;")
		case r == '>':
			buffer.WriteString("&gt;")
		case r == '"':
			buffer.WriteString("&quot;")
		case r == '\'':
			buffer.WriteString("&apos;")
		case !isXMLChar(r):
			buffer.WriteRune(utf8.RuneError)
		default:
			buffer.WriteRune(r)
		}
	}

	return buffer.String()
}

// isXMLChar reports whether r is in the XML 1.0 Char production.
func isXMLChar(r rune) bool {
	switch {
	case r == '\t', r == '\n', r == '\r':
		return true
	case r >= 0x20 && r <= 0xD7FF:
		return true
	case r >= 0xE000 && r <= 0xFFFD:
		return true
	}
	return r >= 0x10000 && r <= 0x10FFFF
}
