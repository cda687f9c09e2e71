package artifact

import (
	"archive/zip"
	"bytes"
	"fmt"
	"regexp"
	"strings"
)

// A DOCX file is a ZIP archive of OOXML parts; only three parts are needed
// for a plain-text document.
const (
	docxContentTypes = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
  <Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
  <Default Extension="xml" ContentType="application/xml"/>
  <Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
</Types>`

	docxRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
  <Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
</Relationships>`
)

var paragraphSplit = regexp.MustCompile(`\n{2,}`)

// BuildDocx returns a DOCX document containing one section per page.
// Paragraphs split on blank-line boundaries; pages after the first start on a
// new page.
func BuildDocx(pages []string) ([]byte, error) {
	var body strings.Builder
	first := true
	for _, page := range pages {
		text := strings.TrimSpace(page)
		if text == "" {
			continue
		}
		if !first {
			body.WriteString(`<w:p><w:r><w:br w:type="page"/></w:r></w:p>`)
		}
		for _, paragraph := range paragraphSplit.Split(text, -1) {
			body.WriteString("<w:p>")
			for i, line := range strings.Split(paragraph, "\n") {
				if i > 0 {
					body.WriteString(`<w:r><w:br/></w:r>`)
				}
				body.WriteString(`<w:r><w:t xml:space="preserve">`)
				body.WriteString(escapeXML(line))
				body.WriteString(`</w:t></w:r>`)
			}
			body.WriteString("</w:p>")
		}
		first = false
	}

	document := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">` +
		`<w:body>` + body.String() + `</w:body></w:document>`

	buf := new(bytes.Buffer)
	w := zip.NewWriter(buf)
	parts := []struct {
		name    string
		content string
	}{
		{"[Content_Types].xml", docxContentTypes},
		{"_rels/.rels", docxRels},
		{"word/document.xml", document},
	}
	for _, part := range parts {
		f, err := w.Create(part.name)
		if err != nil {
			return nil, fmt.Errorf("create %s: %w", part.name, err)
		}
		if _, err := f.Write([]byte(part.content)); err != nil {
			return nil, fmt.Errorf("write %s: %w", part.name, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("close docx archive: %w", err)
	}
	return buf.Bytes(), nil
}

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

func escapeXML(s string) string {
	return xmlEscaper.Replace(s)
}
