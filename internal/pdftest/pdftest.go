// Package pdftest builds small PDF files for tests.
package pdftest

import (
	"bytes"
	"fmt"
)

// Build writes bodies as objects 1..n followed by a classic xref table and
// a trailer with the given extra entries.
func Build(trailer string, bodies ...string) []byte {
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.7\n")
	offsets := make([]int, len(bodies))
	for i, body := range bodies {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, body)
	}
	start := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(bodies)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d %s >>\nstartxref\n%d\n%%%%EOF\n", len(bodies)+1, trailer, start)
	return buf.Bytes()
}

// ThreePages has a nested page tree: pages are objects 3, 5 and 6, and only
// the last one has an (empty, direct) /Annots array.
func ThreePages() []byte {
	return Build("/Root 1 0 R",
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R 4 0 R] /Count 3 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] >>",
		"<< /Type /Pages /Parent 2 0 R /Kids [5 0 R 6 0 R] /Count 2 >>",
		"<< /Type /Page /Parent 4 0 R /MediaBox [0 0 612 792] >>",
		"<< /Type /Page /Parent 4 0 R /MediaBox [0 0 612 792] /Annots [] >>",
	)
}

// OnePage has a single page (object 3) whose /Annots entry is annots, plus
// extra objects numbered from 4.
func OnePage(annots string, extra ...string) []byte {
	page := "<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] >>"
	if annots != "" {
		page = "<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Annots " + annots + " >>"
	}
	bodies := append([]string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		page,
	}, extra...)
	return Build("/Root 1 0 R", bodies...)
}
