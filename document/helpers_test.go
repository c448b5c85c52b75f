package document

import "github.com/wudi/pdfedit/internal/pdftest"

func buildPDF(trailer string, bodies ...string) []byte { return pdftest.Build(trailer, bodies...) }

// threePages: pages are objects 3, 5 and 6.
func threePages() []byte { return pdftest.ThreePages() }
