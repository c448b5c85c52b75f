package richtext

// RenderLaTeX renders a display formula, as if written between $$ delimiters.
func RenderLaTeX(latex string) (Note, error) {
	return Render("$$" + latex + "$$")
}
