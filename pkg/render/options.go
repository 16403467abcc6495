package render

// DefaultLineBreak separates address lines when RenderOptions.LineBreak is
// empty.
const DefaultLineBreak = "\n"

// RenderOptions describe per-request data renderers can use to customise
// their output without touching the rendition.
type RenderOptions struct {
	// LineBreak joins address lines in text output.
	LineBreak string
	// Recipient lines are printed above the address (name, company).
	Recipient []string
	// Extras are exposed to template based renderers under "extras".
	Extras map[string]any
}

// Break returns LineBreak or DefaultLineBreak.
func (o RenderOptions) Break() string {
	if o.LineBreak == "" {
		return DefaultLineBreak
	}
	return o.LineBreak
}

// AllLines returns the recipient lines followed by lines, skipping blank
// recipient entries.
func (o RenderOptions) AllLines(lines []string) []string {
	out := make([]string, 0, len(o.Recipient)+len(lines))
	for _, line := range o.Recipient {
		if line != "" {
			out = append(out, line)
		}
	}
	return append(out, lines...)
}
