package scene

// category10 is the classic ten-color ordinal palette.
var category10 = [...]string{
	"#1f77b4", "#ff7f0e", "#2ca02c", "#d62728", "#9467bd",
	"#8c564b", "#e377c2", "#7f7f7f", "#bcbd22", "#17becf",
}

// Palette assigns colors to group names in first-seen order, wrapping
// when groups outnumber colors. The assignment is sticky for the life
// of the palette, so a group keeps its color across graph updates.
type Palette struct {
	order map[string]int
}

// NewPalette returns an empty palette.
func NewPalette() *Palette {
	return &Palette{order: make(map[string]int)}
}

// Color returns the color for group, assigning the next free slot the
// first time a group is seen. The empty group is a key like any other.
func (p *Palette) Color(group string) string {
	i, ok := p.order[group]
	if !ok {
		i = len(p.order)
		p.order[group] = i
	}
	return category10[i%len(category10)]
}

// Len reports how many groups have been assigned a color.
func (p *Palette) Len() int { return len(p.order) }
