package render

// Theme holds colors for CFG and callgraph rendering.
type Theme struct {
	Background string
	NodeFill   string
	NodeBorder string
	TextColor  string

	// Edge colors by exit-jump kind.
	EdgeTaken      string // conditional branch, taken
	EdgeNotTaken   string // conditional branch, not taken
	EdgeCall       string // call target
	EdgeRet        string // resolved return
	EdgeDirect     string // unconditional/fallthrough
	EdgeUnresolved string // not used: CFGDOT draws no edge for an indirect jump or unresolved ret

	// Node accents.
	EntryFill string // group/function entry highlight
	CycleFill string // node inside an unresolved/irreducible cycle

	// Cluster styling (callgraph.dot's function nodes grouped by nothing
	// in particular here — kept for symmetry with the per-block clusters
	// a larger object file's callgraph.dot would want).
	ClusterBorder string
	ClusterLabel  string
}

// NASA is the NASA/Bauhaus theme: geometric, monochrome, sparse color.
var NASA = Theme{
	Background: "#F5F5F5",
	NodeFill:   "white",
	NodeBorder: "#1A1A1A",
	TextColor:  "#1A1A1A",

	EdgeTaken:      "#0B3D91", // NASA blue
	EdgeNotTaken:   "#00695C", // teal
	EdgeCall:       "#9E9E9E", // gray
	EdgeRet:        "#E65100", // deep orange
	EdgeDirect:     "#424242", // dark gray
	EdgeUnresolved: "#FC3D21", // NASA red

	EntryFill: "#0B3D91",
	CycleFill: "#FFF3E0",

	ClusterBorder: "#BDBDBD",
	ClusterLabel:  "#757575",
}
