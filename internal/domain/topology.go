package domain

// Node is a modeled network asset. Controls lists the control IDs protecting it.
type Node struct {
	ID       string         `json:"id"`
	Attrs    map[string]any `json:"attrs,omitempty"`
	Controls []string       `json:"controls,omitempty"`
}

// Control is a defensive mechanism with a per-kind effectiveness in [0,1]
type Control struct {
	ID            string             `json:"id"`
	Effectiveness map[string]float64 `json:"effectiveness"`
}

// Edge records reachability between two nodes. It is descriptive only; the
// engine never traverses edges on its own.
type Edge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Topology is the network snapshot a run is evaluated against.
// The engine treats it as read-only.
type Topology struct {
	Nodes    map[string]Node    `json:"nodes"`
	Edges    []Edge             `json:"edges,omitempty"`
	Controls map[string]Control `json:"controls"`
}

// NewTopology builds a Topology from node and control lists.
// Later entries win when IDs repeat.
func NewTopology(nodes []Node, edges []Edge, controls []Control) Topology {
	t := Topology{
		Nodes:    make(map[string]Node, len(nodes)),
		Edges:    edges,
		Controls: make(map[string]Control, len(controls)),
	}
	for _, n := range nodes {
		t.Nodes[n.ID] = n
	}
	for _, c := range controls {
		t.Controls[c.ID] = c
	}
	return t
}

// Node looks up a node by ID
func (t Topology) Node(id string) (Node, bool) {
	n, ok := t.Nodes[id]
	return n, ok
}

// Control looks up a control by ID
func (t Topology) Control(id string) (Control, bool) {
	c, ok := t.Controls[id]
	return c, ok
}
