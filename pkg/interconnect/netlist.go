package interconnect

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Net is a set of ports on one electrical net.
type Net struct {
	ID    int      `json:"id"`
	Ports []string `json:"ports"`
}

// Netlist merges connections with a union-find over port names.
type Netlist struct {
	parent map[string]string
	rank   map[string]int
	ports  []string

	// Nets is filled by Finalize.
	Nets []*Net
}

// NewNetlist puts every port in its own net.
func NewNetlist(ports []string) *Netlist {
	nl := &Netlist{
		parent: make(map[string]string, len(ports)),
		rank:   make(map[string]int, len(ports)),
	}
	for _, p := range ports {
		nl.add(p)
	}
	return nl
}

func (nl *Netlist) add(p string) {
	if _, ok := nl.parent[p]; ok {
		return
	}
	nl.parent[p] = p
	nl.ports = append(nl.ports, p)
}

// Connect merges the nets of a and b. Unknown ports are added.
func (nl *Netlist) Connect(a, b string) {
	nl.add(a)
	nl.add(b)
	ra, rb := nl.Find(a), nl.Find(b)
	if ra == rb {
		return
	}
	switch {
	case nl.rank[ra] < nl.rank[rb]:
		nl.parent[ra] = rb
	case nl.rank[ra] > nl.rank[rb]:
		nl.parent[rb] = ra
	default:
		nl.parent[rb] = ra
		nl.rank[ra]++
	}
}

// Find returns the representative of p's net, compressing the path.
func (nl *Netlist) Find(p string) string {
	root := p
	for nl.parent[root] != root {
		root = nl.parent[root]
	}
	for p != root {
		next := nl.parent[p]
		nl.parent[p] = root
		p = next
	}
	return root
}

// Connected reports whether a and b are on the same net.
func (nl *Netlist) Connected(a, b string) bool {
	if _, ok := nl.parent[a]; !ok {
		return false
	}
	if _, ok := nl.parent[b]; !ok {
		return false
	}
	return nl.Find(a) == nl.Find(b)
}

// Finalize groups the ports into nets. Single-port nets are dropped. Nets
// are ordered by their first port and numbered from 0.
func (nl *Netlist) Finalize() {
	groups := make(map[string][]string)
	for _, p := range nl.ports {
		root := nl.Find(p)
		groups[root] = append(groups[root], p)
	}
	nl.Nets = make([]*Net, 0, len(groups))
	for _, ports := range groups {
		if len(ports) < 2 {
			continue
		}
		sort.Strings(ports)
		nl.Nets = append(nl.Nets, &Net{Ports: ports})
	}
	sort.Slice(nl.Nets, func(i, j int) bool {
		return nl.Nets[i].Ports[0] < nl.Nets[j].Ports[0]
	})
	for i, n := range nl.Nets {
		n.ID = i
	}
}

// NetCount returns the number of multi-port nets. Only valid after Finalize.
func (nl *Netlist) NetCount() int {
	return len(nl.Nets)
}

// ExportJSON renders the finalized netlist.
func (nl *Netlist) ExportJSON(entity string) ([]byte, error) {
	if nl.Nets == nil {
		return nil, fmt.Errorf("interconnect: netlist not finalized")
	}
	out := struct {
		Version  string `json:"version"`
		Device   string `json:"device"`
		NetCount int    `json:"net_count"`
		Nets     []*Net `json:"nets"`
	}{
		Version:  "1.0",
		Device:   entity,
		NetCount: nl.NetCount(),
		Nets:     nl.Nets,
	}
	return json.MarshalIndent(out, "", "  ")
}
