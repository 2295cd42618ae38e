package types

// Book is everything one generation run produced.
type Book struct {
	Assembly string   `json:"assembly" yaml:"assembly"`
	Index    string   `json:"index" yaml:"index"`
	Servers  []Server `json:"servers" yaml:"servers"`
}

// PacketCount returns the number of packets across all servers.
func (b *Book) PacketCount() int {
	n := 0
	for _, s := range b.Servers {
		n += len(s.Packets)
	}
	return n
}

// Server groups the packets of one subsystem (Login, Cluster, World).
type Server struct {
	Name    string   `json:"name" yaml:"name"`
	Packets []Packet `json:"packets" yaml:"packets"`
}

// Packet is the rendered description of one packet type.
type Packet struct {
	Name      string `json:"name" yaml:"name"`
	FullName  string `json:"full_name" yaml:"full_name"`
	Namespace string `json:"namespace" yaml:"namespace"`
	Summary   string `json:"summary,omitempty" yaml:"summary,omitempty"`
	Rows      []Row  `json:"rows" yaml:"rows"`
}

// Row is one line of a packet structure table.
type Row struct {
	TypeSignature string `json:"type" yaml:"type"`
	FieldName     string `json:"name" yaml:"name"`
	Summary       string `json:"summary" yaml:"summary"`
}
