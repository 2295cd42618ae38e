package types

import "time"

// Run records one generation stored in the catalog.
type Run struct {
	ID           string    `json:"id"`
	Assembly     string    `json:"assembly"`
	MetadataPath string    `json:"metadata_path"`
	DocsPath     string    `json:"docs_path"`
	OutputDir    string    `json:"output_dir"`
	PacketCount  int       `json:"packet_count"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// PacketRecord is one packet of a stored run, with its rows.
type PacketRecord struct {
	RunID  string `json:"run_id"`
	Server string `json:"server"`
	Seq    int    `json:"seq"`
	Packet
}
