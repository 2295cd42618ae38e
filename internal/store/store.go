package store

import "github.com/yourorg/packetdoc/pkg/types"

// Store is the catalog of recorded generation runs.
type Store interface {
	CreateRun(assembly, metadataPath, docsPath, outputDir string) (*types.Run, error)
	GetRun(id string) (*types.Run, error)
	UpdateRunStatus(id, status string) error
	ListRuns() ([]types.Run, error)
	DeleteRun(id string) error

	SaveBook(runID string, book *types.Book) error
	GetPackets(runID string) ([]types.PacketRecord, error)

	Close() error
}
