// Package describe turns a packet type into its structure table rows.
package describe

import (
	"fmt"

	"github.com/yourorg/packetdoc/internal/docindex"
	"github.com/yourorg/packetdoc/internal/typesig"
	"github.com/yourorg/packetdoc/pkg/types"
)

// Summaries is the part of docindex.Index a Describer needs.
type Summaries interface {
	Summary(key string) string
	RichSummary(key string) string
}

// Describer pairs rendered field types with their summaries.
type Describer struct {
	docs Summaries
}

// New returns a Describer backed by docs. A nil docs yields "(Empty)"
// for every summary.
func New(docs Summaries) *Describer {
	return &Describer{docs: docs}
}

// Rows returns one row per directly-declared field of packet, in
// declaration order.
func (d *Describer) Rows(packet *types.Type) ([]types.Row, error) {
	if packet == nil {
		return nil, fmt.Errorf("packet type is nil")
	}
	owner := packet.FullName()
	rows := make([]types.Row, 0, len(packet.Fields))
	for _, f := range packet.Fields {
		if err := typesig.Check(f.Type); err != nil {
			return nil, fmt.Errorf("%s.%s: %w", owner, f.Name, err)
		}
		rows = append(rows, types.Row{
			TypeSignature: typesig.Render(f.Type),
			FieldName:     f.Name,
			Summary:       d.summary(docindex.PropertyKey(owner, f.Name)),
		})
	}
	return rows, nil
}

// Describe builds the full packet description, including the type-level
// summary (empty when undocumented).
func (d *Describer) Describe(packet *types.Type) (types.Packet, error) {
	rows, err := d.Rows(packet)
	if err != nil {
		return types.Packet{}, err
	}
	p := types.Packet{
		Name:      packet.Name,
		FullName:  packet.FullName(),
		Namespace: packet.Namespace,
		Rows:      rows,
	}
	if d.docs != nil {
		if s := d.docs.RichSummary(docindex.TypeKey(p.FullName)); s != docindex.Empty {
			p.Summary = s
		}
	}
	return p, nil
}

func (d *Describer) summary(key string) string {
	if d.docs == nil {
		return docindex.Empty
	}
	return d.docs.Summary(key)
}
