package filter

import (
	"strings"

	"github.com/yourorg/packetdoc/pkg/types"
)

var cellReplacer = strings.NewReplacer("|", `\|`)

// Cell makes s safe for a single Markdown table cell: whitespace runs
// (line breaks included) become one space and pipes are escaped.
func Cell(s string) string {
	return cellReplacer.Replace(strings.Join(strings.Fields(s), " "))
}

// Sanitize returns a copy of packets whose rows are safe to print as
// Markdown table cells. The input is left untouched.
func Sanitize(packets []types.Packet) []types.Packet {
	out := make([]types.Packet, len(packets))
	for i, p := range packets {
		out[i] = p
		out[i].Rows = make([]types.Row, len(p.Rows))
		for j, r := range p.Rows {
			out[i].Rows[j] = types.Row{
				TypeSignature: Cell(r.TypeSignature),
				FieldName:     Cell(r.FieldName),
				Summary:       Cell(r.Summary),
			}
		}
	}
	return out
}
