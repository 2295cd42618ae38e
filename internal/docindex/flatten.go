package docindex

import (
	"encoding/xml"
	"errors"
	"io"
	"strings"
)

// flatten turns the inner XML of a <summary> node into its plain text
// (all character data, trimmed) and its rich text.
func flatten(inner string) (string, string, error) {
	dec := xml.NewDecoder(strings.NewReader("<summary>" + inner + "</summary>"))
	dec.Strict = false

	plain := &strings.Builder{}
	rich := &strings.Builder{}
	// open references whose cref could not be resolved collect their text
	var refs []*strings.Builder
	// elements whose content is dropped
	skip := 0

	out := func() *strings.Builder {
		if len(refs) > 0 {
			return refs[len(refs)-1]
		}
		return rich
	}

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", "", err
		}
		switch el := tok.(type) {
		case xml.StartElement:
			if skip > 0 {
				skip++
				continue
			}
			switch el.Name.Local {
			case "see", "seealso":
				if short := crefShortName(attr(el, "cref")); short != "" {
					out().WriteString(short)
					skip = 1
					continue
				}
				if word := attr(el, "langword"); word != "" {
					out().WriteString(word)
					skip = 1
					continue
				}
				refs = append(refs, &strings.Builder{})
			case "paramref", "typeparamref":
				out().WriteString(attr(el, "name"))
				skip = 1
			case "para", "br":
				out().WriteString("\n\n")
			}
		case xml.EndElement:
			if skip > 0 {
				skip--
				continue
			}
			if isRef(el.Name.Local) && len(refs) > 0 {
				text := strings.TrimSpace(refs[len(refs)-1].String())
				refs = refs[:len(refs)-1]
				out().WriteString(text)
			}
		case xml.CharData:
			plain.Write(el)
			if skip == 0 {
				out().Write(el)
			}
		}
	}
	return strings.TrimSpace(plain.String()), collapse(rich.String()), nil
}

func isRef(local string) bool {
	return local == "see" || local == "seealso"
}

func attr(el xml.StartElement, name string) string {
	for _, a := range el.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

// crefShortName reduces "T:Ns.Type", "M:Ns.Type.Method(System.Int32)" or
// "P:Ns.Type.Prop" to the last name segment. Unresolved references
// ("!:..." as emitted by the compiler) yield "".
func crefShortName(cref string) string {
	cref = strings.TrimSpace(cref)
	if cref == "" || strings.HasPrefix(cref, "!:") {
		return ""
	}
	if i := strings.Index(cref, ":"); i == 1 {
		cref = cref[2:]
	}
	if i := strings.Index(cref, "("); i >= 0 {
		cref = cref[:i]
	}
	if i := strings.LastIndex(cref, "."); i >= 0 {
		cref = cref[i+1:]
	}
	if i := strings.Index(cref, "`"); i >= 0 {
		cref = cref[:i]
	}
	return strings.TrimSpace(cref)
}

// collapse joins whitespace runs into single spaces while keeping
// paragraph breaks.
func collapse(s string) string {
	paras := strings.Split(s, "\n\n")
	out := make([]string, 0, len(paras))
	for _, p := range paras {
		p = strings.Join(strings.Fields(p), " ")
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, "\n\n")
}
