package gosrc

import (
	"fmt"
	"go/format"
	"strconv"
	"strings"

	"github.com/mark3labs/oas2types/internal/errs"
)

// Render prints f as gofmt-formatted source, preceded by header when it is
// not empty.
func (f File) Render(header string) ([]byte, error) {
	var b strings.Builder
	if header != "" {
		b.WriteString(header)
		b.WriteString("\n\n")
	}
	fmt.Fprintf(&b, "package %s\n", f.pkg)

	if len(f.imports) > 0 {
		b.WriteString("\nimport (\n")
		for _, imp := range f.imports {
			b.WriteString("\t")
			if imp.Name != "" {
				b.WriteString(imp.Name + " ")
			}
			b.WriteString(strconv.Quote(imp.Path) + "\n")
		}
		b.WriteString(")\n")
	}

	for _, d := range f.decls {
		b.WriteString("\n")
		writeComment(&b, "", d.doc)
		switch d.kind {
		case Alias:
			fmt.Fprintf(&b, "type %s = %s\n", d.name, d.underlying)
		case Defined:
			fmt.Fprintf(&b, "type %s %s\n", d.name, d.underlying)
		default:
			fmt.Fprintf(&b, "type %s struct {\n", d.name)
			for _, e := range d.extends {
				fmt.Fprintf(&b, "\t%s\n", e)
			}
			for _, m := range d.members {
				writeComment(&b, "\t", m.Doc)
				fmt.Fprintf(&b, "\t%s %s", strings.Join(m.Names, ", "), m.Type)
				if m.Tag != "" {
					b.WriteString(" " + m.Tag)
				}
				if m.Comment != "" {
					b.WriteString(" // " + m.Comment)
				}
				b.WriteString("\n")
			}
			b.WriteString("}\n")
		}
	}
	for _, o := range f.other {
		b.WriteString("\n" + o + "\n")
	}

	out, err := format.Source([]byte(b.String()))
	if err != nil {
		return nil, errs.Wrap(errs.Emit, f.pkg, err, "format generated source")
	}
	return out, nil
}

func writeComment(b *strings.Builder, indent string, lines []string) {
	for _, l := range lines {
		if l == "" {
			b.WriteString(indent + "//\n")
			continue
		}
		b.WriteString(indent + "// " + l + "\n")
	}
}
