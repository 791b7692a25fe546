package schema

import (
	"fmt"
	"io"
	"strings"
)

// Print a record along its schema
func Print(w io.Writer, s *Schema, r Record) {
	p := &printer{w: w, indnt: 0}
	p.println("attributes", len(s.definitions))
	p.println("------------------------------------------")
	for _, d := range s.definitions {
		source := "none"
		if d.Source != nil {
			source = fmt.Sprint(d.Source)
		}
		p.println(d.Name, d.Type, source)
		p.indent(1)
		value, ok := r[d.Name]
		if !ok {
			p.println("undefined")
		} else {
			p.println(fmt.Sprintf("%T:", value), value)
		}
		p.indent(-1)
	}
	p.println("------------------------------------------")
}

type printer struct {
	w     io.Writer
	indnt int
}

func (p *printer) indent(inc int) {
	p.indnt += inc
}

func (p *printer) println(values ...interface{}) {
	if p.w == nil {
		return
	}
	values = append([]interface{}{strings.Repeat("	", p.indnt)}, values...)
	fmt.Fprintln(p.w, values...)
}
