package ir

import (
	"fmt"
	"io"
	"strings"

	"github.com/you-not-fish/mila/internal/types"
)

// Fprint writes the IR of a function to w.
//
// Format:
//
//	func main() integer:
//	  entry:
//	    v0 = Alloca <*integer> {x}
//	    Store v0 v1
//	    Plain -> cond1
func Fprint(w io.Writer, f *Func) {
	fmt.Fprintf(w, "func %s()", f.Name)
	if f.Result != nil {
		fmt.Fprintf(w, " %s", f.Result)
	}
	fmt.Fprintf(w, ":\n")
	for _, b := range f.Blocks {
		fprintBlock(w, b)
	}
}

// FprintModule writes a whole module: globals, externs, then functions.
func FprintModule(w io.Writer, m *Module) {
	fmt.Fprintf(w, "module %s\n", m.Name)
	for _, g := range m.Globals {
		fmt.Fprintf(w, "const %s %s = %s\n", g, g.Type, globalValue(g))
	}
	for _, e := range m.Externs {
		variadic := ""
		if e.Variadic {
			variadic = "..."
		}
		fmt.Fprintf(w, "extern %s(%s)\n", e, variadic)
	}
	for _, f := range m.Funcs {
		fmt.Fprintln(w)
		Fprint(w, f)
	}
}

func fprintBlock(w io.Writer, b *Block) {
	predsStr := ""
	if len(b.Preds) > 0 {
		preds := make([]string, len(b.Preds))
		for i, p := range b.Preds {
			preds[i] = p.Label()
		}
		predsStr = " <- " + strings.Join(preds, " ")
	}
	fmt.Fprintf(w, "  %s:%s\n", b.Label(), predsStr)

	for _, v := range b.Values {
		fmt.Fprintf(w, "    %s\n", formatValue(v))
	}
	fmt.Fprintf(w, "    %s\n", formatTerminator(b))
}

func formatValue(v *Value) string {
	var sb strings.Builder

	if v.Op.IsVoid() {
		sb.WriteString(v.Op.String())
	} else {
		fmt.Fprintf(&sb, "v%d = %s", v.ID, v.Op)
	}
	if v.Type != nil {
		fmt.Fprintf(&sb, " <%s>", v.Type)
	}
	switch v.Op {
	case OpConst32, OpConstBool:
		fmt.Fprintf(&sb, " [%d]", v.AuxInt)
	case OpConstFloat:
		fmt.Fprintf(&sb, " [%g]", v.AuxFloat)
	}
	if v.Aux != nil {
		fmt.Fprintf(&sb, " {%v}", v.Aux)
	}
	for _, arg := range v.Args {
		fmt.Fprintf(&sb, " v%d", arg.ID)
	}
	return sb.String()
}

func formatTerminator(b *Block) string {
	switch b.Kind {
	case BlockPlain:
		if len(b.Succs) > 0 {
			return fmt.Sprintf("Plain -> %s", b.Succs[0].Label())
		}
		return "Plain"
	case BlockIf:
		if len(b.Controls) > 0 && len(b.Succs) >= 2 {
			return fmt.Sprintf("If v%d -> %s %s", b.Controls[0].ID, b.Succs[0].Label(), b.Succs[1].Label())
		}
		return "If (malformed)"
	case BlockReturn:
		if len(b.Controls) > 0 && b.Controls[0] != nil {
			return fmt.Sprintf("Return v%d", b.Controls[0].ID)
		}
		return "Return"
	}
	return "???"
}

func globalValue(g *Global) string {
	if g.Type != nil && g.Type.Kind() == types.Double {
		return fmt.Sprintf("%g", g.Float)
	}
	return fmt.Sprint(g.Int)
}

// Sprint returns the IR of a function as a string.
func Sprint(f *Func) string {
	var sb strings.Builder
	Fprint(&sb, f)
	return sb.String()
}

// SprintModule returns the IR of a module as a string.
func SprintModule(m *Module) string {
	var sb strings.Builder
	FprintModule(&sb, m)
	return sb.String()
}
