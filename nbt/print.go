package nbt

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/fatih/color"
)

// bareKeyPattern decides whether a compound key can be printed without
// quotes.
var bareKeyPattern = regexp.MustCompile(`^[A-Za-z0-9._+-]+$`)

// PrintOptions controls the Mojangson printer and the tree view.
type PrintOptions struct {
	// SortKeys reorders compound keys for display: keys listed here come
	// first in this order, the rest follow alphabetically. Stored entry
	// order is never changed.
	SortKeys []string

	// Highlight wraps syntactic elements in terminal colors.
	Highlight bool

	// Indent is the per-level indent of the tree view.
	Indent string
}

// DefaultPrintOptions returns the canonical settings: stored key order, no
// colors, two-space tree indent.
func DefaultPrintOptions() PrintOptions {
	return PrintOptions{Indent: "  "}
}

var (
	keyColor    = color.New(color.FgCyan)
	strColor    = color.New(color.FgGreen)
	numColor    = color.New(color.FgYellow)
	suffixColor = color.New(color.FgRed)
	punctColor  = color.New(color.FgWhite)
	typeColor   = color.New(color.FgYellow)
	elideColor  = color.New(color.FgRed)
)

// String returns the canonical Mojangson rendering: stored key order, no
// colors, signed array values.
func (t *Tag) String() string {
	p := printer{}
	var sb strings.Builder
	p.value(&sb, t)
	return sb.String()
}

// SNBT renders the tag as Mojangson under the given options.
func (t *Tag) SNBT(opts PrintOptions) string {
	p := printer{opts: opts}
	var sb strings.Builder
	p.value(&sb, t)
	return sb.String()
}

type printer struct {
	opts PrintOptions
}

func (p *printer) paint(c *color.Color, s string) string {
	if !p.opts.Highlight {
		return s
	}
	return c.Sprint(s)
}

func (p *printer) value(sb *strings.Builder, t *Tag) {
	if t == nil {
		return
	}
	switch t.typ {
	case TypeByte:
		p.number(sb, strconv.FormatInt(t.num, 10), "b")
	case TypeShort:
		p.number(sb, strconv.FormatInt(t.num, 10), "s")
	case TypeInt:
		p.number(sb, strconv.FormatInt(t.num, 10), "")
	case TypeLong:
		p.number(sb, strconv.FormatInt(t.num, 10), "L")
	case TypeFloat:
		p.number(sb, strconv.FormatFloat(t.fnum, 'g', -1, 32), "f")
	case TypeDouble:
		p.number(sb, strconv.FormatFloat(t.fnum, 'g', -1, 64), "d")
	case TypeString:
		sb.WriteString(p.paint(strColor, quoteString(t.str)))
	case TypeByteArray:
		p.punct(sb, "[B;")
		for i, v := range t.bytesVal {
			if i > 0 {
				p.punct(sb, ",")
			}
			p.number(sb, strconv.FormatInt(int64(v), 10), "b")
		}
		p.punct(sb, "]")
	case TypeIntArray:
		p.punct(sb, "[I;")
		for i, v := range t.intsVal {
			if i > 0 {
				p.punct(sb, ",")
			}
			p.number(sb, strconv.FormatInt(int64(v), 10), "")
		}
		p.punct(sb, "]")
	case TypeLongArray:
		// Canonical text always shows the signed two's complement words.
		p.punct(sb, "[L;")
		for i, v := range t.longsVal {
			if i > 0 {
				p.punct(sb, ",")
			}
			p.number(sb, strconv.FormatInt(v, 10), "l")
		}
		p.punct(sb, "]")
	case TypeList:
		p.punct(sb, "[")
		for i, e := range t.list {
			if i > 0 {
				p.punct(sb, ",")
			}
			p.value(sb, e)
		}
		p.punct(sb, "]")
	case TypeCompound:
		p.punct(sb, "{")
		for i, e := range p.orderedEntries(t) {
			if i > 0 {
				p.punct(sb, ",")
			}
			sb.WriteString(p.paint(keyColor, quoteKey(e.Name)))
			p.punct(sb, ":")
			p.value(sb, e.Tag)
		}
		p.punct(sb, "}")
	}
}

// punct writes a structural character run, painted in highlight mode.
func (p *printer) punct(sb *strings.Builder, s string) {
	sb.WriteString(p.paint(punctColor, s))
}

func (p *printer) number(sb *strings.Builder, digits, suffix string) {
	sb.WriteString(p.paint(numColor, digits))
	if suffix != "" {
		sb.WriteString(p.paint(suffixColor, suffix))
	}
}

// orderedEntries applies the display sort preference: listed keys first in
// list order, the rest alphabetically. Without a preference the stored
// order is returned as is.
func (p *printer) orderedEntries(t *Tag) []CompoundEntry {
	if len(p.opts.SortKeys) == 0 {
		return t.comp
	}
	rank := make(map[string]int, len(p.opts.SortKeys))
	for i, k := range p.opts.SortKeys {
		rank[k] = i
	}
	out := make([]CompoundEntry, len(t.comp))
	copy(out, t.comp)
	sort.SliceStable(out, func(i, j int) bool {
		ri, iok := rank[out[i].Name]
		rj, jok := rank[out[j].Name]
		switch {
		case iok && jok:
			return ri < rj
		case iok:
			return true
		case jok:
			return false
		default:
			return out[i].Name < out[j].Name
		}
	})
	return out
}

// quoteKey prints a compound key bare when possible, quoted otherwise.
func quoteKey(key string) string {
	if bareKeyPattern.MatchString(key) {
		return key
	}
	return quoteString(key)
}

// quoteString picks the quote character that appears less often in the
// contents (double on a tie) and escapes backslashes, newlines, and the
// chosen quote.
func quoteString(s string) string {
	q := byte('"')
	if strings.Count(s, `"`) > strings.Count(s, `'`) {
		q = '\''
	}
	var sb strings.Builder
	sb.WriteByte(q)
	for _, c := range s {
		switch c {
		case '\\':
			sb.WriteString(`\\`)
		case '\n':
			sb.WriteString(`\n`)
		case rune(q):
			sb.WriteByte('\\')
			sb.WriteByte(q)
		default:
			sb.WriteRune(c)
		}
	}
	sb.WriteByte(q)
	return sb.String()
}

// Tree renders an indented multi-line view for interactive inspection.
// Arrays longer than eight elements are elided with a count; long arrays
// decoded under an unsigned key show their unsigned values.
func (t *Tag) Tree(opts PrintOptions) string {
	if opts.Indent == "" {
		opts.Indent = "  "
	}
	p := printer{opts: opts}
	var sb strings.Builder
	p.tree(&sb, t, "", 0)
	return sb.String()
}

func (p *printer) tree(sb *strings.Builder, t *Tag, name string, depth int) {
	prefix := strings.Repeat(p.opts.Indent, depth)
	sb.WriteString(prefix)
	if name != "" || depth > 0 {
		label := `""`
		if name != "" {
			label = quoteKey(name)
		}
		sb.WriteString(p.paint(keyColor, label))
		sb.WriteString(": ")
	}
	sb.WriteString(p.paint(typeColor, t.Type().String()))
	switch t.typ {
	case TypeCompound:
		fmt.Fprintf(sb, " (%d entries)\n", len(t.comp))
		for _, e := range p.orderedEntries(t) {
			p.tree(sb, e.Tag, e.Name, depth+1)
		}
	case TypeList:
		fmt.Fprintf(sb, " (%d elements)\n", len(t.list))
		for i, e := range t.list {
			p.tree(sb, e, strconv.Itoa(i), depth+1)
		}
	case TypeByteArray, TypeIntArray, TypeLongArray:
		sb.WriteString(" ")
		sb.WriteString(p.treeArray(t))
		sb.WriteString("\n")
	case TypeString:
		sb.WriteString(" ")
		sb.WriteString(p.paint(strColor, quoteString(t.str)))
		sb.WriteString("\n")
	default:
		sb.WriteString(" ")
		var v strings.Builder
		p.value(&v, t)
		sb.WriteString(v.String())
		sb.WriteString("\n")
	}
}

func (p *printer) treeArray(t *Tag) string {
	const max = 8
	var parts []string
	n := t.Len()
	shown := n
	if shown > max {
		shown = max
	}
	for i := 0; i < shown; i++ {
		switch t.typ {
		case TypeByteArray:
			parts = append(parts, strconv.FormatInt(int64(t.bytesVal[i]), 10))
		case TypeIntArray:
			parts = append(parts, strconv.FormatInt(int64(t.intsVal[i]), 10))
		case TypeLongArray:
			if t.unsigned {
				parts = append(parts, strconv.FormatUint(uint64(t.longsVal[i]), 10))
			} else {
				parts = append(parts, strconv.FormatInt(t.longsVal[i], 10))
			}
		}
	}
	out := p.paint(numColor, strings.Join(parts, ", "))
	if n > max {
		out += p.paint(elideColor, fmt.Sprintf(", ... %d elements", n))
	}
	return "[" + out + "]"
}
