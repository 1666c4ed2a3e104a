// Package kotlin is a lightweight source model for Kotlin files: imports,
// class declarations with their supertypes and bodies, and every identifier
// occurrence with enough context to rewrite it in place.
package kotlin

import (
	"regexp"
	"strings"
)

var (
	packageRe = regexp.MustCompile(`^\s*package\s+([\w.]+)`)
	importRe  = regexp.MustCompile("^\\s*import\\s+([\\w.*`]+)(?:\\s+as\\s+(\\w+))?")
)

// Import is one import directive.
type Import struct {
	Path  string // dotted path, wildcard imports keep their ".*"
	Alias string
	Start int // first byte of the line
	End   int // past the line's newline, if any
	Line  int
}

// Class is a named class, interface or object declaration.
type Class struct {
	Name       string
	Keyword    string // "class", "interface" or "object"
	Start      int
	HeaderEnd  int // end of the last header token
	BodyOpen   int // offset of '{', -1 without a body
	BodyClose  int // offset of the matching '}', -1 without a body
	Supertypes []string
	Functions  []Function
	Inits      []Block
	Parent     int // enclosing class index, -1 at top level
	Indent     string
}

// HasBody reports whether the declaration has a brace-delimited body.
func (c *Class) HasBody() bool {
	return c.BodyOpen >= 0 && c.BodyClose > c.BodyOpen
}

// Function returns the first member function with the given name.
func (c *Class) Function(name string) (Function, bool) {
	for _, fn := range c.Functions {
		if fn.Name == name {
			return fn, true
		}
	}
	return Function{}, false
}

// Function is a member function. Expression-bodied and abstract functions
// have BodyOpen == -1.
type Function struct {
	Name      string
	Start     int
	BodyOpen  int
	BodyClose int
}

// Block is a brace-delimited region such as an init block.
type Block struct {
	Open, Close int
}

// Ident is an identifier occurrence outside package and import lines.
type Ident struct {
	Name       string
	Start, End int
	Receiver   string // "a.b" for a.b.name, "<expr>" for call()/x!! receivers, "::" for callable references
	Decl       bool   // declares a name: val/var, parameter, function, class, lambda parameter
	NamedArg   bool   // name = value inside a call, or a label
	Template   bool
	Quoted     bool
	Class      int // innermost enclosing class, -1 outside
}

// File is the parsed view of one Kotlin source file.
type File struct {
	Src     []byte
	Package string
	Imports []Import
	Classes []Class
	Idents  []Ident
	Tokens  []Token
}

type span struct{ start, end int }

// Parse builds the source model. It never fails; unparseable regions simply
// produce fewer declarations.
func Parse(src []byte) *File {
	f := &File{Src: src}
	skip := f.scanHeaderLines()

	all := Tokenize(src)
	toks := all[:0:0]
	for _, t := range all {
		if !inSpans(skip, t.Start) {
			toks = append(toks, t)
		}
	}
	f.Tokens = toks

	p := &parser{
		f:      f,
		toks:   toks,
		owners: make(map[int]owner),
		decls:  make(map[int]bool),
	}
	p.walk()
	return f
}

// scanHeaderLines finds package and import directives line by line, the way
// they are written in practice, and returns their line spans.
func (f *File) scanHeaderLines() []span {
	var spans []span
	src := f.Src
	line := 0
	for start := 0; start < len(src); {
		line++
		end := len(src)
		next := len(src)
		if i := strings.IndexByte(string(src[start:]), '\n'); i >= 0 {
			end = start + i
			next = end + 1
		}
		text := string(src[start:end])
		if m := packageRe.FindStringSubmatch(text); m != nil && f.Package == "" {
			f.Package = m[1]
			spans = append(spans, span{start, next})
		} else if m := importRe.FindStringSubmatch(text); m != nil {
			f.Imports = append(f.Imports, Import{
				Path:  strings.ReplaceAll(m[1], "`", ""),
				Alias: m[2],
				Start: start,
				End:   next,
				Line:  line,
			})
			spans = append(spans, span{start, next})
		}
		start = next
	}
	return spans
}

func inSpans(spans []span, off int) bool {
	for _, s := range spans {
		if off >= s.start && off < s.end {
			return true
		}
	}
	return false
}

type scopeKind int

const (
	scopeBlock scopeKind = iota
	scopeClass
	scopeFunc
	scopeInit
)

type owner struct {
	kind  scopeKind
	class int
	fn    int
}

type scope struct {
	owner
	parens int
}

type parser struct {
	f      *File
	toks   []Token
	stack  []scope
	parens int
	owners map[int]owner // '{' token index -> what the brace opens
	decls  map[int]bool  // identifier token indexes that name a declaration
}

var hardKeywords = map[string]bool{
	"as": true, "break": true, "class": true, "continue": true, "do": true, "else": true,
	"false": true, "for": true, "fun": true, "if": true, "in": true, "interface": true,
	"is": true, "null": true, "object": true, "package": true, "return": true, "super": true,
	"this": true, "throw": true, "true": true, "try": true, "typealias": true, "typeof": true,
	"val": true, "var": true, "when": true, "while": true, "catch": true, "finally": true,
}

// headerEnders start a new declaration when they open a line after a
// bodiless class or function header.
var headerEnders = map[string]bool{
	"class": true, "interface": true, "object": true, "fun": true, "val": true, "var": true,
	"private": true, "public": true, "internal": true, "protected": true, "override": true,
	"abstract": true, "open": true, "data": true, "sealed": true, "enum": true,
	"annotation": true, "typealias": true, "companion": true, "init": true, "inner": true,
	"lateinit": true, "const": true, "suspend": true, "inline": true, "@": true, "}": true,
}

func (p *parser) tok(i int) Token {
	if i < 0 || i >= len(p.toks) {
		return Token{Kind: Punct, Start: -1}
	}
	return p.toks[i]
}

func (p *parser) is(i int, text string) bool {
	t := p.tok(i)
	return t.Start >= 0 && t.Text == text && !t.Quoted && t.Kind != Literal
}

func (p *parser) currentClass() int {
	for i := len(p.stack) - 1; i >= 0; i-- {
		if p.stack[i].kind == scopeClass {
			return p.stack[i].class
		}
	}
	return -1
}

// memberOf returns the class whose body is the innermost scope, or -1.
func (p *parser) memberOf() int {
	if n := len(p.stack); n > 0 && p.stack[n-1].kind == scopeClass {
		return p.stack[n-1].class
	}
	return -1
}

func (p *parser) walk() {
	for i := 0; i < len(p.toks); i++ {
		t := p.toks[i]
		if t.Kind == Punct {
			switch t.Text {
			case "(":
				p.parens++
			case ")":
				if p.parens > 0 {
					p.parens--
				}
			case "{":
				p.open(i)
			case "}":
				p.close(i)
			}
			continue
		}
		if t.Kind != IdentToken {
			continue
		}
		if !t.Quoted {
			switch t.Text {
			case "class", "interface", "object":
				p.classHeader(i)
			case "fun":
				p.funHeader(i)
			case "init":
				if c := p.memberOf(); c >= 0 && p.is(i+1, "{") {
					p.owners[i+1] = owner{kind: scopeInit, class: c}
				}
			}
		}
		p.ident(i)
	}
}

func (p *parser) open(i int) {
	o, ok := p.owners[i]
	if !ok {
		o = owner{kind: scopeBlock, class: -1, fn: -1}
	}
	off := p.toks[i].Start
	switch o.kind {
	case scopeClass:
		p.f.Classes[o.class].BodyOpen = off
	case scopeFunc:
		if o.class >= 0 && o.fn >= 0 {
			p.f.Classes[o.class].Functions[o.fn].BodyOpen = off
		}
	case scopeInit:
		c := &p.f.Classes[o.class]
		c.Inits = append(c.Inits, Block{Open: off, Close: -1})
		o.fn = len(c.Inits) - 1
	}
	p.stack = append(p.stack, scope{owner: o, parens: p.parens})
	p.parens = 0
	if o.kind == scopeBlock && !p.isWhenBody(i) {
		p.lambdaParams(i)
	}
}

// isWhenBody reports whether the brace at i opens the branches of a when.
func (p *parser) isWhenBody(i int) bool {
	if p.is(i-1, "when") {
		return true
	}
	if !p.is(i-1, ")") {
		return false
	}
	depth := 0
	for j := i - 1; j >= 0; j-- {
		switch {
		case p.is(j, ")"):
			depth++
		case p.is(j, "("):
			depth--
			if depth == 0 {
				return p.is(j-1, "when")
			}
		}
	}
	return false
}

func (p *parser) close(i int) {
	n := len(p.stack)
	if n == 0 {
		return
	}
	s := p.stack[n-1]
	p.stack = p.stack[:n-1]
	p.parens = s.parens
	off := p.toks[i].Start
	switch s.kind {
	case scopeClass:
		p.f.Classes[s.class].BodyClose = off
	case scopeFunc:
		if s.class >= 0 && s.fn >= 0 {
			p.f.Classes[s.class].Functions[s.fn].BodyClose = off
		}
	case scopeInit:
		p.f.Classes[s.class].Inits[s.fn].Close = off
	}
}

// lambdaParams marks the parameters of a lambda literal opening at i.
func (p *parser) lambdaParams(i int) {
	j := i + 1
	for ; j < len(p.toks); j++ {
		t := p.toks[j]
		if t.Kind == IdentToken {
			continue
		}
		if t.Kind == Punct {
			switch t.Text {
			case ",", ":", "<", ">", "?", "(", ")":
				continue
			case "->":
				for k := i + 1; k < j; k++ {
					if p.toks[k].Kind == IdentToken && (p.is(k-1, "{") || p.is(k-1, ",") || p.is(k-1, "(")) {
						p.decls[k] = true
					}
				}
			}
		}
		return
	}
}

func (p *parser) classHeader(i int) {
	if p.is(i-1, "::") || p.is(i-1, ".") {
		return
	}
	name := p.tok(i + 1)
	if name.Kind != IdentToken || hardKeywords[name.Text] {
		return
	}
	p.decls[i+1] = true

	keyword := p.toks[i].Text
	c := Class{
		Name:      name.Text,
		Keyword:   keyword,
		Start:     p.toks[i].Start,
		HeaderEnd: name.End,
		BodyOpen:  -1,
		BodyClose: -1,
		Parent:    p.currentClass(),
		Indent:    p.f.LineIndent(p.toks[i].Start),
	}
	idx := len(p.f.Classes)

	var (
		depth      int
		super      bool
		collecting bool
		chain      []string
	)
	flush := func() {
		if len(chain) > 0 {
			c.Supertypes = append(c.Supertypes, strings.Join(chain, "."))
		}
		chain = nil
	}
	for j := i + 2; j < len(p.toks); j++ {
		t := p.toks[j]
		if depth == 0 && t.NewlineBefore && headerEnders[t.Text] && !t.Quoted {
			break
		}
		if t.Kind == Punct {
			stop := false
			switch t.Text {
			case "(", "<", "[":
				depth++
			case ")", ">", "]":
				if depth > 0 {
					depth--
				}
			case "{":
				if depth == 0 {
					p.owners[j] = owner{kind: scopeClass, class: idx, fn: -1}
					stop = true
				}
			case "}", ";", "=":
				stop = depth == 0
			case ":":
				if depth == 0 && !super {
					super, collecting = true, true
				}
			case ",":
				if depth == 0 && super {
					flush()
					collecting = true
				}
			}
			if stop {
				break
			}
		} else if t.Kind == IdentToken && depth == 0 && super && collecting {
			switch {
			case t.Text == "where":
				collecting, super = false, false
			case len(chain) == 0 || p.is(j-1, "."):
				chain = append(chain, t.Text)
			default:
				collecting = false
			}
		}
		c.HeaderEnd = t.End
	}
	flush()
	p.f.Classes = append(p.f.Classes, c)
}

func (p *parser) funHeader(i int) {
	j := i + 1
	if p.is(j, "interface") {
		return
	}
	if p.is(j, "<") {
		j = p.skipBalanced(j, "<", ">")
	}
	nameIdx := -1
	for ; j < len(p.toks); j++ {
		t := p.toks[j]
		if t.Kind == IdentToken {
			nameIdx = j
			continue
		}
		if t.Kind == Punct && (t.Text == "." || t.Text == "?") {
			continue
		}
		break
	}
	if nameIdx < 0 || !p.is(j, "(") {
		return
	}
	p.decls[nameIdx] = true

	class := p.memberOf()
	fn := -1
	if class >= 0 {
		cls := &p.f.Classes[class]
		cls.Functions = append(cls.Functions, Function{
			Name:      p.toks[nameIdx].Text,
			Start:     p.toks[i].Start,
			BodyOpen:  -1,
			BodyClose: -1,
		})
		fn = len(cls.Functions) - 1
	}

	j = p.skipBalanced(j, "(", ")")
	depth := 0
	for ; j < len(p.toks); j++ {
		t := p.toks[j]
		if depth == 0 && t.NewlineBefore && headerEnders[t.Text] && !t.Quoted {
			return
		}
		if t.Kind != Punct {
			continue
		}
		switch t.Text {
		case "(", "<":
			depth++
		case ")", ">":
			if depth > 0 {
				depth--
			}
		case "{":
			if depth == 0 {
				p.owners[j] = owner{kind: scopeFunc, class: class, fn: fn}
				return
			}
		case "=", "}", ";":
			if depth == 0 {
				return
			}
		}
	}
}

// skipBalanced returns the index just past the token closing the group that
// opens at i.
func (p *parser) skipBalanced(i int, open, close string) int {
	depth := 0
	for j := i; j < len(p.toks); j++ {
		switch {
		case p.is(j, open):
			depth++
		case p.is(j, close):
			depth--
			if depth == 0 {
				return j + 1
			}
		}
	}
	return len(p.toks)
}

func (p *parser) ident(i int) {
	t := p.toks[i]
	if !t.Quoted && hardKeywords[t.Text] {
		return
	}
	prev := p.tok(i - 1)
	if p.is(i-1, "@") && prev.End == t.Start {
		return // annotation or label reference
	}
	id := Ident{
		Name:     t.Text,
		Start:    t.Start,
		End:      t.End,
		Template: t.Template,
		Quoted:   t.Quoted,
		Class:    p.currentClass(),
		Decl:     p.decls[i],
	}
	next := p.tok(i + 1)
	switch {
	case p.is(i+1, "@") && next.Start == t.End:
		id.NamedArg = true // label declaration
	case p.is(i-1, "val") || p.is(i-1, "var"):
		id.Decl = true
	case p.parens > 0 && p.is(i+1, ":"):
		id.Decl = true
	case p.is(i-1, "(") && p.is(i-2, "for"):
		id.Decl = true
	case p.parens > 0 && p.is(i+1, "=") && (p.is(i-1, "(") || p.is(i-1, ",")):
		id.NamedArg = true
	}
	id.Receiver = p.receiver(i)
	p.f.Idents = append(p.f.Idents, id)
}

// receiver returns the qualifier of the identifier at i.
func (p *parser) receiver(i int) string {
	if p.is(i-1, "::") {
		return "::"
	}
	if !p.is(i-1, ".") && !p.is(i-1, "?.") {
		return ""
	}
	var parts []string
	k := i - 1
	for p.is(k, ".") || p.is(k, "?.") {
		t := p.tok(k - 1)
		if t.Kind != IdentToken {
			return "<expr>"
		}
		parts = append([]string{t.Text}, parts...)
		k -= 2
	}
	return strings.Join(parts, ".")
}
