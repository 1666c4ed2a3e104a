package kotlin

// TokenKind classifies a lexical token.
type TokenKind int

const (
	IdentToken TokenKind = iota
	Punct
	Literal
)

// Token is one lexical element of Kotlin source. Comments and whitespace are
// dropped; string literals become Literal segments with template
// expressions tokenized in between.
type Token struct {
	Kind          TokenKind
	Text          string
	Start, End    int
	NewlineBefore bool // a line break separates this token from the previous one
	Template      bool // identifier written as $name inside a string
	Quoted        bool // identifier written in backticks
}

var puncts3 = []string{"===", "!=="}

var puncts2 = []string{"?.", "?:", "::", "->", "!!", "==", "!=", "<=", ">=", "&&", "||", "..", "+=", "-=", "*=", "/=", "%=", "++", "--"}

type lexer struct {
	src  []byte
	pos  int
	toks []Token
	nl   bool
}

// Tokenize splits src into tokens. Unterminated literals and comments end at
// the end of input; the lexer never fails.
func Tokenize(src []byte) []Token {
	lx := &lexer{src: src}
	lx.code(false)
	return lx.toks
}

func (lx *lexer) peek(n int) byte {
	if lx.pos+n < len(lx.src) {
		return lx.src[lx.pos+n]
	}
	return 0
}

func (lx *lexer) emit(kind TokenKind, start, end int) *Token {
	lx.toks = append(lx.toks, Token{
		Kind:          kind,
		Text:          string(lx.src[start:end]),
		Start:         start,
		End:           end,
		NewlineBefore: lx.nl,
	})
	lx.nl = false
	return &lx.toks[len(lx.toks)-1]
}

// code lexes until the end of input or, inside a ${...} template, until the
// closing brace, which is consumed but not emitted.
func (lx *lexer) code(nested bool) {
	depth := 0
	for lx.pos < len(lx.src) {
		c := lx.src[lx.pos]
		switch {
		case c == '\n':
			lx.nl = true
			lx.pos++
		case c == ' ' || c == '\t' || c == '\r' || c == '\f':
			lx.pos++
		case c == '/' && lx.peek(1) == '/':
			lx.lineComment()
		case c == '/' && lx.peek(1) == '*':
			lx.blockComment()
		case c == '"':
			lx.str()
		case c == '\'':
			lx.char()
		case c == '`':
			lx.backtick()
		case isIdentStart(c):
			lx.ident()
		case isDigit(c):
			lx.number()
		default:
			if nested {
				if c == '{' {
					depth++
				} else if c == '}' {
					if depth == 0 {
						lx.pos++
						return
					}
					depth--
				}
			}
			lx.punct()
		}
	}
}

func (lx *lexer) lineComment() {
	for lx.pos < len(lx.src) && lx.src[lx.pos] != '\n' {
		lx.pos++
	}
}

// blockComment skips a comment; Kotlin block comments nest.
func (lx *lexer) blockComment() {
	depth := 0
	for lx.pos < len(lx.src) {
		switch {
		case lx.src[lx.pos] == '/' && lx.peek(1) == '*':
			depth++
			lx.pos += 2
		case lx.src[lx.pos] == '*' && lx.peek(1) == '/':
			depth--
			lx.pos += 2
			if depth == 0 {
				return
			}
		default:
			if lx.src[lx.pos] == '\n' {
				lx.nl = true
			}
			lx.pos++
		}
	}
}

func (lx *lexer) ident() {
	start := lx.pos
	for lx.pos < len(lx.src) && isIdentPart(lx.src[lx.pos]) {
		lx.pos++
	}
	lx.emit(IdentToken, start, lx.pos)
}

func (lx *lexer) backtick() {
	start := lx.pos
	lx.pos++
	for lx.pos < len(lx.src) && lx.src[lx.pos] != '`' && lx.src[lx.pos] != '\n' {
		lx.pos++
	}
	if lx.pos < len(lx.src) && lx.src[lx.pos] == '`' {
		lx.pos++
	}
	t := lx.emit(IdentToken, start, lx.pos)
	t.Quoted = true
	t.Text = string(lx.src[start+1 : max(start+1, lx.pos-1)])
}

func (lx *lexer) number() {
	start := lx.pos
	for lx.pos < len(lx.src) {
		c := lx.src[lx.pos]
		if isIdentPart(c) {
			lx.pos++
			continue
		}
		if c == '.' && isDigit(lx.peek(1)) {
			lx.pos++
			continue
		}
		break
	}
	lx.emit(Literal, start, lx.pos)
}

func (lx *lexer) char() {
	start := lx.pos
	lx.pos++
	for lx.pos < len(lx.src) {
		c := lx.src[lx.pos]
		if c == '\\' {
			lx.pos += 2
			continue
		}
		if c == '\n' {
			break
		}
		lx.pos++
		if c == '\'' {
			break
		}
	}
	lx.pos = min(lx.pos, len(lx.src))
	lx.emit(Literal, start, lx.pos)
}

// str lexes a string literal. Text segments become Literal tokens and
// template expressions are tokenized as code.
func (lx *lexer) str() {
	raw := lx.peek(1) == '"' && lx.peek(2) == '"'
	seg := lx.pos
	if raw {
		lx.pos += 3
	} else {
		lx.pos++
	}
	flush := func() {
		if lx.pos > seg {
			lx.emit(Literal, seg, lx.pos)
		}
	}
	for lx.pos < len(lx.src) {
		c := lx.src[lx.pos]
		switch {
		case raw && c == '"' && lx.peek(1) == '"' && lx.peek(2) == '"':
			lx.pos += 3
			for lx.pos < len(lx.src) && lx.src[lx.pos] == '"' {
				lx.pos++
			}
			flush()
			return
		case !raw && c == '"':
			lx.pos++
			flush()
			return
		case !raw && c == '\\':
			lx.pos += 2
		case !raw && c == '\n':
			flush()
			return
		case c == '$' && lx.peek(1) == '{':
			flush()
			lx.pos += 2
			lx.code(true)
			seg = lx.pos
		case c == '$' && isIdentStart(lx.peek(1)):
			flush()
			lx.pos++
			lx.ident()
			lx.toks[len(lx.toks)-1].Template = true
			seg = lx.pos
		default:
			if c == '\n' {
				lx.nl = true
			}
			lx.pos++
		}
	}
	lx.pos = min(lx.pos, len(lx.src))
	flush()
}

func (lx *lexer) punct() {
	start := lx.pos
	for _, p := range puncts3 {
		if lx.hasPrefix(p) {
			lx.pos += 3
			lx.emit(Punct, start, lx.pos)
			return
		}
	}
	for _, p := range puncts2 {
		if lx.hasPrefix(p) {
			lx.pos += 2
			lx.emit(Punct, start, lx.pos)
			return
		}
	}
	lx.pos++
	lx.emit(Punct, start, lx.pos)
}

func (lx *lexer) hasPrefix(p string) bool {
	if lx.pos+len(p) > len(lx.src) {
		return false
	}
	return string(lx.src[lx.pos:lx.pos+len(p)]) == p
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c >= 0x80
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
