package kotlin

import "strings"

// TopLevelClass returns the first top-level class declared with the class
// keyword.
func (f *File) TopLevelClass() (*Class, bool) {
	for i := range f.Classes {
		c := &f.Classes[i]
		if c.Parent == -1 && c.Keyword == "class" {
			return c, true
		}
	}
	return nil, false
}

// ClassIndex returns the index of c in f.Classes, or -1.
func (f *File) ClassIndex(c *Class) int {
	for i := range f.Classes {
		if &f.Classes[i] == c {
			return i
		}
	}
	return -1
}

// LineBounds returns the start of the line holding off and the offset just
// past its newline (or the end of input).
func (f *File) LineBounds(off int) (start, end int) {
	start = strings.LastIndexByte(string(f.Src[:off]), '\n') + 1
	end = len(f.Src)
	if i := strings.IndexByte(string(f.Src[off:]), '\n'); i >= 0 {
		end = off + i + 1
	}
	return start, end
}

// LineIndent returns the leading whitespace of the line holding off.
func (f *File) LineIndent(off int) string {
	start, _ := f.LineBounds(off)
	end := start
	for end < len(f.Src) && (f.Src[end] == ' ' || f.Src[end] == '\t') {
		end++
	}
	return string(f.Src[start:end])
}

// Text returns the source between two offsets.
func (f *File) Text(start, end int) string {
	return string(f.Src[start:end])
}

// matching returns the index of the token closing the group opened at i.
func (f *File) matching(i int) int {
	open := f.Tokens[i].Text
	closer := map[string]string{"(": ")", "{": "}", "[": "]"}[open]
	depth := 0
	for j := i; j < len(f.Tokens); j++ {
		t := f.Tokens[j]
		if t.Kind != Punct {
			continue
		}
		switch t.Text {
		case open:
			depth++
		case closer:
			depth--
			if depth == 0 {
				return j
			}
		}
	}
	return -1
}

// Call is a call site name(args) { lambda } found by FindCalls.
type Call struct {
	Name        string
	Start       int
	ArgsStart   int // first byte inside the parentheses
	ArgsEnd     int // offset of the closing parenthesis
	LambdaOpen  int // trailing lambda '{', -1 when absent
	LambdaClose int
}

// Args returns the trimmed argument text of the call.
func (f *File) Args(c Call) string {
	return strings.TrimSpace(f.Text(c.ArgsStart, c.ArgsEnd))
}

// FindCalls returns the calls to name whose identifier starts in [lo,hi).
func (f *File) FindCalls(name string, lo, hi int) []Call {
	var calls []Call
	for i, t := range f.Tokens {
		if t.Start < lo || t.Start >= hi || t.Kind != IdentToken || t.Text != name {
			continue
		}
		if i+1 >= len(f.Tokens) || f.Tokens[i+1].Text != "(" || f.Tokens[i+1].Kind != Punct {
			continue
		}
		closeIdx := f.matching(i + 1)
		if closeIdx < 0 {
			continue
		}
		c := Call{
			Name:        name,
			Start:       t.Start,
			ArgsStart:   f.Tokens[i+1].End,
			ArgsEnd:     f.Tokens[closeIdx].Start,
			LambdaOpen:  -1,
			LambdaClose: -1,
		}
		if n := closeIdx + 1; n < len(f.Tokens) && f.Tokens[n].Kind == Punct && f.Tokens[n].Text == "{" {
			if end := f.matching(n); end >= 0 {
				c.LambdaOpen = f.Tokens[n].Start
				c.LambdaClose = f.Tokens[end].Start
			}
		}
		calls = append(calls, c)
	}
	return calls
}

// DeclaredNames returns every name the file declares as a property,
// parameter, function, class or lambda parameter.
func (f *File) DeclaredNames() map[string]bool {
	names := make(map[string]bool)
	for _, id := range f.Idents {
		if id.Decl {
			names[id.Name] = true
		}
	}
	return names
}

// HasImport reports whether the file imports path.
func (f *File) HasImport(path string) bool {
	for _, imp := range f.Imports {
		if imp.Path == path {
			return true
		}
	}
	return false
}
