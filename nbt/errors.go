package nbt

import "fmt"

// SyntaxError reports malformed SNBT or path text. Pos is the cursor
// position (in code points) at the failure; Context is a pointer-style
// excerpt of the input around it.
type SyntaxError struct {
	Msg     string
	Pos     int
	Context string
}

func (e *SyntaxError) Error() string {
	if e.Context == "" {
		return fmt.Sprintf("nbt: %s at position %d", e.Msg, e.Pos)
	}
	return fmt.Sprintf("nbt: %s at position %d: %s", e.Msg, e.Pos, e.Context)
}

// RangeError reports a numeric literal outside its declared bit width.
type RangeError struct {
	Literal string
	Want    string // e.g. "32-bit integer"
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("nbt: cannot parse %q as a %s expressed in base 10", e.Literal, e.Want)
}

// PathError reports a lookup failure: an absent key or index, or a path
// that continues past a tag which cannot contain children.
type PathError struct {
	Msg string
}

func (e *PathError) Error() string {
	return "nbt: " + e.Msg
}

// TypeError reports a structural mismatch, such as addressing a list with
// compound syntax or calling a typed accessor on the wrong tag variant.
type TypeError struct {
	Msg string
}

func (e *TypeError) Error() string {
	return "nbt: " + e.Msg
}

// syntaxErrorAt builds a SyntaxError carrying the reader's position and a
// "consumed<--[HERE]remaining" style excerpt for diagnostics.
func syntaxErrorAt(r *StringReader, format string, args ...interface{}) *SyntaxError {
	return &SyntaxError{
		Msg:     fmt.Sprintf(format, args...),
		Pos:     r.Cursor(),
		Context: r.errorContext(),
	}
}

func typeErrorf(format string, args ...interface{}) *TypeError {
	return &TypeError{Msg: fmt.Sprintf(format, args...)}
}

func pathErrorf(format string, args ...interface{}) *PathError {
	return &PathError{Msg: fmt.Sprintf(format, args...)}
}
