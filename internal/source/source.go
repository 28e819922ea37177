// Package source models compiled input files and the enumeration
// collaborator that discovers them. The core compiler never walks the
// filesystem itself beyond this contract.
package source

import (
	"fmt"
	"strings"
)

// File is a loaded, decoded source file. Content is decoded once at load
// time and is immutable afterward, matching the pipeline's ownership rule
// for the intern pool / string storage.
type File struct {
	Path    string
	Package string
	Content []rune
}

func NewFile(path, pkg, content string) *File {
	return &File{Path: path, Package: pkg, Content: []rune(content)}
}

// Location is a half-open [Start, End) span of rune offsets into a File.
type Location struct {
	file  *File
	start uint32
	end   uint32
}

func NewLocation(f *File, start, end uint32) Location {
	return Location{file: f, start: start, end: end}
}

// EmptyLocation is used for diagnostics with no precise source position,
// e.g. synthesized internal errors.
var EmptyLocation = Location{}

func (l Location) IsEmpty() bool { return l.file == nil }

func (l Location) FilePath() string {
	if l.file == nil {
		return ""
	}
	return l.file.Path
}

func (l Location) Start() uint32 { return l.start }
func (l Location) End() uint32   { return l.end }
func (l Location) Size() uint32  { return l.end - l.start }

func (l Location) Text() string {
	if l.file == nil {
		return ""
	}
	return string(l.file.Content[l.start:l.end])
}

func (l Location) EqualsTo(o Location) bool {
	return l.file == o.file && l.start == o.start && l.end == o.end
}

func (l Location) Contains(offset uint32) bool {
	return !l.IsEmpty() && offset >= l.start && offset < l.end
}

// GetLineAndColumn scans the file content up to Start, counting newlines.
// Both line and column are 1-based.
func (l Location) GetLineAndColumn() (line, col int) {
	if l.file == nil {
		return 0, 0
	}
	line, col = 1, 1
	for i := uint32(0); i < l.start && int(i) < len(l.file.Content); i++ {
		if l.file.Content[i] == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return line, col
}

func (l Location) CursorString() string {
	if l.IsEmpty() {
		return ""
	}
	line, col := l.GetLineAndColumn()
	return fmt.Sprintf("%s:%d:%d", l.file.Path, line, col)
}

// Span returns a Location covering both l and o, which must belong to the
// same file. Used to build the enclosing location of a compound surface
// node from its children.
func (l Location) Span(o Location) Location {
	if l.IsEmpty() {
		return o
	}
	if o.IsEmpty() {
		return l
	}
	start, end := l.start, l.end
	if o.start < start {
		start = o.start
	}
	if o.end > end {
		end = o.end
	}
	return Location{file: l.file, start: start, end: end}
}

// Digest returns a short, human-inspectable identity for the file, used to
// build deterministic file prefixes during fracture.
func Digest(f *File) string {
	var sb strings.Builder
	sb.WriteString(f.Package)
	sb.WriteByte('/')
	sb.WriteString(f.Path)
	return sb.String()
}
