package source

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"fortio.org/safecast"
)

// ErrPositionOutOfRange is returned when a line/column pair does not map to
// an offset inside the file.
var ErrPositionOutOfRange = errors.New("position out of range")

// FileSet manages a collection of source files and provides global byte offset resolution.
type FileSet struct {
	files   []File
	index   map[string]FileID // path -> latest id
	baseDir string            // базовая директория для относительных путей
}

// NewFileSet creates a new empty FileSet.
func NewFileSet() *FileSet {
	return &FileSet{
		files: make([]File, 0),
		index: make(map[string]FileID),
	}
}

// NewFileSetWithBase creates a FileSet that formats relative paths against baseDir.
func NewFileSetWithBase(baseDir string) *FileSet {
	fs := NewFileSet()
	fs.baseDir = baseDir
	return fs
}

// BaseDir returns the base directory, defaulting to the working directory.
func (fileSet *FileSet) BaseDir() string {
	if fileSet.baseDir == "" {
		if wd, err := os.Getwd(); err == nil {
			return wd
		}
	}
	return fileSet.baseDir
}

// Add stores a file from normalized bytes, computes LineIdx and Hash, and returns a new FileID.
// It always creates a new FileID even if a file with the same path already exists.
func (fileSet *FileSet) Add(path string, content []byte, flags FileFlags) FileID {
	if _, err := safecast.Conv[uint32](len(content)); err != nil {
		panic(fmt.Errorf("content length overflow: %w", err))
	}
	hash := sha256.Sum256(content)
	lineIdx := buildLineIndex(content)
	normalizedPath := normalizePath(path)

	lenFiles, err := safecast.Conv[uint32](len(fileSet.files))
	if err != nil {
		panic(fmt.Errorf("len files overflow: %w", err))
	}
	id := FileID(lenFiles)
	fileSet.files = append(fileSet.files, File{
		ID:      id,
		Path:    normalizedPath,
		Content: content,
		LineIdx: lineIdx,
		Hash:    hash,
		Flags:   flags,
	})
	// индекс всегда указывает на последнюю версию
	fileSet.index[normalizedPath] = id
	return id
}

// Load reads a file from disk, normalizes CRLF/BOM, and calls Add.
func (fileSet *FileSet) Load(path string) (FileID, error) {
	// #nosec G304 -- path is provided by the caller
	content, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}

	content, hadBOM := removeBOM(content)
	content, hadCRLF := normalizeCRLF(content)

	flags := FileFlags(0)
	if hadBOM {
		flags |= FileHadBOM
	}
	if hadCRLF {
		flags |= FileNormalizedCRLF
	}
	return fileSet.Add(path, content, flags), nil
}

// AddVirtual adds a virtual file (stdin, test, or generated) with the FileVirtual flag.
func (fileSet *FileSet) AddVirtual(name string, content []byte) FileID {
	return fileSet.Add(name, content, FileVirtual)
}

// Get returns the file metadata for the given ID, or nil for an unknown ID.
func (fileSet *FileSet) Get(id FileID) *File {
	if int(id) >= len(fileSet.files) {
		return nil
	}
	return &fileSet.files[id]
}

// GetByPath returns the latest version of the file loaded under path.
func (fileSet *FileSet) GetByPath(path string) (*File, bool) {
	if id, ok := fileSet.index[normalizePath(path)]; ok {
		return &fileSet.files[id], true
	}
	return nil, false
}

// Latest returns the newest version of f, which is f itself unless the
// path was re-added after an edit.
func (fileSet *FileSet) Latest(f *File) *File {
	if f == nil {
		return nil
	}
	if latest, ok := fileSet.GetByPath(f.Path); ok {
		return latest
	}
	return f
}

// Files returns the latest version of every path, ordered by FileID.
func (fileSet *FileSet) Files() []*File {
	out := make([]*File, 0, len(fileSet.index))
	for i := range fileSet.files {
		f := &fileSet.files[i]
		if fileSet.index[f.Path] == f.ID {
			out = append(out, f)
		}
	}
	return out
}

// Resolve converts a span into line and column positions.
func (fileSet *FileSet) Resolve(span Span) (start, end LineCol) {
	f := fileSet.files[span.File]
	return toLineCol(f.LineIdx, span.Start), toLineCol(f.LineIdx, span.End)
}

// Offset converts a 1-based line/column into a byte offset. A column one past
// the end of the line addresses the line terminator.
func (fileSet *FileSet) Offset(id FileID, pos LineCol) (uint32, error) {
	f := fileSet.Get(id)
	if f == nil {
		return 0, fmt.Errorf("file %d: %w", id, ErrPositionOutOfRange)
	}
	return f.Offset(pos)
}

// Offset converts a 1-based line/column into a byte offset within f.
func (f *File) Offset(pos LineCol) (uint32, error) {
	if pos.Line == 0 || pos.Col == 0 || pos.Line > f.LineCount() {
		return 0, fmt.Errorf("%s:%d:%d: %w", f.Path, pos.Line, pos.Col, ErrPositionOutOfRange)
	}
	line := f.LineSpan(pos.Line)
	off := line.Start + pos.Col - 1
	if off > line.End {
		return 0, fmt.Errorf("%s:%d:%d: %w", f.Path, pos.Line, pos.Col, ErrPositionOutOfRange)
	}
	return off, nil
}

// LineCount returns the number of lines. A trailing newline does not open an
// extra line.
func (f *File) LineCount() uint32 {
	n, err := safecast.Conv[uint32](len(f.LineIdx))
	if err != nil {
		panic(fmt.Errorf("line index length overflow: %w", err))
	}
	if len(f.Content) == 0 {
		return 1
	}
	if f.Content[len(f.Content)-1] != '\n' {
		n++
	}
	return n
}

// LineSpan returns the span of line lineNum (1-based) without its terminator.
// Out of range lines yield an empty span at the end of the file.
func (f *File) LineSpan(lineNum uint32) Span {
	lenContent, err := safecast.Conv[uint32](len(f.Content))
	if err != nil {
		panic(fmt.Errorf("content length overflow: %w", err))
	}
	lenLineIdx, err := safecast.Conv[uint32](len(f.LineIdx))
	if err != nil {
		panic(fmt.Errorf("line index length overflow: %w", err))
	}

	var start, end uint32
	switch {
	case lineNum == 0:
		return Span{File: f.ID, Start: 0, End: 0}
	case lineNum == 1:
		start = 0
	case lineNum-2 < lenLineIdx:
		start = f.LineIdx[lineNum-2] + 1
	default:
		return Span{File: f.ID, Start: lenContent, End: lenContent}
	}

	if lineNum-1 < lenLineIdx {
		end = f.LineIdx[lineNum-1]
	} else {
		end = lenContent
	}
	if start > lenContent {
		start = lenContent
	}
	return Span{File: f.ID, Start: start, End: end}
}

// GetLine returns line lineNum (1-based) without its terminator, or "" when
// the line does not exist.
func (f *File) GetLine(lineNum uint32) string {
	sp := f.LineSpan(lineNum)
	return string(f.Content[sp.Start:sp.End])
}

// Text returns the bytes covered by span as a string.
func (f *File) Text(sp Span) string {
	if int(sp.End) > len(f.Content) || sp.Start > sp.End {
		return ""
	}
	return string(f.Content[sp.Start:sp.End])
}

// FormatPath formats the file path according to mode:
// "absolute", "relative", "basename" or "auto".
// baseDir is only used by "relative".
func (f *File) FormatPath(mode, baseDir string) string {
	switch mode {
	case "absolute":
		if abs, err := AbsolutePath(f.Path); err == nil {
			return abs
		}
		return f.Path

	case "relative":
		if baseDir == "" {
			if wd, err := os.Getwd(); err == nil {
				baseDir = wd
			}
		}
		if rel, err := RelativePath(f.Path, baseDir); err == nil {
			return rel
		}
		return f.Path

	case "basename":
		return BaseName(f.Path)

	case "auto":
		// короткий или относительный путь — как есть, иначе basename
		if len(f.Path) < 40 || !filepath.IsAbs(f.Path) {
			return f.Path
		}
		return BaseName(f.Path)

	default:
		return f.Path
	}
}
