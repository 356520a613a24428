package internal

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

// SourceKind classifies an entry once during enumeration instead of
// re-deriving it from the file name at every use site.
type SourceKind int

const (
	KindPlain SourceKind = iota
	KindZip
	KindSevenZip
)

// archiveKinds maps container suffixes to kinds. Only the zip and 7z
// families are recognized as containers.
var archiveKinds = map[string]SourceKind{
	".zip": KindZip,
	".7z":  KindSevenZip,
}

// ArchiveKindOf returns the container kind for a lowercased file name,
// or KindPlain if the name is not a recognized container.
func ArchiveKindOf(lowerName string) (SourceKind, bool) {
	for suffix, kind := range archiveKinds {
		if strings.HasSuffix(lowerName, suffix) {
			return kind, true
		}
	}
	return KindPlain, false
}

// Source is one logical line-numbered text stream: a plain file, or one
// member inside an archive container. For a container itself, Inner is
// empty and Kind names the format. Path is always openable; Rel, when
// set, is the root-relative form shown to the user.
type Source struct {
	Path  string
	Rel   string
	Inner string
	Kind  SourceKind
}

// Locator is the display path used in result rows: the root-relative
// path for plain files, "archive::member" for archive members.
func (s Source) Locator() string {
	if s.Inner != "" {
		return fmt.Sprintf("%s::%s", s.Path, s.Inner)
	}
	if s.Rel != "" {
		return s.Rel
	}
	return s.Path
}

// Filename is the base name of the innermost element.
func (s Source) Filename() string {
	if s.Inner != "" {
		return filepath.Base(filepath.FromSlash(s.Inner))
	}
	return filepath.Base(s.Path)
}

type lineTag int

const (
	lineMatched lineTag = iota
	lineNoMatch
	lineError
)

// LineRef is the tagged line-number field of a result row: an ordinal
// for a real match, "-" for the no-match sentinel, "ERROR" for a read
// failure.
type LineRef struct {
	tag lineTag
	n   int
}

func MatchedLine(n int) LineRef { return LineRef{tag: lineMatched, n: n} }

var (
	NoMatchLine = LineRef{tag: lineNoMatch}
	ErrorLine   = LineRef{tag: lineError}
)

// IsMatch reports whether the ref points at a real matched line.
func (l LineRef) IsMatch() bool { return l.tag == lineMatched }

func (l LineRef) IsError() bool { return l.tag == lineError }

// Number returns the matched line ordinal, 0 for sentinels.
func (l LineRef) Number() int { return l.n }

func (l LineRef) String() string {
	switch l.tag {
	case lineNoMatch:
		return "-"
	case lineError:
		return "ERROR"
	default:
		return strconv.Itoa(l.n)
	}
}

// NoMatchMarker is the fixed text of the sentinel row emitted for
// sources with zero matches when non-matching files are included.
const NoMatchMarker = "[No match found]"

// ResultRow is one durable result record.
type ResultRow struct {
	Path     string
	Filename string
	Line     LineRef
	Text     string
}

// Record renders the row as a CSV record in store column order.
func (r ResultRow) Record() []string {
	return []string{r.Path, r.Filename, r.Line.String(), r.Text}
}

func errorRow(s Source, format string, args ...interface{}) ResultRow {
	return ResultRow{
		Path:     s.Locator(),
		Filename: s.Filename(),
		Line:     ErrorLine,
		Text:     fmt.Sprintf(format, args...),
	}
}

func sentinelRow(s Source) ResultRow {
	return ResultRow{
		Path:     s.Locator(),
		Filename: s.Filename(),
		Line:     NoMatchLine,
		Text:     NoMatchMarker,
	}
}
