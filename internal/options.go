package internal

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"
)

const maxKeywordLen = 100

// DefaultExtensions is the allow-list applied when the user gives none.
const DefaultExtensions = ".txt, .log, .csv, .json, .xml, .md, .py"

// ScanOptions - public options from the shell. Immutable once a scan
// starts.
type ScanOptions struct {
	Root       string
	Keyword    string
	Extensions []string

	MatchOnce          bool
	UseLastMatch       bool
	CaseSensitive      bool
	IncludeNonMatching bool
	ShowAllInPreview   bool
	SearchArchives     bool

	extSuffixes []string
}

// Validate checks invariants before any scan state is created.
func (o *ScanOptions) Validate() error {
	if o.Root == "" {
		return errors.New("root folder is required")
	}
	if st, err := os.Stat(o.Root); err != nil || !st.IsDir() {
		return fmt.Errorf("root is not an accessible directory: %s", o.Root)
	}
	if o.Keyword == "" {
		return errors.New("keyword is required")
	}
	if utf8.RuneCountInString(o.Keyword) > maxKeywordLen {
		return fmt.Errorf("keyword longer than %d characters", maxKeywordLen)
	}
	if len(normalizeExts(o.Extensions)) == 0 {
		return errors.New("at least one file extension is required")
	}
	if o.MatchOnce && o.UseLastMatch {
		return errors.New("match-once and last-match are mutually exclusive")
	}
	return nil
}

// Prepare normalizes the extension list for suffix lookups.
func (o *ScanOptions) Prepare() {
	o.extSuffixes = normalizeExts(o.Extensions)
}

// normalizeExts lowercases entries, splits comma groups and guarantees a
// leading dot, preserving the user's order.
func normalizeExts(exts []string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, raw := range exts {
		for _, e := range strings.Split(raw, ",") {
			e = strings.ToLower(strings.TrimSpace(e))
			if e == "" {
				continue
			}
			if !strings.HasPrefix(e, ".") {
				e = "." + e
			}
			if _, dup := seen[e]; dup {
				continue
			}
			seen[e] = struct{}{}
			out = append(out, e)
		}
	}
	return out
}

// allowedName reports whether a lowercased file name ends with one of
// the allow-listed suffixes. Applied to plain files and to the inner
// names of archive members alike.
func (o *ScanOptions) allowedName(lowerName string) bool {
	for _, suffix := range o.extSuffixes {
		if strings.HasSuffix(lowerName, suffix) {
			return true
		}
	}
	return false
}

// normalizedKeyword returns the keyword lowered unless the scan is case
// sensitive; lines are normalized the same way before comparison.
func (o *ScanOptions) normalizedKeyword() string {
	if o.CaseSensitive {
		return o.Keyword
	}
	return strings.ToLower(o.Keyword)
}
