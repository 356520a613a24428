package internal

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

// CollectSources walks the root recursively and classifies every
// regular file: archive container (when archive search is on), plain
// candidate matching the extension allow-list, or skipped. Plain files
// come first in the returned slice, archive containers after them, each
// group in walk order - this is the order results are produced in.
//
// Symlinks follow the host default of filepath.WalkDir (not followed);
// there is no cycle detection.
func CollectSources(ctx context.Context, opts *ScanOptions) ([]Source, error) {
	var plain, containers []Source

	err := filepath.WalkDir(opts.Root, func(path string, d fs.DirEntry, err error) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil {
			if path == opts.Root {
				return fmt.Errorf("cannot access root: %w", err)
			}
			logrus.WithError(err).WithField("path", path).Warn("skip inaccessible entry")
			return nil
		}
		if d.IsDir() {
			return nil
		}

		lower := strings.ToLower(d.Name())
		if kind, isContainer := ArchiveKindOf(lower); isContainer && opts.SearchArchives {
			containers = append(containers, Source{Path: path, Kind: kind})
			return nil
		}
		if !opts.allowedName(lower) {
			return nil
		}

		rel, relErr := filepath.Rel(opts.Root, path)
		if relErr != nil {
			rel = path
		}
		plain = append(plain, Source{Path: path, Rel: rel, Kind: KindPlain})
		return nil
	})
	if err != nil {
		return nil, err
	}

	logrus.Debugf("Collected %d files and %d archives under %s",
		len(plain), len(containers), opts.Root)
	return append(plain, containers...), nil
}
