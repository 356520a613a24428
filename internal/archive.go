package internal

import (
	"context"
	"errors"
	"io"
	iofs "io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bodgit/sevenzip"
	"github.com/mholt/archives"
	"github.com/sirupsen/logrus"
)

const maxArchiveMembers = 10000 // zip-bomb protection

var errMemberLimit = errors.New("archive member limit reached")

// ArchiveReader enumerates the eligible members of one archive and
// hands each one's raw byte stream to fn. One implementation exists per
// supported container format; the set of implementations is decided
// once at startup, and a kind without a reader degrades to a single
// ERROR row for the container.
//
// A non-nil error means the container itself could not be processed;
// per-member read errors are fn's business.
type ArchiveReader interface {
	WalkMembers(ctx context.Context, path string, opts *ScanOptions, fn func(inner string, r io.Reader) error) error
}

// NewArchiveReaders builds the capability registry.
func NewArchiveReaders() map[SourceKind]ArchiveReader {
	return map[SourceKind]ArchiveReader{
		KindZip:      &zipReader{},
		KindSevenZip: &sevenZipReader{},
	}
}

// zipReader streams members through an archive filesystem, one open
// member at a time, so a large archive is never decompressed whole.
type zipReader struct{}

func (z *zipReader) WalkMembers(ctx context.Context, path string, opts *ScanOptions, fn func(string, io.Reader) error) error {
	fsys, err := archives.FileSystem(ctx, SafePath(path), nil)
	if err != nil {
		return err
	}
	if closer, ok := fsys.(io.Closer); ok {
		defer closer.Close()
	}

	count := 0
	walkErr := iofs.WalkDir(fsys, ".", func(inner string, d iofs.DirEntry, err error) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil || d.IsDir() {
			return nil
		}
		if count >= maxArchiveMembers {
			logrus.Warnf("Archive %s truncated: too many members (>= %d)", path, maxArchiveMembers)
			return errMemberLimit
		}
		if !opts.allowedName(strings.ToLower(inner)) {
			return nil
		}
		count++

		f, err := fsys.Open(inner)
		if err != nil {
			return fn(inner, &failingReader{err: err})
		}
		defer f.Close()
		return fn(inner, f)
	})
	if errors.Is(walkErr, errMemberLimit) {
		return nil
	}
	return walkErr
}

// sevenZipReader extracts the whole archive to a scratch directory once
// and scans the extracted tree. Per-member streaming is not practical
// for the 7z solid-block layout, so this format is strictly slower and
// disk-heavier than the zip path.
type sevenZipReader struct{}

func (s *sevenZipReader) WalkMembers(ctx context.Context, path string, opts *ScanOptions, fn func(string, io.Reader) error) error {
	r, err := sevenzip.OpenReader(SafePath(path))
	if err != nil {
		return err
	}

	scratch, err := os.MkdirTemp("", "foldersearch-7z-*")
	if err != nil {
		r.Close()
		return err
	}
	defer os.RemoveAll(scratch)

	if err := extractAll(ctx, r, scratch); err != nil {
		r.Close()
		return err
	}
	r.Close()

	return filepath.Walk(scratch, func(p string, info os.FileInfo, err error) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil || info.IsDir() {
			return nil
		}
		rel, relErr := filepath.Rel(scratch, p)
		if relErr != nil {
			return nil
		}
		inner := filepath.ToSlash(rel)
		if !opts.allowedName(strings.ToLower(inner)) {
			return nil
		}
		f, openErr := os.Open(p)
		if openErr != nil {
			return fn(inner, &failingReader{err: openErr})
		}
		defer f.Close()
		return fn(inner, f)
	})
}

func extractAll(ctx context.Context, r *sevenzip.ReadCloser, dst string) error {
	for _, f := range r.File {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if f.FileInfo().IsDir() {
			continue
		}
		out := filepath.Join(dst, filepath.FromSlash(f.Name))
		if !strings.HasPrefix(out, dst+string(os.PathSeparator)) {
			logrus.Warnf("Skip member with unsafe path: %s", f.Name)
			continue
		}
		if err := os.MkdirAll(filepath.Dir(out), 0755); err != nil {
			return err
		}
		rc, err := f.Open()
		if err != nil {
			return err
		}
		w, err := os.Create(out)
		if err != nil {
			rc.Close()
			return err
		}
		_, err = io.Copy(w, rc)
		rc.Close()
		if cerr := w.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// failingReader surfaces an open error through the normal per-member
// read path so the member gets its ERROR row without special casing.
type failingReader struct{ err error }

func (f *failingReader) Read([]byte) (int, error) { return 0, f.err }
