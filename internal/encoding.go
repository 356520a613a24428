package internal

import (
	"bufio"
	"io"
	"path/filepath"
	"strings"

	"github.com/saintfish/chardet"
	"github.com/sirupsen/logrus"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
)

// encodingSampleSize is how many head bytes feed the charset detector.
const encodingSampleSize = 8192

const defaultEncoding = "UTF-8"

// EncodingDetector infers a text encoding from the head of a byte
// stream and caches the verdict per file extension: files sharing an
// extension are assumed to share an encoding. The cache lives for one
// scan and is owned by the scan worker, so no locking is needed.
type EncodingDetector struct {
	det   *chardet.Detector
	cache map[string]string
}

func NewEncodingDetector() *EncodingDetector {
	return &EncodingDetector{
		det:   chardet.NewTextDetector(),
		cache: make(map[string]string),
	}
}

// DecodeReader wraps r so that it yields UTF-8 text regardless of the
// source encoding. Invalid bytes are substituted, never fatal. The name
// is only used to derive the extension cache key.
func (d *EncodingDetector) DecodeReader(r io.Reader, name string) io.Reader {
	br := bufio.NewReaderSize(r, encodingSampleSize)
	ext := strings.ToLower(filepath.Ext(name))

	charset, ok := d.cache[ext]
	if !ok {
		head, _ := br.Peek(encodingSampleSize)
		charset = d.sniff(head)
		d.cache[ext] = charset
		logrus.Debugf("Detected encoding %s for %s", charset, ext)
	}

	enc := lookupEncoding(charset)
	if enc == nil {
		return br
	}
	return enc.NewDecoder().Reader(br)
}

func (d *EncodingDetector) sniff(head []byte) string {
	if len(head) == 0 {
		return defaultEncoding
	}
	res, err := d.det.DetectBest(head)
	if err != nil || res == nil || res.Charset == "" {
		return defaultEncoding
	}
	return res.Charset
}

// lookupEncoding resolves a detector charset name to a decoder. nil
// means no transform is needed (or the name is unknown): the raw bytes
// pass through and are treated as UTF-8.
func lookupEncoding(charset string) encoding.Encoding {
	if strings.EqualFold(charset, defaultEncoding) {
		return nil
	}
	enc, err := ianaindex.IANA.Encoding(charset)
	if err != nil || enc == nil {
		return nil
	}
	return enc
}
