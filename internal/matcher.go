package internal

import (
	"bufio"
	"context"
	"io"
	"strings"
)

// evaluateSource consumes one source's decoded line stream and applies
// the active match policy. It returns the source's result rows in order
// and the number of real matches among them.
//
// Policy semantics, per source:
//   - MatchOnce: the first hit is recorded and the stream is abandoned.
//   - UseLastMatch: hits overwrite each other; the stream is read to the
//     end and only the final hit survives.
//   - neither: every hit becomes a row.
//   - IncludeNonMatching: zero hits yield exactly one sentinel row.
//
// A read error aborts the iteration and replaces the source's rows with
// exactly one ERROR row. A cancellation observed mid-stream discards
// the partial rows entirely so the durable store stays a strict prefix
// of an uncancelled run.
func evaluateSource(ctx context.Context, r io.Reader, src Source, keyword string, opts *ScanOptions) ([]ResultRow, int) {
	var (
		rows   []ResultRow
		last   *ResultRow
		lineNo int
	)

	br := bufio.NewReader(r)
	for {
		if ctx.Err() != nil {
			return nil, 0
		}
		line, err := br.ReadString('\n')
		if line != "" {
			lineNo++
			check := line
			if !opts.CaseSensitive {
				check = strings.ToLower(line)
			}
			if strings.Contains(check, keyword) {
				row := ResultRow{
					Path:     src.Locator(),
					Filename: src.Filename(),
					Line:     MatchedLine(lineNo),
					Text:     strings.TrimRight(line, "\r\n"),
				}
				if opts.MatchOnce {
					return []ResultRow{row}, 1
				}
				if opts.UseLastMatch {
					last = &row
				} else {
					rows = append(rows, row)
				}
			}
		}
		if err != nil {
			if err != io.EOF {
				return []ResultRow{errorRow(src, "Could not read %s: %v", sourceNoun(src), err)}, 0
			}
			break
		}
	}

	if opts.UseLastMatch && last != nil {
		rows = []ResultRow{*last}
	}
	if len(rows) == 0 {
		if opts.IncludeNonMatching {
			return []ResultRow{sentinelRow(src)}, 0
		}
		return nil, 0
	}
	return rows, len(rows)
}

func sourceNoun(src Source) string {
	if src.Inner != "" {
		return "member"
	}
	return "file"
}
