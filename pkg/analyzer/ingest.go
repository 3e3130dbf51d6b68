package analyzer

import (
	"bytes"
	"errors"
	"io"
	"os"

	"github.com/ajitpratap0/tripstat/pkg/intern"
	"github.com/ajitpratap0/tripstat/pkg/tripstaterrors"
)

// IngestFile adds every valid line of the file at path to the counters.
//
// A file that cannot be opened contributes nothing and is not an error; it is
// counted in Stats.FilesNotOpened. The only error returned is a capacity
// error from the zone table, in which case lines before the failing one stay
// counted.
func (a *TripAnalyzer) IngestFile(path string) error {
	f, err := os.Open(path) //nolint:gosec // G304: path is the caller's input file
	if err != nil {
		a.stats.FilesNotOpened++
		return nil
	}
	defer f.Close()

	return a.IngestReader(f)
}

// IngestReader is IngestFile for an already opened stream. The first
// non-empty line read from r is treated as its header.
//
// A read error ends the input early: complete lines before it stay counted,
// a trailing partial line is discarded, and Stats.ReadErrors is incremented.
func (a *TripAnalyzer) IngestReader(r io.Reader) error {
	a.expectedColumns = unsetColumns
	a.stats.FilesIngested++
	a.reserve()

	buf := a.buffer()
	pending := 0

	for {
		if pending == len(buf) {
			// A single line fills the buffer; double it so the line can be
			// completed on the next read.
			grown := make([]byte, 2*len(buf))
			copy(grown, buf[:pending])
			buf = grown
			a.buf = grown
		}

		n, err := r.Read(buf[pending:])
		if n > 0 {
			a.stats.BytesRead += int64(n)
			end := pending + n
			start := 0
			for {
				i := bytes.IndexByte(buf[start:end], '\n')
				if i < 0 {
					break
				}
				if perr := a.processLine(buf[start : start+i]); perr != nil {
					return perr
				}
				start += i + 1
			}
			// Move the incomplete tail to the front of the buffer.
			pending = copy(buf, buf[start:end])
		}

		if err == io.EOF {
			break
		}
		if err != nil {
			a.stats.ReadErrors++
			return nil
		}
	}

	// The last line may lack a trailing newline.
	if pending > 0 {
		return a.processLine(buf[:pending])
	}
	return nil
}

// processLine handles one line without its '\n'.
func (a *TripAnalyzer) processLine(line []byte) error {
	if n := len(line); n > 0 && line[n-1] == '\r' {
		line = line[:n-1]
	}
	if len(line) == 0 {
		return nil
	}
	a.stats.LinesRead++

	scan := scanLine(line, a.delimiter)
	if a.expectedColumns == unsetColumns {
		a.expectedColumns = scan.delims
		a.stats.HeaderLines++
		return nil
	}

	zone, hour, reason := scan.fields(line, a.expectedColumns)
	if reason != accepted {
		a.stats.drop(reason)
		return nil
	}

	id, err := a.zones.Intern(zone, scan.zoneHash)
	if err != nil {
		if errors.Is(err, intern.ErrCapacityExceeded) {
			return tripstaterrors.Wrap(err, tripstaterrors.ErrorTypeCapacity, "zone table exhausted").
				WithDetail("zones", a.zones.Len()).
				WithDetail("buckets", a.zones.Capacity())
		}
		return tripstaterrors.Wrap(err, tripstaterrors.ErrorTypeInternal, "failed to intern zone")
	}

	a.recordEvent(id, hour)
	a.stats.LinesAccepted++
	return nil
}

// buffer returns the reusable read buffer, allocating it on first use.
func (a *TripAnalyzer) buffer() []byte {
	if a.buf == nil {
		a.buf = make([]byte, a.bufferSize)
	}
	return a.buf
}
