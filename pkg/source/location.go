// Package source resolves input locations to readable byte streams.
//
// A location is a local path, a local glob pattern, an s3://bucket/key URL or
// a gs://bucket/object URL. Local paths are left to the analyzer to open so
// that unreadable files are counted the same way regardless of how they were
// named; remote objects are fetched by an Opener.
package source

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

// Scheme identifies where a location lives.
type Scheme string

const (
	// SchemeLocal is a path on the local filesystem
	SchemeLocal Scheme = "file"
	// SchemeS3 is an Amazon S3 object
	SchemeS3 Scheme = "s3"
	// SchemeGCS is a Google Cloud Storage object
	SchemeGCS Scheme = "gs"
)

// Location is one parsed input.
type Location struct {
	Scheme Scheme
	// Path is the local path for SchemeLocal
	Path string
	// Bucket and Key name a remote object
	Bucket string
	Key    string
}

// String returns the location in the form it was given.
func (l Location) String() string {
	switch l.Scheme {
	case SchemeS3, SchemeGCS:
		return string(l.Scheme) + "://" + l.Bucket + "/" + l.Key
	default:
		return l.Path
	}
}

// IsRemote reports whether the location needs an Opener.
func (l Location) IsRemote() bool {
	return l.Scheme == SchemeS3 || l.Scheme == SchemeGCS
}

// Parse parses a single location. Local paths are not checked for
// existence.
func Parse(raw string) (Location, error) {
	if raw == "" {
		return Location{}, fmt.Errorf("empty input location")
	}
	for _, scheme := range []Scheme{SchemeS3, SchemeGCS} {
		prefix := string(scheme) + "://"
		if !strings.HasPrefix(raw, prefix) {
			continue
		}
		rest := raw[len(prefix):]
		bucket, key, ok := strings.Cut(rest, "/")
		if !ok || bucket == "" || key == "" {
			return Location{}, fmt.Errorf("invalid %s location %q: want %sbucket/key", scheme, raw, prefix)
		}
		return Location{Scheme: scheme, Bucket: bucket, Key: key}, nil
	}
	return Location{Scheme: SchemeLocal, Path: strings.TrimPrefix(raw, "file://")}, nil
}

// Expand parses every location and expands local glob patterns, keeping the
// given order. Matches of one pattern are sorted. A pattern with no matches
// is kept as a literal path so it is reported as unopenable downstream.
func Expand(raws []string) ([]Location, error) {
	locs := make([]Location, 0, len(raws))
	for _, raw := range raws {
		loc, err := Parse(raw)
		if err != nil {
			return nil, err
		}
		if loc.IsRemote() || !hasMeta(loc.Path) {
			locs = append(locs, loc)
			continue
		}

		matches, err := filepath.Glob(loc.Path)
		if err != nil {
			return nil, fmt.Errorf("invalid glob %q: %w", loc.Path, err)
		}
		if len(matches) == 0 {
			locs = append(locs, loc)
			continue
		}
		sort.Strings(matches)
		for _, m := range matches {
			locs = append(locs, Location{Scheme: SchemeLocal, Path: m})
		}
	}
	return locs, nil
}

func hasMeta(path string) bool {
	return strings.ContainsAny(path, `*?[`)
}
