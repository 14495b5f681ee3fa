// Package discover finds MIDI files on disk
package discover

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Format represents a file format
type Format string

const (
	FormatMIDI     Format = "midi"
	FormatRIFFMIDI Format = "rmid"
	FormatSyx      Format = "syx"
	FormatUnknown  Format = "unknown"
)

// DetectFormat detects the format of a file based on extension
func DetectFormat(filename string) Format {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".mid", ".midi":
		return FormatMIDI
	case ".rmi":
		return FormatRIFFMIDI
	case ".syx":
		return FormatSyx
	default:
		return FormatUnknown
	}
}

// IsMIDIFile reports whether the file name carries a Standard MIDI File extension
func IsMIDIFile(filename string) bool {
	return DetectFormat(filename) == FormatMIDI
}

// FindMIDIFiles expands paths into a sorted, de-duplicated list of .mid/.midi
// files. Directories are scanned one level deep unless recursive is set.
func FindMIDIFiles(paths []string, recursive bool) ([]string, error) {
	seen := make(map[string]struct{})
	var out []string
	add := func(p string) {
		if _, ok := seen[p]; ok {
			return
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}

	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", p, err)
		}
		if !info.IsDir() {
			if IsMIDIFile(p) {
				add(p)
			}
			continue
		}

		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path != p && !recursive {
					return filepath.SkipDir
				}
				return nil
			}
			if IsMIDIFile(d.Name()) {
				add(path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to walk %s: %w", p, err)
		}
	}

	sort.Strings(out)
	return out, nil
}
