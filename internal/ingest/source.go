package ingest

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Source is a named, fully buffered input file. Every Open starts at offset
// zero so extractors never depend on an earlier reader's position.
type Source struct {
	Name string
	Data []byte
}

func (s Source) Open() *bytes.Reader {
	return bytes.NewReader(s.Data)
}

// Ext is the lower-cased extension of the source name, dot included.
func (s Source) Ext() string {
	return strings.ToLower(filepath.Ext(s.Name))
}

func (s Source) SourceName() string { return s.Name }

// ReadSource loads a file from disk, keeping only its base name.
func ReadSource(path string) (Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Source{}, err
	}
	return Source{Name: filepath.Base(path), Data: data}, nil
}

// ReadSourceFrom buffers an upload stream.
func ReadSourceFrom(name string, r io.Reader) (Source, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Source{}, err
	}
	return Source{Name: filepath.Base(name), Data: data}, nil
}

// Kind classifies a file name as a report, a ledger, or neither.
type Kind int

const (
	KindUnknown Kind = iota
	KindReport
	KindLedger
)

func KindOf(name string) Kind {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return KindReport
	case ".csv", ".xlsx", ".xls":
		return KindLedger
	default:
		return KindUnknown
	}
}

// CollectSources loads the given paths. A directory contributes its regular
// files of the wanted kind, in name order; a file path is always loaded.
func CollectSources(paths []string, want Kind) ([]Source, error) {
	var sources []Source
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			src, err := ReadSource(p)
			if err != nil {
				return nil, err
			}
			sources = append(sources, src)
			continue
		}
		entries, err := os.ReadDir(p)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			if !e.Type().IsRegular() || KindOf(e.Name()) != want {
				continue
			}
			src, err := ReadSource(filepath.Join(p, e.Name()))
			if err != nil {
				return nil, err
			}
			sources = append(sources, src)
		}
	}
	return sources, nil
}
