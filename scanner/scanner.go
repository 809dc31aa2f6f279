package scanner

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

type FileInfo struct {
	Path string
	Size int64
}

// Scanner finds files below a root directory whose names end in one of a
// set of suffixes. Suffixes may span several dots, as in ".contracts.yaml".
type Scanner struct {
	rootDir  string
	suffixes []string
}

func New(rootDir string, suffixes ...string) *Scanner {
	return &Scanner{
		rootDir:  rootDir,
		suffixes: suffixes,
	}
}

// Scan walks the tree and returns the matching files ordered by path.
// Hidden directories below the root are skipped.
func (s *Scanner) Scan() ([]FileInfo, error) {
	var files []FileInfo

	err := filepath.WalkDir(s.rootDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			if path != s.rootDir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}

		if !s.isTargetFile(path) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		files = append(files, FileInfo{Path: path, Size: info.Size()})
		return nil
	})

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, err
}

// Paths returns the paths of Scan.
func (s *Scanner) Paths() ([]string, error) {
	files, err := s.Scan()
	paths := make([]string, 0, len(files))
	for _, f := range files {
		paths = append(paths, f.Path)
	}
	return paths, err
}

func (s *Scanner) isTargetFile(path string) bool {
	if len(s.suffixes) == 0 {
		return true
	}

	name := filepath.Base(path)
	for _, suffix := range s.suffixes {
		if strings.HasSuffix(name, suffix) && name != suffix {
			return true
		}
	}
	return false
}
