package pipeline

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/backmassage/camstitch/internal/config"
	"github.com/backmassage/camstitch/internal/naming"
)

// ClipFile is a discovered clip before probing.
type ClipFile struct {
	Index int
	Path  string
}

// Discover lists inputDir (non-recursively), keeps files with extension ext
// (case-insensitive), and returns them sorted by the integer value of their
// stem: 2.mov plays before 10.mov whatever the listing order. Directories,
// dotfiles, scratch leftovers and other extensions are ignored. A stem that
// is not an integer fails the call under NonNumericFail and is returned in
// skipped under NonNumericSkip. Two files with the same index always fail.
func Discover(inputDir, ext string, policy config.NonNumericPolicy) (clips []ClipFile, skipped []string, err error) {
	fi, err := os.Stat(inputDir)
	if err != nil {
		return nil, nil, err
	}
	if !fi.IsDir() {
		return nil, nil, fmt.Errorf("%s is not a directory", inputDir)
	}

	entries, err := os.ReadDir(inputDir)
	if err != nil {
		return nil, nil, err
	}

	registry := naming.NewIndexRegistry()
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || naming.IsScratchName(name) || !naming.HasExtension(name, ext) {
			continue
		}
		path := filepath.Join(inputDir, name)

		idx, err := naming.ParseClipIndex(name, ext)
		if err != nil {
			if errors.Is(err, naming.ErrNonNumericStem) && policy == config.NonNumericSkip {
				skipped = append(skipped, path)
				continue
			}
			return nil, nil, err
		}
		if err := registry.Claim(idx, path); err != nil {
			return nil, nil, err
		}
		clips = append(clips, ClipFile{Index: idx, Path: path})
	}

	sort.Slice(clips, func(i, j int) bool { return clips[i].Index < clips[j].Index })
	return clips, skipped, nil
}
