package files

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/r3dlabs/termkit/internal/errors"
)

// Kind groups entries for icons and colours.
type Kind string

const (
	KindDir     Kind = "dir"
	KindLink    Kind = "link"
	KindCode    Kind = "code"
	KindDoc     Kind = "doc"
	KindData    Kind = "data"
	KindImage   Kind = "image"
	KindMedia   Kind = "media"
	KindArchive Kind = "archive"
	KindBinary  Kind = "binary"
	KindFile    Kind = "file"
)

var kindsByExt = map[string]Kind{
	".go": KindCode, ".py": KindCode, ".js": KindCode, ".ts": KindCode,
	".rs": KindCode, ".c": KindCode, ".h": KindCode, ".java": KindCode,
	".sh": KindCode, ".html": KindCode, ".css": KindCode,
	".md": KindDoc, ".txt": KindDoc, ".pdf": KindDoc, ".doc": KindDoc,
	".docx": KindDoc, ".xls": KindDoc, ".xlsx": KindDoc,
	".json": KindData, ".yaml": KindData, ".yml": KindData, ".toml": KindData,
	".xml": KindData, ".csv": KindData, ".sql": KindData, ".db": KindData,
	".jpg": KindImage, ".jpeg": KindImage, ".png": KindImage, ".gif": KindImage,
	".svg": KindImage, ".webp": KindImage,
	".mp3": KindMedia, ".wav": KindMedia, ".flac": KindMedia, ".mp4": KindMedia,
	".avi": KindMedia, ".mkv": KindMedia, ".mov": KindMedia,
	".zip": KindArchive, ".tar": KindArchive, ".gz": KindArchive, ".tgz": KindArchive,
	".bz2": KindArchive, ".xz": KindArchive, ".7z": KindArchive,
	".exe": KindBinary, ".msi": KindBinary, ".so": KindBinary, ".dll": KindBinary,
	".dylib": KindBinary, ".bin": KindBinary,
}

var icons = map[Kind]string{
	KindDir:     "▸",
	KindLink:    "↪",
	KindCode:    "λ",
	KindDoc:     "≡",
	KindData:    "⋮",
	KindImage:   "◐",
	KindMedia:   "♪",
	KindArchive: "▤",
	KindBinary:  "⚙",
	KindFile:    "·",
}

// KindOf classifies a file name by extension.
func KindOf(name string) Kind {
	if k, ok := kindsByExt[strings.ToLower(filepath.Ext(name))]; ok {
		return k
	}
	return KindFile
}

// Icon returns the single-cell glyph shown next to entries of kind k.
func (k Kind) Icon() string {
	if icon, ok := icons[k]; ok {
		return icon
	}
	return icons[KindFile]
}

// Entry is one item of a directory listing.
type Entry struct {
	Name    string
	Kind    Kind
	IsDir   bool
	Size    int64
	Mode    fs.FileMode
	ModTime time.Time
}

// SizeString is "<DIR>" for directories and a binary-prefixed size otherwise.
func (e Entry) SizeString() string {
	if e.IsDir {
		return "<DIR>"
	}
	return humanize.IBytes(uint64(e.Size))
}

// Hidden reports whether the entry is a dotfile.
func (e Entry) Hidden() bool {
	return strings.HasPrefix(e.Name, ".")
}

// Listing is a snapshot of one directory.
type Listing struct {
	Path    string
	Entries []Entry
	// Dirs and Files count the entries shown.
	Dirs  int
	Files int
	// TotalSize sums the sizes of the files shown.
	TotalSize int64
	// Skipped counts entries that could not be stat'ed.
	Skipped int
	// HiddenCount counts dotfiles left out.
	HiddenCount int
}

// Options controls List.
type Options struct {
	// All includes dotfiles.
	All bool
}

// List reads dir and returns its entries with directories first, then
// files, each group ordered by case-insensitive name. Entries that vanish
// or cannot be stat'ed between readdir and stat are skipped.
func List(dir string, opts Options) (*Listing, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrFS,
			"Can't resolve "+dir,
			"Check the path is correct")
	}

	dirEntries, err := os.ReadDir(abs)
	if err != nil {
		if os.IsPermission(err) {
			return nil, errors.WrapWithCode(err, errors.ErrFS,
				"Permission denied reading "+abs,
				"Try a directory you own, or rerun with elevated privileges")
		}
		if os.IsNotExist(err) {
			return nil, errors.WrapWithCode(err, errors.ErrFS,
				"No such directory: "+abs,
				"Check the path is correct")
		}
		return nil, errors.WrapWithCode(err, errors.ErrFS,
			"Can't read "+abs,
			"Make sure the path is a directory")
	}

	listing := &Listing{Path: abs}
	for _, de := range dirEntries {
		entry, ok := statEntry(abs, de)
		if !ok {
			listing.Skipped++
			continue
		}
		if entry.Hidden() && !opts.All {
			listing.HiddenCount++
			continue
		}

		if entry.IsDir {
			listing.Dirs++
		} else {
			listing.Files++
			listing.TotalSize += entry.Size
		}
		listing.Entries = append(listing.Entries, entry)
	}

	SortEntries(listing.Entries)
	return listing, nil
}

// SortEntries orders directories before files, each by case-insensitive
// name with the raw name as tie-break.
func SortEntries(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.IsDir != b.IsDir {
			return a.IsDir
		}
		la, lb := strings.ToLower(a.Name), strings.ToLower(b.Name)
		if la != lb {
			return la < lb
		}
		return a.Name < b.Name
	})
}

func statEntry(dir string, de fs.DirEntry) (Entry, bool) {
	info, err := de.Info()
	if err != nil {
		return Entry{}, false
	}

	e := Entry{
		Name:    de.Name(),
		Size:    info.Size(),
		Mode:    info.Mode(),
		ModTime: info.ModTime(),
	}

	switch {
	case info.Mode()&fs.ModeSymlink != 0:
		e.Kind = KindLink
		// A link to a directory sorts with directories.
		if target, err := os.Stat(filepath.Join(dir, de.Name())); err == nil && target.IsDir() {
			e.IsDir = true
		}
	case info.IsDir():
		e.Kind = KindDir
		e.IsDir = true
	default:
		e.Kind = KindOf(e.Name)
	}
	return e, true
}
