package picker

import (
	"context"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/sahilm/fuzzy"
	"go.lsp.dev/uri"

	"github.com/lexcodex/crumb/breadcrumbs"
)

// fileSource lists the children of a scope directory lazily.
type fileSource struct {
	fs    FileSystem
	scope uri.URI
}

func (s *fileSource) Load(ctx context.Context) ([]Item, error) {
	stats, err := s.fs.Resolve(ctx, s.scope)
	if err != nil {
		return nil, err
	}
	items := make([]Item, 0, len(stats))
	for _, stat := range stats {
		items = append(items, Item{
			Label:      stat.Name,
			Expandable: stat.IsDirectory,
			Element: breadcrumbs.FileElement{
				URI:    stat.Resource,
				IsFile: !stat.IsDirectory,
			},
		})
	}
	return items, nil
}

func (s *fileSource) SetScope(scope interface{}) {
	if dir, ok := scope.(uri.URI); ok {
		s.scope = dir
	}
}

// fileSorter groups directories before files, then orders by name with
// upper-case letters winning ties against their lower-case form.
type fileSorter struct{}

func (fileSorter) Sort(items []Item) {
	SortItems(items, func(a, b Item) bool {
		if a.Expandable != b.Expandable {
			return a.Expandable
		}
		return compareFileNames(a.Label, b.Label) < 0
	})
}

// compareFileNames orders names case-insensitively, breaking exact
// case-folded ties so that upper-case sorts first.
func compareFileNames(a, b string) int {
	la, lb := strings.ToLower(a), strings.ToLower(b)
	if la != lb {
		if la < lb {
			return -1
		}
		return 1
	}
	for i, ra := range a {
		if i >= len(b) {
			return 1
		}
		rb := rune(b[i])
		if ra != rb {
			if unicode.IsUpper(ra) && !unicode.IsUpper(rb) {
				return -1
			}
			if !unicode.IsUpper(ra) && unicode.IsUpper(rb) {
				return 1
			}
		}
	}
	if len(a) < len(b) {
		return -1
	}
	return 0
}

// fileRenderer marks directories with a trailing slash.
type fileRenderer struct{}

func (fileRenderer) Render(item Item) (string, string) {
	if item.Expandable {
		return item.Label + "/", ""
	}
	return item.Label, ""
}

// fileScorer fuzzy-matches against the row label.
type fileScorer struct{}

func (fileScorer) Score(filter string, item Item) (int, []int, bool) {
	matches := fuzzy.Find(filter, []string{item.Label})
	if len(matches) == 0 {
		return 0, nil, false
	}
	return matches[0].Score, matches[0].MatchedIndexes, true
}

// fileHandler drills into directories and emits file elements.
type fileHandler struct{}

func (fileHandler) Handle(item Item) Outcome {
	file, ok := item.Element.(breadcrumbs.FileElement)
	if !ok {
		return Outcome{}
	}
	if !file.IsFile {
		return Outcome{Scope: file.URI}
	}
	return Outcome{Element: file}
}

// NewFilePicker opens a picker scoped to the parent directory of the
// anchoring file element.
func NewFilePicker(ctx context.Context, fs FileSystem, anchor breadcrumbs.FileElement, errs ErrorSink, onDone func(Result)) *Picker {
	scope := anchor.URI
	if anchor.IsFile {
		scope = uri.File(filepath.Dir(scope.Filename()))
	}
	return New(ctx, Options{
		Source:   &fileSource{fs: fs, scope: scope},
		Sorter:   fileSorter{},
		Renderer: fileRenderer{},
		Scorer:   fileScorer{},
		Handler:  fileHandler{},
		Errors:   errs,
		OnDone:   onDone,
	})
}
