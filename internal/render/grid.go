// Package render formats classified listing pages for the terminal.
package render

import (
	"strings"
	"time"

	"github.com/mattn/go-runewidth"

	"Ossctl/internal/listing"
)

const (
	HeaderName     = "name"
	HeaderModified = "modified"

	DirGlyph  = "📂"
	FileGlyph = "📄"

	TimeLayout = "2006-01-02 15:04"

	// columnGap separates the name column from the timestamp column.
	columnGap = 3
)

const (
	HintNextPage = "press s for the next page, q to quit"
	HintLastPage = "this is the last page, press q to quit"
)

type row struct {
	name     string
	modified string
}

// Grid renders page as a two-column table: a heading row, then directories,
// then files, each group sorted. Timestamps are UTC. The output ends with a newline.
func Grid(page listing.ClassifiedPage) string {
	rows := []row{{name: HeaderName, modified: HeaderModified}}
	for _, d := range page.Directories() {
		rows = append(rows, row{name: DirGlyph + " " + d})
	}
	for _, f := range page.Files() {
		rows = append(rows, row{name: FileGlyph + " " + f.Key, modified: FormatTime(f.LastModified)})
	}

	width := 0
	for _, r := range rows {
		if w := runewidth.StringWidth(r.name); w > width {
			width = w
		}
	}

	var b strings.Builder
	for _, r := range rows {
		line := runewidth.FillRight(r.name, width+columnGap) + r.modified
		b.WriteString(strings.TrimRight(line, " "))
		b.WriteByte('\n')
	}
	return b.String()
}

// FormatTime formats t as YYYY-MM-DD HH:MM in UTC.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// Hint is the footer shown under a page in the interactive viewer.
func Hint(isLastPage bool) string {
	if isLastPage {
		return HintLastPage
	}
	return HintNextPage
}
