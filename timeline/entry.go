package timeline

import (
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"

	"github.com/dirname/HistoryOfEverything/asset"
)

// EntryKind tells eras (a spanning period) apart from incidents (a single
// dated event).
type EntryKind int

const (
	Era EntryKind = iota
	Incident
)

// Entry is one item on the timeline. Eras nest child entries; incidents
// carry Start == End. The layout fields at the bottom are rewritten by
// Timeline.Advance every frame.
type Entry struct {
	Kind    EntryKind
	ID      string
	Label   string
	Start   float64
	End     float64
	Article string
	Accent  color.RGBA

	Parent   *Entry
	Children []*Entry
	Next     *Entry
	Previous *Entry

	Asset asset.Asset

	// Layout state, in pixels from the top of the viewport
	Y    float64
	EndY float64

	LabelOpacity  float64
	LabelY        float64
	LabelVelocity float64
	Opacity       float64
}

// TrimmedLabel collapses line breaks and repeated whitespace so the label
// fits a single bubble row.
func (e *Entry) TrimmedLabel() string {
	return strings.Join(strings.Fields(e.Label), " ")
}

// FormattedDate renders the entry's place in time for headers and menus.
// Eras show a range, incidents a single date.
func (e *Entry) FormattedDate() string {
	if e.Kind == Incident || e.Start == e.End {
		return FormatYear(e.Start)
	}
	return fmt.Sprintf("%s - %s", FormatYear(e.Start), FormatYear(e.End))
}

// FormatYear renders a year on the timeline axis for humans. Deep time
// reads as "years ago", the historical record as BCE, the common era as a
// plain year.
func FormatYear(year float64) string {
	if year > 0 {
		return strconv.FormatInt(int64(math.Round(year)), 10)
	}
	if year == 0 {
		return "0"
	}

	ago := -year
	switch {
	case ago >= 1e9:
		return trimDecimal(ago/1e9) + " billion years ago"
	case ago >= 1e6:
		return trimDecimal(ago/1e6) + " million years ago"
	default:
		return groupDigits(int64(math.Round(ago))) + " BCE"
	}
}

// trimDecimal renders a magnitude with one decimal place, dropping it when
// it is zero ("13.8", "2").
func trimDecimal(v float64) string {
	s := strconv.FormatFloat(math.Round(v*10)/10, 'f', 1, 64)
	return strings.TrimSuffix(s, ".0")
}

// groupDigits renders n with thousands separators.
func groupDigits(n int64) string {
	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}
