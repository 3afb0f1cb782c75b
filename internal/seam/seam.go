// Package seam reconciles overlapping boundaries between adjacent translated
// pages. The page algorithm joins pages with a blank line by default; Repair
// is an explicit refinement pass that removes duplicated spans the model
// re-translated at page boundaries.
package seam

import "strings"

// Separator joins repaired pages.
const Separator = "\n\n"

// Extract takes the trailing overlapSize runes of text1 and looks for them
// inside text2. When found it returns the overlapSize-rune span of text2
// starting at the match, otherwise the empty string.
func Extract(text1, text2 string, overlapSize int) string {
	if text1 == "" || text2 == "" || overlapSize <= 0 {
		return ""
	}

	r1 := []rune(text1)
	tail := text1
	if len(r1) > overlapSize {
		tail = string(r1[len(r1)-overlapSize:])
	}

	pos := strings.Index(text2, tail)
	if pos < 0 {
		return ""
	}

	r2 := []rune(text2[pos:])
	if len(r2) > overlapSize {
		r2 = r2[:overlapSize]
	}
	return string(r2)
}

// UpdatePage drops everything up to and including the seam occurrence in
// page. When the seam is empty or absent the page is returned unchanged.
func UpdatePage(page, seam string) string {
	if seam == "" {
		return page
	}
	pos := strings.Index(page, seam)
	if pos < 0 {
		return page
	}
	return page[pos+len(seam):]
}

// Repair keeps the first page verbatim and, for each subsequent page,
// computes the seam against the previous repaired page and strips the
// duplicated span. Pages are joined with a blank line.
func Repair(pages []string, overlapSize int) string {
	if len(pages) == 0 {
		return ""
	}
	if len(pages) == 1 {
		return pages[0]
	}

	repaired := make([]string, 0, len(pages))
	repaired = append(repaired, pages[0])
	for _, page := range pages[1:] {
		prev := repaired[len(repaired)-1]
		s := Extract(prev, page, overlapSize)
		if s != "" {
			repaired = append(repaired, UpdatePage(page, s))
		} else {
			repaired = append(repaired, page)
		}
	}

	return strings.Join(repaired, Separator)
}
