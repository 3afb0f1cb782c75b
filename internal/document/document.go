// Package document defines the loaded-document model consumed by the
// translation engine and the loaders that produce it. A document is an
// ordered sequence of units (text pages or raw image bytes) plus a content
// type; it is immutable once loaded and consumed read-only downstream.
package document

import "strings"

// Unit is one page, chunk, or section of document content submitted as a
// single translation request. Exactly one of Text or Image is set.
type Unit struct {
	Text  string
	Image []byte
}

// IsImage reports whether the unit carries binary image data.
func (u Unit) IsImage() bool {
	return u.Image != nil
}

// Content is a loaded document: its units in document order and a MIME-style
// content type (text/plain, image/png, ...).
type Content struct {
	Units       []Unit
	ContentType string
}

// TextUnits returns the text of every unit. Image units contribute empty
// strings; callers that cannot handle images check IsImage first.
func (c Content) TextUnits() []string {
	texts := make([]string, len(c.Units))
	for i, u := range c.Units {
		texts[i] = u.Text
	}
	return texts
}

// JoinedText concatenates all text units with a blank-line separator.
func (c Content) JoinedText() string {
	return strings.Join(c.TextUnits(), "\n\n")
}

// FromPages builds text/plain content from already-split pages.
func FromPages(pages []string) Content {
	units := make([]Unit, len(pages))
	for i, p := range pages {
		units[i] = Unit{Text: p}
	}
	return Content{Units: units, ContentType: "text/plain"}
}
