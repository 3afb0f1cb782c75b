// Package window implements overlapping text windowing for the
// sliding-window translation algorithm. Windows are measured in runes so
// multi-byte scripts are never split mid-character.
package window

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidArgument is returned when windowing parameters are out of range.
// It indicates a caller bug and is never worth retrying.
var ErrInvalidArgument = errors.New("invalid windowing argument")

// Separator joins merged chunks when no exact overlap is found, and joins
// translated pages in the page algorithm. Kept as a blank line so paragraph
// structure survives the round trip.
const Separator = "\n\n"

// Create splits text into overlapping windows of at most windowSize runes.
// Consecutive windows share overlapSize runes. The cursor always advances by
// at least one rune, which bounds the window count to
// ceil(len(text) / (windowSize - overlapSize)).
func Create(text string, windowSize, overlapSize int) ([]string, error) {
	if windowSize <= 0 {
		return nil, fmt.Errorf("%w: window size must be positive, got %d", ErrInvalidArgument, windowSize)
	}
	if overlapSize < 0 {
		return nil, fmt.Errorf("%w: overlap size must be non-negative, got %d", ErrInvalidArgument, overlapSize)
	}
	if overlapSize >= windowSize {
		return nil, fmt.Errorf("%w: overlap size %d must be less than window size %d", ErrInvalidArgument, overlapSize, windowSize)
	}
	if text == "" {
		return nil, nil
	}

	runes := []rune(text)
	var windows []string
	start := 0

	for start < len(runes) {
		end := start + windowSize
		if end > len(runes) {
			end = len(runes)
		}
		windows = append(windows, string(runes[start:end]))

		if end == len(runes) {
			break
		}

		overlap := overlapSize
		if overlap > end-start {
			overlap = end - start
		}
		next := end - overlap
		if next <= start {
			break
		}
		start = next
	}

	return windows, nil
}

// Merge stitches translated chunks back into one text. For each consecutive
// pair it looks for the longest exact match (up to overlapSize runes) between
// the suffix of the accumulated result and the prefix of the next chunk, and
// drops the duplicated span. The match is greedy and exact; incidental
// repeated substrings in the translation can confuse it, which callers accept
// as a known limitation of the algorithm.
func Merge(chunks []string, overlapSize int) string {
	if len(chunks) == 0 {
		return ""
	}
	if len(chunks) == 1 {
		return chunks[0]
	}
	if overlapSize == 0 {
		return strings.Join(chunks, "")
	}

	var b strings.Builder
	b.WriteString(chunks[0])

	for _, chunk := range chunks[1:] {
		result := b.String()
		resultRunes := []rune(result)
		chunkRunes := []rune(chunk)

		max := overlapSize
		if len(resultRunes) < max {
			max = len(resultRunes)
		}
		if len(chunkRunes) < max {
			max = len(chunkRunes)
		}

		matched := false
		for n := max; n >= 1; n-- {
			if string(resultRunes[len(resultRunes)-n:]) == string(chunkRunes[:n]) {
				b.WriteString(Separator)
				b.WriteString(string(chunkRunes[n:]))
				matched = true
				break
			}
		}
		if !matched {
			b.WriteString(Separator)
			b.WriteString(chunk)
		}
	}

	return b.String()
}
