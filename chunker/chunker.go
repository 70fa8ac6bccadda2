package chunker

import "errors"

var ErrInvalidChunkConfig = errors.New("chunk overlap must be non-negative and smaller than chunk size")

// Validate rejects a size/overlap pair that Split would refuse, so callers
// can fail before doing any remote work.
func Validate(max int, overlap int) error {
	if max <= 0 || overlap < 0 || overlap >= max {
		return ErrInvalidChunkConfig
	}
	return nil
}

// Split cuts text into segments of at most max characters, where each
// segment after the first starts overlap characters before the end of the
// previous one. Character boundaries only; dropping the first overlap
// characters of every segment after the first and concatenating yields the
// original text.
func Split(text string, max int, overlap int) ([]string, error) {
	if err := Validate(max, overlap); err != nil {
		return nil, err
	}

	runes := []rune(text)
	if len(runes) == 0 {
		return nil, nil
	}

	step := max - overlap

	var segments []string
	for start := 0; start < len(runes); start += step {
		end := start + max
		if end > len(runes) {
			end = len(runes)
		}
		segments = append(segments, string(runes[start:end]))
		if end == len(runes) {
			break
		}
	}

	return segments, nil
}
