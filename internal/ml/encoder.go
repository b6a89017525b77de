package ml

import (
	"fmt"
	"sort"

	"github.com/deckscore/deckscore/internal/common"
)

// LabelEncoder maps string categories to dense integer codes. Codes follow
// the lexicographic order of the classes so an encoder fitted twice on the
// same labels is identical.
type LabelEncoder struct {
	Classes []string `json:"classes"`
}

// FitEncoder learns the sorted unique classes from labels.
func FitEncoder(labels []string) *LabelEncoder {
	seen := make(map[string]struct{}, len(labels))
	classes := make([]string, 0, len(labels))
	for _, label := range labels {
		if _, ok := seen[label]; ok {
			continue
		}
		seen[label] = struct{}{}
		classes = append(classes, label)
	}
	sort.Strings(classes)
	return &LabelEncoder{Classes: classes}
}

// NumClasses returns the number of known classes.
func (e *LabelEncoder) NumClasses() int {
	return len(e.Classes)
}

// Encode converts labels to their integer codes. A label the encoder never
// saw is an error.
func (e *LabelEncoder) Encode(labels []string) ([]int, error) {
	index := make(map[string]int, len(e.Classes))
	for i, class := range e.Classes {
		index[class] = i
	}

	codes := make([]int, len(labels))
	for i, label := range labels {
		code, ok := index[label]
		if !ok {
			return nil, fmt.Errorf("%w: %q", common.ErrUnknownCategory, label)
		}
		codes[i] = code
	}
	return codes, nil
}

// Class returns the class name for a code.
func (e *LabelEncoder) Class(code int) string {
	if code < 0 || code >= len(e.Classes) {
		return ""
	}
	return e.Classes[code]
}
