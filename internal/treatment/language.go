package treatment

import (
	"strings"

	"github.com/abadojack/whatlanggo"
)

// Detection summarizes the language check run on one deck before it joins
// the corpus.
type Detection struct {
	Language         string
	NeedsTranslation bool
	Reliable         bool
}

// DetectLanguage reports the most likely language of text and whether the
// deck should go through the Translator. Empty text and text with no
// identifiable script (digits only, for instance) skip translation.
func DetectLanguage(text string) Detection {
	if strings.TrimSpace(text) == "" {
		return Detection{Language: "unknown"}
	}

	info := whatlanggo.Detect(text)
	if info.Lang < 0 {
		return Detection{Language: "unknown"}
	}
	return Detection{
		Language:         info.Lang.String(),
		NeedsTranslation: info.Lang != whatlanggo.Eng,
		Reliable:         info.IsReliable(),
	}
}
