// Package vectorizer turns the translated corpus into the shared TF-IDF
// feature table every classifier trains and predicts on.
package vectorizer

import (
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/deckscore/deckscore/internal/common"
	"github.com/deckscore/deckscore/internal/corpus"
	"github.com/deckscore/deckscore/internal/model"
)

// Config controls vocabulary construction.
type Config struct {
	// NGramMin and NGramMax bound the n-gram sizes included in the
	// vocabulary, inclusive.
	NGramMin int
	NGramMax int
	// MinDocFreq drops terms that appear in fewer documents than this.
	MinDocFreq int
	// MaxFeatures caps the vocabulary, keeping the terms with the highest
	// total corpus frequency. Zero means no cap.
	MaxFeatures int
}

// DefaultConfig returns the vocabulary settings used by the pipeline:
// unigrams through trigrams, terms in at least two documents, at most
// 7000 columns.
func DefaultConfig() Config {
	return Config{
		NGramMin:    1,
		NGramMax:    3,
		MinDocFreq:  2,
		MaxFeatures: 7000,
	}
}

// Vectorizer builds TF-IDF feature tables.
type Vectorizer struct {
	cfg Config
}

// New creates a Vectorizer with the given config.
func New(cfg Config) *Vectorizer {
	if cfg.NGramMin <= 0 {
		cfg.NGramMin = 1
	}
	if cfg.NGramMax < cfg.NGramMin {
		cfg.NGramMax = cfg.NGramMin
	}
	if cfg.MinDocFreq <= 0 {
		cfg.MinDocFreq = 1
	}
	return &Vectorizer{cfg: cfg}
}

// FitTransform learns the vocabulary from docs and returns their weighted,
// row-normalized term matrix. Column order is the lexicographically sorted
// vocabulary, so two runs over the same corpus produce identical tables.
func (v *Vectorizer) FitTransform(docs []corpus.Document) (*model.FeatureTable, error) {
	if len(docs) == 0 {
		return nil, common.ErrEmptyCorpus
	}

	counts := make([]map[string]int, len(docs))
	docFreq := make(map[string]int)
	corpusFreq := make(map[string]int)
	for i, doc := range docs {
		terms := v.termCounts(doc.Text)
		counts[i] = terms
		for term, c := range terms {
			docFreq[term]++
			corpusFreq[term] += c
		}
	}

	vocabulary := v.buildVocabulary(docFreq, corpusFreq)
	if len(vocabulary) == 0 {
		return nil, common.ErrNoFeatures
	}

	// Smoothed inverse document frequency.
	n := float64(len(docs))
	idf := make([]float64, len(vocabulary))
	for j, term := range vocabulary {
		idf[j] = math.Log((1+n)/(1+float64(docFreq[term]))) + 1
	}

	table := model.NewFeatureTable(vocabulary)
	for i, doc := range docs {
		row := make([]float64, len(vocabulary))
		for j, term := range vocabulary {
			if c, ok := counts[i][term]; ok {
				row[j] = float64(c) * idf[j]
			}
		}
		normalize(row)
		if err := table.Append(doc.ID, row); err != nil {
			return nil, err
		}
	}

	return table, nil
}

// termCounts tokenizes one document and counts each n-gram.
func (v *Vectorizer) termCounts(text string) map[string]int {
	tokens := tokenize(text)
	terms := make(map[string]int)
	for n := v.cfg.NGramMin; n <= v.cfg.NGramMax; n++ {
		for i := 0; i+n <= len(tokens); i++ {
			terms[strings.Join(tokens[i:i+n], " ")]++
		}
	}
	return terms
}

// buildVocabulary applies the document-frequency floor, then the corpus
// frequency cap, and returns the surviving terms sorted lexicographically.
// Cap ties are broken toward the lexicographically smaller term.
func (v *Vectorizer) buildVocabulary(docFreq, corpusFreq map[string]int) []string {
	vocabulary := make([]string, 0, len(docFreq))
	for term, df := range docFreq {
		if df >= v.cfg.MinDocFreq {
			vocabulary = append(vocabulary, term)
		}
	}

	if v.cfg.MaxFeatures > 0 && len(vocabulary) > v.cfg.MaxFeatures {
		sort.Slice(vocabulary, func(i, j int) bool {
			fi, fj := corpusFreq[vocabulary[i]], corpusFreq[vocabulary[j]]
			if fi != fj {
				return fi > fj
			}
			return vocabulary[i] < vocabulary[j]
		})
		vocabulary = vocabulary[:v.cfg.MaxFeatures]
	}

	sort.Strings(vocabulary)
	return vocabulary
}

// tokenize lowercases the text and splits it into word-character runs of at
// least two runes. Letters, digits and underscore count as word characters,
// accented letters included.
func tokenize(text string) []string {
	var tokens []string
	var current []rune
	flush := func() {
		if len(current) >= 2 {
			tokens = append(tokens, string(current))
		}
		current = current[:0]
	}
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			current = append(current, r)
			continue
		}
		flush()
	}
	flush()
	return tokens
}

// normalize scales a row to unit Euclidean length. All-zero rows stay zero.
func normalize(row []float64) {
	var sum float64
	for _, v := range row {
		sum += v * v
	}
	if sum == 0 {
		return
	}
	norm := math.Sqrt(sum)
	for j := range row {
		row[j] /= norm
	}
}
