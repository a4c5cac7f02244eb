// Comicrec - Comic Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/comicrec

package recommend

import (
	"math"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Vector is a sparse document vector keyed by vocabulary term index.
type Vector map[int]float64

// Vectorizer turns a corpus into one vector per document.
// Implementations must be stateless across calls: FitTransform learns its
// vocabulary from docs alone.
type Vectorizer interface {
	FitTransform(docs []string) ([]Vector, int)
}

// TFIDF is a term-frequency, inverse-document-frequency vectorizer with
// English stop-word removal, a vocabulary cap and L2-normalised rows.
type TFIDF struct {
	// MaxFeatures caps the vocabulary at the most frequent terms.
	MaxFeatures int
}

// NewTFIDF returns a vectorizer capped at MaxVocabulary terms.
func NewTFIDF() *TFIDF {
	return &TFIDF{MaxFeatures: MaxVocabulary}
}

// Tokenize splits text into lowercase terms of at least two letters,
// digits or underscores, after NFKC normalization. Stop words are kept.
func Tokenize(text string) []string {
	text = strings.ToLower(norm.NFKC.String(text))
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
	})

	tokens := fields[:0]
	for _, f := range fields {
		if len([]rune(f)) >= 2 {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

// FitTransform learns a vocabulary from docs and returns their vectors along
// with the vocabulary size.
func (t *TFIDF) FitTransform(docs []string) ([]Vector, int) {
	counts := make([]map[string]int, len(docs))
	corpusFreq := make(map[string]int)
	docFreq := make(map[string]int)

	for i, doc := range docs {
		tc := make(map[string]int)
		for _, tok := range Tokenize(doc) {
			if IsStopWord(tok) {
				continue
			}
			tc[tok]++
		}
		for term, c := range tc {
			corpusFreq[term] += c
			docFreq[term]++
		}
		counts[i] = tc
	}

	vocab := t.selectVocabulary(corpusFreq)

	n := float64(len(docs))
	idf := make([]float64, len(vocab))
	index := make(map[string]int, len(vocab))
	for i, term := range vocab {
		index[term] = i
		idf[i] = math.Log((1+n)/(1+float64(docFreq[term]))) + 1
	}

	vectors := make([]Vector, len(docs))
	for i, tc := range counts {
		v := make(Vector, len(tc))
		var norm2 float64
		for term, c := range tc {
			j, ok := index[term]
			if !ok {
				continue
			}
			w := float64(c) * idf[j]
			v[j] = w
			norm2 += w * w
		}
		if norm2 > 0 {
			l2 := math.Sqrt(norm2)
			for j := range v {
				v[j] /= l2
			}
		}
		vectors[i] = v
	}

	return vectors, len(vocab)
}

// selectVocabulary keeps the MaxFeatures terms with the highest corpus
// frequency, ties broken by term. The result is sorted by term.
func (t *TFIDF) selectVocabulary(freq map[string]int) []string {
	terms := make([]string, 0, len(freq))
	for term := range freq {
		terms = append(terms, term)
	}

	if t.MaxFeatures > 0 && len(terms) > t.MaxFeatures {
		sort.Slice(terms, func(i, j int) bool {
			if freq[terms[i]] != freq[terms[j]] {
				return freq[terms[i]] > freq[terms[j]]
			}
			return terms[i] < terms[j]
		})
		terms = terms[:t.MaxFeatures]
	}

	sort.Strings(terms)
	return terms
}
