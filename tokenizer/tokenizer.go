// Copyright 2025 go-highway Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package tokenizer declares the text/token-id boundary the decode
// controller consumes (spec.md §6: "the engine does not introspect" whether
// the implementation is BPE or SentencePiece). It is an external
// collaborator's interface, not an implementation — tokenizer training and
// vocabulary construction are out of scope (spec.md §1).
package tokenizer

// Tokenizer converts between text and the token-id sequence the model's
// embedding table and vocabulary were trained against.
type Tokenizer interface {
	// Encode converts text into a sequence of token ids.
	Encode(text string) ([]int32, error)
	// Decode converts a sequence of token ids back into text.
	Decode(ids []int32) (string, error)
	// EOSID returns the end-of-sequence token id.
	EOSID() int32
}

// VocabTokenizer is a minimal greedy-longest-match Tokenizer built directly
// from a modelfile vocabulary (text, score) pairs, for callers that have no
// dedicated BPE/SentencePiece implementation wired in. Production
// deployments are expected to supply their own Tokenizer implementation
// instead.
type VocabTokenizer struct {
	idByText map[string]int32
	textByID []string
	eos      int32
}

// NewVocabTokenizer builds a VocabTokenizer from a flat vocabulary list
// where each entry's index is its token id.
func NewVocabTokenizer(vocab []string, eos int32) *VocabTokenizer {
	t := &VocabTokenizer{
		idByText: make(map[string]int32, len(vocab)),
		textByID: vocab,
		eos:      eos,
	}
	for id, text := range vocab {
		t.idByText[text] = int32(id)
	}
	return t
}

// Encode performs greedy longest-match tokenization over the vocabulary. A
// rune at which no vocabulary entry starts is skipped and emits no id; there
// is no byte-level fallback and no BPE merge schedule.
func (t *VocabTokenizer) Encode(text string) ([]int32, error) {
	runes := []rune(text)
	var out []int32
	for i := 0; i < len(runes); {
		matched := false
		for end := len(runes); end > i; end-- {
			candidate := string(runes[i:end])
			if id, ok := t.idByText[candidate]; ok {
				out = append(out, id)
				i = end
				matched = true
				break
			}
		}
		if !matched {
			i++
		}
	}
	return out, nil
}

// Decode concatenates each id's vocabulary text. Unknown ids are skipped.
func (t *VocabTokenizer) Decode(ids []int32) (string, error) {
	var out []byte
	for _, id := range ids {
		if id < 0 || int(id) >= len(t.textByID) {
			continue
		}
		out = append(out, t.textByID[id]...)
	}
	return string(out), nil
}

// EOSID returns the configured end-of-sequence token id.
func (t *VocabTokenizer) EOSID() int32 { return t.eos }
