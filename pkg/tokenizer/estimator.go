package tokenizer

import "unicode/utf8"

// charsPerToken is the usual rule of thumb for English prose on BPE
// tokenizers. The estimate is advisory: limit checks built on it are
// approximate, not byte-exact against any provider's tokenizer.
const charsPerToken = 4

// Estimate approximates the number of model tokens in text.
func Estimate(text string) int {
	n := utf8.RuneCountInString(text)
	if n == 0 {
		return 0
	}
	return (n + charsPerToken - 1) / charsPerToken
}
