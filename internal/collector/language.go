package collector

import (
	"strings"

	"github.com/mkamanzi/farepulse/internal/model"
)

// Kinyarwanda markers are distinctive enough that one hit decides the
// language. The French function words are common enough to need two.
var (
	kinyarwandaWords = map[string]bool{
		"ubus": true, "ikintu": true, "kuri": true,
		"ndishimye": true, "cyane": true, "mwiza": true,
	}
	frenchWords = map[string]bool{
		"le": true, "la": true, "les": true, "un": true,
		"une": true, "des": true, "est": true, "sont": true,
	}
)

// DetectLanguage guesses the language of a piece of commentary from
// marker words. Two distinct French words are required so a stray loan
// word does not flip a sentence; English is the default.
func DetectLanguage(text string) model.Language {
	frenchHits := map[string]bool{}
	for _, word := range strings.Fields(strings.ToLower(text)) {
		word = strings.Trim(word, ".,!?;:\"'()")
		if kinyarwandaWords[word] {
			return model.LanguageKinyarwanda
		}
		if frenchWords[word] {
			frenchHits[word] = true
		}
	}
	if len(frenchHits) >= 2 {
		return model.LanguageFrench
	}
	return model.LanguageEnglish
}
