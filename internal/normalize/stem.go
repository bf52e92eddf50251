package normalize

import "strings"

// Inflectional endings stripped by the stemmer, longest first so that a
// longer ending wins over its suffixes (e.g. "иями" before "ями" before "и").
// The list covers common Russian noun, adjective, and verb endings.
var russianEndings = []string{
	"иями", "ями", "ами", "иях",
	"ого", "его", "ому", "ему", "ыми", "ими",
	"ешь", "ишь", "ете", "ите", "ует", "уют",
	"ать", "ять", "еть", "ить", "оть", "уть",
	"ией", "ая", "яя", "ое", "ее", "ые", "ие", "ых", "их", "ый", "ий",
	"ей", "ой", "ем", "им", "ым", "ом", "ах", "ях", "ам", "ям",
	"ет", "ит", "ут", "ют", "ат", "ят", "ал", "ял", "ил", "ыл",
	"ов", "ев", "ия", "ье", "ья", "ию", "ью",
	"а", "я", "о", "е", "и", "ы", "у", "ю", "ь", "й",
}

// minStemLen is the minimum number of runes a stem keeps. Stripping below
// this would collapse short distinct words onto one another.
const minStemLen = 3

// stemToken reduces a single token to an approximate base form by stripping
// one inflectional ending. Non-Russian tokens (Latin, digits) pass through
// unchanged, as do tokens too short to stem safely.
func stemToken(token string) string {
	token = strings.ReplaceAll(token, "ё", "е")

	runes := []rune(token)
	if len(runes) <= minStemLen {
		return token
	}
	if !isCyrillic(runes[0]) {
		return token
	}

	for _, ending := range russianEndings {
		if !strings.HasSuffix(token, ending) {
			continue
		}
		stem := runes[:len(runes)-len([]rune(ending))]
		if len(stem) < minStemLen {
			continue
		}
		return string(stem)
	}
	return token
}

// isCyrillic reports whether r is a Cyrillic letter.
func isCyrillic(r rune) bool {
	return (r >= 'а' && r <= 'я') || (r >= 'А' && r <= 'Я') || r == 'ё' || r == 'Ё'
}
