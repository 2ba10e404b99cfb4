package geo

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Word level rewrites applied before comparing a city name against a market
// area display name. Market names abbreviate freely ("Ft. Wayne Mkt",
// "N Chicago"), city records do not.
var abbreviationExpansions = map[string]string{
	"st":  "saint",
	"ste": "sainte",
	"ft":  "fort",
	"mt":  "mount",
	"n":   "north",
	"s":   "south",
	"e":   "east",
	"w":   "west",
}

// Trailing words that carry no geography, dropped entirely.
var droppedSuffixes = map[string]bool{
	"market": true,
	"mkt":    true,
	"area":   true,
}

var punctuationReplacer = strings.NewReplacer(".", "", ",", "", "'", "", "-", " ", "/", " ")

var titleCaser = cases.Title(language.AmericanEnglish)

// NormalizeCityName reduces a city or market display name to a canonical
// comparison form: lower case, punctuation stripped, common freight
// abbreviations expanded, noise suffixes removed. Pure function, no state.
func NormalizeCityName(name string) string {
	cleaned := punctuationReplacer.Replace(strings.ToLower(strings.TrimSpace(name)))
	words := strings.Fields(cleaned)

	// Drop trailing noise words first so "Cincinnati Mkt" == "Cincinnati".
	for len(words) > 0 && droppedSuffixes[words[len(words)-1]] {
		words = words[:len(words)-1]
	}

	for i, word := range words {
		if expanded, ok := abbreviationExpansions[word]; ok {
			words[i] = expanded
		}
	}
	return strings.Join(words, " ")
}

// MarketNameMatches reports whether a city name and a market area display
// name refer to the same place once both are normalized.
func MarketNameMatches(cityName, marketName string) bool {
	normalized := NormalizeCityName(cityName)
	return normalized != "" && normalized == NormalizeCityName(marketName)
}

// DisplayCityName renders a city name in canonical title case for the output
// file regardless of how the reference data or the broker spelled it.
func DisplayCityName(name string) string {
	return titleCaser.String(strings.ToLower(strings.TrimSpace(name)))
}
