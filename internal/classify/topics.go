package classify

import "sort"

// topicKeywords maps each curated topic to the tokens that tag it.
// Keywords are matched as whole lowercase tokens, so the table carries
// the English, French and Kinyarwanda surface forms side by side.
var topicKeywords = map[string][]string{
	"fares": {
		"fare", "fares", "tariff", "tariffs", "price", "prices",
		"cost", "costs", "expensive", "cheap", "affordable",
		"tarif", "tarifs", "prix", "cher", "chers", "chère",
		"amafaranga", "igiciro", "ibiciro", "bihenze", "birahenze",
		"bihendutse",
	},
	"routes": {
		"route", "routes", "distance", "kilometre", "kilometres",
		"kilometer", "km", "stop", "stops", "trajet", "ligne",
		"umuhanda", "inzira",
	},
	"payment": {
		"payment", "payments", "pay", "card", "cards", "tap",
		"cashless", "momo", "paiement", "carte", "kwishyura",
		"ikarita",
	},
	"operators": {
		"operator", "operators", "driver", "drivers", "conductor",
		"company", "bus", "buses", "taxi", "moto", "chauffeur",
		"compagnie", "umushoferi", "abashoferi", "ubus",
	},
	"regulator": {
		"rura", "regulator", "ministry", "minister", "government",
		"policy", "ministre", "gouvernement", "leta", "guverinoma",
	},
	"service-quality": {
		"service", "delay", "delays", "delayed", "late", "crowded",
		"overcrowded", "schedule", "waiting", "queue", "comfort",
		"comfortable", "retard", "gutinda", "bitinda",
	},
	"safety": {
		"safety", "safe", "unsafe", "accident", "accidents",
		"crash", "danger", "dangerous", "dangereux", "sécurité",
		"umutekano", "impanuka",
	},
	"fraud": {
		"scam", "scams", "fraud", "fake", "hoax", "rumor",
		"rumour", "rumors", "rumours", "lies", "corruption",
		"overcharge", "overcharging", "arnaque", "escroquerie",
		"faux", "mensonge", "mensonges", "uburiganya", "ikinyoma",
		"ibinyoma", "guhenda", "ubujura",
	},
}

// keywordTopic inverts topicKeywords for token lookup. A keyword tags
// exactly one topic.
var keywordTopic = func() map[string]string {
	out := make(map[string]string)
	for topic, words := range topicKeywords {
		for _, w := range words {
			out[w] = topic
		}
	}
	return out
}()

// AllTopics lists the curated topics in alphabetical order.
func AllTopics() []string {
	out := make([]string, 0, len(topicKeywords))
	for topic := range topicKeywords {
		out = append(out, topic)
	}
	sort.Strings(out)
	return out
}

// ExtractTopics returns the sorted set of topics whose keywords appear
// among the tokens. Nil when nothing matches.
func ExtractTopics(tokens []string) []string {
	var seen map[string]bool
	for _, tok := range tokens {
		topic, ok := keywordTopic[tok]
		if !ok {
			continue
		}
		if seen == nil {
			seen = make(map[string]bool)
		}
		seen[topic] = true
	}
	if len(seen) == 0 {
		return nil
	}
	out := make([]string, 0, len(seen))
	for topic := range seen {
		out = append(out, topic)
	}
	sort.Strings(out)
	return out
}
