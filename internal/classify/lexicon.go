package classify

// Version identifies the embedded lexicon build. Bump it whenever the
// term tables below change: classifications are deterministic per
// version, so stored verdicts from older builds stay comparable among
// themselves.
const Version = "fp-lex/2025.08"

// termScores holds the multilingual sentiment lexicon. Scores live in
// [-1, 1]; English, French and Kinyarwanda terms share one table since
// token lookup never needs to know the language.
var termScores = map[string]float64{
	// English, positive.
	"good": 0.6, "great": 0.8, "excellent": 0.9, "amazing": 0.8,
	"like": 0.5, "love": 0.8, "happy": 0.7, "glad": 0.6,
	"affordable": 0.7, "cheap": 0.4, "fair": 0.5, "reasonable": 0.5,
	"improved": 0.6, "improvement": 0.6, "better": 0.5, "best": 0.8,
	"convenient": 0.6, "reliable": 0.7, "comfortable": 0.6,
	"fast": 0.5, "easy": 0.5, "smooth": 0.5, "clean": 0.5,
	"safe": 0.6, "helpful": 0.6, "thanks": 0.5, "thank": 0.5,
	"welcome": 0.4, "praise": 0.6, "support": 0.4, "progress": 0.5,

	// English, negative.
	"bad": -0.6, "terrible": -0.9, "awful": -0.9, "horrible": -0.9,
	"hate": -0.8, "angry": -0.7, "upset": -0.6, "annoying": -0.6,
	"expensive": -0.5, "costly": -0.5, "unaffordable": -0.8,
	"overpriced": -0.7, "unfair": -0.7, "worse": -0.6, "worst": -0.9,
	"slow": -0.4, "late": -0.4, "delay": -0.5, "delayed": -0.5,
	"crowded": -0.5, "overcrowded": -0.7, "dirty": -0.5,
	"unsafe": -0.7, "dangerous": -0.7, "broken": -0.6,
	"problem": -0.4, "problems": -0.4, "complaint": -0.5,
	"struggle": -0.5, "struggling": -0.5, "poor": -0.5,
	"disappointed": -0.6, "disappointing": -0.6, "refuse": -0.5,
	"scam": -0.85, "fraud": -0.85, "fake": -0.7, "hoax": -0.8,
	"corrupt": -0.8, "corruption": -0.8, "lie": -0.7, "lies": -0.7,
	"cheat": -0.7, "cheating": -0.7, "steal": -0.7, "stealing": -0.7,
	"robbery": -0.8, "ripoff": -0.8, "exploitation": -0.7,

	// French, positive.
	"bon": 0.6, "bonne": 0.6, "bien": 0.5, "super": 0.7,
	"formidable": 0.8, "abordable": 0.7, "abordables": 0.7,
	"juste": 0.4, "équitable": 0.5, "équitables": 0.5,
	"content": 0.6, "contents": 0.6, "heureux": 0.7,
	"rapide": 0.5, "facile": 0.5, "propre": 0.5, "fiable": 0.7,
	"merci": 0.5, "bravo": 0.6,

	// French, negative.
	"mauvais": -0.6, "mauvaise": -0.6, "cher": -0.5, "chère": -0.5,
	"chers": -0.5, "chères": -0.5, "coûteux": -0.6, "lent": -0.4,
	"lente": -0.4, "retard": -0.5, "sale": -0.5, "dangereux": -0.7,
	"injuste": -0.7, "colère": -0.6, "déçu": -0.6, "déçue": -0.6,
	"arnaque": -0.85, "escroquerie": -0.85, "faux": -0.7,
	"fausse": -0.7, "mensonge": -0.7, "mensonges": -0.7,

	// Kinyarwanda, positive.
	"byiza": 0.7, "mwiza": 0.7, "neza": 0.6, "ndishimye": 0.8,
	"twishimye": 0.8, "murakoze": 0.5, "bihendutse": 0.7,
	"byoroshye": 0.5, "yihuta": 0.5, "ishimwe": 0.6,

	// Kinyarwanda, negative.
	"bibi": -0.7, "bihenze": -0.7, "birahenze": -0.8,
	"ntibyiza": -0.7, "ikibazo": -0.5, "ibibazo": -0.5,
	"ubujura": -0.8, "uburiganya": -0.8, "ikinyoma": -0.8,
	"ibinyoma": -0.8, "guhenda": -0.7, "bahenda": -0.7,
	"twarakaye": -0.7, "umujinya": -0.6, "akaga": -0.6,
	"gutinda": -0.5, "bitinda": -0.5,
}

// boosters amplify the nearest scored term. "cyane" and friends follow
// the word they modify in Kinyarwanda, which is why the scorer also
// looks one token ahead.
var boosters = map[string]float64{
	"very": 0.3, "really": 0.3, "extremely": 0.4, "so": 0.2,
	"too": 0.3, "totally": 0.3, "absolutely": 0.4,
	"très": 0.3, "trop": 0.3, "vraiment": 0.3, "tellement": 0.3,
	"cyane": 0.3, "rwose": 0.3,
}

// negators flip a following term toward the opposite polarity. The flip
// is partial: "not good" lands weaker than "bad".
var negators = map[string]bool{
	"not": true, "no": true, "never": true, "none": true,
	"nothing": true, "neither": true, "nor": true, "cannot": true,
	"can't": true, "won't": true, "don't": true, "doesn't": true,
	"didn't": true, "isn't": true, "aren't": true, "wasn't": true,
	"ne": true, "pas": true, "jamais": true, "aucun": true,
	"aucune": true, "sans": true,
	"nta": true, "ntabwo": true, "oya": true,
}
