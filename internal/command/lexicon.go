package command

// Lexicon - the vocabulary of one recognition language. All entries are stored
// already normalized (lower case, no diacritics).
type Lexicon struct {
	// Numerals[n-1] holds the whole words that mean n.
	Numerals [9][]string

	// Center, Left, Right, Top and Bottom are matched as substrings.
	Center []string
	Left   []string
	Right  []string
	Top    []string
	Bottom []string
}

// Polish - the lexicon the game is played with.
var Polish = Lexicon{
	Numerals: [9][]string{
		{"jeden", "jedna", "jedynka"},
		{"dwa", "dwie", "dwojka"},
		{"trzy", "trojka"},
		{"cztery", "czworka"},
		{"piec", "piatka"},
		{"szesc", "szostka"},
		{"siedem", "siodemka"},
		{"osiem", "osemka"},
		{"dziewiec", "dziewiatka"},
	},
	// "srodk" alone would also match "srodkowy", which names an edge.
	Center: []string{"srodek", "srodku", "srodka", "centrum"},
	Left:   []string{"lewy", "lewa", "lewo", "lewe", "lewej"},
	Right:  []string{"prawy", "prawa", "prawo", "prawe", "prawej"},
	Top:    []string{"gor"},
	Bottom: []string{"dol"},
}
