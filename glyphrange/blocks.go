package glyphrange

// Block is a named, inclusive Unicode block.
type Block struct {
	Name  string
	First rune
	Last  rune
}

// Unicode blocks used by the language presets.
var (
	BasicLatin                  = Block{"Basic Latin", 0x0000, 0x007F}
	Latin1Supplement            = Block{"Latin-1 Supplement", 0x0080, 0x00FF}
	HangulJamo                  = Block{"Hangul Jamo", 0x1100, 0x11FF}
	GeneralPunctuation          = Block{"General Punctuation", 0x2000, 0x206F}
	CJKSymbolsAndPunctuation    = Block{"CJK Symbols and Punctuation", 0x3000, 0x303F}
	Hiragana                    = Block{"Hiragana", 0x3040, 0x309F}
	Katakana                    = Block{"Katakana", 0x30A0, 0x30FF}
	HangulCompatibilityJamo     = Block{"Hangul Compatibility Jamo", 0x3130, 0x318F}
	EnclosedCJKLettersAndMonths = Block{"Enclosed CJK Letters and Months", 0x3200, 0x32FF}
	CJKUnifiedIdeographsExtA    = Block{"CJK Unified Ideographs Extension A", 0x3400, 0x4DBF}
	CJKUnifiedIdeographs        = Block{"CJK Unified Ideographs", 0x4E00, 0x9FFF}
	HangulJamoExtendedA         = Block{"Hangul Jamo Extended-A", 0xA960, 0xA97F}
	HangulSyllables             = Block{"Hangul Syllables", 0xAC00, 0xD7AF}
	HangulJamoExtendedB         = Block{"Hangul Jamo Extended-B", 0xD7B0, 0xD7FF}
	PrivateUseArea              = Block{"Private Use Area", 0xE000, 0xF8FF}
	HalfwidthAndFullwidthForms  = Block{"Halfwidth and Fullwidth Forms", 0xFF00, 0xFFEF}
)

// Contains reports whether r lies in b.
func (b Block) Contains(r rune) bool { return b.First <= r && r <= b.Last }

func (b Block) String() string { return b.Name }
