package types

// Token is a single annotated token of a Doc.
//
// Text and Whitespace are set by the tokenizer; the lexical attributes
// (Lower, Norm, Shape and the Is* flags) are derived from Text. POS, Tag,
// Lemma and EntType are left empty unless a pipeline stage fills them.
type Token struct {
	Text       string
	Whitespace string // trailing whitespace, "" or " " in most cases
	Index      int    // position in Doc.Tokens
	Idx        int    // byte offset of Text in Doc.Text()

	Lower string
	Norm  string
	Shape string

	IsAlpha bool
	IsDigit bool
	IsPunct bool
	IsSpace bool
	IsTitle bool
	IsUpper bool
	IsLower bool
	LikeNum bool

	POS     string
	Tag     string
	Lemma   string
	EntType string
}
