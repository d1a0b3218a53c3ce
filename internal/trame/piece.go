package trame

// Kind discriminates the closed set of structural piece variants. Code
// that dispatches on it switches exhaustively and treats anything else
// as KindUnknown rather than failing.
type Kind int

const (
	KindUnknown Kind = iota
	KindTitle
	KindParagraph
	KindUnorderedList
	KindCode
	KindYamlCode
	KindTable
)

func (k Kind) String() string {
	switch k {
	case KindTitle:
		return "title"
	case KindParagraph:
		return "paragraph"
	case KindUnorderedList:
		return "unordered_list"
	case KindCode:
		return "code"
	case KindYamlCode:
		return "yaml_code"
	case KindTable:
		return "table"
	default:
		return "unknown"
	}
}

// Piece is one structural unit of a document. Kind selects which of the
// remaining fields are meaningful.
type Piece struct {
	Kind Kind

	// KindTitle
	Level int

	// KindTitle, KindParagraph. Paragraph text keeps its inline markup
	// verbatim; downstream consumers decide how to render it.
	Text string

	// KindUnorderedList
	Items []string

	// KindCode, KindYamlCode
	Language string
	Code     string

	// KindTable. Head may be empty; a table is allowed to have zero
	// header rows.
	Head [][]string
	Rows [][]string

	// KindUnknown: the source node kind, for a visible fallback.
	Label string
}

// Trame is a parsed document: an ordered sequence of pieces plus the
// origin it was read from. It is never persisted; the markdown source
// is the durable form and parsing is recomputed on demand.
type Trame struct {
	Origin string
	Pieces []Piece
}

// PieceCount reports the number of structural pieces.
func (t *Trame) PieceCount() int {
	return len(t.Pieces)
}
