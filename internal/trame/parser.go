package trame

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

// parserInstance is initialized once and reused. The configuration never
// changes and the goldmark parser is safe to share; per-call state lives
// in the reader passed to Parse.
var (
	parserInstance goldmark.Markdown
	parserOnce     sync.Once
)

func parser() goldmark.Markdown {
	parserOnce.Do(func() {
		parserInstance = goldmark.New(
			goldmark.WithExtensions(extension.Table),
		)
	})
	return parserInstance
}

// Parse builds a Trame from markdown source. Unrecognized block kinds
// become KindUnknown pieces instead of errors, so a document with exotic
// structure still yields a renderable sequence.
func Parse(origin string, source []byte) *Trame {
	root := parser().Parser().Parse(text.NewReader(source))

	t := &Trame{Origin: origin}
	for node := root.FirstChild(); node != nil; node = node.NextSibling() {
		t.Pieces = append(t.Pieces, pieceFromNode(node, source))
	}
	return t
}

// ParseFile reads and parses a markdown file.
func ParseFile(path string) (*Trame, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("trame: reading %s: %w", path, err)
	}
	return Parse(path, source), nil
}

func pieceFromNode(node ast.Node, source []byte) Piece {
	switch n := node.(type) {
	case *ast.Heading:
		return Piece{Kind: KindTitle, Level: n.Level, Text: inlineText(n, source)}
	case *ast.Paragraph:
		return Piece{Kind: KindParagraph, Text: rawLines(n, source)}
	case *ast.List:
		if n.IsOrdered() {
			return Piece{Kind: KindUnknown, Label: "ordered_list"}
		}
		return Piece{Kind: KindUnorderedList, Items: listItems(n, source)}
	case *ast.FencedCodeBlock:
		language := string(n.Language(source))
		kind := KindCode
		if language == "yaml" || language == "yml" {
			kind = KindYamlCode
		}
		return Piece{Kind: kind, Language: language, Code: rawLines(n, source)}
	case *ast.CodeBlock:
		return Piece{Kind: KindCode, Code: rawLines(n, source)}
	case *extast.Table:
		return tablePiece(n, source)
	default:
		return Piece{Kind: KindUnknown, Label: strings.ToLower(node.Kind().String())}
	}
}

// rawLines joins a node's source line segments, preserving inline markup
// exactly as written.
func rawLines(node ast.Node, source []byte) string {
	var sb strings.Builder
	lines := node.Lines()
	for i := 0; i < lines.Len(); i++ {
		segment := lines.At(i)
		sb.Write(segment.Value(source))
	}
	return strings.TrimRight(sb.String(), "\n")
}

// inlineText flattens a node's inline children to plain text.
func inlineText(node ast.Node, source []byte) string {
	var sb strings.Builder
	for child := node.FirstChild(); child != nil; child = child.NextSibling() {
		switch c := child.(type) {
		case *ast.Text:
			sb.Write(c.Segment.Value(source))
		case *ast.String:
			sb.Write(c.Value)
		default:
			sb.WriteString(inlineText(child, source))
		}
	}
	return sb.String()
}

func listItems(list *ast.List, source []byte) []string {
	items := make([]string, 0, list.ChildCount())
	for item := list.FirstChild(); item != nil; item = item.NextSibling() {
		// A list item wraps its text in a TextBlock or Paragraph.
		var sb strings.Builder
		for block := item.FirstChild(); block != nil; block = block.NextSibling() {
			if sb.Len() > 0 {
				sb.WriteString(" ")
			}
			sb.WriteString(inlineText(block, source))
		}
		items = append(items, sb.String())
	}
	return items
}

func tablePiece(table *extast.Table, source []byte) Piece {
	piece := Piece{Kind: KindTable}
	for row := table.FirstChild(); row != nil; row = row.NextSibling() {
		var cells []string
		for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
			cells = append(cells, inlineText(cell, source))
		}
		switch row.(type) {
		case *extast.TableHeader:
			piece.Head = append(piece.Head, cells)
		default:
			piece.Rows = append(piece.Rows, cells)
		}
	}
	return piece
}
