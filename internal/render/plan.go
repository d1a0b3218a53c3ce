package render

import (
	"fmt"
	"os"

	"trameserve/internal/trame"
)

// Template selectors. The rendering collaborator resolves each one to a
// fragment; SelectorFallback is what unknown piece kinds degrade to.
const (
	SelectorTitle         = "piece_title"
	SelectorParagraph     = "piece_paragraph"
	SelectorUnorderedList = "piece_unordered_list"
	SelectorCode          = "piece_code"
	SelectorYamlCode      = "piece_yaml_code"
	SelectorTable         = "piece_table"
	SelectorFallback      = "piece_unknown"
)

// PlanItem pairs a template selector with the data that template needs.
// Plans are ephemeral: built per request and discarded.
type PlanItem struct {
	Selector string `json:"template_selector"`
	Data     any    `json:"data"`
}

type TitleData struct {
	Level int    `json:"level"`
	Text  string `json:"text"`
}

type ParagraphData struct {
	// Raw inline markup, preserved verbatim.
	Text string `json:"text"`
}

type ListData struct {
	Items []string `json:"items"`
}

type CodeData struct {
	Language string `json:"language,omitempty"`
	Code     string `json:"code"`
}

type TableData struct {
	Head [][]string `json:"thead_rows"`
	Rows [][]string `json:"tbody_rows"`
}

type UnknownData struct {
	Label string `json:"piece_type"`
}

// BuildPlan converts a parsed document into its ordered render plan. It
// never fails: pieces whose kind it does not recognize become fallback
// items so a partially-exotic document still renders.
func BuildPlan(t *trame.Trame) []PlanItem {
	plan := make([]PlanItem, 0, len(t.Pieces))
	for _, piece := range t.Pieces {
		plan = append(plan, planItem(piece))
	}
	return plan
}

func planItem(piece trame.Piece) PlanItem {
	switch piece.Kind {
	case trame.KindTitle:
		return PlanItem{Selector: SelectorTitle, Data: TitleData{Level: piece.Level, Text: piece.Text}}
	case trame.KindParagraph:
		return PlanItem{Selector: SelectorParagraph, Data: ParagraphData{Text: piece.Text}}
	case trame.KindUnorderedList:
		return PlanItem{Selector: SelectorUnorderedList, Data: ListData{Items: piece.Items}}
	case trame.KindCode:
		return PlanItem{Selector: SelectorCode, Data: CodeData{Language: piece.Language, Code: piece.Code}}
	case trame.KindYamlCode:
		return PlanItem{Selector: SelectorYamlCode, Data: CodeData{Language: piece.Language, Code: piece.Code}}
	case trame.KindTable:
		return PlanItem{Selector: SelectorTable, Data: TableData{Head: piece.Head, Rows: piece.Rows}}
	default:
		label := piece.Label
		if label == "" {
			label = piece.Kind.String()
		}
		return PlanItem{Selector: SelectorFallback, Data: UnknownData{Label: label}}
	}
}

// BuildPlanFromMarkdown parses raw markdown source and builds its plan.
// The source goes through a scratch file so parsing exercises the same
// path as file-backed documents; the scratch file is removed on every
// exit path, parser failure included.
func BuildPlanFromMarkdown(source string) ([]PlanItem, int, error) {
	scratch, err := os.CreateTemp("", "trame-*.md")
	if err != nil {
		return nil, 0, fmt.Errorf("render: creating scratch file: %w", err)
	}
	defer os.Remove(scratch.Name())

	if _, err := scratch.WriteString(source); err != nil {
		scratch.Close()
		return nil, 0, fmt.Errorf("render: writing scratch file: %w", err)
	}
	if err := scratch.Close(); err != nil {
		return nil, 0, fmt.Errorf("render: closing scratch file: %w", err)
	}

	t, err := trame.ParseFile(scratch.Name())
	if err != nil {
		return nil, 0, err
	}
	return BuildPlan(t), t.PieceCount(), nil
}
