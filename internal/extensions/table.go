package extensions

import (
	"github.com/DragonRuins/hubdoc/internal/extension"
	"github.com/DragonRuins/hubdoc/internal/model"
)

// Tables declares table, tableRow, tableHeader, and tableCell.
type Tables struct {
	extension.Base
}

func (Tables) Name() string { return "tables" }

func (Tables) Nodes() []*model.NodeSpec {
	return []*model.NodeSpec{
		{
			Name:    "table",
			Group:   "block",
			Content: "tableRow+",
			ToHTML: func(attrs model.AttrMap, inner string) string {
				return "<table><tbody>" + inner + "</tbody></table>"
			},
			FromHTML: []*model.ParseRule{{Tag: "table"}},
		},
		{
			Name:    "tableRow",
			Content: "(tableCell|tableHeader)+",
			ToHTML: func(attrs model.AttrMap, inner string) string {
				return "<tr>" + inner + "</tr>"
			},
			FromHTML: []*model.ParseRule{{Tag: "tr"}},
		},
		{
			Name:     "tableHeader",
			Content:  "block+",
			Defining: true,
			ToHTML: func(attrs model.AttrMap, inner string) string {
				return "<th>" + inner + "</th>"
			},
			FromHTML: []*model.ParseRule{{Tag: "th"}},
		},
		{
			Name:     "tableCell",
			Content:  "block+",
			Defining: true,
			ToHTML: func(attrs model.AttrMap, inner string) string {
				return "<td>" + inner + "</td>"
			},
			FromHTML: []*model.ParseRule{{Tag: "td"}},
		},
	}
}

func (Tables) Commands() map[string]extension.Command {
	return map[string]extension.Command{
		// insertTable inserts an empty table with the given rows and columns
		// after the textblock around the selection.
		"insertTable": func(st extension.State, args ...any) *model.Transaction {
			rows, cols := 2, 2
			if len(args) > 0 {
				if n, ok := args[0].(int); ok && n > 0 {
					rows = n
				}
			}
			if len(args) > 1 {
				if n, ok := args[1].(int); ok && n > 0 {
					cols = n
				}
			}
			pos, node, ok := textblockAround(st, st.Sel.From)
			if !ok {
				return nil
			}
			table := buildTable(st.Schema, rows, cols)
			return model.NewTransaction(st.Doc).InsertNode(pos+node.NodeSize(), table)
		},
	}
}

func buildTable(schema *model.Schema, rows, cols int) *model.Node {
	var rowNodes []*model.Node
	for r := 0; r < rows; r++ {
		cellType := "tableCell"
		if r == 0 {
			cellType = "tableHeader"
		}
		var cells []*model.Node
		for c := 0; c < cols; c++ {
			paragraph := schema.MustNode("paragraph", nil)
			cells = append(cells, schema.MustNode(cellType, nil, paragraph))
		}
		rowNodes = append(rowNodes, schema.MustNode("tableRow", nil, cells...))
	}
	return schema.MustNode("table", nil, rowNodes...)
}
