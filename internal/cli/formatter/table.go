package formatter

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

const tableColumnGap = 2

// RenderTable renders rows under a header line. Only the separator under
// the header is drawn; columns are split by whitespace.
func RenderTable(headers []string, rows [][]string) string {
	if len(headers) == 0 {
		return ""
	}
	cell := lipgloss.NewStyle().PaddingRight(tableColumnGap)
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(StyleDim).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderColumn(false).
		BorderHeader(true).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return StyleHeader.Inherit(cell)
			}
			return cell
		})
	return t.Render() + "\n"
}
