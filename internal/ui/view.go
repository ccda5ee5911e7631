package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// paneSizes returns the inner sizes of the list and detail panes.
func (m Model) paneSizes() (listW, listH, detailW, detailH int) {
	bodyH := maxInt(4, m.height-headerHeight-footerHeight)
	if m.width < LayoutCompactWidth {
		listH = maxInt(1, bodyH/2-2)
		detailH = maxInt(1, bodyH-bodyH/2-2)
		listW = maxInt(10, m.width-2)
		return listW, listH, listW, detailH
	}
	outerList := maxInt(minListWidth, int(float64(m.width)*listWidthRatio))
	listW = outerList - 2
	detailW = maxInt(10, m.width-outerList-2)
	listH = bodyH - 2
	return listW, listH, detailW, listH
}

// layout resizes the detail viewport after a window change.
func (m *Model) layout() {
	_, _, w, h := m.paneSizes()
	m.detail.Width = w
	m.detail.Height = h
	m.renderer = nil
	m.updateDetail()
}

func (m Model) renderMain() string {
	styles := m.theme.Styles()
	listW, listH, detailW, detailH := m.paneSizes()

	list := styles.FocusPane.Render(m.renderList(listW, listH))
	detail := styles.Pane.Width(detailW).Height(detailH).Render(m.detail.View())

	var body string
	if m.width < LayoutCompactWidth {
		body = lipgloss.JoinVertical(lipgloss.Left, list, detail)
	} else {
		body = lipgloss.JoinHorizontal(lipgloss.Top, list, detail)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		body,
		m.renderFooter(),
	)
}

// renderFooter shows the status message, the running action or key hints.
func (m Model) renderFooter() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	var content string
	switch {
	case m.busy != "" && m.status == "":
		content = bg.Render(m.spinner.View(), styles.AccentText) + bg.Space() +
			bg.Render(m.busy+"...", styles.Text)
	case m.status != "":
		style := styles.SuccessText
		if m.statusErr {
			style = styles.DangerText
		}
		content = bg.Render(truncate(singleLine(m.status), m.width-4), style)
	default:
		h := m.help
		h.Width = maxInt(10, m.width-2)
		h.Styles.ShortKey = styles.AccentText
		h.Styles.ShortDesc = styles.MutedText
		h.Styles.ShortSeparator = styles.FaintText
		h.Styles.Ellipsis = styles.FaintText
		content = h.ShortHelpView(m.keys.ShortHelp())
	}
	return styles.Footer.Width(m.width).MaxHeight(footerHeight).Render(content)
}
