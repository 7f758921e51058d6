package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/kingrea/storefront/internal/catalog"
	"github.com/kingrea/storefront/internal/storefront"
)

var (
	accentColor = lipgloss.Color("#FF6B6B")
	linkColor   = lipgloss.Color("#5B8DEF")
	mutedColor  = lipgloss.Color("#888888")
	dimColor    = lipgloss.Color("#AAAAAA")
	borderColor = lipgloss.Color("#444444")

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(borderColor).
			Padding(0, 1)
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(linkColor)
	mutedStyle    = lipgloss.NewStyle().Foreground(mutedColor)
	dimStyle      = lipgloss.NewStyle().Foreground(dimColor)
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(accentColor)
	priceStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#7BD88F"))
)

// View renders the current state to a string.
func (a *App) View() string {
	width := a.width
	if width <= 0 {
		width = 100
	}
	rightWidth := max(32, width/3)
	leftWidth := width - rightWidth - 4
	if leftWidth < 40 {
		leftWidth = width - 4
		rightWidth = 0
	}

	var main string
	if draft, ok := a.store.Draft(); ok {
		main = a.renderItemView(draft, leftWidth-4)
	} else {
		main = a.renderCatalog(leftWidth - 4)
	}
	leftBox := panelStyle.Width(max(20, leftWidth)).Render(main)
	var body string
	if rightWidth > 0 {
		cartBox := panelStyle.Width(max(20, rightWidth)).Render(a.renderCart())
		body = lipgloss.JoinHorizontal(lipgloss.Top, leftBox, cartBox)
	} else {
		body = lipgloss.JoinVertical(lipgloss.Left, leftBox, panelStyle.Render(a.renderCart()))
	}

	sections := []string{
		a.renderHeader(),
		a.renderBanner(),
		a.search.View(),
		a.renderTopicStrip(),
		body,
	}
	if logPanel := a.renderLogPanel(); logPanel != "" {
		sections = append(sections, logPanel)
	}
	sections = append(sections, a.help.View(a.currentHelp()), a.renderStatusLine())
	return strings.Join(sections, "\n")
}

func (a *App) currentHelp() contextHelp {
	switch {
	case a.focus == focusSearch:
		return a.keys.searchHelp()
	case a.store.HasDraft():
		return a.keys.modalHelp()
	case a.focus == focusCart:
		return a.keys.cartHelp()
	}
	return a.keys.catalogHelp()
}

func (a *App) renderHeader() string {
	brand := lipgloss.NewStyle().Bold(true).Foreground(accentColor).Render("▣ STOREFRONT")
	nav := []string{
		lipgloss.NewStyle().Bold(true).Underline(true).Render("Menu"),
		mutedStyle.Render("Entrar"),
		mutedStyle.Render("Contato"),
	}
	return brand + "   " + strings.Join(nav, "   ")
}

func (a *App) renderBanner() string {
	venue := a.store.Venue()
	switch {
	case venue.HasBanner():
		return dimStyle.Render("Banner · " + venue.BannerImage)
	case a.venuePending:
		return dimStyle.Render(a.spinner.View() + " loading banner")
	}
	return mutedStyle.Render("No banner")
}

func (a *App) renderTopicStrip() string {
	topics := a.store.Menu().Topics
	if len(topics) == 0 {
		return ""
	}
	names := make([]string, 0, len(topics))
	for _, topic := range topics {
		label := topic.Name
		if a.store.IsExpanded(topic.ID) {
			names = append(names, selectedStyle.Render(label))
			continue
		}
		names = append(names, label)
	}
	return strings.Join(names, mutedStyle.Render(" │ "))
}

func (a *App) renderCatalog(width int) string {
	rows := a.catalogRows()
	if len(rows) == 0 {
		switch {
		case a.menuPending:
			return a.spinner.View() + " Loading menu..."
		case a.store.MenuLoaded():
			return mutedStyle.Render("This menu has no topics yet.")
		}
		return mutedStyle.Render("Menu unavailable. Press r to retry.")
	}
	lines := make([]string, 0, len(rows))
	for idx, row := range rows {
		selected := a.focus == focusCatalog && idx == a.rowCursor
		lines = append(lines, a.renderCatalogRow(row, selected, width))
	}
	return strings.Join(lines, "\n")
}

func (a *App) renderCatalogRow(row catalogRow, selected bool, width int) string {
	marker := "  "
	if selected {
		marker = "› "
	}
	if row.isHeader() {
		arrow := "▸"
		if a.store.IsExpanded(row.topic.ID) {
			arrow = "▾"
		}
		label := fmt.Sprintf("%s%s %s", marker, arrow, row.topic.Name)
		if selected {
			return selectedStyle.Render(label)
		}
		return lipgloss.NewStyle().Bold(true).Render(label)
	}
	item := row.topic.Items[row.item]
	name := marker + "    " + item.Name
	if selected {
		name = selectedStyle.Render(name)
	}
	if item.Orderable() {
		name += "  " + priceStyle.Render(a.money(item.Price))
	}
	if desc := strings.TrimSpace(item.Description); desc != "" {
		name += "\n      " + dimStyle.Render(truncate(desc, max(20, width-8)))
	}
	return name
}

func (a *App) renderItemView(draft storefront.Draft, width int) string {
	item := draft.Item
	lines := []string{titleStyle.Render(item.Name)}
	if desc := strings.TrimSpace(item.Description); desc != "" {
		lines = append(lines, lipgloss.NewStyle().Width(max(20, width)).Render(desc))
	}
	if image, ok := item.PrimaryImage(); ok {
		lines = append(lines, dimStyle.Render("Image · "+image.URL))
	}
	if item.HasModifiers() {
		rowIdx := 0
		for _, group := range item.Modifiers {
			lines = append(lines, "", lipgloss.NewStyle().Bold(true).Render(group.Name))
			for _, mod := range group.Modifiers {
				lines = append(lines, a.renderModifier(draft, mod, rowIdx == a.modCursor))
				rowIdx++
			}
		}
	}
	lines = append(lines, "", fmt.Sprintf("Quantity   [-] %d [+]", draft.Quantity))
	if draft.Purchasable() {
		button := lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(accentColor).
			Padding(0, 2).
			Render("Add order • " + a.money(draft.Total()))
		lines = append(lines, "", button)
	}
	return strings.Join(lines, "\n")
}

func (a *App) renderModifier(draft storefront.Draft, mod catalog.Modifier, selected bool) string {
	radio := "( )"
	if draft.IsChosen(mod) {
		radio = "(•)"
	}
	label := fmt.Sprintf("%s %s - %s", radio, mod.Name, a.money(mod.Price))
	if selected {
		return selectedStyle.Render("› " + label)
	}
	return "  " + label
}

func (a *App) renderCart() string {
	head := titleStyle.Render("Carrinho")
	lines := a.store.CartLines()
	if len(lines) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left, head, mutedStyle.Render("Seu carrinho está vazio"))
	}
	out := []string{head}
	for idx, line := range lines {
		label := line.Label()
		if a.focus == focusCart && idx == a.cartCursor {
			label = selectedStyle.Render("› " + label)
		} else {
			label = "  " + label
		}
		out = append(out, label,
			fmt.Sprintf("    [-] %d [+]   %s", line.Quantity, priceStyle.Render(a.money(line.Total()))))
	}
	out = append(out, "",
		fmt.Sprintf("Subtotal  %s", a.money(a.store.Subtotal())),
		lipgloss.NewStyle().Bold(true).Render(fmt.Sprintf("Total     %s", a.money(a.store.Total()))),
	)
	return strings.Join(out, "\n")
}

func (a *App) renderLogPanel() string {
	if a.logbook == nil {
		return ""
	}
	lines, total := a.logbook.Tail(a.config.LogLines())
	if len(lines) == 0 {
		return ""
	}
	fileName := filepath.Base(a.logbook.Path())
	if fileName == "." || fileName == "" {
		fileName = "log"
	}
	head := titleStyle.Render(fmt.Sprintf("LOG · %s (%d)", fileName, total))
	body := dimStyle.Render(strings.Join(lines, "\n"))
	return panelStyle.Render(fmt.Sprintf("%s\n%s", head, body))
}

func (a *App) renderStatusLine() string {
	status := a.statusMsg
	if a.loading() {
		status = strings.TrimSpace(a.spinner.View() + " " + status)
	}
	return mutedStyle.Render(status)
}

func truncate(value string, limit int) string {
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	if limit <= 1 {
		return string(runes[:limit])
	}
	return string(runes[:limit-1]) + "…"
}
