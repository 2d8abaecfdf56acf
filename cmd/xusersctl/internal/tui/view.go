package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/JaveBychkov/friendly-dollop/cmd/xusersctl/internal/controller"
	"github.com/JaveBychkov/friendly-dollop/cmd/xusersctl/internal/duallist"
	"github.com/JaveBychkov/friendly-dollop/cmd/xusersctl/internal/form"
	"github.com/JaveBychkov/friendly-dollop/pkg/sdk"
)

// section is one sub-form of a panel. When list is set the section is a
// membership editor and form carries only its submit control and messages.
type section struct {
	form *form.Form
	list *duallist.Editor
}

type controlKind int

const (
	controlField controlKind = iota
	controlItem
	controlSubmit
)

// control is one focusable element of a panel.
type control struct {
	kind  controlKind
	form  *form.Form
	field *form.Field
	list  *duallist.Editor
	side  duallist.Side
	name  string
}

// sections returns the panel that currently owns the focus: the login
// form, the create form, or the cursor row's expanded detail.
func (model Model) sections() []section {
	switch {
	case model.route == controller.RouteLogin:
		return []section{{form: model.loginForm}}
	case model.createForm != nil:
		return []section{{form: model.createForm}}
	}
	row, ok := model.currentRow()
	if !ok || !row.Expanded {
		return nil
	}
	return detailSections(row.Detail)
}

func detailSections(detail any) []section {
	switch detail := detail.(type) {
	case *controller.UserDetail:
		out := []section{{form: detail.Profile}}
		if detail.Password != nil {
			out = append(out, section{form: detail.Password})
		}
		return append(out, section{form: detail.GroupsForm, list: detail.Groups})
	case *controller.GroupDetail:
		return []section{{form: detail.Form}, {form: detail.MembersForm, list: detail.Members}}
	}
	return nil
}

func controlsOf(sections []section) []control {
	var out []control
	for _, s := range sections {
		for _, field := range s.form.Fields {
			out = append(out, control{kind: controlField, form: s.form, field: field})
		}
		if s.list != nil {
			for _, side := range []duallist.Side{duallist.Assigned, duallist.Available} {
				for _, name := range s.list.List(side) {
					out = append(out, control{kind: controlItem, form: s.form, list: s.list, side: side, name: name})
				}
			}
		}
		if s.form.CanSubmit() {
			out = append(out, control{kind: controlSubmit, form: s.form, list: s.list})
		}
	}
	return out
}

func (model Model) View() string {
	var body strings.Builder
	focusLine := 0

	switch {
	case model.route == controller.RouteLogin:
		focusLine = model.renderPanel(&body, model.sections(), true, "")
	case model.createForm != nil:
		focusLine = model.renderPanel(&body, model.sections(), true, "")
	default:
		focusLine = model.renderTable(&body)
	}

	content := strings.TrimRight(body.String(), "\n")
	if model.height > 0 {
		vp := model.viewport
		vp.SetContent(content)
		vp.SetYOffset(max(focusLine-vp.Height/2, 0))
		content = vp.View()
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		model.renderHeader(),
		content,
		model.renderStatus(),
		model.renderHelp(),
	)
}

func (model Model) renderHeader() string {
	if model.route == controller.RouteLogin {
		return model.styles.header.Render("xusers · Log in")
	}
	var tabs []string
	for _, tab := range []Tab{TabUsers, TabGroups} {
		style := model.styles.tab
		if tab == model.tab {
			style = model.styles.tabOn
		}
		tabs = append(tabs, style.Render(tab.String()))
	}
	parts := []string{model.styles.header.Render("xusers"), strings.Join(tabs, "")}
	if session, err := model.store.Load(); err == nil {
		role := "role not yet determined"
		if r := session.EffectiveRole(); r != sdk.RoleUnknown {
			role = string(r)
		}
		parts = append(parts, model.styles.faint.Render(fmt.Sprintf("%s (%s)", session.Username, role)))
	}
	if model.activeOnly && model.tab == TabUsers {
		parts = append(parts, model.styles.faint.Render("active only"))
	}
	if model.focus == focusFilter {
		parts = append(parts, "filter: "+model.editor.View())
	} else if expr := model.filter.String(); expr != "" {
		parts = append(parts, model.styles.faint.Render("filter: "+expr))
	}
	return strings.Join(parts, "  ")
}

func (model Model) renderStatus() string {
	switch {
	case model.busy:
		return model.styles.faint.Render("working...")
	case model.status == "":
		return ""
	case model.statusErr:
		return model.styles.errText.Render(model.status)
	}
	return model.styles.okText.Render(model.status)
}

func (model Model) renderHelp() string {
	var bindings []key.Binding
	switch {
	case model.focus == focusEdit || model.focus == focusFilter:
		return model.styles.help.Render("enter apply · esc cancel")
	case model.focus == focusTable:
		bindings = []key.Binding{model.keys.Up, model.keys.Down, model.keys.Select, model.keys.NextTab,
			model.keys.Filter, model.keys.Reload, model.keys.Create}
		if model.tab == TabUsers {
			bindings = append(bindings, model.keys.ActiveOnly)
		} else {
			bindings = append(bindings, model.keys.Delete)
		}
		bindings = append(bindings, model.keys.Logout, model.keys.Quit)
	default:
		bindings = []key.Binding{model.keys.Up, model.keys.Down, model.keys.Select, model.keys.Submit,
			model.keys.MoveLeft, model.keys.MoveRight, model.keys.Back, model.keys.Quit}
	}
	parts := make([]string, 0, len(bindings))
	for _, binding := range bindings {
		help := binding.Help()
		parts = append(parts, help.Key+" "+help.Desc)
	}
	return model.styles.help.Render(strings.Join(parts, " · "))
}

// renderTable writes the column header and rows, with the detail of each
// expanded row under it. It returns the line the focus is on.
func (model Model) renderTable(b *strings.Builder) int {
	tbl := model.table()
	columns := tbl.Columns()
	rows := tbl.Rows()

	widths := make([]int, len(columns))
	for i, column := range columns {
		widths[i] = lipgloss.Width(column)
	}
	cells := make([][]string, len(rows))
	for r, row := range rows {
		cells[r] = tbl.Cells(row.Record)
		for i, cell := range cells[r] {
			widths[i] = max(widths[i], lipgloss.Width(cell))
		}
	}

	line := 0
	writeLine := func(s string) {
		b.WriteString(s)
		b.WriteByte('\n')
		line++
	}

	header := make([]string, len(columns))
	for i, column := range columns {
		header[i] = pad(strings.ToUpper(column), widths[i])
	}
	writeLine(model.styles.header.Render("    " + strings.Join(header, "  ")))

	if len(rows) == 0 {
		writeLine(model.styles.faint.Render("    no " + strings.ToLower(model.tab.String())))
		return 0
	}

	focusLine := 0
	for r, row := range rows {
		marker := "▸"
		if row.Expanded {
			marker = "▾"
		}
		cursor := "  "
		if r == model.cursor {
			cursor = "› "
		}
		padded := make([]string, len(cells[r]))
		for i, cell := range cells[r] {
			padded[i] = pad(cell, widths[i])
		}
		text := cursor + marker + " " + strings.Join(padded, "  ")
		if r == model.cursor {
			focusLine = line
			if model.focus == focusTable {
				text = model.styles.selected.Render(text)
			}
		}
		writeLine(text)

		if !row.Expanded {
			continue
		}
		if row.Detail == nil {
			writeLine(model.styles.faint.Render("      loading..."))
			continue
		}
		var detail strings.Builder
		focused := r == model.cursor && model.focus != focusTable
		offset := model.renderPanel(&detail, detailSections(row.Detail), focused, "      ")
		if focused {
			focusLine = line + offset
		}
		for _, l := range strings.Split(strings.TrimRight(detail.String(), "\n"), "\n") {
			writeLine(l)
		}
	}
	return focusLine
}

// renderPanel writes sections with indent. When focused, the control at
// model.target is highlighted and its line is returned.
func (model Model) renderPanel(b *strings.Builder, sections []section, focused bool, indent string) int {
	controls := controlsOf(sections)
	index := 0
	line := 0
	focusLine := 0
	writeLine := func(s string) {
		b.WriteString(indent)
		b.WriteString(s)
		b.WriteByte('\n')
		line++
	}
	isFocused := func() bool {
		hit := focused && index == model.target && index < len(controls)
		if hit {
			focusLine = line
		}
		index++
		return hit
	}

	for _, s := range sections {
		writeLine(model.styles.section.Render(s.form.Title))

		labelWidth := 0
		for _, field := range s.form.Fields {
			labelWidth = max(labelWidth, lipgloss.Width(field.Label))
		}
		for _, field := range s.form.Fields {
			writeLine(model.renderField(field, labelWidth, isFocused()))
		}

		if s.list != nil {
			for _, side := range []duallist.Side{duallist.Assigned, duallist.Available} {
				names := s.list.List(side)
				if side == duallist.Available && !s.list.Editable() {
					continue
				}
				writeLine(model.styles.faint.Render(strings.ToUpper(side.String())))
				if len(names) == 0 {
					writeLine(model.styles.faint.Render("  (none)"))
				}
				for _, name := range names {
					mark := "[ ]"
					if s.list.Selected(side, name) {
						mark = "[x]"
					}
					text := "  " + mark + " " + name
					if !s.list.Editable() {
						text = "  - " + name
					}
					if isFocused() {
						text = model.styles.selected.Render(text)
					}
					writeLine(text)
				}
			}
		}

		for _, message := range s.form.Messages {
			writeLine(model.styles.errText.Render("! " + message))
		}
		if s.form.CanSubmit() {
			text := "[ " + s.form.Submit + " ]"
			if isFocused() {
				text = model.styles.selected.Render(text)
			}
			if s.form.Succeeded {
				text += model.styles.okText.Render(" ✓")
			}
			writeLine(text)
		}
		writeLine("")
	}
	return focusLine
}

func (model Model) renderField(field *form.Field, labelWidth int, focused bool) string {
	value := field.Display()
	if model.focus == focusEdit && model.editing == field {
		value = model.editor.View()
	}
	text := pad(field.Label, labelWidth) + "  " + value
	switch {
	case focused:
		text = model.styles.selected.Render(text)
	case field.ReadOnly:
		text = model.styles.readOnly.Render(text)
	}
	if field.Invalid {
		text += model.styles.errText.Render("  ✗ " + strings.Join(field.Messages, "; "))
	}
	return text
}

func pad(s string, width int) string {
	if gap := width - lipgloss.Width(s); gap > 0 {
		return s + strings.Repeat(" ", gap)
	}
	return s
}
