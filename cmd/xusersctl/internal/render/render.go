// Package render draws tables, forms and membership editors as text for the
// cobra subcommands.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/pterm/pterm"
	"gopkg.in/yaml.v3"

	"github.com/JaveBychkov/friendly-dollop/cmd/xusersctl/internal/controller"
	"github.com/JaveBychkov/friendly-dollop/cmd/xusersctl/internal/duallist"
	"github.com/JaveBychkov/friendly-dollop/cmd/xusersctl/internal/form"
	"github.com/JaveBychkov/friendly-dollop/cmd/xusersctl/internal/table"
	"github.com/JaveBychkov/friendly-dollop/pkg/sdk"
)

// Format selects how records are written.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// ParseFormat validates an --output value. Empty means table.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatTable, nil
	case FormatTable, FormatJSON, FormatYAML:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want table, json or yaml)", s)
	}
}

// Encode writes v as JSON or YAML.
func Encode(w io.Writer, format Format, v any) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("format %q cannot encode values", format)
	}
}

// Table writes every row of tbl. Structured formats write the raw records.
func Table(w io.Writer, format Format, tbl *table.Table) error {
	rows := tbl.Rows()
	if format != FormatTable {
		records := make([]sdk.Record, 0, len(rows))
		for _, row := range rows {
			records = append(records, row.Record)
		}
		return Encode(w, format, records)
	}

	if len(rows) == 0 {
		pterm.Info.WithWriter(w).Println("No results.")
		return nil
	}

	data := pterm.TableData{headers(tbl.Columns())}
	for _, row := range rows {
		data = append(data, tbl.Cells(row.Record))
	}
	return pterm.DefaultTable.WithHasHeader().WithWriter(w).WithData(data).Render()
}

func headers(columns []string) []string {
	out := make([]string, len(columns))
	for i, column := range columns {
		out[i] = strings.ToUpper(column)
	}
	return out
}

// Form writes a form as a two column label/value table followed by its
// messages and submit control. Invalid fields carry their first message.
func Form(w io.Writer, f *form.Form) error {
	if f == nil {
		return nil
	}
	pterm.DefaultSection.WithWriter(w).Println(f.Title)

	if len(f.Fields) > 0 {
		data := pterm.TableData{}
		for _, field := range f.Fields {
			label := field.Label
			if field.ReadOnly {
				label += " (read-only)"
			}
			value := field.Display()
			if field.Invalid && len(field.Messages) > 0 {
				value = fmt.Sprintf("%s  ✗ %s", value, strings.Join(field.Messages, "; "))
			}
			data = append(data, []string{label, value})
		}
		if err := pterm.DefaultTable.WithWriter(w).WithData(data).Render(); err != nil {
			return err
		}
	}

	Messages(w, f)
	if f.Submit != "" {
		fmt.Fprintf(w, "[ %s ]\n", f.Submit)
	}
	return nil
}

// Messages writes a form's result line: form-level errors, or a success
// notice once the last submit went through.
func Messages(w io.Writer, f *form.Form) {
	for _, message := range f.Messages {
		pterm.Error.WithWriter(w).Println(message)
	}
	if f.Succeeded {
		pterm.Success.WithWriter(w).Printf("%s: done\n", f.Submit)
	}
}

// FieldErrors writes one line per invalid field.
func FieldErrors(w io.Writer, f *form.Form) {
	for _, field := range f.Fields {
		if field.Invalid {
			pterm.Error.WithWriter(w).Printf("%s: %s\n", field.Label, strings.Join(field.Messages, "; "))
		}
	}
	for _, message := range f.Messages {
		pterm.Error.WithWriter(w).Println(message)
	}
}

// DualList writes the two sides of a membership editor next to each other.
// A read-only editor shows only the assigned side.
func DualList(w io.Writer, title string, e *duallist.Editor) error {
	pterm.DefaultSection.WithWriter(w).Println(title)

	assigned := e.Assigned()
	if !e.Editable() {
		if len(assigned) == 0 {
			fmt.Fprintln(w, "(none)")
			return nil
		}
		for _, name := range assigned {
			fmt.Fprintf(w, "- %s\n", name)
		}
		return nil
	}

	available := e.Available()
	data := pterm.TableData{headers([]string{duallist.Assigned.String(), duallist.Available.String()})}
	for i := 0; i < max(len(assigned), len(available)); i++ {
		var left, right string
		if i < len(assigned) {
			left = assigned[i]
		}
		if i < len(available) {
			right = available[i]
		}
		data = append(data, []string{left, right})
	}
	return pterm.DefaultTable.WithHasHeader().WithWriter(w).WithData(data).Render()
}

// UserDetail writes every sub-form of an expanded user.
func UserDetail(w io.Writer, d *controller.UserDetail) error {
	if err := Form(w, d.Profile); err != nil {
		return err
	}
	if err := Form(w, d.Password); err != nil {
		return err
	}
	if err := DualList(w, d.GroupsForm.Title, d.Groups); err != nil {
		return err
	}
	Messages(w, d.GroupsForm)
	return nil
}

// GroupDetail writes the rename form and member list of an expanded group.
func GroupDetail(w io.Writer, d *controller.GroupDetail) error {
	if err := Form(w, d.Form); err != nil {
		return err
	}
	if err := DualList(w, d.MembersForm.Title, d.Members); err != nil {
		return err
	}
	Messages(w, d.MembersForm)
	return nil
}
