package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/trezcool/micportal/core/submission"
)

const (
	formatTable = "table"
	formatJSON  = "json"
	formatYAML  = "yaml"
)

var (
	badgeColors = map[submission.Color]lipgloss.Color{
		submission.ColorOrange: lipgloss.Color("#FB8C00"),
		submission.ColorGreen:  lipgloss.Color("#43A047"),
		submission.ColorRed:    lipgloss.Color("#E53935"),
		submission.ColorGray:   lipgloss.Color("#757575"),
		submission.ColorBlue:   lipgloss.Color("#1E88E5"),
	}

	titleStyle  = lipgloss.NewStyle().Bold(true).MarginBottom(1)
	headerStyle = lipgloss.NewStyle().Bold(true).Underline(true)
	mutedStyle  = lipgloss.NewStyle().Faint(true)
)

// badge renders a status label in the color of its class.
func badge(label string, color submission.Color) string {
	c, ok := badgeColors[color]
	if !ok {
		c = badgeColors[submission.ColorGray]
	}
	return lipgloss.NewStyle().Foreground(c).Bold(true).Render(label)
}

// table is a plain text table with aligned columns.
type table struct {
	title   string
	headers []string
	rows    [][]string
}

func newTable(title string, headers ...string) *table {
	return &table{title: title, headers: headers}
}

func (t *table) add(cells ...string) {
	t.rows = append(t.rows, cells)
}

func (t *table) render(w io.Writer) {
	if t.title != "" {
		fmt.Fprintln(w, titleStyle.Render(t.title))
	}
	if len(t.rows) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("Nothing to show."))
		return
	}

	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			if i < len(widths) && lipgloss.Width(cell) > widths[i] {
				widths[i] = lipgloss.Width(cell)
			}
		}
	}

	line := func(cells []string, style *lipgloss.Style) string {
		var sb strings.Builder
		for i, cell := range cells {
			if i >= len(widths) {
				break
			}
			if style != nil {
				cell = style.Render(cell)
			}
			sb.WriteString(cell)
			if i < len(widths)-1 {
				sb.WriteString(strings.Repeat(" ", widths[i]-lipgloss.Width(cell)+2))
			}
		}
		return strings.TrimRight(sb.String(), " ")
	}

	fmt.Fprintln(w, line(t.headers, &headerStyle))
	for _, row := range t.rows {
		fmt.Fprintln(w, line(row, nil))
	}
}

// print writes v in the selected format; the table format is left to tbl.
func (cli *commandLine) print(v interface{}, tbl func(w io.Writer)) error {
	switch cli.format {
	case formatJSON:
		enc := json.NewEncoder(cli.out)
		enc.SetIndent("", "  ")
		return errors.Wrap(enc.Encode(v), "encoding json")
	case formatYAML:
		return writeYAML(cli.out, v)
	default:
		tbl(cli.out)
		return nil
	}
}

// writeYAML writes v as block style YAML, keyed and ordered like its JSON encoding.
func writeYAML(w io.Writer, v interface{}) error {
	b, err := json.Marshal(v)
	if err != nil {
		return errors.Wrap(err, "encoding yaml")
	}
	var doc yaml.Node
	if err = yaml.Unmarshal(b, &doc); err != nil {
		return errors.Wrap(err, "encoding yaml")
	}
	blockStyle(&doc)

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err = enc.Encode(&doc); err != nil {
		return errors.Wrap(err, "encoding yaml")
	}
	return errors.Wrap(enc.Close(), "encoding yaml")
}

func blockStyle(n *yaml.Node) {
	n.Style = 0
	for _, child := range n.Content {
		blockStyle(child)
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
