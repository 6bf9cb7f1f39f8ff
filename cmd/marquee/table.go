package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

type setting struct {
	section string
	key     string
	value   string
}

// renderSettings lays resolved configuration out as a section/key/value table.
func renderSettings(settings []setting) string {
	if len(settings) == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Section", "Setting", "Value"})
	for _, s := range settings {
		tw.AppendRow(table.Row{s.section, s.key, s.value})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, AutoMerge: true, Align: text.AlignLeft},
		{Number: 2, Align: text.AlignLeft},
		{Number: 3, Align: text.AlignLeft, WidthMax: 60, WidthMaxEnforcer: text.WrapHard},
	})
	return tw.Render()
}
