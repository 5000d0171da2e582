package ui

import (
	gomponents "maragu.dev/gomponents"
	data "maragu.dev/gomponents-datastar"
	html "maragu.dev/gomponents/html"
)

type quarantineRowData struct {
	Filter   string
	Entity   string
	Reason   string
	Field    string
	Payload  string
	Captured string
}

type quarantinePageData struct {
	Rows         []quarantineRowData
	Entities     []string
	ActiveEntity string
}

func quarantinePage(d quarantinePageData) gomponents.Node {
	entityLinks := make([]gomponents.Node, 0, len(d.Entities)+1)
	className := ""
	if d.ActiveEntity == "" {
		className = "active"
	}
	entityLinks = append(entityLinks, html.A(html.Href("/quarantine"), html.Class(className), gomponents.Text("All")))
	for _, entity := range d.Entities {
		className = ""
		if entity == d.ActiveEntity {
			className = "active"
		}
		entityLinks = append(entityLinks, html.A(html.Href("/quarantine?entity="+entity), html.Class(className), gomponents.Text(entity)))
	}

	tableRows := make([]gomponents.Node, 0, len(d.Rows))
	for i := range d.Rows {
		row := d.Rows[i]
		tableRows = append(tableRows, html.Tr(
			data.Show(containsExpr(row.Filter)),
			html.Td(gomponents.Text(row.Entity)),
			html.Td(gomponents.Text(row.Reason)),
			html.Td(gomponents.Text(row.Field)),
			html.Td(html.Class("payload"), gomponents.Text(row.Payload)),
			html.Td(gomponents.Text(row.Captured)),
		))
	}

	return appPage(
		"Quarantine",
		"quarantine",
		html.Div(html.Class("card"), html.Nav(html.Class("nav"), gomponents.Group(entityLinks))),
		html.Div(
			data.Signals(map[string]any{"q": ""}),
			filterInput("Filter by reason, field, or payload"),
			html.Div(
				html.Class("card table-wrap"),
				html.Table(
					html.THead(html.Tr(
						html.Th(gomponents.Text("Entity")),
						html.Th(gomponents.Text("Reason")),
						html.Th(gomponents.Text("Field")),
						html.Th(gomponents.Text("Original values")),
						html.Th(gomponents.Text("Captured")),
					)),
					html.TBody(gomponents.Group(tableRows)),
				),
			),
		),
	)
}
