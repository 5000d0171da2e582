package ui

import (
	gomponents "maragu.dev/gomponents"
	html "maragu.dev/gomponents/html"
)

type entityRowData struct {
	Entity   string
	Status   string
	Source   string
	Accepted string
	Rejected string
	Reasons  string
	Started  string
	Finished string
	Error    string
}

type runDetailPageData struct {
	ID       string
	Status   string
	Trigger  string
	By       string
	Started  string
	Finished string
	Source   string
	Accepted string
	Rejected string
	Error    string
	Entities []entityRowData
}

func runDetailPage(d runDetailPageData) gomponents.Node {
	entityRows := make([]gomponents.Node, 0, len(d.Entities))
	for i := range d.Entities {
		row := d.Entities[i]
		entityRows = append(entityRows, html.Tr(
			html.Td(gomponents.Text(row.Entity)),
			html.Td(statusBadge(row.Status)),
			html.Td(gomponents.Text(row.Source)),
			html.Td(gomponents.Text(row.Accepted)),
			html.Td(gomponents.Text(row.Rejected)),
			html.Td(gomponents.Text(row.Reasons)),
			html.Td(gomponents.Text(row.Started)),
			html.Td(gomponents.Text(row.Finished)),
			html.Td(gomponents.Text(row.Error)),
		))
	}

	summary := []gomponents.Node{
		html.H2(gomponents.Text("Run")),
		html.P(statusBadge(d.Status)),
		html.P(html.Class("muted"), gomponents.Text("Triggered by "+d.By+" ("+d.Trigger+")")),
		html.P(html.Class("muted"), gomponents.Text("Started "+d.Started+", finished "+d.Finished)),
		html.P(html.Class("muted"), gomponents.Text("Rows: "+d.Source+" source, "+d.Accepted+" accepted, "+d.Rejected+" rejected")),
	}
	if d.Error != "" {
		summary = append(summary, html.P(html.Class("error"), gomponents.Text(d.Error)))
	}

	return appPage(
		"Run "+d.ID,
		"home",
		html.Div(html.Class("card"), gomponents.Group(summary)),
		html.Div(
			html.Class("card table-wrap"),
			html.H2(gomponents.Text("Entities")),
			html.Table(
				html.THead(html.Tr(
					html.Th(gomponents.Text("Entity")),
					html.Th(gomponents.Text("Status")),
					html.Th(gomponents.Text("Source")),
					html.Th(gomponents.Text("Accepted")),
					html.Th(gomponents.Text("Rejected")),
					html.Th(gomponents.Text("Reject reasons")),
					html.Th(gomponents.Text("Started")),
					html.Th(gomponents.Text("Finished")),
					html.Th(gomponents.Text("Error")),
				)),
				html.TBody(gomponents.Group(entityRows)),
			),
		),
	)
}
