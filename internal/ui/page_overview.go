package ui

import (
	gomponents "maragu.dev/gomponents"
	html "maragu.dev/gomponents/html"
)

type runRowData struct {
	ID       string
	URL      string
	Status   string
	Trigger  string
	By       string
	Started  string
	Finished string
	Source   string
	Accepted string
	Rejected string
}

type summaryRowData struct {
	Entity string
	Reason string
	Count  string
}

type overviewPageData struct {
	LatestStatus   string
	LatestFinished string
	TotalRejects   string
	Runs           []runRowData
	Summary        []summaryRowData
}

func overviewPage(d overviewPageData) gomponents.Node {
	runRows := make([]gomponents.Node, 0, len(d.Runs))
	for i := range d.Runs {
		row := d.Runs[i]
		runRows = append(runRows, html.Tr(
			html.Td(html.A(html.Href(row.URL), gomponents.Text(row.ID))),
			html.Td(statusBadge(row.Status)),
			html.Td(gomponents.Text(row.Trigger)),
			html.Td(gomponents.Text(row.By)),
			html.Td(gomponents.Text(row.Started)),
			html.Td(gomponents.Text(row.Finished)),
			html.Td(gomponents.Text(row.Source)),
			html.Td(gomponents.Text(row.Accepted)),
			html.Td(gomponents.Text(row.Rejected)),
		))
	}

	summaryRows := make([]gomponents.Node, 0, len(d.Summary))
	for i := range d.Summary {
		row := d.Summary[i]
		summaryRows = append(summaryRows, html.Tr(
			html.Td(gomponents.Text(row.Entity)),
			html.Td(gomponents.Text(row.Reason)),
			html.Td(gomponents.Text(row.Count)),
		))
	}

	latest := []gomponents.Node{html.H2(gomponents.Text("Latest run"))}
	if d.LatestStatus == "" {
		latest = append(latest, html.P(html.Class("muted"), gomponents.Text("No runs yet.")))
	} else {
		latest = append(latest, html.P(statusBadge(d.LatestStatus)), html.P(html.Class("muted"), gomponents.Text("Finished "+d.LatestFinished)))
	}

	return appPage(
		"Overview",
		"home",
		html.Div(
			html.Class("grid"),
			html.Div(html.Class("card"), gomponents.Group(latest)),
			html.Div(
				html.Class("card"),
				html.H2(gomponents.Text("Quarantined rows")),
				html.P(html.Class("stat"), gomponents.Text(d.TotalRejects)),
				html.P(html.A(html.Href("/quarantine"), gomponents.Text("Browse quarantine"))),
			),
		),
		html.Div(
			html.Class("card table-wrap"),
			html.H2(gomponents.Text("Recent runs")),
			html.Table(
				html.THead(html.Tr(
					html.Th(gomponents.Text("Run")),
					html.Th(gomponents.Text("Status")),
					html.Th(gomponents.Text("Trigger")),
					html.Th(gomponents.Text("By")),
					html.Th(gomponents.Text("Started")),
					html.Th(gomponents.Text("Finished")),
					html.Th(gomponents.Text("Source")),
					html.Th(gomponents.Text("Accepted")),
					html.Th(gomponents.Text("Rejected")),
				)),
				html.TBody(gomponents.Group(runRows)),
			),
		),
		html.Div(
			html.Class("card table-wrap"),
			html.H2(gomponents.Text("Quarantine by reason")),
			html.Table(
				html.THead(html.Tr(
					html.Th(gomponents.Text("Entity")),
					html.Th(gomponents.Text("Reason")),
					html.Th(gomponents.Text("Rows")),
				)),
				html.TBody(gomponents.Group(summaryRows)),
			),
		),
	)
}
