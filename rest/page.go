// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package rest

import (
	"html/template"
)

// Link is a navigation link in the page shell.
type Link struct {
	Label string
	URL   string
}

// Shell is the chrome around HTML responses: the document head with
// its stylesheets, navigation, and a sidebar.
type Shell struct {
	// Title is the page title.
	Title string

	// Nav lists the navigation links.
	Nav []Link

	// Sidebar, if non-nil, renders the sidebar column.  It is
	// called once per page and must be safe for concurrent use.
	Sidebar func() template.HTML
}

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta http-equiv="X-UA-Compatible" content="IE=edge">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<link rel="stylesheet" href="https://maxcdn.bootstrapcdn.com/bootstrap/3.3.5/css/bootstrap.min.css">
<link rel="stylesheet" href="//cdn.jsdelivr.net/chartist.js/latest/chartist.min.css">
<script src="//cdn.jsdelivr.net/chartist.js/latest/chartist.min.js"></script>
</head>
<body lang="en">
{{if .Nav}}<nav class="navbar navbar-default"><div class="container"><ul class="nav navbar-nav">
{{range .Nav}}<li><a href="{{.URL}}">{{.Label}}</a></li>{{end}}
</ul></div></nav>{{end}}
<div class="container">
<div class="col-md-9">{{.Content}}</div>
<div class="col-md-3">{{.Sidebar}}</div>
</div>
</body>
</html>
`))

type pageData struct {
	Title   string
	Nav     []Link
	Content template.HTML
	Sidebar template.HTML
}

// Page wraps content in the shell.
func (s *Shell) Page(content template.HTML) []byte {
	data := pageData{
		Title:   s.Title,
		Nav:     s.Nav,
		Content: content,
	}
	if s.Sidebar != nil {
		data.Sidebar = s.Sidebar()
	}
	return []byte(mustExecute(pageTemplate, data))
}
