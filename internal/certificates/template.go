package certificates

import (
	"html/template"
	"strings"
)

var certificateTemplate = template.Must(template.New("certificate").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<style>
  body { font-family: Georgia, serif; text-align: center; margin: 4em; }
  .frame { border: 6px double #2c3e50; padding: 4em 3em; }
  h1 { letter-spacing: 0.2em; }
  .name { font-size: 2em; margin: 1em 0 0.2em; }
  .course { font-style: italic; }
  .date { margin-top: 3em; color: #555; }
  img.logo { max-height: 90px; }
</style>
</head>
<body>
<div class="frame">
  {{if .LogoURL}}<img class="logo" src="{{.LogoURL}}" alt="logo">{{end}}
  <h1>CERTIFICATE OF COMPLETION</h1>
  <p>This certifies that</p>
  <div class="name">{{.StudentName}}</div>
  <p>has successfully completed</p>
  <div class="course">{{.CourseName}}</div>
  <div class="date">Issued {{.IssuedAt.Format "2 January 2006"}}</div>
</div>
</body>
</html>`))

// RenderHTML produces the certificate document handed to the PDF renderer.
func RenderHTML(cert Certificate) (string, error) {
	var sb strings.Builder
	if err := certificateTemplate.Execute(&sb, cert); err != nil {
		return "", err
	}
	return sb.String(), nil
}
