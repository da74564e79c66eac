package render

import (
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"
	"strings"
)

const (
	MsgExportSucceeded = "Roadmap saved successfully!"
	MsgExportFailed    = "Failed to export roadmap. Please try again."
)

// Exporter serializes a rendered view to a document.
type Exporter interface {
	Export(w io.Writer, v *View) error
	Extension() string
}

// ExportFilename names the exported document after the destination country.
func ExportFilename(country, ext string) string {
	if country == "" {
		country = "unknown"
	}
	return fmt.Sprintf("visa-roadmap-%s%s", country, ext)
}

// SaveExport writes v into dir. A failed export removes any partial file and
// never touches the view.
func SaveExport(e Exporter, v *View, dir string) (string, error) {
	path := filepath.Join(dir, ExportFilename(v.CountryName(), e.Extension()))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create export file: %w", err)
	}
	if err := e.Export(f, v); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("export roadmap: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("close export file: %w", err)
	}
	return path, nil
}

// HTMLExporter writes a standalone, printable HTML page.
type HTMLExporter struct{}

func (HTMLExporter) Extension() string { return ".html" }

func (HTMLExporter) Export(w io.Writer, v *View) error {
	if !v.Found() {
		return fmt.Errorf("no country data for %q", v.Destination)
	}
	return exportTemplate.Execute(w, newExportData(v))
}

type exportSection struct {
	Title    string
	Expanded bool
	Section  Section
}

type exportData struct {
	*View
	RoadmapHTML template.HTML
	Sections    []exportSection
	TitleReady  string
	TitleRoad   string
	TitleLinks  string
	Disclaimer  string
}

func newExportData(v *View) exportData {
	d := exportData{
		View: v,
		// FormatRoadmap sanitizes its output.
		RoadmapHTML: template.HTML(FormatRoadmap(v.Roadmap)),
		TitleReady:  TitleReady,
		TitleRoad:   TitleRoadmap,
		TitleLinks:  TitleResources,
		Disclaimer:  Disclaimer,
	}
	for _, s := range Sections {
		d.Sections = append(d.Sections, exportSection{Title: SectionTitle(s), Expanded: v.Expanded(s), Section: s})
	}
	return d
}

var exportTemplate = template.Must(template.New("roadmap").Funcs(template.FuncMap{
	"lower": strings.ToLower,
}).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Visa roadmap: {{.Record.Country}}</title>
<style>
body { font-family: system-ui, sans-serif; max-width: 800px; margin: 2rem auto; color: #1f2937; }
h1 { font-size: 1.6rem; }
.badges span { display: inline-block; margin-right: 1rem; font-size: .9rem; }
table { border-collapse: collapse; width: 100%; }
th, td { border-bottom: 1px solid #e5e7eb; padding: .4rem; text-align: left; }
.disclaimer { font-size: .8rem; color: #6b7280; margin-top: 2rem; }
</style>
</head>
<body>
<p>{{.TitleReady}}</p>
<h1>{{.Record.Flag}} {{.Record.Country}} {{.Record.VisaType}}</h1>
<p>{{.Record.Overview}}</p>
<div class="badges">
<span>Processing: {{.Record.ProcessingTime}}</span>
<span>Validity: {{.Record.ValidityPeriod}}</span>
<span>Work: {{.Record.WorkRights}}</span>
</div>
{{if .Roadmap}}<section class="roadmap">
<h2>{{.TitleRoad}}</h2>
{{.RoadmapHTML}}
</section>{{end}}
{{range .Sections}}{{if .Expanded}}<section id="{{lower (printf "%s" .Section)}}">
<h2>{{.Title}}</h2>
{{if eq (printf "%s" .Section) "documents"}}{{range $.Record.Documents}}<h3>{{.Category}}</h3>
<ul>{{range .Items}}<li>{{.}}</li>{{end}}</ul>
{{end}}{{else if eq (printf "%s" .Section) "timeline"}}<ol>{{range $.Record.Steps}}<li><strong>{{.Title}}</strong> ({{.Timeframe}}): {{.Description}}</li>{{end}}</ol>
{{else if eq (printf "%s" .Section) "costs"}}<table><tr><th>Item</th><th>Amount</th><th>Note</th></tr>{{range $.Record.Costs}}<tr><td>{{.Item}}</td><td>{{.Amount}}</td><td>{{.Note}}</td></tr>{{end}}</table>
{{else if eq (printf "%s" .Section) "risks"}}<ul>{{range $.Record.CommonRejectionReasons}}<li>{{.}}</li>{{end}}</ul>
{{else if eq (printf "%s" .Section) "nextSteps"}}<ul>{{range $.Record.Tips}}<li>{{.}}</li>{{end}}</ul>
<p>{{$.TitleLinks}}</p>
<ul>{{range $.Record.OfficialLinks}}<li><a href="{{.URL}}">{{.Title}}</a></li>{{end}}</ul>
{{end}}</section>
{{end}}{{end}}<p class="disclaimer">{{.Disclaimer}}</p>
</body>
</html>
`))
