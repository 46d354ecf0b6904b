package report

import (
	"bytes"
	"fmt"
	"html/template"
	"os"
	"path/filepath"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"PortfolioTracker/internal/model"
)

// File names written by WriteHTML.
const (
	PageFile       = "report.html"
	AllocationFile = "allocation.svg"
	PnLFile        = "pnl.svg"
)

var md = goldmark.New(goldmark.WithExtensions(extension.GFM))

// MarkdownToHTML converts report markdown to an HTML fragment.
func MarkdownToHTML(src string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("convert markdown: %w", err)
	}
	return template.HTML(buf.String()), nil
}

var pageTmpl = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: sans-serif; margin: 2em; }
table { border-collapse: collapse; }
th, td { border: 1px solid #ccc; padding: 4px 8px; }
.charts img { margin-right: 2em; }
</style>
</head>
<body>
{{.Body}}
{{if .Charts}}<div class="charts">
<img src="{{.Allocation}}" alt="Allocation">
<img src="{{.PnL}}" alt="P&amp;L by symbol">
</div>{{end}}
</body>
</html>
`))

// WriteHTML writes the report page and its two charts into dir and returns
// the page path.
func WriteHTML(dir string, v model.Valuation, opts Options) (string, error) {
	opts = opts.withDefaults()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create report dir: %w", err)
	}

	body, err := MarkdownToHTML(Markdown(v, opts))
	if err != nil {
		return "", err
	}

	charts := !v.Empty()
	if charts {
		pie, err := PieSVG(v.Symbols)
		if err != nil {
			return "", err
		}
		if err := os.WriteFile(filepath.Join(dir, AllocationFile), []byte(pie), 0o644); err != nil {
			return "", fmt.Errorf("write allocation chart: %w", err)
		}
		bar, err := BarSVG(v.Symbols, opts.Currency)
		if err != nil {
			return "", err
		}
		if err := os.WriteFile(filepath.Join(dir, PnLFile), []byte(bar), 0o644); err != nil {
			return "", fmt.Errorf("write pnl chart: %w", err)
		}
	}

	var page bytes.Buffer
	err = pageTmpl.Execute(&page, map[string]any{
		"Title":      fmt.Sprintf("%s - %s", opts.Title, v.AsOf.Format(model.DateLayout)),
		"Body":       body,
		"Charts":     charts,
		"Allocation": AllocationFile,
		"PnL":        PnLFile,
	})
	if err != nil {
		return "", fmt.Errorf("render report: %w", err)
	}

	path := filepath.Join(dir, PageFile)
	if err := os.WriteFile(path, page.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	return path, nil
}
