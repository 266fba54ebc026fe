package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"html/template"
	"os"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/sirupsen/logrus"

	"wavewall-mockups/models"
)

// sheetHTML lays the batch's mockups out as a printable review grid.
// Images are inlined as data URIs so the page renders without a server.
const sheetHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<style>
  body { font-family: Helvetica, Arial, sans-serif; margin: 24px; }
  h1 { font-size: 18px; }
  .meta { color: #666; font-size: 12px; margin-bottom: 16px; }
  .grid { display: grid; grid-template-columns: repeat(3, 1fr); gap: 16px; }
  .cell { border: 1px solid #ddd; padding: 8px; page-break-inside: avoid; }
  .cell img { width: 100%; }
  .cell .name { font-size: 12px; margin-top: 4px; }
  .cell .tag { color: #999; font-size: 11px; }
</style>
</head>
<body>
<h1>Mockup review sheet</h1>
<div class="meta">Run {{.RunID}} &mdash; {{.Succeeded}}/{{.Requested}} templates</div>
<div class="grid">
{{range .Mockups}}
  <div class="cell">
    <img src="data:image/png;base64,{{.Encoded}}">
    <div class="name">{{.Name}}</div>
    <div class="tag">{{.ProductType}} / {{.Category}}{{if .Cached}} &middot; cached{{end}}</div>
  </div>
{{end}}
</div>
</body>
</html>`

// SheetService renders a batch run into a printable contact-sheet PDF via
// headless Chrome. When no Chrome binary is present the service degrades
// to returning the HTML itself.
type SheetService struct {
	tmpl *template.Template
}

// NewSheetService creates a SheetService.
func NewSheetService() (*SheetService, error) {
	tmpl, err := template.New("sheet").Parse(sheetHTML)
	if err != nil {
		return nil, fmt.Errorf("failed to parse sheet template: %w", err)
	}
	return &SheetService{tmpl: tmpl}, nil
}

type sheetMockup struct {
	Name        string
	ProductType models.ProductType
	Category    models.Category
	Cached      bool
	Encoded     string
}

type sheetData struct {
	RunID     string
	Requested int
	Succeeded int
	Mockups   []sheetMockup
}

// BuildHTML renders the contact-sheet HTML for a batch result.
func (s *SheetService) BuildHTML(batch *models.BatchResult) ([]byte, error) {
	data := sheetData{
		RunID:     batch.RunID,
		Requested: batch.Requested,
		Succeeded: batch.Succeeded,
	}
	for _, m := range batch.Mockups {
		data.Mockups = append(data.Mockups, sheetMockup{
			Name:        m.Name,
			ProductType: m.ProductType,
			Category:    m.Category,
			Cached:      m.Cached,
			Encoded:     base64.StdEncoding.EncodeToString(m.Buffer),
		})
	}

	var buf bytes.Buffer
	if err := s.tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to render sheet: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderSheet produces the contact sheet. It returns PDF bytes when a
// Chrome binary is available, otherwise the HTML bytes with pdf=false.
// A missing browser is a degraded result, not an error.
func (s *SheetService) RenderSheet(ctx context.Context, batch *models.BatchResult) (data []byte, pdf bool, err error) {
	html, err := s.BuildHTML(batch)
	if err != nil {
		return nil, false, err
	}

	chromePath := detectChromePath()
	if chromePath == "" {
		logrus.Warn("No Chrome/Chromium binary found, returning contact sheet as HTML")
		return html, false, nil
	}

	pdfData, err := s.printToPDF(ctx, chromePath, html)
	if err != nil {
		logrus.WithError(err).Warn("PDF generation failed, returning contact sheet as HTML")
		return html, false, nil
	}
	return pdfData, true, nil
}

// printToPDF loads the HTML in headless Chrome and prints it to PDF.
func (s *SheetService) printToPDF(ctx context.Context, chromePath string, html []byte) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.ExecPath(chromePath),
		chromedp.NoSandbox, // required in containers
	)
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	defer allocCancel()

	chromedpCtx, chromedpCancel := chromedp.NewContext(allocCtx)
	defer chromedpCancel()

	dataURL := "data:text/html;base64," + base64.StdEncoding.EncodeToString(html)

	var pdfBuf []byte
	err := chromedp.Run(chromedpCtx,
		chromedp.Navigate(dataURL),
		chromedp.WaitReady("body"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			// A4 portrait, margins handled by the page CSS.
			pdfBuf, _, err = page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(8.27).
				WithPaperHeight(11.69).
				WithMarginTop(0).
				WithMarginBottom(0).
				WithMarginLeft(0).
				WithMarginRight(0).
				Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return pdfBuf, nil
}

// detectChromePath detects the path to a Chrome/Chromium executable.
// Checks CHROME_PATH first, then common installation paths.
func detectChromePath() string {
	if chromePath := os.Getenv("CHROME_PATH"); chromePath != "" {
		if _, err := os.Stat(chromePath); err == nil {
			return chromePath
		}
	}

	paths := []string{
		"/usr/bin/chromium",
		"/usr/bin/chromium-browser",
		"/usr/bin/google-chrome",
		"/usr/bin/google-chrome-stable",
		"/snap/bin/chromium",
	}
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
