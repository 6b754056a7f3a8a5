package submit

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/tbxark/tripwizard/types"
)

type Style string

const (
	StyleClassic Style = "classic"
	StyleModern  Style = "modern"
	StyleLuxury  Style = "luxury"
)

type Agency struct {
	Name         string `mapstructure:"name"`
	PrimaryColor string `mapstructure:"primary_color"`
	LogoURL      string `mapstructure:"logo_url"`
	ContactEmail string `mapstructure:"contact_email"`
	ContactPhone string `mapstructure:"contact_phone"`
}

// HTMLPreviewRenderer produces the stand-alone listing page shown to the
// agent before confirmation.
type HTMLPreviewRenderer struct {
	agency Agency
	style  Style
}

func NewHTMLPreviewRenderer(agency Agency, style Style) *HTMLPreviewRenderer {
	if agency.Name == "" {
		agency.Name = "Travel Agency"
	}
	if agency.PrimaryColor == "" {
		agency.PrimaryColor = "#3B82F6"
	}
	switch style {
	case StyleClassic, StyleModern, StyleLuxury:
	default:
		style = StyleClassic
	}
	return &HTMLPreviewRenderer{agency: agency, style: style}
}

type previewView struct {
	Agency      Agency
	Destination string
	HotelName   string
	Stars       int
	Transport   string
	MealPlan    string
	DateStart   string
	DateEnd     string
	Duration    int
	Departure   string
	Address     string
	Return      string
	Activities  []string
	Program     types.Program
	Price       string
	Enrichment  Enrichment
}

func (r *HTMLPreviewRenderer) RenderPreview(ctx context.Context, answers types.Answers, enrichment Enrichment) (string, error) {
	view := previewView{
		Agency:      r.agency,
		Destination: answers.String(types.FieldDestination),
		HotelName:   answers.String(types.FieldHotelName),
		Transport:   answers.TransportMode().Label(),
		MealPlan:    answers.MealPlan().Label(),
		DateStart:   answers.String(types.FieldDateStart),
		Departure:   answers.String(types.FieldDepartureTime),
		Address:     answers.String(types.FieldDepartureAddress),
		Return:      answers.String(types.FieldReturnTime),
		Activities:  answers.Strings(types.FieldActivities),
		Program:     answers.Program(types.FieldProgram),
		Enrichment:  enrichment,
	}
	view.Stars, _ = answers.Int(types.FieldStarRating)
	view.Duration, _ = answers.Int(types.FieldDurationDays)
	if price, ok := answers.Float(types.FieldPrice); ok {
		view.Price = strconv.FormatFloat(price, 'f', -1, 64)
	}
	if start, err := time.Parse(time.DateOnly, view.DateStart); err == nil && view.Duration > 0 {
		view.DateEnd = start.AddDate(0, 0, view.Duration).Format(time.DateOnly)
	}

	body := "standard"
	if answers.Bool(types.FieldIsDayTrip) {
		body = "day-trip"
	}
	var buf bytes.Buffer
	if err := previewTemplates.ExecuteTemplate(&buf, body, view); err != nil {
		return "", fmt.Errorf("render preview body failed: %w", err)
	}
	clean := previewSanitizer().Sanitize(buf.String())

	buf.Reset()
	err := previewTemplates.ExecuteTemplate(&buf, "document", map[string]any{
		"Title": view.Destination,
		"CSS":   template.CSS(r.stylesheet()),
		"Body":  template.HTML(clean),
	})
	if err != nil {
		return "", fmt.Errorf("render preview document failed: %w", err)
	}
	return buf.String(), nil
}

func (r *HTMLPreviewRenderer) stylesheet() string {
	font, radius := "Georgia, serif", "4px"
	switch r.style {
	case StyleModern:
		font, radius = "'Helvetica Neue', Arial, sans-serif", "16px"
	case StyleLuxury:
		font, radius = "'Playfair Display', 'Times New Roman', serif", "0"
	}
	primary := r.agency.PrimaryColor
	return fmt.Sprintf(`*{margin:0;padding:0;box-sizing:border-box}
body{font-family:%s;line-height:1.6;color:#333;background:#fff}
.header{background:linear-gradient(135deg,%s,%s);color:#fff;padding:3rem 2rem;text-align:center}
.container{max-width:1200px;margin:0 auto;padding:2rem}
.section{margin-bottom:2.5rem}
.info-grid{display:grid;grid-template-columns:repeat(auto-fit,minmax(220px,1fr));gap:1rem}
.info-item,.price-box,.photo-card{border-radius:%s}
.info-item{background:#f8f9fa;padding:1rem;border-left:4px solid %s}
.price-box{background:%s;color:#fff;text-align:center;padding:2rem;margin:2rem 0}
.price-box .amount{font-size:2.5rem;font-weight:bold}
.photos-grid{display:grid;grid-template-columns:repeat(auto-fill,minmax(280px,1fr));gap:1rem}
.photo-card img{width:100%%;height:220px;object-fit:cover}
.program-item{display:flex;gap:1.5rem;padding:.5rem 0;border-bottom:1px solid #eee}
.program-time{font-weight:bold;color:%s;min-width:4rem}
.footer{text-align:center;padding:2rem;border-top:1px solid #eee}`,
		font, primary, darken(primary, 0.8), radius, primary, primary, primary)
}

// darken scales each channel of a #RRGGBB colour.
func darken(hex string, factor float64) string {
	h := strings.TrimPrefix(hex, "#")
	if len(h) != 6 {
		return "#2563eb"
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return "#2563eb"
	}
	scale := func(c uint64) uint64 { return uint64(float64(c) * factor) }
	return fmt.Sprintf("#%02x%02x%02x", scale(v>>16&0xff), scale(v>>8&0xff), scale(v&0xff))
}

var (
	previewPolicyOnce sync.Once
	previewPolicy     *bluemonday.Policy
)

func previewSanitizer() *bluemonday.Policy {
	previewPolicyOnce.Do(func() {
		policy := bluemonday.NewPolicy()
		policy.AllowElements(
			"header", "footer", "section", "div", "span", "h1", "h2", "h3", "p",
			"ul", "li", "strong", "em", "br",
		)
		policy.AllowAttrs("class").Globally()
		policy.AllowImages()
		policy.AllowAttrs("href").OnElements("a")
		policy.AllowStandardURLs()
		previewPolicy = policy
	})
	return previewPolicy
}

var previewTemplates = template.Must(template.New("preview").Funcs(template.FuncMap{
	"stars": func(n int) string { return strings.Repeat("★", max(n, 0)) },
	"join":  func(items []string) string { return strings.Join(items, ", ") },
}).Parse(`
{{define "document"}}<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>{{.Title}}</title>
<style>{{.CSS}}</style>
</head>
<body>
{{.Body}}
</body>
</html>{{end}}

{{define "photos"}}{{with .Enrichment.Photos}}<section class="section">
<h2>Photos</h2>
<div class="photos-grid">{{range .}}<div class="photo-card"><img src="{{.}}" alt="Photo"></div>{{end}}</div>
</section>{{end}}{{end}}

{{define "videos"}}{{with .Enrichment.Videos}}<section class="section">
<h2>Videos</h2>
<div class="photos-grid">{{range .}}<div class="photo-card video-card"><a href="{{.WatchURL}}"><img src="{{.Thumbnail}}" alt="{{.Title}}"></a><p>{{.Title}}</p></div>{{end}}</div>
</section>{{end}}{{end}}

{{define "footer"}}<footer class="footer">
<h3>{{.Agency.Name}}</h3>
<div class="contact">{{with .Agency.ContactEmail}}<a href="mailto:{{.}}">{{.}}</a> {{end}}{{with .Agency.ContactPhone}}<span>{{.}}</span>{{end}}</div>
</footer>{{end}}

{{define "standard"}}<header class="header">
<h1>{{.Destination}}</h1>
<div class="subtitle">{{if .HotelName}}{{.HotelName}}{{else}}Discovery stay{{end}}</div>
</header>
<div class="container">
<section class="section">
<h2>About the stay</h2>
<div class="info-grid">
<div class="info-item"><div class="label">Dates</div><div class="value">{{if .DateStart}}{{.DateStart}}{{if .DateEnd}} to {{.DateEnd}}{{end}}{{else}}Flexible{{end}}{{if .Duration}} ({{.Duration}} days){{end}}</div></div>
<div class="info-item"><div class="label">Transport</div><div class="value">{{.Transport}}</div></div>
<div class="info-item"><div class="label">Accommodation</div><div class="value">{{stars .Stars}} {{if .HotelName}}{{.HotelName}}{{else}}Hotel{{end}}</div></div>
<div class="info-item"><div class="label">Meal plan</div><div class="value">{{.MealPlan}}</div></div>
{{with .Activities}}<div class="info-item"><div class="label">Activities</div><div class="value">{{join .}}</div></div>{{end}}
</div>
</section>
{{with .Enrichment.Hotel}}<section class="section">
<h2>The hotel</h2>
<ul>
{{if .Rating}}<li>Rated {{.Rating}} from {{.UserRatingsTotal}} reviews</li>{{end}}
{{with .Website}}<li><a href="{{.}}">{{.}}</a></li>{{end}}
{{with .Phone}}<li>{{.}}</li>{{end}}
</ul>
</section>{{end}}
<div class="price-box"><div class="amount">{{.Price}} €</div><div class="per-person">per person</div></div>
{{template "photos" .}}
{{template "videos" .}}
{{template "footer" .}}
</div>{{end}}

{{define "day-trip"}}<header class="header">
<h1>Day trip to {{.Destination}}</h1>
<div class="subtitle">One day by coach</div>
</header>
<div class="container">
<section class="section">
<h2>Practical information</h2>
<div class="info-grid">
<div class="info-item"><div class="label">Departure</div><div class="value">{{.Departure}} - {{if .Address}}{{.Address}}{{else}}To be confirmed{{end}}</div></div>
<div class="info-item"><div class="label">Return</div><div class="value">{{.Return}}</div></div>
<div class="info-item"><div class="label">Destination</div><div class="value">{{.Destination}}</div></div>
<div class="info-item"><div class="label">Activities</div><div class="value">{{join .Activities}}</div></div>
</div>
</section>
<div class="price-box"><div class="amount">{{.Price}} €</div><div class="per-person">all inclusive</div></div>
{{with .Program}}<section class="section">
<h2>Programme</h2>
<div class="program-timeline">{{range .}}<div class="program-item"><div class="program-time">{{.Time}}</div><div class="program-activity">{{.Activity}}</div></div>{{end}}</div>
</section>{{end}}
{{template "photos" .}}
{{template "videos" .}}
{{template "footer" .}}
</div>{{end}}
`))
