// Package layout describes the dashboard page: its tabs, text and the
// option sets and bounds of every control. The page is built once from the
// loaded dataset and never changes afterwards.
package layout

import (
	"html/template"
	"strconv"
	"time"

	"github.com/lox/vicenergy/internal/dataset"
	"github.com/lox/vicenergy/internal/htmlutil"
	"github.com/lox/vicenergy/internal/models"
)

const (
	Title     = "Australia Victoria Energy Data Visualization 2015-2020"
	Footer    = "Pasindu Perera - COHNDDS-231F-023"
	IntroAlt  = "Melbourne, Victoria"
	InfoLabel = "Australia Weather Information"
	InfoURL   = "https://www.australia.com/en/facts-and-planning/weather-in-australia.html"

	DefaultIntroImageURL = "https://assets.nationbuilder.com/icf/pages/195/attachments/original/1482432025/melbourne-victoria-australia.jpg?1482432025"

	introHeading = "Understanding the Impact of Seasonal Changes on Victoria's Energy Demand"

	metaDescriptionLength = 160
)

var introParagraphs = []string{
	"The Victoria Energy Visualization application takes into account the dynamic relationship " +
		"between seasonal changes and energy demand. Victoria, Australia, experiences distinct seasons: " +
		"summer (December to February), autumn (March to May), winter (June to August), and spring " +
		"(September to November).",
	"Exploring the visualizations, you can analyze how energy demand fluctuates in response to " +
		"varying weather conditions throughout the year. Seasonal changes play a crucial role in " +
		"shaping the energy landscape, and this application provides insights for effective energy planning.",
}

// Tab identifiers, in display order.
const (
	TabIntro       = "tab-0"
	TabLine        = "tab-1"
	TabScatter     = "tab-2"
	TabInteractive = "tab-3"
	TabAnalysis    = "tab-4"
)

type Tab struct {
	ID      string
	Label   string
	Heading string
}

type Option struct {
	Label string
	Value string
}

type Mark struct {
	Value int
	Label string
}

// Page is everything the template needs to draw the shell. Figures are
// fetched separately by the browser.
type Page struct {
	Title           string
	MetaDescription string
	Tabs            []Tab

	IntroImageURL string
	IntroAlt      string
	IntroHeading  string
	IntroHTML     template.HTML
	InfoLabel     string
	InfoURL       string

	LineOptions    []Option
	LineDefault    string
	DateMin        string
	DateMax        string
	ScatterOptions []Option
	ScatterDefault string
	YearMin        int
	YearMax        int
	YearMarks      []Mark

	Footer string
}

// New builds the page for ds. introImageURL is what the page's image tag
// points at; the server serves its own copy at /intro-image.
func New(ds *dataset.Dataset, introImageURL string) *Page {
	p := &Page{
		Title: Title,
		Tabs: []Tab{
			{ID: TabIntro, Label: "Introduction"},
			{ID: TabLine, Label: "Line Chart", Heading: "Line Chart"},
			{ID: TabScatter, Label: "Scatter Plot", Heading: "Scatter Plot"},
			{ID: TabInteractive, Label: "Interactive Charts", Heading: "Interactive Charts"},
			{ID: TabAnalysis, Label: "Energy Data Analysis", Heading: "Energy Data Analysis"},
		},
		IntroImageURL:  introImageURL,
		IntroAlt:       IntroAlt,
		IntroHeading:   introHeading,
		IntroHTML:      introHTML(),
		InfoLabel:      InfoLabel,
		InfoURL:        InfoURL,
		LineOptions:    options(models.LineVariables),
		LineDefault:    string(models.VarDemand),
		DateMin:        formatDate(ds.MinDate),
		DateMax:        formatDate(ds.MaxDate),
		ScatterOptions: options(models.ScatterVariables),
		ScatterDefault: string(models.VarMaxTemperature),
		YearMin:        ds.MinYear,
		YearMax:        ds.MaxYear,
		Footer:         Footer,
	}
	for _, y := range ds.Years() {
		p.YearMarks = append(p.YearMarks, Mark{Value: y, Label: strconv.Itoa(y)})
	}
	p.MetaDescription = htmlutil.Summary(string(p.IntroHTML), metaDescriptionLength)
	return p
}

func introHTML() template.HTML {
	var s string
	for _, para := range introParagraphs {
		s += "<h5>" + template.HTMLEscapeString(para) + "</h5>\n"
	}
	return template.HTML(s)
}

func options(vars []models.Variable) []Option {
	out := make([]Option, len(vars))
	for i, v := range vars {
		out[i] = Option{Label: v.Label(), Value: string(v)}
	}
	return out
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(models.DateLayout)
}
