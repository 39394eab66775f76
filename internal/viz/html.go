package viz

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"html/template"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/matsen/paperdash/internal/wordfreq"
)

// ChartJSURL is the default Chart.js location.
const ChartJSURL = "https://cdn.jsdelivr.net/npm/chart.js@4/dist/chart.umd.min.js"

var funcs = template.FuncMap{
	"comma": func(n int) string { return humanize.Comma(int64(n)) },
}

// compiledTemplate and emptyTemplate are parsed at init time to fail fast on template errors.
var (
	compiledTemplate *template.Template
	emptyTemplate    *template.Template
)

func init() {
	compiledTemplate = template.Must(template.New("dashboard").Funcs(funcs).Parse(htmlTemplate))
	emptyTemplate = template.Must(template.New("empty").Funcs(funcs).Parse(emptyHTMLTemplate))
}

// HTMLOptions configures HTML generation.
type HTMLOptions struct {
	// ScriptURL is where Chart.js is loaded from.
	ScriptURL string
	// Interactive adds the mode radio and top-N slider, which reload the
	// page with mode and n query parameters. Static reports leave it off.
	Interactive bool
	// Now is the reference time for relative timestamps; zero means time.Now.
	Now time.Time
}

// DefaultOptions returns default HTML generation options.
func DefaultOptions() HTMLOptions {
	return HTMLOptions{
		ScriptURL: ChartJSURL,
	}
}

// GenerateHTML renders the dashboard as a single HTML page. The word cloud,
// when present, is embedded as a PNG data URI.
func GenerateHTML(d *Dashboard, opts HTMLOptions) (string, error) {
	if d == nil {
		return "", fmt.Errorf("dashboard cannot be nil")
	}
	if opts.ScriptURL == "" {
		opts.ScriptURL = ChartJSURL
	}

	if d.IsEmpty() {
		return generateEmptyHTML(d)
	}

	charts, err := chartJSON(d)
	if err != nil {
		return "", err
	}

	var cloudURI template.URL
	if d.Words.Cloud != nil {
		var png bytes.Buffer
		if err := d.Words.Cloud.RenderPNG(&png); err != nil {
			return "", fmt.Errorf("rendering word cloud: %w", err)
		}
		cloudURI = template.URL("data:image/png;base64," + base64.StdEncoding.EncodeToString(png.Bytes()))
	}

	data := templateData{
		Dashboard:   d,
		ScriptURL:   opts.ScriptURL,
		Interactive: opts.Interactive,
		ChartsJSON:  template.JS(charts),
		CloudURI:    cloudURI,
		MinTopN:     wordfreq.MinTopN,
		MaxTopN:     wordfreq.MaxTopN,
		LoadedAgo:   loadedAgo(d.Summary.LoadedAt, opts.Now),
	}

	var buf bytes.Buffer
	if err := compiledTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// templateData holds data for the HTML template.
type templateData struct {
	Dashboard   *Dashboard
	ScriptURL   string
	Interactive bool
	ChartsJSON  template.JS
	CloudURI    template.URL
	MinTopN     int
	MaxTopN     int
	LoadedAgo   string
}

// series is one chart's labels and values.
type series struct {
	Labels []string `json:"labels"`
	Values []int    `json:"values"`
}

type point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type charts struct {
	Timeline series  `json:"timeline"`
	Journals series  `json:"journals"`
	LongTail []point `json:"longTail"`
	Words    series  `json:"words"`
}

// chartJSON flattens the panels into the arrays Chart.js expects.
func chartJSON(d *Dashboard) (string, error) {
	var c charts
	for _, m := range d.Timeline.Months {
		c.Timeline.Labels = append(c.Timeline.Labels, m.Label())
		c.Timeline.Values = append(c.Timeline.Values, m.Count)
	}
	for _, j := range d.Journals.Journals {
		c.Journals.Labels = append(c.Journals.Labels, j.Journal)
		c.Journals.Values = append(c.Journals.Values, j.Count)
	}
	for _, p := range d.LongTail.Points {
		c.LongTail = append(c.LongTail, point{X: p.Rank, Y: p.Count})
	}
	for _, w := range d.Words.Words {
		c.Words.Labels = append(c.Words.Labels, w.Word)
		c.Words.Values = append(c.Words.Values, w.Count)
	}

	jsonBytes, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("marshaling chart data to JSON: %w", err)
	}
	return string(jsonBytes), nil
}

func loadedAgo(loaded, now time.Time) string {
	if loaded.IsZero() {
		return ""
	}
	if now.IsZero() {
		now = time.Now()
	}
	return humanize.RelTime(loaded, now, "ago", "from now")
}

// generateEmptyHTML returns HTML for a table with no usable records.
func generateEmptyHTML(d *Dashboard) (string, error) {
	var buf bytes.Buffer
	if err := emptyTemplate.Execute(&buf, d.Summary); err != nil {
		return "", err
	}
	return buf.String(), nil
}

const emptyHTMLTemplate = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <title>CORD-19 Metadata Analysis - Empty</title>
  <style>
    body {
      font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, Helvetica, Arial, sans-serif;
      display: flex;
      justify-content: center;
      align-items: center;
      height: 100vh;
      margin: 0;
      background: #f5f5f5;
    }
    .empty-state {
      text-align: center;
      color: #666;
    }
    .empty-state h2 {
      margin-bottom: 0.5em;
      color: #333;
    }
    .empty-state code {
      background: #e0e0e0;
      padding: 2px 6px;
      border-radius: 3px;
    }
  </style>
</head>
<body>
  <div class="empty-state">
    <h2>No papers to show</h2>
    <p>No row of <code>{{.Path}}</code> has a valid <code>publish_time</code>.</p>
    <p>{{comma .Rows}} rows read, {{comma .Dropped}} dropped.</p>
  </div>
</body>
</html>`

const htmlTemplate = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <title>CORD-19 Metadata Analysis</title>
  <script src="{{.ScriptURL}}"></script>
  <style>
    * {
      box-sizing: border-box;
    }
    body {
      font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, Helvetica, Arial, sans-serif;
      margin: 0 auto;
      padding: 1em 2em 3em;
      max-width: 1280px;
      background: #f5f5f5;
      color: #333;
    }
    section {
      background: white;
      border-radius: 4px;
      box-shadow: 0 1px 4px rgba(0,0,0,0.1);
      padding: 1em 1.5em;
      margin: 1em 0;
    }
    .summary {
      color: #666;
    }
    .warning {
      background: #fff8e1;
      border-left: 4px solid #f0ad4e;
      padding: 0.75em 1em;
    }
    table {
      border-collapse: collapse;
      width: 100%;
      font-size: 13px;
    }
    th, td {
      text-align: left;
      padding: 4px 8px;
      border-bottom: 1px solid #eee;
    }
    #controls label {
      margin-right: 1em;
    }
    #cloud {
      width: 100%;
      height: auto;
    }
  </style>
</head>
<body>
  <h1>CORD-19 Metadata Analysis</h1>
  {{with .Dashboard.Summary}}
  <p class="summary">
    {{comma .Records}} papers from <code>{{.Path}}</code>
    ({{comma .Rows}} rows, {{comma .Dropped}} without a valid publish date){{if $.LoadedAgo}}, loaded {{$.LoadedAgo}}{{end}}.
  </p>
  {{end}}

  <section>
    <h2>Dataset Preview</h2>
    <table>
      <tr><th>cord_uid</th><th>title</th><th>journal</th><th>publish_time</th></tr>
      {{range .Dashboard.Preview}}
      <tr><td>{{.CordUID}}</td><td>{{.Title}}</td><td>{{.Journal}}</td><td>{{.PublishTime}}</td></tr>
      {{end}}
    </table>
  </section>

  <section>
    <h2>Papers Published Over Time</h2>
    {{with .Dashboard.Timeline.Warning}}<p class="warning">{{.}}</p>{{else}}<canvas id="timeline" height="90"></canvas>{{end}}
  </section>

  <section>
    <h2>Top Journals</h2>
    {{with .Dashboard.Journals.Warning}}<p class="warning">{{.}}</p>{{else}}<canvas id="journals" height="110"></canvas>{{end}}
  </section>

  <section>
    <h2>Most Frequent Words Used in Paper Titles</h2>
    {{if .Interactive}}
    <form id="controls" method="get">
      <span>Choose visualization:</span>
      <label><input type="radio" name="mode" value="bar"{{if eq .Dashboard.Words.Mode "bar"}} checked{{end}}> Bar Chart (Top Words)</label>
      <label><input type="radio" name="mode" value="cloud"{{if eq .Dashboard.Words.Mode "cloud"}} checked{{end}}> Word Cloud</label>
      {{if eq .Dashboard.Words.Mode "bar"}}
      <label>Select number of top words to display:
        <input type="range" name="n" min="{{.MinTopN}}" max="{{.MaxTopN}}" value="{{.Dashboard.Words.TopN}}"
               oninput="this.nextElementSibling.value = this.value">
        <output>{{.Dashboard.Words.TopN}}</output>
      </label>
      {{else}}
      <input type="hidden" name="n" value="{{.Dashboard.Words.TopN}}">
      {{end}}
    </form>
    {{end}}
    {{with .Dashboard.Words.Warning}}
    <p class="warning">{{.}}</p>
    {{else}}
      {{if .CloudURI}}
    <h3>Word Cloud of Paper Titles (Filtered Stopwords)</h3>
    <img id="cloud" src="{{.CloudURI}}" alt="Word cloud of paper titles">
      {{else}}
    <h3>Top {{.Dashboard.Words.TopN}} Most Frequent Words in Titles</h3>
    <canvas id="words" height="110"></canvas>
      {{end}}
    {{end}}
  </section>

  <section>
    <h2>Long-tail Distribution of Journals</h2>
    {{with .Dashboard.LongTail.Warning}}<p class="warning">{{.}}</p>{{else}}<canvas id="longtail" height="110"></canvas>{{end}}
  </section>

  <script>
    (function() {
      const charts = {{.ChartsJSON}};

      function draw(id, config) {
        const el = document.getElementById(id);
        if (el && window.Chart) {
          new Chart(el, config);
        }
      }

      draw('timeline', {
        type: 'line',
        data: {
          labels: charts.timeline.labels,
          datasets: [{ label: 'Papers', data: charts.timeline.values, borderColor: '#4A90D9', pointRadius: 0, tension: 0.1 }]
        },
        options: { plugins: { legend: { display: false } } }
      });

      draw('journals', {
        type: 'bar',
        data: {
          labels: charts.journals.labels,
          datasets: [{ label: 'Number of Papers', data: charts.journals.values, backgroundColor: '#4A90D9' }]
        },
        options: {
          plugins: { title: { display: true, text: 'Top 10 Journals Publishing Covid-19 Papers' }, legend: { display: false } },
          scales: {
            x: { title: { display: true, text: 'Journal' }, ticks: { maxRotation: 45, minRotation: 45 } },
            y: { title: { display: true, text: 'Number of Papers' } }
          }
        }
      });

      draw('words', {
        type: 'bar',
        data: {
          labels: charts.words.labels,
          datasets: [{ label: 'Count', data: charts.words.values, backgroundColor: '#27AE60' }]
        },
        options: {
          plugins: { legend: { display: false } },
          scales: { x: { ticks: { maxRotation: 45, minRotation: 45 } } }
        }
      });

      draw('longtail', {
        type: 'scatter',
        data: { datasets: [{ label: 'Journals', data: charts.longTail, backgroundColor: '#E8923A' }] },
        options: {
          plugins: { legend: { display: false } },
          scales: {
            x: { type: 'logarithmic', title: { display: true, text: 'Rank of Journal' } },
            y: { type: 'logarithmic', title: { display: true, text: 'Number of Papers (log scale)' } }
          }
        }
      });

      const controls = document.getElementById('controls');
      if (controls) {
        controls.addEventListener('change', function() { controls.submit(); });
      }
    })();
  </script>
</body>
</html>`
