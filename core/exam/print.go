package exam

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/microcosm-cc/bluemonday"
)

const scheduleLayout = "Mon 02 Jan 2006, 15:04"

var (
	htmlPolicyOnce sync.Once
	htmlPolicy     *bluemonday.Policy
)

func renderMarkdown(e Exam, questions []Question) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", e.Title)

	var meta []string
	if e.ScheduledAt.Valid {
		meta = append(meta, e.ScheduledAt.Time.Format(scheduleLayout))
	}
	if e.DurationMinutes > 0 {
		meta = append(meta, strconv.Itoa(e.DurationMinutes)+" minutes")
	}
	meta = append(meta, formatPoints(e.TotalPoints))
	fmt.Fprintf(&b, "_%s_\n\n", strings.Join(meta, " | "))

	for i, q := range questions {
		fmt.Fprintf(&b, "## Question %d (%s)\n\n%s\n\n", i+1, formatPoints(q.Points), q.Text)
		switch q.Type {
		case TypeShort:
			b.WriteString("Answer: ______________________________\n\n")
		default:
			if q.Type == TypeMultiple {
				b.WriteString("_Select all that apply._\n\n")
			}
			for _, c := range q.Choices {
				fmt.Fprintf(&b, "- [ ] %s\n", c)
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}

// renderHTML converts md to HTML and strips anything a question text could smuggle in.
func renderHTML(md string) string {
	htmlPolicyOnce.Do(func() {
		htmlPolicy = bluemonday.UGCPolicy()
	})
	p := parser.NewWithExtensions(parser.CommonExtensions)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	return string(htmlPolicy.SanitizeBytes(markdown.ToHTML([]byte(md), p, renderer)))
}

func formatPoints(p float64) string {
	s := strconv.FormatFloat(p, 'f', -1, 64)
	if p == 1 {
		return s + " point"
	}
	return s + " points"
}
