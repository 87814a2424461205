package parser

import (
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/harrison/delegate/internal/models"
	"github.com/harrison/delegate/internal/render"
)

var taskHeadingPrefix = regexp.MustCompile(`^\d+\.\s+`)

// MarkdownParser reads reports in the layout written by render.Markdown:
// "## <Cadence> Tasks" sections holding "### N. Title" tasks, each with a
// "- Key: value" list and a description paragraph.
type MarkdownParser struct {
	markdown goldmark.Markdown
}

func NewMarkdownParser() *MarkdownParser {
	return &MarkdownParser{markdown: goldmark.New()}
}

type markdownTask struct {
	task         models.Task
	delegatedSet bool
}

// Parse returns the report described by source with metrics recomputed
// from its tasks.
func (p *MarkdownParser) Parse(source []byte) (models.Report, error) {
	doc := p.markdown.Parser().Parse(text.NewReader(source))

	var (
		report  models.Report
		summary []string
		cadence models.Cadence
		inTasks bool
		current *markdownTask
	)

	flush := func() {
		if current == nil {
			return
		}
		t := current.task
		if !current.delegatedSet {
			t.Delegated = t.Owner == models.OwnerAssistant
		}
		if cadence != "" {
			report.Tasks = report.Tasks.With(cadence, append(report.Tasks.Get(cadence), t))
		}
		current = nil
	}

	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		switch node := n.(type) {
		case *ast.Heading:
			switch node.Level {
			case 2:
				flush()
				inTasks = true
				cadence = cadenceFromHeading(nodeText(node, source))
			case 3:
				flush()
				title := taskHeadingPrefix.ReplaceAllString(nodeText(node, source), "")
				current = &markdownTask{task: models.Task{Title: title, Cadence: cadence}}
			}

		case *ast.List:
			if current == nil {
				continue
			}
			for item := node.FirstChild(); item != nil; item = item.NextSibling() {
				applyField(current, nodeText(item, source))
			}

		case *ast.Paragraph:
			if onlyEmphasis(node) {
				continue
			}
			body := nodeText(node, source)
			switch {
			case current != nil:
				current.task.Description = strings.TrimSpace(current.task.Description + " " + body)
			case !inTasks && !strings.HasPrefix(body, "Delegation:"):
				summary = append(summary, body)
			}
		}
	}
	flush()

	report.Summary = strings.Join(summary, " ")
	return report.Recounted(), nil
}

func cadenceFromHeading(heading string) models.Cadence {
	fields := strings.Fields(strings.ToLower(heading))
	if len(fields) == 0 {
		return ""
	}
	for _, c := range models.Cadences {
		if fields[0] == string(c) {
			return c
		}
	}
	return ""
}

func applyField(t *markdownTask, line string) {
	key, value, ok := strings.Cut(line, ":")
	if !ok {
		return
	}
	value = strings.TrimSpace(value)
	switch strings.TrimSpace(key) {
	case render.LabelOwner:
		t.task.Owner = models.ParseOwner(value)
	case render.LabelDelegated:
		switch strings.ToLower(value) {
		case "yes", "true":
			t.task.Delegated, t.delegatedSet = true, true
		case "no", "false":
			t.task.Delegated, t.delegatedSet = false, true
		}
	case render.LabelPriority:
		t.task.Priority = models.Priority(strings.ToLower(value))
	case render.LabelCategory:
		t.task.Category = value
	case render.LabelMandatory:
		t.task.Mandatory = models.MandatoryCategory(value)
	}
}

func onlyEmphasis(n ast.Node) bool {
	return n.ChildCount() == 1 && n.FirstChild().Kind() == ast.KindEmphasis
}

// nodeText concatenates the inline text under n, turning line breaks into spaces.
func nodeText(n ast.Node, source []byte) string {
	var sb strings.Builder
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *ast.Text:
			sb.Write(t.Segment.Value(source))
			if t.SoftLineBreak() || t.HardLineBreak() {
				sb.WriteString(" ")
			}
		case *ast.String:
			sb.Write(t.Value)
		}
		return ast.WalkContinue, nil
	})
	return strings.Join(strings.Fields(sb.String()), " ")
}
