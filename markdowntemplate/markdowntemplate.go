// Package markdowntemplate loads .qwery.md literate query documents: a
// markdown file with a YAML front-matter block and one or more named
// sections, each holding a fenced ```sql block that becomes a named
// template for the Statement Compiler. Mirrors the teacher's
// markdownparser package and its .snap.md convention, generalized from a
// single required SQL section to many named ones per document.
package markdowntemplate

import (
	"fmt"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

var (
	ErrInvalidFrontMatter = fmt.Errorf("markdowntemplate: invalid front matter")
	ErrNoTemplates        = fmt.Errorf("markdowntemplate: no sql section found")
	ErrUnknownTemplate    = fmt.Errorf("markdowntemplate: unknown template")
)

// Document is a parsed .qwery.md file: front-matter metadata plus named
// SQL templates, one per H2 section's fenced sql block.
type Document struct {
	Title     string
	Metadata  map[string]any
	Templates map[string]string
}

// Parse reads source's front matter and named SQL sections.
func Parse(source string) (*Document, error) {
	metadata, body, err := splitFrontMatter(source)
	if err != nil {
		return nil, err
	}

	content := []byte(body)
	md := goldmark.New(goldmark.WithParserOptions(parser.WithAutoHeadingID()))
	doc := md.Parser().Parse(text.NewReader(content))

	title, templates := extractTemplates(doc, content)
	if len(templates) == 0 {
		return nil, ErrNoTemplates
	}

	return &Document{Title: title, Metadata: metadata, Templates: templates}, nil
}

// Template returns a named section's SQL body. An empty name resolves to
// a document's sole section, the common case for a one-query file.
func (d *Document) Template(name string) (string, error) {
	if name == "" {
		if len(d.Templates) == 1 {
			for _, sql := range d.Templates {
				return sql, nil
			}
		}

		return "", fmt.Errorf("%w: document holds more than one template", ErrUnknownTemplate)
	}

	sql, ok := d.Templates[strings.ToLower(name)]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownTemplate, name)
	}

	return sql, nil
}

func extractTemplates(doc ast.Node, content []byte) (string, map[string]string) {
	templates := make(map[string]string)

	var title, sectionName string

	var sectionNodes []ast.Node

	flush := func() {
		if sectionName == "" {
			return
		}

		if sql := sqlBlock(sectionNodes, content); sql != "" {
			templates[sectionName] = sql
		}
	}

	ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch node := n.(type) {
		case *ast.Heading:
			heading := headingText(node, content)

			switch {
			case node.Level == 1 && title == "":
				title = heading
			case node.Level == 2:
				flush()

				sectionName = strings.ToLower(heading)
				sectionNodes = nil
			}
		default:
			if sectionName != "" {
				sectionNodes = append(sectionNodes, n)
			}
		}

		return ast.WalkContinue, nil
	})

	flush()

	return title, templates
}

func headingText(h *ast.Heading, content []byte) string {
	var b strings.Builder

	ast.Walk(h, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if entering && n.Kind() == ast.KindText {
			b.Write(n.Text(content))
		}

		return ast.WalkContinue, nil
	})

	return strings.TrimSpace(b.String())
}

// sqlBlock finds a section's fenced ```sql block, if any, joining its
// lines back into a single statement string.
func sqlBlock(nodes []ast.Node, content []byte) string {
	for _, n := range nodes {
		block, ok := n.(*ast.FencedCodeBlock)
		if !ok || block.Info == nil {
			continue
		}

		info := strings.ToLower(strings.TrimSpace(string(block.Info.Text(content))))
		if info != "sql" {
			continue
		}

		var b strings.Builder

		lines := block.Lines()
		for i := 0; i < lines.Len(); i++ {
			line := lines.At(i)
			b.Write(line.Value(content))
		}

		return strings.TrimRight(b.String(), "\n")
	}

	return ""
}

// splitFrontMatter peels a leading `---`-delimited YAML block off source.
func splitFrontMatter(source string) (map[string]any, string, error) {
	lines := strings.Split(source, "\n")
	if len(lines) < 3 || strings.TrimSpace(lines[0]) != "---" {
		return map[string]any{}, source, nil
	}

	end := -1

	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			end = i
			break
		}
	}

	if end == -1 {
		return nil, "", ErrInvalidFrontMatter
	}

	var meta map[string]any
	if err := yaml.Unmarshal([]byte(strings.Join(lines[1:end], "\n")), &meta); err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrInvalidFrontMatter, err)
	}

	if meta == nil {
		meta = map[string]any{}
	}

	return meta, strings.Join(lines[end+1:], "\n"), nil
}
