// Package announce renders and sends the release announcement email.
package announce

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html"
	htmltemplate "html/template"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	texttemplate "text/template"

	"releasekit.dev/releasekit/internal/issues"
)

// Template names looked up in a user template directory
const (
	TextTemplateName = "email_template.txt"
	HTMLTemplateName = "email_template.html"
)

// EmptyNotice replaces the release notes when no issue was closed for the release
const EmptyNotice = "No issue listed for this release"

//go:embed templates/*
var defaultTemplates embed.FS

// Release describes what is being announced
type Release struct {
	ArtifactID  string
	Version     string
	Name        string
	Description string
	ProjectURL  string
}

// Renderer renders announcements, preferring templates found in TemplateDir
type Renderer struct {
	TemplateDir string
}

type templateData struct {
	ReleaseVersion      string
	ArtifactID          string
	ArtifactName        string
	ArtifactDescription string
	ProjectURL          string
	Issues              string
	EmptyMessage        string
	Sections            issues.Categorized
}

type htmlTemplateData struct {
	templateData
	Issues       htmltemplate.HTML
	EmptyMessage htmltemplate.HTML
}

// Render renders rel with the default templates
func Render(rel Release, categorized issues.Categorized) (*Message, error) {
	return (&Renderer{}).Render(rel, categorized)
}

// Render builds the two-part announcement for rel listing the categorized issues
func (r *Renderer) Render(rel Release, categorized issues.Categorized) (*Message, error) {
	data := templateData{
		ReleaseVersion:      rel.Version,
		ArtifactID:          rel.ArtifactID,
		ArtifactName:        rel.Name,
		ArtifactDescription: rel.Description,
		ProjectURL:          rel.ProjectURL,
	}
	for _, bucket := range categorized {
		if len(bucket.Issues) > 0 {
			data.Sections = append(data.Sections, bucket)
		}
	}

	htmlData := htmlTemplateData{templateData: data}
	if len(data.Sections) == 0 {
		data.EmptyMessage = EmptyNotice
		htmlData.EmptyMessage = htmltemplate.HTML("<p>" + EmptyNotice + "</p>")
	} else {
		data.Issues = FormatPlain(data.Sections)
		htmlData.Issues = htmltemplate.HTML(FormatHTML(data.Sections))
	}

	textSrc, err := r.read(TextTemplateName)
	if err != nil {
		return nil, err
	}
	textTmpl, err := texttemplate.New(TextTemplateName).Parse(textSrc)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", TextTemplateName, err)
	}
	var text bytes.Buffer
	if err := textTmpl.Execute(&text, data); err != nil {
		return nil, fmt.Errorf("failed to render %s: %w", TextTemplateName, err)
	}

	htmlSrc, err := r.read(HTMLTemplateName)
	if err != nil {
		return nil, err
	}
	htmlTmpl, err := htmltemplate.New(HTMLTemplateName).Parse(htmlSrc)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", HTMLTemplateName, err)
	}
	var htmlOut bytes.Buffer
	if err := htmlTmpl.Execute(&htmlOut, htmlData); err != nil {
		return nil, fmt.Errorf("failed to render %s: %w", HTMLTemplateName, err)
	}

	return &Message{
		Subject: fmt.Sprintf("[ANN] %s %s released", rel.Name, rel.Version),
		Text:    text.String(),
		HTML:    htmlOut.String(),
	}, nil
}

// read returns the user template when present, the embedded default otherwise
func (r *Renderer) read(name string) (string, error) {
	if r.TemplateDir != "" {
		data, err := os.ReadFile(filepath.Join(r.TemplateDir, name))
		if err == nil {
			return string(data), nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("failed to read template %s: %w", name, err)
		}
	}
	data, err := defaultTemplates.ReadFile("templates/" + name)
	if err != nil {
		return "", fmt.Errorf("failed to read default template %s: %w", name, err)
	}
	return string(data), nil
}

// FormatPlain lists every non-empty bucket as
//
//	Fix:
//	 * [42] - title (url)
func FormatPlain(categorized issues.Categorized) string {
	var sb strings.Builder
	for _, bucket := range categorized {
		if len(bucket.Issues) == 0 {
			continue
		}
		fmt.Fprintf(&sb, "%s:\n", bucket.Category.Title)
		for _, issue := range bucket.Issues {
			fmt.Fprintf(&sb, " * [%d] - %s (%s)\n", issue.Number, issue.Title, issue.URL)
		}
	}
	return sb.String()
}

// FormatHTML lists every non-empty bucket as a heading and a list of links
func FormatHTML(categorized issues.Categorized) string {
	var sb strings.Builder
	for _, bucket := range categorized {
		if len(bucket.Issues) == 0 {
			continue
		}
		fmt.Fprintf(&sb, "<h2>%s</h2>\n<ul>\n", html.EscapeString(bucket.Category.Title))
		for _, issue := range bucket.Issues {
			fmt.Fprintf(&sb, "<li>[<a href=\"%s\">%d</a>] - %s\n",
				html.EscapeString(issue.URL), issue.Number, html.EscapeString(issue.Title))
		}
		sb.WriteString("</ul>\n")
	}
	return sb.String()
}
