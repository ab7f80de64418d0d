package views

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"gopkg.in/yaml.v3"
)

//go:embed content/home.md
var homeSource string

// HomeContent is the parsed landing page copy.
type HomeContent struct {
	Title         string `yaml:"title"`
	Summary       string `yaml:"summary"`
	LoginLabel    string `yaml:"login_label"`
	RegisterLabel string `yaml:"register_label"`
	BodyHTML      string `yaml:"-"`
}

var (
	homeOnce    sync.Once
	homeContent HomeContent
	homeErr     error

	markdown   = goldmark.New(goldmark.WithExtensions(extension.GFM))
	bodyPolicy = bluemonday.UGCPolicy()
)

// LoadHome parses the embedded landing page once.
func LoadHome() (HomeContent, error) {
	homeOnce.Do(func() {
		homeContent, homeErr = ParseContent(homeSource)
	})
	return homeContent, homeErr
}

// ParseContent splits YAML front matter from a markdown body and renders the
// body to sanitised HTML.
func ParseContent(src string) (HomeContent, error) {
	fm, body := splitFrontMatter(src)

	var content HomeContent
	if fm != "" {
		if err := yaml.Unmarshal([]byte(fm), &content); err != nil {
			return HomeContent{}, fmt.Errorf("views: parse front matter: %w", err)
		}
	}

	var buf bytes.Buffer
	if err := markdown.Convert([]byte(body), &buf); err != nil {
		return HomeContent{}, fmt.Errorf("views: render markdown: %w", err)
	}
	content.BodyHTML = bodyPolicy.Sanitize(buf.String())

	if content.LoginLabel == "" {
		content.LoginLabel = "Sign in"
	}
	if content.RegisterLabel == "" {
		content.RegisterLabel = "Create an account"
	}
	return content, nil
}

func splitFrontMatter(input string) (string, string) {
	input = strings.TrimLeft(input, "\ufeff")
	lines := strings.Split(input, "\n")
	if strings.TrimSpace(lines[0]) != "---" {
		return "", input
	}
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			fm := strings.Join(lines[1:i], "\n")
			body := strings.Join(lines[i+1:], "\n")
			return fm, strings.TrimLeft(body, "\n\r")
		}
	}
	return "", input
}
