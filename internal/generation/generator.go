// Package generation turns user requests into site code through an LLM and
// falls back to static templates whenever the model is unavailable or
// returns something unusable.
package generation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"regexp"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// LLM produces text for a prompt.
type LLM interface {
	Generate(ctx context.Context, prompt string, opts Options) (string, error)
}

type Options struct {
	// JSON asks the model for a JSON response body.
	JSON bool
}

var errEmptyOutput = errors.New("model returned empty output")

var jsonObject = regexp.MustCompile(`\{[\s\S]*\}`)

const (
	defaultTitle       = "Generated Project"
	defaultDescription = "Generated using AI"
	defaultHTML        = "<!DOCTYPE html><html><head><title>Generated Site</title></head><body><h1>Generated Content</h1></body></html>"
	defaultCSS         = "/* Generated styles */"
	defaultJS          = "// Generated JavaScript"
)

type Generator struct {
	llm LLM
	log *zap.Logger
}

// New returns a generator. A nil llm means every call is served from templates.
func New(llm LLM, log *zap.Logger) *Generator {
	return &Generator{llm: llm, log: log}
}

func (g *Generator) Enabled() bool { return g.llm != nil }

func (g *Generator) generate(ctx context.Context, prompt string, opts Options) (string, error) {
	if g.llm == nil {
		return "", errors.New("no model configured")
	}
	out, err := g.llm.Generate(ctx, prompt, opts)
	if err != nil {
		return "", err
	}
	out = StripFences(out)
	if out == "" {
		return "", errEmptyOutput
	}
	return out, nil
}

// GenerateComponent never fails; it falls back to MockComponent.
func (g *Generator) GenerateComponent(ctx context.Context, componentType, framework, stylePreferences string) string {
	code, err := g.generate(ctx, componentPrompt(componentType, framework, stylePreferences), Options{})
	if err != nil {
		g.log.Info("using template component",
			zap.String("component_type", componentType),
			zap.String("reason", err.Error()),
		)
		return MockComponent(componentType)
	}
	return code
}

// GenerateBackend asks for routes, models and middleware concurrently.
// If any of the three fails the whole result comes from MockBackend.
func (g *Generator) GenerateBackend(ctx context.Context, database, framework string, f Features) Backend {
	if g.llm == nil {
		return MockBackend(database, framework, f)
	}

	routesPrompt, modelsPrompt, middlewarePrompt := backendPrompts(database, framework, f)
	var out Backend

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() (err error) {
		out.Routes, err = g.generate(egCtx, routesPrompt, Options{})
		return err
	})
	eg.Go(func() (err error) {
		out.Models, err = g.generate(egCtx, modelsPrompt, Options{})
		return err
	})
	eg.Go(func() (err error) {
		out.Middleware, err = g.generate(egCtx, middlewarePrompt, Options{})
		return err
	})

	if err := eg.Wait(); err != nil {
		g.log.Warn("backend generation failed, using templates",
			zap.String("database", database),
			zap.String("framework", framework),
			zap.Error(err),
		)
		return MockBackend(database, framework, f)
	}
	return out
}

// BuildFromPrompt always returns a complete site: the model's when it
// produces usable JSON, otherwise MockWebsite.
func (g *Generator) BuildFromPrompt(ctx context.Context, prompt string, mode Mode) Website {
	if g.llm == nil {
		return MockWebsite(prompt, mode)
	}

	raw, err := g.generate(ctx, websitePrompt(prompt, mode), Options{JSON: true})
	if err == nil {
		var site *Website
		site, err = parseWebsite(raw)
		if err == nil {
			return *site
		}
	}

	g.log.Warn("site generation failed, using template",
		zap.String("mode", string(mode)),
		zap.Error(err),
	)
	return MockWebsite(prompt, mode)
}

// OptimizeCode returns the model's rewrite of code, or code unchanged.
func (g *Generator) OptimizeCode(ctx context.Context, code, kind string) string {
	out, err := g.generate(ctx, optimizePrompt(code, kind), Options{})
	if err != nil {
		g.log.Info("code optimization skipped", zap.String("reason", err.Error()))
		return code
	}
	return out
}

type modelWebsite struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Components  json.RawMessage `json:"components"`
	HTMLCode    string          `json:"htmlCode"`
	CSSCode     string          `json:"cssCode"`
	JSCode      string          `json:"jsCode"`
}

func parseWebsite(raw string) (*Website, error) {
	var m modelWebsite
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		match := jsonObject.FindString(raw)
		if match == "" {
			return nil, fmt.Errorf("no JSON object in model output: %w", err)
		}
		m = modelWebsite{}
		if err := json.Unmarshal([]byte(match), &m); err != nil {
			return nil, fmt.Errorf("decode model output: %w", err)
		}
	}

	site := &Website{
		Title:       truncateRunes(strings.TrimSpace(orDefault(m.Title, defaultTitle)), maxTitleRunes),
		Description: truncateRunes(orDefault(m.Description, defaultDescription), maxDescriptionRunes),
		Components:  componentsOrEmpty(m.Components),
		HTMLCode:    StripFences(orDefault(m.HTMLCode, defaultHTML)),
		CSSCode:     StripFences(orDefault(m.CSSCode, defaultCSS)),
		JSCode:      StripFences(orDefault(m.JSCode, defaultJS)),
	}
	site.HTMLCode = ensureDocument(site.HTMLCode, site.Title)
	return site, nil
}

// ensureDocument guarantees a <!DOCTYPE html> ... </html> document.
func ensureDocument(doc, title string) string {
	doc = strings.TrimSpace(doc)
	lower := strings.ToLower(doc)

	switch {
	case strings.HasPrefix(lower, "<!doctype"):
	case strings.Contains(lower, "<html"):
		doc = "<!DOCTYPE html>\n" + doc
	default:
		doc = "<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n  <meta charset=\"UTF-8\">\n  <title>" +
			html.EscapeString(title) + "</title>\n</head>\n<body>\n" + doc + "\n</body>\n</html>"
	}

	if !strings.HasSuffix(strings.ToLower(doc), "</html>") {
		doc += "\n</html>"
	}
	return doc
}

func componentsOrEmpty(c json.RawMessage) json.RawMessage {
	trimmed := strings.TrimSpace(string(c))
	if !strings.HasPrefix(trimmed, "[") {
		return json.RawMessage("[]")
	}
	return json.RawMessage(trimmed)
}

// Stored projects cap title and description at these lengths.
const (
	maxTitleRunes       = 255
	maxDescriptionRunes = 2000
)

func truncateRunes(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max])
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
