package generation

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeLLM struct {
	mu      sync.Mutex
	respond func(prompt string, opts Options) (string, error)
	prompts []string
}

func (f *fakeLLM) Generate(_ context.Context, prompt string, opts Options) (string, error) {
	f.mu.Lock()
	f.prompts = append(f.prompts, prompt)
	f.mu.Unlock()
	return f.respond(prompt, opts)
}

func reply(s string) *fakeLLM {
	return &fakeLLM{respond: func(string, Options) (string, error) { return s, nil }}
}

func failing(err error) *fakeLLM {
	return &fakeLLM{respond: func(string, Options) (string, error) { return "", err }}
}

func assertWellFormed(t *testing.T, doc string) {
	t.Helper()
	assert.True(t, strings.HasPrefix(doc, "<!DOCTYPE html>"), "doc should start with doctype: %.40q", doc)
	assert.True(t, strings.HasSuffix(doc, "</html>"), "doc should end with </html>")
}

func TestGenerateComponent(t *testing.T) {
	ctx := context.Background()

	t.Run("no model uses template", func(t *testing.T) {
		g := New(nil, zap.NewNop())
		assert.Equal(t, MockComponent("Navigation Bar"), g.GenerateComponent(ctx, "Navigation Bar", "React", "clean"))
	})

	t.Run("model output is fence stripped", func(t *testing.T) {
		llm := reply("```tsx\nexport default Thing;\n```")
		g := New(llm, zap.NewNop())

		assert.Equal(t, "export default Thing;", g.GenerateComponent(ctx, "Thing", "React", "clean"))
		require.Len(t, llm.prompts, 1)
		assert.Contains(t, llm.prompts[0], "Style preferences: clean")
	})

	t.Run("empty output falls back", func(t *testing.T) {
		g := New(reply("```\n```"), zap.NewNop())
		assert.Equal(t, MockComponent("Card Component"), g.GenerateComponent(ctx, "Card Component", "React", ""))
	})

	t.Run("error falls back", func(t *testing.T) {
		g := New(failing(errors.New("quota")), zap.NewNop())
		assert.Equal(t, MockComponent("Hero Section"), g.GenerateComponent(ctx, "Unknown", "React", ""))
	})
}

func TestGenerateBackend(t *testing.T) {
	ctx := context.Background()
	features := Features{UserAuth: true, CrudOps: true}

	t.Run("three concurrent prompts", func(t *testing.T) {
		llm := &fakeLLM{respond: func(prompt string, _ Options) (string, error) {
			switch {
			case strings.Contains(prompt, "API routes"):
				return "routes", nil
			case strings.Contains(prompt, "models/schemas"):
				return "models", nil
			default:
				return "middleware", nil
			}
		}}
		g := New(llm, zap.NewNop())

		got := g.GenerateBackend(ctx, "PostgreSQL", "Express", features)
		assert.Equal(t, Backend{Routes: "routes", Models: "models", Middleware: "middleware"}, got)
		assert.Len(t, llm.prompts, 3)
		for _, p := range llm.prompts {
			assert.Contains(t, p, "userAuth, crudOps")
		}
	})

	t.Run("one failure returns the full template", func(t *testing.T) {
		llm := &fakeLLM{respond: func(prompt string, _ Options) (string, error) {
			if strings.Contains(prompt, "middleware") {
				return "", errors.New("boom")
			}
			return "ok", nil
		}}
		g := New(llm, zap.NewNop())

		got := g.GenerateBackend(ctx, "MongoDB", "Express", features)
		assert.Equal(t, MockBackend("MongoDB", "Express", features), got)
	})
}

func TestMockBackend(t *testing.T) {
	mongo := MockBackend("MongoDB", "Express", Features{UserAuth: true})
	assert.Contains(t, mongo.Models, "mongoose")
	assert.Contains(t, mongo.Routes, "/auth/login")
	assert.NotContains(t, mongo.Routes, "/users")
	assert.Contains(t, mongo.Middleware, "authMiddleware")

	sql := MockBackend("PostgreSQL", "Fastify", Features{CrudOps: true, FileUpload: true, EmailIntegration: true})
	assert.Contains(t, sql.Models, "pgTable")
	assert.Contains(t, sql.Routes, "/users")
	assert.Contains(t, sql.Routes, "/upload")
	assert.Contains(t, sql.Routes, "/email/send")
	assert.Contains(t, sql.Middleware, "Middleware for Fastify")
	assert.NotContains(t, sql.Middleware, "authMiddleware")
}

func TestMockComponent(t *testing.T) {
	assert.Contains(t, MockComponent("Hero Section"), "HeroSection")
	assert.Contains(t, MockComponent("Navigation Bar"), "Navigation")
	assert.Contains(t, MockComponent("Card Component"), "CardProps")
	assert.Equal(t, MockComponent("Hero Section"), MockComponent("Pricing Table"))
}

func TestMockWebsite(t *testing.T) {
	titles := map[string]string{
		"my portfolio please":    "Portfolio Website",
		"An E-Commerce shop":     "E-commerce Store",
		"a blog about cats":      "Blog Platform",
		"sales dashboard":        "Admin Dashboard",
		"something else":         "Modern Web App",
		"":                       "Modern Web App",
		"portfolio with a blog":  "Portfolio Website",
		"dashboard for my blog!": "Blog Platform",
	}
	for prompt, want := range titles {
		site := MockWebsite(prompt, ModeWebApp)
		assert.Equal(t, want, site.Title, "prompt %q", prompt)
		assertWellFormed(t, site.HTMLCode)
		assert.JSONEq(t, `[{"type":"header","content":"Navigation Header"},{"type":"hero","content":"Hero Section"},{"type":"content","content":"Main Content"},{"type":"footer","content":"Footer"}]`, string(site.Components))
	}

	flow := MockWebsite("approve invoices", ModeFlow)
	assert.Equal(t, "User Workflow", flow.Title)
	assert.Contains(t, flow.HTMLCode, "approve invoices")
	assert.Contains(t, string(flow.Components), `"decision"`)
	assertWellFormed(t, flow.HTMLCode)
}

func TestMockWebsite_EscapesPrompt(t *testing.T) {
	site := MockWebsite(`<script>alert("x")</script></html>`, ModeWebApp)

	assert.NotContains(t, site.HTMLCode, "<script>alert")
	assert.Contains(t, site.HTMLCode, "&lt;script&gt;")
	assertWellFormed(t, site.HTMLCode)
	assert.Equal(t, 1, strings.Count(site.HTMLCode, "</html>"))
}

func TestBuildFromPrompt_NoModelAlwaysWellFormed(t *testing.T) {
	g := New(nil, zap.NewNop())
	prompts := []string{"", "a blog", "```", "</body></html>", strings.Repeat("x", 5000), "\"quoted\" & <b>bold</b>"}

	for _, mode := range []Mode{ModeWebApp, ModeFlow} {
		for _, p := range prompts {
			site := g.BuildFromPrompt(context.Background(), p, mode)
			assertWellFormed(t, site.HTMLCode)
		}
	}
}

func TestBuildFromPrompt_ParsesModelJSON(t *testing.T) {
	llm := reply("```json\n" + `{
		"title": "Bakery",
		"description": "Fresh bread",
		"components": [{"type":"hero","content":"Loaves"}],
		"htmlCode": "` + "```html\\n<!DOCTYPE html><html><body>bread</body></html>\\n```" + `",
		"cssCode": "body{}",
		"jsCode": ""
	}` + "\n```")
	g := New(llm, zap.NewNop())

	site := g.BuildFromPrompt(context.Background(), "a bakery", ModeWebApp)

	assert.Equal(t, "Bakery", site.Title)
	assert.Equal(t, "Fresh bread", site.Description)
	assert.JSONEq(t, `[{"type":"hero","content":"Loaves"}]`, string(site.Components))
	assert.Equal(t, "<!DOCTYPE html><html><body>bread</body></html>", site.HTMLCode)
	assert.Equal(t, "body{}", site.CSSCode)
	assert.Equal(t, defaultJS, site.JSCode)
}

func TestBuildFromPrompt_ExtractsJSONFromProse(t *testing.T) {
	g := New(reply(`Sure! Here you go: {"title":"Gym","htmlCode":"<h1>Lift</h1>"} Enjoy.`), zap.NewNop())

	site := g.BuildFromPrompt(context.Background(), "gym", ModeWebApp)

	assert.Equal(t, "Gym", site.Title)
	assert.Equal(t, defaultDescription, site.Description)
	assert.JSONEq(t, `[]`, string(site.Components))
	assert.Contains(t, site.HTMLCode, "<h1>Lift</h1>")
	assertWellFormed(t, site.HTMLCode)
}

func TestBuildFromPrompt_CapsTitleAndDescription(t *testing.T) {
	title := strings.Repeat("é", 300)
	desc := strings.Repeat("d", 2500)
	g := New(reply(`{"title":"`+title+`","description":"`+desc+`","htmlCode":"<p>x</p>"}`), zap.NewNop())

	site := g.BuildFromPrompt(context.Background(), "x", ModeWebApp)

	assert.Equal(t, 255, utf8.RuneCountInString(site.Title))
	assert.Equal(t, 2000, utf8.RuneCountInString(site.Description))
	assertWellFormed(t, site.HTMLCode)
}

func TestBuildFromPrompt_FallsBack(t *testing.T) {
	cases := map[string]*fakeLLM{
		"error":      failing(errors.New("timeout")),
		"empty":      reply("   "),
		"not json":   reply("I cannot help with that."),
		"broken obj": reply(`{"title": "x",}`),
	}
	for name, llm := range cases {
		t.Run(name, func(t *testing.T) {
			g := New(llm, zap.NewNop())
			site := g.BuildFromPrompt(context.Background(), "a portfolio", ModeWebApp)
			assert.Equal(t, MockWebsite("a portfolio", ModeWebApp), site)
		})
	}
}

func TestBuildFromPrompt_RequestsJSON(t *testing.T) {
	var gotOpts Options
	llm := &fakeLLM{respond: func(_ string, opts Options) (string, error) {
		gotOpts = opts
		return `{"title":"x"}`, nil
	}}
	g := New(llm, zap.NewNop())

	_ = g.BuildFromPrompt(context.Background(), "x", ModeFlow)
	assert.True(t, gotOpts.JSON)
	assert.Contains(t, llm.prompts[0], "workflow designer")
}

func TestOptimizeCode(t *testing.T) {
	ctx := context.Background()

	assert.Equal(t, "let a", New(nil, zap.NewNop()).OptimizeCode(ctx, "let a", "component"))
	assert.Equal(t, "let a", New(failing(errors.New("x")), zap.NewNop()).OptimizeCode(ctx, "let a", "component"))
	assert.Equal(t, "const a = 1;", New(reply("```js\nconst a = 1;\n```"), zap.NewNop()).OptimizeCode(ctx, "let a", "backend"))
}

func TestEnsureDocument(t *testing.T) {
	assert.Equal(t, "<!DOCTYPE html><html></html>", ensureDocument("<!DOCTYPE html><html></html>", "t"))
	assert.Equal(t, "<!DOCTYPE html>\n<html><body>x</body></html>", ensureDocument("<html><body>x</body></html>", "t"))
	assert.Equal(t, "<!doctype html><html><body>x\n</html>", ensureDocument("<!doctype html><html><body>x", "t"))

	wrapped := ensureDocument("<p>hi</p>", "A & B")
	assertWellFormed(t, wrapped)
	assert.Contains(t, wrapped, "<title>A &amp; B</title>")
	assert.Contains(t, wrapped, "<p>hi</p>")
}

func TestParseMode(t *testing.T) {
	assert.Equal(t, ModeFlow, ParseMode("flow"))
	for _, in := range []string{"", "webapp", "website", "WebApp", "Flow", "mobile"} {
		assert.Equal(t, ModeWebApp, ParseMode(in), "mode %q", in)
	}
}
