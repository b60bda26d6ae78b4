package generation

import (
	"embed"
	"html"
	"strings"
)

//go:embed templates
var templateFS embed.FS

const defaultComponent = "Hero Section"

var componentTemplates = map[string]string{
	"Hero Section":   "templates/hero_section.tsx",
	"Navigation Bar": "templates/navigation_bar.tsx",
	"Card Component": "templates/card_component.tsx",
}

var (
	flowComponents = mustComponents([]Component{
		{Type: "start", Content: "Begin Process"},
		{Type: "process", Content: "User Input"},
		{Type: "decision", Content: "Validate Input?"},
		{Type: "process", Content: "Process Data"},
		{Type: "end", Content: "Complete"},
	})
	webAppComponents = mustComponents([]Component{
		{Type: "header", Content: "Navigation Header"},
		{Type: "hero", Content: "Hero Section"},
		{Type: "content", Content: "Main Content"},
		{Type: "footer", Content: "Footer"},
	})
)

func readTemplate(name string) string {
	b, err := templateFS.ReadFile(name)
	if err != nil {
		panic("generation: missing embedded template " + name)
	}
	return strings.TrimRight(string(b), "\n")
}

// MockComponent returns a static component for the known types and the
// hero section for anything else.
func MockComponent(componentType string) string {
	name, ok := componentTemplates[componentType]
	if !ok {
		name = componentTemplates[defaultComponent]
	}
	return readTemplate(name)
}

// MockWebsite builds a complete static site. The prompt is HTML-escaped
// before it is placed in the page.
func MockWebsite(prompt string, mode Mode) Website {
	if mode == ModeFlow {
		title := "User Workflow"
		r := placeholders(title, prompt)
		return Website{
			Title:       title,
			Description: "AI-generated workflow based on your prompt",
			Components:  cloneRaw(flowComponents),
			HTMLCode:    r.Replace(readTemplate("templates/flow.html")),
			CSSCode:     readTemplate("templates/flow.css"),
			JSCode:      readTemplate("templates/flow.js"),
		}
	}

	title := webAppTitle(prompt)
	r := placeholders(title, prompt)
	return Website{
		Title:       title,
		Description: "AI-generated " + strings.ToLower(title) + " with interactive features",
		Components:  cloneRaw(webAppComponents),
		HTMLCode:    r.Replace(readTemplate("templates/webapp.html")),
		CSSCode:     readTemplate("templates/webapp.css"),
		JSCode:      readTemplate("templates/webapp.js"),
	}
}

func webAppTitle(prompt string) string {
	p := strings.ToLower(prompt)
	switch {
	case strings.Contains(p, "portfolio"):
		return "Portfolio Website"
	case strings.Contains(p, "e-commerce"):
		return "E-commerce Store"
	case strings.Contains(p, "blog"):
		return "Blog Platform"
	case strings.Contains(p, "dashboard"):
		return "Admin Dashboard"
	default:
		return "Modern Web App"
	}
}

func placeholders(title, prompt string) *strings.Replacer {
	return strings.NewReplacer(
		"__TITLE__", html.EscapeString(title),
		"__PROMPT__", html.EscapeString(prompt),
	)
}

// MockBackend returns template routes, models and middleware for the
// requested stack. MongoDB gets mongoose models, anything else a SQL schema.
func MockBackend(database, framework string, f Features) Backend {
	var routes strings.Builder
	routes.WriteString("// Generated " + framework + " routes with " + database + "\n")
	routes.WriteString("import express from 'express';\n")
	routes.WriteString("const router = express.Router();\n\n")
	routes.WriteString("// Health check\n")
	routes.WriteString("router.get('/health', (req, res) => {\n")
	routes.WriteString("  res.json({ status: 'OK', database: '" + database + "' });\n")
	routes.WriteString("});\n")
	if f.UserAuth {
		routes.WriteString("\n// Authentication routes\n")
		routes.WriteString("router.post('/auth/login', async (req, res) => {\n")
		routes.WriteString("  res.json({ token: 'mock-jwt-token', user: { id: 1, email: req.body.email } });\n")
		routes.WriteString("});\n")
	}
	if f.CrudOps {
		routes.WriteString("\n// CRUD operations\n")
		routes.WriteString("router.get('/users', async (req, res) => {\n")
		routes.WriteString("  res.json([{ id: 1, name: 'Demo User' }]);\n")
		routes.WriteString("});\n")
	}
	if f.FileUpload {
		routes.WriteString("\n// File upload\n")
		routes.WriteString("router.post('/upload', async (req, res) => {\n")
		routes.WriteString("  res.status(201).json({ url: '/uploads/mock-file' });\n")
		routes.WriteString("});\n")
	}
	if f.EmailIntegration {
		routes.WriteString("\n// Email\n")
		routes.WriteString("router.post('/email/send', async (req, res) => {\n")
		routes.WriteString("  res.status(202).json({ queued: true, to: req.body.to });\n")
		routes.WriteString("});\n")
	}
	routes.WriteString("\nexport default router;")

	var models strings.Builder
	models.WriteString("// " + database + " models\n")
	if database == "MongoDB" {
		models.WriteString("import mongoose from 'mongoose';\n\n")
		models.WriteString("const userSchema = new mongoose.Schema({\n")
		models.WriteString("  email: { type: String, required: true, unique: true },\n")
		models.WriteString("  password: { type: String, required: true },\n")
		models.WriteString("  createdAt: { type: Date, default: Date.now }\n")
		models.WriteString("});\n\n")
		models.WriteString("export const User = mongoose.model('User', userSchema);")
	} else {
		models.WriteString("import { pgTable, serial, varchar, timestamp } from 'drizzle-orm/pg-core';\n\n")
		models.WriteString("export const users = pgTable('users', {\n")
		models.WriteString("  id: serial('id').primaryKey(),\n")
		models.WriteString("  email: varchar('email', { length: 255 }).notNull().unique(),\n")
		models.WriteString("  password: varchar('password', { length: 255 }).notNull(),\n")
		models.WriteString("  createdAt: timestamp('created_at').defaultNow()\n")
		models.WriteString("});")
	}

	var mw strings.Builder
	mw.WriteString("// Middleware for " + framework + "\n")
	mw.WriteString("import express from 'express';\n")
	mw.WriteString("import cors from 'cors';\n\n")
	mw.WriteString("// CORS configuration\n")
	mw.WriteString("export const corsMiddleware = cors({\n")
	mw.WriteString("  origin: process.env.FRONTEND_URL || 'http://localhost:3000',\n")
	mw.WriteString("  credentials: true\n")
	mw.WriteString("});\n\n")
	mw.WriteString("// Request logging\n")
	mw.WriteString("export const loggerMiddleware = (req, res, next) => {\n")
	mw.WriteString("  console.log(req.method + ' ' + req.path + ' - ' + new Date().toISOString());\n")
	mw.WriteString("  next();\n")
	mw.WriteString("};\n")
	if f.UserAuth {
		mw.WriteString("\n// Authentication middleware\n")
		mw.WriteString("export const authMiddleware = (req, res, next) => {\n")
		mw.WriteString("  const token = req.headers.authorization?.split(' ')[1];\n")
		mw.WriteString("  if (!token) {\n")
		mw.WriteString("    return res.status(401).json({ message: 'Unauthorized' });\n")
		mw.WriteString("  }\n")
		mw.WriteString("  req.user = { id: 1, email: 'demo@example.com' };\n")
		mw.WriteString("  next();\n")
		mw.WriteString("};\n")
	}

	return Backend{
		Routes:     routes.String(),
		Models:     models.String(),
		Middleware: strings.TrimRight(mw.String(), "\n"),
	}
}

func cloneRaw(b []byte) []byte {
	return append([]byte(nil), b...)
}
