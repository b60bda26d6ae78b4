package generation

import (
	"fmt"
	"strings"
)

func componentPrompt(componentType, framework, stylePreferences string) string {
	return fmt.Sprintf(`Generate a modern %s component using %s.

Style preferences: %s

Requirements:
- Use TypeScript
- Include proper TypeScript types
- Use Tailwind CSS for styling
- Make it responsive and accessible
- Include proper JSX structure
- Add data-testid attributes for interactive elements
- Follow modern React best practices

Return only the component code, no explanations.`, componentType, framework, stylePreferences)
}

func backendPrompts(database, framework string, f Features) (routes, models, middleware string) {
	features := strings.Join(f.Enabled(), ", ")

	routes = fmt.Sprintf(`Generate %s API routes for a web application with %s database.

Features to include: %s

Requirements:
- Use TypeScript
- Include proper error handling
- Add input validation
- Use modern async/await patterns
- Include proper HTTP status codes
- Add middleware for authentication where needed

Generate the routes file with all necessary endpoints. Return only code.`, framework, database, features)

	models = fmt.Sprintf(`Generate %s database models/schemas for a web application.

Features: %s

Requirements:
- Use TypeScript
- Include proper field types
- Add relationships between models
- Include timestamps
- Add validation rules where appropriate

Generate the models/schema file. Return only code.`, database, features)

	middleware = fmt.Sprintf(`Generate middleware functions for a %s application.

Features: %s

Requirements:
- Use TypeScript
- Include authentication middleware
- Add error handling middleware
- Include request logging
- Add CORS configuration if needed

Generate the middleware file. Return only code.`, framework, features)

	return routes, models, middleware
}

const websiteJSONShape = `{
  "title": "...",
  "description": "...",
  "components": [{"type": "...", "content": "..."}],
  "htmlCode": "<!DOCTYPE html>...",
  "cssCode": "/* CSS */",
  "jsCode": "// JavaScript"
}`

func websitePrompt(userPrompt string, mode Mode) string {
	if mode == ModeFlow {
		return fmt.Sprintf(`You are an expert workflow designer. Based on this user request, generate a complete workflow/flowchart structure:

%q

Provide:
1. A suitable title for the workflow
2. A brief description
3. An array of flow components (start, process, decision, end nodes)
4. HTML structure representing the flowchart
5. CSS for styling the flow elements
6. JavaScript for any interactive features

Use start/end nodes (ovals), process steps (rectangles), decision points (diamonds) and arrows between them.

Return ONLY valid JSON in this exact format:
%s`, userPrompt, websiteJSONShape)
	}

	return fmt.Sprintf(`You are an expert web developer. Based on this user request, generate a complete web application:

%q

Provide:
1. A suitable title for the web application
2. A brief description
3. An array of the web components it includes (header, hero, content sections, footer, etc.)
4. Complete HTML code for a fully interactive web application
5. CSS code using Tailwind CSS classes and custom styles
6. JavaScript code for interactive features

The site must be responsive, use semantic HTML, and work standalone in a browser with
all styling and scripts inline or loaded from a CDN.

Return ONLY valid JSON in this exact format:
%s`, userPrompt, websiteJSONShape)
}

func optimizePrompt(code, kind string) string {
	return fmt.Sprintf(`Analyze and optimize the following %s code:

%s

Provide an optimized version with:
- Better performance
- Improved readability
- Modern best practices
- Proper error handling
- Security improvements (if applicable)

Return only the optimized code, no explanations.`, kind, code)
}
