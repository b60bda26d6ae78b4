package generation

import "encoding/json"

type Mode string

const (
	ModeFlow   Mode = "flow"
	ModeWebApp Mode = "webapp"
)

// ParseMode selects the flow template only for "flow"; every other value,
// including an empty one, builds a web app.
func ParseMode(s string) Mode {
	if Mode(s) == ModeFlow {
		return ModeFlow
	}
	return ModeWebApp
}

// Component is one entry of a generated site's component outline.
type Component struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

// Website is the result of building a site from a prompt.
// Components is kept raw so whatever outline the model produced is stored as-is.
type Website struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Components  json.RawMessage `json:"components"`
	HTMLCode    string          `json:"htmlCode"`
	CSSCode     string          `json:"cssCode"`
	JSCode      string          `json:"jsCode"`
}

type Features struct {
	UserAuth         bool `json:"userAuth"`
	CrudOps          bool `json:"crudOps"`
	FileUpload       bool `json:"fileUpload"`
	EmailIntegration bool `json:"emailIntegration"`
}

// Enabled lists the names of the switched-on features in a stable order.
func (f Features) Enabled() []string {
	var out []string
	if f.UserAuth {
		out = append(out, "userAuth")
	}
	if f.CrudOps {
		out = append(out, "crudOps")
	}
	if f.FileUpload {
		out = append(out, "fileUpload")
	}
	if f.EmailIntegration {
		out = append(out, "emailIntegration")
	}
	return out
}

type Backend struct {
	Routes     string `json:"routes"`
	Models     string `json:"models"`
	Middleware string `json:"middleware"`
}

func mustComponents(cs []Component) json.RawMessage {
	b, err := json.Marshal(cs)
	if err != nil {
		panic(err)
	}
	return b
}
