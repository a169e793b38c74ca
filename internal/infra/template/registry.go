package template

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"

	"smsnotify/internal/common"
	"smsnotify/internal/domain/notification"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	_ notification.TemplateRenderer = (*Registry)(nil)
	_ notification.TemplateCatalog  = (*Registry)(nil)
)

// placeholderRe matches {name} placeholders; surrounding spaces are allowed.
var placeholderRe = regexp.MustCompile(`\{\s*([A-Za-z_][A-Za-z0-9_]*)\s*\}`)

// Template is a registered message body. Immutable after registration.
type Template struct {
	ID           string
	Pattern      string
	Label        string
	placeholders []string
}

// Placeholders returns the distinct placeholder names in order of first use.
func (t *Template) Placeholders() []string {
	return append([]string(nil), t.placeholders...)
}

// Registry maps template identifiers to message bodies and renders them.
type Registry struct {
	mu        sync.RWMutex
	templates map[string]*Template
}

// NewRegistry creates an empty template registry.
func NewRegistry() *Registry {
	return &Registry{templates: make(map[string]*Template)}
}

// Register adds a template with a label derived from its id.
func (r *Registry) Register(id, pattern string) error {
	return r.RegisterWithLabel(id, pattern, "")
}

// RegisterWithLabel adds a template. An empty label falls back to one
// derived from the id.
func (r *Registry) RegisterWithLabel(id, pattern, label string) error {
	if strings.TrimSpace(id) == "" {
		return common.NewValidationError("template id is required")
	}
	if label == "" {
		label = labelFromID(id)
	}

	tmpl := &Template{
		ID:           id,
		Pattern:      pattern,
		Label:        label,
		placeholders: parsePlaceholders(pattern),
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.templates[id]; exists {
		return common.NewValidationError(fmt.Sprintf("template already registered: %s", id))
	}
	r.templates[id] = tmpl
	return nil
}

// Render substitutes every placeholder of the template with its value.
// Variables the pattern does not reference are ignored.
func (r *Registry) Render(id string, vars map[string]string) (string, error) {
	r.mu.RLock()
	tmpl, ok := r.templates[id]
	r.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("%w: %s", common.ErrUnknownTemplate, id)
	}

	for _, name := range tmpl.placeholders {
		if _, ok := vars[name]; !ok {
			return "", fmt.Errorf("%w: %s", common.ErrMissingVariable, name)
		}
	}

	return placeholderRe.ReplaceAllStringFunc(tmpl.Pattern, func(m string) string {
		name := placeholderRe.FindStringSubmatch(m)[1]
		return vars[name]
	}), nil
}

// Lookup returns a copy of the template registered under id.
func (r *Registry) Lookup(id string) (Template, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tmpl, ok := r.templates[id]
	if !ok {
		return Template{}, false
	}
	return *tmpl, true
}

// Label returns the display label of a template, or a label derived from
// id when the template is unknown.
func (r *Registry) Label(id string) string {
	if tmpl, ok := r.Lookup(id); ok {
		return tmpl.Label
	}
	return labelFromID(id)
}

// Templates lists registered templates sorted by id.
func (r *Registry) Templates() []notification.TemplateView {
	r.mu.RLock()
	views := make([]notification.TemplateView, 0, len(r.templates))
	for _, tmpl := range r.templates {
		views = append(views, notification.TemplateView{ID: tmpl.ID, Label: tmpl.Label, Pattern: tmpl.Pattern})
	}
	r.mu.RUnlock()

	sort.Slice(views, func(i, j int) bool { return views[i].ID < views[j].ID })
	return views
}

func parsePlaceholders(pattern string) []string {
	seen := make(map[string]bool)
	var names []string
	for _, m := range placeholderRe.FindAllStringSubmatch(pattern, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			names = append(names, m[1])
		}
	}
	return names
}

// labelFromID turns "smsnotify.order_status_changed" into "Order Status Changed".
func labelFromID(id string) string {
	if i := strings.LastIndex(id, "."); i >= 0 {
		id = id[i+1:]
	}
	return cases.Title(language.English).String(strings.ReplaceAll(id, "_", " "))
}
