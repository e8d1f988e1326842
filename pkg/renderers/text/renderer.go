package text

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"

	"github.com/supersafe-org/go-safe-apps/pkg/model"
	"github.com/supersafe-org/go-safe-apps/pkg/registry"
)

const (
	templateApps        = "apps.tpl"
	templateAppConfig   = "app_config.tpl"
	templateInstruction = "instruction.tpl"
)

// Option configures the text renderer.
type Option func(*Renderer)

// WithTemplatesFS replaces the embedded templates. The file system must
// provide apps.tpl, app_config.tpl and instruction.tpl.
func WithTemplatesFS(files fs.FS) Option {
	return func(r *Renderer) {
		if files != nil {
			r.files = files
		}
	}
}

// Renderer renders plain text summaries. Templates are parsed once and
// cached.
type Renderer struct {
	mu        sync.RWMutex
	files     fs.FS
	set       *pongo2.TemplateSet
	templates map[string]*pongo2.Template
}

var registerFilters sync.Once

// New constructs a text renderer.
func New(options ...Option) *Renderer {
	r := &Renderer{
		files:     TemplatesFS(),
		templates: make(map[string]*pongo2.Template),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	r.set = pongo2.NewSet("safeapps", pongo2.NewFSLoader(r.files))
	registerFilters.Do(registerDefaultFilters)
	return r
}

// Name reports the renderer identifier.
func (r *Renderer) Name() string {
	return "text"
}

// ContentType reports the media type of the output.
func (r *Renderer) ContentType() string {
	return "text/plain"
}

// RenderApps writes one line per app.
func (r *Renderer) RenderApps(w io.Writer, apps []registry.App) error {
	views := make([]map[string]any, 0, len(apps))
	for _, app := range apps {
		views = append(views, map[string]any{
			"id":      app.ID,
			"name":    app.Name,
			"network": app.Network.String(),
			"active":  app.Active,
			"folder":  app.Folder,
		})
	}
	return r.execute(w, templateApps, pongo2.Context{"apps": views})
}

// RenderAppConfig writes every merged instruction of cfg. A nil config
// renders as an empty instruction list.
func (r *Renderer) RenderAppConfig(w io.Writer, cfg *model.AppConfig) error {
	ctx := pongo2.Context{"instructions": []map[string]any{}}
	if cfg == nil {
		return r.execute(w, templateAppConfig, ctx)
	}
	views := make([]map[string]any, 0, len(cfg.UI))
	for _, ix := range cfg.UI {
		views = append(views, instructionView(ix))
	}
	ctx["instructions"] = views
	if name := cfg.Definition.ProgramName(); name != "" {
		ctx["definition"] = name
	}
	return r.execute(w, templateAppConfig, ctx)
}

// RenderInstruction writes a single instruction, including any data values
// already filled in.
func (r *Renderer) RenderInstruction(w io.Writer, ix model.Instruction) error {
	return r.execute(w, templateInstruction, pongo2.Context{"ix": instructionView(ix)})
}

func (r *Renderer) execute(w io.Writer, name string, ctx pongo2.Context) error {
	if w == nil {
		return errors.New("text: writer is nil")
	}
	tmpl, err := r.template(name)
	if err != nil {
		return err
	}
	r.mu.RLock()
	err = tmpl.ExecuteWriter(ctx, w)
	r.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("text: execute template %q: %w", name, err)
	}
	return nil
}

func (r *Renderer) template(name string) (*pongo2.Template, error) {
	r.mu.RLock()
	if tmpl, ok := r.templates[name]; ok {
		r.mu.RUnlock()
		return tmpl, nil
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()

	if tmpl, ok := r.templates[name]; ok {
		return tmpl, nil
	}
	tmpl, err := r.set.FromFile(name)
	if err != nil {
		return nil, fmt.Errorf("text: load template %q: %w", name, err)
	}
	r.templates[name] = tmpl
	return tmpl, nil
}

func instructionView(ix model.Instruction) map[string]any {
	label := ix.Label
	if label == "" {
		label = ix.Name
	}
	elements := make([]map[string]any, 0, len(ix.UIElements))
	for _, el := range ix.UIElements {
		elements = append(elements, elementView(el))
	}
	return map[string]any{
		"id":       ix.ID,
		"name":     ix.Name,
		"label":    label,
		"help":     ix.Help,
		"elements": elements,
	}
}

func elementView(el model.UIElement) map[string]any {
	label := el.Label
	if label == "" {
		label = el.Name
	}
	view := map[string]any{
		"name":   el.Name,
		"label":  label,
		"type":   el.Type.String(),
		"hidden": el.Visibility.Hidden(),
	}
	switch data := el.DataElement.(type) {
	case *model.Account:
		view["binding"] = accountBinding(data)
		if data.DataValue != "" {
			view["value"] = data.DataValue
		}
	case *model.Arg:
		view["binding"] = fmt.Sprintf("arg #%d %s", data.Index, data.DataType)
		if data.DataValue != nil {
			view["value"] = fmt.Sprint(data.DataValue)
		}
	default:
		if el.Value != nil {
			view["value"] = fmt.Sprint(el.Value)
		}
	}
	return view
}

func accountBinding(acc *model.Account) string {
	var flags []string
	if acc.IsSigner {
		flags = append(flags, "signer")
	}
	if acc.IsWritable {
		flags = append(flags, "writable")
	}
	out := fmt.Sprintf("account #%d", acc.Index)
	if len(flags) > 0 {
		out += " (" + strings.Join(flags, ", ") + ")"
	}
	return out
}

func registerDefaultFilters() {
	if !pongo2.FilterExists("trim") {
		_ = pongo2.RegisterFilter("trim", filterTrim)
	}
	if !pongo2.FilterExists("shortkey") {
		_ = pongo2.RegisterFilter("shortkey", filterShortKey)
	}
}

func filterTrim(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	if in.Len() <= 0 {
		return pongo2.AsValue(""), nil
	}
	return pongo2.AsValue(strings.TrimSpace(in.String())), nil
}

// filterShortKey abbreviates base58 keys to their first and last four
// characters.
func filterShortKey(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	s := in.String()
	if len(s) <= 12 {
		return pongo2.AsValue(s), nil
	}
	return pongo2.AsValue(s[:4] + "…" + s[len(s)-4:]), nil
}
