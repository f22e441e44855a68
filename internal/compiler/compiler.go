package compiler

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"html/template"
	texttemplate "text/template"

	"github.com/wakuwakusystemsharing/form-management-sub001/internal/form"
)

// ScriptPrefix starts the first line of every compiled script. The rest of
// that line is the configuration as JSON followed by ";".
const ScriptPrefix = "const FORM_CONFIG = "

// File names of a published artifact.
const (
	FileDocument = "index.html"
	FileMarkup   = "form.html"
	FileStyle    = "style.css"
	FileScript   = "app.js"
)

var (
	//go:embed templates/page.html.tmpl
	pageSource string

	//go:embed templates/style.css.tmpl
	styleSource string

	//go:embed templates/runtime.js
	runtimeSource string

	pageTemplate  = template.Must(template.New("page").Parse(pageSource))
	styleTemplate = texttemplate.Must(texttemplate.New("style").Parse(styleSource))
)

// Fingerprint identifies the page, style and runtime sources built into
// this compiler.
func Fingerprint() string {
	return form.ArtifactHash([]byte(pageSource), []byte(styleSource), []byte(runtimeSource))
}

// Artifact is the compiled output for one configuration.
type Artifact struct {
	// Hash identifies the output bytes. Published directories and ETags
	// use it, so any change to the rendered files changes it.
	Hash string

	// Key identifies the input: the configuration plus the compiler
	// Fingerprint. Caches use it.
	Key string

	// Markup links FileStyle and FileScript.
	Markup []byte
	Style  []byte
	Script []byte

	// Document is Markup with the style and script inlined.
	Document []byte
}

// Files maps publish file names to their contents.
func (a *Artifact) Files() map[string][]byte {
	return map[string][]byte{
		FileDocument: a.Document,
		FileMarkup:   a.Markup,
		FileStyle:    a.Style,
		FileScript:   a.Script,
	}
}

// Compile renders cfg into a deterministic Artifact. cfg must be normalized;
// a *ContractError describes how it is not. Any other error is a bug.
func Compile(cfg form.Config) (*Artifact, error) {
	if violations := CheckContract(cfg); len(violations) > 0 {
		return nil, &ContractError{Violations: violations}
	}
	cfg = settle(cfg)

	key, err := buildKey(cfg)
	if err != nil {
		return nil, err
	}

	p := newPage(cfg)

	var style bytes.Buffer
	if err := styleTemplate.Execute(&style, p.Theme); err != nil {
		return nil, fmt.Errorf("render style: %w", err)
	}

	script, err := renderScript(cfg)
	if err != nil {
		return nil, err
	}

	var markup bytes.Buffer
	if err := pageTemplate.Execute(&markup, p); err != nil {
		return nil, fmt.Errorf("render markup: %w", err)
	}

	p.Inline = true
	p.Style = template.CSS(style.String())
	p.Script = template.JS(script)
	var document bytes.Buffer
	if err := pageTemplate.Execute(&document, p); err != nil {
		return nil, fmt.Errorf("render document: %w", err)
	}

	a := &Artifact{
		Key:      key,
		Markup:   markup.Bytes(),
		Style:    style.Bytes(),
		Script:   script,
		Document: document.Bytes(),
	}
	a.Hash = form.ArtifactHash(a.Markup, a.Style, a.Script, a.Document)
	return a, nil
}

// Key returns the Artifact.Key that Compile would produce for cfg,
// without rendering anything.
func Key(cfg form.Config) (string, error) {
	return buildKey(settle(cfg))
}

func buildKey(cfg form.Config) (string, error) {
	hash, err := form.ContentHash(cfg)
	if err != nil {
		return "", fmt.Errorf("hash config: %w", err)
	}
	return form.BuildKey(hash, Fingerprint()), nil
}

// MustCompile is Compile for configurations that are known to be normalized.
// It panics on a contract violation.
func MustCompile(cfg form.Config) *Artifact {
	a, err := Compile(cfg)
	if err != nil {
		panic(err)
	}
	return a
}

// renderScript embeds cfg as data and appends the runtime. encoding/json
// escapes < > & U+2028 U+2029, so the data cannot close the script element.
func renderScript(cfg form.Config) ([]byte, error) {
	data, err := json.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("embed config: %w", err)
	}
	var buf bytes.Buffer
	buf.WriteString(ScriptPrefix)
	buf.Write(data)
	buf.WriteString(";\n")
	buf.WriteString(runtimeSource)
	return buf.Bytes(), nil
}

// EmbeddedConfig extracts the configuration data from a compiled script.
func EmbeddedConfig(script []byte) (form.Config, error) {
	line, _, _ := bytes.Cut(script, []byte("\n"))
	data, ok := bytes.CutPrefix(line, []byte(ScriptPrefix))
	if !ok {
		return form.Config{}, fmt.Errorf("script does not start with %q", ScriptPrefix)
	}
	data, ok = bytes.CutSuffix(data, []byte(";"))
	if !ok {
		return form.Config{}, fmt.Errorf("embedded config is not terminated")
	}
	var cfg form.Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return form.Config{}, fmt.Errorf("decode embedded config: %w", err)
	}
	return cfg, nil
}

// settle replaces absent lists with empty ones so missing sections compile
// as disabled and the embedded data never carries null lists.
func settle(cfg form.Config) form.Config {
	for _, sel := range []*form.Selection{&cfg.GenderSelection, &cfg.VisitCountSelection, &cfg.CouponSelection} {
		sel.Options = orEmpty(sel.Options)
	}
	cats := make([]form.Category, len(cfg.MenuStructure.Categories))
	for i, cat := range cfg.MenuStructure.Categories {
		menus := make([]form.Menu, len(cat.Menus))
		for j, m := range cat.Menus {
			m.SubMenuItems = orEmpty(m.SubMenuItems)
			m.Options = orEmpty(m.Options)
			menus[j] = m
		}
		cat.Menus = menus
		cats[i] = cat
	}
	cfg.MenuStructure.Categories = cats
	cfg.ValidationRules.RequiredFields = orEmpty(cfg.ValidationRules.RequiredFields)
	return cfg
}

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
