// Package template builds the instruction prompt sent to the translation model.
//
// The built-in prompt ships with the binary. A YAML override file with a
// single "prompt" key replaces it; the value is a text/template receiving
// Data.
package template

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	texttemplate "text/template"

	"gopkg.in/yaml.v3"

	"github.com/alnah/go-formalize/internal/examples"
)

// Data is what a prompt template renders.
type Data struct {
	// Text is the marked input, e.g. "[S:1] 你好。 [S:2] 早晨！".
	Text string
	// Examples is the style corpus, possibly empty.
	Examples []examples.Example
}

// Builder renders prompts from a parsed template.
// Safe for concurrent use.
type Builder struct {
	tmpl *texttemplate.Template
}

// Default returns the builder for the built-in prompt.
func Default() *Builder {
	return defaultBuilder
}

var defaultBuilder = &Builder{
	tmpl: texttemplate.Must(texttemplate.New("prompt").Parse(defaultPrompt)),
}

// Parse compiles src as a prompt template.
// The template must reference {{.Text}}, otherwise the input would never
// reach the model.
func Parse(src string) (*Builder, error) {
	if strings.TrimSpace(src) == "" {
		return nil, fmt.Errorf("empty prompt: %w", ErrInvalid)
	}
	if !strings.Contains(src, ".Text") {
		return nil, fmt.Errorf("prompt must include {{.Text}}: %w", ErrInvalid)
	}
	tmpl, err := texttemplate.New("prompt").Option("missingkey=error").Parse(src)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return &Builder{tmpl: tmpl}, nil
}

// overrideFile is the YAML layout of a prompt override.
type overrideFile struct {
	Prompt string `yaml:"prompt"`
}

// Load reads a YAML override file. An empty path returns Default.
func Load(path string) (*Builder, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read prompt file: %w", err)
	}
	var f overrideFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse prompt file %s: %w: %v", path, ErrInvalid, err)
	}
	b, err := Parse(f.Prompt)
	if err != nil {
		return nil, fmt.Errorf("prompt file %s: %w", path, err)
	}
	return b, nil
}

// Build renders the prompt for markedText and the given examples.
func (b *Builder) Build(markedText string, exs []examples.Example) (string, error) {
	var buf bytes.Buffer
	if err := b.tmpl.Execute(&buf, Data{Text: markedText, Examples: exs}); err != nil {
		return "", fmt.Errorf("render prompt: %w", err)
	}
	return buf.String(), nil
}

// defaultPrompt instructs the model to translate while echoing [S:n] markers.
const defaultPrompt = `
You are an expert linguist specializing in translating colloquial/verbal Cantonese into formal, written Traditional Chinese.
Your translations must be highly accurate, natural-sounding in a formal context, and meticulously maintain the original meaning.

IMPORTANT INSTRUCTION FOR SENTENCE MARKERS:
The Verbal Cantonese input text will be formatted with sentence markers like [S:1], [S:2], etc., at the beginning of each sentence. For example: "[S:1] First Cantonese sentence. [S:2] Second Cantonese sentence."
You MUST preserve these markers in your output. Each segment of your Traditional Chinese translation that corresponds to an original marked sentence MUST begin with the exact same marker.
For instance, if the input is "[S:1] Original sentence.", your translation should be "[S:1] Translated sentence."
If an original sentence (e.g., "[S:1] Long original sentence.") is best translated into multiple parts or sentences in Traditional Chinese, EACH of those translated parts must start with the original marker. For example: "[S:1] Translated part one. [S:1] Translated part two."
Ensure that the markers are at the very beginning of the corresponding translated segment, followed by a space, then the translated text.

{{if .Examples -}}
Here are some examples of how to translate from Verbal Cantonese to Formal Traditional Chinese. Please follow this style accurately:
--- EXAMPLES START ---
{{range $i, $ex := .Examples}}{{if $i}}

{{end}}Verbal Cantonese: "{{$ex.Cantonese}}"
Formal Traditional Chinese: "{{$ex.TraditionalChinese}}"{{end}}
--- EXAMPLES END ---
{{- else -}}
No examples provided. Please translate from Verbal Cantonese to Formal Traditional Chinese with a formal, accurate, and natural-sounding style.
{{- end}}

Now, please translate ONLY the following Verbal Cantonese text (which includes [S:N] markers) into Formal Traditional Chinese, following all instructions above.
Do not add any extra commentary, explanations, or conversational remarks. Output only the translated text with the preserved [S:N] markers.

--- VERBAL CANTONESE TEXT TO TRANSLATE START ---
{{.Text}}
--- VERBAL CANTONESE TEXT TO TRANSLATE END ---

Formal Traditional Chinese Translation (with [S:N] markers):
`
