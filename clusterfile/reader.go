package clusterfile

import (
	"fmt"
	"os"
	"strings"
	"text/template"

	sprig "github.com/go-task/slim-sprig/v3"
	"github.com/samber/lo"
	"gopkg.in/yaml.v3"

	"github.com/skyforge/primeup/catalog"
)

type ReadOptions struct {
	// Params are exposed to the manifest template as {{ .Params.key }}.
	Params map[string]string
}

// UnmarshalError carries the evaluated manifest source so errors can be
// displayed against what was actually parsed, not the raw template.
type UnmarshalError struct {
	error
	Source string
}

// Read loads a cluster manifest: the file is evaluated as a template first,
// then unmarshalled and validated. Defaults are applied before validation.
func Read(file string, options ReadOptions) (*Clusterfile, error) {
	buf, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	source, err := evaluateTemplate(string(buf), options)
	if err != nil {
		return nil, fmt.Errorf("evaluate template: %w", err)
	}

	var cf Clusterfile
	if err = yaml.Unmarshal([]byte(source), &cf); err != nil {
		return nil, UnmarshalError{fmt.Errorf("unmarshal: %w", err), source}
	}

	if cf.Nodes == 0 {
		cf.Nodes = 1
	}
	if cf.Region == "" {
		cf.Region = catalog.RegionPlaceholder
	}

	if err = cf.Validate(); err != nil {
		return nil, UnmarshalError{fmt.Errorf("validate: %w", err), source}
	}
	return &cf, nil
}

type templateData struct {
	Env    map[string]string
	Params map[string]string
}

func evaluateTemplate(source string, options ReadOptions) (string, error) {
	tmpl, err := template.New("clusterfile").Funcs(sprig.TxtFuncMap()).Funcs(template.FuncMap{
		"env": func(key string) string {
			return os.Getenv(key)
		},
	}).Parse(source)
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}

	data := templateData{
		Env: lo.SliceToMap(os.Environ(), func(env string) (key, val string) {
			key, val, _ = strings.Cut(env, "=")
			return
		}),
		Params: options.Params,
	}

	var output strings.Builder
	if err := tmpl.Execute(&output, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return output.String(), nil
}
