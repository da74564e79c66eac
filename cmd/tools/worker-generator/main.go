// cmd/tools/worker-generator/main.go
package main

import (
	"bytes"
	"fmt"
	"go/format"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/template"

	"visaverse-copilot/pkg/registry"

	"github.com/spf13/cobra"
)

// WorkerData holds data for templates
type WorkerData struct {
	Name         string
	PackageName  string
	TaskType     string
	Description  string
	TimeoutMs    int64
	InputFields  string
	OutputFields string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var registryPath, outDir string
	var force bool

	cmd := &cobra.Command{
		Use:           "worker-generator <activity-id>",
		Short:         "Scaffold a zeebe worker package from an activity registry entry",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := loadRegistry(registryPath)
			if err != nil {
				return err
			}
			var activity *registry.Activity
			for i := range reg.Activities {
				if reg.Activities[i].ID == args[0] {
					activity = &reg.Activities[i]
				}
			}
			if activity == nil {
				return fmt.Errorf("activity %s not found in registry", args[0])
			}

			dir, err := generate(*activity, outDir, force)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Generated worker %s in %s\n", activity.TaskType, dir)
			return nil
		},
	}

	cmd.Flags().StringVar(&registryPath, "registry", "", "registry file (defaults to the embedded registry)")
	cmd.Flags().StringVar(&outDir, "out", "internal/workers", "workers root directory")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite existing files")
	return cmd
}

func loadRegistry(path string) (*registry.ActivityRegistry, error) {
	if path == "" {
		return registry.Default()
	}
	return registry.LoadRegistry(path)
}

// generate writes config.go, models.go, handler.go and handler_test.go into
// <out>/<category>/<task-type> and returns that directory.
func generate(a registry.Activity, out string, force bool) (string, error) {
	category := a.Category
	if category == "" {
		category = "roadmap"
	}
	dir := filepath.Join(out, category, a.TaskType)

	data := WorkerData{
		Name:         a.DisplayName,
		PackageName:  packageName(a.TaskType),
		TaskType:     a.TaskType,
		Description:  a.Description,
		TimeoutMs:    a.TimeoutDuration(defaultTimeout).Milliseconds(),
		InputFields:  structFields(a.InputSchema),
		OutputFields: structFields(a.OutputSchema),
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create worker directory: %w", err)
	}

	files := map[string]string{
		"config.go":       configTemplate,
		"models.go":       modelsTemplate,
		"handler.go":      handlerTemplate,
		"handler_test.go": testTemplate,
	}
	for name, tmpl := range files {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil && !force {
			return "", fmt.Errorf("%s already exists (use --force)", path)
		}
		src, err := render(name, tmpl, data)
		if err != nil {
			return "", err
		}
		if err := os.WriteFile(path, src, 0o644); err != nil {
			return "", fmt.Errorf("write %s: %w", path, err)
		}
	}
	return dir, nil
}

func render(name, tmpl string, data WorkerData) ([]byte, error) {
	t, err := template.New(name).Parse(tmpl)
	if err != nil {
		return nil, fmt.Errorf("parse template %s: %w", name, err)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("execute template %s: %w", name, err)
	}
	src, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("format %s: %w", name, err)
	}
	return src, nil
}

// packageName turns "generate-roadmap" into "generateroadmap".
func packageName(taskType string) string {
	return strings.ReplaceAll(strings.ToLower(taskType), "-", "")
}

// structFields renders the top-level properties of a JSON schema as struct
// fields, sorted by name.
func structFields(schema map[string]interface{}) string {
	props, _ := schema["properties"].(map[string]interface{})
	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	sort.Strings(names)

	var fields []string
	for _, name := range names {
		details, _ := props[name].(map[string]interface{})
		fields = append(fields, fmt.Sprintf("\t%s %s `json:\"%s\"`", upperFirst(name), goType(details["type"]), name))
	}
	return strings.Join(fields, "\n")
}

func goType(jsonType interface{}) string {
	switch jsonType {
	case "string":
		return "string"
	case "number":
		return "float64"
	case "integer":
		return "int"
	case "boolean":
		return "bool"
	case "object":
		return "map[string]interface{}"
	case "array":
		return "[]interface{}"
	default:
		return "interface{}"
	}
}

func upperFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
