package config

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadYAML reads YAML files and exports their values as environment
// variables so that Load picks them up. Nested keys are joined with "_" and
// upper-cased, "-" and "." become "_", and lists are joined with ",":
//
//	fdfs:
//	  web-server-url: http://img.example.com
//	  thumb:
//	    width: 150
//
// sets FDFS_WEB_SERVER_URL and FDFS_THUMB_WIDTH. Later files override
// earlier ones, and variables already present in the environment win over
// every file.
func LoadYAML(paths ...string) error {
	values, err := ReadYAML(paths...)
	if err != nil {
		return err
	}

	for _, key := range slices.Sorted(maps.Keys(values)) {
		if _, ok := os.LookupEnv(key); ok {
			continue
		}
		if err := os.Setenv(key, values[key]); err != nil {
			return errors.Join(ErrLoadingYAMLFile, err)
		}
	}
	return nil
}

// MustLoadYAML is LoadYAML that panics on failure.
func MustLoadYAML(paths ...string) {
	if err := LoadYAML(paths...); err != nil {
		panic(fmt.Sprintf("failed to load yaml files: %v", err))
	}
}

// ReadYAML flattens the files into environment variable names and values
// without touching the process environment.
func ReadYAML(paths ...string) (map[string]string, error) {
	values := make(map[string]string)

	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, errors.Join(ErrLoadingYAMLFile, err)
		}

		var doc map[string]any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, errors.Join(ErrLoadingYAMLFile, fmt.Errorf("%s: %w", p, err))
		}

		flatten("", doc, values)
	}

	return values, nil
}

var envKeyReplacer = strings.NewReplacer("-", "_", ".", "_", " ", "_")

func flatten(prefix string, node map[string]any, out map[string]string) {
	for k, v := range node {
		key := strings.ToUpper(envKeyReplacer.Replace(k))
		if prefix != "" {
			key = prefix + "_" + key
		}

		switch val := v.(type) {
		case map[string]any:
			flatten(key, val, out)
		case []any:
			items := make([]string, 0, len(val))
			for _, item := range val {
				items = append(items, scalar(item))
			}
			out[key] = strings.Join(items, ",")
		default:
			out[key] = scalar(val)
		}
	}
}

func scalar(v any) string {
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}
