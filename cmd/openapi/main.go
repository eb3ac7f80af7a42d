// Command openapi exports the API description as YAML and can check a revision
// for backward-incompatible removals against a previously exported file.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"

	"stackit/docs"

	"gopkg.in/yaml.v3"
)

var supportedMethods = map[string]struct{}{
	"get":     {},
	"put":     {},
	"post":    {},
	"delete":  {},
	"patch":   {},
	"head":    {},
	"options": {},
}

type operation struct {
	Responses map[string]struct{}
}

type parsedSpec struct {
	Paths map[string]map[string]operation
}

func main() {
	out := flag.String("out", "", "write the YAML export here instead of stdout")
	base := flag.String("base", "", "previously exported swagger.yaml to check the current API against")
	flag.Parse()

	raw, err := exportYAML()
	if err != nil {
		fmt.Fprintf(os.Stderr, "export failed: %v\n", err)
		os.Exit(1)
	}

	if strings.TrimSpace(*base) != "" {
		// #nosec G304: path comes from CLI flags in a dev tool
		baseRaw, err := os.ReadFile(*base)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to read base spec: %v\n", err)
			os.Exit(1)
		}
		issues, err := checkCompat(baseRaw, raw)
		if err != nil {
			fmt.Fprintf(os.Stderr, "compatibility check failed: %v\n", err)
			os.Exit(1)
		}
		if len(issues) > 0 {
			fmt.Fprintln(os.Stderr, "backward compatibility check failed:")
			for _, issue := range issues {
				fmt.Fprintf(os.Stderr, "- %s\n", issue)
			}
			os.Exit(1)
		}
		fmt.Fprintln(os.Stderr, "openapi compatibility check passed")
	}

	if *out == "" {
		_, _ = os.Stdout.Write(raw)
		return
	}
	if err := os.WriteFile(*out, raw, 0o600); err != nil {
		fmt.Fprintf(os.Stderr, "write %s: %v\n", *out, err)
		os.Exit(1)
	}
}

// exportYAML renders the registered swagger document as YAML. JSON is valid
// YAML, so the document is decoded into a node tree to keep key order.
func exportYAML() ([]byte, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(docs.SwaggerInfo.ReadDoc()), &doc); err != nil {
		return nil, fmt.Errorf("decode swagger document: %w", err)
	}
	clearStyle(&doc)
	return yaml.Marshal(&doc)
}

// clearStyle drops the flow style inherited from JSON so the output is block YAML.
func clearStyle(n *yaml.Node) {
	n.Style = 0
	for _, c := range n.Content {
		clearStyle(c)
	}
}

func checkCompat(baseRaw, revisionRaw []byte) ([]string, error) {
	baseSpec, err := parseSpec(baseRaw)
	if err != nil {
		return nil, fmt.Errorf("base: %w", err)
	}
	revisionSpec, err := parseSpec(revisionRaw)
	if err != nil {
		return nil, fmt.Errorf("revision: %w", err)
	}
	return compare(baseSpec, revisionSpec), nil
}

func parseSpec(raw []byte) (parsedSpec, error) {
	doc := map[string]any{}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return parsedSpec{}, err
	}

	pathsMap, ok := doc["paths"].(map[string]any)
	if !ok {
		return parsedSpec{}, errors.New("missing top-level paths object")
	}

	spec := parsedSpec{Paths: make(map[string]map[string]operation)}
	for pathKey, pathEntry := range pathsMap {
		pathOps, ok := pathEntry.(map[string]any)
		if !ok {
			continue
		}

		ops := make(map[string]operation)
		for methodKey, methodEntry := range pathOps {
			method := strings.ToLower(strings.TrimSpace(methodKey))
			if _, supported := supportedMethods[method]; !supported {
				continue
			}
			methodMap, ok := methodEntry.(map[string]any)
			if !ok {
				continue
			}

			responses := make(map[string]struct{})
			if codes, ok := methodMap["responses"].(map[string]any); ok {
				for code := range codes {
					if normalized := strings.ToLower(strings.TrimSpace(code)); normalized != "" {
						responses[normalized] = struct{}{}
					}
				}
			}
			ops[method] = operation{Responses: responses}
		}

		if len(ops) > 0 {
			spec.Paths[pathKey] = ops
		}
	}
	return spec, nil
}

func compare(base, revision parsedSpec) []string {
	var issues []string

	for path, baseOps := range base.Paths {
		revOps, ok := revision.Paths[path]
		if !ok {
			issues = append(issues, fmt.Sprintf("removed path: %s", path))
			continue
		}

		for method, baseOp := range baseOps {
			revOp, ok := revOps[method]
			if !ok {
				issues = append(issues, fmt.Sprintf("removed operation: %s %s", strings.ToUpper(method), path))
				continue
			}
			for code := range baseOp.Responses {
				if _, ok := revOp.Responses[code]; !ok {
					issues = append(issues, fmt.Sprintf("removed response code: %s %s -> %s",
						strings.ToUpper(method), path, strings.ToUpper(code)))
				}
			}
		}
	}

	sort.Strings(issues)
	return issues
}
