package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	kdl "github.com/sblinch/kdl-go"
	"github.com/sblinch/kdl-go/document"
)

// LoadKDL reads ".rte.kdl" from projectRoot, returning (nil, nil) if the
// file does not exist (spec §3.8: a missing config means "use defaults"),
// grounded on the teacher's config.LoadKDL.
func LoadKDL(projectRoot string) (*Config, error) {
	path := configPath(projectRoot)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read .rte.kdl: %w", err)
	}
	cfg, err := parseKDL(string(content))
	if err != nil {
		return nil, err
	}
	if cfg.Project.Root == "" {
		if abs, err := filepath.Abs(projectRoot); err == nil {
			cfg.Project.Root = abs
		} else {
			cfg.Project.Root = projectRoot
		}
	} else if !filepath.IsAbs(cfg.Project.Root) {
		cfg.Project.Root = filepath.Clean(filepath.Join(projectRoot, cfg.Project.Root))
	}
	return cfg, nil
}

// parseKDL parses a ".rte.kdl" document into a Config, grounded on the
// teacher's config.parseKDL node-walking shape. Unrecognized nodes are
// silently ignored, matching the teacher's forward-compatibility stance.
func parseKDL(content string) (*Config, error) {
	cfg := defaultConfig("")

	doc, err := kdl.Parse(strings.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse .rte.kdl: %w", err)
	}

	for _, n := range doc.Nodes {
		switch nodeName(n) {
		case "project":
			for _, cn := range n.Children {
				assignString(cn, "root", func(v string) { cfg.Project.Root = v })
				assignString(cn, "name", func(v string) { cfg.Project.Name = v })
			}
		case "toolchain":
			// toolchain "AC6" "6.16.0"
			args := collectStringArgs(n)
			if len(args) < 2 {
				continue
			}
			cfg.Toolchains = append(cfg.Toolchains, ToolchainEntry{Family: args[0], Version: args[1]})
		case "package-filter", "package_filter":
			parsePackageFilter(n, &cfg.PackageFilter)
		}
	}

	return cfg, nil
}

func parsePackageFilter(n *document.Node, f *PackageFilter) {
	for _, cn := range n.Children {
		switch nodeName(cn) {
		case "use_all_packs":
			if b, ok := firstBoolArg(cn); ok {
				f.UseAllPacks = b
			}
		case "latest_packs":
			if b, ok := firstBoolArg(cn); ok {
				f.LatestPacks = b
			}
		case "selected_packs":
			f.SelectedPacks = append(f.SelectedPacks, collectStringArgs(cn)...)
			if len(f.SelectedPacks) > 0 {
				f.UseAllPacks = false
			}
		case "canonical_vendors":
			if f.CanonicalVendors == nil {
				f.CanonicalVendors = make(map[string]string)
			}
			for _, vn := range cn.Children {
				if canon, ok := firstStringArg(vn); ok {
					f.CanonicalVendors[nodeName(vn)] = canon
				}
			}
		}
	}
}

// Helper functions over kdl-go's document model, grounded on the teacher's
// kdl_config.go helpers of the same names and signatures.

func nodeName(n *document.Node) string {
	if n == nil || n.Name == nil {
		return ""
	}
	return n.Name.NodeNameString()
}

func firstStringArg(n *document.Node) (string, bool) {
	if len(n.Arguments) == 0 {
		return "", false
	}
	if s, ok := n.Arguments[0].Value.(string); ok {
		return s, true
	}
	return "", false
}

func firstBoolArg(n *document.Node) (bool, bool) {
	if len(n.Arguments) == 0 {
		return false, false
	}
	if b, ok := n.Arguments[0].Value.(bool); ok {
		return b, true
	}
	return false, false
}

func assignString(n *document.Node, target string, set func(string)) {
	if nodeName(n) == target {
		if s, ok := firstStringArg(n); ok {
			set(s)
		}
	}
}

func collectStringArgs(n *document.Node) []string {
	if n == nil {
		return nil
	}
	out := make([]string, 0, len(n.Arguments))
	for _, a := range n.Arguments {
		if s, ok := a.Value.(string); ok {
			out = append(out, s)
		}
	}
	if len(out) == 0 && len(n.Children) > 0 {
		for _, child := range n.Children {
			if s, ok := firstStringArg(child); ok {
				out = append(out, s)
			} else if child.Name != nil {
				if s, ok := child.Name.Value.(string); ok {
					out = append(out, s)
				}
			}
		}
	}
	return out
}
