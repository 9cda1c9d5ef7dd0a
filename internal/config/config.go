// Package config implements spec §3.8/§6.3's project configuration: the
// toolchain registry ((family, version) -> install root, resolved through
// semver ranges) and the package filter (use_all_packs / selected_packs /
// latest_packs, plus a canonical-vendor synonym table). Replaces the
// teacher's ".lci.kdl" project config with ".rte.kdl", parsed with the same
// github.com/sblinch/kdl-go library (internal/config/kdl_config.go).
//
// Grounded on standardbeagle-lci's internal/config/config.go (the
// Config struct, Load/LoadWithRoot two-tier home+project merge shape) and
// original_source/libs/rtemodel/include/RtePackage.h's RtePackageFilter.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/cmsis-rte/rtecore/internal/model"
	"github.com/cmsis-rte/rtecore/internal/toolchain"
)

// Project names the project root and an optional display name, mirroring
// the teacher's config.Project.
type Project struct {
	Root string
	Name string
}

// ToolchainEntry is one <toolchain family version=.../> registration, the
// KDL analogue of a CPRJ project's <toolchain> element (spec §3.5).
type ToolchainEntry struct {
	Family  string
	Version string
}

// PackageFilter is the KDL-parsed form of spec §3.8's package filter,
// converted to a *model.Filter once loaded. Grounded on
// original_source/libs/rtemodel/include/RtePackage.h's RtePackageFilter,
// which offers the identical three knobs (use all installed packs, an
// explicit selection, or latest-only).
type PackageFilter struct {
	UseAllPacks      bool              `json:"use_all_packs"`
	SelectedPacks    []string          `json:"selected_packs"`
	LatestPacks      bool              `json:"latest_packs"`
	CanonicalVendors map[string]string `json:"canonical_vendors"`
}

// MatchesCommonID reports whether commonID ("Vendor.Name") is visible
// under this filter, matched via github.com/bmatcuk/doublestar/v4 glob
// patterns exactly as model.Filter.Matches matches full pack ids.
func (f *PackageFilter) MatchesCommonID(commonID string) bool {
	if f == nil || f.UseAllPacks {
		return true
	}
	for _, pattern := range f.SelectedPacks {
		if ok, _ := doublestar.Match(pattern, commonID); ok {
			return true
		}
	}
	return false
}

// ToModelFilter converts the KDL-parsed filter into the model.Filter the
// global model's Reindex consults.
func (f *PackageFilter) ToModelFilter() *model.Filter {
	if f == nil {
		return &model.Filter{UseAllPacks: true}
	}
	return &model.Filter{
		UseAllPacks:  f.UseAllPacks,
		SelectedGlob: f.SelectedPacks,
		LatestOnly:   f.LatestPacks,
	}
}

// Config is the root ".rte.kdl" document (spec §3.8/§6.3).
type Config struct {
	Version       int
	Project       Project
	Toolchains    []ToolchainEntry
	PackageFilter PackageFilter
}

// Load reads the ".rte.kdl" configuration, merging a user-global
// "~/.rte.kdl" base with a project-local override the way the teacher's
// config.LoadWithRoot merges "~/.lci.kdl" with the project's ".lci.kdl":
// project settings win, but the package filter's selected-pack globs are
// unioned rather than replaced, so a user-global allowlist still applies
// inside every project.
func Load(projectRoot string) (*Config, error) {
	var base *Config
	if home, err := os.UserHomeDir(); err == nil {
		if cfg, err := LoadKDL(home); err == nil && cfg != nil {
			base = cfg
		}
	}

	project, err := LoadKDL(projectRoot)
	if err != nil {
		return nil, err
	}

	switch {
	case base != nil && project != nil:
		return mergeConfigs(base, project), nil
	case project != nil:
		return project, nil
	case base != nil:
		base.Project.Root = projectRoot
		return base, nil
	}
	return defaultConfig(projectRoot), nil
}

// LoadToolchainRegistry reads ".rte.kdl" and installs every declared
// <toolchain> entry into a fresh toolchain.Registry, returning an error for
// any entry whose version does not parse (spec §3.5).
func LoadToolchainRegistry(projectRoot string) (*toolchain.Registry, error) {
	cfg, err := Load(projectRoot)
	if err != nil {
		return nil, err
	}
	reg := toolchain.NewRegistry()
	for _, tc := range cfg.Toolchains {
		if err := reg.Install(tc.Family, tc.Version); err != nil {
			return nil, fmt.Errorf("toolchain %s: %w", tc.Family, err)
		}
	}
	return reg, nil
}

func defaultConfig(projectRoot string) *Config {
	root := projectRoot
	if root == "" {
		if cwd, err := os.Getwd(); err == nil {
			root = cwd
		} else {
			root = "."
		}
	}
	return &Config{
		Version: 1,
		Project: Project{Root: root},
		PackageFilter: PackageFilter{
			UseAllPacks: true,
		},
	}
}

// mergeConfigs merges a user-global base config with a project config: the
// project wins on every scalar field, but the package filter's
// selected-pack globs are unioned (mirroring the teacher's
// mergeConfigs, which unions Exclude patterns the same way).
func mergeConfigs(base, project *Config) *Config {
	merged := *project
	if !project.PackageFilter.UseAllPacks && len(base.PackageFilter.SelectedPacks) > 0 {
		seen := make(map[string]bool, len(project.PackageFilter.SelectedPacks))
		union := make([]string, 0, len(project.PackageFilter.SelectedPacks)+len(base.PackageFilter.SelectedPacks))
		for _, p := range project.PackageFilter.SelectedPacks {
			if !seen[p] {
				seen[p] = true
				union = append(union, p)
			}
		}
		for _, p := range base.PackageFilter.SelectedPacks {
			if !seen[p] {
				seen[p] = true
				union = append(union, p)
			}
		}
		merged.PackageFilter.SelectedPacks = union
	}
	if len(base.Toolchains) > 0 {
		merged.Toolchains = append(append([]ToolchainEntry{}, base.Toolchains...), project.Toolchains...)
	}
	return &merged
}

// configPath returns the ".rte.kdl" file path under root.
func configPath(root string) string {
	return filepath.Join(root, ".rte.kdl")
}
