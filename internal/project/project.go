// Package project implements the §6.5 in-process API the CLI and the MCP
// server both sit on top of: create_project, Project.resolve,
// Project.apply_and_generate, Project.check_pack_requirements,
// Model.filter and Target.select_component. It is the glue layer spec.md
// leaves unspecified ("external interfaces... only their interfaces with
// the core matter") that a real CLI/IDE integration needs to exist at all.
package project

import (
	"os"
	"path/filepath"

	"github.com/cmsis-rte/rtecore/internal/canonvendor"
	"github.com/cmsis-rte/rtecore/internal/condition"
	"github.com/cmsis-rte/rtecore/internal/codegen/header"
	"github.com/cmsis-rte/rtecore/internal/codegen/memmap"
	"github.com/cmsis-rte/rtecore/internal/codegen/partition"
	"github.com/cmsis-rte/rtecore/internal/codegen/sfd"
	"github.com/cmsis-rte/rtecore/internal/cprj"
	"github.com/cmsis-rte/rtecore/internal/device"
	"github.com/cmsis-rte/rtecore/internal/diag"
	"github.com/cmsis-rte/rtecore/internal/item"
	"github.com/cmsis-rte/rtecore/internal/model"
	"github.com/cmsis-rte/rtecore/internal/pack"
	"github.com/cmsis-rte/rtecore/internal/solver"
	"github.com/cmsis-rte/rtecore/internal/target"
	"github.com/cmsis-rte/rtecore/internal/toolchain"
	"github.com/cmsis-rte/rtecore/internal/types"
	"github.com/cmsis-rte/rtecore/internal/xmlio"
)

// Project is one loaded *.cprj project bound against a Global model: the
// resolved, living state both the CLI and internal/mcp's tools operate on
// (spec §6.5's "Project" handle).
type Project struct {
	Global     *model.Global
	Binder     *cprj.Binder
	Target     *target.Target
	Toolchains *toolchain.Registry
	Canon      *canonvendor.Table

	RequiredPacks      []cprj.RequiredPack
	RequiredComponents []cprj.RequiredComponent

	Peripherals []header.Peripheral // from an externally-supplied SVD item tree, spec §6.1
}

// DependencyReport is the §6.5 "DependencyReport" Project.resolve and
// Target.select_component both return: the solver's per-aggregate results
// plus any diagnostics raised while producing them.
type DependencyReport struct {
	Results     map[types.AggregateID]condition.Result
	Diagnostics []diag.Diagnostic
}

// LoadPackage parses one *.pdsc file into a pack.Package. Its <devices>
// subtree, if present, is reparsed with device.NewFactory() separately
// since device items need Level/effective-attribute construction a plain
// item.Factory doesn't provide.
func LoadPackage(path string, state pack.State) (*pack.Package, *item.Item, error) {
	el, err := xmlio.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	root := item.FromElement(el, item.NewFactory(nil))
	root.Construct()
	p := pack.NewPackage(root, state)

	var deviceRoot *item.Item
	if devicesEl := el.FirstChildByTag("devices"); devicesEl != nil {
		deviceRoot = item.FromElement(devicesEl, device.NewFactory())
		deviceRoot.Construct()
	}
	return p, deviceRoot, nil
}

// LoadPackDirectory walks packRoot for every *.pdsc file (spec §6.2's
// filesystem collaborator, minimally realized here with os/filepath since
// directory scanning is explicitly out of the core's scope but something
// has to hand it files), loading each into a fresh Global model.
func LoadPackDirectory(packRoot string) (*model.Global, error) {
	g := model.NewGlobal()
	err := filepath.WalkDir(packRoot, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(path) != ".pdsc" {
			return nil
		}
		p, deviceRoot, err := LoadPackage(path, pack.StateInstalled)
		if err != nil {
			return err
		}
		g.AddPackage(p)
		if deviceRoot != nil {
			g.AddDeviceRoot(deviceRoot)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	g.Reindex()
	return g, nil
}

// CreateProject implements §6.5's create_project(cprj_file, pack_root,
// toolchain): loads every installed pack under packRoot, parses the
// project file's required packages/components and its <target> element's
// effective attributes, and binds a solver.Target ready to resolve.
func CreateProject(cprjPath, packRoot string, toolchains *toolchain.Registry) (*Project, error) {
	g, err := LoadPackDirectory(packRoot)
	if err != nil {
		return nil, err
	}

	cprjEl, err := xmlio.ReadFile(cprjPath)
	if err != nil {
		return nil, err
	}
	cprjRoot := item.FromElement(cprjEl, item.NewFactory(nil))
	cprjRoot.Construct()

	attrs := types.NewAttributeMap()
	if targetEl := cprjRoot.FirstChildByTag("target"); targetEl != nil {
		attrs = targetEl.Attrs.Clone()
	}

	tgt := target.NewTarget("default", attrs)

	proj := &Project{
		Global:             g,
		Binder:             cprj.NewBinder(g),
		Target:             tgt,
		Toolchains:         toolchains,
		Canon:              canonvendor.NewTable(),
		RequiredPacks:      cprj.ParseRequiredPacks(cprjRoot),
		RequiredComponents: cprj.ParseRequiredComponents(cprjRoot),
	}
	return proj, nil
}

// CheckPackRequirements implements §6.5's Project.check_pack_requirements.
func (p *Project) CheckPackRequirements() []cprj.RequiredPack {
	return p.Binder.CheckPackRequirements(p.RequiredPacks)
}

// Resolve implements §6.5's Project.resolve(): pins every required
// component, then runs the solver's fixed-point loop and returns the
// resulting dependency report.
func (p *Project) Resolve() DependencyReport {
	diags := diag.NewCollector()
	p.Binder.Resolve(p.RequiredComponents, p.Target, diags)

	s := solver.New(p.Global, p.Target.Solver, p.Canon)
	results := s.Resolve()

	report := DependencyReport{Results: results}
	report.Diagnostics = append(report.Diagnostics, diags.Diagnostics...)
	report.Diagnostics = append(report.Diagnostics, s.Diagnostics...)
	return report
}

// Filter implements §6.5's Model.filter(packageFilter): replaces the
// model's active filter and rebuilds its indexes.
func (p *Project) Filter(f *model.Filter) {
	p.Global.Filter = f
	p.Global.Reindex()
}

// SelectComponent implements §6.5's Target.select_component(aggregate,
// count): picks the best candidate for aggID (spec §4.6 leaves "which
// candidate" to the caller when more than one exists; this always takes
// the highest version, matching cprj.pickBest's tie-break), selects it,
// and re-resolves.
func (p *Project) SelectComponent(aggID types.AggregateID) DependencyReport {
	candidates := p.Global.ComponentsByAggregate(aggID)
	if len(candidates) == 0 {
		return DependencyReport{Diagnostics: []diag.Diagnostic{
			diag.New(diag.CodeMissingComponent, "", string(aggID), "no candidate component for aggregate"),
		}}
	}
	p.Target.SelectComponent(candidates[0])
	return p.Resolve()
}

// ApplyAndGenerate implements §6.5's Project.apply_and_generate(output_dir):
// writes the .cpinstall and .cpinstall.json missing-pack reports to
// outputDir and, when p.Peripherals (externally-supplied SVD peripherals)
// is non-empty, the header, SFD, memory-map and partition artifacts derived
// from them. No rewritten or pinned CPRJ file is written.
func (p *Project) ApplyAndGenerate(outputDir, deviceName string) error {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return err
	}

	missing := p.CheckPackRequirements()
	if err := os.WriteFile(filepath.Join(outputDir, deviceName+".cpinstall"), []byte(cprj.WriteCpinstall(missing)), 0o644); err != nil {
		return err
	}
	jsonReport, err := cprj.WriteCpinstallJSON(missing)
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(outputDir, deviceName+".cpinstall.json"), jsonReport, 0o644); err != nil {
		return err
	}

	if len(p.Peripherals) == 0 {
		return nil
	}

	var headerBody string
	for _, per := range p.Peripherals {
		headerBody += header.GenerateAddtogroup(per.Name, per.Description, header.GenerateStruct(per)+header.GenerateFieldMasks(per))
	}
	if err := os.WriteFile(filepath.Join(outputDir, deviceName+".h"), []byte(headerBody), 0o644); err != nil {
		return err
	}

	menu := sfd.BuildMenu(p.Peripherals)
	sfdBody := sfd.GenerateMenu(menu)
	for _, per := range p.Peripherals {
		sfdBody += sfd.GenerateView(sfd.View{Peripheral: per})
	}
	if err := os.WriteFile(filepath.Join(outputDir, deviceName+".sfd"), []byte(sfdBody), 0o644); err != nil {
		return err
	}

	if err := os.WriteFile(filepath.Join(outputDir, deviceName+"_MapPeripherals.txt"), []byte(memmap.Generate(p.Peripherals, memmap.LevelPeripheral)), 0o644); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(outputDir, deviceName+"_MapRegisters.txt"), []byte(memmap.Generate(p.Peripherals, memmap.LevelRegister)), 0o644); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(outputDir, deviceName+"_MapFields.txt"), []byte(memmap.Generate(p.Peripherals, memmap.LevelField)), 0o644); err != nil {
		return err
	}

	partitionDevice := partition.Device{Name: deviceName}
	if err := os.WriteFile(filepath.Join(outputDir, "partition_"+deviceName+".h"), []byte(partition.Generate(partitionDevice)), 0o644); err != nil {
		return err
	}

	return nil
}
