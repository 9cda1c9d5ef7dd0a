package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmsis-rte/rtecore/internal/codegen/header"
)

const samplePdsc = `<?xml version="1.0"?>
<package schemaVersion="1.7">
	<vendor>ARM</vendor>
	<name>CMSIS</name>
	<releases>
		<release version="5.9.0"/>
	</releases>
	<components>
		<component Cclass="CMSIS" Cgroup="CORE" Cversion="5.6.0">
			<files/>
		</component>
	</components>
</package>`

const sampleCprj = `<?xml version="1.0"?>
<cprj>
	<target Dname="STM32H743ZI" Dvendor="STMicroelectronics" Tcompiler="AC6"/>
	<packages>
		<package vendor="ARM" name="CMSIS" version="5.9.0"/>
		<package vendor="NXP" name="MIMXRT1064_DFP" version="1.0.0"/>
	</packages>
	<components>
		<component Cclass="CMSIS" Cgroup="CORE" Cversion="5.6.0"/>
	</components>
</cprj>`

func writeProjectFixture(t *testing.T) (packRoot, cprjPath string) {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ARM.CMSIS.pdsc"), []byte(samplePdsc), 0o644))
	cprjPath = filepath.Join(dir, "project.cprj")
	require.NoError(t, os.WriteFile(cprjPath, []byte(sampleCprj), 0o644))
	return dir, cprjPath
}

func TestCreateProject_ParsesTargetAttributesAndRequirements(t *testing.T) {
	packRoot, cprjPath := writeProjectFixture(t)

	p, err := CreateProject(cprjPath, packRoot, nil)
	require.NoError(t, err)

	dname, ok := p.Target.Attrs.Get("Dname")
	require.True(t, ok)
	assert.Equal(t, "STM32H743ZI", dname)
	require.Len(t, p.RequiredPacks, 2)
	require.Len(t, p.RequiredComponents, 1)
}

func TestCheckPackRequirements_FlagsPackNotInstalled(t *testing.T) {
	packRoot, cprjPath := writeProjectFixture(t)
	p, err := CreateProject(cprjPath, packRoot, nil)
	require.NoError(t, err)

	missing := p.CheckPackRequirements()
	require.Len(t, missing, 1)
	assert.Equal(t, "NXP::MIMXRT1064_DFP@1.0.0", missing[0].PackID())
}

func TestResolve_PinsRequiredComponent(t *testing.T) {
	packRoot, cprjPath := writeProjectFixture(t)
	p, err := CreateProject(cprjPath, packRoot, nil)
	require.NoError(t, err)

	report := p.Resolve()
	assert.NotEmpty(t, p.Target.Solver.Selections)
	_ = report
}

func TestApplyAndGenerate_WritesCpinstallAndHeader(t *testing.T) {
	packRoot, cprjPath := writeProjectFixture(t)
	p, err := CreateProject(cprjPath, packRoot, nil)
	require.NoError(t, err)
	p.Peripherals = []header.Peripheral{{Name: "TIMER0", BaseAddress: 0x40000000}}

	outDir := t.TempDir()
	require.NoError(t, p.ApplyAndGenerate(outDir, "STM32H743ZI"))

	assert.FileExists(t, filepath.Join(outDir, "STM32H743ZI.cpinstall"))
	assert.FileExists(t, filepath.Join(outDir, "STM32H743ZI.cpinstall.json"))
	assert.FileExists(t, filepath.Join(outDir, "STM32H743ZI.h"))
	assert.FileExists(t, filepath.Join(outDir, "STM32H743ZI.sfd"))
	assert.FileExists(t, filepath.Join(outDir, "partition_STM32H743ZI.h"))
}
