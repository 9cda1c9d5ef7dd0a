// Package partition implements the L4 partition_<device>.h generator of
// spec §4.8: the TrustZone SAU-region / sleep / NVIC_ITNS Configuration
// Wizard blocks placed into a device's secure partition header.
//
// Grounded on
// original_source/tools/svdconv/SVDGenerator/include/PartitionData.h's
// CreateSauRegionsConfig / CreateSleepAndExceptionHandling /
// CreateSetupInterruptTarget sequence (each a discrete emission step in
// the original's FileIo writer; rendered here as a single string builder
// pass per section instead of an explicit step-by-step visitor).
package partition

import (
	"fmt"
	"sort"
	"strings"
)

// SAURegion is one Secure Attribution Unit region entry (PartitionData.h's
// CreateInitSauRegions / SvdSauRegion).
type SAURegion struct {
	Number    int
	BaseAddr  uint64
	LimitAddr uint64
	NonSecure bool
}

// Interrupt is one device interrupt whose NVIC_ITNS (interrupt
// target-non-secure) bit the Configuration Wizard lets the user assign
// (PartitionData.h's CreateSetupInterruptTarget).
type Interrupt struct {
	Number int
	Name   string
}

// Device is the minimal view the partition generator needs of a target
// device: its SAU regions and interrupt vector, both already in the
// order they should be emitted.
type Device struct {
	Name          string
	MaxSAURegions int
	SAURegions    []SAURegion
	Interrupts    []Interrupt
}

const (
	cfgBegin = "// <<< Use Configuration Wizard in Context Menu >>>"
	cfgEnd   = "// <<< end of configuration section >>>"
)

// Generate renders the full partition_<device>.h body (spec §4.8's
// partition generator).
func Generate(d Device) string {
	var b strings.Builder
	b.WriteString(headingBegin("TrustZone Secure Attribution Unit Configuration"))
	b.WriteString(generateSauGlobalConfig())
	b.WriteString(generateMaxSAURegions(d.MaxSAURegions))
	b.WriteString(generateSAURegions(d.SAURegions))
	b.WriteString(headingEnd())

	b.WriteString(headingBegin("Sleep and Exception Handling"))
	b.WriteString(generateSleepAndExceptionHandling())
	b.WriteString(headingEnd())

	b.WriteString(headingBegin("Interrupt Security"))
	b.WriteString(generateInterruptTargets(d.Interrupts))
	b.WriteString(headingEnd())
	return b.String()
}

func headingBegin(text string) string {
	return fmt.Sprintf("\n%s\n// <h> %s\n", cfgBegin, text)
}

func headingEnd() string {
	return fmt.Sprintf("// </h>\n%s\n", cfgEnd)
}

func generateSauGlobalConfig() string {
	var b strings.Builder
	b.WriteString("// <e> Initialize Security Attribution Unit (SAU) CTRL register\n")
	b.WriteString("#define SAU_INIT_CTRL         1\n")
	b.WriteString("// <o> Disable/Enable the SAU\n")
	b.WriteString("#define SAU_INIT_CTRL_ENABLE  1\n")
	b.WriteString("// <o> All Memory Attribute To Non-Secure\n")
	b.WriteString("#define SAU_INIT_CTRL_ALLNS   0\n")
	b.WriteString("// </e>\n")
	return b.String()
}

func generateMaxSAURegions(max int) string {
	return fmt.Sprintf("#define SAU_REGIONS_MAX  %d\n", max)
}

func generateSAURegions(regions []SAURegion) string {
	sorted := make([]SAURegion, len(regions))
	copy(sorted, regions)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Number < sorted[j].Number })

	var b strings.Builder
	for _, r := range sorted {
		b.WriteString(fmt.Sprintf("// <e> Initialize Security Attribution Unit Region %d\n", r.Number))
		b.WriteString(fmt.Sprintf("#define SAU_INIT_REGION%d    1\n", r.Number))
		b.WriteString(fmt.Sprintf("// <o> Start Address <0-0xFFFFFFE0>\n#define SAU_INIT_START%d  0x%08XUL\n", r.Number, r.BaseAddr))
		b.WriteString(fmt.Sprintf("// <o> End Address <0x1F-0xFFFFFFFF>\n#define SAU_INIT_END%d    0x%08XUL\n", r.Number, r.LimitAddr))
		b.WriteString(fmt.Sprintf("// <o> Region is <0=>Secure <1=>Non-Secure Callable\n#define SAU_INIT_NSC%d    %d\n", r.Number, boolToInt(r.NonSecure)))
		b.WriteString("// </e>\n")
	}
	return b.String()
}

func generateSleepAndExceptionHandling() string {
	var b strings.Builder
	b.WriteString("// <o> Deep Sleep can be enabled by Non-Secure\n#define SCB_CSR_DEEPSLEEPS_VAL 0\n")
	b.WriteString("// <o> System reset request accessible from Non-Secure\n#define SCB_AIRCR_SYSRESETREQS_VAL 0\n")
	b.WriteString("// <o> Priority of Non-Secure exceptions is limited\n#define SCB_AIRCR_PRIS_VAL 0\n")
	b.WriteString("// <o> BusFault, HardFault, and NMI are Secure\n#define SCB_AIRCR_BFHFNMINS_VAL 0\n")
	return b.String()
}

func generateInterruptTargets(interrupts []Interrupt) string {
	sorted := make([]Interrupt, len(interrupts))
	copy(sorted, interrupts)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Number < sorted[j].Number })

	var b strings.Builder
	for _, irq := range sorted {
		b.WriteString(fmt.Sprintf("// <o.%d> %-24s <0=> Secure state <1=> Non-Secure state\n", irq.Number%32, irq.Name))
		b.WriteString(fmt.Sprintf("#define %s_ITNS  0\n", irq.Name))
	}
	return b.String()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
