package diag

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew_DefaultsSeverityFromCode(t *testing.T) {
	d := New(CodeMissingComponent, "ARM.CMSIS.5.9.0", "CMSIS:CORE", "no candidate")
	assert.Equal(t, SeverityError, d.Severity)

	advisory := New(CodeDuplicateCondition, "", "", "duplicate condition")
	assert.Equal(t, SeverityAdvisory, advisory.Severity)
}

func TestNew_UnknownCodeDefaultsToError(t *testing.T) {
	d := New(Code("M999"), "", "", "unknown")
	assert.Equal(t, SeverityError, d.Severity)
}

func TestDiagnostic_WithLineAttachesLineWithoutMutatingReceiver(t *testing.T) {
	base := New(CodePathNotFound, "", "item", "not found")
	withLine := base.WithLine(42)

	assert.Equal(t, 0, base.Line)
	assert.Equal(t, 42, withLine.Line)
}

func TestDiagnostic_StringMatchesReportShape(t *testing.T) {
	d := New(CodeMissingComponent, "ARM.CMSIS.5.9.0", "CMSIS:CORE", "no candidate component")
	assert.Equal(t, "ARM.CMSIS.5.9.0: 'CMSIS:CORE': error #M511: no candidate component", d.String())
	assert.Equal(t, d.String(), d.Error())
}

func TestCollector_EmitAccumulatesInOrder(t *testing.T) {
	c := NewCollector()
	c.Emit(New(CodeUnusedCondition, "", "a", "first"))
	c.Emit(New(CodeMissingComponent, "", "b", "second"))

	assert.Len(t, c.Diagnostics, 2)
	assert.Equal(t, "first", c.Diagnostics[0].Message)
	assert.Equal(t, "second", c.Diagnostics[1].Message)
}

func TestCollector_HasSeverity(t *testing.T) {
	c := NewCollector()
	c.Emit(New(CodeUnusedCondition, "", "", "warning only"))

	assert.True(t, c.HasSeverity(SeverityWarning))
	assert.False(t, c.HasSeverity(SeverityError))
}

func TestCollector_ExitCode(t *testing.T) {
	tests := []struct {
		name  string
		codes []Code
		want  int
	}{
		{"no diagnostics", nil, 0},
		{"warning only", []Code{CodeUnusedCondition}, 1},
		{"any error wins", []Code{CodeUnusedCondition, CodeMissingComponent}, 2},
		{"advisory only stays zero", []Code{CodeDuplicateCondition}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCollector()
			for _, code := range tt.codes {
				c.Emit(New(code, "", "", "msg"))
			}
			assert.Equal(t, tt.want, c.ExitCode())
		})
	}
}

func TestNopSink_DiscardsWithoutPanicking(t *testing.T) {
	var sink Sink = NopSink{}
	assert.NotPanics(t, func() {
		sink.Emit(New(CodeRecursion, "", "", "ignored"))
	})
}

func TestMultiError_FiltersNilsAndFormats(t *testing.T) {
	err1 := New(CodeConflict, "", "a", "conflict")
	err2 := New(CodeIncompatible, "", "b", "incompatible")

	empty := NewMultiError(nil)
	assert.Equal(t, "no errors", empty.Error())

	single := NewMultiError([]error{nil, err1, nil})
	assert.Equal(t, err1.Error(), single.Error())
	assert.Len(t, single.Errors, 1)

	multi := NewMultiError([]error{err1, err2})
	assert.Contains(t, multi.Error(), "2 errors")
	assert.Len(t, multi.Unwrap(), 2)
}
