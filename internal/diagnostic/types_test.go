package diagnostic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiagnostics_Err(t *testing.T) {
	var d Diagnostics
	require.NoError(t, d.Err())

	d.AddWarning(CodeExcludedField, "native buffer not copied", "ij.ByteProcessor", "snapshotPixels")
	assert.NoError(t, d.Err())
	assert.False(t, d.HasErrors())

	d.AddError(CodeFieldKind, "int vs string", "ij.ByteProcessor", "width")
	e := d.AddError(CodeUnresolved, "no such class", "ij.ByteProcesor", "")
	e.Suggestions = []string{"ij.ByteProcessor"}

	require.Error(t, d.Err())
	assert.Equal(t, []string{CodeFieldKind, CodeUnresolved}, d.Codes())
	assert.Contains(t, d.Err().Error(), "[ij.ByteProcessor] width: [field-kind] int vs string")
	assert.Contains(t, d.Err().Error(), "did you mean ij.ByteProcessor?")
}

func TestDiagnostics_Merge(t *testing.T) {
	var a, b Diagnostics
	a.AddInfo("x", "first", "", "")
	b.AddError(CodeMissingType, "second", "ij.Calibration", "")

	a.Merge(b)

	assert.Len(t, a.Infos, 1)
	assert.Len(t, a.Errors, 1)
	assert.Equal(t, "[ij.Calibration]: [missing-type] second", a.Errors[0].String())
}

func TestSeverity_String(t *testing.T) {
	assert.Equal(t, "info", SeverityInfo.String())
	assert.Equal(t, "warning", SeverityWarning.String())
	assert.Equal(t, "error", SeverityError.String())
	assert.Equal(t, "unknown", Severity(9).String())
}
