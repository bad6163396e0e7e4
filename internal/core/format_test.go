package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatPythonFloatIntegerGetsFractionalSuffix(t *testing.T) {
	assert.Equal(t, "10.0", FormatPythonFloat(10))
	assert.Equal(t, "0.0", FormatPythonFloat(0))
}

func TestFormatPythonFloatFractional(t *testing.T) {
	assert.Equal(t, "1.5", FormatPythonFloat(1.5))
	assert.Equal(t, "0.001", FormatPythonFloat(0.001))
}

func TestFormatPythonFloatNegative(t *testing.T) {
	assert.Equal(t, "-3.0", FormatPythonFloat(-3))
}
