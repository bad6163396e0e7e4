package wallet

import "github.com/tinychain/tinychain/internal/core"

// formatAmount renders amount the way Python's str() renders a float, which
// is what the reference implementation feeds into the signed digest. See
// core.FormatPythonFloat for the rationale.
func formatAmount(amount float64) string {
	return core.FormatPythonFloat(amount)
}
