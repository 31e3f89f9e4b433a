// Package payload encodes bill-of-materials component lines into the
// fixed-width binary signal sent alongside a robot task. The signal marks
// which material slots are active for one automation cycle.
package payload

import (
	"strings"

	"github.com/Ism1tha/odoo-mqtt-addon/internal/models"
)

// Width is the fixed number of material slots in the signal.
const Width = 6

// Empty is the signal produced when no material slot is active.
const Empty = "000000"

// Encode builds the binary payload from the given BOM lines. Each
// material-typed line contributes its configured bit string, normalized to
// exactly Width characters (left-padded with zeros, truncated to the
// rightmost Width). Contributions are combined with a bitwise OR, so the
// result is independent of line order. A nil BOM or no lines yields Empty.
func Encode(lines []models.BOMLine) string {
	if len(lines) == 0 {
		return Empty
	}

	result := make([]byte, Width)
	for i := range result {
		result[i] = '0'
	}

	for _, line := range lines {
		if line.Product == nil || line.Product.MQTTType != string(models.ProductTypeMaterial) {
			continue
		}
		bits := normalize(line.Product.MaterialBinary)
		if bits == "" {
			continue
		}
		for i := 0; i < Width; i++ {
			if bits[i] == '1' {
				result[i] = '1'
			}
		}
	}

	return string(result)
}

// normalize pads a bit string to Width characters and keeps the rightmost
// Width of them. Empty input stays empty.
func normalize(bits string) string {
	if bits == "" {
		return ""
	}
	if len(bits) < Width {
		bits = strings.Repeat("0", Width-len(bits)) + bits
	}
	return bits[len(bits)-Width:]
}
