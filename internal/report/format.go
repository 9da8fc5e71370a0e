package report

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/unformat/shredder/internal/types"
)

var byteUnits = []string{"Bytes", "KB", "MB", "GB", "TB"}

// FormatBytes renders n in 1024-based units with up to decimals fraction
// digits, trailing zeros dropped: 0 Bytes, 1.5 KB, 2 MB.
func FormatBytes(n int64, decimals int) string {
	if n <= 0 {
		return "0 Bytes"
	}
	if decimals < 0 {
		decimals = 0
	}
	i := int(math.Floor(math.Log(float64(n)) / math.Log(1024)))
	if i >= len(byteUnits) {
		i = len(byteUnits) - 1
	}
	v := float64(n) / math.Pow(1024, float64(i))
	scale := math.Pow(10, float64(decimals))
	v = math.Round(v*scale) / scale
	return strconv.FormatFloat(v, 'f', -1, 64) + " " + byteUnits[i]
}

// WriteJSON pretty-prints v.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// ShouldFail reports whether any finding reaches the failOn threshold.
// An empty threshold or "none" disables the gate.
func ShouldFail(findings []types.Finding, failOn string) (bool, error) {
	if failOn == "" {
		return false, nil
	}
	threshold, err := types.ParseRisk(failOn)
	if err != nil {
		return false, fmt.Errorf("--fail-on: %w", err)
	}
	if threshold == types.RiskNone {
		return false, nil
	}
	for _, f := range findings {
		if f.Risk >= threshold {
			return true, nil
		}
	}
	return false, nil
}
