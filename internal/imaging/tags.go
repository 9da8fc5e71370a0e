package imaging

import (
	"encoding/json"
	"strings"

	"github.com/unformat/shredder/internal/types"
)

// Tag is one decoded metadata entry, before risk assignment.
type Tag struct {
	Key        string
	Value      string
	Structured bool
}

const (
	structuredLimit = 50
	plainLimit      = 100
	isoLayout       = "2006-01-02T15:04:05.000Z"
)

var riskTable = []struct {
	risk types.Risk
	keys []string
}{
	{types.RiskHigh, []string{"GPSLatitude", "GPSLongitude", "Face", "RegionInfo"}},
	{types.RiskMedium, []string{"Make", "Model", "SerialNumber", "LensModel", "LensSerialNumber"}},
	{types.RiskLow, []string{"Software", "DateTimeOriginal", "CreateDate", "ModifyDate"}},
}

// RiskFor assigns a risk by substring match on the tag key, highest first.
func RiskFor(key string) types.Risk {
	for _, row := range riskTable {
		for _, k := range row.keys {
			if strings.Contains(key, k) {
				return row.risk
			}
		}
	}
	return types.RiskNone
}

// Display renders the value as shown to the user.
func (t Tag) Display() string {
	if t.Structured {
		return types.Truncate(t.Value, structuredLimit)
	}
	return t.Value
}

// Findings converts tags into findings, dropping duplicate keys (first wins)
// and long values that carry no risk.
func Findings(tags []Tag) []types.Finding {
	seen := make(map[string]bool, len(tags))
	out := make([]types.Finding, 0, len(tags))
	for _, t := range tags {
		if t.Key == "" || seen[t.Key] {
			continue
		}
		seen[t.Key] = true
		v := t.Display()
		r := RiskFor(t.Key)
		if r == types.RiskNone && len([]rune(v)) >= plainLimit {
			continue
		}
		out = append(out, types.Finding{Key: t.Key, Value: v, Risk: r})
	}
	return out
}

func structured(key string, v any) Tag {
	b, err := json.Marshal(v)
	if err != nil {
		return Tag{Key: key, Value: "[unrenderable]"}
	}
	return Tag{Key: key, Value: string(b), Structured: true}
}
