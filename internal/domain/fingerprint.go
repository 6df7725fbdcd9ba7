package domain

import "encoding/json"

// Fingerprint returns the canonical form of a customization, used as the
// equality key when deciding whether two cart requests describe the same
// purchasable configuration. Entries with unset values are dropped and the
// remaining keys are serialized in sorted order, so logically identical
// customizations always produce identical strings.
//
// Values keep their type: the number 0 counts as unset and is dropped, the
// string "0" is kept, so the two are not equivalent.
func Fingerprint(c Customization) string {
	if len(c) == 0 {
		return "{}"
	}

	kept := make(map[string]any, len(c))
	for key, value := range c {
		if isUnset(value) {
			continue
		}
		kept[key] = value
	}
	if len(kept) == 0 {
		return "{}"
	}

	// json.Marshal emits map keys in sorted (byte) order, which makes the
	// output deterministic.
	data, err := json.Marshal(kept)
	if err != nil {
		return "{}"
	}
	return string(data)
}

func isUnset(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return v == ""
	case bool:
		return !v
	case float64:
		return v == 0
	case float32:
		return v == 0
	case int:
		return v == 0
	case int64:
		return v == 0
	default:
		return false
	}
}
