package agents

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"
)

var (
	trailingCommaObject = regexp.MustCompile(`,\s*}`)
	trailingCommaArray  = regexp.MustCompile(`,\s*]`)
)

// stripNoise removes markdown code fences and trailing commas, the defects
// the models most commonly wrap their JSON in.
func stripNoise(raw string) string {
	cleaned := strings.ReplaceAll(raw, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	cleaned = trailingCommaObject.ReplaceAllString(cleaned, "}")
	return trailingCommaArray.ReplaceAllString(cleaned, "]")
}

// RepairJSON cleans up common LLM output defects around a JSON object:
// markdown code fences, prose before or after the object, and trailing
// commas. The returned string spans the first '{' to the last '}'.
func RepairJSON(raw string) (string, error) {
	cleaned := stripNoise(raw)

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start < 0 || end < start {
		return "", errors.New("agents: no json object found in output")
	}
	return cleaned[start : end+1], nil
}

// DecodeObject parses a cleaned LLM payload into a generic map. A top-level
// array resolves to its last element, the most recent intent when a model
// emits one object per turn.
func DecodeObject(raw string) (map[string]any, error) {
	cleaned := stripNoise(raw)
	objStart := strings.Index(cleaned, "{")
	arrStart := strings.Index(cleaned, "[")

	// A list-shaped payload must be decoded before object slicing, which
	// would strip the array brackets and leave invalid JSON.
	if arrStart >= 0 && (objStart < 0 || arrStart < objStart) {
		if arrEnd := strings.LastIndex(cleaned, "]"); arrEnd > arrStart {
			var asList []map[string]any
			if err := json.Unmarshal([]byte(cleaned[arrStart:arrEnd+1]), &asList); err == nil && len(asList) > 0 {
				return asList[len(asList)-1], nil
			}
		}
	}

	if objStart >= 0 {
		if objEnd := strings.LastIndex(cleaned, "}"); objEnd > objStart {
			var asObject map[string]any
			if err := json.Unmarshal([]byte(cleaned[objStart:objEnd+1]), &asObject); err == nil {
				return asObject, nil
			}
		}
	}

	return nil, errors.New("agents: output is not a json object")
}

// StringField reads a string value from a decoded payload. Blank sentinels
// the models tend to emit ("", "null", "undefined") count as absent.
func StringField(data map[string]any, key string) (string, bool) {
	v, ok := data[key]
	if !ok || v == nil {
		return "", false
	}
	s, ok := v.(string)
	if !ok {
		return "", false
	}
	s = strings.TrimSpace(s)
	if s == "" || s == "null" || s == "undefined" {
		return "", false
	}
	return s, true
}

// IntField reads an integer value, coercing floats and numeric strings.
func IntField(data map[string]any, key string) (int, bool) {
	f, ok := FloatField(data, key)
	if !ok {
		return 0, false
	}
	return int(f), true
}

// FloatField reads a numeric value, coercing numeric strings.
func FloatField(data map[string]any, key string) (float64, bool) {
	v, ok := data[key]
	if !ok || v == nil {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case string:
		s := strings.TrimSpace(n)
		if s == "" || s == "null" || s == "undefined" {
			return 0, false
		}
		var f float64
		if err := json.Unmarshal([]byte(s), &f); err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
