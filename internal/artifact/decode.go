package artifact

import (
	"encoding/base64"
	"strings"

	"github.com/joseph-ayodele/ocr-jobs/constants"
)

// value is the normalized shape of an artifact carried by an LLM response:
// either raw bytes or encoded text. Unrecognized input maps to neither.
type value struct {
	raw      []byte
	text     string
	encoding string
	ok       bool
}

func classify(v any) value {
	switch x := v.(type) {
	case []byte:
		return value{raw: x, ok: true}
	case string:
		return value{text: x, encoding: "base64", ok: true}
	case map[string]any:
		encoding, _ := x["encoding"].(string)
		if encoding == "" {
			encoding = "base64"
		}
		switch content := x["content"].(type) {
		case []byte:
			return value{raw: content, ok: true}
		case string:
			return value{text: content, encoding: encoding, ok: true}
		}
	}
	return value{}
}

// Decode normalizes the loosely shaped artifact values an LLM response may
// carry: raw bytes pass through, base64 text is decoded (falling back to the
// literal UTF-8 bytes when it is not valid base64), and {content, encoding}
// objects follow the same rules per encoding. Anything else yields nil.
func Decode(v any) []byte {
	val := classify(v)
	switch {
	case !val.ok:
		return nil
	case val.raw != nil:
		return val.raw
	}
	switch strings.ToLower(val.encoding) {
	case "base64":
		if data, err := base64.StdEncoding.DecodeString(val.text); err == nil {
			return data
		}
		return []byte(val.text)
	case "utf-8", "text":
		return []byte(val.text)
	}
	return nil
}

// Embedded is an artifact decoded out of an enrichment response.
type Embedded struct {
	Kind constants.ArtifactKind
	Data []byte
}

// ExtractFromResponse scans the top level and a nested "artifacts" object for
// known artifact kinds. The first occurrence per kind wins.
func ExtractFromResponse(raw map[string]any) []Embedded {
	if raw == nil {
		return nil
	}
	candidates := []map[string]any{raw}
	if extra, ok := raw["artifacts"].(map[string]any); ok {
		candidates = append(candidates, extra)
	}

	var out []Embedded
	seen := make(map[constants.ArtifactKind]bool)
	for _, candidate := range candidates {
		for _, kind := range constants.ArtifactKinds {
			if seen[kind] {
				continue
			}
			v, present := candidate[string(kind)]
			if !present || v == nil {
				continue
			}
			if data := Decode(v); data != nil {
				out = append(out, Embedded{Kind: kind, Data: data})
				seen[kind] = true
			}
		}
	}
	return out
}
