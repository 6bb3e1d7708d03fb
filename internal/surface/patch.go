package surface

import (
	"bytes"
	"fmt"

	"hellorun/internal/messages"

	jsonpatch "github.com/evanphx/json-patch/v5"
)

// ApplyPatch applies a merge patch (RFC 7386) or JSON patch (RFC 6902) to
// the stored surface document and returns the patched bytes. Empty current
// bytes are treated as an empty object so a patch can initialize a surface.
// The result is parsed back through LoadData, so a patch cannot smuggle an
// invalid view or a malformed snapshot into the bucket.
func ApplyPatch(current []byte, patch []byte, patchType messages.PatchType) ([]byte, error) {
	if len(bytes.TrimSpace(current)) == 0 {
		current = []byte("{}")
	}

	var patched []byte
	var err error
	switch patchType {
	case messages.PatchMerge, "":
		patched, err = jsonpatch.MergePatch(current, patch)
		if err != nil {
			return nil, fmt.Errorf("merge patch: %w", err)
		}
	case messages.PatchJSONPatch:
		decoded, derr := jsonpatch.DecodePatch(patch)
		if derr != nil {
			return nil, fmt.Errorf("decode patch: %w", derr)
		}
		patched, err = decoded.Apply(current)
		if err != nil {
			return nil, fmt.Errorf("apply patch: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown patch type: %s", patchType)
	}

	if _, err := LoadData(patched); err != nil {
		return nil, fmt.Errorf("patched state: %w", err)
	}
	return patched, nil
}
