package surface

import (
	"testing"

	"hellorun/internal/messages"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyPatchMerge(t *testing.T) {
	t.Run("initializes empty surface", func(t *testing.T) {
		out, err := ApplyPatch(nil, []byte(`{"view":"tools"}`), messages.PatchMerge)
		require.NoError(t, err)

		st, err := LoadData(out)
		require.NoError(t, err)
		assert.Equal(t, ViewTools, st.View)
	})

	t.Run("empty type means merge", func(t *testing.T) {
		out, err := ApplyPatch([]byte(`{"view":"tools"}`), []byte(`{"view":"hello"}`), "")
		require.NoError(t, err)

		st, err := LoadData(out)
		require.NoError(t, err)
		assert.Equal(t, ViewHello, st.View)
	})

	t.Run("null removes key", func(t *testing.T) {
		out, err := ApplyPatch([]byte(`{"view":"tools"}`), []byte(`{"view":null}`), messages.PatchMerge)
		require.NoError(t, err)

		st, err := LoadData(out)
		require.NoError(t, err)
		assert.Equal(t, DefaultView, st.View)
	})
}

func TestApplyPatchOperations(t *testing.T) {
	current := []byte(`{"view":"hello"}`)
	ops := []byte(`[{"op":"replace","path":"/view","value":"tools"}]`)

	out, err := ApplyPatch(current, ops, messages.PatchJSONPatch)
	require.NoError(t, err)

	st, err := LoadData(out)
	require.NoError(t, err)
	assert.Equal(t, ViewTools, st.View)
}

func TestApplyPatchRejectsInvalidResult(t *testing.T) {
	_, err := ApplyPatch(nil, []byte(`{"view":"dashboard"}`), messages.PatchMerge)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "patched state")
}

func TestApplyPatchRejectsBadInput(t *testing.T) {
	t.Run("malformed ops list", func(t *testing.T) {
		_, err := ApplyPatch(nil, []byte(`{"op":"replace"}`), messages.PatchJSONPatch)
		assert.Error(t, err)
	})

	t.Run("unknown type", func(t *testing.T) {
		_, err := ApplyPatch(nil, []byte(`{}`), "diff")
		assert.Error(t, err)
	})
}
