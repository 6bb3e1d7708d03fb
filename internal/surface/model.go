// Package surface owns the per-surface state stored in the "surfaces" KV
// bucket: which demo view is showing and the latest tool run snapshot. The
// snapshot is a single-writer slot; only the tool engine mutates it, so the
// UI never sees a torn transition.
package surface

import (
	"encoding/json"
	"fmt"

	"hellorun/internal/messages"
)

// Bucket is the KV bucket holding one Data document per surface id.
const Bucket = "surfaces"

// Known surface views.
const (
	ViewHello = "hello"
	ViewTools = "tools"
)

// DefaultView is what a fresh surface shows.
const DefaultView = ViewHello

// ValidView reports whether the view name is one of the demo views.
func ValidView(view string) bool {
	return view == ViewHello || view == ViewTools
}

// Data is the JSON document stored in the "surfaces" KV bucket.
type Data struct {
	// Active view (hello|tools); empty means DefaultView
	View string `json:"view,omitempty"`

	// Raw JSON for the latest run snapshot (RunSnapshot serialized)
	Run json.RawMessage `json:"run,omitempty"`
}

// State is the in-memory view of a surface, combining the typed snapshot.
type State struct {
	// Active view, always a valid view name
	View string

	// Latest run snapshot (nil if no tool was ever triggered)
	Run *RunSnapshot
}

// LoadData parses raw KV bytes into State. Empty input yields the default
// state rather than an error: a surface that was never written is valid.
func LoadData(raw []byte) (State, error) {
	st := State{View: DefaultView}
	if len(raw) == 0 {
		return st, nil
	}

	var d Data
	if err := json.Unmarshal(raw, &d); err != nil {
		return st, fmt.Errorf("parse surface data: %w", err)
	}

	if d.View != "" {
		if !ValidView(d.View) {
			return st, fmt.Errorf("invalid view: %s", d.View)
		}
		st.View = d.View
	}

	if len(d.Run) > 0 {
		var snap RunSnapshot
		if err := json.Unmarshal(d.Run, &snap); err != nil {
			return st, fmt.Errorf("parse run snapshot: %w", err)
		}
		st.Run = &snap
	}
	return st, nil
}

// Raw converts State back into a Data for JSON storage.
func (st *State) Raw() (Data, error) {
	d := Data{}
	if st.View != DefaultView {
		d.View = st.View
	}

	if st.Run != nil {
		data, err := json.Marshal(st.Run)
		if err != nil {
			return d, err
		}
		d.Run = data
	}
	return d, nil
}

// Encode marshals State to the KV wire form.
func (st *State) Encode() ([]byte, error) {
	d, err := st.Raw()
	if err != nil {
		return nil, err
	}
	return json.Marshal(d)
}

// Subscriptions returns the NATS subjects a surface's UI stream follows.
// Every surface watches its own run lifecycle and console output; there is
// no user-composable subscription set. Run subjects are enumerated per
// event kind (run id wildcarded) so each one pairs with a renderer.
func Subscriptions(surfaceID string) []string {
	return []string{
		messages.RunStartedSubject(surfaceID, "*"),
		messages.RunExitSubject(surfaceID, "*"),
		messages.RunErrorSubject(surfaceID, "*"),
		messages.RunRejectedSubject(surfaceID),
		messages.ConsoleFreezeSubject(surfaceID),
		messages.ConsoleViewDocSubject(surfaceID),
	}
}
