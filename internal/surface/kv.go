package surface

import (
	"context"
	"errors"
	"fmt"

	"github.com/nats-io/nats.go/jetstream"
)

// UpdateState read-modify-writes one surface document under optimistic
// revision checks, retrying when another writer lands first. The tool
// engine and the console both mutate surface documents; revision checks
// keep a late console write from clobbering a run transition.
func UpdateState(ctx context.Context, kv jetstream.KeyValue, surfaceID string, mutate func(*State) error) (State, error) {
	const maxAttempts = 5

	for attempt := 0; attempt < maxAttempts; attempt++ {
		var raw []byte
		var rev uint64

		entry, err := kv.Get(ctx, surfaceID)
		switch {
		case err == nil:
			raw = entry.Value()
			rev = entry.Revision()
		case errors.Is(err, jetstream.ErrKeyNotFound):
			// fresh surface
		default:
			return State{}, fmt.Errorf("get surface %s: %w", surfaceID, err)
		}

		st, err := LoadData(raw)
		if err != nil {
			// Stored garbage must not wedge the surface; start over from
			// defaults and let the mutation land.
			st = State{View: DefaultView}
		}

		if err := mutate(&st); err != nil {
			return State{}, err
		}

		data, err := st.Encode()
		if err != nil {
			return State{}, fmt.Errorf("encode surface %s: %w", surfaceID, err)
		}

		if rev == 0 {
			_, err = kv.Create(ctx, surfaceID, data)
		} else {
			_, err = kv.Update(ctx, surfaceID, data, rev)
		}
		if err == nil {
			return st, nil
		}
		if !isRevisionConflict(err) {
			return State{}, fmt.Errorf("put surface %s: %w", surfaceID, err)
		}
		// lost the race; reload and retry
	}
	return State{}, fmt.Errorf("surface %s: too many concurrent updates", surfaceID)
}

func isRevisionConflict(err error) bool {
	if errors.Is(err, jetstream.ErrKeyExists) {
		return true
	}
	var apiErr *jetstream.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode == jetstream.JSErrCodeStreamWrongLastSequence
	}
	return false
}
