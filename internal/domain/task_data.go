package domain

import (
	"encoding/json"
	"fmt"
)

// Recognized keys in the task data bag. Everything else rides in Extra.
const (
	keyJobID            = "job_id"
	keyAssessed         = "assessed"
	keyFailed           = "failed"
	keyFailedReason     = "failed_reason"
	keyQuarantineReason = "quarantine_reason"
	keyJobApplied       = "job_applied"
	keyStaleQuarantine  = "stale_quarantine"
)

// TaskData is the open attribute bag of domain fields attached to a task.
// The recognized fields are typed; unknown fields arriving in snapshots
// are preserved verbatim in Extra so they survive merges and round-trips.
// Nil pointers mean the field is absent, which is distinct from a zero
// value — notably for JobApplied, where absence triggers backfill.
type TaskData struct {
	JobID            string
	Assessed         *bool
	Failed           *bool
	FailedReason     *string
	QuarantineReason *string
	JobApplied       *int
	StaleQuarantine  *bool
	Extra            map[string]json.RawMessage
}

// Snapshot is a partial, point-in-time view of a task's remote state.
// It shares the task data shape: absent fields are simply nil.
type Snapshot = TaskData

// Bool returns a pointer to b, for populating optional fields.
func Bool(b bool) *bool { return &b }

// Int returns a pointer to i, for populating optional fields.
func Int(i int) *int { return &i }

// String returns a pointer to s, for populating optional fields.
func String(s string) *string { return &s }

// IsAssessed reports whether the remote system has produced a final
// assessment for this task.
func (d TaskData) IsAssessed() bool {
	return d.Assessed != nil && *d.Assessed
}

// IsFailed reports whether the remote system reported permanent failure.
func (d TaskData) IsFailed() bool {
	return d.Failed != nil && *d.Failed
}

// IsApplied reports whether the underlying job was marked applied-to.
// An absent flag reads as not applied; use d.JobApplied == nil to detect
// absence.
func (d TaskData) IsApplied() bool {
	return d.JobApplied != nil && *d.JobApplied == 1
}

// FailureReason returns the human-readable failure explanation, preferring
// the quarantine reason when both are present.
func (d TaskData) FailureReason() string {
	if d.QuarantineReason != nil && *d.QuarantineReason != "" {
		return *d.QuarantineReason
	}
	if d.FailedReason != nil && *d.FailedReason != "" {
		return *d.FailedReason
	}
	return ""
}

// Clone returns a deep copy of the data bag.
func (d TaskData) Clone() TaskData {
	out := d
	out.Assessed = cloneBool(d.Assessed)
	out.Failed = cloneBool(d.Failed)
	out.FailedReason = cloneString(d.FailedReason)
	out.QuarantineReason = cloneString(d.QuarantineReason)
	out.JobApplied = cloneInt(d.JobApplied)
	out.StaleQuarantine = cloneBool(d.StaleQuarantine)
	if d.Extra != nil {
		out.Extra = make(map[string]json.RawMessage, len(d.Extra))
		for k, v := range d.Extra {
			raw := make(json.RawMessage, len(v))
			copy(raw, v)
			out.Extra[k] = raw
		}
	}
	return out
}

// MarshalJSON flattens the typed fields and the Extra bag into a single
// JSON object, emitting each recognized field only when present.
func (d TaskData) MarshalJSON() ([]byte, error) {
	obj := make(map[string]json.RawMessage, len(d.Extra)+7)
	for k, v := range d.Extra {
		obj[k] = v
	}

	put := func(key string, value any) error {
		raw, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("failed to marshal task data field %q: %w", key, err)
		}
		obj[key] = raw
		return nil
	}

	if d.JobID != "" {
		if err := put(keyJobID, d.JobID); err != nil {
			return nil, err
		}
	}
	if d.Assessed != nil {
		if err := put(keyAssessed, *d.Assessed); err != nil {
			return nil, err
		}
	}
	if d.Failed != nil {
		if err := put(keyFailed, *d.Failed); err != nil {
			return nil, err
		}
	}
	if d.FailedReason != nil {
		if err := put(keyFailedReason, *d.FailedReason); err != nil {
			return nil, err
		}
	}
	if d.QuarantineReason != nil {
		if err := put(keyQuarantineReason, *d.QuarantineReason); err != nil {
			return nil, err
		}
	}
	if d.JobApplied != nil {
		if err := put(keyJobApplied, *d.JobApplied); err != nil {
			return nil, err
		}
	}
	if d.StaleQuarantine != nil {
		if err := put(keyStaleQuarantine, *d.StaleQuarantine); err != nil {
			return nil, err
		}
	}

	return json.Marshal(obj)
}

// UnmarshalJSON splits a JSON object into the typed fields and Extra.
// Records written by older clients use loose typing for the flag fields
// (booleans as 0/1 and vice versa), so those are accepted here.
func (d *TaskData) UnmarshalJSON(data []byte) error {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("task data must be a JSON object: %w", err)
	}

	out := TaskData{}

	for key, raw := range obj {
		switch key {
		case keyJobID:
			if err := json.Unmarshal(raw, &out.JobID); err != nil {
				return fmt.Errorf("invalid %s: %w", keyJobID, err)
			}
		case keyAssessed:
			v, err := decodeFlexBool(raw)
			if err != nil {
				return fmt.Errorf("invalid %s: %w", keyAssessed, err)
			}
			out.Assessed = v
		case keyFailed:
			v, err := decodeFlexBool(raw)
			if err != nil {
				return fmt.Errorf("invalid %s: %w", keyFailed, err)
			}
			out.Failed = v
		case keyFailedReason:
			v, err := decodeNullableString(raw)
			if err != nil {
				return fmt.Errorf("invalid %s: %w", keyFailedReason, err)
			}
			out.FailedReason = v
		case keyQuarantineReason:
			v, err := decodeNullableString(raw)
			if err != nil {
				return fmt.Errorf("invalid %s: %w", keyQuarantineReason, err)
			}
			out.QuarantineReason = v
		case keyJobApplied:
			v, err := decodeFlexInt(raw)
			if err != nil {
				return fmt.Errorf("invalid %s: %w", keyJobApplied, err)
			}
			out.JobApplied = v
		case keyStaleQuarantine:
			v, err := decodeFlexBool(raw)
			if err != nil {
				return fmt.Errorf("invalid %s: %w", keyStaleQuarantine, err)
			}
			out.StaleQuarantine = v
		default:
			if out.Extra == nil {
				out.Extra = make(map[string]json.RawMessage)
			}
			out.Extra[key] = raw
		}
	}

	*d = out
	return nil
}

// decodeFlexBool accepts true/false, 0/1, or null.
func decodeFlexBool(raw json.RawMessage) (*bool, error) {
	if isJSONNull(raw) {
		return nil, nil
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return &b, nil
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		b = n != 0
		return &b, nil
	}
	return nil, fmt.Errorf("value %s is not a boolean", string(raw))
}

// decodeFlexInt accepts numbers, true/false, or null.
func decodeFlexInt(raw json.RawMessage) (*int, error) {
	if isJSONNull(raw) {
		return nil, nil
	}
	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		return &n, nil
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		n = 0
		if b {
			n = 1
		}
		return &n, nil
	}
	return nil, fmt.Errorf("value %s is not an integer", string(raw))
}

// decodeNullableString accepts a string or null.
func decodeNullableString(raw json.RawMessage) (*string, error) {
	if isJSONNull(raw) {
		return nil, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func isJSONNull(raw json.RawMessage) bool {
	return len(raw) == 4 && string(raw) == "null"
}

func cloneBool(v *bool) *bool {
	if v == nil {
		return nil
	}
	b := *v
	return &b
}

func cloneInt(v *int) *int {
	if v == nil {
		return nil
	}
	i := *v
	return &i
}

func cloneString(v *string) *string {
	if v == nil {
		return nil
	}
	s := *v
	return &s
}
