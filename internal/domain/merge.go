package domain

import "encoding/json"

// MergeData combines an existing task data bag with a partial snapshot.
// The snapshot wins per field when present; fields absent from the
// snapshot retain their prior value. Extra keys merge the same way,
// key by key. The result never reports a failed task as assessed.
//
// This is the only sanctioned write path into a task's data bag, apart
// from the explicit applied-flag toggle on user action.
func MergeData(existing TaskData, snap Snapshot) TaskData {
	out := existing.Clone()

	if snap.JobID != "" {
		out.JobID = snap.JobID
	}
	if snap.Assessed != nil {
		out.Assessed = cloneBool(snap.Assessed)
	}
	if snap.Failed != nil {
		out.Failed = cloneBool(snap.Failed)
	}
	if snap.FailedReason != nil {
		out.FailedReason = cloneString(snap.FailedReason)
	}
	if snap.QuarantineReason != nil {
		out.QuarantineReason = cloneString(snap.QuarantineReason)
	}
	if snap.JobApplied != nil {
		out.JobApplied = cloneInt(snap.JobApplied)
	}
	if snap.StaleQuarantine != nil {
		out.StaleQuarantine = cloneBool(snap.StaleQuarantine)
	}

	if len(snap.Extra) > 0 && out.Extra == nil {
		out.Extra = make(map[string]json.RawMessage, len(snap.Extra))
	}
	for k, v := range snap.Extra {
		raw := make([]byte, len(v))
		copy(raw, v)
		out.Extra[k] = raw
	}

	if out.IsFailed() {
		out.Assessed = Bool(false)
	}

	return out
}
