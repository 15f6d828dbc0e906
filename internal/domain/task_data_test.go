package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskDataUnmarshalSplitsKnownAndExtra(t *testing.T) {
	raw := []byte(`{
		"job_id": "j1",
		"assessed": true,
		"failed": false,
		"job_applied": 1,
		"job_title": "Staff Engineer",
		"required_qualifications": [{"requirement": "Go", "match": 1}]
	}`)

	var data TaskData
	require.NoError(t, json.Unmarshal(raw, &data))

	assert.Equal(t, "j1", data.JobID)
	assert.True(t, data.IsAssessed())
	assert.False(t, data.IsFailed())
	assert.True(t, data.IsApplied())
	assert.Contains(t, data.Extra, "job_title")
	assert.Contains(t, data.Extra, "required_qualifications")
	assert.NotContains(t, data.Extra, "job_id")
}

func TestTaskDataUnmarshalLegacyTyping(t *testing.T) {
	// Older records stored flags with loose typing: booleans as 0/1,
	// the applied flag as a boolean, reasons as explicit nulls.
	raw := []byte(`{
		"job_id": "j1",
		"assessed": 0,
		"failed": 1,
		"job_applied": true,
		"failed_reason": null
	}`)

	var data TaskData
	require.NoError(t, json.Unmarshal(raw, &data))

	require.NotNil(t, data.Assessed)
	assert.False(t, *data.Assessed)
	assert.True(t, data.IsFailed())
	assert.True(t, data.IsApplied())
	assert.Nil(t, data.FailedReason)
}

func TestTaskDataAbsenceIsDistinctFromFalse(t *testing.T) {
	var data TaskData
	require.NoError(t, json.Unmarshal([]byte(`{"job_id": "j1"}`), &data))

	assert.Nil(t, data.JobApplied, "absent applied flag must stay absent")
	assert.False(t, data.IsApplied())
	assert.Nil(t, data.Assessed)
	assert.Nil(t, data.Failed)
}

func TestTaskDataMarshalRoundTrip(t *testing.T) {
	data := TaskData{
		JobID:        "j1",
		Assessed:     Bool(true),
		JobApplied:   Int(0),
		FailedReason: String("llm timeout"),
		Extra: map[string]json.RawMessage{
			"job_title":   json.RawMessage(`"X"`),
			"job_company": json.RawMessage(`"Acme"`),
		},
	}

	raw, err := json.Marshal(data)
	require.NoError(t, err)

	var back TaskData
	require.NoError(t, json.Unmarshal(raw, &back))

	assert.Equal(t, data.JobID, back.JobID)
	assert.Equal(t, data.Assessed, back.Assessed)
	assert.Equal(t, data.JobApplied, back.JobApplied)
	assert.Equal(t, data.FailedReason, back.FailedReason)
	assert.Equal(t, data.Extra, back.Extra)
	assert.Nil(t, back.Failed, "absent fields must not materialize")
}

func TestFailureReasonPrefersQuarantine(t *testing.T) {
	data := TaskData{
		FailedReason:     String("generic failure"),
		QuarantineReason: String("model refused the description"),
	}
	assert.Equal(t, "model refused the description", data.FailureReason())

	data.QuarantineReason = nil
	assert.Equal(t, "generic failure", data.FailureReason())

	assert.Empty(t, TaskData{}.FailureReason())
}
