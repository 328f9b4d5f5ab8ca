package transcript

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeValue_UnmarshalJSON(t *testing.T) {
	var segs []Segment
	err := json.Unmarshal([]byte(`[
		{"speaker":"A","text":"hi","start":0,"end":2.5},
		{"speaker":"B","text":"yo","start":"00:03","end":"00:00:04.5"},
		{"speaker":"C","text":"?","start":null},
		{"speaker":"D","text":"!"}
	]`), &segs)
	require.NoError(t, err)
	require.Len(t, segs, 4)

	assert.Equal(t, Seconds(0), segs[0].Start)
	assert.Equal(t, Seconds(2.5), segs[0].End)
	assert.Equal(t, Timestamp("00:03"), segs[1].Start)
	assert.Equal(t, TimeText, segs[1].End.Kind())
	assert.True(t, segs[2].Start.IsZero())
	assert.True(t, segs[3].End.IsZero())
}

func TestTimeValue_UnmarshalJSON_RejectsOtherKinds(t *testing.T) {
	for _, body := range []string{
		`{"start":true}`,
		`{"start":{"seconds":1}}`,
		`{"start":[1]}`,
	} {
		var s Segment
		err := json.Unmarshal([]byte(body), &s)
		require.Error(t, err, body)
		assert.True(t, errors.Is(err, ErrInvalidInput), body)
	}
}

func TestTimeValue_MarshalJSON(t *testing.T) {
	data, err := json.Marshal([]Segment{
		{Speaker: "A", Text: "x", Start: Seconds(1.5), End: Timestamp("00:02")},
		{Speaker: "B", Text: "y"},
		{Speaker: "C", Text: "z", Start: Seconds(math.NaN())},
	})
	require.NoError(t, err)

	assert.JSONEq(t, `[
		{"speaker":"A","text":"x","start":1.5,"end":"00:02"},
		{"speaker":"B","text":"y"},
		{"speaker":"C","text":"z","start":null}
	]`, string(data))
}

func TestSeverity_UnmarshalJSON(t *testing.T) {
	var c []Critique
	require.NoError(t, json.Unmarshal([]byte(`[
		{"severity":"critical","discrepancy":"wrong drug","likelyCorrect":"original"},
		{"severity":"","discrepancy":"","likelyCorrect":"unclear","confidence":0.8},
		{"severity":"minor","discrepancy":"","likelyCorrect":"both","confidence":"high"}
	]`), &c))

	assert.Equal(t, SeverityCritical, c[0].Severity)
	assert.Equal(t, SeverityNone, c[1].Severity)
	assert.Equal(t, Confidence("0.8"), c[1].Confidence)
	assert.Equal(t, Confidence("high"), c[2].Confidence)

	err := json.Unmarshal([]byte(`[{"severity":"catastrophic"}]`), &c)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestSeverity_Rank(t *testing.T) {
	assert.Less(t, SeverityNone.Rank(), SeverityMinor.Rank())
	assert.Less(t, SeverityMinor.Rank(), SeverityModerate.Rank())
	assert.Less(t, SeverityModerate.Rank(), SeverityCritical.Rank())
	assert.False(t, Severity("other").Valid())
}

func TestDecodePayload(t *testing.T) {
	p, err := DecodePayload([]byte(`{"original":[{"speaker":"A","text":"hi","start":0,"end":2}],"generated":[]}`))
	require.NoError(t, err)
	assert.Len(t, p.Original, 1)
	assert.NotNil(t, p.Generated)
	assert.Empty(t, p.Generated)
	assert.Nil(t, p.Critiques)
}

func TestDecodePayload_StructuralErrors(t *testing.T) {
	tests := map[string]string{
		"missing original":  `{"generated":[]}`,
		"null generated":    `{"original":[],"generated":null}`,
		"object not array":  `{"original":{},"generated":[]}`,
		"string not array":  `{"original":[],"generated":"x"}`,
		"bad time kind":     `{"original":[{"start":false}],"generated":[]}`,
		"critiques object":  `{"original":[],"generated":[],"critiques":{}}`,
		"not json":          `nope`,
		"trailing document": `{"original":[],"generated":[]} {}`,
	}

	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := DecodePayload([]byte(body))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestDecodeSegments(t *testing.T) {
	segs, err := DecodeSegments([]byte(`[]`))
	require.NoError(t, err)
	assert.NotNil(t, segs)

	_, err = DecodeSegments([]byte(`null`))
	assert.ErrorIs(t, err, ErrInvalidInput)
}
