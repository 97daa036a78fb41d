package jsonstream

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsingmao/enginectl/internal/api"
)

func TestRepair(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", "[]"},
		{"whitespace only", " \r\n\t", "[]"},
		{"single object", `{"a":1}`, `[{"a":1}]`},
		{"two objects", `{"a":1}{"b":2}`, `[{"a":1},{"b":2}]`},
		{"brace sequence in string", `{"s":"}{"}{"b":2}`, `[{"s":"}{"},{"b":2}]`},
		{"escaped quote in string", `{"s":"say \"}{\" now"}{"b":2}`, `[{"s":"say \"}{\" now"},{"b":2}]`},
		{"escaped backslash before quote", `{"s":"dir\\"}{"b":"{"}`, `[{"s":"dir\\"},{"b":"{"}]`},
		{"nested objects", `{"a":{"b":{"c":1}}}{"d":[{"e":2}]}`, `[{"a":{"b":{"c":1}}},{"d":[{"e":2}]}]`},
		{"newline separated", "{\"a\":1}\r\n{\"b\":2}\n", `[{"a":1},{"b":2}]`},
		{"unicode", `{"s":"héllo }{ wörld"}{"n":1}`, `[{"s":"héllo }{ wörld"},{"n":1}]`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Repair(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
			assert.True(t, json.Valid([]byte(got)), got)
		})
	}
}

func TestRepairMalformed(t *testing.T) {
	cases := map[string]string{
		"unbalanced":          `{"a":1`,
		"extra close":         `{"a":1}}`,
		"leading close":       `}{"a":1}`,
		"unterminated string": `{"a":"1}`,
		"top-level array":     `[{"a":1}]`,
		"top-level scalar":    `{"a":1}42`,
		"trailing garbage":    `{"a":1}x`,
	}
	for name, in := range cases {
		_, err := Repair(in)
		assert.ErrorIs(t, err, api.ErrMalformedStream, name)
	}
}

func TestRepairBeatsLiteralReplace(t *testing.T) {
	in := `{"s":"}{"}{"b":2}`
	naive := "[" + strings.ReplaceAll(in, "}{", "},{") + "]"
	assert.NotEqual(t, naive, mustRepair(t, in))

	var out []map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(mustRepair(t, in)), &out))
	require.Len(t, out, 2)
	assert.Equal(t, "}{", out[0]["s"])
}

func TestSplit(t *testing.T) {
	docs, err := Split(`{"status":"Pulling"}{"status":"Done","id":"x"}`)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.JSONEq(t, `{"status":"Pulling"}`, string(docs[0]))
	assert.JSONEq(t, `{"status":"Done","id":"x"}`, string(docs[1]))

	docs, err = Split("")
	require.NoError(t, err)
	assert.Empty(t, docs)

	_, err = Split(`{"a":`)
	assert.ErrorIs(t, err, api.ErrMalformedStream)
}

func mustRepair(t *testing.T, in string) string {
	t.Helper()
	out, err := Repair(in)
	require.NoError(t, err)
	return out
}
