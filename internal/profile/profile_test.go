package profile

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"cellignore/internal/remap"
)

func TestParseKey(t *testing.T) {
	tests := []struct {
		key    string
		driver string
		cells  int
		ok     bool
	}{
		{"focus:40", "focus", 40, true},
		{" freedomScientific : 14 ", "freedomScientific", 14, true},
		{"odd:name:40", "", 0, false},
		{"nocolon", "", 0, false},
		{"focus:", "", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			driver, cells, err := ParseKey(tt.key)
			if !tt.ok {
				assert.ErrorIs(t, err, ErrInvalidKey)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.driver, driver)
			assert.Equal(t, tt.cells, cells)
		})
	}
}

func TestProfileZeroBased(t *testing.T) {
	p, err := New("focus:40", CellList{7, 3, 0, -2, 3, 41})
	require.NoError(t, err)
	assert.Equal(t, CellList{-2, 0, 3, 7, 41}, p.Ignored)
	assert.Equal(t, []int{2, 6, 40}, p.ZeroBased())
	assert.Equal(t, "focus:40", p.Key())
	assert.True(t, p.Matches(remap.Device{Name: "focus", Cells: 40}))
	assert.False(t, p.Matches(remap.Device{Name: "focus", Cells: 80}))
}

func TestSetActive(t *testing.T) {
	set := FromMap(map[string]CellList{
		"focus:40":   {3, 7},
		"focus:80":   {1},
		"broken":     {1},
		"noBraille:0": {1},
	})
	assert.Len(t, set, 3)

	assert.Equal(t, []int{2, 6}, set.IgnoredPositions(remap.Device{Name: "focus", Cells: 40}))
	assert.Equal(t, []int{0}, set.IgnoredPositions(remap.Device{Name: "focus", Cells: 80}))
	assert.Nil(t, set.IgnoredPositions(remap.Device{Name: "focus", Cells: 14}))
	assert.Nil(t, set.IgnoredPositions(remap.Device{Name: NoBraille}))
	assert.Nil(t, set.IgnoredPositions(remap.Device{}))
}

func TestSetEditing(t *testing.T) {
	set := Set{}
	set.Put(Profile{Driver: "focus", NumCells: 40, Ignored: CellList{3}})
	set.Put(Profile{Driver: "alva", NumCells: 12})
	set.Put(Profile{Driver: "brailliant", NumCells: 20, Ignored: CellList{1, 2}})

	assert.Equal(t, []string{"alva:12", "brailliant:20", "focus:40"}, set.Keys())
	assert.Equal(t, map[string]CellList{"focus:40": {3}, "brailliant:20": {1, 2}}, set.ToMap())
	assert.Len(t, set.Pruned(), 2)

	hist := set.Historical("focus:40")
	require.Len(t, hist, 1)
	assert.Equal(t, "brailliant:20", hist[0].Key())

	assert.True(t, set.Remove("alva:12"))
	assert.False(t, set.Remove("alva:12"))

	clone := set.Clone()
	clone["focus:40"].Ignored[0] = 9
	assert.Equal(t, CellList{3}, set["focus:40"].Ignored)
}

func TestParseInput(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		max   int
		want  CellList
		err   error
	}{
		{"empty", "  ", 40, CellList{}, nil},
		{"sorted unique", "7, 3,3,, 12", 40, CellList{3, 7, 12}, nil},
		{"no range check", "100", 0, CellList{100}, nil},
		{"letters", "3, a", 40, nil, ErrInvalidCharacters},
		{"dash", "-1", 40, nil, ErrInvalidCharacters},
		{"inner space", "1 2", 40, nil, ErrInvalidNumber},
		{"zero", "0, 4", 40, nil, ErrCellBelowOne},
		{"too big", "3, 41, 50", 40, nil, ErrCellsOutOfRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseInput(tt.text, tt.max)
			if tt.err != nil {
				require.ErrorIs(t, err, tt.err)
				var inputErr *InputError
				require.True(t, errors.As(err, &inputErr))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestInputErrorMessages(t *testing.T) {
	_, err := ParseInput("3, 41, 50", 40)
	assert.EqualError(t, err, "cell numbers 41, 50 exceed display size (40 cells)")

	_, err = ParseInput("1 2", 40)
	assert.EqualError(t, err, `"1 2" is not a valid number`)
}

func TestCellListDecoding(t *testing.T) {
	type doc struct {
		Profiles map[string]CellList `toml:"profiles" json:"profiles" yaml:"profiles"`
	}
	want := map[string]CellList{"focus:40": {3, 7}, "alva:12": {2, 5}, "hims:32": {4}}

	t.Run("toml", func(t *testing.T) {
		var d doc
		_, err := toml.Decode(`
[profiles]
"focus:40" = [7, 3, 3]
"alva:12" = "5, 2"
"hims:32" = 4
`, &d)
		require.NoError(t, err)
		assert.Equal(t, want, d.Profiles)
	})

	t.Run("json", func(t *testing.T) {
		var d doc
		err := json.Unmarshal([]byte(`{"profiles":{"focus:40":[7,3],"alva:12":"5,2","hims:32":[4]}}`), &d)
		require.NoError(t, err)
		assert.Equal(t, want, d.Profiles)
	})

	t.Run("yaml", func(t *testing.T) {
		var d doc
		err := yaml.Unmarshal([]byte("profiles:\n  focus:40: [7, 3]\n  alva:12: \"5, 2\"\n  hims:32: 4\n"), &d)
		require.NoError(t, err)
		assert.Equal(t, want, d.Profiles)
	})

	t.Run("bad item", func(t *testing.T) {
		var d doc
		_, err := toml.Decode(`profiles = { "focus:40" = "3, x" }`, &d)
		assert.Error(t, err)
	})
}

func TestDocumentRoundTrip(t *testing.T) {
	set := FromMap(map[string]CellList{"focus:40": {3, 7}, "alva:12": {}})

	var buf bytes.Buffer
	require.NoError(t, WriteDocument(&buf, set))
	assert.NotContains(t, buf.String(), "alva")

	got, err := ReadDocument(&buf)
	require.NoError(t, err)
	assert.Equal(t, Set{"focus:40": {Driver: "focus", NumCells: 40, Ignored: CellList{3, 7}}}, got)
}

func TestDocumentValidation(t *testing.T) {
	bad := []string{
		`{"profiles":{}}`,
		`{"version":2,"profiles":{}}`,
		`{"version":1,"profiles":{"focus":[1]}}`,
		`{"version":1,"profiles":{"focus:40":[0]}}`,
		`{"version":1,"profiles":{"focus:40":"1;2"}}`,
		`{"version":1,"profiles":{},"extra":true}`,
		`not json`,
	}
	for _, doc := range bad {
		_, err := ReadDocument(strings.NewReader(doc))
		assert.Error(t, err, doc)
	}

	got, err := ReadDocument(strings.NewReader(`{"version":1,"profiles":{"focus:40":"3, 7"}}`))
	require.NoError(t, err)
	assert.Equal(t, CellList{3, 7}, got["focus:40"].Ignored)
}
