package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseID(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	got, err := parseID("learner", " "+id.String()+" ")
	require.NoError(t, err)
	assert.Equal(t, id, got)

	_, err = parseID("learner", "")
	require.EqualError(t, err, "--learner is required")

	_, err = parseID("item", "not-a-uuid")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--item")
}

func TestResolveDay(t *testing.T) {
	t.Parallel()

	kolkata := time.FixedZone("IST", 5*3600+1800)
	// 20:00 UTC is already the next calendar day in IST.
	now := time.Date(2025, 7, 16, 20, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		raw     string
		tz      *time.Location
		want    time.Time
		wantErr bool
	}{
		{name: "explicit", raw: "2025-03-01", tz: time.UTC, want: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)},
		{name: "today utc", raw: "", tz: time.UTC, want: time.Date(2025, 7, 16, 0, 0, 0, 0, time.UTC)},
		{name: "today local", raw: "", tz: kolkata, want: time.Date(2025, 7, 17, 0, 0, 0, 0, time.UTC)},
		{name: "bad format", raw: "16/07/2025", tz: time.UTC, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := resolveDay(tt.raw, now, tt.tz)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s", got)
		})
	}
}

func TestParseRating(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw     string
		want    int
		wantErr bool
	}{
		{raw: "again", want: 1},
		{raw: "Hard", want: 2},
		{raw: " good ", want: 3},
		{raw: "easy", want: 4},
		{raw: "3", want: 3},
		{raw: "0", wantErr: true},
		{raw: "5", wantErr: true},
		{raw: "perfect", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			t.Parallel()
			got, err := parseRating(tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOptionalHours(t *testing.T) {
	t.Parallel()

	got, err := optionalHours(false, 3)
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = optionalHours(true, 0)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Zero(t, *got)

	_, err = optionalHours(true, -1)
	require.Error(t, err)
}

func TestVersionCmd_RunsWithoutDatabase(t *testing.T) {
	t.Parallel()

	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version"})

	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "planner dev")
}

func TestRootCmd_Tree(t *testing.T) {
	t.Parallel()

	root := newRootCmd()
	for _, path := range [][]string{
		{"plan", "generate"}, {"plan", "regenerate"}, {"plan", "show"},
		{"item", "complete"}, {"item", "defer"}, {"item", "skip"},
		{"review"}, {"confidence"}, {"velocity"},
		{"buffer", "update"}, {"buffer", "list"}, {"cascade"},
		{"fatigue"}, {"recovery", "check"}, {"recovery", "activate"}, {"recovery", "exit"},
		{"recalibrate"}, {"persona", "show"}, {"persona", "set"}, {"persona", "history"},
		{"insight", "mock"}, {"insight", "flag"}, {"insight", "list"}, {"version"},
	} {
		cmd, _, err := root.Find(path)
		require.NoError(t, err, path)
		assert.Equal(t, path[len(path)-1], cmd.Name())
	}
}

func TestValidAccuracy(t *testing.T) {
	t.Parallel()

	for _, v := range []float64{0, 0.55, 1} {
		assert.NoError(t, validAccuracy(v), v)
	}
	for _, v := range []float64{-0.1, 1.2} {
		assert.Error(t, validAccuracy(v), v)
	}
}

func TestConfidenceCmd_SubjectsFlag(t *testing.T) {
	t.Parallel()

	root := newRootCmd()
	cmd, _, err := root.Find([]string{"confidence"})
	require.NoError(t, err)
	require.NotNil(t, cmd.Flags().Lookup("subjects"))
}
