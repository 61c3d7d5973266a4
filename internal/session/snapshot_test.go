package session_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/p-n-ai/statsmd/internal/session"
)

func TestEncodeSnapshot_BrowserFormat(t *testing.T) {
	p := session.Persisted{
		DarkMode: false,
		Progress: session.UserProgress{
			CompletedModules: []string{"glossary"},
			AssessmentScores: map[string]int{"q001": 1},
			Bookmarks:        []string{"p-value"},
			LastAccessed:     time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		},
	}

	data, err := session.EncodeSnapshot(p)
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"state": {
			"darkMode": false,
			"userProgress": {
				"completedModules": ["glossary"],
				"assessmentScores": {"q001": 1},
				"bookmarks": ["p-value"],
				"lastAccessed": "2026-01-02T03:04:05Z"
			}
		},
		"version": 0
	}`, string(data))
}

func TestDecodeSnapshot_RoundTrip(t *testing.T) {
	p := session.Persisted{DarkMode: true, Progress: session.NewUserProgress()}
	p.Progress.CompletedModules = append(p.Progress.CompletedModules, "cases")

	data, err := session.EncodeSnapshot(p)
	require.NoError(t, err)
	got, err := session.DecodeSnapshot(data)
	require.NoError(t, err)
	assert.Equal(t, p, got)
}

func TestDecodeSnapshot_MissingFieldsUseDefaults(t *testing.T) {
	got, err := session.DecodeSnapshot([]byte(`{"state":{"userProgress":{"bookmarks":["x"]}},"version":0}`))
	require.NoError(t, err)

	assert.True(t, got.DarkMode)
	assert.Equal(t, []string{"x"}, got.Progress.Bookmarks)
	assert.NotNil(t, got.Progress.CompletedModules)
	assert.NotNil(t, got.Progress.AssessmentScores)
}

func TestDecodeSnapshot_Invalid(t *testing.T) {
	_, err := session.DecodeSnapshot([]byte(`[]`))
	assert.Error(t, err)

	var syntax *json.SyntaxError
	_, err = session.DecodeSnapshot([]byte(`{`))
	assert.ErrorAs(t, err, &syntax)
}
