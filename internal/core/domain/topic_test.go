package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindTopicMarkers(t *testing.T) {
	text := "Preamble text.\nTopic 1-1: Introduction\nbody one\ntopic 1-2\nbody two\n"

	markers := FindTopicMarkers(text)
	require.Len(t, markers, 2)

	assert.Equal(t, 1, markers[0].Major)
	assert.Equal(t, 1, markers[0].Minor)
	assert.Equal(t, "Introduction", markers[0].Title)
	assert.Equal(t, "Topic 1-1", markers[0].Label())

	assert.Equal(t, "Topic 1-2", markers[1].Label())
	assert.Empty(t, markers[1].Title)
	assert.Greater(t, markers[1].Offset, markers[0].Offset)
}

func TestFindTopicMarkersLineAnchored(t *testing.T) {
	// A marker in the middle of a line is prose, not structure.
	markers := FindTopicMarkers("see Topic 3-2 for details\n")
	assert.Empty(t, markers)

	// Leading whitespace is fine.
	markers = FindTopicMarkers("  Topic 3-2\ncontent\n")
	require.Len(t, markers, 1)
	assert.Equal(t, "Topic 3-2", markers[0].Label())
}

func TestParseTopicQuery(t *testing.T) {
	tests := []struct {
		question string
		label    string
		ok       bool
	}{
		{"Topic 3-2", "Topic 3-2", true},
		{"what does topic 1-1 say?", "Topic 1-1", true},
		{"TOPIC 10-4 summary", "Topic 10-4", true},
		{"what is the refund policy?", "", false},
		{"topicality of 1-2", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		ref, ok := ParseTopicQuery(tt.question)
		assert.Equal(t, tt.ok, ok, "question %q", tt.question)
		if tt.ok {
			assert.Equal(t, tt.label, ref.Label())
		}
	}
}
