package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Topic markers are structural labels of the form "Topic <major>-<minor>"
// with an optional ": <title>" suffix. Inside documents they must start a
// line; inside questions they may appear anywhere.
var (
	topicLinePattern  = regexp.MustCompile(`(?im)^[ \t]*topic[ \t]+(\d+)[ \t]*-[ \t]*(\d+)[ \t]*(?::[ \t]*([^\n]*))?$`)
	topicQueryPattern = regexp.MustCompile(`(?i)\btopic[ \t]+(\d+)[ \t]*-[ \t]*(\d+)\b`)
)

// TopicRef identifies a topic marker parsed from text.
type TopicRef struct {
	// Major and Minor are the numeric parts of the marker.
	Major int
	Minor int

	// Title is the optional text after ": ", empty when absent.
	Title string
}

// Label returns the canonical topic label, e.g. "Topic 3-2".
func (t TopicRef) Label() string {
	return fmt.Sprintf("Topic %d-%d", t.Major, t.Minor)
}

// TopicMarker is one occurrence of a topic marker inside document text.
type TopicMarker struct {
	TopicRef

	// Offset is the character offset where the marker line begins.
	Offset int
}

// FindTopicMarkers scans document text for line-anchored topic markers
// in order of appearance.
func FindTopicMarkers(text string) []TopicMarker {
	matches := topicLinePattern.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return nil
	}

	markers := make([]TopicMarker, 0, len(matches))
	for _, m := range matches {
		major, _ := strconv.Atoi(text[m[2]:m[3]])
		minor, _ := strconv.Atoi(text[m[4]:m[5]])

		var title string
		if m[6] >= 0 {
			title = strings.TrimSpace(text[m[6]:m[7]])
		}

		markers = append(markers, TopicMarker{
			TopicRef: TopicRef{Major: major, Minor: minor, Title: title},
			Offset:   m[0],
		})
	}
	return markers
}

// ParseTopicQuery checks whether a question references a topic marker.
// A match switches retrieval to exact lookup, bypassing the embedder.
func ParseTopicQuery(question string) (TopicRef, bool) {
	m := topicQueryPattern.FindStringSubmatch(question)
	if m == nil {
		return TopicRef{}, false
	}
	major, _ := strconv.Atoi(m[1])
	minor, _ := strconv.Atoi(m[2])
	return TopicRef{Major: major, Minor: minor}, true
}
