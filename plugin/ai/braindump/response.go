package braindump

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var errNoArray = errors.New("no JSON array found")

// ParseResponse recovers candidate events from raw oracle text.
//
// It returns a FailureError with ReasonMalformedResponse when no array can be
// decoded and ReasonEmptyExtraction when the array holds no event objects.
func ParseResponse(raw string) ([]CandidateEvent, error) {
	body, ok := locateArray(stripFence(raw))
	if !ok {
		return nil, newFailure(ReasonMalformedResponse, errNoArray)
	}

	var items []json.RawMessage
	if err := json.Unmarshal([]byte(body), &items); err != nil {
		return nil, newFailure(ReasonMalformedResponse, err)
	}

	candidates := make([]CandidateEvent, 0, len(items))
	for _, item := range items {
		var fields map[string]any
		if err := json.Unmarshal(item, &fields); err != nil || fields == nil {
			// Non-object elements carry no event.
			continue
		}
		candidates = append(candidates, CandidateEvent{
			Title:       field(fields, "title"),
			Description: field(fields, "description"),
			Date:        field(fields, "date"),
			Time:        field(fields, "time"),
			Priority:    field(fields, "priority"),
		})
	}

	if len(candidates) == 0 {
		return nil, newFailure(ReasonEmptyExtraction, nil)
	}
	return candidates, nil
}

// stripFence removes a surrounding markdown code fence, with or without a
// language tag.
func stripFence(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		// Drop the language tag up to the end of the opening line.
		if nl := strings.IndexByte(s, '\n'); nl >= 0 && !strings.ContainsAny(s[:nl], "[{") {
			s = s[nl+1:]
		} else {
			s = strings.TrimPrefix(s, "json")
		}
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// locateArray returns the text from the first '[' to the last ']'.
func locateArray(s string) (string, bool) {
	start := strings.IndexByte(s, '[')
	end := strings.LastIndexByte(s, ']')
	if start < 0 || end <= start {
		return "", false
	}
	return s[start : end+1], true
}

// field reads a loosely-typed JSON value as a string. null and missing
// values become "".
func field(m map[string]any, key string) string {
	switch v := m[key].(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprint(v)
	}
}
