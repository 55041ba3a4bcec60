package migration

import (
	"encoding/json"
	"fmt"
)

// Primary blocks hold a JSON payload. Imported documents carry {"html": ...};
// tabular rows additionally carry the raw issue/memo cell values so the board
// can surface them without re-parsing HTML. Merges must preserve whatever
// extra fields a payload already has, so payloads round-trip through a map.

func htmlPayload(html string) (string, error) {
	return marshalPayload(map[string]any{"html": html})
}

func worklogPayload(html, issue, memo string) (string, error) {
	return marshalPayload(map[string]any{
		"html":  html,
		"issue": issue,
		"memo":  memo,
	})
}

// appendHTMLToPayload concatenates a section onto the payload's html field,
// leaving every other field intact.
func appendHTMLToPayload(content, section string) (string, error) {
	payload, err := unmarshalPayload(content)
	if err != nil {
		return "", err
	}
	oldHTML, _ := payload["html"].(string)
	payload["html"] = oldHTML + section
	return marshalPayload(payload)
}

// payloadHTML extracts the html field, or "" when absent or malformed.
func payloadHTML(content string) string {
	payload, err := unmarshalPayload(content)
	if err != nil {
		return ""
	}
	html, _ := payload["html"].(string)
	return html
}

// payloadWithHTML replaces the html field, leaving other fields intact.
func payloadWithHTML(content, html string) (string, error) {
	payload, err := unmarshalPayload(content)
	if err != nil {
		return "", err
	}
	payload["html"] = html
	return marshalPayload(payload)
}

func marshalPayload(payload map[string]any) (string, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to encode block payload: %w", err)
	}
	return string(data), nil
}

func unmarshalPayload(content string) (map[string]any, error) {
	payload := map[string]any{}
	if err := json.Unmarshal([]byte(content), &payload); err != nil {
		return nil, fmt.Errorf("failed to decode block payload: %w", err)
	}
	return payload, nil
}
