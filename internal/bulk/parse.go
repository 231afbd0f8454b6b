package bulk

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// textKeys are tried in order when pulling conversation text out of a JSON
// object.
var textKeys = []string{"text", "content", "message", "conversation", "dialog", "messages"}

// Parse detects the layout of an upload and splits it into conversations.
// Detection order is ABCD dataset, JSON array, JSON lines, then plain text.
// A JSON form that yields no conversations falls through to the next form.
func Parse(input, fileName string) (Batch, error) {
	text := strings.TrimSpace(input)

	if json.Valid([]byte(text)) {
		raw := json.RawMessage(text)

		train, ok, err := abcdTrain(raw)
		if err != nil {
			return Batch{}, err
		}
		if ok {
			if items := parseABCD(train, fileName); len(items) > 0 {
				return Batch{Format: FormatABCD, Items: items}, nil
			}
		}

		if kind(raw) == '[' {
			var values []json.RawMessage
			if err := json.Unmarshal(raw, &values); err == nil {
				if items := genericItems(values, fileName); len(items) > 0 {
					return Batch{Format: FormatJSON, Items: items}, nil
				}
			}
		}
	}

	if strings.Contains(text, "\n") {
		if values, ok := jsonLines(text); ok {
			if items := genericItems(values, fileName); len(items) > 0 {
				return Batch{Format: FormatJSONL, Items: items}, nil
			}
		}
	}

	return Batch{Format: FormatText, Items: []Item{{Ref: fileName, Text: text}}}, nil
}

// abcdTrain returns the train array when raw is an object carrying one.
func abcdTrain(raw json.RawMessage) ([]json.RawMessage, bool, error) {
	if kind(raw) != '{' {
		return nil, false, nil
	}
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, false, nil
	}
	trainRaw, ok := doc["train"]
	if !ok {
		return nil, false, nil
	}
	if kind(trainRaw) != '[' {
		return nil, false, errors.New("abcd: train must be a list of conversations")
	}
	var train []json.RawMessage
	if err := json.Unmarshal(trainRaw, &train); err != nil {
		return nil, false, fmt.Errorf("abcd: decode train: %w", err)
	}
	return train, true, nil
}

func parseABCD(train []json.RawMessage, fileName string) []Item {
	prefix := fileName
	if prefix == "" {
		prefix = "abcd"
	}

	var items []Item
	for idx, raw := range train {
		var convo map[string]json.RawMessage
		if err := json.Unmarshal(raw, &convo); err != nil || convo == nil {
			continue
		}

		text := abcdText(convo)
		if strings.TrimSpace(text) == "" {
			continue
		}

		id := strconv.Itoa(idx)
		if v, ok := convo["convo_id"]; ok {
			id = scalarString(v)
		}

		item := Item{
			Ref:            fmt.Sprintf("%s_convo_%s", prefix, id),
			Text:           text,
			ConversationID: id,
		}
		if sc, ok := convo["scenario"]; ok {
			item.HasScenario = true
			item.Scenario = parseScenario(sc)
		}
		items = append(items, item)
	}
	return items
}

// abcdText prefers the original turns, which carry the real customer
// details, over the delexicalized turns and finally the raw scenario.
func abcdText(convo map[string]json.RawMessage) string {
	if raw, ok := convo["original"]; ok && kind(raw) == '[' {
		var texts []string
		for _, t := range rawList(raw) {
			pair := rawList(t)
			if len(pair) < 2 {
				continue
			}
			texts = append(texts, scalarString(pair[1]))
		}
		return strings.Join(texts, " ")
	}

	if raw, ok := convo["delexed"]; ok && kind(raw) == '[' {
		var texts []string
		for _, t := range rawList(raw) {
			var turn map[string]json.RawMessage
			if json.Unmarshal(t, &turn) != nil {
				continue
			}
			if v, ok := turn["text"]; ok {
				texts = append(texts, scalarString(v))
			}
		}
		return strings.Join(texts, " ")
	}

	if raw, ok := convo["scenario"]; ok {
		return scalarString(raw)
	}
	return ""
}

func parseScenario(raw json.RawMessage) *Scenario {
	if kind(raw) != '{' {
		return nil
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil
	}

	sc := &Scenario{}
	if v, ok := m["flow"]; ok {
		sc.HasFlow = true
		sc.Flow, _ = v.(string)
	}
	sc.Subflow, _ = m["subflow"].(string)
	sc.Personal, _ = m["personal"].(map[string]any)
	sc.Order, _ = m["order"].(map[string]any)
	return sc
}

func genericItems(values []json.RawMessage, fileName string) []Item {
	prefix := fileName
	if prefix == "" {
		prefix = "bulk"
	}

	var items []Item
	for idx, raw := range values {
		text := itemText(raw)
		if strings.TrimSpace(text) == "" {
			continue
		}
		items = append(items, Item{
			Ref:  fmt.Sprintf("%s_conversation_%d", prefix, idx+1),
			Text: text,
		})
	}
	return items
}

// itemText picks the first known text key of an object, falling back to
// every top-level string value in document order. Non-objects are used as is.
func itemText(raw json.RawMessage) string {
	if kind(raw) != '{' {
		return scalarString(raw)
	}

	members, err := objectMembers(raw)
	if err != nil {
		return ""
	}

	var text string
	for _, key := range textKeys {
		if v, ok := lookup(members, key); ok {
			text = fieldText(v)
			break
		}
	}
	if text != "" {
		return text
	}

	var parts []string
	for _, m := range members {
		if kind(m.value) != '"' {
			continue
		}
		var s string
		if json.Unmarshal(m.value, &s) == nil {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}

func fieldText(v json.RawMessage) string {
	if kind(v) != '[' {
		return scalarString(v)
	}
	elems := rawList(v)
	parts := make([]string, len(elems))
	for i, e := range elems {
		parts[i] = scalarString(e)
	}
	return strings.Join(parts, " ")
}

// jsonLines reports whether every non-blank line of text is a JSON value.
func jsonLines(text string) ([]json.RawMessage, bool) {
	var values []json.RawMessage
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if !json.Valid([]byte(line)) {
			return nil, false
		}
		values = append(values, json.RawMessage(line))
	}
	return values, len(values) > 0
}

type member struct {
	key   string
	value json.RawMessage
}

// objectMembers decodes a JSON object keeping its key order.
func objectMembers(raw json.RawMessage) ([]member, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, errors.New("not an object")
	}

	var members []member
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected object key %v", tok)
		}
		var v json.RawMessage
		if err := dec.Decode(&v); err != nil {
			return nil, err
		}
		members = append(members, member{key: key, value: v})
	}
	return members, nil
}

// lookup returns the last value for key, matching how duplicate keys decode.
func lookup(members []member, key string) (json.RawMessage, bool) {
	for i := len(members) - 1; i >= 0; i-- {
		if members[i].key == key {
			return members[i].value, true
		}
	}
	return nil, false
}

// scalarString renders a JSON value as text: strings unquoted, null empty,
// everything else as compact JSON.
func scalarString(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	var buf bytes.Buffer
	if json.Compact(&buf, raw) == nil {
		return buf.String()
	}
	return string(raw)
}

// rawList returns the elements of a JSON array, or nil for anything else.
func rawList(raw json.RawMessage) []json.RawMessage {
	if kind(raw) != '[' {
		return nil
	}
	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return nil
	}
	return elems
}

// kind returns the first significant byte of a JSON value.
func kind(raw json.RawMessage) byte {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return 0
	}
	return raw[0]
}
