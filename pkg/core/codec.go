package core

import (
	"bytes"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Delimiter opens and closes the frontmatter block.
const Delimiter = "---"

// Recognized frontmatter fields. Everything else lands in NoteMetadata.Extra.
const (
	FieldTags     = "tags"
	FieldAliases  = "aliases"
	FieldCreated  = "created"
	FieldModified = "modified"
	FieldTitle    = "title"
)

// Decode splits raw note text into its frontmatter fields and its body.
//
// The block must start on the very first line with "---" and ends at the
// next line that is exactly "---". Text without an opening line, or with an
// opening line that is never closed, is returned whole as body.
func Decode(raw string) (map[string]any, string, error) {
	first, rest, ok := cutLine(raw)
	if !ok || first != Delimiter {
		return nil, raw, nil
	}

	var block strings.Builder
	for {
		line, remaining, found := cutLine(rest)
		if line == Delimiter {
			var fields map[string]any
			if err := yaml.Unmarshal([]byte(block.String()), &fields); err != nil {
				return nil, "", fmt.Errorf("%w: invalid frontmatter: %v", ErrDecode, err)
			}
			return normalizeFields(fields), remaining, nil
		}
		if !found {
			return nil, raw, nil
		}
		block.WriteString(line)
		block.WriteString("\n")
		rest = remaining
	}
}

// Encode joins body and fields back into note text.
// Decode(Encode(body, fields)) returns fields and body unchanged for string
// and string-list values.
func Encode(body string, fields map[string]any) (string, error) {
	if len(fields) == 0 && !startsWithDelimiter(body) {
		return body, nil
	}

	var buf bytes.Buffer
	buf.WriteString(Delimiter + "\n")
	if len(fields) > 0 {
		encoder := yaml.NewEncoder(&buf)
		encoder.SetIndent(2)
		if err := encoder.Encode(fields); err != nil {
			return "", fmt.Errorf("failed to encode frontmatter: %w", err)
		}
		if err := encoder.Close(); err != nil {
			return "", fmt.Errorf("failed to encode frontmatter: %w", err)
		}
	}
	buf.WriteString(Delimiter + "\n")
	buf.WriteString(body)
	return buf.String(), nil
}

// MetadataFromFields splits decoded fields into the recognized metadata
// attributes and the remaining extras.
func MetadataFromFields(fields map[string]any) NoteMetadata {
	meta := NoteMetadata{}
	for key, value := range fields {
		switch key {
		case FieldTags:
			meta.Tags = stringList(value)
		case FieldAliases:
			meta.Aliases = stringList(value)
		case FieldCreated:
			meta.Created = scalar(value)
		case FieldModified:
			meta.Modified = scalar(value)
		case FieldTitle:
			meta.Title = scalar(value)
		default:
			if meta.Extra == nil {
				meta.Extra = make(map[string]any)
			}
			meta.Extra[key] = value
		}
	}
	return meta
}

// Fields converts the metadata back into a frontmatter map, omitting empty
// attributes.
func (m NoteMetadata) Fields() map[string]any {
	fields := make(map[string]any, len(m.Extra)+5)
	for k, v := range m.Extra {
		fields[k] = v
	}
	if len(m.Tags) > 0 {
		fields[FieldTags] = append([]string(nil), m.Tags...)
	}
	if len(m.Aliases) > 0 {
		fields[FieldAliases] = append([]string(nil), m.Aliases...)
	}
	if m.Created != "" {
		fields[FieldCreated] = m.Created
	}
	if m.Modified != "" {
		fields[FieldModified] = m.Modified
	}
	if m.Title != "" {
		fields[FieldTitle] = m.Title
	}
	return fields
}

// cutLine returns the first line of s (without its terminator) and the text
// after it. found is false when s has no newline.
func cutLine(s string) (line, rest string, found bool) {
	line, rest, found = strings.Cut(s, "\n")
	return strings.TrimSuffix(line, "\r"), rest, found
}

func startsWithDelimiter(s string) bool {
	first, _, ok := cutLine(s)
	return ok && first == Delimiter
}

// normalizeFields turns YAML lists made only of strings into []string so
// that decoded fields compare equal to what was encoded.
func normalizeFields(fields map[string]any) map[string]any {
	for k, v := range fields {
		list, ok := v.([]any)
		if !ok {
			continue
		}
		strs := make([]string, 0, len(list))
		for _, item := range list {
			s, ok := item.(string)
			if !ok {
				strs = nil
				break
			}
			strs = append(strs, s)
		}
		if strs != nil {
			fields[k] = strs
		}
	}
	return fields
}

func stringList(v any) []string {
	switch t := v.(type) {
	case nil:
		return nil
	case []string:
		return append([]string(nil), t...)
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			if item == nil {
				continue
			}
			out = append(out, fmt.Sprint(item))
		}
		return out
	case string:
		return []string{t}
	default:
		return []string{fmt.Sprint(t)}
	}
}

func scalar(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
