// Package frontmatter separates a content file's metadata header from its body
// and parses the header into a key/value map.
package frontmatter

import (
	"bytes"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// ErrMissingClosingDelimiter indicates the document started with a YAML
// frontmatter delimiter but did not contain a closing delimiter.
var ErrMissingClosingDelimiter = errors.New("yaml frontmatter start delimiter found but closing delimiter is missing")

// ErrNotMapping indicates the header parsed as YAML but is not a set of key: value entries.
var ErrNotMapping = errors.New("header is not a key: value mapping")

// SplitHeader separates the header block from the body.
//
// The header is every leading line up to, but not including, the first blank
// (empty or whitespace-only) line; the body is everything after that line. A
// document without a blank line is all header. Documents opening with a `---`
// delimiter are split on the closing delimiter instead; without a closing
// delimiter the `---` line is a YAML document marker and the blank-line rule
// applies.
func SplitHeader(content []byte) (header []byte, body []byte, err error) {
	fm, rest, had, err := Split(content)
	switch {
	case errors.Is(err, ErrMissingClosingDelimiter):
	case err != nil:
		return nil, nil, err
	case had:
		return fm, rest, nil
	}

	offset := 0
	for offset < len(content) {
		end := bytes.IndexByte(content[offset:], '\n')
		lineEnd := len(content)
		next := len(content)
		if end >= 0 {
			lineEnd = offset + end
			next = lineEnd + 1
		}
		if len(bytes.TrimSpace(content[offset:lineEnd])) == 0 {
			return content[:offset], content[next:], nil
		}
		offset = next
	}
	return content, nil, nil
}

// Split separates YAML frontmatter (`---` delimited) from the body.
//
// If the document does not start with a YAML frontmatter delimiter, had is false
// and body is the full input.
func Split(content []byte) (frontmatter []byte, body []byte, had bool, err error) {
	nl := newline(content)
	open := []byte("---" + nl)
	if !bytes.HasPrefix(content, open) {
		return nil, content, false, nil
	}

	frontmatterStart := len(open)
	closeLine := []byte("---" + nl)
	if bytes.HasPrefix(content[frontmatterStart:], closeLine) {
		bodyStart := frontmatterStart + len(closeLine)
		return []byte{}, content[bodyStart:], true, nil
	}

	closeSeq := []byte(nl + "---" + nl)
	idx := bytes.Index(content[frontmatterStart:], closeSeq)
	if idx < 0 {
		return nil, nil, false, ErrMissingClosingDelimiter
	}

	frontmatterEnd := frontmatterStart + idx + len(nl)
	bodyStart := frontmatterStart + idx + len(closeSeq)
	return content[frontmatterStart:frontmatterEnd], content[bodyStart:], true, nil
}

// ParseHeader parses header lines of the form `key: value` into a map.
//
// Values keep their YAML scalar types (bool, int, float, string); unquoted
// timestamps decode to time.Time and quoted ones stay strings. Duplicate keys
// are allowed and the last occurrence wins.
// An empty header yields an empty map.
func ParseHeader(header []byte) (map[string]any, error) {
	fields := map[string]any{}
	if len(bytes.TrimSpace(header)) == 0 {
		return fields, nil
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(header, &doc); err != nil {
		return nil, err
	}
	root := &doc
	if root.Kind == 0 {
		return fields, nil
	}
	if root.Kind == yaml.DocumentNode {
		if len(root.Content) == 0 {
			return fields, nil
		}
		root = root.Content[0]
	}
	if root.Kind == yaml.ScalarNode && root.Tag == "!!null" {
		return fields, nil
	}
	if root.Kind != yaml.MappingNode {
		return nil, ErrNotMapping
	}

	for i := 0; i+1 < len(root.Content); i += 2 {
		keyNode, valueNode := root.Content[i], root.Content[i+1]
		if keyNode.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("line %d: %w", keyNode.Line, ErrNotMapping)
		}
		var value any
		if err := valueNode.Decode(&value); err != nil {
			return nil, fmt.Errorf("line %d: key %q: %w", valueNode.Line, keyNode.Value, err)
		}
		fields[keyNode.Value] = value
	}
	return fields, nil
}

// newline reports the line ending used by the first line of content.
func newline(content []byte) string {
	i := bytes.IndexByte(content, '\n')
	if i > 0 && content[i-1] == '\r' {
		return "\r\n"
	}
	return "\n"
}
