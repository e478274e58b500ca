// Package parser separates reasoning blocks from the visible text of a completion.
package parser

import "strings"

const (
	openThinking  = "<thinking>"
	closeThinking = "</thinking>"
)

// SplitThinking walks a completed response and separates text inside
// <thinking>...</thinking> blocks from the rest. Any other tag, or a stray
// '<' / '>', is kept as regular text. An unclosed <thinking> block swallows
// the remainder of the input.
func SplitThinking(content string) (thinking, message string) {
	var (
		thinkBuf   strings.Builder
		msgBuf     strings.Builder
		tagBuf     strings.Builder
		inThinking bool
		inTag      bool
	)

	emit := func(text string) {
		if inThinking {
			thinkBuf.WriteString(text)
		} else {
			msgBuf.WriteString(text)
		}
	}

	for _, ch := range content {
		switch {
		case ch == '<':
			// A previous '<' that never closed was not a tag.
			if inTag {
				emit(tagBuf.String())
			}
			inTag = true
			tagBuf.Reset()
			tagBuf.WriteRune(ch)
		case ch == '>' && inTag:
			tagBuf.WriteRune(ch)
			tag := tagBuf.String()
			tagBuf.Reset()
			inTag = false

			switch tag {
			case openThinking:
				inThinking = true
			case closeThinking:
				inThinking = false
			default:
				emit(tag)
			}
		case inTag:
			tagBuf.WriteRune(ch)
		default:
			emit(string(ch))
		}
	}

	if inTag {
		emit(tagBuf.String())
	}

	return thinkBuf.String(), msgBuf.String()
}

// StripThinking returns content with every thinking block removed and
// surrounding whitespace trimmed.
func StripThinking(content string) string {
	if !strings.Contains(content, openThinking) {
		return content
	}
	_, message := SplitThinking(content)
	return strings.TrimSpace(message)
}
