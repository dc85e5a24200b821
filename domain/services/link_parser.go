package services

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// EntityRef is the minimal view of an entity a parser needs to resolve
// titles against
type EntityRef struct {
	ID    string
	Title string
}

// ParsedLink is one recognized reference or mention inside a text.
// TargetID is empty for a dangling reference (a title that resolves to
// no known entity); dangling links are preserved, never connected.
type ParsedLink struct {
	RawText     string
	TargetTitle string
	TargetID    string
	StartIndex  int
	EndIndex    int
}

// explicitLinkPattern matches the double-bracket syntax: [[Some Title]]
var explicitLinkPattern = regexp.MustCompile(`\[\[([^\[\]]+)\]\]`)

// minMentionTitleLength filters out titles too short to scan for;
// anything shorter produces far more noise than signal
const minMentionTitleLength = 3

// LinkParser extracts explicit reference links and natural-language
// mentions of other entities' titles from text content. Both operations
// are pure: identical input always yields identical spans.
type LinkParser struct{}

// NewLinkParser creates a new link parser
func NewLinkParser() *LinkParser {
	return &LinkParser{}
}

// ParseExplicitLinks recognizes [[Title]] links and resolves each title
// via case-insensitive exact match against the candidate titles
func (p *LinkParser) ParseExplicitLinks(content string, candidates []EntityRef) []ParsedLink {
	matches := explicitLinkPattern.FindAllStringSubmatchIndex(content, -1)
	if len(matches) == 0 {
		return nil
	}

	byTitle := make(map[string]string, len(candidates))
	for _, c := range candidates {
		byTitle[strings.ToLower(c.Title)] = c.ID
	}

	links := make([]ParsedLink, 0, len(matches))
	for _, m := range matches {
		title := strings.TrimSpace(content[m[2]:m[3]])
		links = append(links, ParsedLink{
			RawText:     content[m[0]:m[1]],
			TargetTitle: title,
			TargetID:    byTitle[strings.ToLower(title)],
			StartIndex:  m[0],
			EndIndex:    m[1],
		})
	}

	return links
}

// FindMentions scans the content for whole-word, case-insensitive
// occurrences of each candidate's title. A word boundary is the start or
// end of the string, or adjacent whitespace. Every occurrence is
// returned, not just the first.
//
// The scan walks the original content rune by rune and compares windows
// with strings.EqualFold. Lowercasing a copy up front would desynchronize
// byte offsets for runes whose case mapping changes length, so offsets
// here are always valid indices into content.
func (p *LinkParser) FindMentions(content string, candidates []EntityRef) []ParsedLink {
	if content == "" {
		return nil
	}

	var mentions []ParsedLink

	for _, c := range candidates {
		title := strings.TrimSpace(c.Title)
		if len(title) < minMentionTitleLength {
			continue
		}
		titleRunes := utf8.RuneCountInString(title)

		for start := 0; start < len(content); {
			_, size := utf8.DecodeRuneInString(content[start:])

			end, ok := runeWindow(content, start, titleRunes)
			if ok && strings.EqualFold(content[start:end], title) && wholeWord(content, start, end) {
				mentions = append(mentions, ParsedLink{
					RawText:     content[start:end],
					TargetTitle: c.Title,
					TargetID:    c.ID,
					StartIndex:  start,
					EndIndex:    end,
				})
			}

			start += size
		}
	}

	return mentions
}

// runeWindow returns the byte offset just past count runes from start,
// or false when fewer than count runes remain
func runeWindow(s string, start, count int) (int, bool) {
	end := start
	for i := 0; i < count; i++ {
		if end >= len(s) {
			return 0, false
		}
		_, size := utf8.DecodeRuneInString(s[end:])
		end += size
	}
	return end, true
}

// wholeWord checks the whitespace-or-edge boundary rule on both sides of
// the span [start, end)
func wholeWord(s string, start, end int) bool {
	if start > 0 {
		r, _ := utf8.DecodeLastRuneInString(s[:start])
		if !unicode.IsSpace(r) {
			return false
		}
	}
	if end < len(s) {
		r, _ := utf8.DecodeRuneInString(s[end:])
		if !unicode.IsSpace(r) {
			return false
		}
	}
	return true
}
