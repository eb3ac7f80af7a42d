package service

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/dustin/go-humanize"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const (
	excerptLen     = 180
	unknownAuthor  = "Unknown"
	unknownInitial = "UN"
)

// breakingTags separate words when markup is flattened.
var breakingTags = map[atom.Atom]bool{
	atom.P: true, atom.Br: true, atom.Div: true, atom.Li: true, atom.Ul: true, atom.Ol: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
	atom.Blockquote: true, atom.Pre: true, atom.Tr: true, atom.Td: true, atom.Hr: true,
}

// PlainText flattens rich-text markup to whitespace-normalised text with entities decoded.
// Script and style bodies are dropped.
func PlainText(markup string) string {
	z := html.NewTokenizer(strings.NewReader(markup))
	var b strings.Builder
	skip := 0

	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			return strings.Join(strings.Fields(b.String()), " ")
		case html.TextToken:
			if skip == 0 {
				b.Write(z.Text())
			}
		case html.StartTagToken, html.EndTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			a := atom.Lookup(name)
			if a == atom.Script || a == atom.Style {
				switch tt {
				case html.StartTagToken:
					skip++
				case html.EndTagToken:
					if skip > 0 {
						skip--
					}
				}
				continue
			}
			if breakingTags[a] {
				b.WriteByte(' ')
			}
		}
	}
}

// Excerpt truncates text to at most n characters.
func Excerpt(text string, n int) string {
	if utf8.RuneCountInString(text) <= n {
		return text
	}
	runes := []rune(text)
	return strings.TrimRightFunc(string(runes[:n]), unicode.IsSpace)
}

// Initials upper-cases the first letter of each space-separated word of name.
func Initials(name string) string {
	var b strings.Builder
	for _, word := range strings.Fields(name) {
		r, _ := utf8.DecodeRuneInString(word)
		b.WriteRune(unicode.ToUpper(r))
	}
	if b.Len() == 0 {
		return unknownInitial
	}
	return b.String()
}

// RelativeTime renders t relative to now, e.g. "3 hours ago".
func RelativeTime(t, now time.Time) string {
	if now.Sub(t) < time.Second && t.Sub(now) < time.Second {
		return "now"
	}
	return humanize.RelTime(t, now, "ago", "from now")
}

func displayName(username string) string {
	if strings.TrimSpace(username) == "" {
		return unknownAuthor
	}
	return username
}
