package service

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPlainText(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "hello world", "hello world"},
		{"paragraphs", "<p>first</p><p>second</p>", "first second"},
		{"inline markup", "use <code>useEffect</code> &amp; <b>useState</b>", "use useEffect & useState"},
		{"line breaks", "one<br>two<br/>three", "one two three"},
		{"script dropped", "<p>safe</p><script>alert('x')</script>", "safe"},
		{"empty", "", ""},
		{"whitespace only markup", "<p> </p><p><br></p>", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PlainText(tt.in))
		})
	}
}

func TestExcerpt(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "short", Excerpt("short", 180))

	long := strings.Repeat("é", 200)
	got := Excerpt(long, 180)
	assert.Equal(t, 180, len([]rune(got)))

	assert.Equal(t, "abc", Excerpt("abc def", 4))
}

func TestInitials(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "AL", Initials("ada lovelace"))
	assert.Equal(t, "D", Initials("dev_42"))
	assert.Equal(t, "UN", Initials(""))
	assert.Equal(t, "UN", Initials("   "))
}

func TestRelativeTime(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, "now", RelativeTime(now, now))
	assert.Equal(t, "3 hours ago", RelativeTime(now.Add(-3*time.Hour), now))
	assert.Equal(t, "2 days ago", RelativeTime(now.Add(-48*time.Hour), now))
}
