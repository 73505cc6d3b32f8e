package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDedupeURLs(t *testing.T) {
	got := DedupeURLs([]string{"http://x/a.png", "http://x/a.png", " ", "http://x/b.png", " http://x/a.png "})
	assert.Equal(t, []string{"http://x/a.png", "http://x/b.png"}, got)

	assert.Empty(t, DedupeURLs(nil))
}

func TestFilenameFromURL(t *testing.T) {
	cases := []struct{ in, want string }{
		{"http://x/resolvet/tickets/a.png", "a.png"},
		{"http://x/files/Screen%20Shot.png", "Screen Shot.png"},
		{"http://x/files/report.png?sig=abc", "report.png"},
		{"http://x/", "attachment"},
		{"", "attachment"},
		{"not a url/just-a-name.jpg", "just-a-name.jpg"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, FilenameFromURL(tc.in), tc.in)
	}
}

func TestDedupeIDs(t *testing.T) {
	assert.Equal(t, []int64{3, 1, 2}, dedupeIDs([]int64{3, 1, 3, 2, 1}))
}
