package ingestion

import (
	"strings"
	"testing"

	"github.com/jonathan/page-digest/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitize_RejectsForbiddenTerms(t *testing.T) {
	tests := []struct {
		name string
		page types.PageContent
	}{
		{"content lower case", types.PageContent{Title: "ok", Content: "some porn here"}},
		{"content mixed case", types.PageContent{Title: "ok", Content: "some PoRn here"}},
		{"title", types.PageContent{Title: "PORN site", Content: "clean"}},
		{"inside a word", types.PageContent{Title: "ok", Content: "pornography"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Sanitize(tt.page)
			require.Error(t, err)

			var rejected *ContentRejectedError
			require.ErrorAs(t, err, &rejected)
			assert.Equal(t, []string{"porn"}, rejected.Terms)
		})
	}
}

func TestSanitize_AcceptsCleanContent(t *testing.T) {
	page := types.PageContent{
		Title:   "A clean title",
		URL:     "https://example.com",
		Content: "Some   clean\n\ncontent",
	}

	got, err := Sanitize(page)
	require.NoError(t, err)

	assert.Equal(t, "A clean title", got.Title)
	assert.Equal(t, "https://example.com", got.URL)
	assert.Equal(t, "Some clean content", got.Content)
}

func TestSanitize_CapsContent(t *testing.T) {
	page := types.PageContent{Title: "t", Content: strings.Repeat("abc ", 10000)}

	got, err := Sanitize(page)
	require.NoError(t, err)

	assert.Equal(t, MaxContentLength, RuneLen(got.Content))
	assert.True(t, strings.HasSuffix(got.Content, TruncationMarker))
}

func TestSanitize_IdempotentWithExtractor(t *testing.T) {
	html := "<html><body><article><p>" + strings.Repeat("word ", 5000) + "</p></article></body></html>"
	page, err := ExtractFromHTML(html, "https://example.com")
	require.NoError(t, err)

	got, err := Sanitize(page)
	require.NoError(t, err)
	assert.Equal(t, page.Content, got.Content)

	again, err := Sanitize(got.PageContent)
	require.NoError(t, err)
	assert.Equal(t, got, again)
}

func TestSanitizer_CustomTerms(t *testing.T) {
	s := NewSanitizer([]string{" Casino ", "", "lottery"})

	_, err := s.Sanitize(types.PageContent{Title: "Online CASINO and LOTTERY", Content: "x"})
	var rejected *ContentRejectedError
	require.ErrorAs(t, err, &rejected)
	assert.Equal(t, []string{"casino", "lottery"}, rejected.Terms)
	assert.Contains(t, err.Error(), "casino, lottery")

	_, err = s.Sanitize(types.PageContent{Title: "porn is not on this list", Content: "x"})
	assert.NoError(t, err)
}

func TestNewSanitizer_DefaultsWhenEmpty(t *testing.T) {
	assert.Equal(t, DefaultForbiddenTerms, NewSanitizer(nil).ForbiddenTerms)
	assert.Equal(t, DefaultForbiddenTerms, NewSanitizer([]string{}).ForbiddenTerms)
}
