package contentvalidator

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gopublicist/publicist/internal/domain"
)

type fakeRuleSource struct {
	rules []domain.BlacklistRule
}

func (f fakeRuleSource) EnabledBlacklistRules(ctx context.Context) ([]domain.BlacklistRule, error) {
	return f.rules, nil
}

func newPost(body string, media int) *domain.Post {
	p := &domain.Post{BodyHTML: body}
	for i := 0; i < media; i++ {
		p.Media = append(p.Media, domain.Media{Type: domain.MediaPhoto, URL: "https://example.com/x.jpg"})
	}
	return p
}

func TestValidate_BodyLengthBoundary(t *testing.T) {
	v := New(fakeRuleSource{})

	ok, reason, err := v.Validate(context.Background(), newPost(strings.Repeat("a", MaxBodyLen), 0))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Nil(t, reason)

	ok, reason, err = v.Validate(context.Background(), newPost(strings.Repeat("a", MaxBodyLen+1), 0))
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NotNil(t, reason)
}

func TestValidate_MediaCountBoundary(t *testing.T) {
	v := New(fakeRuleSource{})

	ok, _, err := v.Validate(context.Background(), newPost("hi", MaxMedia))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, _, err = v.Validate(context.Background(), newPost("hi", MaxMedia+1))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestValidate_LinkScheme(t *testing.T) {
	v := New(fakeRuleSource{})

	ok, _, err := v.Validate(context.Background(), newPost(`<a href="https://example.com">link</a>`, 0))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, reason, err := v.Validate(context.Background(), newPost(`<a href="ftp://example.com">link</a>`, 0))
	require.NoError(t, err)
	assert.False(t, ok)
	require.NotNil(t, reason)
}

func TestValidate_BlacklistWord(t *testing.T) {
	v := New(fakeRuleSource{rules: []domain.BlacklistRule{
		{Type: domain.BlacklistRuleWord, Pattern: "spam", IsEnabled: true},
	}})

	ok, reason, err := v.Validate(context.Background(), newPost("this is SPAM content", 0))
	require.NoError(t, err)
	assert.False(t, ok)
	require.NotNil(t, reason)
}

func TestValidate_BlacklistDisabledRuleIgnored(t *testing.T) {
	v := New(fakeRuleSource{rules: []domain.BlacklistRule{
		{Type: domain.BlacklistRuleWord, Pattern: "spam", IsEnabled: false},
	}})

	ok, _, err := v.Validate(context.Background(), newPost("this is spam content", 0))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestValidate_BlacklistDomain(t *testing.T) {
	v := New(fakeRuleSource{rules: []domain.BlacklistRule{
		{Type: domain.BlacklistRuleDomain, Pattern: "evil.com", IsEnabled: true},
	}})

	ok, _, err := v.Validate(context.Background(), newPost(`<a href="https://sub.evil.com/x">link</a>`, 0))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestValidate_BlacklistRegex(t *testing.T) {
	v := New(fakeRuleSource{rules: []domain.BlacklistRule{
		{Type: domain.BlacklistRuleRegex, Pattern: `\bfree money\b`, IsEnabled: true},
	}})

	ok, _, err := v.Validate(context.Background(), newPost("get your FREE MONEY now", 0))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestExtractLinks_IgnoresNonAnchorTags(t *testing.T) {
	links, err := ExtractLinks(`<img src="https://example.com/a.png"><a href="https://example.com">x</a>`)
	require.NoError(t, err)
	require.Len(t, links, 1)
	assert.Equal(t, "https", links[0].Scheme)
}
