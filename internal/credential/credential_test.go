package credential

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStore(t *testing.T) {
	s := NewStore()
	_, ok := s.Token()
	assert.False(t, ok)

	s.Set("  ghp_abc \n")
	tok, ok := s.Token()
	assert.True(t, ok)
	assert.Equal(t, "ghp_abc", tok)

	s.Set("   ")
	_, ok = s.Token()
	assert.False(t, ok, "blank tokens count as absent")

	s.Set("x")
	s.Clear()
	_, ok = s.Token()
	assert.False(t, ok)
}

func TestFromEnv(t *testing.T) {
	t.Setenv("REPO_DOC_TEST_TOKEN", "ghp_env")
	tok, ok := FromEnv("REPO_DOC_TEST_TOKEN").Token()
	assert.True(t, ok)
	assert.Equal(t, "ghp_env", tok)

	_, ok = FromEnv("").Token()
	assert.False(t, ok)

	_, ok = FromEnv("REPO_DOC_TEST_TOKEN_UNSET").Token()
	assert.False(t, ok)
}
