package cherr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrap_NilCause(t *testing.T) {
	assert.Nil(t, Wrap(nil, KindCache, SeverityLow, "should vanish"))
}

func TestUnwrapChain(t *testing.T) {
	cause := errors.New("connection refused")
	err := External(cause, "LLM completion failed")

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "LLM completion failed")
	assert.Contains(t, err.Error(), "connection refused")
}

func TestIs_MatchesOnKind(t *testing.T) {
	err := fmt.Errorf("outer: %w", Input("not a repository: %s", "/tmp/x"))

	assert.True(t, errors.Is(err, &Error{Kind: KindInput}))
	assert.False(t, errors.Is(err, &Error{Kind: KindCache}))
}

func TestIsFatal(t *testing.T) {
	assert.True(t, IsFatal(Config("bad threshold")))
	assert.True(t, IsFatal(Internal("unexpected state")))
	assert.False(t, IsFatal(Cachef(errors.New("eof"), "read entry")))
	assert.False(t, IsFatal(errors.New("plain error")))
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindExternal, KindOf(External(errors.New("x"), "y")))
	assert.Equal(t, KindInternal, KindOf(errors.New("uncategorized")))
}
