package utils

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNilIfBlank(t *testing.T) {
	assert.Nil(t, NilIfBlank(""))
	assert.Nil(t, NilIfBlank("  \n\t"))
	got := NilIfBlank("ctx")
	if assert.NotNil(t, got) {
		assert.Equal(t, "ctx", *got)
	}
}

func TestDeref(t *testing.T) {
	assert.Equal(t, "", Deref[string](nil))
	assert.Equal(t, 7, Deref(ToPtr(7)))
}

func TestRequestIDFromContext(t *testing.T) {
	assert.Equal(t, "", RequestIDFromContext(context.Background()))
	ctx := context.WithValue(context.Background(), RequestIDKey, "abc")
	assert.Equal(t, "abc", RequestIDFromContext(ctx))
}
