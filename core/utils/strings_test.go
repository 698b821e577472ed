package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNullIfEmpty(t *testing.T) {
	assert.Nil(t, NullIfEmpty("   "))
	if v := NullIfEmpty(" Calle 1 "); assert.NotNil(t, v) {
		assert.Equal(t, "Calle 1", *v)
	}
}

func TestDeref(t *testing.T) {
	s := "x"
	assert.Equal(t, "x", Deref(&s))
	assert.Equal(t, "", Deref(nil))
}
