package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIDFor_IsStablePerOrder(t *testing.T) {
	assert.Equal(t, IDFor("o-1"), IDFor("o-1"))
	assert.NotEqual(t, IDFor("o-1"), IDFor("o-2"))
	assert.Equal(t, 5, int(IDFor("o-1").Version()))
}
