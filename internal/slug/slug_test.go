package slug

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMake(t *testing.T) {
	tests := map[string]string{
		"Chaise Élégante (rouge)": "chaise-elegante-rouge",
		"  Leading and trailing ": "leading-and-trailing",
		"T-Shirt -- XL":           "t-shirt-xl",
		"Crème brûlée 2":          "creme-brulee-2",
		"":                        "",
		"!!!":                     "",
	}

	for in, want := range tests {
		assert.Equal(t, want, Make(in), "input %q", in)
	}
}
