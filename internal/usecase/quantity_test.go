package usecase

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveQuantity(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int
	}{
		{"digit", "quiero 3 camisa", 3},
		{"word", "quiero cinco camisa", 5},
		{"article", "dame la camisa", 1},
		{"unit fillers", "quiero 3 pares de camisa", 3},
		{"x prefix", "dame x12 camisa", 12},
		{"x suffix", "dame 4x camisa", 4},
		{"punctuation", "quiero: 7, camisa", 7},
		{"no quantity", "quiero camisa", 1},
		{"other word stops scan", "2 rojas camisa", 1},
		{"zero rejected", "0 camisa", 1},
		{"too large", "10000 camisa", 1},
		{"start of text", "camisa", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start := strings.Index(tt.text, "camisa")
			assert.Equal(t, tt.want, ResolveQuantity(tt.text, len([]rune(tt.text[:start]))))
		})
	}
}

func TestResolveQuantityDropsWordCutByWindow(t *testing.T) {
	text := "x99" + strings.Repeat(" ", 28) + "camisa"
	start := len(text) - len("camisa")
	assert.Equal(t, 1, ResolveQuantity(text, start))

	inside := "99" + strings.Repeat(" ", 28) + "camisa"
	assert.Equal(t, 99, ResolveQuantity(inside, len(inside)-len("camisa")))
}

func TestResolveQuantityOutOfRangeStart(t *testing.T) {
	assert.Equal(t, 2, ResolveQuantity("dame 2", 100))
}
