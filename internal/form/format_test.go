package form

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatPrice(t *testing.T) {
	tests := map[int]string{
		0:       "¥0",
		500:     "¥500",
		4000:    "¥4,000",
		123456:  "¥123,456",
		1000000: "¥1,000,000",
		-1500:   "-¥1,500",
	}
	for in, want := range tests {
		assert.Equal(t, want, FormatPrice(in))
	}
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "90分", FormatDuration(90))
}
