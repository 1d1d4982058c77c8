package wellness

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitize(t *testing.T) {
	cases := map[string]struct{ in, want string }{
		"sparkles":        {"✨ You are doing great today, truly and wonderfully so! ✨", "You are doing great today, truly and wonderfully so"},
		"wrapping quotes": {`"Your body is working hard, rest will help."`, "Your body is working hard, rest will help"},
		"single quotes":   {"'This lightness is real'", "This lightness is real"},
		"curly":           {"“You’re in your flow, this feeling is yours”", "You're in your flow, this feeling is yours"},
		"whitespace":      {"  Rest \n\n  is   \t allowed  ", "Rest is allowed"},
		"zwj sequence":    {"Healing takes time 👩‍❤️‍👨 and that is okay", "Healing takes time and that is okay"},
		"keycap":          {"Day 1️⃣ of feeling better", "Day 1 of feeling better"},
		"accents":         {"Café mornings feel softer now 🌸", "Café mornings feel softer now"},
		"truncate": {
			"one two three four five six seven eight nine ten eleven twelve thirteen fourteen.",
			"one two three four five six seven eight nine ten eleven twelve",
		},
		"truncate then trim": {
			"one two three four five six seven eight nine ten eleven twelve, thirteen",
			"one two three four five six seven eight nine ten eleven twelve",
		},
		"empty":       {"", ""},
		"only quotes": {`""`, ""},
		"only emoji":  {"✨🌸💖", ""},
		"punctuation": {"... !!! ---", ""},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, Sanitize(tc.in))
		})
	}
}

func TestSanitize_NeverExceedsMaxWords(t *testing.T) {
	inputs := []string{
		strings.Repeat("word ", 500),
		strings.Repeat("✨ a ", 40),
		strings.Repeat("x", 10000),
		strings.Repeat("- ", 30),
		"\t\n",
	}
	for _, in := range inputs {
		out := Sanitize(in)
		assert.LessOrEqual(t, WordCount(out), MaxWords)
		assert.Equal(t, out, Sanitize(out), "sanitize must be idempotent")
	}
}
