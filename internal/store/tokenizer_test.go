package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenizeCode(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "camelCase split",
			input: "parseConfigFile",
			want:  []string{"parse", "config", "file"},
		},
		{
			name:  "snake_case split",
			input: "chunk_id content_hash",
			want:  []string{"chunk", "id", "content", "hash"},
		},
		{
			name:  "acronym boundary",
			input: "parseHTTPRequest",
			want:  []string{"parse", "http", "request"},
		},
		{
			name:  "stop words dropped",
			input: "func handleLogin(ctx context.Context) error",
			want:  []string{"handle", "login", "context", "context", "error"},
		},
		{
			name:  "short tokens dropped",
			input: "x := a + fooBar",
			want:  []string{"foo", "bar"},
		},
		{
			name:  "punctuation separates",
			input: "store.Save(rec); idx.Search(q)",
			want:  []string{"store", "save", "rec", "idx", "search"},
		},
		{
			name:  "empty input",
			input: "   ",
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TokenizeCode(tt.input))
		})
	}
}
