package replicate

import (
	"reflect"
	"testing"
)

func TestExtractURLs(t *testing.T) {
	cases := []struct {
		name   string
		output any
		want   []string
	}{
		{
			name:   "bare string",
			output: "https://cdn.example.com/a.png",
			want:   []string{"https://cdn.example.com/a.png"},
		},
		{
			name:   "list of strings",
			output: []any{"https://cdn.example.com/a.png", "https://cdn.example.com/b.png"},
			want:   []string{"https://cdn.example.com/a.png", "https://cdn.example.com/b.png"},
		},
		{
			name:   "list of url objects",
			output: []any{map[string]any{"url": "https://cdn.example.com/a.mp4"}},
			want:   []string{"https://cdn.example.com/a.mp4"},
		},
		{
			name:   "single url object",
			output: map[string]any{"url": "https://cdn.example.com/a.mp3"},
			want:   []string{"https://cdn.example.com/a.mp3"},
		},
		{
			name:   "output wrapper",
			output: map[string]any{"output": []any{"https://cdn.example.com/a.png"}},
			want:   []string{"https://cdn.example.com/a.png"},
		},
		{
			name:   "junk filtered",
			output: []any{"", "  ", "[object Object]", "undefined", "null", "ftp://x/y.png", "https://cdn.example.com/ok.png"},
			want:   []string{"https://cdn.example.com/ok.png"},
		},
		{
			name:   "nil output",
			output: nil,
			want:   nil,
		},
		{
			name:   "object without url",
			output: map[string]any{"status": "done"},
			want:   nil,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ExtractURLs(tc.output)
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("ExtractURLs(%v) = %v, want %v", tc.output, got, tc.want)
			}
		})
	}
}
