package cli

import (
	"bytes"
	"encoding/json"
	"testing"
)

type buildInfo struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
}

func (b buildInfo) Lines() []string {
	return []string{"itemsvc " + b.Version, "Git Commit: " + b.Commit}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    OutputFormat
		wantErr bool
	}{
		{"", FormatText, false},
		{"text", FormatText, false},
		{"json", FormatJSON, false},
		{"csv", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFormat() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseFormat() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWrite(t *testing.T) {
	info := buildInfo{Version: "1.0.0", Commit: "abc123"}

	t.Run("text lines", func(t *testing.T) {
		var buf bytes.Buffer
		if err := Write(&buf, FormatText, info); err != nil {
			t.Fatal(err)
		}
		want := "itemsvc 1.0.0\nGit Commit: abc123\n"
		if buf.String() != want {
			t.Errorf("got %q, want %q", buf.String(), want)
		}
	})

	t.Run("text fallback", func(t *testing.T) {
		var buf bytes.Buffer
		if err := Write(&buf, FormatText, "plain"); err != nil {
			t.Fatal(err)
		}
		if buf.String() != "plain\n" {
			t.Errorf("got %q", buf.String())
		}
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		if err := Write(&buf, FormatJSON, info); err != nil {
			t.Fatal(err)
		}
		var got buildInfo
		if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
			t.Fatalf("invalid JSON %q: %v", buf.String(), err)
		}
		if got != info {
			t.Errorf("got %+v, want %+v", got, info)
		}
	})
}
