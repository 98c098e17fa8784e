package dispatch

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestTerminalConfirmer(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"yes", "y\n", true},
		{"yes word", "yes\n", true},
		{"uppercase", "Y\n", true},
		{"no", "n\n", false},
		{"default empty", "\n", false},
		{"garbage", "sure\n", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			c := NewTerminalConfirmer(strings.NewReader(tt.input), &out)

			got, err := c.Confirm(context.Background(), "nmap 10.0.0.1", "Scan a host.")
			if err != nil {
				t.Fatalf("Confirm() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Confirm() = %v, want %v", got, tt.want)
			}
			if !strings.Contains(out.String(), "nmap 10.0.0.1") {
				t.Errorf("prompt = %q, want it to show the command", out.String())
			}
			if !strings.Contains(out.String(), "Scan a host.") {
				t.Errorf("prompt = %q, want it to show the description", out.String())
			}
		})
	}
}

func TestTerminalConfirmerEOFDeclines(t *testing.T) {
	c := NewTerminalConfirmer(strings.NewReader(""), &bytes.Buffer{})
	got, err := c.Confirm(context.Background(), "cmd", "")
	if got {
		t.Error("Confirm() = true on EOF, want decline")
	}
	if err == nil {
		t.Error("Confirm() error = nil, want the read error")
	}
}

func TestTerminalConfirmerSequentialPrompts(t *testing.T) {
	c := NewTerminalConfirmer(strings.NewReader("y\nn\n"), &bytes.Buffer{})

	first, err := c.Confirm(context.Background(), "one", "")
	if err != nil || !first {
		t.Fatalf("first Confirm() = (%v, %v), want approved", first, err)
	}
	second, err := c.Confirm(context.Background(), "two", "")
	if err != nil || second {
		t.Fatalf("second Confirm() = (%v, %v), want declined", second, err)
	}
}

func TestAcceptAll(t *testing.T) {
	got, err := AcceptAll{}.Confirm(context.Background(), "anything", "")
	if err != nil || !got {
		t.Errorf("Confirm() = (%v, %v), want approval", got, err)
	}
}
