package afd

import "testing"

func TestDecodeContentLatin1(t *testing.T) {
	raw := []byte{'J', 'O', 0xC3, 'O'}
	text, err := DecodeContent(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "JOÃO" {
		t.Fatalf("expected JOÃO, got %q", text)
	}
}

func TestDecodeContentUTF8Passthrough(t *testing.T) {
	text, err := DecodeContent([]byte("JOÃO"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "JOÃO" {
		t.Fatalf("expected JOÃO, got %q", text)
	}
}

func TestLinesHandlesCRLF(t *testing.T) {
	lines := Lines("a\r\nb\nc")
	if len(lines) != 3 || lines[0] != "a" || lines[1] != "b" || lines[2] != "c" {
		t.Fatalf("unexpected lines: %q", lines)
	}
}
