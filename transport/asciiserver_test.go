package transport

import "testing"

func TestIndexDelimFindsFirstOccurrence(t *testing.T) {
	buf := []byte("abc\ndef\n")
	if idx := indexDelim(buf, '\n'); idx != 3 {
		t.Errorf("expected index 3, got %v", idx)
	}
}

func TestIndexDelimNotFound(t *testing.T) {
	buf := []byte("abcdef")
	if idx := indexDelim(buf, '\n'); idx != -1 {
		t.Errorf("expected -1, got %v", idx)
	}
}

func TestIndexDelimEmptyBuffer(t *testing.T) {
	if idx := indexDelim(nil, '\n'); idx != -1 {
		t.Errorf("expected -1 for empty buffer, got %v", idx)
	}
}
