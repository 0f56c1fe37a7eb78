package entity

import (
	"encoding/base64"
	"testing"
)

func TestDeriveEIDIsDeterministic(t *testing.T) {
	first := DeriveEID("alice", "+15551234567")
	second := DeriveEID("alice", "+15551234567")
	if first != second {
		t.Fatalf("derivation not stable: %q vs %q", first, second)
	}

	decoded, err := base64.StdEncoding.DecodeString(first)
	if err != nil {
		t.Fatalf("eid is not valid base64: %v", err)
	}
	if string(decoded) != "alice+15551234567" {
		t.Fatalf("unexpected eid payload %q", decoded)
	}
}

func TestDeriveEIDDistinguishesInputs(t *testing.T) {
	if DeriveEID("alice", "+15551234567") == DeriveEID("bob", "+15551234567") {
		t.Fatal("different usernames produced the same eid")
	}
	if DeriveEID("alice", "+15551234567") == DeriveEID("alice", "+15557654321") {
		t.Fatal("different numbers produced the same eid")
	}
}
