package kafka

import "testing"

type indexComplete struct {
	RunID string `json:"run_id"`
	Terms int    `json:"terms"`
}

func TestDecodeJSON(t *testing.T) {
	got, err := DecodeJSON[indexComplete]([]byte(`{"run_id":"r1","terms":12}`))
	if err != nil {
		t.Fatalf("DecodeJSON: %v", err)
	}
	if got.RunID != "r1" || got.Terms != 12 {
		t.Errorf("got %+v", got)
	}
	if _, err := DecodeJSON[indexComplete]([]byte(`{not json`)); err == nil {
		t.Error("expected decode error")
	}
}
