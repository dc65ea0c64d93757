package analyzer

import (
	"errors"
	"testing"
)

func TestDecodeJSONPlain(t *testing.T) {
	var ids []string
	if err := decodeJSON(`["2411.12345", "2411.67890"]`, &ids); err != nil {
		t.Fatalf("decodeJSON returned error: %v", err)
	}
	if len(ids) != 2 || ids[0] != "2411.12345" {
		t.Errorf("Unexpected result: %v", ids)
	}
}

func TestDecodeJSONFencedWithLanguageTag(t *testing.T) {
	raw := "Here you go:\n```json\n{\"innovation_score\": 8}\n```\nHope that helps!"
	var fields map[string]any
	if err := decodeJSON(raw, &fields); err != nil {
		t.Fatalf("decodeJSON returned error: %v", err)
	}
	if fields["innovation_score"] != float64(8) {
		t.Errorf("Unexpected score: %v", fields["innovation_score"])
	}
}

func TestDecodeJSONFencedWithoutLanguageTag(t *testing.T) {
	raw := "```\n[\"a\", \"b\"]\n```"
	var ids []string
	if err := decodeJSON(raw, &ids); err != nil {
		t.Fatalf("decodeJSON returned error: %v", err)
	}
	if len(ids) != 2 || ids[1] != "b" {
		t.Errorf("Unexpected result: %v", ids)
	}
}

func TestDecodeJSONOnlyFirstFenceConsidered(t *testing.T) {
	raw := "```json\n[\"first\"]\n```\nand also\n```json\n[\"second\"]\n```"
	var ids []string
	if err := decodeJSON(raw, &ids); err != nil {
		t.Fatalf("decodeJSON returned error: %v", err)
	}
	if len(ids) != 1 || ids[0] != "first" {
		t.Errorf("Expected only first fenced region, got %v", ids)
	}
}

func TestDecodeJSONWhitespace(t *testing.T) {
	var fields map[string]any
	if err := decodeJSON("  \n {\"summary\": \"ok\"} \n ", &fields); err != nil {
		t.Fatalf("decodeJSON returned error: %v", err)
	}
	if fields["summary"] != "ok" {
		t.Errorf("Unexpected summary: %v", fields["summary"])
	}
}

func TestDecodeJSONMalformed(t *testing.T) {
	var ids []string
	err := decodeJSON("I could not produce the list, sorry.", &ids)
	if err == nil {
		t.Fatal("Expected error for non-JSON text")
	}
	if !errors.Is(err, ErrMalformedResponse) {
		t.Errorf("Expected ErrMalformedResponse, got: %v", err)
	}
}

func TestDecodeJSONMalformedInsideFence(t *testing.T) {
	var ids []string
	err := decodeJSON("```json\nnot json either\n```", &ids)
	if !errors.Is(err, ErrMalformedResponse) {
		t.Errorf("Expected ErrMalformedResponse, got: %v", err)
	}
}
