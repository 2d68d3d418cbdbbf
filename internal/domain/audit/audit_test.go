package audit

import (
	"strings"
	"testing"
)

func TestBuildQueryNumbersPlaceholders(t *testing.T) {
	query, args := buildQuery(Filter{Action: ActionPayrollSync, Actor: "svc"})
	if !strings.Contains(query, "action = $1") || !strings.Contains(query, "actor = $2") {
		t.Fatalf("unexpected query %q", query)
	}
	if strings.Contains(query, "entity_type =") {
		t.Fatalf("unexpected entity filter in %q", query)
	}
	if len(args) != 2 || args[0] != ActionPayrollSync || args[1] != "svc" {
		t.Fatalf("unexpected args %v", args)
	}
}

func TestMarshalOptional(t *testing.T) {
	if out, err := marshalOptional(nil); err != nil || out != nil {
		t.Fatalf("expected nil payload, got %q %v", out, err)
	}
	out, err := marshalOptional(map[string]int{"deleted": 2})
	if err != nil || string(out) != `{"deleted":2}` {
		t.Fatalf("unexpected payload %q %v", out, err)
	}
}
