package tools

import (
	"context"
	"strings"
	"testing"
)

func TestDispatchUnknownTool(t *testing.T) {
	d := NewDispatcher()

	result := d.Dispatch(context.Background(), "get_flux_capacitor", "{}")

	payload, ok := result.(map[string]any)
	if !ok {
		t.Fatalf("expected map payload, got %T", result)
	}
	if payload["error"] != "Unknown tool: get_flux_capacitor" {
		t.Errorf("unexpected error payload: %v", payload)
	}
}

func TestDispatchMalformedArguments(t *testing.T) {
	d := NewDispatcher()
	d.Register("probe", nil, func(context.Context, map[string]any) any { return "ok" })

	result := d.Dispatch(context.Background(), "probe", "{not json")

	payload := result.(map[string]any)
	if payload["status"] != "error" {
		t.Fatalf("malformed arguments must produce an error payload, got %v", result)
	}
	if msg, _ := payload["message"].(string); !strings.HasPrefix(msg, "invalid JSON arguments") {
		t.Errorf("unexpected message %q", msg)
	}
}

func TestDispatchEmptyArgumentsRunHandler(t *testing.T) {
	d := NewDispatcher()
	var got map[string]any
	d.Register("probe", nil, func(_ context.Context, args map[string]any) any {
		got = args
		return "ok"
	})

	for _, raw := range []string{"", "   ", "{}"} {
		if result := d.Dispatch(context.Background(), "probe", raw); result != "ok" {
			t.Errorf("raw=%q: expected handler result, got %v", raw, result)
		}
		if got == nil {
			t.Errorf("raw=%q: handler should receive an empty map, not nil", raw)
		}
	}
}

func TestDispatchMissingRequiredParameters(t *testing.T) {
	d := NewDispatcher()
	d.Register("probe", []string{"network_id", "link_name"}, func(context.Context, map[string]any) any {
		t.Fatal("handler must not run with missing parameters")
		return nil
	})

	result := d.Dispatch(context.Background(), "probe", `{"network_id": null}`)

	payload := result.(map[string]any)
	msg, _ := payload["message"].(string)
	if !strings.Contains(msg, "network_id") || !strings.Contains(msg, "link_name") {
		t.Errorf("both missing parameters should be named, got %q", msg)
	}
}

func TestDispatchRecoversFromPanic(t *testing.T) {
	d := NewDispatcher()
	d.Register("probe", nil, func(context.Context, map[string]any) any {
		panic("boom")
	})

	result := d.Dispatch(context.Background(), "probe", "{}")

	payload := result.(map[string]any)
	if payload["status"] != "error" || payload["message"] != "internal tool failure" {
		t.Errorf("panics must fold into a structured error, got %v", result)
	}
}

func TestDispatchIsRoundIndependent(t *testing.T) {
	d := NewDispatcher()
	calls := 0
	d.Register("probe", nil, func(context.Context, map[string]any) any {
		calls++
		return calls
	})

	d.Dispatch(context.Background(), "probe", "{}")
	d.Dispatch(context.Background(), "missing", "{}")
	if result := d.Dispatch(context.Background(), "probe", "{}"); result != 2 {
		t.Errorf("earlier failures must not poison later dispatches, got %v", result)
	}
}

func TestNamesSorted(t *testing.T) {
	d := NewDispatcher()
	d.Register("zeta", nil, func(context.Context, map[string]any) any { return nil })
	d.Register("alpha", nil, func(context.Context, map[string]any) any { return nil })

	names := d.Names()
	if len(names) != 2 || names[0] != "alpha" || names[1] != "zeta" {
		t.Errorf("expected sorted names, got %v", names)
	}
}
