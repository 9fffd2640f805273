package config

import (
	"context"
	"testing"
	"time"

	"colorpot-go/bus"
)

func TestConfig_PublishEmbedded_RetainedPerSection(t *testing.T) {
	oldLookup := EmbeddedConfigLookup
	EmbeddedConfigLookup = func(device string) ([]byte, bool) {
		if device != "lamp" {
			return nil, false
		}
		return []byte(`{
			"colorloop": {"red_pin": 2, "active_low": true},
			"buttons": {"debounce_ms": 100}
		}`), true
	}
	t.Cleanup(func() { EmbeddedConfigLookup = oldLookup })

	b := bus.NewBus(16)
	conn := b.NewConnection("test-config")
	svc := NewConfigService()

	ctx := context.WithValue(context.Background(), CtxDeviceKey, "lamp")
	svc.Start(ctx, conn)

	sub := conn.Subscribe(bus.Topic{configPrefix, bus.Hash})

	got := map[string]any{}
	deadline := time.Now().Add(600 * time.Millisecond)
	for len(got) < 2 && time.Now().Before(deadline) {
		select {
		case m := <-sub.Channel():
			key, ok := m.Topic[1].(string)
			if !ok {
				t.Fatalf("topic[1] type %T, want string", m.Topic[1])
			}
			got[key] = m.Payload
		case <-time.After(10 * time.Millisecond):
		}
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 retained sections, got %d (%v)", len(got), got)
	}

	cl, ok := got["colorloop"].(map[string]any)
	if !ok {
		t.Fatalf("colorloop payload type = %T, want map", got["colorloop"])
	}
	if pin, ok := cl["red_pin"].(float64); !ok || pin != 2 {
		t.Fatalf("red_pin = %#v, want 2", cl["red_pin"])
	}
	if al, ok := cl["active_low"].(bool); !ok || !al {
		t.Fatalf("active_low = %#v, want true", cl["active_low"])
	}
}

func TestConfig_MissingDevice(t *testing.T) {
	b := bus.NewBus(4)
	conn := b.NewConnection("test-missing-device")
	svc := NewConfigService()

	if err := svc.publishConfig(context.Background(), conn); err == nil {
		t.Fatal("expected error for missing device ID, got nil")
	}
}

func TestConfig_NoConfigFound(t *testing.T) {
	oldLookup := EmbeddedConfigLookup
	EmbeddedConfigLookup = func(device string) ([]byte, bool) { return nil, false }
	t.Cleanup(func() { EmbeddedConfigLookup = oldLookup })

	b := bus.NewBus(4)
	conn := b.NewConnection("test-no-config")
	svc := NewConfigService()

	ctx := context.WithValue(context.Background(), CtxDeviceKey, "unknown-device")
	if err := svc.publishConfig(ctx, conn); err == nil {
		t.Fatal("expected error for missing embedded config, got nil")
	}
}
