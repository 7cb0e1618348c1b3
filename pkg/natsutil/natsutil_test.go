package natsutil

import (
	"testing"

	"github.com/nats-io/nats.go"
)

func TestHeaderCarrier(t *testing.T) {
	msg := &nats.Msg{}
	c := (*headerCarrier)(msg)

	if got := c.Get("traceparent"); got != "" {
		t.Errorf("empty carrier Get = %q, want empty", got)
	}
	if keys := c.Keys(); keys != nil {
		t.Errorf("empty carrier Keys = %v, want nil", keys)
	}

	c.Set("traceparent", "00-abc-def-01")
	if got := c.Get("traceparent"); got != "00-abc-def-01" {
		t.Errorf("Get after Set = %q", got)
	}
	if keys := c.Keys(); len(keys) != 1 {
		t.Errorf("Keys = %v, want one entry", keys)
	}
	if msg.Header.Get("traceparent") == "" {
		t.Error("Set did not write through to message headers")
	}
}
