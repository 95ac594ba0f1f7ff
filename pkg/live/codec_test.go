package live

import (
	"testing"

	"github.com/minimact/mxc/pkg/assign"
	"github.com/minimact/mxc/pkg/compiler"
	"github.com/minimact/mxc/pkg/deps"
	"github.com/minimact/mxc/pkg/paths"
	"github.com/minimact/mxc/pkg/template"
)

func TestEncodeDecodeFrame(t *testing.T) {
	payload := ReloadPayload{
		Component: "Counter",
		Changes: []ChangePayload{
			{Kind: "reused", Path: "10"},
			{Kind: "moved", Path: "10.30", OldPath: "10.10"},
		},
		Templates: []TemplatePayload{
			{Kind: "conditional-branch", Key: "10.20#then", Class: "client"},
		},
	}

	frame, err := EncodeFrame(FrameReload, payload)
	if err != nil {
		t.Fatalf("EncodeFrame failed: %v", err)
	}
	if frame[0] != byte(FrameReload) {
		t.Errorf("frame type byte = %#x", frame[0])
	}

	ft, body, err := DecodeFrame(frame)
	if err != nil {
		t.Fatalf("DecodeFrame failed: %v", err)
	}
	if ft != FrameReload {
		t.Errorf("frame type = %#x", ft)
	}

	got, err := DecodeReload(body)
	if err != nil {
		t.Fatalf("DecodeReload failed: %v", err)
	}
	if got.Component != "Counter" {
		t.Errorf("component = %q", got.Component)
	}
	if len(got.Changes) != 2 || got.Changes[1].OldPath != "10.10" {
		t.Errorf("changes = %+v", got.Changes)
	}
	if len(got.Templates) != 1 || got.Templates[0].Key != "10.20#then" {
		t.Errorf("templates = %+v", got.Templates)
	}
}

func TestEncodeDecodeError(t *testing.T) {
	frame, err := EncodeFrame(FrameBuildError, ErrorPayload{
		Component: "Broken",
		Message:   "component Broken has no markup-returning statement",
	})
	if err != nil {
		t.Fatalf("EncodeFrame failed: %v", err)
	}

	ft, body, err := DecodeFrame(frame)
	if err != nil {
		t.Fatalf("DecodeFrame failed: %v", err)
	}
	if ft != FrameBuildError {
		t.Errorf("frame type = %#x", ft)
	}

	got, err := DecodeError(body)
	if err != nil {
		t.Fatalf("DecodeError failed: %v", err)
	}
	if got.Component != "Broken" || got.Message == "" {
		t.Errorf("payload = %+v", got)
	}
}

func TestDecodeFrame_Invalid(t *testing.T) {
	if _, _, err := DecodeFrame(nil); err == nil {
		t.Error("empty frame accepted")
	}
	if _, _, err := DecodeFrame([]byte{0xff, 0x00}); err == nil {
		t.Error("unknown frame type accepted")
	}
}

func TestNewReloadPayload(t *testing.T) {
	ir := &compiler.ComponentIR{
		Name: "Counter",
		Changes: []assign.Change{
			assign.Reused(paths.Path{0x10}),
			assign.Moved(paths.Path{0x10, 0x10}, paths.Path{0x10, 0x30}),
			assign.Deleted(paths.Path{0x10, 0x20}),
		},
		Templates: []template.Template{
			{Kind: template.KindLoopBody, Path: paths.Path{0x10, 0x30}, Disc: template.DiscBody, Class: deps.ClassServer},
		},
	}

	payload := NewReloadPayload(ir, []byte(`{"name":"Counter"}`))
	if payload.Component != "Counter" || string(payload.IR) == "" {
		t.Fatalf("payload = %+v", payload)
	}

	wantChanges := []ChangePayload{
		{Kind: "reused", Path: "10"},
		{Kind: "moved", Path: "10.30", OldPath: "10.10"},
		{Kind: "deleted", Path: "10.20"},
	}
	for i, cp := range payload.Changes {
		if cp != wantChanges[i] {
			t.Errorf("change #%d = %+v, want %+v", i, cp, wantChanges[i])
		}
	}

	wantTemplate := TemplatePayload{Kind: "loop-body", Key: "10.30#body", Class: "server"}
	if len(payload.Templates) != 1 || payload.Templates[0] != wantTemplate {
		t.Errorf("templates = %+v, want %+v", payload.Templates, wantTemplate)
	}
}
