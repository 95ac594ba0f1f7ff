package live

import (
	"github.com/minimact/mxc/pkg/assign"
	"github.com/minimact/mxc/pkg/compiler"
)

// FrameType represents the type of live protocol frame
type FrameType uint8

const (
	// FrameReload carries a recompiled component: its structural changes
	// and refreshed IR
	FrameReload FrameType = 0x01
	// FrameBuildError reports a failed component compile
	FrameBuildError FrameType = 0x02
	// FrameControl carries connection control messages
	FrameControl FrameType = 0x03
)

// ChangePayload is one structural change on the wire
type ChangePayload struct {
	Kind    string `msgpack:"kind"`
	Path    string `msgpack:"path"`
	OldPath string `msgpack:"oldPath,omitempty"`
}

// TemplatePayload identifies one refreshed template
type TemplatePayload struct {
	Kind  string `msgpack:"kind"`
	Key   string `msgpack:"key"`
	Class string `msgpack:"class"`
}

// ReloadPayload is the body of a FrameReload: everything a connected
// runtime needs to patch one component in place.
type ReloadPayload struct {
	Component string            `msgpack:"component"`
	Changes   []ChangePayload   `msgpack:"changes"`
	Templates []TemplatePayload `msgpack:"templates"`
	// IR is the component's full IR artifact (JSON), for runtimes that
	// re-render rather than patch
	IR []byte `msgpack:"ir,omitempty"`
}

// ErrorPayload is the body of a FrameBuildError
type ErrorPayload struct {
	Component string `msgpack:"component"`
	Message   string `msgpack:"message"`
}

// NewReloadPayload flattens a compiled component into its wire form
func NewReloadPayload(ir *compiler.ComponentIR, irJSON []byte) ReloadPayload {
	payload := ReloadPayload{Component: ir.Name, IR: irJSON}
	for _, ch := range ir.Changes {
		cp := ChangePayload{Kind: ch.Kind.String(), Path: ch.Path.String()}
		if ch.Kind == assign.ChangeMoved {
			cp.OldPath = ch.OldPath.String()
		}
		payload.Changes = append(payload.Changes, cp)
	}
	for _, t := range ir.Templates {
		payload.Templates = append(payload.Templates, TemplatePayload{
			Kind:  t.Kind.String(),
			Key:   t.Key(),
			Class: t.Class.String(),
		})
	}
	return payload
}
