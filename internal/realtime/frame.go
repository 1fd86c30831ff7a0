package realtime

import (
	sonic "github.com/bytedance/sonic"
	"github.com/valyala/bytebufferpool"

	"github.com/riskibarqy/claim-ledger/internal/domain/claim"
)

const (
	FrameSync   = "sync"
	FrameChange = "change"
)

// Frame is the websocket payload. A sync frame tells the client to re-fetch
// everything; a change frame carries one notification.
type Frame struct {
	Type   string        `json:"type"`
	Change *claim.Change `json:"change,omitempty"`
}

func SyncFrame() Frame {
	return Frame{Type: FrameSync}
}

func ChangeFrame(change claim.Change) Frame {
	return Frame{Type: FrameChange, Change: &change}
}

// EncodeFrame marshals f through a pooled buffer. The returned slice is owned by the caller.
func EncodeFrame(f Frame) ([]byte, error) {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	if err := sonic.ConfigDefault.NewEncoder(buf).Encode(f); err != nil {
		return nil, err
	}
	return append([]byte(nil), buf.B...), nil
}

func DecodeFrame(data []byte) (Frame, error) {
	var f Frame
	if err := sonic.Unmarshal(data, &f); err != nil {
		return Frame{}, err
	}
	return f, nil
}
