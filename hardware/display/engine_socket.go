package display

import (
	"encoding/json"
	"image"
	"net"
	"sync"
	"time"

	"github.com/juju/errors"

	"github.com/mindspring/zhihui/log2"
)

const dialTimeout = 500 * time.Millisecond

// SocketEngine talks to the compositor process over its unix socket.
// Each Load sends one newline-terminated JSON frame; the compositor
// owns the render pump and keeps drawing the last frame it got.
type SocketEngine struct {
	Log  *log2.Log
	path string
	size image.Point

	mu   sync.Mutex
	conn net.Conn
}

func NewSocketEngine(path string, size image.Point, log *log2.Log) *SocketEngine {
	return &SocketEngine{Log: log, path: path, size: size}
}

func (e *SocketEngine) Size() image.Point { return e.size }

// Ready dials lazily. The compositor starts in parallel with this
// process so early calls may fail, callers poll until true.
func (e *SocketEngine) Ready() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dial() == nil
}

func (e *SocketEngine) dial() error {
	if e.conn != nil {
		return nil
	}
	conn, err := net.DialTimeout("unix", e.path, dialTimeout)
	if err != nil {
		e.Log.Debugf("%s engine dial path=%s err=%v", modName, e.path, err)
		return err
	}
	e.conn = conn
	e.Log.Infof("%s engine connected path=%s", modName, e.path)
	return nil
}

func (e *SocketEngine) Load(f *Frame) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.dial(); err != nil {
		return errors.Annotatef(err, "%s engine", modName)
	}
	b, err := json.Marshal(wireFromFrame(f))
	if err != nil {
		panic("code error display frame marshal: " + err.Error())
	}
	b = append(b, '\n')
	if _, err = e.conn.Write(b); err != nil {
		// compositor restarted, drop the connection and redial on next Load
		_ = e.conn.Close()
		e.conn = nil
		return errors.Annotatef(err, "%s engine write frame=%s", modName, f.Name)
	}
	return nil
}

func (e *SocketEngine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.conn == nil {
		return nil
	}
	err := e.conn.Close()
	e.conn = nil
	return err
}

type wireWidget struct {
	Name  string `json:"name"`
	Kind  uint8  `json:"kind"`
	Text  string `json:"text,omitempty"`
	Value int    `json:"value"`
	Color uint32 `json:"color,omitempty"`
	Icon  uint8  `json:"icon,omitempty"`
}

type wireFrame struct {
	Name    string       `json:"name"`
	Widgets []wireWidget `json:"widgets"`
}

func wireFromFrame(f *Frame) wireFrame {
	wf := wireFrame{Name: f.Name, Widgets: make([]wireWidget, 0, len(f.order))}
	for _, w := range f.order {
		wf.Widgets = append(wf.Widgets, wireWidget{
			Name:  w.Name,
			Kind:  uint8(w.Kind),
			Text:  w.text,
			Value: w.value,
			Color: w.color,
			Icon:  uint8(w.icon),
		})
	}
	return wf
}
