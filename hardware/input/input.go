// Abstract input events: two physical buttons and whatever else can
// produce key edges. Sources push into one bus, subscribers fan out.
package input

import (
	"fmt"
	"sync"

	"github.com/mindspring/zhihui/internal/types"
	"github.com/mindspring/zhihui/log2"
)

func Drain(ch <-chan types.InputEvent) {
	for {
		select {
		case <-ch:
		default:
			return
		}
	}
}

type Source interface {
	Read() (types.InputEvent, error)
	String() string
}

type EventFunc func(types.InputEvent)

type sub struct {
	name string
	ch   chan<- types.InputEvent
	fun  EventFunc
	stop <-chan struct{}
}

type Dispatch struct {
	Log  *log2.Log
	bus  chan types.InputEvent
	mu   sync.Mutex
	subs map[string]*sub
	stop <-chan struct{}
}

func NewDispatch(log *log2.Log, stop <-chan struct{}) *Dispatch {
	return &Dispatch{
		Log:  log,
		bus:  make(chan types.InputEvent),
		subs: make(map[string]*sub, 8),
		stop: stop,
	}
}

func (d *Dispatch) SubscribeChan(name string, substop <-chan struct{}) chan types.InputEvent {
	target := make(chan types.InputEvent)
	d.safeSubscribe(&sub{name: name, ch: target, stop: substop})
	return target
}

func (d *Dispatch) SubscribeFunc(name string, fun EventFunc, substop <-chan struct{}) {
	d.safeSubscribe(&sub{name: name, fun: fun, stop: substop})
}

func (d *Dispatch) Unsubscribe(name string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if s, ok := d.subs[name]; ok {
		d.subClose(s)
	} else {
		panic("code error input sub not found name=" + name)
	}
}

func (d *Dispatch) Run(sources []Source) {
	for _, source := range sources {
		go d.readSource(source)
	}

	for {
		select {
		case event := <-d.bus:
			handled := false
			d.mu.Lock()
			for _, s := range d.subs {
				d.subFire(s, event)
				handled = true
			}
			d.mu.Unlock()
			if !handled {
				d.Log.Errorf("input not handled event=%s", event.String())
			}

		case <-d.stop:
			Drain(d.bus)
			return
		}
	}
}

func (d *Dispatch) Emit(event types.InputEvent) {
	select {
	case d.bus <- event:
		d.Log.Debugf("input emit=%s", event.String())
	case <-d.stop:
	}
}

func (d *Dispatch) readSource(source Source) {
	tag := source.String()
	for {
		event, err := source.Read()
		if err != nil {
			d.Log.Errorf("input source=%s err=%v", tag, err)
			return
		}
		d.Emit(event)
	}
}

func (d *Dispatch) subFire(s *sub, event types.InputEvent) {
	select {
	case <-s.stop:
		d.subClose(s)
		return
	default:
	}

	if s.ch == nil && s.fun == nil {
		panic(fmt.Sprintf("input sub=%s ch=nil fun=nil", s.name))
	}
	if s.fun != nil {
		s.fun(event)
	}
	if s.ch != nil {
		select {
		case s.ch <- event:
		case <-s.stop:
			d.subClose(s)
		}
	}
}

func (d *Dispatch) subClose(s *sub) {
	if s.ch != nil {
		close(s.ch)
	}
	delete(d.subs, s.name)
}

func (d *Dispatch) safeSubscribe(s *sub) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if existing, ok := d.subs[s.name]; ok {
		select {
		case <-s.stop:
			panic("code error input subscribe already closed name=" + s.name)
		case <-existing.stop:
			d.subClose(existing)
		default:
			panic("code error input duplicate subscribe name=" + s.name)
		}
	}
	d.subs[s.name] = s
}
