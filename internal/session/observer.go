package session

import "github.com/san-kum/intervalo/internal/motion"

// Observer receives session events on the session's goroutine.
type Observer interface {
	OnReading(r motion.Reading)
	OnHint(h Hint)
	OnFrame(f FrameInfo)
}

// Funcs adapts plain functions to Observer. Nil fields are skipped.
type Funcs struct {
	Reading func(motion.Reading)
	Hint    func(Hint)
	Frame   func(FrameInfo)
}

func (f Funcs) OnReading(r motion.Reading) {
	if f.Reading != nil {
		f.Reading(r)
	}
}

func (f Funcs) OnHint(h Hint) {
	if f.Hint != nil {
		f.Hint(h)
	}
}

func (f Funcs) OnFrame(fi FrameInfo) {
	if f.Frame != nil {
		f.Frame(fi)
	}
}
