package zmachine

import "fmt"

// TextStyle is a bitmask of the four style flags set_text_style can
// combine (§8.7.2, roman is the absence of the other three).
type TextStyle uint8

const (
	StyleRoman        TextStyle = 0
	StyleReverseVideo TextStyle = 1
	StyleBold         TextStyle = 2
	StyleItalic       TextStyle = 4
	StyleFixedPitch   TextStyle = 8
)

// Color is one entry of the Z-Machine's 16-slot standard palette
// (§8.3.1); 0/1 (current/default) resolve against the active window.
type Color uint8

const (
	ColorCurrent Color = iota
	ColorDefault
	ColorBlack
	ColorRed
	ColorGreen
	ColorYellow
	ColorBlue
	ColorMagenta
	ColorCyan
	ColorWhite
)

// ToRGB returns the standard palette's RGB value for c, or (0,0,0)
// for the "current"/"default" pseudo-colors which a driving UI must
// resolve against its own window state.
func (c Color) ToRGB() (r, g, b uint8) {
	switch c {
	case ColorBlack:
		return 0, 0, 0
	case ColorRed:
		return 255, 0, 0
	case ColorGreen:
		return 0, 255, 0
	case ColorYellow:
		return 255, 255, 0
	case ColorBlue:
		return 0, 0, 255
	case ColorMagenta:
		return 255, 0, 255
	case ColorCyan:
		return 0, 255, 255
	case ColorWhite:
		return 255, 255, 255
	default:
		return 0, 0, 0
	}
}

// Output event types sent on a Screen's Out channel. A driving UI
// (cmd/zmachine's bubbletea model) type-switches on these; the VM
// goroutine never renders anything itself (§6, §8).
type (
	TextEvent struct{ Text string }

	StatusEvent struct {
		PlaceName string
		Score     int
		Moves     int
		TimeBased bool
	}

	SplitWindowEvent struct{ UpperLines int }
	SetWindowEvent   struct{ Lower bool }
	EraseWindowEvent struct{ Window int16 }
	CursorEvent      struct{ Line, Column int }
	TextStyleEvent   struct{ Style TextStyle }

	ColorEvent struct {
		Foreground, Background Color
	}

	AwaitLine struct{}
	AwaitChar struct{}
	Warning   struct{ Message string }
	Halted    struct{}
)

// Screen is the VM's sole channel to the outside world: every
// rendering effect is a value sent on Out, and the two input channels
// are how sread/read_char receive typed text back (§6).
type Screen struct {
	Out  chan any
	Line chan string
	Char chan rune

	lowerActive bool
}

// NewScreen builds a Screen with an output channel buffered to 64
// events, so the VM goroutine can run up to 64 events ahead of a UI
// that hasn't read them yet before a send blocks.
func NewScreen() *Screen {
	return &Screen{
		Out:         make(chan any, 64),
		Line:        make(chan string),
		Char:        make(chan rune),
		lowerActive: true,
	}
}

func (s *Screen) Write(text string) { s.Out <- TextEvent{Text: text} }

// LowerActive reports whether set_window has selected the lower
// (scrolling transcript) window, for a driving UI deciding where to
// route a TextEvent's text.
func (s *Screen) LowerActive() bool { return s.lowerActive }

func (s *Screen) warn(format string, args ...any) {
	s.Out <- Warning{Message: fmt.Sprintf(format, args...)}
}

// readLine blocks until a driving UI supplies one line of input.
func (m *Machine) readLine() (string, error) {
	m.state = StateAwaitingLine
	m.Screen.Out <- AwaitLine{}
	line, ok := <-m.Screen.Line
	if !ok {
		return "", ErrNoInputAvailable
	}
	m.state = StateRunning
	return line, nil
}

func (m *Machine) readChar() (rune, error) {
	m.state = StateAwaitingChar
	m.Screen.Out <- AwaitChar{}
	ch, ok := <-m.Screen.Char
	if !ok {
		return 0, ErrNoInputAvailable
	}
	m.state = StateRunning
	return ch, nil
}
