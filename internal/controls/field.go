package controls

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Field is the editing state of one control in the debug panel. Edits stay
// local until Commit writes them to the store.
type Field struct {
	Name      string
	Buffer    []byte
	CaretByte int
	Focused   bool
}

func NewField(name string) *Field {
	return &Field{Name: name}
}

// Focus loads the current store value and puts the caret at the end.
func (f *Field) Focus(s *Store) {
	f.Buffer = []byte(s.Get(f.Name))
	f.CaretByte = len(f.Buffer)
	f.Focused = true
}

func (f *Field) Text() string { return string(f.Buffer) }

// Dirty reports whether the buffer differs from the stored value.
func (f *Field) Dirty(s *Store) bool {
	return f.Focused && string(f.Buffer) != s.Get(f.Name)
}

func (f *Field) MoveCaretLeft() {
	f.CaretByte = previousRuneBoundary(f.Buffer, f.CaretByte)
}

func (f *Field) MoveCaretRight() {
	f.CaretByte = nextRuneBoundary(f.Buffer, f.CaretByte)
}

func (f *Field) MoveCaretToLineStart() { f.CaretByte = 0 }

func (f *Field) MoveCaretToLineEnd() { f.CaretByte = len(f.Buffer) }

// SetCaret places the caret at bytePos, snapped to a rune boundary.
func (f *Field) SetCaret(bytePos int) {
	f.CaretByte = clampToRuneBoundary(f.Buffer, bytePos)
}

// InsertTextAtCaret inserts input at the caret. Line breaks are dropped since
// values are single-line.
func (f *Field) InsertTextAtCaret(input string) error {
	if input == "" {
		return nil
	}
	if !utf8.ValidString(input) {
		return fmt.Errorf("input must be valid UTF-8")
	}
	input = strings.NewReplacer("\r", "", "\n", "").Replace(input)
	pos := clampToRuneBoundary(f.Buffer, f.CaretByte)
	next := make([]byte, 0, len(f.Buffer)+len(input))
	next = append(next, f.Buffer[:pos]...)
	next = append(next, input...)
	next = append(next, f.Buffer[pos:]...)
	f.Buffer = next
	f.CaretByte = pos + len(input)
	return nil
}

func (f *Field) Backspace() {
	pos := clampToRuneBoundary(f.Buffer, f.CaretByte)
	if pos == 0 {
		return
	}
	start := previousRuneBoundary(f.Buffer, pos)
	f.Buffer = append(f.Buffer[:start], f.Buffer[pos:]...)
	f.CaretByte = start
}

func (f *Field) DeleteForward() {
	pos := clampToRuneBoundary(f.Buffer, f.CaretByte)
	if pos >= len(f.Buffer) {
		return
	}
	end := nextRuneBoundary(f.Buffer, pos)
	f.Buffer = append(f.Buffer[:pos], f.Buffer[end:]...)
	f.CaretByte = pos
}

// Commit writes the buffer to the store and drops focus.
func (f *Field) Commit(s *Store) error {
	value := strings.TrimSpace(string(f.Buffer))
	f.Focused = false
	if err := s.Set(f.Name, value); err != nil {
		return fmt.Errorf("commit %s: %w", f.Name, err)
	}
	return nil
}

// Cancel drops focus and discards the buffer.
func (f *Field) Cancel() {
	f.Focused = false
	f.Buffer = f.Buffer[:0]
	f.CaretByte = 0
}

func clampToRuneBoundary(text []byte, pos int) int {
	if pos < 0 {
		return 0
	}
	if pos > len(text) {
		pos = len(text)
	}
	if pos == len(text) || utf8.Valid(text[:pos]) {
		return pos
	}
	for pos > 0 && !utf8.Valid(text[:pos]) {
		pos--
	}
	return pos
}

func previousRuneBoundary(text []byte, pos int) int {
	pos = clampToRuneBoundary(text, pos)
	if pos == 0 {
		return 0
	}
	_, size := utf8.DecodeLastRune(text[:pos])
	if size <= 0 {
		size = 1
	}
	return pos - size
}

func nextRuneBoundary(text []byte, pos int) int {
	pos = clampToRuneBoundary(text, pos)
	if pos >= len(text) {
		return len(text)
	}
	_, size := utf8.DecodeRune(text[pos:])
	if size <= 0 {
		size = 1
	}
	return pos + size
}
