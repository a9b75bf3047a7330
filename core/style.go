package core

import "github.com/xuri/excelize/v2"

// StyleSnapshot is an immutable copy of a cell's formatting: fill, font,
// alignment, borders, protection and number format. It owns all of its
// data, so applying it to another cell never aliases the source style.
type StyleSnapshot struct {
	style excelize.Style
	set   bool
}

// CaptureStyle copies s into a new snapshot. A nil style yields the zero
// snapshot, which stands for the workbook default.
func CaptureStyle(s *excelize.Style) StyleSnapshot {
	if s == nil {
		return StyleSnapshot{}
	}
	return StyleSnapshot{style: copyStyle(s), set: true}
}

// IsZero reports whether the snapshot is the default style.
func (s StyleSnapshot) IsZero() bool {
	return !s.set
}

// Style returns a fresh copy of the captured style, safe to hand to
// excelize.File.NewStyle.
func (s StyleSnapshot) Style() *excelize.Style {
	st := copyStyle(&s.style)
	return &st
}

// Equal reports whether two snapshots describe the same formatting.
func (s StyleSnapshot) Equal(o StyleSnapshot) bool {
	if s.set != o.set {
		return false
	}
	if !s.set {
		return true
	}
	a, b := &s.style, &o.style
	if len(a.Border) != len(b.Border) || len(a.Fill.Color) != len(b.Fill.Color) {
		return false
	}
	for i := range a.Border {
		if a.Border[i] != b.Border[i] {
			return false
		}
	}
	for i := range a.Fill.Color {
		if a.Fill.Color[i] != b.Fill.Color[i] {
			return false
		}
	}
	return a.Fill.Type == b.Fill.Type && a.Fill.Pattern == b.Fill.Pattern &&
		a.Fill.Shading == b.Fill.Shading && a.NumFmt == b.NumFmt &&
		fontEqual(a.Font, b.Font) && ptrEqual(a.Alignment, b.Alignment) &&
		ptrEqual(a.Protection, b.Protection) && ptrEqual(a.CustomNumFmt, b.CustomNumFmt)
}

func ptrEqual[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func fontEqual(a, b *excelize.Font) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Bold == b.Bold && a.Italic == b.Italic && a.Underline == b.Underline &&
		a.Family == b.Family && a.Size == b.Size && a.Strike == b.Strike &&
		a.Color == b.Color && a.VertAlign == b.VertAlign
}

func copyStyle(src *excelize.Style) excelize.Style {
	dst := *src
	if src.Border != nil {
		dst.Border = append([]excelize.Border(nil), src.Border...)
	}
	if src.Fill.Color != nil {
		dst.Fill.Color = append([]string(nil), src.Fill.Color...)
	}
	if src.Font != nil {
		f := *src.Font
		dst.Font = &f
	}
	if src.Alignment != nil {
		a := *src.Alignment
		dst.Alignment = &a
	}
	if src.Protection != nil {
		p := *src.Protection
		dst.Protection = &p
	}
	if src.DecimalPlaces != nil {
		d := *src.DecimalPlaces
		dst.DecimalPlaces = &d
	}
	if src.CustomNumFmt != nil {
		c := *src.CustomNumFmt
		dst.CustomNumFmt = &c
	}
	return dst
}
