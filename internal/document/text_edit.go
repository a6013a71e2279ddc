package document

import (
	"fmt"
	"unicode/utf16"
	"unicode/utf8"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

// Apply applies one LSP content change. A change is either a
// TextDocumentContentChangeEvent (ranged, or whole when Range is nil) or a
// TextDocumentContentChangeEventWhole.
func (d *Document) Apply(change any) error {
	switch c := change.(type) {
	case protocol.TextDocumentContentChangeEventWhole:
		d.lines = SplitLines(c.Text)
		return nil
	case protocol.TextDocumentContentChangeEvent:
		if c.Range == nil {
			d.lines = SplitLines(c.Text)
			return nil
		}

		return d.applyRange(*c.Range, c.Text)
	default:
		return fmt.Errorf("unsupported content change type %T", change)
	}
}

// applyRange replaces the text inside r. LSP positions count UTF-16 code
// units; they are converted to byte offsets within their lines.
func (d *Document) applyRange(r protocol.Range, text string) error {
	startLine := int(r.Start.Line)
	endLine := int(r.End.Line)

	if startLine < 0 || startLine >= len(d.lines) {
		return fmt.Errorf("start line %d out of range (0-%d)", startLine, len(d.lines)-1)
	}

	if endLine < 0 || endLine >= len(d.lines) {
		return fmt.Errorf("end line %d out of range (0-%d)", endLine, len(d.lines)-1)
	}

	if startLine > endLine {
		return fmt.Errorf("start line %d after end line %d", startLine, endLine)
	}

	startByte, err := ByteOffset(d.lines[startLine], int(r.Start.Character))
	if err != nil {
		return fmt.Errorf("invalid start position: %w", err)
	}

	endByte, err := ByteOffset(d.lines[endLine], int(r.End.Character))
	if err != nil {
		return fmt.Errorf("invalid end position: %w", err)
	}

	if startLine == endLine && startByte > endByte {
		return fmt.Errorf("start character %d after end character %d", r.Start.Character, r.End.Character)
	}

	before := d.lines[startLine][:startByte]
	after := d.lines[endLine][endByte:]
	inserted := SplitLines(text)

	// Change stays within a single line: patch it in place.
	if startLine == endLine && len(inserted) == 1 {
		d.lines[startLine] = before + inserted[0] + after
		return nil
	}

	inserted[0] = before + inserted[0]
	inserted[len(inserted)-1] += after

	lines := make([]string, 0, len(d.lines)-(endLine-startLine)+len(inserted)-1)
	lines = append(lines, d.lines[:startLine]...)
	lines = append(lines, inserted...)
	lines = append(lines, d.lines[endLine+1:]...)
	d.lines = lines

	return nil
}

// ByteOffset converts a UTF-16 character offset (as used by LSP) to a UTF-8
// byte offset within line. An offset at the end of the line is allowed.
func ByteOffset(line string, utf16Offset int) (int, error) {
	if utf16Offset == 0 {
		return 0, nil
	}

	units := len(utf16.Encode([]rune(line)))
	if utf16Offset > units {
		return 0, fmt.Errorf("UTF-16 offset %d exceeds line length %d", utf16Offset, units)
	}

	byteOffset := 0
	utf16Count := 0

	for _, r := range line {
		if utf16Count >= utf16Offset {
			break
		}

		// Runes outside the BMP take a surrogate pair
		if r <= 0xFFFF {
			utf16Count++
		} else {
			utf16Count += 2
		}

		byteOffset += utf8.RuneLen(r)
	}

	return byteOffset, nil
}
