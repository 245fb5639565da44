package wire

import (
	"bufio"
	"encoding/binary"
	"fmt"
)

// PeekType non-destructively reads a record's leading Type field without
// consuming it from br, so a dispatcher can classify a connection before
// committing to a handler. The record itself is read normally afterwards
// by Read.
func PeekType(br *bufio.Reader) (Type, error) {
	head, err := br.Peek(4)
	if err != nil {
		return 0, fmt.Errorf("wire: peek type: %w", err)
	}
	return Type(binary.BigEndian.Uint32(head)), nil
}
