package protocol

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

// PduSize is the fixed length of an encoded MovePdu.
const PduSize = 28

// ExpiryKind tells the receiver what a MovePdu means.
type ExpiryKind int32

const (
	ExpiryMove ExpiryKind = 0 // a shot (or a shots-only update)
	ExpiryTurn ExpiryKind = 1 // the sender's turn is over
	ExpiryHalf ExpiryKind = 2 // the half or the match clock ran out
)

func (k ExpiryKind) String() string {
	switch k {
	case ExpiryMove:
		return "move"
	case ExpiryTurn:
		return "turn"
	case ExpiryHalf:
		return "half"
	}
	return fmt.Sprintf("expiry(%d)", int32(k))
}

var ErrShortPdu = errors.New("protocol: short move pdu")

// MovePdu is the only message peers exchange. Every field is sent big-endian
// in declaration order; floats travel as their IEEE-754 bit pattern.
type MovePdu struct {
	Frame          int32      `json:"frame"`
	ImpulseX       float32    `json:"impulse_x"`
	ImpulseZ       float32    `json:"impulse_z"`
	CapIndex       int32      `json:"cap_index"` // -1 is the keeper
	Expiry         ExpiryKind `json:"expiry"`
	ShotsRemaining int32      `json:"shots_remaining"`
	TurnClock      int32      `json:"turn_clock"`
}

// Encode packs the pdu into its 28-byte wire form.
func (p MovePdu) Encode() [PduSize]byte {
	var buf [PduSize]byte
	binary.BigEndian.PutUint32(buf[0:], uint32(p.Frame))
	binary.BigEndian.PutUint32(buf[4:], math.Float32bits(p.ImpulseX))
	binary.BigEndian.PutUint32(buf[8:], math.Float32bits(p.ImpulseZ))
	binary.BigEndian.PutUint32(buf[12:], uint32(p.CapIndex))
	binary.BigEndian.PutUint32(buf[16:], uint32(p.Expiry))
	binary.BigEndian.PutUint32(buf[20:], uint32(p.ShotsRemaining))
	binary.BigEndian.PutUint32(buf[24:], uint32(p.TurnClock))
	return buf
}

// Decode unpacks a 28-byte frame. Field values are not validated.
func Decode(buf [PduSize]byte) MovePdu {
	return MovePdu{
		Frame:          int32(binary.BigEndian.Uint32(buf[0:])),
		ImpulseX:       math.Float32frombits(binary.BigEndian.Uint32(buf[4:])),
		ImpulseZ:       math.Float32frombits(binary.BigEndian.Uint32(buf[8:])),
		CapIndex:       int32(binary.BigEndian.Uint32(buf[12:])),
		Expiry:         ExpiryKind(binary.BigEndian.Uint32(buf[16:])),
		ShotsRemaining: int32(binary.BigEndian.Uint32(buf[20:])),
		TurnClock:      int32(binary.BigEndian.Uint32(buf[24:])),
	}
}

func (p MovePdu) MarshalBinary() ([]byte, error) {
	buf := p.Encode()
	return buf[:], nil
}

// UnmarshalBinary decodes the first PduSize bytes of data.
func (p *MovePdu) UnmarshalBinary(data []byte) error {
	if len(data) < PduSize {
		return ErrShortPdu
	}
	var buf [PduSize]byte
	copy(buf[:], data)
	*p = Decode(buf)
	return nil
}

// IsShotsOnly reports whether the pdu only carries an updated shot count.
func (p MovePdu) IsShotsOnly() bool {
	return p.ShotsRemaining > 0
}

// WritePdu writes exactly one frame to w.
func WritePdu(w io.Writer, p MovePdu) error {
	buf := p.Encode()
	if _, err := w.Write(buf[:]); err != nil {
		return fmt.Errorf("write move pdu: %w", err)
	}
	return nil
}

// ReadPdu blocks until a whole frame has been read from r.
func ReadPdu(r io.Reader) (MovePdu, error) {
	var buf [PduSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return MovePdu{}, err
	}
	return Decode(buf), nil
}
