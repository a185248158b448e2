package comm

// DefaultMaxPayload is the payload capacity of a Parser unless configured.
const DefaultMaxPayload = 1024

// ParseResult indicates the result after one parsing step.
// At most one of Packet and Err is set.
type ParseResult struct {
	Packet *Packet
	Err    error
}

type parseState int

const (
	stateSize    parseState = iota // waiting for length (or resync marker)
	stateSize2                     // waiting for low byte of a long length
	stateCommand                   // waiting for command code
	statePayload                   // receiving payload
	stateCksum                     // waiting for checksum
	stateDiscard                   // skipping the rest of an oversized frame
)

var stateNames = [...]string{"SIZE", "SIZE2", "COMMAND", "PAYLOAD", "CKSUM", "DISCARD"}

func (s parseState) String() string {
	return stateNames[s]
}

// Parser decodes frames from bytes received.
// The zero value is ready to use with DefaultMaxPayload.
type Parser struct {
	// MaxPayload bounds the payload of a single frame.
	MaxPayload int

	state  parseState
	cksum  byte
	remain int
	cmd    Command
	buf    []byte
}

// Reset drops any partially decoded frame.
func (p *Parser) Reset() {
	p.state, p.cksum, p.remain = stateSize, 0, 0
	p.buf = p.buf[:0]
}

// Idle indicates the parser is between frames.
func (p *Parser) Idle() bool {
	return p.state == stateSize
}

// Parse consumes one byte.
func (p *Parser) Parse(b byte) (pr ParseResult) {
	if p.state == stateSize {
		p.cksum = 0
	}
	p.cksum ^= b

	switch p.state {
	case stateSize:
		if b == 0 {
			break
		}
		if b&longLenFlag != 0 {
			p.remain = int(b&0x7f) << 8
			p.state = stateSize2
			break
		}
		p.remain = int(b)
		p.startFrame()
	case stateSize2:
		p.remain += int(b)
		if p.remain == 0 {
			p.state = stateSize
			pr.Err = ErrInvalidLength
			break
		}
		p.startFrame()
	case stateCommand:
		p.cmd = Command(b)
		if p.remain--; p.remain == 0 {
			p.state = stateCksum
		} else {
			p.state = statePayload
		}
	case statePayload:
		if len(p.buf) >= p.maxPayload() {
			// skip the rest of the payload and the checksum.
			p.remain--
			p.state = stateDiscard
			pr.Err = ErrPayloadOverflow
			break
		}
		p.buf = append(p.buf, b)
		if p.remain--; p.remain == 0 {
			p.state = stateCksum
		}
	case stateCksum:
		p.state = stateSize
		if p.cksum != 0 {
			pr.Err = ErrChecksum
			break
		}
		pkt := &Packet{Cmd: p.cmd}
		if len(p.buf) > 0 {
			pkt.Data = append([]byte(nil), p.buf...)
		}
		pr.Packet = pkt
	case stateDiscard:
		if p.remain--; p.remain < 0 {
			p.state = stateSize
		}
	}
	return
}

func (p *Parser) startFrame() {
	p.buf = p.buf[:0]
	p.state = stateCommand
}

func (p *Parser) maxPayload() int {
	if p.MaxPayload > 0 {
		return p.MaxPayload
	}
	return DefaultMaxPayload
}
