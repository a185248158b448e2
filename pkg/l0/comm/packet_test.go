package comm

import (
	"bytes"
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPacket(t *testing.T) {
	testCases := []struct {
		name   string
		packet Packet
		expect []byte
	}{
		{"ping", Packet{Cmd: CmdPing, Data: []byte{1, 2, 3, 4}}, []byte{0x05, 0x3e, 1, 2, 3, 4, 0x3f}},
		{"no data", Packet{Cmd: CmdStartSampling}, []byte{0x01, 0x41, 0x40}},
		{"one byte", Packet{Cmd: CmdSetTrigger, Data: []byte{0x80}}, []byte{0x02, 0x42, 0x80, 0xc0}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			b, err := tc.packet.Bytes()
			require.NoError(t, err)
			require.Equal(t, tc.expect, b)
			var buf bytes.Buffer
			n, err := tc.packet.WriteTo(&buf)
			require.NoError(t, err)
			require.Equal(t, tc.expect, buf.Bytes())
			require.EqualValues(t, len(tc.expect), n)
		})
	}
}

func TestPacketLengthBoundary(t *testing.T) {
	short := Packet{Cmd: CmdBufferSeg, Data: make([]byte, MaxShortLen-1)}
	b, err := short.Bytes()
	require.NoError(t, err)
	require.Equal(t, byte(0x7f), b[0])
	require.Equal(t, byte(CmdBufferSeg), b[1])
	require.Len(t, b, 1+1+126+1)

	long := Packet{Cmd: CmdBufferSeg, Data: make([]byte, MaxShortLen)}
	b, err = long.Bytes()
	require.NoError(t, err)
	require.Equal(t, []byte{0x80, 0x80}, b[:2])
	require.Equal(t, byte(CmdBufferSeg), b[2])
	require.Len(t, b, 2+1+127+1)

	for _, pkt := range []Packet{short, long} {
		var parser Parser
		b, _ := pkt.Bytes()
		var pr ParseResult
		for _, v := range b {
			pr = parser.Parse(v)
		}
		require.NoError(t, pr.Err)
		require.Equal(t, pkt.Data, pr.Packet.Data)
	}

	_, err = (&Packet{Data: make([]byte, MaxFrameLen-1)}).Bytes()
	require.NoError(t, err)
	_, err = (&Packet{Data: make([]byte, MaxFrameLen)}).Bytes()
	require.Equal(t, ErrPacketTooLarge, err)
}

func TestPacketRoundTrip(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	var parser Parser
	for i := 0; i < 500; i++ {
		size := rnd.Intn(DefaultMaxPayload)
		if i < 2 {
			size = i * (DefaultMaxPayload - 1)
		}
		pkt := Packet{Cmd: Command(rnd.Intn(256))}
		if size > 0 {
			pkt.Data = make([]byte, size)
			rnd.Read(pkt.Data)
		}
		b, err := pkt.Bytes()
		require.NoError(t, err)

		var sum byte
		for _, v := range b {
			sum ^= v
		}
		require.Zero(t, sum)

		var pr ParseResult
		for n, v := range b {
			pr = parser.Parse(v)
			if n+1 < len(b) {
				require.Nil(t, pr.Packet)
			}
		}
		require.NoError(t, pr.Err)
		require.Equal(t, &pkt, pr.Packet, "size %d", size)
	}
}

type flushRecorder struct {
	bytes.Buffer
	writes  int
	flushes int
	err     error
}

func (r *flushRecorder) Write(p []byte) (int, error) {
	r.writes++
	if r.err != nil {
		return 0, r.err
	}
	return r.Buffer.Write(p)
}

func (r *flushRecorder) Flush() error {
	r.flushes++
	return nil
}

func TestWritePacket(t *testing.T) {
	var rec flushRecorder
	require.NoError(t, WritePacket(&rec, CmdPing, 1, 2, 3, 4))
	require.Equal(t, 1, rec.writes)
	require.Equal(t, 1, rec.flushes)
	require.Equal(t, []byte{0x05, 0x3e, 1, 2, 3, 4, 0x3f}, rec.Bytes())

	ioErr := errors.New("device gone")
	rec = flushRecorder{err: ioErr}
	err := WritePacket(&rec, CmdStartSampling)
	require.True(t, errors.Is(err, ErrWrite))
	require.True(t, errors.Is(err, ioErr))
	var werr *WriteError
	require.True(t, errors.As(err, &werr))
	require.Equal(t, CmdStartSampling, werr.Cmd)
	require.Zero(t, rec.flushes)
}

func TestCommandString(t *testing.T) {
	require.Equal(t, "PING", CmdPing.String())
	require.Equal(t, "PARAMETERS_REPLY", CmdParametersReply.String())
	require.Equal(t, "0x99", Command(0x99).String())
}
