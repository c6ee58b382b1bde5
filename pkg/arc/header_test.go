package arc

import "testing"

func TestHeaderEncodingLittleEndian(t *testing.T) {
	t.Parallel()

	h := Header{Version: 5, DataOffset: 0x0102030405060708, BigEndian: true}
	var b [headerSize]byte
	if !encodeHeader(b[:], h) {
		t.Fatalf("encode failed")
	}

	if string(b[0:4]) != MagicARC {
		t.Fatalf("magic: % x", b[0:4])
	}
	// Fixed fields are little-endian regardless of the payload order.
	if b[4] != 5 || b[5] != 0 || b[6] != 0 || b[7] != 0 {
		t.Fatalf("version bytes: % x", b[4:8])
	}
	want := [8]byte{0x08, 0x07, 0x06, 0x05, 0x04, 0x03, 0x02, 0x01}
	for i, v := range want {
		if b[8+i] != v {
			t.Fatalf("data offset bytes: % x", b[8:16])
		}
	}
	if b[16] != 1 {
		t.Fatalf("endian byte: %d", b[16])
	}
	if b[17] != 0 || b[18] != 0 || b[19] != 0 {
		t.Fatalf("reserved bytes: % x", b[17:20])
	}

	got, ok := decodeHeader(b[:])
	if !ok {
		t.Fatalf("decode failed")
	}
	if got != h {
		t.Fatalf("round trip: %+v != %+v", got, h)
	}
}

func TestDecodeHeaderRejects(t *testing.T) {
	t.Parallel()

	var b [headerSize]byte
	if !encodeHeader(b[:], Header{Version: 1, DataOffset: headerSize}) {
		t.Fatalf("encode failed")
	}

	if _, ok := decodeHeader(b[:headerSize-1]); ok {
		t.Fatalf("short buffer accepted")
	}

	bad := b
	bad[0] = 'X'
	if _, ok := decodeHeader(bad[:]); ok {
		t.Fatalf("bad magic accepted")
	}
}

func TestHeaderValid(t *testing.T) {
	t.Parallel()

	cases := []struct {
		h    Header
		want bool
	}{
		{Header{Version: 1, DataOffset: headerSize}, true},
		{Header{Version: CurrentVersion, DataOffset: 4096}, true},
		{Header{Version: 0, DataOffset: headerSize}, false},
		{Header{Version: CurrentVersion + 1, DataOffset: headerSize}, false},
		{Header{Version: 1, DataOffset: headerSize - 1}, false},
	}
	for i, tc := range cases {
		if got := tc.h.Valid(); got != tc.want {
			t.Errorf("case %d: Valid() = %v, want %v", i, got, tc.want)
		}
	}
}

func TestHeaderVersionGates(t *testing.T) {
	t.Parallel()

	v1 := Header{Version: 1}
	if v1.HasEngineString() || v1.HasPlatform() || v1.HasEndianFlag() || v1.HasScriptRefs() {
		t.Fatalf("v1 should gate everything off")
	}

	v3 := Header{Version: VersionPlatform}
	if !v3.HasEngineString() || !v3.HasPlatform() {
		t.Fatalf("v3 should carry engine string and platform")
	}
	if v3.HasEndianFlag() || v3.HasScriptRefs() {
		t.Fatalf("v3 should not carry endian flag or script refs")
	}

	v5 := Header{Version: CurrentVersion}
	if !v5.HasEndianFlag() || !v5.HasScriptRefs() {
		t.Fatalf("v5 should carry every gated section")
	}
}
