package sf2

import (
	"bytes"
	"encoding/binary"
	"testing"
)

// chunkBuilder assembles a RIFF chunk tree byte-for-byte, the way a real
// .sf2 file is laid out, so Load can be exercised without a vendored
// binary fixture.
type chunkBuilder struct {
	buf bytes.Buffer
}

func le16(v uint16) []byte {
	b := make([]byte, 2)
	binary.LittleEndian.PutUint16(b, v)
	return b
}

func le32(v uint32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, v)
	return b
}

func cstr20(s string) []byte {
	b := make([]byte, 20)
	copy(b, s)
	return b
}

// writeChunk writes a leaf chunk: 4-byte tag, length, payload (padded to even).
func writeChunk(tag string, payload []byte) []byte {
	var b bytes.Buffer
	b.WriteString(tag)
	b.Write(le32(uint32(len(payload))))
	b.Write(payload)
	if len(payload)%2 != 0 {
		b.WriteByte(0)
	}
	return b.Bytes()
}

// writeList writes a LIST chunk containing the given already-encoded sub-chunks.
func writeList(form string, subchunks ...[]byte) []byte {
	var payload bytes.Buffer
	payload.WriteString(form)
	for _, c := range subchunks {
		payload.Write(c)
	}
	return writeChunk("LIST", payload.Bytes())
}

func buildMinimalSoundFont() []byte {
	// INFO
	ifil := writeChunk("ifil", append(le16(2), le16(1)...))
	inam := writeChunk("INAM", []byte("test bank\x00"))
	info := writeList("INFO", ifil, inam)

	// sdta: 8 mono int16 samples, ramping up then down.
	var smplPayload bytes.Buffer
	for _, v := range []int16{0, 1000, 2000, 3000, 4000, 3000, 2000, 1000} {
		smplPayload.Write(le16(uint16(v)))
	}
	smpl := writeChunk("smpl", smplPayload.Bytes())
	sdta := writeList("sdta", smpl)

	// shdr: one real sample header + terminator
	var shdrPayload bytes.Buffer
	shdrPayload.Write(cstr20("lead"))
	shdrPayload.Write(le32(0))          // start
	shdrPayload.Write(le32(8))          // end
	shdrPayload.Write(le32(2))          // loop start
	shdrPayload.Write(le32(6))          // loop end
	shdrPayload.Write(le32(44100))      // sample rate
	shdrPayload.WriteByte(69)           // original pitch (A4)
	shdrPayload.WriteByte(0)            // pitch correction
	shdrPayload.Write(le16(0))          // sample link
	shdrPayload.Write(le16(1))          // sample type: mono
	shdrPayload.Write(cstr20("EOS"))    // terminator record
	shdrPayload.Write(make([]byte, 26)) // remaining terminator bytes (all zero)
	shdr := writeChunk("shdr", shdrPayload.Bytes())

	// igen: one instrument zone referencing sample 0
	var igenPayload bytes.Buffer
	igenPayload.Write(le16(uint16(GenSampleID)))
	igenPayload.Write(le16(0))
	igen := writeChunk("igen", igenPayload.Bytes())

	imod := writeChunk("imod", nil)

	// ibag: one zone + terminator, both pointing at igen index 0/1 and imod index 0/0
	var ibagPayload bytes.Buffer
	ibagPayload.Write(le16(0)) // zone: igen[0:1]
	ibagPayload.Write(le16(0))
	ibagPayload.Write(le16(1)) // terminator: bounds igen at 1
	ibagPayload.Write(le16(0))
	ibag := writeChunk("ibag", ibagPayload.Bytes())

	// inst: one instrument + terminator
	var instPayload bytes.Buffer
	instPayload.Write(cstr20("lead instrument"))
	instPayload.Write(le16(0))
	instPayload.Write(cstr20("EOI"))
	instPayload.Write(le16(1))
	inst := writeChunk("inst", instPayload.Bytes())

	// pgen: one preset zone referencing instrument 0
	var pgenPayload bytes.Buffer
	pgenPayload.Write(le16(uint16(GenInstrument)))
	pgenPayload.Write(le16(0))
	pgen := writeChunk("pgen", pgenPayload.Bytes())

	pmod := writeChunk("pmod", nil)

	// pbag: one zone + terminator
	var pbagPayload bytes.Buffer
	pbagPayload.Write(le16(0))
	pbagPayload.Write(le16(0))
	pbagPayload.Write(le16(1))
	pbagPayload.Write(le16(0))
	pbag := writeChunk("pbag", pbagPayload.Bytes())

	// phdr: one preset + terminator
	var phdrPayload bytes.Buffer
	phdrPayload.Write(cstr20("lead preset"))
	phdrPayload.Write(le16(0)) // preset number
	phdrPayload.Write(le16(0)) // bank
	phdrPayload.Write(le16(0)) // preset bag index
	phdrPayload.Write(le32(0))
	phdrPayload.Write(le32(0))
	phdrPayload.Write(le32(0))
	phdrPayload.Write(cstr20("EOP"))
	phdrPayload.Write(le16(0))
	phdrPayload.Write(le16(0))
	phdrPayload.Write(le16(1))
	phdrPayload.Write(le32(0))
	phdrPayload.Write(le32(0))
	phdrPayload.Write(le32(0))
	phdr := writeChunk("phdr", phdrPayload.Bytes())

	pdta := writeList("pdta", phdr, pbag, pmod, pgen, inst, ibag, imod, igen, shdr)

	var riffPayload bytes.Buffer
	riffPayload.WriteString("sfbk")
	riffPayload.Write(info)
	riffPayload.Write(sdta)
	riffPayload.Write(pdta)
	return writeChunk("RIFF", riffPayload.Bytes())
}

func TestLoadMinimalSoundFont(t *testing.T) {
	data := buildMinimalSoundFont()
	bank, err := Load(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if bank.Info.Name != "test bank" {
		t.Errorf("Info.Name = %q, want %q", bank.Info.Name, "test bank")
	}
	if bank.Info.SoundFontVersionMajor != 2 || bank.Info.SoundFontVersionMinor != 1 {
		t.Errorf("SoundFont version = %d.%d, want 2.1", bank.Info.SoundFontVersionMajor, bank.Info.SoundFontVersionMinor)
	}
	if len(bank.Wavetable) != 8 {
		t.Fatalf("wavetable length = %d, want 8", len(bank.Wavetable))
	}
	if got, want := bank.Wavetable[1], float32(1000)/32767.0; got != want {
		t.Errorf("wavetable[1] = %v, want %v", got, want)
	}

	if len(bank.Samples) != 1 {
		t.Fatalf("samples = %d, want 1 (terminator excluded)", len(bank.Samples))
	}
	if bank.Samples[0].Name != "lead" || bank.Samples[0].End != 8 {
		t.Errorf("unexpected sample header: %+v", bank.Samples[0])
	}

	if len(bank.Instruments) != 1 {
		t.Fatalf("instruments = %d, want 1 (terminator excluded)", len(bank.Instruments))
	}
	inst := bank.Instruments[0]
	if len(inst.Zones) != 1 {
		t.Fatalf("instrument zones = %d, want 1", len(inst.Zones))
	}
	if inst.Zones[0].SampleIndex != 0 {
		t.Errorf("instrument zone sample index = %d, want 0", inst.Zones[0].SampleIndex)
	}
	if !inst.Zones[0].Keys.Contains(69) {
		t.Errorf("instrument zone key range should default to full range and contain 69")
	}
	// The default instrument generator seed should still be present
	// alongside the file's own igen entry.
	if !inst.Zones[0].Generators.Has(GenInitialFilterFc) {
		t.Errorf("expected default generator GenInitialFilterFc to be seeded")
	}

	preset, ok := bank.Presets[PresetID{Bank: 0, Number: 0}]
	if !ok {
		t.Fatalf("preset (0,0) not found")
	}
	if len(preset.Zones) != 1 {
		t.Fatalf("preset zones = %d, want 1", len(preset.Zones))
	}
	if preset.Zones[0].InstrumentIndex != 0 {
		t.Errorf("preset zone instrument index = %d, want 0", preset.Zones[0].InstrumentIndex)
	}
}

func TestLoadRejectsNonRIFF(t *testing.T) {
	data := []byte("not a soundfont at all, just some bytes")
	if _, err := Load(bytes.NewReader(data), int64(len(data))); err == nil {
		t.Fatal("expected an error for non-RIFF input")
	}
}
