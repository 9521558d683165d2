// records.go - fixed-size binary records for the nine pdta sub-chunks

package sf2

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

const (
	presetHeaderSize    = 38
	bagSize             = 4
	modulatorRecordSize = 10
	generatorRecordSize = 4
	instrumentSize      = 22
	sampleHeaderSize    = 46
)

// rawPresetHeader is the wire layout of one phdr record.
type rawPresetHeader struct {
	Name          [20]byte
	PresetNumber  uint16
	Bank          uint16
	PresetBagNdx  uint16
	Library       uint32
	Genre         uint32
	Morphology    uint32
}

// rawBag is the wire layout of one pbag/ibag record.
type rawBag struct {
	GeneratorIndex uint16
	ModulatorIndex uint16
}

// rawModulator is the wire layout of one pmod/imod record.
type rawModulator struct {
	SourceOper       uint16
	DestOper         uint16
	Amount           int16
	AmountSourceOper uint16
	TransformOper    uint16
}

// rawGenerator is the wire layout of one pgen/igen record. Amount is stored
// raw; interpretation (signed, unsigned, range pair) is generator-type
// directed, exactly as GeneratorMap does at the domain-type level.
type rawGenerator struct {
	Oper   uint16
	Amount int16
}

// rawInstrument is the wire layout of one inst record.
type rawInstrument struct {
	Name    [20]byte
	BagNdx uint16
}

// rawSampleHeader is the wire layout of one shdr record.
type rawSampleHeader struct {
	Name            [20]byte
	Start           uint32
	End             uint32
	LoopStart       uint32
	LoopEnd         uint32
	SampleRate      uint32
	OriginalPitch   uint8
	PitchCorrection int8
	SampleLink      uint16
	SampleType      uint16
}

func cString(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}

// decodeRecords reads a chunk's payload as a flat array of fixed-size
// records via encoding/binary, verifying the payload is an exact multiple
// of recordSize.
func decodeRecords(data []byte, recordSize int, chunkName string, into func(rec []byte) error) error {
	if len(data)%recordSize != 0 {
		return fmt.Errorf("%w: %s length %d is not a multiple of %d", ErrTruncated, chunkName, len(data), recordSize)
	}
	for off := 0; off < len(data); off += recordSize {
		if err := into(data[off : off+recordSize]); err != nil {
			return err
		}
	}
	return nil
}

func readAll(r io.ReaderAt, c chunk) ([]byte, error) {
	buf := make([]byte, c.size)
	if _, err := r.ReadAt(buf, c.offset); err != nil {
		return nil, fmt.Errorf("sf2: reading %s: %w", c.tag(), err)
	}
	return buf, nil
}

func decodePresetHeaders(data []byte) ([]rawPresetHeader, error) {
	var out []rawPresetHeader
	err := decodeRecords(data, presetHeaderSize, "phdr", func(rec []byte) error {
		var h rawPresetHeader
		if err := binary.Read(bytes.NewReader(rec), binary.LittleEndian, &h); err != nil {
			return err
		}
		out = append(out, h)
		return nil
	})
	return out, err
}

func decodeBags(data []byte, chunkName string) ([]rawBag, error) {
	var out []rawBag
	err := decodeRecords(data, bagSize, chunkName, func(rec []byte) error {
		out = append(out, rawBag{
			GeneratorIndex: binary.LittleEndian.Uint16(rec[0:2]),
			ModulatorIndex: binary.LittleEndian.Uint16(rec[2:4]),
		})
		return nil
	})
	return out, err
}

func decodeModulators(data []byte, chunkName string) ([]rawModulator, error) {
	var out []rawModulator
	err := decodeRecords(data, modulatorRecordSize, chunkName, func(rec []byte) error {
		var m rawModulator
		if err := binary.Read(bytes.NewReader(rec), binary.LittleEndian, &m); err != nil {
			return err
		}
		out = append(out, m)
		return nil
	})
	return out, err
}

func decodeGenerators(data []byte, chunkName string) ([]rawGenerator, error) {
	var out []rawGenerator
	err := decodeRecords(data, generatorRecordSize, chunkName, func(rec []byte) error {
		out = append(out, rawGenerator{
			Oper:   binary.LittleEndian.Uint16(rec[0:2]),
			Amount: int16(binary.LittleEndian.Uint16(rec[2:4])),
		})
		return nil
	})
	return out, err
}

func decodeInstruments(data []byte) ([]rawInstrument, error) {
	var out []rawInstrument
	err := decodeRecords(data, instrumentSize, "inst", func(rec []byte) error {
		var in rawInstrument
		if err := binary.Read(bytes.NewReader(rec), binary.LittleEndian, &in); err != nil {
			return err
		}
		out = append(out, in)
		return nil
	})
	return out, err
}

func decodeSampleHeaders(data []byte) ([]rawSampleHeader, error) {
	var out []rawSampleHeader
	err := decodeRecords(data, sampleHeaderSize, "shdr", func(rec []byte) error {
		var s rawSampleHeader
		if err := binary.Read(bytes.NewReader(rec), binary.LittleEndian, &s); err != nil {
			return err
		}
		out = append(out, s)
		return nil
	})
	return out, err
}
