// parser.go - top-level RIFF/sfbk decoding into a flattened Bank.

package sf2

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Load reads a complete .sf2 file from r (size bytes long) and returns the
// decoded, flattened Bank. Global zones have already been merged into their
// siblings and every sample is a signed float32 in [-1, 1], so the result
// satisfies exactly the invariants the synth package's resolver assumes.
func Load(r io.ReaderAt, size int64) (*Bank, error) {
	root, _, err := readChunkHeader(r, 0)
	if err != nil {
		return nil, err
	}
	if root.tag() != "RIFF" || root.name() != "sfbk" {
		return nil, ErrNotRIFF
	}
	if root.offset+root.size > size {
		return nil, fmt.Errorf("%w: RIFF length exceeds file size", ErrTruncated)
	}

	var (
		haveInfo, haveSdta, havePdta bool
		info                         Info
		wavetable                    []float32
		pdtaChunks                   = make(map[string]chunk, 9)
	)

	err = children(r, root, func(c chunk) error {
		switch c.name() {
		case "INFO":
			haveInfo = true
			return parseInfo(r, c, &info)
		case "sdta":
			haveSdta = true
			wt, err := parseSdta(r, c)
			if err != nil {
				return err
			}
			wavetable = wt
			return nil
		case "pdta":
			havePdta = true
			return children(r, c, func(sub chunk) error {
				pdtaChunks[sub.tag()] = sub
				return nil
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !haveInfo || !haveSdta || !havePdta {
		return nil, fmt.Errorf("%w: missing one of INFO/sdta/pdta", ErrMissingChunk)
	}

	for _, tag := range []string{"phdr", "pbag", "pmod", "pgen", "inst", "ibag", "imod", "igen", "shdr"} {
		if _, ok := pdtaChunks[tag]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingChunk, tag)
		}
	}

	phdrData, err := readAll(r, pdtaChunks["phdr"])
	if err != nil {
		return nil, err
	}
	pbagData, err := readAll(r, pdtaChunks["pbag"])
	if err != nil {
		return nil, err
	}
	pmodData, err := readAll(r, pdtaChunks["pmod"])
	if err != nil {
		return nil, err
	}
	pgenData, err := readAll(r, pdtaChunks["pgen"])
	if err != nil {
		return nil, err
	}
	instData, err := readAll(r, pdtaChunks["inst"])
	if err != nil {
		return nil, err
	}
	ibagData, err := readAll(r, pdtaChunks["ibag"])
	if err != nil {
		return nil, err
	}
	imodData, err := readAll(r, pdtaChunks["imod"])
	if err != nil {
		return nil, err
	}
	igenData, err := readAll(r, pdtaChunks["igen"])
	if err != nil {
		return nil, err
	}
	shdrData, err := readAll(r, pdtaChunks["shdr"])
	if err != nil {
		return nil, err
	}

	phdr, err := decodePresetHeaders(phdrData)
	if err != nil {
		return nil, err
	}
	pbag, err := decodeBags(pbagData, "pbag")
	if err != nil {
		return nil, err
	}
	pmod, err := decodeModulators(pmodData, "pmod")
	if err != nil {
		return nil, err
	}
	pgen, err := decodeGenerators(pgenData, "pgen")
	if err != nil {
		return nil, err
	}
	inst, err := decodeInstruments(instData)
	if err != nil {
		return nil, err
	}
	ibag, err := decodeBags(ibagData, "ibag")
	if err != nil {
		return nil, err
	}
	imod, err := decodeModulators(imodData, "imod")
	if err != nil {
		return nil, err
	}
	igen, err := decodeGenerators(igenData, "igen")
	if err != nil {
		return nil, err
	}
	shdr, err := decodeSampleHeaders(shdrData)
	if err != nil {
		return nil, err
	}

	if len(pbag) < 2 || len(ibag) < 2 {
		return nil, fmt.Errorf("%w: pbag/ibag must contain at least one zone plus a terminator", ErrTruncated)
	}

	instruments, err := buildInstrumentZones(inst, ibag, igen, imod)
	if err != nil {
		return nil, err
	}
	presets, err := buildPresetZones(phdr, pbag, pgen, pmod)
	if err != nil {
		return nil, err
	}

	samples := buildSampleHeaders(shdr)

	return &Bank{
		Info:        info,
		Wavetable:   wavetable,
		Samples:     samples,
		Instruments: instruments,
		Presets:     presets,
	}, nil
}

func buildSampleHeaders(shdr []rawSampleHeader) []SampleHeader {
	if len(shdr) == 0 {
		return nil
	}
	out := make([]SampleHeader, 0, len(shdr)-1)
	for _, s := range shdr[:len(shdr)-1] {
		out = append(out, SampleHeader{
			Name:            cString(s.Name[:]),
			Start:           int(s.Start),
			End:             int(s.End),
			LoopStart:       int(s.LoopStart),
			LoopEnd:         int(s.LoopEnd),
			SampleRate:      int(s.SampleRate),
			OriginalPitch:   s.OriginalPitch,
			PitchCorrection: s.PitchCorrection,
			SampleType:      SampleType(s.SampleType),
			SampleLink:      int(s.SampleLink),
		})
	}
	return out
}

func parseInfo(r io.ReaderAt, c chunk, info *Info) error {
	return children(r, c, func(sub chunk) error {
		data, err := readAll(r, sub)
		if err != nil {
			return err
		}
		switch sub.tag() {
		case "ifil":
			if len(data) >= 4 {
				info.SoundFontVersionMajor = binary.LittleEndian.Uint16(data[0:2])
				info.SoundFontVersionMinor = binary.LittleEndian.Uint16(data[2:4])
			}
		case "INAM":
			info.Name = cString(data)
		case "IPRD":
			info.ProductName = cString(data)
		case "IENG":
			info.Engine = cString(data)
		case "ICOP":
			info.Copyright = cString(data)
		case "ICMT":
			info.Comment = cString(data)
		case "ISFT":
			info.SoftwareUsed = cString(data)
		}
		return nil
	})
}

// parseSdta decodes the sdta LIST's smpl (and optional sm24) sub-chunks
// into a normalized float32 wavetable buffer.
func parseSdta(r io.ReaderAt, c chunk) ([]float32, error) {
	var smpl, sm24 []byte
	err := children(r, c, func(sub chunk) error {
		data, err := readAll(r, sub)
		if err != nil {
			return err
		}
		switch sub.tag() {
		case "smpl":
			smpl = data
		case "sm24":
			sm24 = data
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(smpl)%2 != 0 {
		return nil, fmt.Errorf("%w: smpl length %d is odd", ErrTruncated, len(smpl))
	}

	n := len(smpl) / 2
	wavetable := make([]float32, n)
	has24 := len(sm24) == n
	for i := 0; i < n; i++ {
		v16 := int16(binary.LittleEndian.Uint16(smpl[i*2 : i*2+2]))
		if has24 {
			v24 := int32(v16)<<8 | int32(sm24[i])
			wavetable[i] = float32(v24) / 8388608.0
		} else {
			wavetable[i] = float32(v16) / 32767.0
		}
	}
	return wavetable, nil
}
