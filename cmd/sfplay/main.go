// sfplay is a minimal demonstration CLI: load a SoundFont, play one note.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/waveform-audio/sf2synth/sf2"
	"github.com/waveform-audio/sf2synth/synth"
)

func main() {
	path := flag.String("sf2", "", "path to a .sf2 file")
	sampleRate := flag.Int("sample-rate", 44100, "output sample rate")
	channel := flag.Int("channel", 0, "MIDI channel")
	bank := flag.Int("bank", 0, "preset bank")
	preset := flag.Int("preset", 0, "preset number")
	key := flag.Int("key", 60, "MIDI key number")
	velocity := flag.Int("velocity", 100, "note-on velocity")
	duration := flag.Float64("duration", 2, "note duration in seconds")
	release := flag.Float64("release", 1.5, "release tail in seconds")
	flag.Parse()

	if *path == "" {
		fmt.Fprintln(os.Stderr, "usage: sfplay -sf2 <file.sf2> [flags]")
		os.Exit(2)
	}

	f, err := os.Open(*path)
	if err != nil {
		log.Fatalf("open %s: %v", *path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		log.Fatalf("stat %s: %v", *path, err)
	}

	bankData, err := sf2.Load(f, info.Size())
	if err != nil {
		log.Fatalf("load %s: %v", *path, err)
	}
	log.Printf("loaded %q (%d samples, %d instruments, %d presets)",
		bankData.Info.Name, len(bankData.Samples), len(bankData.Instruments), len(bankData.Presets))

	cfg := synth.DefaultConfig(*sampleRate)
	engine, err := synth.New(cfg, bankData)
	if err != nil {
		log.Fatalf("configure synthesizer: %v", err)
	}

	if !engine.ConfigureChannel(*channel, uint8(*bank), uint8(*preset)) {
		log.Fatalf("preset (%d, %d) not found", *bank, *preset)
	}

	player, err := newOtoPlayer(*sampleRate)
	if err != nil {
		log.Fatalf("open audio output: %v", err)
	}
	player.setup(engine)
	player.Start()
	defer player.Close()

	engine.NoteOn(*channel, uint8(*key), uint8(*velocity))
	time.Sleep(time.Duration(*duration * float64(time.Second)))
	engine.NoteOff(*channel, uint8(*key))
	time.Sleep(time.Duration(*release * float64(time.Second)))
}
