package main

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/term"

	"github.com/cbegin/gooey-go"
)

// runKeys turns the terminal into a drum pad until q, Ctrl-C or ctx ends.
func runKeys(ctx context.Context, stage *gooey.Stage) error {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return fmt.Errorf("--keys needs an interactive terminal")
	}
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return err
	}
	defer term.Restore(fd, oldState)

	fmt.Print("k kick  s snare  h hihat  t tom  o open/closed  space play/stop  q quit\r\n")

	keys := make(chan byte)
	go func() {
		buf := make([]byte, 1)
		for {
			n, err := os.Stdin.Read(buf)
			if err != nil {
				close(keys)
				return
			}
			if n == 1 {
				keys <- buf[0]
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case b, ok := <-keys:
			if !ok {
				return nil
			}
			switch b {
			case 'k':
				stage.TriggerKick()
			case 's':
				stage.TriggerSnare()
			case 'h':
				stage.TriggerHiHat()
			case 't':
				stage.TriggerTom()
			case 'o':
				stage.HiHat().SetOpen(!stage.HiHat().Open())
			case ' ':
				if stage.IsPlaying() {
					stage.Stop()
				} else {
					stage.Play()
				}
			case 'q', 0x03:
				return nil
			}
		}
	}
}
