package directexit

import (
	"log"
	"os"
)

func resolveOrDie() {
	panic("no mapping") // want "panic is forbidden"
}

func exitOnStoreError() {
	log.Fatal("store unavailable") // want `log.Fatal is forbidden outside main function`
}

func hardStop() {
	os.Exit(1) // want `os.Exit is forbidden outside main function`
}

func everythingAtOnce() {
	panic("boom")             // want "panic is forbidden"
	log.Fatalf("fatal %d", 1) // want `log.Fatalf is forbidden outside main function`
	os.Exit(0)                // want `os.Exit is forbidden outside main function`
}
