package directexit

import (
	"log"
	"os"
)

func main() {
	log.Fatal("allowed in main")
	os.Exit(0)
}

func init() {
	os.Exit(1) // want `os.Exit is forbidden outside main function`
}
