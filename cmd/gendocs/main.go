package main

import (
	"flag"
	"log"
	"os"

	"github.com/spf13/cobra/doc"

	"github.com/lu-zhengda/pytestmap/internal/cli"
)

func main() {
	dir := flag.String("dir", "./docs/man", "output directory for man pages")
	flag.Parse()

	if err := os.MkdirAll(*dir, 0o755); err != nil {
		log.Fatal(err)
	}
	header := &doc.GenManHeader{
		Title:   "PYTESTMAP",
		Section: "1",
		Source:  "pytestmap",
	}
	if err := doc.GenManTree(cli.RootCmd(), header, *dir); err != nil {
		log.Fatal(err)
	}
}
