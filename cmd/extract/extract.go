package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/foomo/blocks/markup"
	"github.com/foomo/blocks/schema"
)

func main() {
	flagHelp := flag.Bool("help", false, "show help")
	flagSelector := flag.String("selector", "", "extract from the first node matching this selector instead of the whole document")
	flagDump := flag.Bool("dump", false, "dump the extracted record")
	flag.Parse()

	if len(flag.Args()) != 2 || *flagHelp {
		fmt.Println("foomo blocks extract - extract an attribute record from markup with a block schema")
		fmt.Println("usage", os.Args[0], "path/to/schema.yml", "path/to/doc.html|doc.md")
		flag.PrintDefaults()
		os.Exit(1)
	}

	schemaFile := flag.Arg(0)
	docFile := flag.Arg(1)

	fmt.Println("loading schema", schemaFile)
	s, errLoad := schema.LoadFile(schemaFile)
	if errLoad != nil {
		fmt.Println("could not load schema", errLoad)
		os.Exit(1)
	}

	docBytes, errRead := os.ReadFile(docFile)
	if errRead != nil {
		fmt.Println("could not read document", errRead)
		os.Exit(1)
	}
	var root markup.Node
	var errParse error
	switch strings.ToLower(filepath.Ext(docFile)) {
	case ".md", ".markdown":
		root, errParse = markup.FromMarkdown(docBytes)
	default:
		root, errParse = markup.ParseString(string(docBytes))
	}
	if errParse != nil {
		fmt.Println("could not parse document", errParse)
		os.Exit(1)
	}

	if *flagSelector != "" {
		n, ok := root.First(*flagSelector)
		if !ok {
			fmt.Println("no node matches", *flagSelector)
			os.Exit(2)
		}
		root = markup.Wrap(n)
	}

	record := schema.Extract(s, root)
	schema.Print(os.Stdout, s, record)
	if *flagDump {
		spew.Dump(record)
	}
}
