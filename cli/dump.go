package main

import (
	"fmt"

	"github.com/BertoldVdb/minver-tools/macho"
	"github.com/BertoldVdb/minver-tools/macho/mview"
)

type DumpCmd struct {
	File string `arg:"" name:"file" help:"Mach-O image to inspect."`
	All  bool   `optional:"" help:"Dump the header and every load command instead of only the selected one."`
}

func (d *DumpCmd) Run(c *Context) error {
	view, err := mview.Open(d.File, false)
	if err != nil {
		return err
	}
	defer view.Close()

	data := view.Bytes()
	result, err := macho.Edit(data, c.config, nil)
	if err != nil {
		return err
	}

	cmd := result.Before.Command
	start, end := cmd.Offset, cmd.Offset+int(cmd.Size)
	if d.All {
		start, end = 0, macho.HeaderSize+int(result.Header.SizeOfCmds)
	}

	payload := cmd.Offset + macho.LoadCommandHeaderSize
	fmt.Fprint(c.out, hexdump(start, data[start:end], func(i int) bool {
		addr := start + i
		return addr >= payload && addr < cmd.Offset+macho.VersionMinSize
	}))
	return nil
}
