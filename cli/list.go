package main

import (
	"fmt"

	"github.com/BertoldVdb/minver-tools/macho"
	"github.com/BertoldVdb/minver-tools/macho/mview"
	"github.com/fatih/color"
)

type ListCmd struct {
	File string `arg:"" name:"file" help:"Mach-O image to inspect."`
}

type jsonCommand struct {
	Index   int    `json:"index"`
	Offset  int    `json:"offset"`
	Command string `json:"command"`
	Code    uint32 `json:"code"`
	Size    uint32 `json:"size"`
}

func (l *ListCmd) Run(c *Context) error {
	view, err := mview.Open(l.File, false)
	if err != nil {
		return err
	}
	defer view.Close()

	hdr, cmds, err := macho.List(view.Bytes(), c.config.LogFunc)

	if c.json {
		out := []jsonCommand{}
		for i, m := range cmds {
			out = append(out, jsonCommand{
				Index:   i,
				Offset:  m.Offset,
				Command: m.Cmd.String(),
				Code:    uint32(m.Cmd),
				Size:    m.Size,
			})
		}
		if perr := c.printJSON(out); perr != nil {
			return perr
		}
		return err
	}

	if hdr != nil {
		fmt.Fprintf(c.out, "cpu %#x/%#x, filetype %d, %d load commands in %d bytes\n",
			hdr.CpuType, hdr.CpuSubtype, hdr.FileType, hdr.NCmds, hdr.SizeOfCmds)
	}

	green := color.New(color.FgGreen)
	for i, m := range cmds {
		line := fmt.Sprintf("%4d  %8d  %#08x  %-28s %6d", i, m.Offset, m.Offset, m.Cmd, m.Size)
		if m.Cmd == c.config.Command {
			green.Fprintln(c.out, line)
		} else {
			fmt.Fprintln(c.out, line)
		}
	}

	return err
}
