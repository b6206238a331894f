package main

import (
	"errors"
	"fmt"

	"github.com/BertoldVdb/minver-tools/macho"
	"github.com/BertoldVdb/minver-tools/macho/mview"
)

type MinVerCmd struct {
	File    string `arg:"" name:"file" help:"Mach-O image to inspect or patch."`
	Version string `arg:"" name:"version" help:"New minimum OS version (X.Y.Z)." optional:""`
	SDK     string `arg:"" name:"sdk" help:"New SDK version (X.Y.Z)." optional:""`

	Diff bool `optional:"" help:"Show a hexdump of the patched load command."`
}

func (m *MinVerCmd) Run(c *Context) error {
	if (m.Version == "") != (m.SDK == "") {
		return errors.New("expected either no versions or both a version and an sdk")
	}

	var update *macho.Update
	if m.Version != "" {
		update = &macho.Update{
			Version: m.Version,
			SDK:     m.SDK,
		}
	}

	result, err := macho.EditFile(m.File, c.config, update)
	if c.json {
		if perr := c.printResultJSON(result, err); perr != nil {
			return perr
		}
		return err
	}

	/* The current values are shown even if the write fails later on */
	if result.Before != nil {
		c.printReport("Found", result.Before)
	}

	if err != nil {
		var editErr *macho.EditError
		if errors.As(err, &editErr) && editErr.State >= macho.StatePatched {
			return fmt.Errorf("%s may have been modified: %w", m.File, err)
		}
		return err
	}

	if result.After == nil {
		return nil
	}

	c.printReport("Patched", result.After)
	if m.Diff {
		return c.printDiff(m.File, result)
	}
	return nil
}

func (c *Context) printDiff(path string, result *macho.Result) error {
	view, err := mview.Open(path, false)
	if err != nil {
		return err
	}
	defer view.Close()

	cmd := result.After.Command
	data := view.Bytes()
	if cmd.Offset+int(cmd.Size) > len(data) {
		return fmt.Errorf("%s shrunk while patching", path)
	}
	record := data[cmd.Offset : cmd.Offset+int(cmd.Size)]

	var before [8]byte
	macho.ByteOrder.PutUint32(before[:], result.Before.Values.Version.Packed())
	macho.ByteOrder.PutUint32(before[4:], result.Before.Values.SDK.Packed())

	fmt.Fprint(c.out, hexdump(cmd.Offset, record, func(i int) bool {
		p := i - macho.LoadCommandHeaderSize
		return p >= 0 && p < len(before) && record[i] != before[p]
	}))
	return nil
}
