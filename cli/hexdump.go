package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

const hexdumpWidth = 16

// hexdump renders data with addresses starting at offset. Bytes for which
// mark returns true are highlighted.
func hexdump(offset int, data []byte, mark func(i int) bool) string {
	var result strings.Builder
	red := color.New(color.FgRed, color.Bold)

	for base := 0; base < len(data); base += hexdumpWidth {
		var workHex strings.Builder
		var workASCII strings.Builder

		for i := 0; i < hexdumpWidth; i++ {
			index := base + i
			if index >= len(data) {
				workHex.WriteString("   ")
				workASCII.WriteString(" ")
			} else {
				m := data[index]
				c := m
				if c < 32 || c > 126 {
					c = '.'
				}

				if mark != nil && mark(index) {
					workHex.WriteString(red.Sprintf("%02x ", m))
					workASCII.WriteString(red.Sprintf("%c", c))
				} else {
					fmt.Fprintf(&workHex, "%02x ", m)
					workASCII.WriteByte(c)
				}
			}

			if i%8 == 7 {
				workHex.WriteString(" ")
			}
		}

		fmt.Fprintf(&result, "%08x  %s|%s|\n", offset+base, workHex.String(), workASCII.String())
	}

	return result.String()
}
