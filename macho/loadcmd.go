package macho

import "fmt"

// LoadCommandHeaderSize is the size of the (cmd, cmdsize) prefix shared by
// every load command.
const LoadCommandHeaderSize = 8

type LoadCmd uint32

type LoadCommand struct {
	Offset int /* Absolute file offset */
	Cmd    LoadCmd
	Size   uint32
}

// Scanner walks the load command list in file order. It is not restartable.
type Scanner struct {
	region  Region
	cursor  *Cursor
	count   uint32
	index   uint32
	pending int

	current LoadCommand
	err     error

	LogFunc LogFunc
}

// NewScanner prepares a scan over the load command area described by hdr.
// The area must lie entirely inside file.
func NewScanner(file Region, hdr *Header) (*Scanner, error) {
	end := uint64(HeaderSize) + uint64(hdr.SizeOfCmds)
	if end > uint64(file.GetLength()) {
		return nil, fmt.Errorf("%w: sizeofcmds %#x runs past end of file (length %#x)", ErrorCorruptRecord, hdr.SizeOfCmds, file.GetLength())
	}

	region := regionWrapPartial("load commands", file, HeaderSize, int(hdr.SizeOfCmds))
	return &Scanner{
		region: region,
		cursor: NewCursor(region, ByteOrder),
		count:  hdr.NCmds,
	}, nil
}

func (s *Scanner) log(level int, format string, param ...interface{}) {
	if s.LogFunc != nil {
		s.LogFunc(level, format, param...)
	}
}

// Next advances to the following load command. It returns false once all
// declared commands were visited or an error occurred, see Err.
func (s *Scanner) Next() bool {
	if s.err != nil || s.index >= s.count {
		return false
	}

	/* Skip the body of the previous command now that the caller is done with it */
	if s.pending > 0 {
		if err := s.cursor.Skip(s.pending); err != nil {
			s.err = fmt.Errorf("%w: %v", ErrorCorruptRecord, err)
			return false
		}
		s.pending = 0
	}

	start := s.cursor.Offset()
	cmd, err := s.cursor.ReadUint32()
	var size uint32
	if err == nil {
		size, err = s.cursor.ReadUint32()
	}
	if err != nil {
		s.err = fmt.Errorf("%w: load command %d truncated: %v", ErrorCorruptRecord, s.index, err)
		return false
	}

	_, fileOffset := RecursiveGetParentAddress(s.region, start)
	s.current.Offset = fileOffset
	s.current.Cmd = LoadCmd(cmd)
	s.current.Size = size

	if s.current.Size < LoadCommandHeaderSize {
		s.err = fmt.Errorf("%w: load command %d at %#x has size %d", ErrorCorruptRecord, s.index, fileOffset, s.current.Size)
		return false
	}
	if uint64(start)+uint64(s.current.Size) > uint64(s.region.GetLength()) {
		s.err = fmt.Errorf("%w: load command %d at %#x (size %d) extends past sizeofcmds", ErrorCorruptRecord, s.index, fileOffset, s.current.Size)
		return false
	}

	s.log(2, "Load command %d: %s at %#x, size %d", s.index, s.current.Cmd, fileOffset, s.current.Size)

	s.pending = int(s.current.Size) - LoadCommandHeaderSize
	s.index++
	return true
}

func (s *Scanner) Command() LoadCommand {
	return s.current
}

func (s *Scanner) Err() error {
	return s.err
}

// Visited returns how many load commands have been read so far.
func (s *Scanner) Visited() int {
	return int(s.index)
}

// Find scans forward until a command of type cmd is seen. Running out of
// commands is reported as found == false with a nil error.
func (s *Scanner) Find(cmd LoadCmd) (LoadCommand, bool, error) {
	for s.Next() {
		if s.current.Cmd == cmd {
			return s.current, true, nil
		}
	}
	return LoadCommand{}, false, s.err
}
