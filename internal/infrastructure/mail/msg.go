package mail

import (
	"encoding/binary"
	"fmt"
	"strings"
	"time"
	"unicode/utf16"
)

// Outlook .msg files are CFB (compound file binary) containers holding
// MAPI property streams. This reader implements just enough of the
// format to lift the message properties out: header, FAT, directory
// tree and the mini stream for small streams.

const (
	sectorEndOfChain = 0xFFFFFFFE
	sectorFree       = 0xFFFFFFFF

	dirEntrySize = 128
	typeStorage  = 1
	typeStream   = 2
	typeRoot     = 5
)

var cfbSignature = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}

// MAPI property tags carried as UTF-16 string streams.
const (
	propSubject      = "0037001F"
	propBody         = "1000001F"
	propSenderName   = "0C1A001F"
	propSenderEmail  = "5D01001F"
	propSenderSMTP   = "0C1F001F"
	propDisplayTo    = "0E04001F"
	propDisplayCc    = "0E03001F"
	propDisplayBcc   = "0E02001F"
	propMessageID    = "1035001F"
	propAttachName   = "3707001F"
	propAttachShort  = "3704001F"
	propAttachMime   = "370E001F"
	propAttachData   = "37010102"
	propSubmitTime   = 0x00390040
	propertiesStream = "__properties_version1.0"
)

type dirEntry struct {
	name        string
	objectType  byte
	left        uint32
	right       uint32
	child       uint32
	startSector uint32
	size        uint64
}

type cfbFile struct {
	data       []byte
	sectorSize int
	miniCutoff uint32
	fat        []uint32
	miniFAT    []uint32
	dir        []dirEntry
	miniStream []byte
}

// parseMsg reads an Outlook .msg compound file into a Message.
func parseMsg(data []byte) (*Message, error) {
	f, err := openCFB(data)
	if err != nil {
		return nil, err
	}

	root := f.dir[0]
	topLevel := f.children(root.child)

	msg := &Message{}
	msg.Subject = f.stringProp(topLevel, propSubject)
	msg.Body = f.stringProp(topLevel, propBody)
	msg.MessageID = f.stringProp(topLevel, propMessageID)

	from := Address{Name: f.stringProp(topLevel, propSenderName)}
	if email := f.stringProp(topLevel, propSenderSMTP); email != "" {
		from.Email = email
	} else {
		from.Email = f.stringProp(topLevel, propSenderEmail)
	}
	if from.Name != "" || from.Email != "" {
		msg.From = from
	}
	msg.To = splitDisplayNames(f.stringProp(topLevel, propDisplayTo))
	msg.Cc = splitDisplayNames(f.stringProp(topLevel, propDisplayCc))
	msg.Bcc = splitDisplayNames(f.stringProp(topLevel, propDisplayBcc))

	if t, ok := f.submitTime(topLevel); ok {
		msg.Date = t
	}

	for _, idx := range topLevel {
		e := &f.dir[idx]
		if e.objectType != typeStorage || !strings.HasPrefix(e.name, "__attach_version1.0_") {
			continue
		}
		attach := f.children(e.child)
		a := Attachment{
			Filename:    f.stringProp(attach, propAttachName),
			ContentType: f.stringProp(attach, propAttachMime),
		}
		if a.Filename == "" {
			a.Filename = f.stringProp(attach, propAttachShort)
		}
		if data, ok := f.streamByName(attach, "__substg1.0_"+propAttachData); ok {
			a.Size = int64(len(data))
		}
		if a.Filename != "" {
			msg.Attachments = append(msg.Attachments, a)
		}
	}
	return msg, nil
}

func openCFB(data []byte) (*cfbFile, error) {
	if len(data) < 512 || string(data[:8]) != string(cfbSignature) {
		return nil, fmt.Errorf("not a compound file")
	}

	sectorShift := binary.LittleEndian.Uint16(data[30:])
	if sectorShift != 9 && sectorShift != 12 {
		return nil, fmt.Errorf("unsupported sector size shift %d", sectorShift)
	}
	f := &cfbFile{
		data:       data,
		sectorSize: 1 << sectorShift,
		miniCutoff: binary.LittleEndian.Uint32(data[56:]),
	}

	if err := f.readFAT(); err != nil {
		return nil, err
	}
	if err := f.readDirectory(binary.LittleEndian.Uint32(data[48:])); err != nil {
		return nil, err
	}
	f.readMiniFAT(
		binary.LittleEndian.Uint32(data[60:]),
		binary.LittleEndian.Uint32(data[64:]),
	)

	// the root entry's stream is the mini stream
	if len(f.dir) > 0 && f.dir[0].objectType == typeRoot {
		f.miniStream = f.readChain(f.dir[0].startSector, f.dir[0].size)
	}
	return f, nil
}

func (f *cfbFile) sector(n uint32) ([]byte, error) {
	off := (int(n) + 1) * f.sectorSize
	if off < 0 || off+f.sectorSize > len(f.data) {
		return nil, fmt.Errorf("sector %d out of range", n)
	}
	return f.data[off : off+f.sectorSize], nil
}

// readFAT concatenates the FAT sectors listed in the header DIFAT and
// any chained DIFAT sectors.
func (f *cfbFile) readFAT() error {
	var fatSectors []uint32
	for i := 0; i < 109; i++ {
		s := binary.LittleEndian.Uint32(f.data[76+i*4:])
		if s == sectorFree || s == sectorEndOfChain {
			break
		}
		fatSectors = append(fatSectors, s)
	}

	entriesPerSector := f.sectorSize / 4
	difat := binary.LittleEndian.Uint32(f.data[68:])
	for difat != sectorEndOfChain && difat != sectorFree {
		sect, err := f.sector(difat)
		if err != nil {
			return err
		}
		for i := 0; i < entriesPerSector-1; i++ {
			s := binary.LittleEndian.Uint32(sect[i*4:])
			if s == sectorFree || s == sectorEndOfChain {
				continue
			}
			fatSectors = append(fatSectors, s)
		}
		difat = binary.LittleEndian.Uint32(sect[(entriesPerSector-1)*4:])
	}

	for _, s := range fatSectors {
		sect, err := f.sector(s)
		if err != nil {
			return err
		}
		for i := 0; i < entriesPerSector; i++ {
			f.fat = append(f.fat, binary.LittleEndian.Uint32(sect[i*4:]))
		}
	}
	return nil
}

func (f *cfbFile) readMiniFAT(start, count uint32) {
	s := start
	for i := uint32(0); i < count && s != sectorEndOfChain && s != sectorFree; i++ {
		sect, err := f.sector(s)
		if err != nil {
			return
		}
		for j := 0; j < f.sectorSize/4; j++ {
			f.miniFAT = append(f.miniFAT, binary.LittleEndian.Uint32(sect[j*4:]))
		}
		if int(s) >= len(f.fat) {
			return
		}
		s = f.fat[s]
	}
}

func (f *cfbFile) readDirectory(start uint32) error {
	s := start
	for s != sectorEndOfChain && s != sectorFree {
		sect, err := f.sector(s)
		if err != nil {
			return err
		}
		for off := 0; off+dirEntrySize <= len(sect); off += dirEntrySize {
			raw := sect[off : off+dirEntrySize]
			nameLen := binary.LittleEndian.Uint16(raw[64:])
			if nameLen < 2 || nameLen > 64 {
				f.dir = append(f.dir, dirEntry{})
				continue
			}
			f.dir = append(f.dir, dirEntry{
				name:        decodeUTF16(raw[:nameLen-2]),
				objectType:  raw[66],
				left:        binary.LittleEndian.Uint32(raw[68:]),
				right:       binary.LittleEndian.Uint32(raw[72:]),
				child:       binary.LittleEndian.Uint32(raw[76:]),
				startSector: binary.LittleEndian.Uint32(raw[116:]),
				size:        binary.LittleEndian.Uint64(raw[120:]),
			})
		}
		if int(s) >= len(f.fat) {
			break
		}
		s = f.fat[s]
	}
	if len(f.dir) == 0 {
		return fmt.Errorf("compound file has no directory")
	}
	return nil
}

// children flattens the red-black sibling tree under a directory node.
func (f *cfbFile) children(node uint32) []int {
	var out []int
	var walk func(n uint32)
	seen := map[uint32]bool{}
	walk = func(n uint32) {
		if n == sectorFree || int(n) >= len(f.dir) || seen[n] {
			return
		}
		seen[n] = true
		walk(f.dir[n].left)
		out = append(out, int(n))
		walk(f.dir[n].right)
	}
	walk(node)
	return out
}

func (f *cfbFile) readChain(start uint32, size uint64) []byte {
	var out []byte
	s := start
	for s != sectorEndOfChain && s != sectorFree && uint64(len(out)) < size {
		sect, err := f.sector(s)
		if err != nil {
			return out
		}
		out = append(out, sect...)
		if int(s) >= len(f.fat) {
			break
		}
		s = f.fat[s]
	}
	if uint64(len(out)) > size {
		out = out[:size]
	}
	return out
}

func (f *cfbFile) readMiniChain(start uint32, size uint64) []byte {
	var out []byte
	s := start
	for s != sectorEndOfChain && s != sectorFree && uint64(len(out)) < size {
		off := int(s) * 64
		if off+64 > len(f.miniStream) {
			break
		}
		out = append(out, f.miniStream[off:off+64]...)
		if int(s) >= len(f.miniFAT) {
			break
		}
		s = f.miniFAT[s]
	}
	if uint64(len(out)) > size {
		out = out[:size]
	}
	return out
}

func (f *cfbFile) readStream(e *dirEntry) []byte {
	if e.objectType != typeRoot && uint32(e.size) < f.miniCutoff {
		return f.readMiniChain(e.startSector, e.size)
	}
	return f.readChain(e.startSector, e.size)
}

func (f *cfbFile) streamByName(indices []int, name string) ([]byte, bool) {
	for _, idx := range indices {
		e := &f.dir[idx]
		if e.objectType == typeStream && e.name == name {
			return f.readStream(e), true
		}
	}
	return nil, false
}

// stringProp reads a UTF-16 string property stream by tag.
func (f *cfbFile) stringProp(indices []int, tag string) string {
	data, ok := f.streamByName(indices, "__substg1.0_"+tag)
	if !ok {
		return ""
	}
	return decodeUTF16(data)
}

// submitTime reads the client submit time from the fixed-length
// properties stream. The value is a Windows FILETIME.
func (f *cfbFile) submitTime(indices []int) (time.Time, bool) {
	data, ok := f.streamByName(indices, propertiesStream)
	if !ok || len(data) < 32 {
		return time.Time{}, false
	}

	// 32-byte header on the message object, then 16-byte records
	for off := 32; off+16 <= len(data); off += 16 {
		tag := binary.LittleEndian.Uint32(data[off:])
		if tag != propSubmitTime {
			continue
		}
		filetime := binary.LittleEndian.Uint64(data[off+8:])
		return filetimeToTime(filetime), true
	}
	return time.Time{}, false
}

// filetimeToTime converts 100ns ticks since 1601-01-01 UTC.
func filetimeToTime(ft uint64) time.Time {
	const epochDelta = 116444736000000000 // ticks between 1601 and 1970
	if ft < epochDelta {
		return time.Time{}
	}
	ns := int64(ft-epochDelta) * 100
	return time.Unix(0, ns).UTC()
}

func decodeUTF16(b []byte) string {
	u := make([]uint16, 0, len(b)/2)
	for i := 0; i+1 < len(b); i += 2 {
		u = append(u, binary.LittleEndian.Uint16(b[i:]))
	}
	return strings.TrimRight(string(utf16.Decode(u)), "\x00")
}

// splitDisplayNames breaks an Outlook display list ("A; B; C") into
// addresses. Display names carry no SMTP address.
func splitDisplayNames(display string) []Address {
	if strings.TrimSpace(display) == "" {
		return nil
	}
	var out []Address
	for _, part := range strings.Split(display, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if strings.Contains(part, "@") {
			out = append(out, Address{Email: part})
		} else {
			out = append(out, Address{Name: part})
		}
	}
	return out
}
