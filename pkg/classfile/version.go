package classfile

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/afero"
)

// Magic is the signature every class file starts with.
const Magic uint32 = 0xCAFEBABE

// HeaderSize is the number of bytes needed to decode a Version.
const HeaderSize = 8

// Version is the class file format version. Larger is newer.
type Version struct {
	Major uint16
	Minor uint16
}

// String renders the version as "major.minor".
func (v Version) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// Less orders versions by major then minor.
func (v Version) Less(other Version) bool {
	if v.Major != other.Major {
		return v.Major < other.Major
	}
	return v.Minor < other.Minor
}

// Packed returns the version as minor<<16 | major, the single integer form
// bytecode libraries use.
func (v Version) Packed() uint32 {
	return uint32(v.Minor)<<16 | uint32(v.Major)
}

// FormatError reports a header that does not carry the class file magic.
type FormatError struct {
	Path  string
	Magic uint32
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("classfile: %s is not a class file (magic 0x%08X)", e.Path, e.Magic)
}

// IOError reports a class file that could not be opened or whose header is
// truncated.
type IOError struct {
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("classfile: read %s: %v", e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// ReadVersion opens path and decodes the version from its header. Only the
// header is read; the file is closed on every path.
func ReadVersion(fsys afero.Fs, path string) (Version, error) {
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	file, err := fsys.Open(path)
	if err != nil {
		return Version{}, &IOError{Path: path, Err: err}
	}
	defer func() {
		_ = file.Close()
	}()

	version, err := DecodeVersion(file)
	if err != nil {
		var formatErr *FormatError
		if errors.As(err, &formatErr) {
			formatErr.Path = path
			return Version{}, formatErr
		}
		var ioErr *IOError
		if errors.As(err, &ioErr) {
			ioErr.Path = path
			return Version{}, ioErr
		}
		return Version{}, err
	}
	return version, nil
}

// DecodeVersion reads exactly HeaderSize bytes from r.
func DecodeVersion(r io.Reader) (Version, error) {
	var header [HeaderSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return Version{}, &IOError{Err: err}
	}
	magic := binary.BigEndian.Uint32(header[0:4])
	if magic != Magic {
		return Version{}, &FormatError{Magic: magic}
	}
	return Version{
		Minor: binary.BigEndian.Uint16(header[4:6]),
		Major: binary.BigEndian.Uint16(header[6:8]),
	}, nil
}

// EncodeHeader returns the header bytes for v.
func EncodeHeader(v Version) []byte {
	header := make([]byte, HeaderSize)
	binary.BigEndian.PutUint32(header[0:4], Magic)
	binary.BigEndian.PutUint16(header[4:6], v.Minor)
	binary.BigEndian.PutUint16(header[6:8], v.Major)
	return header
}
