package dictionary

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/bastiangx/wordlens/internal/utils"
	"github.com/charmbracelet/log"
	"github.com/klauspost/compress/zstd"
	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"
)

// FileFormat represents different dictionary file formats
type FileFormat int

const (
	FormatUnknown FileFormat = iota
	FormatJSON               // {"key": {"translation": ...}}
	FormatYAML               // same shape as JSON
	FormatTOML               // one table per key
	FormatMsgPack            // msgpack map of maps
)

// compressedExt marks a zstd compressed source, e.g. words.json.zst.
const compressedExt = ".zst"

// FormatInfo contains metadata about a dictionary file format
type FormatInfo struct {
	Format      FileFormat
	Description string
	Extensions  []string
	MinSize     int64 // Minimum expected file size in bytes
}

var supportedFormats = map[FileFormat]FormatInfo{
	FormatJSON: {
		Format:      FormatJSON,
		Description: "JSON Dictionary",
		Extensions:  []string{".json"},
		MinSize:     2, // {}
	},
	FormatYAML: {
		Format:      FormatYAML,
		Description: "YAML Dictionary",
		Extensions:  []string{".yaml", ".yml"},
		MinSize:     2,
	},
	FormatTOML: {
		Format:      FormatTOML,
		Description: "TOML Dictionary",
		Extensions:  []string{".toml"},
		MinSize:     1,
	},
	FormatMsgPack: {
		Format:      FormatMsgPack,
		Description: "MessagePack Dictionary",
		Extensions:  []string{".msgpack", ".mpk"},
		MinSize:     1, // fixmap header
	},
}

func (f FileFormat) String() string {
	if info, ok := supportedFormats[f]; ok {
		return info.Description
	}
	return "Unknown"
}

// splitExt returns the format extension and whether the file is compressed.
func splitExt(filename string) (string, bool) {
	name := strings.ToLower(filepath.Base(filename))
	compressed := strings.HasSuffix(name, compressedExt)
	if compressed {
		name = strings.TrimSuffix(name, compressedExt)
	}
	return filepath.Ext(name), compressed
}

// formatForExt maps an extension to its format.
func formatForExt(ext string) FileFormat {
	for format, info := range supportedFormats {
		for _, e := range info.Extensions {
			if e == ext {
				return format
			}
		}
	}
	return FormatUnknown
}

// IsDictionaryFile reports whether the name has a supported extension.
func IsDictionaryFile(name string) bool {
	ext, _ := splitExt(name)
	return formatForExt(ext) != FormatUnknown
}

// SourceID derives a dictionary id from a file name by dropping the
// directory and every recognized extension.
func SourceID(filename string) string {
	base := filepath.Base(filename)
	if strings.HasSuffix(strings.ToLower(base), compressedExt) {
		base = base[:len(base)-len(compressedExt)]
	}
	ext := filepath.Ext(base)
	if formatForExt(strings.ToLower(ext)) != FormatUnknown {
		base = base[:len(base)-len(ext)]
	}
	return base
}

// ValidateFileFormat checks if a file matches the expected format
func ValidateFileFormat(filename string, expectedFormat FileFormat) error {
	fileInfo, err := os.Stat(filename)
	if err != nil {
		return fmt.Errorf("failed to stat file %s: %w", filename, err)
	}
	if fileInfo.IsDir() {
		return fmt.Errorf("%s is a directory", filename)
	}

	formatInfo, exists := supportedFormats[expectedFormat]
	if !exists {
		return fmt.Errorf("unknown format: %v", expectedFormat)
	}

	ext, compressed := splitExt(filename)
	if formatForExt(ext) != expectedFormat {
		return fmt.Errorf("file %s has invalid extension %s for format %s (expected: %v)",
			filename, ext, formatInfo.Description, formatInfo.Extensions)
	}

	// compressed sizes say nothing about the payload
	if !compressed && fileInfo.Size() < formatInfo.MinSize {
		return fmt.Errorf("file %s is too small (%d bytes) for format %s (minimum: %d bytes)",
			filename, fileInfo.Size(), formatInfo.Description, formatInfo.MinSize)
	}

	log.Debugf("Dictionary file %s validated as %s (compressed=%t)", filename, formatInfo.Description, compressed)
	return nil
}

// DetectFileFormat detects the format of a file from its extension and
// validates it.
func DetectFileFormat(filename string) (FileFormat, bool, error) {
	ext, compressed := splitExt(filename)
	format := formatForExt(ext)
	if format == FormatUnknown {
		return FormatUnknown, false, fmt.Errorf("unable to detect format for file %s", filename)
	}
	if err := ValidateFileFormat(filename, format); err != nil {
		return FormatUnknown, false, err
	}
	return format, compressed, nil
}

// GetFormatInfo returns information about a specific format
func GetFormatInfo(format FileFormat) (FormatInfo, bool) {
	info, exists := supportedFormats[format]
	return info, exists
}

// ListSupportedFormats returns all supported formats ordered by format id
func ListSupportedFormats() []FormatInfo {
	formats := make([]FormatInfo, 0, len(supportedFormats))
	for _, info := range supportedFormats {
		formats = append(formats, info)
	}
	sort.Slice(formats, func(i, j int) bool {
		return formats[i].Format < formats[j].Format
	})
	return formats
}

// FormatForName returns the format implied by a file name's extension and
// whether the name carries the compressed suffix. No file access happens.
func FormatForName(name string) (FileFormat, bool) {
	ext, compressed := splitExt(name)
	return formatForExt(ext), compressed
}

// SupportedExtensions lists every recognized extension in format order.
func SupportedExtensions() []string {
	var exts []string
	for _, info := range ListSupportedFormats() {
		exts = append(exts, info.Extensions...)
	}
	return exts
}

// ConvertFile rewrites the dictionary at src in the format implied by dst's
// extension (a trailing .zst compresses it) and returns the number of
// entries written.
func ConvertFile(src, dst string) (int, error) {
	if filepath.Clean(utils.GetAbsolutePath(src)) == filepath.Clean(utils.GetAbsolutePath(dst)) {
		return 0, fmt.Errorf("source and destination are the same file: %s", src)
	}
	inFormat, inCompressed, err := DetectFileFormat(src)
	if err != nil {
		return 0, err
	}
	outFormat, outCompressed := FormatForName(dst)
	info, ok := GetFormatInfo(outFormat)
	if !ok {
		return 0, fmt.Errorf("unsupported output format for %s (supported: %s, optionally with %s)",
			dst, strings.Join(SupportedExtensions(), " "), compressedExt)
	}

	in, err := os.Open(src)
	if err != nil {
		return 0, fmt.Errorf("failed to open dictionary %s: %w", src, err)
	}
	defer in.Close()
	raw, err := Decode(in, inFormat, inCompressed)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", src, err)
	}

	out, err := os.Create(dst)
	if err != nil {
		return 0, fmt.Errorf("failed to create %s: %w", dst, err)
	}
	if err := Encode(out, outFormat, outCompressed, raw); err != nil {
		out.Close()
		return 0, fmt.Errorf("encode %s: %w", dst, err)
	}
	if err := out.Close(); err != nil {
		return 0, err
	}
	log.Debugf("Converted %s (%s) to %s (%s, compressed=%t)", src, inFormat, dst, info.Description, outCompressed)
	return len(raw), nil
}

// Decode reads a whole source in the given format. compressed sources are
// unwrapped with zstd first.
func Decode(r io.Reader, format FileFormat, compressed bool) (map[string]map[string]any, error) {
	if compressed {
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("open zstd stream: %w", err)
		}
		defer dec.Close()
		r = dec
	}

	raw := make(map[string]map[string]any)
	var err error
	switch format {
	case FormatJSON:
		err = json.NewDecoder(r).Decode(&raw)
	case FormatYAML:
		err = yaml.NewDecoder(r).Decode(&raw)
		if err == io.EOF {
			err = nil
		}
	case FormatTOML:
		_, err = toml.NewDecoder(r).Decode(&raw)
	case FormatMsgPack:
		err = msgpack.NewDecoder(r).Decode(&raw)
	default:
		return nil, fmt.Errorf("unsupported format: %v", format)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", format, err)
	}
	return raw, nil
}

// Encode writes entries in the given format, optionally zstd compressed. It
// is the inverse of Decode and is used to convert dictionaries.
func Encode(w io.Writer, format FileFormat, compressed bool, raw map[string]map[string]any) error {
	if compressed {
		enc, err := zstd.NewWriter(w)
		if err != nil {
			return fmt.Errorf("open zstd stream: %w", err)
		}
		if err := encode(enc, format, raw); err != nil {
			enc.Close()
			return err
		}
		return enc.Close()
	}
	return encode(w, format, raw)
}

func encode(w io.Writer, format FileFormat, raw map[string]map[string]any) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(raw)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		if err := enc.Encode(raw); err != nil {
			return err
		}
		return enc.Close()
	case FormatTOML:
		return toml.NewEncoder(w).Encode(raw)
	case FormatMsgPack:
		return msgpack.NewEncoder(w).Encode(raw)
	}
	return fmt.Errorf("unsupported format: %v", format)
}
