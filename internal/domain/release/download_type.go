package release

import (
	"errors"
	"fmt"
	"strings"
)

// DownloadType selects which entry of the download catalog is tracked.
type DownloadType int

// Known download types. The zero value is invalid on purpose.
const (
	DownloadTypeUnknown DownloadType = iota
	DownloadTypeWindows
	DownloadTypeLinux
	DownloadTypePreviewWindows
	DownloadTypePreviewLinux
	DownloadTypeServerJar
)

// ErrUnknownDownloadType is returned when a download type name cannot be parsed.
var ErrUnknownDownloadType = errors.New("unknown download type")

// downloadTypeInfo binds a download type to its command line name and catalog token.
type downloadTypeInfo struct {
	name   string
	token  string
	binary string
}

//nolint:gochecknoglobals // Fixed vocabulary of the remote catalog.
var downloadTypes = map[DownloadType]downloadTypeInfo{
	DownloadTypeWindows:        {name: "windows", token: "serverBedrockWindows", binary: "bedrock_server.exe"},
	DownloadTypeLinux:          {name: "linux", token: "serverBedrockLinux", binary: "bedrock_server"},
	DownloadTypePreviewWindows: {name: "preview-windows", token: "serverBedrockPreviewWindows", binary: "bedrock_server.exe"},
	DownloadTypePreviewLinux:   {name: "preview-linux", token: "serverBedrockPreviewLinux", binary: "bedrock_server"},
	DownloadTypeServerJar:      {name: "server-jar", token: "serverJar"},
}

// DownloadTypes returns all valid download types in declaration order.
func DownloadTypes() []DownloadType {
	return []DownloadType{
		DownloadTypeWindows,
		DownloadTypeLinux,
		DownloadTypePreviewWindows,
		DownloadTypePreviewLinux,
		DownloadTypeServerJar,
	}
}

// DownloadTypeNames returns the command line names of all valid download types.
func DownloadTypeNames() []string {
	types := DownloadTypes()
	names := make([]string, 0, len(types))

	for _, t := range types {
		names = append(names, t.Name())
	}

	return names
}

// ParseDownloadType converts a command line name into a DownloadType.
// The catalog token itself (e.g. "serverBedrockLinux") is accepted as well.
func ParseDownloadType(s string) (DownloadType, error) {
	s = strings.TrimSpace(s)

	for _, t := range DownloadTypes() {
		info := downloadTypes[t]
		if strings.EqualFold(s, info.name) || s == info.token {
			return t, nil
		}
	}

	return DownloadTypeUnknown, fmt.Errorf("%q: %w (expected one of %s)",
		s, ErrUnknownDownloadType, strings.Join(DownloadTypeNames(), ", "))
}

// String renders the download type exactly as the remote catalog spells it.
func (t DownloadType) String() string {
	if info, ok := downloadTypes[t]; ok {
		return info.token
	}

	return "unknown"
}

// Name returns the command line name of the download type.
func (t DownloadType) Name() string {
	if info, ok := downloadTypes[t]; ok {
		return info.name
	}

	return "unknown"
}

// ServerExecutable returns the file name of the dedicated server binary shipped
// with this download type, or an empty string when there is none.
func (t DownloadType) ServerExecutable() string {
	return downloadTypes[t].binary
}

// IsValid reports whether t is one of the known download types.
func (t DownloadType) IsValid() bool {
	_, ok := downloadTypes[t]

	return ok
}
