package messaging

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

const (
	// MaxMessageSize is the maximum allowed message size (1MB), in both
	// directions
	MaxMessageSize = 1024 * 1024
)

// ErrResponseTooLarge is returned by WriteMessage when the encoded response
// exceeds MaxMessageSize. Nothing is written in that case.
var ErrResponseTooLarge = errors.New("response too large")

// Message represents a native messaging request from the extension
type Message struct {
	Action   string `json:"action"`
	FilePath string `json:"filePath,omitempty"`
	FileName string `json:"fileName,omitempty"`
}

// LauncherInfo describes one launcher to the extension
type LauncherInfo struct {
	ID         int64    `json:"id"`
	Name       string   `json:"name"`
	Icon       string   `json:"icon,omitempty"` // PNG data URL
	Extensions []string `json:"extensions,omitempty"`
}

// Size is an icon size in pixels
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Response represents a response to send back to the extension
type Response struct {
	Success    bool           `json:"success"`
	Error      string         `json:"error,omitempty"`
	Message    string         `json:"message,omitempty"`
	Launcher   *LauncherInfo  `json:"launcher,omitempty"`
	Launchers  []LauncherInfo `json:"launchers,omitempty"`
	Extensions []string       `json:"extensions,omitempty"`
	IconSize   *Size          `json:"iconSize,omitempty"`
}

// ReadMessage reads a length-prefixed JSON message from the given reader.
// Chrome's native messaging protocol uses a 32-bit little-endian length prefix.
func ReadMessage(r io.Reader) (*Message, error) {
	var length uint32
	if err := binary.Read(r, binary.LittleEndian, &length); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("failed to read message length: %w", err)
	}

	if length == 0 {
		return nil, fmt.Errorf("invalid message length: 0")
	}
	if length > MaxMessageSize {
		return nil, fmt.Errorf("message too large: %d bytes (max %d)", length, MaxMessageSize)
	}

	buf := make([]byte, length)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, fmt.Errorf("failed to read message body: %w", err)
	}

	var msg Message
	if err := json.Unmarshal(buf, &msg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal message: %w", err)
	}

	return &msg, nil
}

// WriteMessage writes a length-prefixed JSON response to the given writer.
// Chrome's native messaging protocol uses a 32-bit little-endian length prefix.
func WriteMessage(w io.Writer, resp Response) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("failed to marshal response: %w", err)
	}
	if len(data) > MaxMessageSize {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrResponseTooLarge, len(data), MaxMessageSize)
	}

	length := uint32(len(data))
	if err := binary.Write(w, binary.LittleEndian, length); err != nil {
		return fmt.Errorf("failed to write message length: %w", err)
	}

	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write message body: %w", err)
	}

	return nil
}
