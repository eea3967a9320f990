package main

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"io"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/reclaim/launchers/internal/config"
	"github.com/reclaim/launchers/internal/launcher"
	"github.com/reclaim/launchers/internal/messaging"
	"github.com/reclaim/launchers/internal/platform/platformtest"
)

func frame(t *testing.T, msgs ...messaging.Message) io.Reader {
	t.Helper()
	var buf bytes.Buffer
	for _, msg := range msgs {
		data, err := json.Marshal(msg)
		require.NoError(t, err)
		require.NoError(t, binary.Write(&buf, binary.LittleEndian, uint32(len(data))))
		buf.Write(data)
	}
	return &buf
}

func responses(t *testing.T, out *bytes.Buffer) []messaging.Response {
	t.Helper()
	var got []messaging.Response
	for out.Len() > 0 {
		var length uint32
		require.NoError(t, binary.Read(out, binary.LittleEndian, &length))
		var resp messaging.Response
		require.NoError(t, json.Unmarshal(out.Next(int(length)), &resp))
		got = append(got, resp)
	}
	return got
}

func newService(t *testing.T) *launcher.Service {
	t.Helper()
	fake := platformtest.New()
	editor := platformtest.NewProgram("Editor")
	fake.Associate(editor, ".txt")
	fake.Apps = []*platformtest.Program{editor}
	svc := launcher.New(fake)
	t.Cleanup(func() { _ = svc.Close() })
	return svc
}

func TestRunAnswersInOrder(t *testing.T) {
	svc := newService(t)
	in := frame(t,
		messaging.Message{Action: "ping"},
		messaging.Message{Action: "lookup", FileName: "a.txt"},
		messaging.Message{Action: "iconSize"},
		messaging.Message{Action: "bogus"},
	)
	var out bytes.Buffer

	require.NoError(t, run(context.Background(), in, &out, svc))

	got := responses(t, &out)
	require.Len(t, got, 4)
	require.Equal(t, "pong", got[0].Message)
	require.True(t, got[1].Success)
	require.Equal(t, "Editor", got[1].Launcher.Name)
	require.Equal(t, &messaging.Size{Width: 16, Height: 16}, got[2].IconSize)
	require.False(t, got[3].Success)
	require.Equal(t, "unknown", got[3].Error)
}

func TestRunStopsOnMalformedInput(t *testing.T) {
	svc := newService(t)
	in := bytes.NewReader([]byte{0, 0, 0, 0})

	err := run(context.Background(), in, io.Discard, svc)
	require.ErrorContains(t, err, "invalid message length")
}

func TestRunStopsWhenCancelled(t *testing.T) {
	svc := newService(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := run(ctx, frame(t, messaging.Message{Action: "ping"}), io.Discard, svc)
	require.ErrorIs(t, err, context.Canceled)
}

func TestSetupLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "host.log")
	logger, closeLog := setupLogger(config.LogConfig{Level: "debug", File: path})
	logger.Debug("hello")
	closeLog()

	require.FileExists(t, path)
}
