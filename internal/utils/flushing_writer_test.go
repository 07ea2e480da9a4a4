package utils_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ironclad-grc/ironclad/internal/utils"
)

type flushCountingWriter struct {
	buffer     bytes.Buffer
	flushCount int
}

func (writer *flushCountingWriter) Write(data []byte) (int, error) {
	return writer.buffer.Write(data)
}

func (writer *flushCountingWriter) Flush() error {
	writer.flushCount++
	return nil
}

func TestFlushingWriterFlushesAfterEveryWrite(t *testing.T) {
	underlyingWriter := &flushCountingWriter{}
	flushingWriter := utils.NewFlushingWriter(underlyingWriter)

	bytesWritten, writeError := flushingWriter.Write([]byte("first"))
	require.NoError(t, writeError)
	require.Equal(t, len("first"), bytesWritten)

	_, writeError = flushingWriter.Write([]byte("second"))
	require.NoError(t, writeError)

	require.Equal(t, "firstsecond", underlyingWriter.buffer.String())
	require.Equal(t, 2, underlyingWriter.flushCount)
}

func TestFlushingWriterPassesThroughPlainWriters(t *testing.T) {
	plainBuffer := &bytes.Buffer{}
	flushingWriter := utils.NewFlushingWriter(plainBuffer)

	_, writeError := flushingWriter.Write([]byte("content"))
	require.NoError(t, writeError)
	require.Equal(t, "content", plainBuffer.String())
}

func TestFlushingWriterAvoidsDoubleWrapping(t *testing.T) {
	wrappedOnce := utils.NewFlushingWriter(&bytes.Buffer{})
	wrappedTwice := utils.NewFlushingWriter(wrappedOnce)
	require.Same(t, wrappedOnce, wrappedTwice)
}

func TestFlushingWriterNilWriter(t *testing.T) {
	require.Nil(t, utils.NewFlushingWriter(nil))
}
