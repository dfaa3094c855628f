package util

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// Writer buffers output from worker goroutines in a strings.Builder. When
// Flush or Close is called the buffer is emptied and sent to the designated
// output writer over channel c, so that modules compiled in parallel (-t>1)
// never interleave partial writes to the same destination.
type Writer struct {
	sb strings.Builder
	c  chan string
}

// ---------------------
// ----- Constants -----
// ---------------------

var wc chan string     // Write channel used for receiving data from worker threads.
var cc chan error      // Close channel used by main thread to signal to end write operations.
var wg *sync.WaitGroup // synchronises when I/O finished writing to output.

// ---------------------
// ----- Functions -----
// ---------------------

// Write writes a format string to the Writer's buffer.
func (w *Writer) Write(format string, args ...interface{}) {
	w.sb.WriteString(fmt.Sprintf(format, args...))
}

// WriteString writes a plain string to the Writer's buffer.
func (w *Writer) WriteString(s string) {
	w.sb.WriteString(s)
}

// Flush empties the Writer's buffer and sends the buffer data to the
// designated output writer over the Writer's channel.
func (w *Writer) Flush() {
	w.c <- w.sb.String()
	w.sb = strings.Builder{}
}

// Close flushes the Writer's buffer and then releases the Writer.
func (w *Writer) Close() {
	w.Flush()
	w.c = nil
	wg.Done()
}

// NewWriter returns a new Writer for use by a worker goroutine to write
// strings concurrently to the output stream. Must not be called before the
// main thread has called ListenWrite.
func NewWriter() Writer {
	wg.Add(1)
	return Writer{c: wc}
}

// ReadSource reads L0 source code from path, or from stdin if path is empty.
func ReadSource(path string) (string, error) {
	if len(path) > 0 {
		b, err := os.ReadFile(path)
		return string(b), err
	}

	c := make(chan string)
	cerr := make(chan error)
	go func(c chan string, cerr chan error) {
		defer close(c)
		defer close(cerr)
		reader := bufio.NewReader(os.Stdin)
		text, err := reader.ReadString(0)
		if err == nil || len(text) > 0 {
			c <- text
		} else {
			cerr <- err
		}
	}(c, cerr)

	select {
	case <-time.After(500 * time.Millisecond):
		return "", errors.New("expected input from stdin, got none")
	case s := <-c:
		return s, nil
	}
}

// ListenWrite listens for worker thread outputs. Received data is written to
// f if non-nil, otherwise to stdout. Loops until Close is called.
func ListenWrite(threads int, f *os.File, wgg *sync.WaitGroup) {
	wg = wgg
	if threads > 1 {
		wc = make(chan string, threads+1)
	} else {
		wc = make(chan string, 1)
	}
	cc = make(chan error, 1)
	var w *bufio.Writer
	if f != nil {
		w = bufio.NewWriter(f)
	} else {
		w = bufio.NewWriter(os.Stdout)
	}

	go func(wc chan string, cc chan error) {
		defer close(wc)
		defer close(cc)
		for {
			select {
			case s := <-wc:
				if _, err := w.WriteString(s); err != nil {
					fmt.Println(err)
				}
				if err := w.Flush(); err != nil {
					fmt.Println(err)
				}
			case <-cc:
				return
			}
		}
	}(wc, cc)
}

// Close sends the termination signal to the writer listener.
func Close() {
	cc <- nil
}
