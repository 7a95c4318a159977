package store

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"sync"
)

const (
	opUpsert byte = 1
	opDelete byte = 2
)

// WAL is a per-collection write-ahead log. Every mutation is appended as a
// length-prefixed little-endian record and replayed on startup for anything
// newer than the last snapshot.
type WAL struct {
	mu     sync.Mutex
	file   *os.File
	writer *bufio.Writer
}

// OpenWAL opens (or creates) the log at path in append mode.
func OpenWAL(path string) (*WAL, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, fmt.Errorf("open wal: %w", err)
	}
	return &WAL{file: f, writer: bufio.NewWriter(f)}, nil
}

// AppendUpsert logs an insert-or-replace of a record.
func (w *WAL) AppendUpsert(rec VectorRecord) error {
	meta, err := json.Marshal(rec.Metadata)
	if err != nil {
		return fmt.Errorf("marshal wal metadata: %w", err)
	}
	return w.append(opUpsert, rec.ID, rec.Values, meta)
}

// AppendDelete logs a removal by ID.
func (w *WAL) AppendDelete(id string) error {
	return w.append(opDelete, id, nil, nil)
}

// Record layout: size(4) | op(1) | idLen(4) | id | vecLen(4) | vec | metaLen(4) | meta.
func (w *WAL) append(op byte, id string, vector []float32, meta []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	idBytes := []byte(id)
	vecBytes := uint32(len(vector) * 4)
	payload := 1 + 4 + uint32(len(idBytes)) + 4 + vecBytes + 4 + uint32(len(meta))

	if err := binary.Write(w.writer, binary.LittleEndian, payload); err != nil {
		return err
	}
	if err := w.writer.WriteByte(op); err != nil {
		return err
	}

	binary.Write(w.writer, binary.LittleEndian, uint32(len(idBytes)))
	w.writer.Write(idBytes)

	binary.Write(w.writer, binary.LittleEndian, vecBytes)
	buf := make([]byte, 4)
	for _, v := range vector {
		binary.LittleEndian.PutUint32(buf, math.Float32bits(v))
		w.writer.Write(buf)
	}

	binary.Write(w.writer, binary.LittleEndian, uint32(len(meta)))
	w.writer.Write(meta)

	return w.writer.Flush()
}

// Replay streams every record from the start of the log, dispatching each to
// the matching callback. The file position is restored to the end afterwards.
func (w *WAL) Replay(upsert func(rec VectorRecord), remove func(id string)) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, err := w.file.Seek(0, io.SeekStart); err != nil {
		return err
	}
	reader := bufio.NewReader(w.file)

	for {
		var size uint32
		if err := binary.Read(reader, binary.LittleEndian, &size); err != nil {
			if err == io.EOF {
				break
			}
			return fmt.Errorf("read wal record: %w", err)
		}

		op, err := reader.ReadByte()
		if err != nil {
			return err
		}

		var idLen uint32
		if err := binary.Read(reader, binary.LittleEndian, &idLen); err != nil {
			return err
		}
		idBytes := make([]byte, idLen)
		if _, err := io.ReadFull(reader, idBytes); err != nil {
			return err
		}

		var vecLen uint32
		if err := binary.Read(reader, binary.LittleEndian, &vecLen); err != nil {
			return err
		}
		vecRaw := make([]byte, vecLen)
		if _, err := io.ReadFull(reader, vecRaw); err != nil {
			return err
		}
		vector := make([]float32, vecLen/4)
		for i := range vector {
			vector[i] = math.Float32frombits(binary.LittleEndian.Uint32(vecRaw[i*4:]))
		}

		var metaLen uint32
		if err := binary.Read(reader, binary.LittleEndian, &metaLen); err != nil {
			return err
		}
		metaRaw := make([]byte, metaLen)
		if _, err := io.ReadFull(reader, metaRaw); err != nil {
			return err
		}

		switch op {
		case opUpsert:
			var meta map[string]string
			if len(metaRaw) > 0 {
				if err := json.Unmarshal(metaRaw, &meta); err != nil {
					return fmt.Errorf("decode wal metadata: %w", err)
				}
			}
			upsert(VectorRecord{ID: string(idBytes), Values: vector, Metadata: meta})
		case opDelete:
			remove(string(idBytes))
		}
	}

	// Back to the end so future appends go after the replayed tail.
	_, err := w.file.Seek(0, io.SeekEnd)
	return err
}

// Truncate discards the log contents, called after a snapshot has captured
// everything the log held.
func (w *WAL) Truncate() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.writer.Flush()
	if err := w.file.Truncate(0); err != nil {
		return err
	}
	_, err := w.file.Seek(0, io.SeekStart)
	return err
}

// Close flushes buffered records and closes the file.
func (w *WAL) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.writer.Flush()
	return w.file.Close()
}
