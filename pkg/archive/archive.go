// Package archive persists a compressed tree: the (binary DAG, label
// table) pair inside a zstd stream. The layout is internal to this tool;
// only a round trip through [Write] and [Read] is guaranteed.
//
// Inside the zstd stream:
//
//	magic "TDAG" + version byte
//	label table        (length-prefixed UTF-8, assignment order)
//	uvarint node count (excluding the sentinel)
//	per node: uvarint left, uvarint right, uvarint label+1, byte mergeType+1
//
// Child references and the post-order id discipline of the builder are
// validated on read, so a corrupt or crafted archive is rejected instead
// of producing an inconsistent DAG.
package archive

import (
	"bufio"
	"encoding/binary"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"

	"github.com/matzehuels/topdag/pkg/errors"
	"github.com/matzehuels/topdag/pkg/labels"
	"github.com/matzehuels/topdag/pkg/topdag"
	"github.com/matzehuels/topdag/pkg/tree"
)

var magic = []byte{'T', 'D', 'A', 'G', 1}

// countingWriter tracks bytes written through it, for reporting the
// archive size in bits the way the rest of the stats are reported.
type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

// Write serializes the DAG and labels to w and returns the number of
// bits written after zstd compression.
func Write(w io.Writer, d *topdag.Dag, lab *labels.Labels) (int64, error) {
	cw := &countingWriter{w: w}
	zw, err := zstd.NewWriter(cw)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeInternal, err, "init zstd")
	}
	bw := bufio.NewWriter(zw)

	if _, err := bw.Write(magic); err != nil {
		return 0, errors.Wrap(errors.ErrCodeIO, err, "write archive")
	}
	if err := lab.Write(bw); err != nil {
		return 0, errors.Wrap(errors.ErrCodeIO, err, "write label table")
	}

	var buf [binary.MaxVarintLen64]byte
	putUvarint := func(v uint64) error {
		n := binary.PutUvarint(buf[:], v)
		_, err := bw.Write(buf[:n])
		return err
	}

	if err := putUvarint(uint64(d.NumNodes())); err != nil {
		return 0, errors.Wrap(errors.ErrCodeIO, err, "write archive")
	}
	for _, n := range d.Nodes[1:] {
		if err := putUvarint(uint64(n.Left)); err != nil {
			return 0, errors.Wrap(errors.ErrCodeIO, err, "write archive")
		}
		if err := putUvarint(uint64(n.Right)); err != nil {
			return 0, errors.Wrap(errors.ErrCodeIO, err, "write archive")
		}
		if err := putUvarint(uint64(n.Label + 1)); err != nil {
			return 0, errors.Wrap(errors.ErrCodeIO, err, "write archive")
		}
		if err := bw.WriteByte(byte(n.Type + 1)); err != nil {
			return 0, errors.Wrap(errors.ErrCodeIO, err, "write archive")
		}
	}

	if err := bw.Flush(); err != nil {
		return 0, errors.Wrap(errors.ErrCodeIO, err, "write archive")
	}
	if err := zw.Close(); err != nil {
		return 0, errors.Wrap(errors.ErrCodeIO, err, "finish archive")
	}
	return 8 * cw.n, nil
}

// WriteFile writes an archive to path.
func WriteFile(path string, d *topdag.Dag, lab *labels.Labels) (int64, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeIO, err, "create %s", path)
	}
	bits, err := Write(f, d, lab)
	if err != nil {
		f.Close()
		return 0, err
	}
	return bits, f.Close()
}

// Read parses an archive back into a DAG and label table.
func Read(r io.Reader) (*topdag.Dag, *labels.Labels, error) {
	zr, err := zstd.NewReader(r)
	if err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeInvalidArchive, err, "init zstd")
	}
	defer zr.Close()
	br := bufio.NewReader(zr)

	head := make([]byte, len(magic))
	if _, err := io.ReadFull(br, head); err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeInvalidArchive, err, "read header")
	}
	for i, b := range magic {
		if head[i] != b {
			return nil, nil, errors.New(errors.ErrCodeInvalidArchive, "bad magic %q", head)
		}
	}

	lab, err := labels.Read(br)
	if err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeInvalidArchive, err, "read label table")
	}

	count, err := binary.ReadUvarint(br)
	if err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeInvalidArchive, err, "read node count")
	}
	d := topdag.NewDag(int(count))
	for i := uint64(0); i < count; i++ {
		id := int(i) + 1
		left, err := binary.ReadUvarint(br)
		if err != nil {
			return nil, nil, errors.Wrap(errors.ErrCodeInvalidArchive, err, "read node %d", id)
		}
		right, err := binary.ReadUvarint(br)
		if err != nil {
			return nil, nil, errors.Wrap(errors.ErrCodeInvalidArchive, err, "read node %d", id)
		}
		labelPlus, err := binary.ReadUvarint(br)
		if err != nil {
			return nil, nil, errors.Wrap(errors.ErrCodeInvalidArchive, err, "read node %d", id)
		}
		mtByte, err := br.ReadByte()
		if err != nil {
			return nil, nil, errors.Wrap(errors.ErrCodeInvalidArchive, err, "read node %d", id)
		}
		if int(left) >= id || int(right) >= id {
			return nil, nil, errors.New(errors.ErrCodeInvalidArchive, "node %d references %d/%d", id, left, right)
		}
		label := int(labelPlus) - 1
		if label >= lab.NumLabels() {
			return nil, nil, errors.New(errors.ErrCodeInvalidArchive, "node %d has unknown label %d", id, label)
		}
		mt := tree.MergeType(int8(mtByte) - 1)
		if mt < tree.MergeNone || mt > tree.HorzNoBBN {
			return nil, nil, errors.New(errors.ErrCodeInvalidArchive, "node %d has merge type %d", id, mt)
		}
		if left == 0 && right == 0 {
			if label < 0 || mt != tree.MergeNone {
				return nil, nil, errors.New(errors.ErrCodeInvalidArchive, "leaf node %d lacks a label", id)
			}
		} else {
			if left == 0 || right == 0 || mt == tree.MergeNone {
				return nil, nil, errors.New(errors.ErrCodeInvalidArchive, "node %d has a single child", id)
			}
		}
		d.AddNode(int(left), int(right), label, mt)
	}
	return d, lab, nil
}

// ReadFile reads an archive from path.
func ReadFile(path string) (*topdag.Dag, *labels.Labels, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, nil, errors.Wrap(errors.ErrCodeIO, err, "open %s", path)
	}
	defer f.Close()
	return Read(f)
}
